// Package logsink holds the ordered, append-only log shown to the user while
// setup steps run.
package logsink

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const timeLayout = "15:04:05"

type Entry struct {
	Time    time.Time
	Message string
}

// String formats the entry as "[hh:mm:ss] message".
func (e Entry) String() string {
	return "[" + e.Time.Format(timeLayout) + "] " + e.Message
}

// Sink serializes appends from any goroutine. Entries are never reordered or
// removed once appended.
type Sink struct {
	mu       sync.Mutex
	entries  []Entry
	watchers map[int]chan struct{}
	nextID   int
	now      func() time.Time
}

func New() *Sink {
	return &Sink{now: time.Now}
}

// Append records msg, stamped with the current wall clock at second
// granularity. Multi-line messages are kept as a single entry.
func (s *Sink) Append(msg string) Entry {
	msg = strings.TrimRight(msg, "\r\n")

	s.mu.Lock()
	e := Entry{Time: s.now().Truncate(time.Second), Message: msg}
	s.entries = append(s.entries, e)
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()

	log.Debug().Str("component", "logsink").Msg(msg)
	return e
}

func (s *Sink) Appendf(format string, args ...any) Entry {
	return s.Append(fmt.Sprintf(format, args...))
}

func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of every entry appended so far.
func (s *Sink) Entries() []Entry {
	return s.Since(0)
}

// Since returns a copy of the entries from offset onward.
func (s *Sink) Since(offset int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.entries) {
		return nil
	}
	out := make([]Entry, len(s.entries)-offset)
	copy(out, s.entries[offset:])
	return out
}

// Lines renders every entry with its timestamp.
func (s *Sink) Lines() []string {
	entries := s.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.String())
	}
	return out
}

// Watch returns a channel that receives a value after one or more appends.
// Notifications coalesce; readers should call Since with their last offset.
// The returned func stops notifications; calling it again is a no-op.
func (s *Sink) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	if s.watchers == nil {
		s.watchers = map[int]chan struct{}{}
	}
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}
}
