package ui

import (
	"fmt"
	"io"
	"sync"

	"pysetup/internal/logsink"
)

// Follow prints sink entries to w as they arrive, starting at the current
// end of the sink. The returned func flushes what is left and stops.
func Follow(sink *logsink.Sink, w io.Writer) func() {
	notify, unwatch := sink.Watch()
	offset := sink.Len()
	done := make(chan struct{})
	var wg sync.WaitGroup

	flush := func() {
		for _, e := range sink.Since(offset) {
			fmt.Fprintln(w, LogLine(e.String()))
			offset++
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-notify:
				flush()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unwatch()
			close(done)
			wg.Wait()
			flush()
		})
	}
}
