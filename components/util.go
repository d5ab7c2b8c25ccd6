package components

import "strings"

func clamp(n, lo, hi int) int { return max(lo, min(n, hi)) }

func clampFloat(f float64) float64 { return max(0, min(f, 1)) }

// wrapText breaks s on word boundaries. Words longer than width stay whole
// and are clipped when drawn.
func wrapText(s string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(s, "\t", "  "), "\n") {
		var line []rune
		for _, word := range strings.Fields(para) {
			w := []rune(word)
			if len(line) > 0 && len(line)+1+len(w) > width {
				out = append(out, string(line))
				line = line[:0]
			}
			if len(line) > 0 {
				line = append(line, ' ')
			}
			line = append(line, w...)
		}
		out = append(out, string(line))
	}
	return out
}
