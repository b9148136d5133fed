// Package extract pulls structured records out of free-form collaborator text.
//
// Responses usually wrap a JSON object in narrative or markdown fences. The
// scanner locates the first balanced top-level object by counting brace depth,
// skipping braces that appear inside string literals.
package extract

import (
	"encoding/json"
	"strings"
)

// FindObject returns the first balanced top-level JSON object in text.
// A candidate that never closes, or closes but is not valid JSON, is skipped
// and scanning resumes after its opening brace.
func FindObject(text string) (string, bool) {
	// ends maps an opening brace to its closing index, or -1 when it never closes.
	ends := make(map[int]int)
	offset := 0
	for {
		idx := strings.IndexByte(text[offset:], '{')
		if idx < 0 {
			return "", false
		}
		start := offset + idx
		end, seen := ends[start]
		if !seen {
			matchBraces(text, start, ends)
			end = ends[start]
		}
		if end >= 0 {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		offset = start + 1
	}
}

// matchBraces scans from the brace at start until it closes, recording in
// ends the closing index of every brace met outside a string literal. Such a
// brace is in the same lexical state a scan starting there would be, so its
// entry is final. Braces still open at the end of text are recorded as -1.
func matchBraces(text string, start int, ends map[int]int) {
	var open []int
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			open = append(open, i)
		case '}':
			last := len(open) - 1
			ends[open[last]] = i
			open = open[:last]
			if last == 0 {
				return
			}
		}
	}
	for _, p := range open {
		ends[p] = -1
	}
}
