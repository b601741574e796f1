package futurelink

import "strings"

// span locates one marker inside the current buffer. Offsets are only valid
// against the buffer they were computed from; the loop re-scans after every splice.
type span struct {
	syntax    Syntax
	start     int // index of the start-open token
	inner     string
	closeEnd  int // index just past the start-close token
	end       int // index of the paired end token
	malformed bool
}

// findNextMarker returns the first marker whose start-open token sits at or
// after from. It is reported as malformed when it has no start-close or no
// later end token, when another start-open comes before its close or its
// anchor holds a complete start token, or when it begins a stray end token.
func findNextMarker(text string, from int, syn Syntax) (span, bool) {
	if from >= len(text) {
		return span{}, false
	}
	i := strings.Index(text[from:], syn.Open)
	if i < 0 {
		return span{}, false
	}
	sp := span{syntax: syn, start: from + i, end: -1}

	if strings.HasPrefix(text[sp.start:], syn.End) {
		sp.malformed = true
		return sp, true
	}

	innerStart := sp.start + len(syn.Open)
	j := strings.Index(text[innerStart:], syn.Close)
	if j < 0 {
		sp.malformed = true
		return sp, true
	}
	closeAt := innerStart + j
	sp.inner = text[innerStart:closeAt]
	// A later start-open before the close owns that close; this one is unpaired.
	if strings.Contains(sp.inner, syn.Open) {
		sp.malformed = true
		return sp, true
	}
	sp.closeEnd = closeAt + len(syn.Close)

	k := strings.Index(text[sp.closeEnd:], syn.End)
	if k < 0 {
		sp.malformed = true
		return sp, true
	}
	sp.end = sp.closeEnd + k
	// The end token belongs to the nearest marker, so a complete start token
	// inside the anchor leaves this one unpaired.
	if hasStartToken(text[sp.closeEnd:sp.end], syn) {
		sp.malformed = true
		sp.end = -1
	}
	return sp, true
}

// hasStartToken reports whether s holds a start-open followed by a start-close.
func hasStartToken(s string, syn Syntax) bool {
	i := strings.Index(s, syn.Open)
	return i >= 0 && strings.Contains(s[i+len(syn.Open):], syn.Close)
}

// splice replaces text[from:to] with repl.
func splice(text string, from, to int, repl string) string {
	return text[:from] + repl + text[to:]
}
