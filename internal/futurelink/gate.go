package futurelink

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// isLive reports whether the payload's go-live instant is at or before now.
func isLive(p Payload, now time.Time) bool {
	return p.Parsed && !p.GoLive.After(now)
}

// HoldFunc reports whether markers pointing at url must be left untouched.
type HoldFunc func(url string) bool

// HoldSubstrings holds every marker whose URL contains one of patterns,
// compared case-insensitively. Empty patterns are ignored.
func HoldSubstrings(patterns ...string) HoldFunc {
	folded := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			folded = append(folded, cases.Fold().String(p))
		}
	}
	if len(folded) == 0 {
		return nil
	}
	return func(url string) bool {
		u := cases.Fold().String(url)
		for _, p := range folded {
			if strings.Contains(u, p) {
				return true
			}
		}
		return false
	}
}
