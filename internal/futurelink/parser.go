package futurelink

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// separators split the payload into target and go-live date. The first one
// found wins, so a target containing '-' is cut at that dash.
const separators = "-|"

const defaultScheme = "http://"

var (
	hierarchicalScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)
	opaqueSchemes      = []string{"mailto:", "tel:"}
)

// Payload is the parsed inner text of a marker.
type Payload struct {
	TargetRaw string    `json:"target_raw"`
	URL       string    `json:"url"`
	GoLiveRaw string    `json:"golive_raw"`
	GoLive    time.Time `json:"golive,omitzero"`
	// Parsed is false when GoLiveRaw could not be read as a date. Such a
	// payload never goes live.
	Parsed bool `json:"parsed"`
}

// parsePayload splits inner on the first separator and interprets both halves.
// inner must already be entity-decoded.
func parsePayload(inner string, loc *time.Location) Payload {
	p := Payload{TargetRaw: strings.TrimSpace(inner)}
	if i := strings.IndexAny(inner, separators); i >= 0 {
		p.TargetRaw = strings.TrimSpace(inner[:i])
		p.GoLiveRaw = strings.TrimSpace(inner[i+1:])
	}
	p.URL = coerceURL(p.TargetRaw)
	p.GoLive, p.Parsed = parseGoLive(p.GoLiveRaw, loc)
	return p
}

// coerceURL prefixes http:// unless target already carries a scheme.
func coerceURL(target string) string {
	if hierarchicalScheme.MatchString(target) {
		return target
	}
	lower := strings.ToLower(target)
	for _, s := range opaqueSchemes {
		if strings.HasPrefix(lower, s) {
			return target
		}
	}
	return defaultScheme + target
}

// parseGoLive reads a free-form date. Dates without a zone are taken in loc.
// Relative phrases such as "yesterday" or "next monday" are not understood;
// they leave the payload unparsed, so the marker is stripped.
func parseGoLive(raw string, loc *time.Location) (t time.Time, ok bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	defer func() {
		// dateparse has panicked on pathological input in the past.
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
