package futurelink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name       string
		inner      string
		wantTarget string
		wantURL    string
		wantRaw    string
		wantParsed bool
		wantGoLive time.Time
	}{
		{
			name:       "pipe separator",
			inner:      "example.org/x|2020-01-01",
			wantTarget: "example.org/x",
			wantURL:    "http://example.org/x",
			wantRaw:    "2020-01-01",
			wantParsed: true,
			wantGoLive: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "dash separator with prose date",
			inner:      "example.org/x-July 1, 2022",
			wantTarget: "example.org/x",
			wantURL:    "http://example.org/x",
			wantRaw:    "July 1, 2022",
			wantParsed: true,
			wantGoLive: time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "https scheme kept",
			inner:      "https://example.org/x|2020-01-01",
			wantTarget: "https://example.org/x",
			wantURL:    "https://example.org/x",
			wantRaw:    "2020-01-01",
			wantParsed: true,
			wantGoLive: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "mailto scheme kept",
			inner:      "mailto:me@example.org|2020-01-01",
			wantTarget: "mailto:me@example.org",
			wantURL:    "mailto:me@example.org",
			wantRaw:    "2020-01-01",
			wantParsed: true,
			wantGoLive: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "no separator",
			inner:      "example.org",
			wantTarget: "example.org",
			wantURL:    "http://example.org",
			wantRaw:    "",
			wantParsed: false,
		},
		{
			name:       "empty date",
			inner:      "example.org|",
			wantTarget: "example.org",
			wantURL:    "http://example.org",
			wantRaw:    "",
			wantParsed: false,
		},
		{
			name:       "unreadable date",
			inner:      "example.org|soon",
			wantTarget: "example.org",
			wantURL:    "http://example.org",
			wantRaw:    "soon",
			wantParsed: false,
		},
		{
			name:       "relative phrase",
			inner:      "example.org|yesterday",
			wantTarget: "example.org",
			wantURL:    "http://example.org",
			wantRaw:    "yesterday",
			wantParsed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parsePayload(tt.inner, time.UTC)
			assert.Equal(t, tt.wantTarget, p.TargetRaw)
			assert.Equal(t, tt.wantURL, p.URL)
			assert.Equal(t, tt.wantRaw, p.GoLiveRaw)
			require.Equal(t, tt.wantParsed, p.Parsed)
			if tt.wantParsed {
				assert.True(t, tt.wantGoLive.Equal(p.GoLive), "got %s want %s", p.GoLive, tt.wantGoLive)
			} else {
				assert.True(t, p.GoLive.IsZero())
			}
		})
	}
}

func TestParsePayload_FirstSeparatorWins(t *testing.T) {
	p := parsePayload("my-site.org|2020-01-01", time.UTC)
	assert.Equal(t, "my", p.TargetRaw)
	assert.Equal(t, "http://my", p.URL)
	assert.Equal(t, "site.org|2020-01-01", p.GoLiveRaw)

	p = parsePayload("example.org|2020-01-01|later", time.UTC)
	assert.Equal(t, "example.org", p.TargetRaw)
	assert.Equal(t, "2020-01-01|later", p.GoLiveRaw)
}

func TestParsePayload_UsesLocationForZonelessDates(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	p := parsePayload("example.org|2025-01-01 12:00", loc)
	require.True(t, p.Parsed)
	require.True(t, p.GoLive.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestCoerceURL(t *testing.T) {
	assert.Equal(t, "http://example.org", coerceURL("example.org"))
	assert.Equal(t, "http://example.org", coerceURL("http://example.org"))
	assert.Equal(t, "ftp://files.example.org", coerceURL("ftp://files.example.org"))
	assert.Equal(t, "tel:+4712345678", coerceURL("tel:+4712345678"))
	assert.Equal(t, "http://example.org:8080/x", coerceURL("example.org:8080/x"))
}

func TestIsLive(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, isLive(Payload{Parsed: true, GoLive: now.Add(-time.Hour)}, now))
	assert.True(t, isLive(Payload{Parsed: true, GoLive: now}, now), "go-live equal to now is live")
	assert.False(t, isLive(Payload{Parsed: true, GoLive: now.Add(time.Second)}, now))
	assert.False(t, isLive(Payload{Parsed: false}, now))
}

func TestHoldSubstrings(t *testing.T) {
	hold := HoldSubstrings("Example.COM", "  ")
	require.NotNil(t, hold)
	assert.True(t, hold("http://example.com/demo"))
	assert.True(t, hold("http://EXAMPLE.com"))
	assert.False(t, hold("http://example.org"))

	assert.Nil(t, HoldSubstrings())
	assert.Nil(t, HoldSubstrings("", " "))
}
