package futurelink

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func eligible() RenderContext {
	return RenderContext{Eligible: true, Now: testNow}
}

func TestTransformContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "past go-live becomes a link",
			input: "[[example.org/x|2020-01-01]]Click Here[[end]]",
			want:  `<a href="http://example.org/x">Click Here</a>`,
		},
		{
			name:  "future go-live keeps anchor text only",
			input: "[[example.org/x|2099-01-01]]Click Here[[end]]",
			want:  "Click Here",
		},
		{
			name:  "unreadable date is treated as future",
			input: "[[example.org/x|soon]]Click Here[[end]]",
			want:  "Click Here",
		},
		{
			name:  "surrounding markup is preserved",
			input: `<p class="intro">See [[example.org/x|2020-01-01]]this &amp; that[[end]] now.</p>`,
			want:  `<p class="intro">See <a href="http://example.org/x">this &amp; that</a> now.</p>`,
		},
		{
			name:  "two markers resolve independently",
			input: "[[example.org/a|2020-01-01]]A[[end]] and [[example.org/b|2099-01-01]]B[[end]]",
			want:  `<a href="http://example.org/a">A</a> and B`,
		},
		{
			name:  "scheme is kept",
			input: "[[https://example.org/x|2020-01-01]]x[[end]]",
			want:  `<a href="https://example.org/x">x</a>`,
		},
		{
			name:  "query string is escaped in the attribute",
			input: "[[example.org/?a=1&b=2|2020-01-01]]x[[end]]",
			want:  `<a href="http://example.org/?a=1&amp;b=2">x</a>`,
		},
		{
			name:  "legacy syntax",
			input: "<p><-example.org/x|2020-01-01->Click<-></p>",
			want:  `<p><a href="http://example.org/x">Click</a></p>`,
		},
		{
			name:  "legacy syntax before go-live",
			input: "<-example.org/x|2099-01-01->Click<->",
			want:  "Click",
		},
		{
			name:  "both syntaxes in one document",
			input: "[[example.org/a|2020-01-01]]A[[end]] <-example.org/b|2020-01-01->B<->",
			want:  `<a href="http://example.org/a">A</a> <a href="http://example.org/b">B</a>`,
		},
		{
			name:  "go-live equal to now is live",
			input: "[[example.org|2025-01-01]]x[[end]]",
			want:  `<a href="http://example.org">x</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransformContent(tt.input, eligible())
			require.Equal(t, tt.want, got)
			assert.NotContains(t, got, "[[end]]")
		})
	}
}

func TestTransform_UnchangedInputs(t *testing.T) {
	inputs := []string{
		"",
		"<p>plain text, no markers</p>",
		"[[example.org/x|2020-01-01]]no end token anywhere",
		"<p>a <- b and a -> b</p>",
	}
	f := New(Options{})
	for _, in := range inputs {
		res := f.Transform(in, eligible())
		require.Equal(t, in, res.Content)
		require.False(t, res.Changed)
		require.Empty(t, res.Markers)
	}
}

func TestTransform_IneligiblePageIsUntouched(t *testing.T) {
	in := "[[example.org/x|2020-01-01]]Click Here[[end]]"
	res := New(Options{}).Transform(in, RenderContext{Eligible: false, Now: testNow})
	require.Equal(t, in, res.Content)
	require.False(t, res.Changed)
}

func TestTransform_ZeroNowSamplesClock(t *testing.T) {
	in := "[[example.org/x|2000-01-01]]old[[end]]"
	res := New(Options{}).Transform(in, RenderContext{Eligible: true})
	require.Equal(t, `<a href="http://example.org/x">old</a>`, res.Content)
}

func TestTransform_Idempotent(t *testing.T) {
	f := New(Options{Hold: HoldSubstrings("example.com")})
	inputs := []string{
		"<p>[[example.org/a|2020-01-01]]A[[end]] [[example.org/b|2099-01-01]]B[[end]]</p>",
		"[[example.com/demo|2020-01-01]]demo[[end]] <-example.org|2020-01-01->legacy<->",
		"[[end]] stray [[broken",
	}
	for _, in := range inputs {
		once := f.Transform(in, eligible()).Content
		twice := f.Transform(once, eligible()).Content
		require.Equal(t, once, twice)
	}
}

func TestTransform_RecordsMarkersAndDiagnostics(t *testing.T) {
	in := "[[example.org/a|2020-01-01]]A &amp; a[[end]] [[example.org/b|2099-01-01]]B[[end]] [[example.org/c|soon]]C[[end]]"
	res := New(Options{}).Transform(in, eligible())

	require.True(t, res.Changed)
	require.Len(t, res.Markers, 3)
	assert.Equal(t, DecisionLinked, res.Markers[0].Decision)
	assert.Equal(t, "A &amp; a", res.Markers[0].Anchor, "anchor is reported as authored")
	assert.Equal(t, "http://example.org/a", res.Markers[0].Payload.URL)
	assert.Equal(t, DecisionStripped, res.Markers[1].Decision)
	assert.Equal(t, DecisionStripped, res.Markers[2].Decision)
	assert.Equal(t, 1, res.Count(DecisionLinked))
	assert.Equal(t, 2, res.Count(DecisionStripped))

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, KindUnparseableDate, res.Diagnostics[0].Kind)
	assert.Equal(t, "http://example.org/c", res.Diagnostics[0].Target)
}

func TestTransform_HeldMarkersSurviveVerbatim(t *testing.T) {
	f := New(Options{Hold: HoldSubstrings("example.com")})
	in := "<p>[[example.com/demo|2020-01-01]]demo[[end]] and [[example.org/x|2020-01-01]]real[[end]] " +
		"and [[www.EXAMPLE.com/other|2099-01-01]]other[[end]]</p>"
	want := "<p>[[example.com/demo|2020-01-01]]demo[[end]] and <a href=\"http://example.org/x\">real</a> " +
		"and [[www.EXAMPLE.com/other|2099-01-01]]other[[end]]</p>"

	res := f.Transform(in, eligible())
	require.Equal(t, want, res.Content)
	require.Equal(t, 2, res.Count(DecisionHeld))
	require.Equal(t, 1, res.Count(DecisionLinked))
	assert.NotContains(t, res.Content, "futurelink:hold:")

	var held int
	for _, d := range res.Diagnostics {
		if d.Kind == KindHeld {
			held++
		}
	}
	assert.Equal(t, 2, held)
}

func TestTransform_MalformedMarkersAreSkipped(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		want          string
		wantMalformed int
	}{
		{
			name:          "start without close",
			input:         "Broken [[x|2020-01-01 text [[end]]",
			want:          "Broken [[x|2020-01-01 text [[end]]",
			wantMalformed: 2,
		},
		{
			name:          "stray end before a real marker",
			input:         "[[end]] then [[example.org/x|2020-01-01]]ok[[end]]",
			want:          `[[end]] then <a href="http://example.org/x">ok</a>`,
			wantMalformed: 1,
		},
		{
			name:          "close without end",
			input:         "[[end]] [[example.org/x|2020-01-01]]dangling",
			want:          "[[end]] [[example.org/x|2020-01-01]]dangling",
			wantMalformed: 2,
		},
		{
			name:          "unpaired start before a real marker",
			input:         "[[oops [[example.org/x|2020-01-01]]ok[[end]]",
			want:          `[[oops <a href="http://example.org/x">ok</a>`,
			wantMalformed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(Options{Syntaxes: []Syntax{Bracket}}).Transform(tt.input, eligible())
			require.Equal(t, tt.want, res.Content)
			require.False(t, res.Aborted)

			var malformed int
			for _, d := range res.Diagnostics {
				if d.Kind == KindMalformed {
					malformed++
				}
			}
			require.Equal(t, tt.wantMalformed, malformed)
		})
	}
}

func TestTransform_IterationLimit(t *testing.T) {
	marker := "[[example.org/x|2099-01-01]]t[[end]]"
	in := strings.Repeat(marker, DefaultMaxIterations+1)

	res := New(Options{}).Transform(in, eligible())
	require.True(t, res.Aborted)
	require.Len(t, res.Markers, DefaultMaxIterations)
	require.True(t, strings.HasPrefix(res.Content, strings.Repeat("t", DefaultMaxIterations)+marker))
	require.Contains(t, res.Content, "<!-- futurelink: more than 10 markers")

	last := res.Diagnostics[len(res.Diagnostics)-1]
	require.Equal(t, KindIterationLimit, last.Kind)
}

func TestTransform_IterationLimitIsConfigurable(t *testing.T) {
	in := strings.Repeat("[[example.org|2020-01-01]]x[[end]]", 25)
	res := New(Options{MaxIterations: 25}).Transform(in, eligible())
	require.False(t, res.Aborted)
	require.Equal(t, 25, res.Count(DecisionLinked))
}

func TestTransform_EndTokenPairsWithNearestMarker(t *testing.T) {
	in := "[[a.org|2020-01-01]]A [[b.org|2020-01-01]]B[[end]]"
	res := New(Options{}).Transform(in, eligible())
	require.Equal(t, `[[a.org|2020-01-01]]A <a href="http://b.org">B</a>`, res.Content)
	require.Equal(t, 1, res.Count(DecisionLinked))
	require.False(t, res.Aborted)
}

func TestTransform_CodeBeforeMarkerIsLeftAlone(t *testing.T) {
	code := strings.Repeat("arr[[i]] ", DefaultMaxIterations)
	res := New(Options{}).Transform(code+"[[a.org|2020-01-01]]A[[end]]", eligible())
	require.Equal(t, code+`<a href="http://a.org">A</a>`, res.Content)
	require.False(t, res.Aborted)

	var malformed int
	for _, d := range res.Diagnostics {
		if d.Kind == KindMalformed {
			malformed++
		}
	}
	require.Equal(t, DefaultMaxIterations, malformed)
}

func TestTransform_RewrittenAnchorIsNotRescanned(t *testing.T) {
	in := "[[example.org|2020-01-01]]see [x] here[[end]] [[end]] tail"
	res := New(Options{}).Transform(in, eligible())
	require.Equal(t, `<a href="http://example.org">see [x] here</a> [[end]] tail`, res.Content)
}

func TestFilter_ConcurrentUse(t *testing.T) {
	f := New(Options{Hold: HoldSubstrings("example.com")})
	in := "[[example.com/demo|2020-01-01]]demo[[end]] [[example.org/x|2020-01-01]]x[[end]]"
	want := `[[example.com/demo|2020-01-01]]demo[[end]] <a href="http://example.org/x">x</a>`

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Transform(in, eligible()).Content
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		require.Equal(t, want, got)
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	opts := New(Options{}).Options()
	require.Equal(t, DefaultMaxIterations, opts.MaxIterations)
	require.Equal(t, DefaultSyntaxes, opts.Syntaxes)
	require.Equal(t, time.UTC, opts.Location)
	require.Nil(t, opts.Hold)
}
