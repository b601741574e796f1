package futurelink

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// held is a marker masked out of the current pass. Both sentinels are swapped
// back for the original text once scanning is finished.
type held struct {
	openSentinel string
	openText     string
	endSentinel  string
	endText      string
}

func newHeld(openText, endText string) held {
	id := uuid.NewString()
	return held{
		openSentinel: "futurelink:hold:" + id + ":open",
		openText:     openText,
		endSentinel:  "futurelink:hold:" + id + ":end",
		endText:      endText,
	}
}

// pass is the state of one filter invocation over one encoded document.
type pass struct {
	opts       Options
	now        time.Time
	text       string
	iterations int
	aborted    bool
	held       []held
	markers    []Marker
	diags      []Diagnostic
}

// run scans text for syn until no marker remains. It returns false when the
// iteration cap was hit. Only rewritten or held markers count against the cap;
// a malformed token always moves the cursor forward.
func (p *pass) run(syn Syntax) bool {
	cursor := 0
	for {
		sp, ok := findNextMarker(p.text, cursor, syn)
		if !ok {
			return true
		}
		if sp.malformed {
			p.diags = append(p.diags, Diagnostic{
				Kind:    KindMalformed,
				Syntax:  syn.Name,
				Offset:  sp.start,
				Message: "start token without matching close or end token; left as is",
			})
			cursor = sp.start + len(syn.Open)
			continue
		}
		if p.iterations >= p.opts.MaxIterations {
			p.aborted = true
			p.diags = append(p.diags, Diagnostic{
				Kind:    KindIterationLimit,
				Syntax:  syn.Name,
				Offset:  sp.start,
				Message: fmt.Sprintf("stopped after %d markers; remaining markers left unprocessed", p.opts.MaxIterations),
			})
			return false
		}
		p.iterations++
		cursor = p.rewrite(sp)
	}
}

// rewrite consumes the marker at sp and returns where scanning resumes. The
// end token is spliced first so that sp.start stays valid.
func (p *pass) rewrite(sp span) int {
	syn := sp.syntax
	payload := parsePayload(html.UnescapeString(sp.inner), p.opts.Location)
	anchor := p.text[sp.closeEnd:sp.end]
	m := Marker{Syntax: syn.Name, Payload: payload, Anchor: html.UnescapeString(anchor)}

	if p.opts.Hold != nil && p.opts.Hold(payload.URL) {
		h := newHeld(p.text[sp.start:sp.closeEnd], syn.End)
		p.text = splice(p.text, sp.end, sp.end+len(syn.End), h.endSentinel)
		p.text = splice(p.text, sp.start, sp.closeEnd, h.openSentinel)
		p.held = append(p.held, h)

		m.Decision = DecisionHeld
		p.markers = append(p.markers, m)
		p.diags = append(p.diags, Diagnostic{
			Kind:    KindHeld,
			Syntax:  syn.Name,
			Offset:  sp.start,
			Target:  payload.URL,
			Message: "target matches hold rule; marker kept verbatim",
		})
		return sp.start + len(h.openSentinel) + len(anchor) + len(h.endSentinel)
	}

	var open, closing string
	if isLive(payload, p.now) {
		open = `<a href="` + hrefValue(payload.URL) + `">`
		closing = "</a>"
		m.Decision = DecisionLinked
	} else {
		m.Decision = DecisionStripped
		if !payload.Parsed {
			p.diags = append(p.diags, Diagnostic{
				Kind:    KindUnparseableDate,
				Syntax:  syn.Name,
				Offset:  sp.start,
				Target:  payload.URL,
				Message: fmt.Sprintf("go-live date %q is not readable; treated as not live", payload.GoLiveRaw),
			})
		}
	}
	p.markers = append(p.markers, m)

	p.text = splice(p.text, sp.end, sp.end+len(syn.End), closing)
	p.text = splice(p.text, sp.start, sp.closeEnd, open)
	return sp.start + len(open) + len(anchor) + len(closing)
}

// restore swaps every held sentinel back for its original marker text.
func (p *pass) restore() {
	for _, h := range p.held {
		p.text = strings.Replace(p.text, h.openSentinel, h.openText, 1)
		p.text = strings.Replace(p.text, h.endSentinel, h.endText, 1)
	}
}

// hrefValue escapes url for an attribute value. The document is decoded once
// after rewriting, so the value is escaped twice to come out escaped once.
func hrefValue(url string) string {
	return html.EscapeString(html.EscapeString(url))
}
