package futurelink

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Syntax describes the delimiter tokens of one marker surface form. Tokens are
// expressed in the encoded domain, i.e. as they appear after the content has
// been HTML-escaped.
type Syntax struct {
	Name  string
	Open  string
	Close string
	End   string
}

var (
	// Bracket is the current form: [[target|golive]]anchor text[[end]].
	Bracket = Syntax{Name: "bracket", Open: "[[", Close: "]]", End: "[[end]]"}

	// Legacy is the form used by older content: <-target|golive->anchor text<->.
	Legacy = Syntax{Name: "legacy", Open: "&lt;-", Close: "-&gt;", End: "&lt;-&gt;"}
)

// DefaultSyntaxes lists the syntaxes a filter recognizes when none are configured.
var DefaultSyntaxes = []Syntax{Bracket, Legacy}

// rawEnd is the end token as authored, before encoding. It drives the fast path.
func (s Syntax) rawEnd() string { return html.UnescapeString(s.End) }

// SyntaxByName resolves a configured syntax name.
func SyntaxByName(name string) (Syntax, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Bracket.Name:
		return Bracket, nil
	case Legacy.Name:
		return Legacy, nil
	default:
		return Syntax{}, fmt.Errorf("unknown marker syntax %q (want %q or %q)", name, Bracket.Name, Legacy.Name)
	}
}
