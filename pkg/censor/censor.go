// Package censor masks profanity in user supplied free text.
package censor

import (
	"regexp"
	"strings"
)

// Mask replaces every matched word. It contains no letters so masked text
// never matches again.
const Mask = "***"

// Lexicon lists the RE2 fragments a Censor masks. Any word carrying a match
// is replaced as a whole.
type Lexicon struct {
	// Stems match anywhere inside a word.
	Stems []string
	// Roots match at the start of a word or right after one of Prefixes.
	// Short roots that occur inside ordinary words belong here.
	Roots    []string
	Prefixes []string
}

// DefaultLexicon is applied to stored text.
var DefaultLexicon = Lexicon{
	Stems: []string{
		`п[иеы]?з[дт]`,
		`ху[йюяеё]`,
		`бля[тд]`,
		`сучк`,
		`сучь`,
		`мудак`,
		`пидор`,
		`гондон`,
	},
	Roots: []string{
		`[её]б`,
		`сук[аи]`,
		`чмо`,
	},
	Prefixes: []string{
		`на`, `за`, `вы`, `до`, `по`, `у`, `от`, `отъ`, `об`, `объ`,
		`раз`, `разъ`, `рас`, `из`, `изъ`, `съ`, `въ`, `под`, `подъ`,
		`при`, `про`, `пере`, `недо`, `долбо`,
	},
}

// Censor replaces whole words that carry a profane stem.
type Censor struct {
	pattern *regexp.Regexp
}

// New compiles the lexicon into a single case-insensitive matcher.
func New(lex Lexicon) (*Censor, error) {
	stems := trimmed(lex.Stems)
	roots := trimmed(lex.Roots)
	prefixes := trimmed(lex.Prefixes)

	var alts []string
	if len(stems) > 0 {
		alts = append(alts, `[\p{L}\p{N}]*(?:`+strings.Join(stems, "|")+`)[\p{L}\p{N}]*`)
	}
	if len(roots) > 0 {
		prefix := ""
		if len(prefixes) > 0 {
			prefix = `(?:` + strings.Join(prefixes, "|") + `)?`
		}
		// RE2 word boundaries are ASCII only, so the left boundary is captured
		// explicitly and written back.
		alts = append(alts, `(^|[^\p{L}\p{N}])`+prefix+`(?:`+strings.Join(roots, "|")+`)[\p{L}\p{N}]*`)
	}
	if len(alts) == 0 {
		return &Censor{}, nil
	}

	pattern, err := regexp.Compile(`(?i)` + strings.Join(alts, "|"))
	if err != nil {
		return nil, err
	}
	return &Censor{pattern: pattern}, nil
}

func trimmed(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var defaultCensor = MustNew(DefaultLexicon)

// MustNew is New that panics on an invalid lexicon.
func MustNew(lex Lexicon) *Censor {
	c, err := New(lex)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the censor built from DefaultLexicon.
func Default() *Censor {
	return defaultCensor
}

// Clean returns text with every profane word replaced by Mask.
func (c *Censor) Clean(text string) string {
	if c == nil || c.pattern == nil || text == "" {
		return text
	}
	return c.pattern.ReplaceAllString(text, "${1}"+Mask)
}

// CleanPtr is Clean for optional fields.
func (c *Censor) CleanPtr(text *string) *string {
	if text == nil {
		return nil
	}
	cleaned := c.Clean(*text)
	return &cleaned
}
