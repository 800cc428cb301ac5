package reaction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Enzyme classification codes
// ─────────────────────────────────────────────────────────────────────────────

// MaxECLevel is the depth of a fully specified EC number.
const MaxECLevel = 4

// ecLevelPrefixes label the tokens of each EC level in model input lines.
var ecLevelPrefixes = [MaxECLevel]string{"v", "u", "t", "q"}

// ecComponentPattern accepts "-", plain numbers and sub-variants such as
// "n1" or "M1".
var ecComponentPattern = regexp.MustCompile(`^(?:-|[A-Za-z0-9]+)$`)

// EnzymeCode is a dotted hierarchical EC number with one to four levels.
// The zero value is the absent code.
type EnzymeCode struct {
	parts []string
}

// ParseEnzymeCode parses "3.5.1.4", "1.1.1.-", "3.5.1.n1" and truncated
// forms such as "2.7".  An empty string yields the zero EnzymeCode.
func ParseEnzymeCode(s string) (EnzymeCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EnzymeCode{}, nil
	}
	parts := strings.Split(s, ".")
	if len(parts) > MaxECLevel {
		return EnzymeCode{}, errors.New(errors.CodeEnzymeCodeInvalid, "enzyme code has too many levels").
			WithDetail(s)
	}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !ecComponentPattern.MatchString(p) {
			return EnzymeCode{}, errors.New(errors.CodeEnzymeCodeInvalid, "invalid enzyme code component").
				WithDetail(fmt.Sprintf("%q in %q", p, s))
		}
		parts[i] = p
	}
	return EnzymeCode{parts: parts}, nil
}

// MustParseEnzymeCode is ParseEnzymeCode that panics on error.
func MustParseEnzymeCode(s string) EnzymeCode {
	ec, err := ParseEnzymeCode(s)
	if err != nil {
		panic(err)
	}
	return ec
}

// IsZero reports whether no code is present.
func (e EnzymeCode) IsZero() bool { return len(e.parts) == 0 }

// Level returns the number of components.
func (e EnzymeCode) Level() int { return len(e.parts) }

// Components returns a copy of the dotted components.
func (e EnzymeCode) Components() []string {
	return append([]string(nil), e.parts...)
}

// Truncate keeps the first k components.  k larger than Level returns the
// code unchanged; k < 1 returns the zero code.
func (e EnzymeCode) Truncate(k int) EnzymeCode {
	if k <= 0 {
		return EnzymeCode{}
	}
	if k >= len(e.parts) {
		return e
	}
	return EnzymeCode{parts: append([]string(nil), e.parts[:k]...)}
}

// Class is the dotted code truncated to level, used for grouping.
func (e EnzymeCode) Class(level int) string {
	return e.Truncate(level).String()
}

// Equal compares component by component.
func (e EnzymeCode) Equal(o EnzymeCode) bool {
	if len(e.parts) != len(o.parts) {
		return false
	}
	for i := range e.parts {
		if e.parts[i] != o.parts[i] {
			return false
		}
	}
	return true
}

func (e EnzymeCode) String() string {
	return strings.Join(e.parts, ".")
}

// Tokens renders the code as level-prefixed model tokens:
// 3.5.1.4 becomes [v3] [u5] [t1] [q4].
func (e EnzymeCode) Tokens() []string {
	out := make([]string, len(e.parts))
	for i, p := range e.parts {
		out[i] = "[" + ecLevelPrefixes[i] + p + "]"
	}
	return out
}

var ecTokenPattern = regexp.MustCompile(`\[([vutq])([^\]]*)\]`)

// ParseEnzymeTokens rebuilds an EnzymeCode from its token form.  Spaces
// between tokens are optional.
func ParseEnzymeTokens(s string) (EnzymeCode, error) {
	compact := strings.ReplaceAll(s, " ", "")
	if compact == "" {
		return EnzymeCode{}, nil
	}
	matches := ecTokenPattern.FindAllStringSubmatchIndex(compact, -1)
	var parts []string
	pos := 0
	for i, m := range matches {
		if m[0] != pos || i >= MaxECLevel || compact[m[2]:m[3]] != ecLevelPrefixes[i] {
			return EnzymeCode{}, errors.New(errors.ErrCodeTokenizedMalformed, "malformed enzyme tokens").WithDetail(s)
		}
		parts = append(parts, compact[m[4]:m[5]])
		pos = m[1]
	}
	if pos != len(compact) {
		return EnzymeCode{}, errors.New(errors.ErrCodeTokenizedMalformed, "malformed enzyme tokens").WithDetail(s)
	}
	return ParseEnzymeCode(strings.Join(parts, "."))
}

//Personal.AI order the ending
