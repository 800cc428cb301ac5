package reaction

import (
	"regexp"
	"strings"

	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Tokenizer
// ─────────────────────────────────────────────────────────────────────────────

// SMILESTokenPattern splits SMILES into model tokens: bracket atoms, two
// letter halogens, organic atoms, bonds, branches, ring labels and the
// reaction arrow.
const SMILESTokenPattern = `(\%\([0-9]{3}\)|\[[^\]]+]|Br?|Cl?|N|O|S|P|F|I|b|c|n|o|s|p|\||\(|\)|\.|=|#|-|\+|\\|\/|:|~|@|\?|>>?|\*|\$|\%[0-9]{2}|[0-9])`

var smilesTokenRegex = regexp.MustCompile(SMILESTokenPattern)

// PipeToken separates the reactant tokens from the enzyme tokens on a
// source line.
const PipeToken = "|"

// TokenizeSMILES splits s into tokens.  Characters the pattern cannot
// account for are reported as RXN_004.
func TokenizeSMILES(s string) ([]string, error) {
	tokens := smilesTokenRegex.FindAllString(s, -1)
	if strings.Join(tokens, "") != s {
		return nil, errors.New(errors.ErrCodeTokenizedMalformed, "SMILES contains untokenizable characters").WithDetail(s)
	}
	return tokens, nil
}

// SourceLine renders the model input for r: reactant tokens, the pipe token,
// then the enzyme tokens.  Records without a code omit the pipe.
func SourceLine(r Record) (string, error) {
	tokens, err := TokenizeSMILES(r.ReactantKey())
	if err != nil {
		return "", err
	}
	if !r.ec.IsZero() {
		tokens = append(tokens, PipeToken)
		tokens = append(tokens, r.ec.Tokens()...)
	}
	return strings.Join(tokens, " "), nil
}

// TargetLine renders the model output for r: the product tokens.
func TargetLine(r Record) (string, error) {
	tokens, err := TokenizeSMILES(r.ProductKey())
	if err != nil {
		return "", err
	}
	return strings.Join(tokens, " "), nil
}

// Lines renders the source and target pair for r.  Either both lines are
// produced or neither.
func Lines(r Record) (src, tgt string, err error) {
	if src, err = SourceLine(r); err != nil {
		return "", "", err
	}
	if tgt, err = TargetLine(r); err != nil {
		return "", "", err
	}
	return src, tgt, nil
}

// Detokenize turns a tokenized side (or a whole "src >> tgt" reaction) back
// into plain text.  Enzyme tokens become a dotted code after '|', and the
// pipe is inserted when a model dropped it.
func Detokenize(tokenized string) string {
	s := strings.ReplaceAll(tokenized, " ", "")

	head, tail, arrow := strings.Cut(s, ">>")
	start := strings.Index(head, "[v")
	switch {
	case start >= 0:
		reactants := strings.TrimSuffix(head[:start], PipeToken)
		ec := head[start:]
		if code, err := ParseEnzymeTokens(ec); err == nil {
			ec = code.String()
		}
		head = reactants + "|" + ec
	case strings.Contains(head, PipeToken):
		head = strings.ReplaceAll(head, PipeToken, "")
	}
	if !arrow {
		return head
	}
	return head + ">>" + tail
}

// DetokenizeSource splits a tokenized source line into its reactant SMILES
// and enzyme code.
func DetokenizeSource(line string) (reactants string, ec EnzymeCode, err error) {
	plain := Detokenize(line)
	reactants, rawEC, found := strings.Cut(plain, "|")
	if !found {
		return reactants, EnzymeCode{}, nil
	}
	ec, err = ParseEnzymeCode(rawEC)
	if err != nil {
		return "", EnzymeCode{}, errors.Wrap(err, errors.ErrCodeTokenizedMalformed, "malformed enzyme tokens").WithDetail(line)
	}
	return reactants, ec, nil
}

// SplitSourceTokens separates the reactant tokens of a source line from its
// enzyme tokens.  The enzyme tokens are everything after the pipe, or the
// trailing run starting at the first [v..] token when the pipe is missing.
func SplitSourceTokens(line string) (reactants, enzyme []string) {
	tokens := strings.Fields(line)
	for i, tok := range tokens {
		if tok == PipeToken {
			return tokens[:i], tokens[i+1:]
		}
	}
	for i, tok := range tokens {
		if strings.HasPrefix(tok, "[v") && allEnzymeTokens(tokens[i:]) {
			return tokens[:i], tokens[i:]
		}
	}
	return tokens, nil
}

var ecSingleToken = regexp.MustCompile(`^\[[vutq][^\]]*\]$`)

func allEnzymeTokens(tokens []string) bool {
	for _, t := range tokens {
		if !ecSingleToken.MatchString(t) {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
