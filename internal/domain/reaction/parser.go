package reaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Parser
// ─────────────────────────────────────────────────────────────────────────────

// Parser turns reaction strings into Records, canonicalising every structure
// through a shared Normalizer.
type Parser struct {
	normalizer *molecule.Normalizer
}

// NewParser builds a Parser on top of normalizer.
func NewParser(normalizer *molecule.Normalizer) *Parser {
	return &Parser{normalizer: normalizer}
}

// Normalizer exposes the underlying structure normalizer.
func (p *Parser) Normalizer() *molecule.Normalizer { return p.normalizer }

// Parse reads one of
//
//	reactants|ec>>products
//	reactants|ec>agents>products
//	reactants>>products
//
// Agents are folded into the reactant side.  Failures carry RXN_001 for bad
// separators, RXN_002 for an empty side, RXN_003 for the enzyme code and
// MOL_001/MOL_002 for structures.
func (p *Parser) Parse(ctx context.Context, line, source string) (Record, error) {
	return p.ParseWithEC(ctx, line, "", source)
}

// ParseWithEC parses rxn and takes the enzyme code from ec when rxn carries
// none, which is how CSV inputs with a separate EC column are read.
func (p *Parser) ParseWithEC(ctx context.Context, rxn, ec, source string) (Record, error) {
	parts, err := Split(rxn)
	if err != nil {
		return Record{}, err
	}
	if parts.EC == "" {
		parts.EC = strings.TrimSpace(ec)
	}

	code, err := ParseEnzymeCode(parts.EC)
	if err != nil {
		return Record{}, err
	}
	reactants, err := p.side(ctx, "reactant", parts.Reactants, parts.Agents)
	if err != nil {
		return Record{}, err
	}
	products, err := p.side(ctx, "product", parts.Products)
	if err != nil {
		return Record{}, err
	}
	rec, err := NewRecord(reactants, products, code, source)
	if err != nil {
		return Record{}, errors.Wrap(err, errors.CodeUnknown, "invalid reaction").WithDetail(rxn)
	}
	return rec, nil
}

// SideKey canonicalises one dot-separated side on its own and returns the key
// Record.ProductKey or Record.ReactantKey would give the same molecules.
func (p *Parser) SideKey(ctx context.Context, side string) (string, error) {
	ms, err := p.side(ctx, "product", strings.TrimSpace(side))
	if err != nil {
		return "", err
	}
	ms = normalizeSide(ms)
	if len(ms) == 0 {
		return "", errors.New(errors.CodeReactionEmptySide, "side has no structures")
	}
	return sideKey(ms), nil
}

func (p *Parser) side(ctx context.Context, role string, groups ...string) ([]*molecule.Molecule, error) {
	var out []*molecule.Molecule
	for _, g := range groups {
		if g == "" {
			continue
		}
		for _, frag := range strings.Split(g, ".") {
			m, err := p.normalizer.Normalize(ctx, frag)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeUnknown, role+" is not a valid structure").WithDetail(frag)
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// Parts is a reaction string split into its raw fields.
type Parts struct {
	Reactants string
	EC        string
	Agents    string
	Products  string
}

// Split separates a reaction string into raw fields without parsing the
// structures.  Exactly two '>' are required and "|" must be followed by a
// code.
func Split(rxn string) (Parts, error) {
	rxn = strings.TrimSpace(rxn)
	fields := strings.Split(rxn, ">")
	if len(fields) != 3 {
		return Parts{}, errors.New(errors.CodeReactionMalformed, "reaction needs exactly two '>' separators").WithDetail(rxn)
	}
	parts := Parts{
		Reactants: strings.TrimSpace(fields[0]),
		Agents:    strings.TrimSpace(fields[1]),
		Products:  strings.TrimSpace(fields[2]),
	}
	if i := strings.LastIndexByte(parts.Reactants, '|'); i >= 0 {
		parts.EC = strings.TrimSpace(parts.Reactants[i+1:])
		parts.Reactants = strings.TrimSpace(parts.Reactants[:i])
		if parts.EC == "" {
			return Parts{}, errors.New(errors.CodeReactionMalformed, "'|' is not followed by an enzyme code").WithDetail(rxn)
		}
	}
	if strings.ContainsRune(parts.Agents, '|') || strings.ContainsRune(parts.Products, '|') {
		return Parts{}, errors.New(errors.CodeReactionMalformed, "enzyme code must follow the reactants").WithDetail(rxn)
	}
	if parts.Reactants == "" && parts.Agents == "" {
		return Parts{}, errors.New(errors.CodeReactionEmptySide, "reaction has no reactants").WithDetail(rxn)
	}
	if parts.Products == "" {
		return Parts{}, errors.New(errors.CodeReactionEmptySide, "reaction has no products").WithDetail(rxn)
	}
	return parts, nil
}

// Join is the inverse of Split for the agent-free form.
func Join(reactants, ec, products string) string {
	if ec == "" {
		return fmt.Sprintf("%s>>%s", reactants, products)
	}
	return fmt.Sprintf("%s|%s>>%s", reactants, ec, products)
}

//Personal.AI order the ending
