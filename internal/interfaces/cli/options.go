package cli

import (
	"github.com/turtacn/BioCatalysis-Toolkit/internal/application/evaluation"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/application/preprocess"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/config"
)

// preprocessOptions maps the loaded configuration onto pipeline options.
// Inputs and output directory come from the command line.
func preprocessOptions(cfg *config.Config) preprocess.Options {
	p := cfg.Preprocess
	return preprocess.Options{
		PatternFile:      p.PatternFile,
		MoleculeFile:     p.MoleculeFile,
		ExclusionMode:    preprocess.ExclusionMode(p.ExclusionMode),
		RemovePrecursors: p.RemovePrecursors,
		MinAtomCount:     p.MinAtomCount,
		AtomCountScope:   preprocess.AtomCountScope(p.AtomCountScope),
		Levels:           append([]int(nil), p.Levels...),
		MaxProducts:      p.MaxProducts,
		Bidirectional:    p.Bidirectional,
		SplitProducts:    p.SplitProducts,
		ValidRatio:       p.ValidRatio,
		TestRatio:        p.TestRatio,
		Salt:             p.Salt,
		Workers:          cfg.Normalizer.Workers,
	}
}

// evaluationOptions maps the loaded configuration onto scorer options.
func evaluationOptions(cfg *config.Config) evaluation.Options {
	e := cfg.Evaluate
	return evaluation.Options{
		NBestFW:      e.NBestFW,
		NBestBW:      e.NBestBW,
		NBestRTR:     e.NBestRTR,
		TopNFW:       append([]int(nil), e.TopNFW...),
		TopNBW:       append([]int(nil), e.TopNBW...),
		TopNRTR:      append([]int(nil), e.TopNRTR...),
		TopNRange:    e.TopNRange,
		Layout:       evaluation.Layout(e.Layout),
		Delimiter:    e.Delimiter,
		Isomeric:     cfg.Normalizer.Isomeric,
		ECPredLevel:  e.ECPredLevel,
		GroupByLevel: e.GroupByLevel,
		Name:         e.Name,
		Listings:     e.Listings,
		Workers:      cfg.Normalizer.Workers,
	}
}

//Personal.AI order the ending
