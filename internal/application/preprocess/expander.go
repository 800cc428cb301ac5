package preprocess

import (
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
)

// ---------------------------------------------------------------------------
// Record expansion
// ---------------------------------------------------------------------------

// Stage maps one record to zero or more records.
type Stage func(reaction.Record) []reaction.Record

// Chain composes stages by flat-mapping, left to right.
func Chain(stages ...Stage) Stage {
	return func(r reaction.Record) []reaction.Record {
		batch := []reaction.Record{r}
		for _, s := range stages {
			var next []reaction.Record
			for _, in := range batch {
				next = append(next, s(in)...)
			}
			if len(next) == 0 {
				return nil
			}
			batch = next
		}
		return batch
	}
}

// ExpandAll applies s to every record in order.
func ExpandAll(s Stage, records []reaction.Record) []reaction.Record {
	out := make([]reaction.Record, 0, len(records))
	for _, r := range records {
		out = append(out, s(r)...)
	}
	return out
}

// MaxProducts drops records with more than n products.  n <= 0 keeps
// everything.
func MaxProducts(n int) Stage {
	return func(r reaction.Record) []reaction.Record {
		if n > 0 && len(r.Products()) > n {
			return nil
		}
		return []reaction.Record{r}
	}
}

// TruncateEC coarsens the enzyme code to level.
func TruncateEC(level int) Stage {
	return func(r reaction.Record) []reaction.Record {
		return []reaction.Record{r.WithEC(r.EC().Truncate(level))}
	}
}

// Bidirectional emits the record followed by its reverse.  A record whose
// sides are the same set yields only itself.
func Bidirectional() Stage {
	return func(r reaction.Record) []reaction.Record {
		if rev, ok := r.Reverse(); ok {
			return []reaction.Record{r, rev}
		}
		return []reaction.Record{r}
	}
}

// SplitProducts emits one record per product, each with the full reactant
// set and code.
func SplitProducts() Stage {
	return func(r reaction.Record) []reaction.Record {
		products := r.Products()
		if len(products) <= 1 {
			return []reaction.Record{r}
		}
		out := make([]reaction.Record, 0, len(products))
		for _, p := range products {
			one, err := r.WithProducts([]*molecule.Molecule{p})
			if err == nil {
				out = append(out, one)
			}
		}
		return out
	}
}

// NewExpander builds the stage chain for one EC level:
// max-products → truncation → bidirectional → product split.
func NewExpander(opts Options, level int) Stage {
	stages := []Stage{MaxProducts(opts.MaxProducts), TruncateEC(level)}
	if opts.Bidirectional {
		stages = append(stages, Bidirectional())
	}
	if opts.SplitProducts {
		stages = append(stages, SplitProducts())
	}
	return Chain(stages...)
}

//Personal.AI order the ending
