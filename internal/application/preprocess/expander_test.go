package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
)

func TestBidirectional_SingleReverse(t *testing.T) {
	r := record(t, "CCCCO|1.1.1.1>>CCCC=O")
	out := Bidirectional()(r)
	require.Len(t, out, 2)
	assert.Equal(t, "CCCCO|1.1.1.1>>CCCC=O", out[0].String())
	assert.Equal(t, "CCCC=O|1.1.1.1>>CCCCO", out[1].String())

	// Augmenting twice and deduplicating still leaves two records.
	twice := Dedup(ExpandAll(Bidirectional(), out))
	assert.ElementsMatch(t, keys(out), keys(twice))
}

func TestBidirectional_SymmetricRecord(t *testing.T) {
	r := record(t, "CCO.CC(=O)O|2.3.1.1>>CC(=O)O.CCO")
	assert.Len(t, Bidirectional()(r), 1)
}

func TestSplitProducts_TotalAndDisjoint(t *testing.T) {
	r := record(t, "CCCCO|1.1.1.1>>CC(=O)O.OC1CCCCC1")
	out := SplitProducts()(r)
	require.Len(t, out, 2)

	var products []string
	for _, o := range out {
		assert.Equal(t, r.ReactantKey(), o.ReactantKey())
		assert.True(t, o.EC().Equal(r.EC()))
		require.Len(t, o.Products(), 1)
		products = append(products, o.ProductKey())
	}
	assert.ElementsMatch(t, []string{"CC(=O)O", "OC1CCCCC1"}, products)

	single := record(t, "CCCCO|1.1.1.1>>CC(=O)O")
	assert.Equal(t, []reaction.Record{single}, SplitProducts()(single))
}

func TestMaxProducts(t *testing.T) {
	r := record(t, "CCCCO|1.1.1.1>>CC(=O)O.OC1CCCCC1")
	assert.Empty(t, MaxProducts(1)(r))
	assert.Len(t, MaxProducts(2)(r), 1)
	assert.Len(t, MaxProducts(0)(r), 1)
}

func TestNewExpander_MaxProductsBeforeSplit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxProducts = 1
	opts.SplitProducts = true
	opts.Bidirectional = true

	r := record(t, "CCCCO|3.5.1.4>>CC(=O)O.OC1CCCCC1")
	assert.Empty(t, NewExpander(opts, 1)(r))
}

func TestNewExpander_TruncationBeforeAugmentation(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxProducts = 0
	opts.SplitProducts = true
	opts.Bidirectional = true

	r := record(t, "CCCCO|3.5.1.4>>CC(=O)O.OC1CCCCC1")
	out := NewExpander(opts, 2)(r)

	// Forward splits into two; the reverse has one product (the reactant).
	assert.ElementsMatch(t, []string{
		"CCCCO|3.5>>CC(=O)O",
		"CCCCO|3.5>>OC1CCCCC1",
		"CC(=O)O.OC1CCCCC1|3.5>>CCCCO",
	}, keys(out))
	for _, o := range out {
		assert.Equal(t, 2, o.EC().Level())
	}
	assert.Equal(t, "3.5.1.4", r.EC().String())
}

func TestChain_Empty(t *testing.T) {
	r := record(t, "CCCCO|3.5.1.4>>CC(=O)O")
	assert.Equal(t, []reaction.Record{r}, Chain()(r))
	assert.Nil(t, Chain(MaxProducts(1), func(reaction.Record) []reaction.Record { return nil })(r))
}

//Personal.AI order the ending
