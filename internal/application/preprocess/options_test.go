package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

func validOptions() Options {
	o := DefaultOptions()
	o.Inputs = []string{"in.txt"}
	o.OutputDir = "out"
	return o
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, []int{3}, o.Levels)
	assert.Equal(t, 1, o.MaxProducts)
	assert.Equal(t, 4, o.MinAtomCount)
	assert.Equal(t, AtomCountProducts, o.AtomCountScope)
	assert.Equal(t, ExclusionDropRecord, o.ExclusionMode)
	assert.True(t, o.RemovePrecursors)
	assert.False(t, o.Bidirectional)
	assert.False(t, o.SplitProducts)
	assert.Positive(t, o.workers())
	assert.NoError(t, validOptions().Validate())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no inputs", func(o *Options) { o.Inputs = nil }},
		{"no output", func(o *Options) { o.OutputDir = "" }},
		{"no levels", func(o *Options) { o.Levels = nil }},
		{"level zero", func(o *Options) { o.Levels = []int{0} }},
		{"level five", func(o *Options) { o.Levels = []int{5} }},
		{"duplicate level", func(o *Options) { o.Levels = []int{2, 2} }},
		{"negative max products", func(o *Options) { o.MaxProducts = -1 }},
		{"negative atom count", func(o *Options) { o.MinAtomCount = -1 }},
		{"bad mode", func(o *Options) { o.ExclusionMode = "strip" }},
		{"bad scope", func(o *Options) { o.AtomCountScope = "reactants" }},
		{"ratios", func(o *Options) { o.ValidRatio, o.TestRatio = 0.6, 0.5 }},
		{"workers", func(o *Options) { o.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.mutate(&o)
			err := o.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
		})
	}
}

func TestOptions_Derived(t *testing.T) {
	o := validOptions()
	o.Salt = "s"
	assert.Equal(t, SplitRatios{Valid: 0.05, Test: 0.05, Salt: "s"}, o.Ratios())
	assert.Equal(t, FilterOptions{Mode: ExclusionDropRecord, RemovePrecursors: true, MinAtomCount: 4, AtomCountScope: AtomCountProducts}, o.FilterOptions())

	o.Workers = 3
	assert.Equal(t, 3, o.workers())
}

//Personal.AI order the ending
