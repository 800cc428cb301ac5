package molecule

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/testutil"
)

// MockRemoteCache is a mock implementation of RemoteCache.
type MockRemoteCache struct {
	mock.Mock
}

func (m *MockRemoteCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockRemoteCache) Set(ctx context.Context, key, canonical string) error {
	args := m.Called(ctx, key, canonical)
	return args.Error(0)
}

func newTestNormalizer(t *testing.T, remote RemoteCache) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(NormalizerOptions{Isomeric: true, CacheSize: 16}, remote, nil)
	require.NoError(t, err)
	return n
}

func TestNormalizer_CachesResults(t *testing.T) {
	n := newTestNormalizer(t, nil)
	ctx := context.Background()

	a, err := n.Normalize(ctx, "OCC")
	require.NoError(t, err)
	b, err := n.Normalize(ctx, "OCC")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, "CCO", a.SMILES())
	assert.Equal(t, NormalizerStats{Hits: 1, Misses: 1}, n.Stats())
	assert.True(t, n.Isomeric())
}

func TestNormalizer_CachesFailures(t *testing.T) {
	n := newTestNormalizer(t, nil)
	ctx := context.Background()

	_, err1 := n.Normalize(ctx, "CC(=O)OH")
	_, err2 := n.Normalize(ctx, "CC(=O)OH")
	require.Error(t, err1)
	assert.Equal(t, err1, err2)

	stats := n.Stats()
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 2, stats.Failures)
}

func TestNormalizer_RemoteHit(t *testing.T) {
	remote := new(MockRemoteCache)
	remote.On("Get", mock.Anything, "iso:OCC").Return("CCO", true, nil)

	n := newTestNormalizer(t, remote)
	s, err := n.Canonicalize(context.Background(), "OCC")
	require.NoError(t, err)
	assert.Equal(t, "CCO", s)
	assert.EqualValues(t, 1, n.Stats().RemoteHits)
	remote.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestNormalizer_RemoteMissStoresResult(t *testing.T) {
	remote := new(MockRemoteCache)
	remote.On("Get", mock.Anything, "iso:OC(=O)C").Return("", false, nil)
	remote.On("Set", mock.Anything, "iso:OC(=O)C", "CC(=O)O").Return(nil)

	n := newTestNormalizer(t, remote)
	s, err := n.Canonicalize(context.Background(), "OC(=O)C")
	require.NoError(t, err)
	assert.Equal(t, "CC(=O)O", s)
	remote.AssertExpectations(t)
}

func TestNormalizer_StaleRemoteEntryIgnored(t *testing.T) {
	remote := new(MockRemoteCache)
	remote.On("Get", mock.Anything, "iso:OCC").Return("OCC", true, nil)
	remote.On("Set", mock.Anything, "iso:OCC", "CCO").Return(nil)

	n := newTestNormalizer(t, remote)
	s, err := n.Canonicalize(context.Background(), "OCC")
	require.NoError(t, err)
	assert.Equal(t, "CCO", s)
	assert.Zero(t, n.Stats().RemoteHits)
}

func TestNormalizer_RemoteErrorsAreLogged(t *testing.T) {
	remote := new(MockRemoteCache)
	remote.On("Get", mock.Anything, "flat:CCO").Return("", false, errors.New("connection refused"))
	remote.On("Set", mock.Anything, "flat:CCO", "CCO").Return(errors.New("connection refused"))

	logger := testutil.NewMockLogger()
	n, err := NewNormalizer(NormalizerOptions{Isomeric: false}, remote, logger)
	require.NoError(t, err)

	s, err := n.Canonicalize(context.Background(), "CCO")
	require.NoError(t, err)
	assert.Equal(t, "CCO", s)
	assert.True(t, logger.HasMessage("warn", "remote structure cache read failed"))
	assert.True(t, logger.HasMessage("warn", "remote structure cache write failed"))
}

func TestNormalizer_ConcurrentUse(t *testing.T) {
	n := newTestNormalizer(t, nil)
	inputs := []string{"OCC", "C(C)O", "c1ccccc1", "C1=CC=CC=C1", "CC(=O)O"}

	var wg sync.WaitGroup
	results := make([]string, 40)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := n.Canonicalize(context.Background(), inputs[i%len(inputs)])
			if err == nil {
				results[i] = s
			}
		}(i)
	}
	wg.Wait()

	for i, s := range results {
		want, err := Canonicalize(inputs[i%len(inputs)], true)
		require.NoError(t, err)
		assert.Equal(t, want, s)
	}
}

//Personal.AI order the ending
