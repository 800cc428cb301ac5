package molecule

import (
	"context"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Normalizer
// ─────────────────────────────────────────────────────────────────────────────

// DefaultCacheSize bounds the in-process canonicalisation cache.
const DefaultCacheSize = 100_000

// RemoteCache is an optional shared store of canonical SMILES keyed by the
// raw input.  Implementations must be safe for concurrent use.
type RemoteCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, canonical string) error
}

// NormalizerOptions configures a Normalizer.
type NormalizerOptions struct {
	// Isomeric keeps stereochemistry and isotopes in canonical output.
	Isomeric bool
	// CacheSize is the LRU capacity; values <= 0 select DefaultCacheSize.
	CacheSize int
}

// NormalizerStats is a snapshot of cache behaviour.
type NormalizerStats struct {
	Hits       int64
	Misses     int64
	RemoteHits int64
	Failures   int64
}

type cacheEntry struct {
	mol *Molecule
	err error
}

// Normalizer canonicalises SMILES with memoisation.  It is safe for
// concurrent use by pipeline workers.
type Normalizer struct {
	isomeric bool
	local    *lru.Cache[string, cacheEntry]
	remote   RemoteCache
	group    singleflight.Group
	logger   logging.Logger

	hits       atomic.Int64
	misses     atomic.Int64
	remoteHits atomic.Int64
	failures   atomic.Int64
}

// NewNormalizer builds a Normalizer.  remote may be nil.
func NewNormalizer(opts NormalizerOptions, remote RemoteCache, logger logging.Logger) (*Normalizer, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	local, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Normalizer{
		isomeric: opts.Isomeric,
		local:    local,
		remote:   remote,
		logger:   logger.Named("normalizer"),
	}, nil
}

// Isomeric reports whether stereochemistry is preserved.
func (n *Normalizer) Isomeric() bool { return n.isomeric }

// Normalize parses smiles and returns its canonical Molecule.  Parse failures
// are cached as well, so a bad structure is only parsed once.
func (n *Normalizer) Normalize(ctx context.Context, smiles string) (*Molecule, error) {
	key := strings.TrimSpace(smiles)
	if e, ok := n.local.Get(key); ok {
		n.hits.Add(1)
		if e.err != nil {
			n.failures.Add(1)
		}
		return e.mol, e.err
	}
	n.misses.Add(1)

	v, _, _ := n.group.Do(key, func() (interface{}, error) {
		e := n.resolve(ctx, key)
		n.local.Add(key, e)
		return e, nil
	})
	e := v.(cacheEntry)
	if e.err != nil {
		n.failures.Add(1)
	}
	return e.mol, e.err
}

// Canonicalize returns only the canonical string.
func (n *Normalizer) Canonicalize(ctx context.Context, smiles string) (string, error) {
	m, err := n.Normalize(ctx, smiles)
	if err != nil {
		return "", err
	}
	return m.SMILES(), nil
}

// Stats returns cache counters.
func (n *Normalizer) Stats() NormalizerStats {
	return NormalizerStats{
		Hits:       n.hits.Load(),
		Misses:     n.misses.Load(),
		RemoteHits: n.remoteHits.Load(),
		Failures:   n.failures.Load(),
	}
}

func (n *Normalizer) remoteKey(key string) string {
	if n.isomeric {
		return "iso:" + key
	}
	return "flat:" + key
}

func (n *Normalizer) resolve(ctx context.Context, key string) cacheEntry {
	if n.remote != nil {
		canonical, ok, err := n.remote.Get(ctx, n.remoteKey(key))
		switch {
		case err != nil:
			n.logger.Warn("remote structure cache read failed", logging.Err(err))
		case ok:
			// The canonical form is a fixed point, so parsing it rebuilds an
			// identical molecule.
			if m, perr := Parse(canonical, n.isomeric); perr == nil && m.smiles == canonical {
				n.remoteHits.Add(1)
				return cacheEntry{mol: m}
			}
			n.logger.Debug("discarding stale remote entry", logging.String("smiles", key))
		}
	}

	m, err := Parse(key, n.isomeric)
	if err != nil {
		n.logger.Debug("unparseable structure", logging.String("smiles", key), logging.Err(err))
		return cacheEntry{err: err}
	}
	if n.remote != nil {
		if err := n.remote.Set(ctx, n.remoteKey(key), m.smiles); err != nil {
			n.logger.Warn("remote structure cache write failed", logging.Err(err))
		}
	}
	return cacheEntry{mol: m}
}

//Personal.AI order the ending
