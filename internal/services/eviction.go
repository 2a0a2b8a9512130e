// Package services – eviction policy.
//
// The policy is a pure decision function over per-kind row counts and fixed
// per-entry size estimates. It holds no state between calls and performs no
// I/O; CacheService re-evaluates it from scratch after every write.
package services

// Default sizing: 100 MiB total budget, 5 KiB estimated per cached entry of
// either kind. The estimate is a count-based proxy for footprint, not a
// measurement of serialized payloads.
const (
	DefaultMaxCacheBytes  = 100 * 1024 * 1024
	DefaultEntryBytes     = 5 * 1024
	evictFractionPerMille = 200 // 20%, in integer arithmetic
)

// EvictionPolicy decides whether the cache is over budget and how many rows
// each kind should shed.
type EvictionPolicy struct {
	// MaxTotalBytes caps the estimated total footprint across all kinds.
	MaxTotalBytes int64
	// MovieEntryBytes and TvShowEntryBytes are the per-entry estimates.
	MovieEntryBytes  int64
	TvShowEntryBytes int64
}

// DefaultEvictionPolicy returns the stock 100 MiB / 5 KiB policy.
func DefaultEvictionPolicy() EvictionPolicy {
	return EvictionPolicy{
		MaxTotalBytes:    DefaultMaxCacheBytes,
		MovieEntryBytes:  DefaultEntryBytes,
		TvShowEntryBytes: DefaultEntryBytes,
	}
}

// EvictionDecision is the derived outcome of one policy evaluation.
// A zero count for a kind means that kind is skipped entirely; deletion of
// zero entries is never attempted.
type EvictionDecision struct {
	ShouldEvict bool
	Movies      int
	TvShows     int
}

// EstimateBytes returns the count-based footprint estimate:
// Σ count(kind) × perEntryEstimate(kind).
func (p EvictionPolicy) EstimateBytes(movieCount, tvShowCount int64) int64 {
	return movieCount*p.MovieEntryBytes + tvShowCount*p.TvShowEntryBytes
}

// Decide evaluates the policy against current counts.
//
// When the estimate exceeds the budget, each kind independently sheds 20% of
// its rows (floor), regardless of which kind pushed the total over the
// limit. Kinds with fewer than 5 rows round down to zero and are skipped.
func (p EvictionPolicy) Decide(movieCount, tvShowCount int64) EvictionDecision {
	if p.EstimateBytes(movieCount, tvShowCount) <= p.MaxTotalBytes {
		return EvictionDecision{}
	}
	return EvictionDecision{
		ShouldEvict: true,
		Movies:      int(movieCount * evictFractionPerMille / 1000),
		TvShows:     int(tvShowCount * evictFractionPerMille / 1000),
	}
}
