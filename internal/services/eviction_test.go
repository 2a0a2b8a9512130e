package services

import "testing"

func TestEvictionPolicy_UnderBudgetNoEviction(t *testing.T) {
	p := DefaultEvictionPolicy()

	// 100 MiB / 5 KiB = 20480 entries fit exactly.
	d := p.Decide(10240, 10240)
	if d.ShouldEvict {
		t.Fatalf("at-budget cache must not evict: %+v", d)
	}
	if d.Movies != 0 || d.TvShows != 0 {
		t.Fatalf("zero-value decision expected: %+v", d)
	}
}

func TestEvictionPolicy_OverBudgetShedsTwentyPercentPerKind(t *testing.T) {
	p := DefaultEvictionPolicy()

	// 40k entries x 5 KiB = 200 MiB, double the budget.
	d := p.Decide(30000, 10000)
	if !d.ShouldEvict {
		t.Fatal("over-budget cache must evict")
	}
	if d.Movies != 6000 {
		t.Fatalf("movies: got %d, want 6000", d.Movies)
	}
	if d.TvShows != 2000 {
		t.Fatalf("tv shows: got %d, want 2000", d.TvShows)
	}
}

func TestEvictionPolicy_SmallKindRoundsToZero(t *testing.T) {
	p := EvictionPolicy{MaxTotalBytes: 10, MovieEntryBytes: 100, TvShowEntryBytes: 100}

	// Over budget, but 4 rows x 20% floors to 0: that kind is skipped.
	d := p.Decide(4, 4)
	if !d.ShouldEvict {
		t.Fatal("expected eviction decision")
	}
	if d.Movies != 0 || d.TvShows != 0 {
		t.Fatalf("counts below five must floor to zero: %+v", d)
	}
}

func TestEvictionPolicy_EstimateBytes(t *testing.T) {
	p := EvictionPolicy{MaxTotalBytes: 1, MovieEntryBytes: 10, TvShowEntryBytes: 3}
	if got := p.EstimateBytes(7, 5); got != 85 {
		t.Fatalf("estimate: got %d, want 85", got)
	}
	if got := p.EstimateBytes(0, 0); got != 0 {
		t.Fatalf("empty estimate: got %d, want 0", got)
	}
}
