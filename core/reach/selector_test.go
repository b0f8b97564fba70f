package reach

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/repostnet/core/member"
)

func mem(id string, followers int) member.Member {
	return member.Member{ID: id, Name: "Member " + id, Followers: followers, Credits: 1, Status: member.StatusActive}
}

func band(min, max int) Target {
	return Target{Reach: (min + max) / 2, Min: min, Max: max}
}

func TestSelectForTarget(t *testing.T) {
	a, b, c := mem("a", 80000), mem("b", 50000), mem("c", 20000)

	tests := []struct {
		name       string
		pool       []member.Member
		target     Target
		maxCount   int
		wantIDs    []string
		wantReach  int
		wantStatus BandStatus
	}{
		{
			name: "skips a candidate overshooting the band", pool: []member.Member{a, b, c}, target: band(90000, 110000), maxCount: 10,
			wantIDs: []string{"a", "c"}, wantReach: 100000, wantStatus: BandInBand,
		},
		{
			name: "single oversized candidate is still selected", pool: []member.Member{mem("a", 200000)}, target: band(90000, 110000), maxCount: 10,
			wantIDs: []string{"a"}, wantReach: 200000, wantStatus: BandOver,
		},
		{
			name: "all oversized: first in reach order", pool: []member.Member{mem("x", 150000), mem("y", 300000)}, target: band(90000, 110000), maxCount: 10,
			wantIDs: []string{"y"}, wantReach: 300000, wantStatus: BandOver,
		},
		{
			name: "empty pool", pool: nil, target: band(90000, 110000), maxCount: 10,
			wantIDs: []string{}, wantReach: 0, wantStatus: BandUnder,
		},
		{
			name: "pool too small stays under", pool: []member.Member{b, c}, target: band(90000, 110000), maxCount: 10,
			wantIDs: []string{"b", "c"}, wantReach: 70000, wantStatus: BandUnder,
		},
		{
			name: "capped by maxCount", pool: []member.Member{mem("p", 10000), mem("q", 10000), mem("r", 10000)}, target: band(90000, 110000), maxCount: 2,
			wantIDs: []string{"p", "q"}, wantReach: 20000, wantStatus: BandUnder,
		},
		{
			name: "maxCount below one picks one", pool: []member.Member{a, b}, target: band(90000, 110000), maxCount: 0,
			wantIDs: []string{"a"}, wantReach: 80000, wantStatus: BandUnder,
		},
		{
			name: "unsorted pool is re-sorted", pool: []member.Member{c, a, b}, target: band(90000, 110000), maxCount: 10,
			wantIDs: []string{"a", "c"}, wantReach: 100000, wantStatus: BandInBand,
		},
		{
			name: "ties broken by ID", pool: []member.Member{mem("n", 50000), mem("m", 50000)}, target: band(45000, 55000), maxCount: 10,
			wantIDs: []string{"m"}, wantReach: 50000, wantStatus: BandInBand,
		},
		{
			name: "duplicates counted once", pool: []member.Member{a, a, c}, target: band(90000, 110000), maxCount: 10,
			wantIDs: []string{"a", "c"}, wantReach: 100000, wantStatus: BandInBand,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectForTarget(tt.pool, tt.target, tt.maxCount)
			if diff := cmp.Diff(tt.wantIDs, got.IDs()); diff != "" {
				t.Errorf("SelectForTarget() IDs mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantReach, got.CumulativeReach)
			assert.Equal(t, tt.wantStatus, got.BandStatus)
		})
	}
}

func TestSelectForTarget_doesNotMutatePool(t *testing.T) {
	pool := []member.Member{mem("c", 20000), mem("a", 80000), mem("b", 50000)}
	orig := make([]member.Member, len(pool))
	copy(orig, pool)

	_ = SelectForTarget(pool, band(90000, 110000), 10)
	if diff := cmp.Diff(orig, pool); diff != "" {
		t.Errorf("pool mutated (-want +got):\n%s", diff)
	}
}

func TestSelectForTarget_properties(t *testing.T) {
	// a spread of pools and targets; not random to keep failures reproducible
	var pools [][]member.Member
	for n := 1; n <= 8; n++ {
		pool := make([]member.Member, 0, n)
		for i := 0; i < n; i++ {
			pool = append(pool, mem(fmt.Sprintf("m%02d", i), (i*7919+n*104729)%90000+500))
		}
		pools = append(pools, pool)
	}
	targets := []Target{NewTarget(1000, 0.1, 0), NewTarget(25000, 0.1, 0), NewTarget(100000, 0.2, 0), NewTarget(400000, 0.1, 0)}

	for pi, pool := range pools {
		var total, smallest int
		smallest = -1
		for _, m := range pool {
			total += m.Followers
			if smallest < 0 || m.Followers < smallest {
				smallest = m.Followers
			}
		}
		for ti, target := range targets {
			t.Run(fmt.Sprintf("pool%d/target%d", pi, ti), func(t *testing.T) {
				sel := SelectForTarget(pool, target, 10)
				assert.False(t, sel.Empty(), "non-empty pool must yield a non-empty selection")

				var sum int
				for _, m := range sel.Members {
					sum += m.Followers
				}
				assert.Equal(t, sum, sel.CumulativeReach)

				first := sel.Members[0].Followers
				if target.Min <= total && first <= target.Max {
					assert.NotEqual(t, BandOver, sel.BandStatus)
				}
			})
		}
	}
}
