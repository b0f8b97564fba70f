package reach

import "github.com/trezcool/repostnet/core/member"

// SelectForTarget greedily picks supporters from pool, biggest reach first, until the
// cumulative reach gets to target.Min or maxCount members are picked.
//
// The first candidate is always accepted, so a non-empty pool never yields an empty
// selection. Any later candidate that would push the reach above target.Max is skipped.
// When every candidate alone exceeds target.Max, the selection holds the first one and
// is over target.
func SelectForTarget(pool []member.Member, target Target, maxCount int) Selection {
	if maxCount < 1 {
		maxCount = 1
	}
	sorted := make([]member.Member, len(pool))
	copy(sorted, pool)
	member.SortByReach(sorted)

	picked := make([]member.Member, 0, maxCount)
	seen := make(map[string]struct{}, maxCount)
	var cumulative int
	for _, m := range sorted {
		if len(picked) > 0 && cumulative >= target.Min {
			break
		}
		if len(picked) >= maxCount {
			break
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		if len(picked) > 0 && cumulative+m.Followers > target.Max {
			continue
		}
		picked = append(picked, m)
		seen[m.ID] = struct{}{}
		cumulative += m.Followers
	}
	return NewSelection(target, picked...)
}
