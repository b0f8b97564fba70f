package reach

import "github.com/trezcool/repostnet/core/member"

// Selection is an ordered set of supporters (insertion order = selection order).
// CumulativeReach and BandStatus are derived from Members and recomputed by every
// function returning a Selection; a Selection is never mutated in place.
type Selection struct {
	Target          Target          `json:"target"`
	Members         []member.Member `json:"members"`
	CumulativeReach int             `json:"cumulative_reach"`
	BandStatus      BandStatus      `json:"band_status"`
}

// NewSelection builds a Selection out of members, keeping the first occurrence of each ID.
func NewSelection(target Target, members ...member.Member) Selection {
	sel := Selection{Target: target, Members: make([]member.Member, 0, len(members))}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		sel.Members = append(sel.Members, m)
	}
	return sel.recompute()
}

func (sel Selection) recompute() Selection {
	var total int
	for _, m := range sel.Members {
		total += m.Followers
	}
	sel.CumulativeReach = total
	sel.BandStatus = sel.Target.Status(total)
	return sel
}

func (sel Selection) Len() int    { return len(sel.Members) }
func (sel Selection) Empty() bool { return len(sel.Members) == 0 }

func (sel Selection) IDs() []string {
	ids := make([]string, 0, len(sel.Members))
	for _, m := range sel.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

func (sel Selection) Contains(id string) bool {
	for _, m := range sel.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Add appends m to the selection. Adding a present member is a no-op.
func Add(sel Selection, m member.Member) Selection {
	if sel.Contains(m.ID) {
		return sel.clone().recompute()
	}
	next := sel.clone()
	next.Members = append(next.Members, m)
	return next.recompute()
}

// Remove drops the member with the given ID. Removing an absent member is a no-op.
func Remove(sel Selection, id string) Selection {
	next := sel.clone()
	next.Members = next.Members[:0]
	for _, m := range sel.Members {
		if m.ID != id {
			next.Members = append(next.Members, m)
		}
	}
	return next.recompute()
}

// Toggle removes m if it is selected, adds it otherwise.
func Toggle(sel Selection, m member.Member) Selection {
	if sel.Contains(m.ID) {
		return Remove(sel, m.ID)
	}
	return Add(sel, m)
}

// WithTarget returns sel re-evaluated against another target.
func WithTarget(sel Selection, target Target) Selection {
	next := sel.clone()
	next.Target = target
	return next.recompute()
}

func (sel Selection) clone() Selection {
	members := make([]member.Member, len(sel.Members), len(sel.Members)+1)
	copy(members, sel.Members)
	sel.Members = members
	return sel
}
