// Package reconciler rewrites a sentence's token rows after a text edit
// while keeping the identity of tokens that are still "the same word", so
// annotations, idioms and notes stay attached where they belong.
package reconciler

import "wordhord/internal/domain"

// Binding ties a surviving old token to its final position. Surface is the
// new surface, which may differ from the stored one.
type Binding struct {
	Token    *domain.Token
	Position int
	Surface  string
}

// Creation describes a token row to be made for a surface nothing matched.
type Creation struct {
	Position int
	Surface  string
}

// Plan is the pure outcome of matching old tokens against new surfaces,
// computed before anything touches storage.
type Plan struct {
	Kept    []Binding
	Created []Creation
	Deleted []*domain.Token
}

// BuildPlan matches old tokens against the new surfaces in three passes.
// old must be position-ordered with contiguous 0-based positions.
//
// Pass 1 binds tokens whose position and surface both still match, which
// covers the common no-structural-change edit in one sweep. Pass 2 rebinds
// leftover surfaces to an unbound old token with the same surface, taking
// the candidate whose original position is nearest (ties to the lower
// position) so annotations do not teleport between repeated words. Pass 3
// treats a leftover surface at an unbound old token's position as an
// in-place respelling and keeps that token, so fixing a typo keeps its
// annotation. Anything still unbound afterwards is created or deleted.
func BuildPlan(old []*domain.Token, surfaces []string) Plan {
	n := len(surfaces)
	bound := make([]*domain.Token, n)
	used := make(map[int64]bool, len(old))

	for _, ot := range old {
		if ot.Position < n && surfaces[ot.Position] == ot.Surface {
			bound[ot.Position] = ot
			used[ot.ID] = true
		}
	}

	for i := 0; i < n; i++ {
		if bound[i] != nil {
			continue
		}
		var best *domain.Token
		bestDist := 0
		for _, ot := range old {
			if used[ot.ID] || ot.Surface != surfaces[i] {
				continue
			}
			d := ot.Position - i
			if d < 0 {
				d = -d
			}
			if best == nil || d < bestDist {
				best = ot
				bestDist = d
			}
		}
		if best != nil {
			bound[i] = best
			used[best.ID] = true
		}
	}

	for _, ot := range old {
		if used[ot.ID] || ot.Position >= n || bound[ot.Position] != nil {
			continue
		}
		bound[ot.Position] = ot
		used[ot.ID] = true
	}

	var plan Plan
	for i := 0; i < n; i++ {
		if t := bound[i]; t != nil {
			plan.Kept = append(plan.Kept, Binding{Token: t, Position: i, Surface: surfaces[i]})
		} else {
			plan.Created = append(plan.Created, Creation{Position: i, Surface: surfaces[i]})
		}
	}
	for _, ot := range old {
		if !used[ot.ID] {
			plan.Deleted = append(plan.Deleted, ot)
		}
	}
	return plan
}
