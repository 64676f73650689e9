package rl

import (
	"github.com/zeu5/subgoal-rl/explore"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/policies"
)

type ReconcileStats struct {
	Added   int
	Removed int
}

func (r ReconcileStats) Changed() bool {
	return r.Added+r.Removed > 0
}

// Reconcile brings the macro options of the store from the prev subgoals to
// next. New members get an option seeded with the subgoal's best value,
// members that left lose theirs. forget, when set, sees every removed
// option.
func Reconcile(store *policies.Store, prev, next explore.Subgoals, forget func(*policies.Option)) ReconcileStats {
	stats := ReconcileStats{}
	remove := func(c, subgoal grid.Coord) {
		if o := store.RemoveOption(c, subgoal); o != nil {
			stats.Removed += 1
			if forget != nil {
				forget(o)
			}
		}
	}
	add := func(c, subgoal grid.Coord) {
		if store.AddOption(c, subgoal, store.BestValue(subgoal, policies.Base)) {
			stats.Added += 1
		}
	}

	for _, subgoal := range next.Keys() {
		members := next[subgoal]
		old, existed := prev[subgoal]
		for _, c := range members {
			if !existed || !contains(old, c) {
				add(c, subgoal)
			}
		}
		if existed {
			for _, c := range old {
				if !contains(members, c) {
					remove(c, subgoal)
				}
			}
		}
	}
	for _, subgoal := range prev.Keys() {
		if _, ok := next[subgoal]; ok {
			continue
		}
		for _, c := range prev[subgoal] {
			remove(c, subgoal)
		}
	}
	return stats
}

func contains(cs []grid.Coord, c grid.Coord) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}
