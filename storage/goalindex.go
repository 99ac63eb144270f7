package storage

import (
	"sort"
	"strings"
	"sync"

	"github.com/armon/go-radix"
)

// goalIndex is an in-memory prefix index over plan goals. Keys are
// normalized goals, values are the plan IDs sharing that goal. The
// index mirrors the plans table and is rebuilt from it on open.
type goalIndex struct {
	mu   sync.RWMutex
	tree *radix.Tree
}

func newGoalIndex() *goalIndex {
	return &goalIndex{tree: radix.New()}
}

func goalKey(goal string) string {
	return strings.ToLower(strings.TrimSpace(goal))
}

func (g *goalIndex) Insert(goal string, id int64) {
	key := goalKey(goal)
	if key == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var ids []int64
	if existing, ok := g.tree.Get(key); ok {
		ids = existing.([]int64)
	}
	g.tree.Insert(key, append(ids, id))
}

func (g *goalIndex) Remove(goal string, id int64) {
	key := goalKey(goal)

	g.mu.Lock()
	defer g.mu.Unlock()

	existing, ok := g.tree.Get(key)
	if !ok {
		return
	}

	ids := existing.([]int64)
	kept := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			kept = append(kept, candidate)
		}
	}

	if len(kept) == 0 {
		g.tree.Delete(key)
		return
	}
	g.tree.Insert(key, kept)
}

// Search returns the IDs of all plans whose goal starts with the given
// prefix, newest (highest ID) first.
func (g *goalIndex) Search(prefix string) []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ids []int64
	g.tree.WalkPrefix(goalKey(prefix), func(key string, value interface{}) bool {
		ids = append(ids, value.([]int64)...)
		return false
	})

	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}

func (g *goalIndex) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tree.Len()
}
