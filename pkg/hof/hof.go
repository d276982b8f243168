package hof

import (
	"sort"

	"github.com/wildfunctions/equation_evolution/pkg/genome"
)

// HallOfFame keeps copies of the best individuals ever seen, best first.
// Among equal fitnesses the entry inserted first ranks first. Two
// individuals with the same String() are never both archived.
type HallOfFame struct {
	capacity int
	items    []*genome.Individual
}

// New returns an empty archive holding at most capacity individuals.
func New(capacity int) *HallOfFame {
	if capacity < 1 {
		capacity = 1
	}
	return &HallOfFame{capacity: capacity}
}

// Restore rebuilds an archive from previously archived entries, which must
// already be sorted best first.
func Restore(capacity int, items []*genome.Individual) *HallOfFame {
	h := New(capacity)
	for _, ind := range items {
		if len(h.items) == h.capacity {
			break
		}
		h.items = append(h.items, ind.Clone())
	}
	return h
}

// Update offers every evaluated individual of pop to the archive. When full,
// a candidate must be strictly better than the worst entry to get in. It
// reports whether the best entry changed.
func (h *HallOfFame) Update(pop []*genome.Individual) bool {
	var before string
	if len(h.items) > 0 {
		before = h.items[0].String()
	}

	for _, ind := range pop {
		if !ind.Fitness.Valid {
			continue
		}
		if len(h.items) == h.capacity && !ind.Fitness.Better(&h.items[len(h.items)-1].Fitness) {
			continue
		}
		if h.contains(ind) {
			continue
		}
		if len(h.items) == h.capacity {
			h.items = h.items[:len(h.items)-1]
		}
		h.insert(ind.Clone())
	}

	return len(h.items) > 0 && h.items[0].String() != before
}

func (h *HallOfFame) contains(ind *genome.Individual) bool {
	s := ind.String()
	for _, it := range h.items {
		if it.String() == s {
			return true
		}
	}
	return false
}

// insert places ind after every entry that is at least as good.
func (h *HallOfFame) insert(ind *genome.Individual) {
	i := sort.Search(len(h.items), func(i int) bool {
		return ind.Fitness.Better(&h.items[i].Fitness)
	})
	h.items = append(h.items, nil)
	copy(h.items[i+1:], h.items[i:])
	h.items[i] = ind
}

// Best returns the top entry, or nil when the archive is empty.
func (h *HallOfFame) Best() *genome.Individual {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

// Items returns the archived individuals, best first. The slice must not be
// modified.
func (h *HallOfFame) Items() []*genome.Individual {
	return h.items
}

func (h *HallOfFame) Len() int      { return len(h.items) }
func (h *HallOfFame) Capacity() int { return h.capacity }
