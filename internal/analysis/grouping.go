package analysis

import (
	"slices"

	"optiscope/domain/optimization"
)

// Group collects the items sharing one key
type Group[K comparable, V any] struct {
	Key   K
	Items []V
}

// GroupBy partitions items by key. Groups are returned in ascending key order according to
// compare; items inside a group keep their input order.
func GroupBy[K comparable, V any](items []V, key func(V) K, compare func(a, b K) int) []Group[K, V] {
	index := make(map[K]int)
	groups := make([]Group[K, V], 0)
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, V]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	slices.SortStableFunc(groups, func(a, b Group[K, V]) int { return compare(a.Key, b.Key) })
	return groups
}

// observation pairs a variable value with the run's profit
type observation struct {
	value  optimization.Value
	profit float64
}

func groupObservations(obs []observation) []Group[optimization.Value, observation] {
	return GroupBy(obs,
		func(o observation) optimization.Value { return o.value },
		func(a, b optimization.Value) int { return a.Compare(b) },
	)
}
