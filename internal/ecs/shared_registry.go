package ecs

import (
	"sort"

	"go.uber.org/zap"
)

// SharedRegistry is the shared-ownership registry variant (spec §4.F
// "Validity": "the shared-pointer variant of the registry... guarantees
// that captured pool snapshots survive registry edits"), grounded on
// the original's RegistrySharedPtr: the same GenericRegistry, wired with
// pool ownership traits that hand out shared pointers instead of unique
// ones.
//
// Go pointers are already reference-counted by the garbage collector, so
// a pool a View has captured survives the registry being dropped for
// free — embedding *Registry gets every CRUD operation that property at
// no extra cost. Grouping is one place the plain Registry breaks that
// guarantee: GroupEntities reorganizes a pool's backing FlatMap in
// place, so a View constructed before the call sees the reorganized data
// (or, worse, a data race under concurrent use). SharedRegistry's
// GroupEntitiesShared instead builds the reorganized pool as a new
// object and swaps it into the pool directory, leaving any previously
// captured pool pointer — and the View built from it — untouched.
// Every other operation is the embedded Registry's: RemoveAllOf still
// empties the pool object in place before removing it from the
// directory, so a View built before it iterates an empty pool.
type SharedRegistry struct {
	*Registry
}

// NewSharedRegistry creates an empty shared-ownership registry. log may
// be nil.
func NewSharedRegistry(log *zap.Logger, opts RegistryOptions) *SharedRegistry {
	return &SharedRegistry{Registry: NewRegistry(log, opts)}
}

// GroupEntitiesShared is GroupEntities (registry.go), but copy-on-write:
// it builds the grouped pool as a fresh object and only then replaces
// the directory entry, so Views constructed from the pool before this
// call keep iterating the pre-group snapshot instead of observing the
// reorganization mid-flight.
func GroupEntitiesShared[T any](sr *SharedRegistry, pred func(Entity, *T) bool, variant ...ComponentTypeID) bool {
	v := variantOf(variant)
	pool, ok := getPool[T](sr.Registry, v)
	if !ok {
		return false
	}

	before := pool.data.Len()
	fresh := newTypedPool[T](pool.key, sr.log, sr.tuning)
	if !groupInto(fresh.data, pool.data, pred) {
		return false
	}

	idx, _ := sr.pools.Find(NewKey[T](v))
	sr.pools.SetAt(idx, fresh)
	sr.log.Debug("grouped component pool (copy-on-write)",
		zap.Uint64("type_id", uint64(pool.key.TypeID)),
		zap.Int("pool_size", before))
	return true
}

// groupInto runs the grouping algorithm (spec §4.E "group") reading from
// src and writing the reorganized order into dst; src is only read, so it
// stays unchanged unless it is the same map as dst (as in GroupEntities).
// Returns false (dst left unchanged) if no entry in src satisfies pred.
func groupInto[T any](dst, src *FlatMap[Entity, T], pred func(Entity, *T) bool) bool {
	n := src.Len()

	start := -1
	for i := 0; i < n; i++ {
		k, v := src.At(i)
		if pred(k, &v) {
			start = i
			break
		}
	}
	if start == -1 {
		return false
	}

	matchedSet := make(map[Entity]bool)
	var matched []groupEntry[T]
	for i := start; i < n; i++ {
		k, v := src.At(i)
		if pred(k, &v) {
			matched = append(matched, groupEntry[T]{e: k, v: v})
			matchedSet[k] = true
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].e < matched[j].e })

	keys := make([]Entity, 0, n)
	values := make([]T, 0, n)
	for i := 0; i < start; i++ {
		k, v := src.At(i)
		keys = append(keys, k)
		values = append(values, v)
	}
	for _, m := range matched {
		keys = append(keys, m.e)
		values = append(values, m.v)
	}
	for i := start; i < n; i++ {
		k, v := src.At(i)
		if matchedSet[k] {
			continue
		}
		keys = append(keys, k)
		values = append(values, v)
	}

	dst.rebuildFrom(keys, values)
	return true
}
