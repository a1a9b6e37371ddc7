package ecs

import "go.uber.org/zap"

// FlatMap is the packed, insertion-ordered backing store for typed pools
// (spec §4.C): parallel keys/values slices in insertion order, indexed by
// an auxiliary open-addressing map (hashmap.go) for O(1) lookup.
type FlatMap[K comparable, V any] struct {
	keys   []K
	values []V
	index  *openMap[K, int]
	hashFn func(K) uint64
	tuning mapTuning
	log    *zap.Logger
}

// NewFlatMap creates an empty FlatMap. hashFn derives the probe position
// for the auxiliary index from a key; tuning and log are forwarded to the
// auxiliary map and to every index rebuilt later by Clear/rebuildFrom.
func NewFlatMap[K comparable, V any](hashFn func(K) uint64, tuning mapTuning, log *zap.Logger) *FlatMap[K, V] {
	if log == nil {
		log = zap.NewNop()
	}
	return &FlatMap[K, V]{
		index:  newOpenMap[K, int](hashFn, tuning, log),
		hashFn: hashFn,
		tuning: tuning,
		log:    log,
	}
}

// Len returns the number of live entries.
func (f *FlatMap[K, V]) Len() int { return len(f.keys) }

// Reserve pre-grows the backing slices to hold at least n entries.
func (f *FlatMap[K, V]) Reserve(n int) {
	if cap(f.keys) >= n {
		return
	}
	keys := make([]K, len(f.keys), n)
	copy(keys, f.keys)
	f.keys = keys

	values := make([]V, len(f.values), n)
	copy(values, f.values)
	f.values = values
}

// TryEmplace appends (k, v) if k is absent, returning its packed position
// and true. If k already exists, it returns the existing position and
// false without mutating the stored value.
func (f *FlatMap[K, V]) TryEmplace(k K, v V) (int, bool) {
	if pos, ok := f.Find(k); ok {
		return pos, false
	}
	return f.append(k, v), true
}

// Set overwrites the value for an existing key, or appends a new pair.
// Returns true when a new entry was created, false when an existing one
// was overwritten.
func (f *FlatMap[K, V]) Set(k K, v V) bool {
	if pos, ok := f.Find(k); ok {
		f.values[pos] = v
		return false
	}
	f.append(k, v)
	return true
}

func (f *FlatMap[K, V]) append(k K, v V) int {
	pos := len(f.keys)
	f.keys = append(f.keys, k)
	f.values = append(f.values, v)
	f.index.TryEmplace(k, pos)
	return pos
}

// Find returns the packed position of k, or (-1, false).
func (f *FlatMap[K, V]) Find(k K) (int, bool) {
	slotIdx, ok := f.index.Find(k)
	if !ok {
		return -1, false
	}
	_, pos := f.index.At(slotIdx)
	return pos, true
}

// At returns the key/value pair stored at a packed position.
func (f *FlatMap[K, V]) At(pos int) (K, V) { return f.keys[pos], f.values[pos] }

// ValueAt returns a mutable pointer to the value stored at a packed
// position, kept valid until the next structural mutation (spec invariant
// 4).
func (f *FlatMap[K, V]) ValueAt(pos int) *V { return &f.values[pos] }

// Erase removes k, swapping the trailing element into its slot for O(1)
// amortized removal (spec §4.C) — this does not preserve insertion order
// for the element that got swapped in. drop, if non-nil, runs on the
// removed value before the slot is overwritten. Reports whether k was
// present.
func (f *FlatMap[K, V]) Erase(k K, drop func(*V)) bool {
	pos, ok := f.Find(k)
	if !ok {
		return false
	}
	if drop != nil {
		drop(&f.values[pos])
	}

	last := len(f.keys) - 1
	if pos != last {
		movedKey := f.keys[last]
		f.keys[pos] = movedKey
		f.values[pos] = f.values[last]
		if slotIdx, ok := f.index.Find(movedKey); ok {
			f.index.SetAt(slotIdx, pos)
		}
	}
	f.keys = f.keys[:last]
	f.values = f.values[:last]
	f.index.Erase(k)
	return true
}

// Clear empties the map, invoking drop (if non-nil) on every surviving
// value first.
func (f *FlatMap[K, V]) Clear(drop func(*V)) {
	if drop != nil {
		for i := range f.values {
			drop(&f.values[i])
		}
	}
	f.keys = f.keys[:0]
	f.values = f.values[:0]
	f.index = newOpenMap[K, int](f.hashFn, f.tuning, f.log)
}

// flatMapIter is a literal paired iterator over a FlatMap's parallel
// keys/values slices (spec §4.C: "paired iterators over keys and values
// advancing in lockstep"). keyPos and valPos always move together.
type flatMapIter[K comparable, V any] struct {
	f      *FlatMap[K, V]
	keyPos int
	valPos int
}

func (f *FlatMap[K, V]) begin() flatMapIter[K, V] {
	return flatMapIter[K, V]{f: f, keyPos: 0, valPos: 0}
}

func (f *FlatMap[K, V]) end() flatMapIter[K, V] {
	return flatMapIter[K, V]{f: f, keyPos: len(f.keys), valPos: len(f.values)}
}

func (it flatMapIter[K, V]) next() flatMapIter[K, V] {
	return flatMapIter[K, V]{f: it.f, keyPos: it.keyPos + 1, valPos: it.valPos + 1}
}

func (it flatMapIter[K, V]) key() K    { return it.f.keys[it.keyPos] }
func (it flatMapIter[K, V]) value() *V { return &it.f.values[it.valPos] }

// Equal reports whether it and other denote the same position: both the
// key cursor and the value cursor must agree. The original's paired
// iterator compared them with `lhs_a == rhs_a || lhs_b == rhs_b`, which
// spec §9 Open Question #1 calls out as an apparent bug — a partial match
// should not count as equal. Equal requires both, not either.
func (it flatMapIter[K, V]) Equal(other flatMapIter[K, V]) bool {
	return it.keyPos == other.keyPos && it.valPos == other.valPos
}

// Each calls fn with (key, value-pointer) for every packed entry, in
// current packed order, stopping early if fn returns false. It walks the
// map with a flatMapIter, terminating via Equal against end() rather than
// an index comparison — the same paired-iterator shape the spec describes
// for find/iteration, with the fixed equality from above.
func (f *FlatMap[K, V]) Each(fn func(K, *V) bool) {
	end := f.end()
	for it := f.begin(); !it.Equal(end); it = it.next() {
		if !fn(it.key(), it.value()) {
			return
		}
	}
}

// rebuildFrom replaces this map's contents with freshly appended
// (key, value) pairs in the given order, without touching drop — used by
// GroupEntities (registry.go) to install the reorganized pool in place.
func (f *FlatMap[K, V]) rebuildFrom(keys []K, values []V) {
	f.keys = keys
	f.values = values
	f.index = newOpenMap[K, int](f.hashFn, f.tuning, f.log)
	for i, k := range keys {
		f.index.TryEmplace(k, i)
	}
}
