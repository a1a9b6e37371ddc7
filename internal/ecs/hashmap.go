package ecs

import "go.uber.org/zap"

// slotState tracks the life-cycle of a single openMap slot.
type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstone
)

// openMapPrimes is the fixed prime capacity sequence the map grows
// through (spec §4.B). Past the end of the table, capacity grows by
// doubling (plus one, to stay odd) — the original's "fixed prime
// sequence" is itself finite, and a component database shouldn't have a
// hard ceiling on pool size.
var openMapPrimes = []int{
	5, 11, 23, 47, 97, 197, 397, 797, 1597, 3203, 6421, 12853, 25717,
	51437, 102877, 205759, 411527, 823117, 1646237, 3292489, 6584983,
	13169977, 26339969, 52679969,
}

// defaultMaxLoadFactor triggers a rehash once size/capacity reaches it,
// unless a mapTuning overrides it (SPEC_FULL §2.2's max_load_factor).
const defaultMaxLoadFactor = 0.6

// mapTuning carries the capacity-hint/load-factor knobs RegistryOptions
// exposes (SPEC_FULL §2.2), threaded down into every map this package
// allocates. The zero value reproduces the original fixed defaults:
// smallest prime capacity, 0.6 max load factor.
type mapTuning struct {
	initialCapacityHint int
	maxLoadFactor       float64
}

func (t mapTuning) loadFactor() float64 {
	if t.maxLoadFactor > 0 {
		return t.maxLoadFactor
	}
	return defaultMaxLoadFactor
}

// startPrimeIdx picks the smallest prime in openMapPrimes at least as
// large as the capacity hint, so a caller that knows roughly how many
// entries it'll hold can skip the early rehashes.
func (t mapTuning) startPrimeIdx() int {
	for i, p := range openMapPrimes {
		if p >= t.initialCapacityHint {
			return i
		}
	}
	return len(openMapPrimes) - 1
}

type openMapSlot[K comparable, V any] struct {
	key   K
	value V
	state slotState
}

// openMap is a generic open-addressing hash map with linear probing and
// tombstone deletion (spec §4.B). hashFn derives the probe start index
// from a key; it's supplied by the caller because the spec's keys (Key,
// Entity) each define their own mixing before hashing.
type openMap[K comparable, V any] struct {
	slots         []openMapSlot[K, V]
	size          int
	primeIdx      int
	hashFn        func(K) uint64
	maxLoadFactor float64
	log           *zap.Logger
}

func newOpenMap[K comparable, V any](hashFn func(K) uint64, tuning mapTuning, log *zap.Logger) *openMap[K, V] {
	if log == nil {
		log = zap.NewNop()
	}
	primeIdx := tuning.startPrimeIdx()
	return &openMap[K, V]{
		slots:         make([]openMapSlot[K, V], openMapPrimes[primeIdx]),
		hashFn:        hashFn,
		primeIdx:      primeIdx,
		maxLoadFactor: tuning.loadFactor(),
		log:           log,
	}
}

func (m *openMap[K, V]) Len() int { return m.size }
func (m *openMap[K, V]) Cap() int { return len(m.slots) }

func (m *openMap[K, V]) probeStart(key K) int {
	return int(m.hashFn(key) % uint64(len(m.slots)))
}

// TryEmplace inserts key with value if absent, returning the slot index
// and true on insertion, or the existing slot's index and false if key is
// already present (no mutation on a miss-turned-hit).
func (m *openMap[K, V]) TryEmplace(key K, value V) (int, bool) {
	if float64(m.size+1) >= m.maxLoadFactor*float64(len(m.slots)) {
		m.rehash()
	}
	return m.insert(key, value)
}

// insert performs the probe-and-place without checking the load factor;
// used both by TryEmplace and internally while rehashing.
func (m *openMap[K, V]) insert(key K, value V) (int, bool) {
	idx := m.probeStart(key)
	tombstoneIdx := -1
	for {
		switch m.slots[idx].state {
		case slotEmpty:
			target := idx
			if tombstoneIdx != -1 {
				target = tombstoneIdx
			}
			m.slots[target] = openMapSlot[K, V]{key: key, value: value, state: slotOccupied}
			m.size++
			return target, true
		case slotTombstone:
			if tombstoneIdx == -1 {
				tombstoneIdx = idx
			}
		case slotOccupied:
			if m.slots[idx].key == key {
				return idx, false
			}
		}
		idx = (idx + 1) % len(m.slots)
	}
}

// Find returns the index of key's slot, or (-1, false) if absent. Probing
// stops at the first empty slot; tombstones along the path are skipped,
// so a deleted key never masks a live one that collided with it.
func (m *openMap[K, V]) Find(key K) (int, bool) {
	idx := m.probeStart(key)
	for {
		switch m.slots[idx].state {
		case slotEmpty:
			return -1, false
		case slotOccupied:
			if m.slots[idx].key == key {
				return idx, true
			}
		}
		idx = (idx + 1) % len(m.slots)
	}
}

// Erase turns key's slot into a tombstone. Reports whether key was
// present. Capacity never shrinks on erase.
func (m *openMap[K, V]) Erase(key K) bool {
	idx, ok := m.Find(key)
	if !ok {
		return false
	}
	var zero openMapSlot[K, V]
	zero.state = slotTombstone
	m.slots[idx] = zero
	m.size--
	return true
}

// At returns the key/value stored at a slot index previously returned by
// TryEmplace or Find.
func (m *openMap[K, V]) At(idx int) (K, V) {
	s := m.slots[idx]
	return s.key, s.value
}

// SetAt overwrites the value stored at a slot index, leaving its key and
// state untouched.
func (m *openMap[K, V]) SetAt(idx int, value V) {
	m.slots[idx].value = value
}

// rehash grows to the next prime (or doubles past the fixed table) and
// reinserts every occupied slot via try_emplace, as spec §4.B requires.
func (m *openMap[K, V]) rehash() {
	oldCap := len(m.slots)
	newCap := m.nextCapacity()
	old := m.slots
	m.slots = make([]openMapSlot[K, V], newCap)
	m.size = 0
	for _, s := range old {
		if s.state == slotOccupied {
			m.insert(s.key, s.value)
		}
	}
	m.log.Debug("rehashed open-addressing map",
		zap.Int("old_capacity", oldCap),
		zap.Int("new_capacity", newCap),
		zap.Int("size", m.size))
}

func (m *openMap[K, V]) nextCapacity() int {
	if m.primeIdx+1 < len(openMapPrimes) {
		m.primeIdx++
		if openMapPrimes[m.primeIdx] > len(m.slots) {
			return openMapPrimes[m.primeIdx]
		}
	}
	return len(m.slots)*2 + 1
}

// Each calls fn for every occupied slot in index order, stopping early
// if fn returns false. fn must not mutate the map.
func (m *openMap[K, V]) Each(fn func(K, V) bool) {
	for _, s := range m.slots {
		if s.state == slotOccupied {
			if !fn(s.key, s.value) {
				return
			}
		}
	}
}
