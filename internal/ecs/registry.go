package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

func keyHash(k Key) uint64 { return k.hash() }

// Registry owns a directory of component pools, keyed by (type, variant),
// and the CRUD/visitation/grouping API described in spec §4.E. The
// registry uniquely owns every pool; each pool uniquely owns every value
// it stores. Destroying the registry (Destroy) destroys every pool, which
// drops every value that asks for it.
//
// The pool directory is the same open-addressing map (hashmap.go) that
// backs every typed pool's index, keyed by Key via Key.hash()'s mix —
// spec §3 calls out that mixing "used only for hashing the composite
// Key", which is exactly this directory.
//
// Registry methods that need a component's Go type as a type parameter
// are package-level generic functions taking *Registry as their first
// argument (Go methods can't introduce new type parameters) — the same
// shape as a free-function component API.
type Registry struct {
	pools *openMap[Key, Pool]
	// binaryPools holds fixed-size byte-buffer pools (spec §4.C.1)
	// separately from pools: BinaryPool has no AnyRef representation, so
	// it doesn't implement Pool and can't share that directory.
	binaryPools *openMap[Key, *BinaryPool]
	log         *zap.Logger
	tuning      mapTuning
}

// RegistryOptions tunes the maps backing a Registry's pools and the
// ComponentTypeID derivation strategy (SPEC_FULL §2.2). The zero value
// reproduces the pre-existing fixed defaults.
type RegistryOptions struct {
	// InitialCapacityHint sizes the pool directory's and every later
	// pool's backing maps on creation. Zero picks the smallest built-in
	// prime (spec §4.B).
	InitialCapacityHint int
	// MaxLoadFactor overrides the default 0.6 rehash threshold (spec
	// §4.B). Zero keeps the default.
	MaxLoadFactor float64
	// StrictTypeIDs selects HashNameStrict (blake2b) over the
	// spec-mandated FNV-1a default when deriving a ComponentTypeID for a
	// type that doesn't implement Named (spec §4.A open question). This
	// choice is process-wide — see UseStrictTypeIDs.
	StrictTypeIDs bool
}

func (o RegistryOptions) tuning() mapTuning {
	return mapTuning{initialCapacityHint: o.InitialCapacityHint, maxLoadFactor: o.MaxLoadFactor}
}

// NewRegistry creates an empty registry. log may be nil.
func NewRegistry(log *zap.Logger, opts RegistryOptions) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	UseStrictTypeIDs(opts.StrictTypeIDs)
	tuning := opts.tuning()
	return &Registry{
		pools:       newOpenMap[Key, Pool](keyHash, tuning, log),
		binaryPools: newOpenMap[Key, *BinaryPool](keyHash, tuning, log),
		log:         log,
		tuning:      tuning,
	}
}

func variantOf(variant []ComponentTypeID) ComponentTypeID {
	if len(variant) > 0 {
		return variant[0]
	}
	return 0
}

// CreateEntity returns a fresh entity with no components.
func (r *Registry) CreateEntity() Entity {
	return NewEntity()
}

// CreateEntityNamed returns a fresh entity with its EntityName set.
func (r *Registry) CreateEntityNamed(name string) Entity {
	e := NewEntity()
	Set(r, e, NewEntityName(name))
	return e
}

// DestroyEntity erases e from every pool in the registry, typed and
// binary alike.
func (r *Registry) DestroyEntity(e Entity) {
	r.pools.Each(func(_ Key, p Pool) bool {
		p.Erase(e)
		return true
	})
	r.binaryPools.Each(func(_ Key, bp *BinaryPool) bool {
		bp.Erase(e)
		return true
	})
}

// Destroy destroys every pool, typed and binary, dropping every value
// that asks for it and running every binary deleter, and leaves the
// registry empty.
func (r *Registry) Destroy() {
	r.pools.Each(func(_ Key, p Pool) bool {
		p.destroy()
		return true
	})
	r.binaryPools.Each(func(_ Key, bp *BinaryPool) bool {
		bp.Clear()
		return true
	})
	r.pools = newOpenMap[Key, Pool](keyHash, r.tuning, r.log)
	r.binaryPools = newOpenMap[Key, *BinaryPool](keyHash, r.tuning, r.log)
}

// IsKnown reports whether any pool — typed or binary — contains e.
func (r *Registry) IsKnown(e Entity) bool {
	known := false
	r.pools.Each(func(_ Key, p Pool) bool {
		if !p.EntityRefConst(e).IsEmpty() {
			known = true
			return false
		}
		return true
	})
	if known {
		return true
	}
	r.binaryPools.Each(func(_ Key, bp *BinaryPool) bool {
		if bp.Get(e) != nil {
			known = true
			return false
		}
		return true
	})
	return known
}

// FindByName returns the first entity (in the EntityName pool's packed
// order) whose name matches, or (0, false). name is normalized to NFC
// before comparing, like every stored EntityName.
func (r *Registry) FindByName(name string) (Entity, bool) {
	pool, ok := getPool[EntityName](r, 0)
	if !ok {
		return NullEntity, false
	}
	name = NewEntityName(name).String()
	var found Entity
	ok = false
	pool.Each(func(e Entity, n *EntityName) bool {
		if n.String() == name {
			found, ok = e, true
			return false
		}
		return true
	})
	return found, ok
}

func getPool[T any](r *Registry, variant ComponentTypeID) (*typedPool[T], bool) {
	idx, ok := r.pools.Find(NewKey[T](variant))
	if !ok {
		return nil, false
	}
	_, p := r.pools.At(idx)
	tp, ok := p.(*typedPool[T])
	return tp, ok
}

func getOrCreatePool[T any](r *Registry, variant ComponentTypeID) *typedPool[T] {
	key := NewKey[T](variant)
	if idx, ok := r.pools.Find(key); ok {
		_, p := r.pools.At(idx)
		return p.(*typedPool[T])
	}
	tp := newTypedPool[T](key, r.log, r.tuning)
	r.pools.TryEmplace(key, tp)
	return tp
}

// Set stores value for e, creating its pool lazily on first write. If a
// value already exists for (e, T, variant) it is dropped and replaced.
// Returns true if created, false if replaced (spec §4.E "set").
func Set[T any](r *Registry, e Entity, value T, variant ...ComponentTypeID) bool {
	return getOrCreatePool[T](r, variantOf(variant)).Set(e, value)
}

// Emplace stores value for e exactly like Set, but returns a pointer to
// the stored value instead of a created/replaced flag — the Go shape of
// "construct the value in place and hand back a reference" (spec §4.E
// "emplace"); Go has no variadic constructor arguments, so the value is
// passed fully formed.
func Emplace[T any](r *Registry, e Entity, value T, variant ...ComponentTypeID) *T {
	pool := getOrCreatePool[T](r, variantOf(variant))
	pool.Set(e, value)
	v, _ := pool.Find(e)
	return v
}

// Remove erases e's T component, if any. No-op if absent.
func Remove[T any](r *Registry, e Entity, variant ...ComponentTypeID) {
	if pool, ok := getPool[T](r, variantOf(variant)); ok {
		pool.Erase(e)
	}
}

// Get returns a pointer to e's T component and true, or (nil, false) if
// absent or the pool doesn't exist yet.
func Get[T any](r *Registry, e Entity, variant ...ComponentTypeID) (*T, bool) {
	pool, ok := getPool[T](r, variantOf(variant))
	if !ok {
		return nil, false
	}
	return pool.Find(e)
}

// Has reports whether e has a T component. Checking multiple component
// types is just chaining Has calls with && — Go's short-circuit already
// gives the spec's "has<T…> short-circuits on first miss" for free.
func Has[T any](r *Registry, e Entity, variant ...ComponentTypeID) bool {
	pool, ok := getPool[T](r, variantOf(variant))
	if !ok {
		return false
	}
	_, ok = pool.Find(e)
	return ok
}

// AllOf returns a range over every (entity, value) pair in T's pool, in
// pool order. An absent pool yields an empty range.
func AllOf[T any](r *Registry, variant ...ComponentTypeID) func(func(Entity, *T) bool) {
	pool, ok := getPool[T](r, variantOf(variant))
	return func(yield func(Entity, *T) bool) {
		if !ok {
			return
		}
		pool.data.Each(yield)
	}
}

// RemoveAllOf drops T's pool entirely, dropping every value it holds.
func RemoveAllOf[T any](r *Registry, variant ...ComponentTypeID) {
	key := NewKey[T](variantOf(variant))
	if idx, ok := r.pools.Find(key); ok {
		_, p := r.pools.At(idx)
		p.destroy()
		r.pools.Erase(key)
	}
}

// ForEachComponent invokes fn once per pool that contains e. fn's arity
// selects what it's called with: func(AnyRef), func(AnyRef,
// ComponentTypeID), or func(AnyRef, ComponentTypeID, ComponentTypeID)
// (value, variant, value+variant+type — spec §4.E visitation arities).
func ForEachComponent(r *Registry, e Entity, fn any) {
	fv := reflect.ValueOf(fn)
	arity := fv.Type().NumIn()
	r.pools.Each(func(key Key, p Pool) bool {
		ref := p.EntityRef(e)
		if ref.IsEmpty() {
			return true
		}
		switch arity {
		case 1:
			fv.Call([]reflect.Value{reflect.ValueOf(ref)})
		case 2:
			fv.Call([]reflect.Value{reflect.ValueOf(ref), reflect.ValueOf(key.VariantID)})
		case 3:
			fv.Call([]reflect.Value{reflect.ValueOf(ref), reflect.ValueOf(key.VariantID), reflect.ValueOf(key.TypeID)})
		}
		return true
	})
}

// GroupEntities physically reorganizes T's pool so that every entity for
// which pred holds forms a sorted (ascending by entity id) contiguous
// prefix, enabling the fast-path lockstep iteration described in spec
// §4.F. Returns false (no change) if the pool is absent or no entity
// satisfies pred — spec §7 error kind 4.
func GroupEntities[T any](r *Registry, pred func(Entity, *T) bool, variant ...ComponentTypeID) bool {
	pool, ok := getPool[T](r, variantOf(variant))
	if !ok {
		return false
	}
	return groupPool(pool, pred, r.log)
}

type groupEntry[T any] struct {
	e Entity
	v T
}

func groupPool[T any](pool *typedPool[T], pred func(Entity, *T) bool, log *zap.Logger) bool {
	before := pool.data.Len()
	if !groupInto(pool.data, pool.data, pred) {
		return false
	}
	log.Debug("grouped component pool",
		zap.Uint64("type_id", uint64(pool.key.TypeID)),
		zap.Int("pool_size", before))
	return true
}

// Group2 groups A's pool by "has B" and B's pool by "has A" — the
// rotation spec §4.E describes for group<T1,...,Tn>, specialized to a
// pair since Go generics have no variadic type parameters.
func Group2[A, B any](r *Registry, variantA, variantB ComponentTypeID) {
	GroupEntities[A](r, func(e Entity, _ *A) bool {
		return Has[B](r, e, variantB)
	}, variantA)
	GroupEntities[B](r, func(e Entity, _ *B) bool {
		return Has[A](r, e, variantA)
	}, variantB)
}

// Group3 is Group2 generalized to three component types.
func Group3[A, B, C any](r *Registry, variantA, variantB, variantC ComponentTypeID) {
	GroupEntities[A](r, func(e Entity, _ *A) bool {
		return Has[B](r, e, variantB) && Has[C](r, e, variantC)
	}, variantA)
	GroupEntities[B](r, func(e Entity, _ *B) bool {
		return Has[A](r, e, variantA) && Has[C](r, e, variantC)
	}, variantB)
	GroupEntities[C](r, func(e Entity, _ *C) bool {
		return Has[A](r, e, variantA) && Has[B](r, e, variantB)
	}, variantC)
}

// RegisterBinaryComponent registers a binary (fixed-size byte buffer)
// pool under name's FNV-1a hash, the Go-side counterpart of the C-ABI's
// register_component(handle, name, deleter) (spec §6.3). Calling it
// again for the same name returns the existing pool.
func (r *Registry) RegisterBinaryComponent(name string, deleter BinaryDeleter) *BinaryPool {
	key := Key{TypeID: HashName(name), VariantID: 0}
	if idx, ok := r.binaryPools.Find(key); ok {
		_, bp := r.binaryPools.At(idx)
		return bp
	}
	bp := NewBinaryPool(key, deleter, r.tuning, r.log)
	r.binaryPools.TryEmplace(key, bp)
	return bp
}

// BinaryComponent looks up a previously registered binary pool by name.
func (r *Registry) BinaryComponent(name string) (*BinaryPool, bool) {
	idx, ok := r.binaryPools.Find(Key{TypeID: HashName(name), VariantID: 0})
	if !ok {
		return nil, false
	}
	_, bp := r.binaryPools.At(idx)
	return bp, true
}
