package ecs

import "go.uber.org/zap"

// Droppable is implemented by component value types that need an
// explicit release step before their slot is reused or their pool is
// destroyed (spec §4.D "Drop hook"). Types that don't implement it follow
// default in-place destruction; the only cost for pools holding them is
// one failed type assertion per removed value.
type Droppable interface {
	Drop()
}

// dropValue invokes v's drop hook if it implements Droppable, tracing the
// invocation at Debug level (SPEC_FULL §2.1). log may be nil.
func dropValue[V any](log *zap.Logger, key Key, v *V) {
	if d, ok := any(v).(Droppable); ok {
		d.Drop()
		if log == nil {
			log = zap.NewNop()
		}
		log.Debug("invoked component drop hook",
			zap.Uint64("type_id", uint64(key.TypeID)),
			zap.Uint64("variant_id", uint64(key.VariantID)))
	}
}

// Pool is the type-erased interface every component pool implements
// (spec §4.D "IComponentPool"): operations usable without knowing the
// pool's value type.
type Pool interface {
	// Key identifies this pool's (type, variant) pair.
	Key() Key
	// Erase removes entity's value if present, invoking its drop hook.
	// Reports whether anything was removed.
	Erase(e Entity) bool
	// Size returns the number of live entries.
	Size() int
	// EntityRef returns a type-erased mutable reference, or an empty
	// AnyRef if entity is absent.
	EntityRef(e Entity) AnyRef
	// EntityRefConst returns a type-erased shared reference, or an empty
	// ConstAnyRef if entity is absent.
	EntityRefConst(e Entity) ConstAnyRef
	// destroy drops every value and empties the pool. Unexported: only
	// the Registry that owns a pool may destroy it.
	destroy()
}

// typedPool combines the erased Pool interface with a typed backing
// FlatMap (spec §4.D "Typed pool").
type typedPool[V any] struct {
	key  Key
	data *FlatMap[Entity, V]
	log  *zap.Logger
}

func entityHash(e Entity) uint64 { return uint64(e) }

func newTypedPool[V any](key Key, log *zap.Logger, tuning mapTuning) *typedPool[V] {
	if log == nil {
		log = zap.NewNop()
	}
	return &typedPool[V]{
		key:  key,
		data: NewFlatMap[Entity, V](entityHash, tuning, log),
		log:  log,
	}
}

func (p *typedPool[V]) Key() Key  { return p.key }
func (p *typedPool[V]) Size() int { return p.data.Len() }

// Find returns a mutable pointer to entity's value, or (nil, false).
func (p *typedPool[V]) Find(e Entity) (*V, bool) {
	pos, ok := p.data.Find(e)
	if !ok {
		return nil, false
	}
	return p.data.ValueAt(pos), true
}

// TryEmplace inserts v for e if absent, returning a pointer to the stored
// value and whether an insertion happened.
func (p *typedPool[V]) TryEmplace(e Entity, v V) (*V, bool) {
	pos, inserted := p.data.TryEmplace(e, v)
	return p.data.ValueAt(pos), inserted
}

// Set stores v for e. If a value already exists it is dropped and
// replaced in place. Returns true if created, false if replaced — the
// Registry.Set policy (spec §4.E).
func (p *typedPool[V]) Set(e Entity, v V) bool {
	if pos, ok := p.data.Find(e); ok {
		existing := p.data.ValueAt(pos)
		dropValue(p.log, p.key, existing)
		*existing = v
		return false
	}
	p.data.TryEmplace(e, v)
	return true
}

func (p *typedPool[V]) Erase(e Entity) bool {
	return p.data.Erase(e, func(v *V) { dropValue(p.log, p.key, v) })
}

// Each calls fn with (entity, value-pointer) for every entry in packed
// order, stopping early if fn returns false.
func (p *typedPool[V]) Each(fn func(Entity, *V) bool) {
	p.data.Each(fn)
}

func (p *typedPool[V]) Reserve(n int) { p.data.Reserve(n) }

func (p *typedPool[V]) EntityRef(e Entity) AnyRef {
	v, ok := p.Find(e)
	if !ok {
		return AnyRef{}
	}
	return newAnyRef(v)
}

func (p *typedPool[V]) EntityRefConst(e Entity) ConstAnyRef {
	v, ok := p.Find(e)
	if !ok {
		return ConstAnyRef{}
	}
	return newConstAnyRef(v)
}

func (p *typedPool[V]) destroy() {
	p.log.Debug("destroying component pool",
		zap.Uint64("type_id", uint64(p.key.TypeID)),
		zap.Uint64("variant_id", uint64(p.key.VariantID)),
		zap.Int("size", p.data.Len()))
	p.data.Clear(func(v *V) { dropValue(p.log, p.key, v) })
}
