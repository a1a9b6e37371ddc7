package ecs

// Key identifies a pool: a component type id plus a variant id. VariantID
// defaults to 0; non-zero variants let multiple pools of the same Go type
// coexist (e.g. "position" vs "prev_position"), per spec §3.
type Key struct {
	TypeID    ComponentTypeID
	VariantID ComponentTypeID
}

// NewKey builds a Key for type T with the given variant.
func NewKey[T any](variant ComponentTypeID) Key {
	return Key{TypeID: TypeID[T](), VariantID: variant}
}

// Less gives Keys a total, lexicographic order (TypeID, then VariantID).
func (k Key) Less(other Key) bool {
	if k.TypeID != other.TypeID {
		return k.TypeID < other.TypeID
	}
	return k.VariantID < other.VariantID
}

// hash mixes the two halves of the key into a single value for use as an
// open-addressing map key (spec §3: mix is used only for hashing Key).
func (k Key) hash() uint64 {
	return mix(k.TypeID, k.VariantID)
}
