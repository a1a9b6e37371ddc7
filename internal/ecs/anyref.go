package ecs

import "unsafe"

// AnyRef is a non-owning, type-erased mutable reference to a component
// value (spec §4.D). Its lifetime is bound to the pool slot it points at;
// any structural mutation of that pool invalidates it.
type AnyRef struct {
	ptr         unsafe.Pointer
	fingerprint ComponentTypeID
}

func newAnyRef[T any](v *T) AnyRef {
	return AnyRef{ptr: unsafe.Pointer(v), fingerprint: TypeID[T]()}
}

// IsEmpty reports whether r points at nothing.
func (r AnyRef) IsEmpty() bool { return r.ptr == nil }

// AsConst downgrades r to a ConstAnyRef over the same slot (spec §4.D:
// "ConstAnyRef is constructible from AnyRef").
func (r AnyRef) AsConst() ConstAnyRef {
	return ConstAnyRef{ptr: r.ptr, fingerprint: r.fingerprint}
}

// ConstAnyRef is a non-owning, type-erased shared reference to a
// component value.
type ConstAnyRef struct {
	ptr         unsafe.Pointer
	fingerprint ComponentTypeID
}

func newConstAnyRef[T any](v *T) ConstAnyRef {
	return ConstAnyRef{ptr: unsafe.Pointer(v), fingerprint: TypeID[T]()}
}

// IsEmpty reports whether r points at nothing.
func (r ConstAnyRef) IsEmpty() bool { return r.ptr == nil }

// HoldsAny reports whether r's fingerprint matches T.
func HoldsAny[T any](r AnyRef) bool { return !r.IsEmpty() && r.fingerprint == TypeID[T]() }

// GetAny returns a typed reference into r. It is only defined when
// HoldsAny[T](r) is true; calling it on a mismatched ref is undefined
// behavior per spec §4.D, mirrored here as a direct (unchecked) pointer
// cast — callers must guard with HoldsAny or use GetIfAny.
func GetAny[T any](r AnyRef) *T { return (*T)(r.ptr) }

// GetIfAny returns a typed reference into r and true if the fingerprint
// matches T, or (nil, false) otherwise.
func GetIfAny[T any](r AnyRef) (*T, bool) {
	if !HoldsAny[T](r) {
		return nil, false
	}
	return (*T)(r.ptr), true
}

// HoldsConst reports whether r's fingerprint matches T.
func HoldsConst[T any](r ConstAnyRef) bool { return !r.IsEmpty() && r.fingerprint == TypeID[T]() }

// GetConst returns a typed reference into r. See GetAny's caveats.
func GetConst[T any](r ConstAnyRef) *T { return (*T)(r.ptr) }

// GetIfConst returns a typed reference into r and true if the fingerprint
// matches T, or (nil, false) otherwise.
func GetIfConst[T any](r ConstAnyRef) (*T, bool) {
	if !HoldsConst[T](r) {
		return nil, false
	}
	return (*T)(r.ptr), true
}
