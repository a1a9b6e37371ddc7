package ecs

import (
	"hash/fnv"
	"reflect"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/blake2b"
)

// ComponentTypeID identifies a component's value type. It is totally
// ordered and derived either from an explicit numeric value, from the
// FNV-1a hash of a name, or from the hashed type fingerprint of a Go type.
type ComponentTypeID uint64

// Named is implemented by component value types that want to pin their own
// ComponentTypeID instead of deriving one from their reflected type name.
// This is the Go equivalent of the original's "named constant
// component_type" override (spec §4.A).
type Named interface {
	ComponentTypeID() ComponentTypeID
}

// HashName derives a ComponentTypeID from an explicit string name using
// FNV-1a, per spec §3. This is the default, spec-mandated hash: it is not
// collision-resistant, but it is cheap, deterministic, and matches what
// the C-ABI's register_component(name) does on the other side of the
// shim (spec §6.3).
func HashName(name string) ComponentTypeID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return ComponentTypeID(h.Sum64())
}

// HashNameStrict derives a ComponentTypeID using blake2b-256 folded into
// 64 bits instead of FNV-1a. It trades a little speed for a much lower
// collision probability, addressing the §4.A open question about two
// distinct types fingerprinting identically in the same build. It is
// never the default; callers opt in explicitly (e.g. via config).
func HashNameStrict(name string) ComponentTypeID {
	sum := blake2b.Sum256([]byte(name))
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(sum[i])
	}
	return ComponentTypeID(v)
}

var typeIDCache sync.Map // map[reflect.Type]ComponentTypeID

// strictTypeIDs selects HashNameStrict over the spec-mandated FNV-1a
// default for every type derived by reflection (SPEC_FULL §2.2's
// strict_type_ids config knob). TypeID's cache is already a single
// process-wide sync.Map — spec §4.A requires one canonical id per type
// within a build — so the hash-strategy choice is process-wide too,
// decided by whichever Registry is constructed and sticking until another
// one overrides it. Named types are unaffected either way: an explicit
// ComponentTypeID() override always wins.
var strictTypeIDs atomic.Bool

// UseStrictTypeIDs selects the hash that types not implementing Named
// derive their ComponentTypeID from. Call it before deriving any affected type's
// TypeID[T]() — once a type's id is cached, later calls don't change it.
func UseStrictTypeIDs(strict bool) {
	strictTypeIDs.Store(strict)
}

// TypeID returns the ComponentTypeID for T: the type's own ComponentTypeID
// method if it implements Named, otherwise the hash (FNV-1a by default,
// or HashNameStrict if UseStrictTypeIDs(true) was called) of its reflected
// fingerprint (package path + name). The result is memoized per T so
// repeated calls don't re-derive the fingerprint.
func TypeID[T any]() ComponentTypeID {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if id, ok := typeIDCache.Load(rt); ok {
		return id.(ComponentTypeID)
	}

	var id ComponentTypeID
	if named, ok := reflect.New(rt).Interface().(Named); ok {
		id = named.ComponentTypeID()
	} else if strictTypeIDs.Load() {
		id = HashNameStrict(typeFingerprint(rt))
	} else {
		id = HashName(typeFingerprint(rt))
	}

	actual, _ := typeIDCache.LoadOrStore(rt, id)
	return actual.(ComponentTypeID)
}

// typeFingerprint produces a stable textual identity for a type: its
// package path joined with its name. Two distinct types that fingerprint
// identically (e.g. same name, same package path, built under different
// module versions) are undefined behavior per spec §4.A.
func typeFingerprint(rt reflect.Type) string {
	if rt.PkgPath() == "" {
		return rt.String()
	}
	return rt.PkgPath() + "." + rt.Name()
}

// mix combines a ComponentTypeID and a variant id into a single hash,
// used only for hashing the composite Key (spec §3):
// mix(a,b) = a + 0x9e3779b9 + (b<<6) + (b>>2).
func mix(a, b ComponentTypeID) uint64 {
	return uint64(a) + 0x9e3779b9 + (uint64(b) << 6) + (uint64(b) >> 2)
}
