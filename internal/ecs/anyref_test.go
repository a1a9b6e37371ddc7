package ecs

import "testing"

func TestAnyRef_EmptyByDefault(t *testing.T) {
	var r AnyRef
	if !r.IsEmpty() {
		t.Fatalf("zero-value AnyRef should be empty")
	}
}

func TestAnyRef_HoldsAndGet(t *testing.T) {
	v := 7
	r := newAnyRef(&v)
	if r.IsEmpty() {
		t.Fatalf("newAnyRef produced an empty ref")
	}
	if !HoldsAny[int](r) {
		t.Fatalf("HoldsAny[int] false for an int ref")
	}
	if HoldsAny[string](r) {
		t.Fatalf("HoldsAny[string] true for an int ref")
	}
	if got := GetAny[int](r); *got != 7 {
		t.Fatalf("GetAny = %d, want 7", *got)
	}
	*GetAny[int](r) = 8
	if v != 8 {
		t.Fatalf("AnyRef does not alias the original value: v = %d, want 8", v)
	}
}

func TestAnyRef_GetIfAnyMismatch(t *testing.T) {
	v := 7
	r := newAnyRef(&v)
	if _, ok := GetIfAny[string](r); ok {
		t.Fatalf("GetIfAny succeeded for a mismatched type")
	}
	got, ok := GetIfAny[int](r)
	if !ok || *got != 7 {
		t.Fatalf("GetIfAny = (%v, %v), want (7, true)", got, ok)
	}
}

func TestAnyRef_AsConst(t *testing.T) {
	v := 7
	r := newAnyRef(&v)
	c := r.AsConst()
	if c.IsEmpty() {
		t.Fatalf("AsConst produced an empty ConstAnyRef")
	}
	if got, ok := GetIfConst[int](c); !ok || *got != 7 {
		t.Fatalf("GetIfConst via AsConst = (%v, %v), want (7, true)", got, ok)
	}
}

func TestConstAnyRef_EmptyByDefault(t *testing.T) {
	var c ConstAnyRef
	if !c.IsEmpty() {
		t.Fatalf("zero-value ConstAnyRef should be empty")
	}
	if HoldsConst[int](c) {
		t.Fatalf("HoldsConst true on an empty ref")
	}
}

func TestConstAnyRef_HoldsAndGet(t *testing.T) {
	v := "hello"
	c := newConstAnyRef(&v)
	if !HoldsConst[string](c) {
		t.Fatalf("HoldsConst[string] false for a string ref")
	}
	if got := GetConst[string](c); *got != "hello" {
		t.Fatalf("GetConst = %q, want hello", *got)
	}
}
