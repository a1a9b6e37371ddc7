package ecs

import "testing"

type dropCounter struct {
	val   int
	drops *int
}

func (d *dropCounter) Drop() { *d.drops++ }

func TestTypedPool_SetReportsCreatedVsReplaced(t *testing.T) {
	p := newTypedPool[int](NewKey[int](0), nil, mapTuning{})
	e := EntityFromID(1)

	if created := p.Set(e, 10); !created {
		t.Fatalf("first Set reported replaced, want created")
	}
	if created := p.Set(e, 20); created {
		t.Fatalf("second Set reported created, want replaced")
	}
	v, ok := p.Find(e)
	if !ok || *v != 20 {
		t.Fatalf("Find(%d) = (%v, %v), want (20, true)", e, v, ok)
	}
}

func TestTypedPool_SetDropsReplacedValue(t *testing.T) {
	p := newTypedPool[dropCounter](NewKey[dropCounter](0), nil, mapTuning{})
	e := EntityFromID(1)
	drops := 0

	p.Set(e, dropCounter{val: 1, drops: &drops})
	p.Set(e, dropCounter{val: 2, drops: &drops})
	if drops != 1 {
		t.Fatalf("drops = %d, want 1 (the replaced value should be dropped exactly once)", drops)
	}
}

func TestTypedPool_EraseDropsValue(t *testing.T) {
	p := newTypedPool[dropCounter](NewKey[dropCounter](0), nil, mapTuning{})
	e := EntityFromID(1)
	drops := 0
	p.Set(e, dropCounter{val: 1, drops: &drops})

	if !p.Erase(e) {
		t.Fatalf("Erase reported entity absent")
	}
	if drops != 1 {
		t.Fatalf("drops = %d, want 1", drops)
	}
	if _, ok := p.Find(e); ok {
		t.Fatalf("entity still found after Erase")
	}
}

func TestTypedPool_TryEmplace(t *testing.T) {
	p := newTypedPool[int](NewKey[int](0), nil, mapTuning{})
	e := EntityFromID(1)

	v, inserted := p.TryEmplace(e, 5)
	if !inserted || *v != 5 {
		t.Fatalf("TryEmplace first call = (%v, %v), want (5, true)", *v, inserted)
	}
	v2, inserted2 := p.TryEmplace(e, 99)
	if inserted2 || *v2 != 5 {
		t.Fatalf("TryEmplace on existing key = (%v, %v), want (5, false)", *v2, inserted2)
	}
}

func TestTypedPool_EntityRefAndConst(t *testing.T) {
	p := newTypedPool[int](NewKey[int](0), nil, mapTuning{})
	e := EntityFromID(1)
	p.Set(e, 42)

	ref := p.EntityRef(e)
	if ref.IsEmpty() {
		t.Fatalf("EntityRef empty for a present entity")
	}
	if got, ok := GetIfAny[int](ref); !ok || *got != 42 {
		t.Fatalf("GetIfAny via EntityRef = (%v, %v), want (42, true)", got, ok)
	}

	missing := p.EntityRef(EntityFromID(999999))
	if !missing.IsEmpty() {
		t.Fatalf("EntityRef for absent entity should be empty")
	}

	cref := p.EntityRefConst(e)
	if cref.IsEmpty() {
		t.Fatalf("EntityRefConst empty for a present entity")
	}
	if got, ok := GetIfConst[int](cref); !ok || *got != 42 {
		t.Fatalf("GetIfConst via EntityRefConst = (%v, %v), want (42, true)", got, ok)
	}
}

func TestTypedPool_DestroyDropsEveryValue(t *testing.T) {
	p := newTypedPool[dropCounter](NewKey[dropCounter](0), nil, mapTuning{})
	drops := 0
	for i := uint64(1); i <= 5; i++ {
		p.Set(EntityFromID(1000+i), dropCounter{val: int(i), drops: &drops})
	}
	p.destroy()
	if drops != 5 {
		t.Fatalf("destroy dropped %d values, want 5", drops)
	}
	if p.Size() != 0 {
		t.Fatalf("pool not empty after destroy: size=%d", p.Size())
	}
}

func TestTypedPool_EachStopsEarly(t *testing.T) {
	p := newTypedPool[int](NewKey[int](0), nil, mapTuning{})
	for i := uint64(1); i <= 5; i++ {
		p.Set(EntityFromID(2000+i), int(i))
	}
	count := 0
	p.Each(func(e Entity, v *int) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Fatalf("Each visited %d entries after early stop, want 2", count)
	}
}
