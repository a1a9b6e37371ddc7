package ecs

import (
	"context"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestNewEntity_Monotonic(t *testing.T) {
	a := NewEntity()
	b := NewEntity()
	if b <= a {
		t.Fatalf("expected strictly increasing ids, got %d then %d", a, b)
	}
}

func TestNewEntity_NeverNull(t *testing.T) {
	for i := 0; i < 100; i++ {
		if NewEntity().IsNull() {
			t.Fatalf("NewEntity returned the null entity")
		}
	}
}

func TestEntityFromID_AdvancesGenerator(t *testing.T) {
	before := NewEntity()
	EntityFromID(uint64(before) + 1000)
	after := NewEntity()
	if uint64(after) <= uint64(before)+1000 {
		t.Fatalf("EntityFromID did not bump the generator: before=%d after=%d", before, after)
	}
}

func TestEntityFromID_NeverRewindsGenerator(t *testing.T) {
	high := NewEntity()
	EntityFromID(1) // smaller than anything already issued
	next := NewEntity()
	if next <= high {
		t.Fatalf("EntityFromID(1) rewound the generator: high=%d next=%d", high, next)
	}
}

func TestEntity_LessAndID(t *testing.T) {
	e := EntityFromID(42)
	if e.ID() != 42 {
		t.Fatalf("ID() = %d, want 42", e.ID())
	}
	if !Entity(1).Less(Entity(2)) {
		t.Fatalf("expected 1 < 2")
	}
	if Entity(2).Less(Entity(1)) {
		t.Fatalf("expected 2 not< 1")
	}
}

// TestNewEntity_ConcurrentlyUnique exercises the "atomic across threads"
// claim: many goroutines calling NewEntity concurrently must never observe
// the same id twice.
func TestNewEntity_ConcurrentlyUnique(t *testing.T) {
	const goroutines = 64
	const perGoroutine = 200

	ids := make(chan Entity, goroutines*perGoroutine)
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			for j := 0; j < perGoroutine; j++ {
				ids <- NewEntity()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}
	close(ids)

	seen := make(map[Entity]bool, goroutines*perGoroutine)
	for e := range ids {
		if seen[e] {
			t.Fatalf("duplicate entity id %d produced under concurrency", e)
		}
		seen[e] = true
	}
	if len(seen) != goroutines*perGoroutine {
		t.Fatalf("got %d unique ids, want %d", len(seen), goroutines*perGoroutine)
	}
}
