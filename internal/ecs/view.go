package ecs

// View2 returns a range func over every entity present in both A's and
// B's pools, together with pointers into each (spec §4.F). It drives
// iteration from whichever pool is smaller and does a point lookup into
// the other — the same shape as the teacher's Each2, generalized to
// return a callback-taking closure instead of taking the callback
// directly. Either pool missing yields an empty range.
//
// Go's range-over-func only accepts yield functions of 0, 1, or 2
// parameters (https://go.dev/ref/spec#For_range), so View2's 3-parameter
// yield can't be driven with `for e, a, b := range View2(...)` — call
// the returned func directly instead: View2[A, B](r, 0, 0)(func(e
// Entity, a *A, b *B) bool { ...; return true }). AllOf, with one
// component and thus a 2-parameter yield, is the one join in this
// package usable with range syntax.
func View2[A, B any](r *Registry, variantA, variantB ComponentTypeID) func(func(Entity, *A, *B) bool) {
	pa, okA := getPool[A](r, variantA)
	pb, okB := getPool[B](r, variantB)
	return func(yield func(Entity, *A, *B) bool) {
		if !okA || !okB {
			return
		}
		if pa.data.Len() <= pb.data.Len() {
			pa.data.Each(func(e Entity, a *A) bool {
				b, ok := pb.Find(e)
				if !ok {
					return true
				}
				return yield(e, a, b)
			})
		} else {
			pb.data.Each(func(e Entity, b *B) bool {
				a, ok := pa.Find(e)
				if !ok {
					return true
				}
				return yield(e, a, b)
			})
		}
	}
}

// View3 is View2 generalized to three component types, driven by
// whichever of the three pools is smallest (spec §4.F steps 1-4).
func View3[A, B, C any](r *Registry, variantA, variantB, variantC ComponentTypeID) func(func(Entity, *A, *B, *C) bool) {
	pa, okA := getPool[A](r, variantA)
	pb, okB := getPool[B](r, variantB)
	pc, okC := getPool[C](r, variantC)
	return func(yield func(Entity, *A, *B, *C) bool) {
		if !okA || !okB || !okC {
			return
		}
		driver := 0
		smallest := pa.data.Len()
		if pb.data.Len() < smallest {
			driver, smallest = 1, pb.data.Len()
		}
		if pc.data.Len() < smallest {
			driver = 2
		}
		switch driver {
		case 0:
			pa.data.Each(func(e Entity, a *A) bool {
				b, ok := pb.Find(e)
				if !ok {
					return true
				}
				c, ok := pc.Find(e)
				if !ok {
					return true
				}
				return yield(e, a, b, c)
			})
		case 1:
			pb.data.Each(func(e Entity, b *B) bool {
				a, ok := pa.Find(e)
				if !ok {
					return true
				}
				c, ok := pc.Find(e)
				if !ok {
					return true
				}
				return yield(e, a, b, c)
			})
		case 2:
			pc.data.Each(func(e Entity, c *C) bool {
				a, ok := pa.Find(e)
				if !ok {
					return true
				}
				b, ok := pb.Find(e)
				if !ok {
					return true
				}
				return yield(e, a, b, c)
			})
		}
	}
}

// View4 is View2/View3 generalized to four component types.
func View4[A, B, C, D any](r *Registry, variantA, variantB, variantC, variantD ComponentTypeID) func(func(Entity, *A, *B, *C, *D) bool) {
	pa, okA := getPool[A](r, variantA)
	pb, okB := getPool[B](r, variantB)
	pc, okC := getPool[C](r, variantC)
	pd, okD := getPool[D](r, variantD)
	return func(yield func(Entity, *A, *B, *C, *D) bool) {
		if !okA || !okB || !okC || !okD {
			return
		}
		lens := [4]int{pa.data.Len(), pb.data.Len(), pc.data.Len(), pd.data.Len()}
		driver := 0
		for i := 1; i < 4; i++ {
			if lens[i] < lens[driver] {
				driver = i
			}
		}
		lookup := func(e Entity) (*A, *B, *C, *D, bool) {
			a, ok := pa.Find(e)
			if !ok {
				return nil, nil, nil, nil, false
			}
			b, ok := pb.Find(e)
			if !ok {
				return nil, nil, nil, nil, false
			}
			c, ok := pc.Find(e)
			if !ok {
				return nil, nil, nil, nil, false
			}
			d, ok := pd.Find(e)
			if !ok {
				return nil, nil, nil, nil, false
			}
			return a, b, c, d, true
		}
		switch driver {
		case 0:
			pa.data.Each(func(e Entity, _ *A) bool {
				a, b, c, d, ok := lookup(e)
				if !ok {
					return true
				}
				return yield(e, a, b, c, d)
			})
		case 1:
			pb.data.Each(func(e Entity, _ *B) bool {
				a, b, c, d, ok := lookup(e)
				if !ok {
					return true
				}
				return yield(e, a, b, c, d)
			})
		case 2:
			pc.data.Each(func(e Entity, _ *C) bool {
				a, b, c, d, ok := lookup(e)
				if !ok {
					return true
				}
				return yield(e, a, b, c, d)
			})
		case 3:
			pd.data.Each(func(e Entity, _ *D) bool {
				a, b, c, d, ok := lookup(e)
				if !ok {
					return true
				}
				return yield(e, a, b, c, d)
			})
		}
	}
}
