package ecs

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrComponentSizeMismatch is returned by BinaryPool.Store when the
// payload length doesn't match the pool's already-fixed element size
// (spec §4.C.1, §7 error kind 3).
var ErrComponentSizeMismatch = errors.New("ecs: binary component size mismatch")

// BinaryDeleter is invoked once per removed slot with its raw bytes,
// mirroring the C-ABI's per-type deleter (spec §6.3).
type BinaryDeleter func(data []byte)

// BinaryPool is the fixed-size byte-buffer specialization of the typed
// pool (spec §4.C.1): values are stored as one flat byte array instead of
// a slice of Go values, so a single pool can back components whose shape
// is only known at runtime (e.g. across the C-ABI shim). The first Store
// call fixes the element size for the pool's lifetime.
type BinaryPool struct {
	key      Key
	elemSize int // 0 means "not yet fixed"
	keys     []Entity
	data     []byte // len(keys)*elemSize
	index    *openMap[Entity, int]
	deleter  BinaryDeleter
	tuning   mapTuning
	log      *zap.Logger
}

// NewBinaryPool creates an empty binary pool. deleter and log may be nil.
func NewBinaryPool(key Key, deleter BinaryDeleter, tuning mapTuning, log *zap.Logger) *BinaryPool {
	if log == nil {
		log = zap.NewNop()
	}
	return &BinaryPool{
		key:     key,
		index:   newOpenMap[Entity, int](entityHash, tuning, log),
		deleter: deleter,
		tuning:  tuning,
		log:     log,
	}
}

func (p *BinaryPool) Key() Key      { return p.key }
func (p *BinaryPool) Size() int     { return len(p.keys) }
func (p *BinaryPool) ElemSize() int { return p.elemSize }

func (p *BinaryPool) find(e Entity) (int, bool) {
	slotIdx, ok := p.index.Find(e)
	if !ok {
		return -1, false
	}
	_, pos := p.index.At(slotIdx)
	return pos, true
}

func (p *BinaryPool) slotBytes(pos int) []byte {
	start := pos * p.elemSize
	return p.data[start : start+p.elemSize]
}

// Store copies payload into entity's slot, fixing the pool's element size
// on the very first call across the pool's lifetime. A later call whose
// payload length disagrees with that size fails with
// ErrComponentSizeMismatch and mutates nothing.
func (p *BinaryPool) Store(e Entity, payload []byte) error {
	if p.elemSize == 0 && len(p.keys) == 0 {
		p.elemSize = len(payload)
	} else if len(payload) != p.elemSize {
		p.log.Warn("binary component size mismatch",
			zap.Uint64("type_id", uint64(p.key.TypeID)),
			zap.Int("fixed_size", p.elemSize),
			zap.Int("got_size", len(payload)))
		return fmt.Errorf("%w: pool fixed at %d bytes, got %d", ErrComponentSizeMismatch, p.elemSize, len(payload))
	}

	if pos, ok := p.find(e); ok {
		if p.deleter != nil {
			p.deleter(append([]byte(nil), p.slotBytes(pos)...))
			p.log.Debug("invoked binary component deleter",
				zap.Uint64("type_id", uint64(p.key.TypeID)))
		}
		copy(p.slotBytes(pos), payload)
		return nil
	}

	pos := len(p.keys)
	p.keys = append(p.keys, e)
	p.data = append(p.data, payload...)
	p.index.TryEmplace(e, pos)
	return nil
}

// Get returns entity's bytes, or nil if absent. The returned slice aliases
// the pool's backing array and is invalidated by the next structural
// mutation.
func (p *BinaryPool) Get(e Entity) []byte {
	pos, ok := p.find(e)
	if !ok {
		return nil
	}
	return p.slotBytes(pos)
}

// GetMut is Get, but documents that the caller intends to mutate the
// returned bytes in place (there is no copy either way — Go has no way to
// express a read-only slice view).
func (p *BinaryPool) GetMut(e Entity) []byte { return p.Get(e) }

// Erase removes entity's slot, invoking the deleter (if any) first, and
// swapping the trailing slot into the freed position (same O(1) amortized
// scheme as FlatMap.Erase). Reports whether anything was removed.
func (p *BinaryPool) Erase(e Entity) bool {
	pos, ok := p.find(e)
	if !ok {
		return false
	}
	if p.deleter != nil {
		p.deleter(append([]byte(nil), p.slotBytes(pos)...))
		p.log.Debug("invoked binary component deleter",
			zap.Uint64("type_id", uint64(p.key.TypeID)))
	}

	last := len(p.keys) - 1
	if pos != last {
		movedKey := p.keys[last]
		copy(p.slotBytes(pos), p.slotBytes(last))
		p.keys[pos] = movedKey
		if slotIdx, ok := p.index.Find(movedKey); ok {
			p.index.SetAt(slotIdx, pos)
		}
	}
	p.keys = p.keys[:last]
	p.data = p.data[:last*p.elemSize]
	p.index.Erase(e)
	return true
}

// Clear empties the pool, invoking the deleter (if any) on every
// surviving slot first.
func (p *BinaryPool) Clear() {
	if p.deleter != nil {
		for pos := range p.keys {
			p.deleter(append([]byte(nil), p.slotBytes(pos)...))
		}
		p.log.Debug("invoked binary component deleter for every slot",
			zap.Uint64("type_id", uint64(p.key.TypeID)),
			zap.Int("count", len(p.keys)))
	}
	p.keys = p.keys[:0]
	p.data = p.data[:0]
	p.index = newOpenMap[Entity, int](entityHash, p.tuning, p.log)
}
