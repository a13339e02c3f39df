package memory

import (
	"fmt"

	"MemoryConsistencyCircuit/modules/base"

	"github.com/google/btree"
)

const storeDegree = 32

type cell[K base.Base[K], V base.Base[V]] struct {
	address K
	value   V
}

// Store is the ordered cell map backing a memory. Keys are always multiples
// of the cell size and an absent key reads as zero.
type Store[K base.Base[K], V base.Base[V]] struct {
	cellSize K
	tree     *btree.BTreeG[cell[K, V]]
}

// NewStore creates an empty store for the given cell size.
func NewStore[K base.Base[K], V base.Base[V]](cellSize K) *Store[K, V] {
	return &Store[K, V]{
		cellSize: cellSize,
		tree: btree.NewG(storeDegree, func(a, b cell[K, V]) bool {
			return a.address.Cmp(b.address) < 0
		}),
	}
}

func (s *Store[K, V]) checkAligned(address K) error {
	if !address.Mod(s.cellSize).IsZero() {
		return fmt.Errorf("%w: %v", ErrUnalignedCell, address)
	}
	return nil
}

// Get returns the value stored at address and whether it was present.
func (s *Store[K, V]) Get(address K) (V, bool) {
	c, ok := s.tree.Get(cell[K, V]{address: address})
	return c.value, ok
}

// Insert stores value only when address holds no entry yet. It reports
// whether the value was inserted.
func (s *Store[K, V]) Insert(address K, value V) (bool, error) {
	if err := s.checkAligned(address); err != nil {
		return false, err
	}
	if s.tree.Has(cell[K, V]{address: address}) {
		return false, nil
	}
	s.tree.ReplaceOrInsert(cell[K, V]{address: address, value: value})
	return true, nil
}

// ReplaceOrInsert upserts value at address.
func (s *Store[K, V]) ReplaceOrInsert(address K, value V) error {
	if err := s.checkAligned(address); err != nil {
		return err
	}
	s.tree.ReplaceOrInsert(cell[K, V]{address: address, value: value})
	return nil
}

// Len is the number of populated cells.
func (s *Store[K, V]) Len() int {
	return s.tree.Len()
}

// Ascend calls fn for every populated cell in address order until fn
// returns false.
func (s *Store[K, V]) Ascend(fn func(address K, value V) bool) {
	s.tree.Ascend(func(c cell[K, V]) bool {
		return fn(c.address, c.value)
	})
}
