// Package memory implements a word-addressable memory over cell-aligned
// storage. Logical accesses may start at any address; an access that
// straddles a cell boundary is split across the two neighbouring cells.
package memory

import (
	"fmt"

	"MemoryConsistencyCircuit/modules/base"
)

// AccessKind tells whether a cell was read or written.
type AccessKind uint8

const (
	AccessRead AccessKind = iota
	AccessWrite
)

func (k AccessKind) String() string {
	switch k {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return fmt.Sprintf("AccessKind(%d)", uint8(k))
	}
}

// CellAccess is one physical, cell-aligned access performed while serving a
// logical read or write.
type CellAccess[K base.Base[K], V base.Base[V]] struct {
	Kind    AccessKind
	Address K
	Value   V
}

// Observer receives every physical cell access in execution order.
type Observer[K base.Base[K], V base.Base[V]] func(CellAccess[K, V])

// Memory is a logical memory of V-sized words addressed by K.
type Memory[K base.Base[K], V base.Base[V]] struct {
	store     *Store[K, V]
	cellSize  K
	cellBytes int
	observer  Observer[K, V]
}

// New creates an empty memory. Cells hold full values, so the cell size has
// to match the byte width of V.
func New[K base.Base[K], V base.Base[V]](cellSize K) (*Memory[K, V], error) {
	if cellSize.IsZero() {
		return nil, ErrZeroCellSize
	}
	width := base.WidthOf[V]()
	if !cellSize.IsUint64() || uint64(width)%cellSize.Uint64() != 0 {
		return nil, fmt.Errorf("%w: cell size %d, value width %d", ErrCellSizeNotDivisor, cellSize.Uint64(), width)
	}
	if cellSize.Uint64() != uint64(width) {
		return nil, fmt.Errorf("%w: cell size %d, value width %d", ErrCellSizeMismatch, cellSize.Uint64(), width)
	}

	return &Memory[K, V]{
		store:     NewStore[K, V](cellSize),
		cellSize:  cellSize,
		cellBytes: width,
	}, nil
}

// SetObserver installs fn as the physical access observer; nil disables it.
func (m *Memory[K, V]) SetObserver(fn Observer[K, V]) {
	m.observer = fn
}

func (m *Memory[K, V]) observe(kind AccessKind, address K, value V) {
	if m.observer != nil {
		m.observer(CellAccess[K, V]{Kind: kind, Address: address, Value: value})
	}
}

// CellSize is the alignment of the backing store.
func (m *Memory[K, V]) CellSize() K {
	return m.cellSize
}

// Store exposes the backing cells.
func (m *Memory[K, V]) Store() *Store[K, V] {
	return m.store
}

// Cell returns the content of an aligned cell without recording an access.
func (m *Memory[K, V]) Cell(address K) V {
	v, _ := m.store.Get(address)
	return v
}

// Boundaries returns the two aligned cells around an address whose offset
// inside its cell is remain.
func (m *Memory[K, V]) Boundaries(address K, remain K) (lo K, hi K, err error) {
	lo = address.Sub(remain)
	hi = lo.Add(m.cellSize)
	if hi.Cmp(lo) <= 0 {
		return lo, hi, fmt.Errorf("%w: %v", ErrAddressOverflow, address)
	}
	return lo, hi, nil
}

// split computes the cells and byte counts of an unaligned access: partLo
// bytes of the low cell precede address, partHi = cellSize - partLo follow it.
func (m *Memory[K, V]) split(address, remain K) (lo, hi K, partLo, partHi int, err error) {
	lo, hi, err = m.Boundaries(address, remain)
	if err != nil {
		return
	}
	partLo = int(address.Sub(lo).Uint64())
	partHi = m.cellBytes - partLo
	return
}

// Read returns the word starting at address.
func (m *Memory[K, V]) Read(address K) (V, error) {
	remain := address.Mod(m.cellSize)
	if remain.IsZero() {
		v := m.Cell(address)
		m.observe(AccessRead, address, v)
		return v, nil
	}

	lo, hi, partLo, partHi, err := m.split(address, remain)
	if err != nil {
		return base.Zero[V](), err
	}

	valLo := m.Cell(lo)
	valHi := m.Cell(hi)
	m.observe(AccessRead, lo, valLo)
	m.observe(AccessRead, hi, valHi)

	buf := make([]byte, m.cellBytes)
	copy(buf[partHi:m.cellBytes], valHi.Bytes()[0:partLo])
	copy(buf[0:partHi], valLo.Bytes()[partLo:m.cellBytes])

	return base.FromBytes[V](buf), nil
}

// Write stores value as the word starting at address, leaving the bytes of
// the touched cells outside the word unchanged.
func (m *Memory[K, V]) Write(address K, value V) error {
	remain := address.Mod(m.cellSize)
	if remain.IsZero() {
		if err := m.store.ReplaceOrInsert(address, value); err != nil {
			return err
		}
		m.observe(AccessWrite, address, value)
		return nil
	}

	lo, hi, partLo, partHi, err := m.split(address, remain)
	if err != nil {
		return err
	}

	val := value.Bytes()

	bufLo := m.Cell(lo).Bytes()
	copy(bufLo[partLo:m.cellBytes], val[0:partHi])
	valLo := base.FromBytes[V](bufLo)

	bufHi := m.Cell(hi).Bytes()
	copy(bufHi[0:partLo], val[partHi:m.cellBytes])
	valHi := base.FromBytes[V](bufHi)

	if err := m.store.ReplaceOrInsert(lo, valLo); err != nil {
		return err
	}
	if err := m.store.ReplaceOrInsert(hi, valHi); err != nil {
		return err
	}
	m.observe(AccessWrite, lo, valLo)
	m.observe(AccessWrite, hi, valHi)
	return nil
}
