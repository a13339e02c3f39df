package machine

import (
	"fmt"

	"MemoryConsistencyCircuit/modules/base"
)

// Register names one slot of the register file.
type Register[K base.Base[K]] struct {
	Index   uint64
	Address K
}

func (r Register[K]) String() string {
	return fmt.Sprintf("r%d", r.Index)
}

// Register returns the register with the given index.
func (m *Machine[K, V]) Register(index uint64) (Register[K], error) {
	if !m.Has(CapRegisters) {
		return Register[K]{}, ErrNoRegisters
	}
	if index >= m.numRegisters {
		return Register[K]{}, fmt.Errorf("%w: %d of %d", ErrNoSuchRegister, index, m.numRegisters)
	}
	return Register[K]{Index: index, Address: m.cellOffset(index)}, nil
}

func (m *Machine[K, V]) Get(r Register[K]) (V, error) {
	if !m.Has(CapRegisters) {
		return base.Zero[V](), ErrNoRegisters
	}
	return m.Read(r.Address)
}

func (m *Machine[K, V]) Set(r Register[K], value V) error {
	if !m.Has(CapRegisters) {
		return ErrNoRegisters
	}
	return m.Write(r.Address, value)
}

// Mov copies src into dst.
func (m *Machine[K, V]) Mov(dst, src Register[K]) error {
	v, err := m.Get(src)
	if err != nil {
		return err
	}
	return m.Set(dst, v)
}
