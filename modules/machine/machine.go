// Package machine layers a timestamped, traced abstract machine over the
// cell-splitting memory. Capabilities beyond plain reads and writes (a
// bounded stack and a register file) are chosen when the machine is built.
//
// Memory layout, from address zero: registers, then the stack region, then
// the general-purpose region starting at BaseAddress.
package machine

import (
	"fmt"

	"MemoryConsistencyCircuit/modules/base"
	"MemoryConsistencyCircuit/modules/memory"
)

// Capability is a bit set of optional machine features.
type Capability uint8

const (
	CapStack Capability = 1 << iota
	CapRegisters
)

// Config describes a machine.
type Config[K base.Base[K]] struct {
	CellSize      K
	Capabilities  Capability
	MaxStackDepth uint64
	NumRegisters  uint64
}

// StateMachine is the capability every machine has.
type StateMachine[K base.Base[K], V base.Base[V]] interface {
	Read(address K) (V, error)
	Write(address K, value V) error
	Trace() []TraceRecord[K, V]
	Context() *Context[K, V]
}

// StackMachine is a machine with a bounded stack.
type StackMachine[K base.Base[K], V base.Base[V]] interface {
	StateMachine[K, V]
	Push(value V) error
	Pop() (V, error)
}

// RegisterMachine is a machine with a register file mapped into memory.
type RegisterMachine[K base.Base[K], V base.Base[V]] interface {
	StateMachine[K, V]
	Register(index uint64) (Register[K], error)
	Get(r Register[K]) (V, error)
	Set(r Register[K], value V) error
	Mov(dst, src Register[K]) error
}

var (
	_ StackMachine[base.U64, base.U256]    = (*Machine[base.U64, base.U256])(nil)
	_ RegisterMachine[base.U64, base.U256] = (*Machine[base.U64, base.U256])(nil)
)

// Machine executes memory instructions one at a time and records them.
type Machine[K base.Base[K], V base.Base[V]] struct {
	memory *memory.Memory[K, V]
	ctx    *Context[K, V]

	caps         Capability
	numRegisters uint64
	baseAddress  K

	trace     Trace[K, V]
	cellTrace Trace[K, V]
}

// New builds a machine from cfg.
func New[K base.Base[K], V base.Base[V]](cfg Config[K]) (*Machine[K, V], error) {
	mem, err := memory.New[K, V](cfg.CellSize)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}

	m := &Machine[K, V]{
		memory: mem,
		caps:   cfg.Capabilities,
	}

	if m.Has(CapRegisters) {
		if cfg.NumRegisters == 0 {
			return nil, ErrRegisterConfig
		}
		m.numRegisters = cfg.NumRegisters
	}

	var maxDepth uint64
	if m.Has(CapStack) {
		if cfg.MaxStackDepth == 0 {
			return nil, ErrStackConfig
		}
		maxDepth = cfg.MaxStackDepth
	}

	stackBase := m.cellOffset(m.numRegisters)
	m.baseAddress = stackBase.Add(m.cellOffset(maxDepth))
	m.ctx = &Context[K, V]{
		machine:       m,
		stackBase:     stackBase,
		stackPtr:      stackBase,
		maxStackDepth: maxDepth,
	}

	mem.SetObserver(func(a memory.CellAccess[K, V]) {
		m.cellTrace.append(TraceRecord[K, V]{
			TimeLog: m.ctx.timeLog,
			Address: a.Address,
			Kind:    a.Kind,
			Value:   a.Value,
		})
	})

	return m, nil
}

// cellOffset is n cells expressed as an address.
func (m *Machine[K, V]) cellOffset(n uint64) K {
	return base.FromUint64[K](n * m.memory.CellSize().Uint64())
}

// Has reports whether the machine was built with capability c.
func (m *Machine[K, V]) Has(c Capability) bool {
	return m.caps&c == c
}

// CellSize is the alignment of the backing store.
func (m *Machine[K, V]) CellSize() K {
	return m.memory.CellSize()
}

// BaseAddress is the first address after the register file and stack.
func (m *Machine[K, V]) BaseAddress() K {
	return m.baseAddress
}

func (m *Machine[K, V]) Context() *Context[K, V] {
	return m.ctx
}

// Memory exposes the underlying memory, mainly for snapshots.
func (m *Machine[K, V]) Memory() *memory.Memory[K, V] {
	return m.memory
}

// Read performs a logical read and records it.
func (m *Machine[K, V]) Read(address K) (V, error) {
	v, err := m.memory.Read(address)
	if err != nil {
		return v, err
	}
	m.record(KindRead, address, v)
	return v, nil
}

// Write performs a logical write and records it.
func (m *Machine[K, V]) Write(address K, value V) error {
	if err := m.memory.Write(address, value); err != nil {
		return err
	}
	m.record(KindWrite, address, value)
	return nil
}

func (m *Machine[K, V]) record(kind Kind, address K, value V) {
	m.trace.append(TraceRecord[K, V]{
		TimeLog: m.ctx.tick(),
		Address: address,
		Kind:    kind,
		Value:   value,
	})
}

// Trace returns the logical trace ordered by address for display.
func (m *Machine[K, V]) Trace() []TraceRecord[K, V] {
	return m.trace.ByAddress()
}

// TimeOrdered returns the logical trace in execution order.
func (m *Machine[K, V]) TimeOrdered() []TraceRecord[K, V] {
	return m.trace.TimeOrdered()
}

// CellTrace returns every physical cell access in execution order. Each
// record carries the time log of the logical instruction that caused it.
func (m *Machine[K, V]) CellTrace() []TraceRecord[K, V] {
	return m.cellTrace.TimeOrdered()
}

// Run executes a program, stopping at the first failing instruction.
func (m *Machine[K, V]) Run(program []Instruction[K, V]) error {
	for i, instruction := range program {
		if err := m.ctx.Apply(instruction); err != nil {
			return fmt.Errorf("instruction %d (%s): %w", i, instruction, err)
		}
	}
	return nil
}
