package machine

import (
	"fmt"

	"MemoryConsistencyCircuit/modules/base"
)

// Instruction is one executable machine instruction.
type Instruction[K base.Base[K], V base.Base[V]] interface {
	fmt.Stringer
	Exec(m *Machine[K, V]) error
}

// Read reads Address and checks that it holds Value.
type Read[K base.Base[K], V base.Base[V]] struct {
	Address K
	Value   V
}

func (i Read[K, V]) Exec(m *Machine[K, V]) error {
	got, err := m.Read(i.Address)
	if err != nil {
		return err
	}
	if got != i.Value {
		return fmt.Errorf("%w: address %v holds %v, expected %v", ErrReadMismatch, i.Address, got, i.Value)
	}
	return nil
}

func (i Read[K, V]) String() string {
	return fmt.Sprintf("read %v %v", i.Address, i.Value)
}

// Write stores Value at Address.
type Write[K base.Base[K], V base.Base[V]] struct {
	Address K
	Value   V
}

func (i Write[K, V]) Exec(m *Machine[K, V]) error {
	return m.Write(i.Address, i.Value)
}

func (i Write[K, V]) String() string {
	return fmt.Sprintf("write %v %v", i.Address, i.Value)
}

// Invalid stands for a malformed instruction. Executing it always fails so
// that a broken program can never produce a trace that looks consistent.
type Invalid[K base.Base[K], V base.Base[V]] struct {
	Reason string
}

func (i Invalid[K, V]) Exec(*Machine[K, V]) error {
	if i.Reason == "" {
		return ErrInvalidInstruction
	}
	return fmt.Errorf("%w: %s", ErrInvalidInstruction, i.Reason)
}

func (i Invalid[K, V]) String() string {
	return "invalid"
}

// Push pushes Value onto the stack.
type Push[K base.Base[K], V base.Base[V]] struct {
	Value V
}

func (i Push[K, V]) Exec(m *Machine[K, V]) error {
	return m.Push(i.Value)
}

func (i Push[K, V]) String() string {
	return fmt.Sprintf("push %v", i.Value)
}

// Pop pops the stack and checks the popped value against Value.
type Pop[K base.Base[K], V base.Base[V]] struct {
	Value V
}

func (i Pop[K, V]) Exec(m *Machine[K, V]) error {
	got, err := m.Pop()
	if err != nil {
		return err
	}
	if got != i.Value {
		return fmt.Errorf("%w: popped %v, expected %v", ErrReadMismatch, got, i.Value)
	}
	return nil
}

func (i Pop[K, V]) String() string {
	return fmt.Sprintf("pop %v", i.Value)
}

// Set loads Value into a register.
type Set[K base.Base[K], V base.Base[V]] struct {
	Register uint64
	Value    V
}

func (i Set[K, V]) Exec(m *Machine[K, V]) error {
	r, err := m.Register(i.Register)
	if err != nil {
		return err
	}
	return m.Set(r, i.Value)
}

func (i Set[K, V]) String() string {
	return fmt.Sprintf("set r%d %v", i.Register, i.Value)
}

// Mov copies register Src into register Dst.
type Mov[K base.Base[K], V base.Base[V]] struct {
	Dst, Src uint64
}

func (i Mov[K, V]) Exec(m *Machine[K, V]) error {
	dst, err := m.Register(i.Dst)
	if err != nil {
		return err
	}
	src, err := m.Register(i.Src)
	if err != nil {
		return err
	}
	return m.Mov(dst, src)
}

func (i Mov[K, V]) String() string {
	return fmt.Sprintf("mov r%d r%d", i.Dst, i.Src)
}
