package machine

import "MemoryConsistencyCircuit/modules/base"

// Push writes value on top of the stack.
func (m *Machine[K, V]) Push(value V) error {
	if !m.Has(CapStack) {
		return ErrNoStack
	}
	depth := m.ctx.StackDepth()
	if depth >= m.ctx.maxStackDepth {
		return ErrStackOverflow
	}
	if err := m.Write(m.ctx.StackPtr(), value); err != nil {
		return err
	}
	return m.ctx.SetStackDepth(depth + 1)
}

// Pop removes and returns the top of the stack.
func (m *Machine[K, V]) Pop() (V, error) {
	if !m.Has(CapStack) {
		return base.Zero[V](), ErrNoStack
	}
	depth := m.ctx.StackDepth()
	if depth == 0 {
		return base.Zero[V](), ErrStackUnderflow
	}
	if err := m.ctx.SetStackDepth(depth - 1); err != nil {
		return base.Zero[V](), err
	}
	return m.Read(m.ctx.StackPtr())
}
