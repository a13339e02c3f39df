package machine

import (
	"fmt"

	"MemoryConsistencyCircuit/modules/base"
)

// Context is the per-machine mutable state shared by the stack and register
// layers. It is owned by exactly one Machine.
type Context[K base.Base[K], V base.Base[V]] struct {
	machine *Machine[K, V]

	timeLog       uint64
	stackBase     K
	stackDepth    uint64
	stackPtr      K
	maxStackDepth uint64
}

// TimeLog is the timestamp the next instruction will be stamped with.
func (c *Context[K, V]) TimeLog() uint64 {
	return c.timeLog
}

// SetTimeLog moves the time log forward to t.
func (c *Context[K, V]) SetTimeLog(t uint64) error {
	if t < c.timeLog {
		return fmt.Errorf("%w: %d < %d", ErrTimeLogRegression, t, c.timeLog)
	}
	c.timeLog = t
	return nil
}

func (c *Context[K, V]) tick() uint64 {
	t := c.timeLog
	c.timeLog++
	return t
}

func (c *Context[K, V]) StackBase() K {
	return c.stackBase
}

func (c *Context[K, V]) StackDepth() uint64 {
	return c.stackDepth
}

// StackPtr is the address of the next free stack slot.
func (c *Context[K, V]) StackPtr() K {
	return c.stackPtr
}

// SetStackDepth moves the stack pointer so that depth slots are in use.
func (c *Context[K, V]) SetStackDepth(depth uint64) error {
	if depth > c.maxStackDepth {
		return fmt.Errorf("%w: depth %d, maximum %d", ErrStackOverflow, depth, c.maxStackDepth)
	}
	c.stackDepth = depth
	c.stackPtr = c.stackBase.Add(c.machine.cellOffset(depth))
	return nil
}

// Apply executes instruction on the machine owning the context.
func (c *Context[K, V]) Apply(instruction Instruction[K, V]) error {
	return instruction.Exec(c.machine)
}
