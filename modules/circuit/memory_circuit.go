package circuit

import (
	"errors"
	"fmt"
	"math/big"
	"slices"

	"MemoryConsistencyCircuit/modules/commitment"
	"MemoryConsistencyCircuit/modules/fields"

	"github.com/consensys/gnark/frontend"
)

const (
	// InstructionRead checks that the addressed cell holds the value.
	InstructionRead uint64 = 0
	// InstructionWrite overwrites the addressed cell.
	InstructionWrite uint64 = 1
)

var (
	ErrArity      = errors.New("state vector does not match circuit arity")
	ErrBatchSize  = errors.New("trace batch does not match iterations per step")
	ErrMemoryLen  = errors.New("memory length must be positive")
	ErrIterations = errors.New("iterations per step must be positive")
)

// TraceEntry is one cell access of a step, as circuit variables.
type TraceEntry struct {
	Address     frontend.Variable
	Instruction frontend.Variable
	Value       frontend.Variable
}

// MemoryConsistencyCircuit proves that a batch of cell accesses turns the
// committed memory in ZIn into the committed memory in ZOut. A state vector
// is the flattened memory followed by its commitment.
type MemoryConsistencyCircuit struct {
	MemoryLen       int                 `gnark:"-"`
	NumItersPerStep int                 `gnark:"-"`
	FieldEnum       fields.ECCFieldEnum `gnark:"-"`
	Scheme          commitment.Scheme   `gnark:"-"`

	ZIn   []frontend.Variable `gnark:",public"`
	ZOut  []frontend.Variable `gnark:",public"`
	Trace []TraceEntry
}

var _ StepCircuit = (*MemoryConsistencyCircuit)(nil)

// NewMemoryConsistencyCircuit builds the circuit of one step whose batch is
// given as three parallel sequences. The state vectors are left unassigned,
// see Assign.
func NewMemoryConsistencyCircuit(
	memoryLen, numItersPerStep int,
	address, instruction, value []uint64,
) (*MemoryConsistencyCircuit, error) {
	c, err := NewPlaceholder(memoryLen, numItersPerStep)
	if err != nil {
		return nil, err
	}

	if len(address) != numItersPerStep || len(instruction) != numItersPerStep || len(value) != numItersPerStep {
		return nil, fmt.Errorf("%w: %d, %d, %d entries for %d iterations",
			ErrBatchSize, len(address), len(instruction), len(value), numItersPerStep)
	}

	for i := range c.Trace {
		c.Trace[i] = TraceEntry{
			Address:     address[i],
			Instruction: instruction[i],
			Value:       value[i],
		}
	}
	return c, nil
}

// NewPlaceholder allocates the shape of a circuit for compilation. It
// defaults to MiMC over BN254.
func NewPlaceholder(memoryLen, numItersPerStep int) (*MemoryConsistencyCircuit, error) {
	if memoryLen <= 0 {
		return nil, ErrMemoryLen
	}
	if numItersPerStep <= 0 {
		return nil, ErrIterations
	}

	return &MemoryConsistencyCircuit{
		MemoryLen:       memoryLen,
		NumItersPerStep: numItersPerStep,
		FieldEnum:       fields.ECCBN254,
		Scheme:          commitment.SchemeMiMC,
		ZIn:             make([]frontend.Variable, memoryLen+1),
		ZOut:            make([]frontend.Variable, memoryLen+1),
		Trace:           make([]TraceEntry, numItersPerStep),
	}, nil
}

// Assign sets the state vectors of an assignment.
func (c *MemoryConsistencyCircuit) Assign(zIn, zOut []*big.Int) error {
	if len(zIn) != c.Arity() || len(zOut) != c.Arity() {
		return fmt.Errorf("%w: %d and %d elements, want %d", ErrArity, len(zIn), len(zOut), c.Arity())
	}
	for i := range zIn {
		c.ZIn[i] = zIn[i]
		c.ZOut[i] = zOut[i]
	}
	return nil
}

// Arity is memory_len cells plus the commitment.
func (c *MemoryConsistencyCircuit) Arity() int {
	return c.MemoryLen + 1
}

func (c *MemoryConsistencyCircuit) Define(api frontend.API) error {
	zOut, err := c.Synthesize(api, c.ZIn)
	if err != nil {
		return err
	}
	if len(c.ZOut) != len(zOut) {
		return fmt.Errorf("%w: z_out has %d elements", ErrArity, len(c.ZOut))
	}

	for i := range zOut {
		api.AssertIsEqual(zOut[i], c.ZOut[i])
	}
	return nil
}

// Synthesize applies the batch to the memory committed in zIn. The carried
// commitment is checked against the incoming memory only; later iterations
// start from memory the circuit itself committed.
func (c *MemoryConsistencyCircuit) Synthesize(api frontend.API, zIn []frontend.Variable) ([]frontend.Variable, error) {
	if len(zIn) != c.Arity() {
		return nil, fmt.Errorf("%w: z_in has %d elements, want %d", ErrArity, len(zIn), c.Arity())
	}
	if len(c.Trace) != c.NumItersPerStep {
		return nil, fmt.Errorf("%w: %d entries for %d iterations", ErrBatchSize, len(c.Trace), c.NumItersPerStep)
	}

	engine := fields.ArithmeticEngine{ECCFieldEnum: c.FieldEnum, API: api}
	compressor, err := commitment.NewCompressor(c.Scheme, engine)
	if err != nil {
		return nil, err
	}

	memory := slices.Clone(zIn[:c.MemoryLen])
	api.AssertIsEqual(commitment.Commit(compressor, memory), zIn[c.MemoryLen])

	for _, entry := range c.Trace {
		// one indicator per cell, exactly one of them set
		indicators := make([]frontend.Variable, c.MemoryLen)
		var hits frontend.Variable = 0
		for i := range indicators {
			indicators[i] = engine.IsEqual(entry.Address, i)
			hits = api.Add(hits, indicators[i])
		}
		api.AssertIsEqual(hits, 1)

		current := engine.InnerProduct(indicators, memory)

		engine.AssertProductIsZero(entry.Instruction, api.Sub(entry.Instruction, 1))
		engine.AssertProductIsZero(api.Sub(entry.Instruction, 1), api.Sub(current, entry.Value))

		for i := range memory {
			memory[i] = api.Select(indicators[i], entry.Value, memory[i])
		}
	}

	return append(memory, commitment.Commit(compressor, memory)), nil
}
