package circuit

import (
	"errors"
	"fmt"
	"math/big"

	"MemoryConsistencyCircuit/modules/base"
	"MemoryConsistencyCircuit/modules/commitment"
	"MemoryConsistencyCircuit/modules/fields"
	"MemoryConsistencyCircuit/modules/machine"
)

var (
	ErrCellOutOfRange = errors.New("cell outside of circuit memory")
	ErrValueTooLarge  = errors.New("value does not fit the field")
)

// Names of the constraints reported by ConstraintError.
const (
	ConstraintCommitment      = "commitment"
	ConstraintAddressRange    = "address range"
	ConstraintInstruction     = "instruction validity"
	ConstraintReadConsistency = "read consistency"
)

// Entry is one cell access of a step: a cell index, an instruction and the
// cell value.
type Entry struct {
	Address     uint64
	Instruction uint64
	Value       *big.Int
}

// ConstraintError reports the first constraint of a step that a witness
// violates.
type ConstraintError struct {
	Step       int
	Iteration  int
	Constraint string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("step %d iteration %d: %s constraint violated", e.Step, e.Iteration, e.Constraint)
}

// EntriesFromTrace turns the cell-level trace of a machine into circuit
// entries. Cell addresses become cell indices.
func EntriesFromTrace[K base.Base[K], V base.Base[V]](
	records []machine.TraceRecord[K, V],
	cellSize K,
	memoryLen int,
	field fields.ECCFieldEnum,
) ([]Entry, error) {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		if !r.Address.IsUint64() || !cellSize.IsUint64() {
			return nil, fmt.Errorf("%w: %v", ErrCellOutOfRange, r.Address)
		}
		index := r.Address.Uint64() / cellSize.Uint64()
		if index >= uint64(memoryLen) {
			return nil, fmt.Errorf("%w: cell %d of %d", ErrCellOutOfRange, index, memoryLen)
		}

		value := new(big.Int).SetBytes(r.Value.Bytes())
		if !field.Fits(value) {
			return nil, fmt.Errorf("%w: %s over %s", ErrValueTooLarge, value, field)
		}

		instruction := InstructionRead
		if r.Kind == machine.KindWrite {
			instruction = InstructionWrite
		}
		entries = append(entries, Entry{Address: index, Instruction: instruction, Value: value})
	}
	return entries, nil
}

// Pad fills a short batch up to n entries with reads of cell 0 at the value
// it holds once the batch has been applied to memory.
func Pad(batch []Entry, n int, memory []*big.Int) []Entry {
	if len(batch) >= n {
		return batch
	}

	cell0 := memory[0]
	for _, e := range batch {
		if e.Address == 0 && e.Instruction == InstructionWrite {
			cell0 = e.Value
		}
	}

	out := make([]Entry, n)
	copy(out, batch)
	for i := len(batch); i < n; i++ {
		out[i] = Entry{Address: 0, Instruction: InstructionRead, Value: cell0}
	}
	return out
}

// Evaluate mirrors MemoryConsistencyCircuit outside of a circuit. It returns
// the z_out the circuit would compute and, when the witness cannot satisfy
// the circuit, the first violated constraint.
func Evaluate(
	compressor commitment.NativeCompressor,
	modulus *big.Int,
	step int,
	zIn []*big.Int,
	batch []Entry,
) ([]*big.Int, error) {
	memoryLen := len(zIn) - 1
	if memoryLen <= 0 {
		return nil, ErrMemoryLen
	}

	mod := func(v *big.Int) *big.Int { return new(big.Int).Mod(v, modulus) }
	memory := make([]*big.Int, memoryLen)
	for i := range memory {
		memory[i] = mod(zIn[i])
	}

	var violation error
	violate := func(iteration int, constraint string) {
		if violation == nil {
			violation = &ConstraintError{Step: step, Iteration: iteration, Constraint: constraint}
		}
	}

	if commitment.CommitNative(compressor, memory).Cmp(mod(zIn[memoryLen])) != 0 {
		violate(0, ConstraintCommitment)
	}

	for k, e := range batch {
		value := mod(e.Value)
		if e.Address >= uint64(memoryLen) {
			violate(k, ConstraintAddressRange)
			continue
		}
		if e.Instruction != InstructionRead && e.Instruction != InstructionWrite {
			violate(k, ConstraintInstruction)
		} else if e.Instruction == InstructionRead && memory[e.Address].Cmp(value) != 0 {
			violate(k, ConstraintReadConsistency)
		}
		memory[e.Address] = value
	}

	return append(memory, commitment.CommitNative(compressor, memory)), violation
}
