package circuit

import (
	"math/big"
	"testing"

	"MemoryConsistencyCircuit/modules/commitment"
	"MemoryConsistencyCircuit/modules/fields"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/stretchr/testify/require"
)

func bigs(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func strs(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func compileStep(t *testing.T, memoryLen, numIters int, scheme commitment.Scheme) constraint.ConstraintSystem {
	placeholder, err := NewPlaceholder(memoryLen, numIters)
	require.NoError(t, err)
	placeholder.Scheme = scheme

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, placeholder)
	require.NoError(t, err, "ggs compile circuit error")
	return ccs
}

func solveStep(
	t *testing.T,
	ccs constraint.ConstraintSystem,
	scheme commitment.Scheme,
	zIn, zOut []*big.Int,
	address, instruction, value []uint64,
) error {
	assignment, err := NewMemoryConsistencyCircuit(len(zIn)-1, len(address), address, instruction, value)
	require.NoError(t, err)
	assignment.Scheme = scheme
	require.NoError(t, assignment.Assign(zIn, zOut))

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	require.NoError(t, err)
	return ccs.IsSolved(w)
}

func state(t *testing.T, scheme commitment.Scheme, memory ...int64) []*big.Int {
	c, err := commitment.NewNativeCompressor(scheme, fields.ECCBN254)
	require.NoError(t, err)
	m := bigs(memory...)
	return append(m, commitment.CommitNative(c, m))
}

func TestEndToEndWrite(t *testing.T) {
	for _, scheme := range []commitment.Scheme{commitment.SchemeAdditive, commitment.SchemeMiMC} {
		t.Run(scheme.String(), func(t *testing.T) {
			ccs := compileStep(t, 4, 1, scheme)

			zIn := state(t, scheme, 0, 0, 0, 0)
			zOut := state(t, scheme, 0, 0, 7, 0)
			write := func(zOut []*big.Int) error {
				return solveStep(t, ccs, scheme, zIn, zOut, []uint64{2}, []uint64{InstructionWrite}, []uint64{7})
			}

			require.NoError(t, write(zOut))
			require.Error(t, write(state(t, scheme, 0, 7, 0, 0)))
			require.Error(t, write(append(bigs(0, 0, 7, 0), big.NewInt(0))))
		})
	}

	// hand-checked fold with l + r + 1
	require.Equal(t, int64(3), state(t, commitment.SchemeAdditive, 0, 0, 0, 0)[4].Int64())
	require.Equal(t, int64(10), state(t, commitment.SchemeAdditive, 0, 0, 7, 0)[4].Int64())
}

func TestStepConstraints(t *testing.T) {
	scheme := commitment.SchemeMiMC
	ccs := compileStep(t, 4, 1, scheme)
	zIn := state(t, scheme, 0, 5, 0, 0)

	testcases := []struct {
		name        string
		zOut        []*big.Int
		address     uint64
		instruction uint64
		value       uint64
		solved      bool
	}{
		{name: "matching read", zOut: zIn, address: 1, instruction: InstructionRead, value: 5, solved: true},
		{name: "mismatching read", zOut: state(t, scheme, 0, 6, 0, 0), address: 1, instruction: InstructionRead, value: 6},
		{name: "overwrite", zOut: state(t, scheme, 0, 6, 0, 0), address: 1, instruction: InstructionWrite, value: 6, solved: true},
		// value matches the cell, only instruction validity can reject it
		{name: "instruction two", zOut: zIn, address: 1, instruction: 2, value: 5},
		{name: "address out of range", zOut: zIn, address: 4, instruction: InstructionWrite, value: 0},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			err := solveStep(t, ccs, scheme, zIn, tc.zOut,
				[]uint64{tc.address}, []uint64{tc.instruction}, []uint64{tc.value})
			if tc.solved {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestStepBindsIncomingCommitment(t *testing.T) {
	scheme := commitment.SchemeMiMC
	ccs := compileStep(t, 4, 1, scheme)

	// memory claims a 5 the commitment does not cover
	zIn := append(bigs(0, 5, 0, 0), state(t, scheme, 0, 0, 0, 0)[4])
	zOut := state(t, scheme, 0, 5, 0, 0)
	err := solveStep(t, ccs, scheme, zIn, zOut, []uint64{1}, []uint64{InstructionRead}, []uint64{5})
	require.Error(t, err)
}

func TestStepBatch(t *testing.T) {
	scheme := commitment.SchemeAdditive
	ccs := compileStep(t, 3, 3, scheme)

	zIn := state(t, scheme, 1, 2, 3)
	zOut := state(t, scheme, 9, 2, 3)
	err := solveStep(t, ccs, scheme, zIn, zOut,
		[]uint64{0, 0, 2},
		[]uint64{InstructionWrite, InstructionRead, InstructionRead},
		[]uint64{9, 9, 3})
	require.NoError(t, err)

	// the read sees the write earlier in the batch, not the incoming value
	err = solveStep(t, ccs, scheme, zIn, zIn,
		[]uint64{0, 0, 2},
		[]uint64{InstructionWrite, InstructionRead, InstructionRead},
		[]uint64{9, 1, 3})
	require.Error(t, err)
}

func TestNewMemoryConsistencyCircuit(t *testing.T) {
	c, err := NewMemoryConsistencyCircuit(4, 2, []uint64{0, 1}, []uint64{1, 0}, []uint64{5, 0})
	require.NoError(t, err)
	require.Equal(t, 5, c.Arity())
	require.Len(t, c.Trace, 2)

	_, err = NewMemoryConsistencyCircuit(4, 2, []uint64{0}, []uint64{1, 0}, []uint64{5, 0})
	require.ErrorIs(t, err, ErrBatchSize)
	_, err = NewPlaceholder(0, 1)
	require.ErrorIs(t, err, ErrMemoryLen)
	_, err = NewPlaceholder(1, 0)
	require.ErrorIs(t, err, ErrIterations)

	require.ErrorIs(t, c.Assign(bigs(0, 0), bigs(0, 0)), ErrArity)
}

func TestEvaluate(t *testing.T) {
	c, err := commitment.NewNativeCompressor(commitment.SchemeAdditive, fields.ECCBN254)
	require.NoError(t, err)
	modulus := fields.ECCBN254.FieldModulus()
	zIn := state(t, commitment.SchemeAdditive, 0, 0, 0, 0)

	zOut, err := Evaluate(c, modulus, 0, zIn, []Entry{{Address: 2, Instruction: InstructionWrite, Value: big.NewInt(7)}})
	require.NoError(t, err)
	require.Equal(t, strs(state(t, commitment.SchemeAdditive, 0, 0, 7, 0)), strs(zOut))

	testcases := []struct {
		name       string
		zIn        []*big.Int
		batch      []Entry
		constraint string
		iteration  int
	}{
		{
			name:       "stale commitment",
			zIn:        append(bigs(0, 0, 0, 0), big.NewInt(4)),
			batch:      []Entry{{Address: 0, Instruction: InstructionRead, Value: big.NewInt(0)}},
			constraint: ConstraintCommitment,
		},
		{
			name: "instruction two",
			zIn:  zIn,
			batch: []Entry{
				{Address: 0, Instruction: InstructionRead, Value: big.NewInt(0)},
				{Address: 0, Instruction: 2, Value: big.NewInt(0)},
			},
			constraint: ConstraintInstruction,
			iteration:  1,
		},
		{
			name:       "read mismatch",
			zIn:        zIn,
			batch:      []Entry{{Address: 3, Instruction: InstructionRead, Value: big.NewInt(1)}},
			constraint: ConstraintReadConsistency,
		},
		{
			name:       "address range",
			zIn:        zIn,
			batch:      []Entry{{Address: 4, Instruction: InstructionWrite, Value: big.NewInt(1)}},
			constraint: ConstraintAddressRange,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(c, modulus, 3, tc.zIn, tc.batch)
			var ce *ConstraintError
			require.ErrorAs(t, err, &ce)
			require.Equal(t, ConstraintError{Step: 3, Iteration: tc.iteration, Constraint: tc.constraint}, *ce)
		})
	}
}
