package circuit

import (
	"math/big"
	"testing"

	"MemoryConsistencyCircuit/modules/base"
	"MemoryConsistencyCircuit/modules/commitment"
	"MemoryConsistencyCircuit/modules/fields"
	"MemoryConsistencyCircuit/modules/machine"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type m32 = machine.Machine[base.U32, base.U32]

const testMemoryLen = 8

// runProgram drives a small machine through registers, the stack and an
// unaligned word in the general-purpose region.
func runProgram(t *testing.T) *m32 {
	m, err := machine.New[base.U32, base.U32](machine.Config[base.U32]{
		CellSize:      4,
		Capabilities:  machine.CapStack | machine.CapRegisters,
		MaxStackDepth: 2,
		NumRegisters:  2,
	})
	require.NoError(t, err)

	require.NoError(t, m.Run([]machine.Instruction[base.U32, base.U32]{
		machine.Set[base.U32, base.U32]{Register: 0, Value: 0x11223344},
		machine.Push[base.U32, base.U32]{Value: 7},
		machine.Write[base.U32, base.U32]{Address: m.BaseAddress() + 2, Value: 0x01020304},
		machine.Read[base.U32, base.U32]{Address: m.BaseAddress() + 2, Value: 0x01020304},
		machine.Mov[base.U32, base.U32]{Dst: 1, Src: 0},
		machine.Pop[base.U32, base.U32]{Value: 7},
		machine.Write[base.U32, base.U32]{Address: 28, Value: 5},
	}))
	return m
}

func newDriver(t *testing.T, field fields.ECCFieldEnum, scheme commitment.Scheme, backend Backend, numIters int) *Driver {
	d, err := NewDriver(DriverConfig{
		MemoryLen:       testMemoryLen,
		NumItersPerStep: numIters,
		FieldEnum:       field,
		Scheme:          scheme,
		Backend:         backend,
	}, zerolog.Nop())
	require.NoError(t, err)
	return d
}

func finalMemory(m *m32) []string {
	out := make([]string, testMemoryLen)
	for i := range out {
		out[i] = new(big.Int).SetUint64(m.Memory().Cell(base.U32(4 * i)).Uint64()).String()
	}
	return out
}

func TestEntriesFromTrace(t *testing.T) {
	m := runProgram(t)
	entries, err := EntriesFromTrace(m.CellTrace(), m.CellSize(), testMemoryLen, fields.ECCBN254)
	require.NoError(t, err)
	require.Len(t, entries, len(m.CellTrace()))

	// the unaligned write touches cells 4 and 5
	require.Equal(t, Entry{Address: 4, Instruction: InstructionWrite, Value: big.NewInt(0x0102)}, entries[2])
	require.Equal(t, Entry{Address: 5, Instruction: InstructionWrite, Value: big.NewInt(0x03040000)}, entries[3])

	_, err = EntriesFromTrace(m.CellTrace(), m.CellSize(), 4, fields.ECCBN254)
	require.ErrorIs(t, err, ErrCellOutOfRange)

	big32 := []machine.TraceRecord[base.U32, base.U32]{{Address: 0, Kind: machine.KindWrite, Value: 0xffffffff}}
	_, err = EntriesFromTrace(big32, 4, testMemoryLen, fields.ECCM31)
	require.ErrorIs(t, err, ErrValueTooLarge)
}

func TestPad(t *testing.T) {
	memory := bigs(3, 0)
	batch := []Entry{{Address: 0, Instruction: InstructionWrite, Value: big.NewInt(8)}}

	padded := Pad(batch, 3, memory)
	require.Len(t, padded, 3)
	require.Equal(t, InstructionRead, padded[2].Instruction)
	require.Equal(t, int64(8), padded[2].Value.Int64())

	padded = Pad(nil, 2, memory)
	require.Equal(t, int64(3), padded[1].Value.Int64())
}

func TestDriverRunsMachineTrace(t *testing.T) {
	m := runProgram(t)

	for _, numIters := range []int{1, 3, 4} {
		d := newDriver(t, fields.ECCBN254, commitment.SchemeMiMC, BackendSolve, numIters)
		entries, err := EntriesFromTrace(m.CellTrace(), m.CellSize(), testMemoryLen, fields.ECCBN254)
		require.NoError(t, err)

		results, err := d.Run(d.InitialState(), entries)
		require.NoError(t, err)
		require.Len(t, results, (len(entries)+numIters-1)/numIters)

		last := results[len(results)-1].ZOut
		require.Equal(t, finalMemory(m), strs(last[:testMemoryLen]))
		require.Equal(t, 0, d.Commit(last[:testMemoryLen]).Cmp(last[testMemoryLen]))
	}
}

func TestDriverRejectsTamperedTrace(t *testing.T) {
	m := runProgram(t)
	d := newDriver(t, fields.ECCBN254, commitment.SchemeMiMC, BackendSolve, 3)
	entries, err := EntriesFromTrace(m.CellTrace(), m.CellSize(), testMemoryLen, fields.ECCBN254)
	require.NoError(t, err)

	// read of cell 4 right after the unaligned write
	require.Equal(t, InstructionRead, entries[4].Instruction)
	entries[4].Value = big.NewInt(0x0103)

	results, err := d.Run(d.InitialState(), entries)
	require.ErrorIs(t, err, ErrUnsatisfied)
	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, ConstraintError{Step: 1, Iteration: 1, Constraint: ConstraintReadConsistency}, *ce)
	require.Len(t, results, 1)
}

func TestDriverGroth16(t *testing.T) {
	d, err := NewDriver(DriverConfig{
		MemoryLen:       2,
		NumItersPerStep: 1,
		FieldEnum:       fields.ECCBN254,
		Scheme:          commitment.SchemeAdditive,
		Backend:         BackendGroth16,
	}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, d.VerifyingKey())

	// the keys of the groth16 backend are reused, not set up again
	pk, vk, err := d.Groth16Keys()
	require.NoError(t, err)
	require.Same(t, d.pk, pk)
	require.Same(t, d.VerifyingKey(), vk)

	results, err := d.Run(d.InitialState(), []Entry{
		{Address: 1, Instruction: InstructionWrite, Value: big.NewInt(42)},
		{Address: 1, Instruction: InstructionRead, Value: big.NewInt(42)},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NotNil(t, r.Proof)
		require.NotNil(t, r.PublicWitness)
	}
}

func TestDriverLayeredM31(t *testing.T) {
	m := runProgram(t)

	for _, scheme := range []commitment.Scheme{commitment.SchemeAdditive, commitment.SchemePoseidon} {
		t.Run(scheme.String(), func(t *testing.T) {
			d := newDriver(t, fields.ECCM31, scheme, BackendSolve, 4)
			require.Nil(t, d.ConstraintSystem())

			entries, err := EntriesFromTrace(m.CellTrace(), m.CellSize(), testMemoryLen, fields.ECCM31)
			require.NoError(t, err)

			results, err := d.Run(d.InitialState(), entries)
			require.NoError(t, err)
			last := results[len(results)-1].ZOut
			require.Equal(t, finalMemory(m), strs(last[:testMemoryLen]))

			entries[4].Value = big.NewInt(0x0103)
			_, err = d.Run(d.InitialState(), entries)
			require.ErrorIs(t, err, ErrUnsatisfied)
		})
	}
}

func TestDriverGroth16KeysOnDemand(t *testing.T) {
	d := newDriver(t, fields.ECCBN254, commitment.SchemeAdditive, BackendSolve, 1)
	require.Nil(t, d.VerifyingKey())

	pk, vk, err := d.Groth16Keys()
	require.NoError(t, err)
	again, _, err := d.Groth16Keys()
	require.NoError(t, err)
	require.Same(t, pk, again)
	require.Same(t, vk, d.VerifyingKey())

	layered := newDriver(t, fields.ECCM31, commitment.SchemeAdditive, BackendSolve, 1)
	_, _, err = layered.Groth16Keys()
	require.ErrorIs(t, err, ErrBackend)
}

func TestStepRejectsMirrorViolation(t *testing.T) {
	d := newDriver(t, fields.ECCBN254, commitment.SchemeAdditive, BackendSolve, 1)
	// a checker that accepts everything leaves the native evaluation as the only guard
	d.check = func(*MemoryConsistencyCircuit, *StepResult) error { return nil }

	batch := []Entry{{Address: 0, Instruction: 2, Value: big.NewInt(0)}}
	_, err := d.Step(0, d.InitialState(), batch)
	require.ErrorIs(t, err, ErrUnsatisfied)
	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, ConstraintInstruction, ce.Constraint)
}

func TestDriverConfigErrors(t *testing.T) {
	_, err := NewDriver(DriverConfig{
		MemoryLen: 2, NumItersPerStep: 1,
		FieldEnum: fields.ECCM31, Scheme: commitment.SchemeMiMC,
	}, zerolog.Nop())
	require.ErrorIs(t, err, commitment.ErrUnsupportedField)

	_, err = NewDriver(DriverConfig{
		MemoryLen: 2, NumItersPerStep: 1,
		FieldEnum: fields.ECCM31, Scheme: commitment.SchemeAdditive, Backend: BackendGroth16,
	}, zerolog.Nop())
	require.ErrorIs(t, err, ErrBackend)

	b, err := ParseBackend("groth16")
	require.NoError(t, err)
	require.Equal(t, BackendGroth16, b)
	_, err = ParseBackend("plonk")
	require.Error(t, err)
}
