package circuit

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"MemoryConsistencyCircuit/modules/commitment"
	"MemoryConsistencyCircuit/modules/fields"

	"github.com/PolyhedraZK/ExpanderCompilerCollection/ecgo"
	ecgoTest "github.com/PolyhedraZK/ExpanderCompilerCollection/ecgo/test"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog"
)

// Backend selects what the driver does with each satisfied step.
type Backend uint8

const (
	// BackendSolve only checks that the witness satisfies the circuit.
	BackendSolve Backend = iota
	// BackendGroth16 also proves and verifies every step with Groth16.
	// BN254 only.
	BackendGroth16
)

var (
	ErrUnsatisfied = errors.New("step witness does not satisfy the circuit")
	ErrBackend     = errors.New("backend not available for field")
)

func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", "solve":
		return BackendSolve, nil
	case "groth16":
		return BackendGroth16, nil
	default:
		return 0, fmt.Errorf(`unknown backend "%s"`, name)
	}
}

func (b Backend) String() string {
	if b == BackendGroth16 {
		return "groth16"
	}
	return "solve"
}

// DriverConfig fixes the shape of every step a driver runs.
type DriverConfig struct {
	MemoryLen       int
	NumItersPerStep int
	FieldEnum       fields.ECCFieldEnum
	Scheme          commitment.Scheme
	Backend         Backend
}

// StepResult is the outcome of one satisfied step.
type StepResult struct {
	Step       int
	ZOut       []*big.Int
	Assignment *MemoryConsistencyCircuit
	// Proof and PublicWitness are set by BackendGroth16 only.
	Proof         groth16.Proof
	PublicWitness witness.Witness
}

// Driver chains memory consistency steps, threading z_out of a step into
// z_in of the next. The circuit is compiled once; BN254 goes through the
// gnark R1CS builder, M31 through the ECGO layered compiler.
type Driver struct {
	cfg        DriverConfig
	logger     zerolog.Logger
	compressor commitment.NativeCompressor
	check      func(assignment *MemoryConsistencyCircuit, result *StepResult) error

	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

func NewDriver(cfg DriverConfig, logger zerolog.Logger) (*Driver, error) {
	compressor, err := commitment.NewNativeCompressor(cfg.Scheme, cfg.FieldEnum)
	if err != nil {
		return nil, err
	}

	d := &Driver{cfg: cfg, logger: logger, compressor: compressor}
	placeholder, err := d.circuit()
	if err != nil {
		return nil, err
	}

	switch cfg.FieldEnum {
	case fields.ECCBN254:
		err = d.compileR1CS(placeholder)
	case fields.ECCM31:
		if cfg.Backend != BackendSolve {
			return nil, fmt.Errorf("%w: %s over %s", ErrBackend, cfg.Backend, cfg.FieldEnum)
		}
		err = d.compileLayered(placeholder)
	default:
		err = fmt.Errorf("%w: %s", ErrBackend, cfg.FieldEnum)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) circuit() (*MemoryConsistencyCircuit, error) {
	c, err := NewPlaceholder(d.cfg.MemoryLen, d.cfg.NumItersPerStep)
	if err != nil {
		return nil, err
	}
	c.FieldEnum = d.cfg.FieldEnum
	c.Scheme = d.cfg.Scheme
	return c, nil
}

func (d *Driver) compileR1CS(placeholder *MemoryConsistencyCircuit) error {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, placeholder)
	if err != nil {
		return fmt.Errorf("compile step circuit: %w", err)
	}
	d.ccs = ccs

	d.logger.Info().
		Int("constraints", ccs.GetNbConstraints()).
		Int("internal", ccs.GetNbInternalVariables()).
		Int("secret", ccs.GetNbSecretVariables()).
		Int("public", ccs.GetNbPublicVariables()).
		Msg("compiled step circuit")

	if d.cfg.Backend == BackendGroth16 {
		d.logger.Info().Msg("groth16 generating setup from scratch")
		if d.pk, d.vk, err = groth16.Setup(ccs); err != nil {
			return fmt.Errorf("groth16 setup: %w", err)
		}
	}

	d.check = func(assignment *MemoryConsistencyCircuit, result *StepResult) error {
		w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
		if err != nil {
			return err
		}
		if err := d.ccs.IsSolved(w); err != nil {
			return fmt.Errorf("%w: %v", ErrUnsatisfied, err)
		}
		if d.cfg.Backend != BackendGroth16 {
			return nil
		}

		proof, err := groth16.Prove(d.ccs, d.pk, w)
		if err != nil {
			return fmt.Errorf("groth16 prove: %w", err)
		}
		public, err := w.Public()
		if err != nil {
			return err
		}
		if err := groth16.Verify(proof, d.vk, public); err != nil {
			return fmt.Errorf("groth16 verify: %w", err)
		}
		result.Proof, result.PublicWitness = proof, public
		return nil
	}
	return nil
}

func (d *Driver) compileLayered(placeholder *MemoryConsistencyCircuit) error {
	compiled, err := ecgo.Compile(d.cfg.FieldEnum.FieldModulus(), placeholder)
	if err != nil {
		return fmt.Errorf("compile step circuit: %w", err)
	}
	layered := compiled.GetLayeredCircuit()
	solver := compiled.GetInputSolver()
	d.logger.Info().Str("field", d.cfg.FieldEnum.String()).Msg("compiled layered step circuit")

	d.check = func(assignment *MemoryConsistencyCircuit, _ *StepResult) error {
		w, err := solver.SolveInput(assignment, 0)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsatisfied, err)
		}
		if !ecgoTest.CheckCircuit(layered, w) {
			return ErrUnsatisfied
		}
		return nil
	}
	return nil
}

// ConstraintSystem is the compiled R1CS, nil over M31.
func (d *Driver) ConstraintSystem() constraint.ConstraintSystem {
	return d.ccs
}

// VerifyingKey is the Groth16 verifying key, nil unless BackendGroth16.
func (d *Driver) VerifyingKey() groth16.VerifyingKey {
	return d.vk
}

// Groth16Keys returns the Groth16 keys of the step circuit, running the
// setup only when the driver does not hold keys yet.
func (d *Driver) Groth16Keys() (groth16.ProvingKey, groth16.VerifyingKey, error) {
	if d.ccs == nil {
		return nil, nil, fmt.Errorf("%w: groth16 over %s", ErrBackend, d.cfg.FieldEnum)
	}
	if d.pk == nil || d.vk == nil {
		d.logger.Info().Msg("groth16 generating setup from scratch")
		pk, vk, err := groth16.Setup(d.ccs)
		if err != nil {
			return nil, nil, fmt.Errorf("groth16 setup: %w", err)
		}
		d.pk, d.vk = pk, vk
	}
	return d.pk, d.vk, nil
}

// Commit commits memory with the driver's compressor.
func (d *Driver) Commit(memory []*big.Int) *big.Int {
	return commitment.CommitNative(d.compressor, memory)
}

// InitialState is zeroed memory followed by its commitment.
func (d *Driver) InitialState() []*big.Int {
	memory := make([]*big.Int, d.cfg.MemoryLen)
	for i := range memory {
		memory[i] = new(big.Int)
	}
	return append(memory, d.Commit(memory))
}

// Step runs one batch of exactly NumItersPerStep entries from zIn.
func (d *Driver) Step(step int, zIn []*big.Int, batch []Entry) (*StepResult, error) {
	if len(batch) != d.cfg.NumItersPerStep {
		return nil, fmt.Errorf("%w: %d entries for %d iterations", ErrBatchSize, len(batch), d.cfg.NumItersPerStep)
	}

	zOut, violation := Evaluate(d.compressor, d.cfg.FieldEnum.FieldModulus(), step, zIn, batch)
	if zOut == nil {
		return nil, violation
	}

	assignment, err := d.circuit()
	if err != nil {
		return nil, err
	}
	for i, e := range batch {
		assignment.Trace[i] = TraceEntry{Address: e.Address, Instruction: e.Instruction, Value: e.Value}
	}
	if err := assignment.Assign(zIn, zOut); err != nil {
		return nil, err
	}

	result := &StepResult{Step: step, ZOut: zOut, Assignment: assignment}
	if err := d.check(assignment, result); err != nil {
		if violation != nil {
			return nil, fmt.Errorf("%w: %w", err, violation)
		}
		return nil, err
	}
	if violation != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsatisfied, violation)
	}

	d.logger.Debug().
		Int("step", step).
		Str("commitment", zOut[d.cfg.MemoryLen].String()).
		Msg("step satisfied")
	return result, nil
}

// Run splits entries into steps, padding the last one, and runs them in
// sequence from zIn.
func (d *Driver) Run(zIn []*big.Int, entries []Entry) ([]*StepResult, error) {
	n := d.cfg.NumItersPerStep
	results := make([]*StepResult, 0, (len(entries)+n-1)/n)

	state := zIn
	for step := 0; step*n < len(entries); step++ {
		batch := entries[step*n : min((step+1)*n, len(entries))]
		batch = Pad(batch, n, state[:d.cfg.MemoryLen])

		result, err := d.Step(step, state, batch)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		state = result.ZOut
	}

	d.logger.Info().
		Int("steps", len(results)).
		Int("entries", len(entries)).
		Str("commitment", state[d.cfg.MemoryLen].String()).
		Msg("memory trace proven consistent")
	return results, nil
}
