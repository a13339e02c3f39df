package commitment

import (
	"encoding/binary"
	"math/big"

	"MemoryConsistencyCircuit/modules/fields"

	"github.com/PolyhedraZK/ExpanderCompilerCollection/ecgo"
	"github.com/PolyhedraZK/ExpanderCompilerCollection/ecgo/utils/customgates"
	"github.com/consensys/gnark/frontend"
	"golang.org/x/crypto/sha3"
)

const (
	poseidonWidth    = 16
	poseidonRate     = 8
	poseidonCapacity = poseidonWidth - poseidonRate

	poseidonFullRounds    = 8
	poseidonPartialRounds = 14
	poseidonRounds        = poseidonFullRounds + poseidonPartialRounds
)

var (
	m31Modulus uint64

	poseidonRoundConstant [poseidonRounds][poseidonWidth]uint64
	poseidonMDS           [poseidonWidth][poseidonWidth]uint64

	Pow5GateID     uint64 = 12345
	Pow5CostPseudo int    = 20
)

// Power5 is the hint behind the pow-5 custom gate.
func Power5(field *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	a := new(big.Int).Mul(inputs[0], inputs[0])
	a.Mul(a, a)
	a.Mul(a, inputs[0])
	outputs[0] = a.Mod(a, field)
	return nil
}

func init() {
	m31Modulus = fields.ECCM31.FieldModulus().Uint64()

	// round constants: iterated keccak over the seed, low 4 bytes LE
	seed := []byte("poseidon_seed_Mersenne 31_16")
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(seed)
	seed = hasher.Sum(nil)

	for i := 0; i < poseidonRounds; i++ {
		for j := 0; j < poseidonWidth; j++ {
			hasher.Reset()
			hasher.Write(seed)
			seed = hasher.Sum(nil)

			poseidonRoundConstant[i][j] = uint64(binary.LittleEndian.Uint32(seed[:4])) % m31Modulus
		}
	}

	// circulant MDS
	firstRow := [poseidonWidth]uint64{1, 1, 51, 1, 11, 17, 2, 1, 101, 63, 15, 2, 67, 22, 13, 3}
	for i := 0; i < poseidonWidth; i++ {
		for j := 0; j < poseidonWidth; j++ {
			poseidonMDS[i][j] = firstRow[(i+j)%poseidonWidth]
		}
	}

	customgates.Register(Pow5GateID, Power5, Pow5CostPseudo)
}

// isFullRound reports whether every state element goes through the s-box.
func isFullRound(round int) bool {
	return round < poseidonFullRounds/2 || round >= poseidonFullRounds/2+poseidonPartialRounds
}

// PoseidonM31x16Compressor compresses a pair as the first element of the
// Poseidon state after absorbing (left, right).
type PoseidonM31x16Compressor struct {
	api ecgo.API
}

func NewPoseidonM31x16Compressor(engine fields.ArithmeticEngine) (*PoseidonM31x16Compressor, error) {
	api, ok := engine.API.(ecgo.API)
	if !ok {
		return nil, ErrNeedsECGO
	}
	return &PoseidonM31x16Compressor{api: api}, nil
}

func (c *PoseidonM31x16Compressor) Compress(left, right frontend.Variable) frontend.Variable {
	return c.HashToState(left, right)[0]
}

func (c *PoseidonM31x16Compressor) HashToState(fs ...frontend.Variable) []frontend.Variable {
	numChunks := (len(fs) + poseidonRate - 1) / poseidonRate

	absorbBuffer := make([]frontend.Variable, numChunks*poseidonRate)
	copy(absorbBuffer, fs)
	for i := len(fs); i < len(absorbBuffer); i++ {
		absorbBuffer[i] = 0
	}

	state := make([]frontend.Variable, poseidonWidth)
	for i := range state {
		state[i] = 0
	}

	for i := 0; i < numChunks; i++ {
		for j := poseidonCapacity; j < poseidonWidth; j++ {
			state[j] = c.api.Add(state[j], absorbBuffer[i*poseidonRate+j-poseidonCapacity])
		}
		state = c.permutate(state)
	}

	return state
}

func (c *PoseidonM31x16Compressor) permutate(state []frontend.Variable) []frontend.Variable {
	for round := 0; round < poseidonRounds; round++ {
		for i := 0; i < poseidonWidth; i++ {
			state[i] = c.api.Add(state[i], poseidonRoundConstant[round][i])
		}

		mixed := make([]frontend.Variable, poseidonWidth)
		for i := 0; i < poseidonWidth; i++ {
			mixed[i] = 0
			for j := 0; j < poseidonWidth; j++ {
				mixed[i] = c.api.Add(c.api.Mul(poseidonMDS[i][j], state[j]), mixed[i])
			}
		}
		state = mixed

		if isFullRound(round) {
			for i := 0; i < poseidonWidth; i++ {
				state[i] = c.api.CustomGate(Pow5GateID, state[i])
			}
		} else {
			state[0] = c.api.CustomGate(Pow5GateID, state[0])
		}
	}

	return state
}

// NativePoseidonM31x16Compressor is the native twin of
// PoseidonM31x16Compressor.
type NativePoseidonM31x16Compressor struct{}

func (NativePoseidonM31x16Compressor) Compress(left, right *big.Int) *big.Int {
	l := new(big.Int).Mod(left, fields.ECCM31.FieldModulus()).Uint64()
	r := new(big.Int).Mod(right, fields.ECCM31.FieldModulus()).Uint64()
	return new(big.Int).SetUint64(PoseidonM31x16HashToState(l, r)[0])
}

// PoseidonM31x16HashToState absorbs reduced M31 elements and returns the
// whole state.
func PoseidonM31x16HashToState(fs ...uint64) [poseidonWidth]uint64 {
	var state [poseidonWidth]uint64

	numChunks := (len(fs) + poseidonRate - 1) / poseidonRate
	for i := 0; i < numChunks; i++ {
		for j := poseidonCapacity; j < poseidonWidth; j++ {
			if k := i*poseidonRate + j - poseidonCapacity; k < len(fs) {
				state[j] = (state[j] + fs[k]) % m31Modulus
			}
		}
		poseidonPermutateNative(&state)
	}

	return state
}

func poseidonPermutateNative(state *[poseidonWidth]uint64) {
	for round := 0; round < poseidonRounds; round++ {
		for i := range state {
			state[i] = (state[i] + poseidonRoundConstant[round][i]) % m31Modulus
		}

		var mixed [poseidonWidth]uint64
		for i := 0; i < poseidonWidth; i++ {
			for j := 0; j < poseidonWidth; j++ {
				mixed[i] = (mixed[i] + poseidonMDS[i][j]*state[j]) % m31Modulus
			}
		}
		*state = mixed

		if isFullRound(round) {
			for i := range state {
				state[i] = pow5M31(state[i])
			}
		} else {
			state[0] = pow5M31(state[0])
		}
	}
}

func pow5M31(x uint64) uint64 {
	x2 := x * x % m31Modulus
	x4 := x2 * x2 % m31Modulus
	return x4 * x % m31Modulus
}
