package fields

import (
	"fmt"
	"math/big"
	"strings"

	eccFields "github.com/PolyhedraZK/ExpanderCompilerCollection/ecgo/field"
	"github.com/consensys/gnark/frontend"
)

// ECCFieldEnum is the enum value indicating the field a step circuit runs over
type ECCFieldEnum uint64

// The enum assignment is aligning with the ones on ECGO side.
const (
	// ECCM31 is the ECCFieldEnum for Mersenne31 field
	ECCM31 ECCFieldEnum = 1
	// ECCBN254 is the ECCFieldEnum for BN254 field
	ECCBN254 ECCFieldEnum = 2
)

// ParseFieldEnum maps a configuration name onto a field enum.
func ParseFieldEnum(name string) (ECCFieldEnum, error) {
	switch strings.ToLower(name) {
	case "", "bn254":
		return ECCBN254, nil
	case "m31", "mersenne31":
		return ECCM31, nil
	default:
		return 0, fmt.Errorf(`unknown field "%s"`, name)
	}
}

func (f ECCFieldEnum) String() string {
	switch f {
	case ECCBN254:
		return "bn254"
	case ECCM31:
		return "m31"
	default:
		return fmt.Sprintf("ECCFieldEnum(%d)", uint64(f))
	}
}

func (f ECCFieldEnum) GetFieldEngine() eccFields.Field {
	return eccFields.GetFieldById(uint64(f))
}

// FieldModulus finds the modulus for the base field tied to the ECC field enum
func (f ECCFieldEnum) FieldModulus() *big.Int {
	fieldEngine := f.GetFieldEngine()
	return fieldEngine.Field()
}

// FieldBytes stand for the number of bytes of the base field modulus
// tied to the ECC field enum
func (f ECCFieldEnum) FieldBytes() uint {
	fieldModulus := f.FieldModulus()
	bitLen := fieldModulus.BitLen()
	// NOTE: round up against bit-byte rate
	return (uint(bitLen) + 8 - 1) / 8
}

// Fits reports whether v is a canonical element of the field.
func (f ECCFieldEnum) Fits(v *big.Int) bool {
	return v.Sign() >= 0 && v.Cmp(f.FieldModulus()) < 0
}

// ArithmeticEngine extends frontend.API with the handful of gadgets the
// memory circuit is built from.
type ArithmeticEngine struct {
	ECCFieldEnum
	frontend.API
}

// IsEqual returns 1 when a == b and 0 otherwise.
func (engine *ArithmeticEngine) IsEqual(a, b frontend.Variable) frontend.Variable {
	return engine.API.IsZero(engine.API.Sub(a, b))
}

// AssertProductIsZero constrains a * b == 0.
func (engine *ArithmeticEngine) AssertProductIsZero(a, b frontend.Variable) {
	engine.API.AssertIsEqual(engine.API.Mul(a, b), 0)
}

// InnerProduct returns sum(xs[i] * ys[i]).
func (engine *ArithmeticEngine) InnerProduct(xs, ys []frontend.Variable) frontend.Variable {
	if len(xs) != len(ys) {
		panic("inner product of slices of different length")
	}

	var res frontend.Variable = 0
	for i := range xs {
		res = engine.API.Add(res, engine.API.Mul(xs[i], ys[i]))
	}
	return res
}
