// Package commitment folds the flattened memory of a step circuit into a
// single field element. The fold is generic over a pairwise compressor, and
// every compressor has an in-circuit form and a native twin that produce
// the same element.
package commitment

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"MemoryConsistencyCircuit/modules/fields"

	"github.com/consensys/gnark/frontend"
)

// Scheme names a pairwise compression function.
type Scheme uint8

const (
	// SchemeMiMC is MiMC over BN254, the default.
	SchemeMiMC Scheme = iota
	// SchemePoseidon is Poseidon over Mersenne31 with a width 16 state.
	// The in-circuit form needs the ECGO builder for its pow-5 gate.
	SchemePoseidon
	// SchemeAdditive combines l and r as l + r + 1. It binds nothing and is
	// only useful to hand-check commitments.
	SchemeAdditive
)

var (
	ErrUnsupportedField = errors.New("compression scheme does not support the field")
	ErrNeedsECGO        = errors.New("compression scheme needs the ECGO builder")
)

// ParseScheme maps a configuration name onto a scheme.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(name) {
	case "", "mimc":
		return SchemeMiMC, nil
	case "poseidon":
		return SchemePoseidon, nil
	case "additive":
		return SchemeAdditive, nil
	default:
		return 0, fmt.Errorf(`unknown compression scheme "%s"`, name)
	}
}

func (s Scheme) String() string {
	switch s {
	case SchemeMiMC:
		return "mimc"
	case SchemePoseidon:
		return "poseidon"
	case SchemeAdditive:
		return "additive"
	default:
		return fmt.Sprintf("Scheme(%d)", uint8(s))
	}
}

// Supports reports whether the scheme is defined over field f.
func (s Scheme) Supports(f fields.ECCFieldEnum) bool {
	switch s {
	case SchemeMiMC:
		return f == fields.ECCBN254
	case SchemePoseidon:
		return f == fields.ECCM31
	case SchemeAdditive:
		return f == fields.ECCBN254 || f == fields.ECCM31
	default:
		return false
	}
}

// Compressor combines two field elements inside a circuit.
type Compressor interface {
	Compress(left, right frontend.Variable) frontend.Variable
}

// NativeCompressor combines two reduced field elements outside a circuit.
type NativeCompressor interface {
	Compress(left, right *big.Int) *big.Int
}

// NewCompressor builds the in-circuit compressor of scheme.
func NewCompressor(scheme Scheme, engine fields.ArithmeticEngine) (Compressor, error) {
	if !scheme.Supports(engine.ECCFieldEnum) {
		return nil, fmt.Errorf("%w: %s over %s", ErrUnsupportedField, scheme, engine.ECCFieldEnum)
	}

	switch scheme {
	case SchemeMiMC:
		return NewMiMCCompressor(engine)
	case SchemePoseidon:
		return NewPoseidonM31x16Compressor(engine)
	default:
		return &AdditiveCompressor{API: engine.API}, nil
	}
}

// NewNativeCompressor builds the native twin of scheme over field f.
func NewNativeCompressor(scheme Scheme, f fields.ECCFieldEnum) (NativeCompressor, error) {
	if !scheme.Supports(f) {
		return nil, fmt.Errorf("%w: %s over %s", ErrUnsupportedField, scheme, f)
	}

	switch scheme {
	case SchemeMiMC:
		return NativeMiMCCompressor{}, nil
	case SchemePoseidon:
		return NativePoseidonM31x16Compressor{}, nil
	default:
		return NativeAdditiveCompressor{Modulus: f.FieldModulus()}, nil
	}
}
