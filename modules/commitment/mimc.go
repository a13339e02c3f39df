package commitment

import (
	"math/big"

	"MemoryConsistencyCircuit/modules/fields"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	nativeMiMC "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// MiMCCompressor is a wrapper around the MiMC5 gnark hasher, compressing a
// pair as MiMC(left, right).
type MiMCCompressor struct {
	mimc.MiMC
}

func NewMiMCCompressor(engine fields.ArithmeticEngine) (*MiMCCompressor, error) {
	h, err := mimc.NewMiMC(engine.API)
	if err != nil {
		return nil, err
	}
	return &MiMCCompressor{MiMC: h}, nil
}

func (c *MiMCCompressor) Compress(left, right frontend.Variable) frontend.Variable {
	c.MiMC.Reset()
	c.MiMC.Write(left, right)
	return c.MiMC.Sum()
}

// NativeMiMCCompressor is the gnark-crypto BN254 MiMC twin of MiMCCompressor.
type NativeMiMCCompressor struct{}

func (NativeMiMCCompressor) Compress(left, right *big.Int) *big.Int {
	var l, r fr.Element
	l.SetBigInt(left)
	r.SetBigInt(right)

	h := nativeMiMC.NewMiMC()
	lb := l.Bytes()
	rb := r.Bytes()
	// blocks are canonical field elements, Write cannot fail
	h.Write(lb[:])
	h.Write(rb[:])

	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out.BigInt(new(big.Int))
}
