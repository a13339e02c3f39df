package base

import "github.com/holiman/uint256"

// U256 is a 256-bit word backed by uint256.Int.
type U256 uint256.Int

// NewU256 copies a uint256.Int into a U256.
func NewU256(v *uint256.Int) U256 {
	return U256(*v)
}

func (a U256) raw() *uint256.Int {
	return (*uint256.Int)(&a)
}

// Int returns a copy of the underlying uint256.Int.
func (a U256) Int() *uint256.Int {
	return a.raw().Clone()
}

func (U256) Width() int { return 32 }

func (a U256) Add(b U256) U256 {
	var z uint256.Int
	z.Add(a.raw(), b.raw())
	return U256(z)
}

func (a U256) Sub(b U256) U256 {
	var z uint256.Int
	z.Sub(a.raw(), b.raw())
	return U256(z)
}

func (a U256) Mod(b U256) U256 {
	var z uint256.Int
	z.Mod(a.raw(), b.raw())
	return U256(z)
}

func (a U256) Cmp(b U256) int { return a.raw().Cmp(b.raw()) }

func (a U256) IsZero() bool { return a.raw().IsZero() }

func (a U256) Bytes() []byte {
	b := a.raw().Bytes32()
	return b[:]
}

func (U256) SetBytes(buf []byte) U256 {
	var z uint256.Int
	z.SetBytes(fit(buf, 32))
	return U256(z)
}

func (a U256) Uint64() uint64 { return a.raw().Uint64() }

func (U256) SetUint64(v uint64) U256 {
	var z uint256.Int
	z.SetUint64(v)
	return U256(z)
}

func (a U256) IsUint64() bool { return a.raw().IsUint64() }

func (a U256) String() string { return a.Int().Hex() }
