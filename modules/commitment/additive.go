package commitment

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// AdditiveCompressor is the placeholder l + r + 1 combiner.
type AdditiveCompressor struct {
	frontend.API
}

func (c *AdditiveCompressor) Compress(left, right frontend.Variable) frontend.Variable {
	return c.API.Add(left, right, 1)
}

// NativeAdditiveCompressor is the native twin of AdditiveCompressor.
type NativeAdditiveCompressor struct {
	Modulus *big.Int
}

func (c NativeAdditiveCompressor) Compress(left, right *big.Int) *big.Int {
	res := new(big.Int).Add(left, right)
	res.Add(res, big.NewInt(1))
	return res.Mod(res, c.Modulus)
}
