package commitment

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// fold reduces leaves to one element. Each round pairs adjacent elements
// starting from the end of the sequence, the later element of a pair being
// the left input, and halves the length. With an odd length the first
// element is carried unpaired into the next round.
func fold[T any](leaves []T, compress func(left, right T) T) T {
	if len(leaves) == 0 {
		panic("commitment of an empty memory")
	}

	level := leaves
	for len(level) > 1 {
		n := len(level)
		off := n % 2
		next := make([]T, (n+1)/2)
		if off == 1 {
			next[0] = level[0]
		}
		for p := 0; off+2*p < n; p++ {
			next[off+p] = compress(level[off+2*p+1], level[off+2*p])
		}
		level = next
	}
	return level[0]
}

// Commit folds memory inside a circuit.
func Commit(c Compressor, memory []frontend.Variable) frontend.Variable {
	return fold(memory, c.Compress)
}

// CommitNative folds memory outside a circuit.
func CommitNative(c NativeCompressor, memory []*big.Int) *big.Int {
	return fold(memory, c.Compress)
}
