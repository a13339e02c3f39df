package commitment

import (
	"math/big"
	"testing"

	"MemoryConsistencyCircuit/modules/fields"

	"github.com/consensys/gnark-crypto/ecc"
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

// pairs records the compression order with a non-commutative combiner.
func pairs(leaves []string) string {
	return fold(leaves, func(l, r string) string { return "(" + l + r + ")" })
}

func TestFoldOrder(t *testing.T) {
	require.Equal(t, "a", pairs([]string{"a"}))
	require.Equal(t, "(ba)", pairs([]string{"a", "b"}))
	require.Equal(t, "((cb)a)", pairs([]string{"a", "b", "c"}))
	require.Equal(t, "((dc)(ba))", pairs([]string{"a", "b", "c", "d"}))
	require.Equal(t, "(((ed)(cb))a)", pairs([]string{"a", "b", "c", "d", "e"}))
	require.Panics(t, func() { pairs(nil) })
}

func TestAdditiveCommit(t *testing.T) {
	c, err := NewNativeCompressor(SchemeAdditive, fields.ECCBN254)
	require.NoError(t, err)

	// (0+0+1) + (0+0+1) + 1
	require.Equal(t, int64(3), CommitNative(c, bigs(0, 0, 0, 0)).Int64())
	// (0+7+1) + (0+0+1) + 1
	require.Equal(t, int64(10), CommitNative(c, bigs(0, 0, 7, 0)).Int64())
	require.Equal(t, int64(5), CommitNative(c, bigs(5)).Int64())
}

func TestSchemes(t *testing.T) {
	for _, name := range []string{"mimc", "poseidon", "additive"} {
		s, err := ParseScheme(name)
		require.NoError(t, err)
		require.Equal(t, name, s.String())
	}
	_, err := ParseScheme("sha256")
	require.Error(t, err)

	_, err = NewNativeCompressor(SchemeMiMC, fields.ECCM31)
	require.ErrorIs(t, err, ErrUnsupportedField)
	_, err = NewNativeCompressor(SchemePoseidon, fields.ECCBN254)
	require.ErrorIs(t, err, ErrUnsupportedField)
}

func TestNativeMiMCBinds(t *testing.T) {
	c := NativeMiMCCompressor{}
	a := CommitNative(c, bigs(0, 0, 0, 0))
	b := CommitNative(c, bigs(0, 0, 7, 0))
	require.NotEqual(t, a, b)
	require.NotEqual(t, c.Compress(big.NewInt(1), big.NewInt(2)), c.Compress(big.NewInt(2), big.NewInt(1)))
	require.Equal(t, a, CommitNative(c, bigs(0, 0, 0, 0)))
}

type CommitCircuit struct {
	Memory     []frontend.Variable
	Commitment frontend.Variable `gnark:",public"`
	Scheme     Scheme            `gnark:"-"`
}

func (c *CommitCircuit) Define(api frontend.API) error {
	compressor, err := NewCompressor(c.Scheme, fields.ArithmeticEngine{API: api, ECCFieldEnum: fields.ECCBN254})
	if err != nil {
		return err
	}
	api.AssertIsEqual(Commit(compressor, c.Memory), c.Commitment)
	return nil
}

func TestCommitMatchesNative(t *testing.T) {
	memory := bigs(3, 1, 4, 1, 5)

	for _, scheme := range []Scheme{SchemeMiMC, SchemeAdditive} {
		circuit := CommitCircuit{Memory: make([]frontend.Variable, len(memory)), Scheme: scheme}
		cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
		require.NoError(t, err, "ggs compile circuit error")

		native, err := NewNativeCompressor(scheme, fields.ECCBN254)
		require.NoError(t, err)

		assignment := CommitCircuit{Memory: make([]frontend.Variable, len(memory)), Scheme: scheme}
		for i, m := range memory {
			assignment.Memory[i] = m
		}

		assignment.Commitment = CommitNative(native, memory)
		witness, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
		require.NoError(t, err)
		require.NoError(t, cs.IsSolved(witness), scheme.String())

		assignment.Commitment = new(big.Int).Add(CommitNative(native, memory), big.NewInt(1))
		witness, err = frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
		require.NoError(t, err)
		require.Error(t, cs.IsSolved(witness), scheme.String())
	}
}

func TestPoseidonRejectsBN254(t *testing.T) {
	circuit := CommitCircuit{Memory: make([]frontend.Variable, 2), Scheme: SchemePoseidon}
	_, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	require.Error(t, err)
}
