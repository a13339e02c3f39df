package circuit

import "github.com/consensys/gnark/frontend"

// StepCircuit is one step of an incremental computation. Synthesize maps a
// state vector z_in to a z_out of the same Arity, adding the constraints that
// relate the two to api.
type StepCircuit interface {
	Arity() int
	Synthesize(api frontend.API, zIn []frontend.Variable) ([]frontend.Variable, error)
}
