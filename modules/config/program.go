package config

import (
	"fmt"
	"math/big"
	"strings"

	"MemoryConsistencyCircuit/modules/base"
	"MemoryConsistencyCircuit/modules/machine"
)

// Op is one program instruction. Addresses and values are decimal or
// 0x-prefixed hexadecimal strings so that 256-bit words fit.
type Op struct {
	Op       string `yaml:"op"`
	Address  string `yaml:"address"`
	Value    string `yaml:"value"`
	Register uint64 `yaml:"register"`
	Src      uint64 `yaml:"src"`
	Reason   string `yaml:"reason"`
}

func (o Op) validate() error {
	switch strings.ToLower(o.Op) {
	case "read", "write":
		if o.Address == "" {
			return invalid("%s needs an address", o.Op)
		}
	case "push", "pop", "set", "mov", "invalid":
	default:
		return invalid("unknown op %q", o.Op)
	}
	return nil
}

func parseWord[T base.Base[T]](s string) (T, error) {
	if s == "" {
		return base.Zero[T](), nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return base.Zero[T](), invalid("bad number %q", s)
	}
	if v.BitLen() > 8*base.WidthOf[T]() {
		return base.Zero[T](), invalid("%s overflows %d bytes", s, base.WidthOf[T]())
	}
	return base.FromBytes[T](v.Bytes()), nil
}

// Instruction builds the machine instruction of o.
func Instruction[K base.Base[K], V base.Base[V]](o Op) (machine.Instruction[K, V], error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	address, err := parseWord[K](o.Address)
	if err != nil {
		return nil, err
	}
	value, err := parseWord[V](o.Value)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(o.Op) {
	case "read":
		return machine.Read[K, V]{Address: address, Value: value}, nil
	case "write":
		return machine.Write[K, V]{Address: address, Value: value}, nil
	case "push":
		return machine.Push[K, V]{Value: value}, nil
	case "pop":
		return machine.Pop[K, V]{Value: value}, nil
	case "set":
		return machine.Set[K, V]{Register: o.Register, Value: value}, nil
	case "mov":
		return machine.Mov[K, V]{Dst: o.Register, Src: o.Src}, nil
	default:
		return machine.Invalid[K, V]{Reason: o.Reason}, nil
	}
}

// Program builds the configured program for a machine with K addresses and
// V values.
func Program[K base.Base[K], V base.Base[V]](ops []Op) ([]machine.Instruction[K, V], error) {
	program := make([]machine.Instruction[K, V], 0, len(ops))
	for i, op := range ops {
		instruction, err := Instruction[K, V](op)
		if err != nil {
			return nil, fmt.Errorf("program op %d: %w", i, err)
		}
		program = append(program, instruction)
	}
	return program, nil
}

// MachineFor resolves the machine section for K addresses.
func MachineFor[K base.Base[K]](m MachineConfig) (machine.Config[K], error) {
	caps, err := m.Caps()
	if err != nil {
		return machine.Config[K]{}, err
	}
	return machine.Config[K]{
		CellSize:      base.FromUint64[K](m.CellSize),
		Capabilities:  caps,
		MaxStackDepth: m.MaxStackDepth,
		NumRegisters:  m.NumRegisters,
	}, nil
}
