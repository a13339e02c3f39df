// Package config loads the YAML description of a machine, the program it
// runs and the circuit its trace is proven with.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"MemoryConsistencyCircuit/modules/circuit"
	"MemoryConsistencyCircuit/modules/commitment"
	"MemoryConsistencyCircuit/modules/fields"
	"MemoryConsistencyCircuit/modules/machine"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the root of a configuration file.
type Config struct {
	Machine MachineConfig `yaml:"machine"`
	Circuit CircuitConfig `yaml:"circuit"`
	Program []Op          `yaml:"program"`
}

// MachineConfig describes the traced machine.
type MachineConfig struct {
	AddressBits   int      `yaml:"addressBits"`
	ValueBits     int      `yaml:"valueBits"`
	CellSize      uint64   `yaml:"cellSize"`
	Capabilities  []string `yaml:"capabilities"`
	MaxStackDepth uint64   `yaml:"maxStackDepth"`
	NumRegisters  uint64   `yaml:"numRegisters"`
}

// CircuitConfig describes the step circuit and how steps are checked.
type CircuitConfig struct {
	Field        string `yaml:"field"`
	Scheme       string `yaml:"scheme"`
	MemoryLen    int    `yaml:"memoryLen"`
	ItersPerStep int    `yaml:"itersPerStep"`
	Backend      string `yaml:"backend"`
}

// Load reads a YAML file into a Config with defaults applied.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Config{}, errors.New("config path cannot be empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML content into a Config with defaults applied.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Machine.AddressBits == 0 {
		c.Machine.AddressBits = 64
	}
	if c.Machine.ValueBits == 0 {
		c.Machine.ValueBits = 256
	}
	if c.Machine.CellSize == 0 {
		c.Machine.CellSize = uint64(c.Machine.ValueBits / 8)
	}
	if c.Circuit.Field == "" {
		c.Circuit.Field = fields.ECCBN254.String()
	}
	if c.Circuit.Scheme == "" {
		c.Circuit.Scheme = commitment.SchemeMiMC.String()
	}
	if c.Circuit.MemoryLen == 0 {
		c.Circuit.MemoryLen = 16
	}
	if c.Circuit.ItersPerStep == 0 {
		c.Circuit.ItersPerStep = 4
	}
	if c.Circuit.Backend == "" {
		c.Circuit.Backend = circuit.BackendSolve.String()
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func validBits(bits int) bool {
	return bits == 32 || bits == 64 || bits == 256
}

// Caps maps capability names onto machine capabilities.
func (m MachineConfig) Caps() (machine.Capability, error) {
	var caps machine.Capability
	for _, name := range m.Capabilities {
		switch strings.ToLower(name) {
		case "stack":
			caps |= machine.CapStack
		case "registers":
			caps |= machine.CapRegisters
		default:
			return 0, invalid("unknown capability %q", name)
		}
	}
	return caps, nil
}

// DriverConfig resolves the circuit section.
func (c CircuitConfig) DriverConfig() (circuit.DriverConfig, error) {
	field, err := fields.ParseFieldEnum(c.Field)
	if err != nil {
		return circuit.DriverConfig{}, invalid("%v", err)
	}
	scheme, err := commitment.ParseScheme(c.Scheme)
	if err != nil {
		return circuit.DriverConfig{}, invalid("%v", err)
	}
	backend, err := circuit.ParseBackend(c.Backend)
	if err != nil {
		return circuit.DriverConfig{}, invalid("%v", err)
	}
	return circuit.DriverConfig{
		MemoryLen:       c.MemoryLen,
		NumItersPerStep: c.ItersPerStep,
		FieldEnum:       field,
		Scheme:          scheme,
		Backend:         backend,
	}, nil
}

// Validate ensures the configuration is internally consistent.
func (c Config) Validate() error {
	m := c.Machine
	if !validBits(m.AddressBits) {
		return invalid("address width %d bits, want 32, 64 or 256", m.AddressBits)
	}
	if !validBits(m.ValueBits) {
		return invalid("value width %d bits, want 32, 64 or 256", m.ValueBits)
	}
	if m.CellSize != uint64(m.ValueBits/8) {
		return invalid("cell size %d must be the value width of %d bytes", m.CellSize, m.ValueBits/8)
	}
	if _, err := m.Caps(); err != nil {
		return err
	}

	dc, err := c.Circuit.DriverConfig()
	if err != nil {
		return err
	}
	if dc.MemoryLen <= 0 || dc.NumItersPerStep <= 0 {
		return invalid("memoryLen and itersPerStep must be positive")
	}
	if !dc.Scheme.Supports(dc.FieldEnum) {
		return invalid("scheme %s over field %s", dc.Scheme, dc.FieldEnum)
	}
	if uint(m.ValueBits/8) > dc.FieldEnum.FieldBytes() {
		return invalid("%d-bit values cannot be field elements of %s", m.ValueBits, dc.FieldEnum)
	}
	if dc.Backend == circuit.BackendGroth16 && dc.FieldEnum != fields.ECCBN254 {
		return invalid("groth16 needs bn254, not %s", dc.FieldEnum)
	}

	for i, op := range c.Program {
		if err := op.validate(); err != nil {
			return fmt.Errorf("program op %d: %w", i, err)
		}
	}
	return nil
}
