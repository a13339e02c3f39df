package main

import (
	"encoding/hex"

	"MemoryConsistencyCircuit/modules/base"
	"MemoryConsistencyCircuit/modules/circuit"
	"MemoryConsistencyCircuit/modules/config"
	"MemoryConsistencyCircuit/modules/machine"
	"MemoryConsistencyCircuit/modules/tracelog"

	"github.com/spf13/cobra"
)

func init() {
	zkmemoryCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the configured program and print its memory trace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, err = execute(cfg, false)
		return err
	},
}

// session is what executing a program leaves for the proving commands.
type session struct {
	entries []circuit.Entry
	driver  *circuit.Driver
	results []*circuit.StepResult
}

// execute picks the machine instantiation from the configured widths.
func execute(cfg config.Config, prove bool) (*session, error) {
	switch cfg.Machine.AddressBits {
	case 32:
		return executeValues[base.U32](cfg, prove)
	case 64:
		return executeValues[base.U64](cfg, prove)
	default:
		return executeValues[base.U256](cfg, prove)
	}
}

func executeValues[K base.Base[K]](cfg config.Config, prove bool) (*session, error) {
	switch cfg.Machine.ValueBits {
	case 32:
		return executeMachine[K, base.U32](cfg, prove)
	case 64:
		return executeMachine[K, base.U64](cfg, prove)
	default:
		return executeMachine[K, base.U256](cfg, prove)
	}
}

func executeMachine[K base.Base[K], V base.Base[V]](cfg config.Config, prove bool) (*session, error) {
	mc, err := config.MachineFor[K](cfg.Machine)
	if err != nil {
		return nil, err
	}
	m, err := machine.New[K, V](mc)
	if err != nil {
		return nil, err
	}
	program, err := config.Program[K, V](cfg.Program)
	if err != nil {
		return nil, err
	}

	if err := m.Run(program); err != nil {
		return nil, err
	}

	for _, r := range m.Trace() {
		logger.Info().
			Uint64("time", r.TimeLog).
			Str("address", hex.EncodeToString(r.Address.Bytes())).
			Str("kind", r.Kind.String()).
			Str("value", hex.EncodeToString(r.Value.Bytes())).
			Msg("trace")
	}

	cells := m.CellTrace()
	audit, err := tracelog.FromTrace(cells)
	if err != nil {
		return nil, err
	}
	root, err := audit.Root()
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("instructions", len(program)).
		Int("cellAccesses", len(cells)).
		Str("auditRoot", hex.EncodeToString(root)).
		Msg("program executed")

	if !prove {
		return nil, nil
	}

	dc, err := cfg.Circuit.DriverConfig()
	if err != nil {
		return nil, err
	}
	entries, err := circuit.EntriesFromTrace(cells, m.CellSize(), dc.MemoryLen, dc.FieldEnum)
	if err != nil {
		return nil, err
	}
	driver, err := circuit.NewDriver(dc, logger)
	if err != nil {
		return nil, err
	}
	results, err := driver.Run(driver.InitialState(), entries)
	if err != nil {
		return nil, err
	}
	return &session{entries: entries, driver: driver, results: results}, nil
}
