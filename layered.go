package main

import (
	"fmt"
	"os"
	"path/filepath"

	"MemoryConsistencyCircuit/modules/circuit"

	"github.com/PolyhedraZK/ExpanderCompilerCollection/ecgo"
	ecgoTest "github.com/PolyhedraZK/ExpanderCompilerCollection/ecgo/test"
	"github.com/spf13/cobra"
)

var layeredOutDir string

func init() {
	zkmemoryCmd.AddCommand(layeredCmd)
	layeredCmd.PersistentFlags().StringVar(&layeredOutDir, "out", "", "Directory receiving the layered circuit and per-step witnesses.")
}

var layeredCmd = &cobra.Command{
	Use:   "layered",
	Short: "Compile the step circuit into an Expander layered circuit with per-step witnesses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := execute(cfg, true)
		if err != nil {
			return err
		}
		dc, err := cfg.Circuit.DriverConfig()
		if err != nil {
			return err
		}
		return layeredSteps(dc, s)
	},
}

func layeredSteps(dc circuit.DriverConfig, s *session) error {
	placeholder, err := circuit.NewPlaceholder(dc.MemoryLen, dc.NumItersPerStep)
	if err != nil {
		return err
	}
	placeholder.FieldEnum, placeholder.Scheme = dc.FieldEnum, dc.Scheme

	compilation, err := ecgo.Compile(dc.FieldEnum.FieldModulus(), placeholder)
	if err != nil {
		return err
	}
	layeredCircuit := compilation.GetLayeredCircuit()
	inputSolver := compilation.GetInputSolver()

	if layeredOutDir != "" {
		if err := os.MkdirAll(layeredOutDir, 0755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(layeredOutDir, "circuit.txt"), layeredCircuit.Serialize(), 0644); err != nil {
			return err
		}
	}

	for _, result := range s.results {
		logger.Debug().Int("step", result.Step).Msg("solving witness")
		witness, err := inputSolver.SolveInput(result.Assignment, 0)
		if err != nil {
			return fmt.Errorf("step %d: %w", result.Step, err)
		}

		if !ecgoTest.CheckCircuit(layeredCircuit, witness) {
			return fmt.Errorf("step %d: %w", result.Step, circuit.ErrUnsatisfied)
		}

		if layeredOutDir != "" {
			path := filepath.Join(layeredOutDir, fmt.Sprintf("witness_%d.txt", result.Step))
			if err := os.WriteFile(path, witness.Serialize(), 0644); err != nil {
				return err
			}
		}
	}

	logger.Info().
		Str("field", dc.FieldEnum.String()).
		Int("steps", len(s.results)).
		Str("out", layeredOutDir).
		Msg("layered circuit satisfied by every step")
	return nil
}
