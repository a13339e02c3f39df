package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/spf13/cobra"
)

var (
	groth16CRSFile   string
	groth16VKFile    string
	groth16Mode      string
	groth16ProofFile string
)

var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "Execute the configured program and prove its memory trace consistent",
	Long: `
Execute the configured program, split its cell trace into steps and check
every step against the memory consistency circuit. With --groth16-mode the
steps are also set up, proven or verified with Groth16 keys kept in files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := execute(cfg, true)
		if err != nil {
			return err
		}
		if groth16Mode == "" {
			return nil
		}
		return groth16Steps(s)
	},
}

func init() {
	zkmemoryCmd.AddCommand(proveCmd)
	proveCmd.PersistentFlags().StringVar(&groth16CRSFile, "groth16-crs", "", "The Groth16 CRS of the step circuit.")
	proveCmd.PersistentFlags().StringVar(&groth16VKFile, "groth16-vk", "", "The Groth16 VK of the step circuit.")
	proveCmd.PersistentFlags().StringVar(&groth16Mode, "groth16-mode", "", "The Groth16 work mode - one of prove/verify/setup.")
	proveCmd.PersistentFlags().StringVar(&groth16ProofFile, "proof", "step", "Prefix of the per-step Groth16 proof files.")
}

func stepProofFile(step int) string {
	return fmt.Sprintf("%s.%d.proof", groth16ProofFile, step)
}

func groth16Steps(s *session) error {
	r1cs := s.driver.ConstraintSystem()
	if r1cs == nil {
		return errors.New("groth16 needs the bn254 field")
	}

	pk := groth16.NewProvingKey(ecc.BN254)
	vk := groth16.NewVerifyingKey(ecc.BN254)

	switch groth16Mode {
	case "setup":
		var err error
		if pk, vk, err = s.driver.Groth16Keys(); err != nil {
			return err
		}
		if err := writeTo(groth16CRSFile, pk.WriteTo); err != nil {
			return err
		}
		return writeTo(groth16VKFile, vk.WriteTo)

	case "prove":
		logger.Info().Msg("groth16 reading CRS from file")
		if err := readFrom(groth16CRSFile, pk.ReadFrom); err != nil {
			return err
		}
		for _, result := range s.results {
			witness, err := frontend.NewWitness(result.Assignment, ecc.BN254.ScalarField())
			if err != nil {
				return err
			}
			proof, err := groth16.Prove(r1cs, pk, witness)
			if err != nil {
				return fmt.Errorf("step %d: groth16 prove: %w", result.Step, err)
			}
			if err := writeTo(stepProofFile(result.Step), proof.WriteTo); err != nil {
				return err
			}
			logger.Info().Int("step", result.Step).Str("file", stepProofFile(result.Step)).Msg("step proven")
		}
		return nil

	case "verify":
		logger.Info().Msg("groth16 reading vk from file")
		if err := readFrom(groth16VKFile, vk.ReadFrom); err != nil {
			return err
		}
		for _, result := range s.results {
			proof := groth16.NewProof(ecc.BN254)
			if err := readFrom(stepProofFile(result.Step), proof.ReadFrom); err != nil {
				return err
			}
			public, err := frontend.NewWitness(result.Assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
			if err != nil {
				return err
			}
			if err := groth16.Verify(proof, vk, public); err != nil {
				return fmt.Errorf("step %d: %w", result.Step, err)
			}
		}
		logger.Info().Int("steps", len(s.results)).Msg("all step proofs verified")
		return nil

	default:
		return fmt.Errorf(`unknown groth16 mode "%s"`, groth16Mode)
	}
}

func writeTo(path string, write func(w io.Writer) (int64, error)) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = write(f)
	return err
}

func readFrom(path string, read func(r io.Reader) (int64, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = read(f)
	return err
}
