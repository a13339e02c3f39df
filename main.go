package main

import (
	"fmt"
	"os"
	"time"

	"MemoryConsistencyCircuit/modules/config"

	gnarkLogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool

	logger zerolog.Logger
)

func init() {
	zkmemoryCmd.PersistentFlags().StringVar(&configFile, "config", "", "The YAML file describing the machine, its program and the step circuit.")
	zkmemoryCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log every trace record and step.")

	zkmemoryCmd.MarkPersistentFlagRequired("config")
}

var zkmemoryCmd = &cobra.Command{
	Use:   "zkmemory",
	Short: "Trace a memory machine and prove its trace consistent step by step",
	Args:  cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).
			With().Timestamp().Logger()
		gnarkLogger.Set(logger)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func main() {
	if err := zkmemoryCmd.Execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}
