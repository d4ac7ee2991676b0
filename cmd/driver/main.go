package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "driver",
		Short:        "Auction-to-solver translation driver",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a round snapshot into a solver auction",
		RunE:  runEncode,
	}

	encodeCmd.Flags().String("snapshot", "", "round snapshot JSON path")
	encodeCmd.Flags().String("out", "./data/auction.json", "output auction JSON path")
	encodeCmd.Flags().String("weth", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "wrapped native token address")
	encodeCmd.Flags().String("rpc", "", "RPC URL, used for the gas price when the snapshot omits one")
	encodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(encodeCmd)

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "Run one auction round against a solver engine",
		RunE:  runSolve,
	}

	solveCmd.Flags().String("snapshot", "", "round snapshot JSON path")
	solveCmd.Flags().String("solver-endpoint", "", "solver engine base URL")
	solveCmd.Flags().String("solver-address", "", "solver on-chain address")
	solveCmd.Flags().String("weth", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "wrapped native token address")
	solveCmd.Flags().String("rank-by-surplus-after", "", "RFC3339 cutoff after which solutions are ranked by surplus")
	solveCmd.Flags().String("rpc", "", "RPC URL, used for the gas price when the snapshot omits one")
	solveCmd.Flags().String("pg-dsn", "", "Postgres DSN for round persistence")
	solveCmd.Flags().String("results", "./data/rounds.jsonl", "round results JSONL path")
	solveCmd.Flags().Int("max-retries", 5, "maximum solver retry attempts")
	solveCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial solver retry backoff")
	solveCmd.Flags().Duration("timeout", 15*time.Second, "solver request timeout")
	solveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(solveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
