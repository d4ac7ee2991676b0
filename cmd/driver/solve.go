package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"solverBridge/internal/config"
	"solverBridge/internal/decode"
	"solverBridge/internal/domain"
	"solverBridge/internal/encode"
	"solverBridge/internal/model"
	"solverBridge/internal/solver"
	"solverBridge/internal/storage"
	"solverBridge/internal/storage/postgres"
)

func runSolve(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.SolverEndpoint == "" {
		return fmt.Errorf("solver endpoint is required")
	}
	if !common.IsHexAddress(cfg.SolverAddress) {
		return fmt.Errorf("invalid solver address: %q", cfg.SolverAddress)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auction, liquidity, weth, err := loadRound(ctx, cfg, logger)
	if err != nil {
		return err
	}

	client, err := solver.NewClient(solver.Config{
		Endpoint:     cfg.SolverEndpoint,
		Address:      common.HexToAddress(cfg.SolverAddress),
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	if err != nil {
		return err
	}

	sinks := []storage.Storage{storage.NewJsonlStorage(cfg.Results)}
	if cfg.PostgresDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, roundStore{ctx: ctx, store: store})
	}

	var rankBySurplusAfter *time.Time
	if !cfg.RankBySurplusAfter.IsZero() {
		rankBySurplusAfter = &cfg.RankBySurplusAfter
	}

	record := runRound(ctx, auction, liquidity, weth, client, rankBySurplusAfter, logger)

	for _, sink := range sinks {
		if err := sink.PutRound(record); err != nil {
			return fmt.Errorf("persist round: %w", err)
		}
	}

	logger.Info("round finished",
		zap.String("auction", record.AuctionID),
		zap.Int("solutions", len(record.Solutions)),
		zap.String("error", record.Error),
	)

	return nil
}

// runRound drives one auction round end to end. Transport failures and
// rejected solver responses both end the round with the error recorded
// on it, so a bad solver never crashes the driver.
func runRound(
	ctx context.Context,
	auction *domain.Auction,
	liquidity []domain.Liquidity,
	weth common.Address,
	client *solver.Client,
	rankBySurplusAfter *time.Time,
	logger *zap.Logger,
) model.RoundRecord {
	record := model.RoundRecord{
		AuctionID: auction.ID,
		Solver:    client.Address().Hex(),
		StartedAt: time.Now().UTC(),
	}

	encoded := encode.EncodeAuction(auction, liquidity, weth)

	raw, err := client.Solve(ctx, encoded)
	if err != nil {
		record.Error = err.Error()
		record.FinishedAt = time.Now().UTC()
		logger.Warn("solver request failed",
			zap.String("auction", auction.ID),
			zap.Error(err),
		)
		return record
	}

	solutions, err := decode.Solutions(raw, auction, liquidity, weth, client.Address(), rankBySurplusAfter)
	if err != nil {
		record.Error = err.Error()
		record.FinishedAt = time.Now().UTC()
		logger.Warn("solver response rejected",
			zap.String("auction", auction.ID),
			zap.Error(err),
		)
		client.Notify(ctx, auction.ID, "invalidSolutions")
		return record
	}

	record.Solutions = make([]model.SolutionRecord, 0, len(solutions))
	for _, solution := range solutions {
		record.Solutions = append(record.Solutions, summarize(solution))
	}
	record.FinishedAt = time.Now().UTC()

	return record
}

func summarize(solution domain.Solution) model.SolutionRecord {
	record := model.SolutionRecord{
		ID:           solution.ID,
		Trades:       len(solution.Trades),
		Interactions: len(solution.Interactions),
	}
	if solution.Gas != nil {
		record.Gas = *solution.Gas
	}
	switch score := solution.Score.(type) {
	case domain.SolverScore:
		record.ScoreKind = "solver"
		record.Score = score.Score.String()
	case domain.RiskAdjustedScore:
		record.ScoreKind = "riskAdjusted"
		record.Score = fmt.Sprintf("%g", score.SuccessProbability)
	case domain.SurplusScore:
		record.ScoreKind = "surplus"
	}
	return record
}

// roundStore adapts the Postgres store to the Storage interface by
// binding the command context.
type roundStore struct {
	ctx   context.Context
	store *postgres.Store
}

func (s roundStore) PutRound(record model.RoundRecord) error {
	return s.store.PutRound(s.ctx, record)
}
