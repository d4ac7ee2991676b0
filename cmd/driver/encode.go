package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"solverBridge/internal/chain"
	"solverBridge/internal/config"
	"solverBridge/internal/domain"
	"solverBridge/internal/encode"
	"solverBridge/internal/snapshot"
)

func runEncode(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auction, liquidity, weth, err := loadRound(ctx, cfg, logger)
	if err != nil {
		return err
	}

	encoded := encode.EncodeAuction(auction, liquidity, weth)

	data, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal auction: %w", err)
	}

	if dir := filepath.Dir(cfg.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(cfg.Out, data, 0o644); err != nil {
		return fmt.Errorf("write auction: %w", err)
	}

	logger.Info("auction encoded",
		zap.String("auction", auction.ID),
		zap.Int("tokens", len(encoded.Tokens)),
		zap.Int("orders", len(encoded.Orders)),
		zap.Int("liquidity", len(encoded.Liquidity)),
		zap.String("out", cfg.Out),
	)

	return nil
}

// loadRound reads the snapshot and fills in the round's gas price from
// the chain when the snapshot omits one.
func loadRound(ctx context.Context, cfg config.Config, logger *zap.Logger) (*domain.Auction, []domain.Liquidity, common.Address, error) {
	if cfg.Snapshot == "" {
		return nil, nil, common.Address{}, fmt.Errorf("snapshot path is required")
	}
	if !common.IsHexAddress(cfg.WETH) {
		return nil, nil, common.Address{}, fmt.Errorf("invalid weth address: %q", cfg.WETH)
	}
	weth := common.HexToAddress(cfg.WETH)

	file, err := snapshot.Load(cfg.Snapshot)
	if err != nil {
		return nil, nil, common.Address{}, err
	}

	auction, err := file.Auction()
	if err != nil {
		return nil, nil, common.Address{}, fmt.Errorf("parse snapshot: %w", err)
	}
	liquidity, err := file.LiquiditySet()
	if err != nil {
		return nil, nil, common.Address{}, fmt.Errorf("parse snapshot: %w", err)
	}

	if auction.GasPrice.Sign() == 0 && cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return nil, nil, common.Address{}, fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()

		chainID, err := chainClient.ChainID(ctx)
		if err != nil {
			return nil, nil, common.Address{}, fmt.Errorf("chain id: %w", err)
		}
		logger.Info("connected", zap.String("chain_id", chainID.String()))

		gasPrice, err := chainClient.SuggestGasPrice(ctx)
		if err != nil {
			return nil, nil, common.Address{}, fmt.Errorf("suggest gas price: %w", err)
		}
		auction.GasPrice = gasPrice
		logger.Debug("gas price from chain", zap.String("gas_price", gasPrice.String()))
	}

	return auction, liquidity, weth, nil
}
