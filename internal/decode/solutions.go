// Package decode validates solver responses against the auction and
// liquidity snapshot they were produced for, turning them into domain
// solutions.
package decode

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/sync/errgroup"

	"solverBridge/internal/domain"
	"solverBridge/internal/model"
)

// Error is a terminal validation failure for one solver response.
// A response that fails validation is treated as having produced no
// usable solution for the round; it is never retried at this layer.
type Error string

func (e Error) Error() string { return string(e) }

func errorf(format string, args ...interface{}) Error {
	return Error(fmt.Sprintf(format, args...))
}

// Solutions parses a raw solver response and validates every candidate
// solution against the auction and the round's liquidity set.
// Candidates are independent and validated concurrently; the result
// preserves input order. The whole batch fails if any single candidate
// is invalid, since a response containing even one malformed solution
// is untrustworthy as a whole.
func Solutions(
	raw []byte,
	auction *domain.Auction,
	liquidity []domain.Liquidity,
	weth common.Address,
	solver common.Address,
	rankBySurplusAfter *time.Time,
) ([]domain.Solution, error) {
	response, err := model.ParseSolutions(raw)
	if err != nil {
		return nil, errorf("%v", err)
	}

	liquidityByID := make(map[uint64]domain.Liquidity, len(liquidity))
	for _, entry := range liquidity {
		liquidityByID[entry.ID] = entry
	}

	solutions := make([]domain.Solution, len(response.Solutions))
	var group errgroup.Group
	for i := range response.Solutions {
		i := i
		group.Go(func() error {
			solution, err := decodeSolution(response.Solutions[i], auction, liquidityByID, weth, solver, rankBySurplusAfter)
			if err != nil {
				return err
			}
			solutions[i] = solution
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return solutions, nil
}

func decodeSolution(
	candidate model.Solution,
	auction *domain.Auction,
	liquidityByID map[uint64]domain.Liquidity,
	weth common.Address,
	solver common.Address,
	rankBySurplusAfter *time.Time,
) (domain.Solution, error) {
	trades := make([]domain.Trade, 0, len(candidate.Trades))
	for _, trade := range candidate.Trades {
		decoded, err := decodeTrade(trade, auction, solver)
		if err != nil {
			return domain.Solution{}, err
		}
		trades = append(trades, decoded)
	}

	prices := make(map[common.Address]*big.Int, len(candidate.Prices))
	for token, price := range candidate.Prices {
		address, err := parseAddress(token)
		if err != nil {
			return domain.Solution{}, errorf("invalid price token: %v", err)
		}
		amount, err := parseAmount(price)
		if err != nil {
			return domain.Solution{}, errorf("invalid price for token %s: %v", token, err)
		}
		prices[address] = amount
	}

	interactions := make([]domain.Interaction, 0, len(candidate.Interactions))
	for _, interaction := range candidate.Interactions {
		decoded, err := decodeInteraction(interaction, liquidityByID)
		if err != nil {
			return domain.Solution{}, err
		}
		interactions = append(interactions, decoded)
	}

	score, err := resolveScore(candidate.Score, auction.Deadline.Driver, rankBySurplusAfter)
	if err != nil {
		return domain.Solution{}, err
	}

	solution, err := domain.NewSolution(candidate.ID, trades, prices, interactions, solver, score, weth, candidate.Gas)
	if err != nil {
		return domain.Solution{}, errorf("%v", err)
	}
	return solution, nil
}

func decodeTrade(trade model.Trade, auction *domain.Auction, solver common.Address) (domain.Trade, error) {
	switch {
	case trade.Fulfillment != nil:
		return decodeFulfillment(*trade.Fulfillment, auction)
	case trade.Jit != nil:
		return decodeJit(*trade.Jit, solver)
	default:
		return nil, errorf("trade has no variant")
	}
}

func decodeFulfillment(fulfillment model.Fulfillment, auction *domain.Auction) (domain.Trade, error) {
	uid, err := domain.ParseOrderUID(fulfillment.Order)
	if err != nil {
		return nil, errorf("invalid fulfillment: %v", err)
	}
	order, ok := auction.OrderByUID(uid)
	if !ok {
		return nil, errorf("invalid order UID specified in fulfillment: %s", fulfillment.Order)
	}
	executed, err := parseAmount(fulfillment.ExecutedAmount)
	if err != nil {
		return nil, errorf("invalid fulfillment: executed amount: %v", err)
	}
	// A nil fee means the order's static fee applies; a value is a
	// solver-determined dynamic fee for limit orders.
	var fee *big.Int
	if fulfillment.Fee != nil {
		fee, err = parseAmount(*fulfillment.Fee)
		if err != nil {
			return nil, errorf("invalid fulfillment: fee: %v", err)
		}
	}
	decoded, err := domain.NewFulfillment(*order, executed, fee)
	if err != nil {
		return nil, errorf("invalid fulfillment: %v", err)
	}
	return decoded, nil
}

func decodeJit(jit model.JitTrade, solver common.Address) (domain.Trade, error) {
	order, err := decodeJitOrder(jit.Order, solver)
	if err != nil {
		return nil, errorf("invalid JIT trade: %v", err)
	}
	executed, err := parseAmount(jit.ExecutedAmount)
	if err != nil {
		return nil, errorf("invalid JIT trade: executed amount: %v", err)
	}
	decoded, err := domain.NewJit(order, executed)
	if err != nil {
		return nil, errorf("invalid JIT trade: %v", err)
	}
	return decoded, nil
}

func decodeJitOrder(order model.JitOrder, solver common.Address) (domain.JitOrder, error) {
	sellToken, err := parseAddress(order.SellToken)
	if err != nil {
		return domain.JitOrder{}, fmt.Errorf("sell token: %w", err)
	}
	buyToken, err := parseAddress(order.BuyToken)
	if err != nil {
		return domain.JitOrder{}, fmt.Errorf("buy token: %w", err)
	}
	receiver, err := parseAddress(order.Receiver)
	if err != nil {
		return domain.JitOrder{}, fmt.Errorf("receiver: %w", err)
	}
	sellAmount, err := parseAmount(order.SellAmount)
	if err != nil {
		return domain.JitOrder{}, fmt.Errorf("sell amount: %w", err)
	}
	buyAmount, err := parseAmount(order.BuyAmount)
	if err != nil {
		return domain.JitOrder{}, fmt.Errorf("buy amount: %w", err)
	}
	feeAmount, err := parseAmount(order.FeeAmount)
	if err != nil {
		return domain.JitOrder{}, fmt.Errorf("fee amount: %w", err)
	}
	appData, err := parseAppData(order.AppData)
	if err != nil {
		return domain.JitOrder{}, fmt.Errorf("app data: %w", err)
	}
	signature, err := hexutil.Decode(order.Signature)
	if err != nil {
		return domain.JitOrder{}, fmt.Errorf("signature: %w", err)
	}

	side := domain.SideSell
	switch order.Kind {
	case model.KindSell:
	case model.KindBuy:
		side = domain.SideBuy
	default:
		return domain.JitOrder{}, fmt.Errorf("unsupported order kind: %q", order.Kind)
	}

	sellBalance, err := parseSellTokenBalance(order.SellTokenBalance)
	if err != nil {
		return domain.JitOrder{}, err
	}
	buyBalance, err := parseBuyTokenBalance(order.BuyTokenBalance)
	if err != nil {
		return domain.JitOrder{}, err
	}
	scheme, err := parseSigningScheme(order.SigningScheme)
	if err != nil {
		return domain.JitOrder{}, err
	}

	return domain.JitOrder{
		Sell:              domain.Asset{Token: sellToken, Amount: sellAmount},
		Buy:               domain.Asset{Token: buyToken, Amount: buyAmount},
		Fee:               feeAmount,
		Receiver:          receiver,
		ValidTo:           order.ValidTo,
		AppData:           appData,
		Side:              side,
		PartiallyFillable: order.PartiallyFillable,
		SellTokenBalance:  sellBalance,
		BuyTokenBalance:   buyBalance,
		Signature: domain.Signature{
			Scheme: scheme,
			Data:   signature,
			// JIT orders are attributed to the solving party; the
			// signature payload carries no signer of its own.
			Signer: solver,
		},
	}, nil
}

func decodeInteraction(interaction model.Interaction, liquidityByID map[uint64]domain.Liquidity) (domain.Interaction, error) {
	switch {
	case interaction.Liquidity != nil:
		return decodeLiquidityInteraction(*interaction.Liquidity, liquidityByID)
	case interaction.Custom != nil:
		return decodeCustomInteraction(*interaction.Custom)
	default:
		return nil, errorf("interaction has no variant")
	}
}

func decodeLiquidityInteraction(interaction model.LiquidityInteraction, liquidityByID map[uint64]domain.Liquidity) (domain.Interaction, error) {
	id, err := strconv.ParseUint(interaction.ID, 10, 64)
	if err != nil {
		return nil, errorf("invalid liquidity ID specified in interaction: %q", interaction.ID)
	}
	liquidity, ok := liquidityByID[id]
	if !ok {
		return nil, errorf("invalid liquidity ID specified in interaction: %d", id)
	}
	input, err := decodeAsset(model.Asset{Token: interaction.InputToken, Amount: interaction.InputAmount})
	if err != nil {
		return nil, errorf("invalid liquidity interaction input: %v", err)
	}
	output, err := decodeAsset(model.Asset{Token: interaction.OutputToken, Amount: interaction.OutputAmount})
	if err != nil {
		return nil, errorf("invalid liquidity interaction output: %v", err)
	}
	return domain.LiquidityInteraction{
		Liquidity:   liquidity,
		Input:       input,
		Output:      output,
		Internalize: interaction.Internalize,
	}, nil
}

func decodeCustomInteraction(interaction model.CustomInteraction) (domain.Interaction, error) {
	target, err := parseAddress(interaction.Target)
	if err != nil {
		return nil, errorf("invalid custom interaction target: %v", err)
	}
	value, err := parseAmount(interaction.Value)
	if err != nil {
		return nil, errorf("invalid custom interaction value: %v", err)
	}
	callData, err := hexutil.Decode(interaction.CallData)
	if err != nil {
		return nil, errorf("invalid custom interaction call data: %v", err)
	}

	allowances := make([]domain.Allowance, 0, len(interaction.Allowances))
	for _, allowance := range interaction.Allowances {
		token, err := parseAddress(allowance.Token)
		if err != nil {
			return nil, errorf("invalid allowance token: %v", err)
		}
		spender, err := parseAddress(allowance.Spender)
		if err != nil {
			return nil, errorf("invalid allowance spender: %v", err)
		}
		amount, err := parseAmount(allowance.Amount)
		if err != nil {
			return nil, errorf("invalid allowance amount: %v", err)
		}
		allowances = append(allowances, domain.Allowance{Token: token, Spender: spender, Amount: amount})
	}

	inputs, err := decodeAssets(interaction.Inputs)
	if err != nil {
		return nil, errorf("invalid custom interaction inputs: %v", err)
	}
	outputs, err := decodeAssets(interaction.Outputs)
	if err != nil {
		return nil, errorf("invalid custom interaction outputs: %v", err)
	}

	return domain.CustomInteraction{
		Target:      target,
		Value:       value,
		CallData:    callData,
		Allowances:  allowances,
		Inputs:      inputs,
		Outputs:     outputs,
		Internalize: interaction.Internalize,
	}, nil
}

func decodeAssets(assets []model.Asset) ([]domain.Asset, error) {
	out := make([]domain.Asset, 0, len(assets))
	for _, asset := range assets {
		decoded, err := decodeAsset(asset)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

func decodeAsset(asset model.Asset) (domain.Asset, error) {
	token, err := parseAddress(asset.Token)
	if err != nil {
		return domain.Asset{}, err
	}
	amount, err := parseAmount(asset.Amount)
	if err != nil {
		return domain.Asset{}, err
	}
	return domain.Asset{Token: token, Amount: amount}, nil
}

func parseAddress(input string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %q", input)
	}
	return common.HexToAddress(input), nil
}

// maxAmountBits bounds inbound amounts to the 256-bit integers the
// settlement contract can represent.
const maxAmountBits = 256

func parseAmount(input string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", input)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("negative amount: %q", input)
	}
	if amount.BitLen() > maxAmountBits {
		return nil, fmt.Errorf("amount exceeds 256 bits: %q", input)
	}
	return amount, nil
}

func parseAppData(input string) (common.Hash, error) {
	data, err := hexutil.Decode(input)
	if err != nil {
		return common.Hash{}, err
	}
	if len(data) != domain.AppDataLen {
		return common.Hash{}, fmt.Errorf("app data must be %d bytes, got %d", domain.AppDataLen, len(data))
	}
	return common.BytesToHash(data), nil
}

func parseSellTokenBalance(input string) (domain.SellTokenBalance, error) {
	switch input {
	case "erc20", "":
		return domain.SellTokenBalanceErc20, nil
	case "internal":
		return domain.SellTokenBalanceInternal, nil
	case "external":
		return domain.SellTokenBalanceExternal, nil
	default:
		return 0, fmt.Errorf("unsupported sell token balance: %q", input)
	}
}

func parseBuyTokenBalance(input string) (domain.BuyTokenBalance, error) {
	switch input {
	case "erc20", "":
		return domain.BuyTokenBalanceErc20, nil
	case "internal":
		return domain.BuyTokenBalanceInternal, nil
	default:
		return 0, fmt.Errorf("unsupported buy token balance: %q", input)
	}
}

func parseSigningScheme(input string) (domain.SigningScheme, error) {
	switch input {
	case "eip712":
		return domain.SchemeEip712, nil
	case "ethSign":
		return domain.SchemeEthSign, nil
	case "preSign":
		return domain.SchemePreSign, nil
	case "eip1271":
		return domain.SchemeEip1271, nil
	default:
		return 0, fmt.Errorf("unsupported signing scheme: %q", input)
	}
}
