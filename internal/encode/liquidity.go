// Package encode builds the solver-facing auction payload from the
// round's domain snapshot.
package encode

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"solverBridge/internal/conv"
	"solverBridge/internal/domain"
	"solverBridge/internal/model"
)

// uniswapV2Fee is the flat 0.3% fee of standard constant product
// pools.
var uniswapV2Fee = decimal.New(3, -3)

// EncodeLiquidity maps one domain liquidity snapshot to its wire
// variant. Pool kinds without a solver encoding are a fatal assertion,
// not a silent drop.
func EncodeLiquidity(liquidity domain.Liquidity) model.Liquidity {
	switch pool := liquidity.Pool.(type) {
	case domain.UniswapV2Pool:
		return constantProduct(liquidity, pool, uniswapV2Fee)
	case domain.SwaprPool:
		return constantProduct(liquidity, pool.Base, decimal.New(int64(pool.FeeBps), -4))
	case domain.UniswapV3Pool:
		return concentratedLiquidity(liquidity, pool)
	case domain.BalancerWeightedPool:
		return weightedProduct(liquidity, pool)
	case domain.BalancerStablePool:
		return stable(liquidity, pool)
	case domain.ZeroExLimitOrder:
		panic("encode: 0x limit order liquidity has no solver encoding yet")
	default:
		panic(fmt.Sprintf("encode: unhandled liquidity pool kind %T", liquidity.Pool))
	}
}

func constantProduct(liquidity domain.Liquidity, pool domain.UniswapV2Pool, fee decimal.Decimal) model.ConstantProductPool {
	// The two-token reserve map is emitted in token-address order,
	// unlike weighted and stable pools which keep insertion order.
	reserves := pool.Reserves[:]
	sorted := make([]domain.Asset, len(reserves))
	copy(sorted, reserves)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Token.Bytes(), sorted[j].Token.Bytes()) < 0
	})

	tokens := make(model.OrderedReserves, 0, len(sorted))
	for _, reserve := range sorted {
		tokens = append(tokens, model.ReserveEntry{
			Token:   addressHex(reserve.Token),
			Reserve: model.ConstantProductReserve{Balance: bigString(reserve.Amount)},
		})
	}

	return model.ConstantProductPool{
		Kind:        model.KindConstantProduct,
		ID:          liquidityID(liquidity),
		Address:     addressHex(pool.Address),
		Router:      addressHex(pool.Router),
		GasEstimate: bigString(liquidity.Gas),
		Tokens:      tokens,
		Fee:         fee.String(),
	}
}

func weightedProduct(liquidity domain.Liquidity, pool domain.BalancerWeightedPool) model.WeightedProductPool {
	tokens := make(model.OrderedReserves, 0, len(pool.Reserves))
	for _, reserve := range pool.Reserves {
		tokens = append(tokens, model.ReserveEntry{
			Token: addressHex(reserve.Token),
			Reserve: model.WeightedProductReserve{
				Balance:       bigString(reserve.Balance),
				ScalingFactor: conv.FromBase18(reserve.Scale).String(),
				Weight:        conv.FromBase18(reserve.Weight).String(),
			},
		})
	}

	version := model.WeightedVersionV0
	if pool.Version == domain.WeightedVersionV3Plus {
		version = model.WeightedVersionV3Plus
	}

	return model.WeightedProductPool{
		Kind:           model.KindWeightedProduct,
		ID:             liquidityID(liquidity),
		Address:        addressHex(pool.ID.Address()),
		BalancerPoolID: pool.ID.Hash().Hex(),
		GasEstimate:    bigString(liquidity.Gas),
		Tokens:         tokens,
		Fee:            conv.FromBase18(pool.Fee).String(),
		Version:        version,
	}
}

func stable(liquidity domain.Liquidity, pool domain.BalancerStablePool) model.StablePool {
	tokens := make(model.OrderedReserves, 0, len(pool.Reserves))
	for _, reserve := range pool.Reserves {
		tokens = append(tokens, model.ReserveEntry{
			Token: addressHex(reserve.Token),
			Reserve: model.StableReserve{
				Balance:       bigString(reserve.Balance),
				ScalingFactor: conv.FromBase18(reserve.Scale).String(),
			},
		})
	}

	return model.StablePool{
		Kind:                   model.KindStable,
		ID:                     liquidityID(liquidity),
		Address:                addressHex(pool.ID.Address()),
		BalancerPoolID:         pool.ID.Hash().Hex(),
		GasEstimate:            bigString(liquidity.Gas),
		Tokens:                 tokens,
		AmplificationParameter: conv.FromRational(pool.AmplificationFactor, pool.AmplificationPrecision).String(),
		Fee:                    conv.FromBase18(pool.Fee).String(),
	}
}

func concentratedLiquidity(liquidity domain.Liquidity, pool domain.UniswapV3Pool) model.ConcentratedLiquidityPool {
	ticks := make([]int32, 0, len(pool.LiquidityNet))
	for tick := range pool.LiquidityNet {
		ticks = append(ticks, tick)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })

	liquidityNet := make(model.TickMap, 0, len(ticks))
	for _, tick := range ticks {
		liquidityNet = append(liquidityNet, model.TickEntry{
			Tick: tick,
			Net:  bigString(pool.LiquidityNet[tick]),
		})
	}

	return model.ConcentratedLiquidityPool{
		Kind:        model.KindConcentratedLiquidity,
		ID:          liquidityID(liquidity),
		Address:     addressHex(pool.Address),
		Router:      addressHex(pool.Router),
		GasEstimate: bigString(liquidity.Gas),
		Tokens: []string{
			addressHex(pool.Tokens[0]),
			addressHex(pool.Tokens[1]),
		},
		SqrtPrice:    bigString(pool.SqrtPrice),
		Liquidity:    bigString(pool.Liquidity),
		Tick:         pool.Tick,
		LiquidityNet: liquidityNet,
		Fee:          conv.FromRat(pool.Fee).String(),
	}
}

func liquidityID(liquidity domain.Liquidity) string {
	return strconv.FormatUint(liquidity.ID, 10)
}

// addressHex renders addresses in the lowercase hex form the wire
// contract uses.
func addressHex(address common.Address) string {
	return hexutil.Encode(address.Bytes())
}

func bigString(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}
