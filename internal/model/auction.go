// Package model defines the solver-facing wire payloads. Field names
// follow the lowerCamel wire contract; 256-bit integers travel as
// decimal strings, fixed-length identifiers as hex strings, and pool
// ids as decimal strings.
package model

import "time"

// Auction is the outbound auction snapshot sent to solvers.
// ID is null for quote auctions; the key is always present.
type Auction struct {
	ID                *string          `json:"id"`
	Tokens            map[string]Token `json:"tokens"`
	Orders            []Order          `json:"orders"`
	Liquidity         []Liquidity      `json:"liquidity"`
	EffectiveGasPrice string           `json:"effectiveGasPrice"`
	Deadline          time.Time        `json:"deadline"`
}

// Token is per-token metadata keyed by token address in the auction's
// token map.
type Token struct {
	Decimals         *uint8  `json:"decimals"`
	Symbol           *string `json:"symbol"`
	ReferencePrice   *string `json:"referencePrice"`
	AvailableBalance string  `json:"availableBalance"`
	Trusted          bool    `json:"trusted"`
}

// Order is one auction order, with amounts already reduced to the
// fillable remainder and adjusted for volume-based protocol fees.
type Order struct {
	UID               string `json:"uid"`
	SellToken         string `json:"sellToken"`
	BuyToken          string `json:"buyToken"`
	SellAmount        string `json:"sellAmount"`
	BuyAmount         string `json:"buyAmount"`
	FeeAmount         string `json:"feeAmount"`
	Kind              string `json:"kind"`
	PartiallyFillable bool   `json:"partiallyFillable"`
	Class             string `json:"class"`
}

// Order kinds and classes on the wire.
const (
	KindSell = "sell"
	KindBuy  = "buy"

	ClassMarket    = "market"
	ClassLimit     = "limit"
	ClassLiquidity = "liquidity"
)

// Liquidity kind discriminators.
const (
	KindConstantProduct       = "constantProduct"
	KindWeightedProduct       = "weightedProduct"
	KindStable                = "stable"
	KindConcentratedLiquidity = "concentratedLiquidity"
	KindLimitOrder            = "limitOrder"
)

// Liquidity is the closed set of liquidity payload variants, each
// tagged by its kind field.
type Liquidity interface {
	liquidityEntry()
}

// ConstantProductPool is a two-token constant product AMM. Its reserve
// map is emitted in token-address order.
type ConstantProductPool struct {
	Kind        string          `json:"kind"`
	ID          string          `json:"id"`
	Address     string          `json:"address"`
	Router      string          `json:"router"`
	GasEstimate string          `json:"gasEstimate"`
	Tokens      OrderedReserves `json:"tokens"`
	Fee         string          `json:"fee"`
}

// ConstantProductReserve is one token's balance in a constant product
// pool.
type ConstantProductReserve struct {
	Balance string `json:"balance"`
}

// WeightedProductPool is a Balancer-style weighted pool. Its reserve
// map keeps the pool's own token order.
type WeightedProductPool struct {
	Kind           string          `json:"kind"`
	ID             string          `json:"id"`
	Address        string          `json:"address"`
	BalancerPoolID string          `json:"balancerPoolId"`
	GasEstimate    string          `json:"gasEstimate"`
	Tokens         OrderedReserves `json:"tokens"`
	Fee            string          `json:"fee"`
	Version        string          `json:"version"`
}

// Weighted pool version tags.
const (
	WeightedVersionV0     = "v0"
	WeightedVersionV3Plus = "v3Plus"
)

// WeightedProductReserve is one token's balance, scaling factor, and
// weight in a weighted pool.
type WeightedProductReserve struct {
	Balance       string `json:"balance"`
	ScalingFactor string `json:"scalingFactor"`
	Weight        string `json:"weight"`
}

// StablePool is a Balancer-style stable pool. Its reserve map keeps
// the pool's own token order.
type StablePool struct {
	Kind                   string          `json:"kind"`
	ID                     string          `json:"id"`
	Address                string          `json:"address"`
	BalancerPoolID         string          `json:"balancerPoolId"`
	GasEstimate            string          `json:"gasEstimate"`
	Tokens                 OrderedReserves `json:"tokens"`
	AmplificationParameter string          `json:"amplificationParameter"`
	Fee                    string          `json:"fee"`
}

// StableReserve is one token's balance and scaling factor in a stable
// pool.
type StableReserve struct {
	Balance       string `json:"balance"`
	ScalingFactor string `json:"scalingFactor"`
}

// ConcentratedLiquidityPool is a tick-based AMM. LiquidityNet keys and
// values are signed integers passed through without rescaling.
type ConcentratedLiquidityPool struct {
	Kind         string   `json:"kind"`
	ID           string   `json:"id"`
	Address      string   `json:"address"`
	Router       string   `json:"router"`
	GasEstimate  string   `json:"gasEstimate"`
	Tokens       []string `json:"tokens"`
	SqrtPrice    string   `json:"sqrtPrice"`
	Liquidity    string   `json:"liquidity"`
	Tick         int32    `json:"tick"`
	LiquidityNet TickMap  `json:"liquidityNet"`
	Fee          string   `json:"fee"`
}

// ForeignLimitOrder is an off-chain limit order liquidity entry. The
// encoder does not produce this variant yet; it exists so the wire
// schema is complete for solvers that already understand it.
type ForeignLimitOrder struct {
	Kind                string `json:"kind"`
	ID                  string `json:"id"`
	Address             string `json:"address"`
	GasEstimate         string `json:"gasEstimate"`
	Hash                string `json:"hash"`
	MakerToken          string `json:"makerToken"`
	TakerToken          string `json:"takerToken"`
	MakerAmount         string `json:"makerAmount"`
	TakerAmount         string `json:"takerAmount"`
	TakerTokenFeeAmount string `json:"takerTokenFeeAmount"`
}

func (ConstantProductPool) liquidityEntry()       {}
func (WeightedProductPool) liquidityEntry()       {}
func (StablePool) liquidityEntry()                {}
func (ConcentratedLiquidityPool) liquidityEntry() {}
func (ForeignLimitOrder) liquidityEntry()         {}
