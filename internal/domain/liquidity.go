package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Liquidity is one on-chain liquidity source snapshotted for the
// round. The ID is stable within the round and referenced by solution
// interactions.
type Liquidity struct {
	ID uint64
	// Gas is the estimated gas cost of using this liquidity once.
	Gas  *big.Int
	Pool Pool
}

// Pool is the closed set of liquidity pool kinds. Every consumer must
// switch exhaustively over these types.
type Pool interface {
	pool()
}

// UniswapV2Pool is a two-token constant product pool with the standard
// 0.3% fee.
type UniswapV2Pool struct {
	Address  common.Address
	Router   common.Address
	Reserves [2]Asset
}

// SwaprPool is a constant product pool with a pool-specific fee in
// basis points.
type SwaprPool struct {
	Base   UniswapV2Pool
	FeeBps uint32
}

// UniswapV3Pool is a concentrated liquidity pool. LiquidityNet maps
// initialized ticks to the net liquidity change when the price crosses
// them.
type UniswapV3Pool struct {
	Address      common.Address
	Router       common.Address
	Tokens       [2]common.Address
	SqrtPrice    *big.Int
	Liquidity    *big.Int
	Tick         int32
	LiquidityNet map[int32]*big.Int
	// Fee is an exact fraction, e.g. 3/1000.
	Fee *big.Rat
}

// BalancerPoolID is a Balancer V2 pool identifier; its first 20 bytes
// are the pool contract address.
type BalancerPoolID common.Hash

func (id BalancerPoolID) Address() common.Address {
	return common.BytesToAddress(id[:20])
}

func (id BalancerPoolID) Hash() common.Hash {
	return common.Hash(id)
}

// WeightedVersion distinguishes the two fee accounting behaviors of
// Balancer weighted pools.
type WeightedVersion int

const (
	WeightedVersionV0 WeightedVersion = iota
	WeightedVersionV3Plus
)

// WeightedReserve is one token's balance in a weighted pool. Scale and
// Weight are raw integers scaled by 10^18.
type WeightedReserve struct {
	Token   common.Address
	Balance *big.Int
	Scale   *big.Int
	Weight  *big.Int
}

// BalancerWeightedPool is a Balancer V2 weighted product pool. Reserve
// order is meaningful and must be preserved.
type BalancerWeightedPool struct {
	ID       BalancerPoolID
	Reserves []WeightedReserve
	// Fee is a raw integer scaled by 10^18.
	Fee     *big.Int
	Version WeightedVersion
}

// StableReserve is one token's balance in a stable pool. Scale is a
// raw integer scaled by 10^18.
type StableReserve struct {
	Token   common.Address
	Balance *big.Int
	Scale   *big.Int
}

// BalancerStablePool is a Balancer V2 stable pool. The amplification
// parameter is an exact rational AmplificationFactor /
// AmplificationPrecision.
type BalancerStablePool struct {
	ID                     BalancerPoolID
	Reserves               []StableReserve
	AmplificationFactor    *big.Int
	AmplificationPrecision *big.Int
	// Fee is a raw integer scaled by 10^18.
	Fee *big.Int
}

// ZeroExLimitOrder is an off-chain 0x limit order. There is no solver
// encoding for this kind yet; encoding one is a fatal assertion.
type ZeroExLimitOrder struct {
	Address             common.Address
	Hash                common.Hash
	MakerToken          common.Address
	TakerToken          common.Address
	MakerAmount         *big.Int
	TakerAmount         *big.Int
	TakerTokenFeeAmount *big.Int
}

func (UniswapV2Pool) pool()        {}
func (SwaprPool) pool()            {}
func (UniswapV3Pool) pool()        {}
func (BalancerWeightedPool) pool() {}
func (BalancerStablePool) pool()   {}
func (ZeroExLimitOrder) pool()     {}

// Tokens lists every token held in the pool's reserves.
func (l Liquidity) Tokens() []common.Address {
	switch pool := l.Pool.(type) {
	case UniswapV2Pool:
		return []common.Address{pool.Reserves[0].Token, pool.Reserves[1].Token}
	case SwaprPool:
		return []common.Address{pool.Base.Reserves[0].Token, pool.Base.Reserves[1].Token}
	case UniswapV3Pool:
		return []common.Address{pool.Tokens[0], pool.Tokens[1]}
	case BalancerWeightedPool:
		tokens := make([]common.Address, 0, len(pool.Reserves))
		for _, reserve := range pool.Reserves {
			tokens = append(tokens, reserve.Token)
		}
		return tokens
	case BalancerStablePool:
		tokens := make([]common.Address, 0, len(pool.Reserves))
		for _, reserve := range pool.Reserves {
			tokens = append(tokens, reserve.Token)
		}
		return tokens
	case ZeroExLimitOrder:
		return []common.Address{pool.MakerToken, pool.TakerToken}
	default:
		return nil
	}
}
