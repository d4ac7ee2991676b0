package domain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Construction failures of a Solution.
var (
	ErrInvalidClearingPrices = errors.New("invalid clearing prices")
)

// Score ranks a solution in the competition.
type Score interface {
	score()
}

// SolverScore is a score the solver computed and declared itself.
type SolverScore struct {
	Score *big.Int
}

// RiskAdjustedScore asks the protocol to discount the objective value
// by the solver's declared settlement success probability.
type RiskAdjustedScore struct {
	SuccessProbability float64
}

// SurplusScore ranks the solution by the surplus it realizes,
// ignoring any solver-declared value.
type SurplusScore struct{}

func (SolverScore) score()       {}
func (RiskAdjustedScore) score() {}
func (SurplusScore) score()      {}

// Trade is either a fulfillment of an auction order or a JIT trade.
type Trade interface {
	trade()
}

// Fulfillment consumes an existing auction order.
type Fulfillment struct {
	Order    Order
	Executed *big.Int
	// Fee is the solver-determined fee for orders without a static
	// fee; nil means the order's static fee applies.
	Fee *big.Int
	// ProtocolFee is the first volume-policy fee in target-token
	// terms, set during solution construction.
	ProtocolFee *big.Int
}

// Jit is a trade against an ephemeral solver-provided order.
type Jit struct {
	Order    JitOrder
	Executed *big.Int
}

func (Fulfillment) trade() {}
func (Jit) trade()         {}

// NewFulfillment validates the executed amount against the referenced
// order: fill-or-kill orders must be executed exactly in full, partial
// fills must not exceed the unfilled remainder.
func NewFulfillment(order Order, executed *big.Int, fee *big.Int) (Fulfillment, error) {
	remaining := order.RemainingTarget()
	if order.PartiallyFillable {
		if executed.Cmp(remaining) > 0 {
			return Fulfillment{}, fmt.Errorf("executed amount %s exceeds remaining order amount %s", executed, remaining)
		}
	} else if executed.Cmp(remaining) != 0 {
		return Fulfillment{}, fmt.Errorf("fill-or-kill order must be executed in full: got %s, want %s", executed, remaining)
	}
	if executed.Sign() < 0 {
		return Fulfillment{}, fmt.Errorf("executed amount is negative")
	}
	return Fulfillment{Order: order, Executed: executed, Fee: fee}, nil
}

// NewJit validates the executed amount against the JIT order the same
// way NewFulfillment does for auction orders.
func NewJit(order JitOrder, executed *big.Int) (Jit, error) {
	target := order.TargetAmount()
	if order.PartiallyFillable {
		if executed.Cmp(target) > 0 {
			return Jit{}, fmt.Errorf("executed amount %s exceeds order amount %s", executed, target)
		}
	} else if executed.Cmp(target) != 0 {
		return Jit{}, fmt.Errorf("fill-or-kill order must be executed in full: got %s, want %s", executed, target)
	}
	if executed.Sign() < 0 {
		return Jit{}, fmt.Errorf("executed amount is negative")
	}
	return Jit{Order: order, Executed: executed}, nil
}

// Interaction is a settlement step, either a call into known liquidity
// or an arbitrary custom call.
type Interaction interface {
	interaction()
}

// CustomInteraction is an arbitrary contract call included in the
// settlement.
type CustomInteraction struct {
	Target     common.Address
	Value      *big.Int
	CallData   []byte
	Allowances []Allowance
	Inputs     []Asset
	Outputs    []Asset
	// Internalize settles against the system's own reserves instead
	// of executing the call on-chain.
	Internalize bool
}

// LiquidityInteraction trades against a liquidity source snapshotted
// for the round.
type LiquidityInteraction struct {
	Liquidity   Liquidity
	Input       Asset
	Output      Asset
	Internalize bool
}

func (CustomInteraction) interaction()    {}
func (LiquidityInteraction) interaction() {}

// Solution is a validated settlement proposal from one solver.
type Solution struct {
	ID           uint64
	Trades       []Trade
	Prices       map[common.Address]*big.Int
	Interactions []Interaction
	Solver       common.Address
	Score        Score
	// Gas is the solver's own gas estimate, nil when not provided.
	Gas *uint64
}

// NewSolution assembles a validated solution. It enforces the uniform
// clearing price invariant for fulfillment trades and incorporates the
// first volume-based protocol fee of each fulfilled order.
func NewSolution(
	id uint64,
	trades []Trade,
	prices map[common.Address]*big.Int,
	interactions []Interaction,
	solver common.Address,
	score Score,
	weth common.Address,
	gas *uint64,
) (Solution, error) {
	solution := Solution{
		ID:           id,
		Trades:       trades,
		Prices:       prices,
		Interactions: interactions,
		Solver:       solver,
		Score:        score,
		Gas:          gas,
	}

	for i, trade := range trades {
		fulfillment, ok := trade.(Fulfillment)
		if !ok {
			continue
		}
		sell := fulfillment.Order.SellToken
		buy := WrapNative(fulfillment.Order.BuyToken, weth)
		if prices[sell] == nil || prices[buy] == nil {
			return Solution{}, ErrInvalidClearingPrices
		}
		withFee, err := fulfillment.withProtocolFee()
		if err != nil {
			return Solution{}, fmt.Errorf("could not incorporate protocol fee: %w", err)
		}
		solution.Trades[i] = withFee
	}

	return solution, nil
}

// withProtocolFee computes the volume-based protocol fee of the
// fulfilled order, when its first fee policy is a volume policy.
func (f Fulfillment) withProtocolFee() (Fulfillment, error) {
	if len(f.Order.ProtocolFees) == 0 {
		return f, nil
	}
	volume, ok := f.Order.ProtocolFees[0].(VolumeFee)
	if !ok {
		return f, nil
	}
	if volume.Factor < 0 || volume.Factor >= 1 {
		return Fulfillment{}, fmt.Errorf("volume fee factor out of range: %v", volume.Factor)
	}
	factor := new(big.Rat).SetFloat64(volume.Factor)
	if factor == nil {
		return Fulfillment{}, fmt.Errorf("volume fee factor is not finite")
	}
	fee := new(big.Int).Mul(f.Executed, factor.Num())
	fee.Div(fee, factor.Denom())
	f.ProtocolFee = fee
	return f, nil
}
