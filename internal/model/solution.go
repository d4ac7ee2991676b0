package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Solutions is the inbound solver response. Unlike the outbound
// auction payload, the inbound schema is strict: unknown fields at any
// level reject the whole response.
type Solutions struct {
	Solutions []Solution `json:"solutions"`
}

// ParseSolutions decodes a raw solver response, rejecting unknown
// fields.
func ParseSolutions(data []byte) (Solutions, error) {
	var solutions Solutions
	if err := strictUnmarshal(data, &solutions); err != nil {
		return Solutions{}, fmt.Errorf("parse solutions: %w", err)
	}
	return solutions, nil
}

// Solution is one candidate settlement proposed by a solver.
type Solution struct {
	ID           uint64            `json:"id"`
	Prices       map[string]string `json:"prices"`
	Trades       []Trade           `json:"trades"`
	Interactions []Interaction     `json:"interactions"`
	Score        Score             `json:"score"`
	Gas          *uint64           `json:"gas"`
}

// Trade kind discriminators.
const (
	TradeKindFulfillment = "fulfillment"
	TradeKindJit         = "jit"
)

// Trade is a tagged union of fulfillment and JIT trades. Exactly one
// of the fields is set after unmarshaling.
type Trade struct {
	Fulfillment *Fulfillment
	Jit         *JitTrade
}

func (t *Trade) UnmarshalJSON(data []byte) error {
	switch kind := peekKind(data); kind {
	case TradeKindFulfillment:
		var fulfillment Fulfillment
		if err := strictUnmarshal(data, &fulfillment); err != nil {
			return fmt.Errorf("fulfillment trade: %w", err)
		}
		t.Fulfillment = &fulfillment
	case TradeKindJit:
		var jit JitTrade
		if err := strictUnmarshal(data, &jit); err != nil {
			return fmt.Errorf("jit trade: %w", err)
		}
		t.Jit = &jit
	default:
		return fmt.Errorf("unsupported trade kind: %q", kind)
	}
	return nil
}

// Fulfillment references an auction order by UID.
type Fulfillment struct {
	Kind           string  `json:"kind"`
	Order          string  `json:"order"`
	ExecutedAmount string  `json:"executedAmount"`
	Fee            *string `json:"fee"`
}

// JitTrade carries a fully solver-specified ephemeral order.
type JitTrade struct {
	Kind           string   `json:"kind"`
	Order          JitOrder `json:"order"`
	ExecutedAmount string   `json:"executedAmount"`
}

// JitOrder is the wire shape of a just-in-time order. The signature
// payload is attributed to the solver; no external signer is carried.
type JitOrder struct {
	SellToken         string `json:"sellToken"`
	BuyToken          string `json:"buyToken"`
	Receiver          string `json:"receiver"`
	SellAmount        string `json:"sellAmount"`
	BuyAmount         string `json:"buyAmount"`
	ValidTo           uint32 `json:"validTo"`
	AppData           string `json:"appData"`
	FeeAmount         string `json:"feeAmount"`
	Kind              string `json:"kind"`
	PartiallyFillable bool   `json:"partiallyFillable"`
	SellTokenBalance  string `json:"sellTokenBalance"`
	BuyTokenBalance   string `json:"buyTokenBalance"`
	SigningScheme     string `json:"signingScheme"`
	Signature         string `json:"signature"`
}

// Interaction kind discriminators.
const (
	InteractionKindLiquidity = "liquidity"
	InteractionKindCustom    = "custom"
)

// Interaction is a tagged union of liquidity and custom interactions.
// Exactly one of the fields is set after unmarshaling.
type Interaction struct {
	Liquidity *LiquidityInteraction
	Custom    *CustomInteraction
}

func (i *Interaction) UnmarshalJSON(data []byte) error {
	switch kind := peekKind(data); kind {
	case InteractionKindLiquidity:
		var liquidity LiquidityInteraction
		if err := strictUnmarshal(data, &liquidity); err != nil {
			return fmt.Errorf("liquidity interaction: %w", err)
		}
		i.Liquidity = &liquidity
	case InteractionKindCustom:
		var custom CustomInteraction
		if err := strictUnmarshal(data, &custom); err != nil {
			return fmt.Errorf("custom interaction: %w", err)
		}
		i.Custom = &custom
	default:
		return fmt.Errorf("unsupported interaction kind: %q", kind)
	}
	return nil
}

// LiquidityInteraction references a round liquidity entry by id.
type LiquidityInteraction struct {
	Kind         string `json:"kind"`
	Internalize  bool   `json:"internalize"`
	ID           string `json:"id"`
	InputToken   string `json:"inputToken"`
	OutputToken  string `json:"outputToken"`
	InputAmount  string `json:"inputAmount"`
	OutputAmount string `json:"outputAmount"`
}

// CustomInteraction is an arbitrary call the solver wants included in
// the settlement.
type CustomInteraction struct {
	Kind        string      `json:"kind"`
	Internalize bool        `json:"internalize"`
	Target      string      `json:"target"`
	Value       string      `json:"value"`
	CallData    string      `json:"callData"`
	Allowances  []Allowance `json:"allowances"`
	Inputs      []Asset     `json:"inputs"`
	Outputs     []Asset     `json:"outputs"`
}

// Asset is a token amount on the wire.
type Asset struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// Allowance is a token approval on the wire.
type Allowance struct {
	Token   string `json:"token"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

// Score kind discriminators.
const (
	ScoreKindSolver       = "solver"
	ScoreKindRiskAdjusted = "riskAdjusted"
)

// Score is a tagged union of solver-declared scores. Exactly one of
// the fields is set after unmarshaling.
type Score struct {
	Solver       *SolverScore
	RiskAdjusted *RiskAdjustedScore
}

func (s *Score) UnmarshalJSON(data []byte) error {
	switch kind := peekKind(data); kind {
	case ScoreKindSolver:
		var solver SolverScore
		if err := strictUnmarshal(data, &solver); err != nil {
			return fmt.Errorf("solver score: %w", err)
		}
		s.Solver = &solver
	case ScoreKindRiskAdjusted:
		var riskAdjusted RiskAdjustedScore
		if err := strictUnmarshal(data, &riskAdjusted); err != nil {
			return fmt.Errorf("risk adjusted score: %w", err)
		}
		s.RiskAdjusted = &riskAdjusted
	default:
		return fmt.Errorf("unsupported score kind: %q", kind)
	}
	return nil
}

// SolverScore is a score the solver computed itself.
type SolverScore struct {
	Kind  string `json:"kind"`
	Score string `json:"score"`
}

// RiskAdjustedScore discounts the objective by a success probability.
type RiskAdjustedScore struct {
	Kind               string  `json:"kind"`
	SuccessProbability float64 `json:"successProbability"`
}

// peekKind extracts the kind discriminator without validating the rest
// of the object.
func peekKind(data []byte) string {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ""
	}
	return probe.Kind
}

// strictUnmarshal decodes JSON rejecting any field the target does not
// declare.
func strictUnmarshal(data []byte, target interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	return nil
}
