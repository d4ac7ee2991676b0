// Package snapshot loads one auction round's state from a JSON file
// and parses it into domain objects.
package snapshot

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"
)

// File is the on-disk shape of a round snapshot.
type File struct {
	ID                string           `json:"id"`
	EffectiveGasPrice string           `json:"effective_gas_price"`
	DriverDeadline    time.Time        `json:"driver_deadline"`
	SolverDeadline    time.Time        `json:"solver_deadline"`
	Tokens            []TokenEntry     `json:"tokens"`
	Orders            []OrderEntry     `json:"orders"`
	Liquidity         []LiquidityEntry `json:"liquidity"`
}

// TokenEntry is one token's metadata in the snapshot.
type TokenEntry struct {
	Address          string `json:"address"`
	Decimals         *uint8 `json:"decimals,omitempty"`
	Symbol           string `json:"symbol,omitempty"`
	ReferencePrice   string `json:"reference_price,omitempty"`
	AvailableBalance string `json:"available_balance,omitempty"`
	Trusted          bool   `json:"trusted"`
}

// OrderEntry is one order in the snapshot.
type OrderEntry struct {
	UID               string           `json:"uid"`
	SellToken         string           `json:"sell_token"`
	BuyToken          string           `json:"buy_token"`
	SellAmount        string           `json:"sell_amount"`
	BuyAmount         string           `json:"buy_amount"`
	UserFee           string           `json:"user_fee,omitempty"`
	Side              string           `json:"side"`
	Class             string           `json:"class"`
	PartiallyFillable bool             `json:"partially_fillable"`
	Executed          string           `json:"executed,omitempty"`
	FeePolicies       []FeePolicyEntry `json:"fee_policies,omitempty"`
}

// FeePolicyEntry is one protocol fee policy attached to an order.
type FeePolicyEntry struct {
	Kind            string  `json:"kind"`
	Factor          float64 `json:"factor"`
	MaxVolumeFactor float64 `json:"max_volume_factor,omitempty"`
}

// LiquidityEntry is one liquidity source in the snapshot, tagged by
// kind.
type LiquidityEntry struct {
	Kind        string `json:"kind"`
	ID          uint64 `json:"id"`
	GasEstimate string `json:"gas_estimate"`

	// uniswap_v2 / swapr
	Address  string         `json:"address,omitempty"`
	Router   string         `json:"router,omitempty"`
	Reserves []ReserveEntry `json:"reserves,omitempty"`
	FeeBps   uint32         `json:"fee_bps,omitempty"`

	// uniswap_v3
	Tokens       []string          `json:"tokens,omitempty"`
	SqrtPrice    string            `json:"sqrt_price,omitempty"`
	Liquidity    string            `json:"liquidity,omitempty"`
	Tick         int32             `json:"tick,omitempty"`
	LiquidityNet map[string]string `json:"liquidity_net,omitempty"`

	// balancer_weighted / balancer_stable
	BalancerPoolID         string `json:"balancer_pool_id,omitempty"`
	Version                string `json:"version,omitempty"`
	AmplificationFactor    string `json:"amplification_factor,omitempty"`
	AmplificationPrecision string `json:"amplification_precision,omitempty"`

	// Fee is kind-specific: an exact fraction or decimal for
	// uniswap_v3, a raw integer scaled by 10^18 for balancer pools.
	Fee string `json:"fee,omitempty"`
}

// ReserveEntry is one reserve of a pool. Scale and Weight are raw
// integers scaled by 10^18 and only set for balancer pools.
type ReserveEntry struct {
	Token   string `json:"token"`
	Amount  string `json:"amount,omitempty"`
	Balance string `json:"balance,omitempty"`
	Scale   string `json:"scale,omitempty"`
	Weight  string `json:"weight,omitempty"`
}

// Load reads and parses a round snapshot file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &file, nil
}

func parseBig(input, field string) (*big.Int, error) {
	if input == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q", field, input)
	}
	return value, nil
}
