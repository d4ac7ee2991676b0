package snapshot

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"solverBridge/internal/domain"
)

const testSnapshot = `{
	"id": "42",
	"effective_gas_price": "30000000000",
	"driver_deadline": "2024-06-01T12:00:00Z",
	"solver_deadline": "2024-06-01T11:59:45Z",
	"tokens": [
		{
			"address": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"decimals": 18,
			"symbol": "AAA",
			"reference_price": "1000000000000000000",
			"available_balance": "5000",
			"trusted": true
		}
	],
	"orders": [
		{
			"uid": "0x1111111111111111111111111111111111111111111111111111111111111111222222222222222222222222222222222222222233334444",
			"sell_token": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"buy_token": "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			"sell_amount": "1000",
			"buy_amount": "500",
			"user_fee": "10",
			"side": "sell",
			"class": "limit",
			"partially_fillable": true,
			"executed": "100",
			"fee_policies": [
				{"kind": "volume", "factor": 0.01},
				{"kind": "surplus", "factor": 0.5, "max_volume_factor": 0.01}
			]
		}
	],
	"liquidity": [
		{
			"kind": "uniswap_v2",
			"id": 1,
			"gas_estimate": "110000",
			"address": "0x1111111111111111111111111111111111111111",
			"router": "0x2222222222222222222222222222222222222222",
			"reserves": [
				{"token": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "amount": "10000"},
				{"token": "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "amount": "20000"}
			]
		},
		{
			"kind": "swapr",
			"id": 2,
			"gas_estimate": "115000",
			"address": "0x3333333333333333333333333333333333333333",
			"router": "0x2222222222222222222222222222222222222222",
			"fee_bps": 25,
			"reserves": [
				{"token": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "amount": "100"},
				{"token": "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "amount": "200"}
			]
		},
		{
			"kind": "uniswap_v3",
			"id": 3,
			"gas_estimate": "108000",
			"address": "0x4444444444444444444444444444444444444444",
			"router": "0x2222222222222222222222222222222222222222",
			"tokens": [
				"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
				"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
			],
			"sqrt_price": "1234567890",
			"liquidity": "987654321",
			"tick": -5,
			"liquidity_net": {"-200": "-10", "100": "30"},
			"fee": "3/1000"
		},
		{
			"kind": "balancer_weighted",
			"id": 4,
			"gas_estimate": "88000",
			"balancer_pool_id": "0x5555555555555555555555555555555555555555000200000000000000000001",
			"version": "v3plus",
			"fee": "10000000000000000",
			"reserves": [
				{"token": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "balance": "100", "scale": "1000000000000000000", "weight": "500000000000000000"}
			]
		},
		{
			"kind": "balancer_stable",
			"id": 5,
			"gas_estimate": "183000",
			"balancer_pool_id": "0x6666666666666666666666666666666666666666000200000000000000000002",
			"amplification_factor": "5000",
			"amplification_precision": "1000",
			"fee": "1000000000000000",
			"reserves": [
				{"token": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "balance": "1000", "scale": "1000000000000000000"}
			]
		}
	]
}`

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "round.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestLoadAndParse(t *testing.T) {
	file, err := Load(writeSnapshot(t, testSnapshot))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	auction, err := file.Auction()
	if err != nil {
		t.Fatalf("auction: %v", err)
	}
	if auction.ID != "42" {
		t.Fatalf("id = %s, want 42", auction.ID)
	}
	if auction.GasPrice.Cmp(big.NewInt(30_000_000_000)) != 0 {
		t.Fatalf("gas price = %s", auction.GasPrice)
	}
	if !auction.Deadline.Solvers.Before(auction.Deadline.Driver) {
		t.Fatalf("solver deadline not before driver deadline")
	}
	if len(auction.Tokens) != 1 || len(auction.Orders) != 1 {
		t.Fatalf("tokens = %d, orders = %d", len(auction.Tokens), len(auction.Orders))
	}

	order := auction.Orders[0]
	if order.Side != domain.SideSell || order.Class != domain.ClassLimit {
		t.Fatalf("order side/class = %v/%v", order.Side, order.Class)
	}
	if !order.PartiallyFillable || order.Executed.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("fill state not parsed: %+v", order)
	}
	if len(order.ProtocolFees) != 2 {
		t.Fatalf("fee policies = %d, want 2", len(order.ProtocolFees))
	}
	if volume, ok := order.ProtocolFees[0].(domain.VolumeFee); !ok || volume.Factor != 0.01 {
		t.Fatalf("first policy = %#v, want volume 0.01", order.ProtocolFees[0])
	}

	liquidity, err := file.LiquiditySet()
	if err != nil {
		t.Fatalf("liquidity: %v", err)
	}
	if len(liquidity) != 5 {
		t.Fatalf("liquidity count = %d, want 5", len(liquidity))
	}

	v3, ok := liquidity[2].Pool.(domain.UniswapV3Pool)
	if !ok {
		t.Fatalf("pool kind = %T, want UniswapV3Pool", liquidity[2].Pool)
	}
	if v3.Tick != -5 {
		t.Fatalf("tick = %d, want -5", v3.Tick)
	}
	if net, ok := v3.LiquidityNet[-200]; !ok || net.Cmp(big.NewInt(-10)) != 0 {
		t.Fatalf("liquidity net not parsed: %v", v3.LiquidityNet)
	}
	if v3.Fee.Cmp(big.NewRat(3, 1000)) != 0 {
		t.Fatalf("fee = %s, want 3/1000", v3.Fee)
	}

	weighted, ok := liquidity[3].Pool.(domain.BalancerWeightedPool)
	if !ok {
		t.Fatalf("pool kind = %T, want BalancerWeightedPool", liquidity[3].Pool)
	}
	if weighted.Version != domain.WeightedVersionV3Plus {
		t.Fatalf("version = %v, want v3plus", weighted.Version)
	}
	if weighted.ID.Address().Hex() != "0x5555555555555555555555555555555555555555" {
		t.Fatalf("pool address = %s", weighted.ID.Address().Hex())
	}

	stable, ok := liquidity[4].Pool.(domain.BalancerStablePool)
	if !ok {
		t.Fatalf("pool kind = %T, want BalancerStablePool", liquidity[4].Pool)
	}
	if stable.AmplificationFactor.Cmp(big.NewInt(5000)) != 0 || stable.AmplificationPrecision.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("amplification not parsed: %s/%s", stable.AmplificationFactor, stable.AmplificationPrecision)
	}
}

func TestParseRejectsBadAddress(t *testing.T) {
	bad := `{"id": "1", "effective_gas_price": "0", "tokens": [{"address": "nope"}]}`
	file, err := Load(writeSnapshot(t, bad))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := file.Auction(); err == nil {
		t.Fatalf("expected invalid address error")
	}
}

func TestParseRejectsUnknownLiquidityKind(t *testing.T) {
	bad := `{"id": "1", "effective_gas_price": "0", "liquidity": [{"kind": "mystery", "id": 9, "gas_estimate": "1"}]}`
	file, err := Load(writeSnapshot(t, bad))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := file.LiquiditySet(); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
