package decode

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"solverBridge/internal/domain"
)

var (
	testWETH   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	testSolver = common.HexToAddress("0x9999999999999999999999999999999999999999")
	sellToken  = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	buyToken   = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

const testUID = "0x" +
	"1111111111111111111111111111111111111111111111111111111111111111" +
	"222222222222222222222222222222222222222233334444"

func testAuction(t *testing.T) *domain.Auction {
	t.Helper()
	uid, err := domain.ParseOrderUID(testUID)
	if err != nil {
		t.Fatalf("parse uid: %v", err)
	}
	return &domain.Auction{
		ID: "1",
		Orders: []domain.Order{{
			UID:        uid,
			SellToken:  sellToken,
			BuyToken:   buyToken,
			SellAmount: big.NewInt(1000),
			BuyAmount:  big.NewInt(500),
			UserFee:    big.NewInt(0),
			Side:       domain.SideSell,
			Class:      domain.ClassMarket,
		}},
		GasPrice: big.NewInt(15_000_000_000),
		Deadline: domain.Deadline{
			Driver:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			Solvers: time.Date(2024, 6, 1, 11, 59, 45, 0, time.UTC),
		},
	}
}

func testLiquidity() []domain.Liquidity {
	return []domain.Liquidity{{
		ID:  1,
		Gas: big.NewInt(110000),
		Pool: domain.UniswapV2Pool{
			Address: common.HexToAddress("0x1111111111111111111111111111111111111111"),
			Router:  common.HexToAddress("0x2222222222222222222222222222222222222222"),
			Reserves: [2]domain.Asset{
				{Token: sellToken, Amount: big.NewInt(10000)},
				{Token: buyToken, Amount: big.NewInt(20000)},
			},
		},
	}}
}

func validResponse() string {
	return fmt.Sprintf(`{
		"solutions": [{
			"id": 0,
			"prices": {
				"%s": "500",
				"%s": "1000"
			},
			"trades": [{
				"kind": "fulfillment",
				"order": "%s",
				"executedAmount": "1000"
			}],
			"interactions": [{
				"kind": "liquidity",
				"internalize": false,
				"id": "1",
				"inputToken": "%s",
				"outputToken": "%s",
				"inputAmount": "1000",
				"outputAmount": "520"
			}],
			"score": {"kind": "solver", "score": "1234"},
			"gas": 250000
		}]
	}`, sellToken.Hex(), buyToken.Hex(), testUID, sellToken.Hex(), buyToken.Hex())
}

func TestDecodeValidSolution(t *testing.T) {
	solutions, err := Solutions([]byte(validResponse()), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(solutions) != 1 {
		t.Fatalf("solution count = %d, want 1", len(solutions))
	}

	solution := solutions[0]
	if solution.Solver != testSolver {
		t.Fatalf("solver = %s, want %s", solution.Solver.Hex(), testSolver.Hex())
	}
	if len(solution.Trades) != 1 || len(solution.Interactions) != 1 {
		t.Fatalf("trades = %d, interactions = %d", len(solution.Trades), len(solution.Interactions))
	}
	score, ok := solution.Score.(domain.SolverScore)
	if !ok {
		t.Fatalf("score kind = %T, want SolverScore", solution.Score)
	}
	if score.Score.String() != "1234" {
		t.Fatalf("score = %s, want 1234", score.Score)
	}
	if solution.Gas == nil || *solution.Gas != 250000 {
		t.Fatalf("gas = %v, want 250000", solution.Gas)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	raw := strings.Replace(validResponse(), `"id": 0,`, `"id": 0, "surprise": true,`, 1)
	_, err := Solutions([]byte(raw), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	if err == nil {
		t.Fatalf("expected unknown field rejection")
	}

	// Unknown fields inside union variants are rejected too.
	raw = strings.Replace(validResponse(), `"kind": "fulfillment",`, `"kind": "fulfillment", "extra": 1,`, 1)
	_, err = Solutions([]byte(raw), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	if err == nil {
		t.Fatalf("expected unknown field rejection inside trade")
	}
}

func TestDecodeUnknownOrderUID(t *testing.T) {
	unknown := "0x" + strings.Repeat("ff", 56)
	raw := strings.ReplaceAll(validResponse(), testUID, unknown)
	_, err := Solutions([]byte(raw), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid order UID specified in fulfillment") {
		t.Fatalf("err = %v, want invalid order UID", err)
	}
}

func TestDecodeUnknownLiquidityID(t *testing.T) {
	raw := strings.Replace(validResponse(), `"id": "1",`, `"id": "77",`, 1)
	_, err := Solutions([]byte(raw), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid liquidity ID specified in interaction") {
		t.Fatalf("err = %v, want invalid liquidity ID", err)
	}
}

func TestDecodeMissingClearingPrice(t *testing.T) {
	raw := strings.Replace(validResponse(), fmt.Sprintf(`"%s": "1000"`, buyToken.Hex()), fmt.Sprintf(`"%s": "1000"`, testWETH.Hex()), 1)
	_, err := Solutions([]byte(raw), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	if err == nil || !strings.Contains(err.Error(), domain.ErrInvalidClearingPrices.Error()) {
		t.Fatalf("err = %v, want clearing price violation", err)
	}
}

func TestDecodeFillOrKillMustExecuteInFull(t *testing.T) {
	raw := strings.Replace(validResponse(), `"executedAmount": "1000"`, `"executedAmount": "999"`, 1)
	_, err := Solutions([]byte(raw), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	if err == nil || !strings.Contains(err.Error(), "executed in full") {
		t.Fatalf("err = %v, want fill-or-kill violation", err)
	}
}

func TestDecodeBatchAllOrNothing(t *testing.T) {
	good := validResponse()
	body := good[strings.Index(good, "[")+1 : strings.LastIndex(good, "]")]
	bad := strings.Replace(body, `"executedAmount": "1000"`, `"executedAmount": "999"`, 1)
	bad = strings.Replace(bad, `"id": 0,`, `"id": 1,`, 1)
	raw := `{"solutions": [` + body + `,` + bad + `]}`

	_, err := Solutions([]byte(raw), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	if err == nil {
		t.Fatalf("one invalid candidate must reject the whole batch")
	}
}

func TestDecodeJitTradeSignerIsSolver(t *testing.T) {
	raw := fmt.Sprintf(`{
		"solutions": [{
			"id": 2,
			"prices": {},
			"trades": [{
				"kind": "jit",
				"order": {
					"sellToken": "%s",
					"buyToken": "%s",
					"receiver": "0x4444444444444444444444444444444444444444",
					"sellAmount": "100",
					"buyAmount": "90",
					"validTo": 1717243200,
					"appData": "0x%s",
					"feeAmount": "0",
					"kind": "sell",
					"partiallyFillable": false,
					"sellTokenBalance": "erc20",
					"buyTokenBalance": "erc20",
					"signingScheme": "eip1271",
					"signature": "0xdeadbeef"
				},
				"executedAmount": "100"
			}],
			"interactions": [],
			"score": {"kind": "riskAdjusted", "successProbability": 0.9},
			"gas": null
		}]
	}`, sellToken.Hex(), buyToken.Hex(), strings.Repeat("ab", 32))

	solutions, err := Solutions([]byte(raw), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	jit, ok := solutions[0].Trades[0].(domain.Jit)
	if !ok {
		t.Fatalf("trade kind = %T, want Jit", solutions[0].Trades[0])
	}
	// The signature is attributed to the solving party regardless of
	// what the payload carries.
	if jit.Order.Signature.Signer != testSolver {
		t.Fatalf("signer = %s, want %s", jit.Order.Signature.Signer.Hex(), testSolver.Hex())
	}
	if jit.Order.Signature.Scheme != domain.SchemeEip1271 {
		t.Fatalf("scheme = %d, want eip1271", jit.Order.Signature.Scheme)
	}
	if _, ok := solutions[0].Score.(domain.RiskAdjustedScore); !ok {
		t.Fatalf("score kind = %T, want RiskAdjustedScore", solutions[0].Score)
	}
}

func TestDecodeRejectsOversizedAmounts(t *testing.T) {
	// 2^256 does not fit the settlement contract's integer width.
	oversized := new(big.Int).Lsh(big.NewInt(1), 256).String()
	raw := strings.Replace(validResponse(), `"500"`, `"`+oversized+`"`, 1)

	_, err := Solutions([]byte(raw), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	if err == nil || !strings.Contains(err.Error(), "exceeds 256 bits") {
		t.Fatalf("err = %v, want 256-bit bound rejection", err)
	}
}

func TestDecodeMissingScoreRejectedPastCutoff(t *testing.T) {
	raw := strings.Replace(validResponse(), `"score": {"kind": "solver", "score": "1234"},`, "", 1)
	auction := testAuction(t)
	cutoff := auction.Deadline.Driver.Add(-time.Minute)

	_, err := Solutions([]byte(raw), auction, testLiquidity(), testWETH, testSolver, &cutoff)
	if err == nil || !strings.Contains(err.Error(), "score has no variant") {
		t.Fatalf("err = %v, want missing score rejection", err)
	}
}

func TestDecodeErrorType(t *testing.T) {
	_, err := Solutions([]byte(`not json`), testAuction(t), testLiquidity(), testWETH, testSolver, nil)
	var decodeErr Error
	if !errors.As(err, &decodeErr) {
		t.Fatalf("err = %T, want decode.Error", err)
	}
}
