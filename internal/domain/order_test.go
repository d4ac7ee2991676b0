package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var testWETH = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

func TestParseOrderUID(t *testing.T) {
	input := "0x" +
		"1111111111111111111111111111111111111111111111111111111111111111" +
		"222222222222222222222222222222222222222233334444"
	uid, err := ParseOrderUID(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid.String() != input {
		t.Fatalf("round trip = %s, want %s", uid.String(), input)
	}

	if _, err := ParseOrderUID("0x1234"); err == nil {
		t.Fatalf("expected length error")
	}
	if _, err := ParseOrderUID("not hex"); err == nil {
		t.Fatalf("expected hex error")
	}
}

func TestRemainingTargetClampsAtZero(t *testing.T) {
	order := Order{
		SellAmount: big.NewInt(100),
		BuyAmount:  big.NewInt(50),
		Side:       SideSell,
		Executed:   big.NewInt(150),
	}
	if got := order.RemainingTarget(); got.Sign() != 0 {
		t.Fatalf("remaining = %s, want 0", got)
	}
}

func TestAvailableAmountsFillOrKill(t *testing.T) {
	order := Order{
		SellToken:  common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		BuyToken:   common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		SellAmount: big.NewInt(100),
		BuyAmount:  big.NewInt(50),
		UserFee:    big.NewInt(7),
		Side:       SideSell,
		// Fill-or-kill orders keep full amounts even when partially
		// executed state is present.
		Executed: big.NewInt(10),
	}
	available := order.AvailableAmounts(testWETH)
	if available.Sell.Amount.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("sell = %s, want 100", available.Sell.Amount)
	}
	if available.Buy.Amount.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("buy = %s, want 50", available.Buy.Amount)
	}
	if available.UserFee.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("fee = %s, want 7", available.UserFee)
	}
}

func TestAvailableAmountsPartialBuyOrder(t *testing.T) {
	order := Order{
		SellToken:         common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		BuyToken:          common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		SellAmount:        big.NewInt(1000),
		BuyAmount:         big.NewInt(400),
		UserFee:           big.NewInt(40),
		Side:              SideBuy,
		PartiallyFillable: true,
		Executed:          big.NewInt(100),
	}
	available := order.AvailableAmounts(testWETH)
	// 300 of 400 target remains: sell and fee scale by 3/4, the
	// target side is the remainder itself.
	if available.Buy.Amount.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("buy = %s, want 300", available.Buy.Amount)
	}
	if available.Sell.Amount.Cmp(big.NewInt(750)) != 0 {
		t.Fatalf("sell = %s, want 750", available.Sell.Amount)
	}
	if available.UserFee.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("fee = %s, want 30", available.UserFee)
	}
}

func TestAvailableAmountsRewritesNativeBuyToken(t *testing.T) {
	order := Order{
		SellToken:  common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		BuyToken:   NativeToken,
		SellAmount: big.NewInt(100),
		BuyAmount:  big.NewInt(50),
		Side:       SideSell,
	}
	available := order.AvailableAmounts(testWETH)
	if available.Buy.Token != testWETH {
		t.Fatalf("buy token = %s, want %s", available.Buy.Token.Hex(), testWETH.Hex())
	}
}

func TestWrapNative(t *testing.T) {
	other := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	if got := WrapNative(NativeToken, testWETH); got != testWETH {
		t.Fatalf("native not rewritten: %s", got.Hex())
	}
	if got := WrapNative(other, testWETH); got != other {
		t.Fatalf("non-native rewritten: %s", got.Hex())
	}
}
