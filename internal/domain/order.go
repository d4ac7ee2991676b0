package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// UIDLen is the byte length of an order UID (order digest + owner +
// validity timestamp).
const UIDLen = 56

// OrderUID uniquely identifies an order within and across auctions.
type OrderUID [UIDLen]byte

func (u OrderUID) String() string {
	return hexutil.Encode(u[:])
}

// ParseOrderUID decodes a 0x-prefixed hex order UID.
func ParseOrderUID(input string) (OrderUID, error) {
	var uid OrderUID
	data, err := hexutil.Decode(input)
	if err != nil {
		return uid, fmt.Errorf("invalid order uid: %w", err)
	}
	if len(data) != UIDLen {
		return uid, fmt.Errorf("invalid order uid length: %d", len(data))
	}
	copy(uid[:], data)
	return uid, nil
}

// Side is the direction of an order.
type Side int

const (
	// SideSell orders specify an exact sell amount and a minimum buy
	// amount.
	SideSell Side = iota
	// SideBuy orders specify an exact buy amount and a maximum sell
	// amount.
	SideBuy
)

// Class categorizes how an order was placed and priced.
type Class int

const (
	ClassMarket Class = iota
	ClassLimit
	ClassLiquidity
)

// FeePolicy is a protocol fee attached to an order, withheld from the
// solution after solving.
type FeePolicy interface {
	feePolicy()
}

// VolumeFee takes a cut proportional to the traded volume.
type VolumeFee struct {
	// Factor is the volume fraction in [0, 1).
	Factor float64
}

// SurplusFee takes a cut of the surplus over the order's limit price,
// capped by a volume factor.
type SurplusFee struct {
	Factor          float64
	MaxVolumeFactor float64
}

// PriceImprovementFee takes a cut of the improvement over a quoted
// price, capped by a volume factor.
type PriceImprovementFee struct {
	Factor          float64
	MaxVolumeFactor float64
}

func (VolumeFee) feePolicy()           {}
func (SurplusFee) feePolicy()          {}
func (PriceImprovementFee) feePolicy() {}

// Order is a user order taken from the current auction. Orders are
// read-only inputs; they live for exactly one auction round.
type Order struct {
	UID               OrderUID
	SellToken         common.Address
	BuyToken          common.Address
	SellAmount        *big.Int
	BuyAmount         *big.Int
	UserFee           *big.Int
	Side              Side
	Class             Class
	PartiallyFillable bool
	// Executed is the already-filled amount, denominated in the
	// order's target token (sell token for sell orders, buy token for
	// buy orders).
	Executed *big.Int
	// ProtocolFees are applied in order; only the first one
	// participates in limit adjustment at encode time.
	ProtocolFees []FeePolicy
}

// Available holds the still-fillable portion of an order.
type Available struct {
	Sell    Asset
	Buy     Asset
	UserFee *big.Int
}

// TargetAmount is the amount the order wants to trade in full, in
// target-token terms.
func (o *Order) TargetAmount() *big.Int {
	if o.Side == SideBuy {
		return o.BuyAmount
	}
	return o.SellAmount
}

// RemainingTarget is the unfilled target amount, clamped at zero.
func (o *Order) RemainingTarget() *big.Int {
	target := o.TargetAmount()
	executed := o.Executed
	if executed == nil {
		return new(big.Int).Set(target)
	}
	remaining := new(big.Int).Sub(target, executed)
	if remaining.Sign() < 0 {
		return big.NewInt(0)
	}
	return remaining
}

// AvailableAmounts computes the currently fillable sell/buy amounts.
// For partially fillable orders the opposite side and the user fee are
// scaled down proportionally to the unfilled target remainder. The buy
// token is rewritten from the native placeholder to the wrapped native
// token.
func (o *Order) AvailableAmounts(weth common.Address) Available {
	sell := new(big.Int).Set(o.SellAmount)
	buy := new(big.Int).Set(o.BuyAmount)
	fee := big.NewInt(0)
	if o.UserFee != nil {
		fee.Set(o.UserFee)
	}

	if o.PartiallyFillable {
		target := o.TargetAmount()
		remaining := o.RemainingTarget()
		if target.Sign() == 0 {
			sell.SetInt64(0)
			buy.SetInt64(0)
			fee.SetInt64(0)
		} else {
			sell = scale(o.SellAmount, remaining, target)
			buy = scale(o.BuyAmount, remaining, target)
			fee = scale(fee, remaining, target)
			if o.Side == SideSell {
				sell.Set(remaining)
			} else {
				buy.Set(remaining)
			}
		}
	}

	return Available{
		Sell:    Asset{Token: o.SellToken, Amount: sell},
		Buy:     Asset{Token: WrapNative(o.BuyToken, weth), Amount: buy},
		UserFee: fee,
	}
}

// scale returns floor(amount * num / den).
func scale(amount, num, den *big.Int) *big.Int {
	out := new(big.Int).Mul(amount, num)
	return out.Div(out, den)
}

// AppDataLen is the byte length of an application data hash.
const AppDataLen = 32

// SellTokenBalance is the source of a JIT order's sell funds.
type SellTokenBalance int

const (
	SellTokenBalanceErc20 SellTokenBalance = iota
	SellTokenBalanceInternal
	SellTokenBalanceExternal
)

// BuyTokenBalance is the destination of a JIT order's buy proceeds.
type BuyTokenBalance int

const (
	BuyTokenBalanceErc20 BuyTokenBalance = iota
	BuyTokenBalanceInternal
)

// SigningScheme identifies how an order signature is to be verified
// on-chain.
type SigningScheme int

const (
	SchemeEip712 SigningScheme = iota
	SchemeEthSign
	SchemePreSign
	SchemeEip1271
)

// Signature carries the signature payload together with the account it
// is attributed to.
type Signature struct {
	Scheme SigningScheme
	Data   []byte
	Signer common.Address
}

// JitOrder is an ephemeral order created by a solver as part of a
// solution. It is not part of the auction's order set and is
// attributed to the solver rather than verified against an external
// signer.
type JitOrder struct {
	Sell              Asset
	Buy               Asset
	Fee               *big.Int
	Receiver          common.Address
	ValidTo           uint32
	AppData           common.Hash
	Side              Side
	PartiallyFillable bool
	SellTokenBalance  SellTokenBalance
	BuyTokenBalance   BuyTokenBalance
	Signature         Signature
}

// TargetAmount is the JIT order's full trade amount in target-token
// terms.
func (o *JitOrder) TargetAmount() *big.Int {
	if o.Side == SideBuy {
		return o.Buy.Amount
	}
	return o.Sell.Amount
}
