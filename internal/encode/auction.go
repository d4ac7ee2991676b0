package encode

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"solverBridge/internal/domain"
	"solverBridge/internal/model"
)

// EncodeAuction assembles the outbound auction snapshot for one round.
// Encoding is total over valid auction state: amounts that cannot be
// adjusted degrade to zero instead of failing the round.
func EncodeAuction(auction *domain.Auction, liquidity []domain.Liquidity, weth common.Address) *model.Auction {
	tokens := make(map[string]model.Token, len(auction.Tokens))
	for _, token := range auction.Tokens {
		tokens[addressHex(token.Address)] = encodeToken(token)
	}

	// Solvers need an entry for every token they might route through,
	// so tokens that only appear in liquidity reserves get an entry
	// too; the auction lookup yields a zero-value one for them.
	for _, entry := range liquidity {
		for _, token := range entry.Tokens() {
			key := addressHex(token)
			if _, ok := tokens[key]; !ok {
				tokens[key] = encodeToken(auction.Token(token))
			}
		}
	}

	orders := make([]model.Order, 0, len(auction.Orders))
	for i := range auction.Orders {
		orders = append(orders, encodeOrder(&auction.Orders[i], weth))
	}

	pools := make([]model.Liquidity, 0, len(liquidity))
	for _, entry := range liquidity {
		pools = append(pools, EncodeLiquidity(entry))
	}

	// Quote auctions have no id and serialize it as null.
	var id *string
	if auction.ID != "" {
		id = &auction.ID
	}

	return &model.Auction{
		ID:                id,
		Tokens:            tokens,
		Orders:            orders,
		Liquidity:         pools,
		EffectiveGasPrice: bigString(auction.GasPrice),
		Deadline:          auction.Deadline.Solvers,
	}
}

func encodeToken(token domain.Token) model.Token {
	encoded := model.Token{
		Decimals:         token.Decimals,
		AvailableBalance: bigString(token.AvailableBalance),
		Trusted:          token.Trusted,
	}
	if token.Symbol != "" {
		symbol := token.Symbol
		encoded.Symbol = &symbol
	}
	if token.ReferencePrice != nil {
		price := token.ReferencePrice.String()
		encoded.ReferencePrice = &price
	}
	return encoded
}

func encodeOrder(order *domain.Order, weth common.Address) model.Order {
	available := order.AvailableAmounts(weth)

	// Solvers are unaware of protocol fees. For volume-based fees the
	// amount withheld by the driver can exceed the solution's surplus,
	// which would violate the order's limit price post-hoc. The limit
	// amounts shown to solvers are made worse up front so any solution
	// respecting them leaves enough surplus to cover the fee.
	if len(order.ProtocolFees) > 0 {
		if volume, ok := order.ProtocolFees[0].(domain.VolumeFee); ok {
			switch order.Side {
			case domain.SideBuy:
				available.Sell.Amount = divByFactor(available.Sell.Amount, 1+volume.Factor)
			case domain.SideSell:
				available.Buy.Amount = divByFactor(available.Buy.Amount, 1-volume.Factor)
			}
		}
	}

	kind := model.KindSell
	if order.Side == domain.SideBuy {
		kind = model.KindBuy
	}

	class := model.ClassMarket
	switch order.Class {
	case domain.ClassLimit:
		class = model.ClassLimit
	case domain.ClassLiquidity:
		class = model.ClassLiquidity
	}

	return model.Order{
		UID:               order.UID.String(),
		SellToken:         addressHex(available.Sell.Token),
		BuyToken:          addressHex(available.Buy.Token),
		SellAmount:        bigString(available.Sell.Amount),
		BuyAmount:         bigString(available.Buy.Amount),
		FeeAmount:         bigString(available.UserFee),
		Kind:              kind,
		PartiallyFillable: order.PartiallyFillable,
		Class:             class,
	}
}

// divByFactor returns floor(amount / factor). A factor that is not a
// positive finite number degrades the amount to zero, making the order
// unfillable for the round instead of failing the whole encode.
func divByFactor(amount *big.Int, factor float64) *big.Int {
	rat := new(big.Rat).SetFloat64(factor)
	if rat == nil || rat.Sign() <= 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(amount, rat.Denom())
	return out.Div(out, rat.Num())
}
