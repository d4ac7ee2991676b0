package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Token is auction-level token metadata.
type Token struct {
	Address common.Address
	// Decimals is nil when the token contract does not expose it.
	Decimals *uint8
	Symbol   string
	// ReferencePrice is the native-token-denominated price of one
	// atom of this token, nil when no estimate is available.
	ReferencePrice *big.Int
	// AvailableBalance is the settlement contract's balance of this
	// token, usable for internalized interactions.
	AvailableBalance *big.Int
	// Trusted tokens may be used for fee and price internalization.
	Trusted bool
}

// Deadline holds the cutoffs of one auction round. Solvers get a
// stricter cutoff than the driver so the driver has time left to
// validate and submit.
type Deadline struct {
	// Driver is when the driver must answer the autopilot.
	Driver time.Time
	// Solvers is when solvers must answer the driver.
	Solvers time.Time
}

// Auction is the immutable order and price snapshot of one round.
type Auction struct {
	// ID is empty for quote auctions, set for settlement auctions.
	ID     string
	Tokens []Token
	Orders []Order
	// GasPrice is the effective gas price the round is estimated
	// against.
	GasPrice *big.Int
	Deadline Deadline
}

// Token returns the metadata entry for an address, or a zero-value
// entry when the auction does not carry one.
func (a *Auction) Token(address common.Address) Token {
	for _, token := range a.Tokens {
		if token.Address == address {
			return token
		}
	}
	return Token{Address: address}
}

// OrderByUID returns the auction order with the given UID.
func (a *Auction) OrderByUID(uid OrderUID) (*Order, bool) {
	for i := range a.Orders {
		if a.Orders[i].UID == uid {
			return &a.Orders[i], true
		}
	}
	return nil, false
}
