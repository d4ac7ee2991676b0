package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NativeToken is the placeholder address orders use for the chain's
// native token.
var NativeToken = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// Asset is an amount of a specific token.
type Asset struct {
	Token  common.Address
	Amount *big.Int
}

// Allowance is a token spending approval granted to a spender contract.
type Allowance struct {
	Token   common.Address
	Spender common.Address
	Amount  *big.Int
}

// WrapNative substitutes the native token placeholder with the wrapped
// native token address. Settlements only ever move the wrapped token.
func WrapNative(token, weth common.Address) common.Address {
	if token == NativeToken {
		return weth
	}
	return token
}
