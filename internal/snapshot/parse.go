package snapshot

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"solverBridge/internal/domain"
)

// Auction converts the snapshot into the domain auction for the round.
func (f *File) Auction() (*domain.Auction, error) {
	tokens := make([]domain.Token, 0, len(f.Tokens))
	for _, entry := range f.Tokens {
		token, err := parseToken(entry)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	orders := make([]domain.Order, 0, len(f.Orders))
	for _, entry := range f.Orders {
		order, err := parseOrder(entry)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	gasPrice, err := parseBig(f.EffectiveGasPrice, "effective gas price")
	if err != nil {
		return nil, err
	}

	return &domain.Auction{
		ID:       f.ID,
		Tokens:   tokens,
		Orders:   orders,
		GasPrice: gasPrice,
		Deadline: domain.Deadline{
			Driver:  f.DriverDeadline,
			Solvers: f.SolverDeadline,
		},
	}, nil
}

// LiquiditySet converts the snapshot's liquidity entries into domain
// liquidity.
func (f *File) LiquiditySet() ([]domain.Liquidity, error) {
	liquidity := make([]domain.Liquidity, 0, len(f.Liquidity))
	for _, entry := range f.Liquidity {
		parsed, err := parseLiquidity(entry)
		if err != nil {
			return nil, fmt.Errorf("liquidity %d: %w", entry.ID, err)
		}
		liquidity = append(liquidity, parsed)
	}
	return liquidity, nil
}

func parseToken(entry TokenEntry) (domain.Token, error) {
	address, err := parseAddress(entry.Address, "token address")
	if err != nil {
		return domain.Token{}, err
	}
	token := domain.Token{
		Address:  address,
		Decimals: entry.Decimals,
		Symbol:   entry.Symbol,
		Trusted:  entry.Trusted,
	}
	if entry.ReferencePrice != "" {
		price, err := parseBig(entry.ReferencePrice, "reference price")
		if err != nil {
			return domain.Token{}, err
		}
		token.ReferencePrice = price
	}
	balance, err := parseBig(entry.AvailableBalance, "available balance")
	if err != nil {
		return domain.Token{}, err
	}
	token.AvailableBalance = balance
	return token, nil
}

func parseOrder(entry OrderEntry) (domain.Order, error) {
	uid, err := domain.ParseOrderUID(entry.UID)
	if err != nil {
		return domain.Order{}, err
	}
	sellToken, err := parseAddress(entry.SellToken, "sell token")
	if err != nil {
		return domain.Order{}, err
	}
	buyToken, err := parseAddress(entry.BuyToken, "buy token")
	if err != nil {
		return domain.Order{}, err
	}
	sellAmount, err := parseBig(entry.SellAmount, "sell amount")
	if err != nil {
		return domain.Order{}, err
	}
	buyAmount, err := parseBig(entry.BuyAmount, "buy amount")
	if err != nil {
		return domain.Order{}, err
	}
	userFee, err := parseBig(entry.UserFee, "user fee")
	if err != nil {
		return domain.Order{}, err
	}
	executed, err := parseBig(entry.Executed, "executed amount")
	if err != nil {
		return domain.Order{}, err
	}

	var side domain.Side
	switch entry.Side {
	case "sell":
		side = domain.SideSell
	case "buy":
		side = domain.SideBuy
	default:
		return domain.Order{}, fmt.Errorf("unsupported order side: %q", entry.Side)
	}

	var class domain.Class
	switch entry.Class {
	case "market":
		class = domain.ClassMarket
	case "limit":
		class = domain.ClassLimit
	case "liquidity":
		class = domain.ClassLiquidity
	default:
		return domain.Order{}, fmt.Errorf("unsupported order class: %q", entry.Class)
	}

	policies := make([]domain.FeePolicy, 0, len(entry.FeePolicies))
	for _, policy := range entry.FeePolicies {
		parsed, err := parseFeePolicy(policy)
		if err != nil {
			return domain.Order{}, err
		}
		policies = append(policies, parsed)
	}

	return domain.Order{
		UID:               uid,
		SellToken:         sellToken,
		BuyToken:          buyToken,
		SellAmount:        sellAmount,
		BuyAmount:         buyAmount,
		UserFee:           userFee,
		Side:              side,
		Class:             class,
		PartiallyFillable: entry.PartiallyFillable,
		Executed:          executed,
		ProtocolFees:      policies,
	}, nil
}

func parseFeePolicy(entry FeePolicyEntry) (domain.FeePolicy, error) {
	switch entry.Kind {
	case "volume":
		return domain.VolumeFee{Factor: entry.Factor}, nil
	case "surplus":
		return domain.SurplusFee{Factor: entry.Factor, MaxVolumeFactor: entry.MaxVolumeFactor}, nil
	case "price_improvement":
		return domain.PriceImprovementFee{Factor: entry.Factor, MaxVolumeFactor: entry.MaxVolumeFactor}, nil
	default:
		return nil, fmt.Errorf("unsupported fee policy kind: %q", entry.Kind)
	}
}

func parseLiquidity(entry LiquidityEntry) (domain.Liquidity, error) {
	gas, err := parseBig(entry.GasEstimate, "gas estimate")
	if err != nil {
		return domain.Liquidity{}, err
	}
	liquidity := domain.Liquidity{ID: entry.ID, Gas: gas}

	switch entry.Kind {
	case "uniswap_v2":
		pool, err := parseUniswapV2(entry)
		if err != nil {
			return domain.Liquidity{}, err
		}
		liquidity.Pool = pool
	case "swapr":
		pool, err := parseUniswapV2(entry)
		if err != nil {
			return domain.Liquidity{}, err
		}
		liquidity.Pool = domain.SwaprPool{Base: pool, FeeBps: entry.FeeBps}
	case "uniswap_v3":
		pool, err := parseUniswapV3(entry)
		if err != nil {
			return domain.Liquidity{}, err
		}
		liquidity.Pool = pool
	case "balancer_weighted":
		pool, err := parseWeighted(entry)
		if err != nil {
			return domain.Liquidity{}, err
		}
		liquidity.Pool = pool
	case "balancer_stable":
		pool, err := parseStable(entry)
		if err != nil {
			return domain.Liquidity{}, err
		}
		liquidity.Pool = pool
	default:
		return domain.Liquidity{}, fmt.Errorf("unsupported liquidity kind: %q", entry.Kind)
	}

	return liquidity, nil
}

func parseUniswapV2(entry LiquidityEntry) (domain.UniswapV2Pool, error) {
	address, err := parseAddress(entry.Address, "pool address")
	if err != nil {
		return domain.UniswapV2Pool{}, err
	}
	router, err := parseAddress(entry.Router, "router address")
	if err != nil {
		return domain.UniswapV2Pool{}, err
	}
	if len(entry.Reserves) != 2 {
		return domain.UniswapV2Pool{}, fmt.Errorf("constant product pool needs exactly 2 reserves, got %d", len(entry.Reserves))
	}

	var reserves [2]domain.Asset
	for i, reserve := range entry.Reserves {
		token, err := parseAddress(reserve.Token, "reserve token")
		if err != nil {
			return domain.UniswapV2Pool{}, err
		}
		amount, err := parseBig(reserve.Amount, "reserve amount")
		if err != nil {
			return domain.UniswapV2Pool{}, err
		}
		reserves[i] = domain.Asset{Token: token, Amount: amount}
	}

	return domain.UniswapV2Pool{Address: address, Router: router, Reserves: reserves}, nil
}

func parseUniswapV3(entry LiquidityEntry) (domain.UniswapV3Pool, error) {
	address, err := parseAddress(entry.Address, "pool address")
	if err != nil {
		return domain.UniswapV3Pool{}, err
	}
	router, err := parseAddress(entry.Router, "router address")
	if err != nil {
		return domain.UniswapV3Pool{}, err
	}
	if len(entry.Tokens) != 2 {
		return domain.UniswapV3Pool{}, fmt.Errorf("concentrated pool needs exactly 2 tokens, got %d", len(entry.Tokens))
	}
	var tokens [2]common.Address
	for i, token := range entry.Tokens {
		tokens[i], err = parseAddress(token, "pool token")
		if err != nil {
			return domain.UniswapV3Pool{}, err
		}
	}
	sqrtPrice, err := parseBig(entry.SqrtPrice, "sqrt price")
	if err != nil {
		return domain.UniswapV3Pool{}, err
	}
	liquidity, err := parseBig(entry.Liquidity, "liquidity")
	if err != nil {
		return domain.UniswapV3Pool{}, err
	}
	fee, ok := new(big.Rat).SetString(entry.Fee)
	if !ok {
		return domain.UniswapV3Pool{}, fmt.Errorf("invalid fee: %q", entry.Fee)
	}

	liquidityNet := make(map[int32]*big.Int, len(entry.LiquidityNet))
	for tick, net := range entry.LiquidityNet {
		parsedTick, err := strconv.ParseInt(tick, 10, 32)
		if err != nil {
			return domain.UniswapV3Pool{}, fmt.Errorf("invalid tick: %q", tick)
		}
		parsedNet, ok := new(big.Int).SetString(net, 10)
		if !ok {
			return domain.UniswapV3Pool{}, fmt.Errorf("invalid net liquidity: %q", net)
		}
		liquidityNet[int32(parsedTick)] = parsedNet
	}

	return domain.UniswapV3Pool{
		Address:      address,
		Router:       router,
		Tokens:       tokens,
		SqrtPrice:    sqrtPrice,
		Liquidity:    liquidity,
		Tick:         entry.Tick,
		LiquidityNet: liquidityNet,
		Fee:          fee,
	}, nil
}

func parseWeighted(entry LiquidityEntry) (domain.BalancerWeightedPool, error) {
	id, err := parsePoolID(entry.BalancerPoolID)
	if err != nil {
		return domain.BalancerWeightedPool{}, err
	}
	fee, err := parseBig(entry.Fee, "fee")
	if err != nil {
		return domain.BalancerWeightedPool{}, err
	}

	var version domain.WeightedVersion
	switch entry.Version {
	case "v0", "":
		version = domain.WeightedVersionV0
	case "v3plus":
		version = domain.WeightedVersionV3Plus
	default:
		return domain.BalancerWeightedPool{}, fmt.Errorf("unsupported weighted pool version: %q", entry.Version)
	}

	reserves := make([]domain.WeightedReserve, 0, len(entry.Reserves))
	for _, reserve := range entry.Reserves {
		token, err := parseAddress(reserve.Token, "reserve token")
		if err != nil {
			return domain.BalancerWeightedPool{}, err
		}
		balance, err := parseBig(reserve.Balance, "reserve balance")
		if err != nil {
			return domain.BalancerWeightedPool{}, err
		}
		scale, err := parseBig(reserve.Scale, "scaling factor")
		if err != nil {
			return domain.BalancerWeightedPool{}, err
		}
		weight, err := parseBig(reserve.Weight, "weight")
		if err != nil {
			return domain.BalancerWeightedPool{}, err
		}
		reserves = append(reserves, domain.WeightedReserve{Token: token, Balance: balance, Scale: scale, Weight: weight})
	}

	return domain.BalancerWeightedPool{ID: id, Reserves: reserves, Fee: fee, Version: version}, nil
}

func parseStable(entry LiquidityEntry) (domain.BalancerStablePool, error) {
	id, err := parsePoolID(entry.BalancerPoolID)
	if err != nil {
		return domain.BalancerStablePool{}, err
	}
	fee, err := parseBig(entry.Fee, "fee")
	if err != nil {
		return domain.BalancerStablePool{}, err
	}
	factor, err := parseBig(entry.AmplificationFactor, "amplification factor")
	if err != nil {
		return domain.BalancerStablePool{}, err
	}
	precision, err := parseBig(entry.AmplificationPrecision, "amplification precision")
	if err != nil {
		return domain.BalancerStablePool{}, err
	}
	if precision.Sign() == 0 {
		return domain.BalancerStablePool{}, fmt.Errorf("amplification precision must not be zero")
	}

	reserves := make([]domain.StableReserve, 0, len(entry.Reserves))
	for _, reserve := range entry.Reserves {
		token, err := parseAddress(reserve.Token, "reserve token")
		if err != nil {
			return domain.BalancerStablePool{}, err
		}
		balance, err := parseBig(reserve.Balance, "reserve balance")
		if err != nil {
			return domain.BalancerStablePool{}, err
		}
		scale, err := parseBig(reserve.Scale, "scaling factor")
		if err != nil {
			return domain.BalancerStablePool{}, err
		}
		reserves = append(reserves, domain.StableReserve{Token: token, Balance: balance, Scale: scale})
	}

	return domain.BalancerStablePool{
		ID:                     id,
		Reserves:               reserves,
		AmplificationFactor:    factor,
		AmplificationPrecision: precision,
		Fee:                    fee,
	}, nil
}

func parseAddress(input, field string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s: %q", field, input)
	}
	return common.HexToAddress(input), nil
}

func parsePoolID(input string) (domain.BalancerPoolID, error) {
	data, err := hexutil.Decode(input)
	if err != nil {
		return domain.BalancerPoolID{}, fmt.Errorf("invalid balancer pool id: %w", err)
	}
	if len(data) != common.HashLength {
		return domain.BalancerPoolID{}, fmt.Errorf("invalid balancer pool id length: %d", len(data))
	}
	return domain.BalancerPoolID(common.BytesToHash(data)), nil
}
