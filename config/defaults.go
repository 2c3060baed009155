package config

import "time"

// Polygon mainnet addresses
const (
	WMATIC = "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"
	USDC   = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	USDT   = "0xc2132D05D31c914a87C6611C10748AEb04B58e8F"
	WETH   = "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619"
	WBTC   = "0x1BFD67037B42Cf73acF2047067bd4F2C47D9BfD6"
	DAI    = "0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063"
	LINK   = "0x53E0bca35eC356BD5ddDFebbD1Fc0fD03FaBad39"

	UniswapV3Quoter   = "0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6"
	SushiSwapV2Router = "0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506"
	QuickSwapV2Router = "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff"
	KyberSwapRouter   = "0x546C79662E028B661dFB4767664d0273184E4dD1"
	AaveV3Pool        = "0x794a61358D6845594F94dc1DB02A252b5b4814aD"

	ArbitrageContract = "0x585e57f419de97481fb7c013fa8f25141760a01c"
)

func DefaultConfig() *Config {
	return &Config{
		ChainID:           137,
		ExecutionContract: ArbitrageContract,
		WrappedNative:     WMATIC,
		AavePool:          AaveV3Pool,
		FirstHop: VenueConfig{
			Name:    "UniswapV3",
			Kind:    VenueUniswapV3Quoter,
			Address: UniswapV3Quoter,
		},
		SecondHop: []VenueConfig{
			{Name: "SushiSwap", Kind: VenueUniswapV2Router, Address: SushiSwapV2Router},
			{Name: "QuickSwap", Kind: VenueUniswapV2Router, Address: QuickSwapV2Router},
			{Name: "KyberSwap", Kind: VenueUniswapV2Router, Address: KyberSwapRouter},
		},
		Pairs: []PairConfig{
			{TokenA: WMATIC, TokenB: USDC, DecimalsA: 18, DecimalsB: 6, FeeTier: 500, Symbol: "WMATIC/USDC"},
			{TokenA: USDC, TokenB: USDT, DecimalsA: 6, DecimalsB: 6, FeeTier: 100, Symbol: "USDC/USDT"},
			{TokenA: WETH, TokenB: USDC, DecimalsA: 18, DecimalsB: 6, FeeTier: 500, Symbol: "WETH/USDC"},
			{TokenA: WBTC, TokenB: USDC, DecimalsA: 8, DecimalsB: 6, FeeTier: 500, Symbol: "WBTC/USDC"},
			{TokenA: DAI, TokenB: USDC, DecimalsA: 18, DecimalsB: 6, FeeTier: 100, Symbol: "DAI/USDC"},
			{TokenA: USDC, TokenB: WMATIC, DecimalsA: 6, DecimalsB: 18, FeeTier: 500, Symbol: "USDC/WMATIC"},
			{TokenA: USDC, TokenB: WETH, DecimalsA: 6, DecimalsB: 18, FeeTier: 500, Symbol: "USDC/WETH"},
			{TokenA: LINK, TokenB: USDC, DecimalsA: 18, DecimalsB: 6, FeeTier: 3000, Symbol: "LINK/USDC"},
			{TokenA: WMATIC, TokenB: WETH, DecimalsA: 18, DecimalsB: 18, FeeTier: 3000, Symbol: "WMATIC/WETH"},
		},
		LoanSizes: []string{"5", "10", "25", "50", "100", "250"},
		TokenPricesUSD: map[string]float64{
			WMATIC: 0.55,
			USDC:   1,
			USDT:   1,
			DAI:    1,
			WETH:   3750,
			WBTC:   68000,
			LINK:   17.5,
		},
		MinProfitUSD:        0.15,
		SlippageBps:         250,
		FlashLoanFeeBps:     9,
		SecondHopFeeBps:     30,
		MaxGasPriceGwei:     50,
		GasLimit:            800000,
		GasCostFallback:     "0.05",
		GasRateCacheTTL:     30 * time.Second,
		GasRateCacheSize:    64,
		DeadlineBlocks:      10,
		PriceCommitmentSeed: "stable_price_commitment_v1",
		UseCommitReveal:     false,
		ConfirmationTimeout: 2 * time.Minute,
		SimulateBeforeSend:  true,
		ScanInterval:        8 * time.Second,
		BusyInterval:        5 * time.Second,
		PostExecutionDelay:  15 * time.Second,
		NearMissReportEvery: 10,
		RPCRateLimit: RateLimitConfig{
			RequestsPerSecond: 25,
			BurstSize:         50,
		},
		MetricsAddr: ":9102",
	}
}
