package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v2"

	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils"
)

// Venue kinds understood by the quote adapters
const (
	VenueUniswapV3Quoter = "uniswap_v3_quoter"
	VenueUniswapV2Router = "uniswap_v2_router"
)

type Config struct {
	// Chain and contract settings
	ChainID           uint64 `yaml:"chain_id"`
	ExecutionContract string `yaml:"execution_contract"`
	WrappedNative     string `yaml:"wrapped_native"`
	AavePool          string `yaml:"aave_pool"`

	// Venues. Second-hop order is the tie-break order.
	FirstHop  VenueConfig   `yaml:"first_hop"`
	SecondHop []VenueConfig `yaml:"second_hop"`

	// Search space
	Pairs     []PairConfig `yaml:"pairs"`
	LoanSizes []string     `yaml:"loan_sizes"`

	// USD reference prices keyed by token address; unknown tokens are treated as USD-denominated
	TokenPricesUSD map[string]float64 `yaml:"token_prices_usd"`

	// Profit model
	MinProfitUSD    float64 `yaml:"min_profit_usd"`
	SlippageBps     uint64  `yaml:"slippage_bps"`
	FlashLoanFeeBps uint64  `yaml:"flash_loan_fee_bps"`
	SecondHopFeeBps uint64  `yaml:"second_hop_fee_bps"`

	// Gas
	MaxGasPriceGwei  uint64        `yaml:"max_gas_price_gwei"`
	GasLimit         uint64        `yaml:"gas_limit"`
	GasCostFallback  string        `yaml:"gas_cost_fallback"`
	GasRateCacheTTL  time.Duration `yaml:"gas_rate_cache_ttl"`
	GasRateCacheSize int           `yaml:"gas_rate_cache_size"`

	// Execution protection
	DeadlineBlocks      uint64        `yaml:"deadline_blocks"`
	PriceCommitmentSeed string        `yaml:"price_commitment_seed"`
	UseCommitReveal     bool          `yaml:"use_commit_reveal"`
	ConfirmationTimeout time.Duration `yaml:"confirmation_timeout"`
	SimulateBeforeSend  bool          `yaml:"simulate_before_send"`

	// Scan cadence
	ScanInterval        time.Duration `yaml:"scan_interval"`
	BusyInterval        time.Duration `yaml:"busy_interval"`
	PostExecutionDelay  time.Duration `yaml:"post_execution_delay"`
	NearMissReportEvery uint64        `yaml:"near_miss_report_every"`

	RPCRateLimit RateLimitConfig `yaml:"rpc_rate_limit"`

	// Status server, empty disables it
	MetricsAddr string `yaml:"metrics_addr"`
}

type VenueConfig struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Address string `yaml:"address"`
}

type PairConfig struct {
	TokenA    string `yaml:"token_a"`
	TokenB    string `yaml:"token_b"`
	DecimalsA uint8  `yaml:"decimals_a"`
	DecimalsB uint8  `yaml:"decimals_b"`
	FeeTier   uint32 `yaml:"fee_tier"`
	Symbol    string `yaml:"symbol"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

func (c *Config) ValidateConfig() error {
	var errors []string

	if c.ChainID == 0 {
		errors = append(errors, "chain_id must be specified")
	}
	if !common.IsHexAddress(c.ExecutionContract) {
		errors = append(errors, "execution_contract must be a valid address")
	}
	if !common.IsHexAddress(c.WrappedNative) {
		errors = append(errors, "wrapped_native must be a valid address")
	}

	if err := c.FirstHop.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("first_hop: %v", err))
	}
	if len(c.SecondHop) == 0 {
		errors = append(errors, "at least one second_hop venue must be configured")
	}
	for i, v := range c.SecondHop {
		if err := v.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("second_hop[%d]: %v", i, err))
		}
	}

	if len(c.Pairs) == 0 {
		errors = append(errors, "at least one pair must be configured")
	}
	for i, p := range c.Pairs {
		if err := p.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("pairs[%d]: %v", i, err))
		}
	}

	if len(c.LoanSizes) == 0 {
		errors = append(errors, "at least one loan size must be configured")
	}
	for _, s := range c.LoanSizes {
		if !isPositiveAmount(s) {
			errors = append(errors, fmt.Sprintf("loan size %q must be a positive decimal", s))
		}
	}

	if c.MinProfitUSD <= 0 {
		errors = append(errors, "min_profit_usd must be positive")
	}
	if c.SlippageBps >= 10000 {
		errors = append(errors, "slippage_bps must be below 10000")
	}
	if c.SecondHopFeeBps >= 10000 {
		errors = append(errors, "second_hop_fee_bps must be below 10000")
	}
	if c.MaxGasPriceGwei == 0 {
		errors = append(errors, "max_gas_price_gwei must be positive")
	}
	if c.GasLimit == 0 {
		errors = append(errors, "gas_limit must be positive")
	}
	if !isPositiveAmount(c.GasCostFallback) {
		errors = append(errors, "gas_cost_fallback must be a positive decimal")
	}
	if c.DeadlineBlocks == 0 {
		errors = append(errors, "deadline_blocks must be positive")
	}
	if c.ScanInterval <= 0 || c.BusyInterval <= 0 || c.ConfirmationTimeout <= 0 {
		errors = append(errors, "scan_interval, busy_interval and confirmation_timeout must be positive")
	}
	if c.NearMissReportEvery == 0 {
		errors = append(errors, "near_miss_report_every must be positive")
	}
	if err := c.RPCRateLimit.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("rpc rate limit error: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (v *VenueConfig) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("name must be specified")
	}
	if v.Kind != VenueUniswapV3Quoter && v.Kind != VenueUniswapV2Router {
		return fmt.Errorf("unsupported venue kind %q", v.Kind)
	}
	if !common.IsHexAddress(v.Address) {
		return fmt.Errorf("address must be valid")
	}
	return nil
}

func (p *PairConfig) Validate() error {
	if !common.IsHexAddress(p.TokenA) || !common.IsHexAddress(p.TokenB) {
		return fmt.Errorf("token addresses must be valid")
	}
	if common.HexToAddress(p.TokenA) == common.HexToAddress(p.TokenB) {
		return fmt.Errorf("token_a and token_b must differ")
	}
	if p.Symbol == "" {
		return fmt.Errorf("symbol must be specified")
	}
	return nil
}

func (r *RateLimitConfig) Validate() error {
	if r.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive")
	}
	if r.BurstSize <= 0 {
		return fmt.Errorf("burst size must be positive")
	}
	return nil
}

// TradingPairs returns the configured pairs in configuration order
func (c *Config) TradingPairs() []types.TradingPair {
	pairs := make([]types.TradingPair, 0, len(c.Pairs))
	for _, p := range c.Pairs {
		pairs = append(pairs, types.TradingPair{
			TokenA:    common.HexToAddress(p.TokenA),
			TokenB:    common.HexToAddress(p.TokenB),
			DecimalsA: p.DecimalsA,
			DecimalsB: p.DecimalsB,
			FeeTier:   p.FeeTier,
			Symbol:    p.Symbol,
		})
	}
	return pairs
}

// NotionalSizes converts the loan size table into the pair's first-token precision
func (c *Config) NotionalSizes(pair types.TradingPair) ([]*big.Int, error) {
	sizes := make([]*big.Int, 0, len(c.LoanSizes))
	for _, s := range c.LoanSizes {
		amount, err := utils.ParseUnits(s, pair.DecimalsA)
		if err != nil {
			return nil, fmt.Errorf("failed to parse loan size for %s: %w", pair.Symbol, err)
		}
		sizes = append(sizes, amount)
	}
	return sizes, nil
}

// PriceTable returns the USD reference prices keyed by token address
func (c *Config) PriceTable() map[common.Address]float64 {
	table := make(map[common.Address]float64, len(c.TokenPricesUSD))
	for addr, price := range c.TokenPricesUSD {
		table[common.HexToAddress(addr)] = price
	}
	return table
}

// MaxGasPriceWei returns the gas price ceiling in wei
func (c *Config) MaxGasPriceWei() *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(c.MaxGasPriceGwei), big.NewInt(1e9))
}

// LoadConfig reads a YAML config file over the defaults. An empty path returns the defaults.
func LoadConfig(cfgFile string) (*Config, error) {
	config := DefaultConfig()
	if cfgFile != "" {
		data, err := os.ReadFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var present map[string]interface{}
		if err := yaml.Unmarshal(data, &present); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		// a price table in the file replaces the defaults instead of merging into them
		if _, ok := present["token_prices_usd"]; ok {
			config.TokenPricesUSD = nil
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	if err := config.ValidateConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig writes the config as YAML
func SaveConfig(cfg *Config, cfgFile string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(cfgFile, data, 0o644)
}

func isPositiveAmount(s string) bool {
	v, err := utils.ParseUnits(s, 18)
	return err == nil && v.Sign() > 0
}
