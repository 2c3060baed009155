package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "arbbot"

// Registry is the process registry served by the status server
var Registry = prometheus.NewRegistry()

type ScannerMetrics struct {
	Scans         prometheus.Counter
	SkippedCycles *prometheus.CounterVec
	Opportunities prometheus.Counter
	NearMisses    prometheus.Counter
	Rejected      prometheus.Counter
	CycleErrors   prometheus.Counter
	BestSpread    prometheus.Gauge
	GasPrice      prometheus.Gauge
	CycleDuration prometheus.Histogram
	USDFallbacks  *prometheus.CounterVec
}

func NewScannerMetrics(reg prometheus.Registerer) *ScannerMetrics {
	factory := promauto.With(reg)
	return &ScannerMetrics{
		Scans: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "scans_total",
			Help:      "Total number of scan cycles that passed the gas gate",
		}),
		SkippedCycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "skipped_cycles_total",
			Help:      "Cycles skipped before evaluation, by reason",
		}, []string{"reason"}),
		Opportunities: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "opportunities_total",
			Help:      "Total number of profitable opportunities found",
		}),
		NearMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "near_misses_total",
			Help:      "Total number of near-miss evaluations",
		}),
		Rejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "rejected_total",
			Help:      "Total number of rejected evaluations",
		}),
		CycleErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "cycle_errors_total",
			Help:      "Cycles aborted by an unexpected error",
		}),
		BestSpread: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "best_spread_percent",
			Help:      "Best raw spread observed since start",
		}),
		GasPrice: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "gas_price_gwei",
			Help:      "Gas price read at the last gate check",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "cycle_duration_seconds",
			Help:      "Time taken to evaluate one scan cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		USDFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "usd_price_fallbacks_total",
			Help:      "Profit conversions that treated an unpriced token as USD",
		}, []string{"token"}),
	}
}

type QuoteMetrics struct {
	Requests *prometheus.CounterVec
	Failures *prometheus.CounterVec
	NoRoute  prometheus.Counter
	Latency  *prometheus.HistogramVec
}

func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	factory := promauto.With(reg)
	return &QuoteMetrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "requests_total",
			Help:      "Quote requests by venue",
		}, []string{"venue"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "failures_total",
			Help:      "Failed quote requests by venue",
		}, []string{"venue"}),
		NoRoute: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "no_route_total",
			Help:      "Aggregations where no second-hop venue returned a usable quote",
		}),
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "latency_seconds",
			Help:      "Quote latency by venue",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"venue"}),
	}
}

type ExecutionMetrics struct {
	Attempts  prometheus.Counter
	Successes prometheus.Counter
	Failures  *prometheus.CounterVec
	Skipped   prometheus.Counter
	GasUsed   prometheus.Histogram
	Latency   prometheus.Histogram
	InFlight  prometheus.Gauge
}

func NewExecutionMetrics(reg prometheus.Registerer) *ExecutionMetrics {
	factory := promauto.With(reg)
	return &ExecutionMetrics{
		Attempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "attempts_total",
			Help:      "Total number of execution attempts",
		}),
		Successes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "successes_total",
			Help:      "Total number of confirmed successful executions",
		}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "failures_total",
			Help:      "Failed executions by status",
		}, []string{"status"}),
		Skipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "skipped_total",
			Help:      "Executions skipped because another was in flight",
		}),
		GasUsed: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "gas_used",
			Help:      "Gas used per confirmed execution",
			Buckets:   prometheus.ExponentialBuckets(100000, 1.5, 10),
		}),
		Latency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "latency_seconds",
			Help:      "Time from submission to confirmation",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "in_flight",
			Help:      "1 while an execution is outstanding",
		}),
	}
}

type GasMetrics struct {
	Fallbacks prometheus.Counter
	CacheHits prometheus.Counter
	CostWei   prometheus.Gauge
}

func NewGasMetrics(reg prometheus.Registerer) *GasMetrics {
	factory := promauto.With(reg)
	return &GasMetrics{
		Fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gas",
			Name:      "cost_fallbacks_total",
			Help:      "Gas cost conversions that used the fixed fallback",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gas",
			Name:      "rate_cache_hits_total",
			Help:      "Native-to-token rate lookups served from cache",
		}),
		CostWei: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gas",
			Name:      "budget_cost_wei",
			Help:      "Native cost of the gas budget at the last estimate",
		}),
	}
}

// RegisterRuntimeCollectors adds goroutine, heap, GC and process gauges to reg
func RegisterRuntimeCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)
}
