package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// UpstreamRequestsTotal 上游调用次数，按应用与结果区分
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "valsia",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Total number of upstream generation calls, labeled by app and result.",
	}, []string{"app", "result"})

	// UpstreamDurationSeconds 单次上游调用耗时（含流聚合）
	UpstreamDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "valsia",
		Subsystem: "upstream",
		Name:      "duration_seconds",
		Help:      "Time spent on one upstream generation call including stream aggregation.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"app"})

	// SkippedLinesTotal 解析失败被跳过的 SSE 行
	SkippedLinesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "valsia",
		Subsystem: "stream",
		Name:      "skipped_lines_total",
		Help:      "Total number of SSE data lines skipped because they were not valid JSON objects.",
	}, []string{"app"})

	// AggregatedBytes 聚合结果大小
	AggregatedBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "valsia",
		Subsystem: "stream",
		Name:      "aggregated_bytes",
		Help:      "Size of the aggregated response text.",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"app"})

	// ExtractionTotal 结构化提取结果，strategy 为 none 表示回退到格式化
	ExtractionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "valsia",
		Subsystem: "view",
		Name:      "extraction_total",
		Help:      "Structured extraction outcomes by view and strategy.",
	}, []string{"view", "strategy"})
)

// Register 注册到默认 registry，可重复调用
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			UpstreamRequestsTotal,
			UpstreamDurationSeconds,
			SkippedLinesTotal,
			AggregatedBytes,
			ExtractionTotal,
		)
	})
}

// Handler /metrics
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
