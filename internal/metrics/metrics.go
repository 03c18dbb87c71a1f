package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API 指标
var (
	// RequestsTotal 被拦截请求总数
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mock_requests_total",
			Help: "被拦截的请求总数",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration 请求处理耗时（秒）
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mock_request_duration_seconds",
			Help:    "请求处理耗时分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PassthroughTotal 未拦截、交给下游处理的请求数
	PassthroughTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mock_passthrough_total",
			Help: "未命中路由表的请求数",
		},
		[]string{"method"},
	)
)

// 故障注入指标
var (
	// InjectedFaultsTotal 注入的故障次数
	InjectedFaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mock_injected_faults_total",
			Help: "按 capability 统计的注入故障次数",
		},
		[]string{"capability"},
	)
)

// 存储指标
var (
	// StoreRecords 内存中各类记录数量
	StoreRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mock_store_records",
			Help: "内存中各类记录数量",
		},
		[]string{"kind"},
	)
)

// RecordInjectedFault 记录一次注入故障
func RecordInjectedFault(capability string) {
	InjectedFaultsTotal.WithLabelValues(capability).Inc()
}

// RecordPassthrough 记录一次未拦截请求
func RecordPassthrough(method string) {
	PassthroughTotal.WithLabelValues(method).Inc()
}
