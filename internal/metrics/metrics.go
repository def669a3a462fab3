package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of remote API requests",
		},
		[]string{"method", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Remote API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// 审批动作数
	approvalActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_actions_total",
			Help: "Total number of approval actions",
		},
		[]string{"action"}, // submit, approve, reject
	)

	// 对账回读次数
	reconcilePassesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_passes_total",
			Help: "Total number of read-back reconciliation passes",
		},
	)

	// 对账放弃次数(预算内未收敛)
	reconcileGiveupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_giveups_total",
			Help: "Total number of reconciliations abandoned after the retry budget",
		},
	)

	// 响应解码失败数
	decodeFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "decode_failures_total",
			Help: "Total number of response decoding failures",
		},
	)
)

var once sync.Once

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(approvalActionsTotal)
	prometheus.MustRegister(reconcilePassesTotal)
	prometheus.MustRegister(reconcileGiveupsTotal)
	prometheus.MustRegister(decodeFailuresTotal)

	// 注册 Go 运行时指标（只注册一次,已注册则忽略错误）
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器,供宿主程序挂载
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录远端 API 请求,状态标签为数字状态码
func RecordAPIRequest(method string, status int, duration float64) {
	apiRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(method).Observe(duration)
}

// RecordApprovalAction 记录审批动作
func RecordApprovalAction(action string) {
	approvalActionsTotal.WithLabelValues(action).Inc()
}

// RecordReconcilePass 记录一次对账回读
func RecordReconcilePass() {
	reconcilePassesTotal.Inc()
}

// RecordReconcileGiveup 记录一次对账放弃
func RecordReconcileGiveup() {
	reconcileGiveupsTotal.Inc()
}

// RecordDecodeFailure 记录一次解码失败
func RecordDecodeFailure() {
	decodeFailuresTotal.Inc()
}
