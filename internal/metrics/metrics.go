package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts OICP requests, labeled by operation and direction (outbound/inbound).
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oicp_requests_total",
		Help: "Total number of OICP requests sent or received.",
	}, []string{"operation", "direction"})

	// ResponsesTotal counts OICP responses, labeled by operation and outcome (success, faulted, timed_out, invalid_response).
	ResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oicp_responses_total",
		Help: "Total number of OICP responses by outcome.",
	}, []string{"operation", "outcome"})

	// ParseErrorsTotal counts payloads that could not be parsed, labeled by error kind.
	ParseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oicp_parse_errors_total",
		Help: "Total number of OICP payloads rejected by the parser.",
	}, []string{"operation", "kind"})

	// RequestDuration observes round trip time of outbound requests.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oicp_request_duration_seconds",
		Help:    "Histogram of OICP request round trip times.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms .. ~100s
	}, []string{"operation"})

	// RemoteCommandsTotal counts remote commands consumed from the broker, labeled by result.
	RemoteCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oicp_remote_commands_total",
		Help: "Total number of remote commands consumed from the message broker.",
	}, []string{"operation", "result"})
)

// RegisterMetrics registers all the defined Prometheus metrics.
// promauto registers them on the default registry at init, so this only exists for callers
// that want an explicit hook during startup.
func RegisterMetrics() {}

// ObserveRequest 记录一次请求
func ObserveRequest(operation, direction string) {
	RequestsTotal.WithLabelValues(operation, direction).Inc()
}

// ObserveResponse 记录一次出站调用的结果与耗时
func ObserveResponse(operation, outcome string, runtime time.Duration) {
	ResponsesTotal.WithLabelValues(operation, outcome).Inc()
	RequestDuration.WithLabelValues(operation).Observe(runtime.Seconds())
}

// ObserveParseError 记录一次解析失败
func ObserveParseError(operation, kind string) {
	ParseErrorsTotal.WithLabelValues(operation, kind).Inc()
}

// ObserveRemoteCommand 记录一次远程命令执行结果
func ObserveRemoteCommand(operation, result string) {
	RemoteCommandsTotal.WithLabelValues(operation, result).Inc()
}

// Handler 暴露默认注册表的 /metrics 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
