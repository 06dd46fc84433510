package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"boqdesk/internal/model"
)

var (
	importPreviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boqdesk",
		Subsystem: "import",
		Name:      "previews_total",
		Help:      "Total number of import previews broken down by result.",
	}, []string{"result"})

	importCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boqdesk",
		Subsystem: "import",
		Name:      "commits_total",
		Help:      "Total number of import confirmations broken down by result.",
	}, []string{"result"})

	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boqdesk",
		Subsystem: "import",
		Name:      "rows_total",
		Help:      "Rows seen by import previews broken down by severity.",
	}, []string{"severity"})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "boqdesk",
		Subsystem: "api",
		Name:      "latency_seconds",
		Help:      "Latency distribution for API requests.",
		Buckets: []float64{
			0.001, 0.005, 0.01, 0.05,
			0.1, 0.25, 0.5, 1, 2, 5, 10,
		},
	}, []string{"endpoint", "result"})
)

// result 标签取值
const (
	ResultOK          = "ok"
	ResultFileInvalid = "file_invalid"
	ResultRejected    = "rejected"
	ResultError       = "error"
)

// ObservePreview 记录一次预览及各行状态
func ObservePreview(result string, rows []model.CandidateRow) {
	importPreviews.WithLabelValues(result).Inc()
	for i := range rows {
		importRows.WithLabelValues(string(rows[i].Severity())).Inc()
	}
}

// ObserveCommit 记录一次确认导入
func ObserveCommit(result string) {
	importCommits.WithLabelValues(result).Inc()
}

// Middleware 按路由模板统计请求耗时
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		apiLatency.WithLabelValues(endpoint, statusClass(c.Writer.Status())).Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露默认 registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func statusClass(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "5xx"
	case status >= http.StatusBadRequest:
		return "4xx"
	default:
		return "2xx"
	}
}
