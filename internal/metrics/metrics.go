package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"route", "code"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gradebook", Name: "http_request_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gradebook", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
	GradeWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "grade_writes_total", Help: "Saved or cleared grades",
	}, []string{"op"})
	SessionEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "session_events_total", Help: "Session provider events",
	}, []string{"kind"})
	Notices = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "notices_total", Help: "User-visible notices by level",
	}, []string{"level"})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, HandlerErrors, DBPing, GradeWrites, SessionEvents, Notices)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRequest(route string, code int, d time.Duration) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}
