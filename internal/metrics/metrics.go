package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "monitor_submissions_received_total",
		Help: "Submissions pulled from the stream",
	})
	SubmissionsDisplayed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "monitor_submissions_displayed_total",
		Help: "Submissions that passed the title filter and were rendered",
	})
	Alerts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "monitor_alerts_total",
		Help: "Audible alerts played",
	})
	Failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_failures_total",
		Help: "Failures by kind",
	}, []string{"kind"})
	FlairClasses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_flair_class_total",
		Help: "Displayed submissions by flair color class",
	}, []string{"color"})
)

func init() {
	prometheus.MustRegister(SubmissionsReceived, SubmissionsDisplayed, Alerts, Failures, FlairClasses)
}

// IncFailure counts a failure of the given kind (render, alert, stream...).
func IncFailure(kind string) { Failures.WithLabelValues(kind).Inc() }

// IncFlairClass counts a displayed submission's flair color.
func IncFlairClass(color string) { FlairClasses.WithLabelValues(color).Inc() }

// Handler serves /metrics and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return mux
}

// StartServer exposes Handler on addr in the background. An empty addr
// disables it.
func StartServer(addr string, onError func(error)) {
	if addr == "" {
		return
	}
	go func() {
		if err := http.ListenAndServe(addr, Handler()); err != nil && onError != nil {
			onError(err)
		}
	}()
}
