package llm

import "github.com/prometheus/client_golang/prometheus"

// modelRequests counts upstream model calls by operation and outcome.
var modelRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "model_requests_total",
		Help: "Total number of generative model requests.",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.MustRegister(modelRequests)
}

func observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	modelRequests.WithLabelValues(op, outcome).Inc()
}
