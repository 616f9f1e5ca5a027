package services

import "github.com/prometheus/client_golang/prometheus"

// Stream outcomes recorded on chat_streams_total.
const (
	outcomeOK          = "ok"
	outcomeModelError  = "model_error"
	outcomeClientGone  = "client_gone"
	outcomeStoreError  = "store_error"
	outcomeNotFound    = "not_found"
	outcomeInvalidBody = "invalid"
)

var (
	// chatChunks counts fragments relayed to clients.
	chatChunks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_stream_chunks_total",
		Help: "Total number of model fragments relayed to chat clients.",
	})

	// chatStreams counts relay runs by terminal outcome.
	chatStreams = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_streams_total",
			Help: "Total number of chat relay runs by outcome.",
		},
		[]string{"outcome"},
	)

	// moodTrends counts mood analyses by computed trend.
	moodTrends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_trend_total",
			Help: "Total number of mood analyses by trend.",
		},
		[]string{"trend"},
	)
)

func init() {
	prometheus.MustRegister(chatChunks, chatStreams, moodTrends)
}
