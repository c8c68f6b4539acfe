package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(aiCalls, aiCallLatencyMs, aiPromptTokens)
}

var (
	aiCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_calls_total",
			Help: "LLM provider calls, by operation and success.",
		},
		[]string{"op", "model", "success"},
	)

	aiCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_call_latency_ms",
			Help:    "LLM call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 30000},
		},
		[]string{"op", "model"},
	)

	aiPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_prompt_tokens_total",
			Help: "Prompt tokens submitted per model.",
		},
		[]string{"model"},
	)
)

func ObserveAICall(op, model string, latencyMs int, success bool) {
	aiCalls.WithLabelValues(op, model, strconv.FormatBool(success)).Inc()
	aiCallLatencyMs.WithLabelValues(op, model).Observe(float64(latencyMs))
}

func AddPromptTokens(model string, n int) {
	aiPromptTokens.WithLabelValues(model).Add(float64(n))
}
