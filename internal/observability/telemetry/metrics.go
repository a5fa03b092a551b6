package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Turn pipeline metrics
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxline_turns_total",
		Help: "Turns processed, by terminal status",
	}, []string{"status"})

	StageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voxline_stage_latency_seconds",
		Help:    "Latency of each pipeline stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	GenerationFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxline_generation_fallbacks_total",
		Help: "Replies substituted with a fixed fallback, by reason",
	}, []string{"reason"})

	ReplyAudioBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voxline_reply_audio_bytes",
		Help:    "Size of synthesized reply payloads",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})
)
