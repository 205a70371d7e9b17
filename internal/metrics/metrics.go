// Package metrics provides Prometheus metrics for the voice bridge.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveCalls tracks calls currently bridged by this instance.
	ActiveCalls = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voicebridge_active_calls",
			Help: "Number of calls currently bridged",
		},
	)

	// CallsStarted tracks admitted calls.
	CallsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebridge_calls_started_total",
			Help: "Total number of calls admitted",
		},
	)

	// CallsRejected tracks calls refused because every line was busy.
	CallsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebridge_calls_rejected_total",
			Help: "Total number of calls rejected at capacity",
		},
	)

	// CallsEnded tracks finished calls by end reason.
	CallsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicebridge_calls_ended_total",
			Help: "Total number of finished calls",
		},
		[]string{"reason"},
	)

	// CallDuration tracks how long bridged calls last.
	CallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voicebridge_call_duration_seconds",
			Help:    "Duration of bridged calls",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	// AudioFrames tracks caller frames by outcome.
	AudioFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicebridge_audio_frames_total",
			Help: "Caller audio frames by outcome",
		},
		[]string{"outcome"},
	)

	// Commits tracks audio buffer commits sent to the AI side.
	Commits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebridge_commits_total",
			Help: "Total number of audio buffer commits",
		},
	)

	// ResponsesRequested tracks response requests sent to the AI side.
	ResponsesRequested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebridge_responses_requested_total",
			Help: "Total number of responses requested",
		},
	)

	// AudioDeltas tracks AI audio chunks by outcome.
	AudioDeltas = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicebridge_audio_deltas_total",
			Help: "AI audio chunks by outcome",
		},
		[]string{"outcome"},
	)

	// MalformedMessages tracks dropped messages from either leg.
	MalformedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebridge_malformed_messages_total",
			Help: "Total number of malformed messages dropped",
		},
	)

	// AIErrors tracks error events reported by the AI side.
	AIErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebridge_ai_errors_total",
			Help: "Total number of AI error events",
		},
	)
)

// CallSummary is what a finished call reports.
type CallSummary struct {
	EndReason          string
	Duration           time.Duration
	FramesIn           int
	FramesDiscarded    int
	FramesAppended     int
	Commits            int
	ResponsesRequested int
	DeltasRelayed      int
	DeltasDropped      int
	MalformedMessages  int
	AIErrors           int
}

// RecordCallStarted increments call admission metrics.
func RecordCallStarted() {
	CallsStarted.Inc()
	ActiveCalls.Inc()
}

// RecordCallRejected counts a call refused at capacity.
func RecordCallRejected() {
	CallsRejected.Inc()
}

// RecordCallEnded folds a finished call into the totals.
func RecordCallEnded(s CallSummary) {
	ActiveCalls.Dec()
	reason := s.EndReason
	if reason == "" {
		reason = "unknown"
	}
	CallsEnded.WithLabelValues(reason).Inc()
	CallDuration.Observe(s.Duration.Seconds())

	AudioFrames.WithLabelValues("received").Add(float64(s.FramesIn))
	AudioFrames.WithLabelValues("discarded").Add(float64(s.FramesDiscarded))
	AudioFrames.WithLabelValues("appended").Add(float64(s.FramesAppended))
	Commits.Add(float64(s.Commits))
	ResponsesRequested.Add(float64(s.ResponsesRequested))
	AudioDeltas.WithLabelValues("relayed").Add(float64(s.DeltasRelayed))
	AudioDeltas.WithLabelValues("dropped").Add(float64(s.DeltasDropped))
	MalformedMessages.Add(float64(s.MalformedMessages))
	AIErrors.Add(float64(s.AIErrors))
}
