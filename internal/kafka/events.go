package kafka

import (
	"context"
	"time"
)

const (
	EventCallStarted = "call.started"
	EventCallEnded   = "call.ended"
)

// CallEvent is the payload of a call lifecycle message. Stats are only set
// on call.ended.
type CallEvent struct {
	Type       string     `json:"type"`
	SessionID  string     `json:"session_id"`
	CallSid    string     `json:"call_sid,omitempty"`
	StreamSid  string     `json:"stream_sid,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
	EndReason  string     `json:"end_reason,omitempty"`
	Stats      *CallStats `json:"stats,omitempty"`
}

type CallStats struct {
	DurationMs         int64 `json:"duration_ms"`
	FramesIn           int   `json:"frames_in"`
	FramesAppended     int   `json:"frames_appended"`
	Commits            int   `json:"commits"`
	ResponsesRequested int   `json:"responses_requested"`
	DeltasRelayed      int   `json:"deltas_relayed"`
	DeltasDropped      int   `json:"deltas_dropped"`
	MalformedMessages  int   `json:"malformed_messages"`
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, CallEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
