package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voice-bridge/internal/callregistry"
	"voice-bridge/internal/kafka"
	"voice-bridge/internal/metrics"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voicecall/bridge"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrInvalidCallID   = errors.New("invalid call id")
	ErrRecordsDisabled = errors.New("call records are disabled")
)

const (
	// bookkeeping after a call must finish even when the call context is gone
	bookkeepingTimeout = 5 * time.Second
	busyReason         = "all lines busy"
)

type VoiceCallProcessor struct {
	sessions SessionFactory
	registry Registry
	store    CallStore
	events   EventPublisher
	logger   *observability.Logger
	now      func() time.Time
}

// NewVoiceCallProcessor wires the per-call orchestration. callStore may be
// nil, in which case no call records are kept.
func NewVoiceCallProcessor(sessions SessionFactory, registry Registry, callStore CallStore, events EventPublisher, logger *observability.Logger) *VoiceCallProcessor {
	if events == nil {
		events = kafka.NoopPublisher{}
	}
	return &VoiceCallProcessor{
		sessions: sessions,
		registry: registry,
		store:    callStore,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// ActiveCalls is the current registry occupancy
type ActiveCalls struct {
	Active   int `json:"active"`
	Capacity int `json:"capacity"`
}

// ServeMediaStream admits the call, runs the bridge until the call ends and
// records the outcome. It returns callregistry.ErrCapacityReached when the
// call was refused; conn is closed in every case.
func (p *VoiceCallProcessor) ServeMediaStream(ctx context.Context, conn MediaConn) error {
	sess := p.sessions.NewSession(conn)
	ctx = observability.WithFields(ctx, observability.Field{Key: "session_id", Value: sess.ID()})

	if err := p.registry.Acquire(ctx, sess.ID()); err != nil {
		if errors.Is(err, callregistry.ErrCapacityReached) {
			metrics.RecordCallRejected()
			p.logger.Warn(ctx, "rejecting call, at capacity",
				observability.Field{Key: "capacity", Value: p.registry.Capacity()})
			_ = conn.CloseWithCode(websocket.CloseTryAgainLater, busyReason)
			return err
		}
		p.logger.Error(ctx, "failed to admit call into registry, continuing", err)
	}
	defer p.release(ctx, sess.ID())

	metrics.RecordCallStarted()
	p.createRecord(ctx, sess.ID())
	p.publish(ctx, kafka.CallEvent{
		Type:       kafka.EventCallStarted,
		SessionID:  sess.ID(),
		OccurredAt: p.now(),
	})

	stats, err := sess.Run(ctx)
	if err != nil {
		metrics.RecordCallEnded(metrics.CallSummary{EndReason: "error"})
		p.logger.Error(ctx, "bridge session failed", err)
		return fmt.Errorf("failed to run bridge session: %w", err)
	}

	metrics.RecordCallEnded(summary(stats))
	p.completeRecord(ctx, stats)
	p.publish(ctx, kafka.CallEvent{
		Type:       kafka.EventCallEnded,
		SessionID:  stats.SessionID,
		CallSid:    stats.CallID,
		StreamSid:  stats.StreamID,
		OccurredAt: stats.EndedAt,
		EndReason:  string(stats.EndReason),
		Stats: &kafka.CallStats{
			DurationMs:         stats.Duration().Milliseconds(),
			FramesIn:           stats.FramesIn,
			FramesAppended:     stats.FramesAppended,
			Commits:            stats.Commits,
			ResponsesRequested: stats.ResponsesRequested,
			DeltasRelayed:      stats.DeltasRelayed,
			DeltasDropped:      stats.DeltasDropped,
			MalformedMessages:  stats.MalformedMessages,
		},
	})
	return nil
}

// GetCall returns the record of a current or past call.
func (p *VoiceCallProcessor) GetCall(ctx context.Context, callID string) (*store.CallRecord, error) {
	if p.store == nil {
		return nil, ErrRecordsDisabled
	}
	id, err := uuid.Parse(callID)
	if err != nil {
		return nil, ErrInvalidCallID
	}
	record, err := p.store.GetCallRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (p *VoiceCallProcessor) ActiveCalls(ctx context.Context) (ActiveCalls, error) {
	n, err := p.registry.Count(ctx)
	if err != nil {
		return ActiveCalls{}, err
	}
	return ActiveCalls{Active: n, Capacity: p.registry.Capacity()}, nil
}

func (p *VoiceCallProcessor) release(ctx context.Context, sessionID string) {
	ctx, cancel := p.detached(ctx)
	defer cancel()
	if err := p.registry.Release(ctx, sessionID); err != nil {
		p.logger.Error(ctx, "failed to release call from registry", err)
	}
}

func (p *VoiceCallProcessor) createRecord(ctx context.Context, sessionID string) {
	if p.store == nil {
		return
	}
	id, err := uuid.Parse(sessionID)
	if err != nil {
		p.logger.Error(ctx, "session id is not a uuid, skipping call record", err)
		return
	}
	if _, err := p.store.CreateCallRecord(ctx, id, p.now()); err != nil {
		p.logger.Error(ctx, "failed to create call record", err)
	}
}

func (p *VoiceCallProcessor) completeRecord(ctx context.Context, stats bridge.Stats) {
	if p.store == nil {
		return
	}
	id, err := uuid.Parse(stats.SessionID)
	if err != nil {
		p.logger.Error(ctx, "session id is not a uuid, skipping call record", err)
		return
	}
	ctx, cancel := p.detached(ctx)
	defer cancel()

	err = p.store.CompleteCallRecord(ctx, store.CompleteCallRecordParams{
		ID:                 id,
		CallSid:            stats.CallID,
		StreamSid:          stats.StreamID,
		EndReason:          string(stats.EndReason),
		FramesIn:           stats.FramesIn,
		FramesAppended:     stats.FramesAppended,
		Commits:            stats.Commits,
		ResponsesRequested: stats.ResponsesRequested,
		DeltasRelayed:      stats.DeltasRelayed,
		DeltasDropped:      stats.DeltasDropped,
		MalformedMessages:  stats.MalformedMessages,
		EndedAt:            stats.EndedAt,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to complete call record", err)
	}
}

func (p *VoiceCallProcessor) publish(ctx context.Context, event kafka.CallEvent) {
	ctx, cancel := p.detached(ctx)
	defer cancel()
	if err := p.events.Publish(ctx, event); err != nil {
		p.logger.Error(ctx, fmt.Sprintf("failed to publish %s event", event.Type), err)
	}
}

func (p *VoiceCallProcessor) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
}

func summary(s bridge.Stats) metrics.CallSummary {
	return metrics.CallSummary{
		EndReason:          string(s.EndReason),
		Duration:           s.Duration(),
		FramesIn:           s.FramesIn,
		FramesDiscarded:    s.FramesDiscarded,
		FramesAppended:     s.FramesAppended,
		Commits:            s.Commits,
		ResponsesRequested: s.ResponsesRequested,
		DeltasRelayed:      s.DeltasRelayed,
		DeltasDropped:      s.DeltasDropped,
		MalformedMessages:  s.MalformedMessages,
		AIErrors:           s.AIErrors,
	}
}
