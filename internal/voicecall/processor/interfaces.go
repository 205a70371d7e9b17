package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=processor

import (
	"context"
	"time"

	"voice-bridge/internal/kafka"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voicecall/bridge"

	"github.com/google/uuid"
)

// CallStore defines the database operations required by VoiceCallProcessor
type CallStore interface {
	CreateCallRecord(ctx context.Context, id uuid.UUID, startedAt time.Time) (*store.CallRecord, error)
	CompleteCallRecord(ctx context.Context, params store.CompleteCallRecordParams) error
	GetCallRecord(ctx context.Context, id uuid.UUID) (*store.CallRecord, error)
}

// Registry admits calls against the concurrent call limit
type Registry interface {
	Acquire(ctx context.Context, sessionID string) error
	Release(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int, error)
	Capacity() int
}

// EventPublisher emits call lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.CallEvent) error
}

// CallSession is one bridged call, ready to run
type CallSession interface {
	ID() string
	Run(ctx context.Context) (bridge.Stats, error)
}

// SessionFactory pairs an accepted media stream with a new CallSession
type SessionFactory interface {
	NewSession(telephony bridge.MessageConn) CallSession
}

// MediaConn is the accepted media stream socket
type MediaConn interface {
	bridge.MessageConn
	CloseWithCode(code int, reason string) error
}
