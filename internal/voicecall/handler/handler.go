package handler

import (
	"context"
	"net/http"
	"time"

	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voicecall/processor"
	"voice-bridge/internal/voicecall/twilio"

	"github.com/gorilla/websocket"
)

// CallProcessor is what the handler needs from the voice call processor
type CallProcessor interface {
	ServeMediaStream(ctx context.Context, conn processor.MediaConn) error
	GetCall(ctx context.Context, callID string) (*store.CallRecord, error)
	ActiveCalls(ctx context.Context) (processor.ActiveCalls, error)
}

// Options configures the call-control webhook.
type Options struct {
	// Greeting is spoken by the telephony provider before the stream
	// connects. Empty means no greeting.
	Greeting string
	// StreamURL is the media stream websocket URL handed to the provider.
	StreamURL string
	// PublicURL is the externally visible base URL the provider signs
	// requests against.
	PublicURL string
	// Signatures validates webhook requests. Nil disables validation.
	Signatures *twilio.SignatureValidator
	// ReadTimeout ends a media stream that has been silent this long, pongs
	// included. Zero disables it.
	ReadTimeout time.Duration
}

type Handler struct {
	processor CallProcessor
	opts      Options
	logger    *observability.Logger
}

func New(processor CallProcessor, opts Options, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		opts:      opts,
		logger:    logger,
	}
}

// Twilio connects from its own infrastructure, so there is no browser origin to check.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
