package bridge

import (
	"context"
	"errors"
	"fmt"

	"voice-bridge/internal/observability"

	"github.com/google/uuid"
)

// Factory creates sessions that share one configuration and one AI dialer.
type Factory struct {
	cfg    Config
	dialer Dialer
	logger *observability.Logger
}

func NewFactory(cfg Config, dialer Dialer, logger *observability.Logger) (*Factory, error) {
	if dialer == nil {
		return nil, errors.New("bridge factory requires an AI dialer")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bridge config: %w", err)
	}
	return &Factory{cfg: cfg, dialer: dialer, logger: logger}, nil
}

// NewSession pairs an accepted telephony connection with a new session.
// Nothing happens until Run is called.
func (f *Factory) NewSession(telephony MessageConn) *Session {
	return newSession(uuid.New().String(), f.cfg, telephony, f.dialer, f.logger)
}

// Serve runs a session over telephony to completion.
func (f *Factory) Serve(ctx context.Context, telephony MessageConn) (Stats, error) {
	return f.NewSession(telephony).Run(ctx)
}

func (f *Factory) Config() Config {
	return f.cfg
}
