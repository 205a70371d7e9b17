package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"voice-bridge/internal/observability"
	"voice-bridge/internal/voice/wsconn"

	"github.com/gorilla/websocket"
)

const (
	defaultRealtimeURL = "wss://api.openai.com/v1/realtime"
	DefaultModel       = "gpt-4o-realtime-preview"
)

// RealtimeConfig holds connection settings for the realtime endpoint.
type RealtimeConfig struct {
	URL              string // defaults to the public endpoint
	Model            string // sent as the model query parameter
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	// ReadTimeout bounds how long the session may go without any frame,
	// pongs included. Zero disables it.
	ReadTimeout time.Duration
}

type OpenAIRealtimeClient struct {
	apiKey string
	cfg    RealtimeConfig
	dialer *websocket.Dialer
	logger *observability.Logger
}

func NewOpenAIRealtimeClient(apiKey string, cfg RealtimeConfig, logger *observability.Logger) (*OpenAIRealtimeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.URL == "" {
		cfg.URL = defaultRealtimeURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	return &OpenAIRealtimeClient{
		apiKey: apiKey,
		cfg:    cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		logger: logger,
	}, nil
}

func (c *OpenAIRealtimeClient) endpoint() (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid realtime URL %q: %w", c.cfg.URL, err)
	}
	q := u.Query()
	if q.Get("model") == "" {
		q.Set("model", c.cfg.Model)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial opens an authenticated realtime session socket.
func (c *OpenAIRealtimeClient) Dial(ctx context.Context) (*wsconn.Conn, error) {
	endpoint, err := c.endpoint()
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.apiKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	ws, resp, err := c.dialer.DialContext(ctx, endpoint, headers)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("realtime handshake failed with status %d: %w", resp.StatusCode, err)
		}
		c.logger.Error(ctx, "Failed to connect to OpenAI realtime endpoint", err)
		return nil, fmt.Errorf("failed to dial realtime endpoint: %w", err)
	}

	c.logger.Debug(ctx, "Connected to OpenAI realtime endpoint", observability.Field{Key: "model", Value: c.cfg.Model})
	return wsconn.New(ws, wsconn.Options{WriteTimeout: c.cfg.WriteTimeout, ReadTimeout: c.cfg.ReadTimeout}), nil
}
