// Package wsconn adapts a gorilla websocket to the message-framed socket
// used by both legs of a call.
package wsconn

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultWriteTimeout = 5 * time.Second

// Options tunes deadlines. A zero ReadTimeout disables read deadlines.
type Options struct {
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
}

// Conn serializes writes over a single websocket. Reads must come from one
// goroutine, which gorilla requires anyway.
type Conn struct {
	ws        *websocket.Conn
	opts      Options
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func New(ws *websocket.Conn, opts Options) *Conn {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	c := &Conn{ws: ws, opts: opts}
	if opts.ReadTimeout > 0 {
		_ = ws.SetReadDeadline(time.Now().Add(opts.ReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(opts.ReadTimeout))
		})
	}
	return c
}

// ReadMessage returns the next text or binary message payload.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, msg, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	if c.opts.ReadTimeout > 0 {
		_ = c.ws.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
	}
	return msg, nil
}

// WriteMessage sends data as a single text frame.
func (c *Conn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Ping sends a keep-alive control frame.
func (c *Conn) Ping() error {
	return c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(c.opts.WriteTimeout))
}

// Close sends a normal closure frame and closes the socket. Only the first
// call has an effect.
func (c *Conn) Close() error {
	return c.CloseWithCode(websocket.CloseNormalClosure, "")
}

// CloseWithCode is Close with an explicit close code and reason.
func (c *Conn) CloseWithCode(code int, reason string) error {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(c.opts.WriteTimeout)
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

// IsExpectedClose reports whether err is an orderly shutdown of the socket
// rather than a fault worth logging at error level.
func IsExpectedClose(err error) bool {
	if err == nil {
		return true
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}
