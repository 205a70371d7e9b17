package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"voice-bridge/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFakeClosed = errors.New("fake connection closed")

// fakeConn is an in-memory MessageConn. Tests feed it with push and inspect
// what the session wrote with sent.
type fakeConn struct {
	in        chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	out   [][]byte
	pings int

	reads      atomic.Int32
	closeCalls atomic.Int32
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 256), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	c.reads.Add(1)
	select {
	case msg := <-c.in:
		return msg, nil
	case <-c.closed:
		return nil, errFakeClosed
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return errFakeClosed
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pings++
	return nil
}

func (c *fakeConn) Close() error {
	c.closeCalls.Add(1)
	c.hangUp()
	return nil
}

// hangUp closes the connection from the remote side.
func (c *fakeConn) hangUp() {
	c.closeOnce.Do(func() { close(c.closed) })
}

func (c *fakeConn) push(t *testing.T, v interface{}) {
	t.Helper()
	raw, ok := v.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(v)
		require.NoError(t, err)
	}
	c.in <- raw
}

func (c *fakeConn) sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.out...)
}

func (c *fakeConn) sentTypes(t *testing.T) []string {
	t.Helper()
	var types []string
	for _, raw := range c.sent() {
		var msg struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		types = append(types, msg.Type)
	}
	return types
}

// waitBlockedReads waits until the session's reader has consumed every
// queued message and is blocked on the next one.
func (c *fakeConn) waitBlockedReads(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return int(c.reads.Load()) >= n && len(c.in) == 0
	}, time.Second, 2*time.Millisecond)
}

func startMsg(streamSid, callSid string) map[string]interface{} {
	return map[string]interface{}{
		"event":     "start",
		"streamSid": streamSid,
		"start":     map[string]interface{}{"streamSid": streamSid, "callSid": callSid, "tracks": []string{"inbound"}},
	}
}

func mediaMsg(payload string) map[string]interface{} {
	return map[string]interface{}{
		"event": "media",
		"media": map[string]interface{}{"track": "inbound", "payload": payload},
	}
}

func aiMsg(eventType string, fields map[string]interface{}) map[string]interface{} {
	msg := map[string]interface{}{"type": eventType}
	for k, v := range fields {
		msg[k] = v
	}
	return msg
}

type sessionHarness struct {
	telephony *fakeConn
	ai        *fakeConn
	session   *Session
	cancel    context.CancelFunc
	result    chan Stats
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FlushInterval = 10 * time.Millisecond
	cfg.KeepAliveInterval = 20 * time.Millisecond
	cfg.MinBuffer = 200 * time.Millisecond
	return cfg
}

func startSession(t *testing.T, cfg Config, dialErr error) *sessionHarness {
	t.Helper()
	h := &sessionHarness{telephony: newFakeConn(), ai: newFakeConn(), result: make(chan Stats, 1)}

	dialer := DialerFunc(func(ctx context.Context) (MessageConn, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return h.ai, nil
	})
	factory, err := NewFactory(cfg, dialer, observability.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.session = factory.NewSession(h.telephony)
	go func() {
		stats, err := h.session.Run(ctx)
		assert.NoError(t, err)
		h.result <- stats
	}()
	t.Cleanup(cancel)
	return h
}

func (h *sessionHarness) wait(t *testing.T) Stats {
	t.Helper()
	select {
	case stats := <-h.result:
		return stats
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end")
		return Stats{}
	}
}

func (h *sessionHarness) waitAISent(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(h.ai.sent()) >= n }, time.Second, 2*time.Millisecond)
}

func TestSession_EndToEnd(t *testing.T) {
	h := startSession(t, testConfig(), nil)

	h.waitAISent(t, 1)
	assert.Equal(t, []string{"session.update"}, h.ai.sentTypes(t))

	h.telephony.push(t, startMsg("SD123", "CA123"))
	for i := 0; i < 12; i++ {
		h.telephony.push(t, mediaMsg(frame(i)))
	}
	h.telephony.waitBlockedReads(t, 14)

	h.ai.push(t, aiMsg("session.created", nil))
	h.waitAISent(t, 15)

	types := h.ai.sentTypes(t)
	require.Len(t, types, 15)
	assert.Equal(t, "input_audio_buffer.commit", types[13])
	assert.Equal(t, "response.create", types[14])
	for i, raw := range h.ai.sent()[1:13] {
		var msg struct {
			Type  string `json:"type"`
			Audio string `json:"audio"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "input_audio_buffer.append", msg.Type)
		assert.Equal(t, frame(i), msg.Audio)
	}

	h.ai.push(t, aiMsg("response.created", map[string]interface{}{"response": map[string]interface{}{"id": "resp_1"}}))
	for _, delta := range []string{"AAA=", "BBB=", "CCC="} {
		h.ai.push(t, aiMsg("response.audio.delta", map[string]interface{}{"response_id": "resp_1", "delta": delta}))
	}
	require.Eventually(t, func() bool { return len(h.telephony.sent()) == 3 }, time.Second, 2*time.Millisecond)

	for i, raw := range h.telephony.sent() {
		var out struct {
			Event     string `json:"event"`
			StreamSid string `json:"streamSid"`
			Media     struct {
				Payload string `json:"payload"`
			} `json:"media"`
		}
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, "media", out.Event)
		assert.Equal(t, "SD123", out.StreamSid)
		assert.Equal(t, []string{"AAA=", "BBB=", "CCC="}[i], out.Media.Payload)
	}

	h.ai.push(t, aiMsg("response.done", map[string]interface{}{"response": map[string]interface{}{"id": "resp_1"}}))
	h.ai.waitBlockedReads(t, 7)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, h.ai.sent(), 15, "no new audio means no new turn")

	h.telephony.hangUp()
	stats := h.wait(t)

	assert.Equal(t, EndTelephonyClosed, stats.EndReason)
	assert.Equal(t, "SD123", stats.StreamID)
	assert.Equal(t, "CA123", stats.CallID)
	assert.Equal(t, h.session.ID(), stats.SessionID)
	assert.Equal(t, 12, stats.FramesIn)
	assert.Equal(t, 12, stats.FramesAppended)
	assert.Equal(t, 1, stats.Commits)
	assert.Equal(t, 1, stats.ResponsesRequested)
	assert.Equal(t, 3, stats.DeltasRelayed)
	assert.Equal(t, int32(1), h.ai.closeCalls.Load())
}

func TestSession_NoMediaBeforeStart(t *testing.T) {
	h := startSession(t, testConfig(), nil)
	h.waitAISent(t, 1)

	h.ai.push(t, aiMsg("session.created", nil))
	h.ai.push(t, aiMsg("response.audio.delta", map[string]interface{}{"delta": "AAA="}))
	h.ai.push(t, aiMsg("response.output_audio.delta", map[string]interface{}{"delta": "BBB="}))
	h.ai.waitBlockedReads(t, 4)
	time.Sleep(20 * time.Millisecond)

	h.telephony.hangUp()
	stats := h.wait(t)

	assert.Empty(t, h.telephony.sent())
	assert.Equal(t, 2, stats.DeltasDropped)
	assert.Equal(t, 0, stats.DeltasRelayed)
}

func TestSession_StopThenCloseTearsDownOnce(t *testing.T) {
	h := startSession(t, testConfig(), nil)
	h.waitAISent(t, 1)

	h.telephony.push(t, startMsg("SD1", "CA1"))
	h.telephony.push(t, map[string]interface{}{"event": "stop", "stop": map[string]interface{}{"callSid": "CA1"}})
	stats := h.wait(t)

	// The remote side closing afterwards must not trigger a second cleanup.
	h.telephony.hangUp()
	h.ai.hangUp()

	assert.Equal(t, EndTelephonyStopped, stats.EndReason)
	assert.Equal(t, int32(1), h.telephony.closeCalls.Load())
	assert.Equal(t, int32(1), h.ai.closeCalls.Load())
}

func TestSession_AIConnectFailure(t *testing.T) {
	h := startSession(t, testConfig(), errors.New("handshake refused"))

	h.telephony.push(t, startMsg("SD1", "CA1"))
	for i := 0; i < 20; i++ {
		h.telephony.push(t, mediaMsg(frame(i)))
	}
	h.telephony.waitBlockedReads(t, 22)
	time.Sleep(30 * time.Millisecond)

	h.telephony.hangUp()
	stats := h.wait(t)

	assert.Equal(t, EndTelephonyClosed, stats.EndReason)
	assert.Equal(t, 20, stats.FramesIn)
	assert.Equal(t, 0, stats.Commits)
	assert.Empty(t, h.telephony.sent())
	assert.Empty(t, h.ai.sent())
}

func TestSession_MalformedMessagesDropped(t *testing.T) {
	h := startSession(t, testConfig(), nil)
	h.waitAISent(t, 1)

	h.telephony.push(t, []byte("not json"))
	h.telephony.push(t, []byte(`{"streamSid":"x"}`))
	h.telephony.push(t, startMsg("SD1", "CA1"))
	h.telephony.push(t, map[string]interface{}{"event": "connected", "protocol": "Call"})
	h.telephony.push(t, map[string]interface{}{"event": "mark", "mark": map[string]interface{}{"name": "m1"}})
	for i := 0; i < 10; i++ {
		h.telephony.push(t, mediaMsg(frame(i)))
	}
	h.telephony.waitBlockedReads(t, 16)

	h.ai.push(t, []byte("{{{"))
	h.ai.push(t, aiMsg("rate_limits.updated", nil))
	h.ai.push(t, aiMsg("session.updated", nil))
	h.waitAISent(t, 13)

	h.telephony.hangUp()
	stats := h.wait(t)

	assert.Equal(t, 3, stats.MalformedMessages)
	assert.Equal(t, 1, stats.Commits)
}

func TestSession_AIClosedEndsCall(t *testing.T) {
	h := startSession(t, testConfig(), nil)
	h.waitAISent(t, 1)
	h.ai.push(t, aiMsg("session.created", nil))
	h.ai.waitBlockedReads(t, 2)

	h.ai.hangUp()
	stats := h.wait(t)

	assert.Equal(t, EndAIClosed, stats.EndReason)
	assert.Equal(t, int32(1), h.telephony.closeCalls.Load())
}

func TestSession_ClosingMessageGraceElapsed(t *testing.T) {
	cfg := testConfig()
	cfg.ClosingMessage = "Goodbye."
	cfg.ClosingGrace = 30 * time.Millisecond

	h := startSession(t, cfg, nil)
	h.waitAISent(t, 1)
	h.ai.push(t, aiMsg("session.created", nil))
	h.ai.waitBlockedReads(t, 2)
	h.telephony.push(t, startMsg("SD1", "CA1"))
	h.telephony.push(t, map[string]interface{}{"event": "stop"})

	stats := h.wait(t)
	assert.Equal(t, EndGraceElapsed, stats.EndReason)
	assert.Equal(t, []string{"session.update", "conversation.item.create", "response.create"}, h.ai.sentTypes(t))
}

func TestSession_AIGreeting(t *testing.T) {
	cfg := testConfig()
	cfg.Greeting = GreetingAI
	cfg.GreetingText = "Thanks for calling."

	h := startSession(t, cfg, nil)
	h.waitAISent(t, 1)
	h.ai.push(t, aiMsg("session.created", nil))
	h.ai.push(t, aiMsg("session.updated", nil))
	h.ai.waitBlockedReads(t, 3)
	time.Sleep(20 * time.Millisecond)

	h.telephony.hangUp()
	h.wait(t)

	assert.Equal(t, []string{"session.update", "conversation.item.create", "response.create"}, h.ai.sentTypes(t))
}

func TestSession_KeepAlivePingsBothLegs(t *testing.T) {
	h := startSession(t, testConfig(), nil)
	h.waitAISent(t, 1)

	require.Eventually(t, func() bool {
		h.ai.mu.Lock()
		defer h.ai.mu.Unlock()
		return h.ai.pings > 0
	}, time.Second, 5*time.Millisecond)

	h.telephony.hangUp()
	h.wait(t)

	h.telephony.mu.Lock()
	defer h.telephony.mu.Unlock()
	assert.Positive(t, h.telephony.pings)
}

func TestSession_ContextCancelled(t *testing.T) {
	h := startSession(t, testConfig(), nil)
	h.waitAISent(t, 1)

	h.cancel()
	stats := h.wait(t)

	assert.Equal(t, EndCancelled, stats.EndReason)
	assert.Equal(t, int32(1), h.telephony.closeCalls.Load())
	assert.Equal(t, int32(1), h.ai.closeCalls.Load())
}

func TestSession_RunsOnce(t *testing.T) {
	h := startSession(t, testConfig(), nil)
	h.telephony.hangUp()
	h.wait(t)

	_, err := h.session.Run(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestNewFactory_Validation(t *testing.T) {
	dialer := DialerFunc(func(context.Context) (MessageConn, error) { return nil, errors.New("unused") })

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero flush interval", func(c *Config) { c.FlushInterval = 0 }},
		{"zero keep-alive", func(c *Config) { c.KeepAliveInterval = 0 }},
		{"ai greeting without text", func(c *Config) { c.Greeting = GreetingAI }},
		{"unknown greeting", func(c *Config) { c.Greeting = "both" }},
		{"unknown inbound policy", func(c *Config) { c.InboundAudio = "maybe" }},
		{"closing without grace", func(c *Config) { c.ClosingMessage = "bye"; c.ClosingGrace = 0 }},
		{"negative max buffer", func(c *Config) { c.MaxBuffer = -time.Second }},
		{"max buffer below min buffer", func(c *Config) { c.MaxBuffer = 100 * time.Millisecond }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewFactory(cfg, dialer, observability.NewNopLogger())
			assert.Error(t, err)
		})
	}

	_, err := NewFactory(DefaultConfig(), nil, observability.NewNopLogger())
	assert.Error(t, err)

	f, err := NewFactory(DefaultConfig(), dialer, observability.NewNopLogger())
	require.NoError(t, err)
	assert.NotEqual(t, f.NewSession(newFakeConn()).ID(), f.NewSession(newFakeConn()).ID())
}

func TestConfig_PolicyIgnoresGreetingTextForTelephony(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GreetingText = "Hello"
	p := cfg.policy()
	assert.Empty(t, p.GreetingText)
	assert.Equal(t, fmt.Sprint([]string{"text", "audio"}), fmt.Sprint(p.Modalities))
}
