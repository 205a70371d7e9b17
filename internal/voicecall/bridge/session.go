package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"voice-bridge/internal/clients/openai"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/voicecall/twilio"
)

var ErrSessionClosed = errors.New("bridge session already ran")

// MessageConn is a bidirectional message-framed socket. WriteMessage and
// Ping may be called concurrently with ReadMessage; Close must unblock a
// pending ReadMessage.
type MessageConn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Ping() error
	Close() error
}

// Dialer opens the AI side of a call.
type Dialer interface {
	Dial(ctx context.Context) (MessageConn, error)
}

type DialerFunc func(ctx context.Context) (MessageConn, error)

func (f DialerFunc) Dial(ctx context.Context) (MessageConn, error) { return f(ctx) }

// Stats summarizes a finished session.
type Stats struct {
	SessionID string
	StreamID  string
	CallID    string
	StartedAt time.Time
	EndedAt   time.Time
	EndReason EndReason
	Counters
}

func (s Stats) Duration() time.Duration {
	if s.EndedAt.Before(s.StartedAt) {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Session bridges one telephony connection to one AI connection. All state
// is owned by the goroutine inside Run; socket readers only enqueue events.
type Session struct {
	id        string
	cfg       Config
	policy    Policy
	telephony MessageConn
	dialer    Dialer
	logger    *observability.Logger
	now       func() time.Time

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	ran    atomic.Bool

	// Touched only by the Run goroutine.
	state     State
	ai        MessageConn
	logCtx    context.Context
	cancel    context.CancelFunc
	flush     *time.Ticker
	keepAlive *time.Ticker
	grace     *time.Timer
	closed    bool
	startedAt time.Time
}

func newSession(id string, cfg Config, telephony MessageConn, dialer Dialer, logger *observability.Logger) *Session {
	size := cfg.EventQueueSize
	if size <= 0 {
		size = defaultEventQueueSize
	}
	policy := cfg.policy()
	return &Session{
		id:        id,
		cfg:       cfg,
		policy:    policy,
		telephony: telephony,
		dialer:    dialer,
		logger:    logger,
		now:       time.Now,
		events:    make(chan Event, size),
		done:      make(chan struct{}),
		state:     NewState(policy),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Run drives the session until teardown and returns its stats. It opens the
// AI connection itself; the telephony connection is closed before Run
// returns. A session runs once.
func (s *Session) Run(ctx context.Context) (Stats, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return Stats{}, ErrSessionClosed
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "session_id", Value: s.id})
	s.logCtx = ctx
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	s.startedAt = s.now()
	s.logger.Info(ctx, "Telephony connection accepted")

	s.flush = time.NewTicker(s.cfg.FlushInterval)
	s.keepAlive = time.NewTicker(s.cfg.KeepAliveInterval)

	s.wg.Add(2)
	go s.readTelephony()
	go s.connectAI(runCtx)

	for !s.state.Closed {
		var graceC <-chan time.Time
		if s.grace != nil {
			graceC = s.grace.C
		}

		select {
		case <-ctx.Done():
			next, effects := teardown(s.state, EndCancelled)
			s.state = next
			s.execute(effects)
		case ev := <-s.events:
			s.handle(ev)
		case t := <-s.flush.C:
			s.handle(FlushTick{At: t})
		case <-s.keepAlive.C:
			s.ping()
		case <-graceC:
			s.grace = nil
			s.handle(GraceElapsed{})
		}
	}

	s.wg.Wait()
	s.drainEvents()

	stats := Stats{
		SessionID: s.id,
		StreamID:  s.state.StreamID,
		CallID:    s.state.CallID,
		StartedAt: s.startedAt,
		EndedAt:   s.now(),
		EndReason: s.state.EndReason,
		Counters:  s.state.Counters,
	}
	s.logger.Info(s.logCtx, "Bridge session ended",
		observability.Field{Key: "end_reason", Value: string(stats.EndReason)},
		observability.Field{Key: "duration_ms", Value: stats.Duration().Milliseconds()},
		observability.Field{Key: "frames_in", Value: stats.FramesIn},
		observability.Field{Key: "frames_appended", Value: stats.FramesAppended},
		observability.Field{Key: "commits", Value: stats.Commits},
		observability.Field{Key: "responses_requested", Value: stats.ResponsesRequested},
		observability.Field{Key: "deltas_relayed", Value: stats.DeltasRelayed},
		observability.Field{Key: "deltas_dropped", Value: stats.DeltasDropped},
		observability.Field{Key: "malformed_messages", Value: stats.MalformedMessages},
	)
	return stats, nil
}

func (s *Session) handle(ev Event) {
	switch e := ev.(type) {
	case AIConnected:
		if s.closed || s.state.AI == AIConnClosed {
			_ = e.Conn.Close()
			return
		}
		s.ai = e.Conn
		s.wg.Add(1)
		go s.readAI(e.Conn)
		s.logger.Info(s.logCtx, "Connected to AI session")
	case AIConnectFailed:
		s.logger.Error(s.logCtx, "Failed to open AI session, caller will hear silence", e.Err)
	case AIError:
		s.logger.Error(s.logCtx, "AI session reported an error", e.Err)
	case MalformedMessage:
		s.logger.Debug(s.logCtx, "Dropped malformed message",
			observability.Field{Key: "source", Value: e.Source},
			observability.Field{Key: "error", Value: e.Err.Error()},
		)
	}

	prev := s.state
	next, effects := Step(s.state, ev, s.policy)
	s.state = next

	if prev.StreamID == "" && next.StreamID != "" {
		s.logCtx = observability.WithFields(s.logCtx,
			observability.Field{Key: "stream_sid", Value: next.StreamID},
			observability.Field{Key: "call_sid", Value: next.CallID},
		)
		s.logger.Info(s.logCtx, "Media stream started")
	}
	if next.Counters.Commits > prev.Counters.Commits {
		s.logger.Debug(s.logCtx, "Committed caller audio",
			observability.Field{Key: "frames", Value: next.Counters.FramesAppended - prev.Counters.FramesAppended},
			observability.Field{Key: "buffered_ms", Value: prev.BufferedDuration.Milliseconds()},
		)
	}
	if prev.Response != next.Response {
		s.logger.Debug(s.logCtx, "Response state changed",
			observability.Field{Key: "from", Value: prev.Response.String()},
			observability.Field{Key: "to", Value: next.Response.String()},
		)
	}

	s.execute(effects)
}

func (s *Session) execute(effects []Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case SendSessionConfig:
			s.sendAI(openai.SessionUpdate(s.cfg.Session))
		case SendAppend:
			s.sendAI(openai.InputAudioAppend(e.Payload))
		case SendCommit:
			s.sendAI(openai.InputAudioCommit())
		case SendResponseCreate:
			s.sendAI(openai.ResponseCreate(e.Modalities, e.Instructions))
		case SendUtterance:
			msgs, err := openai.ScriptedUtterance(e.Text, s.policy.Modalities)
			if err != nil {
				s.logger.Error(s.logCtx, "Failed to encode scripted utterance", err)
				continue
			}
			for _, msg := range msgs {
				s.sendAI(msg, nil)
			}
		case SendMedia:
			msg, err := twilio.EncodeMedia(e.StreamID, e.Payload)
			s.send(s.telephony, "telephony", msg, err)
		case StartGraceTimer:
			if s.grace == nil {
				s.grace = time.NewTimer(e.After)
			}
		case Teardown:
			s.teardown(e.Reason)
		}
	}
}

func (s *Session) sendAI(msg []byte, err error) {
	if s.ai == nil {
		s.logger.Debug(s.logCtx, "Dropped AI command, no connection")
		return
	}
	s.send(s.ai, "ai", msg, err)
}

// send writes one message. Write failures are not fatal; the socket's own
// close event ends the call.
func (s *Session) send(conn MessageConn, leg string, msg []byte, err error) {
	if err != nil {
		s.logger.Error(s.logCtx, fmt.Sprintf("Failed to encode %s message", leg), err)
		return
	}
	if err := conn.WriteMessage(msg); err != nil {
		s.logger.Debug(s.logCtx, "Write failed",
			observability.Field{Key: "leg", Value: leg},
			observability.Field{Key: "error", Value: err.Error()},
		)
	}
}

func (s *Session) ping() {
	if err := s.telephony.Ping(); err != nil {
		s.logger.Debug(s.logCtx, "Telephony keep-alive failed", observability.Field{Key: "error", Value: err.Error()})
	}
	if s.ai != nil {
		if err := s.ai.Ping(); err != nil {
			s.logger.Debug(s.logCtx, "AI keep-alive failed", observability.Field{Key: "error", Value: err.Error()})
		}
	}
}

// teardown releases every resource of the session. Each release is
// attempted regardless of the others failing, and repeated calls do nothing.
func (s *Session) teardown(reason EndReason) {
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)

	s.flush.Stop()
	s.keepAlive.Stop()
	if s.grace != nil {
		s.grace.Stop()
		s.grace = nil
	}
	s.cancel()

	if s.ai != nil {
		if err := s.ai.Close(); err != nil {
			s.logger.Debug(s.logCtx, "Closing AI connection failed", observability.Field{Key: "error", Value: err.Error()})
		}
	}
	if err := s.telephony.Close(); err != nil {
		s.logger.Debug(s.logCtx, "Closing telephony connection failed", observability.Field{Key: "error", Value: err.Error()})
	}
	s.logger.Debug(s.logCtx, "Bridge session torn down", observability.Field{Key: "reason", Value: string(reason)})
}

// emit hands an event to the Run loop. It reports false once the session is
// torn down.
func (s *Session) emit(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// drainEvents releases AI connections that were delivered after teardown
// but never picked up by the loop.
func (s *Session) drainEvents() {
	for {
		select {
		case ev := <-s.events:
			if e, ok := ev.(AIConnected); ok && e.Conn != s.ai {
				_ = e.Conn.Close()
			}
		default:
			return
		}
	}
}

func (s *Session) connectAI(ctx context.Context) {
	defer s.wg.Done()

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		s.emit(AIConnectFailed{Err: err})
		return
	}
	if !s.emit(AIConnected{Conn: conn}) {
		_ = conn.Close()
	}
}

func (s *Session) readTelephony() {
	defer s.wg.Done()

	for {
		raw, err := s.telephony.ReadMessage()
		if err != nil {
			s.emit(TelephonyClosed{Err: err})
			return
		}

		ev, ok := s.telephonyEvent(raw)
		if !ok {
			continue
		}
		if !s.emit(ev) {
			return
		}
	}
}

func (s *Session) telephonyEvent(raw []byte) (Event, bool) {
	msg, err := twilio.ParseMediaEvent(raw)
	if err != nil {
		return MalformedMessage{Source: "telephony", Err: err}, true
	}

	switch msg.Event {
	case twilio.EventStart:
		return TelephonyStarted{StreamID: msg.StartStreamSid(), CallID: msg.Start.CallSid}, true
	case twilio.EventMedia:
		if msg.Media.Track != "" && msg.Media.Track != "inbound" {
			return nil, false
		}
		if msg.Media.Payload == "" {
			return MalformedMessage{Source: "telephony", Err: errors.New("media event without payload")}, true
		}
		return TelephonyMedia{Payload: msg.Media.Payload, At: s.now()}, true
	case twilio.EventStop:
		return TelephonyStopped{}, true
	}
	// connected, mark and anything newer carry nothing the bridge acts on
	return nil, false
}

func (s *Session) readAI(conn MessageConn) {
	defer s.wg.Done()

	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			s.emit(AIClosed{Err: err})
			return
		}

		ev, ok := s.aiEvent(raw)
		if !ok {
			continue
		}
		if !s.emit(ev) {
			return
		}
	}
}

func (s *Session) aiEvent(raw []byte) (Event, bool) {
	msg, err := openai.ParseServerEvent(raw)
	if err != nil {
		return MalformedMessage{Source: "ai", Err: err}, true
	}

	switch {
	case openai.IsSessionReady(msg.Type):
		return AISessionReady{}, true
	case msg.Type == openai.TypeResponseCreated:
		return AIResponseStarted{ResponseID: msg.ResponseID}, true
	case openai.IsResponseTerminal(msg.Type):
		return AIResponseCompleted{ResponseID: msg.ResponseID, Type: msg.Type, At: s.now()}, true
	case openai.IsAudioDelta(msg.Type):
		if msg.Delta == "" {
			return nil, false
		}
		return AIAudioDelta{Payload: msg.Delta}, true
	case msg.Type == openai.TypeError:
		if msg.Error != nil {
			return AIError{Err: msg.Error}, true
		}
		return AIError{Err: errors.New("realtime error event without details")}, true
	}
	return nil, false
}
