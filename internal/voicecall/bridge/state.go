package bridge

import (
	"fmt"
	"time"

	"voice-bridge/internal/voice/audio"
)

type AIConnectionState int

const (
	AIConnecting AIConnectionState = iota
	AIReady
	AIConnClosed
)

func (s AIConnectionState) String() string {
	switch s {
	case AIConnecting:
		return "connecting"
	case AIReady:
		return "ready"
	case AIConnClosed:
		return "closed"
	}
	return fmt.Sprintf("AIConnectionState(%d)", int(s))
}

type ResponseState int

const (
	ResponseIdle ResponseState = iota
	ResponseInProgress
)

func (s ResponseState) String() string {
	if s == ResponseInProgress {
		return "in_progress"
	}
	return "idle"
}

// GreetingStrategy selects who greets the caller. Exactly one side may.
type GreetingStrategy string

const (
	GreetingNone      GreetingStrategy = "none"
	GreetingTelephony GreetingStrategy = "telephony"
	GreetingAI        GreetingStrategy = "ai"
)

func ParseGreetingStrategy(s string) (GreetingStrategy, error) {
	switch g := GreetingStrategy(s); g {
	case GreetingNone, GreetingTelephony, GreetingAI:
		return g, nil
	}
	return "", fmt.Errorf("unknown greeting strategy %q", s)
}

// InboundAudioPolicy decides what happens to caller audio that arrives
// before the AI greeting has finished.
type InboundAudioPolicy string

const (
	InboundCapture             InboundAudioPolicy = "capture"
	InboundDiscardUntilGreeted InboundAudioPolicy = "discard_until_greeted"
)

func ParseInboundAudioPolicy(s string) (InboundAudioPolicy, error) {
	switch p := InboundAudioPolicy(s); p {
	case InboundCapture, InboundDiscardUntilGreeted:
		return p, nil
	}
	return "", fmt.Errorf("unknown inbound audio policy %q", s)
}

type EndReason string

const (
	EndTelephonyClosed  EndReason = "telephony_closed"
	EndTelephonyStopped EndReason = "telephony_stopped"
	EndClosingComplete  EndReason = "closing_complete"
	EndGraceElapsed     EndReason = "grace_elapsed"
	EndAIClosed         EndReason = "ai_closed"
	EndCancelled        EndReason = "cancelled"
)

// Policy holds the turn-taking parameters the state machine reads.
type Policy struct {
	Format    audio.Format
	MinBuffer time.Duration
	// MaxBuffer bounds the audio held while no commit is possible. Zero
	// means unbounded.
	MaxBuffer        time.Duration
	SilenceThreshold time.Duration

	Greeting     GreetingStrategy
	GreetingText string
	InboundAudio InboundAudioPolicy

	ClosingMessage string
	ClosingGrace   time.Duration

	Modalities           []string
	ResponseInstructions string
}

// Frame is one inbound audio chunk, kept base64 encoded.
type Frame struct {
	Payload  string
	Duration time.Duration
}

// Counters accumulate per call.
type Counters struct {
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

// State is everything known about one call. It is only ever replaced by the
// result of Step.
type State struct {
	StreamID string
	CallID   string

	AI       AIConnectionState
	Response ResponseState
	// AwaitingAck is set between issuing a response request and receiving its
	// response.created.
	AwaitingAck      bool
	ActiveResponseID string

	ConversationStarted bool
	GreetingSent        bool
	GreetingInFlight    bool

	Buffer           []Frame
	BufferedDuration time.Duration
	BufferDirty      bool
	LastInboundAt    time.Time

	Stopping         bool
	ClosingRequested bool
	Closed           bool
	EndReason        EndReason

	Counters Counters
}

// NewState returns the state of a freshly accepted call.
func NewState(p Policy) State {
	return State{
		AI:                  AIConnecting,
		Response:            ResponseIdle,
		ConversationStarted: !gatesOnGreeting(p),
	}
}

func gatesOnGreeting(p Policy) bool {
	return p.InboundAudio == InboundDiscardUntilGreeted && p.Greeting == GreetingAI && p.GreetingText != ""
}
