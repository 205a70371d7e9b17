package bridge

import "time"

// Event is an input to Step.
type Event interface{ isEvent() }

type TelephonyStarted struct {
	StreamID string
	CallID   string
}

type TelephonyMedia struct {
	Payload string
	At      time.Time
}

type TelephonyStopped struct{}

type TelephonyClosed struct{ Err error }

// AIConnected is delivered once the AI socket is open. Conn is consumed by
// the driver; Step ignores it.
type AIConnected struct{ Conn MessageConn }

type AIConnectFailed struct{ Err error }

type AISessionReady struct{}

type AIResponseStarted struct{ ResponseID string }

type AIResponseCompleted struct {
	ResponseID string
	Type       string
	At         time.Time
}

type AIAudioDelta struct{ Payload string }

type AIError struct{ Err error }

type AIClosed struct{ Err error }

type FlushTick struct{ At time.Time }

type GraceElapsed struct{}

type MalformedMessage struct {
	Source string
	Err    error
}

func (TelephonyStarted) isEvent()    {}
func (TelephonyMedia) isEvent()      {}
func (TelephonyStopped) isEvent()    {}
func (TelephonyClosed) isEvent()     {}
func (AIConnected) isEvent()         {}
func (AIConnectFailed) isEvent()     {}
func (AISessionReady) isEvent()      {}
func (AIResponseStarted) isEvent()   {}
func (AIResponseCompleted) isEvent() {}
func (AIAudioDelta) isEvent()        {}
func (AIError) isEvent()             {}
func (AIClosed) isEvent()            {}
func (FlushTick) isEvent()           {}
func (GraceElapsed) isEvent()        {}
func (MalformedMessage) isEvent()    {}

// Effect is an output of Step, executed by the driver in order.
type Effect interface{ isEffect() }

type SendSessionConfig struct{}

type SendAppend struct{ Payload string }

type SendCommit struct{}

type SendResponseCreate struct {
	Modalities   []string
	Instructions string
}

// SendUtterance asks the AI to speak Text verbatim as its own turn.
type SendUtterance struct{ Text string }

type SendMedia struct {
	StreamID string
	Payload  string
}

type StartGraceTimer struct{ After time.Duration }

type Teardown struct{ Reason EndReason }

func (SendSessionConfig) isEffect()  {}
func (SendAppend) isEffect()         {}
func (SendCommit) isEffect()         {}
func (SendResponseCreate) isEffect() {}
func (SendUtterance) isEffect()      {}
func (SendMedia) isEffect()          {}
func (StartGraceTimer) isEffect()    {}
func (Teardown) isEffect()           {}
