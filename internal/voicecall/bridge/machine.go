package bridge

import "time"

// Step applies one event to a call and returns the next state plus the
// effects the driver must execute, in order. Step is pure: it never blocks,
// never reads a clock and never touches a socket.
//
// The one property everything here protects: a response request (commit,
// greeting or closing utterance) is never emitted while Response is
// ResponseInProgress.
func Step(s State, ev Event, p Policy) (State, []Effect) {
	if s.Closed {
		return s, nil
	}

	switch e := ev.(type) {
	case TelephonyStarted:
		if s.StreamID == "" {
			s.StreamID = e.StreamID
			s.CallID = e.CallID
		}
		return s, nil

	case TelephonyMedia:
		if s.Stopping {
			return s, nil
		}
		s.Counters.FramesIn++
		// Nothing can ever drain the buffer once the AI leg is gone.
		if !s.ConversationStarted || s.AI == AIConnClosed {
			s.Counters.FramesDiscarded++
			return s, nil
		}
		frame := Frame{Payload: e.Payload, Duration: p.Format.PayloadDuration(e.Payload)}
		s.Buffer = append(s.Buffer, frame)
		s.BufferedDuration += frame.Duration
		s.BufferDirty = true
		s.LastInboundAt = e.At
		return trimBuffer(s, p), nil

	case TelephonyStopped:
		return onStop(s, p)

	case TelephonyClosed:
		return teardown(s, EndTelephonyClosed)

	case AIConnected:
		if s.AI == AIConnClosed {
			return s, nil
		}
		return s, []Effect{SendSessionConfig{}}

	case AIConnectFailed:
		s.AI = AIConnClosed
		if s.Stopping {
			return teardown(s, EndTelephonyStopped)
		}
		return s, nil

	case AISessionReady:
		if s.AI == AIConnClosed {
			return s, nil
		}
		s.AI = AIReady
		return maybeGreet(s, p)

	case AIResponseStarted:
		s.Response = ResponseInProgress
		s.AwaitingAck = false
		s.ActiveResponseID = e.ResponseID
		return s, nil

	case AIResponseCompleted:
		if !completesActive(s, e.ResponseID) {
			return s, nil
		}
		s = finishResponse(s)
		if s.ClosingRequested {
			return teardown(s, EndClosingComplete)
		}
		return commitAndRespond(s, p, e)

	case AIAudioDelta:
		if s.StreamID == "" {
			s.Counters.DeltasDropped++
			return s, nil
		}
		s.Counters.DeltasRelayed++
		return s, []Effect{SendMedia{StreamID: s.StreamID, Payload: e.Payload}}

	case AIError:
		s.Counters.AIErrors++
		s = finishResponse(s)
		if s.ClosingRequested {
			return teardown(s, EndClosingComplete)
		}
		return s, nil

	case AIClosed:
		s.AI = AIConnClosed
		return teardown(s, EndAIClosed)

	case FlushTick:
		return commitAndRespond(s, p, e)

	case GraceElapsed:
		if s.Stopping {
			return teardown(s, EndGraceElapsed)
		}
		return s, nil

	case MalformedMessage:
		s.Counters.MalformedMessages++
		return s, nil
	}

	return s, nil
}

func onStop(s State, p Policy) (State, []Effect) {
	if s.Stopping {
		return s, nil
	}
	s.Stopping = true

	if s.Response == ResponseInProgress {
		return teardown(s, EndTelephonyStopped)
	}
	if p.ClosingMessage == "" || s.AI != AIReady {
		return teardown(s, EndTelephonyStopped)
	}

	s = requestResponse(s)
	s.ClosingRequested = true
	return s, []Effect{
		SendUtterance{Text: p.ClosingMessage},
		StartGraceTimer{After: p.ClosingGrace},
	}
}

func maybeGreet(s State, p Policy) (State, []Effect) {
	if p.Greeting != GreetingAI || p.GreetingText == "" || s.GreetingSent {
		return s, nil
	}
	s.GreetingSent = true
	if s.Response == ResponseInProgress {
		// Something else already holds the turn; skip rather than overlap.
		s.ConversationStarted = true
		return s, nil
	}
	s = requestResponse(s)
	s.GreetingInFlight = true
	return s, []Effect{SendUtterance{Text: p.GreetingText}}
}

// completesActive reports whether a terminal event belongs to the response
// currently in flight. While a fresh request is unacknowledged every
// terminal event is a leftover of the previous response.
func completesActive(s State, responseID string) bool {
	if s.Response != ResponseInProgress || s.AwaitingAck {
		return false
	}
	if responseID != "" && s.ActiveResponseID != "" && responseID != s.ActiveResponseID {
		return false
	}
	return true
}

func finishResponse(s State) State {
	s.Response = ResponseIdle
	s.AwaitingAck = false
	s.ActiveResponseID = ""
	if s.GreetingInFlight {
		s.GreetingInFlight = false
		s.ConversationStarted = true
	}
	return s
}

func requestResponse(s State) State {
	s.Response = ResponseInProgress
	s.AwaitingAck = true
	s.ActiveResponseID = ""
	s.Counters.ResponsesRequested++
	return s
}

// commitAndRespond flushes the whole buffer as one input turn when every
// precondition holds, and does nothing otherwise.
func commitAndRespond(s State, p Policy, trigger Event) (State, []Effect) {
	if s.Stopping || s.AI != AIReady || s.Response != ResponseIdle {
		return s, nil
	}
	if !s.BufferDirty || len(s.Buffer) == 0 || s.BufferedDuration < p.MinBuffer {
		return s, nil
	}
	if p.SilenceThreshold > 0 {
		now := triggerTime(trigger)
		if now.IsZero() || now.Sub(s.LastInboundAt) < p.SilenceThreshold {
			return s, nil
		}
	}

	effects := make([]Effect, 0, len(s.Buffer)+2)
	for _, frame := range s.Buffer {
		effects = append(effects, SendAppend{Payload: frame.Payload})
	}
	effects = append(effects,
		SendCommit{},
		SendResponseCreate{Modalities: p.Modalities, Instructions: p.ResponseInstructions},
	)

	s.Counters.FramesAppended += len(s.Buffer)
	s.Counters.Commits++
	s.Buffer = nil
	s.BufferedDuration = 0
	s.BufferDirty = false
	s = requestResponse(s)
	return s, effects
}

// trimBuffer drops the oldest frames once the buffer holds more than
// MaxBuffer of audio. The newest frame is always kept.
func trimBuffer(s State, p Policy) State {
	if p.MaxBuffer <= 0 {
		return s
	}
	drop := 0
	for drop < len(s.Buffer)-1 && s.BufferedDuration > p.MaxBuffer {
		s.BufferedDuration -= s.Buffer[drop].Duration
		drop++
	}
	if drop > 0 {
		s.Buffer = append([]Frame(nil), s.Buffer[drop:]...)
		s.Counters.FramesDiscarded += drop
	}
	return s
}

func triggerTime(ev Event) time.Time {
	switch e := ev.(type) {
	case FlushTick:
		return e.At
	case AIResponseCompleted:
		return e.At
	}
	return time.Time{}
}

func teardown(s State, reason EndReason) (State, []Effect) {
	s.Closed = true
	s.EndReason = reason
	s.AI = AIConnClosed
	s.Buffer = nil
	s.BufferedDuration = 0
	s.BufferDirty = false
	return s, []Effect{Teardown{Reason: reason}}
}
