package twilio

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Media stream event names.
const (
	EventConnected = "connected"
	EventStart     = "start"
	EventMedia     = "media"
	EventMark      = "mark"
	EventStop      = "stop"
)

var ErrMissingEvent = errors.New("media stream message has no event field")

type MediaFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

type StartPayload struct {
	AccountSid       string            `json:"accountSid"`
	StreamSid        string            `json:"streamSid"`
	CallSid          string            `json:"callSid"`
	Tracks           []string          `json:"tracks"`
	MediaFormat      MediaFormat       `json:"mediaFormat"`
	CustomParameters map[string]string `json:"customParameters"`
}

type MediaPayload struct {
	Track     string `json:"track"`
	Chunk     string `json:"chunk"`
	Timestamp string `json:"timestamp"`
	Payload   string `json:"payload"`
}

type StopPayload struct {
	AccountSid string `json:"accountSid"`
	CallSid    string `json:"callSid"`
}

type MarkPayload struct {
	Name string `json:"name"`
}

// MediaEvent is one inbound message of a media stream connection.
type MediaEvent struct {
	Event          string       `json:"event"`
	SequenceNumber string       `json:"sequenceNumber,omitempty"`
	StreamSid      string       `json:"streamSid,omitempty"`
	Start          StartPayload `json:"start,omitempty"`
	Media          MediaPayload `json:"media,omitempty"`
	Stop           StopPayload  `json:"stop,omitempty"`
	Mark           MarkPayload  `json:"mark,omitempty"`
}

// StartStreamSid returns the stream identifier of a start event. Older
// payloads only carry it at the top level.
func (e MediaEvent) StartStreamSid() string {
	if e.Start.StreamSid != "" {
		return e.Start.StreamSid
	}
	return e.StreamSid
}

// ParseMediaEvent decodes one media stream message. Unknown event names are
// returned as-is so the caller can ignore them.
func ParseMediaEvent(raw []byte) (MediaEvent, error) {
	var event MediaEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return MediaEvent{}, fmt.Errorf("failed to parse media stream event: %w", err)
	}
	if event.Event == "" {
		return MediaEvent{}, ErrMissingEvent
	}
	return event, nil
}

type outboundMedia struct {
	Event     string             `json:"event"`
	StreamSid string             `json:"streamSid"`
	Media     outboundMediaInner `json:"media"`
}

type outboundMediaInner struct {
	Payload string `json:"payload"`
}

// EncodeMedia builds an outbound media frame that plays payload to the caller.
func EncodeMedia(streamSid, payload string) ([]byte, error) {
	if streamSid == "" {
		return nil, errors.New("outbound media requires a stream sid")
	}
	return json.Marshal(outboundMedia{
		Event:     EventMedia,
		StreamSid: streamSid,
		Media:     outboundMediaInner{Payload: payload},
	})
}
