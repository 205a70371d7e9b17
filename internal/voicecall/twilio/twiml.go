package twilio

import (
	"errors"
	"sort"

	"github.com/twilio/twilio-go/twiml"
)

const streamName = "voice-bridge"

// BuildStreamTwiML returns the call-control markup that connects a call's
// media to streamURL, optionally speaking greeting first.
func BuildStreamTwiML(greeting, streamURL string, parameters map[string]string) (string, error) {
	if streamURL == "" {
		return "", errors.New("stream URL is required")
	}

	var elements []twiml.Element
	if greeting != "" {
		elements = append(elements, &twiml.VoiceSay{Message: greeting})
	}

	keys := make([]string, 0, len(parameters))
	for k := range parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var streamParams []twiml.Element
	for _, k := range keys {
		streamParams = append(streamParams, twiml.VoiceParameter{Name: k, Value: parameters[k]})
	}

	stream := twiml.VoiceStream{
		Name:          streamName,
		Url:           streamURL,
		InnerElements: streamParams,
	}
	connect := twiml.VoiceConnect{
		InnerElements: []twiml.Element{stream},
	}
	elements = append(elements, connect)

	return twiml.Voice(elements)
}
