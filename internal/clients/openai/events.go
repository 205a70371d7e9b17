package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Client commands.
const (
	TypeSessionUpdate          = "session.update"
	TypeInputAudioBufferAppend = "input_audio_buffer.append"
	TypeInputAudioBufferCommit = "input_audio_buffer.commit"
	TypeResponseCreate         = "response.create"
	TypeConversationItemCreate = "conversation.item.create"
)

// Server events.
const (
	TypeSessionCreated           = "session.created"
	TypeSessionUpdated           = "session.updated"
	TypeResponseCreated          = "response.created"
	TypeResponseDone             = "response.done"
	TypeResponseCompleted        = "response.completed"
	TypeResponseAudioDone        = "response.audio.done"
	TypeResponseOutputAudioDone  = "response.output_audio.done"
	TypeResponseAudioDelta       = "response.audio.delta"
	TypeResponseOutputAudioDelta = "response.output_audio.delta"
	TypeError                    = "error"
)

const AudioFormatG711ULaw = "g711_ulaw"

var DefaultModalities = []string{"text", "audio"}

var ErrMissingType = errors.New("realtime event has no type")

type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitempty"`
}

// SessionConfig is the body of a session.update command.
type SessionConfig struct {
	Modalities        []string `json:"modalities,omitempty"`
	Instructions      string   `json:"instructions,omitempty"`
	Voice             string   `json:"voice,omitempty"`
	InputAudioFormat  string   `json:"input_audio_format,omitempty"`
	OutputAudioFormat string   `json:"output_audio_format,omitempty"`

	// nil disables server side turn detection; the bridge commits itself.
	TurnDetection           *TurnDetection `json:"turn_detection"`
	Temperature             float64        `json:"temperature,omitempty"`
	MaxResponseOutputTokens interface{}    `json:"max_response_output_tokens,omitempty"`
}

// MaxTokens converts a configured limit into the wire value: "inf" or an
// integer. Empty means the server default.
func MaxTokens(limit string) (interface{}, error) {
	if limit == "" {
		return nil, nil
	}
	if limit == "inf" {
		return "inf", nil
	}
	n, err := strconv.Atoi(limit)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid max response tokens %q", limit)
	}
	return n, nil
}

type sessionUpdate struct {
	Type    string        `json:"type"`
	Session SessionConfig `json:"session"`
}

func SessionUpdate(cfg SessionConfig) ([]byte, error) {
	return json.Marshal(sessionUpdate{Type: TypeSessionUpdate, Session: cfg})
}

type audioAppend struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

// InputAudioAppend forwards one base64 audio payload untouched.
func InputAudioAppend(payload string) ([]byte, error) {
	return json.Marshal(audioAppend{Type: TypeInputAudioBufferAppend, Audio: payload})
}

type typeOnly struct {
	Type string `json:"type"`
}

func InputAudioCommit() ([]byte, error) {
	return json.Marshal(typeOnly{Type: TypeInputAudioBufferCommit})
}

type responseOptions struct {
	Modalities   []string `json:"modalities,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
}

type responseCreate struct {
	Type     string          `json:"type"`
	Response responseOptions `json:"response"`
}

func ResponseCreate(modalities []string, instructions string) ([]byte, error) {
	return json.Marshal(responseCreate{
		Type:     TypeResponseCreate,
		Response: responseOptions{Modalities: modalities, Instructions: instructions},
	})
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type conversationItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type conversationItemCreate struct {
	Type string           `json:"type"`
	Item conversationItem `json:"item"`
}

// ConversationItemCreate adds a message turn. Assistant turns carry output
// text; user and system turns carry input text.
func ConversationItemCreate(role, text string) ([]byte, error) {
	partType := "input_text"
	if role == "assistant" {
		partType = "text"
	}
	return json.Marshal(conversationItemCreate{
		Type: TypeConversationItemCreate,
		Item: conversationItem{
			Type:    "message",
			Role:    role,
			Content: []contentPart{{Type: partType, Text: text}},
		},
	})
}

// ScriptedUtterance returns the commands that make the assistant speak text
// verbatim: the turn is recorded in the conversation, then rendered.
func ScriptedUtterance(text string, modalities []string) ([][]byte, error) {
	item, err := ConversationItemCreate("assistant", text)
	if err != nil {
		return nil, err
	}
	instructions := fmt.Sprintf("Say exactly the following to the caller and nothing else: %q", text)
	resp, err := ResponseCreate(modalities, instructions)
	if err != nil {
		return nil, err
	}
	return [][]byte{item, resp}, nil
}

// APIError is the payload of an error event.
type APIError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
	EventID string `json:"event_id"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ServerEvent is the subset of a realtime server event the bridge acts on.
type ServerEvent struct {
	Type       string
	EventID    string
	ResponseID string
	Delta      string
	Error      *APIError
}

type wireEvent struct {
	Type       string `json:"type"`
	EventID    string `json:"event_id"`
	ResponseID string `json:"response_id"`
	Delta      string `json:"delta"`
	Response   *struct {
		ID string `json:"id"`
	} `json:"response"`
	Error *APIError `json:"error"`
}

func ParseServerEvent(raw []byte) (ServerEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return ServerEvent{}, fmt.Errorf("failed to parse realtime event: %w", err)
	}
	if w.Type == "" {
		return ServerEvent{}, ErrMissingType
	}

	ev := ServerEvent{
		Type:       w.Type,
		EventID:    w.EventID,
		ResponseID: w.ResponseID,
		Delta:      w.Delta,
		Error:      w.Error,
	}
	if ev.ResponseID == "" && w.Response != nil {
		ev.ResponseID = w.Response.ID
	}
	return ev, nil
}

// IsSessionReady reports whether the event acknowledges the session.
func IsSessionReady(eventType string) bool {
	return eventType == TypeSessionCreated || eventType == TypeSessionUpdated
}

// IsResponseTerminal reports whether the event ends a response. Every name
// the service uses for this is treated the same.
func IsResponseTerminal(eventType string) bool {
	switch eventType {
	case TypeResponseDone, TypeResponseCompleted, TypeResponseAudioDone, TypeResponseOutputAudioDone:
		return true
	}
	return false
}

func IsAudioDelta(eventType string) bool {
	return eventType == TypeResponseAudioDelta || eventType == TypeResponseOutputAudioDelta
}
