package bridge

import (
	"errors"
	"fmt"
	"time"

	"voice-bridge/internal/clients/openai"
	"voice-bridge/internal/voice/audio"
)

const defaultEventQueueSize = 256

// Config is everything a Factory needs to run sessions. It is built once at
// startup and never read from the environment by this package.
type Config struct {
	FlushInterval     time.Duration
	KeepAliveInterval time.Duration
	MinBuffer         time.Duration
	// MaxBuffer caps uncommitted caller audio; the oldest frames go first.
	MaxBuffer time.Duration
	// Zero disables silence endpointing.
	SilenceThreshold time.Duration

	Greeting     GreetingStrategy
	GreetingText string
	InboundAudio InboundAudioPolicy

	// ClosingMessage is spoken after the caller hangs up, if set.
	ClosingMessage string
	ClosingGrace   time.Duration

	Session              openai.SessionConfig
	ResponseInstructions string

	EventQueueSize int
}

func DefaultConfig() Config {
	return Config{
		FlushInterval:     200 * time.Millisecond,
		KeepAliveInterval: 20 * time.Second,
		MinBuffer:         200 * time.Millisecond,
		MaxBuffer:         30 * time.Second,
		Greeting:          GreetingTelephony,
		InboundAudio:      InboundCapture,
		ClosingGrace:      5 * time.Second,
		Session: openai.SessionConfig{
			Modalities:        openai.DefaultModalities,
			Voice:             "alloy",
			InputAudioFormat:  openai.AudioFormatG711ULaw,
			OutputAudioFormat: openai.AudioFormatG711ULaw,
			Temperature:       0.8,
		},
		EventQueueSize: defaultEventQueueSize,
	}
}

func (c Config) Validate() error {
	if c.FlushInterval <= 0 {
		return errors.New("flush interval must be positive")
	}
	if c.KeepAliveInterval <= 0 {
		return errors.New("keep-alive interval must be positive")
	}
	if c.MinBuffer < 0 || c.MaxBuffer < 0 || c.SilenceThreshold < 0 {
		return errors.New("buffer thresholds must not be negative")
	}
	if c.MaxBuffer > 0 && c.MaxBuffer < c.MinBuffer {
		return fmt.Errorf("max buffer %s is below min buffer %s", c.MaxBuffer, c.MinBuffer)
	}
	if _, err := ParseGreetingStrategy(string(c.Greeting)); err != nil {
		return err
	}
	if c.Greeting == GreetingAI && c.GreetingText == "" {
		return errors.New("ai greeting strategy requires greeting text")
	}
	if _, err := ParseInboundAudioPolicy(string(c.InboundAudio)); err != nil {
		return err
	}
	if c.ClosingMessage != "" && c.ClosingGrace <= 0 {
		return fmt.Errorf("closing grace must be positive when a closing message is set, got %s", c.ClosingGrace)
	}
	return nil
}

func (c Config) modalities() []string {
	if len(c.Session.Modalities) > 0 {
		return c.Session.Modalities
	}
	return openai.DefaultModalities
}

func (c Config) policy() Policy {
	p := Policy{
		Format:               audio.MuLaw8k,
		MinBuffer:            c.MinBuffer,
		MaxBuffer:            c.MaxBuffer,
		SilenceThreshold:     c.SilenceThreshold,
		Greeting:             c.Greeting,
		InboundAudio:         c.InboundAudio,
		ClosingMessage:       c.ClosingMessage,
		ClosingGrace:         c.ClosingGrace,
		Modalities:           c.modalities(),
		ResponseInstructions: c.ResponseInstructions,
	}
	// Only the AI side greets under the ai strategy; the text is inert otherwise.
	if c.Greeting == GreetingAI {
		p.GreetingText = c.GreetingText
	}
	return p
}
