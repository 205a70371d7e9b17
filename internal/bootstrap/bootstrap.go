package bootstrap

import (
	"context"
	"fmt"

	"voice-bridge/internal/callregistry"
	"voice-bridge/internal/clients/openai"
	redisclient "voice-bridge/internal/clients/redis"
	"voice-bridge/internal/config"
	"voice-bridge/internal/kafka"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voicecall/bridge"
	voiceCallHandler "voice-bridge/internal/voicecall/handler"
	voiceCallProcessor "voice-bridge/internal/voicecall/processor"
	"voice-bridge/internal/voicecall/twilio"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Logger *observability.Logger

	// Optional integrations, nil when not configured
	Store         *store.Store
	Redis         *redisclient.Client
	KafkaProducer *kafka.Producer

	Registry callregistry.Registry

	// Handlers
	VoiceCallHandler voiceCallHandler.Handler
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Call records
	var callStore voiceCallProcessor.CallStore
	if cfg.Database.Enabled() {
		s, err := store.New(cfg.Database.ConnectionString(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.Store = &s
		callStore = deps.Store
	} else {
		logger.Info(ctx, "DB_HOST not set, call records are disabled")
	}

	// Call registry, shared through Redis when enabled
	var err error
	deps.Redis, err = redisclient.NewClient(cfg.Redis, logger)
	if err != nil {
		deps.Cleanup()
		return nil, err
	}
	if deps.Redis.IsEnabled() {
		deps.Registry = callregistry.NewRedisRegistry(deps.Redis, cfg.Calls.MaxConcurrent)
	} else {
		deps.Registry = callregistry.NewMemoryRegistry(cfg.Calls.MaxConcurrent)
	}

	// Lifecycle events
	var events voiceCallProcessor.EventPublisher = kafka.NoopPublisher{}
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		deps.KafkaProducer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers: brokers,
			Topic:   cfg.Kafka.Topic,
		}, logger)
		events = deps.KafkaProducer
	} else {
		logger.Info(ctx, "KAFKA_BROKERS not set, call events are disabled")
	}

	// Bridge
	bridgeCfg, err := BridgeConfig(cfg)
	if err != nil {
		deps.Cleanup()
		return nil, err
	}
	realtime, err := openai.NewOpenAIRealtimeClient(cfg.OpenAI.APIKey, openai.RealtimeConfig{
		URL:         cfg.OpenAI.RealtimeURL,
		Model:       cfg.OpenAI.Model,
		ReadTimeout: cfg.Bridge.ReadTimeout,
	}, logger)
	if err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to create realtime client: %w", err)
	}
	factory, err := bridge.NewFactory(bridgeCfg, realtimeDialer(realtime), logger)
	if err != nil {
		deps.Cleanup()
		return nil, err
	}

	// Initialize voice call processor and handler
	voiceCallProc := voiceCallProcessor.NewVoiceCallProcessor(
		voiceCallProcessor.FromFactory(factory),
		deps.Registry,
		callStore,
		events,
		logger,
	)
	deps.VoiceCallHandler = voiceCallHandler.New(voiceCallProc, HandlerOptions(cfg), logger)

	return deps, nil
}

// BridgeConfig materializes the bridge settings from the environment config.
func BridgeConfig(cfg *config.Config) (bridge.Config, error) {
	greeting, err := bridge.ParseGreetingStrategy(cfg.Bridge.GreetingStrategy)
	if err != nil {
		return bridge.Config{}, err
	}
	inbound, err := bridge.ParseInboundAudioPolicy(cfg.Bridge.InboundAudioPolicy)
	if err != nil {
		return bridge.Config{}, err
	}
	maxTokens, err := openai.MaxTokens(cfg.OpenAI.MaxResponseTokens)
	if err != nil {
		return bridge.Config{}, err
	}
	prompt, err := cfg.Agent.Prompt()
	if err != nil {
		return bridge.Config{}, err
	}

	bc := bridge.DefaultConfig()
	bc.FlushInterval = cfg.Bridge.FlushInterval
	bc.KeepAliveInterval = cfg.Bridge.KeepAliveInterval
	bc.MinBuffer = cfg.Bridge.MinBuffer
	bc.MaxBuffer = cfg.Bridge.MaxBuffer
	bc.SilenceThreshold = cfg.Bridge.SilenceThreshold
	bc.Greeting = greeting
	bc.GreetingText = cfg.Bridge.GreetingText
	bc.InboundAudio = inbound
	bc.ClosingMessage = cfg.Bridge.ClosingMessage
	bc.ClosingGrace = cfg.Bridge.ClosingGrace
	bc.Session.Instructions = prompt
	bc.Session.Voice = cfg.OpenAI.Voice
	bc.Session.Temperature = cfg.OpenAI.Temperature
	bc.Session.MaxResponseOutputTokens = maxTokens

	if err := bc.Validate(); err != nil {
		return bridge.Config{}, fmt.Errorf("invalid bridge config: %w", err)
	}
	return bc, nil
}

// HandlerOptions derives the call-control webhook settings.
func HandlerOptions(cfg *config.Config) voiceCallHandler.Options {
	opts := voiceCallHandler.Options{
		StreamURL:   cfg.Server.MediaStreamURL(),
		PublicURL:   cfg.Server.PublicURL,
		ReadTimeout: cfg.Bridge.ReadTimeout,
	}
	// Under the telephony strategy the provider speaks the greeting.
	if cfg.Bridge.GreetingStrategy == string(bridge.GreetingTelephony) {
		opts.Greeting = cfg.Bridge.GreetingText
	}
	if cfg.Twilio.AuthToken != "" {
		opts.Signatures = twilio.NewSignatureValidator(cfg.Twilio.AuthToken)
	}
	return opts
}

func realtimeDialer(client *openai.OpenAIRealtimeClient) bridge.Dialer {
	return bridge.DialerFunc(func(ctx context.Context) (bridge.MessageConn, error) {
		conn, err := client.Dial(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	ctx := context.Background()
	if d.KafkaProducer != nil {
		if err := d.KafkaProducer.Close(); err != nil {
			d.Logger.Error(ctx, "failed to close kafka producer", err)
		}
	}
	if err := d.Redis.Close(); err != nil {
		d.Logger.Error(ctx, "failed to close redis client", err)
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.Error(ctx, "failed to close database", err)
		}
	}
}
