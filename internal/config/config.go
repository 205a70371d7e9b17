package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Bridge   BridgeConfig
	OpenAI   OpenAIConfig
	Agent    AgentConfig
	Twilio   TwilioConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Calls    CallsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	// PublicURL is the externally reachable base URL, used to build the
	// media stream URL handed to Twilio.
	PublicURL      string
	AllowedOrigins []string
}

// BridgeConfig holds turn-taking and call lifecycle settings
type BridgeConfig struct {
	FlushInterval     time.Duration
	KeepAliveInterval time.Duration
	// ReadTimeout ends a call leg that stops answering keep-alive pings.
	ReadTimeout      time.Duration
	MinBuffer        time.Duration
	MaxBuffer        time.Duration
	SilenceThreshold time.Duration
	ClosingGrace     time.Duration
	ClosingMessage   string

	GreetingStrategy   string
	GreetingText       string
	InboundAudioPolicy string
}

// OpenAIConfig holds realtime session settings
type OpenAIConfig struct {
	APIKey            string
	RealtimeURL       string
	Model             string
	Voice             string
	Temperature       float64
	MaxResponseTokens string
}

// AgentConfig holds the behavioral prompt and its template values
type AgentConfig struct {
	PromptFile   string
	Instructions string
	Name         string
	CompanyName  string
}

// TwilioConfig enables webhook signature validation when AuthToken is set
type TwilioConfig struct {
	AuthToken string
}

// DatabaseConfig holds database connection settings. Call records are only
// kept when Host is set.
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
}

// RedisConfig holds the shared call registry connection
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig holds call lifecycle event publishing settings
type KafkaConfig struct {
	Brokers string
	Topic   string
}

// CallsConfig holds admission settings
type CallsConfig struct {
	MaxConcurrent int
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}
	var err error

	// Server configuration
	if cfg.Server.Port, err = intEnv("SERVER_PORT", "8080"); err != nil {
		return nil, err
	}
	publicURL, err := requireEnv("PUBLIC_URL")
	if err != nil {
		return nil, err
	}
	cfg.Server.PublicURL = strings.TrimRight(publicURL, "/")
	cfg.Server.AllowedOrigins = splitList(getEnvWithDefault("ALLOWED_ORIGINS", "*"))

	// Bridge configuration
	if cfg.Bridge.FlushInterval, err = durationEnv("BRIDGE_FLUSH_INTERVAL", "200ms"); err != nil {
		return nil, err
	}
	if cfg.Bridge.KeepAliveInterval, err = durationEnv("BRIDGE_KEEPALIVE_INTERVAL", "20s"); err != nil {
		return nil, err
	}
	if cfg.Bridge.ReadTimeout, err = durationEnv("BRIDGE_READ_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Bridge.ReadTimeout > 0 && cfg.Bridge.ReadTimeout <= cfg.Bridge.KeepAliveInterval {
		return nil, fmt.Errorf("BRIDGE_READ_TIMEOUT must exceed BRIDGE_KEEPALIVE_INTERVAL, got %s <= %s",
			cfg.Bridge.ReadTimeout, cfg.Bridge.KeepAliveInterval)
	}
	if cfg.Bridge.MinBuffer, err = durationEnv("BRIDGE_MIN_BUFFER", "200ms"); err != nil {
		return nil, err
	}
	if cfg.Bridge.MaxBuffer, err = durationEnv("BRIDGE_MAX_BUFFER", "30s"); err != nil {
		return nil, err
	}
	if cfg.Bridge.SilenceThreshold, err = durationEnv("BRIDGE_SILENCE_THRESHOLD", "0s"); err != nil {
		return nil, err
	}
	if cfg.Bridge.ClosingGrace, err = durationEnv("BRIDGE_CLOSING_GRACE", "5s"); err != nil {
		return nil, err
	}
	cfg.Bridge.ClosingMessage = os.Getenv("BRIDGE_CLOSING_MESSAGE")
	cfg.Bridge.GreetingStrategy = getEnvWithDefault("GREETING_STRATEGY", "telephony")
	cfg.Bridge.GreetingText = getEnvWithDefault("GREETING_TEXT", "Hello! Connecting you to our assistant. One moment please.")
	cfg.Bridge.InboundAudioPolicy = getEnvWithDefault("INBOUND_AUDIO_POLICY", "capture")

	// OpenAI configuration
	if cfg.OpenAI.APIKey, err = requireEnv("OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	cfg.OpenAI.RealtimeURL = os.Getenv("OPENAI_REALTIME_URL")
	cfg.OpenAI.Model = os.Getenv("OPENAI_REALTIME_MODEL")
	cfg.OpenAI.Voice = getEnvWithDefault("OPENAI_VOICE", "alloy")
	cfg.OpenAI.Temperature, err = strconv.ParseFloat(getEnvWithDefault("OPENAI_TEMPERATURE", "0.8"), 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OPENAI_TEMPERATURE: %w", err)
	}
	cfg.OpenAI.MaxResponseTokens = getEnvWithDefault("OPENAI_MAX_RESPONSE_TOKENS", "inf")

	// Agent prompt
	cfg.Agent.PromptFile = os.Getenv("PROMPT_FILE")
	cfg.Agent.Instructions = getEnvWithDefault("AGENT_INSTRUCTIONS", defaultInstructions)
	cfg.Agent.Name = getEnvWithDefault("AGENT_NAME", "Alex")
	cfg.Agent.CompanyName = getEnvWithDefault("COMPANY_NAME", "our company")

	cfg.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")

	// Optional integrations
	cfg.Database.Host = os.Getenv("DB_HOST")
	if cfg.Database.Host != "" {
		if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
			return nil, err
		}
		if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
			return nil, err
		}
		if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
			return nil, err
		}
	}

	cfg.Redis.Enabled = getEnvWithDefault("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Host = getEnvWithDefault("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvWithDefault("REDIS_PORT", "6379")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = intEnv("REDIS_DB", "0"); err != nil {
		return nil, err
	}

	cfg.Kafka.Brokers = os.Getenv("KAFKA_BROKERS")
	cfg.Kafka.Topic = getEnvWithDefault("KAFKA_TOPIC", "call-events")

	if cfg.Calls.MaxConcurrent, err = intEnv("MAX_CONCURRENT_CALLS", "50"); err != nil {
		return nil, err
	}
	if cfg.Calls.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("MAX_CONCURRENT_CALLS must be positive, got %d", cfg.Calls.MaxConcurrent)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		c.Username, c.Password, c.Host, c.Name)
}

func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// BrokerList splits the comma separated broker setting.
func (c *KafkaConfig) BrokerList() []string {
	return splitList(c.Brokers)
}

// MediaStreamURL is the websocket URL Twilio connects the call audio to.
func (c *ServerConfig) MediaStreamURL() string {
	base := c.PublicURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	case !strings.HasPrefix(base, "wss://") && !strings.HasPrefix(base, "ws://"):
		base = "wss://" + base
	}
	return base + "/api/phone/media-stream"
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func intEnv(key, defaultValue string) (int, error) {
	n, err := strconv.Atoi(getEnvWithDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvWithDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
