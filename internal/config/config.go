package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Backend names accepted by CHAT_BACKEND.
const (
	BackendLocal  = "local"
	BackendGemini = "gemini"
)

// Config aggregates the whole front-end configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Dispatch DispatchConfig
	AI       AIConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	dispatch, err := loadDispatchConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Log: logCfg, Dispatch: dispatch, AI: ai}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// accept ":8080" or "127.0.0.1:8080" as-is
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, errors.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LogConfig selects the zap logger flavor.
type LogConfig struct {
	Level  zapcore.Level
	Format string
}

// NewLogger builds a json (production) or console (development) logger.
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	return c.build(nil)
}

// NewFileLogger is NewLogger writing to path instead of stderr. Terminal
// front-ends use it so logs do not corrupt the screen.
func (c LogConfig) NewFileLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	return c.build([]string{path})
}

func (c LogConfig) build(outputs []string) (*zap.Logger, error) {
	var zc zap.Config
	if c.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.Level)
	if len(outputs) > 0 {
		zc.OutputPaths = outputs
		zc.ErrorOutputPaths = outputs
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger, nil
}

func loadLogConfig() (LogConfig, error) {
	level := zapcore.InfoLevel
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(raw))); err != nil {
			return LogConfig{}, errors.Wrapf(err, "invalid LOG_LEVEL value %q", raw)
		}
	}

	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json"))
	if format != "json" && format != "console" {
		return LogConfig{}, errors.Errorf("invalid LOG_FORMAT value %q", format)
	}

	return LogConfig{Level: level, Format: format}, nil
}

// DispatchConfig selects and parameterizes the outbound chat backend.
type DispatchConfig struct {
	Backend       string
	ChatURL       string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	// Timeout bounds one outbound call; zero means no timeout.
	Timeout   time.Duration
	PersonaID string
}

// Validate checks the backend selection.
func (c DispatchConfig) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.ChatURL == "" {
			return errors.New("CHAT_BACKEND_URL is required for the local backend")
		}
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini backend")
		}
	default:
		return errors.Errorf("unknown CHAT_BACKEND %q, expected %q or %q", c.Backend, BackendLocal, BackendGemini)
	}
	return nil
}

func loadDispatchConfig() (DispatchConfig, error) {
	timeout, err := parseOptionalIntEnv("CHAT_TIMEOUT")
	if err != nil {
		return DispatchConfig{}, err
	}

	var timeoutDuration time.Duration
	if timeout != nil {
		if *timeout < 0 {
			return DispatchConfig{}, errors.Errorf("invalid CHAT_TIMEOUT value %d: must not be negative", *timeout)
		}
		timeoutDuration = time.Duration(*timeout) * time.Second
	}

	cfg := DispatchConfig{
		Backend:       strings.ToLower(getEnvOrDefault("CHAT_BACKEND", BackendLocal)),
		ChatURL:       getEnvOrDefault("CHAT_BACKEND_URL", "http://localhost:8080/chat"),
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		Timeout:       timeoutDuration,
		PersonaID:     strings.TrimSpace(os.Getenv("CHAT_PERSONA")),
	}

	// callers validate after applying command-line overrides
	return cfg, nil
}

// AIConfig describes the model behind the companion /chat endpoint.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, errors.New("ark credentials or model missing: provide ARK_API_KEY + Model or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", key, value)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", key, value)
	}
	return &val, nil
}
