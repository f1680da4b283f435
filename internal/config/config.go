package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates configuration for the whole service.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Companion CompanionConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	companion, err := loadCompanionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Companion: companion}, nil
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
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the backing chat model and generation parameters.
type AIConfig struct {
	APIKey             string
	AccessKey          string
	SecretKey          string
	Model              string
	BaseURL            string
	Region             string
	Temperature        float32
	SummaryTemperature float32
	TopP               *float64
	RequestTimeout     time.Duration
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel constructs a chat model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	temperature := c.Temperature

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		Temperature: &temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	temp := float32(0.7)
	if temperature != nil {
		temp = float32(*temperature)
	}

	summaryTemperature, err := parseOptionalFloatEnv("ARK_SUMMARY_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	summaryTemp := float32(0.3)
	if summaryTemperature != nil {
		summaryTemp = float32(*summaryTemperature)
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseOptionalIntEnv("ARK_REQUEST_TIMEOUT")
	if err != nil {
		return AIConfig{}, err
	}
	timeoutSeconds := 60
	if timeout != nil && *timeout > 0 {
		timeoutSeconds = *timeout
	}

	return AIConfig{
		APIKey:             strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:          strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:          strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:              strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:            getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:             getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:        temp,
		SummaryTemperature: summaryTemp,
		TopP:               topP,
		RequestTimeout:     time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// CompanionConfig describes context-window management and response shaping.
type CompanionConfig struct {
	MaxContextTokens  int
	SummaryThreshold  float64
	KeepExchanges     int
	MaxResponseLength int
	DefaultPersona    string
}

func loadCompanionConfig() (CompanionConfig, error) {
	maxTokens, err := parseOptionalIntEnv("COMPANION_MAX_CONTEXT_TOKENS")
	if err != nil {
		return CompanionConfig{}, err
	}
	maxContextTokens := 10000
	if maxTokens != nil && *maxTokens > 0 {
		maxContextTokens = *maxTokens
	}

	thresholdOverride, err := parseOptionalFloatEnv("COMPANION_SUMMARY_THRESHOLD")
	if err != nil {
		return CompanionConfig{}, err
	}
	threshold := 0.7
	if thresholdOverride != nil {
		if *thresholdOverride <= 0 || *thresholdOverride >= 1 {
			return CompanionConfig{}, fmt.Errorf("COMPANION_SUMMARY_THRESHOLD must be in (0,1), got %v", *thresholdOverride)
		}
		threshold = *thresholdOverride
	}

	keepOverride, err := parseOptionalIntEnv("COMPANION_KEEP_EXCHANGES")
	if err != nil {
		return CompanionConfig{}, err
	}
	keepExchanges := 3
	if keepOverride != nil && *keepOverride > 0 {
		keepExchanges = *keepOverride
	}

	lengthOverride, err := parseOptionalIntEnv("COMPANION_MAX_RESPONSE_LENGTH")
	if err != nil {
		return CompanionConfig{}, err
	}
	maxResponseLength := 250
	if lengthOverride != nil && *lengthOverride > 0 {
		maxResponseLength = *lengthOverride
	}

	return CompanionConfig{
		MaxContextTokens:  maxContextTokens,
		SummaryThreshold:  threshold,
		KeepExchanges:     keepExchanges,
		MaxResponseLength: maxResponseLength,
		DefaultPersona:    getEnvOrDefault("COMPANION_PERSONA", ""),
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
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
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
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
