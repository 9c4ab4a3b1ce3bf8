package bedrock

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultModelID            = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	defaultMaxTokens          = 4096
	defaultTempExtraction     = 0.0
	defaultTempGeneration     = 0.7
	defaultMaxRetries         = 3
	defaultRetryBaseDelay     = 1 * time.Second
	defaultRetryMaxDelay      = 60 * time.Second
	defaultCostPerInputToken  = 0.000003 // Claude 3.5 Sonnet: $3 per MTok
	defaultCostPerOutputToken = 0.000015 // Claude 3.5 Sonnet: $15 per MTok
	defaultAWSRegion          = "us-east-1"
)

// Config holds Bedrock invocation settings
type Config struct {
	ModelID               string
	MaxTokens             int32
	TemperatureExtraction float64
	TemperatureGeneration float64
	MaxRetries            int
	RetryBaseDelay        time.Duration
	RetryMaxDelay         time.Duration
	CostPerInputToken     float64
	CostPerOutputToken    float64
	AWSRegion             string
}

// DefaultConfig returns the default Bedrock configuration
func DefaultConfig() Config {
	return Config{
		ModelID:               defaultModelID,
		MaxTokens:             defaultMaxTokens,
		TemperatureExtraction: defaultTempExtraction,
		TemperatureGeneration: defaultTempGeneration,
		MaxRetries:            defaultMaxRetries,
		RetryBaseDelay:        defaultRetryBaseDelay,
		RetryMaxDelay:         defaultRetryMaxDelay,
		CostPerInputToken:     defaultCostPerInputToken,
		CostPerOutputToken:    defaultCostPerOutputToken,
		AWSRegion:             defaultAWSRegion,
	}
}

// ConfigFromEnv builds a configuration from environment variables, falling
// back to defaults for anything unset
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("BEDROCK_MODEL_ID"); v != "" {
		cfg.ModelID = v
	}
	if v := os.Getenv("BEDROCK_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = int32(n)
		}
	}
	if v := os.Getenv("BEDROCK_TEMPERATURE_EXTRACTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TemperatureExtraction = f
		}
	}
	if v := os.Getenv("BEDROCK_TEMPERATURE_GENERATION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TemperatureGeneration = f
		}
	}
	if v := os.Getenv("BEDROCK_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("BEDROCK_RETRY_BASE_DELAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RetryBaseDelay = time.Duration(f * float64(time.Second))
		}
	}
	if v := os.Getenv("BEDROCK_RETRY_MAX_DELAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RetryMaxDelay = time.Duration(f * float64(time.Second))
		}
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWSRegion = v
	}

	return cfg
}

// CalculateCost returns the estimated cost in USD for the given token usage
func (c Config) CalculateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.CostPerInputToken + float64(outputTokens)*c.CostPerOutputToken
}
