package bedrock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "anthropic.claude-3-5-sonnet-20241022-v2:0", cfg.ModelID)
	assert.Equal(t, int32(4096), cfg.MaxTokens)
	assert.Equal(t, 0.0, cfg.TemperatureExtraction)
	assert.Equal(t, 0.7, cfg.TemperatureGeneration)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 1*time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 60*time.Second, cfg.RetryMaxDelay)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("BEDROCK_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0")
	t.Setenv("BEDROCK_MAX_TOKENS", "2048")
	t.Setenv("BEDROCK_TEMPERATURE_GENERATION", "0.5")
	t.Setenv("BEDROCK_MAX_RETRIES", "5")
	t.Setenv("BEDROCK_RETRY_BASE_DELAY", "0.5")
	t.Setenv("BEDROCK_RETRY_MAX_DELAY", "30")
	t.Setenv("AWS_REGION", "us-west-2")

	cfg := ConfigFromEnv()

	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", cfg.ModelID)
	assert.Equal(t, int32(2048), cfg.MaxTokens)
	assert.Equal(t, 0.5, cfg.TemperatureGeneration)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 30*time.Second, cfg.RetryMaxDelay)
	assert.Equal(t, "us-west-2", cfg.AWSRegion)
}

func TestConfigFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("BEDROCK_MAX_TOKENS", "not-a-number")
	t.Setenv("BEDROCK_MAX_RETRIES", "-1")

	cfg := ConfigFromEnv()

	assert.Equal(t, int32(4096), cfg.MaxTokens)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestCalculateCost(t *testing.T) {
	cfg := DefaultConfig()

	cost := cfg.CalculateCost(1000, 500)
	assert.InDelta(t, 1000*0.000003+500*0.000015, cost, 1e-12)
	assert.Equal(t, 0.0, cfg.CalculateCost(0, 0))
}
