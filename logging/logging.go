// Package logging configures the service-wide zap logger.
//
// Production output is JSON so CloudWatch Logs Insights can query on the
// service, environment, and correlationId fields; development output is
// human-readable console.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger for the named service. The ENVIRONMENT variable
// selects the output format (production -> JSON, anything else -> console).
func New(service string) (*zap.Logger, error) {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(
		zap.String("service", service),
		zap.String("environment", environment),
	), nil
}
