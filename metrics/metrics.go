// Package metrics emits performance and cost metrics as structured log
// events for CloudWatch aggregation.
package metrics

import (
	"time"

	"go.uber.org/zap"
)

// Namespace is the CloudWatch metrics namespace
const Namespace = "DemandLetterGenerator"

// Collector records metrics through a structured logger
type Collector struct {
	logger      *zap.Logger
	namespace   string
	environment string
}

// NewCollector creates a metrics collector
func NewCollector(logger *zap.Logger, environment string) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if environment == "" {
		environment = "development"
	}
	return &Collector{
		logger:      logger,
		namespace:   Namespace,
		environment: environment,
	}
}

// RecordMetric records a single metric value with optional dimensions
func (c *Collector) RecordMetric(name string, value float64, unit string, dimensions map[string]string) {
	if dimensions == nil {
		dimensions = map[string]string{}
	}
	c.logger.Debug("metric recorded",
		zap.String("namespace", c.namespace),
		zap.String("environment", c.environment),
		zap.String("metricName", name),
		zap.Float64("value", value),
		zap.String("unit", unit),
		zap.Any("dimensions", dimensions),
		zap.Time("timestamp", time.Now().UTC()),
	)
}

// RecordBedrockInvocation records token usage, duration, and cost for a
// model invocation, dimensioned by firm for cost allocation
func (c *Collector) RecordBedrockInvocation(model string, inputTokens, outputTokens int, duration time.Duration, cost float64, firmID string, success bool) {
	dims := map[string]string{
		"Model":   model,
		"FirmId":  firmID,
		"Success": boolString(success),
	}
	c.RecordMetric("BedrockInputTokens", float64(inputTokens), "Count", dims)
	c.RecordMetric("BedrockOutputTokens", float64(outputTokens), "Count", dims)
	c.RecordMetric("BedrockTotalTokens", float64(inputTokens+outputTokens), "Count", dims)
	c.RecordMetric("BedrockInvocationDuration", float64(duration.Milliseconds()), "Milliseconds", dims)
	c.RecordMetric("BedrockCost", cost, "None", dims)
	c.RecordMetric("BedrockInvocations", 1, "Count", dims)
}

// RecordDocumentAnalysis records metrics for a document analysis operation
func (c *Collector) RecordDocumentAnalysis(documentType string, sizeBytes int64, duration time.Duration, success bool, firmID string) {
	dims := map[string]string{
		"DocumentType": documentType,
		"FirmId":       firmID,
		"Success":      boolString(success),
	}
	c.RecordMetric("DocumentAnalysisDuration", float64(duration.Milliseconds()), "Milliseconds", dims)
	c.RecordMetric("DocumentAnalysisSize", float64(sizeBytes), "Bytes", dims)
	c.RecordMetric("DocumentAnalysisCount", 1, "Count", dims)
}

// RecordLetterGeneration records metrics for a letter generation operation
func (c *Collector) RecordLetterGeneration(duration time.Duration, success bool, firmID string, letterLength int) {
	dims := map[string]string{
		"FirmId":  firmID,
		"Success": boolString(success),
	}
	c.RecordMetric("LetterGenerationDuration", float64(duration.Milliseconds()), "Milliseconds", dims)
	c.RecordMetric("LetterGenerationCount", 1, "Count", dims)
	if letterLength > 0 {
		c.RecordMetric("LetterLength", float64(letterLength), "Count", dims)
	}
}

// RecordError records an error occurrence
func (c *Collector) RecordError(errorType, operation, firmID string) {
	dims := map[string]string{
		"ErrorType": errorType,
		"Operation": operation,
	}
	if firmID != "" {
		dims["FirmId"] = firmID
	}
	c.RecordMetric("ErrorCount", 1, "Count", dims)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
