package bedrock

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"demanddraft-backend/metrics"
	"demanddraft-backend/models"
)

// Message is a single conversation message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// InvokeRequest describes a single model invocation
type InvokeRequest struct {
	Messages      []Message
	System        string
	Temperature   *float64
	MaxTokens     *int32
	Tools         []types.Tool
	ToolChoice    types.ToolChoice
	CorrelationID string
	FirmID        string
	UserID        string
}

// InvokeResponse carries the model's content blocks and token usage
type InvokeResponse struct {
	Content   []types.ContentBlock
	Usage     models.TokenUsage
	LatencyMS float64
}

// Caller is the invocation surface services depend on. Satisfied by *Client
// and by fakes in tests.
type Caller interface {
	Invoke(ctx context.Context, req InvokeRequest) (*InvokeResponse, error)
	Config() Config
}

// converseAPI is the slice of the Bedrock runtime SDK the client uses
type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Client invokes Claude through the Bedrock Converse API.
//
// SDK-level retries are disabled; the Retryer owns all retry behavior so
// client errors are never retried and backoff is consistent.
type Client struct {
	cfg       Config
	api       converseAPI
	retryer   *Retryer
	logger    *zap.Logger
	collector *metrics.Collector
}

// ClientOption is a functional option for Client
type ClientOption func(*Client)

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector
func WithMetrics(collector *metrics.Collector) ClientOption {
	return func(c *Client) {
		c.collector = collector
	}
}

// WithConverseAPI overrides the underlying SDK client
func WithConverseAPI(api converseAPI) ClientOption {
	return func(c *Client) {
		c.api = api
	}
}

// NewClient creates a Bedrock client. Construction failures are fatal and
// reported as ConfigurationError.
func NewClient(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	c := &Client{
		cfg:     cfg,
		retryer: NewRetryer(cfg),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.api == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, &ConfigurationError{Message: "failed to initialize Bedrock client", Err: err}
		}
		c.api = bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
			o.Retryer = aws.NopRetryer{}
		})
	}

	return c, nil
}

// Config returns the client configuration
func (c *Client) Config() Config {
	return c.cfg
}

// Invoke calls the Converse API with retry and structured logging
func (c *Client) Invoke(ctx context.Context, req InvokeRequest) (*InvokeResponse, error) {
	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	temperature := c.cfg.TemperatureExtraction
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := c.cfg.MaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(c.cfg.ModelID),
		Messages: convertMessages(req.Messages),
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(maxTokens),
			Temperature: aws.Float32(float32(temperature)),
		},
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}
	if len(req.Tools) > 0 {
		input.ToolConfig = &types.ToolConfiguration{
			Tools:      req.Tools,
			ToolChoice: req.ToolChoice,
		}
	}

	// Rough approximation: 4 characters per token
	estimatedTokens := estimateTokens(req.Messages, req.System)

	c.logger.Info("bedrock request",
		zap.String("modelId", c.cfg.ModelID),
		zap.String("correlationId", correlationID),
		zap.String("firmId", req.FirmID),
		zap.String("userId", req.UserID),
		zap.Int("estimatedInputTokens", estimatedTokens),
		zap.Float64("temperature", temperature),
		zap.Int32("maxTokens", maxTokens),
		zap.Int("toolCount", len(req.Tools)),
	)

	var output *bedrockruntime.ConverseOutput
	var latency time.Duration

	err := c.retryer.Do(ctx, func() error {
		start := time.Now()
		out, err := c.api.Converse(ctx, input)
		latency = time.Since(start)
		if err != nil {
			classified := Classify(err)
			c.logger.Error("bedrock invocation failed",
				zap.String("modelId", c.cfg.ModelID),
				zap.String("correlationId", correlationID),
				zap.String("firmId", req.FirmID),
				zap.Error(classified),
			)
			if c.collector != nil {
				c.collector.RecordError(errorType(classified), "bedrock_invoke", req.FirmID)
			}
			return classified
		}
		output = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &InvokeResponse{LatencyMS: float64(latency.Milliseconds())}
	if msg, ok := output.Output.(*types.ConverseOutputMemberMessage); ok {
		resp.Content = msg.Value.Content
	}
	if output.Usage != nil {
		resp.Usage = models.TokenUsage{
			InputTokens:  int(aws.ToInt32(output.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(output.Usage.OutputTokens)),
		}
	}

	cost := c.cfg.CalculateCost(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	c.logger.Info("bedrock response",
		zap.String("modelId", c.cfg.ModelID),
		zap.String("correlationId", correlationID),
		zap.String("firmId", req.FirmID),
		zap.Int("inputTokens", resp.Usage.InputTokens),
		zap.Int("outputTokens", resp.Usage.OutputTokens),
		zap.Float64("latencyMs", resp.LatencyMS),
		zap.Float64("costEstimate", cost),
		zap.String("toolUsed", ToolUseName(resp.Content)),
	)

	if c.collector != nil {
		c.collector.RecordBedrockInvocation(c.cfg.ModelID, resp.Usage.InputTokens, resp.Usage.OutputTokens, latency, cost, req.FirmID, true)
	}

	return resp, nil
}

func convertMessages(messages []Message) []types.Message {
	converted := make([]types.Message, 0, len(messages))
	for _, m := range messages {
		role := types.ConversationRoleUser
		if m.Role == "assistant" {
			role = types.ConversationRoleAssistant
		}
		converted = append(converted, types.Message{
			Role: role,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: m.Content},
			},
		})
	}
	return converted
}

func estimateTokens(messages []Message, system string) int {
	chars := len(system)
	for _, m := range messages {
		chars += len(m.Content)
	}
	return chars / 4
}

func errorType(err error) string {
	switch err.(type) {
	case *ThrottlingError:
		return "throttling"
	case *ServerError:
		return "server"
	case *ClientError:
		return "client"
	case *ValidationError:
		return "validation"
	default:
		return "unknown"
	}
}
