package bedrock

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverseAPI struct {
	calls   int
	errs    []error
	outputs []*bedrockruntime.ConverseOutput
}

func (f *fakeConverseAPI) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.outputs) && f.outputs[i] != nil {
		return f.outputs[i], nil
	}
	return f.outputs[len(f.outputs)-1], nil
}

func converseOutput(text string, inputTokens, outputTokens int32) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{
				Role: types.ConversationRoleAssistant,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: text},
				},
			},
		},
		Usage: &types.TokenUsage{
			InputTokens:  aws.Int32(inputTokens),
			OutputTokens: aws.Int32(outputTokens),
		},
	}
}

func newTestClient(t *testing.T, api converseAPI) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), DefaultConfig(), WithConverseAPI(api))
	require.NoError(t, err)
	// No real sleeping between retries in tests
	client.retryer.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return client
}

func TestInvokeReturnsContentAndUsage(t *testing.T) {
	api := &fakeConverseAPI{outputs: []*bedrockruntime.ConverseOutput{
		converseOutput("hello", 12, 34),
	}}
	client := newTestClient(t, api)

	resp, err := client.Invoke(context.Background(), InvokeRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
		System:   "be helpful",
	})

	require.NoError(t, err)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 34, resp.Usage.OutputTokens)
	require.Len(t, resp.Content, 1)
	text, ok := resp.Content[0].(*types.ContentBlockMemberText)
	require.True(t, ok)
	assert.Equal(t, "hello", text.Value)
	assert.Equal(t, 1, api.calls)
}

func TestInvokeClassifiesAndDoesNotRetryClientErrors(t *testing.T) {
	api := &fakeConverseAPI{
		errs: []error{
			&types.AccessDeniedException{Message: aws.String("denied")},
		},
		outputs: []*bedrockruntime.ConverseOutput{converseOutput("never", 0, 0)},
	}
	client := newTestClient(t, api)

	_, err := client.Invoke(context.Background(), InvokeRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 1, api.calls)
}

func TestInvokeRetriesThrottlingThenSucceeds(t *testing.T) {
	api := &fakeConverseAPI{
		errs: []error{
			&types.ThrottlingException{Message: aws.String("slow down")},
		},
		outputs: []*bedrockruntime.ConverseOutput{
			nil,
			converseOutput("recovered", 5, 7),
		},
	}
	client := newTestClient(t, api)

	resp, err := client.Invoke(context.Background(), InvokeRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, api.calls)
	assert.Equal(t, 5, resp.Usage.InputTokens)
	assert.Equal(t, 7, resp.Usage.OutputTokens)
}

func TestInvokeDefaultsToExtractionTemperature(t *testing.T) {
	var captured *bedrockruntime.ConverseInput
	api := &captureConverseAPI{output: converseOutput("ok", 1, 1), captured: &captured}
	client := newTestClient(t, api)

	_, err := client.Invoke(context.Background(), InvokeRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)

	require.NotNil(t, captured)
	require.NotNil(t, captured.InferenceConfig)
	assert.Equal(t, float32(0.0), aws.ToFloat32(captured.InferenceConfig.Temperature))
	assert.Equal(t, int32(4096), aws.ToInt32(captured.InferenceConfig.MaxTokens))

	temp := 0.7
	_, err = client.Invoke(context.Background(), InvokeRequest{
		Messages:    []Message{{Role: "user", Content: "hi"}},
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, float32(0.7), aws.ToFloat32(captured.InferenceConfig.Temperature))
}

type captureConverseAPI struct {
	output   *bedrockruntime.ConverseOutput
	captured **bedrockruntime.ConverseInput
}

func (c *captureConverseAPI) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	*c.captured = params
	return c.output, nil
}
