package bedrock

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

var validate = validator.New()

// ToolSchema derives a Converse tool definition from a Go struct. The
// struct's JSON schema becomes the tool's input schema so the model is
// forced to return output matching it.
func ToolSchema(v interface{}, name, description string) (types.Tool, error) {
	reflector := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(v)

	// Round-trip through JSON to get the plain map the document type needs
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool schema: %w", err)
	}
	var schemaMap map[string]interface{}
	if err := json.Unmarshal(raw, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to decode tool schema: %w", err)
	}

	return &types.ToolMemberToolSpec{
		Value: types.ToolSpecification{
			Name:        aws.String(name),
			Description: aws.String(description),
			InputSchema: &types.ToolInputSchemaMemberJson{
				Value: document.NewLazyDocument(schemaMap),
			},
		},
	}, nil
}

// Tools collects tool definitions into the slice InvokeRequest expects,
// so callers outside this package never name the SDK types
func Tools(tools ...types.Tool) []types.Tool {
	return tools
}

// ForceTool builds a tool choice that forces the model to call the named tool
func ForceTool(name string) types.ToolChoice {
	return &types.ToolChoiceMemberTool{
		Value: types.SpecificToolChoice{
			Name: aws.String(name),
		},
	}
}

// ExtractToolResult finds the first tool-use block in the response content,
// decodes its input into out, and validates required fields.
func ExtractToolResult(content []types.ContentBlock, out interface{}) error {
	for _, block := range content {
		toolUse, ok := block.(*types.ContentBlockMemberToolUse)
		if !ok {
			continue
		}
		if toolUse.Value.Input == nil {
			return &ValidationError{Message: "tool output validation failed", Err: fmt.Errorf("tool use block has no input")}
		}
		if err := toolUse.Value.Input.UnmarshalSmithyDocument(out); err != nil {
			return &ValidationError{Message: "tool output validation failed", Err: err}
		}
		if err := validate.Struct(out); err != nil {
			return &ValidationError{Message: "tool output validation failed", Err: err}
		}
		return nil
	}
	return &ValidationError{Message: "no tool use found in response"}
}

// ToolUseName returns the name of the first tool-use block in the content,
// or empty when none exists. Used for logging.
func ToolUseName(content []types.ContentBlock) string {
	for _, block := range content {
		if toolUse, ok := block.(*types.ContentBlockMemberToolUse); ok {
			return aws.ToString(toolUse.Value.Name)
		}
	}
	return ""
}
