package bedrock

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// ClientError is a client-side error (4xx). Never retried.
type ClientError struct {
	Message    string
	StatusCode int
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("bedrock client error (status %d): %s", e.StatusCode, e.Message)
}

// ServerError is a server-side error (5xx). Retryable.
type ServerError struct {
	Message    string
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("bedrock server error (status %d): %s", e.StatusCode, e.Message)
}

// ThrottlingError is a rate limiting error (429). Retryable.
type ThrottlingError struct {
	Message string
}

func (e *ThrottlingError) Error() string {
	return fmt.Sprintf("bedrock throttling: %s", e.Message)
}

// ValidationError indicates the model response did not match the expected
// tool schema. Never retried.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ConfigurationError indicates the client could not be constructed. Fatal.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Retryable reports whether an error is safe to retry. Only throttling and
// server errors qualify; anything unclassified fails closed.
func Retryable(err error) bool {
	var throttle *ThrottlingError
	var server *ServerError
	return errors.As(err, &throttle) || errors.As(err, &server)
}

// Classify maps SDK errors into the error taxonomy. Errors that are already
// classified pass through unchanged; errors that match nothing are returned
// as-is so the retryer fails closed on them.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var clientErr *ClientError
	var serverErr *ServerError
	var throttleErr *ThrottlingError
	var validationErr *ValidationError
	var configErr *ConfigurationError
	if errors.As(err, &clientErr) || errors.As(err, &serverErr) ||
		errors.As(err, &throttleErr) || errors.As(err, &validationErr) ||
		errors.As(err, &configErr) {
		return err
	}

	var throttling *types.ThrottlingException
	if errors.As(err, &throttling) {
		return &ThrottlingError{Message: err.Error()}
	}

	var validation *types.ValidationException
	if errors.As(err, &validation) {
		return &ClientError{Message: err.Error(), StatusCode: 400}
	}
	var accessDenied *types.AccessDeniedException
	if errors.As(err, &accessDenied) {
		return &ClientError{Message: err.Error(), StatusCode: 403}
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return &ClientError{Message: err.Error(), StatusCode: 404}
	}

	var internal *types.InternalServerException
	if errors.As(err, &internal) {
		return &ServerError{Message: err.Error(), StatusCode: 500}
	}
	var unavailable *types.ServiceUnavailableException
	if errors.As(err, &unavailable) {
		return &ServerError{Message: err.Error(), StatusCode: 503}
	}
	var modelErr *types.ModelErrorException
	if errors.As(err, &modelErr) {
		return &ServerError{Message: err.Error(), StatusCode: 500}
	}
	var modelTimeout *types.ModelTimeoutException
	if errors.As(err, &modelTimeout) {
		return &ServerError{Message: err.Error(), StatusCode: 504}
	}
	var modelNotReady *types.ModelNotReadyException
	if errors.As(err, &modelNotReady) {
		return &ServerError{Message: err.Error(), StatusCode: 503}
	}

	// Fall back to the HTTP status code when the typed match fails
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		status := respErr.HTTPStatusCode()
		switch {
		case status == 429:
			return &ThrottlingError{Message: err.Error()}
		case status >= 500:
			return &ServerError{Message: err.Error(), StatusCode: status}
		case status >= 400:
			return &ClientError{Message: err.Error(), StatusCode: status}
		}
	}

	return err
}
