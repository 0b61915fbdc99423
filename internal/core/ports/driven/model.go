package driven

import "context"

// InferRequest is one call to the AI model.
type InferRequest struct {
	// System carries standing instructions for the model.
	System string

	// Prompt is the user payload.
	Prompt string

	// Schema is the JSON Schema the answer must satisfy.
	Schema string
}

// Model is the hosted AI model treated as a black box.
// Infer returns raw JSON text; callers own parsing and validation.
type Model interface {
	Infer(ctx context.Context, req InferRequest) (string, error)
}
