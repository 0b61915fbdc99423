// Package anthropic implements the Model port with the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
)

// Ensure Model implements the interface.
var _ driven.Model = (*Model)(nil)

// Default configuration values.
const (
	DefaultModel     = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens = 4096
	DefaultTimeout   = 120 * time.Second
)

// schemaInstruction is appended to the system prompt when a request
// carries a schema.
const schemaInstruction = `

Respond with a single JSON value that validates against this JSON Schema. Do not add prose or code fences.
%s`

// Config holds configuration for the Anthropic model.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL overrides the API base URL.
	BaseURL string

	// Model is the model id (default: claude-sonnet-4-5-20250929).
	Model string

	// MaxTokens caps the answer length (default: 4096).
	MaxTokens int64

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// Model sends one message per inference and returns the JSON text.
type Model struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// New creates an Anthropic-backed model. SDK retries are disabled: a failed
// call is reported to the caller, never repeated.
func New(cfg Config) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", domain.ErrModelUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Model{
		client:    sdk.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Infer sends the request and returns the answer with any code fences or
// surrounding prose removed.
func (m *Model) Infer(ctx context.Context, req driven.InferRequest) (string, error) {
	system := req.System
	if req.Schema != "" {
		system += fmt.Sprintf(schemaInstruction, req.Schema)
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(m.model),
		MaxTokens: m.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(mapError(err), "anthropic: create message")
	}

	logger.Debug("Model %s used %d input / %d output tokens", m.model, msg.Usage.InputTokens, msg.Usage.OutputTokens)

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: empty response (stop reason %s)", domain.ErrMalformedModelOutput, msg.StopReason)
	}
	return cleanJSON(text.String()), nil
}

// mapError classifies API failures into domain errors. A rejected key is
// both an auth failure and an unusable model.
func mapError(err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w: %s", domain.ErrModelUnavailable, domain.ErrAuthInvalid, http.StatusText(apiErr.StatusCode))
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, http.StatusText(apiErr.StatusCode))
	default:
		return err
	}
}

// cleanJSON strips markdown fences and extracts the outermost JSON object
// or array.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return strings.TrimSpace(text)
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(text, closer); end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
