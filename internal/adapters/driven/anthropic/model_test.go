package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

func messageResponse(text string) map[string]any {
	return map[string]any{
		"id":   "msg_test",
		"type": "message",
		"role": "assistant",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"model":       DefaultModel,
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 12, "output_tokens": 7},
	}
}

func newTestModel(t *testing.T, handler http.HandlerFunc) *Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	model, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return model
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestModel_Infer(t *testing.T) {
	var body map[string]any
	model := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse("```json\n{\"tienda\": \"Shop\"}\n```"))
	})

	out, err := model.Infer(context.Background(), driven.InferRequest{
		System: "Extract receipts.",
		Prompt: "receipt text",
		Schema: `{"type":"object"}`,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"tienda": "Shop"}`, out)

	assert.Equal(t, DefaultModel, body["model"])
	assert.Equal(t, float64(DefaultMaxTokens), body["max_tokens"])
	system := body["system"].([]any)[0].(map[string]any)["text"].(string)
	assert.Contains(t, system, "Extract receipts.")
	assert.Contains(t, system, `{"type":"object"}`)
	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
}

func TestModel_InferArrayAnswer(t *testing.T) {
	model := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse(`Here you go: [{"original":"A","simplificado":"a"}] done`))
	})

	out, err := model.Infer(context.Background(), driven.InferRequest{Prompt: "List:\nA"})
	require.NoError(t, err)
	assert.Equal(t, `[{"original":"A","simplificado":"a"}]`, out)
}

func TestModel_InferEmptyAnswer(t *testing.T) {
	model := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := messageResponse("")
		resp["content"] = []map[string]any{}
		_ = json.NewEncoder(w).Encode(resp)
	})

	_, err := model.Infer(context.Background(), driven.InferRequest{Prompt: "x"})
	assert.ErrorIs(t, err, domain.ErrMalformedModelOutput)
}

func TestModel_InferErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   []error
	}{
		{"unauthorised", http.StatusUnauthorized, []error{domain.ErrModelUnavailable, domain.ErrAuthInvalid}},
		{"forbidden", http.StatusForbidden, []error{domain.ErrModelUnavailable, domain.ErrAuthInvalid}},
		{"rate limited", http.StatusTooManyRequests, []error{domain.ErrRateLimited}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			model := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"nope"}}`))
			})

			_, err := model.Infer(context.Background(), driven.InferRequest{Prompt: "x"})
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
			assert.Equal(t, 1, calls)
		})
	}
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1,2]\n```", `[1,2]`},
		{`Sure! {"a":{"b":2}} Hope that helps`, `{"a":{"b":2}}`},
		{`  [ {"x": 1} ]  `, `[ {"x": 1} ]`},
		{`no json here`, `no json here`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanJSON(tt.in), tt.in)
	}
}
