package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

func TestKeyedModel_PrefersStoredKey(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse(`{}`))
	}))
	t.Cleanup(srv.Close)

	stored := "stored-key"
	model := NewKeyed(Config{APIKey: "config-key", BaseURL: srv.URL}, func(context.Context) (string, error) {
		return stored, nil
	})

	_, err := model.Infer(context.Background(), driven.InferRequest{Prompt: "a"})
	require.NoError(t, err)

	stored = ""
	_, err = model.Infer(context.Background(), driven.InferRequest{Prompt: "b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"stored-key", "config-key"}, seen)
}

func TestKeyedModel_ReusesClient(t *testing.T) {
	model := NewKeyed(Config{APIKey: "config-key"}, nil)

	first, err := model.current(context.Background())
	require.NoError(t, err)
	second, err := model.current(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestKeyedModel_NoKey(t *testing.T) {
	model := NewKeyed(Config{}, func(context.Context) (string, error) { return "", nil })

	_, err := model.Infer(context.Background(), driven.InferRequest{Prompt: "a"})
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestKeyedModel_LookupFailure(t *testing.T) {
	lookupErr := errors.New("settings unreachable")
	model := NewKeyed(Config{APIKey: "config-key"}, func(context.Context) (string, error) {
		return "", lookupErr
	})

	_, err := model.Infer(context.Background(), driven.InferRequest{Prompt: "a"})
	assert.ErrorIs(t, err, lookupErr)
}
