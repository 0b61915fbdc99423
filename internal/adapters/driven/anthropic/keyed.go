package anthropic

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

// Ensure KeyedModel implements the interface.
var _ driven.Model = (*KeyedModel)(nil)

// KeyFunc returns the API key for the next request. An empty key falls back
// to the configured one.
type KeyFunc func(ctx context.Context) (string, error)

// KeyedModel looks its API key up on every request and rebuilds the client
// when the key changes. A key stored in the ledger settings therefore takes
// effect on the next call.
type KeyedModel struct {
	cfg Config
	key KeyFunc

	mu      sync.Mutex
	model   *Model
	usedKey string
}

// NewKeyed creates a model whose key comes from key, then cfg.APIKey.
func NewKeyed(cfg Config, key KeyFunc) *KeyedModel {
	return &KeyedModel{cfg: cfg, key: key}
}

// Infer resolves the key and delegates to a Model built with it.
func (k *KeyedModel) Infer(ctx context.Context, req driven.InferRequest) (string, error) {
	m, err := k.current(ctx)
	if err != nil {
		return "", err
	}
	return m.Infer(ctx, req)
}

func (k *KeyedModel) current(ctx context.Context) (*Model, error) {
	var key string
	if k.key != nil {
		var err error
		if key, err = k.key(ctx); err != nil {
			return nil, eris.Wrap(err, "anthropic: looking up API key")
		}
	}
	if key == "" {
		key = k.cfg.APIKey
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.model != nil && k.usedKey == key {
		return k.model, nil
	}

	cfg := k.cfg
	cfg.APIKey = key
	m, err := New(cfg)
	if err != nil {
		return nil, err
	}
	k.model = m
	k.usedKey = key
	return m, nil
}
