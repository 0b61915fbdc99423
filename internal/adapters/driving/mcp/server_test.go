package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil sync service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSyncService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Sync: &mockSyncOrchestrator{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("sync only is valid", func(t *testing.T) {
		ports := &Ports{Sync: &mockSyncOrchestrator{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Sync:     &mockSyncOrchestrator{},
			Resolver: &mockResolver{},
			Ledger:   &mockLedgerService{},
			Rules:    &mockRuleService{},
		}
		assert.NoError(t, ports.Validate())
	})
}
