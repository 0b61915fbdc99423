package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

func TestInitCmd_CreatesLedger(t *testing.T) {
	ts := setupTestServices(t)
	ts.provisioner.created = true

	out, err := execute(t, "", "init")

	require.NoError(t, err)
	assert.Equal(t, "OmniTicket_DB", ts.provisioner.title)
	assert.Contains(t, out, `Created ledger "OmniTicket_DB" (sheet-123)`)
	require.NotNil(t, ts.session.session)
	assert.Equal(t, "sheet-123", ts.session.session.SpreadsheetID)
}

func TestInitCmd_ExistingLedgerKeepsToken(t *testing.T) {
	ts := setupTestServices(t)
	ts.session.session = &driven.Session{AccessToken: "tok", SpreadsheetID: "old"}

	out, err := execute(t, "", "init")

	require.NoError(t, err)
	assert.Contains(t, out, "Using existing ledger")
	assert.Equal(t, "tok", ts.session.session.AccessToken)
	assert.Equal(t, "sheet-123", ts.session.session.SpreadsheetID)
}

func TestInitCmd_SameIDSkipsSave(t *testing.T) {
	ts := setupTestServices(t)
	ts.session.session = &driven.Session{SpreadsheetID: "sheet-123"}

	_, err := execute(t, "", "init")

	require.NoError(t, err)
	assert.Zero(t, ts.session.saves)
}

func TestInitCmd_ProvisionFailure(t *testing.T) {
	ts := setupTestServices(t)
	ts.provisioner.err = errBoom

	_, err := execute(t, "", "init")

	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, ts.session.saves)
}

func TestInitCmd_NotConfigured(t *testing.T) {
	clearServices(t)

	_, err := execute(t, "", "init")
	assert.EqualError(t, err, "provisioner not configured")
}
