package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/pickup/internal/ports/secondary"
)

func TestSimulatedLedger_SettlesAfterPendingPolls(t *testing.T) {
	ledger := NewSimulatedLedger(SimulatedConfig{PendingPolls: 2})
	ctx := context.Background()

	receipt, err := ledger.SubmitTransfer(ctx, testRecipient, "usdc", "10")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(receipt.TransferRef, "0x"))
	require.Len(t, receipt.TransferRef, 66)
	require.NotEmpty(t, receipt.SettlementID)

	for i := 0; i < 2; i++ {
		status, err := ledger.QueryStatus(ctx, receipt.SettlementID)
		require.NoError(t, err)
		require.Equal(t, secondary.SettlementPending, status)
	}
	status, err := ledger.QueryStatus(ctx, receipt.SettlementID)
	require.NoError(t, err)
	require.Equal(t, secondary.SettlementSuccess, status)

	// Terminal status is stable.
	status, _ = ledger.QueryStatus(ctx, receipt.SettlementID)
	require.Equal(t, secondary.SettlementSuccess, status)
}

func TestSimulatedLedger_FinalFailure(t *testing.T) {
	ledger := NewSimulatedLedger(SimulatedConfig{Final: secondary.SettlementFailed})
	receipt, err := ledger.SubmitTransfer(context.Background(), testRecipient, "usdc", "10")
	require.NoError(t, err)

	status, err := ledger.QueryStatus(context.Background(), receipt.SettlementID)
	require.NoError(t, err)
	require.Equal(t, secondary.SettlementFailed, status)
}

func TestSimulatedLedger_OmitSettlementID(t *testing.T) {
	ledger := NewSimulatedLedger(SimulatedConfig{OmitSettlementID: true})
	receipt, err := ledger.SubmitTransfer(context.Background(), testRecipient, "usdc", "10")
	require.NoError(t, err)
	require.Empty(t, receipt.SettlementID)
	require.NotEmpty(t, receipt.TransferRef)
}

func TestSimulatedLedger_Rejections(t *testing.T) {
	ctx := context.Background()

	_, err := NewSimulatedLedger(SimulatedConfig{Disconnected: true}).SubmitTransfer(ctx, testRecipient, "usdc", "10")
	require.ErrorIs(t, err, secondary.ErrTransferRejected)

	_, err = NewSimulatedLedger(SimulatedConfig{}).SubmitTransfer(ctx, testRecipient, "usdc", "0")
	require.ErrorIs(t, err, secondary.ErrTransferRejected)

	_, err = NewSimulatedLedger(SimulatedConfig{}).QueryStatus(ctx, "never-submitted")
	require.Error(t, err)
}

func TestSimulatedLedger_UniqueReferences(t *testing.T) {
	ledger := NewSimulatedLedger(SimulatedConfig{})
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		receipt, err := ledger.SubmitTransfer(context.Background(), testRecipient, "usdc", "1")
		require.NoError(t, err)
		require.False(t, seen[receipt.TransferRef])
		seen[receipt.TransferRef] = true
	}
}
