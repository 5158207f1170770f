package secondary

import (
	"context"
	"errors"
)

// Ledger defines the secondary port for the external wallet ledger.
// Implementations must be safe for concurrent QueryStatus calls.
type Ledger interface {
	// Available reports whether a wallet session is connected.
	Available() bool

	// SubmitTransfer sends amount of asset to destination.
	// Fails with ErrTransferRejected for amount <= 0, empty destination or a
	// disconnected wallet.
	SubmitTransfer(ctx context.Context, destination, asset, amount string) (*TransferReceipt, error)

	// QueryStatus reads the settlement status. Idempotent.
	QueryStatus(ctx context.Context, settlementID string) (SettlementStatus, error)
}

// TransferReceipt is the ledger's answer to a submitted transfer.
type TransferReceipt struct {
	TransferRef  string // opaque reference, durable record key
	SettlementID string // may be empty when the backend has no status endpoint
}

// SettlementStatus is the ledger-side status of a transfer.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementSuccess SettlementStatus = "success"
	SettlementFailed  SettlementStatus = "failed"
)

// IsTerminal reports whether the status ends polling.
func (s SettlementStatus) IsTerminal() bool {
	return s == SettlementSuccess || s == SettlementFailed
}

// ErrTransferRejected is returned by ledgers that refuse a transfer up front.
var ErrTransferRejected = errors.New("transfer rejected")
