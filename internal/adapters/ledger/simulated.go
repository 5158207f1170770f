package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/example/pickup/internal/ports/secondary"
)

// SimulatedConfig configures the simulated ledger.
type SimulatedConfig struct {
	// PendingPolls is how many status queries report pending before the final status.
	PendingPolls int

	// Final is the status reported once PendingPolls are used up (default success).
	Final secondary.SettlementStatus

	// OmitSettlementID leaves SettlementID empty in receipts.
	OmitSettlementID bool

	// Disconnected makes Available report false.
	Disconnected bool
}

// SimulatedLedger settles transfers locally without any network.
// Implements secondary.Ledger.
type SimulatedLedger struct {
	cfg SimulatedConfig

	mu      sync.Mutex
	queries map[string]int
}

// NewSimulatedLedger creates a new SimulatedLedger.
func NewSimulatedLedger(cfg SimulatedConfig) *SimulatedLedger {
	if cfg.Final == "" {
		cfg.Final = secondary.SettlementSuccess
	}
	return &SimulatedLedger{
		cfg:     cfg,
		queries: make(map[string]int),
	}
}

// Available reports whether the simulated wallet is connected.
func (l *SimulatedLedger) Available() bool {
	return !l.cfg.Disconnected
}

// SubmitTransfer accepts the transfer and hands out a hash-shaped reference.
func (l *SimulatedLedger) SubmitTransfer(ctx context.Context, destination, asset, amount string) (*secondary.TransferReceipt, error) {
	if err := checkTransfer(l.Available(), destination, amount); err != nil {
		return nil, err
	}

	id := uuid.New()
	receipt := &secondary.TransferReceipt{
		TransferRef: common.BytesToHash(id[:]).Hex(),
	}
	if !l.cfg.OmitSettlementID {
		receipt.SettlementID = id.String()

		l.mu.Lock()
		l.queries[receipt.SettlementID] = 0
		l.mu.Unlock()
	}
	return receipt, nil
}

// QueryStatus reports pending for the configured number of queries, then the final status.
func (l *SimulatedLedger) QueryStatus(ctx context.Context, settlementID string) (secondary.SettlementStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.queries[settlementID]
	if !ok {
		return "", fmt.Errorf("unknown settlement %s", settlementID)
	}
	l.queries[settlementID] = n + 1

	if n < l.cfg.PendingPolls {
		return secondary.SettlementPending, nil
	}
	return l.cfg.Final, nil
}

// Ensure SimulatedLedger implements the interface
var _ secondary.Ledger = (*SimulatedLedger)(nil)
