package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/andres-erbsen/clock"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/example/pickup/internal/ports/secondary"
)

const testDestination = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure mocks implement the interfaces
var (
	_ secondary.Ledger          = (*mockLedger)(nil)
	_ secondary.KeyValueStore   = (*mockKeyValueStore)(nil)
	_ secondary.AgentDirectory  = (*mockAgentDirectory)(nil)
	_ secondary.EventPublisher  = (*mockPublisher)(nil)
	_ secondary.OutcomeRecorder = (*mockRecorder)(nil)
)

// mockLedger implements secondary.Ledger for testing.
// Statuses are served in order; the last one repeats.
type mockLedger struct {
	mu          sync.Mutex
	available   bool
	receipt     *secondary.TransferReceipt
	submitErr   error
	statuses    []secondary.SettlementStatus
	queryErrs   []error
	submitCalls int
	queryCalls  int
	lastAmount  string
	lastDest    string
}

func newMockLedger(statuses ...secondary.SettlementStatus) *mockLedger {
	return &mockLedger{
		available: true,
		receipt:   &secondary.TransferReceipt{TransferRef: "tx-001", SettlementID: "tx-001"},
		statuses:  statuses,
	}
}

func (m *mockLedger) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

func (m *mockLedger) SubmitTransfer(ctx context.Context, destination, asset, amount string) (*secondary.TransferReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitCalls++
	m.lastAmount = amount
	m.lastDest = destination
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.receipt == nil {
		return nil, nil
	}
	r := *m.receipt
	return &r, nil
}

func (m *mockLedger) QueryStatus(ctx context.Context, settlementID string) (secondary.SettlementStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.queryCalls
	m.queryCalls++
	if i < len(m.queryErrs) && m.queryErrs[i] != nil {
		return "", m.queryErrs[i]
	}
	if len(m.statuses) == 0 {
		return secondary.SettlementPending, nil
	}
	if i >= len(m.statuses) {
		i = len(m.statuses) - 1
	}
	return m.statuses[i], nil
}

func (m *mockLedger) Queries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

func (m *mockLedger) Submits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitCalls
}

// mockKeyValueStore implements secondary.KeyValueStore for testing.
type mockKeyValueStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
	sets   int
}

func newMockKeyValueStore() *mockKeyValueStore {
	return &mockKeyValueStore{values: make(map[string]string)}
}

func (m *mockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mockKeyValueStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockKeyValueStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// mockAgentDirectory implements secondary.AgentDirectory for testing.
type mockAgentDirectory struct {
	agents  []*secondary.AgentRecord
	listErr error
}

func newMockAgentDirectory() *mockAgentDirectory {
	return &mockAgentDirectory{
		agents: []*secondary.AgentRecord{
			{ID: "1", Name: "MoneyMart Financial Center", Address: "123 Main St, Downtown", Distance: "0.3 mi", Hours: "9:00 AM - 8:00 PM", IsOpen: true, Lat: 40.7128, Lng: -74.006},
			{ID: "2", Name: "CityCash Services", Address: "456 Oak Ave, Midtown", Distance: "0.7 mi", Hours: "8:00 AM - 10:00 PM", IsOpen: true, Lat: 40.7148, Lng: -74.0026},
		},
	}
}

func (m *mockAgentDirectory) List(ctx context.Context) ([]*secondary.AgentRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.agents, nil
}

func (m *mockAgentDirectory) GetByID(ctx context.Context, id string) (*secondary.AgentRecord, error) {
	for _, a := range m.agents {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.New("agent not found")
}

// mockPublisher implements secondary.EventPublisher for testing.
type mockPublisher struct {
	mu     sync.Mutex
	events []secondary.DomainEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, event secondary.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockPublisher) Events() []secondary.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]secondary.DomainEvent(nil), m.events...)
}

// mockRecorder implements secondary.OutcomeRecorder for testing.
type mockRecorder struct {
	mu          sync.Mutex
	submissions map[string]int
	queries     map[string]int
	outcomes    map[string]int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		submissions: make(map[string]int),
		queries:     make(map[string]int),
		outcomes:    make(map[string]int),
	}
}

func (m *mockRecorder) RecordSubmission(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[result]++
}

func (m *mockRecorder) RecordPollQuery(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[result]++
}

func (m *mockRecorder) RecordOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *mockRecorder) Outcomes(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[outcome]
}

func (m *mockRecorder) Submissions(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submissions[result]
}

// ============================================================================
// Fixtures
// ============================================================================

func newTestLogger() (*logrus.Logger, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

type orchestratorFixture struct {
	orc       *PickupOrchestrator
	ledger    *mockLedger
	kv        *mockKeyValueStore
	store     *KVRequestStore
	publisher *mockPublisher
	recorder  *mockRecorder
	clock     *clock.Mock
	hook      *logtest.Hook
}

func newOrchestratorFixture(t *testing.T, ledger *mockLedger, pollCfg PollerConfig) *orchestratorFixture {
	t.Helper()

	log, hook := newTestLogger()
	clk := clock.NewMock()
	kv := newMockKeyValueStore()
	store := NewKVRequestStore(kv, RequestStoreKey, log)
	publisher := &mockPublisher{}
	recorder := newMockRecorder()
	poller := NewSettlementPoller(ledger, clk, pollCfg, recorder, log)

	orc := NewPickupOrchestrator(ledger, poller, store, newMockAgentDirectory(), publisher, recorder, clk, OrchestratorConfig{
		Destination: testDestination,
		Asset:       "usdc",
	}, log)
	t.Cleanup(func() { _ = orc.Close() })

	return &orchestratorFixture{
		orc:       orc,
		ledger:    ledger,
		kv:        kv,
		store:     store,
		publisher: publisher,
		recorder:  recorder,
		clock:     clk,
		hook:      hook,
	}
}
