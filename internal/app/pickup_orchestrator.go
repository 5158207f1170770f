package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/pickup/internal/core/effects"
	"github.com/example/pickup/internal/core/proof"
	"github.com/example/pickup/internal/core/transfer"
	"github.com/example/pickup/internal/ctxutil"
	"github.com/example/pickup/internal/ports/primary"
	"github.com/example/pickup/internal/ports/secondary"
)

// DefaultDisplayWindow is how long success and error states are held before
// returning to idle.
const DefaultDisplayWindow = 3 * time.Second

// CompletionEvent is the domain event published on terminal success.
const CompletionEvent = "offramp:success"

// OrchestratorConfig configures the pickup orchestrator.
type OrchestratorConfig struct {
	Destination   string
	Asset         string
	DisplayWindow time.Duration
}

// PickupOrchestrator implements primary.PickupService.
// It owns the single active transfer request and drives it through the
// transfer state machine. Every mutation happens under mu; callbacks from
// timers and poll sessions carry the generation they were armed for and are
// dropped once it is stale.
type PickupOrchestrator struct {
	ledger    secondary.Ledger
	poller    *SettlementPoller
	store     secondary.RequestStore
	agents    secondary.AgentDirectory
	publisher secondary.EventPublisher
	recorder  secondary.OutcomeRecorder
	clock     clock.Clock
	cfg       OrchestratorConfig
	log       logrus.FieldLogger
	validate  *validator.Validate

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu           sync.Mutex
	state        transfer.State
	generation   uint64
	active       *primary.ActivePickup
	agent        *secondary.AgentRecord
	outcome      transfer.Outcome
	errReason    string
	record       *secondary.PickupRecord
	session      *PollSession
	displayTimer *clock.Timer
	changed      chan struct{}
	closed       bool
}

// NewPickupOrchestrator creates a new PickupOrchestrator with injected dependencies.
func NewPickupOrchestrator(
	ledger secondary.Ledger,
	poller *SettlementPoller,
	store secondary.RequestStore,
	agents secondary.AgentDirectory,
	publisher secondary.EventPublisher,
	recorder secondary.OutcomeRecorder,
	clk clock.Clock,
	cfg OrchestratorConfig,
	log logrus.FieldLogger,
) *PickupOrchestrator {
	if cfg.DisplayWindow <= 0 {
		cfg.DisplayWindow = DefaultDisplayWindow
	}
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &PickupOrchestrator{
		ledger:     ledger,
		poller:     poller,
		store:      store,
		agents:     agents,
		publisher:  publisher,
		recorder:   recorder,
		clock:      clk,
		cfg:        cfg,
		log:        log,
		validate:   validator.New(),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		state:      transfer.InitialState(),
		changed:    make(chan struct{}),
	}
}

// Submit validates a pickup request and, if accepted, submits the transfer and
// starts settlement polling.
func (o *PickupOrchestrator) Submit(ctx context.Context, req primary.SubmitPickupRequest) (*primary.PickupStatus, error) {
	requestID := ctxutil.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := o.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"agent_id":   req.AgentID,
		"amount":     req.Amount,
	})

	agent := o.lookupAgent(ctx, req.AgentID)
	structErr := o.validate.Struct(req)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, errors.New("pickup service is closed")
	}

	if o.state != transfer.StateIdle {
		_, err := transfer.Apply(o.state, transfer.EventSubmitAccepted)
		status := o.snapshotLocked()
		o.mu.Unlock()
		o.recorder.RecordSubmission("illegal")
		log.WithField("state", status.State).Warn("submit rejected: transfer already active")
		return status, err
	}

	guard := transfer.CanSubmit(transfer.SubmitContext{
		CurrentState:          o.state,
		AmountInput:           req.Amount,
		AgentID:               req.AgentID,
		AgentKnown:            agent != nil,
		DestinationConfigured: strings.TrimSpace(o.cfg.Destination) != "",
		DestinationValid:      common.IsHexAddress(o.cfg.Destination),
		WalletAvailable:       o.ledger.Available(),
	})
	if guard.Allowed && structErr != nil {
		guard = transfer.GuardResult{Allowed: false, Reason: fmt.Sprintf("invalid request: %v", structErr)}
	}

	o.generation++
	gen := o.generation

	if !guard.Allowed {
		o.errReason = guard.Reason
		o.applyLocked(transfer.EventSubmitRejected, gen)
		status := o.snapshotLocked()
		o.mu.Unlock()
		o.recorder.RecordSubmission("rejected")
		log.WithField("reason", guard.Reason).Info("pickup request rejected")
		return status, fmt.Errorf("%w: %s", primary.ErrValidation, guard.Reason)
	}

	// Guard already parsed the amount.
	amount, _ := transfer.ParseAmount(req.Amount)
	o.agent = agent
	o.active = &primary.ActivePickup{
		RequestID:   requestID,
		Amount:      amount,
		Agent:       agentRecordToAgent(agent),
		SubmittedAt: o.clock.Now(),
	}
	o.applyLocked(transfer.EventSubmitAccepted, gen)
	o.mu.Unlock()

	log.Info("submitting transfer")
	receipt, err := o.ledger.SubmitTransfer(ctx, o.cfg.Destination, o.cfg.Asset, strconv.FormatFloat(amount, 'f', -1, 64))
	if err == nil {
		err = normalizeReceipt(receipt)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation || o.state != transfer.StateProcessing {
		log.Warn("session invalidated while the transfer was being submitted")
		return o.snapshotLocked(), fmt.Errorf("%w: session invalidated during submission", primary.ErrSubmission)
	}

	if err != nil {
		o.errReason = err.Error()
		o.applyLocked(transfer.EventSubmitFailed, gen)
		o.recorder.RecordSubmission("ledger_error")
		log.WithError(err).Warn("ledger rejected transfer")
		return o.snapshotLocked(), fmt.Errorf("%w: %v", primary.ErrSubmission, err)
	}

	o.recorder.RecordSubmission("accepted")
	o.active.TransferRef = receipt.TransferRef
	o.active.SettlementID = receipt.SettlementID
	log = log.WithFields(logrus.Fields{
		"transfer_ref":  receipt.TransferRef,
		"settlement_id": receipt.SettlementID,
	})

	if receipt.SettlementID == "" {
		outcome := o.poller.TimeoutOutcome()
		log.WithField("outcome", string(outcome)).Warn("ledger returned no settlement id, resolving without polling")
		o.resolveLocked(outcome, gen)
		return o.snapshotLocked(), nil
	}

	log.Info("transfer submitted, polling for settlement")
	o.session = o.poller.Start(o.baseCtx, receipt.SettlementID, func(outcome transfer.Outcome) {
		o.onOutcome(gen, outcome)
	})

	return o.snapshotLocked(), nil
}

// Status returns a snapshot of the state machine.
func (o *PickupOrchestrator) Status(ctx context.Context) *primary.PickupStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Wait blocks until the machine is not processing or ctx is done.
func (o *PickupOrchestrator) Wait(ctx context.Context) (*primary.PickupStatus, error) {
	for {
		o.mu.Lock()
		if o.state != transfer.StateProcessing {
			status := o.snapshotLocked()
			o.mu.Unlock()
			return status, nil
		}
		changed := o.changed
		o.mu.Unlock()

		select {
		case <-ctx.Done():
			return o.Status(ctx), ctx.Err()
		case <-changed:
		}
	}
}

// ListCompleted returns completed pickups, most recent first.
func (o *PickupOrchestrator) ListCompleted(ctx context.Context) ([]*primary.CompletedPickup, error) {
	records := o.store.Load(ctx)
	out := make([]*primary.CompletedPickup, len(records))
	for i, r := range records {
		out[i] = recordToCompleted(r)
	}
	return out, nil
}

// GetCompleted returns one completed pickup by id.
func (o *PickupOrchestrator) GetCompleted(ctx context.Context, id string) (*primary.CompletedPickup, error) {
	for _, r := range o.store.Load(ctx) {
		if r.ID == id {
			return recordToCompleted(r), nil
		}
	}
	return nil, fmt.Errorf("%w: pickup %s", primary.ErrNotFound, id)
}

// InvalidateSession cancels polling. An unresolved transfer degrades to idle
// without creating a durable record; a latched outcome is left to its display window.
func (o *PickupOrchestrator) InvalidateSession(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.abandonLocked("wallet session invalidated")
}

// Close tears down every timer and poll session. Further submissions fail.
func (o *PickupOrchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	o.abandonLocked("pickup service closed")
	o.cancelSessionLocked()
	o.stopDisplayTimerLocked()
	o.generation++
	o.baseCancel()
	o.notifyLocked()
	return nil
}

func (o *PickupOrchestrator) abandonLocked(reason string) {
	if o.state != transfer.StateProcessing {
		o.cancelSessionLocked()
		return
	}
	ref := ""
	if o.active != nil {
		ref = o.active.TransferRef
	}
	o.generation++
	o.applyLocked(transfer.EventAbandoned, o.generation)
	o.log.WithField("transfer_ref", ref).Warn(reason + ", unresolved transfer abandoned")
}

func (o *PickupOrchestrator) onOutcome(gen uint64, outcome transfer.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation || o.state != transfer.StateProcessing {
		o.log.WithField("outcome", string(outcome)).Debug("dropping stale settlement report")
		return
	}
	o.resolveLocked(outcome, gen)
}

func (o *PickupOrchestrator) onDisplayElapsed(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}
	o.displayTimer = nil
	o.applyLocked(transfer.EventDisplayElapsed, gen)
}

func (o *PickupOrchestrator) resolveLocked(outcome transfer.Outcome, gen uint64) {
	o.outcome = outcome
	o.recorder.RecordOutcome(string(outcome))

	entry := o.log.WithFields(logrus.Fields{
		"request_id":   o.active.RequestID,
		"transfer_ref": o.active.TransferRef,
		"outcome":      string(outcome),
	})
	switch {
	case outcome.Succeeded() && outcome.Presumed():
		entry.Warn("settlement presumed successful after deadline")
	case outcome.Succeeded():
		entry.Info("settlement confirmed")
	default:
		o.errReason = "settlement " + string(outcome)
		entry.Warn("settlement did not complete")
	}

	o.applyLocked(transfer.EventForOutcome(outcome), gen)
}

// applyLocked runs an event through the transition table and interprets the
// resulting effects. Illegal transitions are logged and ignored.
func (o *PickupOrchestrator) applyLocked(event transfer.Event, gen uint64) {
	result, err := transfer.Apply(o.state, event)
	if err != nil {
		o.log.WithError(err).Debug("ignoring event")
		return
	}
	o.state = result.To
	for _, eff := range result.Effects {
		o.executeLocked(eff, gen)
	}
	o.notifyLocked()
}

func (o *PickupOrchestrator) executeLocked(eff effects.Effect, gen uint64) {
	switch typed := eff.(type) {
	case effects.PollEffect:
		if typed.Operation == "cancel" {
			o.cancelSessionLocked()
		}
	case effects.PersistEffect:
		o.persistLocked()
	case effects.EmitEffect:
		o.emitLocked(typed.Event)
	case effects.ScheduleEffect:
		o.armDisplayTimerLocked(gen)
	case effects.ClearEffect:
		o.active = nil
		o.agent = nil
		o.outcome = ""
		o.errReason = ""
		o.record = nil
	default:
		o.log.Errorf("unknown effect type: %T", eff)
	}
}

func (o *PickupOrchestrator) persistLocked() {
	if o.active == nil || o.agent == nil {
		return
	}
	agent := *o.agent
	record := &secondary.PickupRecord{
		ID:          o.active.TransferRef,
		Agent:       agent,
		Amount:      o.active.Amount,
		TransferRef: o.active.TransferRef,
		CreatedAt:   o.clock.Now().UTC(),
		ProofPayload: proof.Encode(o.active.TransferRef, proof.Agent{
			ID:      agent.ID,
			Name:    agent.Name,
			Address: agent.Address,
		}, o.active.Amount),
	}
	o.record = record
	if !o.store.Append(o.baseCtx, record) {
		o.log.WithField("transfer_ref", record.ID).Warn("pickup record already stored, keeping the original")
	}
}

func (o *PickupOrchestrator) emitLocked(name string) {
	if o.active == nil {
		return
	}
	event := secondary.DomainEvent{
		ID:         uuid.NewString(),
		Name:       name,
		Amount:     o.active.Amount,
		OccurredAt: o.clock.Now().UTC(),
	}
	if err := o.publisher.Publish(o.baseCtx, event); err != nil {
		o.log.WithError(err).WithField("event", name).Debug("event publish failed")
	}
}

func (o *PickupOrchestrator) armDisplayTimerLocked(gen uint64) {
	o.stopDisplayTimerLocked()
	o.displayTimer = o.clock.AfterFunc(o.cfg.DisplayWindow, func() {
		o.onDisplayElapsed(gen)
	})
}

func (o *PickupOrchestrator) stopDisplayTimerLocked() {
	if o.displayTimer != nil {
		o.displayTimer.Stop()
		o.displayTimer = nil
	}
}

func (o *PickupOrchestrator) cancelSessionLocked() {
	if o.session != nil {
		o.session.Cancel()
		o.session = nil
	}
}

func (o *PickupOrchestrator) notifyLocked() {
	close(o.changed)
	o.changed = make(chan struct{})
}

func (o *PickupOrchestrator) snapshotLocked() *primary.PickupStatus {
	status := &primary.PickupStatus{
		State:   string(o.state),
		Outcome: string(o.outcome),
		Error:   o.errReason,
	}
	if o.active != nil {
		active := *o.active
		status.Request = &active
	}
	if o.record != nil {
		status.Record = recordToCompleted(o.record)
	}
	return status
}

func (o *PickupOrchestrator) lookupAgent(ctx context.Context, agentID string) *secondary.AgentRecord {
	if strings.TrimSpace(agentID) == "" {
		return nil
	}
	agent, err := o.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil
	}
	return agent
}

// Helper methods

// normalizeReceipt falls back to the settlement id when the ledger omits a
// transfer reference. A receipt with neither is an error.
func normalizeReceipt(receipt *secondary.TransferReceipt) error {
	if receipt == nil {
		return errors.New("ledger returned no receipt")
	}
	if receipt.TransferRef == "" {
		receipt.TransferRef = receipt.SettlementID
	}
	if receipt.TransferRef == "" {
		return errors.New("ledger returned no transfer reference")
	}
	return nil
}

func agentRecordToAgent(r *secondary.AgentRecord) *primary.Agent {
	if r == nil {
		return nil
	}
	return &primary.Agent{
		ID:        r.ID,
		Name:      r.Name,
		Address:   r.Address,
		Hours:     r.Hours,
		Distance:  r.Distance,
		Open:      r.IsOpen,
		Latitude:  r.Lat,
		Longitude: r.Lng,
	}
}

func recordToCompleted(r *secondary.PickupRecord) *primary.CompletedPickup {
	agent := r.Agent
	return &primary.CompletedPickup{
		ID:           r.ID,
		Agent:        agentRecordToAgent(&agent),
		Amount:       r.Amount,
		TransferRef:  r.TransferRef,
		CreatedAt:    r.CreatedAt,
		ProofPayload: r.ProofPayload,
	}
}

// Ensure PickupOrchestrator implements the interface
var _ primary.PickupService = (*PickupOrchestrator)(nil)
