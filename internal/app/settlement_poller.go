package app

import (
	"context"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/sirupsen/logrus"

	"github.com/example/pickup/internal/core/transfer"
	"github.com/example/pickup/internal/ports/secondary"
)

// Default poll budget.
const (
	DefaultPollInterval = 1 * time.Second
	DefaultPollDeadline = 60 * time.Second
)

// PollerConfig configures settlement polling.
type PollerConfig struct {
	Interval time.Duration
	Deadline time.Duration
	// OptimisticTimeout resolves an inconclusive deadline as success.
	OptimisticTimeout bool
}

// SettlementPoller drives repeated status queries for one settlement at a
// time and reports exactly one terminal outcome per session.
type SettlementPoller struct {
	ledger   secondary.Ledger
	clock    clock.Clock
	cfg      PollerConfig
	recorder secondary.OutcomeRecorder
	log      logrus.FieldLogger
}

// NewSettlementPoller creates a new SettlementPoller with injected dependencies.
// Zero durations fall back to the defaults.
func NewSettlementPoller(ledger secondary.Ledger, clk clock.Clock, cfg PollerConfig, recorder secondary.OutcomeRecorder, log logrus.FieldLogger) *SettlementPoller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = DefaultPollDeadline
	}
	return &SettlementPoller{
		ledger:   ledger,
		clock:    clk,
		cfg:      cfg,
		recorder: recorder,
		log:      log,
	}
}

// TimeoutOutcome returns the outcome this poller reports when the deadline elapses.
func (p *SettlementPoller) TimeoutOutcome() transfer.Outcome {
	return transfer.TimeoutOutcome(p.cfg.OptimisticTimeout)
}

// PollSession owns the ticker, deadline timer and goroutine of one poll run.
// Cancel stops all of them together.
type PollSession struct {
	settlementID string
	cancel       context.CancelFunc
	done         chan struct{}
	reportOnce   sync.Once
}

// Start begins polling settlementID. The ticker and deadline timer are armed
// before Start returns; the first query runs immediately on the session
// goroutine. report is called at most once, never after Cancel.
// An empty settlementID returns an already finished session that never reports.
func (p *SettlementPoller) Start(ctx context.Context, settlementID string, report func(transfer.Outcome)) *PollSession {
	sessCtx, cancel := context.WithCancel(ctx)
	s := &PollSession{
		settlementID: settlementID,
		cancel:       cancel,
		done:         make(chan struct{}),
	}

	if settlementID == "" {
		cancel()
		close(s.done)
		return s
	}

	ticker := p.clock.Ticker(p.cfg.Interval)
	deadline := p.clock.Timer(p.cfg.Deadline)

	go p.run(sessCtx, s, ticker, deadline, report)
	return s
}

func (p *SettlementPoller) run(ctx context.Context, s *PollSession, ticker *clock.Ticker, deadline *clock.Timer, report func(transfer.Outcome)) {
	defer close(s.done)

	stop := func() {
		ticker.Stop()
		deadline.Stop()
	}

	finish := func(outcome transfer.Outcome) {
		// Timers go first so nothing fires after the report.
		stop()
		s.reportOnce.Do(func() {
			if ctx.Err() != nil {
				return
			}
			report(outcome)
		})
	}

	if outcome, ok := p.query(ctx, s.settlementID); ok {
		finish(outcome)
		return
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-deadline.C:
			outcome := p.TimeoutOutcome()
			p.log.WithFields(logrus.Fields{
				"settlement_id": s.settlementID,
				"deadline":      p.cfg.Deadline.String(),
				"outcome":       string(outcome),
			}).Warn("settlement deadline elapsed without a terminal status")
			finish(outcome)
			return
		case <-ticker.C:
			if outcome, ok := p.query(ctx, s.settlementID); ok {
				finish(outcome)
				return
			}
		}
	}
}

// query performs one status read. ok is true when a terminal status was seen.
func (p *SettlementPoller) query(ctx context.Context, settlementID string) (transfer.Outcome, bool) {
	status, err := p.ledger.QueryStatus(ctx, settlementID)
	if ctx.Err() != nil {
		return "", false
	}
	if err != nil {
		p.recorder.RecordPollQuery("error")
		p.log.WithError(err).WithField("settlement_id", settlementID).Debug("status query failed, retrying next tick")
		return "", false
	}

	p.recorder.RecordPollQuery(string(status))
	if !status.IsTerminal() {
		return "", false
	}
	if status == secondary.SettlementSuccess {
		return transfer.OutcomeConfirmed, true
	}
	return transfer.OutcomeFailed, true
}

// Cancel stops the session. Safe to call more than once and from inside report.
func (s *PollSession) Cancel() {
	s.cancel()
}

// Done is closed once the session goroutine has exited.
func (s *PollSession) Done() <-chan struct{} {
	return s.done
}

// SettlementID returns the settlement being polled.
func (s *PollSession) SettlementID() string {
	return s.settlementID
}
