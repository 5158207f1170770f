package app

import (
	"context"
	"fmt"

	"github.com/example/pickup/internal/core/fee"
	"github.com/example/pickup/internal/core/transfer"
	"github.com/example/pickup/internal/ports/primary"
	"github.com/example/pickup/internal/ports/secondary"
)

// AgentServiceImpl implements the AgentService interface.
type AgentServiceImpl struct {
	directory secondary.AgentDirectory
}

// NewAgentService creates a new AgentService with injected dependencies.
func NewAgentService(directory secondary.AgentDirectory) *AgentServiceImpl {
	return &AgentServiceImpl{directory: directory}
}

// ListAgents returns every payout agent.
func (s *AgentServiceImpl) ListAgents(ctx context.Context) ([]*primary.Agent, error) {
	records, err := s.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	agents := make([]*primary.Agent, len(records))
	for i, r := range records {
		agents[i] = agentRecordToAgent(r)
	}
	return agents, nil
}

// GetAgent retrieves an agent by ID.
func (s *AgentServiceImpl) GetAgent(ctx context.Context, agentID string) (*primary.Agent, error) {
	record, err := s.directory.GetByID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("%w: agent %s", primary.ErrNotFound, agentID)
	}
	return agentRecordToAgent(record), nil
}

// Quote returns the fee breakdown for an amount.
func (s *AgentServiceImpl) Quote(ctx context.Context, amount string) (*primary.FeeQuote, error) {
	value, err := transfer.ParseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", primary.ErrValidation, err)
	}

	q := fee.Calculate(value)
	return &primary.FeeQuote{
		Amount:   q.Amount,
		Fee:      q.Fee,
		Received: q.Received,
		Rate:     fee.Rate,
	}, nil
}

// Ensure AgentServiceImpl implements the interface
var _ primary.AgentService = (*AgentServiceImpl)(nil)
