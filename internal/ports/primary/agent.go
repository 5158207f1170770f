package primary

import "context"

// AgentService defines the primary port for payout agent lookups.
type AgentService interface {
	// ListAgents returns every payout agent.
	ListAgents(ctx context.Context) ([]*Agent, error)

	// GetAgent retrieves an agent by ID.
	GetAgent(ctx context.Context, agentID string) (*Agent, error)

	// Quote returns the fee breakdown for an amount.
	Quote(ctx context.Context, amount string) (*FeeQuote, error)
}

// Agent represents a payout location at the port boundary.
type Agent struct {
	ID        string
	Name      string
	Address   string
	Hours     string
	Distance  string
	Open      bool
	Latitude  float64
	Longitude float64
}

// FeeQuote is the fee breakdown for a pickup amount.
type FeeQuote struct {
	Amount   float64
	Fee      float64
	Received float64
	Rate     float64
}
