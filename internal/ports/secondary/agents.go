package secondary

import "context"

// AgentDirectory defines the secondary port for payout agent reference data.
type AgentDirectory interface {
	// List returns every agent in display order.
	List(ctx context.Context) ([]*AgentRecord, error)

	// GetByID retrieves an agent by its ID.
	GetByID(ctx context.Context, id string) (*AgentRecord, error)
}

// AgentRecord represents a payout agent as stored in reference data.
// Records embedded in a PickupRecord are snapshots, not live references.
type AgentRecord struct {
	ID       string  `json:"id" yaml:"id" validate:"required"`
	Name     string  `json:"name" yaml:"name" validate:"required"`
	Address  string  `json:"address" yaml:"address" validate:"required"`
	Distance string  `json:"distance" yaml:"distance"`
	Hours    string  `json:"hours" yaml:"hours"`
	IsOpen   bool    `json:"isOpen" yaml:"is_open"`
	Lat      float64 `json:"lat" yaml:"lat" validate:"latitude"`
	Lng      float64 `json:"lng" yaml:"lng" validate:"longitude"`
}
