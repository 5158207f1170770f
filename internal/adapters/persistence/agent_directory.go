package persistence

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/example/pickup/internal/ports/secondary"
)

// BuiltinAgents is the payout agent list used when no agents file is configured.
var BuiltinAgents = []secondary.AgentRecord{
	{
		ID:       "1",
		Name:     "MoneyMart Financial Center",
		Address:  "241 W 37th St, New York, NY 10018",
		Distance: "0.3 mi away",
		Hours:    "Mon–Fri: 8AM–8PM",
		IsOpen:   true,
		Lat:      40.7128,
		Lng:      -74.0060,
	},
	{
		ID:       "2",
		Name:     "CityCash Services",
		Address:  "465 Lexington Ave, New York, NY 10017",
		Distance: "1.2 mi away",
		Hours:    "Mon–Sat: 9AM–6PM",
		IsOpen:   true,
		Lat:      40.7589,
		Lng:      -73.9851,
	},
	{
		ID:       "3",
		Name:     "ExpressPay Market",
		Address:  "89 Flatbush Ave, Brooklyn, NY 11217",
		Distance: "2.5 mi away",
		Hours:    "Daily: 10AM–9PM",
		IsOpen:   false,
		Lat:      40.6782,
		Lng:      -73.9442,
	},
}

// agentsFile is the on-disk layout of an agents file.
type agentsFile struct {
	Agents []secondary.AgentRecord `yaml:"agents" validate:"required,min=1,unique=ID,dive"`
}

// StaticAgentDirectory implements secondary.AgentDirectory over a fixed list.
type StaticAgentDirectory struct {
	agents []*secondary.AgentRecord
	byID   map[string]*secondary.AgentRecord
}

// NewStaticAgentDirectory creates a directory over records, keeping their order.
func NewStaticAgentDirectory(records []secondary.AgentRecord) *StaticAgentDirectory {
	d := &StaticAgentDirectory{
		agents: make([]*secondary.AgentRecord, len(records)),
		byID:   make(map[string]*secondary.AgentRecord, len(records)),
	}
	for i := range records {
		r := records[i]
		d.agents[i] = &r
		d.byID[r.ID] = &r
	}
	return d
}

// NewBuiltinAgentDirectory creates a directory over BuiltinAgents.
func NewBuiltinAgentDirectory() *StaticAgentDirectory {
	return NewStaticAgentDirectory(BuiltinAgents)
}

// LoadAgentDirectory reads and validates a YAML agents file.
func LoadAgentDirectory(path string) (*StaticAgentDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agents file: %w", err)
	}

	var file agentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse agents file %s: %w", path, err)
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid agents file %s: %w", path, err)
	}

	return NewStaticAgentDirectory(file.Agents), nil
}

// List returns every agent in file order.
func (d *StaticAgentDirectory) List(ctx context.Context) ([]*secondary.AgentRecord, error) {
	out := make([]*secondary.AgentRecord, len(d.agents))
	for i, a := range d.agents {
		c := *a
		out[i] = &c
	}
	return out, nil
}

// GetByID retrieves an agent by its ID.
func (d *StaticAgentDirectory) GetByID(ctx context.Context, id string) (*secondary.AgentRecord, error) {
	a, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("agent %s not found", id)
	}
	c := *a
	return &c, nil
}

// Ensure StaticAgentDirectory implements the interface
var _ secondary.AgentDirectory = (*StaticAgentDirectory)(nil)
