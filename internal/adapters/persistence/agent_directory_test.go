package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeAgentsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuiltinAgentDirectory(t *testing.T) {
	dir := NewBuiltinAgentDirectory()
	ctx := context.Background()

	agents, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 3)
	require.Equal(t, "MoneyMart Financial Center", agents[0].Name)
	require.False(t, agents[2].IsOpen)

	agent, err := dir.GetByID(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, "CityCash Services", agent.Name)

	_, err = dir.GetByID(ctx, "9")
	require.Error(t, err)
}

func TestStaticAgentDirectory_ReturnsCopies(t *testing.T) {
	dir := NewBuiltinAgentDirectory()
	ctx := context.Background()

	agent, _ := dir.GetByID(ctx, "1")
	agent.Name = "changed"

	again, _ := dir.GetByID(ctx, "1")
	require.Equal(t, "MoneyMart Financial Center", again.Name)
}

func TestLoadAgentDirectory(t *testing.T) {
	path := writeAgentsFile(t, `
agents:
  - id: a1
    name: Corner Exchange
    address: 1 Market St
    hours: "Daily: 9AM-5PM"
    is_open: true
    lat: 37.79
    lng: -122.39
  - id: a2
    name: Night Counter
    address: 2 Mission St
`)

	dir, err := LoadAgentDirectory(path)
	require.NoError(t, err)

	agents, err := dir.List(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 2)
	require.Equal(t, "a1", agents[0].ID)
	require.True(t, agents[0].IsOpen)
	require.Equal(t, 37.79, agents[0].Lat)
}

func TestLoadAgentDirectory_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "agents: [unterminated"},
		{name: "empty list", content: "agents: []"},
		{name: "missing name", content: "agents:\n  - id: a1\n    address: somewhere\n"},
		{name: "duplicate id", content: "agents:\n  - {id: a1, name: A, address: x}\n  - {id: a1, name: B, address: y}\n"},
		{name: "bad latitude", content: "agents:\n  - {id: a1, name: A, address: x, lat: 123}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAgentDirectory(writeAgentsFile(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoadAgentDirectory_MissingFile(t *testing.T) {
	_, err := LoadAgentDirectory(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMemoryKeyValueStore(t *testing.T) {
	store := NewMemoryKeyValueStore()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, "k", "v1"))
	require.NoError(t, store.Set(ctx, "k", "v2"))
	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v2", value)

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, found, _ = store.Get(ctx, "k")
	require.False(t, found)
}
