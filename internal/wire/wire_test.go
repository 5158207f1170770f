package wire

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/example/pickup/internal/config"
	"github.com/example/pickup/internal/ports/primary"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Destination = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	cfg.Ledger.SimulatedPendingPolls = 0
	cfg.Storage.Driver = config.StorageMemory
	return cfg
}

func TestBuild_SimulatedEndToEnd(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	s, err := Build(testConfig(t), log, clock.New())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.Nil(t, s.Events)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = s.Pickups.Submit(ctx, primary.SubmitPickupRequest{AgentID: "1", Amount: "20"})
	require.NoError(t, err)

	status, err := s.Pickups.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, primary.PickupStateSuccess, status.State)

	completed, err := s.Pickups.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, "MoneyMart Financial Center", completed[0].Agent.Name)
}

func TestBuild_SQLiteStorage(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Storage.Driver = config.StorageSQLite
	cfg.Storage.DBPath = filepath.Join(dir, "pickup.db")
	cfg.MetricsTextfile = filepath.Join(dir, "pickup.prom")

	log, _ := logtest.NewNullLogger()
	s, err := Build(cfg, log, clock.New())
	require.NoError(t, err)
	require.NotNil(t, s.Events)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = s.Pickups.Submit(ctx, primary.SubmitPickupRequest{AgentID: "2", Amount: "15"})
	require.NoError(t, err)
	status, err := s.Pickups.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, primary.PickupStateSuccess, status.State)

	logged, err := s.Events.List(ctx, "offramp:success", 0)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.Equal(t, 15.0, logged[0].Amount)

	require.NoError(t, s.Close())
	require.FileExists(t, cfg.MetricsTextfile)
}

func TestBuild_BadAgentsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.AgentsFile = filepath.Join(t.TempDir(), "missing.yaml")

	log, _ := logtest.NewNullLogger()
	_, err := Build(cfg, log, clock.New())
	require.Error(t, err)
}

func TestBuild_RejectsWithoutDestination(t *testing.T) {
	cfg := testConfig(t)
	cfg.Destination = ""

	log, _ := logtest.NewNullLogger()
	s, err := Build(cfg, log, clock.New())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	status, err := s.Pickups.Submit(context.Background(), primary.SubmitPickupRequest{AgentID: "1", Amount: "20"})
	require.ErrorIs(t, err, primary.ErrValidation)
	require.Equal(t, "no destination address configured", status.Error)
}
