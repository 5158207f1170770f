// Package wire provides dependency injection for the pickup application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/andres-erbsen/clock"
	"github.com/sirupsen/logrus"

	cliadapter "github.com/example/pickup/internal/adapters/cli"
	"github.com/example/pickup/internal/adapters/events"
	"github.com/example/pickup/internal/adapters/ledger"
	"github.com/example/pickup/internal/adapters/persistence"
	"github.com/example/pickup/internal/adapters/sqlite"
	"github.com/example/pickup/internal/app"
	"github.com/example/pickup/internal/config"
	"github.com/example/pickup/internal/db"
	"github.com/example/pickup/internal/logging"
	"github.com/example/pickup/internal/metrics"
	"github.com/example/pickup/internal/ports/primary"
	"github.com/example/pickup/internal/ports/secondary"
)

// Services holds the fully wired application graph.
type Services struct {
	Config   *config.Config
	Log      *logrus.Logger
	Pickups  *app.PickupOrchestrator
	Agents   *app.AgentServiceImpl
	Events   *sqlite.EventRepository // nil with the memory storage driver
	Recorder *metrics.Recorder

	database *sql.DB
}

var (
	services *Services
	once     sync.Once
)

// PickupService returns the singleton PickupService instance.
func PickupService() primary.PickupService {
	once.Do(initServices)
	return services.Pickups
}

// AgentService returns the singleton AgentService instance.
func AgentService() primary.AgentService {
	once.Do(initServices)
	return services.Agents
}

// EventLog returns the domain event repository, or nil when events are not persisted.
func EventLog() *sqlite.EventRepository {
	once.Do(initServices)
	return services.Events
}

// Logger returns the process logger.
func Logger() *logrus.Logger {
	once.Do(initServices)
	return services.Log
}

// PickupAdapter returns a new PickupAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func PickupAdapter() *cliadapter.PickupAdapter {
	return PickupAdapterWithOutput(os.Stdout)
}

// PickupAdapterWithOutput returns a new PickupAdapter writing to the given output.
func PickupAdapterWithOutput(out io.Writer) *cliadapter.PickupAdapter {
	once.Do(initServices)
	return cliadapter.NewPickupAdapter(services.Pickups, services.Agents, out)
}

// Shutdown stops timers and pollers, flushes metrics and closes the
// database. Safe to call when services were never initialized.
func Shutdown() error {
	if services == nil {
		return nil
	}
	return services.Close()
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	dir, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("failed to get working directory: %v", err)
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logging.New(logging.Options{
		AppName: "pickup",
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
	})

	services, err = Build(cfg, log, clock.New())
	if err != nil {
		log.Fatalf("failed to initialize services: %v", err)
	}
}

// Build wires every adapter and service for cfg.
func Build(cfg *config.Config, log *logrus.Logger, clk clock.Clock) (*Services, error) {
	s := &Services{
		Config:   cfg,
		Log:      log,
		Recorder: metrics.NewRecorder(metrics.DefaultNamespace),
	}

	// Key-value storage and event log
	var kv secondary.KeyValueStore
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		kv = persistence.NewMemoryKeyValueStore()
	default:
		path := cfg.Storage.DBPath
		if path == "" {
			var err error
			if path, err = db.GetDBPath(); err != nil {
				return nil, err
			}
		}
		db.SetPath(path)
		database, err := db.GetDB()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.database = database
		kv = sqlite.NewKeyValueRepository(database)
		s.Events = sqlite.NewEventRepository(database)
	}

	// Agent reference data
	var agents secondary.AgentDirectory = persistence.NewBuiltinAgentDirectory()
	if cfg.AgentsFile != "" {
		dir, err := persistence.LoadAgentDirectory(cfg.AgentsFile)
		if err != nil {
			return nil, err
		}
		agents = dir
	}

	// Wallet ledger
	var wallet secondary.Ledger
	switch cfg.Ledger.Mode {
	case config.LedgerHTTP:
		wallet = ledger.NewHTTPLedger(&ledger.WalletConfig{
			URL:     cfg.Ledger.APIURL,
			APIKey:  cfg.Ledger.APIKey,
			Locator: cfg.Ledger.WalletLocator,
			Chain:   cfg.Ledger.Chain,
			Timeout: cfg.Ledger.Timeout,
		})
	default:
		wallet = ledger.NewSimulatedLedger(ledger.SimulatedConfig{
			PendingPolls: cfg.Ledger.SimulatedPendingPolls,
		})
	}

	sinks := []secondary.EventPublisher{events.NewLoggingPublisher(log)}
	if s.Events != nil {
		sinks = append(sinks, s.Events)
	}
	publisher := events.NewFanoutPublisher(sinks...)

	// Application services
	store := app.NewKVRequestStore(kv, app.RequestStoreKey, log)
	poller := app.NewSettlementPoller(wallet, clk, app.PollerConfig{
		Interval:          cfg.Settlement.PollInterval,
		Deadline:          cfg.Settlement.PollDeadline,
		OptimisticTimeout: cfg.Settlement.OptimisticTimeout,
	}, s.Recorder, log)

	s.Pickups = app.NewPickupOrchestrator(wallet, poller, store, agents, publisher, s.Recorder, clk, app.OrchestratorConfig{
		Destination:   cfg.Destination,
		Asset:         cfg.Asset,
		DisplayWindow: cfg.Settlement.DisplayWindow,
	}, log)
	s.Agents = app.NewAgentService(agents)

	return s, nil
}

// Close releases everything Build acquired.
func (s *Services) Close() error {
	if err := s.Pickups.Close(); err != nil {
		return err
	}

	if path := s.Config.MetricsTextfile; path != "" {
		if err := s.Recorder.WriteTextfile(path); err != nil {
			s.Log.WithError(err).Warn("failed to write metrics textfile")
		}
	}

	if s.database != nil {
		return db.Close()
	}
	return nil
}
