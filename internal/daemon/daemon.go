package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/harun/atrium/internal/config"
	"github.com/harun/atrium/internal/logger"
	"github.com/harun/atrium/internal/observability"
	"github.com/harun/atrium/internal/tracing"
	"github.com/harun/atrium/pkg/artifact"
	"github.com/harun/atrium/pkg/discovery"
	"github.com/harun/atrium/pkg/extension"
	"github.com/harun/atrium/pkg/objectstore"
)

// Version is the runtime version reported to artifacts declaring a minimum
// runtime requirement and to the tracing backend.
const Version = "0.1.0"

// Status describes the daemon's runtime state.
type Status struct {
	Running     bool
	Uptime      time.Duration
	StartTime   time.Time
	Deployments int
	Clients     int
}

// Daemon assembles the runtime: artifact deployment, extension discovery,
// the object store, the artifacts watcher and the HTTP surface.
type Daemon struct {
	config *config.Config
	logger *logger.Logger

	directory *extension.Directory
	engine    *discovery.Engine
	store     objectstore.Store
	expiry    *objectstore.ExpiryMonitor
	deployer  *Deployer
	hub       *EventHub
	server    *Server
	watcher   *Watcher

	ctx    context.Context
	cancel context.CancelFunc

	startTime time.Time
	running   bool
	mu        sync.RWMutex

	tracingEnabled bool
}

// New creates a daemon from its configuration. Components are initialized in
// dependency order; nothing is started yet.
func New(cfg *config.Config, log *logger.Logger) (*Daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	observability.EnsureRegistered()
	if err := tracing.InitOpenTelemetry("atrium-daemon", Version); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracing, continuing without distributed tracing")
	} else {
		log.Info().Msg("Tracing initialized successfully")
	}

	d := &Daemon{
		config:         cfg,
		logger:         log,
		ctx:            ctx,
		cancel:         cancel,
		tracingEnabled: true,
	}

	if err := d.initialize(); err != nil {
		cancel()
		if d.tracingEnabled {
			_ = tracing.ShutdownOpenTelemetry(context.Background())
			d.tracingEnabled = false
		}
		return nil, fmt.Errorf("failed to initialize daemon: %w", err)
	}

	return d, nil
}

// initialize builds the daemon components in dependency order.
func (d *Daemon) initialize() error {
	cfg := d.config
	zl := d.logger.GetZerolog()

	auditPath := filepath.Join(cfg.DataDir, "audit.log")
	if err := observability.InitAuditLogger(auditPath); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to initialize audit logger, continuing without audit trail")
	}

	store, err := d.openStore()
	if err != nil {
		return fmt.Errorf("failed to open object store: %w", err)
	}
	d.store = store
	d.logger.Info().Bool("persistent", cfg.Store.Persistent).Msg("Object store initialized")

	if expirable, ok := store.(objectstore.Expirable); ok && cfg.Store.ExpirySchedule != "" {
		monitor, err := objectstore.NewExpiryMonitor(
			zl,
			expirable,
			cfg.Store.ExpirySchedule,
			time.Duration(cfg.Store.MaxAgeHours)*time.Hour,
			cfg.Store.MaxEntries,
		)
		if err != nil {
			return fmt.Errorf("failed to create expiry monitor: %w", err)
		}
		d.expiry = monitor
		d.logger.Info().Str("schedule", cfg.Store.ExpirySchedule).Msg("Expiry monitor initialized")
	}

	d.directory = extension.NewDirectory()
	d.directory.MustRegister(extension.NewNativeLoader(zl))
	if cfg.Loaders.RPC {
		d.directory.MustRegister(extension.NewRPCLoader(zl))
	}
	d.logger.Info().Strs("loaders", d.directory.IDs()).Msg("Extension loader directory initialized")

	d.engine = discovery.NewEngine(zl, d.directory, extension.NewNativeLoader(zl))
	d.logger.Info().Msg("Discovery engine initialized")

	d.hub = NewEventHub(zl)

	deployer, err := NewDeployer(DeployerConfig{
		Logger:         zl,
		Loader:         artifact.NewLoader(zl),
		Engine:         d.engine,
		Store:          d.store,
		Events:         d.hub,
		RuntimeVersion: Version,
	})
	if err != nil {
		return fmt.Errorf("failed to create deployer: %w", err)
	}
	d.deployer = deployer
	d.logger.Info().Msg("Deployer initialized")

	if cfg.Server.Enabled {
		server, err := NewServer(ServerConfig{
			Host:     cfg.Server.Host,
			Port:     cfg.Server.Port,
			Hub:      d.hub,
			Deployer: d.deployer,
			Logger:   zl,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}
		d.server = server
		d.logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server initialized")
	}

	if cfg.Watcher.Enabled {
		watcher, err := NewWatcher(
			zl,
			cfg.ArtifactsDir,
			time.Duration(cfg.Watcher.DebounceMs)*time.Millisecond,
			d.handleArtifactChange,
		)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		d.watcher = watcher
		d.logger.Info().Msg("Artifact watcher initialized")
	}

	return nil
}

func (d *Daemon) openStore() (objectstore.Store, error) {
	factory := objectstore.NewDefaultFactory(d.logger.GetZerolog(), filepath.Join(d.config.DataDir, "store"))
	if d.config.Store.Persistent {
		return factory.CreateDefaultPersistentStore()
	}
	return factory.CreateDefaultInMemoryStore(), nil
}

// Start brings the daemon up: the HTTP surface, the artifacts already on
// disk, and the watcher. A failing artifact is logged without aborting the
// others.
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	traceID := tracing.NewTraceID()
	logger := d.logger.GetZerolog().With().Str("trace_id", traceID).Logger()
	logger.Info().Str("version", Version).Msg("Starting Atrium daemon")

	if err := os.MkdirAll(d.config.ArtifactsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifacts directory: %w", err)
	}

	if d.expiry != nil {
		d.expiry.Start()
		logger.Info().Msg("Expiry monitor started")
	}

	if d.server != nil {
		if err := d.server.Start(); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		logger.Info().Msg("HTTP server started")
	}

	ctx := tracing.WithTraceID(d.ctx, traceID)
	if err := d.deployer.DeployAll(ctx, d.config.ArtifactsDir); err != nil {
		logger.Error().Err(err).Msg("Some artifacts failed to deploy")
	}
	logger.Info().Int("deployments", d.deployer.Count()).Msg("Artifacts deployed")

	if d.watcher != nil {
		if err := d.watcher.Start(); err != nil {
			return fmt.Errorf("failed to start artifact watcher: %w", err)
		}
		logger.Info().Msg("Artifact watcher started")
	}

	logger.Info().Msg("Atrium daemon started")
	return nil
}

// Stop shuts the daemon down, undeploying artifacts and releasing the store.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is not running")
	}
	d.running = false
	d.mu.Unlock()

	traceID := tracing.NewTraceID()
	logger := d.logger.GetZerolog().With().Str("trace_id", traceID).Logger()
	logger.Info().Msg("Stopping Atrium daemon")

	if d.watcher != nil {
		d.watcher.Stop()
		logger.Info().Msg("Artifact watcher stopped")
	}

	if d.server != nil {
		if err := d.server.Stop(); err != nil {
			logger.Error().Err(err).Msg("Failed to stop HTTP server")
		}
	}

	d.deployer.UndeployAll(tracing.WithTraceID(context.Background(), traceID))
	logger.Info().Msg("Artifacts undeployed")

	if d.expiry != nil {
		d.expiry.Stop()
		logger.Info().Msg("Expiry monitor stopped")
	}

	if err := d.store.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close object store")
	}

	if err := observability.GetAuditLogger().Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close audit logger")
	}

	if d.tracingEnabled {
		if err := tracing.ShutdownOpenTelemetry(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown tracing")
		}
		d.tracingEnabled = false
	}

	d.cancel()
	logger.Info().Msg("Atrium daemon stopped")
	return nil
}

// handleArtifactChange reacts to a debounced change under the artifacts
// directory: a present directory is (re)deployed, a vanished one undeployed.
func (d *Daemon) handleArtifactChange(name string) {
	dir := filepath.Join(d.config.ArtifactsDir, name)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := d.deployer.Undeploy(d.ctx, name); err != nil {
			d.logger.Warn().Err(err).Str("artifact", name).Msg("Failed to undeploy removed artifact")
		}
		return
	}

	if _, err := d.deployer.Deploy(d.ctx, dir); err != nil {
		d.logger.Error().Err(err).Str("artifact", name).Msg("Failed to redeploy changed artifact")
	}
}

// Status returns the daemon's runtime state.
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := Status{
		Running:     d.running,
		Deployments: d.deployer.Count(),
		Clients:     d.hub.Count(),
	}
	if d.running {
		status.Uptime = time.Since(d.startTime)
		status.StartTime = d.startTime
	}
	return status
}

// Wait blocks until the daemon receives SIGINT or SIGTERM, then stops it.
func (d *Daemon) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	d.logger.Info().Str("signal", sig.String()).Msg("Received signal")

	if err := d.Stop(); err != nil {
		d.logger.Error().Err(err).Msg("Failed to stop daemon")
	}
}

// GetConfig returns the daemon configuration.
func (d *Daemon) GetConfig() *config.Config {
	return d.config
}

// GetLogger returns the daemon logger.
func (d *Daemon) GetLogger() *logger.Logger {
	return d.logger
}

// GetDeployer returns the artifact deployer.
func (d *Daemon) GetDeployer() *Deployer {
	return d.deployer
}

// GetDirectory returns the extension loader directory.
func (d *Daemon) GetDirectory() *extension.Directory {
	return d.directory
}

// GetStore returns the daemon object store.
func (d *Daemon) GetStore() objectstore.Store {
	return d.store
}
