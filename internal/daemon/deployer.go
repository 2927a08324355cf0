package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harun/atrium/internal/observability"
	"github.com/harun/atrium/internal/tracing"
	"github.com/harun/atrium/pkg/artifact"
	"github.com/harun/atrium/pkg/discovery"
	"github.com/harun/atrium/pkg/extension"
	"github.com/harun/atrium/pkg/objectstore"
)

// deploymentsPartition is the object store partition holding one record per
// deployed artifact, keyed by artifact name.
const deploymentsPartition = "deployments"

// ErrNotDeployed is returned when an operation names an artifact that is not
// currently deployed.
var ErrNotDeployed = errors.New("artifact is not deployed")

// Deployment is the persisted record of a deployed artifact.
type Deployment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	Dir        string    `json:"dir"`
	Plugins    int       `json:"plugins"`
	Extensions []string  `json:"extensions"`
	DeployedAt time.Time `json:"deployed_at"`
}

// EventSink receives deployment lifecycle events. The websocket hub
// implements it; a nil sink disables event emission.
type EventSink interface {
	Broadcast(event string, data interface{})
}

// active pairs a deployment record with the extension manager holding the
// extensions resolved for it.
type active struct {
	record  Deployment
	manager *extension.Manager
}

// DeployerConfig holds the deployer dependencies.
type DeployerConfig struct {
	Logger zerolog.Logger
	Loader *artifact.Loader
	Engine *discovery.Engine
	Store  objectstore.Store
	Events EventSink

	// RuntimeVersion is the version this runtime reports when artifacts
	// declare a minimum runtime requirement.
	RuntimeVersion string
}

// Deployer loads artifact directories, resolves their extensions and tracks
// the live deployments. Deployments of distinct artifacts may run
// concurrently; a second deployment of the same artifact replaces the first.
type Deployer struct {
	logger         zerolog.Logger
	loader         *artifact.Loader
	engine         *discovery.Engine
	store          objectstore.Store
	events         EventSink
	runtimeVersion *semver.Version

	mu          sync.RWMutex
	deployments map[string]*active
	inFlight    map[string]struct{}
}

// NewDeployer creates a deployer from its configuration.
func NewDeployer(cfg DeployerConfig) (*Deployer, error) {
	if cfg.Loader == nil {
		return nil, fmt.Errorf("artifact loader is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("discovery engine is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("object store is required")
	}

	version, err := semver.NewVersion(cfg.RuntimeVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid runtime version %q: %w", cfg.RuntimeVersion, err)
	}

	return &Deployer{
		logger:         cfg.Logger.With().Str("component", "deployer").Logger(),
		loader:         cfg.Loader,
		engine:         cfg.Engine,
		store:          cfg.Store,
		events:         cfg.Events,
		runtimeVersion: version,
		deployments:    make(map[string]*active),
		inFlight:       make(map[string]struct{}),
	}, nil
}

// Deploy loads the artifact rooted at dir, resolves its extensions and
// records the deployment. Nothing is registered or recorded when any step
// fails. Deploying an artifact that is already deployed replaces it.
func (d *Deployer) Deploy(ctx context.Context, dir string) (*Deployment, error) {
	started := time.Now()

	art, err := d.loader.Load(dir)
	if err != nil {
		observability.RecordDeployment(time.Since(started), false)
		return nil, fmt.Errorf("failed to load artifact from %s: %w", dir, err)
	}

	name := art.Name()
	if err := d.acquire(name); err != nil {
		observability.RecordDeployment(time.Since(started), false)
		return nil, err
	}
	defer d.release(name)

	ctx = tracing.NewDeploymentContext(ctx, name)
	ctx, span := tracing.StartSpan(ctx, "atrium.daemon", "daemon.deploy",
		attribute.String("artifact.name", name),
		attribute.Int("artifact.plugins", len(art.Plugins)),
	)
	defer span.End()

	logger := tracing.PropagateToLogger(ctx, d.logger)

	if err := d.checkRuntimeRequirement(art); err != nil {
		d.failDeployment(ctx, started, name, err)
		return nil, err
	}

	manager := extension.NewManager()
	if err := d.engine.Resolve(ctx, art, manager); err != nil {
		d.failDeployment(ctx, started, name, err)
		return nil, fmt.Errorf("failed to deploy artifact %s: %w", name, err)
	}

	record := Deployment{
		ID:         tracing.GetDeploymentID(ctx),
		Name:       name,
		Version:    art.Definition.Version,
		Dir:        dir,
		Plugins:    len(art.Plugins),
		Extensions: extensionNames(manager),
		DeployedAt: time.Now().UTC(),
	}

	if err := d.persistRecord(record); err != nil {
		d.failDeployment(ctx, started, name, err)
		return nil, fmt.Errorf("failed to record deployment of %s: %w", name, err)
	}

	d.mu.Lock()
	d.deployments[name] = &active{record: record, manager: manager}
	count := len(d.deployments)
	d.mu.Unlock()

	observability.RecordDeployment(time.Since(started), true)
	observability.SetActiveDeployments(count)
	observability.SetExtensionsRegistered(name, manager.Count())
	observability.RecordDeploymentAudit(ctx, name, "deploy", "success", map[string]interface{}{
		"deployment_id": record.ID,
		"plugins":       record.Plugins,
		"extensions":    len(record.Extensions),
	})
	d.broadcast("deployment.deployed", record)

	logger.Info().
		Str("artifact", name).
		Str("version", record.Version).
		Int("plugins", record.Plugins).
		Int("extensions", len(record.Extensions)).
		Dur("duration", time.Since(started)).
		Msg("Artifact deployed")

	return &record, nil
}

// Undeploy removes a deployed artifact, dropping its extensions and the
// stored deployment record.
func (d *Deployer) Undeploy(ctx context.Context, name string) error {
	d.mu.Lock()
	dep, ok := d.deployments[name]
	if ok {
		delete(d.deployments, name)
	}
	count := len(d.deployments)
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNotDeployed)
	}

	ctx = tracing.WithDeploymentID(tracing.WithArtifact(ctx, name), dep.record.ID)
	logger := tracing.PropagateToLogger(ctx, d.logger)

	if err := d.store.Delete(deploymentsPartition, name); err != nil && !errors.Is(err, objectstore.ErrKeyNotFound) {
		logger.Warn().Err(err).Str("artifact", name).Msg("Failed to remove deployment record")
	}

	observability.SetActiveDeployments(count)
	observability.ClearExtensionsRegistered(name)
	observability.RecordDeploymentAudit(ctx, name, "undeploy", "success", map[string]interface{}{
		"deployment_id": dep.record.ID,
	})
	d.broadcast("deployment.undeployed", map[string]interface{}{
		"artifact":      name,
		"deployment_id": dep.record.ID,
	})

	logger.Info().Str("artifact", name).Msg("Artifact undeployed")
	return nil
}

// DeployAll deploys every artifact directory found directly under root.
// Artifacts deploy concurrently; the returned error joins the per-artifact
// failures while successful deployments stand.
func (d *Deployer) DeployAll(ctx context.Context, root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to read artifacts directory %s: %w", root, err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Deploy(ctx, dir); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

// UndeployAll undeploys every deployed artifact. It is used at shutdown.
func (d *Deployer) UndeployAll(ctx context.Context) {
	for _, record := range d.Deployments() {
		if err := d.Undeploy(ctx, record.Name); err != nil && !errors.Is(err, ErrNotDeployed) {
			d.logger.Error().Err(err).Str("artifact", record.Name).Msg("Failed to undeploy artifact")
		}
	}
}

// Deployments returns the records of all deployed artifacts, ordered by
// artifact name.
func (d *Deployer) Deployments() []Deployment {
	d.mu.RLock()
	records := make([]Deployment, 0, len(d.deployments))
	for _, dep := range d.deployments {
		records = append(records, dep.record)
	}
	d.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records
}

// Deployment returns the record of one deployed artifact.
func (d *Deployer) Deployment(name string) (Deployment, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	dep, ok := d.deployments[name]
	if !ok {
		return Deployment{}, false
	}
	return dep.record, true
}

// Manager returns the extension manager of a deployed artifact.
func (d *Deployer) Manager(name string) (*extension.Manager, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	dep, ok := d.deployments[name]
	if !ok {
		return nil, false
	}
	return dep.manager, true
}

// Count returns the number of deployed artifacts.
func (d *Deployer) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.deployments)
}

// acquire marks an artifact deployment as in flight, rejecting overlapping
// deployments of the same artifact.
func (d *Deployer) acquire(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.inFlight[name]; busy {
		return fmt.Errorf("deployment of %s is already in progress", name)
	}
	d.inFlight[name] = struct{}{}
	return nil
}

func (d *Deployer) release(name string) {
	d.mu.Lock()
	delete(d.inFlight, name)
	d.mu.Unlock()
}

// checkRuntimeRequirement enforces the artifact's declared minimum runtime
// version, when present.
func (d *Deployer) checkRuntimeRequirement(art *artifact.Artifact) error {
	min := art.Definition.MinRuntimeVersion
	if min == "" {
		return nil
	}

	required, err := semver.NewVersion(min)
	if err != nil {
		return fmt.Errorf("artifact %s declares an invalid minRuntimeVersion %q: %w", art.Name(), min, err)
	}
	if d.runtimeVersion.LessThan(required) {
		return fmt.Errorf("artifact %s requires runtime %s or newer, running %s", art.Name(), required, d.runtimeVersion)
	}
	return nil
}

func (d *Deployer) persistRecord(record Deployment) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return d.store.Put(deploymentsPartition, record.Name, data, 0)
}

func (d *Deployer) failDeployment(ctx context.Context, started time.Time, name string, cause error) {
	observability.RecordDeployment(time.Since(started), false)
	observability.RecordDeploymentAudit(ctx, name, "deploy", "error", map[string]interface{}{
		"error": cause.Error(),
	})
	d.broadcast("deployment.failed", map[string]interface{}{
		"artifact": name,
		"error":    cause.Error(),
	})

	logger := tracing.PropagateToLogger(ctx, d.logger)
	logger.Error().Err(cause).Str("artifact", name).Msg("Artifact deployment failed")
}

func (d *Deployer) broadcast(event string, data interface{}) {
	if d.events == nil {
		return
	}
	d.events.Broadcast(event, data)
}

func extensionNames(m *extension.Manager) []string {
	models := m.Extensions()
	names := make([]string, 0, len(models))
	for _, model := range models {
		names = append(names, model.Name)
	}
	return names
}
