// Package core wires the virtualization components together: the
// dispatch table, hook registry, path redirector, namespace manager and
// event log, built from one Config and torn down as one unit.
package core

import (
	"log/slog"
	"sync"

	"github.com/virtualspace/virtspace/internal/errx"
	"github.com/virtualspace/virtspace/pkg/api"
	"github.com/virtualspace/virtspace/pkg/hook"
	"github.com/virtualspace/virtspace/pkg/hooks"
	"github.com/virtualspace/virtspace/pkg/logging"
	"github.com/virtualspace/virtspace/pkg/namespace"
	"github.com/virtualspace/virtspace/pkg/redirect"
)

// Core is the composition root. All state is instance-scoped and
// constructor-injected; two cores in one process do not share anything.
type Core struct {
	cfg        *api.Config
	logger     *slog.Logger
	emitter    *logging.Emitter
	table      *hook.DispatchTable
	registry   *hook.Registry
	redirector *redirect.Redirector
	namespaces *namespace.Manager
	packages   *packageTable
	env        *hooks.Env

	mu      sync.Mutex
	started bool
}

// New builds a core from cfg. Defaults are applied in place, so the
// caller sees the effective configuration afterwards.
func New(cfg *api.Config, logger *slog.Logger) (*Core, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var emitter *logging.Emitter
	if cfg.EventLogPath != "" {
		writer, err := logging.NewJSONLWriter(cfg.EventLogPath)
		if err != nil {
			return nil, errx.Wrap(ErrCreateEmitter, err)
		}
		emitter = logging.NewEmitter(logging.EmitterConfig{RunID: cfg.RunID}, writer)
	}

	redirector := redirect.NewRedirector(logger)
	namespaces, err := namespace.NewManager(cfg.VirtualRoot, cfg.RealDataRoot, redirector, emitter, logger)
	if err != nil {
		if emitter != nil {
			_ = emitter.Close()
		}
		return nil, errx.Wrap(ErrCreateNamespaces, err)
	}

	packages := newPackageTable()
	env := &hooks.Env{
		Redirect: redirector,
		Device:   *cfg.Device,
		Packages: packages,
		Logger:   logger,
	}

	table := hook.NewDispatchTable()
	declareGuestSurface(table)

	return &Core{
		cfg:        cfg,
		logger:     logger.With("component", "core"),
		emitter:    emitter,
		table:      table,
		registry:   hook.NewRegistry(table, logger),
		redirector: redirector,
		namespaces: namespaces,
		packages:   packages,
		env:        env,
	}, nil
}

// Startup loads existing namespaces, re-registers their path mappings,
// and installs every enabled hook catalog. Individual catalog failures
// are reported in the results, not escalated; a catalog that partially
// registers still protects the targets it did cover.
func (c *Core) Startup() ([]hook.CatalogResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil, ErrAlreadyStarted
	}

	existing, err := c.namespaces.List()
	if err != nil {
		return nil, err
	}
	for _, ns := range existing {
		if err := c.namespaces.Create(ns.Owner); err != nil {
			c.logger.Warn("failed to reattach namespace", "owner", ns.Owner, "error", err)
			continue
		}
		c.packages.put(api.PackageInfo{Name: ns.Owner, DataDir: ns.FilesystemRoot})
	}

	var results []hook.CatalogResult
	for _, catalog := range hooks.All(c.env) {
		if !c.cfg.CatalogEnabled(catalog.Name) {
			c.logger.Info("catalog disabled by config", "catalog", catalog.Name)
			continue
		}
		result := c.registry.RegisterCatalog(catalog)
		if c.emitter != nil {
			_ = c.emitter.Emit(logging.EventCatalogRegistered, "catalog "+catalog.Name+" registered",
				"core", nil, &logging.CatalogData{
					Catalog:    catalog.Name,
					Registered: result.Registered,
					Total:      result.Total,
				})
			for _, failure := range result.Failures {
				_ = c.emitter.Emit(logging.EventHookInstallFailed, "hook install failed",
					"core", nil, &logging.HookData{Target: failure.Target, Error: failure.Err.Error()})
			}
		}
		results = append(results, result)
	}

	c.started = true
	c.logger.Info("core started", "run_id", c.cfg.RunID, "catalogs", len(results), "namespaces", len(existing))
	return results, nil
}

// Shutdown removes every installed hook and releases the event log and
// namespace registry. Safe to call once after a successful Startup.
func (c *Core) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return ErrNotStarted
	}

	result := c.registry.UnregisterAll()
	if len(result.Failures) > 0 {
		c.logger.Warn("some hooks failed to unregister", "failed", len(result.Failures))
	}

	var firstErr error
	if c.emitter != nil {
		firstErr = c.emitter.Close()
	}
	if err := c.namespaces.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	c.started = false
	c.logger.Info("core stopped", "unregistered", result.Registered)
	return firstErr
}

// CreateNamespace provisions the isolation namespace for owner and
// exposes it as a virtual package.
func (c *Core) CreateNamespace(owner string) error {
	if err := c.namespaces.Create(owner); err != nil {
		return err
	}
	c.packages.put(api.PackageInfo{
		Name:    owner,
		DataDir: c.namespaces.Layout().FilesystemRoot(owner),
	})
	return nil
}

// DestroyNamespace removes owner's namespace and returns the bytes freed.
func (c *Core) DestroyNamespace(owner string) (int64, error) {
	freed, err := c.namespaces.Destroy(owner)
	if err != nil {
		return 0, err
	}
	c.packages.remove(owner)
	return freed, nil
}

// BackupNamespace snapshots owner's namespace into dest.
func (c *Core) BackupNamespace(owner, dest string) (*namespace.Snapshot, error) {
	return c.namespaces.Backup(owner, dest)
}

// RestoreNamespace restores owner's namespace from src, creating it if
// needed.
func (c *Core) RestoreNamespace(owner, src string) (*namespace.RestoreReport, error) {
	report, err := c.namespaces.Restore(owner, src)
	if err != nil {
		return nil, err
	}
	c.packages.put(api.PackageInfo{
		Name:    owner,
		DataDir: c.namespaces.Layout().FilesystemRoot(owner),
	})
	return report, nil
}

// Namespaces lists the registered isolation namespaces.
func (c *Core) Namespaces() ([]namespace.Namespace, error) {
	return c.namespaces.List()
}

// ResolvePath maps a real path through the active mappings.
func (c *Core) ResolvePath(path string) string {
	return c.redirector.Resolve(path)
}

// Hooks returns a snapshot of the hook registry table.
func (c *Core) Hooks() []hook.RecordInfo {
	return c.registry.Records()
}

// Call dispatches a guest-facing call through the interception table.
func (c *Core) Call(target hook.Target, receiver any, args ...any) (any, error) {
	return c.table.Call(target, receiver, args...)
}

// Config returns the effective configuration.
func (c *Core) Config() *api.Config { return c.cfg }
