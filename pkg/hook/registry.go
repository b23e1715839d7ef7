package hook

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/virtualspace/virtspace/internal/errx"
)

// Registry owns the table of installed interceptions. Register,
// Unregister and queries serialize on a single table lock; CallOriginal
// never takes it and stays off the lock on the hot path.
type Registry struct {
	mu        sync.Mutex
	primitive Primitive
	records   map[string]*Record
	logger    *slog.Logger
}

func NewRegistry(p Primitive, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		primitive: p,
		records:   make(map[string]*Record),
		logger:    logger.With("component", "hookreg"),
	}
}

// Register resolves the descriptor's target, installs the replacement
// through the primitive, and returns the backup handle. A target already
// in Installed state is rejected with ErrAlreadyInstalled and no side
// effects. Install failures leave a Failed record that a later Register
// may retry over.
func (r *Registry) Register(d Descriptor) (*BackupHandle, error) {
	if d.Owner == "" || d.Member == "" {
		return nil, errx.With(ErrInvalidDescriptor, ": owner and member are required")
	}
	if d.Replacement == nil {
		return nil, errx.With(ErrInvalidDescriptor, ": nil replacement for %s.%s", d.Owner, d.Member)
	}

	target, err := r.resolveTarget(d)
	if err != nil {
		return nil, err
	}
	key := target.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[key]; ok && rec.Status == StatusInstalled {
		r.logger.Warn("refusing duplicate hook installation", "target", key)
		return nil, errx.With(ErrAlreadyInstalled, ": %s", key)
	}

	rec := &Record{Descriptor: d, Target: target, Status: StatusPending}
	r.records[key] = rec

	handle, err := r.primitive.Install(target, d.Replacement)
	if err != nil {
		rec.Status = StatusFailed
		rec.LastErr = err
		r.logger.Error("hook install failed", "target", key, "error", err)
		return nil, errx.Wrap(ErrInstallFailed, err)
	}

	rec.Status = StatusInstalled
	rec.Backup = handle
	rec.InstalledAt = time.Now()
	r.logger.Debug("hook installed", "target", key, "priority", d.Priority)
	return handle, nil
}

// Unregister removes the interception for target. A target that is not
// in Installed state returns ErrNotInstalled. If the primitive fails to
// remove the redirection the record stays Installed so the backup handle
// is never left dangling.
func (r *Registry) Unregister(target Target) error {
	key := target.Key()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unregisterLocked(key)
}

func (r *Registry) unregisterLocked(key string) error {
	rec, ok := r.records[key]
	if !ok || rec.Status != StatusInstalled {
		return errx.With(ErrNotInstalled, ": %s", key)
	}

	if err := r.primitive.Uninstall(rec.Target); err != nil {
		r.logger.Error("hook remove failed, keeping record installed", "target", key, "error", err)
		return errx.Wrap(ErrRemoveFailed, err)
	}

	rec.Backup.invalidate()
	rec.Status = StatusRemoved
	delete(r.records, key)
	r.logger.Debug("hook removed", "target", key)
	return nil
}

// RegisterCatalog installs every enabled descriptor of the catalog,
// continuing past individual failures.
func (r *Registry) RegisterCatalog(c Catalog) CatalogResult {
	result := CatalogResult{Catalog: c.Name}
	for _, d := range c.Enabled() {
		result.Total++
		if _, err := r.Register(d); err != nil {
			result.Failures = append(result.Failures, CatalogFailure{
				Target: Target{Owner: d.Owner, Member: d.Member, Params: d.ParamTypes}.Key(),
				Err:    err,
			})
			continue
		}
		result.Registered++
	}
	r.logger.Info("catalog registered",
		"catalog", c.Name,
		"registered", result.Registered,
		"total", result.Total,
	)
	return result
}

// UnregisterAll removes every installed hook, continuing past failures.
func (r *Registry) UnregisterAll() CatalogResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.records))
	for key, rec := range r.records {
		if rec.Status == StatusInstalled {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	result := CatalogResult{Catalog: "*", Total: len(keys)}
	for _, key := range keys {
		if err := r.unregisterLocked(key); err != nil {
			result.Failures = append(result.Failures, CatalogFailure{Target: key, Err: err})
			continue
		}
		result.Registered++
	}
	return result
}

// CallOriginal invokes the pre-interception behavior through a backup
// handle. It does not touch the registry table, so it never blocks
// behind unrelated register/unregister traffic.
func (r *Registry) CallOriginal(h *BackupHandle, receiver any, args ...any) (any, error) {
	return r.primitive.Invoke(h, receiver, args...)
}

// Installed reports whether target currently has an installed hook.
func (r *Registry) Installed(target Target) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[target.Key()]
	return ok && rec.Status == StatusInstalled
}

// Records returns a snapshot of the registry table sorted by target key.
func (r *Registry) Records() []RecordInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RecordInfo, 0, len(r.records))
	for key, rec := range r.records {
		info := RecordInfo{
			Target:      key,
			Priority:    rec.Descriptor.Priority,
			Status:      rec.Status,
			InstalledAt: rec.InstalledAt,
		}
		if rec.LastErr != nil {
			info.LastErr = rec.LastErr.Error()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// resolveTarget maps a descriptor to exactly one declared target. With
// explicit parameter types the key must match a declared candidate.
// Without them, candidates are matched by the replacement's parameter
// count; more than one match is reported as ambiguous rather than
// silently picking the first.
func (r *Registry) resolveTarget(d Descriptor) (Target, error) {
	candidates := r.primitive.Candidates(d.Owner, d.Member)
	if len(candidates) == 0 {
		return Target{}, errx.With(ErrTargetNotFound, ": %s.%s", d.Owner, d.Member)
	}

	if len(d.ParamTypes) > 0 {
		want := Target{Owner: d.Owner, Member: d.Member, Params: d.ParamTypes}
		for _, c := range candidates {
			if c.Key() == want.Key() {
				return c, nil
			}
		}
		return Target{}, errx.With(ErrTargetNotFound, ": %s", want.Key())
	}

	var matches []Target
	for _, c := range candidates {
		if c.Arity() == d.ParamCount {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return Target{}, errx.With(ErrTargetNotFound, ": %s.%s with arity %d", d.Owner, d.Member, d.ParamCount)
	case 1:
		return matches[0], nil
	default:
		return Target{}, errx.With(ErrAmbiguousTarget, ": %s.%s has %d overloads with arity %d", d.Owner, d.Member, len(matches), d.ParamCount)
	}
}
