package hook

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/virtualspace/virtspace/internal/errx"
)

// Primitive installs and removes call redirections. The registry treats
// it as an injected capability; tests substitute fakes.
type Primitive interface {
	// Candidates returns all declared targets for an owner/member pair,
	// in declaration order.
	Candidates(owner, member string) []Target
	// Install redirects target to repl and returns a handle that still
	// reaches the original behavior.
	Install(target Target, repl Replacement) (*BackupHandle, error)
	// Uninstall restores the original behavior of target.
	Uninstall(target Target) error
	// Invoke calls the pre-interception behavior through a handle.
	Invoke(h *BackupHandle, receiver any, args ...any) (any, error)
}

// BackupHandle is an opaque reference to a target's pre-interception
// behavior. The registry invalidates it on unregister so stale use is
// detectable instead of silently misbehaving.
type BackupHandle struct {
	id     string
	target Target
	orig   atomic.Pointer[Callable]
}

func newBackupHandle(target Target, orig Callable) *BackupHandle {
	h := &BackupHandle{id: uuid.NewString(), target: target}
	h.orig.Store(&orig)
	return h
}

// ID returns the handle's unique identifier.
func (h *BackupHandle) ID() string { return h.id }

// Target returns the target this handle backs.
func (h *BackupHandle) Target() Target { return h.target }

func (h *BackupHandle) original() (Callable, bool) {
	p := h.orig.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

func (h *BackupHandle) invalidate() { h.orig.Store(nil) }

// DispatchTable is the in-process interception primitive: guest-facing
// calls route through a swappable callable table, and Install swaps the
// entry for the target. It implements Primitive.
type DispatchTable struct {
	mu      sync.RWMutex
	entries map[string]*tableEntry
	order   []string
}

type tableEntry struct {
	target   Target
	original Callable
	current  Callable
	hooked   bool
}

func NewDispatchTable() *DispatchTable {
	return &DispatchTable{entries: make(map[string]*tableEntry)}
}

// Declare registers the real implementation of a target. Declaring the
// same target twice or a nil implementation is a programming error.
func (t *DispatchTable) Declare(target Target, impl Callable) {
	if impl == nil {
		panic("hook: nil implementation declared for " + target.Key())
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	key := target.Key()
	if _, exists := t.entries[key]; exists {
		panic("hook: duplicate target declaration for " + key)
	}
	t.entries[key] = &tableEntry{target: target, original: impl, current: impl}
	t.order = append(t.order, key)
}

// Candidates returns declared targets matching owner and member, in
// declaration order.
func (t *DispatchTable) Candidates(owner, member string) []Target {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Target
	for _, key := range t.order {
		e := t.entries[key]
		if e.target.Owner == owner && e.target.Member == member {
			out = append(out, e.target)
		}
	}
	return out
}

// Call is the guest-facing entry point: it dispatches to the current
// behavior of target, hooked or not.
func (t *DispatchTable) Call(target Target, receiver any, args ...any) (any, error) {
	t.mu.RLock()
	e, ok := t.entries[target.Key()]
	var fn Callable
	if ok {
		fn = e.current
	}
	t.mu.RUnlock()
	if fn == nil {
		return nil, errx.With(ErrTargetNotFound, ": %s", target.Key())
	}
	return fn(receiver, args...)
}

func (t *DispatchTable) Install(target Target, repl Replacement) (*BackupHandle, error) {
	if repl == nil {
		return nil, errx.With(ErrInstallFailed, ": nil replacement for %s", target.Key())
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[target.Key()]
	if !ok {
		return nil, errx.With(ErrTargetNotFound, ": %s", target.Key())
	}
	if e.hooked {
		return nil, errx.With(ErrAlreadyInstalled, ": %s", target.Key())
	}
	orig := e.original
	e.current = func(receiver any, args ...any) (any, error) {
		return repl(orig, receiver, args...)
	}
	e.hooked = true
	return newBackupHandle(target, orig), nil
}

func (t *DispatchTable) Uninstall(target Target) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[target.Key()]
	if !ok || !e.hooked {
		return errx.With(ErrNotInstalled, ": %s", target.Key())
	}
	e.current = e.original
	e.hooked = false
	return nil
}

// Invoke calls the original behavior through h. It takes no table lock:
// the handle already resolved the callable at install time.
func (t *DispatchTable) Invoke(h *BackupHandle, receiver any, args ...any) (any, error) {
	if h == nil {
		return nil, errx.With(ErrStaleHandle, ": nil handle")
	}
	orig, ok := h.original()
	if !ok {
		return nil, errx.With(ErrStaleHandle, ": %s", h.target.Key())
	}
	return orig(receiver, args...)
}
