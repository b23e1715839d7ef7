package hook

import (
	"strings"
	"time"
)

// Callable is an invokable implementation behind a target: either the
// real behavior or an installed replacement.
type Callable func(receiver any, args ...any) (any, error)

// Replacement is the hook body. orig reaches the pre-interception
// behavior of the target it replaced.
type Replacement func(orig Callable, receiver any, args ...any) (any, error)

// Target identifies one interceptable callable: owning type, member
// name, and ordered parameter type names.
type Target struct {
	Owner  string
	Member string
	Params []string
}

// Key returns the canonical registry key, e.g.
// "android.os.Build.getSerial(java.lang.String)".
func (t Target) Key() string {
	return t.Owner + "." + t.Member + "(" + strings.Join(t.Params, ",") + ")"
}

// Arity returns the declared parameter count.
func (t Target) Arity() int { return len(t.Params) }

// Descriptor is one interception intent, usually declared as a literal
// inside a catalog.
type Descriptor struct {
	Owner  string
	Member string
	// ParamTypes pins the exact target overload. When empty, resolution
	// falls back to matching declared targets by ParamCount.
	ParamTypes []string
	// ParamCount is the replacement's parameter count, consulted only
	// when ParamTypes is empty.
	ParamCount  int
	Replacement Replacement
	// Priority orders installation within a catalog; higher installs first.
	Priority int
	Enabled  bool
}

// Status is the lifecycle state of a registry record.
type Status int

const (
	StatusPending Status = iota
	StatusInstalled
	StatusFailed
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInstalled:
		return "installed"
	case StatusFailed:
		return "failed"
	case StatusRemoved:
		return "removed"
	}
	return "unknown"
}

// Record is the registry's live entry for one target.
type Record struct {
	Descriptor  Descriptor
	Target      Target
	Backup      *BackupHandle
	Status      Status
	InstalledAt time.Time
	LastErr     error
}

// RecordInfo is an immutable snapshot of a Record for callers outside
// the registry lock.
type RecordInfo struct {
	Target      string
	Priority    int
	Status      Status
	InstalledAt time.Time
	LastErr     string
}
