// Package hooks holds the declarative interception catalogs: static
// tables of descriptor literals, one group per guest API surface,
// built at startup and handed to the hook registry.
package hooks

import (
	"log/slog"

	"github.com/virtualspace/virtspace/internal/errx"
	"github.com/virtualspace/virtspace/pkg/api"
	"github.com/virtualspace/virtspace/pkg/redirect"
)

// ProcessIdentity is the virtual process the guest believes it runs as.
// Zero fields fall through to the original implementation.
type ProcessIdentity struct {
	Pid     int
	UID     int
	Package string
}

// PackageSource answers virtual package metadata lookups.
type PackageSource interface {
	Lookup(name string) (api.PackageInfo, bool)
	Installed() []api.PackageInfo
}

// NetworkPolicy controls the network catalog: hosts may be rewritten to
// a virtual address or denied outright.
type NetworkPolicy struct {
	Rewrites map[string]string
	Blocked  map[string]struct{}
}

// RewriteHost maps host to its virtual address, or returns it unchanged.
func (p *NetworkPolicy) RewriteHost(host string) string {
	if p == nil {
		return host
	}
	if v, ok := p.Rewrites[host]; ok {
		return v
	}
	return host
}

// Allowed reports whether connections to host are permitted.
func (p *NetworkPolicy) Allowed(host string) bool {
	if p == nil {
		return true
	}
	_, blocked := p.Blocked[host]
	return !blocked
}

// Env carries the shared state every catalog's replacements close over.
type Env struct {
	Redirect *redirect.Redirector
	Device   api.DeviceIdentity
	Proc     ProcessIdentity
	Packages PackageSource
	Network  *NetworkPolicy
	Logger   *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// resolve runs a path through the redirector, passing it through
// unchanged when no redirector is wired.
func (e *Env) resolve(path string) string {
	if e.Redirect == nil {
		return path
	}
	return e.Redirect.Resolve(path)
}

func argString(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", errx.With(ErrBadArgument, ": missing argument %d", i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", errx.With(ErrBadArgument, ": argument %d is %T, want string", i, args[i])
	}
	return s, nil
}

func argInt(args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, errx.With(ErrBadArgument, ": missing argument %d", i)
	}
	n, ok := args[i].(int)
	if !ok {
		return 0, errx.With(ErrBadArgument, ": argument %d is %T, want int", i, args[i])
	}
	return n, nil
}

func receiverString(receiver any) (string, error) {
	s, ok := receiver.(string)
	if !ok {
		return "", errx.With(ErrBadArgument, ": receiver is %T, want string", receiver)
	}
	return s, nil
}
