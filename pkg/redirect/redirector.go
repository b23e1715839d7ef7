// Package redirect maps real path prefixes into a virtual namespace.
// Resolution picks the longest matching real prefix; paths without a
// mapping pass through unchanged.
package redirect

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/virtualspace/virtspace/internal/errx"
)

// Rule is one prefix mapping. Both prefixes are normalized absolute
// paths with no trailing slash.
type Rule struct {
	RealPrefix    string `json:"real_prefix"`
	VirtualPrefix string `json:"virtual_prefix"`
}

// Redirector holds the mapping table. Resolve may run concurrently;
// AddMapping/RemoveMapping are exclusive with reads and each other.
type Redirector struct {
	mu     sync.RWMutex
	rules  map[string]string
	logger *slog.Logger
}

func NewRedirector(logger *slog.Logger) *Redirector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redirector{
		rules:  make(map[string]string),
		logger: logger.With("component", "redirect"),
	}
}

// AddMapping installs real -> virtual. An existing mapping for the same
// real prefix is overwritten (last write wins).
func (r *Redirector) AddMapping(real, virtual string) error {
	realNorm, ok := Normalize(real)
	if !ok {
		return errx.With(ErrEmptyPath, ": real prefix")
	}
	virtNorm, ok := Normalize(virtual)
	if !ok {
		return errx.With(ErrEmptyPath, ": virtual prefix")
	}

	r.mu.Lock()
	r.rules[realNorm] = virtNorm
	r.mu.Unlock()

	r.logger.Debug("path mapping added", "real", realNorm, "virtual", virtNorm)
	return nil
}

// RemoveMapping deletes the mapping for real. Returns false when no
// mapping existed; absence is not an error.
func (r *Redirector) RemoveMapping(real string) bool {
	realNorm, ok := Normalize(real)
	if !ok {
		return false
	}

	r.mu.Lock()
	_, found := r.rules[realNorm]
	delete(r.rules, realNorm)
	r.mu.Unlock()

	if found {
		r.logger.Debug("path mapping removed", "real", realNorm)
	}
	return found
}

// Resolve redirects path through the longest matching real prefix, or
// returns the input unchanged when nothing matches. The prefix test is
// a plain string prefix, not segment-aware.
func (r *Redirector) Resolve(path string) string {
	norm, ok := Normalize(path)
	if !ok {
		return path
	}

	r.mu.RLock()
	var bestReal, bestVirtual string
	for real, virtual := range r.rules {
		if strings.HasPrefix(norm, real) && len(real) > len(bestReal) {
			bestReal, bestVirtual = real, virtual
		}
	}
	r.mu.RUnlock()

	if bestReal == "" {
		return path
	}
	return bestVirtual + norm[len(bestReal):]
}

// Mappings returns a snapshot of the table sorted by real prefix.
func (r *Redirector) Mappings() []Rule {
	r.mu.RLock()
	out := make([]Rule, 0, len(r.rules))
	for real, virtual := range r.rules {
		out = append(out, Rule{RealPrefix: real, VirtualPrefix: virtual})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].RealPrefix < out[j].RealPrefix })
	return out
}

// Normalize strips trailing slashes (except the root) and forces a
// single leading slash. The second return is false for empty input.
func Normalize(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, true
}
