package core

import (
	"sort"
	"sync"

	"github.com/virtualspace/virtspace/pkg/api"
)

// packageTable is the in-memory virtual package registry backing the
// package-manager catalog. One entry per isolation namespace.
type packageTable struct {
	mu       sync.RWMutex
	packages map[string]api.PackageInfo
}

func newPackageTable() *packageTable {
	return &packageTable{packages: make(map[string]api.PackageInfo)}
}

func (t *packageTable) Lookup(name string) (api.PackageInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.packages[name]
	return info, ok
}

func (t *packageTable) Installed() []api.PackageInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]api.PackageInfo, 0, len(t.packages))
	for _, info := range t.packages {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (t *packageTable) put(info api.PackageInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.packages[info.Name] = info
}

func (t *packageTable) remove(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.packages, name)
}
