package namespace

import (
	"database/sql"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/virtualspace/virtspace/internal/errx"
	"github.com/virtualspace/virtspace/pkg/logging"
	"github.com/virtualspace/virtspace/pkg/redirect"
)

// Manager owns per-application isolation namespaces: the three virtual
// roots, their path mappings, and the persistent namespace registry.
// Create/Destroy/Backup/Restore serialize per owner; distinct owners
// proceed in parallel.
type Manager struct {
	layout     Layout
	realBase   string
	redirector *redirect.Redirector
	db         *sql.DB
	emitter    *logging.Emitter
	logger     *slog.Logger

	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

// NewManager opens (creating if needed) the namespace registry under
// virtualRoot and returns a manager redirecting the conventional real
// locations below realBase.
func NewManager(virtualRoot, realBase string, rd *redirect.Redirector, emitter *logging.Emitter, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(virtualRoot, 0755); err != nil {
		return nil, errx.Wrap(ErrIO, err)
	}
	db, err := openNamespaceDB(virtualRoot)
	if err != nil {
		return nil, errx.Wrap(ErrOpenRegistry, err)
	}
	return &Manager{
		layout:     Layout{Root: virtualRoot},
		realBase:   realBase,
		redirector: rd,
		db:         db,
		emitter:    emitter,
		logger:     logger.With("component", "namespace"),
	}, nil
}

// Close releases the namespace registry.
func (m *Manager) Close() error {
	return m.db.Close()
}

// Layout returns the directory layout in use.
func (m *Manager) Layout() Layout { return m.layout }

func (m *Manager) ownerLock(owner string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owners == nil {
		m.owners = make(map[string]*sync.Mutex)
	}
	l, ok := m.owners[owner]
	if !ok {
		l = &sync.Mutex{}
		m.owners[owner] = l
	}
	return l
}

func validOwner(owner string) bool {
	return owner != "" &&
		!strings.ContainsAny(owner, "/\\") &&
		owner != "." && owner != ".." &&
		!strings.Contains(owner, "..")
}

// Exists reports whether all three namespace roots are present.
func (m *Manager) Exists(owner string) bool {
	for _, root := range m.layout.Roots(owner) {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// Create sets up the namespace for owner. Idempotent: an existing
// namespace is left as is (mappings are re-registered). Creation is
// all-or-nothing; directories created before a failure are rolled back
// and the namespace is not registered.
func (m *Manager) Create(owner string) error {
	if !validOwner(owner) {
		return errx.With(ErrInvalidOwner, ": %q", owner)
	}

	lock := m.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	if m.Exists(owner) {
		m.registerMappings(owner)
		return nil
	}

	ownerDir := m.layout.OwnerDir(owner)
	_, statErr := os.Stat(ownerDir)
	ownedDir := os.IsNotExist(statErr)

	var created []string
	for _, root := range m.layout.Roots(owner) {
		if info, err := os.Stat(root); err == nil {
			if info.IsDir() {
				continue
			}
			m.rollback(created, ownedDir, ownerDir)
			return errx.With(ErrIO, ": create %s: path exists and is not a directory", root)
		}
		if err := os.MkdirAll(root, 0755); err != nil {
			m.rollback(created, ownedDir, ownerDir)
			return errx.With(ErrIO, ": create %s: %w", root, err)
		}
		created = append(created, root)
	}

	ns := Namespace{
		Owner:           owner,
		FilesystemRoot:  m.layout.FilesystemRoot(owner),
		DatabaseRoot:    m.layout.DatabaseRoot(owner),
		PreferencesRoot: m.layout.PreferencesRoot(owner),
		CreatedAt:       time.Now(),
	}
	if err := m.saveNamespace(ns); err != nil {
		// The directories are usable; the registry row is advisory.
		m.logger.Warn("namespace registry write failed", "owner", owner, "error", err)
	}

	m.registerMappings(owner)
	m.logger.Info("namespace created", "owner", owner)
	if m.emitter != nil {
		_ = m.emitter.Emit(logging.EventNamespaceCreated, "namespace created for "+owner,
			"namespace", nil, &logging.NamespaceData{Owner: owner, Roots: len(RootNames)})
	}
	return nil
}

func (m *Manager) rollback(created []string, ownedDir bool, ownerDir string) {
	for _, root := range created {
		_ = os.RemoveAll(root)
	}
	if ownedDir {
		_ = os.RemoveAll(ownerDir)
	}
}

// registerMappings ties the owner's conventional real locations to the
// virtual roots. AddMapping overwrites, so re-registration is harmless.
func (m *Manager) registerMappings(owner string) {
	reals := realLocations(m.realBase, owner)
	virts := m.layout.Roots(owner)
	for i := range reals {
		_ = m.redirector.AddMapping(reals[i], virts[i])
		if m.emitter != nil {
			_ = m.emitter.Emit(logging.EventMappingAdded, "mapping added for "+owner,
				"namespace", nil, &logging.MappingData{RealPrefix: reals[i], VirtualPrefix: virts[i]})
		}
	}
}

func (m *Manager) dropMappings(owner string) {
	for _, real := range realLocations(m.realBase, owner) {
		if m.redirector.RemoveMapping(real) && m.emitter != nil {
			_ = m.emitter.Emit(logging.EventMappingRemoved, "mapping removed for "+owner,
				"namespace", nil, &logging.MappingData{RealPrefix: real})
		}
	}
}

// Destroy removes the namespace and returns the bytes freed. The path
// mappings are dropped before any deletion so no new resolution can land
// in a directory mid-removal. A missing namespace frees 0 bytes and is
// not an error.
func (m *Manager) Destroy(owner string) (int64, error) {
	if !validOwner(owner) {
		return 0, errx.With(ErrInvalidOwner, ": %q", owner)
	}

	lock := m.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	m.dropMappings(owner)

	ownerDir := m.layout.OwnerDir(owner)
	if _, err := os.Stat(ownerDir); os.IsNotExist(err) {
		return 0, nil
	}

	freed := dirSize(ownerDir)
	if err := os.RemoveAll(ownerDir); err != nil {
		return 0, errx.With(ErrIO, ": remove %s: %w", ownerDir, err)
	}
	if err := m.deleteNamespaceRow(owner); err != nil {
		m.logger.Warn("namespace registry delete failed", "owner", owner, "error", err)
	}

	m.logger.Info("namespace destroyed", "owner", owner, "bytes_freed", freed)
	if m.emitter != nil {
		_ = m.emitter.Emit(logging.EventNamespaceDestroyed, "namespace destroyed for "+owner,
			"namespace", nil, &logging.NamespaceData{Owner: owner, BytesFreed: freed})
	}
	return freed, nil
}

// List returns the registered namespaces sorted by owner.
func (m *Manager) List() ([]Namespace, error) {
	nss, err := m.listNamespaceRows()
	if err != nil {
		return nil, errx.Wrap(ErrOpenRegistry, err)
	}
	return nss, nil
}

func dirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// copyTree recursively copies src into dst, returning the number of
// files and bytes copied.
func copyTree(src, dst string) (int, int64, error) {
	var files int
	var bytes int64
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		n, err := copyFile(p, target)
		if err != nil {
			return err
		}
		files++
		bytes += n
		return nil
	})
	return files, bytes, err
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return n, err
}
