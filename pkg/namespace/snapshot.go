package namespace

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/virtualspace/virtspace/internal/errx"
	"github.com/virtualspace/virtspace/pkg/logging"
)

// ManifestName is the snapshot manifest written into every backup
// destination alongside the copied roots.
const ManifestName = "manifest.cbor"

// Snapshot describes one completed backup.
type Snapshot struct {
	ID         string         `cbor:"id"`
	Owner      string         `cbor:"owner"`
	CreatedAt  int64          `cbor:"created_at"` // unix seconds
	Roots      []SnapshotRoot `cbor:"roots"`
	TotalBytes int64          `cbor:"total_bytes"`
}

// SnapshotRoot is the per-root accounting inside a snapshot.
type SnapshotRoot struct {
	Name  string `cbor:"name"`
	Files int    `cbor:"files"`
	Bytes int64  `cbor:"bytes"`
}

// RestoreReport describes the outcome of a restore. A backup missing
// some roots restores the subset present; Missing lists the rest.
type RestoreReport struct {
	Owner    string
	Snapshot string
	Restored []string
	Missing  []string
}

// Backup recursively copies the owner's three roots into dest and writes
// a manifest. Fails when the namespace does not exist.
func (m *Manager) Backup(owner, dest string) (*Snapshot, error) {
	if !validOwner(owner) {
		return nil, errx.With(ErrInvalidOwner, ": %q", owner)
	}

	lock := m.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	if !m.Exists(owner) {
		return nil, errx.With(ErrNotFound, ": %s", owner)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, errx.With(ErrIO, ": create backup destination: %w", err)
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		Owner:     owner,
		CreatedAt: time.Now().Unix(),
	}
	roots := m.layout.Roots(owner)
	for i, name := range RootNames {
		files, bytes, err := copyTree(roots[i], filepath.Join(dest, name))
		if err != nil {
			return nil, errx.With(ErrIO, ": backup %s: %w", name, err)
		}
		snap.Roots = append(snap.Roots, SnapshotRoot{Name: name, Files: files, Bytes: bytes})
		snap.TotalBytes += bytes
	}

	if err := writeManifest(filepath.Join(dest, ManifestName), snap); err != nil {
		return nil, err
	}

	m.logger.Info("namespace backed up", "owner", owner, "dest", dest, "bytes", snap.TotalBytes)
	if m.emitter != nil {
		_ = m.emitter.Emit(logging.EventNamespaceBackup, "namespace backup for "+owner,
			"namespace", nil, &logging.NamespaceData{Owner: owner, Snapshot: snap.ID, Roots: len(snap.Roots)})
	}
	return snap, nil
}

// Restore copies backup roots from src into the owner's namespace,
// creating the namespace when needed. Roots absent from the backup are
// reported in the result, not treated as fatal; a source containing no
// roots at all fails with ErrRestoreSource.
func (m *Manager) Restore(owner, src string) (*RestoreReport, error) {
	if !validOwner(owner) {
		return nil, errx.With(ErrInvalidOwner, ": %q", owner)
	}

	report := &RestoreReport{Owner: owner}
	if snap, err := readManifest(filepath.Join(src, ManifestName)); err == nil {
		report.Snapshot = snap.ID
	}

	present := 0
	for _, name := range RootNames {
		if info, err := os.Stat(filepath.Join(src, name)); err == nil && info.IsDir() {
			present++
		}
	}
	if present == 0 {
		return nil, errx.With(ErrRestoreSource, ": %s", src)
	}

	if err := m.Create(owner); err != nil {
		return nil, err
	}

	lock := m.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	roots := m.layout.Roots(owner)
	for i, name := range RootNames {
		from := filepath.Join(src, name)
		if info, err := os.Stat(from); err != nil || !info.IsDir() {
			report.Missing = append(report.Missing, name)
			continue
		}
		// Restore replaces the root wholesale.
		if err := os.RemoveAll(roots[i]); err != nil {
			return nil, errx.With(ErrIO, ": clear %s: %w", name, err)
		}
		if _, _, err := copyTree(from, roots[i]); err != nil {
			return nil, errx.With(ErrIO, ": restore %s: %w", name, err)
		}
		report.Restored = append(report.Restored, name)
	}

	m.logger.Info("namespace restored", "owner", owner,
		"restored", len(report.Restored), "missing", len(report.Missing))
	if m.emitter != nil {
		_ = m.emitter.Emit(logging.EventNamespaceRestore, "namespace restore for "+owner,
			"namespace", nil, &logging.NamespaceData{Owner: owner, Snapshot: report.Snapshot, Roots: len(report.Restored)})
	}
	return report, nil
}

func writeManifest(path string, snap *Snapshot) error {
	b, err := cbor.Marshal(snap)
	if err != nil {
		return errx.With(ErrIO, ": encode manifest: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return errx.With(ErrIO, ": write manifest: %w", err)
	}
	return nil
}

func readManifest(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := cbor.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
