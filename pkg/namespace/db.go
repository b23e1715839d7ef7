package namespace

import (
	"database/sql"
	"path/filepath"
	"time"

	"github.com/virtualspace/virtspace/pkg/storedb"
)

const namespaceModule = "namespace"

func namespaceDBPath(root string) string {
	return filepath.Join(root, "metadata.db")
}

func openNamespaceDB(root string) (*sql.DB, error) {
	return storedb.Open(storedb.OpenOptions{
		Path:       namespaceDBPath(root),
		Module:     namespaceModule,
		Migrations: namespaceMigrations(),
	})
}

func namespaceMigrations() []storedb.Migration {
	return []storedb.Migration{
		{
			Version: 1,
			Name:    "create_namespaces",
			SQL: `
CREATE TABLE IF NOT EXISTS namespaces (
  owner TEXT PRIMARY KEY,
  fs_root TEXT NOT NULL,
  db_root TEXT NOT NULL,
  prefs_root TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_namespaces_created ON namespaces(created_at DESC);
`,
		},
	}
}

func (m *Manager) saveNamespace(ns Namespace) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := m.db.Exec(`
INSERT INTO namespaces (owner, fs_root, db_root, prefs_root, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(owner) DO UPDATE SET
  fs_root = excluded.fs_root,
  db_root = excluded.db_root,
  prefs_root = excluded.prefs_root,
  updated_at = excluded.updated_at
`, ns.Owner, ns.FilesystemRoot, ns.DatabaseRoot, ns.PreferencesRoot,
		ns.CreatedAt.UTC().Format(time.RFC3339Nano), now)
	return err
}

func (m *Manager) deleteNamespaceRow(owner string) error {
	_, err := m.db.Exec(`DELETE FROM namespaces WHERE owner = ?`, owner)
	return err
}

func (m *Manager) listNamespaceRows() ([]Namespace, error) {
	rows, err := m.db.Query(`
SELECT owner, fs_root, db_root, prefs_root, created_at
  FROM namespaces
 ORDER BY owner`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Namespace
	for rows.Next() {
		var ns Namespace
		var created string
		if err := rows.Scan(&ns.Owner, &ns.FilesystemRoot, &ns.DatabaseRoot, &ns.PreferencesRoot, &created); err != nil {
			return nil, err
		}
		ns.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, ns)
	}
	return out, rows.Err()
}
