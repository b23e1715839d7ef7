package namespace

import (
	"path/filepath"
	"time"
)

// Directory names under each owner's namespace. External backup/restore
// tooling addresses these directly, so they must stay stable.
const (
	FilesystemDirName  = "filesystem"
	DatabasesDirName   = "databases"
	PreferencesDirName = "shared_prefs"
)

// RootNames lists the per-owner root directories in canonical order.
var RootNames = []string{FilesystemDirName, DatabasesDirName, PreferencesDirName}

// Layout derives namespace directories from the virtual storage root:
// <root>/<owner>/{filesystem,databases,shared_prefs}.
type Layout struct {
	Root string
}

func (l Layout) OwnerDir(owner string) string {
	return filepath.Join(l.Root, owner)
}

func (l Layout) FilesystemRoot(owner string) string {
	return filepath.Join(l.Root, owner, FilesystemDirName)
}

func (l Layout) DatabaseRoot(owner string) string {
	return filepath.Join(l.Root, owner, DatabasesDirName)
}

func (l Layout) PreferencesRoot(owner string) string {
	return filepath.Join(l.Root, owner, PreferencesDirName)
}

// Roots returns the three namespace roots in canonical order.
func (l Layout) Roots(owner string) []string {
	return []string{
		l.FilesystemRoot(owner),
		l.DatabaseRoot(owner),
		l.PreferencesRoot(owner),
	}
}

// Namespace describes one owner's registered isolation namespace.
type Namespace struct {
	Owner           string    `json:"owner"`
	FilesystemRoot  string    `json:"filesystem_root"`
	DatabaseRoot    string    `json:"database_root"`
	PreferencesRoot string    `json:"preferences_root"`
	CreatedAt       time.Time `json:"created_at"`
}

// realLocations returns the conventional real directories redirected
// into the namespace, paired with the virtual roots in the same order:
// the owner's private data dir and its databases/shared_prefs subdirs.
// The subdirs nest under the data dir, so resolution depends on
// longest-prefix matching.
func realLocations(realBase, owner string) []string {
	base := filepath.Join(realBase, owner)
	return []string{
		base,
		filepath.Join(base, DatabasesDirName),
		filepath.Join(base, PreferencesDirName),
	}
}
