package api

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/virtualspace/virtspace/internal/errx"
)

// DefaultRealDataRoot is the conventional base directory guest
// applications believe their private data lives under.
const DefaultRealDataRoot = "/data/data"

// DeviceIdentity is the virtual device presented to guest applications
// through the device-info hook catalog.
type DeviceIdentity struct {
	Brand        string `json:"brand,omitempty"`
	Model        string `json:"model,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Serial       string `json:"serial,omitempty"`
	AndroidID    string `json:"android_id,omitempty"`
}

// PackageInfo is the virtual package metadata answered by the
// package-manager hook catalog for an isolated application.
type PackageInfo struct {
	Name        string `json:"name"`
	VersionName string `json:"version_name,omitempty"`
	VersionCode int    `json:"version_code,omitempty"`
	DataDir     string `json:"data_dir,omitempty"`
}

type Config struct {
	// VirtualRoot is the host directory all isolation namespaces live under.
	VirtualRoot string `json:"virtual_root,omitempty"`
	// RealDataRoot is the base of the conventional real locations that get
	// redirected into namespaces. Defaults to DefaultRealDataRoot.
	RealDataRoot string `json:"real_data_root,omitempty"`
	// EventLogPath enables the JSONL lifecycle event log when set.
	EventLogPath string `json:"event_log_path,omitempty"`
	// RunID stamps emitted events. Defaults to a generated id.
	RunID string `json:"run_id,omitempty"`
	// Device is the virtual device identity. Missing fields are defaulted.
	Device *DeviceIdentity `json:"device,omitempty"`
	// DisabledCatalogs lists hook catalogs skipped at startup.
	DisabledCatalogs []string `json:"disabled_catalogs,omitempty"`
}

// DefaultVirtualRoot returns the default namespace storage root.
func DefaultVirtualRoot() string {
	if p := os.Getenv("VIRTSPACE_ROOT"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "virtspace")
}

// ApplyDefaults fills unset fields in place.
func (c *Config) ApplyDefaults() {
	if c.VirtualRoot == "" {
		c.VirtualRoot = DefaultVirtualRoot()
	}
	if c.RealDataRoot == "" {
		c.RealDataRoot = DefaultRealDataRoot
	}
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	if c.Device == nil {
		c.Device = &DeviceIdentity{}
	}
	c.Device.applyDefaults()
}

func (d *DeviceIdentity) applyDefaults() {
	if d.Brand == "" {
		d.Brand = "google"
	}
	if d.Manufacturer == "" {
		d.Manufacturer = "Google"
	}
	if d.Model == "" {
		d.Model = "Pixel 7"
	}
	if d.Serial == "" {
		d.Serial = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	}
	if d.AndroidID == "" {
		d.AndroidID = strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	}
}

// Validate checks the config after defaulting.
func (c *Config) Validate() error {
	if !filepath.IsAbs(c.VirtualRoot) {
		return errx.With(ErrInvalidConfig, ": virtual root %q must be absolute", c.VirtualRoot)
	}
	if !filepath.IsAbs(c.RealDataRoot) {
		return errx.With(ErrInvalidConfig, ": real data root %q must be absolute", c.RealDataRoot)
	}
	if strings.HasPrefix(c.VirtualRoot+"/", c.RealDataRoot+"/") {
		return errx.With(ErrInvalidConfig, ": virtual root %q nests inside real data root %q", c.VirtualRoot, c.RealDataRoot)
	}
	return nil
}

// CatalogEnabled reports whether a named hook catalog should be
// registered at startup.
func (c *Config) CatalogEnabled(name string) bool {
	for _, d := range c.DisabledCatalogs {
		if d == name {
			return false
		}
	}
	return true
}
