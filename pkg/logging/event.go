package logging

import (
	"encoding/json"
	"time"
)

// Event is the structured lifecycle event emitted by the virtualization
// core. Required fields: Timestamp, RunID, EventType, Summary.
type Event struct {
	Timestamp time.Time       `json:"ts"`
	RunID     string          `json:"run_id"`
	EventType string          `json:"event_type"`
	Summary   string          `json:"summary"`
	Component string          `json:"component,omitempty"`
	Tags      []string        `json:"tags,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Event type constants.
const (
	EventHookInstalled      = "hook_installed"
	EventHookInstallFailed  = "hook_install_failed"
	EventHookRemoved        = "hook_removed"
	EventCatalogRegistered  = "catalog_registered"
	EventMappingAdded       = "mapping_added"
	EventMappingRemoved     = "mapping_removed"
	EventNamespaceCreated   = "namespace_created"
	EventNamespaceDestroyed = "namespace_destroyed"
	EventNamespaceBackup    = "namespace_backup"
	EventNamespaceRestore   = "namespace_restore"
)

// HookData is the payload for hook_* events.
type HookData struct {
	Target   string `json:"target"`
	Priority int    `json:"priority,omitempty"`
	Error    string `json:"error,omitempty"`
}

// CatalogData is the payload for catalog_registered events.
type CatalogData struct {
	Catalog    string `json:"catalog"`
	Registered int    `json:"registered"`
	Total      int    `json:"total"`
}

// MappingData is the payload for mapping_* events.
type MappingData struct {
	RealPrefix    string `json:"real_prefix"`
	VirtualPrefix string `json:"virtual_prefix,omitempty"`
}

// NamespaceData is the payload for namespace_* events.
type NamespaceData struct {
	Owner      string `json:"owner"`
	BytesFreed int64  `json:"bytes_freed,omitempty"`
	Snapshot   string `json:"snapshot,omitempty"`
	Roots      int    `json:"roots,omitempty"`
}
