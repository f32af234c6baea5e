// Package devices tracks the hardware time clocks allowed to assert
// clock events: a YAML registry with an optional glob allowlist,
// hot-reloaded when the registry file changes.
package devices

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Device describes one hardware time clock.
type Device struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Location string `yaml:"location" json:"location"`
	Status   string `yaml:"status" json:"status"`
	// LastActivity is the instant of the most recent event from this
	// device. Runtime state, not read from the registry file.
	LastActivity *time.Time `yaml:"-" json:"lastActivity,omitempty"`
}

// registryFile is the on-disk registry format.
type registryFile struct {
	Devices []Device `yaml:"devices"`
}

// Registry holds the known devices and the allowlist patterns applied
// to incoming device IDs.
type Registry struct {
	mu      sync.RWMutex
	path    string
	allow   []string
	devices map[string]*Device
	logger  *slog.Logger
}

// NewRegistry creates a registry. With a non-empty path the registry
// file is loaded immediately; a missing file is not an error, it just
// means no devices are described yet. Allow patterns use doublestar
// glob syntax; an empty list allows every device.
func NewRegistry(path string, allow []string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, pattern := range allow {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid device allow pattern %q", pattern)
		}
	}

	r := &Registry{
		path:    path,
		allow:   allow,
		devices: make(map[string]*Device),
		logger:  logger,
	}

	if path != "" {
		if err := r.Reload(); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			logger.Warn("Device registry file not found, starting empty", "path", path)
		}
	}
	return r, nil
}

// Reload re-reads the registry file, replacing the device set but
// preserving last-activity timestamps for devices that survive.
func (r *Registry) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("read device registry %s: %w", r.path, err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse device registry %s: %w", r.path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]*Device, len(file.Devices))
	for i := range file.Devices {
		d := file.Devices[i]
		if prev, ok := r.devices[d.ID]; ok {
			d.LastActivity = prev.LastActivity
		}
		next[d.ID] = &d
	}
	r.devices = next

	r.logger.Info("Device registry loaded",
		"path", r.path,
		"devices", len(next))
	return nil
}

// Allowed reports whether the device ID passes the allowlist. With no
// patterns configured every device is allowed.
func (r *Registry) Allowed(deviceID string) bool {
	if len(r.allow) == 0 {
		return true
	}
	for _, pattern := range r.allow {
		if ok, _ := doublestar.Match(pattern, deviceID); ok {
			return true
		}
	}
	return false
}

// Touch records activity from the device. Devices not present in the
// registry file are tracked anyway so the monitor can surface them.
func (r *Registry) Touch(deviceID string, at time.Time) {
	if deviceID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[deviceID]
	if !ok {
		d = &Device{ID: deviceID, Status: "unregistered"}
		r.devices[deviceID] = d
	}
	t := at
	d.LastActivity = &t
}

// List returns the known devices sorted by ID.
func (r *Registry) List() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
