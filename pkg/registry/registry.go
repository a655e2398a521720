// Package registry tracks connected devices and their sync preferences.
// The registry exclusively owns the device map; the sync engine only
// queries it to compute fan-out targets.
package registry

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound indicates the device id is not registered.
var ErrNotFound = errors.New("registry: device not found")

// DeviceType classifies the connecting device.
type DeviceType string

const (
	// TypeMobile is a phone-class device.
	TypeMobile DeviceType = "mobile"
	// TypeTablet is a tablet-class device.
	TypeTablet DeviceType = "tablet"
	// TypeDesktop is a desktop or laptop.
	TypeDesktop DeviceType = "desktop"
	// TypeUnknown is anything else.
	TypeUnknown DeviceType = "unknown"
)

// NormalizeType maps arbitrary client-supplied type strings onto the
// closed DeviceType set.
func NormalizeType(s string) DeviceType {
	switch DeviceType(s) {
	case TypeMobile, TypeTablet, TypeDesktop:
		return DeviceType(s)
	default:
		return TypeUnknown
	}
}

// Info is the client-supplied metadata for a registering device.
type Info struct {
	Name     string
	Type     DeviceType
	AutoSync bool
}

// Device is a connected device. The id is owned by the transport layer;
// the registry only stores it.
type Device struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        DeviceType `json:"type"`
	AutoSync    bool       `json:"auto_sync"`
	ConnectedAt time.Time  `json:"connected_at"`
}

// Registry is a thread-safe device registry.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		devices: make(map[string]*Device),
	}
}

// Register adds a device. Re-registering an existing id replaces its
// metadata but keeps the original connection time.
func (r *Registry) Register(id string, info Info) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connectedAt := time.Now()
	if existing, ok := r.devices[id]; ok {
		connectedAt = existing.ConnectedAt
	}

	deviceType := info.Type
	if deviceType == "" {
		deviceType = TypeUnknown
	}

	r.devices[id] = &Device{
		ID:          id,
		Name:        info.Name,
		Type:        deviceType,
		AutoSync:    info.AutoSync,
		ConnectedAt: connectedAt,
	}
}

// Unregister removes a device. Unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.devices, id)
}

// SetAutoSync updates a device's auto-sync preference.
func (r *Registry) SetAutoSync(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	device, ok := r.devices[id]
	if !ok {
		return ErrNotFound
	}
	device.AutoSync = enabled
	return nil
}

// Get returns a snapshot of a device.
func (r *Registry) Get(id string) (Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[id]
	if !ok {
		return Device{}, ErrNotFound
	}
	return *device, nil
}

// AutoSyncTargets returns the ids of every device with auto-sync enabled,
// excluding the given id. The result is a snapshot: registration changes
// after the call do not affect an in-flight fan-out.
func (r *Registry) AutoSyncTargets(excluding string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	targets := make([]string, 0, len(r.devices))
	for id, device := range r.devices {
		if id == excluding || !device.AutoSync {
			continue
		}
		targets = append(targets, id)
	}
	sort.Strings(targets)
	return targets
}

// List returns a snapshot of all devices ordered by connection time.
func (r *Registry) List() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]Device, 0, len(r.devices))
	for _, device := range r.devices {
		devices = append(devices, *device)
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].ConnectedAt.Equal(devices[j].ConnectedAt) {
			return devices[i].ID < devices[j].ID
		}
		return devices[i].ConnectedAt.Before(devices[j].ConnectedAt)
	})
	return devices
}

// Count returns the number of registered devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// AutoSyncCount returns the number of devices with auto-sync enabled.
func (r *Registry) AutoSyncCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, device := range r.devices {
		if device.AutoSync {
			count++
		}
	}
	return count
}
