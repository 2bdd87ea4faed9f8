package device

import (
	"fmt"
	"sort"
	"sync"
)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Dialer)
)

// Register makes a vendor dialer available under the given driver name.
// Vendor client packages call this from an init function, the same way
// database/sql drivers do. Registering a nil dialer or the same name
// twice panics.
func Register(name string, dialer Dialer) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if dialer == nil {
		panic("device: Register dialer is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("device: Register called twice for driver " + name)
	}
	drivers[name] = dialer
}

// Open returns the dialer registered under name. An unknown name is a
// startup configuration error, not something call sites check for.
func Open(name string) (Dialer, error) {
	driversMu.RLock()
	dialer, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("device: unknown driver %q (available: %v)", name, Drivers())
	}
	return dialer, nil
}

// Drivers returns the sorted names of registered drivers
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
