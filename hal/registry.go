package hal

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// A Driver discovers and opens devices of one hardware family.
type Driver interface {
	// Enumerate returns the identifying Kwargs of every device matching
	// the filter. An empty result is not an error.
	Enumerate(filter Kwargs) ([]Kwargs, error)

	// Make opens the device identified by args.
	Make(args Kwargs) (Device, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// ErrNoDevice is returned by Make when no registered driver can open a
// device for the given arguments.
var ErrNoDevice = errors.New("hal: no matching device")

// Register makes a driver available under the given name, as matched by
// the "driver" key of device arguments. It panics if the name is already
// taken.
func Register(name string, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if d == nil {
		panic("hal: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("hal: Register called twice for driver " + name)
	}
	drivers[name] = d
}

// Drivers returns the names of the registered drivers, sorted.
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

// unregisterAll clears the registry. Tests only.
func unregisterAll() {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers = make(map[string]Driver)
}

// Enumerate queries every registered driver for devices matching the
// filter and returns their identifying Kwargs, each stamped with the
// driver name. If the filter names a driver, only that driver is queried.
func Enumerate(filter Kwargs) ([]Kwargs, error) {
	var results []Kwargs
	for _, name := range Drivers() {
		if want, ok := filter.Get("driver"); ok && want != name {
			continue
		}
		driversMu.RLock()
		d := drivers[name]
		driversMu.RUnlock()
		found, err := d.Enumerate(filter)
		if err != nil {
			return nil, fmt.Errorf("hal: driver %s: %w", name, err)
		}
		for _, kw := range found {
			if _, ok := kw.Get("driver"); !ok {
				kw.Set("driver", name)
			}
			results = append(results, kw)
		}
	}
	return results, nil
}

// Make opens a device. If args names a driver, that driver is used;
// otherwise each registered driver is tried in order and the first to
// succeed wins.
func Make(args Kwargs) (Device, error) {
	if name, ok := args.Get("driver"); ok {
		driversMu.RLock()
		d, registered := drivers[name]
		driversMu.RUnlock()
		if !registered {
			return nil, fmt.Errorf("hal: driver %s is not registered", name)
		}
		return d.Make(args)
	}
	for _, name := range Drivers() {
		driversMu.RLock()
		d := drivers[name]
		driversMu.RUnlock()
		if dev, err := d.Make(args); err == nil {
			return dev, nil
		}
	}
	return nil, ErrNoDevice
}
