package adapter

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mu       sync.RWMutex
	adapters = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	mu.Lock()
	defer mu.Unlock()
	adapters[a.Name()] = a
}

// Get returns an adapter by source name.
func Get(name string) (Adapter, error) {
	mu.RLock()
	defer mu.RUnlock()
	a, ok := adapters[name]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s", name)
	}
	return a, nil
}

// List returns all registered source names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
