package presets

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Preset)
	registryMu sync.RWMutex
)

// Register adds a preset to the registry.
// Panics if a preset with the same kind is already registered.
func Register(p Preset) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[p.Kind]; exists {
		panic(fmt.Sprintf("preset already registered: %s", p.Kind))
	}
	registry[p.Kind] = p
}

// Get returns a preset by kind.
func Get(kind string) (Preset, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := registry[kind]
	return p, ok
}

// All returns every registered preset, sorted by group then kind.
func All() []Preset {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Preset, 0, len(registry))
	for _, p := range registry {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return result[i].Kind < result[j].Kind
	})
	return result
}

// Kinds returns the registered kinds in alphabetical order.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Clear removes all registered presets.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Preset)
}

// RegisterBuiltins registers the built-in presets that are not registered yet.
func RegisterBuiltins() {
	for _, p := range builtins() {
		if _, ok := Get(p.Kind); !ok {
			Register(p)
		}
	}
}
