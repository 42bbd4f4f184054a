package system

import "sync"

// Global registry instance and initialization guard.
var (
	globalRegistry *Registry
	globalOnce     sync.Once
)

// Global returns the frozen registry of built-in systems, creating it on
// first call. Panics if a built-in definition is invalid, which is a
// programming error caught by the package tests.
func Global() *Registry {
	globalOnce.Do(func() {
		r, err := NewBuiltinRegistry()
		if err != nil {
			panic(err)
		}
		r.Freeze()
		globalRegistry = r
	})
	return globalRegistry
}
