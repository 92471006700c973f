package feature

import "math"

// Vector is the named feature mapping computed for one frame. It is
// recomputed every frame and never persisted.
type Vector map[string]float64

// Get returns a feature value, with ok=false when the feature could not be
// computed this frame (e.g. a required landmark was missing).
func (v Vector) Get(name string) (float64, bool) {
	val, ok := v[name]
	if !ok || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// GetOr returns a feature value or the given fallback when it is absent.
func (v Vector) GetOr(name string, fallback float64) float64 {
	if val, ok := v.Get(name); ok {
		return val
	}
	return fallback
}

// Set records a feature value.
func (v Vector) Set(name string, val float64) {
	v[name] = val
}

// Has reports whether every named feature is present.
func (v Vector) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := v.Get(name); !ok {
			return false
		}
	}
	return true
}
