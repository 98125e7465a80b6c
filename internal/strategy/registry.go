package strategy

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds a fresh strategy instance.
type Constructor func() Strategy

// Registry maps strategy keys to constructors. Reads and writes are
// synchronized so late registration cannot race concurrent lookups.
// Re-registering a key replaces the previous constructor.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates a registry populated with the six built-in
// strategies.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register(KeyProMTF, func() Strategy { return NewProMTF() })
	r.Register(KeyVWAPEMA, func() Strategy { return NewVWAPEMA() })
	r.Register(KeyRSIReversal, func() Strategy { return NewRSIReversal() })
	r.Register(KeyBollingerBreakout, func() Strategy { return NewBollingerBreakout() })
	r.Register(KeyMACDCrossover, func() Strategy { return NewMACDCrossover() })
	r.Register(KeySupertrendScalper, func() Strategy { return NewSupertrendScalper() })
	return r
}

// Register adds a constructor under a key. The constructor must produce a
// non-nil Strategy.
func (r *Registry) Register(key string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("register %s: nil constructor", key)
	}
	if ctor() == nil {
		return fmt.Errorf("register %s: constructor returned nil strategy", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[key] = ctor
	return nil
}

// Get returns a fresh instance for the key, or false when unregistered.
func (r *Registry) Get(key string) (Strategy, bool) {
	r.mu.RLock()
	ctor, ok := r.constructors[key]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Keys returns all registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.constructors))
	for key := range r.constructors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MetadataAll returns the metadata of every registered strategy, ordered
// by key.
func (r *Registry) MetadataAll() []Metadata {
	keys := r.Keys()
	out := make([]Metadata, 0, len(keys))
	for _, key := range keys {
		if st, ok := r.Get(key); ok {
			out = append(out, st.Meta())
		}
	}
	return out
}
