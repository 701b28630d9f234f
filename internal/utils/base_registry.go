package utils

import (
	"cmp"
	"slices"
	"sync"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
)

// RegistryValidator is a function that validates a key-value pair before registration
type RegistryValidator[K cmp.Ordered, V any] func(key K, value V, existing map[K]V) error

// BaseRegistry is a generic, thread-safe registry with validation on
// registration. Iteration always follows key order.
type BaseRegistry[K cmp.Ordered, V any] struct {
	mu           sync.RWMutex
	items        map[K]V
	validator    RegistryValidator[K, V]
	registryName string
}

// NewBaseRegistry creates an empty registry; registryName prefixes errors
func NewBaseRegistry[K cmp.Ordered, V any](registryName string) *BaseRegistry[K, V] {
	return &BaseRegistry[K, V]{
		items:        make(map[K]V),
		registryName: registryName,
	}
}

// SetValidator sets the validation function for this registry
func (r *BaseRegistry[K, V]) SetValidator(validator RegistryValidator[K, V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validator = validator
}

// Register adds an item to the registry with validation
func (r *BaseRegistry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.validator != nil {
		if err := r.validator(key, value, r.items); err != nil {
			return errors.Annotatef(err, "%s registry", r.registryName)
		}
	}

	r.items[key] = value
	return nil
}

// Get retrieves an item from the registry
func (r *BaseRegistry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.items[key]
	return value, exists
}

// Has checks if a key exists in the registry
func (r *BaseRegistry[K, V]) Has(key K) bool {
	_, exists := r.Get(key)
	return exists
}

// Keys returns all keys in ascending order
func (r *BaseRegistry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, 0, len(r.items))
	for key := range r.items {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Size returns the number of items in the registry
func (r *BaseRegistry[K, V]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// ForEach applies fn to each item in key order
func (r *BaseRegistry[K, V]) ForEach(fn func(K, V)) {
	for _, k := range r.Keys() {
		if v, ok := r.Get(k); ok {
			fn(k, v)
		}
	}
}

// NotEmptyKeyValidator validates that a string key is not empty
func NotEmptyKeyValidator[V any](keyDesc string) RegistryValidator[string, V] {
	return func(key string, value V, existing map[string]V) error {
		if key == "" {
			return errors.Errorf("%s cannot be empty", keyDesc)
		}
		return nil
	}
}

// NoDuplicateValidator validates that a key doesn't already exist
func NoDuplicateValidator[K cmp.Ordered, V any](keyDesc string) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		if _, exists := existing[key]; exists {
			return errors.Errorf("%s '%v' is already registered", keyDesc, key)
		}
		return nil
	}
}

// ChainValidators combines multiple validators into one
func ChainValidators[K cmp.Ordered, V any](validators ...RegistryValidator[K, V]) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		for _, validator := range validators {
			if validator != nil {
				if err := validator(key, value, existing); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
