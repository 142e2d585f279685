package types

// DefaultMap is a map that materializes a value from defaultFunc the first
// time a missing key is read, so callers can accumulate without existence
// checks:
//
//	byTxID := types.NewDefaultMap[string, []int](func() []int { return nil })
//	byTxID.Set(txid, append(byTxID.Get(txid), index))
type DefaultMap[K comparable, V any] struct {
	data        map[K]V
	defaultFunc func() V
}

// NewDefaultMap creates an empty DefaultMap whose missing keys are filled by defaultFunc.
func NewDefaultMap[K comparable, V any](defaultFunc func() V) DefaultMap[K, V] {
	return DefaultMap[K, V]{
		data:        make(map[K]V),
		defaultFunc: defaultFunc,
	}
}

// Get returns the value stored under key, storing and returning a default
// value when key is absent.
func (d *DefaultMap[K, V]) Get(key K) V {
	if val, ok := d.data[key]; ok {
		return val
	}

	val := d.defaultFunc()
	d.data[key] = val
	return val
}

// Set stores val under key.
func (d *DefaultMap[K, V]) Set(key K, val V) {
	d.data[key] = val
}

// ToMap exposes the underlying map. Mutations through it are visible to d.
func (d *DefaultMap[K, V]) ToMap() map[K]V {
	return d.data
}
