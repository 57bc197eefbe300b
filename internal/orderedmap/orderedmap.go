// Package orderedmap provides an insertion-ordered string-keyed map, used
// wherever the loaded graph keeps document authoring order (properties,
// artifacts, a document's type and instance sections, schema definitions).
package orderedmap

// Map is an insertion-ordered map keyed by string.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// New creates an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{values: make(map[string]V)}
}

// Set inserts or overwrites key, preserving the original position on
// overwrite (matching Python dict semantics, which this type mirrors).
func (m *Map[V]) Set(key string, v V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value at key and whether it was present.
func (m *Map[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key, if present.
func (m *Map[V]) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in insertion order.
func (m *Map[V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// Len returns the number of entries.
func (m *Map[V]) Len() int { return len(m.keys) }

// Range calls f for every entry in insertion order, stopping early if f
// returns false.
func (m *Map[V]) Range(f func(key string, value V) bool) {
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			return
		}
	}
}
