package model

// FieldMap is a string map that remembers insertion order. The write-back
// path emits columns in the order the source block declared them, so the
// per-channel overlays must not lose that order.
type FieldMap struct {
	keys   []string
	values map[string]string
}

func NewFieldMap() *FieldMap {
	return &FieldMap{values: make(map[string]string)}
}

// Set stores a value, appending the key on first use.
func (m *FieldMap) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the stored value and whether the key is present.
func (m *FieldMap) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (m *FieldMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

func (m *FieldMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}
