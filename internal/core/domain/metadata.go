package domain

// Field is a single metadata key/value pair. Values are uninterpreted
// strings; timestamps are stored as RFC3339.
type Field struct {
	Key   string
	Value string
}

// Metadata is the ordered, append-only header block of a task document.
// Keys keep their first-insertion position; overwriting a key changes the
// value but not the position. Keys are never removed over a document's
// lifecycle.
type Metadata struct {
	keys   []string
	values map[string]string
}

func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *Metadata) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value for key, or the empty string if absent.
func (m *Metadata) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

func (m *Metadata) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Merge applies fields on top of the existing metadata: same-named keys are
// overwritten in place, new keys are appended in the order given. No key is
// ever dropped.
func (m *Metadata) Merge(fields []Field) {
	for _, f := range fields {
		m.Set(f.Key, f.Value)
	}
}

func (m *Metadata) Clone() *Metadata {
	out := NewMetadata()
	for _, k := range m.Keys() {
		out.Set(k, m.values[k])
	}
	return out
}

// Equal reports whether both metadata blocks hold the same keys in the same
// order with the same values.
func (m *Metadata) Equal(other *Metadata) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		if m.values[k] != other.values[k] {
			return false
		}
	}
	return true
}
