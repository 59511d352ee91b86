package hal

// Field is one key/value pair of a Map.
type Field struct {
	Key   string
	Value any
}

// Map is an insertion-ordered mapping from string keys to data values. Values
// are scalars, nested Maps, or []any sequences. Order is significant: it is
// the render order for both JSON members and XML child elements.
//
//	data := hal.Map{
//	    {Key: "total", Value: 30},
//	    {Key: "currency", Value: "USD"},
//	}
type Map []Field

// Get returns the value stored under key.
func (m Map) Get(key string) (any, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set replaces the value of an existing key in place, or appends a new field.
func (m *Map) Set(key string, value any) {
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Field{Key: key, Value: value})
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	for i := range *m {
		if (*m)[i].Key == key {
			*m = append((*m)[:i:i], (*m)[i+1:]...)
			return true
		}
	}
	return false
}

// Keys returns the keys in order.
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, f := range m {
		keys[i] = f.Key
	}
	return keys
}

// Len returns the number of fields.
func (m Map) Len() int { return len(m) }

// Clone returns a deep copy; nested Maps and []any sequences are copied,
// other values are shared.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for i, f := range m {
		out[i] = Field{Key: f.Key, Value: cloneValue(f.Value)}
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
