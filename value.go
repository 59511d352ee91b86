package hal

import (
	"fmt"
	"reflect"
	"sort"
)

// DefaultMaxDataDepth bounds the nesting of data values walked by Normalize
// when the caller passes a non-positive limit.
const DefaultMaxDataDepth = 512

// Normalize converts a data value into the canonical tree used by the codecs:
// Map for mappings, []any for sequences, scalars unchanged. map[string]any
// (and other string-keyed maps) become Maps with sorted keys; slices and arrays
// of any element type become []any. Nesting deeper than maxDepth fails with
// ErrDepthExceeded, which also stops self-referencing inputs.
func Normalize(v any, maxDepth int) (any, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDataDepth
	}
	return normalize(v, maxDepth, 0)
}

// NormalizeMap is Normalize for a Map root.
func NormalizeMap(m Map, maxDepth int) (Map, error) {
	v, err := Normalize(m, maxDepth)
	if err != nil {
		return nil, err
	}
	out, _ := v.(Map)
	if out == nil {
		out = Map{}
	}
	return out, nil
}

func normalize(v any, maxDepth, depth int) (any, error) {
	switch t := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case Map:
		if depth >= maxDepth {
			return nil, depthError(maxDepth)
		}
		out := make(Map, len(t))
		for i, f := range t {
			nv, err := normalize(f.Value, maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = Field{Key: f.Key, Value: nv}
		}
		return out, nil
	case map[string]any:
		if depth >= maxDepth {
			return nil, depthError(maxDepth)
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Map, len(keys))
		for i, k := range keys {
			nv, err := normalize(t[k], maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = Field{Key: k, Value: nv}
		}
		return out, nil
	case []any:
		if depth >= maxDepth {
			return nil, depthError(maxDepth)
		}
		out := make([]any, len(t))
		for i, item := range t {
			nv, err := normalize(item, maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case fmt.Stringer:
		return v, nil
	}
	return normalizeReflect(v, maxDepth, depth)
}

// normalizeReflect handles typed slices, arrays and string-keyed maps.
// Anything else is left for the JSON driver to encode.
func normalizeReflect(v any, maxDepth, depth int) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return v, nil
		}
		if depth >= maxDepth {
			return nil, depthError(maxDepth)
		}
		out := make([]any, rv.Len())
		for i := range out {
			nv, err := normalize(rv.Index(i).Interface(), maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v, nil
		}
		if depth >= maxDepth {
			return nil, depthError(maxDepth)
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		out := make(Map, len(keys))
		for i, k := range keys {
			nv, err := normalize(rv.MapIndex(k).Interface(), maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = Field{Key: k.String(), Value: nv}
		}
		return out, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
	}
	return v, nil
}

func depthError(maxDepth int) error {
	return fmt.Errorf("%w: data nested deeper than %d levels", ErrDepthExceeded, maxDepth)
}
