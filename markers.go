package hal

import "strings"

// Data keys starting with AttributeMarker denote XML attributes. The xml:
// namespace form ("@xml:lang") is recognized separately so JSON output drops
// the namespace prefix as well.
const (
	AttributeMarker         = "@"
	XMLNamespaceMarker      = "@xml:"
	xmlNamespaceMarkerBytes = len(XMLNamespaceMarker)
)

// StripAttributeMarkers returns a copy of data in which every key, at every
// nesting level, has its attribute marker removed: "@xml:lang" becomes "lang"
// and "@id" becomes "id". Values are not touched. When a stripped key collides
// with an existing key the later field wins, keeping the earlier position.
func StripAttributeMarkers(data Map) Map {
	if data == nil {
		return nil
	}
	out := make(Map, 0, len(data))
	for _, f := range data {
		out.Set(stripMarker(f.Key), stripValue(f.Value))
	}
	return out
}

func stripValue(v any) any {
	switch t := v.(type) {
	case Map:
		return StripAttributeMarkers(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = stripValue(item)
		}
		return out
	default:
		return v
	}
}

func stripMarker(key string) string {
	if strings.HasPrefix(key, XMLNamespaceMarker) {
		return key[xmlNamespaceMarkerBytes:]
	}
	return strings.TrimPrefix(key, AttributeMarker)
}

// SplitAttributeKey reports whether key addresses an XML attribute and returns
// the attribute name ("@xml:lang" -> "xml:lang").
func SplitAttributeKey(key string) (string, bool) {
	if len(key) > 1 && strings.HasPrefix(key, AttributeMarker) {
		return key[1:], true
	}
	return "", false
}

// AttributeKey is the inverse of SplitAttributeKey.
func AttributeKey(name string) string { return AttributeMarker + name }
