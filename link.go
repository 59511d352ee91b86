package hal

import (
	"fmt"
	"reflect"
	"strings"
)

// Link attribute names defined by HAL (section 5 of the draft). Other names
// are carried verbatim.
const (
	AttrTitle       = "title"
	AttrTemplated   = "templated"
	AttrType        = "type"
	AttrDeprecation = "deprecation"
	AttrName        = "name"
	AttrProfile     = "profile"
	AttrHreflang    = "hreflang"
	AttrAnchor      = "anchor"
	AttrRev         = "rev"
	AttrMedia       = "media"
)

// Reserved relation names.
const (
	RelSelf   = "self"
	RelCuries = "curies"
)

// CurieRelPlaceholder is the token a CURIE template substitutes.
const CurieRelPlaceholder = "{rel}"

// Link is one relation entry: a target URI plus an ordered attribute bag.
// Links are values; the accessors never expose internal state.
type Link struct {
	uri   string
	attrs Map
}

// NewLink returns a link to uri. attrs may be nil.
func NewLink(uri string, attrs Map) Link {
	return Link{uri: uri, attrs: attrs.Clone()}
}

// URI returns the link target.
func (l Link) URI() string { return l.uri }

// Attributes returns a copy of the attribute bag in insertion order.
func (l Link) Attributes() Map { return l.attrs.Clone() }

// Attr returns one attribute.
func (l Link) Attr(name string) (any, bool) { return l.attrs.Get(name) }

// Title returns the title attribute, or "".
func (l Link) Title() string { return l.stringAttr(AttrTitle) }

// Name returns the name attribute, or "".
func (l Link) Name() string { return l.stringAttr(AttrName) }

// Templated reports whether the templated attribute is set to a true value.
// XML documents carry it as "1" or "true".
func (l Link) Templated() bool {
	v, ok := l.attrs.Get(AttrTemplated)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "1" || strings.EqualFold(t, "true")
	}
	return false
}

func (l Link) stringAttr(name string) string {
	v, ok := l.attrs.Get(name)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// String returns the URI.
func (l Link) String() string { return l.uri }

// Equal reports value equality, including attribute order.
func (l Link) Equal(o Link) bool {
	if l.uri != o.uri || len(l.attrs) != len(o.attrs) {
		return false
	}
	for i := range l.attrs {
		if l.attrs[i].Key != o.attrs[i].Key || !reflect.DeepEqual(l.attrs[i].Value, o.attrs[i].Value) {
			return false
		}
	}
	return true
}

// LinkTable maps relation names to their links, keeping both the relation
// order and the per-relation link order.
type LinkTable struct {
	rels   []string
	links  map[string][]Link
	arrays map[string]bool
}

// NewLinkTable returns an empty table.
func NewLinkTable() *LinkTable {
	return &LinkTable{links: map[string][]Link{}, arrays: map[string]bool{}}
}

// Add appends a link under rel. Links are never deduplicated.
func (t *LinkTable) Add(rel string, l Link) {
	mustRel(rel)
	if _, ok := t.links[rel]; !ok {
		t.rels = append(t.rels, rel)
	}
	t.links[rel] = append(t.links[rel], l)
}

// ForceArray flags rel so that it renders as a JSON array even with a single
// link.
func (t *LinkTable) ForceArray(rel string) {
	mustRel(rel)
	t.arrays[rel] = true
}

// IsArray reports whether rel always renders as an array. The curies relation
// always does.
func (t *LinkTable) IsArray(rel string) bool {
	return rel == RelCuries || t.arrays[rel]
}

// Rels returns the relation names in insertion order.
func (t *LinkTable) Rels() []string { return append([]string(nil), t.rels...) }

// Len returns the number of relations.
func (t *LinkTable) Len() int { return len(t.rels) }

// Links returns the links stored under exactly rel, without CURIE resolution.
func (t *LinkTable) Links(rel string) []Link {
	return append([]Link(nil), t.links[rel]...)
}

// Curies returns the CURIE templates.
func (t *LinkTable) Curies() []Link { return t.Links(RelCuries) }

// Get returns the links for rel. When rel is not stored as such it is treated
// as a full relation URI and matched against every CURIE template: for the
// template "http://x/{rel}" named "acme", "http://x/test" resolves to the
// links stored under "acme:test". The first match wins. Get never modifies
// the table.
func (t *LinkTable) Get(rel string) ([]Link, bool) {
	if links, ok := t.links[rel]; ok {
		return append([]Link(nil), links...), true
	}
	for _, curie := range t.links[RelCuries] {
		prefix, _, found := strings.Cut(curie.URI(), CurieRelPlaceholder)
		if !found || !strings.HasPrefix(rel, prefix) {
			continue
		}
		short := curie.Name() + ":" + rel[len(prefix):]
		if links, ok := t.links[short]; ok {
			return append([]Link(nil), links...), true
		}
	}
	return nil, false
}

// Expand turns a compact relation "name:suffix" into the full URI given by
// the CURIE template registered under name.
func (t *LinkTable) Expand(curie string) (string, bool) {
	name, suffix, ok := strings.Cut(curie, ":")
	if !ok {
		return "", false
	}
	for _, c := range t.links[RelCuries] {
		if c.Name() == name && strings.Contains(c.URI(), CurieRelPlaceholder) {
			return strings.Replace(c.URI(), CurieRelPlaceholder, suffix, 1), true
		}
	}
	return "", false
}

func mustRel(rel string) {
	if rel == "" {
		panic("hal: empty relation name")
	}
}
