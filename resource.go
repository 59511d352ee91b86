package hal

// Embedded is the content of one embedded relation. Collection distinguishes
// a relation holding a list (possibly empty or of length one) from one holding
// a single bare resource; codecs use it to choose between array and object.
type Embedded struct {
	Rel        string
	Collection bool
	Resources  []*Resource
}

type embeddedSlot struct {
	collection bool
	resources  []*Resource
}

// Resource is a HAL resource: an optional URI, free-form data, links and
// embedded resources. A Resource is a tree; embedding a resource in itself is
// not detected. The zero value is an empty resource that strips attribute
// markers, like one returned by New.
type Resource struct {
	uri         string
	data        Map
	links       *LinkTable
	rels        []string
	embedded    map[string]*embeddedSlot
	keepMarkers bool
}

// New returns a resource located at uri carrying data. An empty uri means the
// resource has no self link. Attribute markers in data are stripped when the
// resource renders as JSON.
func New(uri string, data Map) *Resource {
	return &Resource{
		uri:      uri,
		data:     data,
		links:    NewLinkTable(),
		embedded: map[string]*embeddedSlot{},
	}
}

// URI returns the resource URI; "" when absent.
func (r *Resource) URI() string { return r.uri }

// SetURI replaces the URI.
func (r *Resource) SetURI(uri string) *Resource {
	r.uri = uri
	return r
}

// Data returns the data map. The map is shared with the resource.
func (r *Resource) Data() Map { return r.data }

// SetData replaces the data map.
func (r *Resource) SetData(data Map) *Resource {
	r.data = data
	return r
}

// StripAttributeMarkers reports whether "@" markers are removed from data keys
// on JSON output. Parsed resources keep their markers.
func (r *Resource) StripAttributeMarkers() bool { return !r.keepMarkers }

// SetStripAttributeMarkers toggles marker stripping for JSON output.
func (r *Resource) SetStripAttributeMarkers(strip bool) *Resource {
	r.keepMarkers = !strip
	return r
}

// Links returns the link table.
func (r *Resource) Links() *LinkTable {
	if r.links == nil {
		r.links = NewLinkTable()
	}
	return r.links
}

// AddLink appends a link to uri under rel.
func (r *Resource) AddLink(rel, uri string, attrs Map) *Resource {
	r.Links().Add(rel, NewLink(uri, attrs))
	return r
}

// AddArrayLink is AddLink for a relation that always renders as a JSON array.
func (r *Resource) AddArrayLink(rel, uri string, attrs Map) *Resource {
	r.Links().ForceArray(rel)
	return r.AddLink(rel, uri, attrs)
}

// AddCurie registers a CURIE template under name.
func (r *Resource) AddCurie(name, uriTemplate string) *Resource {
	return r.AddLink(RelCuries, uriTemplate, Map{
		{Key: AttrName, Value: name},
		{Key: AttrTemplated, Value: true},
	})
}

// Link returns the links for rel, resolving CURIEs. See LinkTable.Get.
func (r *Resource) Link(rel string) ([]Link, bool) { return r.Links().Get(rel) }

// AddResource appends resources under rel with collection semantics. Called
// with no resources it still creates the (empty) collection. A relation that
// held a single resource becomes a collection. Nil resources are skipped.
func (r *Resource) AddResource(rel string, resources ...*Resource) *Resource {
	slot := r.slot(rel)
	slot.collection = true
	for _, res := range resources {
		if res != nil {
			slot.resources = append(slot.resources, res)
		}
	}
	return r
}

// SetResource replaces the content of rel. A *Resource is stored as a single
// value; a []*Resource replaces the relation with a collection of those
// resources. Any other value, including a nil *Resource or a list holding
// nil, returns an *InvalidArgumentError and leaves rel untouched. Lists must
// be typed []*Resource.
func (r *Resource) SetResource(rel string, v any) error {
	mustRel(rel)
	switch t := v.(type) {
	case *Resource:
		if t == nil {
			return &InvalidArgumentError{Op: "SetResource", Value: v}
		}
		slot := r.slot(rel)
		slot.collection = false
		slot.resources = []*Resource{t}
		return nil
	case []*Resource:
		for _, res := range t {
			if res == nil {
				return &InvalidArgumentError{Op: "SetResource", Value: v}
			}
		}
		slot := r.slot(rel)
		slot.collection = true
		slot.resources = nil
		r.AddResource(rel, t...)
		return nil
	}
	return &InvalidArgumentError{Op: "SetResource", Value: v}
}

func (r *Resource) slot(rel string) *embeddedSlot {
	mustRel(rel)
	if r.embedded == nil {
		r.embedded = map[string]*embeddedSlot{}
	}
	s, ok := r.embedded[rel]
	if !ok {
		s = &embeddedSlot{}
		r.embedded[rel] = s
		r.rels = append(r.rels, rel)
	}
	return s
}

// ResourceRels returns the embedded relation names in insertion order.
func (r *Resource) ResourceRels() []string { return append([]string(nil), r.rels...) }

// Resources returns every embedded relation as a list, wrapping single
// resources, for uniform iteration.
func (r *Resource) Resources() map[string][]*Resource {
	out := make(map[string][]*Resource, len(r.embedded))
	for rel, s := range r.embedded {
		out[rel] = append([]*Resource{}, s.resources...)
	}
	return out
}

// RawResources returns the embedded relations in order without normalizing
// single values, so callers can tell a bare resource from a collection.
func (r *Resource) RawResources() []Embedded {
	out := make([]Embedded, 0, len(r.rels))
	for _, rel := range r.rels {
		s := r.embedded[rel]
		out = append(out, Embedded{
			Rel:        rel,
			Collection: s.collection,
			Resources:  append([]*Resource{}, s.resources...),
		})
	}
	return out
}

// FirstResource returns the first resource embedded under rel, or nil.
func (r *Resource) FirstResource(rel string) *Resource {
	s, ok := r.embedded[rel]
	if !ok || len(s.resources) == 0 {
		return nil
	}
	return s.resources[0]
}
