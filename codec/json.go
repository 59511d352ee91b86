package codec

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/reoring/hal"
)

// Reserved hal+json member names.
const (
	keyLinks    = "_links"
	keyEmbedded = "_embedded"
	keyHref     = "href"
)

// JSONCodec renders and parses application/hal+json documents.
type JSONCodec struct {
	opts   JSONOptions
	driver jsonDriver
}

// JSON returns a hal+json codec configured by opts. It fails only when
// opts.Driver names an unknown driver.
func JSON(opts JSONOptions) (*JSONCodec, error) {
	d, err := lookupDriver(opts.Driver)
	if err != nil {
		return nil, err
	}
	opts.ArrayLinkRels = slices.Clone(opts.ArrayLinkRels)
	opts.ArrayResourceRels = slices.Clone(opts.ArrayResourceRels)
	return &JSONCodec{opts: opts, driver: d}, nil
}

// ContentType returns application/hal+json.
func (c *JSONCodec) ContentType() string { return MediaTypeJSON }

// Options returns the codec configuration.
func (c *JSONCodec) Options() JSONOptions { return c.opts }

// Driver returns the name of the JSON driver in use.
func (c *JSONCodec) Driver() string { return c.driver.Name() }

// Render encodes r as hal+json text.
func (c *JSONCodec) Render(r *hal.Resource) ([]byte, error) {
	tree, err := c.Tree(r)
	if err != nil {
		return nil, err
	}
	w := jsonWriter{
		driver:        c.driver,
		pretty:        c.opts.Pretty,
		escapeSlashes: c.opts.EscapeSlashes && !c.opts.Pretty,
	}
	if err := w.value(tree, 0); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

// Tree returns the structured hal+json document for r without encoding it.
// Data fields come first; _links and _embedded replace same-named data keys.
func (c *JSONCodec) Tree(r *hal.Resource) (hal.Map, error) {
	if r == nil {
		return hal.Map{}, nil
	}
	return c.tree(r, 0)
}

func (c *JSONCodec) tree(r *hal.Resource, level int) (hal.Map, error) {
	if level >= c.maxDataDepth() {
		return nil, fmt.Errorf("%w: embedded resources nested deeper than %d levels", hal.ErrDepthExceeded, c.maxDataDepth())
	}
	doc, err := hal.NormalizeMap(r.Data(), c.opts.MaxDataDepth)
	if err != nil {
		return nil, err
	}
	if r.StripAttributeMarkers() {
		doc = hal.StripAttributeMarkers(doc)
	}
	if links := c.linksTree(r); len(links) > 0 {
		doc.Set(keyLinks, links)
	}
	embedded, err := c.embeddedTree(r, level)
	if err != nil {
		return nil, err
	}
	if len(embedded) > 0 {
		doc.Set(keyEmbedded, embedded)
	}
	return doc, nil
}

func (c *JSONCodec) linksTree(r *hal.Resource) hal.Map {
	links := hal.Map{}
	if uri := r.URI(); uri != "" {
		links = append(links, hal.Field{Key: hal.RelSelf, Value: hal.Map{{Key: keyHref, Value: uri}}})
	}
	table := r.Links()
	for _, rel := range table.Rels() {
		ls := table.Links(rel)
		if len(ls) == 1 && !c.arrayLink(table, rel) {
			links.Set(rel, linkObject(ls[0]))
			continue
		}
		items := make([]any, len(ls))
		for i, l := range ls {
			items[i] = linkObject(l)
		}
		links.Set(rel, items)
	}
	return links
}

func (c *JSONCodec) arrayLink(table *hal.LinkTable, rel string) bool {
	return table.IsArray(rel) || slices.Contains(c.opts.ArrayLinkRels, rel)
}

func linkObject(l hal.Link) hal.Map {
	obj := hal.Map{{Key: keyHref, Value: l.URI()}}
	for _, f := range l.Attributes() {
		obj.Set(f.Key, f.Value)
	}
	return obj
}

func (c *JSONCodec) embeddedTree(r *hal.Resource, level int) (hal.Map, error) {
	raw := r.RawResources()
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(hal.Map, 0, len(raw))
	for _, e := range raw {
		if !c.renderAsArray(e) {
			obj, err := c.tree(e.Resources[0], level+1)
			if err != nil {
				return nil, err
			}
			out.Set(e.Rel, obj)
			continue
		}
		items := make([]any, 0, len(e.Resources))
		for _, res := range e.Resources {
			obj, err := c.tree(res, level+1)
			if err != nil {
				return nil, err
			}
			items = append(items, obj)
		}
		out.Set(e.Rel, items)
	}
	return out, nil
}

func (c *JSONCodec) renderAsArray(e hal.Embedded) bool {
	if !e.Collection {
		return len(e.Resources) != 1
	}
	if c.opts.CollapseSingleResources && len(e.Resources) == 1 {
		return slices.Contains(c.opts.ArrayResourceRels, e.Rel)
	}
	return true
}

func (c *JSONCodec) maxDataDepth() int {
	if c.opts.MaxDataDepth <= 0 {
		return hal.DefaultMaxDataDepth
	}
	return c.opts.MaxDataDepth
}

// jsonWriter emits an ordered tree of hal.Map, []any and scalars. Scalars are
// encoded by the driver so string escaping follows the selected library.
type jsonWriter struct {
	buf           bytes.Buffer
	driver        jsonDriver
	pretty        bool
	escapeSlashes bool
}

func (w *jsonWriter) value(v any, level int) error {
	switch t := v.(type) {
	case hal.Map:
		return w.object(t, level)
	case []any:
		return w.array(t, level)
	case nil:
		w.buf.WriteString("null")
		return nil
	case bool:
		if t {
			w.buf.WriteString("true")
		} else {
			w.buf.WriteString("false")
		}
		return nil
	}
	return w.scalar(v)
}

func (w *jsonWriter) object(m hal.Map, level int) error {
	if len(m) == 0 {
		w.buf.WriteString("{}")
		return nil
	}
	w.buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.newline(level + 1)
		if err := w.scalar(f.Key); err != nil {
			return err
		}
		w.buf.WriteByte(':')
		if w.pretty {
			w.buf.WriteByte(' ')
		}
		if err := w.value(f.Value, level+1); err != nil {
			return err
		}
	}
	w.newline(level)
	w.buf.WriteByte('}')
	return nil
}

func (w *jsonWriter) array(items []any, level int) error {
	if len(items) == 0 {
		w.buf.WriteString("[]")
		return nil
	}
	w.buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.newline(level + 1)
		if err := w.value(item, level+1); err != nil {
			return err
		}
	}
	w.newline(level)
	w.buf.WriteByte(']')
	return nil
}

func (w *jsonWriter) newline(level int) {
	if !w.pretty {
		return
	}
	w.buf.WriteByte('\n')
	for range level {
		w.buf.WriteString(jsonIndent)
	}
}

func (w *jsonWriter) scalar(v any) error {
	b, err := w.driver.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: encode %T: %w", v, err)
	}
	// "/" can only occur inside string literals of valid JSON text.
	if w.escapeSlashes {
		b = bytes.ReplaceAll(b, []byte("/"), []byte(`\/`))
	}
	w.buf.Write(b)
	return nil
}
