package codec

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/reoring/hal"
)

// Element and attribute names of hal+xml.
const (
	xmlHeader    = `<?xml version="1.0"?>` + "\n"
	elemResource = "resource"
	elemLink     = "link"
	attrRel      = "rel"
	attrHref     = "href"
	// keyValue is the data key carried as element text.
	keyValue = "value"
	// elemItem names list items that have no enclosing key.
	elemItem = "item"
)

// XMLCodec renders and parses application/hal+xml documents.
type XMLCodec struct {
	opts XMLOptions
}

// XML returns a hal+xml codec configured by opts.
func XML(opts XMLOptions) *XMLCodec { return &XMLCodec{opts: opts} }

// ContentType returns application/hal+xml.
func (c *XMLCodec) ContentType() string { return MediaTypeXML }

// Options returns the codec configuration.
func (c *XMLCodec) Options() XMLOptions { return c.opts }

// Render encodes r as a hal+xml document.
//
// Data maps onto elements as follows: "@name" keys become attributes of the
// enclosing element, a lone "value" key becomes its text, a list under a key
// repeats the key as element name, integer-like keys reuse the enclosing
// name, and booleans are written as 1 or 0. Keys that are not XML names, and
// the names hal+xml reserves on a resource element (link, resource, @href,
// @rel), fail with a *hal.SchemaError.
func (c *XMLCodec) Render(r *hal.Resource) ([]byte, error) {
	root := &xmlNode{name: elemResource, resource: true}
	if r != nil {
		if err := c.resource(root, r, "/"+elemResource, 0); err != nil {
			return nil, err
		}
	}
	w := xmlWriter{pretty: c.opts.Pretty, indent: c.opts.indent()}
	w.buf.WriteString(xmlHeader)
	w.node(root, 0)
	w.buf.WriteByte('\n')
	return w.buf.Bytes(), nil
}

func (c *XMLCodec) resource(n *xmlNode, r *hal.Resource, path string, level int) error {
	if level >= c.maxDataDepth() {
		return fmt.Errorf("%w: embedded resources nested deeper than %d levels", hal.ErrDepthExceeded, c.maxDataDepth())
	}
	if uri := r.URI(); uri != "" {
		n.setAttr(attrHref, uri)
	}
	table := r.Links()
	links := 0
	for _, rel := range table.Rels() {
		for _, l := range table.Links(rel) {
			links++
			el := n.add(elemLink)
			el.setAttr(attrRel, rel)
			el.setAttr(attrHref, l.URI())
			for _, f := range l.Attributes() {
				if !isXMLName(f.Key) || f.Key == attrRel || f.Key == attrHref {
					return renderErrorf(fmt.Sprintf("%s/%s[%d]", path, elemLink, links), "link attribute %q cannot be written", f.Key)
				}
				el.setAttr(f.Key, scalarText(f.Value))
			}
		}
	}
	data, err := hal.NormalizeMap(r.Data(), c.opts.MaxDataDepth)
	if err != nil {
		return err
	}
	if err := fillElement(n, data, "", path); err != nil {
		return err
	}
	embedded := 0
	for _, e := range r.RawResources() {
		if len(e.Resources) == 0 {
			embedded++
			n.add(elemResource).setAttr(attrRel, e.Rel)
			continue
		}
		for _, res := range e.Resources {
			embedded++
			el := n.add(elemResource)
			el.resource = true
			el.setAttr(attrRel, e.Rel)
			if err := c.resource(el, res, fmt.Sprintf("%s/%s[%d]", path, elemResource, embedded), level+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *XMLCodec) maxDataDepth() int {
	if c.opts.MaxDataDepth <= 0 {
		return hal.DefaultMaxDataDepth
	}
	return c.opts.MaxDataDepth
}

// fillElement writes the members of a Map or the items of a list into el.
// List items use their index as key.
func fillElement(el *xmlNode, v any, parent, path string) error {
	switch t := v.(type) {
	case hal.Map:
		for _, f := range t {
			if err := dataEntry(el, f.Key, f.Value, parent, path, len(t)); err != nil {
				return err
			}
		}
	case []any:
		for i, item := range t {
			if err := dataEntry(el, strconv.Itoa(i), item, parent, path, len(t)); err != nil {
				return err
			}
		}
	}
	return nil
}

func dataEntry(el *xmlNode, key string, v any, parent, path string, siblings int) error {
	numeric := isIndexKey(key)
	attr, isAttr := hal.SplitAttributeKey(key)
	switch v.(type) {
	case hal.Map, []any:
		if numeric {
			child, err := el.addData(itemName(parent), path)
			if err != nil {
				return err
			}
			return fillElement(child, v, parent, path+"/"+child.name)
		}
		// Only scalars fit in an attribute.
		if isAttr {
			key = attr
		}
		if isList(v) {
			return fillElement(el, v, key, path)
		}
		child, err := el.addData(key, path)
		if err != nil {
			return err
		}
		return fillElement(child, v, key, path+"/"+key)
	}
	switch {
	case numeric:
		child, err := el.addData(itemName(parent), path)
		if err != nil {
			return err
		}
		child.text = scalarText(v)
	case isAttr:
		if !isXMLName(attr) || el.resource && (attr == attrHref || attr == attrRel) {
			return renderErrorf(path, "data key %q cannot be written as an attribute", key)
		}
		el.setAttr(attr, scalarText(v))
	case key == keyValue && siblings == 1:
		el.text = scalarText(v)
	default:
		child, err := el.addData(key, path)
		if err != nil {
			return err
		}
		child.text = scalarText(v)
	}
	return nil
}

// isXMLName reports whether name is usable as an element or attribute name:
// an XML name with at most one colon separating two non-empty parts.
func isXMLName(name string) bool {
	if name == "" || strings.Count(name, ":") > 1 {
		return false
	}
	start := true
	for _, r := range name {
		switch {
		case r == ':':
			if start {
				return false
			}
			start = true
			continue
		case unicode.IsLetter(r) || r == '_':
		case start:
			return false
		case unicode.IsDigit(r) || r == '-' || r == '.' || r == '\u00b7' || unicode.Is(unicode.Mn, r):
		default:
			return false
		}
		start = false
	}
	return !start
}

func renderErrorf(path, msg string, args ...any) error {
	return &hal.SchemaError{Format: formatXML, Path: path, Message: fmt.Sprintf(msg, args...)}
}

// isList reports whether v is a non-empty list, or a Map indexed from "0".
func isList(v any) bool {
	switch t := v.(type) {
	case []any:
		return len(t) > 0
	case hal.Map:
		return t.Has("0")
	}
	return false
}

// isIndexKey reports whether key is an integer such as "0" or "-3".
func isIndexKey(key string) bool {
	digits := strings.TrimPrefix(key, "-")
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

func itemName(parent string) string {
	if parent == "" {
		return elemItem
	}
	return parent
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

type xmlAttr struct {
	name  string
	value string
}

type xmlNode struct {
	name     string
	attrs    []xmlAttr
	text     string
	children []*xmlNode
	resource bool
}

func (n *xmlNode) add(name string) *xmlNode {
	child := &xmlNode{name: name}
	n.children = append(n.children, child)
	return child
}

// addData adds a data element. Resource elements reserve the link and
// resource names for hal+xml structure.
func (n *xmlNode) addData(name, path string) (*xmlNode, error) {
	if !isXMLName(name) {
		return nil, renderErrorf(path, "data key %q is not an XML name", name)
	}
	if n.resource && (name == elemLink || name == elemResource) {
		return nil, renderErrorf(path, "data key %q is reserved in hal+xml", name)
	}
	return n.add(name), nil
}

// setAttr replaces an attribute of the same name in place.
func (n *xmlNode) setAttr(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].name == name {
			n.attrs[i].value = value
			return
		}
	}
	n.attrs = append(n.attrs, xmlAttr{name: name, value: value})
}

type xmlWriter struct {
	buf    bytes.Buffer
	pretty bool
	indent string
}

func (w *xmlWriter) node(n *xmlNode, level int) {
	if w.pretty {
		for range level {
			w.buf.WriteString(w.indent)
		}
	}
	w.buf.WriteByte('<')
	w.buf.WriteString(n.name)
	for _, a := range n.attrs {
		w.buf.WriteByte(' ')
		w.buf.WriteString(a.name)
		w.buf.WriteString(`="`)
		attrEscaper.WriteString(&w.buf, a.value)
		w.buf.WriteByte('"')
	}
	if n.text == "" && len(n.children) == 0 {
		w.buf.WriteString("/>")
		return
	}
	w.buf.WriteByte('>')
	textEscaper.WriteString(&w.buf, n.text)
	for _, child := range n.children {
		if w.pretty {
			w.buf.WriteByte('\n')
		}
		w.node(child, level+1)
	}
	if w.pretty && len(n.children) > 0 {
		w.buf.WriteByte('\n')
		for range level {
			w.buf.WriteString(w.indent)
		}
	}
	w.buf.WriteString("</")
	w.buf.WriteString(n.name)
	w.buf.WriteByte('>')
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#039;",
		"\r", "&#13;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#9;",
		"\n", "&#10;",
		"\r", "&#13;",
	)
)
