package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/reoring/hal"
)

const formatXML = "xml"

var (
	errNoRoot       = errors.New("document has no root element")
	errTrailingRoot = errors.New("content after the root element")
)

// Parse decodes a hal+xml document. Embedded resources are read up to
// Parse.MaxEmbedDepth levels deep.
func (c *XMLCodec) Parse(data []byte) (*hal.Resource, error) {
	popts := c.opts.Parse
	root, err := readXMLTree(data, popts.maxNesting())
	if err != nil {
		return nil, err
	}
	p := xmlParser{log: popts.logger()}
	return p.resource(root, "/"+root.name, popts.MaxEmbedDepth, false)
}

// xmlElement is a parsed element with prefixed names kept as written.
type xmlElement struct {
	name     string
	attrs    []xmlAttr
	text     strings.Builder
	children []*xmlElement
}

func (e *xmlElement) attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

func (e *xmlElement) trimmedText() string { return strings.TrimSpace(e.text.String()) }

// readXMLTree reads exactly one root element. RawToken keeps namespace
// prefixes verbatim so "xml:lang" survives as written; element nesting is
// checked here instead.
func readXMLTree(data []byte, maxNesting int) (*xmlElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	fail := func(err error) error {
		return &hal.FormatError{Format: formatXML, Offset: dec.InputOffset(), Err: err}
	}
	var (
		root  *xmlElement
		stack []*xmlElement
	)
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return nil, fail(io.ErrUnexpectedEOF)
			}
			if root == nil {
				return nil, fail(errNoRoot)
			}
			return root, nil
		}
		if err != nil {
			return nil, fail(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, fail(errTrailingRoot)
			}
			if maxNesting > 0 && len(stack) >= maxNesting {
				return nil, fail(fmt.Errorf("%w: elements nested deeper than %d", hal.ErrDepthExceeded, maxNesting))
			}
			el := &xmlElement{name: xmlName(t.Name)}
			for _, a := range t.Attr {
				el.attrs = append(el.attrs, xmlAttr{name: xmlName(a.Name), value: a.Value})
			}
			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fail(fmt.Errorf("unexpected end element </%s>", xmlName(t.Name)))
			}
			top := stack[len(stack)-1]
			if name := xmlName(t.Name); name != top.name {
				return nil, fail(fmt.Errorf("element <%s> closed by </%s>", top.name, name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
				continue
			}
			if len(bytes.TrimSpace(t)) > 0 {
				if root != nil {
					return nil, fail(errTrailingRoot)
				}
				return nil, fail(errors.New("text before the root element"))
			}
		}
	}
}

func xmlName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

type xmlParser struct {
	log *slog.Logger
}

func (p *xmlParser) resource(el *xmlElement, path string, depth int, embedded bool) (*hal.Resource, error) {
	r := hal.New("", nil).SetStripAttributeMarkers(false)
	var data hal.Map
	for _, a := range el.attrs {
		switch {
		case a.name == attrHref:
			r.SetURI(a.value)
		case embedded && a.name == attrRel:
		default:
			data.Set(hal.AttributeKey(a.name), a.value)
		}
	}

	var (
		fields  childGroups
		seen    = map[string]int{}
		skipped int
	)
	for _, child := range el.children {
		seen[child.name]++
		childPath := path + "/" + child.name + "[" + strconv.Itoa(seen[child.name]) + "]"
		switch child.name {
		case elemLink:
			if err := addXMLLink(r, child, childPath); err != nil {
				return nil, err
			}
		case elemResource:
			rel, ok := child.attr(attrRel)
			if !ok || rel == "" {
				return nil, schemaErrorf(formatXML, childPath, "embedded resource without rel")
			}
			if depth <= 0 {
				skipped++
				continue
			}
			if isPlaceholder(child) {
				r.AddResource(rel)
				continue
			}
			res, err := p.resource(child, childPath, depth-1, true)
			if err != nil {
				return nil, err
			}
			r.AddResource(rel, res)
		default:
			fields.add(child)
		}
	}
	if skipped > 0 {
		p.log.Debug("embedded resources skipped at depth limit", "path", path, "count", skipped)
	}

	for _, g := range fields {
		data.Set(g.name, g.value())
	}
	if text := el.trimmedText(); text != "" {
		data.Set(keyValue, text)
	}
	r.SetData(data)
	return r, nil
}

func addXMLLink(r *hal.Resource, el *xmlElement, path string) error {
	var (
		rel, href       string
		hasRel, hasHref bool
		attrs           hal.Map
	)
	for _, a := range el.attrs {
		switch a.name {
		case attrRel:
			rel, hasRel = a.value, true
		case attrHref:
			href, hasHref = a.value, true
		default:
			attrs.Set(a.name, a.value)
		}
	}
	if !hasRel || rel == "" {
		return schemaErrorf(formatXML, path, "link without rel")
	}
	if !hasHref {
		return schemaErrorf(formatXML, path, "link without href")
	}
	r.Links().Add(rel, hal.NewLink(href, attrs))
	return nil
}

// isPlaceholder reports whether el is the bare <resource rel="..."/> written
// for an empty embedded collection.
func isPlaceholder(el *xmlElement) bool {
	return len(el.attrs) == 1 && len(el.children) == 0 && el.trimmedText() == ""
}

// childGroups collects data elements by name in first-seen order.
type childGroups []*childGroup

type childGroup struct {
	name  string
	elems []*xmlElement
}

func (gs *childGroups) add(el *xmlElement) {
	for _, g := range *gs {
		if g.name == el.name {
			g.elems = append(g.elems, el)
			return
		}
	}
	*gs = append(*gs, &childGroup{name: el.name, elems: []*xmlElement{el}})
}

// value is one data value for a single element and a list for repeated ones.
func (g *childGroup) value() any {
	if len(g.elems) == 1 {
		return elementValue(g.elems[0])
	}
	items := make([]any, len(g.elems))
	for i, el := range g.elems {
		items[i] = elementValue(el)
	}
	return items
}

func elementValue(el *xmlElement) any {
	if len(el.attrs) == 0 && len(el.children) == 0 {
		return el.text.String()
	}
	var m hal.Map
	for _, a := range el.attrs {
		m.Set(hal.AttributeKey(a.name), a.value)
	}
	var groups childGroups
	for _, child := range el.children {
		groups.add(child)
	}
	for _, g := range groups {
		m.Set(g.name, g.value())
	}
	if text := el.trimmedText(); text != "" {
		m.Set(keyValue, text)
	}
	return m
}
