package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/reoring/hal"
	eng "github.com/reoring/hal/internal/engine"
)

const formatJSON = "json"

// Parse decodes a hal+json document. Embedded resources are read up to
// Parse.MaxEmbedDepth levels deep.
func (c *JSONCodec) Parse(data []byte) (*hal.Resource, error) {
	popts := c.opts.Parse
	log := popts.logger()
	src := eng.WrapWithEnforcement(c.driver.NewBytes(data), eng.EnforceOptions{
		OnDuplicate: popts.DuplicateKeys.engine(),
		MaxDepth:    popts.maxNesting(),
		IssueSink: func(is eng.SimpleIssue) {
			log.Warn("duplicate JSON key", "path", is.Path, "offset", is.Offset)
		},
	})
	doc, err := eng.DecodeDocument(src)
	if err != nil {
		return nil, jsonFormatError(err, src.Location())
	}
	root, ok := doc.(eng.Object)
	if !ok {
		return nil, &hal.SchemaError{Format: formatJSON, Message: fmt.Sprintf("document root is %s, want object", jsonKind(doc))}
	}
	p := jsonParser{log: log}
	return p.resource(root, "", popts.MaxEmbedDepth)
}

func jsonFormatError(err error, offset int64) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		cause := hal.ErrDepthExceeded
		if ie.Code == eng.CodeDuplicateKey {
			cause = hal.ErrDuplicateKey
		}
		return &hal.FormatError{Format: formatJSON, Offset: ie.Offset, Err: fmt.Errorf("%w: %s", cause, ie.Error())}
	}
	return &hal.FormatError{Format: formatJSON, Offset: offset, Err: err}
}

type jsonParser struct {
	log *slog.Logger
}

func (p *jsonParser) resource(obj eng.Object, path string, depth int) (*hal.Resource, error) {
	r := hal.New("", nil).SetStripAttributeMarkers(false)
	var (
		data                  hal.Map
		links, embedded       any
		hasLinks, hasEmbedded bool
	)
	for _, m := range obj {
		switch m.Key {
		case keyLinks:
			links, hasLinks = m.Value, true
		case keyEmbedded:
			embedded, hasEmbedded = m.Value, true
		default:
			data = append(data, hal.Field{Key: m.Key, Value: jsonValue(m.Value)})
		}
	}
	r.SetData(data)
	if hasLinks {
		if err := p.links(r, links, eng.JoinPointer(path, keyLinks)); err != nil {
			return nil, err
		}
	}
	if hasEmbedded {
		if err := p.embedded(r, embedded, eng.JoinPointer(path, keyEmbedded), depth); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (p *jsonParser) links(r *hal.Resource, v any, path string) error {
	if isEmptyList(v) {
		return nil
	}
	obj, ok := v.(eng.Object)
	if !ok {
		return schemaErrorf(formatJSON, path, "_links is %s, want object", jsonKind(v))
	}
	for _, m := range obj {
		relPath := eng.JoinPointer(path, m.Key)
		if m.Key == "" {
			return schemaErrorf(formatJSON, relPath, "empty link relation")
		}
		if m.Key == hal.RelSelf {
			uri, err := p.self(m.Value, relPath)
			if err != nil {
				return err
			}
			r.SetURI(uri)
			continue
		}
		switch t := m.Value.(type) {
		case eng.Object:
			l, err := jsonLink(t, relPath)
			if err != nil {
				return err
			}
			r.Links().Add(m.Key, l)
		case []any:
			r.Links().ForceArray(m.Key)
			for i, item := range t {
				itemPath := eng.JoinPointer(relPath, strconv.Itoa(i))
				lo, ok := item.(eng.Object)
				if !ok {
					return schemaErrorf(formatJSON, itemPath, "link is %s, want object", jsonKind(item))
				}
				l, err := jsonLink(lo, itemPath)
				if err != nil {
					return err
				}
				r.Links().Add(m.Key, l)
			}
		default:
			return schemaErrorf(formatJSON, relPath, "link relation is %s, want object or array", jsonKind(m.Value))
		}
	}
	return nil
}

// self extracts the resource URI. When self is a list the first entry wins.
// A self link without href leaves the URI empty.
func (p *jsonParser) self(v any, path string) (string, error) {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return "", nil
		}
		if len(list) > 1 {
			p.log.Debug("ignoring extra self links", "path", path, "count", len(list)-1)
		}
		v, path = list[0], eng.JoinPointer(path, "0")
	}
	obj, ok := v.(eng.Object)
	if !ok {
		return "", schemaErrorf(formatJSON, path, "self link is %s, want object", jsonKind(v))
	}
	for _, m := range obj {
		if m.Key != keyHref {
			continue
		}
		s, ok := m.Value.(string)
		if !ok {
			return "", schemaErrorf(formatJSON, eng.JoinPointer(path, keyHref), "href is %s, want string", jsonKind(m.Value))
		}
		return s, nil
	}
	p.log.Debug("self link without href", "path", path)
	return "", nil
}

func jsonLink(obj eng.Object, path string) (hal.Link, error) {
	var (
		href    string
		hasHref bool
		attrs   hal.Map
	)
	for _, m := range obj {
		if m.Key == keyHref {
			s, ok := m.Value.(string)
			if !ok {
				return hal.Link{}, schemaErrorf(formatJSON, eng.JoinPointer(path, keyHref), "href is %s, want string", jsonKind(m.Value))
			}
			href, hasHref = s, true
			continue
		}
		attrs = append(attrs, hal.Field{Key: m.Key, Value: jsonValue(m.Value)})
	}
	if !hasHref {
		return hal.Link{}, schemaErrorf(formatJSON, path, "link without href")
	}
	return hal.NewLink(href, attrs), nil
}

func (p *jsonParser) embedded(r *hal.Resource, v any, path string, depth int) error {
	if depth <= 0 {
		if obj, ok := v.(eng.Object); !ok || len(obj) > 0 {
			p.log.Debug("embedded resources skipped at depth limit", "path", path)
		}
		return nil
	}
	if isEmptyList(v) {
		return nil
	}
	obj, ok := v.(eng.Object)
	if !ok {
		return schemaErrorf(formatJSON, path, "_embedded is %s, want object", jsonKind(v))
	}
	for _, m := range obj {
		relPath := eng.JoinPointer(path, m.Key)
		if m.Key == "" {
			return schemaErrorf(formatJSON, relPath, "empty embedded relation")
		}
		switch t := m.Value.(type) {
		case eng.Object:
			child, err := p.resource(t, relPath, depth-1)
			if err != nil {
				return err
			}
			if err := r.SetResource(m.Key, child); err != nil {
				return err
			}
		case []any:
			r.AddResource(m.Key)
			for i, item := range t {
				itemPath := eng.JoinPointer(relPath, strconv.Itoa(i))
				co, ok := item.(eng.Object)
				if !ok {
					return schemaErrorf(formatJSON, itemPath, "embedded resource is %s, want object", jsonKind(item))
				}
				child, err := p.resource(co, itemPath, depth-1)
				if err != nil {
					return err
				}
				r.AddResource(m.Key, child)
			}
		default:
			return schemaErrorf(formatJSON, relPath, "embedded relation is %s, want object or array", jsonKind(m.Value))
		}
	}
	return nil
}

// isEmptyList reports whether v is []: the form some encoders give an empty
// object.
func isEmptyList(v any) bool {
	list, ok := v.([]any)
	return ok && len(list) == 0
}

// jsonValue converts a decoded tree into data values: objects become hal.Map
// and numbers become int64 when integral, float64 otherwise.
func jsonValue(v any) any {
	switch t := v.(type) {
	case eng.Object:
		m := make(hal.Map, len(t))
		for i, member := range t {
			m[i] = hal.Field{Key: member.Key, Value: jsonValue(member.Value)}
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = jsonValue(item)
		}
		return out
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t
	}
	return v
}

func jsonKind(v any) string {
	switch v.(type) {
	case eng.Object:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func schemaErrorf(format, path, msg string, args ...any) error {
	return &hal.SchemaError{Format: format, Path: path, Message: fmt.Sprintf(msg, args...)}
}
