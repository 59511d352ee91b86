package codec

import (
	"fmt"
	"mime"
	"strings"

	"github.com/reoring/hal"
)

// Codec converts between a hal.Resource and one wire format.
type Codec interface {
	ContentType() string
	Render(r *hal.Resource) ([]byte, error)
	Parse(data []byte) (*hal.Resource, error)
}

var (
	_ Codec = (*JSONCodec)(nil)
	_ Codec = (*XMLCodec)(nil)
)

// ForContentType returns the codec serving mediaType, configured from cfg.
// Media type parameters are ignored; plain application/json and
// application/xml select the HAL variants.
func ForContentType(mediaType string, cfg Config) (Codec, error) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mediaType))
	}
	switch mt {
	case MediaTypeJSON, "application/json":
		c, err := JSON(cfg.JSON)
		if err != nil {
			return nil, err
		}
		return c, nil
	case MediaTypeXML, "application/xml", "text/xml":
		return XML(cfg.XML), nil
	}
	return nil, fmt.Errorf("codec: unsupported media type %q", mediaType)
}

// RenderJSON encodes r as hal+json with the default driver.
func RenderJSON(r *hal.Resource, pretty bool) ([]byte, error) {
	c, err := JSON(JSONOptions{Pretty: pretty})
	if err != nil {
		return nil, err
	}
	return c.Render(r)
}

// ParseJSON decodes hal+json, reading embedded resources up to maxEmbedDepth
// levels deep.
func ParseJSON(data []byte, maxEmbedDepth int) (*hal.Resource, error) {
	c, err := JSON(JSONOptions{Parse: ParseOptions{MaxEmbedDepth: maxEmbedDepth}})
	if err != nil {
		return nil, err
	}
	return c.Parse(data)
}

// RenderXML encodes r as hal+xml.
func RenderXML(r *hal.Resource, pretty bool) ([]byte, error) {
	return XML(XMLOptions{Pretty: pretty}).Render(r)
}

// ParseXML decodes hal+xml, reading embedded resources up to maxEmbedDepth
// levels deep.
func ParseXML(data []byte, maxEmbedDepth int) (*hal.Resource, error) {
	return XML(XMLOptions{Parse: ParseOptions{MaxEmbedDepth: maxEmbedDepth}}).Parse(data)
}
