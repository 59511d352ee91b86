package codec

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/hal/internal/engine"
)

// Media types served by the codecs.
const (
	MediaTypeJSON = "application/hal+json"
	MediaTypeXML  = "application/hal+xml"
)

const (
	// DefaultMaxNesting bounds element/container nesting while parsing.
	DefaultMaxNesting = 1000
	// DefaultXMLIndent is the indentation unit of pretty XML output.
	DefaultXMLIndent = "  "
	// jsonIndent matches the four-space layout of pretty hal+json.
	jsonIndent = "    "
)

// Severity expresses how a parse irregularity is handled.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

func (s Severity) String() string {
	switch s {
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "ignore"
	}
}

// ParseSeverity reads "ignore", "warn" or "error".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return Ignore, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	}
	return Ignore, fmt.Errorf("codec: unknown severity %q", s)
}

// UnmarshalYAML accepts the textual severity names.
func (s *Severity) UnmarshalYAML(n *yaml.Node) error {
	var text string
	if err := n.Decode(&text); err != nil {
		return err
	}
	v, err := ParseSeverity(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*s = v
	return nil
}

// MarshalYAML writes the textual severity name.
func (s Severity) MarshalYAML() (any, error) { return s.String(), nil }

func (s Severity) engine() eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

// ParseOptions controls how documents are read.
type ParseOptions struct {
	// MaxEmbedDepth is the number of embedded levels parsed. At 0 embedded
	// resources are dropped without being read.
	MaxEmbedDepth int `yaml:"max_embed_depth"`
	// MaxNesting bounds container/element nesting of the raw document.
	// Zero uses DefaultMaxNesting; negative disables the limit.
	MaxNesting int `yaml:"max_nesting"`
	// DuplicateKeys selects the handling of repeated JSON object keys. The
	// last value wins unless the severity is Error.
	DuplicateKeys Severity `yaml:"duplicate_keys"`
	// Logger receives debug and warning events. Nil discards them.
	Logger *slog.Logger `yaml:"-"`
}

func (o ParseOptions) maxNesting() int {
	switch {
	case o.MaxNesting == 0:
		return DefaultMaxNesting
	case o.MaxNesting < 0:
		return 0
	}
	return o.MaxNesting
}

func (o ParseOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// JSONOptions configures the hal+json codec.
type JSONOptions struct {
	// Pretty indents output and leaves forward slashes unescaped.
	Pretty bool `yaml:"pretty"`
	// EscapeSlashes writes "/" as "\/" in compact output.
	EscapeSlashes bool `yaml:"escape_slashes"`
	// ArrayLinkRels always render as arrays, in addition to curies and the
	// relations flagged on the resource itself.
	ArrayLinkRels []string `yaml:"array_link_rels"`
	// CollapseSingleResources renders a one-member embedded collection as a
	// bare object unless its relation is listed in ArrayResourceRels.
	CollapseSingleResources bool     `yaml:"collapse_single_resources"`
	ArrayResourceRels       []string `yaml:"array_resource_rels"`
	// Driver selects the JSON implementation: "go-json" (default) or
	// "encoding/json".
	Driver string `yaml:"driver"`
	// MaxDataDepth bounds data nesting on output; see hal.Normalize.
	MaxDataDepth int `yaml:"max_data_depth"`

	Parse ParseOptions `yaml:"parse"`
}

// XMLOptions configures the hal+xml codec.
type XMLOptions struct {
	Pretty bool `yaml:"pretty"`
	// Indent is the pretty-print indentation unit; empty uses DefaultXMLIndent.
	Indent string `yaml:"indent"`
	// MaxDataDepth bounds data nesting on output; see hal.Normalize.
	MaxDataDepth int `yaml:"max_data_depth"`

	Parse ParseOptions `yaml:"parse"`
}

func (o XMLOptions) indent() string {
	if o.Indent == "" {
		return DefaultXMLIndent
	}
	return o.Indent
}
