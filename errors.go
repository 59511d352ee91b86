package hal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a programmatic classification of codec errors.
type ErrorCode string

const (
	// CodeFormat marks text that is not well-formed JSON or XML.
	CodeFormat ErrorCode = "format_error"
	// CodeSchema marks a well-formed document with a missing or misshapen field.
	CodeSchema ErrorCode = "schema_error"
	// CodeInvalidArgument marks a bad value passed to the mutation API.
	CodeInvalidArgument ErrorCode = "invalid_argument"
	// CodeDepthExceeded marks input nested beyond a configured limit.
	CodeDepthExceeded ErrorCode = "depth_exceeded"
	// CodeDuplicateKey marks a repeated JSON object key under strict parsing.
	CodeDuplicateKey ErrorCode = "duplicate_key"
	// CodeUnknown is returned for errors outside this taxonomy.
	CodeUnknown ErrorCode = "unknown"
)

var (
	// ErrFormat matches every *FormatError.
	ErrFormat = errors.New("hal: malformed document")
	// ErrSchema matches every *SchemaError.
	ErrSchema = errors.New("hal: invalid document structure")
	// ErrInvalidArgument matches every *InvalidArgumentError.
	ErrInvalidArgument = errors.New("hal: invalid argument")
	// ErrDepthExceeded indicates nesting beyond a configured limit.
	ErrDepthExceeded = errors.New("hal: nesting depth exceeded")
	// ErrDuplicateKey indicates a repeated object key.
	ErrDuplicateKey = errors.New("hal: duplicate key")
)

// FormatError reports text that could not be decoded as the named format.
type FormatError struct {
	Format string // "json" or "xml"
	Offset int64  // byte offset of the failure, -1 when unknown
	Err    error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(e.Format)
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	b.WriteString(": ")
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("malformed document")
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// SchemaError reports a structurally required field that is missing or has the
// wrong shape, for example a link without href. Renderers return it for data
// the target format cannot express.
type SchemaError struct {
	Format  string
	Path    string // JSON pointer or XML element path of the offending node
	Message string
}

func (e *SchemaError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s: %s at %s", e.Format, e.Message, path)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// InvalidArgumentError reports a value the mutation API cannot accept.
type InvalidArgumentError struct {
	Op    string
	Value any
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("hal: %s: unsupported value of type %T", e.Op, e.Value)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// Code classifies err. It returns "" for nil.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrDepthExceeded):
		return CodeDepthExceeded
	case errors.Is(err, ErrDuplicateKey):
		return CodeDuplicateKey
	case errors.Is(err, ErrFormat):
		return CodeFormat
	case errors.Is(err, ErrSchema):
		return CodeSchema
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	}
	return CodeUnknown
}
