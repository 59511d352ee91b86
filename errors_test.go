package hal

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"format", &FormatError{Format: "json", Offset: 3, Err: io.ErrUnexpectedEOF}, CodeFormat},
		{"format depth", &FormatError{Format: "xml", Offset: -1, Err: fmt.Errorf("%w: deep", ErrDepthExceeded)}, CodeDepthExceeded},
		{"format duplicate", &FormatError{Format: "json", Offset: -1, Err: ErrDuplicateKey}, CodeDuplicateKey},
		{"schema", &SchemaError{Format: "json", Path: "/_links/next", Message: "link without href"}, CodeSchema},
		{"invalid", &InvalidArgumentError{Op: "SetResource", Value: 1}, CodeInvalidArgument},
		{"wrapped schema", fmt.Errorf("load: %w", &SchemaError{Format: "xml"}), CodeSchema},
		{"other", errors.New("boom"), CodeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Code(tc.err))
		})
	}
}

func TestFormatError_Message(t *testing.T) {
	err := &FormatError{Format: "json", Offset: 12, Err: io.ErrUnexpectedEOF}
	assert.Equal(t, "json (offset 12): unexpected EOF", err.Error())
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	noOffset := &FormatError{Format: "xml", Offset: -1}
	assert.Equal(t, "xml: malformed document", noOffset.Error())
}

func TestSchemaError_Message(t *testing.T) {
	err := &SchemaError{Format: "xml", Message: "link without rel"}
	assert.Equal(t, "xml: link without rel at /", err.Error())
	assert.ErrorIs(t, err, ErrSchema)
	assert.NotErrorIs(t, err, ErrFormat)
}
