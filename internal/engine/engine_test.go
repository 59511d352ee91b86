package engine_test

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"testing"

	eng "github.com/reoring/hal/internal/engine"
	gojsonsrc "github.com/reoring/hal/source/gojson"
	jsonsrc "github.com/reoring/hal/source/json"
)

var sources = map[string]func([]byte) eng.TokenSource{
	"encoding/json": jsonsrc.NewBytes,
	"go-json":       gojsonsrc.NewBytes,
}

func TestDecodeDocument_PreservesOrder(t *testing.T) {
	for name, newSource := range sources {
		t.Run(name, func(t *testing.T) {
			v, err := eng.DecodeDocument(newSource([]byte(`{"z":1,"a":[true,null,"s"],"m":{"y":2.5,"b":{}}}`)))
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			want := eng.Object{
				{Key: "z", Value: json.Number("1")},
				{Key: "a", Value: []any{true, nil, "s"}},
				{Key: "m", Value: eng.Object{
					{Key: "y", Value: json.Number("2.5")},
					{Key: "b", Value: eng.Object{}},
				}},
			}
			if !reflect.DeepEqual(v, want) {
				t.Fatalf("got %#v\nwant %#v", v, want)
			}
		})
	}
}

func TestDecodeDocument_RepeatedKeyKeepsFirstPosition(t *testing.T) {
	v, err := eng.DecodeDocument(jsonsrc.NewBytes([]byte(`{"a":1,"b":2,"a":3}`)))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := eng.Object{{Key: "a", Value: json.Number("3")}, {Key: "b", Value: json.Number("2")}}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %#v", v)
	}
}

func TestDecodeDocument_Errors(t *testing.T) {
	if _, err := eng.DecodeDocument(jsonsrc.NewBytes([]byte("   "))); !errors.Is(err, eng.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := eng.DecodeDocument(jsonsrc.NewBytes([]byte(`{} {}`))); !errors.Is(err, eng.ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
	if _, err := eng.DecodeDocument(jsonsrc.NewBytes([]byte(`{"a":[1,2`))); err == nil {
		t.Fatalf("expected error for truncated input")
	} else if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Logf("truncated input reported as %v", err)
	}
}

func TestEnforcement_DuplicateKeyError(t *testing.T) {
	src := eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(`[{"a":1,"a":2}]`)), eng.EnforceOptions{OnDuplicate: eng.DupError})
	_, err := eng.DecodeDocument(src)
	var ie eng.IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != eng.CodeDuplicateKey || ie.Path != "/0/a" {
		t.Fatalf("unexpected issue: %+v", ie.SimpleIssue)
	}
}

func TestEnforcement_DuplicateKeyWarn(t *testing.T) {
	var issues []eng.SimpleIssue
	src := eng.WrapWithEnforcement(gojsonsrc.NewBytes([]byte(`{"x":{"a":1,"a":2},"a":3}`)), eng.EnforceOptions{
		OnDuplicate: eng.DupWarn,
		IssueSink:   func(si eng.SimpleIssue) { issues = append(issues, si) },
	})
	if _, err := eng.DecodeDocument(src); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(issues) != 1 || issues[0].Path != "/x/a" {
		t.Fatalf("expected one duplicate at /x/a, got %v", issues)
	}
}

func TestEnforcement_MaxDepth(t *testing.T) {
	// depth = 3 for { a: { b: { c: 1 } } }
	doc := []byte(`{"a":{"b":{"c":1}}}`)
	_, err := eng.DecodeDocument(eng.WrapWithEnforcement(jsonsrc.NewBytes(doc), eng.EnforceOptions{MaxDepth: 2}))
	var ie eng.IssueError
	if !errors.As(err, &ie) || ie.Code != eng.CodeDepthExceeded {
		t.Fatalf("expected depth_exceeded, got %v", err)
	}
	if ie.Path != "/a/b" {
		t.Fatalf("expected path=/a/b, got %s", ie.Path)
	}
	if _, err := eng.DecodeDocument(eng.WrapWithEnforcement(jsonsrc.NewBytes(doc), eng.EnforceOptions{MaxDepth: 3})); err != nil {
		t.Fatalf("depth 3 should pass: %v", err)
	}
}

func TestWrapWithEnforcement_NoopReturnsInner(t *testing.T) {
	inner := jsonsrc.NewBytes([]byte(`{}`))
	if got := eng.WrapWithEnforcement(inner, eng.EnforceOptions{}); got != inner {
		t.Fatalf("expected the inner source back")
	}
}

func TestJoinPointer(t *testing.T) {
	if got := eng.JoinPointer("/a", "b/c~d"); got != "/a/b~1c~0d" {
		t.Fatalf("got %s", got)
	}
}
