package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, formatXML, detectFormat([]byte("  \n<?xml version=\"1.0\"?><resource/>")))
	assert.Equal(t, formatXML, detectFormat([]byte("\ufeff<resource/>")))
	assert.Equal(t, formatJSON, detectFormat([]byte(`{"a":1}`)))
	assert.Equal(t, formatJSON, detectFormat(nil))
}

func TestRun_JSONToXML(t *testing.T) {
	var stdout, stderr bytes.Buffer
	in := strings.NewReader(`{"_links":{"self":{"href":"http://example.com/"},"test":{"href":"/test/1","title":"My Test"}}}`)

	require.NoError(t, run([]string{"--pretty"}, in, &stdout, &stderr))
	want := "<?xml version=\"1.0\"?>\n" +
		"<resource href=\"http://example.com/\">\n" +
		"  <link rel=\"test\" href=\"/test/1\" title=\"My Test\"/>\n" +
		"</resource>\n"
	assert.Equal(t, want, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRun_XMLFileToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.xml")
	doc := `<resource href="/orders"><resource rel="item" href="/orders/1"/></resource>`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{path}, strings.NewReader(""), &stdout, &stderr))
	assert.Equal(t, `{"_links":{"self":{"href":"/orders"}},"_embedded":{"item":[{"_links":{"self":{"href":"/orders/1"}}}]}}`+"\n", stdout.String())
}

func TestRun_DepthAndVerbose(t *testing.T) {
	var stdout, stderr bytes.Buffer
	in := strings.NewReader(`{"_embedded":{"item":[{"n":1}]}}`)

	require.NoError(t, run([]string{"--to", "json", "--depth", "0", "-v"}, in, &stdout, &stderr))
	assert.Equal(t, "{}\n", stdout.String())
	assert.Contains(t, stderr.String(), "embedded resources skipped")
}

func TestRun_Config(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("json:\n  escape_slashes: true\n"), 0o600))

	var stdout, stderr bytes.Buffer
	in := strings.NewReader(`<resource href="http://example.com/"/>`)
	require.NoError(t, run([]string{"--config", path}, in, &stdout, &stderr))
	assert.Equal(t, `{"_links":{"self":{"href":"http:\/\/example.com\/"}}}`+"\n", stdout.String())
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run([]string{"--from", "yaml"}, strings.NewReader("a: 1"), &stdout, &stderr))
	assert.Error(t, run([]string{"--from", "json"}, strings.NewReader("{"), &stdout, &stderr))
	assert.Error(t, run([]string{"a", "b"}, strings.NewReader(""), &stdout, &stderr))
	assert.Error(t, run([]string{"--no-such-flag"}, strings.NewReader(""), &stdout, &stderr))
	assert.Empty(t, stdout.String())
}
