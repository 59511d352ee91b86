package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/hal"
	"github.com/reoring/hal/codec"
)

// sampleOrders exercises every part of the model that both formats carry.
func sampleOrders() *hal.Resource {
	root := hal.New("/orders", hal.Map{
		{Key: "currentlyProcessing", Value: 14},
		{Key: "shippedToday", Value: 20},
		{Key: "open", Value: true},
	})
	root.AddCurie("acme", "http://docs.acme.com/relations/{rel}")
	root.AddLink("next", "/orders?page=2", nil)
	root.AddLink("find", "/orders{?id}", hal.Map{{Key: hal.AttrTemplated, Value: true}})
	root.AddLink("acme:admin", "/admins/2", hal.Map{{Key: hal.AttrTitle, Value: "Fred"}})
	root.AddLink("acme:admin", "/admins/5", hal.Map{{Key: hal.AttrTitle, Value: "Kate"}})

	first := hal.New("/orders/123", hal.Map{
		{Key: "total", Value: 30},
		{Key: "currency", Value: "USD"},
		{Key: "status", Value: "shipped"},
	})
	first.AddLink("basket", "/baskets/98712", nil)
	first.AddLink("customer", "/customers/7809", nil)
	second := hal.New("/orders/124", hal.Map{
		{Key: "total", Value: 20},
		{Key: "currency", Value: "USD"},
		{Key: "status", Value: "processing"},
	})
	second.AddLink("basket", "/baskets/97213", nil)
	root.AddResource("acme:order", first, second)
	root.AddResource("acme:archived")
	return root
}

func TestRoundTrip_JSON(t *testing.T) {
	for _, driver := range codec.Drivers() {
		t.Run(driver, func(t *testing.T) {
			c := newJSON(t, codec.JSONOptions{Driver: driver, Parse: codec.ParseOptions{MaxEmbedDepth: 4}})
			r := sampleOrders()
			require.NoError(t, r.SetResource("acme:owner", hal.New("/admins/2", hal.Map{{Key: "name", Value: "Fred"}})))

			first, err := c.Render(r)
			require.NoError(t, err)
			parsed, err := c.Parse(first)
			require.NoError(t, err)
			second, err := c.Render(parsed)
			require.NoError(t, err)
			assert.Equal(t, string(first), string(second))

			assertSameResource(t, r, parsed)
		})
	}
}

func TestRoundTrip_JSONPretty(t *testing.T) {
	c := newJSON(t, codec.JSONOptions{Pretty: true, Parse: codec.ParseOptions{MaxEmbedDepth: 2}})
	first, err := c.Render(sampleOrders())
	require.NoError(t, err)
	parsed, err := c.Parse(first)
	require.NoError(t, err)
	second, err := c.Render(parsed)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRoundTrip_XML(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		c := codec.XML(codec.XMLOptions{Pretty: pretty, Parse: codec.ParseOptions{MaxEmbedDepth: 4}})
		r := sampleOrders()

		first, err := c.Render(r)
		require.NoError(t, err)
		parsed, err := c.Parse(first)
		require.NoError(t, err)
		second, err := c.Render(parsed)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), "pretty=%v", pretty)

		assert.Equal(t, r.URI(), parsed.URI())
		assert.Equal(t, r.Links().Rels(), parsed.Links().Rels())
		assert.Equal(t, r.ResourceRels(), parsed.ResourceRels())
		order := parsed.FirstResource("acme:order")
		require.NotNil(t, order)
		assert.Equal(t, "/orders/123", order.URI())
		total, _ := order.Data().Get("total")
		assert.Equal(t, "30", total)
	}
}

func TestRoundTrip_XMLAttributes(t *testing.T) {
	r := hal.New("/", hal.Map{{Key: "error", Value: hal.Map{
		{Key: "@id", Value: "6"},
		{Key: "@xml:lang", Value: "en"},
		{Key: "message", Value: "msg"},
	}}})
	out, err := codec.RenderXML(r, false)
	require.NoError(t, err)
	parsed, err := codec.ParseXML(out, 0)
	require.NoError(t, err)
	assert.Equal(t, r.Data(), parsed.Data())

	// markers survive into JSON unless stripping is re-enabled
	js, err := codec.RenderJSON(parsed, false)
	require.NoError(t, err)
	assert.Equal(t, `{"error":{"@id":"6","@xml:lang":"en","message":"msg"},"_links":{"self":{"href":"/"}}}`, string(js))
	parsed.SetStripAttributeMarkers(true)
	js, err = codec.RenderJSON(parsed, false)
	require.NoError(t, err)
	assert.Equal(t, `{"error":{"id":"6","lang":"en","message":"msg"},"_links":{"self":{"href":"/"}}}`, string(js))
}

func TestRoundTrip_XMLToJSON(t *testing.T) {
	out, err := codec.RenderXML(sampleOrders(), false)
	require.NoError(t, err)
	parsed, err := codec.ParseXML(out, 2)
	require.NoError(t, err)

	js, err := codec.RenderJSON(parsed, false)
	require.NoError(t, err)
	back, err := codec.ParseJSON(js, 2)
	require.NoError(t, err)
	assertSameResource(t, parsed, back)
}

func assertSameResource(t *testing.T, want, got *hal.Resource) {
	t.Helper()
	assert.Equal(t, want.URI(), got.URI())
	assert.Equal(t, want.Links().Rels(), got.Links().Rels())
	for _, rel := range want.Links().Rels() {
		wl, gl := want.Links().Links(rel), got.Links().Links(rel)
		require.Len(t, gl, len(wl), rel)
		for i := range wl {
			assert.Equal(t, wl[i].URI(), gl[i].URI(), rel)
			assert.Equal(t, wl[i].Title(), gl[i].Title(), rel)
			assert.Equal(t, wl[i].Templated(), gl[i].Templated(), rel)
		}
	}
	assert.Equal(t, want.Data().Keys(), got.Data().Keys())
	wantRaw, gotRaw := want.RawResources(), got.RawResources()
	require.Len(t, gotRaw, len(wantRaw))
	for i := range wantRaw {
		assert.Equal(t, wantRaw[i].Rel, gotRaw[i].Rel)
		assert.Equal(t, wantRaw[i].Collection, gotRaw[i].Collection, wantRaw[i].Rel)
		require.Len(t, gotRaw[i].Resources, len(wantRaw[i].Resources))
		for j := range wantRaw[i].Resources {
			assertSameResource(t, wantRaw[i].Resources[j], gotRaw[i].Resources[j])
		}
	}
}
