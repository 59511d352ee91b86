// Package hal provides an in-memory model of HAL (Hypertext Application
// Language) resources:
//
// - Resource: URI, ordered data, links and embedded resources
// - Link / LinkTable: relation-keyed links with CURIE resolution
// - Map: insertion-ordered data shared by both wire formats
// - Errors: FormatError, SchemaError, InvalidArgumentError and Code(err)
//
// Design policy:
// - Keep the model in the root package; wire formats live under codec/.
// - Embedded relations are explicitly single or collection (see Embedded);
//   nothing is inferred from the number of members.
// - "@" prefixed data keys are XML attributes. StripAttributeMarkers is the
//   single place that removes them for JSON.
//
// Typical usage:
//
//	order := hal.New("/orders/123", hal.Map{{Key: "total", Value: 30}})
//	order.AddLink("customer", "/customers/7", hal.Map{{Key: hal.AttrTitle, Value: "Bob"}})
//
//	root := hal.New("/orders", nil)
//	root.AddCurie("acme", "http://docs.acme.com/relations/{rel}")
//	root.AddResource("acme:order", order)
//
//	out, err := codec.RenderJSON(root, true)
//	back, err := codec.ParseJSON(out, 8)
package hal
