// Package format defines the format handler SPI.
//
// A Handler knows how to infer the schema of one blob and how to turn a blob
// into a lazily iterated record.Source. Handlers are created from format
// descriptors through an explicit Registry; nothing registers itself from
// init. Start-up code populates a registry and hands it to the materializer:
//
//	reg := format.NewRegistry()
//	text.Register(reg)
//
//	desc, err := reg.Decode(node) // node is the reader's "format" YAML node
//	h, err := reg.Handler(desc)
//
// New formats are added by registering another Factory under a new Kind.
package format
