// Package shapec is a shape-driven codec: any value whose type is built
// from a small closed set of structural categories serializes to a compact
// binary stream and to an XML document with no per-type code.
//
// Types are classified into six shapes: primitives (fixed-size scalars),
// records (plain structs, exported fields in declaration order), sequences
// (slices, strings and maps), products (Pair, Triple and fixed-size
// arrays), nullables (Option) and owned references (pointers, which may
// form recursive structures such as linked lists). The codec for a
// composite shape is derived from the codecs of its constituents, so
// nesting works to arbitrary depth.
//
// The binary stream carries no type tags, only structural framing: an
// 8-byte little-endian element count per sequence and a 1-byte presence
// flag per nullable or pointer. Decoding therefore requires the exact
// static type used for encoding:
//
//	data, err := shapec.Dump(value)
//	value, err = shapec.Load[Profile](data)
//
// Primitives use their in-memory width, so streams are only portable
// between identically-configured producers and consumers.
//
// The XML form mirrors the same structure as a node tree; Config selects
// whether primitive leaves carry decimal text or Base64 of their raw
// bytes, uniformly for the whole call:
//
//	doc, err := shapec.DumpXML(value, shapec.Config{UseBase64: true})
//	value, err = shapec.LoadXML[Profile](doc, shapec.Config{UseBase64: true})
//
// All decode failures wrap one of the sentinel errors (ErrTruncatedInput,
// ErrMissingAttribute, ErrMissingChildElement, ErrInvalidDocument) and
// abort the whole decode; no partial value is ever returned. Encoding
// cannot fail for a value that classifies, and the codec holds no state
// across calls, so independent calls are safe to run concurrently.
package shapec
