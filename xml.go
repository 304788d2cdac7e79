package shapec

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/shapec/shapec/internal/wire"
)

// Element tags identify the shape of a node, not the concrete type.
const (
	tagInt         = "int"
	tagUnsignedInt = "unsigned_int"
	tagFloat       = "float"
	tagAggregate   = "aggregate"
	tagIterable    = "iterable"
	tagTuple       = "tuple"
	tagOptional    = "optional"
	tagUniquePtr   = "unique_ptr"
)

const (
	attrValue    = "value"
	attrBase64   = "base64"
	attrSize     = "size"
	attrHasValue = "has_value"
)

// Element is a generic XML tree node. The ",any" tags let encoding/xml
// marshal and unmarshal arbitrary trees through this one type.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []*Element `xml:",any"`
}

func newElement(tag string) *Element {
	return &Element{XMLName: xml.Name{Local: tag}}
}

func (e *Element) setAttr(name, value string) {
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

func (e *Element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Document is a single-rooted XML tree as produced by DumpXML.
type Document struct {
	Root *Element
}

// Bytes renders the document with an XML declaration and indentation.
func (d *Document) Bytes() ([]byte, error) {
	body, err := xml.MarshalIndent(d.Root, "", "    ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// WriteFile renders the document to path.
func (d *Document) WriteFile(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ParseDocument parses data into a Document. Data that does not parse, or
// parses to no root element, fails with ErrInvalidDocument.
func ParseDocument(data []byte) (*Document, error) {
	root := &Element{}
	if err := xml.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if root.XMLName.Local == "" {
		return nil, fmt.Errorf("%w: no root element", ErrInvalidDocument)
	}
	return &Document{Root: root}, nil
}

// ReadDocumentFile reads and parses the XML file at path. A missing or
// empty file fails with ErrInvalidDocument.
func ReadDocumentFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return ParseDocument(data)
}

// Config selects the leaf encoding mode for one XML encode or decode
// call. It applies uniformly to every primitive leaf in the tree.
type Config struct {
	// UseBase64 renders primitive leaves as Base64 of their raw bytes
	// instead of decimal text.
	UseBase64 bool
}

// DumpXML encodes v into an XML document.
func DumpXML(v any, cfg Config) (*Document, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: untyped nil", ErrUnsupported)
	}
	root, err := xmlWrite(rv, cfg)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root}, nil
}

// LoadXML decodes a value of type T from doc. As with the binary form,
// tag names identify shapes only, so T must be the type that was dumped,
// and cfg must match the mode used at encode time.
func LoadXML[T any](doc *Document, cfg Config) (T, error) {
	var zero T
	if doc == nil || doc.Root == nil {
		return zero, fmt.Errorf("%w: no root element", ErrInvalidDocument)
	}
	rv, err := xmlRead(reflect.TypeOf((*T)(nil)).Elem(), doc.Root, cfg)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

// DumpXMLFile encodes v and writes the document to path.
func DumpXMLFile(v any, path string, cfg Config) error {
	doc, err := DumpXML(v, cfg)
	if err != nil {
		return err
	}
	return doc.WriteFile(path)
}

// LoadXMLFile parses the document at path and decodes a value of type T
// from it.
func LoadXMLFile[T any](path string, cfg Config) (T, error) {
	doc, err := ReadDocumentFile(path)
	if err != nil {
		var zero T
		return zero, err
	}
	return LoadXML[T](doc, cfg)
}

// scalarTag names a primitive leaf by scalar kind. Booleans are unsigned
// integrals here, encoded as 0/1.
func scalarTag(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return tagInt
	case reflect.Float32, reflect.Float64:
		return tagFloat
	default:
		return tagUnsignedInt
	}
}

func xmlWrite(v reflect.Value, cfg Config) (*Element, error) {
	shape, err := ShapeOf(v.Type())
	if err != nil {
		return nil, err
	}
	switch shape {
	case ShapePrimitive:
		return xmlWritePrimitive(v, cfg), nil

	case ShapeNullable:
		return xmlWritePresent(tagOptional, v.Field(0).Bool(), v.Field(1), cfg)

	case ShapeOwnedRef:
		if v.IsNil() {
			return xmlWritePresent(tagUniquePtr, false, reflect.Value{}, cfg)
		}
		return xmlWritePresent(tagUniquePtr, true, v.Elem(), cfg)

	case ShapeProduct:
		parent := newElement(tagTuple)
		for i := 0; i < productLen(v); i++ {
			child, err := xmlWrite(productElem(v, i), cfg)
			if err != nil {
				return nil, err
			}
			parent.Children = append(parent.Children, child)
		}
		return parent, nil

	case ShapeRecord:
		parent := newElement(tagAggregate)
		for _, idx := range planFor(v.Type()).fields {
			child, err := xmlWrite(v.Field(idx), cfg)
			if err != nil {
				return nil, err
			}
			parent.Children = append(parent.Children, child)
		}
		return parent, nil

	default: // ShapeSequence
		parent := newElement(tagIterable)
		parent.setAttr(attrSize, strconv.FormatUint(uint64(v.Len()), 10))
		switch v.Kind() {
		case reflect.String:
			for _, b := range []byte(v.String()) {
				parent.Children = append(parent.Children, xmlWritePrimitive(reflect.ValueOf(b), cfg))
			}
		case reflect.Slice:
			for i := 0; i < v.Len(); i++ {
				child, err := xmlWrite(v.Index(i), cfg)
				if err != nil {
					return nil, err
				}
				parent.Children = append(parent.Children, child)
			}
		default: // map, one key/value tuple per entry, sorted key order
			for _, key := range sortedMapKeys(v) {
				entry := newElement(tagTuple)
				kc, err := xmlWrite(key, cfg)
				if err != nil {
					return nil, err
				}
				vc, err := xmlWrite(v.MapIndex(key), cfg)
				if err != nil {
					return nil, err
				}
				entry.Children = append(entry.Children, kc, vc)
				parent.Children = append(parent.Children, entry)
			}
		}
		return parent, nil
	}
}

func xmlWritePrimitive(v reflect.Value, cfg Config) *Element {
	el := newElement(scalarTag(v.Type()))
	if cfg.UseBase64 {
		raw := make([]byte, wire.Size(v.Type()))
		wire.PutPrimitive(raw, v)
		el.setAttr(attrBase64, base64.StdEncoding.EncodeToString(raw))
		return el
	}
	var text string
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			text = "1"
		} else {
			text = "0"
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		text = strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		text = strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		text = strconv.FormatFloat(v.Float(), 'g', -1, 32)
	default:
		text = strconv.FormatFloat(v.Float(), 'g', -1, 64)
	}
	el.setAttr(attrValue, text)
	return el
}

func xmlWritePresent(tag string, present bool, inner reflect.Value, cfg Config) (*Element, error) {
	el := newElement(tag)
	el.setAttr(attrHasValue, strconv.FormatBool(present))
	if present {
		child, err := xmlWrite(inner, cfg)
		if err != nil {
			return nil, err
		}
		el.Children = append(el.Children, child)
	}
	return el, nil
}

func xmlRead(t reflect.Type, el *Element, cfg Config) (reflect.Value, error) {
	shape, err := ShapeOf(t)
	if err != nil {
		return reflect.Value{}, err
	}
	switch shape {
	case ShapePrimitive:
		return xmlReadPrimitive(t, el, cfg)

	case ShapeNullable:
		nv := reflect.New(t).Elem()
		inner, err := xmlReadPresent(t.Field(1).Type, el, cfg)
		if err != nil {
			return reflect.Value{}, err
		}
		if inner.IsValid() {
			nv.Field(0).SetBool(true)
			nv.Field(1).Set(inner)
		}
		return nv, nil

	case ShapeOwnedRef:
		nv := reflect.New(t).Elem()
		inner, err := xmlReadPresent(t.Elem(), el, cfg)
		if err != nil {
			return reflect.Value{}, err
		}
		if inner.IsValid() {
			ptr := reflect.New(t.Elem())
			ptr.Elem().Set(inner)
			nv.Set(ptr.Convert(t))
		}
		return nv, nil

	case ShapeProduct:
		nv := reflect.New(t).Elem()
		for i := 0; i < productLen(nv); i++ {
			if i >= len(el.Children) {
				return reflect.Value{}, fmt.Errorf("%w: tuple element %d", ErrMissingChildElement, i)
			}
			elem := productElem(nv, i)
			ev, err := xmlRead(elem.Type(), el.Children[i], cfg)
			if err != nil {
				return reflect.Value{}, err
			}
			elem.Set(ev)
		}
		return nv, nil

	case ShapeRecord:
		nv := reflect.New(t).Elem()
		for i, idx := range planFor(t).fields {
			if i >= len(el.Children) {
				return reflect.Value{}, fmt.Errorf("%w: field %s", ErrMissingChildElement, t.Field(idx).Name)
			}
			fv, err := xmlRead(t.Field(idx).Type, el.Children[i], cfg)
			if err != nil {
				return reflect.Value{}, err
			}
			nv.Field(idx).Set(fv)
		}
		return nv, nil

	default: // ShapeSequence
		text, ok := el.attr(attrSize)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrMissingAttribute, attrSize)
		}
		count, err := strconv.ParseUint(text, 10, 63)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: attribute %s=%q", ErrInvalidDocument, attrSize, text)
		}
		if count > uint64(len(el.Children)) {
			return reflect.Value{}, fmt.Errorf("%w: %d of %d sequence elements", ErrMissingChildElement, len(el.Children), count)
		}
		switch t.Kind() {
		case reflect.String:
			raw := make([]byte, count)
			for i := range raw {
				bv, err := xmlReadPrimitive(byteType, el.Children[i], cfg)
				if err != nil {
					return reflect.Value{}, err
				}
				raw[i] = byte(bv.Uint())
			}
			nv := reflect.New(t).Elem()
			nv.SetString(string(raw))
			return nv, nil
		case reflect.Slice:
			s := reflect.MakeSlice(t, 0, 0)
			for i := 0; i < int(count); i++ {
				ev, err := xmlRead(t.Elem(), el.Children[i], cfg)
				if err != nil {
					return reflect.Value{}, err
				}
				s = reflect.Append(s, ev)
			}
			return s, nil
		default: // map
			m := reflect.MakeMap(t)
			for i := 0; i < int(count); i++ {
				entry := el.Children[i]
				if len(entry.Children) < 2 {
					return reflect.Value{}, fmt.Errorf("%w: map entry %d", ErrMissingChildElement, i)
				}
				key, err := xmlRead(t.Key(), entry.Children[0], cfg)
				if err != nil {
					return reflect.Value{}, err
				}
				val, err := xmlRead(t.Elem(), entry.Children[1], cfg)
				if err != nil {
					return reflect.Value{}, err
				}
				m.SetMapIndex(key, val)
			}
			return m, nil
		}
	}
}

var byteType = reflect.TypeOf(byte(0))

func xmlReadPrimitive(t reflect.Type, el *Element, cfg Config) (reflect.Value, error) {
	nv := reflect.New(t).Elem()
	if cfg.UseBase64 {
		text, ok := el.attr(attrBase64)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrMissingAttribute, attrBase64)
		}
		raw, err := base64.StdEncoding.DecodeString(text)
		if err != nil || len(raw) < wire.Size(t) {
			return reflect.Value{}, fmt.Errorf("%w: attribute %s=%q", ErrInvalidDocument, attrBase64, text)
		}
		wire.SetPrimitive(nv, raw)
		return nv, nil
	}

	text, ok := el.attr(attrValue)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrMissingAttribute, attrValue)
	}
	bits := 8 * wire.Size(t)
	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return reflect.Value{}, malformedValue(text)
		}
		nv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		x, err := strconv.ParseInt(text, 10, bits)
		if err != nil {
			return reflect.Value{}, malformedValue(text)
		}
		nv.SetInt(x)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		x, err := strconv.ParseUint(text, 10, bits)
		if err != nil {
			return reflect.Value{}, malformedValue(text)
		}
		nv.SetUint(x)
	default:
		x, err := strconv.ParseFloat(text, bits)
		if err != nil {
			return reflect.Value{}, malformedValue(text)
		}
		nv.SetFloat(x)
	}
	return nv, nil
}

func malformedValue(text string) error {
	return fmt.Errorf("%w: attribute %s=%q", ErrInvalidDocument, attrValue, text)
}

// xmlReadPresent reads the has_value flag of el and, when set, decodes
// the single child as inner type t. It returns an invalid Value for the
// absent case.
func xmlReadPresent(t reflect.Type, el *Element, cfg Config) (reflect.Value, error) {
	text, ok := el.attr(attrHasValue)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrMissingAttribute, attrHasValue)
	}
	present, err := strconv.ParseBool(text)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: attribute %s=%q", ErrInvalidDocument, attrHasValue, text)
	}
	if !present {
		return reflect.Value{}, nil
	}
	if len(el.Children) == 0 {
		return reflect.Value{}, fmt.Errorf("%w: %s value", ErrMissingChildElement, el.XMLName.Local)
	}
	return xmlRead(t, el.Children[0], cfg)
}
