package shapec

import "errors"

var (
	// ErrUnsupported means a type falls outside the six serializable shapes.
	ErrUnsupported = errors.New("shapec: unsupported type")
	// ErrTruncatedInput means a binary read needed more bytes than remained.
	ErrTruncatedInput = errors.New("shapec: truncated input")
	// ErrMissingAttribute means an expected XML attribute was absent.
	ErrMissingAttribute = errors.New("shapec: missing attribute")
	// ErrMissingChildElement means an expected XML child element was absent.
	ErrMissingChildElement = errors.New("shapec: missing child element")
	// ErrInvalidDocument means an XML document could not be parsed, had no
	// root element, or carried attribute text that does not parse.
	ErrInvalidDocument = errors.New("shapec: invalid document")
)
