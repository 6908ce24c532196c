package ssml

import (
	"fmt"
	"strings"
)

// ErrorKind classifies parse failures. The parser fails fast at the first
// violation; the writer never fails on documents produced by the parser.
type ErrorKind int

const (
	// ErrXMLMalformed means the underlying XML tokeniser reported a
	// structural error.
	ErrXMLMalformed ErrorKind = iota
	// ErrMismatchedClose is a close tag without a matching open, or with
	// the wrong name at the top of the stack.
	ErrMismatchedClose
	// ErrUnclosedTag means the stream ended with tags still open.
	ErrUnclosedTag
	// ErrNestedSpeak is a speak element inside another speak.
	ErrNestedSpeak
	// ErrInvalidNesting is a containment rule violation.
	ErrInvalidNesting
	// ErrMissingRequiredAttribute is a required attribute left out.
	ErrMissingRequiredAttribute
	// ErrInvalidAttributeValue is an attribute value failing its grammar.
	ErrInvalidAttributeValue
	// ErrUnsupportedVersion is a speak version other than 1.0 or 1.1.
	ErrUnsupportedVersion
	// ErrAmbiguousMetaAttributes means meta carried both or neither of
	// name and http-equiv.
	ErrAmbiguousMetaAttributes
)

// Error is the parse error surfaced at the Parse call boundary. Fields other
// than Kind are filled in where they make sense for the kind.
type Error struct {
	Kind     ErrorKind
	Element  SsmlElement
	Child    SsmlElement
	Attr     string
	Value    string
	Expected string
	Name     string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case ErrXMLMalformed:
		b.WriteString("malformed xml")
	case ErrMismatchedClose:
		fmt.Fprintf(&b, "close tag %q without matching open tag", e.Name)
	case ErrUnclosedTag:
		fmt.Fprintf(&b, "input ended with %q still open", e.Name)
	case ErrNestedSpeak:
		b.WriteString("speak element cannot be placed inside a speak")
	case ErrInvalidNesting:
		fmt.Fprintf(&b, "%s cannot be placed inside %s", e.Child, e.Element)
	case ErrMissingRequiredAttribute:
		fmt.Fprintf(&b, "%s attribute is required on a %s element", e.Attr, e.Element)
	case ErrInvalidAttributeValue:
		if e.Attr != "" {
			fmt.Fprintf(&b, "invalid %s value %q on %s element, expected %s",
				e.Attr, e.Value, e.Element, e.Expected)
		} else {
			fmt.Fprintf(&b, "invalid value %q, expected %s", e.Value, e.Expected)
		}
	case ErrUnsupportedVersion:
		fmt.Fprintf(&b, "unsupported ssml version %q", e.Value)
	case ErrAmbiguousMetaAttributes:
		b.WriteString("exactly one of name and http-equiv must be set on a meta element")
	default:
		b.WriteString("ssml parse error")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func missingAttr(el SsmlElement, attr string) *Error {
	return &Error{Kind: ErrMissingRequiredAttribute, Element: el, Attr: attr}
}

// attrError contextualises a value grammar error with the element and
// attribute it occurred on.
func attrError(el SsmlElement, attr string, err error) error {
	if ve, ok := err.(*Error); ok {
		ve.Element = el
		ve.Attr = attr
		return ve
	}
	return &Error{Kind: ErrInvalidAttributeValue, Element: el, Attr: attr, Err: err}
}
