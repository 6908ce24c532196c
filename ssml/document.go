package ssml

import (
	"fmt"
	"iter"
	"unicode/utf8"

	"go.uber.org/multierr"
)

// Span marks the extent of one element over the normalised document text.
// Offsets count Unicode scalar values, not bytes, so they line up with what
// a speech engine or a human reader perceives as character positions.
type Span struct {
	Start   int
	End     int
	Element ParsedElement
}

// MaybeContains reports whether other could be a child of this span: the
// element kinds must satisfy the containment rules and other's bounds must
// lie within this span's. "Maybe" because two mutually nestable spans with
// identical boundaries cannot be told apart by bounds alone.
func (s *Span) MaybeContains(other *Span) bool {
	return s.Element.Element().CanContain(other.Element.Element()) &&
		s.Start <= other.Start && s.End >= other.End
}

func (s *Span) String() string {
	return fmt.Sprintf("[%d,%d) %s", s.Start, s.End, s.Element.Element())
}

type eventLogKind int

const (
	evText eventLogKind = iota
	evOpen
	evClose
	evEmpty
)

// logEvent is one record of the consumed event stream. Text events store
// byte offsets into the document text; element events store the parsed
// element. The log preserves exact document order, including the open and
// close of elements whose text never enters the spoken output.
type logEvent struct {
	kind    eventLogKind
	start   int
	end     int
	element ParsedElement
}

// Document is the result of a successful parse: the normalised text, the
// element spans in depth-first document order and the consumed event log.
type Document struct {
	text string
	tags []Span
	log  []logEvent
}

// Text returns the whitespace-normalised synthesisable text.
func (d *Document) Text() string {
	return d.text
}

// TextInSpan returns the slice of the document text covered by the span.
// It panics if the span does not fit the document.
func (d *Document) TextInSpan(s *Span) string {
	start := d.byteOffset(s.Start)
	end := d.byteOffset(s.End)
	return d.text[start:end]
}

func (d *Document) byteOffset(runes int) int {
	if runes < 0 {
		panic(fmt.Sprintf("ssml: span offset %d out of range", runes))
	}
	n := 0
	for i := range d.text {
		if n == runes {
			return i
		}
		n++
	}
	if n == runes {
		return len(d.text)
	}
	panic(fmt.Sprintf("ssml: span offset %d past end of text (%d)", runes, n))
}

// Tags iterates over the element spans in document order: outer elements
// before inner ones, earlier siblings before later ones.
func (d *Document) Tags() iter.Seq[*Span] {
	return func(yield func(*Span) bool) {
		for i := range d.tags {
			if !yield(&d.tags[i]) {
				return
			}
		}
	}
}

// Events replays the consumed event stream in document order.
func (d *Document) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, e := range d.log {
			if !yield(d.event(e)) {
				return
			}
		}
	}
}

func (d *Document) event(e logEvent) Event {
	switch e.kind {
	case evText:
		return Event{Kind: EventText, Text: d.text[e.start:e.end]}
	case evOpen:
		return Event{Kind: EventOpen, Element: e.element}
	case evClose:
		return Event{Kind: EventClose, Element: e.element}
	default:
		return Event{Kind: EventEmpty, Element: e.element}
	}
}

// Validate cross-checks the internal invariants of the document: span
// boundaries and ordering, text event coverage and event log balance. A nil
// result means the document is internally consistent. All violations found
// are reported together.
func (d *Document) Validate() error {
	var errs error
	runes := utf8.RuneCountInString(d.text)

	for i := range d.tags {
		s := &d.tags[i]
		if s.Start < 0 || s.End < s.Start || s.End > runes {
			errs = multierr.Append(errs, fmt.Errorf("span %d (%s): bounds outside text of %d runes", i, s, runes))
		}
		if s.Element == nil {
			errs = multierr.Append(errs, fmt.Errorf("span %d: no element", i))
			continue
		}
		if i == 0 {
			continue
		}
		prev := &d.tags[i-1]
		if s.Start < prev.Start || (s.Start == prev.Start && s.End > prev.End) {
			errs = multierr.Append(errs, fmt.Errorf("span %d (%s): out of document order after %s", i, s, prev))
		}
	}

	next := 0
	depth := 0
	closed := false
	for i, e := range d.log {
		switch e.kind {
		case evText:
			if e.start != next || e.end < e.start || e.end > len(d.text) {
				errs = multierr.Append(errs, fmt.Errorf("event %d: text range [%d,%d) breaks coverage at byte %d", i, e.start, e.end, next))
			}
			if e.end > next {
				next = e.end
			}
		case evOpen:
			depth++
		case evClose:
			depth--
			if depth < 0 {
				errs = multierr.Append(errs, fmt.Errorf("event %d: close without matching open", i))
			}
			if depth == 0 {
				closed = true
			}
		}
	}
	if next != len(d.text) {
		errs = multierr.Append(errs, fmt.Errorf("text events cover %d of %d bytes", next, len(d.text)))
	}
	if depth != 0 {
		errs = multierr.Append(errs, fmt.Errorf("event log left %d elements open", depth))
	}
	if len(d.log) > 0 && !closed {
		errs = multierr.Append(errs, fmt.Errorf("event log never closed the root element"))
	}
	return errs
}
