package ssml

import (
	"context"
	"strings"
)

// EventKind discriminates the public event variants.
type EventKind int

const (
	EventText EventKind = iota
	EventOpen
	EventClose
	EventEmpty
)

// Event is one entry of the consumed event stream in its public form. Text
// events carry their own copy of the text so a transformer may rewrite it.
type Event struct {
	Kind    EventKind
	Text    string
	Element ParsedElement
}

// String renders the event as an SSML fragment: the escaped text for text
// events, the tag for everything else.
func (e Event) String() string {
	switch e.Kind {
	case EventText:
		return escapeXML(e.Text)
	case EventOpen:
		s := "<" + e.Element.Element().String() + e.Element.attrString() + ">"
		if desc, ok := e.Element.(*DescriptionAttributes); ok {
			s += escapeXML(desc.Body)
		}
		return s
	case EventClose:
		return "</" + e.Element.Element().String() + ">"
	default:
		return "<" + e.Element.Element().String() + e.Element.attrString() + "/>"
	}
}

// TransformedSsml is the output of a transform pass: the rewritten SSML
// string and the plain text of the text events that survived.
type TransformedSsml struct {
	SSML              string
	SynthesisableText string
}

// Transform replays the event log through f in document order. Returning
// false drops the event. Dropped open tags do not drop their close tags;
// the caller decides what constitutes a valid result, including whether the
// output is still well-formed SSML.
//
// Text events are not filtered by the synthesisability of their enclosing
// tag: the text handed to f is exactly the document text in order.
func (d *Document) Transform(f func(Event) (Event, bool)) TransformedSsml {
	var ssml, text strings.Builder
	for _, le := range d.log {
		ev, keep := f(d.event(le))
		if !keep {
			continue
		}
		ssml.WriteString(ev.String())
		if ev.Kind == EventText {
			text.WriteString(ev.Text)
		}
	}
	return TransformedSsml{
		SSML:              ssml.String(),
		SynthesisableText: text.String(),
	}
}

// Transformer rewrites events one at a time. Apply may block; events of one
// document are always handed to it strictly in log order.
type Transformer interface {
	Apply(ctx context.Context, ev Event) (Event, bool, error)
}

// TransformContext is the blocking variant of Transform for transformers
// that consult external services per event. The first Apply error or context
// cancellation aborts the pass.
func (d *Document) TransformContext(ctx context.Context, t Transformer) (TransformedSsml, error) {
	var ssml, text strings.Builder
	for _, le := range d.log {
		if err := ctx.Err(); err != nil {
			return TransformedSsml{}, err
		}
		ev, keep, err := t.Apply(ctx, d.event(le))
		if err != nil {
			return TransformedSsml{}, err
		}
		if !keep {
			continue
		}
		ssml.WriteString(ev.String())
		if ev.Kind == EventText {
			text.WriteString(ev.Text)
		}
	}
	return TransformedSsml{
		SSML:              ssml.String(),
		SynthesisableText: text.String(),
	}, nil
}
