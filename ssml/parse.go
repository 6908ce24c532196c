package ssml

import (
	"cmp"
	"io"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
	"go.uber.org/zap"
)

// Parser drives the XML token stream, enforces SSML nesting rules,
// normalises whitespace and builds the document event log and span index.
type Parser struct {
	expandSub bool
	log       *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithExpandSub makes the parser replace sub elements with their alias text
// during parse. Their open and close events do not appear in the event log;
// a single text event carrying the alias appears in their place.
func WithExpandSub(expand bool) Option {
	return func(p *Parser) { p.expandSub = expand }
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log.Named("ssml-parser")
		}
	}
}

// NewParser creates a parser. Without options it keeps sub elements as tags
// and logs nothing.
func NewParser(opts ...Option) *Parser {
	p := &Parser{log: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse parses an SSML string with a default parser configuration.
func Parse(input string) (*Document, error) {
	return NewParser().Parse(input)
}

// textBuffer accumulates the normalised document text. Byte offsets index
// the buffer for slicing; the rune count is tracked alongside because span
// offsets are measured in Unicode scalar values.
type textBuffer struct {
	b      strings.Builder
	runes  int
	endsWS bool
}

func (t *textBuffer) writeString(s string) {
	if s == "" {
		return
	}
	t.b.WriteString(s)
	t.runes += utf8.RuneCountInString(s)
	r, _ := utf8.DecodeLastRuneInString(s)
	t.endsWS = unicode.IsSpace(r)
}

// push appends one raw text run, collapsing formatting-induced whitespace.
// Repeated whitespace carries no meaning, but spaces and line breaks are
// word delimiters so at least one is kept on each edge that had one.
// Returns the byte range of what was appended.
func (t *textBuffer) push(raw string) (int, int) {
	start := t.b.Len()
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if t.b.Len() > 0 && !t.endsWS {
			t.writeString(" ")
		}
		return start, t.b.Len()
	}
	if !t.endsWS && beginsWithSpace(raw) {
		t.writeString(" ")
	}
	first := true
	for line := range strings.SplitSeq(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !first {
			t.writeString(" ")
		}
		t.writeString(line)
		first = false
	}
	if endsWithSpace(raw) {
		t.writeString(" ")
	}
	return start, t.b.Len()
}

func beginsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

// openTag is one entry of the open-tag stack: the element identity, the
// insertion position recorded at open time (preserves depth-first order in
// the tag list) and the partially built span.
type openTag struct {
	el       SsmlElement
	pos      int
	span     Span
	expanded bool
	desc     *textBuffer
}

// Parse parses the given SSML string into a Document, failing fast at the
// first violation. Content before the root speak element is ignored and
// consumption stops once the root speak closes.
func (p *Parser) Parse(input string) (*Document, error) {
	l := xml.NewLexer(parse.NewInputString(input))

	var (
		buf      textBuffer
		stack    []openTag
		tags     []Span
		eventLog []logEvent
		started  bool
	)

	for {
		tt, data := l.Next()
		switch tt {
		case xml.ErrorToken:
			if l.Err() != io.EOF {
				return nil, &Error{Kind: ErrXMLMalformed, Err: l.Err()}
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				return nil, &Error{Kind: ErrUnclosedTag, Name: top.el.String()}
			}
			return finishDocument(&buf, tags, eventLog), nil

		case xml.StartTagToken:
			name := string(l.Text())
			attrs, void, err := lexAttrs(l)
			if err != nil {
				return nil, err
			}
			el := ElementFromName(name)

			if !started {
				if el.Kind != TagSpeak || void {
					p.log.Debug("Ignoring content before speak root", zap.String("tag", name))
					continue
				}
				started = true
				buf = textBuffer{}
				parsed, err := parseStartElement(name, attrs, p.log)
				if err != nil {
					return nil, err
				}
				eventLog = append(eventLog, logEvent{kind: evOpen, element: parsed})
				stack = append(stack, openTag{
					el:   el,
					pos:  len(tags),
					span: Span{Start: buf.runes, End: buf.runes, Element: parsed},
				})
				continue
			}

			if el.Kind == TagSpeak {
				return nil, &Error{Kind: ErrNestedSpeak}
			}

			// An abutting sentence or paragraph tag acts as a word
			// boundary. The space gets its own text event so that text
			// events still concatenate to the full document text.
			if !void && (el.Kind == TagSentence || el.Kind == TagParagraph) &&
				buf.b.Len() > 0 && !buf.endsWS {
				start := buf.b.Len()
				buf.writeString(" ")
				eventLog = append(eventLog, logEvent{kind: evText, start: start, end: buf.b.Len()})
			}

			parsed, err := parseStartElement(name, attrs, p.log)
			if err != nil {
				return nil, err
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1].el
				if !parent.CanContain(el) {
					return nil, &Error{Kind: ErrInvalidNesting, Element: parent, Child: el}
				}
			}

			if void {
				eventLog = append(eventLog, logEvent{kind: evEmpty, element: parsed})
				tags = append(tags, Span{Start: buf.runes, End: buf.runes, Element: parsed})
				continue
			}

			if p.expandSub && el.Kind == TagSub {
				sub := parsed.(*SubAttributes)
				start := buf.b.Len()
				buf.writeString(" " + sub.Alias + " ")
				eventLog = append(eventLog, logEvent{kind: evText, start: start, end: buf.b.Len()})
				stack = append(stack, openTag{el: el, expanded: true})
				continue
			}

			eventLog = append(eventLog, logEvent{kind: evOpen, element: parsed})
			tag := openTag{
				el:   el,
				pos:  len(tags),
				span: Span{Start: buf.runes, End: buf.runes, Element: parsed},
			}
			if el.Kind == TagDescription {
				tag.desc = &textBuffer{}
			}
			stack = append(stack, tag)

		case xml.EndTagToken:
			name := string(l.Text())
			if len(stack) == 0 {
				return nil, &Error{Kind: ErrMismatchedClose, Name: name}
			}
			top := stack[len(stack)-1]
			if top.el != ElementFromName(name) {
				return nil, &Error{Kind: ErrMismatchedClose, Name: name}
			}
			stack = stack[:len(stack)-1]
			if top.expanded {
				continue
			}
			if top.desc != nil {
				d := top.span.Element.(*DescriptionAttributes)
				d.Body = strings.TrimSpace(top.desc.b.String())
			}
			top.span.End = buf.runes
			eventLog = append(eventLog, logEvent{kind: evClose, element: top.span.Element})
			tags = slices.Insert(tags, top.pos, top.span)
			if top.el.Kind == TagSpeak && len(stack) == 0 {
				return finishDocument(&buf, tags, eventLog), nil
			}

		case xml.TextToken:
			if len(stack) == 0 {
				continue
			}
			top := &stack[len(stack)-1]
			raw := unescapeXML(string(data))
			if top.desc != nil {
				top.desc.push(raw)
				continue
			}
			if p.expandSub && top.el.Kind == TagSub {
				continue
			}
			if !top.el.ContainsSynthesisableText() {
				continue
			}
			start, end := buf.push(raw)
			eventLog = append(eventLog, logEvent{kind: evText, start: start, end: end})

		case xml.StartTagPIToken:
			for {
				tt, _ := l.Next()
				if tt == xml.StartTagClosePIToken || tt == xml.ErrorToken {
					break
				}
			}

		case xml.CommentToken, xml.CDATAToken, xml.DOCTYPEToken:
			// Ignored per the consumed event stream contract.
		}
	}
}

// lexAttrs consumes the attribute tokens of a start tag up to its closing
// bracket and reports whether the tag was self-closing.
func lexAttrs(l *xml.Lexer) ([]xmlAttr, bool, error) {
	var attrs []xmlAttr
	for {
		switch tt, _ := l.Next(); tt {
		case xml.AttributeToken:
			val := string(l.AttrVal())
			if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
				val = val[1 : len(val)-1]
			}
			attrs = append(attrs, xmlAttr{Name: string(l.Text()), Value: unescapeXML(val)})
		case xml.StartTagCloseToken:
			return attrs, false, nil
		case xml.StartTagCloseVoidToken:
			return attrs, true, nil
		default:
			return nil, false, &Error{Kind: ErrXMLMalformed, Err: l.Err()}
		}
	}
}

func finishDocument(buf *textBuffer, tags []Span, eventLog []logEvent) *Document {
	slices.SortStableFunc(tags, func(a, b Span) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		// Outer spans precede inner spans starting at the same offset.
		return cmp.Compare(b.End, a.End)
	})
	return &Document{text: buf.b.String(), tags: tags, log: eventLog}
}
