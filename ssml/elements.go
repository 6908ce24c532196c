// Package ssml parses SSML 1.1 documents into a structured representation
// that keeps both the synthesisable text and the full tag structure with all
// attributes, supports inspection and transformation of that structure, and
// serialises it back into an equivalent SSML document.
package ssml

// TagKind identifies an SSML element independent of its attributes.
// Containment decisions operate on kinds only.
type TagKind int

const (
	TagCustom TagKind = iota
	TagSpeak
	TagLexicon
	TagLookup
	TagMeta
	TagMetadata
	TagParagraph
	TagSentence
	TagToken
	TagWord
	TagSayAs
	TagPhoneme
	TagSub
	TagLang
	TagVoice
	TagEmphasis
	TagBreak
	TagProsody
	TagAudio
	TagMark
	TagDescription
)

// SsmlElement is the identity of a tag: its kind plus, for non-SSML
// vendor elements, the raw element name. Comparable with ==.
type SsmlElement struct {
	Kind TagKind
	// Name carries the raw element name for TagCustom, empty otherwise.
	Name string
}

var kindNames = map[TagKind]string{
	TagSpeak:       "speak",
	TagLexicon:     "lexicon",
	TagLookup:      "lookup",
	TagMeta:        "meta",
	TagMetadata:    "metadata",
	TagParagraph:   "p",
	TagSentence:    "s",
	TagToken:       "token",
	TagWord:        "w",
	TagSayAs:       "say-as",
	TagPhoneme:     "phoneme",
	TagSub:         "sub",
	TagLang:        "lang",
	TagVoice:       "voice",
	TagEmphasis:    "emphasis",
	TagBreak:       "break",
	TagProsody:     "prosody",
	TagAudio:       "audio",
	TagMark:        "mark",
	TagDescription: "desc",
}

var nameKinds = func() map[string]TagKind {
	m := make(map[string]TagKind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

// ElementFromName maps an element name to its identity. Unknown names,
// including namespaced vendor tags, map to a custom element carrying the
// raw name.
func ElementFromName(name string) SsmlElement {
	if k, ok := nameKinds[name]; ok {
		return SsmlElement{Kind: k}
	}
	return SsmlElement{Kind: TagCustom, Name: name}
}

// String returns the canonical tag name used on emission.
func (e SsmlElement) String() string {
	if e.Kind == TagCustom {
		return e.Name
	}
	return kindNames[e.Kind]
}

// CanContainTags reports whether the element may contain nested tags at all.
// Custom elements are assumed to permit nesting since they are outside the
// SSML specification.
func (e SsmlElement) CanContainTags() bool {
	switch e.Kind {
	case TagSpeak, TagParagraph, TagSentence, TagVoice, TagEmphasis,
		TagToken, TagWord, TagLang, TagProsody, TagAudio, TagCustom:
		return true
	default:
		return false
	}
}

// CanContain reports whether child may be nested directly inside e.
func (e SsmlElement) CanContain(child SsmlElement) bool {
	if child.Kind == TagCustom {
		return e.CanContainTags()
	}
	if !e.CanContainTags() {
		return false
	}
	if child.Kind == TagSpeak {
		return false
	}
	switch e.Kind {
	case TagSpeak:
		return true
	case TagParagraph:
		return child.Kind == TagSentence || allowedInSentence(child.Kind)
	case TagSentence, TagEmphasis:
		return allowedInSentence(child.Kind)
	case TagVoice, TagLang, TagProsody, TagAudio:
		return true
	case TagToken, TagWord:
		return allowedInToken(child.Kind)
	case TagCustom:
		return true
	}
	return false
}

func allowedInSentence(k TagKind) bool {
	switch k {
	case TagCustom, TagAudio, TagBreak, TagEmphasis, TagLang, TagLookup,
		TagMark, TagPhoneme, TagProsody, TagSayAs, TagSub, TagToken,
		TagVoice, TagWord:
		return true
	}
	return false
}

func allowedInToken(k TagKind) bool {
	switch k {
	case TagAudio, TagBreak, TagEmphasis, TagMark, TagPhoneme, TagProsody,
		TagSayAs, TagSub, TagCustom:
		return true
	}
	return false
}

// ContainsSynthesisableText reports whether text directly inside the element
// is meant to be spoken. Text under desc, metadata, mark, break, lexicon and
// meta stays out of the document text.
func (e SsmlElement) ContainsSynthesisableText() bool {
	switch e.Kind {
	case TagDescription, TagMetadata, TagMark, TagBreak, TagLexicon, TagMeta:
		return false
	default:
		return true
	}
}

// ParsedElement pairs a tag kind with its typed attribute record. The
// projection to SsmlElement is total and discards attribute data.
type ParsedElement interface {
	Element() SsmlElement
	// attrString renders the element-specific attribute serialisation,
	// with a leading space when non-empty.
	attrString() string
}
