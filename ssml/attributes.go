package ssml

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Typed attribute records, one per SSML element, and their parse functions.
// Parsing is exhaustive: every attribute value runs through its grammar and
// the first violation fails the parse.

// xmlAttr is one attribute from a start tag, entities already unescaped.
type xmlAttr struct {
	Name  string
	Value string
}

func attrValue(attrs []xmlAttr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SpeakAttributes is the attribute record of the root speak element.
// Attributes other than the four consumed ones, including namespace
// declarations, are preserved verbatim for re-serialisation.
type SpeakAttributes struct {
	Version       string
	Lang          string
	Base          string
	OnLangFailure OnLanguageFailure
	Extra         map[string]string
}

func (*SpeakAttributes) Element() SsmlElement { return SsmlElement{Kind: TagSpeak} }

// LexiconAttributes references a pronunciation lexicon document.
type LexiconAttributes struct {
	URI          string
	ID           string
	Type         string
	FetchTimeout *TimeDesignation
}

func (*LexiconAttributes) Element() SsmlElement { return SsmlElement{Kind: TagLexicon} }

// LookupAttributes references a lexicon by its xml:id.
type LookupAttributes struct {
	Ref string
}

func (*LookupAttributes) Element() SsmlElement { return SsmlElement{Kind: TagLookup} }

// MetaAttributes declares document metadata. Exactly one of Name and
// HTTPEquiv is set.
type MetaAttributes struct {
	Name      *string
	HTTPEquiv *string
	Content   string
}

func (*MetaAttributes) Element() SsmlElement { return SsmlElement{Kind: TagMeta} }

// MetadataAttributes has no attributes; the element body is ignored by
// synthesis.
type MetadataAttributes struct{}

func (*MetadataAttributes) Element() SsmlElement { return SsmlElement{Kind: TagMetadata} }

// ParagraphAttributes has no attributes.
type ParagraphAttributes struct{}

func (*ParagraphAttributes) Element() SsmlElement { return SsmlElement{Kind: TagParagraph} }

// SentenceAttributes has no attributes.
type SentenceAttributes struct{}

func (*SentenceAttributes) Element() SsmlElement { return SsmlElement{Kind: TagSentence} }

// TokenAttributes covers both token and w; w is an alias for token.
type TokenAttributes struct {
	Role string
	// word distinguishes the w spelling from token.
	word bool
}

func (t *TokenAttributes) Element() SsmlElement {
	if t.word {
		return SsmlElement{Kind: TagWord}
	}
	return SsmlElement{Kind: TagToken}
}

// SayAsAttributes tells the processor how to interpret the contained text.
type SayAsAttributes struct {
	InterpretAs string
	Format      string
	Detail      string
}

func (*SayAsAttributes) Element() SsmlElement { return SsmlElement{Kind: TagSayAs} }

// PhonemeAttributes gives a phonemic pronunciation for the contained text.
type PhonemeAttributes struct {
	Ph       string
	Alphabet PhonemeAlphabet
}

func (*PhonemeAttributes) Element() SsmlElement { return SsmlElement{Kind: TagPhoneme} }

// SubAttributes substitutes the alias for the contained text.
type SubAttributes struct {
	Alias string
}

func (*SubAttributes) Element() SsmlElement { return SsmlElement{Kind: TagSub} }

// LangAttributes switches the natural language of the content.
type LangAttributes struct {
	Lang          string
	OnLangFailure OnLanguageFailure
}

func (*LangAttributes) Element() SsmlElement { return SsmlElement{Kind: TagLang} }

// VoiceAttributes requests a change in speaking voice. Every attribute is
// individually optional; an empty attribute value means any voice satisfies
// that feature and is treated as absent.
type VoiceAttributes struct {
	Gender    Gender
	Age       *uint8
	Variant   uint64 // positive, zero means absent
	Name      []string
	Languages []LanguageAccentPair
}

func (*VoiceAttributes) Element() SsmlElement { return SsmlElement{Kind: TagVoice} }

// EmphasisAttributes requests spoken emphasis on the contained text.
type EmphasisAttributes struct {
	Level EmphasisLevel
}

func (*EmphasisAttributes) Element() SsmlElement { return SsmlElement{Kind: TagEmphasis} }

// BreakAttributes controls a prosodic boundary between tokens.
type BreakAttributes struct {
	Strength Strength
	Time     *TimeDesignation
}

func (*BreakAttributes) Element() SsmlElement { return SsmlElement{Kind: TagBreak} }

// ProsodyAttributes controls pitch, speaking rate and volume of the output.
type ProsodyAttributes struct {
	Pitch    *PitchRange
	Contour  *PitchContour
	Range    *PitchRange
	Rate     *RateRange
	Duration *TimeDesignation
	Volume   *VolumeRange
}

func (*ProsodyAttributes) Element() SsmlElement { return SsmlElement{Kind: TagProsody} }

// AudioAttributes inserts prerecorded audio. Attributes with SSML defaults
// (FetchHint, ClipBegin, RepeatCount, SoundLevel, Speed) always carry a
// value; Speed keeps the written percentage divided by 100.
type AudioAttributes struct {
	Src          string
	FetchTimeout *TimeDesignation
	FetchHint    FetchHint
	MaxAge       *uint64
	MaxStale     *uint64
	ClipBegin    TimeDesignation
	ClipEnd      *TimeDesignation
	RepeatCount  uint64
	RepeatDur    *TimeDesignation
	SoundLevel   float64
	Speed        float64
}

func (*AudioAttributes) Element() SsmlElement { return SsmlElement{Kind: TagAudio} }

// MarkAttributes is a named bookmark in the document.
type MarkAttributes struct {
	Name string
}

func (*MarkAttributes) Element() SsmlElement { return SsmlElement{Kind: TagMark} }

// DescriptionAttributes carries the desc body text. The body is excluded
// from the synthesisable document text but preserved on re-serialisation.
type DescriptionAttributes struct {
	Body string
}

func (*DescriptionAttributes) Element() SsmlElement { return SsmlElement{Kind: TagDescription} }

// CustomAttributes is a non-SSML element with its raw attribute mapping.
// Attributes are emitted in sorted name order for stable re-serialisation.
type CustomAttributes struct {
	Name  string
	Attrs map[string]string
}

func (c *CustomAttributes) Element() SsmlElement {
	return SsmlElement{Kind: TagCustom, Name: c.Name}
}

// parseStartElement dispatches on the element name and builds the typed
// attribute record for it.
func parseStartElement(name string, attrs []xmlAttr, log *zap.Logger) (ParsedElement, error) {
	el := ElementFromName(name)
	switch el.Kind {
	case TagSpeak:
		return parseSpeak(attrs, log)
	case TagLexicon:
		return parseLexicon(attrs)
	case TagLookup:
		return parseLookup(attrs)
	case TagMeta:
		return parseMeta(attrs)
	case TagMetadata:
		return &MetadataAttributes{}, nil
	case TagParagraph:
		return &ParagraphAttributes{}, nil
	case TagSentence:
		return &SentenceAttributes{}, nil
	case TagToken:
		return parseToken(attrs, false)
	case TagWord:
		return parseToken(attrs, true)
	case TagSayAs:
		return parseSayAs(attrs)
	case TagPhoneme:
		return parsePhoneme(attrs)
	case TagSub:
		return parseSub(attrs)
	case TagLang:
		return parseLang(attrs)
	case TagVoice:
		return parseVoice(attrs)
	case TagEmphasis:
		return parseEmphasis(attrs)
	case TagBreak:
		return parseBreak(attrs)
	case TagProsody:
		return parseProsody(attrs)
	case TagAudio:
		return parseAudio(attrs)
	case TagMark:
		return parseMark(attrs)
	case TagDescription:
		return &DescriptionAttributes{}, nil
	default:
		m := make(map[string]string, len(attrs))
		for _, a := range attrs {
			m[a.Name] = a.Value
		}
		log.Debug("Parsed custom element", zap.String("tag", name), zap.Int("attrs", len(m)))
		return &CustomAttributes{Name: name, Attrs: m}, nil
	}
}

func parseSpeak(attrs []xmlAttr, log *zap.Logger) (ParsedElement, error) {
	el := SsmlElement{Kind: TagSpeak}
	sa := &SpeakAttributes{Version: "1.1"}

	if v, ok := attrValue(attrs, "version"); ok {
		switch v {
		case "1.0", "1.1":
			sa.Version = v
		default:
			return nil, &Error{Kind: ErrUnsupportedVersion, Element: el, Attr: "version", Value: v}
		}
	} else {
		// SSML 1.1 nominally requires version but commercial TTS APIs
		// leave it out and assume 1.1.
		log.Debug("speak element without version attribute, assuming 1.1")
	}
	sa.Lang, _ = attrValue(attrs, "xml:lang")
	sa.Base, _ = attrValue(attrs, "xml:base")
	if v, ok := attrValue(attrs, "onlangfailure"); ok {
		f, err := ParseOnLanguageFailure(v)
		if err != nil {
			return nil, attrError(el, "onlangfailure", err)
		}
		sa.OnLangFailure = f
	}
	for _, a := range attrs {
		switch a.Name {
		case "version", "xml:lang", "xml:base", "onlangfailure":
		default:
			if sa.Extra == nil {
				sa.Extra = make(map[string]string)
			}
			sa.Extra[a.Name] = a.Value
		}
	}
	return sa, nil
}

func parseLexicon(attrs []xmlAttr) (ParsedElement, error) {
	el := SsmlElement{Kind: TagLexicon}
	la := &LexiconAttributes{}
	var ok bool
	if la.URI, ok = attrValue(attrs, "uri"); !ok {
		return nil, missingAttr(el, "uri")
	}
	if la.ID, ok = attrValue(attrs, "xml:id"); !ok {
		return nil, missingAttr(el, "xml:id")
	}
	la.Type, _ = attrValue(attrs, "type")
	if v, ok := attrValue(attrs, "fetchtimeout"); ok {
		t, err := ParseTimeDesignation(v)
		if err != nil {
			return nil, attrError(el, "fetchtimeout", err)
		}
		la.FetchTimeout = &t
	}
	return la, nil
}

func parseLookup(attrs []xmlAttr) (ParsedElement, error) {
	ref, ok := attrValue(attrs, "ref")
	if !ok {
		return nil, missingAttr(SsmlElement{Kind: TagLookup}, "ref")
	}
	return &LookupAttributes{Ref: ref}, nil
}

func parseMeta(attrs []xmlAttr) (ParsedElement, error) {
	el := SsmlElement{Kind: TagMeta}
	content, ok := attrValue(attrs, "content")
	if !ok {
		return nil, missingAttr(el, "content")
	}
	name, hasName := attrValue(attrs, "name")
	httpEquiv, hasEquiv := attrValue(attrs, "http-equiv")
	if hasName == hasEquiv {
		return nil, &Error{Kind: ErrAmbiguousMetaAttributes, Element: el}
	}
	ma := &MetaAttributes{Content: content}
	if hasName {
		ma.Name = &name
	} else {
		ma.HTTPEquiv = &httpEquiv
	}
	return ma, nil
}

func parseToken(attrs []xmlAttr, word bool) (ParsedElement, error) {
	role, _ := attrValue(attrs, "role")
	return &TokenAttributes{Role: role, word: word}, nil
}

func parseSayAs(attrs []xmlAttr) (ParsedElement, error) {
	sa := &SayAsAttributes{}
	var ok bool
	if sa.InterpretAs, ok = attrValue(attrs, "interpret-as"); !ok {
		return nil, missingAttr(SsmlElement{Kind: TagSayAs}, "interpret-as")
	}
	sa.Format, _ = attrValue(attrs, "format")
	sa.Detail, _ = attrValue(attrs, "detail")
	return sa, nil
}

func parsePhoneme(attrs []xmlAttr) (ParsedElement, error) {
	ph, ok := attrValue(attrs, "ph")
	if !ok {
		return nil, missingAttr(SsmlElement{Kind: TagPhoneme}, "ph")
	}
	alphabet, _ := attrValue(attrs, "alphabet")
	return &PhonemeAttributes{Ph: ph, Alphabet: PhonemeAlphabet(alphabet)}, nil
}

func parseSub(attrs []xmlAttr) (ParsedElement, error) {
	alias, ok := attrValue(attrs, "alias")
	if !ok {
		return nil, missingAttr(SsmlElement{Kind: TagSub}, "alias")
	}
	return &SubAttributes{Alias: alias}, nil
}

func parseLang(attrs []xmlAttr) (ParsedElement, error) {
	el := SsmlElement{Kind: TagLang}
	lang, ok := attrValue(attrs, "xml:lang")
	if !ok {
		return nil, missingAttr(el, "xml:lang")
	}
	la := &LangAttributes{Lang: lang}
	if v, ok := attrValue(attrs, "onlangfailure"); ok {
		f, err := ParseOnLanguageFailure(v)
		if err != nil {
			return nil, attrError(el, "onlangfailure", err)
		}
		la.OnLangFailure = f
	}
	return la, nil
}

func parseVoice(attrs []xmlAttr) (ParsedElement, error) {
	el := SsmlElement{Kind: TagVoice}
	va := &VoiceAttributes{}
	if v, ok := attrValue(attrs, "gender"); ok && v != "" {
		g, err := ParseGender(v)
		if err != nil {
			return nil, attrError(el, "gender", err)
		}
		va.Gender = g
	}
	if v, ok := attrValue(attrs, "age"); ok && v != "" {
		age, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return nil, attrError(el, "age", valueError(v, "age in years 0-255"))
		}
		a := uint8(age)
		va.Age = &a
	}
	if v, ok := attrValue(attrs, "variant"); ok && v != "" {
		variant, err := strconv.ParseUint(v, 10, 64)
		if err != nil || variant == 0 {
			return nil, attrError(el, "variant", valueError(v, "positive integer"))
		}
		va.Variant = variant
	}
	if v, ok := attrValue(attrs, "name"); ok {
		va.Name = strings.Fields(v)
	}
	if v, ok := attrValue(attrs, "languages"); ok {
		for _, token := range strings.Fields(v) {
			pair, err := ParseLanguageAccentPair(token)
			if err != nil {
				return nil, attrError(el, "languages", err)
			}
			va.Languages = append(va.Languages, pair)
		}
	}
	return va, nil
}

func parseEmphasis(attrs []xmlAttr) (ParsedElement, error) {
	ea := &EmphasisAttributes{}
	if v, ok := attrValue(attrs, "level"); ok {
		level, err := ParseEmphasisLevel(v)
		if err != nil {
			return nil, attrError(SsmlElement{Kind: TagEmphasis}, "level", err)
		}
		ea.Level = level
	}
	return ea, nil
}

func parseBreak(attrs []xmlAttr) (ParsedElement, error) {
	el := SsmlElement{Kind: TagBreak}
	ba := &BreakAttributes{}
	if v, ok := attrValue(attrs, "strength"); ok {
		s, err := ParseStrength(v)
		if err != nil {
			return nil, attrError(el, "strength", err)
		}
		ba.Strength = s
	}
	if v, ok := attrValue(attrs, "time"); ok {
		t, err := ParseTimeDesignation(v)
		if err != nil {
			return nil, attrError(el, "time", err)
		}
		ba.Time = &t
	}
	return ba, nil
}

func parseProsody(attrs []xmlAttr) (ParsedElement, error) {
	el := SsmlElement{Kind: TagProsody}
	pa := &ProsodyAttributes{}
	if v, ok := attrValue(attrs, "pitch"); ok {
		p, err := ParsePitchRange(v)
		if err != nil {
			return nil, attrError(el, "pitch", err)
		}
		pa.Pitch = &p
	}
	if v, ok := attrValue(attrs, "contour"); ok {
		c, err := ParsePitchContour(v)
		if err != nil {
			return nil, attrError(el, "contour", err)
		}
		pa.Contour = &c
	}
	if v, ok := attrValue(attrs, "range"); ok {
		r, err := ParsePitchRange(v)
		if err != nil {
			return nil, attrError(el, "range", err)
		}
		pa.Range = &r
	}
	if v, ok := attrValue(attrs, "rate"); ok {
		r, err := ParseRateRange(v)
		if err != nil {
			return nil, attrError(el, "rate", err)
		}
		pa.Rate = &r
	}
	if v, ok := attrValue(attrs, "duration"); ok {
		d, err := ParseTimeDesignation(v)
		if err != nil {
			return nil, attrError(el, "duration", err)
		}
		pa.Duration = &d
	}
	if v, ok := attrValue(attrs, "volume"); ok {
		vol, err := ParseVolumeRange(v)
		if err != nil {
			return nil, attrError(el, "volume", err)
		}
		pa.Volume = &vol
	}
	return pa, nil
}

func parseAudio(attrs []xmlAttr) (ParsedElement, error) {
	el := SsmlElement{Kind: TagAudio}
	aa := &AudioAttributes{
		FetchHint:   FetchPrefetch,
		ClipBegin:   TimeDesignation{Unit: UnitSeconds},
		RepeatCount: 1,
		Speed:       1.0,
	}
	aa.Src, _ = attrValue(attrs, "src")
	if v, ok := attrValue(attrs, "fetchtimeout"); ok {
		t, err := ParseTimeDesignation(v)
		if err != nil {
			return nil, attrError(el, "fetchtimeout", err)
		}
		aa.FetchTimeout = &t
	}
	if v, ok := attrValue(attrs, "fetchhint"); ok {
		h, err := ParseFetchHint(v)
		if err != nil {
			return nil, attrError(el, "fetchhint", err)
		}
		aa.FetchHint = h
	}
	if v, ok := attrValue(attrs, "maxage"); ok {
		age, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, attrError(el, "maxage", valueError(v, "non-negative integer"))
		}
		aa.MaxAge = &age
	}
	if v, ok := attrValue(attrs, "maxstale"); ok {
		stale, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, attrError(el, "maxstale", valueError(v, "non-negative integer"))
		}
		aa.MaxStale = &stale
	}
	if v, ok := attrValue(attrs, "clipBegin"); ok {
		t, err := ParseTimeDesignation(v)
		if err != nil {
			return nil, attrError(el, "clipBegin", err)
		}
		aa.ClipBegin = t
	}
	if v, ok := attrValue(attrs, "clipEnd"); ok {
		t, err := ParseTimeDesignation(v)
		if err != nil {
			return nil, attrError(el, "clipEnd", err)
		}
		aa.ClipEnd = &t
	}
	if v, ok := attrValue(attrs, "repeatCount"); ok {
		count, err := strconv.ParseUint(v, 10, 64)
		if err != nil || count == 0 {
			return nil, attrError(el, "repeatCount", valueError(v, "positive integer"))
		}
		aa.RepeatCount = count
	}
	if v, ok := attrValue(attrs, "repeatDur"); ok {
		t, err := ParseTimeDesignation(v)
		if err != nil {
			return nil, attrError(el, "repeatDur", err)
		}
		aa.RepeatDur = &t
	}
	if v, ok := attrValue(attrs, "soundLevel"); ok {
		db, err := ParseDecibel(v)
		if err != nil {
			return nil, attrError(el, "soundLevel", err)
		}
		aa.SoundLevel = db
	}
	if v, ok := attrValue(attrs, "speed"); ok {
		pct, err := ParseUnsignedPercentage(v)
		if err != nil {
			return nil, attrError(el, "speed", err)
		}
		aa.Speed = pct / 100.0
	}
	return aa, nil
}

func parseMark(attrs []xmlAttr) (ParsedElement, error) {
	name, ok := attrValue(attrs, "name")
	if !ok {
		return nil, missingAttr(SsmlElement{Kind: TagMark}, "name")
	}
	return &MarkAttributes{Name: name}, nil
}
