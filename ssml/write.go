package ssml

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Serialisation back to SSML. Attribute emission order is fixed per element
// and spellings are canonical, so writing the same document twice produces
// identical output.

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// unescapeXML resolves the five predefined entities and numeric character
// references. Unknown entities are kept verbatim.
func unescapeXML(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '&' {
			b.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		switch ent := s[i+1 : i+end]; ent {
		case "amp":
			b.WriteByte('&')
		case "lt":
			b.WriteByte('<')
		case "gt":
			b.WriteByte('>')
		case "quot":
			b.WriteByte('"')
		case "apos":
			b.WriteByte('\'')
		default:
			if r, ok := charReference(ent); ok {
				b.WriteRune(r)
			} else {
				// Not an entity. Keep the ampersand and rescan from the
				// next byte so an entity starting inside is still found.
				b.WriteByte('&')
				i++
				continue
			}
		}
		i += end + 1
	}
	return b.String()
}

func charReference(ent string) (rune, bool) {
	if len(ent) < 2 || ent[0] != '#' {
		return 0, false
	}
	num := ent[1:]
	base := 10
	if num[0] == 'x' || num[0] == 'X' {
		base = 16
		num = num[1:]
	}
	n, err := strconv.ParseUint(num, base, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, false
	}
	return rune(n), true
}

// Write re-serialises the document by replaying the event log. The output
// parses back to an equivalent document.
func (d *Document) Write() string {
	var b strings.Builder
	b.Grow(len(d.text) * 2)
	for _, e := range d.log {
		d.writeEvent(&b, e)
	}
	return b.String()
}

func (d *Document) writeEvent(b *strings.Builder, e logEvent) {
	switch e.kind {
	case evText:
		b.WriteString(escapeXML(d.text[e.start:e.end]))
	case evOpen:
		b.WriteByte('<')
		b.WriteString(e.element.Element().String())
		b.WriteString(e.element.attrString())
		b.WriteByte('>')
		if desc, ok := e.element.(*DescriptionAttributes); ok {
			b.WriteString(escapeXML(desc.Body))
		}
	case evClose:
		b.WriteString("</")
		b.WriteString(e.element.Element().String())
		b.WriteByte('>')
	case evEmpty:
		b.WriteByte('<')
		b.WriteString(e.element.Element().String())
		b.WriteString(e.element.attrString())
		b.WriteString("/>")
	}
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(escapeXML(value))
	b.WriteByte('"')
}

func writeAttrMap(b *strings.Builder, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeAttr(b, k, m[k])
	}
}

func (a *SpeakAttributes) attrString() string {
	var b strings.Builder
	writeAttr(&b, "version", a.Version)
	if a.Lang != "" {
		writeAttr(&b, "xml:lang", a.Lang)
	}
	if a.Base != "" {
		writeAttr(&b, "xml:base", a.Base)
	}
	if a.OnLangFailure != "" {
		writeAttr(&b, "onlangfailure", string(a.OnLangFailure))
	}
	writeAttrMap(&b, a.Extra)
	return b.String()
}

func (a *LexiconAttributes) attrString() string {
	var b strings.Builder
	writeAttr(&b, "uri", a.URI)
	writeAttr(&b, "xml:id", a.ID)
	if a.Type != "" {
		writeAttr(&b, "type", a.Type)
	}
	if a.FetchTimeout != nil {
		writeAttr(&b, "fetchtimeout", a.FetchTimeout.String())
	}
	return b.String()
}

func (a *LookupAttributes) attrString() string {
	var b strings.Builder
	writeAttr(&b, "ref", a.Ref)
	return b.String()
}

func (a *MetaAttributes) attrString() string {
	var b strings.Builder
	writeAttr(&b, "content", a.Content)
	if a.HTTPEquiv != nil {
		writeAttr(&b, "http-equiv", *a.HTTPEquiv)
	}
	if a.Name != nil {
		writeAttr(&b, "name", *a.Name)
	}
	return b.String()
}

func (*MetadataAttributes) attrString() string  { return "" }
func (*ParagraphAttributes) attrString() string { return "" }
func (*SentenceAttributes) attrString() string  { return "" }

func (a *TokenAttributes) attrString() string {
	if a.Role == "" {
		return ""
	}
	var b strings.Builder
	writeAttr(&b, "role", a.Role)
	return b.String()
}

func (a *SayAsAttributes) attrString() string {
	var b strings.Builder
	writeAttr(&b, "interpret-as", a.InterpretAs)
	if a.Format != "" {
		writeAttr(&b, "format", a.Format)
	}
	if a.Detail != "" {
		writeAttr(&b, "detail", a.Detail)
	}
	return b.String()
}

func (a *PhonemeAttributes) attrString() string {
	var b strings.Builder
	writeAttr(&b, "ph", a.Ph)
	if a.Alphabet != "" {
		writeAttr(&b, "alphabet", string(a.Alphabet))
	}
	return b.String()
}

func (a *SubAttributes) attrString() string {
	var b strings.Builder
	writeAttr(&b, "alias", a.Alias)
	return b.String()
}

func (a *LangAttributes) attrString() string {
	var b strings.Builder
	writeAttr(&b, "xml:lang", a.Lang)
	if a.OnLangFailure != "" {
		writeAttr(&b, "onlangfailure", string(a.OnLangFailure))
	}
	return b.String()
}

func (a *VoiceAttributes) attrString() string {
	var b strings.Builder
	if a.Gender != "" {
		writeAttr(&b, "gender", string(a.Gender))
	}
	if a.Age != nil {
		writeAttr(&b, "age", strconv.FormatUint(uint64(*a.Age), 10))
	}
	if a.Variant != 0 {
		writeAttr(&b, "variant", strconv.FormatUint(a.Variant, 10))
	}
	if len(a.Name) > 0 {
		writeAttr(&b, "name", strings.Join(a.Name, " "))
	}
	if len(a.Languages) > 0 {
		parts := make([]string, len(a.Languages))
		for i, l := range a.Languages {
			parts[i] = l.String()
		}
		writeAttr(&b, "languages", strings.Join(parts, " "))
	}
	return b.String()
}

func (a *EmphasisAttributes) attrString() string {
	if a.Level == "" {
		return ""
	}
	var b strings.Builder
	writeAttr(&b, "level", string(a.Level))
	return b.String()
}

func (a *BreakAttributes) attrString() string {
	var b strings.Builder
	if a.Strength != "" {
		writeAttr(&b, "strength", string(a.Strength))
	}
	if a.Time != nil {
		writeAttr(&b, "time", a.Time.String())
	}
	return b.String()
}

func (a *ProsodyAttributes) attrString() string {
	var b strings.Builder
	if a.Pitch != nil {
		writeAttr(&b, "pitch", a.Pitch.String())
	}
	if a.Contour != nil {
		writeAttr(&b, "contour", a.Contour.String())
	}
	if a.Range != nil {
		writeAttr(&b, "range", a.Range.String())
	}
	if a.Rate != nil {
		writeAttr(&b, "rate", a.Rate.String())
	}
	if a.Duration != nil {
		writeAttr(&b, "duration", a.Duration.String())
	}
	if a.Volume != nil {
		writeAttr(&b, "volume", a.Volume.String())
	}
	return b.String()
}

func (a *AudioAttributes) attrString() string {
	var b strings.Builder
	writeAttr(&b, "fetchhint", string(a.FetchHint))
	writeAttr(&b, "clipBegin", a.ClipBegin.String())
	writeAttr(&b, "repeatCount", strconv.FormatUint(a.RepeatCount, 10))
	writeAttr(&b, "soundLevel", formatFloat(a.SoundLevel)+"dB")
	writeAttr(&b, "speed", formatFloat(a.Speed*100)+"%")
	if a.Src != "" {
		writeAttr(&b, "src", a.Src)
	}
	if a.FetchTimeout != nil {
		writeAttr(&b, "fetchtimeout", a.FetchTimeout.String())
	}
	if a.MaxAge != nil {
		writeAttr(&b, "maxage", strconv.FormatUint(*a.MaxAge, 10))
	}
	if a.MaxStale != nil {
		writeAttr(&b, "maxstale", strconv.FormatUint(*a.MaxStale, 10))
	}
	if a.ClipEnd != nil {
		writeAttr(&b, "clipEnd", a.ClipEnd.String())
	}
	if a.RepeatDur != nil {
		writeAttr(&b, "repeatDur", a.RepeatDur.String())
	}
	return b.String()
}

func (a *MarkAttributes) attrString() string {
	var b strings.Builder
	writeAttr(&b, "name", a.Name)
	return b.String()
}

func (*DescriptionAttributes) attrString() string { return "" }

func (a *CustomAttributes) attrString() string {
	var b strings.Builder
	writeAttrMap(&b, a.Attrs)
	return b.String()
}
