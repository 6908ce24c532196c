// Package text segments plain text into sentences and words and assembles
// synthesisable SSML documents from it.
package text

import (
	"iter"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter creates a sentence splitter for the given language. Only the
// English punkt model ships with the library; for other languages nil is
// returned and splitting is off (Split and Sentences then pass input
// through whole).
func NewSplitter(lang language.Tag, log *zap.Logger) *Splitter {
	if log == nil {
		log = zap.NewNop()
	}
	base, confidence := lang.Base()
	if confidence != language.No && base.String() == "en" {
		tok, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			log.Warn("Unable to load sentence tokenizer data", zap.Stringer("tag", lang), zap.Error(err))
			return nil
		}
		return &Splitter{tok}
	}
	log.Warn("No sentence tokenizer model for language, turning off sentence splitting",
		zap.String("language", display.English.Languages().Name(lang)),
		zap.Stringer("tag", lang))
	return nil
}

// Split returns slice of sentences.
// For memory-efficient streaming, use Sentences iterator instead.
func (s *Splitter) Split(in string) []string {
	var result []string
	for sentence := range s.Sentences(in) {
		result = append(result, sentence)
	}
	return result
}

// Sentences returns an iterator over sentences. The tokenizer attaches a
// sentence's trailing spaces to the next sentence; they are moved back so
// every sentence ends at its own boundary.
func (s *Splitter) Sentences(in string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if s == nil {
			yield(in)
			return
		}

		sentences := s.Tokenize(in)
		if len(sentences) == 0 {
			return
		}
		for i := 0; i < len(sentences)-1; i++ {
			text := sentences[i].Text
			nextText := sentences[i+1].Text
			for idx, sym := range nextText {
				if !unicode.IsSpace(sym) {
					text = text + nextText[0:idx]
					sentences[i+1].Text = nextText[idx:]
					break
				}
			}
			if !yield(text) {
				return
			}
		}
		yield(sentences[len(sentences)-1].Text)
	}
}

// Words returns an iterator over whitespace-separated words. The ignoreNBSP
// parameter determines whether NBSP (0xA0) is treated as a separator.
func (*Splitter) Words(in string, ignoreNBSP bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		var word strings.Builder
		for _, sym := range in {
			if isSeparator(sym, ignoreNBSP) {
				if word.Len() > 0 && !yield(word.String()) {
					return
				}
				word.Reset()
				continue
			}
			word.WriteRune(sym)
		}
		if word.Len() > 0 {
			yield(word.String())
		}
	}
}

func isSeparator(r rune, ignoreNBSP bool) bool {
	if uint32(r) <= unicode.MaxLatin1 {
		switch r {
		case '\t', '\n', '\v', '\f', '\r', ' ', 0x85:
			return true
		case 0xA0: // NBSP
			return ignoreNBSP
		}
		return false
	}
	return unicode.IsSpace(r)
}

// Builder assembles an SSML speak document from plain text.
type Builder struct {
	splitter *Splitter
	lang     language.Tag
}

// NewBuilder creates a builder for the given language. Sentence boundaries
// follow the language's splitter when one is available, paragraph boundaries
// are blank lines.
func NewBuilder(lang language.Tag, log *zap.Logger) *Builder {
	return &Builder{splitter: NewSplitter(lang, log), lang: lang}
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// BuildSpeak wraps plain text into a speak document: blank-line separated
// blocks become paragraphs, sentences become s elements. The result parses
// under ssml.Parse.
func (b *Builder) BuildSpeak(in string) string {
	var sb strings.Builder
	sb.Grow(len(in) + 64)
	sb.WriteString(`<speak version="1.1" xml:lang="`)
	sb.WriteString(b.lang.String())
	sb.WriteString(`">`)
	for _, para := range strings.Split(in, "\n\n") {
		para = strings.Join(strings.Fields(para), " ")
		if para == "" {
			continue
		}
		sb.WriteString("<p>")
		for sentence := range b.splitter.Sentences(para) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			sb.WriteString("<s>")
			sb.WriteString(textEscaper.Replace(sentence))
			sb.WriteString("</s>")
		}
		sb.WriteString("</p>")
	}
	sb.WriteString("</speak>")
	return sb.String()
}
