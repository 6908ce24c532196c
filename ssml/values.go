package ssml

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Attribute value grammars. Each type has a parse function returning a typed
// value or an *Error with ErrInvalidAttributeValue semantics (the element and
// attribute context is filled in by the caller), and a String method whose
// output re-parses to an equivalent value.

var (
	timeRe    = regexp.MustCompile(`^\+?((?:\d*\.)?\d+)(ms|s)$`)
	decibelRe = regexp.MustCompile(`^([+-]?(?:\d*\.)?\d+)dB$`)
	percentRe = regexp.MustCompile(`^\+?((?:\d*\.)?\d+)%$`)
	numberRe  = regexp.MustCompile(`^(?:\d*\.)?\d+$`)
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TimeUnit is the unit of a time designation, seconds or milliseconds.
type TimeUnit string

const (
	UnitSeconds      TimeUnit = "s"
	UnitMilliseconds TimeUnit = "ms"
)

// TimeDesignation is SSML's numeric-plus-unit time grammar, e.g. "250ms" or
// "+1.5s". The original unit is preserved so serialisation does not change
// the spelling.
type TimeDesignation struct {
	Value float64
	Unit  TimeUnit
}

// ParseTimeDesignation parses "[+]?(digits*.)?digits+(s|ms)". Bare numbers
// without a unit are rejected.
func ParseTimeDesignation(s string) (TimeDesignation, error) {
	m := timeRe.FindStringSubmatch(s)
	if m == nil {
		return TimeDesignation{}, valueError(s, "time designation like 250ms or 1.5s")
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return TimeDesignation{}, valueError(s, "time designation like 250ms or 1.5s")
	}
	return TimeDesignation{Value: v, Unit: TimeUnit(m[2])}, nil
}

// Duration converts the designation to an absolute duration.
func (t TimeDesignation) Duration() time.Duration {
	switch t.Unit {
	case UnitMilliseconds:
		return time.Duration(t.Value * float64(time.Millisecond))
	default:
		return time.Duration(t.Value * float64(time.Second))
	}
}

func (t TimeDesignation) String() string {
	return formatFloat(t.Value) + string(t.Unit)
}

// PositiveNumber is a non-negative number that remembers whether it was
// written as an integer or a float, so "20" does not come back as "20.0".
type PositiveNumber struct {
	Value   float64
	IsFloat bool
}

// PositiveInt builds an integer-spelled PositiveNumber.
func PositiveInt(n int64) PositiveNumber {
	return PositiveNumber{Value: float64(n)}
}

// PositiveFloat builds a float-spelled PositiveNumber.
func PositiveFloat(v float64) PositiveNumber {
	return PositiveNumber{Value: v, IsFloat: true}
}

// ParsePositiveNumber accepts an optional leading "+" followed by a
// non-negative number. A leading "-" fails.
func ParsePositiveNumber(s string) (PositiveNumber, error) {
	if strings.HasPrefix(s, "-") {
		return PositiveNumber{}, valueError(s, "non-negative number")
	}
	num := strings.TrimPrefix(s, "+")
	if !numberRe.MatchString(num) {
		return PositiveNumber{}, valueError(s, "non-negative number")
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return PositiveNumber{}, valueError(s, "non-negative number")
	}
	return PositiveNumber{Value: v, IsFloat: strings.Contains(num, ".")}, nil
}

func (n PositiveNumber) String() string {
	if n.IsFloat {
		return formatFloat(n.Value)
	}
	return strconv.FormatInt(int64(n.Value), 10)
}

// Sign is an explicit leading sign on a relative value.
type Sign string

const (
	SignPlus  Sign = "+"
	SignMinus Sign = "-"
)

// Unit is the unit of a pitch value.
type Unit string

const (
	UnitHertz    Unit = "Hz"
	UnitSemitone Unit = "st"
	UnitPercent  Unit = "%"
)

// PitchStrength is a named pitch level.
type PitchStrength string

const (
	PitchXLow    PitchStrength = "x-low"
	PitchLow     PitchStrength = "low"
	PitchMedium  PitchStrength = "medium"
	PitchHigh    PitchStrength = "high"
	PitchXHigh   PitchStrength = "x-high"
	PitchDefault PitchStrength = "default"
)

func parsePitchStrength(s string) (PitchStrength, bool) {
	switch PitchStrength(s) {
	case PitchXLow, PitchLow, PitchMedium, PitchHigh, PitchXHigh, PitchDefault:
		return PitchStrength(s), true
	}
	return "", false
}

// PitchKind discriminates the PitchRange variants.
type PitchKind int

const (
	PitchLabel PitchKind = iota
	PitchFrequency
	PitchRelative
)

// PitchRange is a pitch or pitch-range value: a named label, an absolute
// frequency in Hz, or an explicitly signed relative change in Hz, semitones
// or percent. Percent and semitone values require a sign; a bare frequency
// does not.
type PitchRange struct {
	Kind  PitchKind
	Label PitchStrength
	Value float64
	Sign  Sign
	Unit  Unit
}

// ParsePitchRange parses a pitch or range attribute value.
func ParsePitchRange(s string) (PitchRange, error) {
	if label, ok := parsePitchStrength(s); ok {
		return PitchRange{Kind: PitchLabel, Label: label}, nil
	}
	const grammar = "pitch label, <number>Hz or <sign><number><Hz|st|%>"

	var unit Unit
	switch {
	case strings.HasSuffix(s, string(UnitHertz)):
		unit = UnitHertz
	case strings.HasSuffix(s, string(UnitSemitone)):
		unit = UnitSemitone
	case strings.HasSuffix(s, string(UnitPercent)):
		unit = UnitPercent
	default:
		return PitchRange{}, valueError(s, grammar)
	}
	num := strings.TrimSuffix(s, string(unit))

	var sign Sign
	switch {
	case strings.HasPrefix(num, "+"):
		sign = SignPlus
		num = num[1:]
	case strings.HasPrefix(num, "-"):
		sign = SignMinus
		num = num[1:]
	}
	if !numberRe.MatchString(num) {
		return PitchRange{}, valueError(s, grammar)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return PitchRange{}, valueError(s, grammar)
	}

	if sign == "" {
		// Percentages and semitones are only meaningful as relative
		// changes and need an explicit sign.
		if unit != UnitHertz {
			return PitchRange{}, valueError(s, grammar)
		}
		return PitchRange{Kind: PitchFrequency, Value: v, Unit: UnitHertz}, nil
	}
	return PitchRange{Kind: PitchRelative, Value: v, Sign: sign, Unit: unit}, nil
}

func (p PitchRange) String() string {
	switch p.Kind {
	case PitchLabel:
		return string(p.Label)
	case PitchFrequency:
		return formatFloat(p.Value) + string(UnitHertz)
	default:
		return string(p.Sign) + formatFloat(p.Value) + string(p.Unit)
	}
}

// VolumeStrength is a named volume level.
type VolumeStrength string

const (
	VolumeSilent  VolumeStrength = "silent"
	VolumeXSoft   VolumeStrength = "x-soft"
	VolumeSoft    VolumeStrength = "soft"
	VolumeMedium  VolumeStrength = "medium"
	VolumeLoud    VolumeStrength = "loud"
	VolumeXLoud   VolumeStrength = "x-loud"
	VolumeDefault VolumeStrength = "default"
)

func parseVolumeStrength(s string) (VolumeStrength, bool) {
	switch VolumeStrength(s) {
	case VolumeSilent, VolumeXSoft, VolumeSoft, VolumeMedium, VolumeLoud,
		VolumeXLoud, VolumeDefault:
		return VolumeStrength(s), true
	}
	return "", false
}

// VolumeKind discriminates the VolumeRange variants.
type VolumeKind int

const (
	VolumeLabel VolumeKind = iota
	VolumeDecibel
)

// VolumeRange is a volume value: a named label or a signed or unsigned
// decibel value.
type VolumeRange struct {
	Kind    VolumeKind
	Label   VolumeStrength
	Decibel float64
}

// ParseVolumeRange parses a volume attribute value.
func ParseVolumeRange(s string) (VolumeRange, error) {
	if label, ok := parseVolumeStrength(s); ok {
		return VolumeRange{Kind: VolumeLabel, Label: label}, nil
	}
	db, err := ParseDecibel(s)
	if err != nil {
		return VolumeRange{}, valueError(s, "volume label or <number>dB")
	}
	return VolumeRange{Kind: VolumeDecibel, Decibel: db}, nil
}

func (v VolumeRange) String() string {
	if v.Kind == VolumeLabel {
		return string(v.Label)
	}
	return formatFloat(v.Decibel) + "dB"
}

// RateStrength is a named speaking rate.
type RateStrength string

const (
	RateXSlow   RateStrength = "x-slow"
	RateSlow    RateStrength = "slow"
	RateMedium  RateStrength = "medium"
	RateFast    RateStrength = "fast"
	RateXFast   RateStrength = "x-fast"
	RateDefault RateStrength = "default"
)

func parseRateStrength(s string) (RateStrength, bool) {
	switch RateStrength(s) {
	case RateXSlow, RateSlow, RateMedium, RateFast, RateXFast, RateDefault:
		return RateStrength(s), true
	}
	return "", false
}

// RateKind discriminates the RateRange variants.
type RateKind int

const (
	RateLabel RateKind = iota
	RatePercentage
)

// RateRange is a speaking rate: a named label or a non-negative percentage
// acting as a multiplier of the default rate. Negative percentages fail.
type RateRange struct {
	Kind       RateKind
	Label      RateStrength
	Percentage PositiveNumber
}

// ParseRateRange parses a rate attribute value.
func ParseRateRange(s string) (RateRange, error) {
	if label, ok := parseRateStrength(s); ok {
		return RateRange{Kind: RateLabel, Label: label}, nil
	}
	const grammar = "rate label or non-negative percentage"
	if !strings.HasSuffix(s, "%") {
		return RateRange{}, valueError(s, grammar)
	}
	n, err := ParsePositiveNumber(strings.TrimSuffix(s, "%"))
	if err != nil {
		return RateRange{}, valueError(s, grammar)
	}
	return RateRange{Kind: RatePercentage, Percentage: n}, nil
}

func (r RateRange) String() string {
	if r.Kind == RateLabel {
		return string(r.Label)
	}
	return r.Percentage.String() + "%"
}

// ContourElement is one (time position, pitch target) pair of a pitch
// contour, e.g. "(20%,+30Hz)".
type ContourElement struct {
	Percentage float64
	Pitch      PitchRange
}

// ParseContourElement parses a single "(<number>%,<pitch>)" pair. The pair
// is taken literally, internal whitespace is not trimmed.
func ParseContourElement(s string) (ContourElement, error) {
	const grammar = "(<number>%,<pitch>) contour element"
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return ContourElement{}, valueError(s, grammar)
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	pos, pitchStr, found := strings.Cut(inner, ",")
	if !found {
		return ContourElement{}, valueError(s, grammar)
	}
	pitch, err := ParsePitchRange(pitchStr)
	if err != nil {
		return ContourElement{}, valueError(s, grammar)
	}
	if !strings.HasSuffix(pos, "%") {
		return ContourElement{}, valueError(s, grammar)
	}
	num := strings.TrimSuffix(pos, "%")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return ContourElement{}, valueError(s, grammar)
	}
	return ContourElement{Percentage: v, Pitch: pitch}, nil
}

func (c ContourElement) String() string {
	return "(" + formatFloat(c.Percentage) + "%," + c.Pitch.String() + ")"
}

// PitchContour is a whitespace-separated list of contour elements.
type PitchContour []ContourElement

// ParsePitchContour parses a contour attribute value. Empty and
// pure-whitespace input yields an empty contour without error.
func ParsePitchContour(s string) (PitchContour, error) {
	fields := strings.Fields(s)
	contour := make(PitchContour, 0, len(fields))
	for _, f := range fields {
		el, err := ParseContourElement(f)
		if err != nil {
			return nil, err
		}
		contour = append(contour, el)
	}
	return contour, nil
}

func (c PitchContour) String() string {
	parts := make([]string, len(c))
	for i, el := range c {
		parts[i] = el.String()
	}
	return strings.Join(parts, " ")
}

// PhonemeAlphabet identifies a pronunciation alphabet: "ipa" or a
// vendor-defined identifier preserved verbatim. Empty means absent.
type PhonemeAlphabet string

// AlphabetIPA is the International Phonetic Alphabet.
const AlphabetIPA PhonemeAlphabet = "ipa"

// IsIPA reports whether the alphabet is the IPA.
func (a PhonemeAlphabet) IsIPA() bool { return a == AlphabetIPA }

// Strength is the prosodic break strength of a break element. "none"
// suppresses a break the processor would otherwise produce.
type Strength string

const (
	StrengthNone    Strength = "none"
	StrengthXWeak   Strength = "x-weak"
	StrengthWeak    Strength = "weak"
	StrengthMedium  Strength = "medium"
	StrengthStrong  Strength = "strong"
	StrengthXStrong Strength = "x-strong"
)

// ParseStrength parses a break strength. Matching is case-insensitive;
// emission uses the canonical lower-case spelling.
func ParseStrength(s string) (Strength, error) {
	switch v := Strength(strings.ToLower(s)); v {
	case StrengthNone, StrengthXWeak, StrengthWeak, StrengthMedium,
		StrengthStrong, StrengthXStrong:
		return v, nil
	}
	return "", valueError(s, "break strength")
}

// EmphasisLevel is the strength of emphasis on an emphasis element.
type EmphasisLevel string

const (
	EmphasisStrong   EmphasisLevel = "strong"
	EmphasisModerate EmphasisLevel = "moderate"
	EmphasisNone     EmphasisLevel = "none"
	EmphasisReduced  EmphasisLevel = "reduced"
)

// ParseEmphasisLevel parses an emphasis level value.
func ParseEmphasisLevel(s string) (EmphasisLevel, error) {
	switch v := EmphasisLevel(s); v {
	case EmphasisStrong, EmphasisModerate, EmphasisNone, EmphasisReduced:
		return v, nil
	}
	return "", valueError(s, "emphasis level")
}

// Gender is the preferred gender of a voice.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

// ParseGender parses a voice gender value.
func ParseGender(s string) (Gender, error) {
	switch v := Gender(s); v {
	case GenderMale, GenderFemale, GenderNeutral:
		return v, nil
	}
	return "", valueError(s, "male, female or neutral")
}

// OnLanguageFailure describes the processor behaviour when a voice cannot
// speak the requested language.
type OnLanguageFailure string

const (
	FailureChangeVoice     OnLanguageFailure = "changevoice"
	FailureIgnoreText      OnLanguageFailure = "ignoretext"
	FailureIgnoreLang      OnLanguageFailure = "ignorelang"
	FailureProcessorChoice OnLanguageFailure = "processorchoice"
)

// ParseOnLanguageFailure parses an onlangfailure attribute value.
func ParseOnLanguageFailure(s string) (OnLanguageFailure, error) {
	switch v := OnLanguageFailure(s); v {
	case FailureChangeVoice, FailureIgnoreText, FailureIgnoreLang,
		FailureProcessorChoice:
		return v, nil
	}
	return "", valueError(s, "changevoice, ignoretext, ignorelang or processorchoice")
}

// FetchHint tells the processor whether audio may be prefetched.
type FetchHint string

const (
	FetchPrefetch FetchHint = "prefetch"
	FetchSafe     FetchHint = "safe"
)

// ParseFetchHint parses a fetchhint attribute value.
func ParseFetchHint(s string) (FetchHint, error) {
	switch v := FetchHint(s); v {
	case FetchPrefetch, FetchSafe:
		return v, nil
	}
	return "", valueError(s, "prefetch or safe")
}

// LanguageAccentPair is a "language" or "language:accent" token naming a
// language a voice should speak and an optional accent.
type LanguageAccentPair struct {
	Lang   string
	Accent string
}

// ParseLanguageAccentPair parses one token of a voice languages list. The
// empty string and the special codes "und" and "zxx" are rejected.
func ParseLanguageAccentPair(s string) (LanguageAccentPair, error) {
	if s == "" {
		return LanguageAccentPair{}, valueError(s, "language or language:accent")
	}
	if s == "und" || s == "zxx" {
		return LanguageAccentPair{}, valueError(s, "language other than und and zxx")
	}
	lang, accent, _ := strings.Cut(s, ":")
	if strings.Contains(accent, ":") {
		return LanguageAccentPair{}, valueError(s, "language or language:accent")
	}
	return LanguageAccentPair{Lang: lang, Accent: accent}, nil
}

func (l LanguageAccentPair) String() string {
	if l.Accent == "" {
		return l.Lang
	}
	return l.Lang + ":" + l.Accent
}

// ParseDecibel parses a signed or unsigned "<number>dB" value, returning the
// signed number of decibels.
func ParseDecibel(s string) (float64, error) {
	m := decibelRe.FindStringSubmatch(s)
	if m == nil {
		return 0, valueError(s, "decibel value like -6dB")
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(m[1], "+"), 64)
	if err != nil {
		return 0, valueError(s, "decibel value like -6dB")
	}
	return v, nil
}

// ParseUnsignedPercentage parses an unsigned "<number>%" value, returning
// the percentage as written.
func ParseUnsignedPercentage(s string) (float64, error) {
	m := percentRe.FindStringSubmatch(s)
	if m == nil {
		return 0, valueError(s, "percentage value like 50%")
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, valueError(s, "percentage value like 50%")
	}
	return v, nil
}

// valueError builds the bare invalid-value error; attribute parsing wraps it
// with the element and attribute name.
func valueError(value, expected string) *Error {
	return &Error{
		Kind:     ErrInvalidAttributeValue,
		Value:    value,
		Expected: expected,
		Err:      fmt.Errorf("%q does not match %s", value, expected),
	}
}
