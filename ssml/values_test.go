package ssml

import (
	"testing"
	"time"
)

func TestParseTimeDesignation(t *testing.T) {
	cases := []struct {
		in   string
		want TimeDesignation
		err  bool
	}{
		{in: "250ms", want: TimeDesignation{Value: 250, Unit: UnitMilliseconds}},
		{in: "1.5s", want: TimeDesignation{Value: 1.5, Unit: UnitSeconds}},
		{in: "+3s", want: TimeDesignation{Value: 3, Unit: UnitSeconds}},
		{in: ".5s", want: TimeDesignation{Value: 0.5, Unit: UnitSeconds}},
		{in: "5", err: true},
		{in: "-1s", err: true},
		{in: "5m", err: true},
		{in: "ms", err: true},
		{in: "", err: true},
	}
	for _, c := range cases {
		got, err := ParseTimeDesignation(c.in)
		if c.err {
			if err == nil {
				t.Errorf("ParseTimeDesignation(%q): expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeDesignation(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseTimeDesignation(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTimeDesignationDuration(t *testing.T) {
	d, err := ParseTimeDesignation("250ms")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Duration() != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", d.Duration())
	}
	d, err = ParseTimeDesignation("1.5s")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Duration() != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %v", d.Duration())
	}
}

func TestParsePitchRange(t *testing.T) {
	cases := []struct {
		in   string
		want PitchRange
		err  bool
	}{
		{in: "x-low", want: PitchRange{Kind: PitchLabel, Label: PitchXLow}},
		{in: "default", want: PitchRange{Kind: PitchLabel, Label: PitchDefault}},
		{in: "120Hz", want: PitchRange{Kind: PitchFrequency, Value: 120, Unit: UnitHertz}},
		{in: "+30Hz", want: PitchRange{Kind: PitchRelative, Value: 30, Sign: SignPlus, Unit: UnitHertz}},
		{in: "-2st", want: PitchRange{Kind: PitchRelative, Value: 2, Sign: SignMinus, Unit: UnitSemitone}},
		{in: "+5%", want: PitchRange{Kind: PitchRelative, Value: 5, Sign: SignPlus, Unit: UnitPercent}},
		// Relative units without an explicit sign are meaningless.
		{in: "5%", err: true},
		{in: "2st", err: true},
		{in: "120", err: true},
		{in: "Hz", err: true},
		{in: "loud", err: true},
	}
	for _, c := range cases {
		got, err := ParsePitchRange(c.in)
		if c.err {
			if err == nil {
				t.Errorf("ParsePitchRange(%q): expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePitchRange(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParsePitchRange(%q) = %+v, want %+v", c.in, got, c.want)
		}
		back, err := ParsePitchRange(got.String())
		if err != nil || back != got {
			t.Errorf("ParsePitchRange(%q).String() = %q does not round-trip", c.in, got.String())
		}
	}
}

func TestParseRateRange(t *testing.T) {
	got, err := ParseRateRange("20%")
	if err != nil {
		t.Fatalf("ParseRateRange(20%%): %v", err)
	}
	want := RateRange{Kind: RatePercentage, Percentage: PositiveInt(20)}
	if got != want {
		t.Errorf("ParseRateRange(20%%) = %+v, want %+v", got, want)
	}
	if got.String() != "20%" {
		t.Errorf("expected integer spelling 20%%, got %q", got.String())
	}

	if _, err := ParseRateRange("-10%"); err == nil {
		t.Error("ParseRateRange(-10%): expected error on negative rate")
	}
	if _, err := ParseRateRange("+10%"); err != nil {
		t.Errorf("ParseRateRange(+10%%): %v", err)
	}
	if _, err := ParseRateRange("10"); err == nil {
		t.Error("ParseRateRange(10): expected error without percent sign")
	}

	got, err = ParseRateRange("x-slow")
	if err != nil {
		t.Fatalf("ParseRateRange(x-slow): %v", err)
	}
	if got.Kind != RateLabel || got.Label != RateXSlow {
		t.Errorf("ParseRateRange(x-slow) = %+v", got)
	}

	got, err = ParseRateRange("1.5%")
	if err != nil {
		t.Fatalf("ParseRateRange(1.5%%): %v", err)
	}
	if got.String() != "1.5%" {
		t.Errorf("expected float spelling 1.5%%, got %q", got.String())
	}
}

func TestParseVolumeRange(t *testing.T) {
	got, err := ParseVolumeRange("-6dB")
	if err != nil {
		t.Fatalf("ParseVolumeRange(-6dB): %v", err)
	}
	if got.Kind != VolumeDecibel || got.Decibel != -6 {
		t.Errorf("ParseVolumeRange(-6dB) = %+v", got)
	}
	got, err = ParseVolumeRange("+3.5dB")
	if err != nil {
		t.Fatalf("ParseVolumeRange(+3.5dB): %v", err)
	}
	if got.Decibel != 3.5 {
		t.Errorf("ParseVolumeRange(+3.5dB) = %+v", got)
	}
	got, err = ParseVolumeRange("silent")
	if err != nil {
		t.Fatalf("ParseVolumeRange(silent): %v", err)
	}
	if got.Kind != VolumeLabel || got.Label != VolumeSilent {
		t.Errorf("ParseVolumeRange(silent) = %+v", got)
	}
	if _, err := ParseVolumeRange("6"); err == nil {
		t.Error("ParseVolumeRange(6): expected error without unit")
	}
}

func TestParsePitchContour(t *testing.T) {
	contour, err := ParsePitchContour("(20%,+30Hz) (60%,-10Hz)")
	if err != nil {
		t.Fatalf("contour parse: %v", err)
	}
	if len(contour) != 2 {
		t.Fatalf("expected 2 contour elements, got %d", len(contour))
	}
	if contour[0].Percentage != 20 || contour[0].Pitch.Sign != SignPlus {
		t.Errorf("first element = %+v", contour[0])
	}
	if contour[1].Percentage != 60 || contour[1].Pitch.Sign != SignMinus {
		t.Errorf("second element = %+v", contour[1])
	}
	if contour.String() != "(20%,+30Hz) (60%,-10Hz)" {
		t.Errorf("contour string = %q", contour.String())
	}

	for _, in := range []string{"", "   ", "\t\n"} {
		contour, err := ParsePitchContour(in)
		if err != nil {
			t.Errorf("ParsePitchContour(%q): %v", in, err)
		}
		if len(contour) != 0 {
			t.Errorf("ParsePitchContour(%q): expected empty contour, got %v", in, contour)
		}
	}

	for _, in := range []string{"20%,+30Hz", "(20%+30Hz)", "(20,+30Hz)", "(20%,30%)"} {
		if _, err := ParsePitchContour(in); err == nil {
			t.Errorf("ParsePitchContour(%q): expected error", in)
		}
	}
}

func TestParseStrength(t *testing.T) {
	got, err := ParseStrength("X-Strong")
	if err != nil {
		t.Fatalf("ParseStrength(X-Strong): %v", err)
	}
	if got != StrengthXStrong {
		t.Errorf("expected canonical x-strong, got %q", got)
	}
	if _, err := ParseStrength("loud"); err == nil {
		t.Error("ParseStrength(loud): expected error")
	}
}

func TestParseLanguageAccentPair(t *testing.T) {
	got, err := ParseLanguageAccentPair("fr:ca")
	if err != nil {
		t.Fatalf("ParseLanguageAccentPair(fr:ca): %v", err)
	}
	if got.Lang != "fr" || got.Accent != "ca" {
		t.Errorf("ParseLanguageAccentPair(fr:ca) = %+v", got)
	}
	if got.String() != "fr:ca" {
		t.Errorf("String() = %q", got.String())
	}

	got, err = ParseLanguageAccentPair("en")
	if err != nil {
		t.Fatalf("ParseLanguageAccentPair(en): %v", err)
	}
	if got.Lang != "en" || got.Accent != "" {
		t.Errorf("ParseLanguageAccentPair(en) = %+v", got)
	}

	for _, in := range []string{"", "und", "zxx", "a:b:c"} {
		if _, err := ParseLanguageAccentPair(in); err == nil {
			t.Errorf("ParseLanguageAccentPair(%q): expected error", in)
		}
	}
}

func TestParsePositiveNumber(t *testing.T) {
	got, err := ParsePositiveNumber("20")
	if err != nil {
		t.Fatalf("ParsePositiveNumber(20): %v", err)
	}
	if got.IsFloat || got.String() != "20" {
		t.Errorf("expected integer 20, got %+v", got)
	}
	got, err = ParsePositiveNumber("+1.25")
	if err != nil {
		t.Fatalf("ParsePositiveNumber(+1.25): %v", err)
	}
	if !got.IsFloat || got.String() != "1.25" {
		t.Errorf("expected float 1.25, got %+v", got)
	}
	for _, in := range []string{"-1", "", "abc", "1.2.3"} {
		if _, err := ParsePositiveNumber(in); err == nil {
			t.Errorf("ParsePositiveNumber(%q): expected error", in)
		}
	}
}
