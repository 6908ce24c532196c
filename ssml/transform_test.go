package ssml

import (
	"context"
	"strings"
	"testing"
)

func TestTransformIdentity(t *testing.T) {
	const input = `<speak version="1.1"><p><s>You have 4 new messages.</s>` +
		`<s>The subject is <prosody rate="20%">ski trip</prosody></s></p></speak>`

	doc := mustParse(t, input)
	out := doc.Transform(func(ev Event) (Event, bool) { return ev, true })

	if out.SSML != doc.Write() {
		t.Errorf("identity transform ssml = %q, want %q", out.SSML, doc.Write())
	}
	if out.SynthesisableText != doc.Text() {
		t.Errorf("identity transform text = %q, want %q", out.SynthesisableText, doc.Text())
	}
}

func TestTransformStripCustomTags(t *testing.T) {
	const input = `<speak version="1.1"><mstts:express-as style="cheerful">Hello there!` +
		`</mstts:express-as><mstts:silence type="tailing" value="200ms"/></speak>`

	doc := mustParse(t, input)
	out := doc.Transform(func(ev Event) (Event, bool) {
		if ev.Kind != EventText && ev.Element.Element().Kind == TagCustom {
			return Event{}, false
		}
		return ev, true
	})

	if strings.Contains(out.SSML, "mstts") {
		t.Errorf("custom tags survived: %s", out.SSML)
	}
	if !strings.Contains(out.SSML, "Hello there!") {
		t.Errorf("text dropped with its tags: %s", out.SSML)
	}
	if out.SynthesisableText != doc.Text() {
		t.Errorf("text = %q, want %q", out.SynthesisableText, doc.Text())
	}
	if _, err := Parse(out.SSML); err != nil {
		t.Errorf("stripped ssml does not re-parse: %v", err)
	}
}

func TestTransformRewritesText(t *testing.T) {
	doc := mustParse(t, `<speak version="1.1"><p>good morning</p></speak>`)
	out := doc.Transform(func(ev Event) (Event, bool) {
		if ev.Kind == EventText {
			ev.Text = strings.ToUpper(ev.Text)
		}
		return ev, true
	})
	if out.SynthesisableText != "GOOD MORNING" {
		t.Errorf("text = %q", out.SynthesisableText)
	}
	if !strings.Contains(out.SSML, "<p>GOOD MORNING</p>") {
		t.Errorf("ssml = %q", out.SSML)
	}
}

type upperTransformer struct {
	seen []EventKind
}

func (u *upperTransformer) Apply(_ context.Context, ev Event) (Event, bool, error) {
	u.seen = append(u.seen, ev.Kind)
	if ev.Kind == EventText {
		ev.Text = strings.ToUpper(ev.Text)
	}
	return ev, true, nil
}

func TestTransformContext(t *testing.T) {
	doc := mustParse(t, `<speak version="1.1"><s>one</s><s>two</s></speak>`)

	tr := &upperTransformer{}
	out, err := doc.TransformContext(context.Background(), tr)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out.SynthesisableText != "ONE TWO" {
		t.Errorf("text = %q", out.SynthesisableText)
	}
	// The word-boundary space between the two sentences is its own event.
	want := []EventKind{EventOpen, EventOpen, EventText, EventClose, EventText,
		EventOpen, EventText, EventClose, EventClose}
	if len(tr.seen) != len(want) {
		t.Fatalf("saw %d events, want %d", len(tr.seen), len(want))
	}
	for i := range want {
		if tr.seen[i] != want[i] {
			t.Errorf("event %d kind = %d, want %d", i, tr.seen[i], want[i])
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := doc.TransformContext(ctx, tr); err == nil {
		t.Error("expected error from cancelled context")
	}
}
