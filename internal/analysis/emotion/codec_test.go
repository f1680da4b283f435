package emotion

import "testing"

func TestExtractNoMarker(t *testing.T) {
	clean, emo := Extract("  just plain text  ")
	if clean != "just plain text" {
		t.Fatalf("unexpected clean text: %q", clean)
	}
	if emo != Neutral {
		t.Fatalf("expected default emotion, got %s", emo)
	}
}

func TestExtractLastMarkerWins(t *testing.T) {
	clean, emo := Extract("hello [sad] world [excited]")
	if emo != Excited {
		t.Fatalf("expected last marker to win, got %s", emo)
	}
	if clean != "hello  world" {
		t.Fatalf("unexpected clean text: %q", clean)
	}
}

func TestExtractCaseInsensitive(t *testing.T) {
	clean, emo := Extract("Mwahaha! [EVIL]")
	if emo != Evil {
		t.Fatalf("expected evil, got %s", emo)
	}
	if clean != "Mwahaha!" {
		t.Fatalf("unexpected clean text: %q", clean)
	}
}

func TestExtractEmptyAfterStripping(t *testing.T) {
	clean, emo := Extract("[triumphant]")
	if emo != Triumphant {
		t.Fatalf("expected triumphant, got %s", emo)
	}
	if clean != "Ha! Just as I planned!" {
		t.Fatalf("expected canned response, got %q", clean)
	}
}

func TestExtractConfusedFallbackMarker(t *testing.T) {
	clean, emo := Extract("I'm having trouble thinking right now. [confused]")
	if emo != Confused {
		t.Fatalf("expected confused, got %s", emo)
	}
	if clean == "" {
		t.Fatal("expected non-empty clean text")
	}
}

func TestMarkerRoundTrip(t *testing.T) {
	for e := range validEmotions {
		clean, emo := Extract(Encode("so that's your plan", e))
		if clean != "so that's your plan" {
			t.Fatalf("round-trip altered text for %s: %q", e, clean)
		}
		if emo != e {
			t.Fatalf("round-trip lost emotion: got %s want %s", emo, e)
		}
	}
}

func TestEncodeIdempotent(t *testing.T) {
	encoded := Encode(Encode("fine", Sad), Curious)
	matches := markerPattern.FindAllString(encoded, -1)
	if len(matches) != 1 {
		t.Fatalf("expected exactly one marker, got %d in %q", len(matches), encoded)
	}
	if matches[0] != "[curious]" {
		t.Fatalf("expected [curious] marker, got %s", matches[0])
	}
}

func TestEncodeInvalidEmotion(t *testing.T) {
	encoded := Encode("hello", Emotion("furious"))
	if encoded != "hello [neutral]" {
		t.Fatalf("expected default substitution, got %q", encoded)
	}
}

func TestEncodeConfusedNotValid(t *testing.T) {
	encoded := Encode("hello", Confused)
	if encoded != "hello [neutral]" {
		t.Fatalf("confused must not be encodable, got %q", encoded)
	}
}

func TestStrip(t *testing.T) {
	if got := Strip(" [sad] leave me be [annoyed] "); got != "leave me be" {
		t.Fatalf("unexpected stripped text: %q", got)
	}
}

func TestParse(t *testing.T) {
	if e, ok := Parse(" Evil "); !ok || e != Evil {
		t.Fatalf("Parse(Evil): got %s %v", e, ok)
	}
	if _, ok := Parse("confused"); ok {
		t.Fatal("confused must not parse as a valid encode target")
	}
	if _, ok := Parse("bogus"); ok {
		t.Fatal("bogus must not parse")
	}
}

func TestAnimationFile(t *testing.T) {
	if got := AnimationFile(Excited); got != "bouncing_excited.anim" {
		t.Fatalf("unexpected animation: %s", got)
	}
	if got := AnimationFile(Emotion("bogus")); got != "idle.anim" {
		t.Fatalf("expected idle fallback, got %s", got)
	}
}
