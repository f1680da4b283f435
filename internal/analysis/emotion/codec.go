// Package emotion centralizes the emotion marker vocabulary and the
// detection, stripping and encoding of markers embedded in model output.
package emotion

import (
	"regexp"
	"strings"
)

// Emotion is one of the fixed marker names the companion can express.
type Emotion string

const (
	Excited     Emotion = "excited"
	Evil        Emotion = "evil"
	Embarrassed Emotion = "embarrassed"
	Annoyed     Emotion = "annoyed"
	Curious     Emotion = "curious"
	Triumphant  Emotion = "triumphant"
	Sad         Emotion = "sad"
	Neutral     Emotion = "neutral"

	// Confused marks degraded replies substituted when the backing model is
	// unreachable. It is recognized on extraction so the failure stays visible
	// downstream, but it is never a valid encoding target.
	Confused Emotion = "confused"
)

// Default is the emotion assumed when a reply carries no marker.
const Default = Neutral

// markerPattern matches `[name]` anywhere in text, case-insensitively.
var markerPattern = regexp.MustCompile(`(?i)\[(excited|evil|embarrassed|annoyed|curious|triumphant|sad|neutral|confused)\]`)

var validEmotions = map[Emotion]struct{}{
	Excited:     {},
	Evil:        {},
	Embarrassed: {},
	Annoyed:     {},
	Curious:     {},
	Triumphant:  {},
	Sad:         {},
	Neutral:     {},
}

var defaultResponses = map[Emotion]string{
	Excited:     "This is so exciting!",
	Evil:        "I have sinister plans for this world...",
	Embarrassed: "Oh, um... *fidgets nervously*",
	Annoyed:     "Hmph! How annoying.",
	Curious:     "Hmm, that's interesting...",
	Triumphant:  "Ha! Just as I planned!",
	Sad:         "That makes me feel sad...",
	Neutral:     "I see. Interesting.",
}

var animations = map[Emotion]string{
	Excited:     "bouncing_excited.anim",
	Evil:        "evil_scheme.anim",
	Embarrassed: "blushing.anim",
	Annoyed:     "pouting.anim",
	Curious:     "head_tilt.anim",
	Triumphant:  "victory_pose.anim",
	Sad:         "sad_eyes.anim",
	Neutral:     "idle.anim",
	Confused:    "dizzy.anim",
}

// genericResponse covers emotions without a canned reply.
const genericResponse = "I see."

// Valid reports whether e may be used as an encoding target.
func Valid(e Emotion) bool {
	_, ok := validEmotions[e]
	return ok
}

// Known reports whether e belongs to the extraction vocabulary, which also
// includes the degraded-mode Confused marker.
func Known(e Emotion) bool {
	return Valid(e) || e == Confused
}

// Parse normalizes a raw emotion name. The second return is false when the
// name is not a valid encoding target.
func Parse(raw string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(raw)))
	return e, Valid(e)
}

// Extract scans text for emotion markers and returns the cleaned text along
// with the detected emotion. When multiple markers are present the last one
// wins, so models that self-correct mid-reply end up with their final choice.
// All markers are removed and the ends of the text are trimmed. If nothing is
// left after stripping, a canned response for the detected emotion is
// substituted so downstream consumers never see an empty reply.
func Extract(text string) (string, Emotion) {
	detected := Default
	clean := strings.TrimSpace(text)

	matches := markerPattern.FindAllStringSubmatch(text, -1)
	if len(matches) > 0 {
		detected = Emotion(strings.ToLower(matches[len(matches)-1][1]))
		clean = strings.TrimSpace(markerPattern.ReplaceAllString(text, ""))
	}

	if clean == "" {
		clean = DefaultResponse(detected)
	}
	return clean, detected
}

// Strip removes every emotion marker from text and trims the ends. Used when
// already-classified text is passed on and the marker must not leak through.
func Strip(text string) string {
	return strings.TrimSpace(markerPattern.ReplaceAllString(text, ""))
}

// Encode strips any existing markers from text and appends exactly one marker
// for e. Invalid emotions are replaced by the default, and re-encoding an
// already-encoded string replaces the marker rather than duplicating it.
func Encode(text string, e Emotion) string {
	if !Valid(e) {
		e = Default
	}
	return Strip(text) + " [" + string(e) + "]"
}

// DefaultResponse returns the canned reply for an emotion, falling back to a
// generic phrase for emotions without one.
func DefaultResponse(e Emotion) string {
	if resp, ok := defaultResponses[e]; ok {
		return resp
	}
	return genericResponse
}

// AnimationFile returns the animation asset for an emotion, falling back to
// the default emotion's idle animation.
func AnimationFile(e Emotion) string {
	if file, ok := animations[e]; ok {
		return file
	}
	return animations[Default]
}
