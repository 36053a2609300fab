package ports

import "context"

// AssetProber reports whether a card's art exists at path.
// An error means the check itself failed; callers treat it as "missing".
type AssetProber interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// AudioPlayer plays sound files. PlayEffect is fire-and-forget.
type AudioPlayer interface {
	PlayEffect(path string) error
	// PlayMusic starts looping background music at volume in [0, 1].
	PlayMusic(path string, volume float64) error
}

// Voice is a speech synthesis voice.
type Voice struct {
	Name string
	Lang string // BCP 47-ish tag, e.g. "es-ES" or "es-419"
}

// Utterance is one request to speak text.
type Utterance struct {
	Text   string
	Locale string
	Voice  Voice // Zero value means the synthesizer's default
}

// Speaker is a speech synthesizer.
type Speaker interface {
	Voices(ctx context.Context) ([]Voice, error)
	Speak(ctx context.Context, u Utterance) error
}

// View is the host UI that consumes the caller's display intents.
type View interface {
	SetName(name string)
	// Reveal shows the art at path and applies the entry transition.
	Reveal(path string)
	Hide()
	ShowDraw()
	ShowRestart()
}
