package speech

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"testing"

	"github.com/arcanaland/cantor/internal/ports"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	output []byte
}

func (r *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, call{name, args})
	return r.output, nil
}

func lookPathFor(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

const espeakVoices = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  en-us           --/M      English_(America)  gmw/en-US            (en 3)
 5  es              --/M      Spanish_(Spain)    roa/es
 5  es-419          --/M      Spanish_(Latin_America) roa/es-419      (es-mx 6)
`

const sayVoices = `Alex                en_US    # Most people recognize me by my voice.
Bad News            en_US    # The light you see at the end of the tunnel is the headlamp of a fast approaching train.
Monica              es_ES    # Hola, me llamo Mónica y soy una voz española.
Paulina             es_MX    # Hola, me llamo Paulina y soy una voz mexicana.
`

func TestParseEspeakVoices(t *testing.T) {
	got := parseEspeakVoices([]byte(espeakVoices))
	want := []ports.Voice{
		{Name: "English_(America)", Lang: "en-us"},
		{Name: "Spanish_(Spain)", Lang: "es"},
		{Name: "Spanish_(Latin_America)", Lang: "es-419"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseEspeakVoices = %+v, want %+v", got, want)
	}
}

func TestParseSayVoices(t *testing.T) {
	got := parseSayVoices([]byte(sayVoices))
	if len(got) != 4 {
		t.Fatalf("expected 4 voices, got %d: %+v", len(got), got)
	}
	if got[1].Name != "Bad News" {
		t.Errorf("expected multi-word name, got %q", got[1].Name)
	}
	if got[2] != (ports.Voice{Name: "Monica", Lang: "es-ES"}) {
		t.Errorf("unexpected voice: %+v", got[2])
	}
}

func TestEspeakSpeak(t *testing.T) {
	r := &fakeRunner{output: []byte(espeakVoices)}
	s, err := newCommandSpeaker("", "linux", lookPathFor("espeak-ng"), r.run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	voices, err := s.Voices(context.Background())
	if err != nil || len(voices) != 3 {
		t.Fatalf("expected 3 voices, got %d (err=%v)", len(voices), err)
	}

	err = s.Speak(context.Background(), ports.Utterance{Text: "El Gallo", Locale: "es-ES", Voice: voices[1]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := r.calls[len(r.calls)-1]
	if last.name != "/usr/bin/espeak-ng" || !reflect.DeepEqual(last.args, []string{"-v", "es", "El Gallo"}) {
		t.Errorf("unexpected invocation: %+v", last)
	}

	// No voice falls back to the locale's language
	_ = s.Speak(context.Background(), ports.Utterance{Text: "La Dama", Locale: "es-ES"})
	last = r.calls[len(r.calls)-1]
	if !reflect.DeepEqual(last.args, []string{"-v", "es", "La Dama"}) {
		t.Errorf("unexpected args for locale fallback: %v", last.args)
	}

	// No voice and no locale passes no -v
	_ = s.Speak(context.Background(), ports.Utterance{Text: "La Dama"})
	last = r.calls[len(r.calls)-1]
	if !reflect.DeepEqual(last.args, []string{"La Dama"}) {
		t.Errorf("unexpected args for default voice: %v", last.args)
	}
}

func TestPrimaryTag(t *testing.T) {
	tests := map[string]string{
		"es-ES": "es",
		"es_MX": "es",
		"ES":    "es",
		" ":     "",
		"":      "",
	}
	for in, want := range tests {
		if got := primaryTag(in); got != want {
			t.Errorf("primaryTag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSaySpeak(t *testing.T) {
	r := &fakeRunner{}
	s, err := newCommandSpeaker("", "darwin", lookPathFor("say", "espeak"), r.run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = s.Speak(context.Background(), ports.Utterance{Text: "La Sirena", Voice: ports.Voice{Name: "Paulina", Lang: "es-MX"}})
	if !reflect.DeepEqual(r.calls[0].args, []string{"-v", "Paulina", "La Sirena"}) {
		t.Errorf("unexpected args: %v", r.calls[0].args)
	}
}

func TestCustomSpeaker(t *testing.T) {
	r := &fakeRunner{}
	s, err := newCommandSpeaker("spd-say -l es", "linux", lookPathFor("spd-say"), r.run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	voices, err := s.Voices(context.Background())
	if err != nil || voices != nil {
		t.Errorf("expected no voices, got %v (err=%v)", voices, err)
	}

	_ = s.Speak(context.Background(), ports.Utterance{Text: "El Nopal"})
	if !reflect.DeepEqual(r.calls[0].args, []string{"-l", "es", "El Nopal"}) {
		t.Errorf("unexpected args: %v", r.calls[0].args)
	}
}

func TestNoSynthesizer(t *testing.T) {
	_, err := newCommandSpeaker("", "linux", lookPathFor(), (&fakeRunner{}).run)
	if !errors.Is(err, ErrNoSynthesizer) {
		t.Errorf("expected ErrNoSynthesizer, got %v", err)
	}
}
