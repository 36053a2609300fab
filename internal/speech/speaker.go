// Package speech speaks card names through the platform's command line
// synthesizer (espeak-ng/espeak on Linux, say on macOS).
package speech

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"github.com/arcanaland/cantor/internal/ports"
)

// ErrNoSynthesizer is returned when no supported synthesizer is installed.
var ErrNoSynthesizer = errors.New("no speech synthesizer found")

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// CommandSpeaker drives an external synthesizer.
type CommandSpeaker struct {
	bin   string
	kind  string // "espeak", "say" or "custom"
	extra []string
	run   runFunc
}

// NewCommandSpeaker picks a synthesizer. override, when set, is a command
// line that receives the text as its last argument.
func NewCommandSpeaker(override string) (*CommandSpeaker, error) {
	return newCommandSpeaker(override, runtime.GOOS, exec.LookPath, runCommand)
}

func newCommandSpeaker(override, goos string, lookPath func(string) (string, error), run runFunc) (*CommandSpeaker, error) {
	if fields := strings.Fields(override); len(fields) > 0 {
		bin, err := lookPath(fields[0])
		if err != nil {
			return nil, fmt.Errorf("speech command %q: %w", fields[0], err)
		}
		return &CommandSpeaker{bin: bin, kind: "custom", extra: fields[1:], run: run}, nil
	}

	candidates := []string{"espeak-ng", "espeak"}
	if goos == "darwin" {
		candidates = []string{"say"}
	}
	for _, name := range candidates {
		if bin, err := lookPath(name); err == nil {
			kind := "espeak"
			if name == "say" {
				kind = "say"
			}
			return &CommandSpeaker{bin: bin, kind: kind, run: run}, nil
		}
	}
	return nil, ErrNoSynthesizer
}

// Voices lists the installed voices. Custom commands report none.
func (s *CommandSpeaker) Voices(ctx context.Context) ([]ports.Voice, error) {
	switch s.kind {
	case "espeak":
		out, err := s.run(ctx, s.bin, "--voices")
		if err != nil {
			return nil, fmt.Errorf("list voices: %w", err)
		}
		return parseEspeakVoices(out), nil
	case "say":
		out, err := s.run(ctx, s.bin, "-v", "?")
		if err != nil {
			return nil, fmt.Errorf("list voices: %w", err)
		}
		return parseSayVoices(out), nil
	default:
		return nil, nil
	}
}

// Speak blocks until the synthesizer has finished. espeak falls back to the
// utterance locale when no voice was chosen; say only uses the locale through
// voice selection.
func (s *CommandSpeaker) Speak(ctx context.Context, u ports.Utterance) error {
	var args []string
	switch s.kind {
	case "espeak":
		if u.Voice.Lang != "" {
			args = append(args, "-v", u.Voice.Lang)
		} else if lang := primaryTag(u.Locale); lang != "" {
			args = append(args, "-v", lang)
		}
	case "say":
		if u.Voice.Name != "" {
			args = append(args, "-v", u.Voice.Name)
		}
	default:
		args = append(args, s.extra...)
	}
	args = append(args, u.Text)

	if _, err := s.run(ctx, s.bin, args...); err != nil {
		return fmt.Errorf("speak %q: %w", u.Text, err)
	}
	return nil
}

// primaryTag returns the language subtag of a locale: "es-ES" gives "es".
func primaryTag(locale string) string {
	lang, _, _ := strings.Cut(strings.TrimSpace(locale), "-")
	lang, _, _ = strings.Cut(lang, "_")
	return strings.ToLower(lang)
}

// parseEspeakVoices reads `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  es              --/M      Spanish_(Spain)    roa/es
func parseEspeakVoices(out []byte) []ports.Voice {
	var voices []ports.Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, ports.Voice{Name: fields[3], Lang: fields[1]})
	}
	return voices
}

var sayVoiceLine = regexp.MustCompile(`^(.+?)\s+([a-z]{2,3}[_-][A-Za-z0-9]+)\s+#`)

// parseSayVoices reads `say -v ?`:
//
//	Monica              es_ES    # Hola, me llamo Mónica.
func parseSayVoices(out []byte) []ports.Voice {
	var voices []ports.Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := sayVoiceLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		voices = append(voices, ports.Voice{
			Name: strings.TrimSpace(m[1]),
			Lang: strings.ReplaceAll(m[2], "_", "-"),
		})
	}
	return voices
}

// NopSpeaker is used when sound is muted.
type NopSpeaker struct{}

func (NopSpeaker) Voices(context.Context) ([]ports.Voice, error) { return nil, nil }
func (NopSpeaker) Speak(context.Context, ports.Utterance) error  { return nil }
