package sequencer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/arcanaland/cantor/internal/card"
	"github.com/arcanaland/cantor/internal/deck"
	"github.com/arcanaland/cantor/internal/ports"
)

// ErrGameInProgress is returned by Restart while cards remain in the deck.
var ErrGameInProgress = errors.New("game still in progress")

// State is the draw sequencer state.
type State int

const (
	Idle State = iota
	Drawing
	AwaitingAsset
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case AwaitingAsset:
		return "awaiting_asset"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Timer is a pending scheduled call. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed calls.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Options are the fixed per-session parameters of the caller.
type Options struct {
	ImageDir    string
	CutSound    string
	Music       string
	MusicVolume float64
	Locale      string
	VoicePrefix string
	SpeakDelay  time.Duration
}

// Deps are the collaborators the sequencer drives. Player and Speaker may be nil.
type Deps struct {
	Prober  ports.AssetProber
	Player  ports.AudioPlayer
	Speaker ports.Speaker
	View    ports.View
	Clock   Clock
	Logger  *slog.Logger
}

// Sequencer runs the per-draw sequence: name, cut sound, delayed speech and
// asynchronous art reveal.
type Sequencer struct {
	mu    sync.Mutex
	deck  *deck.Deck
	opts  Options
	deps  Deps
	state State

	// seq increments on every draw and restart; probe results carrying an
	// older value are dropped.
	seq         uint64
	cancelProbe context.CancelFunc

	timersMu sync.Mutex
	timers   map[uint64]Timer

	musicOnce sync.Once
	voiceOnce sync.Once
	voice     ports.Voice

	wg sync.WaitGroup
}

// New creates a sequencer over d. The deck is owned by the sequencer from here on.
func New(d *deck.Deck, deps Deps, opts Options) *Sequencer {
	if deps.Clock == nil {
		deps.Clock = realClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Sequencer{
		deck:   d,
		opts:   opts,
		deps:   deps,
		timers: make(map[uint64]Timer),
	}
	if d.IsExhausted() {
		s.state = Exhausted
	}
	return s
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns the number of undrawn cards.
func (s *Sequencer) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Remaining()
}

// Called returns the cards drawn so far, oldest first.
func (s *Sequencer) Called() []card.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Drawn()
}

// Controls returns which affordances the host should offer.
func (s *Sequencer) Controls() Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ControlsFor(s.deck)
}

// Draw pops the next card and starts its sequence. It returns as soon as the
// name is shown and the sound started; the art is revealed when the probe
// resolves and the name is spoken after SpeakDelay.
// Drawing while a previous probe is pending supersedes that probe.
func (s *Sequencer) Draw(ctx context.Context) (card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Exhausted || s.deck.IsExhausted() {
		return card.Card{}, deck.ErrEmptyDeck
	}

	s.state = Drawing
	s.startMusic()

	c, err := s.deck.Draw()
	if err != nil {
		return card.Card{}, err
	}
	s.seq++
	seq := s.seq
	path := card.AssetPath(s.opts.ImageDir, c.AssetID)

	s.deps.Logger.Debug("card drawn", "card", c.Name, "asset", path, "remaining", s.deck.Remaining(), "seq", seq)

	s.deps.View.SetName(c.Name)
	s.playEffect()
	s.scheduleSpeech(ctx, seq, c.Name)

	if s.cancelProbe != nil {
		s.cancelProbe()
	}
	probeCtx, cancel := context.WithCancel(ctx)
	s.cancelProbe = cancel
	s.state = AwaitingAsset

	s.wg.Add(1)
	go s.probe(probeCtx, seq, path)

	return c, nil
}

// Restart starts a new game once the deck is exhausted. Pending speech is
// cancelled and pending probes are invalidated.
func (s *Sequencer) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.deck.IsExhausted() {
		return ErrGameInProgress
	}

	s.seq++
	if s.cancelProbe != nil {
		s.cancelProbe()
		s.cancelProbe = nil
	}
	s.stopTimers()

	s.deck.Reset()
	s.state = Idle

	s.deps.View.Hide()
	s.deps.View.SetName("")
	s.deps.View.ShowDraw()

	s.deps.Logger.Debug("game restarted", "remaining", s.deck.Remaining())
	return nil
}

// Wait blocks until pending probes and speech have finished.
func (s *Sequencer) Wait() {
	s.wg.Wait()
}

func (s *Sequencer) probe(ctx context.Context, seq uint64, path string) {
	defer s.wg.Done()

	exists, err := s.deps.Prober.Exists(ctx, path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.deps.Logger.Debug("discarding stale asset check", "asset", path, "seq", seq, "current", s.seq)
		return
	}
	if s.cancelProbe != nil {
		s.cancelProbe()
		s.cancelProbe = nil
	}

	if err != nil {
		s.deps.Logger.Debug("asset unavailable", "asset", path, "error", err)
		exists = false
	}

	if exists {
		s.deps.View.Reveal(path)
	} else {
		s.deps.View.Hide()
	}

	if s.deck.IsExhausted() {
		s.state = Exhausted
		s.deps.View.ShowRestart()
		return
	}
	s.state = Idle
}

// startMusic starts background music on the first draw. Called with mu held.
func (s *Sequencer) startMusic() {
	if s.deps.Player == nil || s.opts.Music == "" {
		return
	}
	s.musicOnce.Do(func() {
		if err := s.deps.Player.PlayMusic(s.opts.Music, s.opts.MusicVolume); err != nil {
			s.deps.Logger.Debug("background music failed", "path", s.opts.Music, "error", err)
		}
	})
}

func (s *Sequencer) playEffect() {
	if s.deps.Player == nil || s.opts.CutSound == "" {
		return
	}
	if err := s.deps.Player.PlayEffect(s.opts.CutSound); err != nil {
		s.deps.Logger.Debug("cut sound failed", "path", s.opts.CutSound, "error", err)
	}
}

func (s *Sequencer) scheduleSpeech(ctx context.Context, seq uint64, text string) {
	if s.deps.Speaker == nil {
		return
	}

	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	s.wg.Add(1)
	s.timers[seq] = s.deps.Clock.AfterFunc(s.opts.SpeakDelay, func() {
		defer s.wg.Done()

		s.timersMu.Lock()
		_, pending := s.timers[seq]
		delete(s.timers, seq)
		s.timersMu.Unlock()
		if !pending {
			return
		}

		u := ports.Utterance{Text: text, Locale: s.opts.Locale, Voice: s.selectedVoice(ctx)}
		if err := s.deps.Speaker.Speak(ctx, u); err != nil {
			s.deps.Logger.Debug("speech failed", "text", text, "error", err)
		}
	})
}

// stopTimers cancels all pending speech.
func (s *Sequencer) stopTimers() {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	for seq, t := range s.timers {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.timers, seq)
	}
}

// selectedVoice resolves the preferred voice once per session.
func (s *Sequencer) selectedVoice(ctx context.Context) ports.Voice {
	s.voiceOnce.Do(func() {
		voices, err := s.deps.Speaker.Voices(ctx)
		if err != nil {
			s.deps.Logger.Debug("listing voices failed", "error", err)
			return
		}
		if v, ok := SelectVoice(voices, s.opts.VoicePrefix); ok {
			s.voice = v
			s.deps.Logger.Debug("voice selected", "voice", v.Name, "lang", v.Lang)
		}
	})
	return s.voice
}

// SelectVoice returns the first voice whose language tag starts with prefix.
// ok is false when none matches and the synthesizer default should be used.
func SelectVoice(voices []ports.Voice, prefix string) (ports.Voice, bool) {
	if prefix == "" {
		return ports.Voice{}, false
	}
	prefix = strings.ToLower(prefix)
	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Lang), prefix) {
			return v, true
		}
	}
	return ports.Voice{}, false
}
