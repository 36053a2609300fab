package sequencer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/arcanaland/cantor/internal/card"
	"github.com/arcanaland/cantor/internal/deck"
	"github.com/arcanaland/cantor/internal/ports"
)

type fakeView struct {
	mu     sync.Mutex
	events []string
}

func (v *fakeView) record(e string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, e)
}

func (v *fakeView) SetName(name string) { v.record("name:" + name) }
func (v *fakeView) Reveal(path string)  { v.record("reveal:" + path) }
func (v *fakeView) Hide()               { v.record("hide") }
func (v *fakeView) ShowDraw()           { v.record("show_draw") }
func (v *fakeView) ShowRestart()        { v.record("show_restart") }

func (v *fakeView) Events() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

func (v *fakeView) has(e string) bool {
	for _, got := range v.Events() {
		if got == e {
			return true
		}
	}
	return false
}

type fakeProber struct {
	mu     sync.Mutex
	exists map[string]bool
	err    error
	gates  map[string]chan struct{}

	// ignoreCancel makes gated checks wait for their gate like a stat call
	// that cannot be interrupted.
	ignoreCancel bool
}

func (p *fakeProber) Exists(ctx context.Context, path string) (bool, error) {
	p.mu.Lock()
	gate := p.gates[path]
	ok := p.exists[path]
	err := p.err
	ignoreCancel := p.ignoreCancel
	p.mu.Unlock()

	if gate != nil && ignoreCancel {
		<-gate
		return ok, err
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return ok, err
}

type fakePlayer struct {
	mu      sync.Mutex
	effects []string
	music   []string
}

func (p *fakePlayer) PlayEffect(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.effects = append(p.effects, path)
	return nil
}

func (p *fakePlayer) PlayMusic(path string, volume float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.music = append(p.music, fmt.Sprintf("%s@%.1f", path, volume))
	return nil
}

type fakeSpeaker struct {
	mu     sync.Mutex
	voices []ports.Voice
	spoken []ports.Utterance
}

func (s *fakeSpeaker) Voices(context.Context) ([]ports.Voice, error) {
	return s.voices, nil
}

func (s *fakeSpeaker) Speak(_ context.Context, u ports.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, u)
	return nil
}

func (s *fakeSpeaker) Spoken() []ports.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Utterance(nil), s.spoken...)
}

// manualClock fires scheduled calls only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock *manualClock
	at    time.Duration
	f     func()
	done  bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.done && t.at <= c.now {
			t.done = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

type harness struct {
	seq     *Sequencer
	view    *fakeView
	prober  *fakeProber
	player  *fakePlayer
	speaker *fakeSpeaker
	clock   *manualClock
}

func newHarness(cards []card.Card) *harness {
	h := &harness{
		view:    &fakeView{},
		prober:  &fakeProber{exists: map[string]bool{}, gates: map[string]chan struct{}{}},
		player:  &fakePlayer{},
		speaker: &fakeSpeaker{voices: []ports.Voice{{Name: "english", Lang: "en-US"}, {Name: "spanish", Lang: "es-ES"}}},
		clock:   &manualClock{},
	}
	h.seq = New(deck.New(cards, deck.DefaultRNG{}), Deps{
		Prober:  h.prober,
		Player:  h.player,
		Speaker: h.speaker,
		View:    h.view,
		Clock:   h.clock,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, Options{
		ImageDir:    "images/",
		CutSound:    "sounds/cut.wav",
		Music:       "sounds/music.ogg",
		MusicVolume: 0.2,
		Locale:      "es-ES",
		VoicePrefix: "es",
		SpeakDelay:  350 * time.Millisecond,
	})
	return h
}

// settle fires pending speech and waits for every callback to finish.
func (h *harness) settle() {
	h.clock.Advance(time.Second)
	h.seq.Wait()
}

func TestDrawRevealsExistingAsset(t *testing.T) {
	h := newHarness([]card.Card{card.New("El Sol"), card.New("La Luna")})
	h.prober.exists["images/el_sol.jpg"] = true
	h.prober.exists["images/la_luna.jpg"] = true

	c, err := h.seq.Draw(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !h.view.has("name:" + c.Name) {
		t.Errorf("expected name to be shown, events: %v", h.view.Events())
	}
	if len(h.player.effects) != 1 || h.player.effects[0] != "sounds/cut.wav" {
		t.Errorf("expected cut sound, got %v", h.player.effects)
	}
	if len(h.speaker.Spoken()) != 0 {
		t.Error("speech fired before its delay")
	}

	h.clock.Advance(349 * time.Millisecond)
	if len(h.speaker.Spoken()) != 0 {
		t.Error("speech fired before 350ms")
	}
	h.clock.Advance(time.Millisecond)
	h.seq.Wait()

	spoken := h.speaker.Spoken()
	if len(spoken) != 1 {
		t.Fatalf("expected one utterance, got %d", len(spoken))
	}
	if spoken[0].Text != c.Name || spoken[0].Locale != "es-ES" || spoken[0].Voice.Name != "spanish" {
		t.Errorf("unexpected utterance: %+v", spoken[0])
	}

	if !h.view.has("reveal:images/" + c.AssetID + ".jpg") {
		t.Errorf("expected reveal, events: %v", h.view.Events())
	}
	if h.seq.State() != Idle {
		t.Errorf("expected idle, got %s", h.seq.State())
	}
}

func TestDrawHidesMissingAsset(t *testing.T) {
	h := newHarness(card.Catalog())

	if _, err := h.seq.Draw(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.settle()

	events := h.view.Events()
	if events[len(events)-1] != "hide" {
		t.Errorf("expected image hidden, events: %v", events)
	}
	if h.seq.State() != Idle {
		t.Errorf("expected idle, got %s", h.seq.State())
	}

	// Still usable
	if _, err := h.seq.Draw(context.Background()); err != nil {
		t.Fatalf("second draw: unexpected error: %v", err)
	}
	h.settle()
	if h.seq.Remaining() != 52 {
		t.Errorf("expected 52 remaining, got %d", h.seq.Remaining())
	}
}

func TestProbeErrorTreatedAsMissing(t *testing.T) {
	h := newHarness([]card.Card{card.New("El Sol"), card.New("La Luna")})
	h.prober.exists["images/el_sol.jpg"] = true
	h.prober.exists["images/la_luna.jpg"] = true
	h.prober.err = errors.New("connection refused")

	if _, err := h.seq.Draw(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.settle()

	for _, e := range h.view.Events() {
		if e == "reveal:images/el_sol.jpg" || e == "reveal:images/la_luna.jpg" {
			t.Errorf("expected no reveal on probe error, events: %v", h.view.Events())
		}
	}
	if !h.view.has("hide") {
		t.Error("expected image hidden")
	}
}

func TestLastCardExhaustsDeck(t *testing.T) {
	h := newHarness([]card.Card{card.New("La Rana")})

	c, err := h.seq.Draw(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "La Rana" {
		t.Errorf("expected La Rana, got %s", c.Name)
	}
	h.settle()

	if h.seq.State() != Exhausted {
		t.Errorf("expected exhausted, got %s", h.seq.State())
	}
	if !h.view.has("show_restart") {
		t.Errorf("expected restart to be offered, events: %v", h.view.Events())
	}
	if ctl := h.seq.Controls(); ctl.Draw || !ctl.Restart {
		t.Errorf("unexpected controls: %+v", ctl)
	}

	before := len(h.view.Events())
	if _, err := h.seq.Draw(context.Background()); !errors.Is(err, deck.ErrEmptyDeck) {
		t.Errorf("expected ErrEmptyDeck, got %v", err)
	}
	if len(h.view.Events()) != before {
		t.Error("draw on an exhausted deck touched the view")
	}
}

func TestRestartAfterExhaustion(t *testing.T) {
	h := newHarness(card.Catalog())

	if err := h.seq.Restart(); !errors.Is(err, ErrGameInProgress) {
		t.Errorf("expected ErrGameInProgress, got %v", err)
	}

	for range 54 {
		if _, err := h.seq.Draw(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		h.settle()
	}
	if len(h.seq.Called()) != 54 {
		t.Errorf("expected 54 called cards, got %d", len(h.seq.Called()))
	}

	if err := h.seq.Restart(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.seq.Remaining() != 54 {
		t.Errorf("expected 54 remaining, got %d", h.seq.Remaining())
	}
	if h.seq.State() != Idle {
		t.Errorf("expected idle, got %s", h.seq.State())
	}
	if ctl := h.seq.Controls(); !ctl.Draw || ctl.Restart {
		t.Errorf("unexpected controls: %+v", ctl)
	}
	if len(h.seq.Called()) != 0 {
		t.Errorf("expected called list cleared, got %d", len(h.seq.Called()))
	}

	events := h.view.Events()
	tail := events[len(events)-3:]
	want := []string{"hide", "name:", "show_draw"}
	for i := range want {
		if tail[i] != want[i] {
			t.Errorf("restart event %d: expected %s, got %s", i, want[i], tail[i])
		}
	}
}

func TestRestartCancelsPendingSpeech(t *testing.T) {
	h := newHarness([]card.Card{card.New("La Rana")})

	if _, err := h.seq.Draw(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Let the probe resolve without firing the speech timer
	waitFor(t, func() bool { return h.seq.State() == Exhausted })

	if err := h.seq.Restart(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.settle()

	if n := len(h.speaker.Spoken()); n != 0 {
		t.Errorf("expected cancelled speech, got %d utterances", n)
	}
}

func TestStaleProbeDiscarded(t *testing.T) {
	tests := []struct {
		name         string
		ignoreCancel bool
	}{
		{"cancelled check returns early", false},
		{"check finishes after newer reveal", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness([]card.Card{card.New("El Sol"), card.New("La Luna"), card.New("La Rana")})
			for _, id := range []string{"el_sol", "la_luna", "la_rana"} {
				h.prober.exists["images/"+id+".jpg"] = true
			}
			h.prober.ignoreCancel = tt.ignoreCancel

			// The first draw's asset check hangs until released
			gate := make(chan struct{})
			first, err := drawWithGate(h, gate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			second, err := h.seq.Draw(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			secondReveal := "reveal:images/" + second.AssetID + ".jpg"
			waitFor(t, func() bool { return h.view.has(secondReveal) })

			// The first check now resolves with exists=true, after the newer reveal
			close(gate)
			h.settle()

			events := h.view.Events()
			if events[len(events)-1] != secondReveal {
				t.Errorf("expected newest draw to win, events: %v", events)
			}
			if h.view.has("reveal:images/" + first.AssetID + ".jpg") {
				t.Errorf("stale asset check was applied, events: %v", events)
			}
			if h.view.has("hide") {
				t.Errorf("stale asset check hid the newer card, events: %v", events)
			}
			if h.seq.State() != Idle {
				t.Errorf("expected idle, got %s", h.seq.State())
			}
		})
	}
}

// drawWithGate gates the asset check of whichever card comes off the deck next.
func drawWithGate(h *harness, gate chan struct{}) (card.Card, error) {
	h.prober.mu.Lock()
	for path := range h.prober.exists {
		h.prober.gates[path] = gate
	}
	h.prober.mu.Unlock()

	c, err := h.seq.Draw(context.Background())

	h.prober.mu.Lock()
	for path := range h.prober.gates {
		if path != "images/"+c.AssetID+".jpg" {
			delete(h.prober.gates, path)
		}
	}
	h.prober.mu.Unlock()
	return c, err
}

func TestMusicStartsOnce(t *testing.T) {
	h := newHarness(card.Catalog())

	for range 3 {
		if _, err := h.seq.Draw(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	h.settle()

	if len(h.player.music) != 1 || h.player.music[0] != "sounds/music.ogg@0.2" {
		t.Errorf("expected music started once, got %v", h.player.music)
	}
	if len(h.player.effects) != 3 {
		t.Errorf("expected 3 cut sounds, got %d", len(h.player.effects))
	}
}

func TestSelectVoice(t *testing.T) {
	voices := []ports.Voice{
		{Name: "Alex", Lang: "en-US"},
		{Name: "Paulina", Lang: "es-MX"},
		{Name: "Monica", Lang: "es-ES"},
	}

	v, ok := SelectVoice(voices, "es")
	if !ok || v.Name != "Paulina" {
		t.Errorf("expected Paulina, got %+v (ok=%v)", v, ok)
	}

	v, ok = SelectVoice(voices, "ES-es")
	if !ok || v.Name != "Monica" {
		t.Errorf("expected Monica, got %+v (ok=%v)", v, ok)
	}

	if _, ok := SelectVoice(voices, "fr"); ok {
		t.Error("expected no match for fr")
	}
	if _, ok := SelectVoice(nil, "es"); ok {
		t.Error("expected no match for empty voice list")
	}
}

func TestControlsFor(t *testing.T) {
	d := deck.New([]card.Card{card.New("El Sol")}, deck.DefaultRNG{})
	if ctl := ControlsFor(d); !ctl.Draw || ctl.Restart {
		t.Errorf("fresh deck: unexpected controls %+v", ctl)
	}
	if _, err := d.Draw(); err != nil {
		t.Fatal(err)
	}
	if ctl := ControlsFor(d); ctl.Draw || !ctl.Restart {
		t.Errorf("exhausted deck: unexpected controls %+v", ctl)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
