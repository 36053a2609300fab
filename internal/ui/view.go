package ui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	colorize "github.com/fatih/color"
)

// TerminalView renders the caller's intents to a terminal.
type TerminalView struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *ArtRenderer
	logger   *slog.Logger

	// pending is set while the named card's art has not been resolved
	pending bool

	// FrameDelay paces the reveal transition; zero draws the art at once.
	FrameDelay time.Duration
}

func NewTerminalView(out io.Writer, renderer *ArtRenderer, logger *slog.Logger) *TerminalView {
	if logger == nil {
		logger = slog.Default()
	}
	return &TerminalView{
		out:        out,
		renderer:   renderer,
		logger:     logger,
		FrameDelay: 8 * time.Millisecond,
	}
}

func (v *TerminalView) SetName(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if name == "" {
		// Cleared for a new game
		v.pending = false
		fmt.Fprintln(v.out)
		fmt.Fprintln(v.out, colorize.HiBlackString("  ────────  new game  ────────"))
		fmt.Fprintln(v.out)
		return
	}
	v.pending = true
	fmt.Fprintln(v.out)
	fmt.Fprintln(v.out, "  "+colorize.New(colorize.FgHiYellow, colorize.Bold).Sprint(name))
}

// Reveal draws the card art falling into place row by row.
func (v *TerminalView) Reveal(path string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pending = false
	art, err := v.renderer.Render(path)
	if err != nil {
		// An unreadable image is shown the same as a missing one
		v.logger.Debug("render failed", "path", path, "error", err)
		v.hide()
		return
	}

	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	for _, line := range lines {
		fmt.Fprintln(v.out, "  "+line)
		if v.FrameDelay > 0 {
			time.Sleep(v.FrameDelay)
		}
	}
}

// Hide marks the current card as having no art. It prints nothing once the
// card's art has already been resolved.
func (v *TerminalView) Hide() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.pending {
		return
	}
	v.pending = false
	v.hide()
}

func (v *TerminalView) hide() {
	fmt.Fprintln(v.out, "  "+colorize.HiBlackString("(no image)"))
}

func (v *TerminalView) ShowDraw() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, colorize.CyanString("  [enter] draw a card · [l] list called · [q] quit"))
}

func (v *TerminalView) ShowRestart() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out)
	fmt.Fprintln(v.out, colorize.HiGreenString("  All cards have been called!"))
	fmt.Fprintln(v.out, colorize.CyanString("  [r] play again · [q] quit"))
}

// Printf writes a free-form line under the view's lock.
func (v *TerminalView) Printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

// CRLFWriter translates "\n" to "\r\n" for terminals in raw mode.
type CRLFWriter struct {
	W io.Writer
}

func (w CRLFWriter) Write(p []byte) (int, error) {
	s := strings.ReplaceAll(string(p), "\n", "\r\n")
	if _, err := io.WriteString(w.W, s); err != nil {
		return 0, err
	}
	return len(p), nil
}
