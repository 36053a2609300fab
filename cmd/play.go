package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/cantor/internal/deck"
	"github.com/arcanaland/cantor/internal/ui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game, drawing a card each time you press enter",
	Long: `Play starts an interactive game. Each key press draws the next card:
its name is shown and spoken, a cut sound plays and the card art is drawn
if it exists in the image directory.

Keys:
  enter, space  draw the next card
  l             list the cards called so far
  r             start over once every card has been called
  q             quit

Examples:
  cantor play
  cantor play --images https://example.com/loteria/
  cantor play --deck don-clemente --mute`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	RootCmd.AddCommand(playCmd)
	addGameFlags(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	var logOut io.Writer = os.Stderr
	raw := false

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("error preparing terminal: %w", err)
		}
		defer term.Restore(fd, oldState)
		raw = true
		out = ui.CRLFWriter{W: os.Stdout}
		logOut = ui.CRLFWriter{W: os.Stderr}
	}

	logger := s.logger(logOut).With("session", uuid.NewString())
	view := ui.NewTerminalView(out, newRenderer(s), logger)
	g := newGame(cmd, s, view, logger)
	defer g.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Debug("game started", "deck", s.deck.ID, "cards", len(s.deck.Cards), "images", s.imageDir)

	view.Printf("\n  %s · %d cards\n\n", colorize.HiWhiteString(s.deck.Name), len(s.deck.Cards))
	view.ShowDraw()

	keys := readKeys(os.Stdin, raw)
	for {
		var key byte
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			key = k
		}

		switch key {
		case '\r', '\n', ' ':
			if !g.seq.Controls().Draw {
				continue
			}
			if _, err := g.seq.Draw(ctx); err != nil {
				if errors.Is(err, deck.ErrEmptyDeck) {
					continue
				}
				return err
			}
			view.Printf("  %s\n", colorize.HiBlackString("%d of %d called", len(s.deck.Cards)-g.seq.Remaining(), len(s.deck.Cards)))
		case 'l':
			listCalled(view, g)
		case 'r':
			if !g.seq.Controls().Restart {
				continue
			}
			if err := g.seq.Restart(); err != nil {
				return err
			}
		case 'q', 3, 4: // q, ctrl-c, ctrl-d
			return nil
		}
	}
}

func listCalled(view *ui.TerminalView, g *game) {
	called := g.seq.Called()
	if len(called) == 0 {
		view.Printf("  %s\n", colorize.HiBlackString("No cards called yet"))
		return
	}

	names := make([]string, len(called))
	for i, c := range called {
		names[i] = c.Name
	}
	view.Printf("\n  %s %s\n\n", colorize.CyanString("Called:"), strings.Join(names, ", "))
}

// readKeys delivers key presses. In raw mode every byte is a key; otherwise
// each input line is one key, with an empty line meaning enter.
func readKeys(r io.Reader, raw bool) <-chan byte {
	keys := make(chan byte)
	go func() {
		defer close(keys)
		if raw {
			buf := make([]byte, 1)
			for {
				n, err := r.Read(buf)
				if err != nil {
					return
				}
				if n == 1 {
					keys <- buf[0]
				}
			}
		}

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.ToLower(strings.TrimSpace(sc.Text()))
			if line == "" {
				keys <- '\n'
				continue
			}
			keys <- line[0]
		}
	}()
	return keys
}
