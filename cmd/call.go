package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	colorize "github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cantor/internal/ui"
)

// callView drops the draw/restart prompts, which have no meaning when the
// caller runs unattended.
type callView struct {
	*ui.TerminalView
}

func (callView) ShowDraw()    {}
func (callView) ShowRestart() {}

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Call cards automatically at a fixed pace",
	Long: `Call runs the caller unattended, drawing a card every interval until
the deck is exhausted or --count cards have been called.

Examples:
  cantor call
  cantor call --interval 5s --count 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		count, _ := cmd.Flags().GetInt("count")
		if interval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", interval)
		}

		s, err := loadSession(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		logger := s.logger(os.Stderr).With("session", uuid.NewString())
		view := ui.NewTerminalView(os.Stdout, newRenderer(s), logger)
		g := newGame(cmd, s, callView{view}, logger)
		// Closed before stop so the last card is still spoken
		defer g.Close()

		total := len(s.deck.Cards)
		if count <= 0 || count > total {
			count = total
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 1; i <= count; i++ {
			if _, err := g.seq.Draw(ctx); err != nil {
				return err
			}
			view.Printf("  %s\n", colorize.HiBlackString("%d of %d called", i, total))

			if i == count {
				break
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}

		return nil
	},
}

func init() {
	RootCmd.AddCommand(callCmd)
	addGameFlags(callCmd)
	callCmd.Flags().Duration("interval", 4*time.Second, "Pause between cards")
	callCmd.Flags().IntP("count", "n", 0, "Number of cards to call (0 = whole deck)")
}
