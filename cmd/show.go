package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcanaland/cantor/internal/assets"
	"github.com/arcanaland/cantor/internal/card"
	"github.com/arcanaland/cantor/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show [card]",
	Short: "Display a card with ANSI art",
	Long: `Show displays a Lotería card with its art rendered in the terminal.
Cards can be named by display name or by asset ID.

Examples:
  cantor show "El Corazón"
  cantor show el_corazon
  cantor show --deck ./my-deck la_rana`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}

		c, number, ok := card.Find(s.deck.Cards, args[0])
		if !ok {
			return fmt.Errorf("card not found in %s: %s", s.deck.Name, args[0])
		}

		path := card.AssetPath(s.imageDir, c.AssetID)
		prober := assets.ForImageDir(s.imageDir, &http.Client{Timeout: 5 * time.Second})
		present, _ := prober.Exists(cmd.Context(), path)

		var art string
		if present {
			art, err = newRenderer(s).Render(path)
			if err != nil {
				return fmt.Errorf("error rendering card art: %w", err)
			}
		}

		ui.DisplayCard(os.Stdout, ui.CardInfo{
			Card:     c,
			Number:   number,
			DeckName: s.deck.Name,
			Asset:    path,
			Present:  present,
		}, art, ui.TerminalWidth())

		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)
}
