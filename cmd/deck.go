package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cantor/internal/assets"
	"github.com/arcanaland/cantor/internal/card"
	"github.com/arcanaland/cantor/internal/config"
	"github.com/arcanaland/cantor/internal/deck"
)

// deckCmd represents the deck command group
var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage Lotería decks in your deck library",
	Long:  `Commands for managing Lotería decks in your deck library.`,
}

// deckListCmd represents the deck list command
var deckListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List available decks in your deck library",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		printDeckLine(deck.BuiltinID, deck.Builtin(), cfg.DefaultDeck)

		libraryPath := config.GetDeckLibraryPath()
		if resolved, err := filepath.EvalSymlinks(libraryPath); err == nil {
			libraryPath = resolved
		}

		entries, err := os.ReadDir(libraryPath)
		if os.IsNotExist(err) {
			fmt.Println()
			fmt.Println("Run 'cantor deck init' to create a deck library at", libraryPath)
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading deck library: %w", err)
		}

		for _, entry := range entries {
			// Resolve the symbolic link or regular entry
			entryPath := filepath.Join(libraryPath, entry.Name())
			fileInfo, err := os.Stat(entryPath)
			if err != nil || !fileInfo.IsDir() {
				continue
			}

			d, err := deck.LoadDeck(entryPath)
			if err != nil {
				// Not a valid deck, skip
				continue
			}
			printDeckLine(entry.Name(), d, cfg.DefaultDeck)
		}
		return nil
	},
}

func printDeckLine(name string, d *deck.Info, defaultDeck string) {
	if name == defaultDeck {
		fmt.Printf("* %s (%s, %d cards) [DEFAULT]\n", name, d.Name, len(d.Cards))
	} else {
		fmt.Printf("  %s (%s, %d cards)\n", name, d.Name, len(d.Cards))
	}
}

// deckCardsCmd lists the cards of a deck with their art status
var deckCardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List the cards of a deck and whether their art is present",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}

		prober := assets.ForImageDir(s.imageDir, &http.Client{Timeout: 5 * time.Second})
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		missing := 0
		for i, c := range s.deck.Cards {
			path := card.AssetPath(s.imageDir, c.AssetID)
			ok, err := prober.Exists(ctx, path)
			mark := colorize.GreenString("✓")
			if !ok || err != nil {
				mark = colorize.RedString("✗")
				missing++
			}
			fmt.Printf("%s %2d  %-18s %s\n", mark, i+1, c.Name, colorize.HiBlackString(c.AssetID))
		}

		fmt.Println()
		fmt.Printf("%d cards, %d without art in %s\n", len(s.deck.Cards), missing, s.imageDir)
		return nil
	},
}

// deckSetDefaultCmd represents the deck set-default command
var deckSetDefaultCmd = &cobra.Command{
	Use:   "set-default [deck_name]",
	Short: "Set the default deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deckName := args[0]

		// Make sure the deck loads before saving it
		if _, err := resolveDeck(deckName); err != nil {
			return err
		}

		if err := config.SetDefaultDeck(deckName); err != nil {
			return fmt.Errorf("error setting default deck: %w", err)
		}

		fmt.Printf("Default deck set to: %s\n", deckName)
		return nil
	},
}

// deckInitCmd represents the deck init command
var deckInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the deck library and image directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryPath := config.GetDeckLibraryPath()
		if err := os.MkdirAll(libraryPath, 0755); err != nil {
			return fmt.Errorf("error creating deck library: %w", err)
		}
		fmt.Println("Deck library initialized at:", libraryPath)

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}
		fmt.Println("Config file initialized at:", config.GetConfigFilePath())

		if !config.IsRemote(cfg.ImageDir) {
			if err := os.MkdirAll(cfg.ImageDir, 0755); err != nil {
				return fmt.Errorf("error creating image directory: %w", err)
			}
			fmt.Println("Copy card art named like el_gallo.jpg into:", cfg.ImageDir)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deckCmd)
	deckCmd.AddCommand(deckListCmd)
	deckCmd.AddCommand(deckCardsCmd)
	deckCmd.AddCommand(deckSetDefaultCmd)
	deckCmd.AddCommand(deckInitCmd)
}
