package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcanaland/cantor/internal/config"
	"github.com/arcanaland/cantor/internal/deck"
	"github.com/arcanaland/cantor/internal/logging"
)

// session bundles what every game command resolves from flags and config
type session struct {
	cfg      *config.Config
	deck     *deck.Info
	imageDir string
	level    slog.Level
}

func loadSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	deckFlag, _ := cmd.Flags().GetString("deck")
	if deckFlag == "" {
		deckFlag = cfg.DefaultDeck
	}
	info, err := resolveDeck(deckFlag)
	if err != nil {
		return nil, err
	}

	imageDir, _ := cmd.Flags().GetString("images")
	if imageDir == "" {
		imageDir = info.ImagesDir()
	}
	if imageDir == "" {
		imageDir = cfg.ImageDir
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	return &session{
		cfg:      cfg,
		deck:     info,
		imageDir: dirPrefix(imageDir),
		level:    level,
	}, nil
}

func (s *session) logger(w io.Writer) *slog.Logger {
	return logging.New(w, s.level)
}

// resolveDeck loads a deck by library name or path; empty means the built-in deck
func resolveDeck(name string) (*deck.Info, error) {
	if name == "" || name == deck.BuiltinID {
		return deck.Builtin(), nil
	}

	deckPath, err := config.GetDeckPath(name)
	if err != nil {
		return nil, err
	}

	info, err := deck.LoadDeck(deckPath)
	if err != nil {
		return nil, fmt.Errorf("error loading deck: %w", err)
	}
	return info, nil
}

// dirPrefix makes sure an image dir can be concatenated with a file name
func dirPrefix(dir string) string {
	if config.IsRemote(dir) {
		if !strings.HasSuffix(dir, "/") {
			return dir + "/"
		}
		return dir
	}
	if dir != "" && !strings.HasSuffix(dir, string(filepath.Separator)) && !strings.HasSuffix(dir, "/") {
		return dir + string(filepath.Separator)
	}
	return dir
}
