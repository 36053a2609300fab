package cmd

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcanaland/cantor/internal/assets"
	"github.com/arcanaland/cantor/internal/audio"
	"github.com/arcanaland/cantor/internal/config"
	"github.com/arcanaland/cantor/internal/deck"
	"github.com/arcanaland/cantor/internal/ports"
	"github.com/arcanaland/cantor/internal/sequencer"
	"github.com/arcanaland/cantor/internal/speech"
	"github.com/arcanaland/cantor/internal/ui"
)

// game is a wired sequencer plus the resources it holds
type game struct {
	seq    *sequencer.Sequencer
	player ports.AudioPlayer
}

func (g *game) Close() {
	g.seq.Wait()
	if c, ok := g.player.(io.Closer); ok {
		_ = c.Close()
	}
}

// addGameFlags registers the flags shared by play and call
func addGameFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("mute", false, "Disable sound effects, music and speech")
	cmd.Flags().Uint64("seed", 0, "Shuffle seed for a reproducible game (0 = random)")
}

// newGame wires the sequencer to terminal output, the audio player, the
// speech synthesizer and the asset prober that match the session.
func newGame(cmd *cobra.Command, s *session, view ports.View, logger *slog.Logger) *game {
	mute, _ := cmd.Flags().GetBool("mute")
	seed, _ := cmd.Flags().GetUint64("seed")

	var rng deck.RNG = deck.DefaultRNG{}
	if seed != 0 {
		rng = deck.SeededRNG(seed)
	}

	var player ports.AudioPlayer = audio.NopPlayer{}
	var speaker ports.Speaker = speech.NopSpeaker{}
	if !mute {
		if p, err := audio.NewCommandPlayer(s.cfg.PlayerCommand, logger); err != nil {
			logger.Warn("sound disabled", "error", err)
		} else {
			logger.Debug("audio player", "player", p.Name())
			player = p
		}
		if sp, err := speech.NewCommandSpeaker(s.cfg.SpeechCommand); err != nil {
			logger.Warn("speech disabled", "error", err)
		} else {
			speaker = sp
		}
	}

	client := &http.Client{Timeout: 5 * time.Second}

	seq := sequencer.New(deck.New(s.deck.Cards, rng), sequencer.Deps{
		Prober:  assets.ForImageDir(s.imageDir, client),
		Player:  player,
		Speaker: speaker,
		View:    view,
		Logger:  logger,
	}, sequencer.Options{
		ImageDir:    s.imageDir,
		CutSound:    s.cfg.CutSound,
		Music:       s.cfg.Music,
		MusicVolume: s.cfg.MusicVolume,
		Locale:      s.cfg.SpeechLocale,
		VoicePrefix: s.cfg.VoicePrefix,
		SpeakDelay:  s.cfg.SpeakDelay.Duration,
	})

	return &game{seq: seq, player: player}
}

// newRenderer builds the card art renderer for the session
func newRenderer(s *session) *ui.ArtRenderer {
	return &ui.ArtRenderer{
		Width:    s.cfg.ArtWidth,
		Height:   s.cfg.ArtHeight,
		CacheDir: filepath.Join(config.GetCacheDir(), "ansi_cache"),
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}
