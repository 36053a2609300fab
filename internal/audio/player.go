// Package audio plays sound effects and background music through the
// OS-native command line players.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// ErrNoPlayer is returned when no supported player is installed.
var ErrNoPlayer = errors.New("no audio player found")

// backend knows how to invoke one command line player. Players that cannot
// loop a track themselves get restarted each time the track ends.
type backend struct {
	name   string
	effect func(path string) []string
	music  func(path string, volume float64) []string
	loops  bool
}

var backends = []backend{
	{
		name:   "afplay",
		effect: func(p string) []string { return []string{p} },
		music: func(p string, v float64) []string {
			return []string{"-v", strconv.FormatFloat(v, 'f', 2, 64), p}
		},
	},
	{
		name:   "ffplay",
		effect: func(p string) []string { return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", p} },
		music: func(p string, v float64) []string {
			return []string{"-nodisp", "-loop", "0", "-loglevel", "quiet", "-volume", strconv.Itoa(int(v * 100)), p}
		},
		loops: true,
	},
	{
		name:   "paplay",
		effect: func(p string) []string { return []string{p} },
		music: func(p string, v float64) []string {
			return []string{"--volume=" + strconv.Itoa(int(v*65536)), p}
		},
	},
	{
		name:   "aplay",
		effect: func(p string) []string { return []string{"-q", p} },
		music:  func(p string, _ float64) []string { return []string{"-q", p} },
	},
}

// CommandPlayer runs an external player per sound.
type CommandPlayer struct {
	bin     string
	backend backend
	logger  *slog.Logger

	mu    sync.Mutex
	music *exec.Cmd
}

// NewCommandPlayer picks a player. override, when set, is a command line
// ("mpv --no-video") that receives the file path as its last argument.
func NewCommandPlayer(override string, logger *slog.Logger) (*CommandPlayer, error) {
	return newCommandPlayer(override, runtime.GOOS, exec.LookPath, logger)
}

func newCommandPlayer(override, goos string, lookPath func(string) (string, error), logger *slog.Logger) (*CommandPlayer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if fields := strings.Fields(override); len(fields) > 0 {
		bin, err := lookPath(fields[0])
		if err != nil {
			return nil, fmt.Errorf("player command %q: %w", fields[0], err)
		}
		extra := fields[1:]
		args := func(p string) []string { return append(append([]string(nil), extra...), p) }
		return &CommandPlayer{
			bin: bin,
			backend: backend{
				name:   fields[0],
				effect: args,
				music:  func(p string, _ float64) []string { return args(p) },
			},
			logger: logger,
		}, nil
	}

	for _, b := range backends {
		if b.name == "afplay" && goos != "darwin" {
			continue
		}
		if bin, err := lookPath(b.name); err == nil {
			return &CommandPlayer{bin: bin, backend: b, logger: logger}, nil
		}
	}
	return nil, ErrNoPlayer
}

// Name returns the player in use.
func (p *CommandPlayer) Name() string {
	return p.backend.name
}

// PlayEffect starts the effect and returns without waiting for it to finish.
func (p *CommandPlayer) PlayEffect(path string) error {
	cmd := exec.Command(p.bin, p.backend.effect(path)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.backend.name, err)
	}
	go p.reap(cmd)
	return nil
}

// PlayMusic starts background music on repeat, replacing any track already
// playing.
func (p *CommandPlayer) PlayMusic(path string, volume float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.music != nil && p.music.Process != nil {
		_ = p.music.Process.Kill()
	}

	cmd := exec.Command(p.bin, p.backend.music(path, volume)...)
	if err := cmd.Start(); err != nil {
		p.music = nil
		return fmt.Errorf("start %s: %w", p.backend.name, err)
	}
	p.music = cmd
	go p.loopMusic(cmd, path, volume)
	return nil
}

// loopMusic replays the track each time it ends cleanly, for as long as it is
// still the current music.
func (p *CommandPlayer) loopMusic(cmd *exec.Cmd, path string, volume float64) {
	for {
		err := cmd.Wait()

		p.mu.Lock()
		if p.music != cmd || p.backend.loops || err != nil {
			if p.music == cmd {
				p.music = nil
			}
			p.mu.Unlock()
			if err != nil {
				p.logger.Debug("music player exited", "player", p.backend.name, "error", err)
			}
			return
		}

		next := exec.Command(p.bin, p.backend.music(path, volume)...)
		if err := next.Start(); err != nil {
			p.music = nil
			p.mu.Unlock()
			p.logger.Debug("music restart failed", "player", p.backend.name, "error", err)
			return
		}
		p.music = next
		p.mu.Unlock()
		cmd = next
	}
}

// Close stops background music.
func (p *CommandPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.music == nil || p.music.Process == nil {
		return nil
	}
	err := p.music.Process.Kill()
	p.music = nil
	return err
}

func (p *CommandPlayer) reap(cmd *exec.Cmd) {
	if err := cmd.Wait(); err != nil {
		p.logger.Debug("audio player exited", "player", p.backend.name, "error", err)
	}
}

// NopPlayer is used when sound is muted.
type NopPlayer struct{}

func (NopPlayer) PlayEffect(string) error         { return nil }
func (NopPlayer) PlayMusic(string, float64) error { return nil }
