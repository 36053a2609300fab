package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	DefaultDeck   string   `toml:"default_deck"`
	ImageDir      string   `toml:"image_dir"`
	CutSound      string   `toml:"cut_sound"`
	Music         string   `toml:"music"`
	MusicVolume   float64  `toml:"music_volume"`
	SpeechLocale  string   `toml:"speech_locale"`
	VoicePrefix   string   `toml:"voice_prefix"`
	SpeakDelay    Duration `toml:"speak_delay"`
	PlayerCommand string   `toml:"player_command"`
	SpeechCommand string   `toml:"speech_command"`
	ArtWidth      int      `toml:"art_width"`
	ArtHeight     int      `toml:"art_height"`
	LogLevel      string   `toml:"log_level"`
}

// Duration is a time.Duration that reads and writes as a TOML string ("350ms")
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists
func Default() *Config {
	soundDir := filepath.Join(GetXDGDataHome(), "loteria", "sounds")
	return &Config{
		DefaultDeck:  "tradicional",
		ImageDir:     filepath.Join(GetXDGDataHome(), "loteria", "images") + string(filepath.Separator),
		CutSound:     filepath.Join(soundDir, "cut.wav"),
		Music:        "",
		MusicVolume:  0.2,
		SpeechLocale: "es-ES",
		VoicePrefix:  "es",
		SpeakDelay:   Duration{350 * time.Millisecond},
		ArtWidth:     32,
		ArtHeight:    24,
		LogLevel:     "info",
	}
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetCacheDir returns the cantor cache directory under XDG_CACHE_HOME
func GetCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "cantor")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cantor")
	}
	return filepath.Join(homeDir, ".cache", "cantor")
}

// GetDeckLibraryPath returns the path to the deck library
func GetDeckLibraryPath() string {
	return filepath.Join(GetXDGDataHome(), "loteria", "decks")
}

// configFileOverride is set by the --config flag
var configFileOverride string

// SetConfigFile points LoadConfig at an explicit file
func SetConfigFile(path string) {
	configFileOverride = path
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	if configFileOverride != "" {
		return configFileOverride
	}
	return filepath.Join(GetXDGConfigHome(), "cantor", "config.toml")
}

// LoadConfig loads the config file, then applies CANTOR_* environment overrides.
// A .env file in the working directory is read first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	config, err := loadFile()
	if err != nil {
		return nil, err
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFile reads the config file without environment overrides
func loadFile() (*Config, error) {
	configPath := GetConfigFilePath()

	var config *Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create default config if it doesn't exist
		c, err := createDefaultConfig()
		if err != nil {
			return nil, err
		}
		config = c
	} else {
		config = Default()
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("error decoding config file: %w", err)
		}
	}

	return config, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.MusicVolume < 0 || c.MusicVolume > 1 {
		return fmt.Errorf("music_volume must be between 0 and 1, got %v", c.MusicVolume)
	}
	if c.SpeakDelay.Duration < 0 {
		return fmt.Errorf("speak_delay must not be negative, got %s", c.SpeakDelay)
	}
	if c.ArtWidth <= 0 || c.ArtHeight <= 0 {
		return fmt.Errorf("art_width and art_height must be positive")
	}
	return nil
}

func applyEnv(c *Config) error {
	strs := map[string]*string{
		"CANTOR_DEFAULT_DECK":   &c.DefaultDeck,
		"CANTOR_IMAGE_DIR":      &c.ImageDir,
		"CANTOR_CUT_SOUND":      &c.CutSound,
		"CANTOR_MUSIC":          &c.Music,
		"CANTOR_SPEECH_LOCALE":  &c.SpeechLocale,
		"CANTOR_VOICE_PREFIX":   &c.VoicePrefix,
		"CANTOR_PLAYER_COMMAND": &c.PlayerCommand,
		"CANTOR_SPEECH_COMMAND": &c.SpeechCommand,
		"CANTOR_LOG_LEVEL":      &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v := os.Getenv("CANTOR_MUSIC_VOLUME"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid CANTOR_MUSIC_VOLUME %q: %w", v, err)
		}
		c.MusicVolume = f
	}
	if v := os.Getenv("CANTOR_SPEAK_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CANTOR_SPEAK_DELAY %q: %w", v, err)
		}
		c.SpeakDelay = Duration{d}
	}
	return nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig() (*Config, error) {
	configPath := GetConfigFilePath()
	configDir := filepath.Dir(configPath)

	// Ensure the config directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	config := Default()
	if err := writeConfig(configPath, config); err != nil {
		return nil, err
	}

	return config, nil
}

func writeConfig(path string, config *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}

// GetDeckPath returns the path to a deck, either in the deck library or a relative path
func GetDeckPath(deckName string) (string, error) {
	// First, try to find the deck in the deck library
	libraryPath := GetDeckLibraryPath()
	deckPath := filepath.Join(libraryPath, deckName)

	if _, err := os.Stat(deckPath); err == nil {
		return deckPath, nil
	}

	// If not found in the library, treat as a relative path
	if _, err := os.Stat(deckName); err == nil {
		return deckName, nil
	}

	return "", fmt.Errorf("deck not found: %s", deckName)
}

// SetDefaultDeck sets the default deck in the config
func SetDefaultDeck(deckName string) error {
	config, err := loadFile()
	if err != nil {
		return err
	}

	config.DefaultDeck = deckName
	return writeConfig(GetConfigFilePath(), config)
}

// IsRemote reports whether an image dir is an HTTP(S) base URL
func IsRemote(imageDir string) bool {
	return strings.HasPrefix(imageDir, "http://") || strings.HasPrefix(imageDir, "https://")
}
