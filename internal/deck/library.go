package deck

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/cantor/internal/card"
)

// BuiltinID names the embedded traditional deck
const BuiltinID = "tradicional"

// Info describes a Lotería deck: its metadata and its catalog
type Info struct {
	ID          string
	Name        string
	Version     string
	Author      string
	Description string
	Path        string // Empty for the built-in deck

	Cards []card.Card
}

// Builtin returns the traditional 54-card deck
func Builtin() *Info {
	return &Info{
		ID:          BuiltinID,
		Name:        "Lotería Tradicional",
		Description: "The classic 54-card Mexican Lotería",
		Cards:       card.Catalog(),
	}
}

// ImagesDir returns the image directory prefix bundled with a deck,
// or an empty string for the built-in deck.
func (i *Info) ImagesDir() string {
	if i.Path == "" {
		return ""
	}
	return filepath.Join(i.Path, "images") + string(filepath.Separator)
}

// LoadDeck loads a Lotería deck from a directory
func LoadDeck(deckPath string) (*Info, error) {
	// Check if deck.toml exists
	deckTomlPath := filepath.Join(deckPath, "deck.toml")
	if _, err := os.Stat(deckTomlPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("deck.toml not found in %s", deckPath)
	}

	var config DeckConfig
	if _, err := toml.DecodeFile(deckTomlPath, &config); err != nil {
		return nil, fmt.Errorf("error parsing deck.toml: %w", err)
	}

	info := &Info{
		ID:          config.Deck.ID,
		Name:        config.Deck.Name,
		Version:     config.Deck.Version,
		Author:      config.Deck.Author,
		Description: config.Deck.Description,
		Path:        deckPath,
	}

	// A deck without its own card list reuses the traditional catalog
	if len(config.Cards.Names) == 0 {
		info.Cards = card.Catalog()
		return info, nil
	}

	seen := make(map[string]string, len(config.Cards.Names))
	for _, name := range config.Cards.Names {
		c := card.New(name)
		if prev, ok := seen[c.AssetID]; ok {
			return nil, fmt.Errorf("cards %q and %q share asset id %s", prev, name, c.AssetID)
		}
		seen[c.AssetID] = name
		info.Cards = append(info.Cards, c)
	}

	return info, nil
}

// DeckConfig mirrors deck.toml
type DeckConfig struct {
	Deck  DeckSection `toml:"deck"`
	Cards CardSection `toml:"cards"`
}

type DeckSection struct {
	ID            string `toml:"id"`
	Name          string `toml:"name"`
	Version       string `toml:"version"`
	SchemaVersion string `toml:"schema_version"`
	Author        string `toml:"author"`
	Description   string `toml:"description"`
	Locale        string `toml:"locale"`
}

type CardSection struct {
	Names []string `toml:"names"`
}
