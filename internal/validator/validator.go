package validator

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/cantor/internal/card"
	"github.com/arcanaland/cantor/internal/deck"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Validator checks a deck directory (with deck.toml and images/) or a bare
// image directory against the card catalog.
type Validator struct {
	Path    string
	Results ValidationResults

	cards    []card.Card
	imageDir string
}

func NewValidator(path string) *Validator {
	return &Validator{
		Path:    path,
		Results: ValidationResults{},
	}
}

func (v *Validator) Validate() (ValidationResults, error) {
	info, err := os.Stat(v.Path)
	if err != nil {
		return v.Results, fmt.Errorf("cannot read %s: %w", v.Path, err)
	}
	if !info.IsDir() {
		return v.Results, fmt.Errorf("%s is not a directory", v.Path)
	}

	deckTomlPath := filepath.Join(v.Path, "deck.toml")
	if _, err := os.Stat(deckTomlPath); err == nil {
		if err := v.validateDeckToml(deckTomlPath); err != nil {
			return v.Results, err
		}
	} else {
		v.cards = card.Catalog()
		v.imageDir = v.Path
	}

	v.validateImages()
	v.validateStrayFiles()

	return v.Results, nil
}

func (v *Validator) validateDeckToml(path string) error {
	var deckConfig deck.DeckConfig
	if _, err := toml.DecodeFile(path, &deckConfig); err != nil {
		return fmt.Errorf("error parsing deck.toml: %w", err)
	}

	if deckConfig.Deck.ID == "" {
		v.Results.Errors = append(v.Results.Errors, "deck.id is required in deck.toml")
	}

	if deckConfig.Deck.Name == "" {
		v.Results.Errors = append(v.Results.Errors, "deck.name is required in deck.toml")
	}

	if deckConfig.Deck.Version == "" {
		v.Results.Warnings = append(v.Results.Warnings, "deck.version is not set in deck.toml")
	}

	if deckConfig.Deck.SchemaVersion != "" && deckConfig.Deck.SchemaVersion != "1.0" {
		v.Results.Errors = append(v.Results.Errors,
			fmt.Sprintf("unsupported schema_version: %s (supported: 1.0)", deckConfig.Deck.SchemaVersion))
	}

	info, err := deck.LoadDeck(v.Path)
	if err != nil {
		v.Results.Errors = append(v.Results.Errors, err.Error())
		info = deck.Builtin()
		info.Path = v.Path
	}
	v.cards = info.Cards
	v.imageDir = filepath.Join(v.Path, "images")

	if _, err := os.Stat(v.imageDir); os.IsNotExist(err) {
		v.Results.Errors = append(v.Results.Errors, "images directory not found")
	}
	return nil
}

// validateImages checks that every card has decodable art
func (v *Validator) validateImages() {
	if _, err := os.Stat(v.imageDir); err != nil {
		return // Already reported
	}

	var missing []string
	for _, c := range v.cards {
		path := filepath.Join(v.imageDir, c.AssetID+card.AssetExt)
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			missing = append(missing, c.AssetID)
			v.suggestExtension(c.AssetID)
			continue
		}
		if err != nil {
			v.Results.Errors = append(v.Results.Errors, fmt.Sprintf("cannot read %s: %v", path, err))
			continue
		}

		_, format, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("%s%s is not a readable image: %v", c.AssetID, card.AssetExt, err))
		} else if format != "jpeg" {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s%s is encoded as %s, not jpeg", c.AssetID, card.AssetExt, format))
		}
	}

	if len(missing) > 0 {
		v.Results.Errors = append(v.Results.Errors,
			fmt.Sprintf("missing card images in %s: %s", v.imageDir, strings.Join(missing, ", ")))
	}
}

// suggestExtension warns when art exists under another extension
func (v *Validator) suggestExtension(assetID string) {
	for _, ext := range []string{".jpeg", ".JPG", ".png", ".webp", ".gif"} {
		if _, err := os.Stat(filepath.Join(v.imageDir, assetID+ext)); err == nil {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("found %s%s; rename it to %s%s", assetID, ext, assetID, card.AssetExt))
			return
		}
	}
}

// validateStrayFiles warns about images that match no card
func (v *Validator) validateStrayFiles() {
	entries, err := os.ReadDir(v.imageDir)
	if err != nil {
		return
	}

	known := make(map[string]bool, len(v.cards))
	for _, c := range v.cards {
		known[c.AssetID+card.AssetExt] = true
	}

	var stray []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != card.AssetExt || known[name] {
			continue
		}
		stray = append(stray, name)
	}
	sort.Strings(stray)

	for _, name := range stray {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("%s does not match any card", name))
	}
}
