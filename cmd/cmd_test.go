package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/arcanaland/cantor/internal/card"
	"github.com/arcanaland/cantor/internal/deck"
)

func TestDirPrefix(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"images", "images" + sep},
		{"images/", "images/"},
		{"https://example.com/art", "https://example.com/art/"},
		{"https://example.com/art/", "https://example.com/art/"},
	}

	for _, tt := range tests {
		if got := dirPrefix(tt.in); got != tt.want {
			t.Errorf("dirPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadKeysLineMode(t *testing.T) {
	keys := readKeys(strings.NewReader("\nL\n  q  \n"), false)

	var got []byte
	for k := range keys {
		got = append(got, k)
	}

	want := []byte{'\n', 'l', 'q'}
	if string(got) != string(want) {
		t.Errorf("readKeys() = %q, want %q", got, want)
	}
}

func TestReadKeysRawMode(t *testing.T) {
	keys := readKeys(strings.NewReader(" r\r"), true)

	var got []byte
	for k := range keys {
		got = append(got, k)
	}

	if string(got) != " r\r" {
		t.Errorf("readKeys() = %q, want %q", got, " r\r")
	}
}

func TestShowFindsPaddedName(t *testing.T) {
	cards := deck.Builtin().Cards

	c, number, ok := card.Find(cards, " El Sol ")
	if !ok {
		t.Fatal("card.Find(\" El Sol \") found nothing")
	}
	if c.AssetID != "el_sol" || cards[number-1] != c {
		t.Errorf("card.Find(\" El Sol \") = %+v at %d", c, number)
	}
}

func TestResolveDeckBuiltin(t *testing.T) {
	for _, name := range []string{"", deck.BuiltinID} {
		info, err := resolveDeck(name)
		if err != nil {
			t.Fatalf("resolveDeck(%q) error = %v", name, err)
		}
		if len(info.Cards) != len(card.Catalog()) {
			t.Errorf("resolveDeck(%q) has %d cards, want %d", name, len(info.Cards), len(card.Catalog()))
		}
	}
}
