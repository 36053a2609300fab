package deck

import (
	"errors"
	"math/rand/v2"

	"github.com/arcanaland/cantor/internal/card"
)

// ErrEmptyDeck is returned when drawing from an exhausted deck
var ErrEmptyDeck = errors.New("deck is empty")

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// DefaultRNG delegates to math/rand/v2 (auto-seeded).
type DefaultRNG struct{}

func (DefaultRNG) Intn(n int) int { return rand.IntN(n) }

// SeededRNG returns a reproducible RNG for a given seed
func SeededRNG(seed uint64) RNG {
	return seeded{rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type seeded struct{ r *rand.Rand }

func (s seeded) Intn(n int) int { return s.r.IntN(n) }

// Shuffle returns a Fisher-Yates permutation of cards. The input is left untouched.
func Shuffle(cards []card.Card, rng RNG) []card.Card {
	out := make([]card.Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Deck is the shrinking working set of undrawn cards for one game
type Deck struct {
	catalog   []card.Card
	remaining []card.Card
	drawn     []card.Card
	rng       RNG
}

// New creates a deck over catalog, shuffled with rng
func New(catalog []card.Card, rng RNG) *Deck {
	if rng == nil {
		rng = DefaultRNG{}
	}
	d := &Deck{
		catalog: append([]card.Card(nil), catalog...),
		rng:     rng,
	}
	d.Reset()
	return d
}

// Draw removes and returns the top card
func (d *Deck) Draw() (card.Card, error) {
	if len(d.remaining) == 0 {
		return card.Card{}, ErrEmptyDeck
	}
	c := d.remaining[0]
	d.remaining = d.remaining[1:]
	d.drawn = append(d.drawn, c)
	return c, nil
}

// IsExhausted reports whether every card has been drawn
func (d *Deck) IsExhausted() bool {
	return len(d.remaining) == 0
}

// Remaining returns the number of undrawn cards
func (d *Deck) Remaining() int {
	return len(d.remaining)
}

// Drawn returns the cards drawn so far, oldest first
func (d *Deck) Drawn() []card.Card {
	return append([]card.Card(nil), d.drawn...)
}

// Reset reshuffles the full catalog into the deck
func (d *Deck) Reset() {
	d.remaining = Shuffle(d.catalog, d.rng)
	d.drawn = nil
}
