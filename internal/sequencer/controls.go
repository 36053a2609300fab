package sequencer

import "github.com/arcanaland/cantor/internal/deck"

// Controls tells the host which action to offer.
type Controls struct {
	Draw    bool
	Restart bool
}

// ControlsFor derives the available actions from deck exhaustion alone.
func ControlsFor(d *deck.Deck) Controls {
	exhausted := d.IsExhausted()
	return Controls{Draw: !exhausted, Restart: exhausted}
}
