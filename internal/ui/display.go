package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	colorize "github.com/fatih/color"
	"golang.org/x/term"

	"github.com/arcanaland/cantor/internal/card"
)

// CardInfo is what DisplayCard prints beside the art
type CardInfo struct {
	Card     card.Card
	Number   int // 1-based position in the deck's catalog
	DeckName string
	Asset    string
	Present  bool
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisplayCard prints the card art on the left and its details on the right
func DisplayCard(w io.Writer, info CardInfo, ansiArt string, width int) {
	ansiLines := strings.Split(strings.TrimRight(ansiArt, "\n"), "\n")
	maxAnsiWidth := 0
	for _, line := range ansiLines {
		if vw := visibleWidth(line); vw > maxAnsiWidth {
			maxAnsiWidth = vw
		}
	}

	status := colorize.GreenString("present")
	if !info.Present {
		status = colorize.RedString("missing")
	}

	infoLines := []string{
		colorize.CyanString("Card:  ") + colorize.HiWhiteString("%s", info.Card.Name),
		colorize.CyanString("No.:   ") + colorize.HiWhiteString("%d", info.Number),
		colorize.CyanString("Deck:  ") + colorize.HiWhiteString("%s", info.DeckName),
		colorize.CyanString("ID:    ") + colorize.HiWhiteString("%s", info.Card.AssetID),
		colorize.CyanString("Image: ") + colorize.HiWhiteString("%s", info.Asset) + " (" + status + ")",
	}

	// The art sits on the left and the info on the right
	spacing := 4
	infoStartCol := maxAnsiWidth + spacing
	if maxAnsiWidth == 0 || infoStartCol+20 > width {
		infoStartCol = 0
		if maxAnsiWidth > 0 {
			// Too narrow for side by side: stack the info under the art
			ansiLines = append(ansiLines, "")
			infoLines = append(make([]string, len(ansiLines)), infoLines...)
		}
	}

	fmt.Fprintln(w)
	maxLines := max(len(ansiLines), len(infoLines))
	for i := 0; i < maxLines; i++ {
		fmt.Fprint(w, "  ")
		line := ""
		if i < len(ansiLines) {
			line = ansiLines[i]
		}
		fmt.Fprint(w, line)
		if i < len(infoLines) && infoLines[i] != "" {
			if pad := infoStartCol - visibleWidth(line); pad > 0 {
				fmt.Fprint(w, strings.Repeat(" ", pad))
			}
			fmt.Fprint(w, infoLines[i])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}
