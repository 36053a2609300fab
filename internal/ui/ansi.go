package ui

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image"
	"image/color" // This is the standard library color package
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"

	"github.com/arcanaland/cantor/internal/config"
)

// ArtRenderer turns card images into ANSI half-block art, caching the result.
type ArtRenderer struct {
	Width    int
	Height   int
	CacheDir string
	Client   *http.Client
}

// Render returns the ANSI art for the image at path, which may be a URL.
func (r *ArtRenderer) Render(path string) (string, error) {
	var cachePath string
	if r.CacheDir != "" {
		// Create a cache filename based on the image path and size
		key := fmt.Sprintf("%s@%dx%d", path, r.Width, r.Height)
		cachePath = filepath.Join(r.CacheDir, fmt.Sprintf("%x.ansi", md5.Sum([]byte(key))))
		if data, err := os.ReadFile(cachePath); err == nil {
			return string(data), nil
		}
	}

	img, err := r.load(path)
	if err != nil {
		return "", err
	}

	art := ImageToAnsi(img, r.Width, r.Height, true)

	if cachePath != "" {
		if err := os.MkdirAll(r.CacheDir, 0755); err == nil {
			_ = os.WriteFile(cachePath, []byte(art), 0644)
		}
	}
	return art, nil
}

func (r *ArtRenderer) load(path string) (image.Image, error) {
	var src io.Reader
	if config.IsRemote(path) {
		client := r.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Get(path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch image: %s", resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image: %w", err)
		}
		src = bytes.NewReader(data)
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		defer file.Close()
		src = file
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ImageToAnsi converts an image to ANSI art width cells wide and height rows tall
func ImageToAnsi(img image.Image, width, height int, trueColor bool) string {
	// Resize image to desired dimensions (doubled for half-block characters)
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder

	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			// Four pixels make up one character cell
			col1, _ := colorful.MakeColor(getColorAt(resized, x, y))
			col2, _ := colorful.MakeColor(getColorAt(resized, x+1, y))
			col3, _ := colorful.MakeColor(getColorAt(resized, x, y+1))
			col4, _ := colorful.MakeColor(getColorAt(resized, x+1, y+1))

			// Top pixels as foreground, bottom pixels as background
			fg := colorfulToColor(averageColor(col1, col2))
			bg := colorfulToColor(averageColor(col3, col4))

			buffer.WriteString(ansiColorString('▀', fg, bg, trueColor))
		}
		buffer.WriteString("\n")
	}

	return buffer.String()
}

// getColorAt returns the color at a specific coordinate
func getColorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255} // Black for out-of-bounds
}

// averageColor calculates the average of multiple colors
func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

func colorfulToColor(c colorful.Color) color.Color {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ansiColorString formats a character with ANSI color codes
func ansiColorString(char rune, fg, bg color.Color, trueColor bool) string {
	if !trueColor {
		return string(char)
	}

	// RGBA() returns values in range 0-65535
	r1, g1, b1, _ := fg.RGBA()
	r2, g2, b2, _ := bg.RGBA()
	r1, g1, b1 = r1>>8, g1>>8, b1>>8
	r2, g2, b2 = r2>>8, g2>>8, b2>>8

	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
		r1, g1, b1, r2, g2, b2, char)
}

// stripAnsi removes ANSI escape sequences from a string
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// visibleWidth counts the runes a line occupies on screen
func visibleWidth(s string) int {
	return len([]rune(stripAnsi(s)))
}
