package scene

import (
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var parseFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// Wrapper breaks text into lines that fit a pixel width when set in the
// scene font. It is safe for concurrent use.
type Wrapper struct {
	mu    sync.Mutex
	face  font.Face // nil when the font could not be loaded
	size  float64
	width float64
}

// NewWrapper returns a wrapper for lines of at most width pixels in a font
// of the given size. If the embedded font cannot be loaded, widths are
// estimated from terminal cell widths instead.
func NewWrapper(width, size float64) *Wrapper {
	w := &Wrapper{size: size, width: width}
	f, err := parseFont()
	if err != nil {
		return w
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err == nil {
		w.face = face
	}
	return w
}

// Width returns the maximum line width in pixels.
func (w *Wrapper) Width() float64 { return w.width }

// Measure returns the advance width of s in pixels.
func (w *Wrapper) Measure(s string) float64 {
	if w.face == nil {
		return float64(runewidth.StringWidth(s)) * w.size * 0.55
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return float64(font.MeasureString(w.face, s)) / 64
}

// Wrap splits s on whitespace and greedily packs the words into lines no
// wider than the wrapper width. A single word wider than the limit gets a
// line of its own. Runs of whitespace collapse to one space.
func (w *Wrapper) Wrap(s string) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := []string{words[0]}
	for _, word := range words[1:] {
		line = append(line, word)
		if w.Measure(strings.Join(line, " ")) > w.width {
			lines = append(lines, strings.Join(line[:len(line)-1], " "))
			line = []string{word}
		}
	}
	return append(lines, strings.Join(line, " "))
}
