// Package rainbow renders text with a moving rainbow gradient, lolcat style.
//
// Escape sequences already present in the text pass through untouched and the
// current colour is re-emitted after each of them.
package rainbow

import (
	"bufio"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

// codes is the lolcat 256-colour palette.
var codes = [...]int{
	39, 38, 44, 43, 49, 48, 84, 83, 119, 118,
	154, 148, 184, 178, 214, 208, 209, 203, 204, 198,
	199, 163, 164, 128, 129, 93, 99, 63, 69, 33,
}

// ColorMode selects when colours are emitted.
type ColorMode int

const (
	// ColorAuto colours only when the output is a terminal.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode maps "auto", "always" and "never" to a ColorMode. Anything
// else is ColorAuto.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(s) {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Options tunes the gradient. Zero values select the lolcat defaults.
type Options struct {
	// FreqH and FreqV are the horizontal and vertical gradient frequencies.
	FreqH float64
	FreqV float64
	// Offset shifts the gradient start in [0,1). Negative derives it from the
	// wall clock so consecutive boots look different.
	Offset float64
	// StartColor shifts the starting palette entry.
	StartColor int
	// Random adds a random phase.
	Random bool
	// TrueColor emits 24-bit colours instead of the 256-colour palette.
	TrueColor bool
	Color     ColorMode
	// Lang is the value of $LANG.
	Lang string
}

// Renderer writes colourized text to an output stream.
type Renderer struct {
	w      io.Writer
	opts   Options
	colors bool
	width  *runewidth.Condition
}

// New creates a renderer writing to w.
func New(w io.Writer, opts Options) *Renderer {
	if opts.FreqH == 0 {
		opts.FreqH = 0.23
	}
	if opts.FreqV == 0 {
		opts.FreqV = 0.1
	}

	colors := false
	switch opts.Color {
	case ColorAlways:
		colors = true
	case ColorAuto:
		if f, ok := w.(*os.File); ok {
			colors = isatty.IsTerminal(f.Fd())
		}
	}

	return &Renderer{
		w:      w,
		opts:   opts,
		colors: colors,
		width:  widthCondition(opts.Lang),
	}
}

// widthCondition picks display-width rules from the locale. A non-UTF-8
// locale falls back to C.UTF-8 rules, which never widen ambiguous runes.
func widthCondition(lang string) *runewidth.Condition {
	cond := runewidth.NewCondition()
	if lang != "" && !strings.Contains(lang, "UTF-8") {
		cond.EastAsianWidth = false
	}
	return cond
}

// Render writes text to the output. Write errors are dropped: the output is
// decorative.
func (r *Renderer) Render(text string) {
	_ = r.render(text)
}

func (r *Renderer) render(text string) error {
	bw := bufio.NewWriter(r.w)
	if !r.colors {
		bw.WriteString(text)
		return bw.Flush()
	}

	offx := r.opts.Offset
	if offx < 0 {
		offx = float64(time.Now().Unix()%300) / 300.0
	}
	phase := float64(r.opts.StartColor)
	if r.opts.Random {
		phase += rand.Float64() * float64(len(codes))
	}

	var (
		st    scanner
		col   int
		line  int
		cc    = -1
		last  string
		color = func(seq string) {
			last = seq
			bw.WriteString(termenv.CSI + seq + "m")
		}
	)

	for _, c := range text {
		st.feed(c)
		if st.state == stateText {
			if c == '\n' {
				line++
				col = 0
			} else {
				col += r.width.RuneWidth(c)
				if r.opts.TrueColor {
					theta := float64(col)*r.opts.FreqH/5.0 +
						float64(line)*r.opts.FreqV +
						(offx+2.0*phase/float64(len(codes)))*math.Pi
					color(rgb(theta))
				} else {
					ncc := int(offx*float64(len(codes)) + float64(col)*r.opts.FreqH + float64(line)*r.opts.FreqV)
					if ncc != cc {
						cc = ncc
						color(paletteSeq(int(phase) + cc))
					}
				}
			}
		}

		bw.WriteRune(c)

		// An embedded sequence just ended and may have changed the colour.
		if st.state == stateEnd && last != "" {
			color(last)
		}
	}

	bw.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	return bw.Flush()
}

// rgb returns the 24-bit foreground sequence for angle theta: three sines a
// third of a turn apart, kept off full black.
func rgb(theta float64) string {
	const floor = 0.1
	channel := func(shift float64) float64 {
		return floor + (1.0-floor)*(0.5+0.5*math.Sin(theta+shift))
	}
	c := colorful.Color{
		R: channel(0),
		G: channel(2 * math.Pi / 3),
		B: channel(4 * math.Pi / 3),
	}.Clamped()
	return termenv.TrueColor.Color(c.Hex()).Sequence(false)
}

func paletteSeq(i int) string {
	n := len(codes)
	idx := ((i % n) + n) % n
	return termenv.ANSI256.Color(strconv.Itoa(codes[idx])).Sequence(false)
}

type escapeState int

const (
	stateText escapeState = iota
	stateEscape
	stateEnd
)

// scanner tracks whether the current rune belongs to an escape sequence. ESC
// opens a sequence, the first ASCII letter closes it, and the rune after that
// is text again.
type scanner struct {
	state escapeState
}

func (s *scanner) feed(c rune) {
	switch {
	case c == '\x1b':
		s.state = stateEscape
	case s.state == stateEscape:
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			s.state = stateEnd
		}
	default:
		s.state = stateText
	}
}
