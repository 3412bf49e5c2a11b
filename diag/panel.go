package diag

import (
	"image/color"
	"strings"
	"unicode/utf8"

	"kestrel/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	// Normal is dark text on a light background.
	Normal = Theme{FG: color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}, BG: color.RGBA{R: 0xf0, G: 0xf0, B: 0xe8, A: 0xff}}
	// Alert is light text on red, for fatal screens.
	Alert = Theme{FG: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, BG: color.RGBA{R: 0xa0, G: 0x10, B: 0x10, A: 0xff}}
)

// Theme is a panel's foreground and background.
type Theme struct {
	FG, BG color.RGBA
}

// Panel draws pages of monospaced text onto a framebuffer.
type Panel struct {
	d     fbDisplay
	font  tinyfont.Fonter
	cellW int16
	cellH int16
}

// NewPanel returns a panel over fb. A nil framebuffer gives a panel that
// draws nothing.
func NewPanel(fb hal.Framebuffer) *Panel {
	font := &proggy.TinySZ8pt7b
	_, outbox := tinyfont.LineWidth(font, "0")
	return &Panel{
		d:     fbDisplay{fb: fb},
		font:  font,
		cellW: int16(outbox),
		cellH: int16(font.GetYAdvance()),
	}
}

// Columns and Rows give the text grid size.
func (p *Panel) Columns() int {
	w, _ := p.d.Size()
	if p.cellW <= 0 {
		return 0
	}
	return int(w / p.cellW)
}

func (p *Panel) Rows() int {
	_, h := p.d.Size()
	if p.cellH <= 0 {
		return 0
	}
	return int(h / p.cellH)
}

// Draw clears the screen and writes lines top to bottom, wrapping long
// lines. Lines past the last row are dropped. It reports how many rows were
// used.
func (p *Panel) Draw(th Theme, lines []string) (int, error) {
	fb := p.d.fb
	if fb == nil || fb.Buffer() == nil {
		return 0, nil
	}
	fb.ClearRGB(th.BG.R, th.BG.G, th.BG.B)

	cols, rows := p.Columns(), p.Rows()
	if cols <= 0 || rows <= 0 {
		return 0, p.d.Display()
	}

	row := 0
	for _, line := range lines {
		for first := true; first || line != ""; first = false {
			if row >= rows {
				return row, p.d.Display()
			}
			var chunk string
			chunk, line = takeRunes(line, cols)
			line = strings.TrimLeft(line, " ")
			if chunk != "" {
				y := int16(row+1)*p.cellH - 2
				tinyfont.WriteLine(&p.d, p.font, 0, y, chunk, th.FG)
			}
			row++
		}
	}
	return row, p.d.Display()
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
