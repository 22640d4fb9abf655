package pdfdoc

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"ballotqa/internal/geometry"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FontName is the core font used for every overlay label.
const FontName = "Helvetica"

// Color is an RGB color with components in [0, 1].
type Color struct {
	R, G, B float64
}

// Common overlay colors.
var (
	Black  = Color{0, 0, 0}
	Red    = Color{0.85, 0.1, 0.1}
	Blue   = Color{0.1, 0.2, 0.8}
	Yellow = Color{1, 0.9, 0.2}
)

// Hex renders the color as #RRGGBB.
func (c Color) Hex() string {
	clamp := func(v float64) int {
		return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return fmt.Sprintf("#%02X%02X%02X", clamp(c.R), clamp(c.G), clamp(c.B))
}

// Canvas receives drawing primitives in PDF user space. Page indexes are
// zero-based.
type Canvas interface {
	Text(page int, at geometry.Point, text string, fontSize float64, color Color)
	Crosshair(page int, at geometry.Point, size float64, color Color)
	Highlight(page int, r geometry.Rect, color Color, opacity float64)
	FilledBox(page int, r geometry.Rect, color Color)
	TextWidth(text string, fontSize float64) float64
}

// Overlay is a Canvas that collects pdfcpu text stamps and applies them to a
// base document in a single pass.
type Overlay struct {
	stamps map[int][]*model.Watermark
	err    error
}

var _ Canvas = (*Overlay)(nil)

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{stamps: make(map[int][]*model.Watermark)}
}

// Err returns the first error recorded while building stamps.
func (o *Overlay) Err() error { return o.err }

// Len returns the number of stamps collected.
func (o *Overlay) Len() int {
	n := 0
	for _, s := range o.stamps {
		n += len(s)
	}
	return n
}

func (o *Overlay) add(page int, text, desc string) {
	if o.err != nil {
		return
	}
	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		o.err = fmt.Errorf("failed to build stamp %q: %w", text, err)
		return
	}
	o.stamps[page+1] = append(o.stamps[page+1], wm)
}

func fontPoints(size float64) int {
	return max(1, int(math.Round(size)))
}

func stampDesc(x, y float64, points int, fill Color, opacity float64) string {
	return fmt.Sprintf("fontname:%s, points:%d, position:bl, offset:%.2f %.2f, scalefactor:1 abs, rotation:0, fillcolor:%s, opacity:%.2f",
		FontName, points, x, y, fill.Hex(), opacity)
}

// Text draws text with its baseline-left corner at at.
func (o *Overlay) Text(page int, at geometry.Point, text string, fontSize float64, color Color) {
	o.add(page, text, stampDesc(at.X, at.Y, fontPoints(fontSize), color, 1))
}

// Crosshair draws a plus sign centered on at.
func (o *Overlay) Crosshair(page int, at geometry.Point, size float64, color Color) {
	points := fontPoints(size)
	w := o.TextWidth("+", float64(points))
	o.add(page, "+", stampDesc(at.X-w/2, at.Y-float64(points)/3, points, color, 1))
}

func (o *Overlay) box(page int, r geometry.Rect, color Color, opacity float64) {
	const points = 1
	w := o.TextWidth(" ", points)
	marginX := math.Max(0, (r.Width-w)/2)
	marginY := math.Max(0, (r.Height-points)/2)
	desc := stampDesc(r.X, r.Y, points, color, opacity) +
		fmt.Sprintf(", backgroundcolor:%s, margins:%.2f %.2f", color.Hex(), marginY, marginX)
	o.add(page, " ", desc)
}

// Highlight draws a translucent filled rectangle.
func (o *Overlay) Highlight(page int, r geometry.Rect, color Color, opacity float64) {
	o.box(page, r, color, opacity)
}

// FilledBox draws an opaque filled rectangle.
func (o *Overlay) FilledBox(page int, r geometry.Rect, color Color) {
	o.box(page, r, color, 1)
}

// TextWidth measures text set in FontName.
func (o *Overlay) TextWidth(text string, fontSize float64) float64 {
	return font.TextWidth(text, FontName, fontPoints(fontSize))
}

// Apply stamps the collected overlay onto base and returns the new document.
func (o *Overlay) Apply(base []byte) ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	if len(o.stamps) == 0 {
		return append([]byte(nil), base...), nil
	}
	count, err := PageCount(base)
	if err != nil {
		return nil, err
	}
	pages := make([]int, 0, len(o.stamps))
	for p := range o.stamps {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	if last := pages[len(pages)-1]; last > count {
		return nil, fmt.Errorf("%w: overlay targets page %d of %d", ErrPageOutOfRange, last, count)
	}

	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(base), &out, o.stamps, newConfig()); err != nil {
		return nil, fmt.Errorf("failed to apply overlay: %w", err)
	}
	return out.Bytes(), nil
}
