// Package geometry maps printed-ballot grid coordinates to PDF page
// coordinates.
//
// Ballots are printed with a border of timing marks. Bubbles sit on a grid
// whose columns are spaced 4 per inch and whose rows are 4 per inch less the
// 3 rows taken by the timing-mark border convention. Grid rows are numbered
// top-down while PDF page coordinates grow bottom-up, so the vertical axis is
// flipped.
package geometry

import (
	"errors"
	"fmt"

	"ballotqa/internal/election"
)

// PointsPerInch is the PDF user-space unit density.
const PointsPerInch = 72.0

// Physical constants of the printed ballot, in inches.
const (
	TimingMarkWidthIn  = 0.1875
	TimingMarkHeightIn = 0.0625
	PageMarginIn       = 0.125
	ColumnsPerInch     = 4
	RowsPerInch        = 4
	RowBorderAdjust    = 3
)

// MillimetersPerInch converts calibration offsets.
const MillimetersPerInch = 25.4

// ErrUnsupportedPaperSize is returned for paper sizes without known dimensions.
var ErrUnsupportedPaperSize = errors.New("unsupported paper size")

// Dimensions is a paper size in inches.
type Dimensions struct {
	WidthIn  float64
	HeightIn float64
}

var paperDimensions = map[election.PaperSize]Dimensions{
	election.PaperLetter:   {WidthIn: 8.5, HeightIn: 11},
	election.PaperLegal:    {WidthIn: 8.5, HeightIn: 14},
	election.PaperCustom17: {WidthIn: 8.5, HeightIn: 17},
	election.PaperCustom19: {WidthIn: 8.5, HeightIn: 19},
	election.PaperCustom22: {WidthIn: 8.5, HeightIn: 22},
}

// PaperDimensions returns the size of a ballot paper.
func PaperDimensions(size election.PaperSize) (Dimensions, error) {
	d, ok := paperDimensions[size]
	if !ok {
		return Dimensions{}, fmt.Errorf("%w: %q", ErrUnsupportedPaperSize, size)
	}
	return d, nil
}

// Point is a location in PDF user space (points, origin bottom-left).
type Point struct {
	X, Y float64
}

// Rect is a rectangle in PDF user space; (X, Y) is the bottom-left corner.
type Rect struct {
	X, Y, Width, Height float64
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Geometry is the derived page layout for one paper size.
type Geometry struct {
	PageWidth  float64
	PageHeight float64

	Columns int
	Rows    int

	OriginX float64
	OriginY float64

	GridWidth  float64
	GridHeight float64

	TimingMarkWidth  float64
	TimingMarkHeight float64
}

// ForPaper derives the grid geometry of a paper size.
func ForPaper(size election.PaperSize) (Geometry, error) {
	dims, err := PaperDimensions(size)
	if err != nil {
		return Geometry{}, err
	}
	return FromDimensions(dims), nil
}

// FromDimensions derives the grid geometry from paper dimensions.
func FromDimensions(d Dimensions) Geometry {
	pageWidth := d.WidthIn * PointsPerInch
	pageHeight := d.HeightIn * PointsPerInch
	margin := PageMarginIn * PointsPerInch
	tmWidth := TimingMarkWidthIn * PointsPerInch
	tmHeight := TimingMarkHeightIn * PointsPerInch

	return Geometry{
		PageWidth:        pageWidth,
		PageHeight:       pageHeight,
		Columns:          int(d.WidthIn * ColumnsPerInch),
		Rows:             int(d.HeightIn*RowsPerInch) - RowBorderAdjust,
		OriginX:          margin + tmWidth/2,
		OriginY:          margin + tmHeight/2,
		GridWidth:        pageWidth - 2*margin - tmWidth,
		GridHeight:       pageHeight - 2*margin - tmHeight,
		TimingMarkWidth:  tmWidth,
		TimingMarkHeight: tmHeight,
	}
}

// MaxColumn is the index of the last grid column.
func (g Geometry) MaxColumn() float64 { return float64(g.Columns - 1) }

// MaxRow is the index of the last grid row.
func (g Geometry) MaxRow() float64 { return float64(g.Rows - 1) }

// ColumnPitch is the distance in points between adjacent columns.
func (g Geometry) ColumnPitch() float64 { return g.GridWidth / g.MaxColumn() }

// RowPitch is the distance in points between adjacent rows.
func (g Geometry) RowPitch() float64 { return g.GridHeight / g.MaxRow() }

// GridToPDF converts a (possibly fractional) grid coordinate to page space.
func (g Geometry) GridToPDF(column, row float64) Point {
	x := g.OriginX + column/g.MaxColumn()*g.GridWidth
	yFromTop := g.OriginY + row/g.MaxRow()*g.GridHeight
	return Point{X: x, Y: g.PageHeight - yFromTop}
}

// GridRectToPDF converts a grid-space rectangle (origin top-left) to page
// space (origin bottom-left).
func (g Geometry) GridRectToPDF(r election.Rect) Rect {
	topLeft := g.GridToPDF(r.X, r.Y)
	width := r.Width * g.ColumnPitch()
	height := r.Height * g.RowPitch()
	return Rect{X: topLeft.X, Y: topLeft.Y - height, Width: width, Height: height}
}

// MillimetersToPoints converts a calibration offset.
func MillimetersToPoints(mm float64) float64 {
	return mm / MillimetersPerInch * PointsPerInch
}

// PageIndex returns the zero-based page index of a sheet side.
func PageIndex(sheetNumber int, side election.Side) int {
	idx := 2 * (sheetNumber - 1)
	if side == election.SideBack {
		idx++
	}
	return idx
}
