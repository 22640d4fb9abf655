package geometry

import (
	"testing"

	"ballotqa/internal/election"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestPaperDimensions(t *testing.T) {
	tests := []struct {
		size   election.PaperSize
		height float64
	}{
		{election.PaperLetter, 11},
		{election.PaperLegal, 14},
		{election.PaperCustom17, 17},
		{election.PaperCustom19, 19},
		{election.PaperCustom22, 22},
	}
	for _, tt := range tests {
		t.Run(string(tt.size), func(t *testing.T) {
			d, err := PaperDimensions(tt.size)
			require.NoError(t, err)
			assert.Equal(t, 8.5, d.WidthIn)
			assert.Equal(t, tt.height, d.HeightIn)
		})
	}

	_, err := PaperDimensions("a4")
	assert.ErrorIs(t, err, ErrUnsupportedPaperSize)
	_, err = ForPaper("tabloid")
	assert.ErrorIs(t, err, ErrUnsupportedPaperSize)
}

func TestForPaper_Letter(t *testing.T) {
	g, err := ForPaper(election.PaperLetter)
	require.NoError(t, err)

	assert.Equal(t, 612.0, g.PageWidth)
	assert.Equal(t, 792.0, g.PageHeight)
	assert.Equal(t, 34, g.Columns)
	assert.Equal(t, 41, g.Rows)
	assert.InDelta(t, 9+13.5/2, g.OriginX, eps)
	assert.InDelta(t, 9+4.5/2, g.OriginY, eps)
	assert.InDelta(t, 612-18-13.5, g.GridWidth, eps)
	assert.InDelta(t, 792-18-4.5, g.GridHeight, eps)
}

func TestForPaper_RowsFollowHeight(t *testing.T) {
	g, err := ForPaper(election.PaperCustom22)
	require.NoError(t, err)
	assert.Equal(t, 4*22-3, g.Rows)
	assert.Equal(t, 34, g.Columns)
}

func TestGridToPDF_Corners(t *testing.T) {
	for size := range paperDimensions {
		g, err := ForPaper(size)
		require.NoError(t, err)

		origin := g.GridToPDF(0, 0)
		assert.InDelta(t, g.OriginX, origin.X, eps)
		assert.InDelta(t, g.PageHeight-g.OriginY, origin.Y, eps)

		far := g.GridToPDF(g.MaxColumn(), g.MaxRow())
		assert.InDelta(t, g.OriginX+g.GridWidth, far.X, eps)
		assert.InDelta(t, g.PageHeight-g.OriginY-g.GridHeight, far.Y, eps)

		mid := g.GridToPDF(g.MaxColumn()/2, g.MaxRow()/2)
		assert.InDelta(t, g.OriginX+g.GridWidth/2, mid.X, eps)
		assert.InDelta(t, g.PageHeight-g.OriginY-g.GridHeight/2, mid.Y, eps)
	}
}

func TestGridToPDF_RowsGoDown(t *testing.T) {
	g, err := ForPaper(election.PaperLetter)
	require.NoError(t, err)
	upper := g.GridToPDF(3, 5)
	lower := g.GridToPDF(3, 6)
	assert.Greater(t, upper.Y, lower.Y)
	assert.InDelta(t, g.RowPitch(), upper.Y-lower.Y, eps)
}

func TestGridRectToPDF(t *testing.T) {
	g, err := ForPaper(election.PaperLetter)
	require.NoError(t, err)

	r := g.GridRectToPDF(election.Rect{X: 2, Y: 10, Width: 4, Height: 1})
	topLeft := g.GridToPDF(2, 10)
	bottomRight := g.GridToPDF(6, 11)

	assert.InDelta(t, topLeft.X, r.X, eps)
	assert.InDelta(t, bottomRight.Y, r.Y, eps)
	assert.InDelta(t, bottomRight.X-topLeft.X, r.Width, eps)
	assert.InDelta(t, topLeft.Y-bottomRight.Y, r.Height, eps)
}

func TestPageIndex(t *testing.T) {
	assert.Equal(t, 0, PageIndex(1, election.SideFront))
	assert.Equal(t, 1, PageIndex(1, election.SideBack))
	assert.Equal(t, 2, PageIndex(2, election.SideFront))
	assert.Equal(t, 5, PageIndex(3, election.SideBack))
}

func TestMillimetersToPoints(t *testing.T) {
	assert.InDelta(t, 72.0, MillimetersToPoints(25.4), eps)
	assert.InDelta(t, 0.0, MillimetersToPoints(0), eps)
}
