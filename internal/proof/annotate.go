// Package proof draws audit overlays that show what every grid position on a
// ballot represents.
package proof

import (
	"context"

	"ballotqa/internal/election"
	"ballotqa/internal/geometry"
	"ballotqa/internal/logging"
	"ballotqa/internal/pdfdoc"
)

const (
	crosshairSize    = 10.0
	highlightOpacity = 0.3
)

// Annotate draws a crosshair and label at every grid position of the ballot
// style, plus a highlighted caption box over every write-in area.
func Annotate(ctx context.Context, e *election.Election, ballotStyleID string, canvas pdfdoc.Canvas) error {
	return DefaultStyle.Annotate(ctx, e, ballotStyleID, canvas)
}

// Annotate is Annotate with this label style.
func (s Style) Annotate(ctx context.Context, e *election.Election, ballotStyleID string, canvas pdfdoc.Canvas) error {
	s = s.withDefaults()
	layout, err := e.GridLayout(ballotStyleID)
	if err != nil {
		return err
	}
	geo, err := geometry.ForPaper(e.BallotLayout.PaperSize)
	if err != nil {
		return err
	}

	for _, pos := range layout.GridPositions {
		if err := ctx.Err(); err != nil {
			return err
		}
		base := pos.Base()
		page := geometry.PageIndex(base.SheetNumber, base.Side)
		at := geo.GridToPDF(base.Column, base.Row)

		canvas.Crosshair(page, at, crosshairSize, pdfdoc.Red)

		text, size := s.Fit(LabelFor(e, pos), s.LabelBoxWidth, canvas.TextWidth)
		if text != "" {
			canvas.Text(page, geometry.Point{
				X: at.X + crosshairSize,
				Y: at.Y - size/3,
			}, text, size, pdfdoc.Blue)
		}

		wp, ok := pos.(election.WriteInPosition)
		if !ok {
			continue
		}
		area := geo.GridRectToPDF(wp.WriteInArea)
		canvas.Highlight(page, area, pdfdoc.Yellow, highlightOpacity)
		caption, csize := s.Fit(WriteInCaption(wp.WriteInIndex, contestTitle(e, base.ContestID)), area.Width-4, canvas.TextWidth)
		if caption != "" {
			canvas.Text(page, geometry.Point{X: area.X + 2, Y: area.Y + 2}, caption, csize, pdfdoc.Black)
		}
	}
	logging.ProofDebug("annotated %d grid positions for ballot style %s", len(layout.GridPositions), ballotStyleID)
	return nil
}

// AnnotatePDF stamps the proof overlay onto base and returns the new PDF.
func AnnotatePDF(ctx context.Context, e *election.Election, ballotStyleID string, base []byte) ([]byte, error) {
	return DefaultStyle.AnnotatePDF(ctx, e, ballotStyleID, base)
}

// AnnotatePDF is AnnotatePDF with this label style.
func (s Style) AnnotatePDF(ctx context.Context, e *election.Election, ballotStyleID string, base []byte) ([]byte, error) {
	overlay := pdfdoc.NewOverlay()
	if err := s.Annotate(ctx, e, ballotStyleID, overlay); err != nil {
		return nil, err
	}
	out, err := overlay.Apply(base)
	if err != nil {
		return nil, err
	}
	logging.Proof("wrote proof overlay for ballot style %s (%d stamps)", ballotStyleID, overlay.Len())
	return out, nil
}
