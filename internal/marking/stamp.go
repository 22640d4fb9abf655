package marking

import (
	"context"

	"ballotqa/internal/election"
	"ballotqa/internal/geometry"
	"ballotqa/internal/logging"
	"ballotqa/internal/pdfdoc"
	"ballotqa/internal/votes"
)

// Default mark sizes in points. A printed bubble is roughly 0.2in by 0.13in;
// the fill stays inside it.
const (
	DefaultBubbleWidth     = 12.0
	DefaultBubbleHeight    = 8.0
	DefaultWriteInFontSize = 10.0
)

// StampRenderer marks ballots by stamping filled boxes and write-in text onto
// the base PDF.
type StampRenderer struct {
	BubbleWidth     float64
	BubbleHeight    float64
	WriteInFontSize float64
}

// NewStampRenderer returns a renderer with the default mark sizes.
func NewStampRenderer() *StampRenderer {
	return &StampRenderer{
		BubbleWidth:     DefaultBubbleWidth,
		BubbleHeight:    DefaultBubbleHeight,
		WriteInFontSize: DefaultWriteInFontSize,
	}
}

var _ OverlayRenderer = (*StampRenderer)(nil)

// Render implements OverlayRenderer.
func (r *StampRenderer) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	layout, err := req.Election.GridLayout(req.BallotStyleID)
	if err != nil {
		return nil, err
	}
	geo, err := geometry.ForPaper(req.Election.BallotLayout.PaperSize)
	if err != nil {
		return nil, err
	}
	overlay := pdfdoc.NewOverlay()
	if err := r.draw(ctx, overlay, geo, layout, req); err != nil {
		return nil, err
	}
	return overlay.Apply(req.BasePDF)
}

func (r *StampRenderer) draw(ctx context.Context, canvas pdfdoc.Canvas, geo geometry.Geometry, layout *election.GridLayout, req RenderRequest) error {
	dx := geometry.MillimetersToPoints(req.Calibration.OffsetMmX)
	dy := -geometry.MillimetersToPoints(req.Calibration.OffsetMmY)

	drawn := 0
	for _, contestID := range req.Votes.ContestIDs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, vote := range req.Votes[contestID] {
			pos, ok := FindPosition(layout, contestID, vote)
			if !ok {
				logging.MarkingWarn("no grid position for %s/%s on ballot style %s, skipping",
					contestID, vote.OptionID(), req.BallotStyleID)
				continue
			}
			base := pos.Base()
			page := geometry.PageIndex(base.SheetNumber, base.Side)

			if req.OnDraw.decide(MarkBubble, pos, vote) == Draw {
				c := geo.GridToPDF(base.Column, base.Row)
				canvas.FilledBox(page, geometry.Rect{
					X:      c.X + dx - r.BubbleWidth/2,
					Y:      c.Y + dy - r.BubbleHeight/2,
					Width:  r.BubbleWidth,
					Height: r.BubbleHeight,
				}, pdfdoc.Black)
				drawn++
			}

			wp, isWriteIn := pos.(election.WriteInPosition)
			cv, isCandidate := vote.(votes.CandidateVote)
			if isWriteIn && isCandidate && cv.Name != "" && req.OnDraw.decide(MarkWriteInText, pos, vote) == Draw {
				area := geo.GridRectToPDF(wp.WriteInArea)
				canvas.Text(page, geometry.Point{
					X: area.X + dx + 2,
					Y: area.Y + dy + area.Height*0.3,
				}, cv.Name, r.WriteInFontSize, pdfdoc.Black)
				drawn++
			}
		}
	}
	logging.MarkingDebug("drew %d marks on ballot style %s", drawn, req.BallotStyleID)
	return nil
}
