package marking

import (
	"context"
	"fmt"

	"ballotqa/internal/election"
	"ballotqa/internal/logging"
	"ballotqa/internal/pdfdoc"
	"ballotqa/internal/votes"
)

// Sheet is one physical sheet of a marked ballot.
type Sheet struct {
	Number int
	// PDF holds the front page and, when present, the back page.
	PDF   []byte
	Pages int
	Votes votes.Dict
}

// MarkedBallot is a fully marked ballot plus its per-sheet split.
type MarkedBallot struct {
	BallotStyleID string
	PDF           []byte
	Sheets        []Sheet
}

// Marker drives an OverlayRenderer and splits its output into sheets.
type Marker struct {
	renderer    OverlayRenderer
	calibration Calibration
}

// NewMarker creates a marker that renders with r and shifts every mark by cal.
func NewMarker(r OverlayRenderer, cal Calibration) *Marker {
	return &Marker{renderer: r, calibration: cal}
}

// MarkBallot draws v onto base and returns the marked document. The ballot
// style must have a grid layout.
func (m *Marker) MarkBallot(ctx context.Context, e *election.Election, ballotStyleID string, v votes.Dict, base []byte, policy DrawPolicy) ([]byte, error) {
	if _, err := e.GridLayout(ballotStyleID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.MarkingDebug("marking ballot style %s (%d votes)", ballotStyleID, v.Total())
	marked, err := m.renderer.Render(ctx, RenderRequest{
		Election:      e,
		BallotStyleID: ballotStyleID,
		Votes:         v,
		Calibration:   m.calibration,
		BasePDF:       base,
		OnDraw:        policy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render ballot style %s: %w", ballotStyleID, err)
	}
	return marked, nil
}

// SplitSheets cuts a marked ballot into sheets of two pages each. A trailing
// odd page becomes a front-only sheet.
func (m *Marker) SplitSheets(e *election.Election, ballotStyleID string, v votes.Dict, marked []byte) ([]Sheet, error) {
	layout, err := e.GridLayout(ballotStyleID)
	if err != nil {
		return nil, err
	}
	pageCount, err := pdfdoc.PageCount(marked)
	if err != nil {
		return nil, err
	}

	sheetCount := (pageCount + 1) / 2
	sheets := make([]Sheet, 0, sheetCount)
	for i := 1; i <= sheetCount; i++ {
		front := 2 * (i - 1)
		pages := []int{front}
		if front+1 < pageCount {
			pages = append(pages, front+1)
		}
		pdf, err := pdfdoc.ExtractPages(marked, pages...)
		if err != nil {
			return nil, fmt.Errorf("failed to extract sheet %d: %w", i, err)
		}
		sheets = append(sheets, Sheet{
			Number: i,
			PDF:    pdf,
			Pages:  len(pages),
			Votes:  SheetVotes(layout, v, i),
		})
	}
	logging.MarkingDebug("split ballot style %s into %d sheets", ballotStyleID, len(sheets))
	return sheets, nil
}

// MarkAndSplit marks a ballot and splits it in one step.
func (m *Marker) MarkAndSplit(ctx context.Context, e *election.Election, ballotStyleID string, v votes.Dict, base []byte, policy DrawPolicy) (*MarkedBallot, error) {
	marked, err := m.MarkBallot(ctx, e, ballotStyleID, v, base, policy)
	if err != nil {
		return nil, err
	}
	sheets, err := m.SplitSheets(e, ballotStyleID, v, marked)
	if err != nil {
		return nil, err
	}
	return &MarkedBallot{BallotStyleID: ballotStyleID, PDF: marked, Sheets: sheets}, nil
}

// SheetVotes returns the votes whose grid position is printed on the given
// sheet. Contests with nothing on the sheet are left out.
func SheetVotes(layout *election.GridLayout, v votes.Dict, sheetNumber int) votes.Dict {
	out := votes.Dict{}
	for contestID, vs := range v {
		var kept []votes.Vote
		for _, vote := range vs {
			for _, pos := range layout.GridPositions {
				if pos.Base().SheetNumber == sheetNumber && PositionMatches(pos, contestID, vote) {
					kept = append(kept, vote)
					break
				}
			}
		}
		if len(kept) > 0 {
			out[contestID] = kept
		}
	}
	return out
}

// PositionMatches reports whether pos is where vote for contestID is marked.
// Write-in votes match by write-in line, everything else by option id.
func PositionMatches(pos election.GridPosition, contestID string, vote votes.Vote) bool {
	if pos.Base().ContestID != contestID {
		return false
	}
	switch p := pos.(type) {
	case election.WriteInPosition:
		idx, ok := votes.WriteInIndexOf(vote)
		return ok && idx == p.WriteInIndex
	case election.OptionPosition:
		return p.OptionID == vote.OptionID()
	}
	return false
}

// FindPosition returns the first grid position that carries vote.
func FindPosition(layout *election.GridLayout, contestID string, vote votes.Vote) (election.GridPosition, bool) {
	for _, pos := range layout.GridPositions {
		if PositionMatches(pos, contestID, vote) {
			return pos, true
		}
	}
	return nil, false
}
