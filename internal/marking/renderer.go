// Package marking renders intended votes onto blank ballot PDFs and splits the
// result into per-sheet documents with the votes each sheet physically carries.
package marking

import (
	"context"

	"ballotqa/internal/election"
	"ballotqa/internal/votes"
)

// MarkKind names the two things a renderer may draw for a vote.
type MarkKind string

const (
	MarkBubble      MarkKind = "bubble"
	MarkWriteInText MarkKind = "write-in-text"
)

// DrawDecision is the answer a DrawPolicy gives for a single mark.
type DrawDecision int

const (
	Draw DrawDecision = iota
	Ignore
)

func (d DrawDecision) String() string {
	if d == Ignore {
		return "ignore"
	}
	return "draw"
}

// DrawPolicy lets a caller veto individual marks. A nil policy draws
// everything.
type DrawPolicy func(kind MarkKind, pos election.GridPosition, vote votes.Vote) DrawDecision

// UnmarkedWriteInPolicy writes the write-in name but leaves the write-in
// bubble empty. Printed-candidate bubbles are still filled.
func UnmarkedWriteInPolicy(kind MarkKind, pos election.GridPosition, _ votes.Vote) DrawDecision {
	if kind == MarkBubble && pos.Type() == election.GridPositionTypeWriteIn {
		return Ignore
	}
	return Draw
}

// PolicyFor returns the draw policy a pattern needs, or nil.
func PolicyFor(p votes.Pattern) DrawPolicy {
	if p == votes.PatternUnmarkedWriteIn {
		return UnmarkedWriteInPolicy
	}
	return nil
}

func (p DrawPolicy) decide(kind MarkKind, pos election.GridPosition, vote votes.Vote) DrawDecision {
	if p == nil {
		return Draw
	}
	return p(kind, pos, vote)
}

// Calibration shifts every mark to compensate for printer drift. Positive X
// moves right and positive Y moves down the page.
type Calibration struct {
	OffsetMmX float64 `yaml:"offset_mm_x" json:"offsetMmX"`
	OffsetMmY float64 `yaml:"offset_mm_y" json:"offsetMmY"`
}

// RenderRequest is everything a renderer needs to mark one ballot.
type RenderRequest struct {
	Election      *election.Election
	BallotStyleID string
	Votes         votes.Dict
	Calibration   Calibration
	BasePDF       []byte
	OnDraw        DrawPolicy
}

// OverlayRenderer draws votes onto a base ballot PDF.
type OverlayRenderer interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// RendererFunc adapts a function to OverlayRenderer.
type RendererFunc func(ctx context.Context, req RenderRequest) ([]byte, error)

func (f RendererFunc) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	return f(ctx, req)
}
