package proof

import (
	"fmt"

	"ballotqa/internal/election"
)

// Label font range and the fixed box every label is fitted into, in points.
const (
	MaxLabelFontSize = 8.0
	MinLabelFontSize = 5.0
	LabelFontStep    = 0.5
	LabelBoxWidth    = 110.0
)

// Ellipsis marks a truncated label.
const Ellipsis = "…"

// MeasureFunc returns the width of text set at fontSize.
type MeasureFunc func(text string, fontSize float64) float64

// Style sizes proof labels.
type Style struct {
	LabelBoxWidth float64
	MaxFontSize   float64
	MinFontSize   float64
}

// DefaultStyle is used by Annotate and FitLabel.
var DefaultStyle = Style{
	LabelBoxWidth: LabelBoxWidth,
	MaxFontSize:   MaxLabelFontSize,
	MinFontSize:   MinLabelFontSize,
}

func (s Style) withDefaults() Style {
	if s.LabelBoxWidth <= 0 {
		s.LabelBoxWidth = LabelBoxWidth
	}
	if s.MaxFontSize <= 0 {
		s.MaxFontSize = MaxLabelFontSize
	}
	if s.MinFontSize <= 0 || s.MinFontSize > s.MaxFontSize {
		s.MinFontSize = min(MinLabelFontSize, s.MaxFontSize)
	}
	return s
}

// Fit shrinks text from MaxFontSize towards MinFontSize until it fits
// boxWidth, then truncates with an ellipsis. The result never exceeds
// boxWidth; if not even the ellipsis fits, the label is empty.
func (s Style) Fit(text string, boxWidth float64, measure MeasureFunc) (string, float64) {
	s = s.withDefaults()
	for size := s.MaxFontSize; size >= s.MinFontSize; size -= LabelFontStep {
		if measure(text, size) <= boxWidth {
			return text, size
		}
	}

	runes := []rune(text)
	for n := len(runes) - 1; n >= 0; n-- {
		candidate := string(runes[:n]) + Ellipsis
		if measure(candidate, s.MinFontSize) <= boxWidth {
			return candidate, s.MinFontSize
		}
	}
	return "", s.MinFontSize
}

// FitLabel fits text using DefaultStyle.
func FitLabel(text string, boxWidth float64, measure MeasureFunc) (string, float64) {
	return DefaultStyle.Fit(text, boxWidth, measure)
}

// WriteInLabel is the human ordinal of a write-in line.
func WriteInLabel(index int) string {
	return fmt.Sprintf("Write-in #%d", index+1)
}

// WriteInCaption combines the write-in ordinal with the contest title.
func WriteInCaption(index int, contestTitle string) string {
	return WriteInLabel(index) + " · " + contestTitle
}

// LabelFor resolves the text identifying what a grid position represents.
func LabelFor(e *election.Election, pos election.GridPosition) string {
	if wp, ok := pos.(election.WriteInPosition); ok {
		return WriteInLabel(wp.WriteInIndex)
	}
	op, ok := pos.(election.OptionPosition)
	if !ok {
		return pos.Base().ContestID
	}
	contest, err := e.Contest(op.ContestID)
	if err != nil {
		return op.ContestID
	}
	switch c := contest.(type) {
	case *election.CandidateContest:
		if cand, ok := c.Candidate(op.OptionID); ok {
			return cand.Name
		}
	case *election.YesNoContest:
		if opt, ok := c.Option(op.OptionID); ok {
			return opt.Label
		}
	}
	return op.OptionID
}

func contestTitle(e *election.Election, contestID string) string {
	if c, err := e.Contest(contestID); err == nil {
		return c.ContestTitle()
	}
	return contestID
}
