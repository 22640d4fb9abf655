package election

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrBallotStyleNotFound is returned when a ballot style id is unknown.
	ErrBallotStyleNotFound = errors.New("ballot style not found")
	// ErrPrecinctNotFound is returned when a precinct id is unknown.
	ErrPrecinctNotFound = errors.New("precinct not found")
	// ErrGridLayoutNotFound is returned when no grid layout exists for a ballot style.
	ErrGridLayoutNotFound = errors.New("grid layout not found")
	// ErrContestNotFound is returned when a contest id is unknown.
	ErrContestNotFound = errors.New("contest not found")
)

// BallotStyle returns the ballot style with the given id.
func (e *Election) BallotStyle(id string) (BallotStyle, error) {
	for _, bs := range e.BallotStyles {
		if bs.ID == id {
			return bs, nil
		}
	}
	return BallotStyle{}, fmt.Errorf("%w: %s", ErrBallotStyleNotFound, id)
}

// Contest returns the contest with the given id.
func (e *Election) Contest(id string) (Contest, error) {
	for _, c := range e.Contests {
		if c.ContestID() == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrContestNotFound, id)
}

// GridLayout returns the grid layout for a ballot style.
func (e *Election) GridLayout(ballotStyleID string) (*GridLayout, error) {
	for i := range e.GridLayouts {
		if e.GridLayouts[i].BallotStyleID == ballotStyleID {
			return &e.GridLayouts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrGridLayoutNotFound, ballotStyleID)
}

// ContestsForBallotStyle returns the contests whose district is covered by
// the ballot style, in declaration order.
func ContestsForBallotStyle(e *Election, ballotStyleID string) ([]Contest, error) {
	bs, err := e.BallotStyle(ballotStyleID)
	if err != nil {
		return nil, err
	}
	var contests []Contest
	for _, c := range e.Contests {
		if slices.Contains(bs.Districts, c.ContestDistrictID()) {
			contests = append(contests, c)
		}
	}
	return contests, nil
}

// BallotStylesForPrecinct returns the ballot styles that list the precinct.
func BallotStylesForPrecinct(e *Election, precinctID string) ([]BallotStyle, error) {
	known := slices.ContainsFunc(e.Precincts, func(p Precinct) bool { return p.ID == precinctID })
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrPrecinctNotFound, precinctID)
	}
	var styles []BallotStyle
	for _, bs := range e.BallotStyles {
		if slices.Contains(bs.Precincts, precinctID) {
			styles = append(styles, bs)
		}
	}
	return styles, nil
}

// PositionsForContest returns the grid positions printed for a contest.
func (g *GridLayout) PositionsForContest(contestID string) []GridPosition {
	var out []GridPosition
	for _, p := range g.GridPositions {
		if p.Base().ContestID == contestID {
			out = append(out, p)
		}
	}
	return out
}

// SheetCount returns the number of sheets referenced by the layout.
func (g *GridLayout) SheetCount() int {
	n := 0
	for _, p := range g.GridPositions {
		n = max(n, p.Base().SheetNumber)
	}
	return n
}
