package marking

import (
	"context"
	"errors"
	"testing"

	"ballotqa/internal/election"
	"ballotqa/internal/election/electiontest"
	"ballotqa/internal/geometry"
	"ballotqa/internal/pdfdoc"
	"ballotqa/internal/pdfdoc/pdfdoctest"
	"ballotqa/internal/votes"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIn(i int) votes.Vote {
	return votes.CandidateVote{Candidate: votes.WriteInCandidate(i, votes.TestWriteInName)}
}

func candidate(id, name string) votes.Vote {
	return votes.CandidateVote{Candidate: election.Candidate{ID: id, Name: name}}
}

func twoSheetVotes() votes.Dict {
	return votes.Dict{
		"mayor":   {candidate("alice", "Alice Adams")},
		"council": {candidate("carol", "Carol Chen"), candidate("dave", "Dave Diaz")},
		"prop-1":  {votes.OptionVote("prop-1-yes")},
		"board":   {candidate("frank", "Frank Fox"), writeIn(0), writeIn(2)},
	}
}

// passthrough returns the base PDF untouched and records the request.
func passthrough(got *RenderRequest) OverlayRenderer {
	return RendererFunc(func(_ context.Context, req RenderRequest) ([]byte, error) {
		*got = req
		return req.BasePDF, nil
	})
}

func TestSheetVotes_TwoSheets(t *testing.T) {
	e := electiontest.Sample()
	layout, err := e.GridLayout("bs-2")
	require.NoError(t, err)
	v := twoSheetVotes()

	sheet1 := SheetVotes(layout, v, 1)
	sheet2 := SheetVotes(layout, v, 2)

	if diff := cmp.Diff(votes.Dict{"mayor": v["mayor"], "council": v["council"]}, sheet1); diff != "" {
		t.Errorf("sheet 1 votes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(votes.Dict{"prop-1": v["prop-1"], "board": v["board"]}, sheet2); diff != "" {
		t.Errorf("sheet 2 votes (-want +got):\n%s", diff)
	}
	assert.Empty(t, SheetVotes(layout, v, 3))
}

func TestSheetVotes_UnknownVotesDropped(t *testing.T) {
	e := electiontest.Sample()
	layout, err := e.GridLayout("bs-1")
	require.NoError(t, err)

	got := SheetVotes(layout, votes.Dict{
		"mayor": {candidate("zed", "Zed"), writeIn(5), writeIn(0)},
		"ghost": {votes.OptionVote("x")},
	}, 1)
	assert.Equal(t, votes.Dict{"mayor": {writeIn(0)}}, got)
}

func TestPositionMatches(t *testing.T) {
	opt := election.OptionPosition{PositionBase: election.PositionBase{ContestID: "prop-1"}, OptionID: "prop-1-no"}
	wi := election.WriteInPosition{PositionBase: election.PositionBase{ContestID: "board"}, WriteInIndex: 1}

	assert.True(t, PositionMatches(opt, "prop-1", votes.OptionVote("prop-1-no")))
	assert.False(t, PositionMatches(opt, "prop-1", votes.OptionVote("prop-1-yes")))
	assert.False(t, PositionMatches(opt, "other", votes.OptionVote("prop-1-no")))
	assert.True(t, PositionMatches(wi, "board", writeIn(1)))
	assert.False(t, PositionMatches(wi, "board", writeIn(0)))
	assert.False(t, PositionMatches(wi, "board", candidate("frank", "Frank Fox")))
}

func TestMarkBallot_PassesRequest(t *testing.T) {
	e := electiontest.Sample()
	var got RenderRequest
	cal := Calibration{OffsetMmX: 1.5, OffsetMmY: -0.5}
	m := NewMarker(passthrough(&got), cal)
	base := pdfdoctest.BlankLetter(2)
	v := votes.Dict{"mayor": {writeIn(0)}}

	out, err := m.MarkBallot(context.Background(), e, "bs-1", v, base, UnmarkedWriteInPolicy)
	require.NoError(t, err)
	assert.Equal(t, base, out)
	assert.Equal(t, "bs-1", got.BallotStyleID)
	assert.Equal(t, cal, got.Calibration)
	assert.Equal(t, v, got.Votes)
	require.NotNil(t, got.OnDraw)
}

func TestMarkBallot_NoGridLayout(t *testing.T) {
	e := electiontest.Sample()
	e.GridLayouts = e.GridLayouts[:1]
	called := false
	m := NewMarker(RendererFunc(func(context.Context, RenderRequest) ([]byte, error) {
		called = true
		return nil, nil
	}), Calibration{})

	_, err := m.MarkBallot(context.Background(), e, "bs-2", votes.Dict{}, pdfdoctest.BlankLetter(4), nil)
	assert.ErrorIs(t, err, election.ErrGridLayoutNotFound)
	assert.False(t, called)
}

func TestMarkBallot_RendererError(t *testing.T) {
	boom := errors.New("boom")
	m := NewMarker(RendererFunc(func(context.Context, RenderRequest) ([]byte, error) {
		return nil, boom
	}), Calibration{})
	_, err := m.MarkBallot(context.Background(), electiontest.Sample(), "bs-1", votes.Dict{}, nil, nil)
	assert.ErrorIs(t, err, boom)
}

func TestMarkBallot_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var got RenderRequest
	m := NewMarker(passthrough(&got), Calibration{})
	_, err := m.MarkBallot(ctx, electiontest.Sample(), "bs-1", votes.Dict{}, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitSheets(t *testing.T) {
	e := electiontest.Sample()
	m := NewMarker(nil, Calibration{})
	v := twoSheetVotes()

	sheets, err := m.SplitSheets(e, "bs-2", v, pdfdoctest.BlankLetter(4))
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	for i, s := range sheets {
		assert.Equal(t, i+1, s.Number)
		assert.Equal(t, 2, s.Pages)
		n, err := pdfdoc.PageCount(s.PDF)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}
	assert.ElementsMatch(t, []string{"council", "mayor"}, sheets[0].Votes.ContestIDs())
	assert.ElementsMatch(t, []string{"board", "prop-1"}, sheets[1].Votes.ContestIDs())
}

func TestSplitSheets_OddPageCount(t *testing.T) {
	e := electiontest.Sample()
	m := NewMarker(nil, Calibration{})

	sheets, err := m.SplitSheets(e, "bs-2", twoSheetVotes(), pdfdoctest.BlankLetter(3))
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, 1, sheets[1].Pages)
	n, err := pdfdoc.PageCount(sheets[1].PDF)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMarkAndSplit(t *testing.T) {
	e := electiontest.Sample()
	var got RenderRequest
	m := NewMarker(passthrough(&got), Calibration{})

	mb, err := m.MarkAndSplit(context.Background(), e, "bs-1", votes.Dict{"mayor": {candidate("bob", "Bob Baker")}}, pdfdoctest.BlankLetter(2), nil)
	require.NoError(t, err)
	assert.Equal(t, "bs-1", mb.BallotStyleID)
	require.Len(t, mb.Sheets, 1)
	assert.Equal(t, votes.Dict{"mayor": {candidate("bob", "Bob Baker")}}, mb.Sheets[0].Votes)
}

func TestUnmarkedWriteInPolicy(t *testing.T) {
	wi := election.WriteInPosition{}
	opt := election.OptionPosition{}
	assert.Equal(t, Ignore, UnmarkedWriteInPolicy(MarkBubble, wi, writeIn(0)))
	assert.Equal(t, Draw, UnmarkedWriteInPolicy(MarkWriteInText, wi, writeIn(0)))
	assert.Equal(t, Draw, UnmarkedWriteInPolicy(MarkBubble, opt, candidate("alice", "Alice")))

	assert.Nil(t, PolicyFor(votes.PatternValid))
	assert.NotNil(t, PolicyFor(votes.PatternUnmarkedWriteIn))
	assert.Equal(t, "ignore", Ignore.String())
}

// recordingCanvas captures primitives instead of drawing them.
type recordingCanvas struct {
	boxes []mark
	texts []mark
}

type mark struct {
	page int
	at   geometry.Point
	text string
}

func (c *recordingCanvas) Text(page int, at geometry.Point, text string, _ float64, _ pdfdoc.Color) {
	c.texts = append(c.texts, mark{page: page, at: at, text: text})
}
func (c *recordingCanvas) Crosshair(int, geometry.Point, float64, pdfdoc.Color) {}
func (c *recordingCanvas) Highlight(int, geometry.Rect, pdfdoc.Color, float64)  {}
func (c *recordingCanvas) TextWidth(text string, size float64) float64 {
	return float64(len(text)) * size / 2
}
func (c *recordingCanvas) FilledBox(page int, r geometry.Rect, _ pdfdoc.Color) {
	c.boxes = append(c.boxes, mark{page: page, at: r.Center()})
}

func drawWith(t *testing.T, req RenderRequest) *recordingCanvas {
	t.Helper()
	layout, err := req.Election.GridLayout(req.BallotStyleID)
	require.NoError(t, err)
	geo, err := geometry.ForPaper(req.Election.BallotLayout.PaperSize)
	require.NoError(t, err)
	c := &recordingCanvas{}
	require.NoError(t, NewStampRenderer().draw(context.Background(), c, geo, layout, req))
	return c
}

func TestStampRenderer_PlacesMarks(t *testing.T) {
	e := electiontest.Sample()
	geo, err := geometry.ForPaper(e.BallotLayout.PaperSize)
	require.NoError(t, err)

	c := drawWith(t, RenderRequest{
		Election:      e,
		BallotStyleID: "bs-2",
		Votes:         twoSheetVotes(),
	})

	// alice, carol, dave, prop-1-yes, frank, write-in 0, write-in 2
	require.Len(t, c.boxes, 7)
	require.Len(t, c.texts, 2)
	for _, txt := range c.texts {
		assert.Equal(t, votes.TestWriteInName, txt.text)
		assert.Equal(t, 3, txt.page, "board write-ins are on sheet 2 back")
	}

	pages := map[int]int{}
	for _, b := range c.boxes {
		pages[b.page]++
	}
	assert.Equal(t, map[int]int{0: 1, 1: 2, 2: 1, 3: 3}, pages)

	want := geo.GridToPDF(12, 10)
	var found bool
	for _, b := range c.boxes {
		if b.page == 2 {
			assert.InDelta(t, want.X, b.at.X, 1e-9)
			assert.InDelta(t, want.Y, b.at.Y, 1e-9)
			found = true
		}
	}
	assert.True(t, found)
}

func TestStampRenderer_Calibration(t *testing.T) {
	e := electiontest.Sample()
	v := votes.Dict{"mayor": {candidate("alice", "Alice Adams")}}

	plain := drawWith(t, RenderRequest{Election: e, BallotStyleID: "bs-1", Votes: v})
	shifted := drawWith(t, RenderRequest{
		Election:      e,
		BallotStyleID: "bs-1",
		Votes:         v,
		Calibration:   Calibration{OffsetMmX: 25.4, OffsetMmY: 25.4},
	})
	require.Len(t, plain.boxes, 1)
	require.Len(t, shifted.boxes, 1)
	assert.InDelta(t, plain.boxes[0].at.X+72, shifted.boxes[0].at.X, 1e-9)
	assert.InDelta(t, plain.boxes[0].at.Y-72, shifted.boxes[0].at.Y, 1e-9, "positive Y moves down the page")
}

func TestStampRenderer_UnmarkedWriteIn(t *testing.T) {
	e := electiontest.Sample()
	c := drawWith(t, RenderRequest{
		Election:      e,
		BallotStyleID: "bs-1",
		Votes:         votes.Dict{"mayor": {writeIn(0)}},
		OnDraw:        UnmarkedWriteInPolicy,
	})
	assert.Empty(t, c.boxes)
	require.Len(t, c.texts, 1)
	assert.Equal(t, votes.TestWriteInName, c.texts[0].text)
}

func TestStampRenderer_SkipsUnknownVotes(t *testing.T) {
	c := drawWith(t, RenderRequest{
		Election:      electiontest.Sample(),
		BallotStyleID: "bs-1",
		Votes:         votes.Dict{"mayor": {candidate("nobody", "Nobody")}, "board": {writeIn(0)}},
	})
	assert.Empty(t, c.boxes)
	assert.Empty(t, c.texts)
}

func TestStampRenderer_EndToEnd(t *testing.T) {
	e := electiontest.Sample()
	m := NewMarker(NewStampRenderer(), Calibration{})
	base := pdfdoctest.BlankLetter(4)

	mb, err := m.MarkAndSplit(context.Background(), e, "bs-2", twoSheetVotes(), base, nil)
	require.NoError(t, err)
	assert.Greater(t, len(mb.PDF), len(base))
	n, err := pdfdoc.PageCount(mb.PDF)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Len(t, mb.Sheets, 2)
}
