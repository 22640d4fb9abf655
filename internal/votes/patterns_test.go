package votes

import (
	"fmt"
	"testing"

	"ballotqa/internal/election"
	"ballotqa/internal/election/electiontest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateContest(id string, seats, numCandidates int, writeIns bool) *election.CandidateContest {
	c := &election.CandidateContest{ID: id, DistrictID: "d1", Title: id, Seats: seats, AllowWriteIns: writeIns}
	for i := 0; i < numCandidates; i++ {
		c.Candidates = append(c.Candidates, election.Candidate{
			ID:   fmt.Sprintf("%s-c%d", id, i),
			Name: fmt.Sprintf("Candidate %d", i),
		})
	}
	return c
}

func yesNoContest(id string) *election.YesNoContest {
	return &election.YesNoContest{
		ID:         id,
		DistrictID: "d1",
		Title:      id,
		YesOption:  election.YesNoOption{ID: id + "-yes", Label: "Yes"},
		NoOption:   election.YesNoOption{ID: id + "-no", Label: "No"},
	}
}

func optionIDs(vs []Vote) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.OptionID())
	}
	return out
}

// =============================================================================
// VALID
// =============================================================================

func TestGenerateValidVotes_FirstSeatsCandidates(t *testing.T) {
	for seats := 0; seats <= 4; seats++ {
		for extra := 0; extra <= 2; extra++ {
			c := candidateContest("c", seats, seats+extra, true)
			d := GenerateValidVotes([]election.Contest{c})
			got := d["c"]
			require.Len(t, got, seats, "seats=%d candidates=%d", seats, seats+extra)
			for i, v := range got {
				cv, ok := v.(CandidateVote)
				require.True(t, ok)
				assert.False(t, cv.IsWriteIn)
				assert.Equal(t, c.Candidates[i].ID, cv.ID, "declared order")
			}
		}
	}
}

func TestGenerateValidVotes_FillsWithWriteIns(t *testing.T) {
	c := candidateContest("board", 3, 1, true)
	d := GenerateValidVotes([]election.Contest{c})

	assert.Equal(t, []string{"board-c0", "write-in-0", "write-in-1"}, optionIDs(d["board"]))
	wi := d["board"][2].(CandidateVote)
	assert.True(t, wi.IsWriteIn)
	require.NotNil(t, wi.WriteInIndex)
	assert.Equal(t, 1, *wi.WriteInIndex)
	assert.Equal(t, TestWriteInName, wi.Name)
}

func TestGenerateValidVotes_NoWriteInsUndervotes(t *testing.T) {
	c := candidateContest("c", 3, 1, false)
	d := GenerateValidVotes([]election.Contest{c})
	assert.Equal(t, []string{"c-c0"}, optionIDs(d["c"]))
}

func TestGenerateValidVotes_YesNo(t *testing.T) {
	d := GenerateValidVotes([]election.Contest{yesNoContest("m")})
	assert.Equal(t, []Vote{OptionVote("m-yes")}, d["m"])
}

func TestGenerateValidVotes_SkipsDeclaredWriteInCandidates(t *testing.T) {
	c := candidateContest("c", 1, 0, false)
	c.Candidates = []election.Candidate{
		{ID: "registered-write-in", Name: "Someone", IsWriteIn: true},
		{ID: "real", Name: "Real Person"},
	}
	d := GenerateValidVotes([]election.Contest{c})
	assert.Equal(t, []string{"real"}, optionIDs(d["c"]))
}

// =============================================================================
// OVERVOTE
// =============================================================================

func TestOvervoteSelection(t *testing.T) {
	sel, ok := OvervoteSelection(candidateContest("c", 1, 2, false))
	assert.True(t, ok)
	assert.Len(t, sel, 2)

	sel, ok = OvervoteSelection(candidateContest("c", 2, 1, false))
	assert.False(t, ok)
	assert.Equal(t, []string{"c-c0"}, optionIDs(sel))

	sel, ok = OvervoteSelection(candidateContest("c", 2, 1, true))
	assert.True(t, ok)
	assert.Equal(t, []string{"c-c0", "write-in-0", "write-in-1"}, optionIDs(sel))

	sel, ok = OvervoteSelection(yesNoContest("m"))
	assert.True(t, ok)
	assert.Equal(t, []string{"m-yes", "m-no"}, optionIDs(sel))
}

func TestGenerateOvervoteVotes(t *testing.T) {
	contests := []election.Contest{
		candidateContest("a", 1, 2, false),
		candidateContest("b", 2, 1, false),
	}
	r := GenerateOvervoteVotes(contests)
	d, ok := r.Votes()
	require.True(t, ok)
	assert.Equal(t, PatternOvervote, r.Pattern())
	assert.Len(t, d["a"], 2)
	assert.Equal(t, []string{"b-c0"}, optionIDs(d["b"]), "fallback votes normally")
}

func TestGenerateOvervoteVotes_NotApplicable(t *testing.T) {
	r := GenerateOvervoteVotes([]election.Contest{candidateContest("b", 2, 1, false)})
	assert.False(t, r.IsApplicable())
	d, ok := r.Votes()
	assert.False(t, ok)
	assert.Nil(t, d)

	r = GenerateOvervoteVotes(nil)
	assert.False(t, r.IsApplicable())
}

// =============================================================================
// WRITE-IN AND BLANK
// =============================================================================

func TestGenerateWriteInVotes(t *testing.T) {
	contests := []election.Contest{
		candidateContest("a", 1, 2, true),
		candidateContest("b", 1, 2, false),
		candidateContest("z", 0, 2, true),
		yesNoContest("m"),
	}
	r := GenerateWriteInVotes(contests)
	d, ok := r.Votes()
	require.True(t, ok)

	want := Dict{"a": {CandidateVote{Candidate: WriteInCandidate(0, TestWriteInName)}}}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("write-in votes mismatch (-want +got):\n%s", diff)
	}
	assert.NotEqual(t, "Write-In", d["a"][0].(CandidateVote).Name)
}

func TestGenerateWriteInVotes_NotApplicable(t *testing.T) {
	r := GenerateWriteInVotes([]election.Contest{candidateContest("b", 1, 2, false), yesNoContest("m")})
	assert.False(t, r.IsApplicable())
}

func TestGenerate_Dispatch(t *testing.T) {
	e := electiontest.Sample()
	contests, err := election.ContestsForBallotStyle(e, "bs-2")
	require.NoError(t, err)

	for _, p := range AllPatterns {
		r := Generate(p, contests)
		assert.Equal(t, p, r.Pattern())
		assert.True(t, r.IsApplicable(), "pattern %s should apply to bs-2", p)
	}

	marked, _ := Generate(PatternMarkedWriteIn, contests).Votes()
	unmarked, _ := Generate(PatternUnmarkedWriteIn, contests).Votes()
	if diff := cmp.Diff(marked, unmarked); diff != "" {
		t.Errorf("marked and unmarked write-in votes differ:\n%s", diff)
	}

	blank, _ := Generate(PatternBlank, contests).Votes()
	assert.Empty(t, blank)
}

func TestResultIsImmutable(t *testing.T) {
	d := Dict{"a": {OptionVote("x")}}
	r := Applicable(PatternValid, d)
	d["a"][0] = OptionVote("changed")

	got, _ := r.Votes()
	assert.Equal(t, OptionVote("x"), got["a"][0])
	got["a"] = nil
	again, _ := r.Votes()
	assert.Len(t, again["a"], 1)
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("unmarked-write-in")
	require.NoError(t, err)
	assert.Equal(t, PatternUnmarkedWriteIn, p)

	_, err = ParsePattern("undervote")
	assert.Error(t, err)
}
