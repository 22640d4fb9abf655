package tally

import (
	"bytes"
	"testing"

	"ballotqa/internal/election"
	"ballotqa/internal/votes"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const exportHeader = "Sample General Election Tally Report\nContest,Contest ID,Selection,Selection ID,Total Votes\n"

func csvWith(rows string) *string {
	s := exportHeader + rows
	return &s
}

func TestParseCSVLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`Article 2,id1,"Yes, of course",id2,2`, []string{"Article 2", "id1", "Yes, of course", "id2", "2"}},
		{`"Say ""Hi""","World"`, []string{`Say "Hi"`, "World"}},
		{`  padded  , " kept " ,x`, []string{"padded", " kept ", "x"}},
		{`a,,b,`, []string{"a", "", "b", ""}},
		{``, []string{""}},
		{`"",x`, []string{"", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseCSVLine(tt.line)); diff != "" {
				t.Errorf("ParseCSVLine(%q) (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestParseTallyCSV(t *testing.T) {
	text := *csvWith(`Mayor,mayor,Alice Adams,alice,3
Mayor,mayor,Bob Brown,bob,0
Mayor,mayor,Overvotes,overvotes,4
Mayor,mayor,Undervotes,undervotes,1
Mayor,mayor,Write-In,write-in,2
"Mayor, City",mayor,Alice Adams,alice,1
Council,council,Carol Chen,carol,n/a
Council,council,short
` + "Council,council,Dave Diaz,dave,5\r\n")

	got := ParseTallyCSV(text)
	want := Counts{
		"mayor":   {"alice": 4, "bob": 0, "write-in": 2},
		"council": {"dave": 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseTallyCSV (-want +got):\n%s", diff)
	}
}

func TestParseTallyCSV_IgnoresTitleAndHeader(t *testing.T) {
	got := ParseTallyCSV("x,mayor,x,alice,9\nx,mayor,x,alice,9\n")
	assert.Empty(t, got)
}

func TestBuildExpected(t *testing.T) {
	mayorVote := func(id string) votes.Dict {
		return votes.Dict{"mayor": {votes.CandidateVote{Candidate: election.Candidate{ID: id}}}}
	}
	scans := []ScanResult{
		{Accepted: true, MarkPattern: votes.PatternValid, Votes: mayorVote("alice")},
		{Accepted: true, MarkPattern: votes.PatternValid, Votes: mayorVote("alice")},
		{Accepted: false, MarkPattern: votes.PatternOvervote, Votes: mayorVote("bob")},
		{Accepted: true, MarkPattern: votes.PatternMarkedWriteIn, Votes: votes.Dict{
			"mayor": {votes.CandidateVote{Candidate: votes.WriteInCandidate(0, "Mark Twain")}},
			"board": {
				votes.CandidateVote{Candidate: votes.WriteInCandidate(1, "Mark Twain")},
				votes.CandidateVote{Candidate: votes.WriteInCandidate(2, "Mark Twain")},
			},
		}},
		{Accepted: true, MarkPattern: votes.PatternUnmarkedWriteIn, Votes: mayorVote("write-in-0")},
		{Accepted: true, MarkPattern: votes.PatternValid, Votes: votes.Dict{"prop-1": {votes.OptionVote("prop-1-yes")}}},
	}
	manual := []ManualTally{
		{Tallies: map[string]map[string]int{"mayor": {"alice": 1, "bob": 2}}},
	}

	got := BuildExpected(scans, manual)
	want := Counts{
		"mayor":  {"alice": 3, "bob": 2, "write-in": 1},
		"board":  {"write-in": 2},
		"prop-1": {"prop-1-yes": 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildExpected (-want +got):\n%s", diff)
	}
	assert.Equal(t, 9, got.Total())
}

func TestCompare_Match(t *testing.T) {
	expected := Counts{"mayor": {"alice": 3}}
	actual := ParseTallyCSV(*csvWith("Mayor,mayor,Alice Adams,alice,3\n"))

	result := Compare(expected, actual)
	assert.True(t, result.IsValid)
	assert.Equal(t, "All 3 votes matched exactly", result.Message)
	assert.Empty(t, result.Mismatches)
}

func TestCompare_Mismatch(t *testing.T) {
	expected := Counts{"mayor": {"alice": 3}}
	actual := ParseTallyCSV(*csvWith("Mayor,mayor,Alice Adams,alice,2\n"))

	result := Compare(expected, actual)
	assert.False(t, result.IsValid)
	require.Len(t, result.Mismatches, 1)
	assert.Equal(t, Mismatch{ContestID: "mayor", OptionID: "alice", Expected: 3, Actual: 2}, result.Mismatches[0])
	for _, part := range []string{"mayor", "alice", "expected 3", "got 2"} {
		assert.Contains(t, result.Message, part)
	}
}

func TestCompare_MissingAndUnexpected(t *testing.T) {
	expected := Counts{"mayor": {"alice": 1, "bob": 1}}
	actual := Counts{"mayor": {"alice": 1, "zed": 2, "nobody": 0}, "ghost": {"x": 1}}

	result := Compare(expected, actual)
	assert.False(t, result.IsValid)
	assert.Equal(t, []Mismatch{
		{ContestID: "mayor", OptionID: "bob", Expected: 1, Actual: 0},
		{ContestID: "ghost", OptionID: "x", Actual: 1, Unexpected: true},
		{ContestID: "mayor", OptionID: "zed", Actual: 2, Unexpected: true},
	}, result.Mismatches)
	assert.Contains(t, result.Message, "unexpected votes in CSV")
}

func TestCompare_Deterministic(t *testing.T) {
	expected := Counts{"b": {"y": 1, "x": 1}, "a": {"z": 1}}
	first := Compare(expected, Counts{})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Message, Compare(expected, Counts{}).Message)
	}
}

func TestValidate(t *testing.T) {
	_, err := Validate(Outputs{})
	assert.ErrorIs(t, err, ErrMissingTallyCSV)

	outputs := Outputs{
		ScanResults: []ScanResult{
			{Accepted: true, MarkPattern: votes.PatternValid, Votes: votes.Dict{"prop-1": {votes.OptionVote("prop-1-no")}}},
		},
		ManualTallies: []ManualTally{{Tallies: map[string]map[string]int{"prop-1": {"prop-1-no": 4}}}},
		TallyCSV:      csvWith("Proposition 1,prop-1,No,prop-1-no,5\nProposition 1,prop-1,Yes,prop-1-yes,0\n"),
	}
	result, err := Validate(outputs)
	require.NoError(t, err)
	assert.True(t, result.IsValid, result.Message)
	assert.Equal(t, "All 5 votes matched exactly", result.Message)
}

func TestWriteXLSX(t *testing.T) {
	expected := Counts{"mayor": {"alice": 3, "bob": 1}}
	actual := Counts{"mayor": {"alice": 2, "bob": 1, "zed": 1}}
	result := Compare(expected, actual)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, expected, actual, result))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reconciliationSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Contest ID", "Option ID", "Expected", "Actual", "Status"},
		{"mayor", "alice", "3", "2", "mismatch"},
		{"mayor", "bob", "1", "1", "ok"},
		{"mayor", "zed", "0", "1", "unexpected"},
	}, rows)

	valid, err := f.GetCellValue(summarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "false", valid)

	mismatchStyle, err := f.GetCellStyle(reconciliationSheet, "E2")
	require.NoError(t, err)
	assert.NotZero(t, mismatchStyle, "mismatch rows are highlighted")
	okStyle, err := f.GetCellStyle(reconciliationSheet, "E3")
	require.NoError(t, err)
	assert.NotEqual(t, mismatchStyle, okStyle)
}

func TestSetRowReportsErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	assert.Error(t, setRow(f, "Sheet1", 0, "x"), "row numbers start at 1")
	assert.Error(t, setRow(f, "Missing", 1, "x"))
	require.NoError(t, setRow(f, "Sheet1", 2, "a", 7))

	v, err := f.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "7", v)
}

func TestCountsTable(t *testing.T) {
	c := Counts{}
	c.Add("mayor", "bob", 1)
	c.Add("mayor", "alice", 3)
	c.Add("council", "carol", 0)
	c.Add("council", "dave", 2)
	assert.Equal(t, "council,dave,2\nmayor,alice,3\nmayor,bob,1\n", c.Table())
	assert.Equal(t, "", Counts{}.Table())
}

func TestDiff(t *testing.T) {
	expected := Counts{}
	expected.Add("mayor", "alice", 3)
	expected.Add("mayor", "bob", 1)

	actual := Counts{}
	actual.Add("mayor", "alice", 2)
	actual.Add("mayor", "bob", 1)

	d := Diff(expected, actual)
	assert.Contains(t, d, "--- expected\n+++ actual\n")
	assert.Contains(t, d, "-mayor,alice,3\n")
	assert.Contains(t, d, "+mayor,alice,2\n")
	assert.Contains(t, d, " mayor,bob,1\n")

	assert.Empty(t, Diff(expected, expected))
}
