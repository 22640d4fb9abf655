// Package tally reconciles what was voted against the tally export produced
// by the system under test.
package tally

import (
	"sort"

	"ballotqa/internal/votes"
)

// WriteInBucket is the single option every write-in is counted under.
const WriteInBucket = "write-in"

// Counts maps contest id to option id to vote count.
type Counts map[string]map[string]int

// ExpectedVotes is built from recorded scans and manual tallies.
type ExpectedVotes = Counts

// ActualVotes is parsed from the tally export.
type ActualVotes = Counts

// Add increments one contest/option cell.
func (c Counts) Add(contestID, optionID string, n int) {
	options, ok := c[contestID]
	if !ok {
		options = make(map[string]int)
		c[contestID] = options
	}
	options[optionID] += n
}

// Get returns a cell, or zero when absent.
func (c Counts) Get(contestID, optionID string) int {
	return c[contestID][optionID]
}

// Has reports whether the cell was ever recorded.
func (c Counts) Has(contestID, optionID string) bool {
	_, ok := c[contestID][optionID]
	return ok
}

// Total sums every cell.
func (c Counts) Total() int {
	n := 0
	for _, options := range c {
		for _, v := range options {
			n += v
		}
	}
	return n
}

// ContestIDs returns contest ids in sorted order.
func (c Counts) ContestIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OptionIDs returns the option ids recorded for a contest in sorted order.
func (c Counts) OptionIDs(contestID string) []string {
	ids := make([]string, 0, len(c[contestID]))
	for id := range c[contestID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ScanResult is one recorded scan of a marked sheet.
type ScanResult struct {
	Accepted    bool          `json:"accepted"`
	MarkPattern votes.Pattern `json:"markPattern"`
	Votes       votes.Dict    `json:"votes"`
}

// ManualTally holds hand-entered counts: contest id to option id to count.
type ManualTally struct {
	Tallies map[string]map[string]int `json:"tallies"`
}

// Outputs collects every artifact reconciliation consumes.
type Outputs struct {
	ScanResults   []ScanResult
	ManualTallies []ManualTally
	// TallyCSV is nil until an export has been recorded.
	TallyCSV *string
}

// CanonicalOptionID maps a vote's option id to its tally bucket.
func CanonicalOptionID(optionID string) string {
	if votes.IsWriteInID(optionID) {
		return WriteInBucket
	}
	return optionID
}

// BuildExpected folds accepted scans and manual tallies into expected counts.
// Unmarked write-ins are not expected to register and are left out.
func BuildExpected(scanResults []ScanResult, manual []ManualTally) ExpectedVotes {
	expected := Counts{}
	for _, sr := range scanResults {
		if !sr.Accepted || sr.MarkPattern == votes.PatternUnmarkedWriteIn {
			continue
		}
		for contestID, vs := range sr.Votes {
			for _, v := range vs {
				expected.Add(contestID, CanonicalOptionID(v.OptionID()), 1)
			}
		}
	}
	for _, mt := range manual {
		for contestID, options := range mt.Tallies {
			for optionID, n := range options {
				expected.Add(contestID, optionID, n)
			}
		}
	}
	return expected
}
