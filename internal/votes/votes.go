// Package votes defines vote values and the generators that synthesize the
// intended selections for each named test pattern.
package votes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ballotqa/internal/election"
)

// Vote is a closed variant: CandidateVote or OptionVote.
type Vote interface {
	// OptionID is the candidate id or yes/no option id the vote selects.
	OptionID() string
	isVote()
}

// CandidateVote selects a candidate (possibly a synthetic write-in).
type CandidateVote struct {
	election.Candidate
}

func (v CandidateVote) OptionID() string { return v.ID }
func (v CandidateVote) isVote()          {}

// OptionVote selects a yes/no option by id.
type OptionVote string

func (v OptionVote) OptionID() string { return string(v) }
func (v OptionVote) isVote()          {}

// =============================================================================
// WRITE-IN IDENTITY
// =============================================================================

// WriteInIDPrefix starts every synthetic write-in id. Reconciliation collapses
// all ids with this prefix into a single bucket.
const WriteInIDPrefix = "write-in"

// TestWriteInName is the persona written on write-in lines by the write-in
// patterns.
const TestWriteInName = "Mark Twain"

// WriteInID returns the synthetic id for the n-th write-in line.
func WriteInID(index int) string {
	return WriteInIDPrefix + "-" + strconv.Itoa(index)
}

// IsWriteInID reports whether id belongs to a write-in.
func IsWriteInID(id string) bool {
	return strings.HasPrefix(id, WriteInIDPrefix)
}

// WriteInCandidate builds the synthetic candidate for the n-th write-in line.
func WriteInCandidate(index int, name string) election.Candidate {
	idx := index
	return election.Candidate{
		ID:           WriteInID(index),
		Name:         name,
		IsWriteIn:    true,
		WriteInIndex: &idx,
	}
}

// =============================================================================
// DICT
// =============================================================================

// Dict maps a contest id to the ordered votes cast in it.
// A Dict handed out by this package is treated as immutable; use Clone before
// modifying.
type Dict map[string][]Vote

// Clone returns a deep copy.
func (d Dict) Clone() Dict {
	out := make(Dict, len(d))
	for k, v := range d {
		out[k] = append([]Vote(nil), v...)
	}
	return out
}

// ContestIDs returns the contest ids in sorted order.
func (d Dict) ContestIDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Total returns the number of votes across all contests.
func (d Dict) Total() int {
	n := 0
	for _, v := range d {
		n += len(v)
	}
	return n
}

// MarshalJSON encodes votes as option-id strings or candidate objects.
func (d Dict) MarshalJSON() ([]byte, error) {
	out := make(map[string][]any, len(d))
	for contestID, vs := range d {
		items := make([]any, 0, len(vs))
		for _, v := range vs {
			switch v := v.(type) {
			case OptionVote:
				items = append(items, string(v))
			case CandidateVote:
				items = append(items, v.Candidate)
			default:
				panic(fmt.Sprintf("votes: unhandled vote variant %T", v))
			}
		}
		out[contestID] = items
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the shape produced by MarshalJSON.
func (d *Dict) UnmarshalJSON(data []byte) error {
	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Dict, len(raw))
	for contestID, items := range raw {
		vs := make([]Vote, 0, len(items))
		for i, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) > 0 && item[0] == '"' {
				var s string
				if err := json.Unmarshal(item, &s); err != nil {
					return fmt.Errorf("contest %s vote %d: %w", contestID, i, err)
				}
				vs = append(vs, OptionVote(s))
				continue
			}
			var c election.Candidate
			if err := json.Unmarshal(item, &c); err != nil {
				return fmt.Errorf("contest %s vote %d: %w", contestID, i, err)
			}
			vs = append(vs, CandidateVote{Candidate: c})
		}
		out[contestID] = vs
	}
	*d = out
	return nil
}

// WriteInIndexOf returns the write-in line a vote occupies. Votes for printed
// candidates and yes/no options report false.
func WriteInIndexOf(v Vote) (int, bool) {
	cv, ok := v.(CandidateVote)
	if !ok || !cv.IsWriteIn {
		return 0, false
	}
	if cv.WriteInIndex != nil {
		return *cv.WriteInIndex, true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(cv.ID, WriteInIDPrefix+"-"))
	if err != nil {
		return 0, false
	}
	return n, true
}
