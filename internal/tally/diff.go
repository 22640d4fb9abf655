package tally

import (
	"fmt"
	"strings"

	"ballotqa/internal/diff"
)

// Table renders one "contest,option,count" line per non-zero cell, sorted by
// contest then option.
func (c Counts) Table() string {
	var sb strings.Builder
	for _, contestID := range c.ContestIDs() {
		for _, optionID := range c.OptionIDs(contestID) {
			if n := c.Get(contestID, optionID); n != 0 {
				fmt.Fprintf(&sb, "%s,%s,%d\n", contestID, optionID, n)
			}
		}
	}
	return sb.String()
}

// Diff renders a unified diff from the expected table to the exported one. It
// is empty when the two agree.
func Diff(expected ExpectedVotes, actual ActualVotes) string {
	return diff.Lines("expected", "actual", expected.Table(), actual.Table()).Unified(diff.DefaultContext)
}
