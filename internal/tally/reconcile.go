package tally

import (
	"errors"
	"fmt"
	"strings"

	"ballotqa/internal/logging"
)

// ErrMissingTallyCSV is returned when reconciliation runs before a tally
// export was recorded.
var ErrMissingTallyCSV = errors.New("no tally CSV recorded")

// Mismatch is one disagreement between expected and actual counts.
type Mismatch struct {
	ContestID string
	OptionID  string
	Expected  int
	Actual    int
	// Unexpected marks a count present in the export but never voted.
	Unexpected bool
}

func (m Mismatch) String() string {
	if m.Unexpected {
		return fmt.Sprintf("unexpected votes in CSV for contest %s, option %s: got %d", m.ContestID, m.OptionID, m.Actual)
	}
	return fmt.Sprintf("contest %s, option %s: expected %d, got %d", m.ContestID, m.OptionID, m.Expected, m.Actual)
}

// ValidationResult is the outcome of a reconciliation.
type ValidationResult struct {
	IsValid    bool       `json:"isValid"`
	Message    string     `json:"message"`
	Mismatches []Mismatch `json:"-"`
}

// Compare checks every expected cell against the export and flags positive
// export counts that were never expected. Output order is sorted by contest
// then option.
func Compare(expected ExpectedVotes, actual ActualVotes) ValidationResult {
	var mismatches []Mismatch
	for _, contestID := range expected.ContestIDs() {
		for _, optionID := range expected.OptionIDs(contestID) {
			want := expected.Get(contestID, optionID)
			got := actual.Get(contestID, optionID)
			if want != got {
				mismatches = append(mismatches, Mismatch{
					ContestID: contestID,
					OptionID:  optionID,
					Expected:  want,
					Actual:    got,
				})
			}
		}
	}
	for _, contestID := range actual.ContestIDs() {
		for _, optionID := range actual.OptionIDs(contestID) {
			got := actual.Get(contestID, optionID)
			if got > 0 && !expected.Has(contestID, optionID) {
				mismatches = append(mismatches, Mismatch{
					ContestID:  contestID,
					OptionID:   optionID,
					Actual:     got,
					Unexpected: true,
				})
			}
		}
	}

	if len(mismatches) == 0 {
		return ValidationResult{
			IsValid: true,
			Message: fmt.Sprintf("All %d votes matched exactly", expected.Total()),
		}
	}
	msgs := make([]string, len(mismatches))
	for i, m := range mismatches {
		msgs[i] = m.String()
	}
	return ValidationResult{
		IsValid:    false,
		Message:    fmt.Sprintf("%d mismatches: %s", len(mismatches), strings.Join(msgs, "; ")),
		Mismatches: mismatches,
	}
}

// Validate reconciles every recorded output in one pass.
func Validate(outputs Outputs) (ValidationResult, error) {
	if outputs.TallyCSV == nil {
		return ValidationResult{}, ErrMissingTallyCSV
	}
	expected := BuildExpected(outputs.ScanResults, outputs.ManualTallies)
	actual := ParseTallyCSV(*outputs.TallyCSV)
	result := Compare(expected, actual)
	if result.IsValid {
		logging.Tally("%s", result.Message)
	} else {
		logging.TallyWarn("tally mismatch: %s", result.Message)
	}
	return result, nil
}
