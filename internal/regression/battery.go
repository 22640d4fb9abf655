// Package regression checks how the scanner under test treated each vote
// pattern. A battery is a YAML list of expectations such as "overvoted
// ballots are rejected"; it is evaluated against the recorded scan results.
package regression

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ballotqa/internal/election"
	"ballotqa/internal/store"
	"ballotqa/internal/votes"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Battery is a collection of scanner expectations.
type Battery struct {
	Version      int           `yaml:"version"`
	Expectations []Expectation `yaml:"expectations"`
}

// Expectation states whether scans of one pattern should be accepted.
type Expectation struct {
	ID      string        `yaml:"id"`
	Pattern votes.Pattern `yaml:"pattern"`
	// BallotStyleID narrows the expectation to one ballot style.
	BallotStyleID string `yaml:"ballot_style_id,omitempty"`
	Accepted      bool   `yaml:"accepted"`
	// MinScans is the number of matching scans required; zero means one.
	MinScans int `yaml:"min_scans,omitempty"`
}

// Result captures the outcome of one expectation.
type Result struct {
	ExpectationID string
	Success       bool
	Checked       int
	Error         string
}

func validPattern(value interface{}) error {
	_, err := votes.ParsePattern(string(value.(votes.Pattern)))
	return err
}

// Validate checks a single expectation.
func (e Expectation) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.Pattern, validation.Required, validation.By(validPattern)),
		validation.Field(&e.MinScans, validation.Min(0)),
	)
}

// Validate checks the battery and every expectation in it.
func (b Battery) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Expectations, validation.Required),
	)
}

// DefaultBattery is used when no battery file is configured: everything a
// voter can legitimately mark is accepted and overvotes are returned.
func DefaultBattery() *Battery {
	return &Battery{
		Version: 1,
		Expectations: []Expectation{
			{ID: "valid-accepted", Pattern: votes.PatternValid, Accepted: true},
			{ID: "overvote-rejected", Pattern: votes.PatternOvervote, Accepted: false},
			{ID: "marked-write-in-accepted", Pattern: votes.PatternMarkedWriteIn, Accepted: true},
			{ID: "unmarked-write-in-accepted", Pattern: votes.PatternUnmarkedWriteIn, Accepted: true},
		},
	}
}

// LoadBattery reads a YAML battery file from disk.
func LoadBattery(path string) (*Battery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Battery
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse battery YAML: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid battery %s: %w", path, err)
	}
	return &b, nil
}

// DefaultBatteryPath returns where a battery is looked up for an output
// directory.
func DefaultBatteryPath(outputDir string) string {
	return filepath.Join(outputDir, "battery.yaml")
}

// Run evaluates every expectation against the recorded scans. Results come
// back in battery order.
//
// A multi-sheet overvote ballot can carry sheets on which no contest is
// overvoted, and the scanner rightly accepts those. When e is non-nil, overvote
// expectations only count scans whose votes overvote at least one contest.
func Run(b *Battery, scans []store.ScanRecord, e *election.Election) []Result {
	if b == nil {
		return nil
	}
	results := make([]Result, 0, len(b.Expectations))
	for _, exp := range b.Expectations {
		results = append(results, evaluate(exp, scans, e))
	}
	return results
}

func evaluate(exp Expectation, scans []store.ScanRecord, e *election.Election) Result {
	res := Result{ExpectationID: exp.ID}
	var wrong []string
	for _, s := range scans {
		if s.Result.MarkPattern != exp.Pattern {
			continue
		}
		if exp.BallotStyleID != "" && s.BallotStyleID != exp.BallotStyleID {
			continue
		}
		if exp.Pattern == votes.PatternOvervote && e != nil && !Overvoted(e, s.Result.Votes) {
			continue
		}
		res.Checked++
		if s.Result.Accepted != exp.Accepted {
			wrong = append(wrong, s.ID)
		}
	}

	need := max(1, exp.MinScans)
	switch {
	case res.Checked < need:
		res.Error = fmt.Sprintf("expected at least %d %s scans, found %d", need, exp.Pattern, res.Checked)
	case len(wrong) > 0:
		res.Error = fmt.Sprintf("%d of %d %s scans were %s: %s",
			len(wrong), res.Checked, exp.Pattern, verdict(!exp.Accepted), strings.Join(wrong, ", "))
	default:
		res.Success = true
	}
	return res
}

func verdict(accepted bool) string {
	if accepted {
		return "accepted"
	}
	return "rejected"
}

// Passed reports whether every result succeeded.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Success {
			return false
		}
	}
	return true
}

// Overvoted reports whether v selects more options than some contest allows.
// Contests unknown to the election count as overvoted so they stay checked.
func Overvoted(e *election.Election, v votes.Dict) bool {
	for contestID, vs := range v {
		c, err := e.Contest(contestID)
		if err != nil {
			return true
		}
		switch c := c.(type) {
		case *election.CandidateContest:
			if len(vs) > c.Seats {
				return true
			}
		case *election.YesNoContest:
			if len(vs) > 1 {
				return true
			}
		}
	}
	return false
}
