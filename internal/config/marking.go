package config

import (
	"slices"

	"ballotqa/internal/election"
	"ballotqa/internal/marking"
	"ballotqa/internal/proof"
	"ballotqa/internal/votes"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MarkingConfig configures fixture generation.
type MarkingConfig struct {
	BallotType  string              `yaml:"ballot_type"`
	BallotMode  string              `yaml:"ballot_mode"`
	Concurrency int                 `yaml:"concurrency"`
	Patterns    []string            `yaml:"patterns"` // empty means every pattern
	Calibration marking.Calibration `yaml:"calibration"`
}

// Validate checks ballot selection and the pattern list.
func (c MarkingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BallotType, validation.Required, validation.In(election.BallotTypePrecinct, election.BallotTypeAbsentee)),
		validation.Field(&c.BallotMode, validation.Required, validation.In(election.BallotModeOfficial, election.BallotModeTest)),
		validation.Field(&c.Concurrency, validation.Min(1), validation.Max(64)),
		validation.Field(&c.Patterns, validation.Each(validation.By(func(v interface{}) error {
			_, err := votes.ParsePattern(v.(string))
			return err
		}))),
	)
}

// ParsedPatterns returns the configured patterns, or every pattern.
func (c MarkingConfig) ParsedPatterns() ([]votes.Pattern, error) {
	if len(c.Patterns) == 0 {
		return slices.Clone(votes.AllPatterns), nil
	}
	out := make([]votes.Pattern, 0, len(c.Patterns))
	for _, s := range c.Patterns {
		p, err := votes.ParsePattern(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ProofConfig sizes proof labels, in points.
type ProofConfig struct {
	LabelBoxWidth float64 `yaml:"label_box_width"`
	MaxFontSize   float64 `yaml:"max_font_size"`
	MinFontSize   float64 `yaml:"min_font_size"`
}

// Validate checks the font range.
func (c ProofConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LabelBoxWidth, validation.Min(1.0)),
		validation.Field(&c.MaxFontSize, validation.Min(1.0)),
		validation.Field(&c.MinFontSize, validation.Min(1.0), validation.When(c.MaxFontSize > 0, validation.Max(c.MaxFontSize))),
	)
}

// Style converts to the proof label style.
func (c ProofConfig) Style() proof.Style {
	return proof.Style{
		LabelBoxWidth: c.LabelBoxWidth,
		MaxFontSize:   c.MaxFontSize,
		MinFontSize:   c.MinFontSize,
	}
}
