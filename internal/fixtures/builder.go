// Package fixtures builds the full matrix of marked test ballots: every
// ballot style crossed with every applicable vote pattern.
package fixtures

import (
	"context"
	"fmt"
	"slices"

	"ballotqa/internal/election"
	"ballotqa/internal/logging"
	"ballotqa/internal/marking"
	"ballotqa/internal/votes"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many ballot styles are marked at once.
const DefaultConcurrency = 4

// Fixture is one marked test ballot.
type Fixture struct {
	ID            string
	BallotStyleID string
	Pattern       votes.Pattern
	Votes         votes.Dict
	PDF           []byte
	Sheets        []marking.Sheet
}

// BaseSource returns the blank ballot PDF for a ballot style.
type BaseSource func(ballotStyleID string) ([]byte, error)

// PackageSource serves blank ballots out of an election package.
func PackageSource(pkg *election.Package, ballotType, ballotMode string) BaseSource {
	return func(ballotStyleID string) ([]byte, error) {
		return pkg.BallotForStyle(ballotStyleID, ballotType, ballotMode)
	}
}

// Options tunes a Builder.
type Options struct {
	Concurrency int
	// Patterns defaults to votes.AllPatterns.
	Patterns []votes.Pattern
}

// Builder generates fixtures for one election.
type Builder struct {
	election *election.Election
	marker   *marking.Marker
	base     BaseSource
	opts     Options
}

// NewBuilder creates a fixture builder.
func NewBuilder(e *election.Election, marker *marking.Marker, base BaseSource, opts Options) *Builder {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = slices.Clone(votes.AllPatterns)
	}
	return &Builder{election: e, marker: marker, base: base, opts: opts}
}

// Build marks every requested ballot style (all of them when none are named)
// with every applicable pattern. Fixtures come back in ballot style order,
// then pattern order, regardless of scheduling.
func (b *Builder) Build(ctx context.Context, ballotStyleIDs ...string) ([]Fixture, error) {
	timer := logging.StartTimer(logging.CategoryFixtures, "fixtures.Build")
	defer timer.StopWithInfo()

	if len(ballotStyleIDs) == 0 {
		for _, bs := range b.election.BallotStyles {
			ballotStyleIDs = append(ballotStyleIDs, bs.ID)
		}
	}

	perStyle := make([][]Fixture, len(ballotStyleIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)
	for i, id := range ballotStyleIDs {
		g.Go(func() error {
			fixtures, err := b.buildStyle(gctx, id)
			if err != nil {
				return fmt.Errorf("ballot style %s: %w", id, err)
			}
			perStyle[i] = fixtures
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Fixture
	for _, fs := range perStyle {
		out = append(out, fs...)
	}
	logging.Fixtures("Built %d fixtures across %d ballot styles", len(out), len(ballotStyleIDs))
	return out, nil
}

func (b *Builder) buildStyle(ctx context.Context, ballotStyleID string) ([]Fixture, error) {
	contests, err := election.ContestsForBallotStyle(b.election, ballotStyleID)
	if err != nil {
		return nil, err
	}
	base, err := b.base(ballotStyleID)
	if err != nil {
		return nil, err
	}

	var out []Fixture
	for _, p := range b.opts.Patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, ok := votes.Generate(p, contests).Votes()
		if !ok {
			logging.FixturesDebug("Pattern %s not applicable to ballot style %s, skipping", p, ballotStyleID)
			continue
		}
		mb, err := b.marker.MarkAndSplit(ctx, b.election, ballotStyleID, v, base, marking.PolicyFor(p))
		if err != nil {
			return nil, fmt.Errorf("pattern %s: %w", p, err)
		}
		out = append(out, Fixture{
			ID:            uuid.NewString(),
			BallotStyleID: ballotStyleID,
			Pattern:       p,
			Votes:         v,
			PDF:           mb.PDF,
			Sheets:        mb.Sheets,
		})
	}
	return out, nil
}
