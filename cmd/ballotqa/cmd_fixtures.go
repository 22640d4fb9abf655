package main

import (
	"fmt"
	"path/filepath"

	"ballotqa/internal/fixtures"
	"ballotqa/internal/marking"
	"ballotqa/internal/votes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixturePatterns []string

// fixturesCmd marks test ballots for every ballot style and pattern
var fixturesCmd = &cobra.Command{
	Use:   "fixtures [ballot-style-id...]",
	Short: "Generate marked test ballots and per-sheet PDFs",
	Long: `Marks the blank ballot of each ballot style (all of them when none are
named) with every applicable vote pattern, then splits the result into one PDF
per sheet. A JSON manifest listing the intended votes is written next to each
ballot.`,
	RunE: runFixtures,
}

func init() {
	fixturesCmd.Flags().StringSliceVarP(&fixturePatterns, "pattern", "p", nil, "Restrict to these patterns (default: config, then all)")
}

func runFixtures(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	patterns, err := cfg.Marking.ParsedPatterns()
	if err != nil {
		return err
	}
	if len(fixturePatterns) > 0 {
		patterns = make([]votes.Pattern, 0, len(fixturePatterns))
		for _, s := range fixturePatterns {
			p, err := votes.ParsePattern(s)
			if err != nil {
				return err
			}
			patterns = append(patterns, p)
		}
	}

	pkg, err := loadPackage()
	if err != nil {
		return err
	}

	marker := marking.NewMarker(marking.NewStampRenderer(), cfg.Marking.Calibration)
	builder := fixtures.NewBuilder(pkg.Election, marker,
		fixtures.PackageSource(pkg, cfg.Marking.BallotType, cfg.Marking.BallotMode),
		fixtures.Options{Concurrency: cfg.Marking.Concurrency, Patterns: patterns})

	built, err := builder.Build(ctx, args...)
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.OutputDir, "fixtures")
	manifests, err := fixtures.WriteFiles(dir, built)
	if err != nil {
		return err
	}
	logger.Info("fixtures written", zap.String("dir", dir), zap.Int("count", len(manifests)))

	out := cmd.OutOrStdout()
	for _, m := range manifests {
		fmt.Fprintln(out, m)
	}
	fmt.Fprintf(out, "%d fixtures written to %s\n", len(manifests), dir)
	return nil
}
