package main

import (
	"fmt"
	"strings"

	"ballotqa/internal/election"

	"github.com/spf13/cobra"
)

var inspectPrecinct string

// inspectCmd summarizes the election package
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize ballot styles, contests and grid layouts",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectPrecinct, "precinct", "", "Only list ballot styles used by this precinct")
}

func runInspect(cmd *cobra.Command, args []string) error {
	pkg, err := loadPackage()
	if err != nil {
		return err
	}
	e := pkg.Election
	out := cmd.OutOrStdout()

	styles := e.BallotStyles
	if inspectPrecinct != "" {
		styles, err = election.BallotStylesForPrecinct(e, inspectPrecinct)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Election: %s (%s)\n", e.Title, e.Date)
	fmt.Fprintf(out, "Paper:    %s\n", e.BallotLayout.PaperSize)
	fmt.Fprintf(out, "Ballots:  %d in package (%d skipped)\n", len(pkg.Ballots), pkg.Skipped)
	fmt.Fprintf(out, "Ballot styles: %d\n", len(styles))
	for _, bs := range styles {
		contests, err := election.ContestsForBallotStyle(e, bs.ID)
		if err != nil {
			return err
		}
		ids := make([]string, len(contests))
		for i, c := range contests {
			ids[i] = c.ContestID()
		}
		sheets := "no grid layout"
		if layout, err := e.GridLayout(bs.ID); err == nil {
			sheets = fmt.Sprintf("%d sheets, %d positions", layout.SheetCount(), len(layout.GridPositions))
		}
		fmt.Fprintf(out, "  %-12s precincts=%s contests=%s (%s)\n",
			bs.ID, strings.Join(bs.Precincts, ","), strings.Join(ids, ","), sheets)
	}
	return nil
}
