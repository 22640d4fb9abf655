package main

import (
	"encoding/json"
	"fmt"

	"ballotqa/internal/election"
	"ballotqa/internal/votes"

	"github.com/spf13/cobra"
)

var votesPattern string

// votesCmd prints the votes a pattern generates for a ballot style
var votesCmd = &cobra.Command{
	Use:   "votes <ballot-style-id>",
	Short: "Print the votes a pattern generates for a ballot style",
	Args:  cobra.ExactArgs(1),
	RunE:  runVotes,
}

func init() {
	votesCmd.Flags().StringVarP(&votesPattern, "pattern", "p", string(votes.PatternValid), "Vote pattern")
}

func runVotes(cmd *cobra.Command, args []string) error {
	pattern, err := votes.ParsePattern(votesPattern)
	if err != nil {
		return err
	}
	pkg, err := loadPackage()
	if err != nil {
		return err
	}
	contests, err := election.ContestsForBallotStyle(pkg.Election, args[0])
	if err != nil {
		return err
	}

	v, ok := votes.Generate(pattern, contests).Votes()
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "pattern %s is not applicable to ballot style %s\n", pattern, args[0])
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
