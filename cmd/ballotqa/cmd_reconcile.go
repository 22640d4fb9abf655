package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"ballotqa/internal/exportwatch"
	"ballotqa/internal/tally"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reconcileXLSX      string
	reconcileWaitDir   string
	reconcileDiff      bool
	reconcileSettleFor = exportwatch.DefaultSettle
)

// errReconcileFailed makes a mismatching tally exit non-zero.
var errReconcileFailed = errors.New("tally reconciliation failed")

// reconcileCmd compares the tally export with what was voted
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare the tally export with recorded scans and manual tallies",
	Long: `Builds expected counts from every accepted scan and manual tally, parses the
most recent tally export and reports each contest/option whose count differs.
With --wait-for-export the command first blocks until a CSV export written
after the command started appears in the given directory, and records it.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileXLSX, "xlsx", "", "Also write a reconciliation workbook to this path")
	reconcileCmd.Flags().StringVar(&reconcileWaitDir, "wait-for-export", "", "Wait for a tally CSV to appear in this directory")
	reconcileCmd.Flags().BoolVar(&reconcileDiff, "diff", false, "Print a unified diff of the expected and exported tables")
	reconcileCmd.Flags().DurationVar(&reconcileSettleFor, "settle", exportwatch.DefaultSettle, "Quiet period before a new export is read")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	// Exports already sitting in the directory belong to an earlier run.
	started := time.Now()
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if reconcileWaitDir != "" {
		exp, err := exportwatch.Wait(ctx, reconcileWaitDir, exportwatch.Options{Since: started, Settle: reconcileSettleFor})
		if err != nil {
			return fmt.Errorf("waiting for tally export: %w", err)
		}
		if _, err := st.RecordTallyCSV(ctx, exp.Content, exp.Path); err != nil {
			return err
		}
		logger.Info("tally export recorded", zap.String("path", exp.Path))
	}

	outputs, err := st.Outputs(ctx)
	if err != nil {
		return err
	}
	result, err := tally.Validate(outputs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.IsValid {
		fmt.Fprintf(out, "PASS: %s\n", result.Message)
	} else {
		fmt.Fprintf(out, "FAIL: %d mismatches\n", len(result.Mismatches))
		for _, m := range result.Mismatches {
			fmt.Fprintf(out, "  %s\n", m)
		}
	}

	expected := tally.BuildExpected(outputs.ScanResults, outputs.ManualTallies)
	actual := tally.ParseTallyCSV(*outputs.TallyCSV)
	if reconcileDiff && !result.IsValid {
		fmt.Fprint(out, tally.Diff(expected, actual))
	}

	if reconcileXLSX != "" {
		if err := writeWorkbook(reconcileXLSX, expected, actual, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "workbook written to %s\n", reconcileXLSX)
	}

	if !result.IsValid {
		return errReconcileFailed
	}
	return nil
}

func writeWorkbook(path string, expected tally.ExpectedVotes, actual tally.ActualVotes, result tally.ValidationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tally.WriteXLSX(f, expected, actual, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
