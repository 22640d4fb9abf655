package main

import (
	"errors"
	"fmt"
	"os"

	"ballotqa/internal/regression"

	"github.com/spf13/cobra"
)

var checkBattery string

var errCheckFailed = errors.New("scanner expectations failed")

// checkCmd evaluates recorded scans against a scanner expectation battery
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check recorded scans against scanner expectations",
	Long: `Evaluates every recorded scan result against a battery of expectations,
for example that overvoted ballots were rejected. Overvote expectations only
look at sheets whose recorded votes overvote a contest. Without --battery the file
battery.yaml in the output directory is used when present, otherwise a built-in
default battery.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkBattery, "battery", "", "Battery YAML file")
}

func loadBattery() (*regression.Battery, error) {
	if checkBattery != "" {
		return regression.LoadBattery(checkBattery)
	}
	path := regression.DefaultBatteryPath(cfg.OutputDir)
	if _, err := os.Stat(path); err == nil {
		return regression.LoadBattery(path)
	}
	return regression.DefaultBattery(), nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	battery, err := loadBattery()
	if err != nil {
		return err
	}
	pkg, err := loadPackage()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	scans, err := st.ScanResults(ctx)
	if err != nil {
		return err
	}

	results := regression.Run(battery, scans, pkg.Election)
	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Success {
			fmt.Fprintf(out, "ok    %s (%d scans)\n", r.ExpectationID, r.Checked)
		} else {
			fmt.Fprintf(out, "FAIL  %s: %s\n", r.ExpectationID, r.Error)
		}
	}
	if !regression.Passed(results) {
		return errCheckFailed
	}
	return nil
}
