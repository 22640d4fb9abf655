package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"ballotqa/internal/store"
	"ballotqa/internal/tally"

	"github.com/spf13/cobra"
)

var (
	recordFile string
	recordNote string
)

// recordCmd stores outputs reported by the system under test
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record scan results, manual tallies or a tally export",
}

var recordScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Record scan results from a JSON object or array",
	RunE:  runRecordScan,
}

var recordManualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Record a manual tally from JSON",
	RunE:  runRecordManual,
}

var recordTallyCmd = &cobra.Command{
	Use:   "tally",
	Short: "Record a tally CSV export",
	RunE:  runRecordTally,
}

func init() {
	for _, c := range []*cobra.Command{recordScanCmd, recordManualCmd, recordTallyCmd} {
		c.Flags().StringVarP(&recordFile, "file", "f", "", "Input file")
		_ = c.MarkFlagRequired("file")
		recordCmd.AddCommand(c)
	}
	recordManualCmd.Flags().StringVar(&recordNote, "note", "", "Free-form note stored with the tally")
}

// scanFile is the on-disk form of a scan result plus where it came from.
type scanFile struct {
	tally.ScanResult
	BallotStyleID string `json:"ballotStyleId,omitempty"`
	SheetNumber   int    `json:"sheetNumber,omitempty"`
	FixtureID     string `json:"fixtureId,omitempty"`
}

func decodeScans(data []byte) ([]scanFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var scans []scanFile
		if err := json.Unmarshal(data, &scans); err != nil {
			return nil, err
		}
		return scans, nil
	}
	var scan scanFile
	if err := json.Unmarshal(data, &scan); err != nil {
		return nil, err
	}
	return []scanFile{scan}, nil
}

func runRecordScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	data, err := os.ReadFile(recordFile)
	if err != nil {
		return err
	}
	scans, err := decodeScans(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", recordFile, err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, s := range scans {
		id, err := st.RecordScanResult(ctx, s.ScanResult, store.ScanMeta{
			BallotStyleID: s.BallotStyleID,
			SheetNumber:   s.SheetNumber,
			FixtureID:     s.FixtureID,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded scan %s (accepted=%t, pattern=%s)\n", id, s.Accepted, s.MarkPattern)
	}
	return nil
}

func runRecordManual(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	data, err := os.ReadFile(recordFile)
	if err != nil {
		return err
	}
	var mt tally.ManualTally
	if err := json.Unmarshal(data, &mt); err != nil {
		return fmt.Errorf("failed to parse %s: %w", recordFile, err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.RecordManualTally(ctx, mt, recordNote)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recorded manual tally %s\n", id)
	return nil
}

func runRecordTally(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	data, err := os.ReadFile(recordFile)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.RecordTallyCSV(ctx, string(data), recordFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recorded tally export %s\n", id)
	return nil
}
