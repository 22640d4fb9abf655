package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// proofCmd draws crosshairs and labels over blank ballots
var proofCmd = &cobra.Command{
	Use:   "proof [ballot-style-id...]",
	Short: "Generate proof ballots that label every bubble",
	RunE:  runProof,
}

func runProof(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	pkg, err := loadPackage()
	if err != nil {
		return err
	}
	ids := args
	if len(ids) == 0 {
		for _, bs := range pkg.Election.BallotStyles {
			ids = append(ids, bs.ID)
		}
	}

	dir := filepath.Join(cfg.OutputDir, "proof")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	style := cfg.Proof.Style()
	out := cmd.OutOrStdout()
	for _, id := range ids {
		base, err := pkg.BallotForStyle(id, cfg.Marking.BallotType, cfg.Marking.BallotMode)
		if err != nil {
			return err
		}
		annotated, err := style.AnnotatePDF(ctx, pkg.Election, id, base)
		if err != nil {
			return fmt.Errorf("ballot style %s: %w", id, err)
		}
		path := filepath.Join(dir, id+"-proof.pdf")
		if err := os.WriteFile(path, annotated, 0644); err != nil {
			return err
		}
		logger.Debug("proof written", zap.String("ballotStyle", id), zap.String("path", path))
		fmt.Fprintln(out, path)
	}
	return nil
}
