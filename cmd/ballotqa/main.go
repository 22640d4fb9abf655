// Command ballotqa drives election QA runs: it generates marked test ballots,
// draws proof overlays, records what the system under test reported and
// reconciles its tally export against what was voted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ballotqa/internal/config"
	"ballotqa/internal/election"
	"ballotqa/internal/logging"
	"ballotqa/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgPath string
	verbose bool
	timeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ballotqa",
	Short: "ballotqa - election QA harness",
	Long: `ballotqa generates marked test ballots for every ballot style and vote
pattern in an election package, draws proof overlays that show what every
bubble means, and reconciles the tally export of the system under test
against what was actually voted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Logging.Level = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := logging.Initialize(loaded.Logging.ToLogging()); err != nil {
			return err
		}
		cfg = loaded
		logger = logging.Base()
		logger.Debug("config loaded", zap.String("path", cfgPath), zap.String("package", cfg.ElectionPackage))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(votesCmd)
	rootCmd.AddCommand(fixturesCmd)
	rootCmd.AddCommand(proofCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func loadPackage() (*election.Package, error) {
	pkg, err := election.LoadPackage(cfg.ElectionPackage)
	if err != nil {
		return nil, err
	}
	logger.Info("election package loaded",
		zap.String("path", cfg.ElectionPackage),
		zap.Int("ballots", len(pkg.Ballots)),
		zap.Int("skipped", pkg.Skipped))
	return pkg, nil
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.DatabasePath)
}
