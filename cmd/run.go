package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/terrier-cli/internal/browser"
	"github.com/xkilldash9x/terrier-cli/internal/config"
	"github.com/xkilldash9x/terrier-cli/internal/observability"
	"github.com/xkilldash9x/terrier-cli/internal/runner"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd(v *viper.Viper) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [scripts...]",
		Short: "Executes one or more test scripts against a managed browser",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so command-line values
			// override the config file and environment.
			if err := v.BindPFlag("runner.output_dir", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			if err := v.BindPFlag("runner.demo", cmd.Flags().Lookup("demo")); err != nil {
				return err
			}
			if err := v.BindPFlag("runner.datatable", cmd.Flags().Lookup("datatable")); err != nil {
				return err
			}
			if err := v.BindPFlag("runner.concurrency", cmd.Flags().Lookup("concurrency")); err != nil {
				return err
			}
			return v.BindPFlag("browser.headless", cmd.Flags().Lookup("headless"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Re-unmarshal now that flags are bound, so overrides
			// apply with the right precedence.
			var cfg config.Config
			if err := v.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to re-unmarshal config with flag overrides: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.Info("Starting run.",
				zap.Strings("scripts", args),
				zap.Int("concurrency", cfg.Runner.Concurrency),
				zap.Bool("headless", cfg.Browser.Headless),
				zap.Bool("demo", cfg.Runner.Demo),
			)

			mgr, err := browser.NewManager(ctx, cfg.Browser, logger)
			if err != nil {
				return fmt.Errorf("failed to start browser: %w", err)
			}
			defer func() {
				if err := mgr.Shutdown(ctx); err != nil {
					logger.Warn("Browser shutdown was not clean.", zap.Error(err))
				}
			}()

			results, err := runner.New(mgr, cfg.Runner, logger).RunAll(ctx, args)
			if err != nil {
				return err
			}

			failures := 0
			for _, res := range results {
				if res.Failed {
					failures++
					cmd.Printf("FAIL  %s (report: %s)\n", res.Script, res.LogPath)
				} else {
					cmd.Printf("ok    %s (report: %s)\n", res.Script, res.LogPath)
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d scripts failed", failures, len(results))
			}
			return nil
		},
	}

	runCmd.Flags().StringP("output", "o", ".", "directory for logs and screenshots")
	runCmd.Flags().Bool("demo", false, "highlight located elements while running")
	runCmd.Flags().String("datatable", "", "CSV file driving templated script runs")
	runCmd.Flags().Int("concurrency", 1, "number of scripts to run in parallel")
	runCmd.Flags().Bool("headless", true, "run the browser headless")

	return runCmd
}
