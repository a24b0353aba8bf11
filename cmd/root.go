// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/terrier-cli/internal/config"
	"github.com/xkilldash9x/terrier-cli/internal/observability"
)

// newRootCmd builds the base command. Each invocation gets a fresh command
// tree and viper instance so flag state never leaks between executions.
func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "terrier-cli",
		Short:         "Terrier runs human-readable browser UI test scripts.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Runs before any subcommand: config then logging.
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "terrier-cli"})
				return err
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting terrier-cli.", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd(v))
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}

// Execute runs the root command under the given signal-aware context.
func Execute(ctx context.Context) error {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed.", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	return nil
}
