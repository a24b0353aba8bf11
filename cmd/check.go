package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/terrier-cli/internal/script"
)

// newCheckCmd creates the `check` command, which parses scripts without
// opening a browser.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [scripts...]",
		Short: "Parses scripts and reports syntax errors without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bad := 0
			for _, path := range args {
				src, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("could not read %s: %w", path, err)
				}
				if _, err := script.Parse(string(src)); err != nil {
					bad++
					cmd.Printf("FAIL  %s\n%v\n", path, err)
					continue
				}
				cmd.Printf("ok    %s\n", path)
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d scripts failed to parse", bad, len(args))
			}
			return nil
		},
	}
}
