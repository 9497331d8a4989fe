package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cucm-service-cli/internal/config"
)

func newValidateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config [file]",
		Short: "Check a configuration file against the schema",
		Long:  "validate-config checks the given file, or the --config file, without contacting any server.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFile
			if len(args) == 1 {
				path = args[0]
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}

			out := cmd.OutOrStdout()
			if err := config.Validate(data); err != nil {
				var verr *config.ValidationError
				if errors.As(err, &verr) {
					color.New(color.FgRed).Fprintf(out, "❌ %s is not valid:\n", path)
					for _, p := range verr.Problems {
						fmt.Fprintf(out, "   - %s\n", p)
					}
				}
				return fmt.Errorf("%s: %w", path, err)
			}
			color.New(color.FgGreen).Fprintf(out, "✅ %s is valid\n", path)
			return nil
		},
	}
}
