package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/feedview/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a saved card draw or earthquake feed payload",
	Long: `Validate checks a JSON file saved from the Deck of Cards API or the USGS
earthquake feed against the schemas feedview applies when fetching. It reports
which kind of payload the file holds, any errors that would make a fetch fail,
and warnings about data that would render oddly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		// Check if path exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("payload file not found: %s", path)
		}

		// Create validator and run validation
		v := validator.NewValidator(path)
		results, err := v.Validate()
		if err != nil {
			return fmt.Errorf("validation error: %v", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")
		fmt.Fprintf(out, "Payload: %s\n", results.Kind)

		if len(results.Errors) == 0 {
			fmt.Fprintf(out, "%s '%s' is a valid %s.\n", color.GreenString("✅"), path, results.Kind)
		} else {
			fmt.Fprintf(out, "%s '%s' has %d validation errors:\n", color.RedString("❌"), path, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, color.YellowString("\nWarnings:"))
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		if len(results.Errors) > 0 {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}
