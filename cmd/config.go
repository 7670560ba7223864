package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/arcanaland/feedview/internal/config"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the feedview config file",
	Long:  `Commands for creating and inspecting the feedview config file.`,
	// The subcommands load the file themselves so a broken file can be replaced
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path := configPath
		if path == "" {
			path = config.GetConfigFilePath()
		}

		out := cmd.OutOrStdout()
		if _, err := os.Stat(path); err == nil && !force {
			fmt.Fprintf(out, "Config file already exists at %s\n", path)
			fmt.Fprintln(out, "Use --force to overwrite it with defaults.")
			return nil
		}

		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Created config file at %s\n", path)
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Show prints the configuration after defaults, the config file and
FEEDVIEW_* environment overrides have been applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("error loading config: %v", err)
		}

		path := configPath
		if path == "" {
			path = config.GetConfigFilePath()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", path)
		return toml.NewEncoder(out).Encode(c)
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}
