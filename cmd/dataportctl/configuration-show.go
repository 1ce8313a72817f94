package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show dataport settings and their sources",
	Long: `Show dataport settings and where each value came from: the built-in
default, the config file or the environment.

Config file location: /etc/dataport/dataport.yml (or DATAPORT_CONFIG_PATH)

Example:
  dataportctl configuration show
  dataportctl configuration show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := showConfiguration(output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(output string) error {
	if output == "json" {
		jsonOutput, err := settings.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Println(jsonOutput)
		return nil
	}

	fmt.Print(settings.FormatText())
	return nil
}
