package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dataport/pkg/config"
	"github.com/doodlesbykumbi/dataport/pkg/stack"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <app.yml>",
	Short: "Validate an app file",
	Long: `Validate an app file without building anything.

Checks the tenant name, the output port names and the warehouse list
(exactly one default warehouse, unique names).

Example:
  dataportctl validate app.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := config.LoadAppFile(args[0])
		if err == nil {
			err = stack.Validate(app)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to validate app: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s is valid (tenant %s, %d output port(s))\n", args[0], app.Name, len(app.OutputPorts))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
