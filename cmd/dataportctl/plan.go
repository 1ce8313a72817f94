package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dataport/pkg/metrics"
	"github.com/doodlesbykumbi/dataport/pkg/report"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan <app.yml>",
	Short: "Show the resource graph of an app file",
	Long: `Build the resource graph of an app file and print it in creation order.

Output formats: text, json, markdown, html.

Example:
  dataportctl plan app.yml
  dataportctl plan app.yml -o json
  dataportctl plan app.yml --metrics-file /var/lib/node_exporter/dataport.prom`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		metricsFile, _ := cmd.Flags().GetString("metrics-file")

		if err := plan(args[0], output, metricsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to plan: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringP("output", "o", "text", "Output format (text, json, markdown or html)")
	planCmd.Flags().String("metrics-file", "", "Write Prometheus gauges to this textfile")
}

func plan(filename, output, metricsFile string) error {
	format, err := report.ParseFormat(output)
	if err != nil {
		return err
	}
	s, _, err := buildFromFile(filename)
	if err != nil {
		return err
	}
	if err := report.Write(os.Stdout, s, format); err != nil {
		return err
	}

	if metricsFile != "" {
		m := metrics.New()
		if err := m.Observe(s); err != nil {
			return err
		}
		return m.WriteTextfile(metricsFile)
	}
	return nil
}
