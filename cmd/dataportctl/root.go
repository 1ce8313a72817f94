package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dataport/pkg/audit"
	"github.com/doodlesbykumbi/dataport/pkg/config"
	"github.com/doodlesbykumbi/dataport/pkg/logging"
)

var (
	settings *config.Settings
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "dataportctl",
	Short: "Plan and record Snowflake tenant access graphs",
	Long: `dataportctl turns a tenant app file into the ordered graph of Snowflake
databases, roles, warehouses, schemas and grants that provisions it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load()
		if err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		settings = s

		l, err := logging.New(s.LogLevel, s.LogFormat)
		if err != nil {
			return err
		}
		logger = l
		audit.SetEnabled(s.AuditEnabled)
		return nil
	},
}

func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
