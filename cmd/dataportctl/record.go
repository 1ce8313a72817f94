package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dataport/pkg/audit"
	"github.com/doodlesbykumbi/dataport/pkg/db"
	"github.com/doodlesbykumbi/dataport/pkg/ledger"
	"github.com/doodlesbykumbi/dataport/pkg/metrics"
	"github.com/doodlesbykumbi/dataport/pkg/stack"
)

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record <app.yml>",
	Short: "Record the resource graph of an app file in the ledger",
	Long: `Build the resource graph of an app file and record it as a new
deployment version in the ledger database.

Recording is skipped when the app file is unchanged since the latest
deployment of the tenant, unless --force is given. With --dry-run the
graph is written inside a transaction that is rolled back; without a
DATABASE_URL a dry run uses an in-memory ledger.

Example:
  dataportctl record app.yml
  dataportctl record app.yml --dry-run
  dataportctl record app.yml --actor ci --force`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		force, _ := cmd.Flags().GetBool("force")
		actor, _ := cmd.Flags().GetString("actor")
		metricsFile, _ := cmd.Flags().GetString("metrics-file")

		result, err := record(args[0], actor, dryRun, force, metricsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to record: %v\n", err)
			os.Exit(1)
		}

		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().Bool("dry-run", false, "Validate and roll back without recording")
	recordCmd.Flags().Bool("force", false, "Record even when the app file is unchanged")
	recordCmd.Flags().String("actor", defaultActor(), "Who is recording")
	recordCmd.Flags().String("metrics-file", "", "Write Prometheus gauges to this textfile")
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "dataport"
}

func record(filename, actor string, dryRun, force bool, metricsFile string) (*ledger.Result, error) {
	s, source, err := buildFromFile(filename)
	if err != nil {
		return nil, err
	}

	store, err := openLedger(dryRun)
	if err != nil {
		logDeployment(actor, s, nil, dryRun, err)
		return nil, err
	}

	result, err := ledger.NewRecorder(store).
		WithActor(actor).
		WithDryRun(dryRun).
		WithForce(force).
		WithLogger(logger).
		Record(s, string(source))
	logDeployment(actor, s, result, dryRun, err)
	if err != nil {
		return nil, err
	}

	if metricsFile != "" {
		m := metrics.New()
		if err := m.Observe(s); err != nil {
			return nil, err
		}
		if !dryRun {
			m.ObserveVersion(s.App.Name, string(s.App.Env), result.Version)
		}
		if err := m.WriteTextfile(metricsFile); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func openLedger(dryRun bool) (ledger.Store, error) {
	dbURL := settings.DatabaseURL
	if dbURL == "" && dryRun {
		logger.Info("no ledger database configured, dry run uses an in-memory ledger")
		return ledger.NewMemoryStore(), nil
	}
	database, err := db.Connect(db.Config{URL: dbURL, Debug: settings.LogLevel == "debug"})
	if err != nil {
		return nil, err
	}
	// Audit rows land next to the ledger unless a dedicated audit database is set.
	if os.Getenv("AUDIT_DATABASE_URL") == "" {
		audit.SetStore(audit.NewStore(database))
	}
	return ledger.NewGormStore(database), nil
}

func logDeployment(actor string, s *stack.Stack, result *ledger.Result, dryRun bool, err error) {
	event := audit.DeploymentEvent{
		Actor:   actor,
		Tenant:  s.App.Name,
		Env:     string(s.App.Env),
		DryRun:  dryRun,
		Success: err == nil,
	}
	if result != nil {
		event.RunID = result.RunID
		event.Version = result.Version
		event.Unchanged = result.Unchanged
	}
	if err != nil {
		event.ErrorMessage = err.Error()
		logger.Warn("record failed", zap.String("tenant", s.App.Name), zap.Error(err))
	}
	audit.Log(event)
}
