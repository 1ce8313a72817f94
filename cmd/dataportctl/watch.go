package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dataport/pkg/report"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <app.yml>",
	Short: "Watch an app file and re-plan when it changes",
	Long: `Watch an app file and print its plan every time it is written.

The directory holding the file is watched, so editors that replace the
file on save are picked up too.

Example:
  dataportctl watch app.yml -o markdown`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := watchApp(args[0], output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch app: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringP("output", "o", "text", "Output format (text, json, markdown or html)")
}

func watchApp(filename, output string) error {
	format, err := report.ParseFormat(output)
	if err != nil {
		return err
	}
	target, err := filepath.Abs(filename)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	fmt.Fprintf(os.Stderr, "Watching %s for changes\n", filename)
	replan(filename, format)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				fmt.Fprintf(os.Stderr, "[%s] %s modified, re-planning...\n", time.Now().Format(time.RFC3339), filename)
				replan(filename, format)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nShutting down...")
			return nil
		}
	}
}

// replan reports errors without stopping the watch.
func replan(filename string, format report.Format) {
	s, _, err := buildFromFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building %s: %v\n", filename, err)
		return
	}
	if err := report.Write(os.Stdout, s, format); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing plan: %v\n", err)
	}
}
