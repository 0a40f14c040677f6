// Command willow is the CLI embedding host over the willow package's
// façade: every subcommand marshals its arguments straight onto one Store
// method, and marshals the result back to stdout.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/willowgraph/willow/internal/cliconfig"
	"github.com/willowgraph/willow/internal/willowlog"
	"github.com/willowgraph/willow"
)

var (
	graphPath  string
	jsonOutput bool
	logFile    string

	store *willow.Store
)

var rootCmd = &cobra.Command{
	Use:           "willow",
	Short:         "An embeddable, single-writer versioned store for a rooted node graph",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configureLogging()
		if graphPath == "" {
			cfg, err := cliconfig.Load()
			if err == nil && cfg.DefaultRepo != "" {
				graphPath = cfg.DefaultRepo
			} else {
				graphPath = "graph.json"
			}
		}
		s, err := willow.Open(graphPath)
		if err != nil {
			return err
		}
		store = s
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

func configureLogging() {
	if logFile == "" {
		willowlog.Configure(io.Discard, slog.LevelInfo)
		return
	}
	willowlog.Configure(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}, slog.LevelInfo)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&graphPath, "graph", "", "path to the graph's JSON file (default: config default-repo, else ./graph.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of rendered tables")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write structured logs here (rotated via lumberjack); default discards logs")
}

func cmdStdout() io.Writer { return os.Stdout }

func nowForCLI() time.Time { return time.Now().UTC() }

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
