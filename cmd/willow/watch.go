package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/willowgraph/willow/internal/watch"
	"github.com/willowgraph/willow/internal/willowlog"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the graph file for external edits and commit them as they land",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := watch.New(store, graphPath)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		w.Start(ctx)
		willowlog.Info("watch", "watching for external edits", "path", graphPath)
		fmt.Fprintf(cmdStdout(), "watching %s for external edits (ctrl-c to stop)\n", graphPath)
		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
