package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willowgraph/willow/internal/render"
)

var searchMaxResults int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Score every node reachable from root against a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := store.SearchNodes(args[0], searchMaxResults)
		if jsonOutput {
			return printJSON(results)
		}
		fmt.Println(render.SearchResults(args[0], results))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 10, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
