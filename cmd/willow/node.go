package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willowgraph/willow/internal/render"
	"github.com/willowgraph/willow/internal/temporalparse"
	"github.com/willowgraph/willow"
)

var (
	createParent     string
	createType       string
	createValidFrom  string
	createValidUntil string
)

var createNodeCmd = &cobra.Command{
	Use:   "create-node <content>",
	Short: "Create a child node under an existing parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var temporal *willow.TemporalMetadata
		if createValidFrom != "" || createValidUntil != "" {
			t := willow.TemporalMetadata{}
			if createValidFrom != "" {
				from, err := temporalparse.Parse(createValidFrom, nowForCLI())
				if err != nil {
					return err
				}
				t.ValidFrom = &from
			}
			if createValidUntil != "" {
				until, err := temporalparse.Parse(createValidUntil, nowForCLI())
				if err != nil {
					return err
				}
				t.ValidUntil = &until
			}
			temporal = &t
		}
		n, err := store.CreateNode(willow.NodeId(createParent), createType, args[0], nil, temporal)
		if err != nil {
			return err
		}
		return printNode(n)
	},
}

var (
	updateContent string
	updateReason  string
)

var updateNodeCmd = &cobra.Command{
	Use:   "update-node <node-id>",
	Short: "Apply a partial patch to an existing node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := willow.UpdateNodeOptions{}
		if cmd.Flags().Changed("content") {
			opts.Content = &updateContent
		}
		if cmd.Flags().Changed("reason") {
			opts.Reason = &updateReason
		}
		n, err := store.UpdateNode(willow.NodeId(args[0]), opts)
		if err != nil {
			return err
		}
		return printNode(n)
	},
}

var deleteNodeCmd = &cobra.Command{
	Use:   "delete-node <node-id>",
	Short: "Delete a node and its entire subtree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return store.DeleteNode(willow.NodeId(args[0]))
	},
}

var contextDepth int

var getContextCmd = &cobra.Command{
	Use:   "get-context <node-id>",
	Short: "Fetch a node, its ancestors, bounded descendants, and touching links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := store.GetContext(willow.NodeId(args[0]), contextDepth)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(ctx)
		}
		if contextDepth == 0 {
			fmt.Printf("%s [%s]\n", ctx.Node.Content, ctx.Node.NodeType)
			return nil
		}
		fmt.Println(render.NodeTree(store.Graph(), willow.NodeId(args[0]), contextDepth))
		return nil
	},
}

func printNode(n *willow.Node) error {
	if jsonOutput {
		return printJSON(n)
	}
	fmt.Printf("%s  %s  %s\n", n.ID, n.NodeType, n.Content)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(cmdStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	createNodeCmd.Flags().StringVar(&createParent, "parent", willow.RootID, "parent node id")
	createNodeCmd.Flags().StringVar(&createType, "type", "entity", "node type (root|category|collection|entity|attribute|event|detail)")
	createNodeCmd.Flags().StringVar(&createValidFrom, "valid-from", "", "natural-language or RFC-3339 start of validity")
	createNodeCmd.Flags().StringVar(&createValidUntil, "valid-until", "", "natural-language or RFC-3339 end of validity")
	rootCmd.AddCommand(createNodeCmd)

	updateNodeCmd.Flags().StringVar(&updateContent, "content", "", "new content")
	updateNodeCmd.Flags().StringVar(&updateReason, "reason", "", "reason recorded alongside the superseded content")
	rootCmd.AddCommand(updateNodeCmd)

	rootCmd.AddCommand(deleteNodeCmd)

	getContextCmd.Flags().IntVar(&contextDepth, "depth", 2, "maximum descendant depth (0 = none)")
	rootCmd.AddCommand(getContextCmd)
}
