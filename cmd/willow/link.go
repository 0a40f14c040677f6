package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willowgraph/willow"
)

var (
	linkBidirectional bool
	linkConfidence    string
)

var addLinkCmd = &cobra.Command{
	Use:   "add-link <from> <to> <relation>",
	Short: "Create a directed link between two existing nodes",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var conf *string
		if cmd.Flags().Changed("confidence") {
			conf = &linkConfidence
		}
		l, err := store.AddLink(willow.NodeId(args[0]), willow.NodeId(args[1]), args[2], linkBidirectional, conf)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(l)
		}
		fmt.Printf("%s  %s -> %s  %s\n", l.ID, l.FromNode, l.ToNode, l.Relation)
		return nil
	},
}

var (
	updateRelation      string
	updateBidirectional bool
)

var updateLinkCmd = &cobra.Command{
	Use:   "update-link <link-id>",
	Short: "Apply a partial patch to an existing link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := willow.UpdateLinkOptions{}
		if cmd.Flags().Changed("relation") {
			opts.Relation = &updateRelation
		}
		if cmd.Flags().Changed("bidirectional") {
			opts.Bidirectional = &updateBidirectional
		}
		if cmd.Flags().Changed("confidence") {
			opts.Confidence = &linkConfidence
		}
		l, err := store.UpdateLink(willow.LinkId(args[0]), opts)
		if err != nil {
			return err
		}
		return printJSONOrLine(l, fmt.Sprintf("%s  %s -> %s  %s", l.ID, l.FromNode, l.ToNode, l.Relation))
	},
}

var deleteLinkCmd = &cobra.Command{
	Use:   "delete-link <link-id>",
	Short: "Remove a link by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := store.DeleteLink(willow.LinkId(args[0]))
		return err
	},
}

func printJSONOrLine(v any, line string) error {
	if jsonOutput {
		return printJSON(v)
	}
	fmt.Println(line)
	return nil
}

func init() {
	addLinkCmd.Flags().BoolVar(&linkBidirectional, "bidirectional", false, "also suppress the reverse (to, from, relation) triple")
	addLinkCmd.Flags().StringVar(&linkConfidence, "confidence", "", "confidence level (low|medium|high)")
	rootCmd.AddCommand(addLinkCmd)

	updateLinkCmd.Flags().StringVar(&updateRelation, "relation", "", "new relation label")
	updateLinkCmd.Flags().BoolVar(&updateBidirectional, "bidirectional", false, "new bidirectional flag")
	updateLinkCmd.Flags().StringVar(&linkConfidence, "confidence", "", "new confidence level (low|medium|high)")
	rootCmd.AddCommand(updateLinkCmd)

	rootCmd.AddCommand(deleteLinkCmd)
}
