package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willowgraph/willow/internal/render"
	"github.com/willowgraph/willow"
)

var initVCSCmd = &cobra.Command{
	Use:   "init-vcs",
	Short: "Create a repo/ directory next to the graph, seeded with the current graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return store.InitVCS()
	},
}

var (
	commitMessage string
	commitSource  string
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Consume the pending-change buffer into a new commit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := store.Commit(willow.CommitInput{
			Message: commitMessage,
			Source:  willow.CommitSource{Kind: willow.SourceKind(commitSource)},
		})
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Refill the graph from HEAD, discarding pending changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return store.DiscardChanges()
	},
}

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Walk the first-parent chain from HEAD",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := store.Log(logLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(entries)
		}
		fmt.Println(render.Log(entries))
		return nil
	},
}

var showCommitCmd = &cobra.Command{
	Use:   "show <hash>",
	Short: "Show a commit's data and its diff against its first parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, summary, err := store.ShowCommit(willow.CommitHash(args[0]))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]any{"commit": data, "diff": summary})
		}
		fmt.Println(data.Message)
		fmt.Println(render.Diff(summary))
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <from> <to>",
	Short: "Diff two commits",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := store.DiffCommits(willow.CommitHash(args[0]), willow.CommitHash(args[1]))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(summary)
		}
		fmt.Println(render.Diff(summary))
		return nil
	},
}

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List every branch with its head hash and current flag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		branches, err := store.ListBranches()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(branches)
		}
		fmt.Println(render.Branches(branches))
		return nil
	},
}

var createBranchCmd = &cobra.Command{
	Use:   "create-branch <name>",
	Short: "Create a branch ref at the current resolved HEAD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return store.CreateBranch(args[0])
	},
}

var deleteBranchCmd = &cobra.Command{
	Use:   "delete-branch <name>",
	Short: "Remove a branch ref (refuses the default or current branch)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return store.DeleteBranch(args[0])
	},
}

var switchBranchCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Move HEAD to a branch (refuses if there are pending changes)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return store.SwitchBranch(args[0])
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <hash>",
	Short: "Move HEAD to a detached commit (refuses if there are pending changes)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return store.CheckoutCommit(willow.CommitHash(args[0]))
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <hash>",
	Short: "Write a new snapshot commit equal to a prior commit and check it out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := store.RestoreToCommit(willow.CommitHash(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <source-branch>",
	Short: "Merge a branch into the current branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := store.MergeBranch(args[0])
		if err != nil {
			return err
		}
		if len(result.Conflicts) == 0 {
			fmt.Println(result.Hash)
			return nil
		}
		resolutions, err := resolveConflictsInteractively(result.Conflicts)
		if err != nil {
			return err
		}
		hash, err := store.ResolveConflicts(resolutions, args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initVCSCmd)

	commitCmd.Flags().StringVar(&commitMessage, "message", "", "commit message")
	commitCmd.Flags().StringVar(&commitSource, "source", string(willow.SourceManual), "commit source kind (conversation|maintenance|manual|merge|migration)")
	rootCmd.AddCommand(commitCmd)

	rootCmd.AddCommand(discardCmd)

	logCmd.Flags().IntVar(&logLimit, "limit", 20, "maximum commits to walk")
	rootCmd.AddCommand(logCmd)

	rootCmd.AddCommand(showCommitCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(branchesCmd)
	rootCmd.AddCommand(createBranchCmd)
	rootCmd.AddCommand(deleteBranchCmd)
	rootCmd.AddCommand(switchBranchCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(mergeCmd)
}
