// Package render turns graphstore/vcs results into terminal output:
// a node tree, a commit log, a diff summary, search hits, and a branch
// list, using lipgloss tables and trees, x/term width/color detection,
// and glamour for markdown bodies.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/search"
	"github.com/willowgraph/willow/internal/vcs"
)

var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#8A85FF"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#6C6C6C"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#C27803", Dark: "#E0A63C"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#4ADE80"}
)

var (
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Align(lipgloss.Center)
	TableHintStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	TableBorderStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// IsTerminal reports whether stdout is attached to a TTY.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor follows the NO_COLOR/CLICOLOR conventions, falling back to
// TTY detection, and additionally consults termenv's own profile detection
// so output degrades gracefully over a dumb terminal or a pipe.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return IsTerminal() && termenv.EnvColorProfile() != termenv.Ascii
}

// Width returns the terminal width, defaulting to 80 when it can't be
// determined (redirected output, non-TTY).
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func newTable() *table.Table {
	return table.New().Border(lipgloss.RoundedBorder()).BorderStyle(TableBorderStyle).Width(Width())
}

// NodeTree renders a subtree rooted at root as a lipgloss tree, descending
// through g's Children links up to the given depth (0 = unlimited).
func NodeTree(g *model.Graph, root model.NodeId, depth int) string {
	n, ok := g.Nodes[root]
	if !ok {
		return TableHintStyle.Render("node not found")
	}
	t := buildNodeTree(g, n, depth, 0)
	t.EnumeratorStyle(lipgloss.NewStyle().Foreground(ColorAccent))
	t.RootStyle(lipgloss.NewStyle().Bold(true).Foreground(ColorAccent))
	return t.String()
}

func buildNodeTree(g *model.Graph, n *model.Node, maxDepth, depth int) *tree.Tree {
	label := fmt.Sprintf("%s [%s]", n.Content, n.NodeType)
	t := tree.New().Root(label)
	if maxDepth > 0 && depth >= maxDepth {
		return t
	}
	for _, childID := range n.Children {
		child, ok := g.Nodes[childID]
		if !ok {
			continue
		}
		t.Child(buildNodeTree(g, child, maxDepth, depth+1))
	}
	return t
}

// Log renders a commit list as a table of hash, message, and source.
func Log(entries []vcs.CommitEntry) string {
	if len(entries) == 0 {
		return TableHintStyle.Render("no commits yet.")
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		short := string(e.Hash)
		if len(short) > 8 {
			short = short[:8]
		}
		rows = append(rows, []string{short, e.Data.Message, string(e.Data.Source.Kind)})
	}
	return newTable().Headers("commit", "message", "source").Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).String()
}

// Branches renders the branch list, marking the current one.
func Branches(branches []vcs.BranchInfo) string {
	rows := make([][]string, 0, len(branches))
	for _, b := range branches {
		marker := "  "
		if b.IsCurrent {
			marker = "* "
		}
		short := string(b.Head)
		if len(short) > 8 {
			short = short[:8]
		}
		rows = append(rows, []string{marker + b.Name, short})
	}
	return newTable().Headers("branch", "head").Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).String()
}

// Diff renders a ChangeSummary as counts of created/updated/deleted for
// nodes and links.
func Diff(c vcs.ChangeSummary) string {
	rows := [][]string{
		{"nodes", fmt.Sprintf("+%d", len(c.NodesCreated)), fmt.Sprintf("~%d", len(c.NodesUpdated)), fmt.Sprintf("-%d", len(c.NodesDeleted))},
		{"links", fmt.Sprintf("+%d", len(c.LinksCreated)), fmt.Sprintf("~%d", len(c.LinksUpdated)), fmt.Sprintf("-%d", len(c.LinksRemoved))},
	}
	return newTable().Headers("", "created", "updated", "deleted").Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).String()
}

// SearchResults renders scored search hits.
func SearchResults(query string, results []search.Result) string {
	if len(results) == 0 {
		return TableHintStyle.Render(fmt.Sprintf("no matches for %q.", query))
	}
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{
			fmt.Sprintf("%d.", i+1),
			string(r.NodeID),
			r.Field,
			fmt.Sprintf("%.2f", r.Score),
		})
	}
	return newTable().Headers("#", "node", "field", "score").Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).String()
}

// Markdown renders a node's content as markdown, for nodes whose content is
// a longer free-form note rather than a short label. Falls back to the raw
// text if glamour can't produce styled output (e.g. no terminal profile).
func Markdown(content string) string {
	out, err := glamour.Render(content, markdownStyle())
	if err != nil {
		return strings.TrimSpace(content)
	}
	return strings.TrimSuffix(out, "\n\n")
}

func markdownStyle() string {
	if ShouldUseColor() {
		return "dark"
	}
	return "notty"
}
