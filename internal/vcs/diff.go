package vcs

import (
	"maps"
	"sort"

	"github.com/willowgraph/willow/internal/model"
)

// NodeChange describes one node's difference between two graph states.
type NodeChange struct {
	NodeID     model.NodeId `json:"node_id"`
	Path       []string     `json:"path"`
	OldContent *string      `json:"old_content,omitempty"`
	NewContent *string      `json:"new_content,omitempty"`
}

// LinkChange describes one link's difference between two graph states.
type LinkChange struct {
	LinkID model.LinkId `json:"link_id"`
	Link   *model.Link  `json:"link"`
}

// ChangeSummary is the full structural diff between two graph states.
type ChangeSummary struct {
	NodesCreated []NodeChange `json:"nodes_created"`
	NodesUpdated []NodeChange `json:"nodes_updated"`
	NodesDeleted []NodeChange `json:"nodes_deleted"`
	LinksCreated []LinkChange `json:"links_created"`
	LinksUpdated []LinkChange `json:"links_updated"`
	LinksRemoved []LinkChange `json:"links_removed"`
}

// buildNodePath returns the chain of content strings from root to nodeID,
// root first, within g.
func buildNodePath(g *model.Graph, nodeID model.NodeId) []string {
	var chain []string
	id := nodeID
	seen := map[model.NodeId]bool{}
	for {
		n, ok := g.Nodes[id]
		if !ok || seen[id] {
			break
		}
		seen[id] = true
		chain = append([]string{n.Content}, chain...)
		if n.ParentID == nil {
			break
		}
		id = *n.ParentID
	}
	return chain
}

func metadataDiffers(a, b map[string]string) bool {
	return !maps.Equal(a, b)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ComputeGraphDiff returns the structural diff between oldG and newG.
func ComputeGraphDiff(oldG, newG *model.Graph) ChangeSummary {
	var summary ChangeSummary

	for _, id := range sortedKeys(newG.Nodes) {
		if _, existed := oldG.Nodes[id]; !existed {
			n := newG.Nodes[id]
			content := n.Content
			summary.NodesCreated = append(summary.NodesCreated, NodeChange{
				NodeID: id, Path: buildNodePath(newG, id), NewContent: &content,
			})
		}
	}

	for _, id := range sortedKeys(oldG.Nodes) {
		if _, still := newG.Nodes[id]; !still {
			n := oldG.Nodes[id]
			content := n.Content
			summary.NodesDeleted = append(summary.NodesDeleted, NodeChange{
				NodeID: id, Path: buildNodePath(oldG, id), OldContent: &content,
			})
		}
	}

	for _, id := range sortedKeys(oldG.Nodes) {
		newNode, still := newG.Nodes[id]
		if !still {
			continue
		}
		oldNode := oldG.Nodes[id]
		if oldNode.Content != newNode.Content || metadataDiffers(oldNode.Metadata, newNode.Metadata) {
			oldContent, newContent := oldNode.Content, newNode.Content
			summary.NodesUpdated = append(summary.NodesUpdated, NodeChange{
				NodeID: id, Path: buildNodePath(newG, id), OldContent: &oldContent, NewContent: &newContent,
			})
		}
	}

	for _, id := range sortedKeys(newG.Links) {
		if _, existed := oldG.Links[id]; !existed {
			summary.LinksCreated = append(summary.LinksCreated, LinkChange{LinkID: id, Link: newG.Links[id]})
		}
	}
	for _, id := range sortedKeys(oldG.Links) {
		if _, still := newG.Links[id]; !still {
			summary.LinksRemoved = append(summary.LinksRemoved, LinkChange{LinkID: id, Link: oldG.Links[id]})
		}
	}
	for _, id := range sortedKeys(oldG.Links) {
		newLink, still := newG.Links[id]
		if !still {
			continue
		}
		oldLink := oldG.Links[id]
		if oldLink.Relation != newLink.Relation ||
			oldLink.Bidirectional != newLink.Bidirectional ||
			!confidenceEqual(oldLink.Confidence, newLink.Confidence) {
			summary.LinksUpdated = append(summary.LinksUpdated, LinkChange{LinkID: id, Link: newLink})
		}
	}

	return summary
}

func confidenceEqual(a, b *model.Confidence) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
