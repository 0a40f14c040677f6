// Package vcs is the content-addressed commit object store and three-way
// merge engine that gives willow its git-like version control layer:
// commits, branches, detached checkouts, merges, and diff/restore.
package vcs

import (
	"time"

	"github.com/willowgraph/willow/internal/model"
)

// StorageType discriminates whether a commit's payload is a full snapshot
// or a delta against its first parent's reconstructed graph.
type StorageType string

const (
	StorageSnapshot StorageType = "snapshot"
	StorageDelta    StorageType = "delta"
)

// SourceKind tags where a commit came from. It is the discriminant of
// CommitSource, a tagged union modeled as a struct because Go has no sum
// types: only the fields listed under the matching kind are meaningful.
type SourceKind string

const (
	SourceConversation SourceKind = "conversation"
	SourceMaintenance  SourceKind = "maintenance"
	SourceManual       SourceKind = "manual"
	SourceMerge        SourceKind = "merge"
	SourceMigration    SourceKind = "migration"
)

// CommitSource is the tagged variant describing how a commit came to be.
type CommitSource struct {
	Kind SourceKind `json:"kind"`

	// Conversation
	ConversationID *string `json:"conversation_id,omitempty"`
	Summary        *string `json:"summary,omitempty"`

	// Maintenance
	JobID *string `json:"job_id,omitempty"`

	// Manual
	ToolName *string `json:"tool_name,omitempty"`

	// Merge
	SourceBranch string `json:"source_branch,omitempty"`
	TargetBranch string `json:"target_branch,omitempty"`
}

// CommitData is the immutable, hashable payload of a commit object.
type CommitData struct {
	Parents            []model.CommitHash `json:"parents"`
	Message            string             `json:"message"`
	Timestamp          time.Time          `json:"timestamp"`
	Source             CommitSource       `json:"source"`
	StorageType        StorageType        `json:"storage_type"`
	DepthSinceSnapshot uint32             `json:"depth_since_snapshot"`
}

// ChangeKind tags the six possible delta change records.
type ChangeKind string

const (
	ChangeCreateNode  ChangeKind = "create_node"
	ChangeUpdateNode  ChangeKind = "update_node"
	ChangeDeleteNode  ChangeKind = "delete_node"
	ChangeAddLink     ChangeKind = "add_link"
	ChangeRemoveLink  ChangeKind = "remove_link"
	ChangeReparent    ChangeKind = "reparent_node"
)

// Change is one entry of a pending-change buffer / delta payload.
type Change struct {
	Kind ChangeKind `json:"kind"`

	// CreateNode
	NodeID string      `json:"node_id,omitempty"`
	Node   *model.Node `json:"node,omitempty"`

	// UpdateNode
	OldContent  *string           `json:"old_content,omitempty"`
	NewContent  *string           `json:"new_content,omitempty"`
	OldMetadata map[string]string `json:"old_metadata,omitempty"`
	NewMetadata map[string]string `json:"new_metadata,omitempty"`

	// DeleteNode
	DeletedNodes []string `json:"deleted_nodes,omitempty"`
	DeletedLinks []string `json:"deleted_links,omitempty"`

	// AddLink / RemoveLink
	LinkID string      `json:"link_id,omitempty"`
	Link   *model.Link `json:"link,omitempty"`

	// ReparentNode
	OldParent *string `json:"old_parent,omitempty"`
	NewParent *string `json:"new_parent,omitempty"`
}

// Delta is the payload of a delta-storage commit: the ordered list of
// changes it applies over its first parent's reconstructed graph.
type Delta struct {
	Changes []Change `json:"changes"`
}

// HeadKind discriminates the two HeadState variants.
type HeadKind string

const (
	HeadBranch   HeadKind = "branch"
	HeadDetached HeadKind = "detached"
)

// HeadState is either a named branch or a detached commit hash.
type HeadState struct {
	Kind   HeadKind           `json:"kind"`
	Branch model.BranchName   `json:"branch,omitempty"`
	Hash   model.CommitHash   `json:"hash,omitempty"`
}

// RepoConfig is the repository's on-disk configuration object.
type RepoConfig struct {
	FormatVersion    int    `json:"format_version"`
	SnapshotInterval int    `json:"snapshot_interval"`
	DefaultBranch    string `json:"default_branch"`
}

// DefaultRepoConfig returns the default repo configuration.
func DefaultRepoConfig() RepoConfig {
	return RepoConfig{FormatVersion: 1, SnapshotInterval: 50, DefaultBranch: "main"}
}

// BranchInfo is the structured shape list_branches returns.
type BranchInfo struct {
	Name      model.BranchName  `json:"name"`
	Head      model.CommitHash  `json:"head"`
	IsCurrent bool              `json:"is_current"`
}

// CommitInput is what a caller supplies to create_commit and
// commit_if_changed: the parts of CommitData the caller controls.
type CommitInput struct {
	Message string
	Source  CommitSource
}

// CommitEntry pairs a commit's hash with its data, the shape log() returns.
type CommitEntry struct {
	Hash model.CommitHash
	Data CommitData
}

// applyDelta is the dual of recording Change entries: given a graph and a
// delta, mutate the graph in place to reflect every change, in order.
func applyDelta(g *model.Graph, d Delta) {
	for _, c := range d.Changes {
		applyChange(g, c)
	}
}

func applyChange(g *model.Graph, c Change) {
	switch c.Kind {
	case ChangeCreateNode:
		if c.Node == nil {
			return
		}
		if _, exists := g.Nodes[c.NodeID]; !exists {
			g.Nodes[c.NodeID] = c.Node.Clone()
		}
		if c.Node.ParentID != nil {
			g.AttachChild(*c.Node.ParentID, c.NodeID)
		}
	case ChangeUpdateNode:
		n, ok := g.Nodes[c.NodeID]
		if !ok {
			return
		}
		if c.NewContent != nil {
			n.Content = *c.NewContent
		}
		if c.NewMetadata != nil {
			n.Metadata = c.NewMetadata
		}
	case ChangeDeleteNode:
		if n, ok := g.Nodes[c.NodeID]; ok && n.ParentID != nil {
			g.DetachChild(*n.ParentID, c.NodeID)
		}
		delete(g.Nodes, c.NodeID)
		for _, id := range c.DeletedNodes {
			delete(g.Nodes, id)
		}
		for _, id := range c.DeletedLinks {
			delete(g.Links, id)
		}
	case ChangeAddLink:
		if c.Link != nil {
			g.Links[c.LinkID] = c.Link.Clone()
		}
	case ChangeRemoveLink:
		delete(g.Links, c.LinkID)
	case ChangeReparent:
		if c.OldParent != nil {
			g.DetachChild(*c.OldParent, c.NodeID)
		}
		if c.NewParent != nil {
			g.AttachChild(*c.NewParent, c.NodeID)
		} else if n, ok := g.Nodes[c.NodeID]; ok {
			n.ParentID = nil
		}
	}
}
