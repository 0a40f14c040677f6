// Package willow is the public API of an embeddable, single-writer
// versioned store for a small in-memory rooted tree with cross-links: a
// typed hierarchy of semantic nodes augmented with directed labeled
// relations, plus a git-like version control layer of commits, branches,
// detached checkouts, three-way merges, and diff/restore.
//
// Most embedders only need Open and the Store methods it returns. This
// package re-exports the internal types needed to call them without
// reaching into internal/.
package willow

import (
	"github.com/willowgraph/willow/internal/graphstore"
	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/search"
	"github.com/willowgraph/willow/internal/vcs"
)

// Store is the façade over a graph and its optional VCS layer.
type Store = graphstore.Store

// Open loads the graph at path (creating a default one, a single root node
// with content "User", if absent) and, if a VCS repo already exists
// alongside it, opens that too.
func Open(path string) (*Store, error) {
	return graphstore.Open(path)
}

// Context is the result of GetContext: a node, its ancestor chain, its
// descendants, and every link touching any of them.
type Context = graphstore.Context

// UpdateNodeOptions is the partial patch Store.UpdateNode accepts.
type UpdateNodeOptions = graphstore.UpdateNodeOptions

// UpdateLinkOptions is the partial patch Store.UpdateLink accepts.
type UpdateLinkOptions = graphstore.UpdateLinkOptions

// Core graph types.
type (
	NodeId           = model.NodeId
	LinkId           = model.LinkId
	CommitHash       = model.CommitHash
	BranchName       = model.BranchName
	Node             = model.Node
	Link             = model.Link
	Graph            = model.Graph
	NodeType         = model.NodeType
	Confidence       = model.Confidence
	SupersededValue  = model.SupersededValue
	TemporalMetadata = model.TemporalMetadata
)

// Node-type vocabulary.
const (
	NodeTypeRoot       = model.NodeTypeRoot
	NodeTypeCategory   = model.NodeTypeCategory
	NodeTypeCollection = model.NodeTypeCollection
	NodeTypeEntity     = model.NodeTypeEntity
	NodeTypeAttribute  = model.NodeTypeAttribute
	NodeTypeEvent      = model.NodeTypeEvent
	NodeTypeDetail     = model.NodeTypeDetail
)

// Confidence vocabulary.
const (
	ConfidenceLow    = model.ConfidenceLow
	ConfidenceMedium = model.ConfidenceMedium
	ConfidenceHigh   = model.ConfidenceHigh
)

// RootID is the fixed id of the single root node every graph carries.
const RootID = model.RootID

// VCS types.
type (
	CommitData         = vcs.CommitData
	CommitSource       = vcs.CommitSource
	CommitInput        = vcs.CommitInput
	CommitEntry        = vcs.CommitEntry
	ChangeSummary      = vcs.ChangeSummary
	NodeChange         = vcs.NodeChange
	LinkChange         = vcs.LinkChange
	BranchInfo         = vcs.BranchInfo
	MergeBranchResult  = vcs.MergeBranchResult
	MergeConflict      = vcs.MergeConflict
	Resolution         = vcs.Resolution
	RepoConfig         = vcs.RepoConfig
	SourceKind         = vcs.SourceKind
	ConflictKind       = vcs.ConflictKind
	DeletedBy          = vcs.DeletedBy
	StorageType        = vcs.StorageType
)

// Commit source kinds.
const (
	SourceConversation = vcs.SourceConversation
	SourceMaintenance  = vcs.SourceMaintenance
	SourceManual       = vcs.SourceManual
	SourceMerge        = vcs.SourceMerge
	SourceMigration    = vcs.SourceMigration
)

// Merge conflict kinds.
const (
	ConflictContent      = vcs.ConflictContent
	ConflictStructural   = vcs.ConflictStructural
	ConflictDeleteModify = vcs.ConflictDeleteModify
	ConflictDeleteLink   = vcs.ConflictDeleteLink
)

// Which side performed a delete that conflicts with a modification.
const (
	DeletedByOurs   = vcs.DeletedByOurs
	DeletedByTheirs = vcs.DeletedByTheirs
)

// Commit storage types.
const (
	StorageSnapshot = vcs.StorageSnapshot
	StorageDelta    = vcs.StorageDelta
)

// SearchResult is one scored hit from Store.SearchNodes.
type SearchResult = search.Result
