// Package graphstore is the top-level façade over the graph and its
// optional VCS layer: every mutation updates the in-memory graph, persists
// it atomically, and, when a repo is open, appends one Change to a
// pending buffer consumed by the next commit. Two exceptions: UpdateLink
// never appends a Change, and UpdateNode appends one only when content or
// metadata actually changed.
package graphstore

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/search"
	"github.com/willowgraph/willow/internal/storage"
	"github.com/willowgraph/willow/internal/vcs"
	"github.com/willowgraph/willow/internal/werr"
	"github.com/willowgraph/willow/internal/wlock"
)

// Store is the embeddable façade: open one path, call its methods, done.
type Store struct {
	path    string
	graph   *model.Graph
	repo    *vcs.Repository
	pending []vcs.Change
	lock    *wlock.Lock
}

// Open loads the graph at path (creating a default one if absent), takes
// out an exclusive lock over its directory enforcing the single-writer
// model, and, if a VCS repo already exists alongside it, opens that too. A
// missing repo is not an error: VCS features simply stay unavailable until
// InitVCS is called.
func Open(path string) (*Store, error) {
	repoDir := filepath.Dir(path)
	lock := wlock.New(repoDir)
	if err := lock.TryLock(); err != nil {
		return nil, err
	}

	g, err := storage.Load(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	s := &Store{path: path, graph: g, lock: lock}
	if vcs.Exists(repoDir) {
		repo, err := vcs.Open(repoDir)
		if err != nil {
			_ = lock.Unlock()
			return nil, err
		}
		s.repo = repo
	}
	return s, nil
}

// Close releases the exclusive lock taken out by Open. It does not flush
// anything: every mutation already persisted synchronously.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Graph returns the live in-memory graph. Callers must not mutate it
// directly; use the Store's methods.
func (s *Store) Graph() *model.Graph { return s.graph }

// Reload replaces the in-memory graph with whatever is currently on disk,
// picking up edits made by something other than this Store's own methods.
// It does not touch the pending-change buffer; callers that want an edit
// recorded as a commit should follow up with CommitIfChanged.
func (s *Store) Reload() error {
	g, err := storage.Load(s.path)
	if err != nil {
		return err
	}
	s.graph = g
	return nil
}

// HasPendingChanges reports whether any mutation has been recorded since
// the last commit (or discard).
func (s *Store) HasPendingChanges() bool { return len(s.pending) > 0 }

func (s *Store) persist() error {
	return storage.Save(s.path, s.graph)
}

func (s *Store) record(c vcs.Change) {
	if s.repo != nil {
		s.pending = append(s.pending, c)
	}
}

func newID() string { return uuid.NewString() }

// CreateNode creates a child of parentID with the given type and content,
// appends it to the parent's children, and persists the result.
func (s *Store) CreateNode(parentID model.NodeId, nodeType string, content string, metadata map[string]string, temporal *model.TemporalMetadata) (*model.Node, error) {
	if _, ok := s.graph.Nodes[parentID]; !ok {
		return nil, &werr.ParentNotFound{ID: parentID}
	}
	nt, err := model.ParseNodeType(nodeType)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if metadata == nil {
		metadata = map[string]string{}
	}
	n := &model.Node{
		ID:             newID(),
		NodeType:       nt,
		Content:        content,
		ParentID:       &parentID,
		Children:       []model.NodeId{},
		Metadata:       metadata,
		PreviousValues: []model.SupersededValue{},
		Temporal:       temporal,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.graph.Nodes[n.ID] = n
	s.graph.AttachChild(parentID, n.ID)

	if err := s.persist(); err != nil {
		return nil, err
	}
	s.record(vcs.Change{Kind: vcs.ChangeCreateNode, NodeID: n.ID, Node: n.Clone()})
	return n, nil
}

// UpdateNodeOptions is the partial patch update_node accepts. A nil field
// means "leave unchanged"; Metadata distinguishes "unchanged" (nil) from
// "replace with an empty map" (non-nil, zero-length).
type UpdateNodeOptions struct {
	Content  *string
	Metadata map[string]string
	Temporal *model.TemporalMetadata
	Reason   *string
}

// UpdateNode applies a partial patch to an existing node. If Content
// differs from the current value, the old value is appended to
// PreviousValues before being overwritten. Metadata, when supplied, replaces
// wholesale. A Change is recorded only when content or metadata actually
// changed.
func (s *Store) UpdateNode(nodeID model.NodeId, opts UpdateNodeOptions) (*model.Node, error) {
	n, ok := s.graph.Nodes[nodeID]
	if !ok {
		return nil, &werr.NodeNotFound{ID: nodeID}
	}

	var oldContent, newContent *string
	var oldMetadata, newMetadata map[string]string
	changed := false

	if opts.Content != nil && *opts.Content != n.Content {
		prev := n.Content
		n.PreviousValues = append(n.PreviousValues, model.SupersededValue{
			OldContent:   prev,
			SupersededAt: time.Now().UTC(),
			Reason:       opts.Reason,
		})
		oldContent, newContent = &prev, opts.Content
		n.Content = *opts.Content
		changed = true
	}
	if opts.Metadata != nil {
		old := n.Metadata
		if !mapEqual(old, opts.Metadata) {
			oldMetadata = old
			newMetadata = opts.Metadata
			n.Metadata = opts.Metadata
			changed = true
		}
	}
	if opts.Temporal != nil {
		n.Temporal = opts.Temporal
	}
	n.UpdatedAt = time.Now().UTC()

	if err := s.persist(); err != nil {
		return nil, err
	}
	if changed {
		s.record(vcs.Change{
			Kind: vcs.ChangeUpdateNode, NodeID: nodeID,
			OldContent: oldContent, NewContent: newContent,
			OldMetadata: oldMetadata, NewMetadata: newMetadata,
		})
	}
	return n, nil
}

func mapEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// DeleteNode removes nodeID and its entire subtree, and every link touching
// any deleted node. The root may never be deleted.
func (s *Store) DeleteNode(nodeID model.NodeId) error {
	if nodeID == s.graph.RootID {
		return &werr.CannotDeleteRoot{}
	}
	n, ok := s.graph.Nodes[nodeID]
	if !ok {
		return &werr.NodeNotFound{ID: nodeID}
	}

	descendants := s.graph.Descendants(nodeID)
	deletedIDs := append([]model.NodeId{nodeID}, descendants...)
	touching := make(map[model.NodeId]bool, len(deletedIDs))
	for _, id := range deletedIDs {
		touching[id] = true
	}
	deletedLinks := s.graph.LinksTouching(touching)

	if n.ParentID != nil {
		s.graph.DetachChild(*n.ParentID, nodeID)
	}
	for _, id := range deletedIDs {
		delete(s.graph.Nodes, id)
	}
	for _, id := range deletedLinks {
		delete(s.graph.Links, id)
	}

	if err := s.persist(); err != nil {
		return err
	}
	s.record(vcs.Change{
		Kind: vcs.ChangeDeleteNode, NodeID: nodeID,
		DeletedNodes: deletedIDs, DeletedLinks: deletedLinks,
	})
	return nil
}

// AddLink creates a new directed link between two existing nodes, rejecting
// duplicate (from, to, relation) triples (and, for a bidirectional link,
// the reverse triple too).
func (s *Store) AddLink(from, to model.NodeId, relation string, bidirectional bool, confidence *string) (*model.Link, error) {
	if _, ok := s.graph.Nodes[from]; !ok {
		return nil, &werr.NodeNotFound{ID: from}
	}
	if _, ok := s.graph.Nodes[to]; !ok {
		return nil, &werr.NodeNotFound{ID: to}
	}
	var conf *model.Confidence
	if confidence != nil {
		c, err := model.ParseConfidence(*confidence)
		if err != nil {
			return nil, err
		}
		conf = &c
	}
	for _, e := range s.graph.Links {
		if e.Relation != relation {
			continue
		}
		if e.FromNode == from && e.ToNode == to {
			return nil, &werr.DuplicateLink{From: from, To: to, Relation: relation}
		}
		if (bidirectional || e.Bidirectional) && e.FromNode == to && e.ToNode == from {
			return nil, &werr.DuplicateLink{From: from, To: to, Relation: relation}
		}
	}

	l := &model.Link{
		ID:            newID(),
		FromNode:      from,
		ToNode:        to,
		Relation:      relation,
		Bidirectional: bidirectional,
		Confidence:    conf,
		CreatedAt:     time.Now().UTC(),
	}
	s.graph.Links[l.ID] = l

	if err := s.persist(); err != nil {
		return nil, err
	}
	s.record(vcs.Change{Kind: vcs.ChangeAddLink, LinkID: l.ID, Link: l.Clone()})
	return l, nil
}

// UpdateLinkOptions is the partial patch update_link accepts.
type UpdateLinkOptions struct {
	Relation      *string
	Bidirectional *bool
	Confidence    *string
}

// UpdateLink applies a partial patch to an existing link. There is no
// UpdateLink change kind in the Change taxonomy, so unlike every other
// mutation this one is never recorded in the pending-change buffer; see
// DESIGN.md for the consequence this has for delta reconstruction.
func (s *Store) UpdateLink(linkID model.LinkId, opts UpdateLinkOptions) (*model.Link, error) {
	l, ok := s.graph.Links[linkID]
	if !ok {
		return nil, &werr.LinkNotFound{ID: linkID}
	}
	if opts.Relation != nil {
		l.Relation = *opts.Relation
	}
	if opts.Bidirectional != nil {
		l.Bidirectional = *opts.Bidirectional
	}
	if opts.Confidence != nil {
		c, err := model.ParseConfidence(*opts.Confidence)
		if err != nil {
			return nil, err
		}
		l.Confidence = &c
	}
	if err := s.persist(); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteLink removes and returns a link by id.
func (s *Store) DeleteLink(linkID model.LinkId) (*model.Link, error) {
	l, ok := s.graph.Links[linkID]
	if !ok {
		return nil, &werr.LinkNotFound{ID: linkID}
	}
	delete(s.graph.Links, linkID)

	if err := s.persist(); err != nil {
		return nil, err
	}
	s.record(vcs.Change{Kind: vcs.ChangeRemoveLink, LinkID: linkID, Link: l.Clone()})
	return l, nil
}

// SearchNodes delegates to the BFS substring/term scorer.
func (s *Store) SearchNodes(query string, maxResults int) []search.Result {
	if maxResults <= 0 {
		maxResults = 10
	}
	return search.Nodes(s.graph, query, maxResults)
}
