// Package model defines the entity types, identifier aliases, and enum
// vocabularies of the willow graph: nodes, links, and the graph they form.
package model

import (
	"time"

	"github.com/willowgraph/willow/internal/werr"
)

// NodeId, LinkId, CommitHash and BranchName are caller-opaque strings.
// Equality and hashing on all four is plain string equality.
type (
	NodeId      = string
	LinkId      = string
	CommitHash  = string
	BranchName  = string
)

// RootID is the fixed id of the single root node every graph carries.
const RootID NodeId = "root"

// NodeType is the fixed lowercase vocabulary a node's type tag is drawn
// from.
type NodeType string

// The complete set of valid node types.
const (
	NodeTypeRoot       NodeType = "root"
	NodeTypeCategory   NodeType = "category"
	NodeTypeCollection NodeType = "collection"
	NodeTypeEntity     NodeType = "entity"
	NodeTypeAttribute  NodeType = "attribute"
	NodeTypeEvent      NodeType = "event"
	NodeTypeDetail     NodeType = "detail"
)

// ParseNodeType validates s against the fixed vocabulary, rejecting anything
// else with InvalidNodeType.
func ParseNodeType(s string) (NodeType, error) {
	switch NodeType(s) {
	case NodeTypeRoot, NodeTypeCategory, NodeTypeCollection, NodeTypeEntity, NodeTypeAttribute, NodeTypeEvent, NodeTypeDetail:
		return NodeType(s), nil
	default:
		return "", &werr.InvalidNodeType{Value: s}
	}
}

// Confidence is the fixed lowercase vocabulary a link's confidence is drawn
// from.
type Confidence string

// The complete set of valid confidence levels.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseConfidence validates s against the fixed vocabulary, rejecting
// anything else with InvalidConfidence.
func ParseConfidence(s string) (Confidence, error) {
	switch Confidence(s) {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return Confidence(s), nil
	default:
		return "", &werr.InvalidConfidence{Value: s}
	}
}

// SupersededValue records a content value a node used to hold, before it was
// overwritten by update_node.
type SupersededValue struct {
	OldContent   string    `json:"old_content"`
	SupersededAt time.Time `json:"superseded_at"`
	Reason       *string   `json:"reason,omitempty"`
}

// TemporalMetadata attaches an optional validity window and label to a node.
type TemporalMetadata struct {
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	Label      *string    `json:"label,omitempty"`
}

// Node is one vertex of the rooted tree.
type Node struct {
	ID              NodeId            `json:"id"`
	NodeType        NodeType          `json:"node_type"`
	Content         string            `json:"content"`
	ParentID        *NodeId           `json:"parent_id,omitempty"`
	Children        []NodeId          `json:"children"`
	Metadata        map[string]string `json:"metadata"`
	PreviousValues  []SupersededValue `json:"previous_values"`
	Temporal        *TemporalMetadata `json:"temporal,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Clone returns a deep copy of n, safe to mutate independently.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.ParentID != nil {
		p := *n.ParentID
		c.ParentID = &p
	}
	c.Children = append([]NodeId(nil), n.Children...)
	c.Metadata = make(map[string]string, len(n.Metadata))
	for k, v := range n.Metadata {
		c.Metadata[k] = v
	}
	c.PreviousValues = append([]SupersededValue(nil), n.PreviousValues...)
	if n.Temporal != nil {
		t := *n.Temporal
		c.Temporal = &t
	}
	return &c
}

// Link is a directed, optionally bidirectional, labeled edge between two
// nodes outside the parent/child tree.
type Link struct {
	ID            LinkId      `json:"id"`
	FromNode      NodeId      `json:"from_node"`
	ToNode        NodeId      `json:"to_node"`
	Relation      string      `json:"relation"`
	Bidirectional bool        `json:"bidirectional"`
	Confidence    *Confidence `json:"confidence,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Clone returns a shallow-safe copy of l.
func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}
	c := *l
	if l.Confidence != nil {
		conf := *l.Confidence
		c.Confidence = &conf
	}
	return &c
}

// Graph is the whole in-memory store: a rooted tree of nodes plus a set of
// cross-cutting links.
type Graph struct {
	RootID NodeId           `json:"root_id"`
	Nodes  map[NodeId]*Node `json:"nodes"`
	Links  map[LinkId]*Link `json:"links"`
}

// Empty returns a graph containing only a root node with the given id,
// content "User", and no children or links.
func Empty(rootID NodeId) *Graph {
	now := time.Now().UTC()
	root := &Node{
		ID:             rootID,
		NodeType:       NodeTypeRoot,
		Content:        "User",
		Children:       []NodeId{},
		Metadata:       map[string]string{},
		PreviousValues: []SupersededValue{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return &Graph{
		RootID: rootID,
		Nodes:  map[NodeId]*Node{rootID: root},
		Links:  map[LinkId]*Link{},
	}
}

// Clone returns a deep copy of g, safe to mutate independently (used as the
// starting point for merge and for snapshot reconstruction).
func (g *Graph) Clone() *Graph {
	out := &Graph{
		RootID: g.RootID,
		Nodes:  make(map[NodeId]*Node, len(g.Nodes)),
		Links:  make(map[LinkId]*Link, len(g.Links)),
	}
	for id, n := range g.Nodes {
		out.Nodes[id] = n.Clone()
	}
	for id, l := range g.Links {
		out.Links[id] = l.Clone()
	}
	return out
}

// AttachChild centralizes the parent/child double-link: it appends childID
// to parent's children (idempotently) and sets child.ParentID to parentID.
func (g *Graph) AttachChild(parentID, childID NodeId) {
	if p, ok := g.Nodes[parentID]; ok {
		found := false
		for _, c := range p.Children {
			if c == childID {
				found = true
				break
			}
		}
		if !found {
			p.Children = append(p.Children, childID)
		}
	}
	if c, ok := g.Nodes[childID]; ok {
		pid := parentID
		c.ParentID = &pid
	}
}

// DetachChild centralizes removing childID from parentID's children list.
// It does not touch child.ParentID; callers that reparent set it themselves.
func (g *Graph) DetachChild(parentID, childID NodeId) {
	p, ok := g.Nodes[parentID]
	if !ok {
		return
	}
	out := p.Children[:0]
	for _, c := range p.Children {
		if c != childID {
			out = append(out, c)
		}
	}
	p.Children = out
}

// Descendants returns every node id reachable from nodeID via children,
// depth-first, not including nodeID itself.
func (g *Graph) Descendants(nodeID NodeId) []NodeId {
	var out []NodeId
	var walk func(id NodeId)
	walk = func(id NodeId) {
		n, ok := g.Nodes[id]
		if !ok {
			return
		}
		for _, c := range n.Children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(nodeID)
	return out
}

// LinksTouching returns the ids of every link with either endpoint in ids.
func (g *Graph) LinksTouching(ids map[NodeId]bool) []LinkId {
	var out []LinkId
	for id, l := range g.Links {
		if ids[l.FromNode] || ids[l.ToNode] {
			out = append(out, id)
		}
	}
	return out
}
