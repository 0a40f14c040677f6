package graphstore

import (
	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/werr"
)

// Context is the result of get_context: a node, its ancestor chain (nearest
// first), its descendants out to a bounded depth, and every link touching
// any of them.
type Context struct {
	Node        *model.Node
	Ancestors   []*model.Node
	Descendants []*model.Node
	Links       []*model.Link
}

// GetContext gathers a node's immediate neighborhood: ancestors walked to
// the root, descendants collected depth levels deep, and every link whose
// either endpoint falls in the resulting set.
func (s *Store) GetContext(nodeID model.NodeId, depth int) (*Context, error) {
	n, ok := s.graph.Nodes[nodeID]
	if !ok {
		return nil, &werr.NodeNotFound{ID: nodeID}
	}

	var ancestors []*model.Node
	cur := n.ParentID
	seen := map[model.NodeId]bool{nodeID: true}
	for cur != nil {
		p, ok := s.graph.Nodes[*cur]
		if !ok || seen[*cur] {
			break
		}
		seen[*cur] = true
		ancestors = append(ancestors, p)
		cur = p.ParentID
	}

	var descendants []*model.Node
	if depth > 0 {
		var walk func(id model.NodeId, remaining int)
		walk = func(id model.NodeId, remaining int) {
			if remaining == 0 {
				return
			}
			cur, ok := s.graph.Nodes[id]
			if !ok {
				return
			}
			for _, childID := range cur.Children {
				child, ok := s.graph.Nodes[childID]
				if !ok {
					continue
				}
				descendants = append(descendants, child)
				walk(childID, remaining-1)
			}
		}
		walk(nodeID, depth)
	}

	touching := map[model.NodeId]bool{nodeID: true}
	for _, a := range ancestors {
		touching[a.ID] = true
	}
	for _, d := range descendants {
		touching[d.ID] = true
	}
	var links []*model.Link
	for _, l := range s.graph.Links {
		if touching[l.FromNode] || touching[l.ToNode] {
			links = append(links, l)
		}
	}

	return &Context{Node: n, Ancestors: ancestors, Descendants: descendants, Links: links}, nil
}
