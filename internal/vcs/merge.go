package vcs

import (
	"github.com/willowgraph/willow/internal/model"
)

// ParentsFunc returns the parent hashes of a commit, used by merge-base
// discovery and ancestor tests so they stay independent of how commits are
// actually stored.
type ParentsFunc func(hash model.CommitHash) ([]model.CommitHash, error)

// ConflictKind tags the taxonomy of merge conflicts.
type ConflictKind string

const (
	ConflictContent      ConflictKind = "content"
	ConflictStructural   ConflictKind = "structural"
	ConflictDeleteModify ConflictKind = "delete_modify"
	// ConflictDeleteLink exists for completeness of the taxonomy but is
	// never constructed: a link theirs added whose endpoint ours deleted
	// is silently dropped rather than raised as a conflict (see rule 5).
	ConflictDeleteLink ConflictKind = "delete_link"
)

// DeletedBy identifies which side performed a delete that conflicts with a
// modification on the other side.
type DeletedBy string

const (
	DeletedByOurs   DeletedBy = "ours"
	DeletedByTheirs DeletedBy = "theirs"
)

// MergeConflict is one unresolved difference between ours and theirs.
type MergeConflict struct {
	NodeID model.NodeId `json:"node_id"`
	Kind   ConflictKind `json:"kind"`

	// ContentConflict
	BaseContent   string `json:"base_content,omitempty"`
	OursContent   string `json:"ours_content,omitempty"`
	TheirsContent string `json:"theirs_content,omitempty"`

	// StructuralConflict fields; missing parents report as "".
	BaseParent   string `json:"base_parent"`
	OursParent   string `json:"ours_parent"`
	TheirsParent string `json:"theirs_parent"`

	// DeleteModifyConflict
	DeletedBy DeletedBy `json:"deleted_by,omitempty"`
}

// MergeOutcome is the tagged result of a merge attempt.
type MergeOutcome struct {
	FastForward bool
	Conflicts   []MergeConflict
	Merged      *model.Graph
}

// FindMergeBase performs bidirectional BFS over the commit DAG to find the
// deepest common ancestor of ours and theirs. Returns "", false if the
// histories are disjoint.
func FindMergeBase(ours, theirs model.CommitHash, parents ParentsFunc) (model.CommitHash, bool, error) {
	if ours == theirs {
		return ours, true, nil
	}

	visitedOurs := map[model.CommitHash]bool{ours: true}
	visitedTheirs := map[model.CommitHash]bool{theirs: true}
	queueOurs := []model.CommitHash{ours}
	queueTheirs := []model.CommitHash{theirs}

	for len(queueOurs) > 0 || len(queueTheirs) > 0 {
		if len(queueOurs) > 0 {
			var next []model.CommitHash
			for _, h := range queueOurs {
				if visitedTheirs[h] {
					return h, true, nil
				}
				ps, err := parents(h)
				if err != nil {
					return "", false, err
				}
				for _, p := range ps {
					if !visitedOurs[p] {
						visitedOurs[p] = true
						next = append(next, p)
					}
				}
			}
			queueOurs = next
		}
		if len(queueTheirs) > 0 {
			var next []model.CommitHash
			for _, h := range queueTheirs {
				if visitedOurs[h] {
					return h, true, nil
				}
				ps, err := parents(h)
				if err != nil {
					return "", false, err
				}
				for _, p := range ps {
					if !visitedTheirs[p] {
						visitedTheirs[p] = true
						next = append(next, p)
					}
				}
			}
			queueTheirs = next
		}
	}
	return "", false, nil
}

// IsAncestor reports whether a is an ancestor of (or equal to) d.
func IsAncestor(a, d model.CommitHash, parents ParentsFunc) (bool, error) {
	if a == d {
		return true, nil
	}
	visited := map[model.CommitHash]bool{d: true}
	queue := []model.CommitHash{d}
	for len(queue) > 0 {
		var next []model.CommitHash
		for _, h := range queue {
			ps, err := parents(h)
			if err != nil {
				return false, err
			}
			for _, p := range ps {
				if p == a {
					return true, nil
				}
				if !visited[p] {
					visited[p] = true
					next = append(next, p)
				}
			}
		}
		queue = next
	}
	return false, nil
}

func parentIDString(n *model.Node) string {
	if n == nil || n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

// ThreeWayMerge produces a merged graph starting from ours, or a list of
// conflicts if ours and theirs diverged irreconcilably. See spec rules 1-5.
func ThreeWayMerge(base, ours, theirs *model.Graph) ([]MergeConflict, *model.Graph) {
	merged := ours.Clone()
	var conflicts []MergeConflict

	// Rule 1: adds by theirs (nodes in theirs, absent from base and ours).
	for id, tn := range theirs.Nodes {
		_, inBase := base.Nodes[id]
		_, inOurs := ours.Nodes[id]
		if inBase || inOurs {
			continue
		}
		merged.Nodes[id] = tn.Clone()
		if tn.ParentID != nil {
			merged.AttachChild(*tn.ParentID, id)
		}
	}

	// Rule 2: deletions relative to base.
	for id, bn := range base.Nodes {
		_, inOurs := ours.Nodes[id]
		_, inTheirs := theirs.Nodes[id]
		if inOurs && inTheirs {
			continue
		}
		if !inOurs && !inTheirs {
			continue // deleted by both, nothing to reconcile
		}
		if !inOurs {
			// ours deleted it; if theirs modified it, conflict.
			tn := theirs.Nodes[id]
			if tn.Content != bn.Content || metadataDiffers(tn.Metadata, bn.Metadata) {
				conflicts = append(conflicts, MergeConflict{
					NodeID: id, Kind: ConflictDeleteModify, DeletedBy: DeletedByOurs,
					BaseContent: bn.Content, TheirsContent: tn.Content,
				})
			}
			// else nothing to do; already absent from merged.
			continue
		}
		// !inTheirs: theirs deleted it.
		on := ours.Nodes[id]
		if on.Content != bn.Content || metadataDiffers(on.Metadata, bn.Metadata) {
			conflicts = append(conflicts, MergeConflict{
				NodeID: id, Kind: ConflictDeleteModify, DeletedBy: DeletedByTheirs,
				BaseContent: bn.Content, OursContent: on.Content,
			})
			continue
		}
		if mn, ok := merged.Nodes[id]; ok {
			if mn.ParentID != nil {
				merged.DetachChild(*mn.ParentID, id)
			}
			delete(merged.Nodes, id)
		}
	}

	// Rule 3: content/metadata three-way analysis on nodes common to all
	// three.
	for id, bn := range base.Nodes {
		on, inOurs := ours.Nodes[id]
		tn, inTheirs := theirs.Nodes[id]
		if !inOurs || !inTheirs {
			continue
		}
		oursChanged := on.Content != bn.Content || metadataDiffers(on.Metadata, bn.Metadata)
		theirsChanged := tn.Content != bn.Content || metadataDiffers(tn.Metadata, bn.Metadata)
		switch {
		case !oursChanged && !theirsChanged:
			// no change either side
		case oursChanged && !theirsChanged:
			// keep ours, already in merged
		case !oursChanged && theirsChanged:
			if mn, ok := merged.Nodes[id]; ok {
				mn.Content = tn.Content
				mn.Metadata = cloneMetadata(tn.Metadata)
			}
		default:
			if on.Content == tn.Content && !metadataDiffers(on.Metadata, tn.Metadata) {
				// identical changes on both sides, accept silently
				continue
			}
			conflicts = append(conflicts, MergeConflict{
				NodeID: id, Kind: ConflictContent,
				BaseContent: bn.Content, OursContent: on.Content, TheirsContent: tn.Content,
			})
		}
	}

	// Rule 4: structural (parent_id) three-way analysis.
	for id, bn := range base.Nodes {
		on, inOurs := ours.Nodes[id]
		tn, inTheirs := theirs.Nodes[id]
		if !inOurs || !inTheirs {
			continue
		}
		baseParent := parentIDString(bn)
		oursParent := parentIDString(on)
		theirsParent := parentIDString(tn)
		oursChanged := oursParent != baseParent
		theirsChanged := theirsParent != baseParent
		switch {
		case !oursChanged && !theirsChanged:
		case oursChanged && !theirsChanged:
		case !oursChanged && theirsChanged:
			if mn, ok := merged.Nodes[id]; ok {
				if mn.ParentID != nil {
					merged.DetachChild(*mn.ParentID, id)
				}
				if theirsParent != "" {
					merged.AttachChild(theirsParent, id)
				} else {
					mn.ParentID = nil
				}
			}
		default:
			if oursParent == theirsParent {
				continue
			}
			conflicts = append(conflicts, MergeConflict{
				NodeID: id, Kind: ConflictStructural,
				BaseParent: baseParent, OursParent: oursParent, TheirsParent: theirsParent,
			})
		}
	}

	// Rule 5: links.
	for id, tl := range theirs.Links {
		_, inBase := base.Links[id]
		_, inOurs := ours.Links[id]
		if inBase || inOurs {
			continue
		}
		_, fromOK := merged.Nodes[tl.FromNode]
		_, toOK := merged.Nodes[tl.ToNode]
		if fromOK && toOK {
			merged.Links[id] = tl.Clone()
		}
		// else: silently dropped, see the ConflictDeleteLink doc comment.
	}
	for id := range base.Links {
		if _, stillTheirs := theirs.Links[id]; !stillTheirs {
			delete(merged.Links, id)
		}
	}

	if len(conflicts) > 0 {
		return conflicts, nil
	}
	return nil, merged
}

func cloneMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Resolution is a caller's choice for one conflicted node: overwrite with
// ResolvedContent, or delete the node if ResolvedContent is nil.
type Resolution struct {
	NodeID          model.NodeId
	ResolvedContent *string
}

// ApplyResolutions mutates graph in place per the caller's choices.
func ApplyResolutions(graph *model.Graph, resolutions []Resolution) {
	for _, r := range resolutions {
		n, ok := graph.Nodes[r.NodeID]
		if !ok {
			continue
		}
		if r.ResolvedContent != nil {
			n.Content = *r.ResolvedContent
			continue
		}
		if n.ParentID != nil {
			graph.DetachChild(*n.ParentID, r.NodeID)
		}
		touching := map[model.NodeId]bool{r.NodeID: true}
		for _, lid := range graph.LinksTouching(touching) {
			delete(graph.Links, lid)
		}
		delete(graph.Nodes, r.NodeID)
	}
}
