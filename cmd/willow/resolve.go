package main

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/vcs"
)

// resolveConflictsInteractively walks the operator through every unresolved
// merge conflict with one form per node.
func resolveConflictsInteractively(conflicts []vcs.MergeConflict) ([]vcs.Resolution, error) {
	resolutions := make([]vcs.Resolution, 0, len(conflicts))
	for _, c := range conflicts {
		resolution, err := resolveOneConflict(c)
		if err != nil {
			if err == huh.ErrUserAborted {
				return nil, fmt.Errorf("merge resolution canceled")
			}
			return nil, err
		}
		resolutions = append(resolutions, resolution)
	}
	return resolutions, nil
}

func resolveOneConflict(c vcs.MergeConflict) (vcs.Resolution, error) {
	switch c.Kind {
	case vcs.ConflictContent:
		return resolveContentConflict(c)
	case vcs.ConflictStructural:
		return resolveStructuralConflict(c), nil
	case vcs.ConflictDeleteModify:
		return resolveDeleteModifyConflict(c)
	default:
		return keepCurrentContent(c.NodeID), nil
	}
}

// keepCurrentContent resolves a node to whatever content it currently holds
// in the live graph. ApplyResolutions treats a nil ResolvedContent as
// "delete the node", so any conflict that isn't actually a content dispute
// must resolve explicitly rather than leaving ResolvedContent nil.
func keepCurrentContent(nodeID model.NodeId) vcs.Resolution {
	current := ""
	if n, ok := store.Graph().Nodes[nodeID]; ok {
		current = n.Content
	}
	return vcs.Resolution{NodeID: nodeID, ResolvedContent: &current}
}

func resolveContentConflict(c vcs.MergeConflict) (vcs.Resolution, error) {
	options := []huh.Option[string]{
		huh.NewOption(fmt.Sprintf("ours: %s", c.OursContent), c.OursContent),
		huh.NewOption(fmt.Sprintf("theirs: %s", c.TheirsContent), c.TheirsContent),
	}
	chosen := c.OursContent
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(fmt.Sprintf("Conflicting content for node %s", c.NodeID)).
			Description(fmt.Sprintf("base was %q", c.BaseContent)).
			Options(options...).
			Value(&chosen),
	))
	if err := form.Run(); err != nil {
		return vcs.Resolution{}, err
	}
	return vcs.Resolution{NodeID: c.NodeID, ResolvedContent: &chosen}, nil
}

// resolveStructuralConflict reports the concurrent reparent for visibility.
// Resolutions are applied to the current (ours) graph, so the node keeps
// ours' placement, and its content is left untouched here.
func resolveStructuralConflict(c vcs.MergeConflict) vcs.Resolution {
	fmt.Printf("note: node %s reparented concurrently (base=%s ours=%s theirs=%s); keeping ours' placement\n",
		c.NodeID, displayOrRoot(c.BaseParent), displayOrRoot(c.OursParent), displayOrRoot(c.TheirsParent))
	return keepCurrentContent(c.NodeID)
}

func resolveDeleteModifyConflict(c vcs.MergeConflict) (vcs.Resolution, error) {
	keepContent := c.TheirsContent
	label := "theirs"
	if c.DeletedBy == vcs.DeletedByTheirs {
		keepContent = c.OursContent
		label = "ours"
	}
	var confirmKeep bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Node %s was deleted on one side and modified on the other", c.NodeID)).
			Description(fmt.Sprintf("Keep the %s side's content: %q?", label, keepContent)).
			Affirmative("Keep it").
			Negative("Delete it").
			Value(&confirmKeep),
	))
	if err := form.Run(); err != nil {
		return vcs.Resolution{}, err
	}
	if !confirmKeep {
		return vcs.Resolution{NodeID: c.NodeID}, nil
	}
	return vcs.Resolution{NodeID: c.NodeID, ResolvedContent: &keepContent}, nil
}

func displayOrRoot(parentID string) string {
	if parentID == "" {
		return "(root)"
	}
	return parentID
}
