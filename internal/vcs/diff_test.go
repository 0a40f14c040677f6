package vcs

import (
	"testing"

	"github.com/willowgraph/willow/internal/model"
)

func TestDiffIdenticalGraphsIsEmpty(t *testing.T) {
	g := model.Empty(model.RootID)
	d := ComputeGraphDiff(g, g)
	if len(d.NodesCreated)+len(d.NodesUpdated)+len(d.NodesDeleted) != 0 {
		t.Fatalf("expected no node changes: %+v", d)
	}
}

func TestDiffNodeCreated(t *testing.T) {
	oldG := model.Empty(model.RootID)
	newG := oldG.Clone()
	newG.Nodes["a"] = &model.Node{ID: "a", Content: "hi", Metadata: map[string]string{}}
	newG.AttachChild(model.RootID, "a")

	d := ComputeGraphDiff(oldG, newG)
	if len(d.NodesCreated) != 1 || d.NodesCreated[0].NodeID != "a" {
		t.Fatalf("unexpected created set: %+v", d.NodesCreated)
	}
	if len(d.NodesCreated[0].Path) != 2 {
		t.Fatalf("expected path of length 2, got %v", d.NodesCreated[0].Path)
	}
}

func TestDiffNodeUpdated(t *testing.T) {
	oldG := model.Empty(model.RootID)
	oldG.Nodes["a"] = &model.Node{ID: "a", Content: "v1", Metadata: map[string]string{}}
	oldG.AttachChild(model.RootID, "a")
	newG := oldG.Clone()
	newG.Nodes["a"].Content = "v2"

	d := ComputeGraphDiff(oldG, newG)
	if len(d.NodesUpdated) != 1 || *d.NodesUpdated[0].OldContent != "v1" || *d.NodesUpdated[0].NewContent != "v2" {
		t.Fatalf("unexpected updated set: %+v", d.NodesUpdated)
	}
}

func TestDiffNodeDeleted(t *testing.T) {
	oldG := model.Empty(model.RootID)
	oldG.Nodes["a"] = &model.Node{ID: "a", Content: "v1", Metadata: map[string]string{}}
	oldG.AttachChild(model.RootID, "a")
	newG := model.Empty(model.RootID)

	d := ComputeGraphDiff(oldG, newG)
	if len(d.NodesDeleted) != 1 || d.NodesDeleted[0].NodeID != "a" {
		t.Fatalf("unexpected deleted set: %+v", d.NodesDeleted)
	}
}

func TestDiffLinksCreatedAndUpdated(t *testing.T) {
	oldG := model.Empty(model.RootID)
	newG := oldG.Clone()
	newG.Links["l1"] = &model.Link{ID: "l1", FromNode: model.RootID, ToNode: model.RootID, Relation: "self"}

	d := ComputeGraphDiff(oldG, newG)
	if len(d.LinksCreated) != 1 {
		t.Fatalf("expected one created link, got %+v", d.LinksCreated)
	}

	updatedG := newG.Clone()
	updatedG.Links["l1"].Relation = "other"
	d2 := ComputeGraphDiff(newG, updatedG)
	if len(d2.LinksUpdated) != 1 {
		t.Fatalf("expected one updated link, got %+v", d2.LinksUpdated)
	}
}
