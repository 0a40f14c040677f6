package graphstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/vcs"
	"github.com/willowgraph/willow/internal/werr"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "g.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDefaultStore(t *testing.T) {
	s := openTemp(t)
	if s.graph.RootID != "root" {
		t.Fatalf("expected root id 'root', got %q", s.graph.RootID)
	}
	if len(s.graph.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(s.graph.Nodes))
	}
	root := s.graph.Nodes["root"]
	if root.Content != "User" || root.NodeType != model.NodeTypeRoot {
		t.Fatalf("unexpected root: %+v", root)
	}
}

func TestCascadingDelete(t *testing.T) {
	s := openTemp(t)
	a, err := s.CreateNode(s.graph.RootID, "category", "Hobbies", nil, nil)
	if err != nil {
		t.Fatalf("CreateNode a: %v", err)
	}
	b, err := s.CreateNode(a.ID, "detail", "Reading", nil, nil)
	if err != nil {
		t.Fatalf("CreateNode b: %v", err)
	}
	if _, err := s.AddLink(a.ID, b.ID, "includes", false, nil); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if err := s.DeleteNode(a.ID); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if len(s.graph.Nodes) != 1 {
		t.Fatalf("expected 1 node after cascade, got %d", len(s.graph.Nodes))
	}
	if len(s.graph.Links) != 0 {
		t.Fatalf("expected 0 links after cascade, got %d", len(s.graph.Links))
	}
	if len(s.graph.Nodes[s.graph.RootID].Children) != 0 {
		t.Fatalf("expected root to have no children")
	}
}

func TestDeleteNodeRefusesRoot(t *testing.T) {
	s := openTemp(t)
	var cdr *werr.CannotDeleteRoot
	if err := s.DeleteNode(s.graph.RootID); !errors.As(err, &cdr) {
		t.Fatalf("expected CannotDeleteRoot, got %v", err)
	}
}

func TestCommitAndReconstruct(t *testing.T) {
	s := openTemp(t)
	if err := s.InitVCS(); err != nil {
		t.Fatalf("InitVCS: %v", err)
	}
	if _, err := s.CreateNode(s.graph.RootID, "detail", "X", nil, nil); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	tool := "test"
	hash, err := s.Commit(vcs.CommitInput{Message: "add x", Source: vcs.CommitSource{Kind: vcs.SourceManual, ToolName: &tool}})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	log, err := s.Log(0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(log))
	}
	if log[0].Hash != hash {
		t.Fatalf("expected log[0] to be %s, got %s", hash, log[0].Hash)
	}
	if log[1].Data.Source.Kind != vcs.SourceMigration {
		t.Fatalf("expected log[1] source Migration, got %v", log[1].Data.Source.Kind)
	}

	rebuilt, err := s.repo.ReconstructAt(hash)
	if err != nil {
		t.Fatalf("ReconstructAt: %v", err)
	}
	found := false
	for _, n := range rebuilt.Nodes {
		if n.Content == "X" {
			found = true
		}
	}
	if !found {
		t.Fatalf("reconstructed graph missing node with content X")
	}
}

func TestSnapshotCadence(t *testing.T) {
	s := openTemp(t)
	if err := s.InitVCS(); err != nil {
		t.Fatalf("InitVCS: %v", err)
	}
	var lastHash model.CommitHash
	for i := 0; i < 60; i++ {
		if _, err := s.CreateNode(s.graph.RootID, "detail", "node", nil, nil); err != nil {
			t.Fatalf("CreateNode %d: %v", i, err)
		}
		hash, err := s.Commit(vcs.CommitInput{Message: "c", Source: vcs.CommitSource{Kind: vcs.SourceManual}})
		if err != nil {
			t.Fatalf("Commit %d: %v", i, err)
		}
		lastHash = hash

		data, err := s.repo.ReadCommitData(hash)
		if err != nil {
			t.Fatalf("ReadCommitData %d: %v", i, err)
		}
		commitNum := i + 1
		if commitNum == 50 {
			if data.StorageType != vcs.StorageSnapshot || data.DepthSinceSnapshot != 0 {
				t.Fatalf("commit 50: expected snapshot depth 0, got %+v", data)
			}
		} else {
			if data.StorageType != vcs.StorageDelta {
				t.Fatalf("commit %d: expected delta, got %+v", commitNum, data)
			}
			if data.DepthSinceSnapshot < 1 || data.DepthSinceSnapshot > 49 {
				t.Fatalf("commit %d: depth out of range: %+v", commitNum, data)
			}
		}
	}
	_ = lastHash
}

func TestMergeNoConflict(t *testing.T) {
	s := openTemp(t)
	if err := s.InitVCS(); err != nil {
		t.Fatalf("InitVCS: %v", err)
	}
	n1, err := s.CreateNode(s.graph.RootID, "detail", "n1", nil, nil)
	if err != nil {
		t.Fatalf("CreateNode n1: %v", err)
	}
	if _, err := s.Commit(vcs.CommitInput{Message: "base", Source: vcs.CommitSource{Kind: vcs.SourceManual}}); err != nil {
		t.Fatalf("Commit base: %v", err)
	}
	if err := s.CreateBranch("exp"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	n2, err := s.CreateNode(s.graph.RootID, "detail", "Ours added", nil, nil)
	if err != nil {
		t.Fatalf("CreateNode n2: %v", err)
	}
	if _, err := s.Commit(vcs.CommitInput{Message: "ours", Source: vcs.CommitSource{Kind: vcs.SourceManual}}); err != nil {
		t.Fatalf("Commit ours: %v", err)
	}

	if err := s.SwitchBranch("exp"); err != nil {
		t.Fatalf("SwitchBranch exp: %v", err)
	}
	n3, err := s.CreateNode(s.graph.RootID, "detail", "Theirs added", nil, nil)
	if err != nil {
		t.Fatalf("CreateNode n3: %v", err)
	}
	if _, err := s.Commit(vcs.CommitInput{Message: "theirs", Source: vcs.CommitSource{Kind: vcs.SourceManual}}); err != nil {
		t.Fatalf("Commit theirs: %v", err)
	}

	if err := s.SwitchBranch("main"); err != nil {
		t.Fatalf("SwitchBranch main: %v", err)
	}
	result, err := s.MergeBranch("exp")
	if err != nil {
		t.Fatalf("MergeBranch: %v", err)
	}
	if len(result.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %+v", result.Conflicts)
	}
	for _, id := range []model.NodeId{s.graph.RootID, n1.ID, n2.ID, n3.ID} {
		if _, ok := result.Merged.Nodes[id]; !ok {
			t.Fatalf("merged graph missing node %s", id)
		}
	}
}

func TestContentConflict(t *testing.T) {
	s := openTemp(t)
	if err := s.InitVCS(); err != nil {
		t.Fatalf("InitVCS: %v", err)
	}
	n1, err := s.CreateNode(s.graph.RootID, "detail", "Base content", nil, nil)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if _, err := s.Commit(vcs.CommitInput{Message: "base", Source: vcs.CommitSource{Kind: vcs.SourceManual}}); err != nil {
		t.Fatalf("Commit base: %v", err)
	}
	if err := s.CreateBranch("exp"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	oursContent := "Ours version"
	if _, err := s.UpdateNode(n1.ID, UpdateNodeOptions{Content: &oursContent}); err != nil {
		t.Fatalf("UpdateNode ours: %v", err)
	}
	if _, err := s.Commit(vcs.CommitInput{Message: "ours", Source: vcs.CommitSource{Kind: vcs.SourceManual}}); err != nil {
		t.Fatalf("Commit ours: %v", err)
	}

	if err := s.SwitchBranch("exp"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}
	theirsContent := "Theirs version"
	if _, err := s.UpdateNode(n1.ID, UpdateNodeOptions{Content: &theirsContent}); err != nil {
		t.Fatalf("UpdateNode theirs: %v", err)
	}
	if _, err := s.Commit(vcs.CommitInput{Message: "theirs", Source: vcs.CommitSource{Kind: vcs.SourceManual}}); err != nil {
		t.Fatalf("Commit theirs: %v", err)
	}

	if err := s.SwitchBranch("main"); err != nil {
		t.Fatalf("SwitchBranch main: %v", err)
	}
	result, err := s.MergeBranch("exp")
	if err != nil {
		t.Fatalf("MergeBranch: %v", err)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %+v", result.Conflicts)
	}
	c := result.Conflicts[0]
	if c.NodeID != n1.ID || c.Kind != vcs.ConflictContent {
		t.Fatalf("unexpected conflict: %+v", c)
	}
	if c.BaseContent != "Base content" || c.OursContent != "Ours version" || c.TheirsContent != "Theirs version" {
		t.Fatalf("unexpected conflict content: %+v", c)
	}
}

func TestDeleteModifyConflict(t *testing.T) {
	s := openTemp(t)
	if err := s.InitVCS(); err != nil {
		t.Fatalf("InitVCS: %v", err)
	}
	n1, err := s.CreateNode(s.graph.RootID, "detail", "v1", nil, nil)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if _, err := s.Commit(vcs.CommitInput{Message: "base", Source: vcs.CommitSource{Kind: vcs.SourceManual}}); err != nil {
		t.Fatalf("Commit base: %v", err)
	}
	if err := s.CreateBranch("exp"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	modified := "v2"
	if _, err := s.UpdateNode(n1.ID, UpdateNodeOptions{Content: &modified}); err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	if _, err := s.Commit(vcs.CommitInput{Message: "ours", Source: vcs.CommitSource{Kind: vcs.SourceManual}}); err != nil {
		t.Fatalf("Commit ours: %v", err)
	}

	if err := s.SwitchBranch("exp"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}
	if err := s.DeleteNode(n1.ID); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if _, err := s.Commit(vcs.CommitInput{Message: "theirs", Source: vcs.CommitSource{Kind: vcs.SourceManual}}); err != nil {
		t.Fatalf("Commit theirs: %v", err)
	}

	if err := s.SwitchBranch("main"); err != nil {
		t.Fatalf("SwitchBranch main: %v", err)
	}
	result, err := s.MergeBranch("exp")
	if err != nil {
		t.Fatalf("MergeBranch: %v", err)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %+v", result.Conflicts)
	}
	c := result.Conflicts[0]
	if c.Kind != vcs.ConflictDeleteModify || c.DeletedBy != vcs.DeletedByTheirs {
		t.Fatalf("unexpected conflict: %+v", c)
	}
}

func TestSearchReachability(t *testing.T) {
	s := openTemp(t)
	s.graph.Nodes["orphan"] = &model.Node{ID: "orphan", NodeType: model.NodeTypeDetail, Content: "secret"}
	results := s.SearchNodes("secret", 10)
	if len(results) != 0 {
		t.Fatalf("expected no results for orphan, got %+v", results)
	}
}

func TestSwitchBranchRefusesDirtyState(t *testing.T) {
	s := openTemp(t)
	if err := s.InitVCS(); err != nil {
		t.Fatalf("InitVCS: %v", err)
	}
	if err := s.CreateBranch("other"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if _, err := s.CreateNode(s.graph.RootID, "detail", "dirty", nil, nil); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	var hpc *werr.HasPendingChanges
	if err := s.SwitchBranch("other"); !errors.As(err, &hpc) {
		t.Fatalf("expected HasPendingChanges, got %v", err)
	}
}

func TestAddLinkRejectsDuplicate(t *testing.T) {
	s := openTemp(t)
	a, _ := s.CreateNode(s.graph.RootID, "detail", "a", nil, nil)
	b, _ := s.CreateNode(s.graph.RootID, "detail", "b", nil, nil)
	if _, err := s.AddLink(a.ID, b.ID, "relates", false, nil); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	var dup *werr.DuplicateLink
	if _, err := s.AddLink(a.ID, b.ID, "relates", false, nil); !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateLink, got %v", err)
	}
}

func TestAddLinkBidirectionalRejectsReverse(t *testing.T) {
	s := openTemp(t)
	a, _ := s.CreateNode(s.graph.RootID, "detail", "a", nil, nil)
	b, _ := s.CreateNode(s.graph.RootID, "detail", "b", nil, nil)
	if _, err := s.AddLink(a.ID, b.ID, "relates", true, nil); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	var dup *werr.DuplicateLink
	if _, err := s.AddLink(b.ID, a.ID, "relates", false, nil); !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateLink for reverse triple, got %v", err)
	}
}

func TestGetContext(t *testing.T) {
	s := openTemp(t)
	a, _ := s.CreateNode(s.graph.RootID, "category", "a", nil, nil)
	b, _ := s.CreateNode(a.ID, "detail", "b", nil, nil)
	c, _ := s.CreateNode(b.ID, "detail", "c", nil, nil)
	if _, err := s.AddLink(a.ID, c.ID, "touches", false, nil); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	ctx, err := s.GetContext(b.ID, 1)
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if len(ctx.Ancestors) != 2 || ctx.Ancestors[0].ID != a.ID {
		t.Fatalf("unexpected ancestors: %+v", ctx.Ancestors)
	}
	if len(ctx.Descendants) != 1 || ctx.Descendants[0].ID != c.ID {
		t.Fatalf("unexpected descendants: %+v", ctx.Descendants)
	}
	if len(ctx.Links) != 1 {
		t.Fatalf("unexpected links: %+v", ctx.Links)
	}
}

func TestGetContextDepthZero(t *testing.T) {
	s := openTemp(t)
	a, _ := s.CreateNode(s.graph.RootID, "category", "a", nil, nil)
	_, _ = s.CreateNode(a.ID, "detail", "b", nil, nil)

	ctx, err := s.GetContext(a.ID, 0)
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if len(ctx.Descendants) != 0 {
		t.Fatalf("expected no descendants at depth 0, got %+v", ctx.Descendants)
	}
}
