package render

import (
	"strings"
	"testing"

	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/search"
	"github.com/willowgraph/willow/internal/vcs"
)

func sampleGraph() *model.Graph {
	g := model.Empty("root")
	g.Nodes["root"].Content = "User"
	child := &model.Node{ID: "c1", NodeType: model.NodeTypeCategory, Content: "Hobbies", ParentID: ptr(model.NodeId("root")), Children: []model.NodeId{}}
	g.Nodes["c1"] = child
	g.AttachChild("root", "c1")
	return g
}

func ptr[T any](v T) *T { return &v }

func TestNodeTreeRendersRootAndChild(t *testing.T) {
	g := sampleGraph()
	out := NodeTree(g, "root", 0)
	if !strings.Contains(out, "User") || !strings.Contains(out, "Hobbies") {
		t.Fatalf("tree missing expected labels: %s", out)
	}
}

func TestNodeTreeMissingNode(t *testing.T) {
	g := sampleGraph()
	out := NodeTree(g, "nope", 0)
	if !strings.Contains(out, "not found") {
		t.Fatalf("expected not-found message, got %s", out)
	}
}

func TestLogEmpty(t *testing.T) {
	out := Log(nil)
	if !strings.Contains(out, "no commits") {
		t.Fatalf("expected empty-state message, got %s", out)
	}
}

func TestLogRendersEntries(t *testing.T) {
	entries := []vcs.CommitEntry{
		{Hash: "abcdef1234567890", Data: vcs.CommitData{Message: "initial snapshot", Source: vcs.CommitSource{Kind: vcs.SourceMigration}}},
	}
	out := Log(entries)
	if !strings.Contains(out, "abcdef12") || !strings.Contains(out, "initial snapshot") {
		t.Fatalf("log output missing expected content: %s", out)
	}
}

func TestBranchesMarksCurrent(t *testing.T) {
	out := Branches([]vcs.BranchInfo{
		{Name: "main", Head: "abcdef1234567890", IsCurrent: true},
		{Name: "feature", Head: "1122334455667788", IsCurrent: false},
	})
	if !strings.Contains(out, "main") || !strings.Contains(out, "feature") {
		t.Fatalf("branches output missing names: %s", out)
	}
}

func TestSearchResultsEmpty(t *testing.T) {
	out := SearchResults("nope", nil)
	if !strings.Contains(out, "no matches") {
		t.Fatalf("expected no-matches message, got %s", out)
	}
}

func TestSearchResultsRendersHits(t *testing.T) {
	out := SearchResults("hobbies", []search.Result{{NodeID: "c1", Field: "content", Score: 1.0, Depth: 1}})
	if !strings.Contains(out, "c1") {
		t.Fatalf("expected node id in output: %s", out)
	}
}

func TestMarkdownFallsBackOnPlainText(t *testing.T) {
	out := Markdown("hello world")
	if !strings.Contains(out, "hello world") {
		t.Fatalf("expected content preserved, got %s", out)
	}
}
