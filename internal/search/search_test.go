package search

import (
	"testing"

	"github.com/willowgraph/willow/internal/model"
)

func newGraph() *model.Graph {
	g := model.Empty(model.RootID)
	g.Nodes["a"] = &model.Node{ID: "a", NodeType: model.NodeTypeCategory, Content: "Hobbies", Metadata: map[string]string{"tag": "leisure"}}
	g.Nodes["b"] = &model.Node{ID: "b", NodeType: model.NodeTypeDetail, Content: "Reading books", Metadata: map[string]string{}}
	g.AttachChild(model.RootID, "a")
	g.AttachChild("a", "b")
	return g
}

func TestTextScoreWholeSubstring(t *testing.T) {
	if s := textScore("Reading books", "reading"); s != 1.0 {
		t.Fatalf("expected 1.0, got %v", s)
	}
}

func TestTextScoreAllTermsScattered(t *testing.T) {
	if s := textScore("the quick brown fox", "quick fox"); s != 0.6 {
		t.Fatalf("expected 0.6, got %v", s)
	}
}

func TestTextScorePartialTerms(t *testing.T) {
	s := textScore("the quick brown fox", "quick zebra")
	if s != 0.15 {
		t.Fatalf("expected 0.15, got %v", s)
	}
}

func TestTextScoreNoMatch(t *testing.T) {
	if s := textScore("the quick brown fox", "zebra"); s != 0.0 {
		t.Fatalf("expected 0.0, got %v", s)
	}
}

func TestNodesFindsContentMatch(t *testing.T) {
	g := newGraph()
	results := Nodes(g, "reading", 10)
	if len(results) != 1 || results[0].NodeID != "b" || results[0].Field != "content" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Depth != 2 {
		t.Fatalf("expected depth 2, got %d", results[0].Depth)
	}
}

func TestNodesMetadataFieldLabel(t *testing.T) {
	g := newGraph()
	results := Nodes(g, "leisure", 10)
	if len(results) != 1 || results[0].Field != "metadata.tag" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestNodesEmptyQueryReturnsEmpty(t *testing.T) {
	g := newGraph()
	if results := Nodes(g, "", 10); len(results) != 0 {
		t.Fatalf("expected empty, got %+v", results)
	}
	if results := Nodes(g, "   ", 10); len(results) != 0 {
		t.Fatalf("expected empty, got %+v", results)
	}
}

func TestNodesIgnoresOrphans(t *testing.T) {
	g := newGraph()
	g.Nodes["orphan"] = &model.Node{ID: "orphan", NodeType: model.NodeTypeDetail, Content: "secret"}
	results := Nodes(g, "secret", 10)
	if len(results) != 0 {
		t.Fatalf("expected orphan to be invisible, got %+v", results)
	}
}

func TestNodesRespectsMaxResults(t *testing.T) {
	g := model.Empty(model.RootID)
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		g.Nodes[id] = &model.Node{ID: id, NodeType: model.NodeTypeDetail, Content: "match " + id}
		g.AttachChild(model.RootID, id)
	}
	results := Nodes(g, "match", 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}
