package willow

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesDefaultGraph(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "g.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Graph().RootID != RootID {
		t.Fatalf("expected root id %q, got %q", RootID, s.Graph().RootID)
	}
}

func TestPublicAPIMutateAndSearch(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "g.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	n, err := s.CreateNode(RootID, string(NodeTypeDetail), "Likes espresso", map[string]string{"source": "chat"}, nil)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	results := s.SearchNodes("espresso", 5)
	if len(results) != 1 || results[0].NodeID != n.ID {
		t.Fatalf("unexpected search results: %+v", results)
	}
}

func TestPublicAPIVCSRoundTrip(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "g.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.InitVCS(); err != nil {
		t.Fatalf("InitVCS: %v", err)
	}
	if _, err := s.CreateNode(RootID, string(NodeTypeDetail), "note", nil, nil); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if _, err := s.Commit(CommitInput{Message: "add note", Source: CommitSource{Kind: SourceManual}}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	branches, err := s.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(branches) != 1 || branches[0].Name != "main" || !branches[0].IsCurrent {
		t.Fatalf("unexpected branches: %+v", branches)
	}
}
