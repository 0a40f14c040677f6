package watch

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/willowgraph/willow/internal/graphstore"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDebouncer(20*time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected exactly 1 call after a coalesced burst, got %d", calls)
	}
}

func TestDebouncerCancel(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDebouncer(10*time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	d.Trigger()
	d.Cancel()
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Fatalf("expected no call after Cancel, got %d", calls)
	}
}

func TestOnChangeCommitsExternalEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.json")

	s, err := graphstore.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.InitVCS(); err != nil {
		t.Fatalf("InitVCS: %v", err)
	}
	before, err := s.Log(10)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	if _, err := s.CreateNode(s.Graph().RootID, "category", "Hobbies", nil, nil); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	w := &Watcher{store: s, path: path}
	w.onChange()

	after, err := s.Log(10)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("expected one new commit, had %d now have %d", len(before), len(after))
	}
}
