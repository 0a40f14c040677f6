package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// run executes the root command with args against a fresh graph path in a
// temp directory and returns combined stdout/stderr.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	graphPath = filepath.Join(dir, "g.json")
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	oldStdout := os.Stdout
	os.Stdout = w
	var buf bytes.Buffer
	copied := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(copied)
	}()
	rootCmd.SetOut(w)
	rootCmd.SetErr(w)
	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()
	os.Stdout = oldStdout
	_ = w.Close()
	<-copied
	_ = r.Close()
	return buf.String(), execErr
}

func TestCreateAndSearchNode(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "create-node", "--parent", "root", "--type", "category", "Hobbies"); err != nil {
		t.Fatalf("create-node: %v", err)
	}
	out, err := run(t, dir, "search", "hobbies", "--json")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected search output, got empty string")
	}
}

func TestInitVCSAndCommit(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "init-vcs"); err != nil {
		t.Fatalf("init-vcs: %v", err)
	}
	if _, err := run(t, dir, "create-node", "--parent", "root", "--type", "category", "Hobbies"); err != nil {
		t.Fatalf("create-node: %v", err)
	}
	if _, err := run(t, dir, "commit", "--message", "add hobbies"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	out, err := run(t, dir, "log")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected log output, got empty string")
	}
}
