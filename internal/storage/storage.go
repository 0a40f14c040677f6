// Package storage persists the live graph to a single JSON file via atomic
// replace: write to a temp file in the same directory, then rename over the
// target. Renames within one filesystem are atomic, so a reader that opens
// the path at any instant observes either the old or the new full content,
// never a partial write.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/willowlog"
)

// Load reads and parses the graph at path. If the file does not exist, it
// creates the parent directory, initializes a default graph (a single root
// node with content "User"), writes it, and returns it.
func Load(path string) (*model.Graph, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		willowlog.Info("storage", "bootstrapping default graph", "path", path)
		g := model.Empty(model.RootID)
		if err := Save(path, g); err != nil {
			return nil, err
		}
		return g, nil
	}
	if err != nil {
		return nil, err
	}
	var g model.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	willowlog.Debug("storage", "loaded graph", "path", path, "nodes", len(g.Nodes), "links", len(g.Links))
	return &g, nil
}

// Save serializes g to pretty JSON and atomically replaces the file at
// path.
func Save(path string, g *model.Graph) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	willowlog.Debug("storage", "saved graph", "path", path, "nodes", len(g.Nodes), "links", len(g.Links))
	return nil
}
