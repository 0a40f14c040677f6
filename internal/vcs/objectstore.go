package vcs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dolthub/gozstd"

	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/werr"
	"github.com/willowgraph/willow/internal/willowlog"
)

const zstdLevel = 3

// ObjectStore is the on-disk content-addressed layout described by the
// repository's directory skeleton:
//
//	repo/HEAD
//	repo/config.json
//	repo/refs/heads/<branch>
//	repo/objects/commits/<hash>
//	repo/objects/snapshots/<hash>
//	repo/objects/deltas/<hash>
type ObjectStore struct {
	root string
}

// NewObjectStore wraps the repo directory at root. It does not create
// anything; call Init for that.
func NewObjectStore(root string) *ObjectStore { return &ObjectStore{root: root} }

func (s *ObjectStore) headPath() string          { return filepath.Join(s.root, "HEAD") }
func (s *ObjectStore) configPath() string        { return filepath.Join(s.root, "config.json") }
func (s *ObjectStore) refsDir() string            { return filepath.Join(s.root, "refs", "heads") }
func (s *ObjectStore) refPath(branch string) string { return filepath.Join(s.refsDir(), branch) }
func (s *ObjectStore) commitPath(hash string) string {
	return filepath.Join(s.root, "objects", "commits", hash)
}
func (s *ObjectStore) snapshotPath(hash string) string {
	return filepath.Join(s.root, "objects", "snapshots", hash)
}
func (s *ObjectStore) deltaPath(hash string) string {
	return filepath.Join(s.root, "objects", "deltas", hash)
}

// Init creates the directory skeleton. It is the caller's responsibility
// (Repository.Init) to check repo/ does not already exist first.
func (s *ObjectStore) Init() error {
	for _, dir := range []string{
		s.refsDir(),
		filepath.Join(s.root, "objects", "commits"),
		filepath.Join(s.root, "objects", "snapshots"),
		filepath.Join(s.root, "objects", "deltas"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether the repo directory has already been initialized.
func (s *ObjectStore) Exists() bool {
	info, err := os.Stat(s.root)
	return err == nil && info.IsDir()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ReadConfig loads config.json.
func (s *ObjectStore) ReadConfig() (RepoConfig, error) {
	var cfg RepoConfig
	err := readJSON(s.configPath(), &cfg)
	return cfg, err
}

// WriteConfig writes config.json.
func (s *ObjectStore) WriteConfig(cfg RepoConfig) error {
	return writeJSON(s.configPath(), cfg)
}

// ReadHead parses HEAD: either "ref: refs/heads/<branch>" or a bare hash.
func (s *ObjectStore) ReadHead() (HeadState, error) {
	data, err := os.ReadFile(s.headPath())
	if err != nil {
		return HeadState{}, err
	}
	line := strings.TrimSpace(string(data))
	const prefix = "ref: refs/heads/"
	if strings.HasPrefix(line, prefix) {
		return HeadState{Kind: HeadBranch, Branch: strings.TrimPrefix(line, prefix)}, nil
	}
	return HeadState{Kind: HeadDetached, Hash: line}, nil
}

// WriteHead writes HEAD for either variant.
func (s *ObjectStore) WriteHead(h HeadState) error {
	var line string
	switch h.Kind {
	case HeadBranch:
		line = "ref: refs/heads/" + h.Branch
	case HeadDetached:
		line = h.Hash
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}
	tmp := s.headPath() + ".tmp"
	if err := os.WriteFile(tmp, []byte(line), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.headPath())
}

// ReadBranchRef returns the commit hash a branch ref points at.
func (s *ObjectStore) ReadBranchRef(branch string) (model.CommitHash, error) {
	data, err := os.ReadFile(s.refPath(branch))
	if err != nil {
		if os.IsNotExist(err) {
			return "", &werr.BranchNotFound{Name: branch}
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteBranchRef sets a branch ref to hash, creating it if absent.
func (s *ObjectStore) WriteBranchRef(branch string, hash model.CommitHash) error {
	path := s.refPath(branch)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(hash), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// DeleteBranchRef removes a branch ref file.
func (s *ObjectStore) DeleteBranchRef(branch string) error {
	err := os.Remove(s.refPath(branch))
	if os.IsNotExist(err) {
		return &werr.BranchNotFound{Name: branch}
	}
	return err
}

// ListBranches returns every branch name with a ref, sorted.
func (s *ObjectStore) ListBranches() ([]string, error) {
	entries, err := os.ReadDir(s.refsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// BranchExists reports whether a ref file for branch is present.
func (s *ObjectStore) BranchExists(branch string) bool {
	_, err := os.Stat(s.refPath(branch))
	return err == nil
}

// ResolveHead resolves the current HEAD to a commit hash: a branch HEAD
// resolves via its ref, a detached HEAD is already the hash.
func (s *ObjectStore) ResolveHead() (model.CommitHash, error) {
	h, err := s.ReadHead()
	if err != nil {
		return "", err
	}
	if h.Kind == HeadDetached {
		return h.Hash, nil
	}
	return s.ReadBranchRef(h.Branch)
}

// ReadCommit loads a commit object by hash.
func (s *ObjectStore) ReadCommit(hash model.CommitHash) (CommitData, error) {
	var data CommitData
	err := readJSON(s.commitPath(hash), &data)
	if os.IsNotExist(err) {
		return CommitData{}, &werr.VcsCommitNotFound{Hash: hash}
	}
	return data, err
}

// WriteCommit hashes data and writes the commit object, returning its hash.
// Writing the same hash twice is idempotent.
func (s *ObjectStore) WriteCommit(data CommitData) (model.CommitHash, error) {
	hash, err := HashCommit(data)
	if err != nil {
		return "", err
	}
	if err := writeJSON(s.commitPath(hash), data); err != nil {
		return "", err
	}
	willowlog.Debug("objectstore", "wrote commit", "hash", hash, "storage_type", data.StorageType)
	return hash, nil
}

// HashCommit computes the deterministic commit hash: lowercase hex SHA-256
// of the canonical JSON serialization of data. CommitData has no map
// fields, so Go's struct-field-order JSON encoding is already canonical.
func HashCommit(data CommitData) (model.CommitHash, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// ReadSnapshot decompresses and parses a snapshot payload.
func (s *ObjectStore) ReadSnapshot(hash model.CommitHash) (*model.Graph, error) {
	raw, err := os.ReadFile(s.snapshotPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &werr.VcsCommitNotFound{Hash: hash}
		}
		return nil, err
	}
	decompressed, err := gozstd.Decompress(nil, raw)
	if err != nil {
		return nil, err
	}
	var g model.Graph
	if err := json.Unmarshal(decompressed, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// WriteSnapshot compresses and writes a full graph snapshot under hash.
func (s *ObjectStore) WriteSnapshot(hash model.CommitHash, g *model.Graph) error {
	encoded, err := json.Marshal(g)
	if err != nil {
		return err
	}
	compressed := gozstd.CompressLevel(nil, encoded, zstdLevel)
	path := s.snapshotPath(hash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	willowlog.Debug("objectstore", "wrote snapshot", "hash", hash, "raw_bytes", len(encoded), "compressed_bytes", len(compressed))
	return nil
}

// ReadDelta loads a delta payload by hash.
func (s *ObjectStore) ReadDelta(hash model.CommitHash) (Delta, error) {
	var d Delta
	err := readJSON(s.deltaPath(hash), &d)
	if os.IsNotExist(err) {
		return Delta{}, &werr.VcsCommitNotFound{Hash: hash}
	}
	return d, err
}

// WriteDelta writes a delta payload under hash.
func (s *ObjectStore) WriteDelta(hash model.CommitHash, d Delta) error {
	return writeJSON(s.deltaPath(hash), d)
}
