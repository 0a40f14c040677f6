package vcs

import (
	"path/filepath"
	"time"

	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/werr"
	"github.com/willowgraph/willow/internal/willowlog"
)

// Repository orchestrates the VCS lifecycle: commit creation, history
// traversal, branch/HEAD operations, reconstruction, checkout/restore, and
// merge orchestration, all on top of an ObjectStore.
type Repository struct {
	store  *ObjectStore
	config RepoConfig
}

func repoRoot(graphDir string) string { return filepath.Join(graphDir, "repo") }

// Exists reports whether a repo/ directory is already present under
// graphDir, without opening it.
func Exists(graphDir string) bool {
	return NewObjectStore(repoRoot(graphDir)).Exists()
}

// Init creates repo/, writes the default config, writes the initial
// snapshot commit (source Migration, no parents, depth 0), creates the
// "main" branch ref pointing at it, and points HEAD at "main".
func Init(graphDir string, graph *model.Graph) (*Repository, error) {
	store := NewObjectStore(repoRoot(graphDir))
	if store.Exists() {
		return nil, &werr.VcsAlreadyInitialized{}
	}
	if err := store.Init(); err != nil {
		return nil, err
	}
	cfg := DefaultRepoConfig()
	if err := store.WriteConfig(cfg); err != nil {
		return nil, err
	}

	data := CommitData{
		Parents:            nil,
		Message:            "Initial commit",
		Timestamp:          time.Now().UTC(),
		Source:             CommitSource{Kind: SourceMigration},
		StorageType:        StorageSnapshot,
		DepthSinceSnapshot: 0,
	}
	hash, err := store.WriteCommit(data)
	if err != nil {
		return nil, err
	}
	if err := store.WriteSnapshot(hash, graph); err != nil {
		return nil, err
	}
	if err := store.WriteBranchRef(cfg.DefaultBranch, hash); err != nil {
		return nil, err
	}
	if err := store.WriteHead(HeadState{Kind: HeadBranch, Branch: cfg.DefaultBranch}); err != nil {
		return nil, err
	}
	return &Repository{store: store, config: cfg}, nil
}

// Open loads an already-initialized repo/ directory.
func Open(graphDir string) (*Repository, error) {
	store := NewObjectStore(repoRoot(graphDir))
	if !store.Exists() {
		return nil, &werr.VcsNotInitialized{}
	}
	cfg, err := store.ReadConfig()
	if err != nil {
		return nil, err
	}
	return &Repository{store: store, config: cfg}, nil
}

func (r *Repository) parentsOf(hash model.CommitHash) ([]model.CommitHash, error) {
	data, err := r.store.ReadCommit(hash)
	if err != nil {
		return nil, err
	}
	return data.Parents, nil
}

func (r *Repository) firstParent(data CommitData) (model.CommitHash, bool) {
	if len(data.Parents) == 0 {
		return "", false
	}
	return data.Parents[0], true
}

// ReadCommitData returns a commit's data without reconstructing any graph,
// the cheap path for callers that only need storage-type/depth bookkeeping.
func (r *Repository) ReadCommitData(hash model.CommitHash) (CommitData, error) {
	return r.store.ReadCommit(hash)
}

// HeadGraph reconstructs the graph at the currently resolved HEAD. It backs
// discard_changes: refilling the in-memory graph from HEAD after the caller
// throws away its pending-change buffer.
func (r *Repository) HeadGraph() (*model.Graph, error) {
	hash, err := r.store.ResolveHead()
	if err != nil {
		return nil, err
	}
	return r.ReconstructAt(hash)
}

// ReconstructAt walks the first-parent chain from hash to the nearest
// snapshot, then replays deltas forward.
func (r *Repository) ReconstructAt(hash model.CommitHash) (*model.Graph, error) {
	var deltaHashes []model.CommitHash
	cur := hash
	for {
		data, err := r.store.ReadCommit(cur)
		if err != nil {
			return nil, err
		}
		if data.StorageType == StorageSnapshot {
			g, err := r.store.ReadSnapshot(cur)
			if err != nil {
				return nil, err
			}
			for i := len(deltaHashes) - 1; i >= 0; i-- {
				d, err := r.store.ReadDelta(deltaHashes[i])
				if err != nil {
					return nil, err
				}
				applyDelta(g, d)
			}
			return g, nil
		}
		deltaHashes = append(deltaHashes, cur)
		parent, ok := r.firstParent(data)
		if !ok {
			return nil, &werr.VcsCommitNotFound{Hash: cur}
		}
		cur = parent
	}
}

// CreateCommit computes whether the new commit is a snapshot or delta based
// on depth_since_snapshot vs. the configured snapshot_interval, writes the
// commit and its payload, and advances the current ref.
func (r *Repository) CreateCommit(input CommitInput, changes []Change, currentGraph *model.Graph) (model.CommitHash, error) {
	if len(changes) == 0 {
		return "", &werr.NothingToCommit{}
	}
	parentHash, err := r.store.ResolveHead()
	if err != nil {
		return "", err
	}
	parentData, err := r.store.ReadCommit(parentHash)
	if err != nil {
		return "", err
	}
	depth := parentData.DepthSinceSnapshot + 1

	storageType := StorageDelta
	newDepth := depth
	if depth >= uint32(r.config.SnapshotInterval) {
		storageType = StorageSnapshot
		newDepth = 0
	}

	data := CommitData{
		Parents:            []model.CommitHash{parentHash},
		Message:            input.Message,
		Timestamp:          time.Now().UTC(),
		Source:             input.Source,
		StorageType:        storageType,
		DepthSinceSnapshot: newDepth,
	}
	hash, err := r.store.WriteCommit(data)
	if err != nil {
		return "", err
	}
	if storageType == StorageSnapshot {
		if err := r.store.WriteSnapshot(hash, currentGraph); err != nil {
			return "", err
		}
	} else {
		if err := r.store.WriteDelta(hash, Delta{Changes: changes}); err != nil {
			return "", err
		}
	}
	if err := r.advanceCurrentRef(hash); err != nil {
		return "", err
	}
	willowlog.Info("repository", "created commit", "hash", hash, "storage_type", storageType, "changes", len(changes))
	return hash, nil
}

func (r *Repository) advanceCurrentRef(hash model.CommitHash) error {
	head, err := r.store.ReadHead()
	if err != nil {
		return err
	}
	if head.Kind == HeadBranch {
		return r.store.WriteBranchRef(head.Branch, hash)
	}
	return r.store.WriteHead(HeadState{Kind: HeadDetached, Hash: hash})
}

// Log walks the first-parent chain from resolved HEAD, yielding at most
// limit entries.
func (r *Repository) Log(limit int) ([]CommitEntry, error) {
	cur, err := r.store.ResolveHead()
	if err != nil {
		return nil, err
	}
	var entries []CommitEntry
	for cur != "" && (limit <= 0 || len(entries) < limit) {
		data, err := r.store.ReadCommit(cur)
		if err != nil {
			return nil, err
		}
		entries = append(entries, CommitEntry{Hash: cur, Data: data})
		parent, ok := r.firstParent(data)
		if !ok {
			break
		}
		cur = parent
	}
	return entries, nil
}

// ShowCommit reconstructs hash and its first parent (empty graph if none)
// and returns its data plus the diff against the parent.
func (r *Repository) ShowCommit(hash model.CommitHash) (CommitData, ChangeSummary, error) {
	data, err := r.store.ReadCommit(hash)
	if err != nil {
		return CommitData{}, ChangeSummary{}, err
	}
	target, err := r.ReconstructAt(hash)
	if err != nil {
		return CommitData{}, ChangeSummary{}, err
	}
	var parentGraph *model.Graph
	if parent, ok := r.firstParent(data); ok {
		parentGraph, err = r.ReconstructAt(parent)
		if err != nil {
			return CommitData{}, ChangeSummary{}, err
		}
	} else {
		parentGraph = model.Empty("")
		parentGraph.Nodes = map[model.NodeId]*model.Node{}
	}
	return data, ComputeGraphDiff(parentGraph, target), nil
}

// Diff reconstructs both from and to and returns their structural diff.
func (r *Repository) Diff(from, to model.CommitHash) (ChangeSummary, error) {
	a, err := r.ReconstructAt(from)
	if err != nil {
		return ChangeSummary{}, err
	}
	b, err := r.ReconstructAt(to)
	if err != nil {
		return ChangeSummary{}, err
	}
	return ComputeGraphDiff(a, b), nil
}

// CommitIfChanged reconstructs HEAD and diffs it against currentGraph. If
// there is no difference it returns (nil, nil); otherwise it writes a
// snapshot commit with HEAD as the sole parent and advances the current
// ref, returning the new hash.
func (r *Repository) CommitIfChanged(input CommitInput, currentGraph *model.Graph) (*model.CommitHash, error) {
	headHash, err := r.store.ResolveHead()
	if err != nil {
		return nil, err
	}
	headGraph, err := r.ReconstructAt(headHash)
	if err != nil {
		return nil, err
	}
	d := ComputeGraphDiff(headGraph, currentGraph)
	if len(d.NodesCreated)+len(d.NodesUpdated)+len(d.NodesDeleted)+len(d.LinksCreated)+len(d.LinksUpdated)+len(d.LinksRemoved) == 0 {
		return nil, nil
	}
	data := CommitData{
		Parents:            []model.CommitHash{headHash},
		Message:            input.Message,
		Timestamp:          time.Now().UTC(),
		Source:             input.Source,
		StorageType:        StorageSnapshot,
		DepthSinceSnapshot: 0,
	}
	hash, err := r.store.WriteCommit(data)
	if err != nil {
		return nil, err
	}
	if err := r.store.WriteSnapshot(hash, currentGraph); err != nil {
		return nil, err
	}
	if err := r.advanceCurrentRef(hash); err != nil {
		return nil, err
	}
	return &hash, nil
}

// CurrentBranch returns the branch name HEAD points at, or "" if detached.
func (r *Repository) CurrentBranch() (string, bool, error) {
	h, err := r.store.ReadHead()
	if err != nil {
		return "", false, err
	}
	if h.Kind == HeadBranch {
		return h.Branch, true, nil
	}
	return "", false, nil
}

// ListBranches returns every branch with its head hash and whether it is
// the current branch.
func (r *Repository) ListBranches() ([]BranchInfo, error) {
	names, err := r.store.ListBranches()
	if err != nil {
		return nil, err
	}
	current, isBranch, err := r.CurrentBranch()
	if err != nil {
		return nil, err
	}
	out := make([]BranchInfo, 0, len(names))
	for _, n := range names {
		head, err := r.store.ReadBranchRef(n)
		if err != nil {
			return nil, err
		}
		out = append(out, BranchInfo{Name: n, Head: head, IsCurrent: isBranch && n == current})
	}
	return out, nil
}

// CreateBranch creates a new branch ref pointing at the current resolved
// HEAD.
func (r *Repository) CreateBranch(name string) error {
	if r.store.BranchExists(name) {
		return &werr.BranchAlreadyExists{Name: name}
	}
	head, err := r.store.ResolveHead()
	if err != nil {
		return err
	}
	return r.store.WriteBranchRef(name, head)
}

// DeleteBranch removes a branch ref, refusing the default or current
// branch.
func (r *Repository) DeleteBranch(name string) error {
	if !r.store.BranchExists(name) {
		return &werr.BranchNotFound{Name: name}
	}
	if name == r.config.DefaultBranch {
		return &werr.CannotDeleteDefaultBranch{Name: name}
	}
	current, isBranch, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	if isBranch && name == current {
		return &werr.CannotDeleteCurrentBranch{Name: name}
	}
	return r.store.DeleteBranchRef(name)
}

// SwitchBranch moves HEAD to Branch(name), refusing if hasPending is true.
// Returns the reconstructed graph at the branch's head.
func (r *Repository) SwitchBranch(name string, hasPending bool) (*model.Graph, error) {
	if hasPending {
		return nil, &werr.HasPendingChanges{}
	}
	head, err := r.store.ReadBranchRef(name)
	if err != nil {
		return nil, err
	}
	g, err := r.ReconstructAt(head)
	if err != nil {
		return nil, err
	}
	if err := r.store.WriteHead(HeadState{Kind: HeadBranch, Branch: name}); err != nil {
		return nil, err
	}
	return g, nil
}

// CheckoutCommit moves HEAD to Detached(hash), refusing if hasPending is
// true. Returns the reconstructed graph at hash.
func (r *Repository) CheckoutCommit(hash model.CommitHash, hasPending bool) (*model.Graph, error) {
	if hasPending {
		return nil, &werr.HasPendingChanges{}
	}
	g, err := r.ReconstructAt(hash)
	if err != nil {
		return nil, err
	}
	if err := r.store.WriteHead(HeadState{Kind: HeadDetached, Hash: hash}); err != nil {
		return nil, err
	}
	return g, nil
}

// RestoreToCommit reconstructs hash, writes a new snapshot commit parented
// on current HEAD with source Manual{tool_name:"restore"} and message
// "Restore to <hash[:8]>", and advances the current ref. currentGraph is
// accepted for call-site symmetry with other mutating operations but is not
// used in computing the result (see the design note on this parameter).
func (r *Repository) RestoreToCommit(hash model.CommitHash, currentGraph *model.Graph) (model.CommitHash, *model.Graph, error) {
	target, err := r.ReconstructAt(hash)
	if err != nil {
		return "", nil, err
	}
	parentHash, err := r.store.ResolveHead()
	if err != nil {
		return "", nil, err
	}
	tool := "restore"
	truncated := hash
	if len(truncated) > 8 {
		truncated = truncated[:8]
	}
	data := CommitData{
		Parents:            []model.CommitHash{parentHash},
		Message:            "Restore to " + truncated,
		Timestamp:          time.Now().UTC(),
		Source:             CommitSource{Kind: SourceManual, ToolName: &tool},
		StorageType:        StorageSnapshot,
		DepthSinceSnapshot: 0,
	}
	newHash, err := r.store.WriteCommit(data)
	if err != nil {
		return "", nil, err
	}
	if err := r.store.WriteSnapshot(newHash, target); err != nil {
		return "", nil, err
	}
	if err := r.advanceCurrentRef(newHash); err != nil {
		return "", nil, err
	}
	return newHash, target, nil
}

// MergeBranchResult is the tagged outcome of merge_branch.
type MergeBranchResult struct {
	FastForward  bool
	Hash         model.CommitHash
	Merged       *model.Graph
	Conflicts    []MergeConflict
	SourceBranch string
}

// MergeBranch merges sourceBranch into the current branch.
func (r *Repository) MergeBranch(sourceBranch string, currentGraph *model.Graph) (MergeBranchResult, error) {
	targetHash, err := r.store.ResolveHead()
	if err != nil {
		return MergeBranchResult{}, err
	}
	sourceHash, err := r.store.ReadBranchRef(sourceBranch)
	if err != nil {
		return MergeBranchResult{}, err
	}

	if isAnc, err := IsAncestor(targetHash, sourceHash, r.parentsOf); err != nil {
		return MergeBranchResult{}, err
	} else if isAnc {
		g, err := r.ReconstructAt(sourceHash)
		if err != nil {
			return MergeBranchResult{}, err
		}
		if err := r.advanceCurrentRef(sourceHash); err != nil {
			return MergeBranchResult{}, err
		}
		return MergeBranchResult{FastForward: true, Hash: sourceHash, Merged: g}, nil
	}

	base, found, err := FindMergeBase(targetHash, sourceHash, r.parentsOf)
	if err != nil {
		return MergeBranchResult{}, err
	}
	if !found {
		return MergeBranchResult{}, &werr.VcsCommitNotFound{Hash: "No common ancestor"}
	}

	baseGraph, err := r.ReconstructAt(base)
	if err != nil {
		return MergeBranchResult{}, err
	}
	sourceGraph, err := r.ReconstructAt(sourceHash)
	if err != nil {
		return MergeBranchResult{}, err
	}

	conflicts, merged := ThreeWayMerge(baseGraph, currentGraph, sourceGraph)
	if len(conflicts) > 0 {
		return MergeBranchResult{Conflicts: conflicts, SourceBranch: sourceBranch}, nil
	}

	hash, err := r.writeMergeCommit(targetHash, sourceHash, sourceBranch, merged, "")
	if err != nil {
		return MergeBranchResult{}, err
	}
	return MergeBranchResult{Hash: hash, Merged: merged}, nil
}

// ResolveConflicts applies resolutions to a clone of currentGraph and writes
// the merge commit, annotating the message as conflicts-resolved.
func (r *Repository) ResolveConflicts(resolutions []Resolution, sourceBranch string, currentGraph *model.Graph) (model.CommitHash, *model.Graph, error) {
	targetHash, err := r.store.ResolveHead()
	if err != nil {
		return "", nil, err
	}
	sourceHash, err := r.store.ReadBranchRef(sourceBranch)
	if err != nil {
		return "", nil, err
	}
	resolved := currentGraph.Clone()
	ApplyResolutions(resolved, resolutions)

	hash, err := r.writeMergeCommit(targetHash, sourceHash, sourceBranch, resolved, " (conflicts resolved)")
	if err != nil {
		return "", nil, err
	}
	return hash, resolved, nil
}

func (r *Repository) writeMergeCommit(targetHash, sourceHash model.CommitHash, sourceBranch string, merged *model.Graph, suffix string) (model.CommitHash, error) {
	currentBranch, isBranch, err := r.CurrentBranch()
	if err != nil {
		return "", err
	}
	target := currentBranch
	if !isBranch {
		target = ""
	}
	data := CommitData{
		Parents:     []model.CommitHash{targetHash, sourceHash},
		Message:     "Merge " + sourceBranch + " into " + target + suffix,
		Timestamp:   time.Now().UTC(),
		Source:      CommitSource{Kind: SourceMerge, SourceBranch: sourceBranch, TargetBranch: target},
		StorageType: StorageSnapshot,
	}
	hash, err := r.store.WriteCommit(data)
	if err != nil {
		return "", err
	}
	if err := r.store.WriteSnapshot(hash, merged); err != nil {
		return "", err
	}
	if err := r.advanceCurrentRef(hash); err != nil {
		return "", err
	}
	return hash, nil
}
