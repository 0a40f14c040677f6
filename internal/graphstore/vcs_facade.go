package graphstore

import (
	"path/filepath"

	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/vcs"
	"github.com/willowgraph/willow/internal/werr"
)

// InitVCS creates repo/ next to the graph file, seeded with the current
// in-memory graph as the initial commit.
func (s *Store) InitVCS() error {
	repo, err := vcs.Init(filepath.Dir(s.path), s.graph)
	if err != nil {
		return err
	}
	s.repo = repo
	s.pending = nil
	return nil
}

func (s *Store) requireRepo() error {
	if s.repo == nil {
		return &werr.VcsNotInitialized{}
	}
	return nil
}

// Commit consumes the pending-change buffer into a new commit and clears
// it.
func (s *Store) Commit(input vcs.CommitInput) (model.CommitHash, error) {
	if err := s.requireRepo(); err != nil {
		return "", err
	}
	hash, err := s.repo.CreateCommit(input, s.pending, s.graph)
	if err != nil {
		return "", err
	}
	s.pending = nil
	return hash, nil
}

// DiscardChanges refills the in-memory graph from HEAD and clears the
// pending-change buffer.
func (s *Store) DiscardChanges() error {
	if err := s.requireRepo(); err != nil {
		return err
	}
	g, err := s.repo.HeadGraph()
	if err != nil {
		return err
	}
	s.graph = g
	s.pending = nil
	return s.persist()
}

// CommitIfChanged captures an external edit to the graph file the façade's
// own change log never saw: it diffs the current in-memory graph against
// HEAD and, if they differ, writes a snapshot commit.
func (s *Store) CommitIfChanged(input vcs.CommitInput) (*model.CommitHash, error) {
	if err := s.requireRepo(); err != nil {
		return nil, err
	}
	hash, err := s.repo.CommitIfChanged(input, s.graph)
	if err != nil {
		return nil, err
	}
	if hash != nil {
		s.pending = nil
	}
	return hash, nil
}

// Log walks the first-parent chain from HEAD.
func (s *Store) Log(limit int) ([]vcs.CommitEntry, error) {
	if err := s.requireRepo(); err != nil {
		return nil, err
	}
	return s.repo.Log(limit)
}

// ShowCommit returns a commit's data and its diff against its first parent.
func (s *Store) ShowCommit(hash model.CommitHash) (vcs.CommitData, vcs.ChangeSummary, error) {
	if err := s.requireRepo(); err != nil {
		return vcs.CommitData{}, vcs.ChangeSummary{}, err
	}
	return s.repo.ShowCommit(hash)
}

// DiffCommits reconstructs two commits and diffs them.
func (s *Store) DiffCommits(from, to model.CommitHash) (vcs.ChangeSummary, error) {
	if err := s.requireRepo(); err != nil {
		return vcs.ChangeSummary{}, err
	}
	return s.repo.Diff(from, to)
}

// CurrentBranch returns the branch HEAD points at, or ok=false if detached.
func (s *Store) CurrentBranch() (name string, ok bool, err error) {
	if err := s.requireRepo(); err != nil {
		return "", false, err
	}
	return s.repo.CurrentBranch()
}

// ListBranches returns every branch with its head hash and current flag.
func (s *Store) ListBranches() ([]vcs.BranchInfo, error) {
	if err := s.requireRepo(); err != nil {
		return nil, err
	}
	return s.repo.ListBranches()
}

// CreateBranch creates a branch ref at the current resolved HEAD.
func (s *Store) CreateBranch(name string) error {
	if err := s.requireRepo(); err != nil {
		return err
	}
	return s.repo.CreateBranch(name)
}

// DeleteBranch removes a branch ref, refusing the default or current
// branch.
func (s *Store) DeleteBranch(name string) error {
	if err := s.requireRepo(); err != nil {
		return err
	}
	return s.repo.DeleteBranch(name)
}

// SwitchBranch moves HEAD to a branch, refusing if there are pending
// changes, and refills the in-memory graph from the branch's head.
func (s *Store) SwitchBranch(name string) error {
	if err := s.requireRepo(); err != nil {
		return err
	}
	g, err := s.repo.SwitchBranch(name, s.HasPendingChanges())
	if err != nil {
		return err
	}
	s.graph = g
	return s.persist()
}

// CheckoutCommit moves HEAD to a detached commit, refusing if there are
// pending changes, and refills the in-memory graph from it.
func (s *Store) CheckoutCommit(hash model.CommitHash) error {
	if err := s.requireRepo(); err != nil {
		return err
	}
	g, err := s.repo.CheckoutCommit(hash, s.HasPendingChanges())
	if err != nil {
		return err
	}
	s.graph = g
	return s.persist()
}

// RestoreToCommit writes a new snapshot commit equal to the reconstructed
// target and refills the in-memory graph from it.
func (s *Store) RestoreToCommit(hash model.CommitHash) (model.CommitHash, error) {
	if err := s.requireRepo(); err != nil {
		return "", err
	}
	newHash, g, err := s.repo.RestoreToCommit(hash, s.graph)
	if err != nil {
		return "", err
	}
	s.graph = g
	s.pending = nil
	if err := s.persist(); err != nil {
		return "", err
	}
	return newHash, nil
}

// MergeBranch merges sourceBranch into the current branch. On success
// (fast-forward or three-way) the in-memory graph is updated to the merge
// result; on conflicts, nothing is written and the caller must resolve via
// ResolveConflicts.
func (s *Store) MergeBranch(sourceBranch string) (vcs.MergeBranchResult, error) {
	if err := s.requireRepo(); err != nil {
		return vcs.MergeBranchResult{}, err
	}
	result, err := s.repo.MergeBranch(sourceBranch, s.graph)
	if err != nil {
		return vcs.MergeBranchResult{}, err
	}
	if len(result.Conflicts) == 0 && result.Merged != nil {
		s.graph = result.Merged
		s.pending = nil
		if err := s.persist(); err != nil {
			return vcs.MergeBranchResult{}, err
		}
	}
	return result, nil
}

// ResolveConflicts applies the caller's resolutions and writes the merge
// commit, updating the in-memory graph to the resolved result.
func (s *Store) ResolveConflicts(resolutions []vcs.Resolution, sourceBranch string) (model.CommitHash, error) {
	if err := s.requireRepo(); err != nil {
		return "", err
	}
	hash, g, err := s.repo.ResolveConflicts(resolutions, sourceBranch, s.graph)
	if err != nil {
		return "", err
	}
	s.graph = g
	s.pending = nil
	if err := s.persist(); err != nil {
		return "", err
	}
	return hash, nil
}
