// Package gitimport reads commit history out of an on-disk git repository
// so it can be ingested as commit and file-change records.
package gitimport

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit is one imported commit with its per-file changes.
type Commit struct {
	SHA         string
	Message     string
	AuthorName  string
	AuthorEmail string
	Timestamp   time.Time
	ParentSHA   *string
	Files       []FileChange
}

// FileChange is one file touched by an imported commit.
type FileChange struct {
	Path       string
	ChangeType string
	Additions  int
	Deletions  int
}

// ReadCommits returns up to maxCommits commits from the repository at
// path, most recent first.
func ReadCommits(path string, maxCommits int) ([]Commit, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repo %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	commits := make([]Commit, 0, maxCommits)
	err = iter.ForEach(func(commitObj *object.Commit) error {
		imported, err := toCommit(commitObj)
		if err != nil {
			return err
		}
		commits = append(commits, imported)
		if maxCommits > 0 && len(commits) >= maxCommits {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return commits, nil
}

func toCommit(commitObj *object.Commit) (Commit, error) {
	imported := Commit{
		SHA:         commitObj.Hash.String(),
		Message:     strings.TrimSpace(commitObj.Message),
		AuthorName:  commitObj.Author.Name,
		AuthorEmail: commitObj.Author.Email,
		Timestamp:   commitObj.Author.When,
	}

	var parent *object.Commit
	if commitObj.NumParents() > 0 {
		p, err := commitObj.Parent(0)
		if err != nil {
			return Commit{}, fmt.Errorf("load parent of %s: %w", imported.SHA, err)
		}
		parent = p
		sha := p.Hash.String()
		imported.ParentSHA = &sha
	}

	stats, err := commitObj.Stats()
	if err != nil {
		return Commit{}, fmt.Errorf("read stats for %s: %w", imported.SHA, err)
	}

	for _, stat := range stats {
		changeType, err := classifyChange(commitObj, parent, stat.Name)
		if err != nil {
			return Commit{}, err
		}
		imported.Files = append(imported.Files, FileChange{
			Path:       stat.Name,
			ChangeType: changeType,
			Additions:  stat.Addition,
			Deletions:  stat.Deletion,
		})
	}
	return imported, nil
}

// classifyChange checks file presence in the commit and parent trees:
// missing from parent means added, missing from the commit means deleted,
// present in both means modified.
func classifyChange(commitObj, parent *object.Commit, path string) (string, error) {
	inCommit, err := fileExists(commitObj, path)
	if err != nil {
		return "", err
	}
	if !inCommit {
		return "deleted", nil
	}
	if parent == nil {
		return "added", nil
	}
	inParent, err := fileExists(parent, path)
	if err != nil {
		return "", err
	}
	if !inParent {
		return "added", nil
	}
	return "modified", nil
}

func fileExists(commitObj *object.Commit, path string) (bool, error) {
	_, err := commitObj.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s in %s: %w", path, commitObj.Hash, err)
	}
	return true, nil
}
