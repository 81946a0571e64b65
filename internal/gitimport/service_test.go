package gitimport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func commitAll(t *testing.T, wt *git.Worktree, message string, when time.Time) string {
	t.Helper()
	if err := wt.AddGlob("."); err != nil {
		t.Fatalf("add: %v", err)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "ana", Email: "ana@example.com", When: when},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash.String()
}

func setupRepo(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	writeFile(t, dir, "a.txt", "first\n")
	first := commitAll(t, wt, "add a", base)

	writeFile(t, dir, "a.txt", "first\nsecond\n")
	writeFile(t, dir, "b.txt", "other\n")
	second := commitAll(t, wt, "edit a, add b", base.Add(time.Minute))

	return dir, []string{first, second}
}

func TestReadCommits(t *testing.T) {
	dir, shas := setupRepo(t)

	commits, err := ReadCommits(dir, 10)
	if err != nil {
		t.Fatalf("ReadCommits: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}

	// most recent first
	newest, oldest := commits[0], commits[1]
	if newest.SHA != shas[1] || oldest.SHA != shas[0] {
		t.Fatalf("unexpected order: %s, %s", newest.SHA, oldest.SHA)
	}
	if newest.ParentSHA == nil || *newest.ParentSHA != oldest.SHA {
		t.Fatalf("newest commit should reference its parent")
	}
	if oldest.ParentSHA != nil {
		t.Fatalf("root commit should have no parent, got %v", *oldest.ParentSHA)
	}
	if newest.Message != "edit a, add b" {
		t.Fatalf("unexpected message: %q", newest.Message)
	}
	if newest.AuthorName != "ana" {
		t.Fatalf("unexpected author: %q", newest.AuthorName)
	}
}

func TestReadCommitsChangeTypes(t *testing.T) {
	dir, _ := setupRepo(t)

	commits, err := ReadCommits(dir, 10)
	if err != nil {
		t.Fatalf("ReadCommits: %v", err)
	}

	changes := map[string]string{}
	for _, file := range commits[0].Files {
		changes[file.Path] = file.ChangeType
	}
	if changes["a.txt"] != "modified" {
		t.Errorf("a.txt should be modified, got %q", changes["a.txt"])
	}
	if changes["b.txt"] != "added" {
		t.Errorf("b.txt should be added, got %q", changes["b.txt"])
	}

	for _, file := range commits[1].Files {
		if file.ChangeType != "added" {
			t.Errorf("root commit files should be added, got %q for %s", file.ChangeType, file.Path)
		}
	}
}

func TestReadCommitsLimit(t *testing.T) {
	dir, shas := setupRepo(t)

	commits, err := ReadCommits(dir, 1)
	if err != nil {
		t.Fatalf("ReadCommits: %v", err)
	}
	if len(commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(commits))
	}
	if commits[0].SHA != shas[1] {
		t.Fatalf("limit should keep the most recent commit, got %s", commits[0].SHA)
	}
}

func TestReadCommitsMissingRepo(t *testing.T) {
	if _, err := ReadCommits(filepath.Join(t.TempDir(), "nope"), 5); err == nil {
		t.Fatal("expected error for missing repository")
	}
}
