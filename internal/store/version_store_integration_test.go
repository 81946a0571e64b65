package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// TestMergeRequestVersionNumbersAreContiguous verifies that repeated
// snapshots of the same merge request produce version numbers 1, 2, 3, ...
// with no gaps, even though each snapshot computes max+1 independently.
func TestMergeRequestVersionNumbersAreContiguous(t *testing.T) {
	s, cleanup := setupIntegrationStore(t)
	defer cleanup()

	ctx := context.Background()
	mrID, authorID := seedMergeRequest(ctx, t, s, "mr-contiguous")

	for want := 1; want <= 4; want++ {
		version, err := s.SnapshotMergeRequest(ctx, mrID, authorID)
		if err != nil {
			t.Fatalf("snapshot %d: %v", want, err)
		}
		if version.VersionNumber != want {
			t.Fatalf("snapshot %d: got version number %d", want, version.VersionNumber)
		}
	}

	versions, err := s.ListMergeRequestVersions(ctx, mrID, 0, 100)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 4 {
		t.Fatalf("expected 4 versions, got %d", len(versions))
	}
	// Listed most recent first.
	for i, v := range versions {
		if want := 4 - i; v.VersionNumber != want {
			t.Fatalf("versions[%d]: got version number %d, want %d", i, v.VersionNumber, want)
		}
	}
}

// TestSnapshotMergeRequestConcurrent verifies that parallel snapshots of
// the same merge request never compute the same max+1: the row lock
// serializes the writers, so the assigned numbers are a permutation of 1..N.
func TestSnapshotMergeRequestConcurrent(t *testing.T) {
	s, cleanup := setupIntegrationStore(t)
	defer cleanup()

	ctx := context.Background()
	mrID, authorID := seedMergeRequest(ctx, t, s, "mr-concurrent")

	const workers = 8
	numbers := make(chan int, workers)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			version, err := s.SnapshotMergeRequest(ctx, mrID, authorID)
			if err != nil {
				errs <- err
				return
			}
			numbers <- version.VersionNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent snapshot: %v", err)
	}

	seen := make(map[int]bool)
	for n := range numbers {
		if seen[n] {
			t.Fatalf("version number %d assigned twice", n)
		}
		seen[n] = true
	}
	for want := 1; want <= workers; want++ {
		if !seen[want] {
			t.Fatalf("version numbers have a gap at %d", want)
		}
	}
}

// TestRestoreMergeRequestVersionSnapshotsCurrentState verifies that a
// restore first captures the live state as a new version, then overwrites
// the live row from the target version without touching the target.
func TestRestoreMergeRequestVersionSnapshotsCurrentState(t *testing.T) {
	s, cleanup := setupIntegrationStore(t)
	defer cleanup()

	ctx := context.Background()
	mrID, authorID := seedMergeRequest(ctx, t, s, "mr-restore")

	// Version 1 captures the initial title.
	if _, err := s.SnapshotMergeRequest(ctx, mrID, authorID); err != nil {
		t.Fatalf("initial snapshot: %v", err)
	}

	// Update the live row and snapshot it as version 2.
	item, err := s.GetMergeRequest(ctx, mrID)
	if err != nil {
		t.Fatalf("get merge request: %v", err)
	}
	item.Title = "Revised title"
	version, err := s.UpdateMergeRequest(ctx, item, authorID)
	if err != nil {
		t.Fatalf("update merge request: %v", err)
	}
	if version.VersionNumber != 2 {
		t.Fatalf("update snapshot: got version number %d, want 2", version.VersionNumber)
	}

	restored, preRestore, err := s.RestoreMergeRequestVersion(ctx, mrID, 1, authorID)
	if err != nil {
		t.Fatalf("restore version 1: %v", err)
	}
	if preRestore != 3 {
		t.Fatalf("pre-restore snapshot: got version number %d, want 3", preRestore)
	}
	if restored.Title != "Initial title" {
		t.Fatalf("restored title: got %q", restored.Title)
	}

	// The pre-restore snapshot preserves the overwritten live state.
	versions, err := s.ListMergeRequestVersions(ctx, mrID, 0, 100)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(versions))
	}
	if versions[0].VersionNumber != 3 || versions[0].Title != "Revised title" {
		t.Fatalf("pre-restore version: got number %d title %q", versions[0].VersionNumber, versions[0].Title)
	}
}

// TestRestoreMergeRequestVersionMissingTarget verifies that restoring a
// version that was never created fails with sql.ErrNoRows and leaves no
// stray snapshot behind.
func TestRestoreMergeRequestVersionMissingTarget(t *testing.T) {
	s, cleanup := setupIntegrationStore(t)
	defer cleanup()

	ctx := context.Background()
	mrID, authorID := seedMergeRequest(ctx, t, s, "mr-missing")

	if _, err := s.SnapshotMergeRequest(ctx, mrID, authorID); err != nil {
		t.Fatalf("initial snapshot: %v", err)
	}

	_, _, err := s.RestoreMergeRequestVersion(ctx, mrID, 42, authorID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}

	versions, err := s.ListMergeRequestVersions(ctx, mrID, 0, 100)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("failed restore must not add versions, got %d", len(versions))
	}
}

func setupIntegrationStore(t *testing.T) (*PostgresStore, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	databaseURL := getTestDatabaseURL(t)
	db, err := Open(ctx, databaseURL)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	if err := ApplyMigrations(ctx, db, filepath.Join("..", "..", "db", "migrations")); err != nil {
		db.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	cleanup := func() {
		_, _ = db.ExecContext(ctx, `
			TRUNCATE merge_request_versions, merge_requests, commit_graphs, commit_files, commits, repositories, users CASCADE
		`)
		db.Close()
	}
	return NewPostgresStore(db), cleanup
}

// seedMergeRequest inserts a user, a repository, and one open merge request,
// returning the merge request id and the author id.
func seedMergeRequest(ctx context.Context, t *testing.T, s *PostgresStore, id string) (string, string) {
	t.Helper()

	author, err := s.EnsureUserByName(ctx, "integration-author")
	if err != nil {
		t.Fatalf("ensure author: %v", err)
	}

	repoID := id + "-repo"
	if err := s.InsertRepository(ctx, Repository{
		ID:      repoID,
		Name:    fmt.Sprintf("repo for %s", id),
		OwnerID: author.ID,
	}); err != nil {
		t.Fatalf("insert repository: %v", err)
	}

	if err := s.InsertMergeRequest(ctx, MergeRequest{
		ID:           id,
		Title:        "Initial title",
		Description:  "Initial description",
		AuthorID:     author.ID,
		SourceRepoID: repoID,
		TargetRepoID: repoID,
	}); err != nil {
		t.Fatalf("insert merge request: %v", err)
	}
	return id, author.ID
}

// getTestDatabaseURL returns the database URL for integration tests,
// skipping the test when TEST_DATABASE_URL is unset.
func getTestDatabaseURL(t *testing.T) string {
	t.Helper()
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}
	t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	return ""
}
