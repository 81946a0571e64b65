package store

import "time"

type User struct {
	ID        string
	Username  string
	Email     string
	Role      string
	CreatedAt time.Time
}

type Repository struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	IsPrivate   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Commit is an immutable record of one commit in a repository.
// ParentSHA may reference a commit outside the stored history; that is
// tolerated everywhere downstream (dangling graph edge, not an error).
type Commit struct {
	ID           string
	RepositoryID string
	SHA          string
	Message      string
	AuthorID     string
	AuthorName   string
	Timestamp    time.Time
	ParentSHA    *string
	CreatedAt    time.Time
}

// CommitFile is one file touched by a commit. PreviousFileID threads the
// file's lineage across commits and is only ever written by the lineage
// relink pass, never by callers.
type CommitFile struct {
	ID             string
	CommitID       string
	FileID         string
	FilePath       string
	ChangeType     string // added, modified, deleted
	Additions      int
	Deletions      int
	DiffContent    string
	PreviousFileID *string
}

// CommitWithFiles bundles a commit with its file records for lineage and
// graph passes.
type CommitWithFiles struct {
	Commit
	Files []CommitFile
}

type MergeRequest struct {
	ID                      string
	Title                   string
	Description             string
	AuthorID                string
	SourceRepoID            string
	TargetRepoID            string
	SourceBranch            string
	TargetBranch            string
	Status                  string // open, closed, merged, draft
	AIValidationStatus      string
	AIValidationScore       float64
	AIValidationFeedback    string
	AIValidationConcerns    string // JSON array, opaque to the engine
	AIValidationSuggestions string // JSON array, opaque to the engine
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// MergeRequestVersion is an append-only snapshot of a merge request's
// mutable fields. Version numbers per merge request are contiguous from 1.
type MergeRequestVersion struct {
	ID                      string
	MergeRequestID          string
	VersionNumber           int
	Title                   string
	Description             string
	Status                  string
	AIValidationStatus      string
	AIValidationScore       float64
	AIValidationFeedback    string
	AIValidationConcerns    string
	AIValidationSuggestions string
	AuthorID                string
	CreatedAt               time.Time
}

// GraphSnapshot is the persisted materialized graph for one repository.
// Payload holds the serialized nodes/edges/layout; it is derived state and
// safe to rebuild from commits/commit_files at any time.
type GraphSnapshot struct {
	ID           string
	RepositoryID string
	Payload      []byte
	NodeCount    int
	EdgeCount    int
	LastUpdated  time.Time
	CreatedAt    time.Time
}

type GraphStatistics struct {
	TotalCommits            int     `json:"totalCommits"`
	TotalFileChanges        int     `json:"totalFileChanges"`
	UniqueFilePaths         int     `json:"uniqueFilePaths"`
	AvgFileChangesPerCommit float64 `json:"avgFileChangesPerCommit"`
}
