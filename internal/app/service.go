package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"caseline/api/internal/config"
	"caseline/api/internal/diff"
	"caseline/api/internal/gitimport"
	"caseline/api/internal/graph"
	"caseline/api/internal/lineage"
	"caseline/api/internal/search"
	"caseline/api/internal/store"
	"caseline/api/internal/util"
)

type dataStore interface {
	Ping(context.Context) error
	EnsureUserByName(context.Context, string) (store.User, error)
	GetRepository(context.Context, string) (store.Repository, error)
	InsertRepository(context.Context, store.Repository) error
	ListRepositories(context.Context) ([]store.Repository, error)
	InsertCommit(context.Context, store.Commit) (store.Commit, error)
	InsertCommitFile(context.Context, store.CommitFile) (store.CommitFile, error)
	GetCommit(context.Context, string, string) (store.Commit, error)
	ListCommits(context.Context, string, int, int) ([]store.Commit, error)
	ListCommitFiles(context.Context, string) ([]store.CommitFile, error)
	ListCommitsWithFiles(context.Context, string, bool, int) ([]store.CommitWithFiles, error)
	UpdateCommitFileLineage(context.Context, []store.CommitFile) error
	GetMergeRequest(context.Context, string) (store.MergeRequest, error)
	InsertMergeRequest(context.Context, store.MergeRequest) error
	UpdateMergeRequest(context.Context, store.MergeRequest, string) (store.MergeRequestVersion, error)
	SnapshotMergeRequest(context.Context, string, string) (store.MergeRequestVersion, error)
	RestoreMergeRequestVersion(context.Context, string, int, string) (store.MergeRequest, int, error)
	ListMergeRequestVersions(context.Context, string, int, int) ([]store.MergeRequestVersion, error)
	SaveGraphSnapshot(context.Context, store.GraphSnapshot) (store.GraphSnapshot, error)
	GetGraphSnapshot(context.Context, string) (store.GraphSnapshot, error)
	DeleteGraphSnapshot(context.Context, string) (bool, error)
	GraphStatistics(context.Context, string) (store.GraphStatistics, error)
}

type graphCache interface {
	Put(ctx context.Context, repositoryID string, payload []byte) error
	Get(ctx context.Context, repositoryID string) ([]byte, error)
	Invalidate(ctx context.Context, repositoryID string) error
}

// Service holds the engine's use cases. cache and searchSvc may be nil
// when Redis or search is not configured; every caller checks.
type Service struct {
	store     dataStore
	cache     graphCache
	searchSvc *search.Service
	cfg       config.Config
}

func NewService(store dataStore, cache graphCache, searchSvc *search.Service, cfg config.Config) *Service {
	return &Service{store: store, cache: cache, searchSvc: searchSvc, cfg: cfg}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Repositories

type CreateRepositoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerName   string `json:"ownerName"`
	IsPrivate   bool   `json:"isPrivate"`
}

type RepositoryPayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	IsPrivate   bool      `json:"isPrivate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Service) CreateRepository(ctx context.Context, input CreateRepositoryInput) (RepositoryPayload, error) {
	if strings.TrimSpace(input.Name) == "" {
		return RepositoryPayload{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	owner, err := s.store.EnsureUserByName(ctx, orUnknown(input.OwnerName))
	if err != nil {
		return RepositoryPayload{}, fmt.Errorf("ensure owner: %w", err)
	}
	item := store.Repository{
		ID:          util.NewID("repo"),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		OwnerID:     owner.ID,
		IsPrivate:   input.IsPrivate,
	}
	if err := s.store.InsertRepository(ctx, item); err != nil {
		return RepositoryPayload{}, err
	}
	saved, err := s.store.GetRepository(ctx, item.ID)
	if err != nil {
		return RepositoryPayload{}, err
	}
	return repositoryPayload(saved), nil
}

func (s *Service) GetRepository(ctx context.Context, repositoryID string) (RepositoryPayload, error) {
	item, err := s.store.GetRepository(ctx, repositoryID)
	if err != nil {
		return RepositoryPayload{}, err
	}
	return repositoryPayload(item), nil
}

func (s *Service) ListRepositories(ctx context.Context) ([]RepositoryPayload, error) {
	items, err := s.store.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	payloads := make([]RepositoryPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, repositoryPayload(item))
	}
	return payloads, nil
}

// Commits

type CommitFileInput struct {
	FileID     string  `json:"fileId"`
	FilePath   string  `json:"filePath"`
	OldContent *string `json:"oldContent"`
	NewContent *string `json:"newContent"`
	Additions  int     `json:"additions"`
	Deletions  int     `json:"deletions"`
}

type CreateCommitInput struct {
	SHA        string            `json:"sha"`
	Message    string            `json:"message"`
	AuthorName string            `json:"authorName"`
	Timestamp  *time.Time        `json:"timestamp"`
	ParentSHA  *string           `json:"parentSha"`
	Files      []CommitFileInput `json:"files"`
}

type CommitFilePayload struct {
	ID             string  `json:"id"`
	FileID         string  `json:"fileId"`
	FilePath       string  `json:"filePath"`
	ChangeType     string  `json:"changeType"`
	Additions      int     `json:"additions"`
	Deletions      int     `json:"deletions"`
	DiffContent    string  `json:"diffContent,omitempty"`
	PreviousFileID *string `json:"previousFileId"`
}

type CommitPayload struct {
	ID           string              `json:"id"`
	RepositoryID string              `json:"repositoryId"`
	SHA          string              `json:"sha"`
	Message      string              `json:"message"`
	AuthorID     string              `json:"authorId"`
	AuthorName   string              `json:"authorName,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
	ParentSHA    *string             `json:"parentSha"`
	CreatedAt    time.Time           `json:"createdAt"`
	Files        []CommitFilePayload `json:"files,omitempty"`
}

// CreateCommit records a commit with its file changes, recomputes file
// lineage for the repository, and drops the cached graph.
func (s *Service) CreateCommit(ctx context.Context, repositoryID string, input CreateCommitInput) (CommitPayload, error) {
	if strings.TrimSpace(input.SHA) == "" {
		return CommitPayload{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "sha is required", nil)
	}
	if _, err := s.store.GetRepository(ctx, repositoryID); err != nil {
		return CommitPayload{}, err
	}
	author, err := s.store.EnsureUserByName(ctx, orUnknown(input.AuthorName))
	if err != nil {
		return CommitPayload{}, fmt.Errorf("ensure author: %w", err)
	}

	timestamp := time.Now().UTC()
	if input.Timestamp != nil {
		timestamp = *input.Timestamp
	}

	commit, err := s.store.InsertCommit(ctx, store.Commit{
		ID:           util.NewID("commit"),
		RepositoryID: repositoryID,
		SHA:          input.SHA,
		Message:      input.Message,
		AuthorID:     author.ID,
		Timestamp:    timestamp,
		ParentSHA:    input.ParentSHA,
	})
	if err != nil {
		return CommitPayload{}, err
	}

	files := make([]CommitFilePayload, 0, len(input.Files))
	for _, fileInput := range input.Files {
		if strings.TrimSpace(fileInput.FilePath) == "" {
			return CommitPayload{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "filePath is required on every file", nil)
		}
		change := diff.Compare(fileInput.OldContent, fileInput.NewContent)
		fileID := fileInput.FileID
		if fileID == "" {
			fileID = util.NewID("file")
		}
		file, err := s.store.InsertCommitFile(ctx, store.CommitFile{
			ID:          util.NewID("cf"),
			CommitID:    commit.ID,
			FileID:      fileID,
			FilePath:    fileInput.FilePath,
			ChangeType:  string(change.ChangeType),
			Additions:   fileInput.Additions,
			Deletions:   fileInput.Deletions,
			DiffContent: change.Diff,
		})
		if err != nil {
			return CommitPayload{}, err
		}
		files = append(files, commitFilePayload(file))
	}

	if err := s.RelinkLineage(ctx, repositoryID); err != nil {
		return CommitPayload{}, err
	}
	s.dropGraph(ctx, repositoryID)

	if s.searchSvc != nil {
		s.searchSvc.IndexCommit(search.CommitRecord{
			ID:           commit.ID,
			SHA:          commit.SHA,
			Message:      commit.Message,
			AuthorName:   author.Username,
			RepositoryID: repositoryID,
		})
	}

	payload := commitPayload(commit)
	payload.AuthorName = author.Username
	payload.Files = files
	return payload, nil
}

func (s *Service) ListCommits(ctx context.Context, repositoryID string, skip, limit int) ([]CommitPayload, error) {
	if _, err := s.store.GetRepository(ctx, repositoryID); err != nil {
		return nil, err
	}
	commits, err := s.store.ListCommits(ctx, repositoryID, skip, limit)
	if err != nil {
		return nil, err
	}
	payloads := make([]CommitPayload, 0, len(commits))
	for _, commit := range commits {
		payloads = append(payloads, commitPayload(commit))
	}
	return payloads, nil
}

func (s *Service) GetCommit(ctx context.Context, repositoryID, commitID string) (CommitPayload, error) {
	commit, err := s.store.GetCommit(ctx, repositoryID, commitID)
	if err != nil {
		return CommitPayload{}, err
	}
	files, err := s.store.ListCommitFiles(ctx, commit.ID)
	if err != nil {
		return CommitPayload{}, err
	}
	payload := commitPayload(commit)
	payload.Files = make([]CommitFilePayload, 0, len(files))
	for _, file := range files {
		payload.Files = append(payload.Files, commitFilePayload(file))
	}
	return payload, nil
}

// ImportCommits reads up to the configured number of commits from a git
// repository on disk and records them, oldest first so lineage and parent
// pointers line up with insertion order.
func (s *Service) ImportCommits(ctx context.Context, repositoryID, path string) ([]CommitPayload, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "path is required", nil)
	}
	if _, err := s.store.GetRepository(ctx, repositoryID); err != nil {
		return nil, err
	}

	imported, err := gitimport.ReadCommits(path, s.cfg.ImportMaxCommits)
	if err != nil {
		return nil, domainError(http.StatusBadRequest, "IMPORT_FAILED", err.Error(), nil)
	}

	payloads := make([]CommitPayload, 0, len(imported))
	for i := len(imported) - 1; i >= 0; i-- {
		entry := imported[i]
		author, err := s.store.EnsureUserByName(ctx, orUnknown(entry.AuthorName))
		if err != nil {
			return nil, fmt.Errorf("ensure author: %w", err)
		}
		commit, err := s.store.InsertCommit(ctx, store.Commit{
			ID:           util.NewID("commit"),
			RepositoryID: repositoryID,
			SHA:          entry.SHA,
			Message:      entry.Message,
			AuthorID:     author.ID,
			Timestamp:    entry.Timestamp,
			ParentSHA:    entry.ParentSHA,
		})
		if err != nil {
			return nil, err
		}
		for _, fileChange := range entry.Files {
			if _, err := s.store.InsertCommitFile(ctx, store.CommitFile{
				ID:         util.NewID("cf"),
				CommitID:   commit.ID,
				FileID:     util.NewID("file"),
				FilePath:   fileChange.Path,
				ChangeType: fileChange.ChangeType,
				Additions:  fileChange.Additions,
				Deletions:  fileChange.Deletions,
			}); err != nil {
				return nil, err
			}
		}
		payloads = append(payloads, commitPayload(commit))
	}

	if err := s.RelinkLineage(ctx, repositoryID); err != nil {
		return nil, err
	}
	s.dropGraph(ctx, repositoryID)
	return payloads, nil
}

// RelinkLineage recomputes every PreviousFileID pointer in the repository
// from scratch and persists the result.
func (s *Service) RelinkLineage(ctx context.Context, repositoryID string) error {
	commits, err := s.store.ListCommitsWithFiles(ctx, repositoryID, false, 0)
	if err != nil {
		return err
	}
	updated := lineage.Link(commits)
	if len(updated) == 0 {
		return nil
	}
	return s.store.UpdateCommitFileLineage(ctx, updated)
}

// Graph

type GraphPayload struct {
	RepositoryID string          `json:"repositoryId"`
	Graph        json.RawMessage `json:"graph"`
	NodeCount    int             `json:"nodeCount"`
	EdgeCount    int             `json:"edgeCount"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}

// GenerateGraph rebuilds the commit graph from the most recent commits,
// persists the snapshot, and refreshes the cache. Building from the same
// history always yields the same nodes, edges, and layout.
func (s *Service) GenerateGraph(ctx context.Context, repositoryID string) (GraphPayload, error) {
	if _, err := s.store.GetRepository(ctx, repositoryID); err != nil {
		return GraphPayload{}, err
	}
	commits, err := s.store.ListCommitsWithFiles(ctx, repositoryID, true, s.cfg.GraphMaxCommits)
	if err != nil {
		return GraphPayload{}, err
	}

	snapshot := graph.Build(commits)
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return GraphPayload{}, fmt.Errorf("marshal graph: %w", err)
	}

	saved, err := s.store.SaveGraphSnapshot(ctx, store.GraphSnapshot{
		ID:           util.NewID("graph"),
		RepositoryID: repositoryID,
		Payload:      raw,
		NodeCount:    len(snapshot.Nodes),
		EdgeCount:    len(snapshot.Edges),
	})
	if err != nil {
		return GraphPayload{}, err
	}

	payload := graphPayload(saved)
	s.cacheGraph(ctx, repositoryID, payload)
	return payload, nil
}

// GetGraph serves the cached graph when present, falls back to the stored
// snapshot, and builds one on demand when the repository has none yet.
func (s *Service) GetGraph(ctx context.Context, repositoryID string) (GraphPayload, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, repositoryID); err == nil {
			var payload GraphPayload
			if err := json.Unmarshal(raw, &payload); err == nil {
				return payload, nil
			}
		}
	}

	snapshot, err := s.store.GetGraphSnapshot(ctx, repositoryID)
	if err == nil {
		payload := graphPayload(snapshot)
		s.cacheGraph(ctx, repositoryID, payload)
		return payload, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return GraphPayload{}, err
	}
	return s.GenerateGraph(ctx, repositoryID)
}

func (s *Service) DeleteGraph(ctx context.Context, repositoryID string) (bool, error) {
	deleted, err := s.store.DeleteGraphSnapshot(ctx, repositoryID)
	if err != nil {
		return false, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, repositoryID); err != nil {
			log.Printf("graph: invalidate cache for %s: %v", repositoryID, err)
		}
	}
	return deleted, nil
}

func (s *Service) GraphStatistics(ctx context.Context, repositoryID string) (store.GraphStatistics, error) {
	if _, err := s.store.GetRepository(ctx, repositoryID); err != nil {
		return store.GraphStatistics{}, err
	}
	return s.store.GraphStatistics(ctx, repositoryID)
}

func (s *Service) cacheGraph(ctx context.Context, repositoryID string, payload GraphPayload) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.cache.Put(ctx, repositoryID, raw); err != nil {
		log.Printf("graph: cache put for %s: %v", repositoryID, err)
	}
}

// dropGraph discards derived graph state after the commit history changed.
func (s *Service) dropGraph(ctx context.Context, repositoryID string) {
	if _, err := s.store.DeleteGraphSnapshot(ctx, repositoryID); err != nil {
		log.Printf("graph: drop snapshot for %s: %v", repositoryID, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, repositoryID); err != nil {
			log.Printf("graph: invalidate cache for %s: %v", repositoryID, err)
		}
	}
}

// Merge requests

type CreateMergeRequestInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	AuthorName   string `json:"authorName"`
	SourceRepoID string `json:"sourceRepoId"`
	TargetRepoID string `json:"targetRepoId"`
	SourceBranch string `json:"sourceBranch"`
	TargetBranch string `json:"targetBranch"`
}

type UpdateMergeRequestInput struct {
	Title                   *string  `json:"title"`
	Description             *string  `json:"description"`
	Status                  *string  `json:"status"`
	AIValidationStatus      *string  `json:"aiValidationStatus"`
	AIValidationScore       *float64 `json:"aiValidationScore"`
	AIValidationFeedback    *string  `json:"aiValidationFeedback"`
	AIValidationConcerns    *string  `json:"aiValidationConcerns"`
	AIValidationSuggestions *string  `json:"aiValidationSuggestions"`
	AuthorName              string   `json:"authorName"`
}

type MergeRequestPayload struct {
	ID                      string    `json:"id"`
	Title                   string    `json:"title"`
	Description             string    `json:"description"`
	AuthorID                string    `json:"authorId"`
	SourceRepoID            string    `json:"sourceRepoId"`
	TargetRepoID            string    `json:"targetRepoId"`
	SourceBranch            string    `json:"sourceBranch"`
	TargetBranch            string    `json:"targetBranch"`
	Status                  string    `json:"status"`
	AIValidationStatus      string    `json:"aiValidationStatus"`
	AIValidationScore       float64   `json:"aiValidationScore"`
	AIValidationFeedback    string    `json:"aiValidationFeedback"`
	AIValidationConcerns    string    `json:"aiValidationConcerns"`
	AIValidationSuggestions string    `json:"aiValidationSuggestions"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

type VersionPayload struct {
	ID                 string    `json:"id"`
	MergeRequestID     string    `json:"mergeRequestId"`
	VersionNumber      int       `json:"versionNumber"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Status             string    `json:"status"`
	AIValidationStatus string    `json:"aiValidationStatus"`
	AIValidationScore  float64   `json:"aiValidationScore"`
	AuthorID           string    `json:"authorId"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (s *Service) CreateMergeRequest(ctx context.Context, input CreateMergeRequestInput) (MergeRequestPayload, error) {
	if strings.TrimSpace(input.Title) == "" {
		return MergeRequestPayload{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
	}
	if _, err := s.store.GetRepository(ctx, input.SourceRepoID); err != nil {
		return MergeRequestPayload{}, err
	}
	if _, err := s.store.GetRepository(ctx, input.TargetRepoID); err != nil {
		return MergeRequestPayload{}, err
	}
	author, err := s.store.EnsureUserByName(ctx, orUnknown(input.AuthorName))
	if err != nil {
		return MergeRequestPayload{}, fmt.Errorf("ensure author: %w", err)
	}

	item := store.MergeRequest{
		ID:           util.NewID("mr"),
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		AuthorID:     author.ID,
		SourceRepoID: input.SourceRepoID,
		TargetRepoID: input.TargetRepoID,
		SourceBranch: input.SourceBranch,
		TargetBranch: input.TargetBranch,
	}
	if err := s.store.InsertMergeRequest(ctx, item); err != nil {
		return MergeRequestPayload{}, err
	}

	// Version 1 captures the state at creation.
	if _, err := s.store.SnapshotMergeRequest(ctx, item.ID, author.ID); err != nil {
		return MergeRequestPayload{}, err
	}

	saved, err := s.store.GetMergeRequest(ctx, item.ID)
	if err != nil {
		return MergeRequestPayload{}, err
	}
	s.indexMergeRequest(saved)
	return mergeRequestPayload(saved), nil
}

func (s *Service) GetMergeRequest(ctx context.Context, mergeRequestID string) (MergeRequestPayload, error) {
	item, err := s.store.GetMergeRequest(ctx, mergeRequestID)
	if err != nil {
		return MergeRequestPayload{}, err
	}
	return mergeRequestPayload(item), nil
}

// UpdateMergeRequest applies the provided fields and snapshots the
// post-update state as the next version.
func (s *Service) UpdateMergeRequest(ctx context.Context, mergeRequestID string, input UpdateMergeRequestInput) (MergeRequestPayload, VersionPayload, error) {
	item, err := s.store.GetMergeRequest(ctx, mergeRequestID)
	if err != nil {
		return MergeRequestPayload{}, VersionPayload{}, err
	}

	applyString(&item.Title, input.Title)
	applyString(&item.Description, input.Description)
	applyString(&item.Status, input.Status)
	applyString(&item.AIValidationStatus, input.AIValidationStatus)
	if input.AIValidationScore != nil {
		item.AIValidationScore = *input.AIValidationScore
	}
	applyString(&item.AIValidationFeedback, input.AIValidationFeedback)
	applyString(&item.AIValidationConcerns, input.AIValidationConcerns)
	applyString(&item.AIValidationSuggestions, input.AIValidationSuggestions)

	author, err := s.store.EnsureUserByName(ctx, orUnknown(input.AuthorName))
	if err != nil {
		return MergeRequestPayload{}, VersionPayload{}, fmt.Errorf("ensure author: %w", err)
	}

	version, err := s.store.UpdateMergeRequest(ctx, item, author.ID)
	if err != nil {
		return MergeRequestPayload{}, VersionPayload{}, err
	}

	saved, err := s.store.GetMergeRequest(ctx, mergeRequestID)
	if err != nil {
		return MergeRequestPayload{}, VersionPayload{}, err
	}
	s.indexMergeRequest(saved)
	return mergeRequestPayload(saved), versionPayload(version), nil
}

func (s *Service) ListMergeRequestVersions(ctx context.Context, mergeRequestID string, skip, limit int) ([]VersionPayload, error) {
	if _, err := s.store.GetMergeRequest(ctx, mergeRequestID); err != nil {
		return nil, err
	}
	versions, err := s.store.ListMergeRequestVersions(ctx, mergeRequestID, skip, limit)
	if err != nil {
		return nil, err
	}
	payloads := make([]VersionPayload, 0, len(versions))
	for _, version := range versions {
		payloads = append(payloads, versionPayload(version))
	}
	return payloads, nil
}

// RestoreMergeRequestVersion rolls the live merge request back to a prior
// version. The pre-restore state is snapshotted first so the rollback
// itself stays in the history.
func (s *Service) RestoreMergeRequestVersion(ctx context.Context, mergeRequestID string, versionNumber int) (MergeRequestPayload, int, error) {
	if versionNumber < 1 {
		return MergeRequestPayload{}, 0, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "version must be >= 1", nil)
	}
	item, err := s.store.GetMergeRequest(ctx, mergeRequestID)
	if err != nil {
		return MergeRequestPayload{}, 0, err
	}

	restored, preRestoreVersion, err := s.store.RestoreMergeRequestVersion(ctx, mergeRequestID, versionNumber, item.AuthorID)
	if err != nil {
		return MergeRequestPayload{}, 0, err
	}
	s.indexMergeRequest(restored)
	return mergeRequestPayload(restored), preRestoreVersion, nil
}

func (s *Service) indexMergeRequest(item store.MergeRequest) {
	if s.searchSvc == nil {
		return
	}
	s.searchSvc.IndexMergeRequest(search.MergeRequestRecord{
		ID:           item.ID,
		Title:        item.Title,
		Description:  item.Description,
		Status:       item.Status,
		RepositoryID: item.TargetRepoID,
	})
}

// Diff

// CompareDocuments classifies the change between two document revisions
// and produces the diff plus a similarity score.
func (s *Service) CompareDocuments(oldContent, newContent *string) diff.DocumentChange {
	return diff.Compare(oldContent, newContent)
}

// Search

func (s *Service) Search(ctx context.Context, text, filterType, repositoryID string, limit, offset int) (search.Response, error) {
	if s.searchSvc == nil {
		return search.Response{Results: []search.Result{}, Query: text}, nil
	}
	if filterType != "" {
		switch search.ResultType(filterType) {
		case search.ResultCommit, search.ResultMergeRequest:
		default:
			return search.Response{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "type must be commit or merge_request", nil)
		}
	}
	return s.searchSvc.Search(search.Query{
		Text:               text,
		FilterType:         search.ResultType(filterType),
		FilterRepositoryID: repositoryID,
		Limit:              limit,
		Offset:             offset,
	}), nil
}

// payload mapping

func repositoryPayload(item store.Repository) RepositoryPayload {
	return RepositoryPayload{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		OwnerID:     item.OwnerID,
		IsPrivate:   item.IsPrivate,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func commitPayload(commit store.Commit) CommitPayload {
	return CommitPayload{
		ID:           commit.ID,
		RepositoryID: commit.RepositoryID,
		SHA:          commit.SHA,
		Message:      commit.Message,
		AuthorID:     commit.AuthorID,
		AuthorName:   commit.AuthorName,
		Timestamp:    commit.Timestamp,
		ParentSHA:    commit.ParentSHA,
		CreatedAt:    commit.CreatedAt,
	}
}

func commitFilePayload(file store.CommitFile) CommitFilePayload {
	return CommitFilePayload{
		ID:             file.ID,
		FileID:         file.FileID,
		FilePath:       file.FilePath,
		ChangeType:     file.ChangeType,
		Additions:      file.Additions,
		Deletions:      file.Deletions,
		DiffContent:    file.DiffContent,
		PreviousFileID: file.PreviousFileID,
	}
}

func mergeRequestPayload(item store.MergeRequest) MergeRequestPayload {
	return MergeRequestPayload{
		ID:                      item.ID,
		Title:                   item.Title,
		Description:             item.Description,
		AuthorID:                item.AuthorID,
		SourceRepoID:            item.SourceRepoID,
		TargetRepoID:            item.TargetRepoID,
		SourceBranch:            item.SourceBranch,
		TargetBranch:            item.TargetBranch,
		Status:                  item.Status,
		AIValidationStatus:      item.AIValidationStatus,
		AIValidationScore:       item.AIValidationScore,
		AIValidationFeedback:    item.AIValidationFeedback,
		AIValidationConcerns:    item.AIValidationConcerns,
		AIValidationSuggestions: item.AIValidationSuggestions,
		CreatedAt:               item.CreatedAt,
		UpdatedAt:               item.UpdatedAt,
	}
}

func versionPayload(version store.MergeRequestVersion) VersionPayload {
	return VersionPayload{
		ID:                 version.ID,
		MergeRequestID:     version.MergeRequestID,
		VersionNumber:      version.VersionNumber,
		Title:              version.Title,
		Description:        version.Description,
		Status:             version.Status,
		AIValidationStatus: version.AIValidationStatus,
		AIValidationScore:  version.AIValidationScore,
		AuthorID:           version.AuthorID,
		CreatedAt:          version.CreatedAt,
	}
}

func graphPayload(snapshot store.GraphSnapshot) GraphPayload {
	return GraphPayload{
		RepositoryID: snapshot.RepositoryID,
		Graph:        json.RawMessage(snapshot.Payload),
		NodeCount:    snapshot.NodeCount,
		EdgeCount:    snapshot.EdgeCount,
		LastUpdated:  snapshot.LastUpdated,
	}
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func orUnknown(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
