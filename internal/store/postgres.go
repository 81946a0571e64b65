package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Ping verifies the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) EnsureUserByName(ctx context.Context, username string) (User, error) {
	const findUser = `SELECT id, username, email, role FROM users WHERE username = $1`
	var user User
	err := s.db.QueryRowContext(ctx, findUser, username).Scan(&user.ID, &user.Username, &user.Email, &user.Role)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	insertUser := `
		INSERT INTO users (username, email, role)
		VALUES ($1, CONCAT(LOWER(REPLACE($1, ' ', '.')), '@local.caseline.dev'), 'contributor')
		RETURNING id, username, email, role
	`
	if err := s.db.QueryRowContext(ctx, insertUser, username).Scan(&user.ID, &user.Username, &user.Email, &user.Role); err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetRepository(ctx context.Context, repositoryID string) (Repository, error) {
	var item Repository
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, is_private, created_at, updated_at
		FROM repositories
		WHERE id=$1
	`, repositoryID).Scan(&item.ID, &item.Name, &item.Description, &item.OwnerID, &item.IsPrivate, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Repository{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertRepository(ctx context.Context, item Repository) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repositories (id, name, description, owner_id, is_private)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, item.ID, item.Name, item.Description, item.OwnerID, item.IsPrivate)
	if err != nil {
		return fmt.Errorf("insert repository: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRepositories(ctx context.Context) ([]Repository, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, owner_id, is_private, created_at, updated_at
		FROM repositories
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	items := make([]Repository, 0)
	for rows.Next() {
		var item Repository
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.OwnerID, &item.IsPrivate, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertCommit(ctx context.Context, commit Commit) (Commit, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO commits (id, repository_id, sha, message, author_id, timestamp, parent_sha)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (repository_id, sha) DO UPDATE SET sha=EXCLUDED.sha
		RETURNING id, created_at
	`, commit.ID, commit.RepositoryID, commit.SHA, commit.Message, commit.AuthorID, commit.Timestamp, commit.ParentSHA).Scan(&commit.ID, &commit.CreatedAt)
	if err != nil {
		return Commit{}, fmt.Errorf("insert commit: %w", err)
	}
	return commit, nil
}

func (s *PostgresStore) InsertCommitFile(ctx context.Context, file CommitFile) (CommitFile, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO commit_files (id, commit_id, file_id, file_path, change_type, additions, deletions, diff_content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, file.ID, file.CommitID, file.FileID, file.FilePath, file.ChangeType, file.Additions, file.Deletions, file.DiffContent).Scan(&file.ID)
	if err != nil {
		return CommitFile{}, fmt.Errorf("insert commit file: %w", err)
	}
	return file, nil
}

func (s *PostgresStore) GetCommit(ctx context.Context, repositoryID, commitID string) (Commit, error) {
	var item Commit
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.repository_id, c.sha, c.message, c.author_id, COALESCE(u.username, ''), c.timestamp, c.parent_sha, c.created_at
		FROM commits c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.repository_id=$1 AND c.id=$2
	`, repositoryID, commitID).Scan(
		&item.ID,
		&item.RepositoryID,
		&item.SHA,
		&item.Message,
		&item.AuthorID,
		&item.AuthorName,
		&item.Timestamp,
		&item.ParentSHA,
		&item.CreatedAt,
	)
	if err != nil {
		return Commit{}, err
	}
	return item, nil
}

// ListCommits returns commits for a repository, most recent first. A limit
// of 0 means no limit.
func (s *PostgresStore) ListCommits(ctx context.Context, repositoryID string, skip, limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.repository_id, c.sha, c.message, c.author_id, COALESCE(u.username, ''), c.timestamp, c.parent_sha, c.created_at
		FROM commits c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.repository_id=$1
		ORDER BY c.timestamp DESC
		OFFSET $2 LIMIT $3
	`, repositoryID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	defer rows.Close()
	return scanCommits(rows)
}

func (s *PostgresStore) ListCommitFiles(ctx context.Context, commitID string) ([]CommitFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, commit_id, file_id, file_path, change_type, additions, deletions, COALESCE(diff_content, ''), previous_file_id
		FROM commit_files
		WHERE commit_id=$1
		ORDER BY file_path ASC
	`, commitID)
	if err != nil {
		return nil, fmt.Errorf("list commit files: %w", err)
	}
	defer rows.Close()

	items := make([]CommitFile, 0)
	for rows.Next() {
		var item CommitFile
		if err := rows.Scan(
			&item.ID,
			&item.CommitID,
			&item.FileID,
			&item.FilePath,
			&item.ChangeType,
			&item.Additions,
			&item.Deletions,
			&item.DiffContent,
			&item.PreviousFileID,
		); err != nil {
			return nil, fmt.Errorf("scan commit file: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commit files: %w", err)
	}
	return items, nil
}

// ListCommitsWithFiles loads commits in the given timestamp order together
// with their file records. desc=true limits to the most recent maxCommits
// (graph window); desc=false returns the full ascending history (lineage).
func (s *PostgresStore) ListCommitsWithFiles(ctx context.Context, repositoryID string, desc bool, maxCommits int) ([]CommitWithFiles, error) {
	order := "ASC"
	if desc {
		order = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT c.id, c.repository_id, c.sha, c.message, c.author_id, COALESCE(u.username, ''), c.timestamp, c.parent_sha, c.created_at
		FROM commits c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.repository_id=$1
		ORDER BY c.timestamp %s
	`, order)
	args := []any{repositoryID}
	if maxCommits > 0 {
		query += ` LIMIT $2`
		args = append(args, maxCommits)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list commits with files: %w", err)
	}
	commits, err := scanCommits(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	items := make([]CommitWithFiles, 0, len(commits))
	for _, commit := range commits {
		files, err := s.ListCommitFiles(ctx, commit.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, CommitWithFiles{Commit: commit, Files: files})
	}
	return items, nil
}

// UpdateCommitFileLineage writes the previous_file_id pointers produced by a
// lineage relink pass. The whole batch commits or rolls back together so a
// partial relink is never visible.
func (s *PostgresStore) UpdateCommitFileLineage(ctx context.Context, files []CommitFile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lineage tx: %w", err)
	}
	for _, file := range files {
		if _, err := tx.ExecContext(ctx, `
			UPDATE commit_files SET previous_file_id=$2 WHERE id=$1
		`, file.ID, file.PreviousFileID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("update commit file lineage: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lineage tx: %w", err)
	}
	return nil
}

func scanCommits(rows *sql.Rows) ([]Commit, error) {
	items := make([]Commit, 0)
	for rows.Next() {
		var item Commit
		if err := rows.Scan(
			&item.ID,
			&item.RepositoryID,
			&item.SHA,
			&item.Message,
			&item.AuthorID,
			&item.AuthorName,
			&item.Timestamp,
			&item.ParentSHA,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commits: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetMergeRequest(ctx context.Context, mergeRequestID string) (MergeRequest, error) {
	var item MergeRequest
	err := s.db.QueryRowContext(ctx, mergeRequestSelect+` WHERE id=$1`, mergeRequestID).Scan(mergeRequestFields(&item)...)
	if err != nil {
		return MergeRequest{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertMergeRequest(ctx context.Context, item MergeRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merge_requests (id, title, description, author_id, source_repo_id, target_repo_id, source_branch, target_branch, status,
			ai_validation_status, ai_validation_score, ai_validation_feedback, ai_validation_concerns, ai_validation_suggestions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::jsonb, $14::jsonb)
	`, item.ID, item.Title, item.Description, item.AuthorID, item.SourceRepoID, item.TargetRepoID,
		orDefault(item.SourceBranch, "main"), orDefault(item.TargetBranch, "main"), orDefault(item.Status, "open"),
		orDefault(item.AIValidationStatus, "pending"), item.AIValidationScore, item.AIValidationFeedback,
		orDefault(item.AIValidationConcerns, "[]"), orDefault(item.AIValidationSuggestions, "[]"))
	if err != nil {
		return fmt.Errorf("insert merge request: %w", err)
	}
	return nil
}

// UpdateMergeRequest overwrites the mutable fields of a merge request and
// snapshots the post-update state as a new version, in one transaction.
// Returns the version just created.
func (s *PostgresStore) UpdateMergeRequest(ctx context.Context, item MergeRequest, snapshotAuthorID string) (MergeRequestVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return MergeRequestVersion{}, fmt.Errorf("begin update tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockMergeRequest(ctx, tx, item.ID); err != nil {
		return MergeRequestVersion{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE merge_requests
		SET title=$2, description=$3, status=$4,
			ai_validation_status=$5, ai_validation_score=$6, ai_validation_feedback=$7,
			ai_validation_concerns=$8::jsonb, ai_validation_suggestions=$9::jsonb,
			updated_at=NOW()
		WHERE id=$1
	`, item.ID, item.Title, item.Description, item.Status,
		item.AIValidationStatus, item.AIValidationScore, item.AIValidationFeedback,
		orDefault(item.AIValidationConcerns, "[]"), orDefault(item.AIValidationSuggestions, "[]")); err != nil {
		return MergeRequestVersion{}, fmt.Errorf("update merge request: %w", err)
	}

	version, err := snapshotInTx(ctx, tx, item.ID, snapshotAuthorID)
	if err != nil {
		return MergeRequestVersion{}, err
	}

	if err := tx.Commit(); err != nil {
		return MergeRequestVersion{}, fmt.Errorf("commit update tx: %w", err)
	}
	return version, nil
}

// SnapshotMergeRequest appends a new version capturing the current live
// state of the merge request. The merge request row is locked so two
// concurrent snapshots can never compute the same max+1.
func (s *PostgresStore) SnapshotMergeRequest(ctx context.Context, mergeRequestID, authorID string) (MergeRequestVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return MergeRequestVersion{}, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockMergeRequest(ctx, tx, mergeRequestID); err != nil {
		return MergeRequestVersion{}, err
	}

	version, err := snapshotInTx(ctx, tx, mergeRequestID, authorID)
	if err != nil {
		return MergeRequestVersion{}, err
	}

	if err := tx.Commit(); err != nil {
		return MergeRequestVersion{}, fmt.Errorf("commit snapshot tx: %w", err)
	}
	return version, nil
}

// RestoreMergeRequestVersion restores the live merge request to the state
// captured in targetVersion. The current live state is snapshotted first so
// the restore itself can be undone; the target version is never touched.
// Returns the restored live state and the version number of the pre-restore
// snapshot. sql.ErrNoRows when the target version does not exist.
func (s *PostgresStore) RestoreMergeRequestVersion(ctx context.Context, mergeRequestID string, targetVersion int, authorID string) (MergeRequest, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return MergeRequest{}, 0, fmt.Errorf("begin restore tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockMergeRequest(ctx, tx, mergeRequestID); err != nil {
		return MergeRequest{}, 0, err
	}

	var target MergeRequestVersion
	err = tx.QueryRowContext(ctx, `
		SELECT title, description, status, ai_validation_status, ai_validation_score,
			COALESCE(ai_validation_feedback, ''), COALESCE(ai_validation_concerns::text, '[]'), COALESCE(ai_validation_suggestions::text, '[]')
		FROM merge_request_versions
		WHERE merge_request_id=$1 AND version_number=$2
	`, mergeRequestID, targetVersion).Scan(
		&target.Title,
		&target.Description,
		&target.Status,
		&target.AIValidationStatus,
		&target.AIValidationScore,
		&target.AIValidationFeedback,
		&target.AIValidationConcerns,
		&target.AIValidationSuggestions,
	)
	if err != nil {
		// includes sql.ErrNoRows for a missing target version
		return MergeRequest{}, 0, err
	}

	preRestore, err := snapshotInTx(ctx, tx, mergeRequestID, authorID)
	if err != nil {
		return MergeRequest{}, 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE merge_requests
		SET title=$2, description=$3, status=$4,
			ai_validation_status=$5, ai_validation_score=$6, ai_validation_feedback=$7,
			ai_validation_concerns=$8::jsonb, ai_validation_suggestions=$9::jsonb,
			updated_at=NOW()
		WHERE id=$1
	`, mergeRequestID, target.Title, target.Description, target.Status,
		target.AIValidationStatus, target.AIValidationScore, target.AIValidationFeedback,
		target.AIValidationConcerns, target.AIValidationSuggestions); err != nil {
		return MergeRequest{}, 0, fmt.Errorf("restore merge request fields: %w", err)
	}

	var restored MergeRequest
	if err := tx.QueryRowContext(ctx, mergeRequestSelect+` WHERE id=$1`, mergeRequestID).Scan(mergeRequestFields(&restored)...); err != nil {
		return MergeRequest{}, 0, fmt.Errorf("reload merge request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return MergeRequest{}, 0, fmt.Errorf("commit restore tx: %w", err)
	}
	return restored, preRestore.VersionNumber, nil
}

func (s *PostgresStore) ListMergeRequestVersions(ctx context.Context, mergeRequestID string, skip, limit int) ([]MergeRequestVersion, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, merge_request_id, version_number, title, description, status,
			ai_validation_status, ai_validation_score, COALESCE(ai_validation_feedback, ''),
			COALESCE(ai_validation_concerns::text, '[]'), COALESCE(ai_validation_suggestions::text, '[]'),
			author_id, created_at
		FROM merge_request_versions
		WHERE merge_request_id=$1
		ORDER BY version_number DESC
		OFFSET $2 LIMIT $3
	`, mergeRequestID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list merge request versions: %w", err)
	}
	defer rows.Close()

	items := make([]MergeRequestVersion, 0)
	for rows.Next() {
		var item MergeRequestVersion
		if err := rows.Scan(
			&item.ID,
			&item.MergeRequestID,
			&item.VersionNumber,
			&item.Title,
			&item.Description,
			&item.Status,
			&item.AIValidationStatus,
			&item.AIValidationScore,
			&item.AIValidationFeedback,
			&item.AIValidationConcerns,
			&item.AIValidationSuggestions,
			&item.AuthorID,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan merge request version: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merge request versions: %w", err)
	}
	return items, nil
}

// lockMergeRequest serializes version writers for one merge request. Also
// reports sql.ErrNoRows for an unknown merge request id.
func lockMergeRequest(ctx context.Context, tx *sql.Tx, mergeRequestID string) error {
	var id string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM merge_requests WHERE id=$1 FOR UPDATE`, mergeRequestID).Scan(&id); err != nil {
		return err
	}
	return nil
}

func snapshotInTx(ctx context.Context, tx *sql.Tx, mergeRequestID, authorID string) (MergeRequestVersion, error) {
	var version MergeRequestVersion
	err := tx.QueryRowContext(ctx, `
		INSERT INTO merge_request_versions (merge_request_id, version_number, title, description, status,
			ai_validation_status, ai_validation_score, ai_validation_feedback, ai_validation_concerns, ai_validation_suggestions, author_id)
		SELECT mr.id,
			COALESCE((SELECT MAX(version_number) FROM merge_request_versions WHERE merge_request_id=mr.id), 0) + 1,
			mr.title, mr.description, mr.status,
			mr.ai_validation_status, mr.ai_validation_score, mr.ai_validation_feedback,
			mr.ai_validation_concerns, mr.ai_validation_suggestions, $2
		FROM merge_requests mr
		WHERE mr.id=$1
		RETURNING id, merge_request_id, version_number, title, description, status,
			ai_validation_status, ai_validation_score, COALESCE(ai_validation_feedback, ''),
			COALESCE(ai_validation_concerns::text, '[]'), COALESCE(ai_validation_suggestions::text, '[]'),
			author_id, created_at
	`, mergeRequestID, authorID).Scan(
		&version.ID,
		&version.MergeRequestID,
		&version.VersionNumber,
		&version.Title,
		&version.Description,
		&version.Status,
		&version.AIValidationStatus,
		&version.AIValidationScore,
		&version.AIValidationFeedback,
		&version.AIValidationConcerns,
		&version.AIValidationSuggestions,
		&version.AuthorID,
		&version.CreatedAt,
	)
	if err != nil {
		return MergeRequestVersion{}, fmt.Errorf("insert merge request version: %w", err)
	}
	return version, nil
}

const mergeRequestSelect = `
	SELECT id, title, COALESCE(description, ''), author_id, source_repo_id, target_repo_id,
		source_branch, target_branch, status,
		ai_validation_status, ai_validation_score, COALESCE(ai_validation_feedback, ''),
		COALESCE(ai_validation_concerns::text, '[]'), COALESCE(ai_validation_suggestions::text, '[]'),
		created_at, updated_at
	FROM merge_requests`

func mergeRequestFields(item *MergeRequest) []any {
	return []any{
		&item.ID,
		&item.Title,
		&item.Description,
		&item.AuthorID,
		&item.SourceRepoID,
		&item.TargetRepoID,
		&item.SourceBranch,
		&item.TargetBranch,
		&item.Status,
		&item.AIValidationStatus,
		&item.AIValidationScore,
		&item.AIValidationFeedback,
		&item.AIValidationConcerns,
		&item.AIValidationSuggestions,
		&item.CreatedAt,
		&item.UpdatedAt,
	}
}

// SaveGraphSnapshot replaces the single stored graph for a repository. The
// write is one upsert, so concurrent regenerations leave one complete
// snapshot, never a mixture.
func (s *PostgresStore) SaveGraphSnapshot(ctx context.Context, snapshot GraphSnapshot) (GraphSnapshot, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO commit_graphs (id, repository_id, graph_data, node_count, edge_count, last_updated)
		VALUES ($1, $2, $3::jsonb, $4, $5, NOW())
		ON CONFLICT (repository_id) DO UPDATE
		SET graph_data=EXCLUDED.graph_data,
			node_count=EXCLUDED.node_count,
			edge_count=EXCLUDED.edge_count,
			last_updated=NOW()
		RETURNING id, last_updated, created_at
	`, snapshot.ID, snapshot.RepositoryID, string(snapshot.Payload), snapshot.NodeCount, snapshot.EdgeCount).Scan(
		&snapshot.ID,
		&snapshot.LastUpdated,
		&snapshot.CreatedAt,
	)
	if err != nil {
		return GraphSnapshot{}, fmt.Errorf("save graph snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *PostgresStore) GetGraphSnapshot(ctx context.Context, repositoryID string) (GraphSnapshot, error) {
	var item GraphSnapshot
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, repository_id, graph_data::text, node_count, edge_count, last_updated, created_at
		FROM commit_graphs
		WHERE repository_id=$1
	`, repositoryID).Scan(
		&item.ID,
		&item.RepositoryID,
		&payload,
		&item.NodeCount,
		&item.EdgeCount,
		&item.LastUpdated,
		&item.CreatedAt,
	)
	if err != nil {
		return GraphSnapshot{}, err
	}
	item.Payload = []byte(payload)
	return item, nil
}

func (s *PostgresStore) DeleteGraphSnapshot(ctx context.Context, repositoryID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM commit_graphs WHERE repository_id=$1`, repositoryID)
	if err != nil {
		return false, fmt.Errorf("delete graph snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete graph snapshot rows: %w", err)
	}
	return affected > 0, nil
}

// GraphStatistics derives aggregate counts straight from the commit tables;
// it does not depend on a graph snapshot having been generated.
func (s *PostgresStore) GraphStatistics(ctx context.Context, repositoryID string) (GraphStatistics, error) {
	var stats GraphStatistics
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM commits c WHERE c.repository_id=$1),
			(SELECT COUNT(*) FROM commit_files cf JOIN commits c ON c.id=cf.commit_id WHERE c.repository_id=$1),
			(SELECT COUNT(DISTINCT cf.file_path) FROM commit_files cf JOIN commits c ON c.id=cf.commit_id WHERE c.repository_id=$1)
	`, repositoryID).Scan(&stats.TotalCommits, &stats.TotalFileChanges, &stats.UniqueFilePaths)
	if err != nil {
		return GraphStatistics{}, fmt.Errorf("graph statistics: %w", err)
	}
	if stats.TotalCommits > 0 {
		stats.AvgFileChangesPerCommit = float64(stats.TotalFileChanges) / float64(stats.TotalCommits)
	}
	return stats, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
