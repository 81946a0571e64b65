package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true — if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across commits and merge_requests
// using plainto_tsquery and ts_rank, with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}
	argN := 2

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultCommit {
		commitWhere := "c.fts @@ " + tsQuery
		if q.FilterRepositoryID != "" {
			commitWhere += fmt.Sprintf(" AND c.repository_id = $%d", argN)
			args = append(args, q.FilterRepositoryID)
			argN++
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'commit'::text AS type, c.id, left(c.sha, 8) AS title,
				ts_headline('english', coalesce(c.message, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				c.repository_id, c.sha,
				ts_rank(c.fts, %s) AS rank
			FROM commits c
			WHERE %s`, tsQuery, tsQuery, commitWhere))
	}

	if q.FilterType == "" || q.FilterType == ResultMergeRequest {
		mrWhere := "mr.fts @@ " + tsQuery
		if q.FilterRepositoryID != "" {
			mrWhere += fmt.Sprintf(" AND mr.target_repo_id = $%d", argN)
			args = append(args, q.FilterRepositoryID)
			argN++
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'merge_request'::text AS type, mr.id, mr.title,
				ts_headline('english', coalesce(mr.description, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				mr.target_repo_id AS repository_id, ''::text AS sha,
				ts_rank(mr.fts, %s) AS rank
			FROM merge_requests mr
			WHERE %s`, tsQuery, tsQuery, mrWhere))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, repository_id, sha
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.RepositoryID, &r.SHA); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]CommitRecord, []MergeRequestRecord, error) {
	commitRows, err := p.db.QueryContext(ctx, `
		SELECT c.id, c.sha, c.message, coalesce(u.username, ''), c.repository_id
		FROM commits c
		LEFT JOIN users u ON u.id = c.author_id
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load commits: %w", err)
	}
	defer commitRows.Close()

	commits := make([]CommitRecord, 0)
	for commitRows.Next() {
		var c CommitRecord
		if err := commitRows.Scan(&c.ID, &c.SHA, &c.Message, &c.AuthorName, &c.RepositoryID); err != nil {
			return nil, nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, c)
	}
	if err := commitRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate commits: %w", err)
	}

	mrRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, coalesce(description, ''), status, target_repo_id
		FROM merge_requests
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load merge requests: %w", err)
	}
	defer mrRows.Close()

	mrs := make([]MergeRequestRecord, 0)
	for mrRows.Next() {
		var mr MergeRequestRecord
		if err := mrRows.Scan(&mr.ID, &mr.Title, &mr.Description, &mr.Status, &mr.RepositoryID); err != nil {
			return nil, nil, fmt.Errorf("scan merge request: %w", err)
		}
		mrs = append(mrs, mr)
	}
	if err := mrRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate merge requests: %w", err)
	}

	return commits, mrs, nil
}
