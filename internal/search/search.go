package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultCommit       ResultType = "commit"
	ResultMergeRequest ResultType = "merge_request"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type         ResultType `json:"type"`
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Snippet      string     `json:"snippet"`
	RepositoryID string     `json:"repositoryId,omitempty"`
	SHA          string     `json:"sha,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text               string
	FilterType         ResultType // empty = all types
	FilterRepositoryID string
	Limit              int
	Offset             int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push entities into a search index.
type Indexer interface {
	IndexCommit(c CommitRecord) error
	IndexMergeRequest(mr MergeRequestRecord) error
	DeleteMergeRequest(id string) error
}

// CommitRecord is the data we index for a commit.
type CommitRecord struct {
	ID           string `json:"id"`
	SHA          string `json:"sha"`
	Message      string `json:"message"`
	AuthorName   string `json:"authorName"`
	RepositoryID string `json:"repositoryId"`
}

// MergeRequestRecord is the data we index for a merge request.
type MergeRequestRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	RepositoryID string `json:"repositoryId"`
}
