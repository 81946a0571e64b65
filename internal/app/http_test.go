package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caseline/api/internal/store"
)

func newTestServer(fs *fakeStore) http.Handler {
	service := NewService(fs, nil, nil, testConfig())
	return NewHTTPServer(service, "*").Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(&fakeStore{})

	resp := doRequest(t, handler, http.MethodGet, "/api/health", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler := newTestServer(&fakeStore{})

	resp := doRequest(t, handler, http.MethodGet, "/api/health", "")
	if resp.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	handler := newTestServer(&fakeStore{})

	resp := doRequest(t, handler, http.MethodGet, "/api/nope", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestGetMergeRequestNotFound(t *testing.T) {
	handler := newTestServer(&fakeStore{})

	resp := doRequest(t, handler, http.MethodGet, "/api/merge-requests/mr-404", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != "NOT_FOUND" {
		t.Fatalf("unexpected error code: %v", body["code"])
	}
}

func TestCreateCommitEndpoint(t *testing.T) {
	handler := newTestServer(&fakeStore{})

	resp := doRequest(t, handler, http.MethodPost, "/api/repositories/repo-1/commits",
		`{"sha":"abc123","message":"add doc","authorName":"ana","files":[{"filePath":"doc.md","newContent":"hi"}]}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var body CommitPayload
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.SHA != "abc123" {
		t.Fatalf("unexpected sha: %s", body.SHA)
	}
	if len(body.Files) != 1 || body.Files[0].ChangeType != "added" {
		t.Fatalf("unexpected files: %+v", body.Files)
	}
}

func TestCreateCommitValidation(t *testing.T) {
	handler := newTestServer(&fakeStore{})

	resp := doRequest(t, handler, http.MethodPost, "/api/repositories/repo-1/commits", `{"message":"no sha"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestListCommitsBadPagination(t *testing.T) {
	handler := newTestServer(&fakeStore{})

	resp := doRequest(t, handler, http.MethodGet, "/api/repositories/repo-1/commits?limit=abc", "")
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestRestoreEndpointShape(t *testing.T) {
	fs := &fakeStore{
		getMergeRequestFn: func(context.Context, string) (store.MergeRequest, error) {
			return store.MergeRequest{ID: "mr-1", AuthorID: "user-1"}, nil
		},
		restoreMergeRequestVersionFn: func(_ context.Context, id string, version int, _ string) (store.MergeRequest, int, error) {
			return store.MergeRequest{ID: id, Title: "restored"}, 4, nil
		},
	}
	handler := newTestServer(fs)

	resp := doRequest(t, handler, http.MethodPost, "/api/merge-requests/mr-1/restore/2", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		MergeRequest      MergeRequestPayload `json:"mergeRequest"`
		RestoredVersion   int                 `json:"restoredVersion"`
		PreRestoreVersion int                 `json:"preRestoreVersion"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.MergeRequest.Title != "restored" || body.RestoredVersion != 2 || body.PreRestoreVersion != 4 {
		t.Fatalf("unexpected payload: %+v", body)
	}
}

func TestRestoreEndpointBadVersion(t *testing.T) {
	handler := newTestServer(&fakeStore{})

	resp := doRequest(t, handler, http.MethodPost, "/api/merge-requests/mr-1/restore/two", "")
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestGraphEndpoint(t *testing.T) {
	handler := newTestServer(&fakeStore{})

	resp := doRequest(t, handler, http.MethodGet, "/api/repositories/repo-1/graph", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body GraphPayload
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	var snapshot struct {
		Nodes []any `json:"nodes"`
		Edges []any `json:"edges"`
	}
	if err := json.Unmarshal(body.Graph, &snapshot); err != nil {
		t.Fatalf("decode graph: %v", err)
	}
	if len(snapshot.Nodes) != 0 || len(snapshot.Edges) != 0 {
		t.Fatalf("empty repository should yield an empty graph: %+v", snapshot)
	}
}

func TestCompareEndpoint(t *testing.T) {
	handler := newTestServer(&fakeStore{})

	resp := doRequest(t, handler, http.MethodPost, "/api/compare", `{"newContent":"hello"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		ChangeType string `json:"changeType"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ChangeType != "added" {
		t.Fatalf("expected added, got %q", body.ChangeType)
	}
}
