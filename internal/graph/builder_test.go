package graph

import (
	"reflect"
	"testing"
	"time"

	"caseline/api/internal/store"
)

func strPtr(s string) *string { return &s }

// twoCommitWindow returns c2 then c1, the way the store serves the build
// window (most recent first).
func twoCommitWindow() []store.CommitWithFiles {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c1 := store.CommitWithFiles{
		Commit: store.Commit{ID: "id1", SHA: "c1", Message: "add x", AuthorName: "ana", Timestamp: base},
		Files: []store.CommitFile{
			{ID: "r1", CommitID: "id1", FileID: "fx1", FilePath: "x.txt", ChangeType: "added", Additions: 3},
		},
	}
	c2 := store.CommitWithFiles{
		Commit: store.Commit{ID: "id2", SHA: "c2", Message: "edit x", AuthorName: "ana", Timestamp: base.Add(time.Minute), ParentSHA: strPtr("c1")},
		Files: []store.CommitFile{
			{ID: "r2", CommitID: "id2", FileID: "fx2", FilePath: "x.txt", ChangeType: "modified", Additions: 1, Deletions: 1},
		},
	}
	return []store.CommitWithFiles{c2, c1}
}

func TestBuildEmpty(t *testing.T) {
	snapshot := Build(nil)
	if len(snapshot.Nodes) != 0 || len(snapshot.Edges) != 0 || len(snapshot.Layout) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
	if snapshot.Nodes == nil || snapshot.Edges == nil || snapshot.Layout == nil {
		t.Fatal("empty snapshot fields must be non-nil for JSON shape")
	}
}

func TestBuildTwoCommits(t *testing.T) {
	snapshot := Build(twoCommitWindow())

	var commitNodes, fileNodes int
	for _, node := range snapshot.Nodes {
		switch node.Kind {
		case NodeCommit:
			commitNodes++
		case NodeFile:
			fileNodes++
		}
	}
	if commitNodes != 2 || fileNodes != 2 {
		t.Fatalf("expected 2 commit and 2 file nodes, got %d and %d", commitNodes, fileNodes)
	}

	counts := map[EdgeKind]int{}
	for _, edge := range snapshot.Edges {
		counts[edge.Kind]++
	}
	if counts[EdgeCommitParent] != 1 || counts[EdgeCommitToFile] != 2 || counts[EdgeFileEvolution] != 1 {
		t.Fatalf("unexpected edge counts: %+v", counts)
	}

	for _, edge := range snapshot.Edges {
		switch edge.Kind {
		case EdgeCommitParent:
			if edge.Source != "commit_c1" || edge.Target != "commit_c2" {
				t.Fatalf("parent edge should run c1 -> c2, got %s -> %s", edge.Source, edge.Target)
			}
		case EdgeFileEvolution:
			if edge.Source != "file_fx1_c1" || edge.Target != "file_fx2_c2" {
				t.Fatalf("evolution edge should run older -> newer, got %s -> %s", edge.Source, edge.Target)
			}
		}
	}
}

func TestBuildLayout(t *testing.T) {
	snapshot := Build(twoCommitWindow())

	// c2 is iterated first so it anchors the column.
	if got := snapshot.Layout["commit_c2"]; got != (Position{X: 0, Y: 0, Level: 0}) {
		t.Fatalf("commit_c2 position: %+v", got)
	}
	if got := snapshot.Layout["commit_c1"]; got != (Position{X: 0, Y: commitYSpacing, Level: 0}) {
		t.Fatalf("commit_c1 position: %+v", got)
	}

	for _, node := range snapshot.Nodes {
		if node.Kind != NodeFile {
			continue
		}
		pos := snapshot.Layout[node.ID]
		if pos.X != fileXOffset || pos.Level != 1 {
			t.Fatalf("file node %s misplaced: %+v", node.ID, pos)
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	first := Build(twoCommitWindow())
	second := Build(twoCommitWindow())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("building the same window twice produced different snapshots")
	}
}

func TestBuildDanglingParentEdge(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := []store.CommitWithFiles{
		{Commit: store.Commit{ID: "id9", SHA: "c9", Message: "tip", Timestamp: base, ParentSHA: strPtr("outside")}},
	}

	snapshot := Build(window)
	if len(snapshot.Edges) != 1 {
		t.Fatalf("expected a single parent edge, got %d", len(snapshot.Edges))
	}
	edge := snapshot.Edges[0]
	if edge.Source != "commit_outside" || edge.Target != "commit_c9" {
		t.Fatalf("dangling parent edge wrong: %s -> %s", edge.Source, edge.Target)
	}
}

func TestBuildDeletionBreaksEvolution(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mk := func(sha, recordID, changeType string, offset time.Duration) store.CommitWithFiles {
		return store.CommitWithFiles{
			Commit: store.Commit{ID: "id-" + sha, SHA: sha, Timestamp: base.Add(offset)},
			Files: []store.CommitFile{
				{ID: recordID, FileID: "f-" + recordID, FilePath: "x.txt", ChangeType: changeType},
			},
		}
	}
	// most recent first: re-added, deleted, added
	window := []store.CommitWithFiles{
		mk("c3", "r3", "added", 2*time.Minute),
		mk("c2", "r2", "deleted", time.Minute),
		mk("c1", "r1", "added", 0),
	}

	snapshot := Build(window)
	evolution := 0
	for _, edge := range snapshot.Edges {
		if edge.Kind == EdgeFileEvolution {
			evolution++
			if edge.Target == "file_f-r3_c3" {
				t.Fatalf("re-added file must not link back across a deletion: %s -> %s", edge.Source, edge.Target)
			}
		}
	}
	if evolution != 1 {
		t.Fatalf("expected one evolution edge (added -> deleted), got %d", evolution)
	}
}
