package diff

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestCompareBothNil(t *testing.T) {
	change := Compare(nil, nil)
	if change.ChangeType != ChangeModified {
		t.Fatalf("expected modified, got %s", change.ChangeType)
	}
	if change.Diff != "" {
		t.Fatalf("expected empty diff, got %q", change.Diff)
	}
	if change.SimilarityScore != 1.0 {
		t.Fatalf("expected similarity 1.0, got %f", change.SimilarityScore)
	}
}

func TestCompareAdded(t *testing.T) {
	change := Compare(nil, strPtr("hello world"))
	if change.ChangeType != ChangeAdded {
		t.Fatalf("expected added, got %s", change.ChangeType)
	}
	if !strings.HasPrefix(change.Diff, "+++ ADDED CONTENT +++\n") {
		t.Fatalf("unexpected diff prefix: %q", change.Diff)
	}
	if !strings.Contains(change.Diff, "hello world") {
		t.Fatalf("diff should contain the new content: %q", change.Diff)
	}
	if change.SimilarityScore != 0.0 {
		t.Fatalf("expected similarity 0.0, got %f", change.SimilarityScore)
	}
}

func TestCompareDeleted(t *testing.T) {
	change := Compare(strPtr("hello world"), nil)
	if change.ChangeType != ChangeDeleted {
		t.Fatalf("expected deleted, got %s", change.ChangeType)
	}
	if !strings.HasPrefix(change.Diff, "--- DELETED CONTENT ---\n") {
		t.Fatalf("unexpected diff prefix: %q", change.Diff)
	}
	if change.SimilarityScore != 0.0 {
		t.Fatalf("expected similarity 0.0, got %f", change.SimilarityScore)
	}
}

func TestCompareIdentical(t *testing.T) {
	for _, content := range []string{"", "same text\nacross lines\n"} {
		change := Compare(strPtr(content), strPtr(content))
		if change.ChangeType != ChangeModified {
			t.Fatalf("expected modified for %q, got %s", content, change.ChangeType)
		}
		if change.SimilarityScore != 1.0 {
			t.Fatalf("expected similarity 1.0 for %q, got %f", content, change.SimilarityScore)
		}
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"abcdef", "abcxyz"},
		{"the quick brown fox", "the slow brown dog"},
		{"", "nonempty"},
		{"aaa", "bbb"},
	}
	for _, pair := range pairs {
		ab := Similarity(pair[0], pair[1])
		ba := Similarity(pair[1], pair[0])
		if ab != ba {
			t.Fatalf("similarity(%q,%q)=%f but reversed=%f", pair[0], pair[1], ab, ba)
		}
	}
}

func TestSimilarityDisjoint(t *testing.T) {
	if score := Similarity("aaa", "bbb"); score != 0.0 {
		t.Fatalf("expected 0.0 for disjoint strings, got %f", score)
	}
}

func TestSimilarityPartial(t *testing.T) {
	// "abcd" vs "bcde": longest common run "bcd" (3 chars), 2*3/8 = 0.75
	if score := Similarity("abcd", "bcde"); score != 0.75 {
		t.Fatalf("expected 0.75, got %f", score)
	}
}

func TestUnifiedDiff(t *testing.T) {
	oldContent := "line1\nline2\nline3\n"
	newContent := "line1\nline2 changed\nline3\n"

	out := Unified(oldContent, newContent)

	if !strings.HasPrefix(out, "--- old_version\n+++ new_version\n") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "-line2\n") {
		t.Fatalf("missing removed line: %q", out)
	}
	if !strings.Contains(out, "+line2 changed\n") {
		t.Fatalf("missing added line: %q", out)
	}
	if !strings.Contains(out, "@@ -2,1 +2,1 @@") {
		t.Fatalf("missing hunk header: %q", out)
	}
}

func TestUnifiedDiffIdentical(t *testing.T) {
	out := Unified("same\n", "same\n")
	want := "--- old_version\n+++ new_version\n"
	if out != want {
		t.Fatalf("expected header only for identical content, got %q", out)
	}
}
