// Package diff compares two versions of extracted document text and
// classifies the change. It is pure: no store access, no side effects.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeType classifies a document comparison.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// DocumentChange is the result of comparing two content versions.
// SimilarityScore is only meaningful for modified changes; it is 0 for
// added and deleted by convention.
type DocumentChange struct {
	ChangeType      ChangeType `json:"changeType"`
	OldContent      *string    `json:"oldContent"`
	NewContent      *string    `json:"newContent"`
	Diff            string     `json:"diff"`
	SimilarityScore float64    `json:"similarityScore"`
}

// Compare classifies the transition from oldContent to newContent.
// A nil pointer means the content did not exist on that side. Both nil is a
// valid no-op: modified with an empty diff and similarity 1.0.
func Compare(oldContent, newContent *string) DocumentChange {
	if oldContent == nil && newContent == nil {
		return DocumentChange{ChangeType: ChangeModified, Diff: "", SimilarityScore: 1.0}
	}

	if oldContent == nil {
		return DocumentChange{
			ChangeType:      ChangeAdded,
			NewContent:      newContent,
			Diff:            "+++ ADDED CONTENT +++\n" + *newContent,
			SimilarityScore: 0.0,
		}
	}

	if newContent == nil {
		return DocumentChange{
			ChangeType:      ChangeDeleted,
			OldContent:      oldContent,
			Diff:            "--- DELETED CONTENT ---\n" + *oldContent,
			SimilarityScore: 0.0,
		}
	}

	return DocumentChange{
		ChangeType:      ChangeModified,
		OldContent:      oldContent,
		NewContent:      newContent,
		Diff:            Unified(*oldContent, *newContent),
		SimilarityScore: Similarity(*oldContent, *newContent),
	}
}

// Similarity is the Ratcliff/Obershelp ratio between two strings:
// 2 * matched / (len(a) + len(b)), in [0, 1]. Identical strings score 1.0,
// fully disjoint strings 0.0. The pair is evaluated in a canonical order so
// the score is symmetric in its arguments.
func Similarity(a, b string) float64 {
	left := []rune(a)
	right := []rune(b)
	total := len(left) + len(right)
	if total == 0 {
		return 1.0
	}
	if b < a {
		left, right = right, left
	}
	matched := matchedChars(left, 0, len(left), right, 0, len(right))
	return 2.0 * float64(matched) / float64(total)
}

// matchedChars finds the longest common contiguous run between the two
// slices, then recurses on the remainders to the left and right of it.
func matchedChars(a []rune, alo, ahi int, b []rune, blo, bhi int) int {
	i, j, size := longestMatch(a, alo, ahi, b, blo, bhi)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchedChars(a, alo, i, b, blo, j)
	matched += matchedChars(a, i+size, ahi, b, j+size, bhi)
	return matched
}

func longestMatch(a []rune, alo, ahi int, b []rune, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	// lengths[j] = length of the common run ending at a[i] and b[j]
	lengths := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			length := lengths[j-1] + 1
			next[j] = length
			if length > bestsize {
				besti = i - length + 1
				bestj = j - length + 1
				bestsize = length
			}
		}
		lengths = next
	}
	return besti, bestj, bestsize
}

// Unified renders a line-based, zero-context unified diff between two
// contents, with the standard ---/+++ header and @@ hunk markers. Line
// terminators are preserved within diff lines.
func Unified(oldContent, newContent string) string {
	dmp := diffmatchpatch.New()
	oldRunes, newRunes, lineArray := dmp.DiffLinesToRunes(oldContent, newContent)
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var sb strings.Builder
	sb.WriteString("--- old_version\n")
	sb.WriteString("+++ new_version\n")

	oldLine := 1
	newLine := 1
	index := 0
	for index < len(diffs) {
		if diffs[index].Type == diffmatchpatch.DiffEqual {
			count := lineCount(diffs[index].Text)
			oldLine += count
			newLine += count
			index++
			continue
		}

		// group the run of consecutive deletions and insertions into one hunk
		var removed, added []string
		for index < len(diffs) && diffs[index].Type != diffmatchpatch.DiffEqual {
			lines := splitLines(diffs[index].Text)
			if diffs[index].Type == diffmatchpatch.DiffDelete {
				removed = append(removed, lines...)
			} else {
				added = append(added, lines...)
			}
			index++
		}

		sb.WriteString(hunkHeader(oldLine, len(removed), newLine, len(added)))
		for _, line := range removed {
			sb.WriteString("-" + ensureNewline(line))
		}
		for _, line := range added {
			sb.WriteString("+" + ensureNewline(line))
		}
		oldLine += len(removed)
		newLine += len(added)
	}

	return sb.String()
}

func hunkHeader(oldStart, oldCount, newStart, newCount int) string {
	if oldCount == 0 {
		oldStart--
	}
	if newCount == 0 {
		newStart--
	}
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
}

// splitLines splits text into lines keeping each line's terminator.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:idx+1])
		text = text[idx+1:]
		if text == "" {
			break
		}
	}
	return lines
}

func lineCount(text string) int {
	return len(splitLines(text))
}

func ensureNewline(line string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}
	return line + "\n"
}
