// Package lineage threads file versions across a repository's commit
// history into per-path chains, linking each commit file record to its
// immediate predecessor.
package lineage

import (
	"caseline/api/internal/diff"
	"caseline/api/internal/store"
)

type tail struct {
	recordID string
	deleted  bool
}

// Link walks commits in ascending timestamp order and sets PreviousFileID
// on every file record that has an earlier record for the same path.
// The tail map is built fresh on every call, so relinking the same history
// is idempotent. A deleted record still becomes the tail for its path, but
// nothing links back to it: deletion terminates the chain, and a later
// re-addition of the same path starts a fresh lineage segment.
//
// Returns the flat list of updated file records so the caller can persist
// the new pointers.
func Link(commits []store.CommitWithFiles) []store.CommitFile {
	tails := make(map[string]tail)
	updated := make([]store.CommitFile, 0)

	for ci := range commits {
		for fi := range commits[ci].Files {
			file := &commits[ci].Files[fi]
			if prev, ok := tails[file.FilePath]; ok && !prev.deleted {
				id := prev.recordID
				file.PreviousFileID = &id
			} else {
				file.PreviousFileID = nil
			}
			tails[file.FilePath] = tail{
				recordID: file.ID,
				deleted:  file.ChangeType == "deleted",
			}
			updated = append(updated, *file)
		}
	}

	return updated
}

// EnrichDiffs fills DiffContent on modified records whose old and new
// content is known to the caller. Content lookup is delegated because the
// engine does not own file storage.
func EnrichDiffs(commits []store.CommitWithFiles, lookup func(recordID string) *string) {
	if lookup == nil {
		return
	}
	for ci := range commits {
		for fi := range commits[ci].Files {
			file := &commits[ci].Files[fi]
			if file.DiffContent != "" {
				continue
			}
			var oldContent *string
			if file.PreviousFileID != nil {
				oldContent = lookup(*file.PreviousFileID)
			}
			newContent := lookup(file.ID)
			if oldContent == nil && newContent == nil {
				continue
			}
			file.DiffContent = diff.Compare(oldContent, newContent).Diff
		}
	}
}
