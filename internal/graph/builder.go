// Package graph materializes a repository's recent commit history as a
// node/edge graph with a deterministic schematic layout, ready for the
// visualization frontend.
package graph

import (
	"fmt"
	"time"

	"caseline/api/internal/store"
)

// NodeKind discriminates the two node variants.
type NodeKind string

const (
	NodeCommit NodeKind = "commit"
	NodeFile   NodeKind = "file"
)

// EdgeKind discriminates the three relationship variants.
type EdgeKind string

const (
	EdgeCommitParent  EdgeKind = "commit_parent"
	EdgeCommitToFile  EdgeKind = "commit_to_file"
	EdgeFileEvolution EdgeKind = "file_evolution"
)

// Node ids are derived from source data only, so rebuilding the graph from
// identical commits yields identical ids.
type Node struct {
	ID       string         `json:"id"`
	Kind     NodeKind       `json:"type"`
	Label    string         `json:"label"`
	Metadata map[string]any `json:"metadata"`
}

// Edge targets are not validated against the node set: a parent commit
// outside the build window produces a dangling source, which consumers
// tolerate.
type Edge struct {
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Kind     EdgeKind       `json:"type"`
	Metadata map[string]any `json:"metadata"`
}

// Position is one entry of the layout map.
type Position struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Level int `json:"level"`
}

// Snapshot is the full materialized graph payload.
type Snapshot struct {
	Nodes  []Node              `json:"nodes"`
	Edges  []Edge              `json:"edges"`
	Layout map[string]Position `json:"layout"`
}

const (
	commitYSpacing = 200
	fileXOffset    = 300
	fileYSpacing   = 50
	fileBandSize   = 5
)

// Build produces the graph for the given commits, expected most recent
// first (the caller bounds the window with its max-commits setting).
// An empty commit list yields an empty snapshot, never an error.
func Build(commits []store.CommitWithFiles) Snapshot {
	snapshot := Snapshot{
		Nodes:  []Node{},
		Edges:  []Edge{},
		Layout: map[string]Position{},
	}
	if len(commits) == 0 {
		return snapshot
	}

	for _, commit := range commits {
		node := Node{
			ID:    CommitNodeID(commit.SHA),
			Kind:  NodeCommit,
			Label: commitLabel(commit.Commit),
			Metadata: map[string]any{
				"sha":       commit.SHA,
				"message":   commit.Message,
				"author":    authorName(commit.Commit),
				"timestamp": commit.Timestamp.UTC().Format(time.RFC3339),
				"parentSha": derefOrEmpty(commit.ParentSHA),
			},
		}
		snapshot.Nodes = append(snapshot.Nodes, node)

		if commit.ParentSHA != nil && *commit.ParentSHA != "" {
			snapshot.Edges = append(snapshot.Edges, Edge{
				Source:   CommitNodeID(*commit.ParentSHA),
				Target:   node.ID,
				Kind:     EdgeCommitParent,
				Metadata: map[string]any{"relationship": "parent_child"},
			})
		}
	}

	// file nodes + evolution edges, window-local tail pointers per path.
	// The window arrives most recent first, so walk it backwards to thread
	// evolution edges from older file nodes to newer ones.
	type tail struct {
		nodeID  string
		deleted bool
	}
	tails := make(map[string]tail)

	for ci := len(commits) - 1; ci >= 0; ci-- {
		commit := commits[ci]
		for _, file := range commit.Files {
			fileNodeID := FileNodeID(file.FileID, commit.SHA)
			snapshot.Nodes = append(snapshot.Nodes, Node{
				ID:    fileNodeID,
				Kind:  NodeFile,
				Label: fmt.Sprintf("%s (%s)", file.FilePath, file.ChangeType),
				Metadata: map[string]any{
					"filePath":   file.FilePath,
					"changeType": file.ChangeType,
					"additions":  file.Additions,
					"deletions":  file.Deletions,
					"commitSha":  commit.SHA,
				},
			})

			snapshot.Edges = append(snapshot.Edges, Edge{
				Source:   CommitNodeID(commit.SHA),
				Target:   fileNodeID,
				Kind:     EdgeCommitToFile,
				Metadata: map[string]any{"relationship": "contains"},
			})

			if prev, ok := tails[file.FilePath]; ok && !prev.deleted {
				snapshot.Edges = append(snapshot.Edges, Edge{
					Source: prev.nodeID,
					Target: fileNodeID,
					Kind:   EdgeFileEvolution,
					Metadata: map[string]any{
						"relationship": "evolved_from",
						"changeType":   file.ChangeType,
					},
				})
			}
			tails[file.FilePath] = tail{
				nodeID:  fileNodeID,
				deleted: file.ChangeType == "deleted",
			}
		}
	}

	snapshot.Layout = layout(snapshot.Nodes)
	return snapshot
}

// layout stacks commit nodes in one vertical column in iteration order and
// places file nodes at a fixed offset to the right of their commit,
// wrapping vertically in small bands. Schematic placement only: it avoids
// overlap for moderate node counts, it does not minimize edge crossings.
func layout(nodes []Node) map[string]Position {
	positions := make(map[string]Position, len(nodes))

	commitIndex := 0
	fileIndex := 0
	for _, node := range nodes {
		switch node.Kind {
		case NodeCommit:
			positions[node.ID] = Position{X: 0, Y: commitIndex * commitYSpacing, Level: 0}
			commitIndex++
		case NodeFile:
			commitY := 0
			if sha, ok := node.Metadata["commitSha"].(string); ok {
				commitY = positions[CommitNodeID(sha)].Y
			}
			positions[node.ID] = Position{
				X:     fileXOffset,
				Y:     commitY + (fileIndex%fileBandSize)*fileYSpacing,
				Level: 1,
			}
			fileIndex++
		}
	}
	return positions
}

func CommitNodeID(sha string) string {
	return "commit_" + sha
}

func FileNodeID(fileID, sha string) string {
	return fmt.Sprintf("file_%s_%s", fileID, sha)
}

func commitLabel(commit store.Commit) string {
	sha := commit.SHA
	if len(sha) > 8 {
		sha = sha[:8]
	}
	message := commit.Message
	if len(message) > 50 {
		message = message[:50]
	}
	return fmt.Sprintf("%s: %s...", sha, message)
}

func authorName(commit store.Commit) string {
	if commit.AuthorName != "" {
		return commit.AuthorName
	}
	return "Unknown"
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
