package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

// folderRow is one smart_folders row. Definition holds the folder's
// conditions as JSON, without nested children.
type folderRow struct {
	FolderID   string         `db:"folder_id"`
	Name       string         `db:"name"`
	ParentID   sql.NullString `db:"parent_id"`
	Definition string         `db:"definition"`
	SyncedAt   int64          `db:"synced_at"`
}

// FilterRun summarizes one evaluation of a smart folder over the library.
type FilterRun struct {
	RunID        types.RunID    `db:"run_id"`
	FolderID     types.FolderID `db:"folder_id"`
	ItemCount    int            `db:"item_count"`
	MatchedCount int            `db:"matched_count"`
	InvalidRules int            `db:"invalid_rules"`
	DurationMs   int64          `db:"duration_ms"`
	CreatedAt    int64          `db:"created_at"` // unix milliseconds
}

// StoredFolder is a smart folder as last synced from the library.
type StoredFolder struct {
	Folder   types.SmartFolder
	ParentID types.FolderID
	SyncedAt time.Time
}

// Store persists synced smart folders and filter run history.
type Store struct {
	q   *Queries
	now func() time.Time
}

// NewStore wraps loaded queries.
func NewStore(q *Queries) *Store {
	return &Store{q: q, now: time.Now}
}

// ReplaceFolders stores the complete smart folder tree from one sync. Nested
// folders are flattened with their parent recorded. Folders absent from the
// tree are removed. Returns the number of folders stored.
func (s *Store) ReplaceFolders(ctx context.Context, roots []types.SmartFolder) (int, error) {
	syncedAt := s.now().UnixMilli()
	stored := 0

	err := s.q.InTx(ctx, func(q *Queries) error {
		var walk func(folder types.SmartFolder, parent types.FolderID) error
		walk = func(folder types.SmartFolder, parent types.FolderID) error {
			if folder.ID == "" {
				return fmt.Errorf("smart folder %q has no id", folder.Name)
			}

			definition, err := json.Marshal(folder.Conditions)
			if err != nil {
				return fmt.Errorf("failed to encode folder %s: %w", folder.ID, err)
			}

			parentID := sql.NullString{String: string(parent), Valid: parent != ""}
			if _, err := q.Exec(ctx, "upsert-smart-folder",
				string(folder.ID), folder.Name, parentID, string(definition), syncedAt); err != nil {
				return fmt.Errorf("failed to store folder %s: %w", folder.ID, err)
			}
			stored++

			for _, child := range folder.Children {
				if err := walk(child, folder.ID); err != nil {
					return err
				}
			}
			return nil
		}

		for _, root := range roots {
			if err := walk(root, ""); err != nil {
				return err
			}
		}

		if _, err := q.Exec(ctx, "delete-stale-smart-folders", syncedAt); err != nil {
			return fmt.Errorf("failed to prune folders: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return stored, nil
}

// GetFolder loads one smart folder. Returns types.ErrFolderNotFound when the
// folder was never synced or has since been removed.
func (s *Store) GetFolder(ctx context.Context, id types.FolderID) (*StoredFolder, error) {
	var row folderRow
	if err := s.q.Get(ctx, "get-smart-folder", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", types.ErrFolderNotFound, id)
		}
		return nil, fmt.Errorf("failed to load folder %s: %w", id, err)
	}
	return row.decode()
}

// ListFolders returns all stored folders ordered by name.
func (s *Store) ListFolders(ctx context.Context) ([]StoredFolder, error) {
	var rows []folderRow
	if err := s.q.Select(ctx, "list-smart-folders", &rows); err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	folders := make([]StoredFolder, 0, len(rows))
	for _, row := range rows {
		f, err := row.decode()
		if err != nil {
			return nil, err
		}
		folders = append(folders, *f)
	}
	return folders, nil
}

// RecordRun appends a filter run. RunID and CreatedAt are filled when empty.
func (s *Store) RecordRun(ctx context.Context, run *FilterRun) error {
	if run.RunID == "" {
		run.RunID = types.NewRunID()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.now().UnixMilli()
	}

	_, err := s.q.Exec(ctx, "insert-filter-run",
		string(run.RunID), string(run.FolderID), run.ItemCount, run.MatchedCount,
		run.InvalidRules, run.DurationMs, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record run for %s: %w", run.FolderID, err)
	}
	return nil
}

// ListRuns returns the most recent runs for a folder, newest first.
func (s *Store) ListRuns(ctx context.Context, folderID types.FolderID, limit int) ([]FilterRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []FilterRun
	if err := s.q.Select(ctx, "list-filter-runs", &runs, string(folderID), limit); err != nil {
		return nil, fmt.Errorf("failed to list runs for %s: %w", folderID, err)
	}
	return runs, nil
}

func (r folderRow) decode() (*StoredFolder, error) {
	var conditions []types.Condition
	if err := json.Unmarshal([]byte(r.Definition), &conditions); err != nil {
		return nil, fmt.Errorf("corrupt definition for folder %s: %w", r.FolderID, err)
	}

	return &StoredFolder{
		Folder: types.SmartFolder{
			ID:         types.FolderID(r.FolderID),
			Name:       r.Name,
			Conditions: conditions,
		},
		ParentID: types.FolderID(r.ParentID.String),
		SyncedAt: time.UnixMilli(r.SyncedAt),
	}, nil
}
