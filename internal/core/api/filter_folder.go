package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KaIKuxy/eagle-library-player/internal/core/db"
	"github.com/KaIKuxy/eagle-library-player/internal/rules"
	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

// FilterRequest selects a smart folder and the fonts installed on the
// requesting machine.
type FilterRequest struct {
	FolderID       types.FolderID
	InstalledFonts []string // "<postScriptName>_.<ext>" keys
}

// FilterResult lists the matching items of one filter run.
type FilterResult struct {
	RunID        types.RunID
	FolderID     types.FolderID
	FolderName   string
	ItemIDs      []types.ItemID // library order
	ItemCount    int
	MatchedCount int
	Diagnostics  []rules.Diagnostic
	Duration     time.Duration
}

// FilterFolder evaluates a stored smart folder against every library item.
// A folder missing from the store triggers one sync before giving up with
// types.ErrFolderNotFound. Invalid rules never fail the run; they are
// reported in Diagnostics and match nothing.
func (s *FilterService) FilterFolder(ctx context.Context, req FilterRequest) (*FilterResult, error) {
	if strings.TrimSpace(string(req.FolderID)) == "" {
		return nil, fmt.Errorf("%w: folder_id required", ErrInvalidRequest)
	}

	start := time.Now()
	logger := s.logger.With().Str("folder_id", string(req.FolderID)).Logger()

	stored, err := s.loadFolder(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}

	compiled, err := s.engine.Compile(&stored.Folder)
	if err != nil {
		return nil, fmt.Errorf("%w: folder %s: %v", ErrInvalidRequest, req.FolderID, err)
	}
	for _, d := range compiled.Diagnostics {
		logger.Warn().
			Int("condition", d.Condition).
			Int("rule", d.Rule).
			Str("property", d.Property).
			Str("method", d.Method).
			Err(d.Err).
			Msg("rule disabled")
	}

	var (
		items    []types.Item
		mappings map[types.FolderID]types.FolderInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.library.Items(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		mappings, err = s.library.FolderMappings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch library contents: %w", err)
	}

	evalCtx := &types.Context{
		FolderMappings: mappings,
		InstalledFonts: fontSet(req.InstalledFonts),
	}

	matched, err := s.engine.Filter(ctx, compiled, items, evalCtx)
	if err != nil {
		return nil, err
	}

	result := &FilterResult{
		FolderID:     req.FolderID,
		FolderName:   stored.Folder.Name,
		ItemIDs:      make([]types.ItemID, len(matched)),
		ItemCount:    len(items),
		MatchedCount: len(matched),
		Diagnostics:  compiled.Diagnostics,
		Duration:     time.Since(start),
	}
	for i, item := range matched {
		result.ItemIDs[i] = item.ID
	}

	run := &db.FilterRun{
		FolderID:     req.FolderID,
		ItemCount:    result.ItemCount,
		MatchedCount: result.MatchedCount,
		InvalidRules: len(compiled.Diagnostics),
		DurationMs:   result.Duration.Milliseconds(),
	}
	// Run history is advisory; a failed insert does not fail the filter.
	if err := s.store.RecordRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("failed to record filter run")
	}
	result.RunID = run.RunID

	logger.Info().
		Str("run_id", string(result.RunID)).
		Int("items", result.ItemCount).
		Int("matched", result.MatchedCount).
		Int("invalid_rules", run.InvalidRules).
		Dur("elapsed", result.Duration).
		Msg("smart folder filtered")

	return result, nil
}

// ListFolders returns the stored smart folders.
func (s *FilterService) ListFolders(ctx context.Context) ([]db.StoredFolder, error) {
	return s.store.ListFolders(ctx)
}

// ListRuns returns recent filter runs for a folder, newest first.
func (s *FilterService) ListRuns(ctx context.Context, folderID types.FolderID, limit int) ([]db.FilterRun, error) {
	if strings.TrimSpace(string(folderID)) == "" {
		return nil, fmt.Errorf("%w: folder_id required", ErrInvalidRequest)
	}
	return s.store.ListRuns(ctx, folderID, limit)
}

func (s *FilterService) loadFolder(ctx context.Context, id types.FolderID) (*db.StoredFolder, error) {
	stored, err := s.store.GetFolder(ctx, id)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, types.ErrFolderNotFound) {
		return nil, err
	}

	s.logger.Debug().Str("folder_id", string(id)).Msg("folder not in store, syncing")
	if _, err := s.SyncFolders(ctx); err != nil {
		return nil, err
	}
	return s.store.GetFolder(ctx, id)
}

func fontSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
