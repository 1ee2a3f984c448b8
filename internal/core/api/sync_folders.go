package api

import (
	"context"
	"fmt"
	"time"
)

// SyncFolders replaces the stored smart folder tree with the library
// manager's current one and returns the number of folders stored, nested
// folders included.
func (s *FilterService) SyncFolders(ctx context.Context) (int, error) {
	start := time.Now()

	info, err := s.library.LibraryInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch library info: %w", err)
	}

	stored, err := s.store.ReplaceFolders(ctx, info.SmartFolders)
	if err != nil {
		return 0, fmt.Errorf("failed to store smart folders: %w", err)
	}

	s.logger.Info().
		Str("library", info.Path).
		Int("folders", stored).
		Dur("elapsed", time.Since(start)).
		Msg("smart folders synced")

	return stored, nil
}
