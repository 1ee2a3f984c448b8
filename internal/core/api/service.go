// Package api implements the smart folder filter service behind the gRPC
// transport and the CLI.
package api

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/KaIKuxy/eagle-library-player/internal/core/db"
	"github.com/KaIKuxy/eagle-library-player/internal/library"
	"github.com/KaIKuxy/eagle-library-player/internal/rules"
	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

// Library is the read side of the library manager API.
type Library interface {
	LibraryInfo(ctx context.Context) (*library.Info, error)
	FolderMappings(ctx context.Context) (map[types.FolderID]types.FolderInfo, error)
	Items(ctx context.Context) ([]types.Item, error)
}

// FolderStore persists synced folders and run history.
type FolderStore interface {
	ReplaceFolders(ctx context.Context, roots []types.SmartFolder) (int, error)
	GetFolder(ctx context.Context, id types.FolderID) (*db.StoredFolder, error)
	ListFolders(ctx context.Context) ([]db.StoredFolder, error)
	RecordRun(ctx context.Context, run *db.FilterRun) error
	ListRuns(ctx context.Context, folderID types.FolderID, limit int) ([]db.FilterRun, error)
}

// FilterService syncs smart folder definitions from the library manager and
// evaluates them against the library's items.
// Thin orchestration layer over library, store and rules engine.
type FilterService struct {
	library Library
	store   FolderStore
	engine  *rules.Engine
	logger  zerolog.Logger
}

// NewFilterService wires the service dependencies.
func NewFilterService(lib Library, store FolderStore, engine *rules.Engine, logger zerolog.Logger) (*FilterService, error) {
	if lib == nil {
		return nil, fmt.Errorf("library cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}

	return &FilterService{
		library: lib,
		store:   store,
		engine:  engine,
		logger:  logger.With().Str("component", "filter_service").Logger(),
	}, nil
}
