// internal/library/client.go
package library

/*
 * HTTP client for the library manager's local API.
 *
 * Three read-only endpoints feed the filter service:
 *   - GET /library/info: library path and the smart folder tree
 *   - GET /folder/list:  regular folder tree, flattened into folder mappings
 *   - GET /item/list:    every item with the attributes rules read
 *
 * Every response is wrapped as {"status": "success", "data": ...}. Transport
 * failures wrap types.ErrLibraryUnavailable; non-200 statuses, non-success
 * envelopes and undecodable bodies wrap types.ErrLibraryResponse.
 *
 * Palette ratios arrive as percentages and are normalized to fractions here,
 * so the rule engine only ever sees ratios in [0,1].
 */

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/KaIKuxy/eagle-library-player/internal/core/config"
	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

const userAgent = "eagleplayer/1.0"

// Client reads folders and items from the library manager.
type Client struct {
	baseURL   string
	token     string
	pageLimit int
	http      *http.Client
	logger    zerolog.Logger
}

// NewClient builds a client from library configuration.
func NewClient(cfg config.LibraryConfig, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		token:     cfg.Token,
		pageLimit: cfg.PageLimit,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logger.With().Str("component", "library").Logger(),
	}
}

// Info is the subset of /library/info the service uses.
type Info struct {
	Path         string
	SmartFolders []types.SmartFolder
}

// Folder is one node of the regular folder tree.
type Folder struct {
	ID       types.FolderID `json:"id"`
	Name     string         `json:"name"`
	Children []Folder       `json:"children,omitempty"`
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// LibraryInfo fetches the library path and smart folder definitions.
func (c *Client) LibraryInfo(ctx context.Context) (*Info, error) {
	var data struct {
		Library struct {
			Path string `json:"path"`
		} `json:"library"`
		SmartFolders []types.SmartFolder `json:"smartFolders"`
	}
	if err := c.get(ctx, "/library/info", nil, &data); err != nil {
		return nil, err
	}

	return &Info{Path: data.Library.Path, SmartFolders: data.SmartFolders}, nil
}

// Folders fetches the regular folder tree.
func (c *Client) Folders(ctx context.Context) ([]Folder, error) {
	var folders []Folder
	if err := c.get(ctx, "/folder/list", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// FolderMappings fetches the folder tree and indexes every node by id.
func (c *Client) FolderMappings(ctx context.Context) (map[types.FolderID]types.FolderInfo, error) {
	folders, err := c.Folders(ctx)
	if err != nil {
		return nil, err
	}
	return Flatten(folders), nil
}

// Items fetches up to the configured page limit of items in library order.
func (c *Client) Items(ctx context.Context) ([]types.Item, error) {
	query := url.Values{"limit": {strconv.Itoa(c.pageLimit)}}

	var items []types.Item
	if err := c.get(ctx, "/item/list", query, &items); err != nil {
		return nil, err
	}

	NormalizeItems(items)
	if len(items) >= c.pageLimit {
		c.logger.Warn().Int("limit", c.pageLimit).Msg("item list truncated at page limit")
	}
	return items, nil
}

// Flatten indexes a folder tree by id, depth-first.
func Flatten(folders []Folder) map[types.FolderID]types.FolderInfo {
	out := make(map[types.FolderID]types.FolderInfo)
	var walk func([]Folder)
	walk = func(list []Folder) {
		for _, f := range list {
			out[f.ID] = types.FolderInfo{ID: f.ID, Name: f.Name}
			walk(f.Children)
		}
	}
	walk(folders)
	return out
}

// NormalizeItems rescales percentage palette ratios to fractions in place.
func NormalizeItems(items []types.Item) {
	for i := range items {
		normalizePalettes(items[i].Palettes)
	}
}

// normalizePalettes converts percentage ratios to fractions. A palette whose
// ratios sum to at most 1 is already fractional and left alone.
func normalizePalettes(palettes []types.Palette) {
	var sum float64
	for _, p := range palettes {
		sum += p.Ratio
	}
	if sum <= 1.0001 {
		return
	}
	for i := range palettes {
		palettes[i].Ratio /= 100
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.token != "" {
		query.Set("token", c.token)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", path, ctxErr)
		}
		return fmt.Errorf("%w: %s: %v", types.ErrLibraryUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: unexpected status code: %d", types.ErrLibraryResponse, path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: %s: invalid body: %v", types.ErrLibraryResponse, path, err)
	}
	if env.Status != "success" {
		return fmt.Errorf("%w: %s: status %q %s", types.ErrLibraryResponse, path, env.Status, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("%w: %s: invalid data: %v", types.ErrLibraryResponse, path, err)
	}

	c.logger.Debug().Str("path", path).Dur("elapsed", time.Since(start)).Msg("library request")
	return nil
}
