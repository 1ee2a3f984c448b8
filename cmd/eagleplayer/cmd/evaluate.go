package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaIKuxy/eagle-library-player/internal/library"
	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a smart folder file against an items file, offline",
	Long: `Evaluates a smart folder definition (JSON) against exported items (a JSON
array, or an /item/list response) without contacting the library or the
database. Matching item ids are printed in input order; rule diagnostics go
to the log.`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().String("folder-file", "", "smart folder JSON file (required)")
	evaluateCmd.Flags().String("items-file", "", "items JSON file (required)")
	evaluateCmd.Flags().String("folders-file", "", "folder tree JSON file for folderName rules")
	evaluateCmd.Flags().StringSlice("font", nil, "installed font key <postScriptName>_.<ext> (repeatable)")
	evaluateCmd.MarkFlagRequired("folder-file")
	evaluateCmd.MarkFlagRequired("items-file")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	folderFile, _ := cmd.Flags().GetString("folder-file")
	itemsFile, _ := cmd.Flags().GetString("items-file")
	foldersFile, _ := cmd.Flags().GetString("folders-file")
	fonts, _ := cmd.Flags().GetStringSlice("font")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var folder types.SmartFolder
	if err := readJSON(folderFile, &folder); err != nil {
		return err
	}
	var items []types.Item
	if err := readJSON(itemsFile, &items); err != nil {
		return err
	}
	library.NormalizeItems(items)

	evalCtx := &types.Context{InstalledFonts: make(map[string]bool, len(fonts))}
	for _, f := range fonts {
		evalCtx.InstalledFonts[f] = true
	}
	if foldersFile != "" {
		var tree []library.Folder
		if err := readJSON(foldersFile, &tree); err != nil {
			return err
		}
		evalCtx.FolderMappings = library.Flatten(tree)
	}

	engine, err := newEngine(cfg.Engine)
	if err != nil {
		return err
	}
	defer engine.Close()

	compiled, err := engine.Compile(&folder)
	if err != nil {
		return fmt.Errorf("invalid smart folder: %w", err)
	}
	for _, d := range compiled.Diagnostics {
		logger.Warn().Err(d).Msg("rule disabled")
	}

	matched, err := engine.Filter(context.Background(), compiled, items, evalCtx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, item := range matched {
		fmt.Fprintln(out, item.ID)
	}
	logger.Info().Int("items", len(items)).Int("matched", len(matched)).Msg("evaluated")
	return nil
}

// readJSON decodes path into dest, unwrapping a {"status","data"} envelope
// when present.
func readJSON(path string, dest any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var env struct {
			Status string          `json:"status"`
			Data   json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err == nil && env.Status != "" && len(env.Data) > 0 {
			raw = env.Data
		}
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
