package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/KaIKuxy/eagle-library-player/internal/core/api"
	"github.com/KaIKuxy/eagle-library-player/internal/core/auth"
	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "List the items of a smart folder",
	Long: `Evaluates a synced smart folder against the library and prints the
matching item ids in library order. With --server the request goes to a
running filter service instead of the local store.`,
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().String("folder", "", "smart folder id (required)")
	filterCmd.Flags().StringSlice("font", nil, "installed font key <postScriptName>_.<ext> (repeatable)")
	filterCmd.Flags().String("server", "", "filter service address host:port")
	filterCmd.Flags().Bool("json", false, "print the full result as JSON")
	filterCmd.MarkFlagRequired("folder")
}

func runFilter(cmd *cobra.Command, args []string) error {
	folderID, _ := cmd.Flags().GetString("folder")
	fonts, _ := cmd.Flags().GetStringSlice("font")
	remote, _ := cmd.Flags().GetString("server")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout)
	defer cancel()

	if remote != "" {
		ctx = auth.WithAPIKey(ctx, cfg.Server.APIKey)
		return filterRemote(ctx, cmd.OutOrStdout(), remote, folderID, fonts, asJSON)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.FilterFolder(ctx, api.FilterRequest{
		FolderID:       types.FolderID(folderID),
		InstalledFonts: fonts,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		diagnostics := make([]string, len(result.Diagnostics))
		for i, d := range result.Diagnostics {
			diagnostics[i] = d.Error()
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"run_id":        result.RunID,
			"folder_id":     result.FolderID,
			"folder_name":   result.FolderName,
			"item_ids":      result.ItemIDs,
			"item_count":    result.ItemCount,
			"matched_count": result.MatchedCount,
			"diagnostics":   diagnostics,
			"duration_ms":   result.Duration.Milliseconds(),
		})
	}

	for _, id := range result.ItemIDs {
		fmt.Fprintln(out, id)
	}
	return nil
}

func filterRemote(ctx context.Context, out io.Writer, addr, folderID string, fonts []string, asJSON bool) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	resp, err := api.NewFilterServiceClient(conn).FilterFolder(ctx, folderID, fonts)
	if err != nil {
		return err
	}

	if asJSON {
		b, err := protojson.MarshalOptions{Multiline: true}.Marshal(resp)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}

	for _, v := range resp.GetFields()["item_ids"].GetListValue().GetValues() {
		fmt.Fprintln(out, v.GetStringValue())
	}
	return nil
}
