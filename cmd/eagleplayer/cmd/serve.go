package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaIKuxy/eagle-library-player/internal/core/auth"
	"github.com/KaIKuxy/eagle-library-player/internal/core/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC filter service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "127.0.0.1", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
	serveCmd.Flags().Bool("sync", true, "sync smart folders from the library on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if syncOnStart, _ := cmd.Flags().GetBool("sync"); syncOnStart {
		// Library may not be running yet; folders sync lazily on first filter.
		if _, err := a.service.SyncFolders(ctx); err != nil {
			logger.Warn().Err(err).Msg("initial smart folder sync failed")
		}
	}

	authenticator := auth.NewAuthenticator(cfg.Server.APIKey)
	grpcServer, err := server.NewGRPCServer(cfg.Server, a.service, authenticator, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info().Str("version", Version).Str("addr", cfg.Server.Address()).Msg("starting eagleplayer filter service")
	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info().Msg("shutting down gracefully")
		return grpcServer.Shutdown(ctx)
	}
}
