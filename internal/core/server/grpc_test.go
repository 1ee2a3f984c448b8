package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/KaIKuxy/eagle-library-player/internal/core/api"
	"github.com/KaIKuxy/eagle-library-player/internal/core/auth"
	"github.com/KaIKuxy/eagle-library-player/internal/core/config"
	"github.com/KaIKuxy/eagle-library-player/internal/core/db"
	"github.com/KaIKuxy/eagle-library-player/internal/library"
	"github.com/KaIKuxy/eagle-library-player/internal/rules"
	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

// slowLibrary blocks until the request context ends.
type slowLibrary struct{}

func (slowLibrary) LibraryInfo(ctx context.Context) (*library.Info, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowLibrary) FolderMappings(ctx context.Context) (map[types.FolderID]types.FolderInfo, error) {
	return nil, nil
}

func (slowLibrary) Items(ctx context.Context) ([]types.Item, error) {
	return nil, nil
}

type emptyStore struct{}

func (emptyStore) ReplaceFolders(ctx context.Context, roots []types.SmartFolder) (int, error) {
	return 0, nil
}

func (emptyStore) GetFolder(ctx context.Context, id types.FolderID) (*db.StoredFolder, error) {
	return nil, types.ErrFolderNotFound
}

func (emptyStore) ListFolders(ctx context.Context) ([]db.StoredFolder, error) {
	return nil, nil
}

func (emptyStore) RecordRun(ctx context.Context, run *db.FilterRun) error {
	return nil
}

func (emptyStore) ListRuns(ctx context.Context, folderID types.FolderID, limit int) ([]db.FilterRun, error) {
	return nil, nil
}

func startTestServer(t *testing.T, timeout time.Duration, apiKey string) (*GRPCServer, *grpc.ClientConn) {
	t.Helper()

	engine, err := rules.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(engine.Close)

	svc, err := api.NewFilterService(slowLibrary{}, emptyStore{}, engine, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFilterService() error = %v", err)
	}

	cfg := config.ServerConfig{Host: "127.0.0.1", Port: 0, RequestTimeout: timeout}
	srv, err := NewGRPCServer(cfg, svc, auth.NewAuthenticator(apiKey), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGRPCServer() error = %v", err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	go srv.Serve(lis)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc.NewClient() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return srv, conn
}

func TestNewGRPCServer_Validation(t *testing.T) {
	if _, err := NewGRPCServer(config.ServerConfig{RequestTimeout: time.Second}, nil, auth.NewAuthenticator(""), zerolog.Nop()); err == nil {
		t.Error("NewGRPCServer(nil service) error = nil")
	}
}

func TestGRPCServer_HealthAndShutdown(t *testing.T) {
	srv, conn := startTestServer(t, time.Second, "k3y")
	health := grpc_health_v1.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: api.FilterServiceName})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("Status = %v, want SERVING", resp.Status)
	}

	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestGRPCServer_RequestTimeout(t *testing.T) {
	srv, conn := startTestServer(t, 50*time.Millisecond, "")
	defer srv.Shutdown(context.Background())

	client := api.NewFilterServiceClient(conn)
	_, err := client.SyncFolders(context.Background())
	if got := status.Code(err); got != codes.DeadlineExceeded {
		t.Errorf("SyncFolders() code = %v, want DeadlineExceeded (err %v)", got, err)
	}
}

func TestGRPCServer_APIKey(t *testing.T) {
	srv, conn := startTestServer(t, time.Second, "k3y")
	defer srv.Shutdown(context.Background())

	client := api.NewFilterServiceClient(conn)

	_, err := client.ListFolders(context.Background())
	if got := status.Code(err); got != codes.Unauthenticated {
		t.Errorf("ListFolders() without key code = %v, want Unauthenticated", got)
	}

	resp, err := client.ListFolders(auth.WithAPIKey(context.Background(), "k3y"))
	if err != nil {
		t.Fatalf("ListFolders() with key error = %v", err)
	}
	if n := len(resp.GetFields()["folders"].GetListValue().GetValues()); n != 0 {
		t.Errorf("folders = %d, want 0", n)
	}
}

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{host: "127.0.0.1", want: true},
		{host: "::1", want: true},
		{host: "localhost", want: true},
		{host: "0.0.0.0", want: false},
		{host: "192.168.1.10", want: false},
	}
	for _, tt := range tests {
		if got := isLoopback(tt.host); got != tt.want {
			t.Errorf("isLoopback(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
