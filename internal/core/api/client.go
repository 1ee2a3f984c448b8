package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// FilterServiceClient calls a remote filter service.
type FilterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFilterServiceClient wraps an established connection.
func NewFilterServiceClient(cc grpc.ClientConnInterface) *FilterServiceClient {
	return &FilterServiceClient{cc: cc}
}

func (c *FilterServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+FilterServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SyncFolders asks the server to resync smart folders.
func (c *FilterServiceClient) SyncFolders(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SyncFolders", nil, opts...)
}

// FilterFolder runs a smart folder on the server.
func (c *FilterServiceClient) FilterFolder(ctx context.Context, folderID string, installedFonts []string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	fonts := make([]any, len(installedFonts))
	for i, f := range installedFonts {
		fonts[i] = f
	}
	in, err := structpb.NewStruct(map[string]any{
		"folder_id":       folderID,
		"installed_fonts": fonts,
	})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "FilterFolder", in, opts...)
}

// ListFolders lists the server's stored smart folders.
func (c *FilterServiceClient) ListFolders(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListFolders", nil, opts...)
}

// ListRuns lists recent runs of a folder.
func (c *FilterServiceClient) ListRuns(ctx context.Context, folderID string, limit int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"folder_id": folderID, "limit": limit})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "ListRuns", in, opts...)
}
