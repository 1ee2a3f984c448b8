// internal/core/api/grpc.go
package api

/*
 * gRPC binding for FilterService.
 *
 * The service is described by hand instead of generated stubs: every method
 * is unary and exchanges google.protobuf.Struct messages, so any gRPC client
 * with the well-known types can call it (grpcurl included).
 *
 *   /eagleplayer.filter.v1.FilterService/SyncFolders   {} -> {folders}
 *   /eagleplayer.filter.v1.FilterService/FilterFolder  {folder_id, installed_fonts} -> {run_id, item_ids, ...}
 *   /eagleplayer.filter.v1.FilterService/ListFolders   {} -> {folders: [...]}
 *   /eagleplayer.filter.v1.FilterService/ListRuns      {folder_id, limit} -> {runs: [...]}
 *
 * Field names are snake_case. Counts travel as JSON numbers.
 */

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

// FilterServiceName is the fully-qualified gRPC service name.
const FilterServiceName = "eagleplayer.filter.v1.FilterService"

// FilterServiceServer is the server API for the filter service.
type FilterServiceServer interface {
	SyncFolders(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FilterFolder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFolders(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterFilterService registers svc on s under FilterServiceName.
func RegisterFilterService(s grpc.ServiceRegistrar, svc *FilterService) {
	s.RegisterService(&filterServiceDesc, &grpcHandler{svc: svc})
}

var filterServiceDesc = grpc.ServiceDesc{
	ServiceName: FilterServiceName,
	HandlerType: (*FilterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SyncFolders", Handler: unaryHandler("SyncFolders", FilterServiceServer.SyncFolders)},
		{MethodName: "FilterFolder", Handler: unaryHandler("FilterFolder", FilterServiceServer.FilterFolder)},
		{MethodName: "ListFolders", Handler: unaryHandler("ListFolders", FilterServiceServer.ListFolders)},
		{MethodName: "ListRuns", Handler: unaryHandler("ListRuns", FilterServiceServer.ListRuns)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eagleplayer/filter/v1/filter.proto",
}

type structMethod func(FilterServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call structMethod) grpc.MethodHandler {
	fullMethod := "/" + FilterServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FilterServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FilterServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// grpcHandler adapts FilterService to Struct messages.
type grpcHandler struct {
	svc *FilterService
}

func (h *grpcHandler) SyncFolders(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	n, err := h.svc.SyncFolders(ctx)
	if err != nil {
		return nil, Status(err)
	}
	return newStruct(map[string]any{"folders": n})
}

func (h *grpcHandler) FilterFolder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := h.svc.FilterFolder(ctx, FilterRequest{
		FolderID:       types.FolderID(stringField(req, "folder_id")),
		InstalledFonts: stringList(req, "installed_fonts"),
	})
	if err != nil {
		return nil, Status(err)
	}

	ids := make([]any, len(result.ItemIDs))
	for i, id := range result.ItemIDs {
		ids[i] = string(id)
	}
	diagnostics := make([]any, len(result.Diagnostics))
	for i, d := range result.Diagnostics {
		diagnostics[i] = d.Error()
	}

	return newStruct(map[string]any{
		"run_id":        string(result.RunID),
		"folder_id":     string(result.FolderID),
		"folder_name":   result.FolderName,
		"item_ids":      ids,
		"item_count":    result.ItemCount,
		"matched_count": result.MatchedCount,
		"diagnostics":   diagnostics,
		"duration_ms":   result.Duration.Milliseconds(),
	})
}

func (h *grpcHandler) ListFolders(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	folders, err := h.svc.ListFolders(ctx)
	if err != nil {
		return nil, Status(err)
	}

	list := make([]any, len(folders))
	for i, f := range folders {
		list[i] = map[string]any{
			"id":         string(f.Folder.ID),
			"name":       f.Folder.Name,
			"parent_id":  string(f.ParentID),
			"conditions": len(f.Folder.Conditions),
			"synced_at":  f.SyncedAt.UTC().Format(time.RFC3339),
		}
	}
	return newStruct(map[string]any{"folders": list})
}

func (h *grpcHandler) ListRuns(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runs, err := h.svc.ListRuns(ctx, types.FolderID(stringField(req, "folder_id")), int(numberField(req, "limit")))
	if err != nil {
		return nil, Status(err)
	}

	list := make([]any, len(runs))
	for i, r := range runs {
		list[i] = map[string]any{
			"run_id":        string(r.RunID),
			"folder_id":     string(r.FolderID),
			"item_count":    r.ItemCount,
			"matched_count": r.MatchedCount,
			"invalid_rules": r.InvalidRules,
			"duration_ms":   r.DurationMs,
			"created_at":    time.UnixMilli(r.CreatedAt).UTC().Format(time.RFC3339),
		}
	}
	return newStruct(map[string]any{"runs": list})
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}
	return s, nil
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func numberField(s *structpb.Struct, key string) float64 {
	return s.GetFields()[key].GetNumberValue()
}

func stringList(s *structpb.Struct, key string) []string {
	values := s.GetFields()[key].GetListValue().GetValues()
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if str := v.GetStringValue(); str != "" {
			out = append(out, str)
		}
	}
	return out
}
