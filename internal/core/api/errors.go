package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

// ErrInvalidRequest indicates a request the service cannot act on.
var ErrInvalidRequest = errors.New("invalid request")

// Status maps service errors to gRPC status:
//   - unknown folder: NOT_FOUND
//   - validation and folder limit errors: INVALID_ARGUMENT
//   - library manager and database failures: UNAVAILABLE
//   - context timeouts: DEADLINE_EXCEEDED, cancellation: CANCELED
func Status(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, types.ErrFolderNotFound):
		code = codes.NotFound
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, types.ErrTooManyConditions),
		errors.Is(err, types.ErrTooManyRules):
		code = codes.InvalidArgument
	default:
		// Library manager and database failures
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}
