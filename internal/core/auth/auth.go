// Package auth guards the filter service with an optional shared API key.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// MetadataKey carries the API key on each call.
const MetadataKey = "x-api-key"

// healthService stays open so orchestrators can probe without a key.
const healthService = "/grpc.health.v1.Health/"

// Authenticator checks the x-api-key metadata against the configured key.
// Keys are compared as SHA-256 digests in constant time.
type Authenticator struct {
	digest  [sha256.Size]byte
	enabled bool
}

// NewAuthenticator returns an authenticator for apiKey. An empty key disables
// authentication.
func NewAuthenticator(apiKey string) *Authenticator {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &Authenticator{}
	}
	return &Authenticator{digest: sha256.Sum256([]byte(apiKey)), enabled: true}
}

// Enabled reports whether calls must carry a key.
func (a *Authenticator) Enabled() bool {
	return a.enabled
}

// Authenticate validates one presented key.
func (a *Authenticator) Authenticate(apiKey string) error {
	if !a.enabled {
		return nil
	}
	if apiKey == "" {
		return ErrMissingKey
	}
	presented := sha256.Sum256([]byte(apiKey))
	if subtle.ConstantTimeCompare(presented[:], a.digest[:]) != 1 {
		return ErrInvalidKey
	}
	return nil
}

// UnaryInterceptor rejects calls without a valid key. Health checks pass.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !a.enabled || strings.HasPrefix(info.FullMethod, healthService) {
			return handler(ctx, req)
		}

		var key string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if keys := md.Get(MetadataKey); len(keys) > 0 {
				key = keys[0]
			}
		}

		if err := a.Authenticate(key); err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(ctx, req)
	}
}

// WithAPIKey attaches apiKey to outgoing calls made with ctx.
func WithAPIKey(ctx context.Context, apiKey string) context.Context {
	if apiKey == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, MetadataKey, apiKey)
}
