package grpcapi

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"

	"github.com/example/mentor-platform/internal/platform/auth"
)

// NewServer builds a gRPC server exposing ModerationService, the standard
// health service and reflection. ModerationService calls must carry an
// "authorization: Bearer <token>" metadata entry accepted by verifier. The
// health status of ServiceName starts SERVING; callers flip it during
// shutdown.
func NewServer(svc *ModerationService, verifier auth.JWTVerifier, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	chain := grpc.ChainUnaryInterceptor(recoverInterceptor(svc.Log), authInterceptor(verifier))
	srv := grpc.NewServer(append([]grpc.ServerOption{chain}, opts...)...)
	RegisterModerationServer(srv, svc)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	reflection.Register(srv)
	return srv, hs
}

// authInterceptor verifies the bearer token of ModerationService calls and
// stores the token's user id and role in the context. Identity metadata sent
// by the client is ignored. Health checks pass through.
func authInterceptor(verifier auth.JWTVerifier) grpc.UnaryServerInterceptor {
	prefix := "/" + ServiceName + "/"
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, prefix) {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		var authz string
		if vals := md.Get("authorization"); len(vals) > 0 {
			authz = vals[0]
		}
		claims, err := verifier.ParseBearer(authz)
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			return nil, errUnauthenticated("AUTH_MISSING", "missing bearer token")
		case err != nil:
			return nil, errUnauthenticated("AUTH_INVALID", "invalid or expired token")
		}
		return handler(auth.Authenticate(ctx, claims), req)
	}
}

func recoverInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if p := recover(); p != nil {
				log.Error("grpc panic", zap.String("method", info.FullMethod), zap.Any("panic", p))
				err = errWithInfo(codes.Internal, "INTERNAL", "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
