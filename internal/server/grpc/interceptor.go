package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/server/auth"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const principalKey ctxKey = "principal"

type access int

const (
	accessPublic access = iota
	accessUser
	accessAdmin
)

// methodAccess lists who may call each method. Unlisted methods need a token.
var methodAccess = map[string]access{
	fullMethod("Ping"):         accessPublic,
	fullMethod("Register"):     accessPublic,
	fullMethod("Login"):        accessPublic,
	fullMethod("Guest"):        accessPublic,
	fullMethod("ListCatalog"):  accessPublic,
	fullMethod("ListAllLoans"): accessAdmin,
	fullMethod("Stats"):        accessAdmin,
	fullMethod("Reconcile"):    accessAdmin,
	fullMethod("AddBook"):      accessAdmin,
}

func requiredAccess(method string) access {
	if a, ok := methodAccess[method]; ok {
		return a
	}
	return accessUser
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	need := requiredAccess(info.FullMethod)
	if need == accessPublic {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	p, err := s.identity.Authenticate(accessToken)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	if need == accessAdmin && p.Role != models.RoleAdmin {
		return nil, status.Error(codes.PermissionDenied, "admin only")
	}

	ctx = context.WithValue(ctx, principalKey, p)

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "latency", time.Since(start).String()}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "rpc", append(args, "error", err)...)
	} else {
		s.logger.Info(ctx, "rpc", args...)
	}
	return resp, err
}

// PrincipalFromContext returns the caller set by the access token interceptor.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}
