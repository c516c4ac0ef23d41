// Package grpcserver exposes the factshare gRPC API handlers.
package grpcserver

import (
	"context"
	"net"

	"github.com/and161185/factshare/internal/convert"
	"github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/rpc"
	"github.com/and161185/factshare/internal/service"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

var _ rpc.FactsServer = (*Server)(nil)

// Server wires services into gRPC handlers. Callers of non-public methods are
// authenticated by AuthUnary before a handler runs.
type Server struct {
	rpc.UnimplementedFactsServer
	auth  service.AuthService
	facts service.FactService
}

// New constructs a gRPC server with injected services.
func New(auth service.AuthService, facts service.FactService) *Server {
	return &Server{auth: auth, facts: facts}
}

// PublicMethods lists the full method names reachable without a token.
func PublicMethods() []string {
	return []string{rpc.FullMethod(rpc.MethodSignup), rpc.FullMethod(rpc.MethodLogin)}
}

// remoteIP returns the caller's host without the port, so reconnecting from a
// new ephemeral port keeps the same limiter key.
func remoteIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func identity(ctx context.Context) (Identity, error) {
	id, ok := IdentityFromCtx(ctx)
	if !ok {
		return Identity{}, status.Error(codes.Unauthenticated, "no auth")
	}
	return id, nil
}

// --- Auth ---

// Signup creates a new account.
func (s *Server) Signup(ctx context.Context, req *rpc.SignupRequest) (*rpc.SignupResponse, error) {
	id, err := s.auth.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, convert.ToStatus("signup", err)
	}
	return &rpc.SignupResponse{UserID: id.String()}, nil
}

// Login authenticates a user and opens a session.
func (s *Server) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	tok, u, err := s.auth.LoginWithIP(ctx, req.Email, req.Password, remoteIP(ctx))
	if err != nil {
		return nil, convert.ToStatus("login", err)
	}
	return &rpc.LoginResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
		User:        convert.ToRPCUser(u),
	}, nil
}

// Me returns the caller's identity.
func (s *Server) Me(ctx context.Context, _ *rpc.MeRequest) (*rpc.MeResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.MeResponse{User: convert.ToRPCUser(id.User)}, nil
}

// Logout closes the caller's session.
func (s *Server) Logout(ctx context.Context, _ *rpc.LogoutRequest) (*rpc.LogoutResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Logout(ctx, id.SessionID); err != nil {
		return nil, convert.ToStatus("logout", err)
	}
	return &rpc.LogoutResponse{}, nil
}

// --- Facts ---

// ListFacts returns every fact, newest first unless asc is requested.
func (s *Server) ListFacts(ctx context.Context, req *rpc.ListFactsRequest) (*rpc.ListFactsResponse, error) {
	if _, err := identity(ctx); err != nil {
		return nil, err
	}
	q := model.FactQuery{IncludeAuthor: req.IncludeAuthor, Order: convert.FromRPCOrder(req.Order)}
	fs, err := s.facts.List(ctx, q)
	if err != nil {
		return nil, convert.ToStatus("list facts", err)
	}
	return &rpc.ListFactsResponse{Facts: convert.ToRPCFacts(fs)}, nil
}

// CreateFact posts a fact authored by the caller.
func (s *Server) CreateFact(ctx context.Context, req *rpc.CreateFactRequest) (*rpc.CreateFactResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.facts.Create(ctx, id.User.ID, convert.FromRPCCreate(req))
	if err != nil {
		return nil, convert.ToStatus("create fact", err)
	}
	return &rpc.CreateFactResponse{Fact: convert.ToRPCFact(f)}, nil
}

// UpdateFact changes the given fields of one of the caller's facts.
func (s *Server) UpdateFact(ctx context.Context, req *rpc.UpdateFactRequest) (*rpc.UpdateFactResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	factID, patch, err := convert.FromRPCUpdate(req)
	if err != nil {
		return nil, convert.ToStatus("update fact", err)
	}
	f, err := s.facts.Update(ctx, id.User.ID, factID, patch)
	if err != nil {
		return nil, convert.ToStatus("update fact", err)
	}
	return &rpc.UpdateFactResponse{Fact: convert.ToRPCFact(f)}, nil
}

// DeleteFact removes one of the caller's facts.
func (s *Server) DeleteFact(ctx context.Context, req *rpc.DeleteFactRequest) (*rpc.DeleteFactResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	factID, err := convert.ParseFactID(req.ID)
	if err != nil {
		return nil, convert.ToStatus("delete fact", err)
	}
	if err := s.facts.Delete(ctx, id.User.ID, factID); err != nil {
		return nil, convert.ToStatus("delete fact", err)
	}
	return &rpc.DeleteFactResponse{}, nil
}
