// Package grpcclient implements the platform contract over the factshare gRPC API.
package grpcclient

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/and161185/factshare/internal/convert"
	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/platform"
	"github.com/and161185/factshare/internal/rpc"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Options configures Dial.
type Options struct {
	Addr       string
	CACert     string // PEM file with the server CA; empty means system roots
	SkipVerify bool   // TLS without certificate verification (dev)
	Plaintext  bool   // no TLS at all (dev, local)
	Tokens     TokenStore
	Logger     *zap.Logger
	// Dialer overrides the network dialer (tests use bufconn).
	Dialer func(ctx context.Context, addr string) (net.Conn, error)
}

// Client is a platform.Platform backed by a gRPC connection.
type Client struct {
	cc     *grpc.ClientConn
	api    rpc.FactsClient
	health healthpb.HealthClient
	tokens TokenStore
	log    *zap.Logger
}

var _ platform.Platform = (*Client)(nil)

// Dial creates a lazily connecting client. Nothing is sent until the first call.
func Dial(o Options) (*Client, error) {
	if o.Tokens == nil {
		o.Tokens = &MemoryTokenStore{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	creds, err := transportCreds(o.CACert, o.SkipVerify, o.Plaintext)
	if err != nil {
		return nil, fmt.Errorf("transport credentials: %w", err)
	}
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(bearerCreds{store: o.Tokens, secure: !o.Plaintext}),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName)),
	}
	if o.Dialer != nil {
		opts = append(opts, grpc.WithContextDialer(o.Dialer))
	}
	cc, err := grpc.NewClient(o.Addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		cc:     cc,
		api:    rpc.NewFactsClient(cc),
		health: healthpb.NewHealthClient(cc),
		tokens: o.Tokens,
		log:    o.Logger,
	}, nil
}

// Close releases the connection.
func (c *Client) Close() error { return c.cc.Close() }

// --- Auth ---

// CurrentIdentity returns nil without a stored token. A token the server
// rejects is forgotten and the caller is treated as anonymous.
func (c *Client) CurrentIdentity(ctx context.Context) (*model.Session, error) {
	if _, err := c.tokens.Load(); err != nil {
		if errors.Is(err, ErrNoToken) {
			return nil, nil
		}
		return nil, err
	}
	resp, err := c.api.Me(ctx, &rpc.MeRequest{})
	if err != nil {
		err = convert.FromStatus(err)
		if errors.Is(err, errs.ErrUnauthorized) {
			c.log.Info("stored token rejected, clearing")
			_ = c.tokens.Clear()
			return nil, nil
		}
		return nil, err
	}
	s, err := convert.FromRPCUser(resp.User)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Login authenticates and stores the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (model.Session, error) {
	resp, err := c.api.Login(ctx, &rpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return model.Session{}, convert.FromStatus(err)
	}
	s, err := convert.FromRPCUser(resp.User)
	if err != nil {
		return model.Session{}, err
	}
	if err := c.tokens.Save(model.Tokens{AccessToken: resp.AccessToken, ExpiresAt: resp.ExpiresAt}); err != nil {
		return model.Session{}, fmt.Errorf("save token: %w", err)
	}
	return s, nil
}

// Signup registers an account.
func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	_, err := c.api.Signup(ctx, &rpc.SignupRequest{Name: name, Email: email, Password: password})
	return convert.FromStatus(err)
}

// Logout revokes the remote session when a token exists and always forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.tokens.Load(); err != nil {
		return c.tokens.Clear()
	}
	_, rerr := c.api.Logout(ctx, &rpc.LogoutRequest{})
	if err := c.tokens.Clear(); err != nil {
		return err
	}
	return convert.FromStatus(rerr)
}

// --- Facts ---

func (c *Client) List(ctx context.Context, q model.FactQuery) ([]model.Fact, error) {
	resp, err := c.api.ListFacts(ctx, &rpc.ListFactsRequest{IncludeAuthor: q.IncludeAuthor, Order: convert.ToRPCOrder(q.Order)})
	if err != nil {
		return nil, convert.FromStatus(err)
	}
	return convert.FromRPCFacts(resp.Facts)
}

func (c *Client) Create(ctx context.Context, d model.FactDraft) (model.Fact, error) {
	resp, err := c.api.CreateFact(ctx, convert.ToRPCCreate(d))
	if err != nil {
		return model.Fact{}, convert.FromStatus(err)
	}
	return convert.FromRPCFact(resp.Fact)
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, p model.FactPatch) (model.Fact, error) {
	resp, err := c.api.UpdateFact(ctx, convert.ToRPCUpdate(id, p))
	if err != nil {
		return model.Fact{}, convert.FromStatus(err)
	}
	return convert.FromRPCFact(resp.Fact)
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := c.api.DeleteFact(ctx, &rpc.DeleteFactRequest{ID: id.String()})
	return convert.FromStatus(err)
}

// --- Pinger ---

// Ping asks the server's health service about the factshare service.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	if err != nil {
		return err
	}
	if s := resp.GetStatus(); s != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("service status %s", s)
	}
	return nil
}
