package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "factshare.v1.Facts"

// Method names, also used to build full method paths for interceptors.
const (
	MethodSignup     = "Signup"
	MethodLogin      = "Login"
	MethodMe         = "Me"
	MethodLogout     = "Logout"
	MethodListFacts  = "ListFacts"
	MethodCreateFact = "CreateFact"
	MethodUpdateFact = "UpdateFact"
	MethodDeleteFact = "DeleteFact"
)

// FullMethod returns "/factshare.v1.Facts/<method>".
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// FactsServer is the server API.
type FactsServer interface {
	Signup(context.Context, *SignupRequest) (*SignupResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Me(context.Context, *MeRequest) (*MeResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	ListFacts(context.Context, *ListFactsRequest) (*ListFactsResponse, error)
	CreateFact(context.Context, *CreateFactRequest) (*CreateFactResponse, error)
	UpdateFact(context.Context, *UpdateFactRequest) (*UpdateFactResponse, error)
	DeleteFact(context.Context, *DeleteFactRequest) (*DeleteFactResponse, error)
}

// UnimplementedFactsServer can be embedded to satisfy FactsServer partially.
type UnimplementedFactsServer struct{}

func (UnimplementedFactsServer) Signup(context.Context, *SignupRequest) (*SignupResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Signup not implemented")
}
func (UnimplementedFactsServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedFactsServer) Me(context.Context, *MeRequest) (*MeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Me not implemented")
}
func (UnimplementedFactsServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedFactsServer) ListFacts(context.Context, *ListFactsRequest) (*ListFactsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListFacts not implemented")
}
func (UnimplementedFactsServer) CreateFact(context.Context, *CreateFactRequest) (*CreateFactResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateFact not implemented")
}
func (UnimplementedFactsServer) UpdateFact(context.Context, *UpdateFactRequest) (*UpdateFactResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateFact not implemented")
}
func (UnimplementedFactsServer) DeleteFact(context.Context, *DeleteFactRequest) (*DeleteFactResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteFact not implemented")
}

// unary adapts a typed server method to a grpc method handler.
func unary[Req, Resp any](method string, call func(FactsServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FactsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FactsServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes factshare.v1.Facts for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FactsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodSignup, Handler: unary(MethodSignup, FactsServer.Signup)},
		{MethodName: MethodLogin, Handler: unary(MethodLogin, FactsServer.Login)},
		{MethodName: MethodMe, Handler: unary(MethodMe, FactsServer.Me)},
		{MethodName: MethodLogout, Handler: unary(MethodLogout, FactsServer.Logout)},
		{MethodName: MethodListFacts, Handler: unary(MethodListFacts, FactsServer.ListFacts)},
		{MethodName: MethodCreateFact, Handler: unary(MethodCreateFact, FactsServer.CreateFact)},
		{MethodName: MethodUpdateFact, Handler: unary(MethodUpdateFact, FactsServer.UpdateFact)},
		{MethodName: MethodDeleteFact, Handler: unary(MethodDeleteFact, FactsServer.DeleteFact)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "factshare/v1/facts",
}

// RegisterFactsServer registers srv on s.
func RegisterFactsServer(s grpc.ServiceRegistrar, srv FactsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FactsClient is the client API. Every call is sent with the JSON content-subtype.
type FactsClient interface {
	Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*SignupResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error)
	ListFacts(ctx context.Context, in *ListFactsRequest, opts ...grpc.CallOption) (*ListFactsResponse, error)
	CreateFact(ctx context.Context, in *CreateFactRequest, opts ...grpc.CallOption) (*CreateFactResponse, error)
	UpdateFact(ctx context.Context, in *UpdateFactRequest, opts ...grpc.CallOption) (*UpdateFactResponse, error)
	DeleteFact(ctx context.Context, in *DeleteFactRequest, opts ...grpc.CallOption) (*DeleteFactResponse, error)
}

type factsClient struct {
	cc grpc.ClientConnInterface
}

// NewFactsClient returns a client stub bound to cc.
func NewFactsClient(cc grpc.ClientConnInterface) FactsClient {
	return &factsClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *factsClient) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*SignupResponse, error) {
	return invoke[SignupResponse](ctx, c.cc, MethodSignup, in, opts)
}

func (c *factsClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *factsClient) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error) {
	return invoke[MeResponse](ctx, c.cc, MethodMe, in, opts)
}

func (c *factsClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, MethodLogout, in, opts)
}

func (c *factsClient) ListFacts(ctx context.Context, in *ListFactsRequest, opts ...grpc.CallOption) (*ListFactsResponse, error) {
	return invoke[ListFactsResponse](ctx, c.cc, MethodListFacts, in, opts)
}

func (c *factsClient) CreateFact(ctx context.Context, in *CreateFactRequest, opts ...grpc.CallOption) (*CreateFactResponse, error) {
	return invoke[CreateFactResponse](ctx, c.cc, MethodCreateFact, in, opts)
}

func (c *factsClient) UpdateFact(ctx context.Context, in *UpdateFactRequest, opts ...grpc.CallOption) (*UpdateFactResponse, error) {
	return invoke[UpdateFactResponse](ctx, c.cc, MethodUpdateFact, in, opts)
}

func (c *factsClient) DeleteFact(ctx context.Context, in *DeleteFactRequest, opts ...grpc.CallOption) (*DeleteFactResponse, error) {
	return invoke[DeleteFactResponse](ctx, c.cc, MethodDeleteFact, in, opts)
}
