package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "mentorship.moderation.v1.ModerationService"

// ModerationServer is the server side of ModerationService. Requests and
// responses are google.protobuf.Struct documents carrying the same camelCase
// fields as the REST API.
type ModerationServer interface {
	Vote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateFlag(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateFlagStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FlagMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(ModerationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(ModerationServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(srv.(ModerationServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ModerationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Vote", ModerationServer.Vote),
		unary("CreateFlag", ModerationServer.CreateFlag),
		unary("UpdateFlagStatus", ModerationServer.UpdateFlagStatus),
		unary("FlagMessage", ModerationServer.FlagMessage),
		unary("DeleteMessage", ModerationServer.DeleteMessage),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mentorship/moderation/v1/moderation.proto",
}

func RegisterModerationServer(s grpc.ServiceRegistrar, srv ModerationServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls ModerationService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Vote(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Vote", in, opts...)
}

func (c *Client) CreateFlag(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "CreateFlag", in, opts...)
}

func (c *Client) UpdateFlagStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "UpdateFlagStatus", in, opts...)
}

func (c *Client) FlagMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "FlagMessage", in, opts...)
}

func (c *Client) DeleteMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "DeleteMessage", in, opts...)
}
