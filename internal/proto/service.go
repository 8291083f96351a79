package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "websites.v1.Websites"

// WebsitesServer is the server API for the websites.v1.Websites service.
// Requests and responses are google.protobuf.Struct values shaped like the
// REST bodies and envelopes.
type WebsitesServer interface {
	List(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Create(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterWebsitesServer(s grpc.ServiceRegistrar, srv WebsitesServer) {
	s.RegisterService(&websitesServiceDesc, srv)
}

type unaryCall func(srv WebsitesServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(WebsitesServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(WebsitesServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var websitesServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WebsitesServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("List", WebsitesServer.List),
		unaryMethod("Create", WebsitesServer.Create),
		unaryMethod("Update", WebsitesServer.Update),
		unaryMethod("Delete", WebsitesServer.Delete),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "websites/v1/websites.proto",
}

// WebsitesClient calls the websites.v1.Websites service.
type WebsitesClient struct {
	cc grpc.ClientConnInterface
}

func NewWebsitesClient(cc grpc.ClientConnInterface) *WebsitesClient {
	return &WebsitesClient{cc: cc}
}

func (c *WebsitesClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *WebsitesClient) List(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "List", in, opts...)
}

func (c *WebsitesClient) Create(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Create", in, opts...)
}

func (c *WebsitesClient) Update(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Update", in, opts...)
}

func (c *WebsitesClient) Delete(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Delete", in, opts...)
}
