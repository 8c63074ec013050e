// Package apiv1 defines the devmirror control service spoken between the
// dmr CLI and the devmirrord daemon. Payloads are google.protobuf.Struct
// values; messages.go converts them to and from the engine's types.
package apiv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "devmirror.v1.ControlService"

const (
	ControlService_GetState_FullMethodName          = "/" + ServiceName + "/GetState"
	ControlService_Connect_FullMethodName           = "/" + ServiceName + "/Connect"
	ControlService_Disconnect_FullMethodName        = "/" + ServiceName + "/Disconnect"
	ControlService_CheckConnectivity_FullMethodName = "/" + ServiceName + "/CheckConnectivity"
	ControlService_Devices_FullMethodName           = "/" + ServiceName + "/Devices"
	ControlService_Launch_FullMethodName            = "/" + ServiceName + "/Launch"
	ControlService_Stop_FullMethodName              = "/" + ServiceName + "/Stop"
	ControlService_Binaries_FullMethodName          = "/" + ServiceName + "/Binaries"
)

// ControlServiceClient is the client API for the control service.
type ControlServiceClient interface {
	GetState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Connect(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Disconnect(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CheckConnectivity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Devices(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Launch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Stop(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Binaries(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type controlServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewControlServiceClient(cc grpc.ClientConnInterface) ControlServiceClient {
	return &controlServiceClient{cc}
}

func (c *controlServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlServiceClient) GetState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ControlService_GetState_FullMethodName, in, opts...)
}

func (c *controlServiceClient) Connect(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ControlService_Connect_FullMethodName, in, opts...)
}

func (c *controlServiceClient) Disconnect(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ControlService_Disconnect_FullMethodName, in, opts...)
}

func (c *controlServiceClient) CheckConnectivity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ControlService_CheckConnectivity_FullMethodName, in, opts...)
}

func (c *controlServiceClient) Devices(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ControlService_Devices_FullMethodName, in, opts...)
}

func (c *controlServiceClient) Launch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ControlService_Launch_FullMethodName, in, opts...)
}

func (c *controlServiceClient) Stop(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ControlService_Stop_FullMethodName, in, opts...)
}

func (c *controlServiceClient) Binaries(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ControlService_Binaries_FullMethodName, in, opts...)
}

// ControlServiceServer is the server API for the control service.
// Implementations must embed UnimplementedControlServiceServer.
type ControlServiceServer interface {
	GetState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Connect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Disconnect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckConnectivity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Devices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Launch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Stop(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Binaries(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedControlServiceServer()
}

// UnimplementedControlServiceServer must be embedded to have forward compatible implementations.
type UnimplementedControlServiceServer struct{}

func (UnimplementedControlServiceServer) GetState(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetState not implemented")
}
func (UnimplementedControlServiceServer) Connect(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Connect not implemented")
}
func (UnimplementedControlServiceServer) Disconnect(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Disconnect not implemented")
}
func (UnimplementedControlServiceServer) CheckConnectivity(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CheckConnectivity not implemented")
}
func (UnimplementedControlServiceServer) Devices(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Devices not implemented")
}
func (UnimplementedControlServiceServer) Launch(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Launch not implemented")
}
func (UnimplementedControlServiceServer) Stop(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Stop not implemented")
}
func (UnimplementedControlServiceServer) Binaries(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Binaries not implemented")
}
func (UnimplementedControlServiceServer) mustEmbedUnimplementedControlServiceServer() {}

func RegisterControlServiceServer(s grpc.ServiceRegistrar, srv ControlServiceServer) {
	s.RegisterService(&ControlService_ServiceDesc, srv)
}

type unaryMethod func(ControlServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a server method to grpc.MethodHandler.
func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ControlServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ControlServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ControlService_ServiceDesc is the grpc.ServiceDesc for the control service.
var ControlService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetState", Handler: unaryHandler(ControlService_GetState_FullMethodName, ControlServiceServer.GetState)},
		{MethodName: "Connect", Handler: unaryHandler(ControlService_Connect_FullMethodName, ControlServiceServer.Connect)},
		{MethodName: "Disconnect", Handler: unaryHandler(ControlService_Disconnect_FullMethodName, ControlServiceServer.Disconnect)},
		{MethodName: "CheckConnectivity", Handler: unaryHandler(ControlService_CheckConnectivity_FullMethodName, ControlServiceServer.CheckConnectivity)},
		{MethodName: "Devices", Handler: unaryHandler(ControlService_Devices_FullMethodName, ControlServiceServer.Devices)},
		{MethodName: "Launch", Handler: unaryHandler(ControlService_Launch_FullMethodName, ControlServiceServer.Launch)},
		{MethodName: "Stop", Handler: unaryHandler(ControlService_Stop_FullMethodName, ControlServiceServer.Stop)},
		{MethodName: "Binaries", Handler: unaryHandler(ControlService_Binaries_FullMethodName, ControlServiceServer.Binaries)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "devmirror/v1/control.proto",
}
