package function

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	MessageFunction_Call_FullMethodName = "/function.MessageFunction/Call"
	Liveness_Probe_FullMethodName       = "/function.Liveness/Probe"
	Readiness_Probe_FullMethodName      = "/function.Readiness/Probe"
)

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.StaticMethod(), grpc.CallContentSubtype(Name)}, opts...)
}

// MessageFunctionClient is the client API for the MessageFunction service.
type MessageFunctionClient interface {
	Call(ctx context.Context, opts ...grpc.CallOption) (MessageFunction_CallClient, error)
}

type messageFunctionClient struct {
	cc grpc.ClientConnInterface
}

func NewMessageFunctionClient(cc grpc.ClientConnInterface) MessageFunctionClient {
	return &messageFunctionClient{cc}
}

func (c *messageFunctionClient) Call(ctx context.Context, opts ...grpc.CallOption) (MessageFunction_CallClient, error) {
	stream, err := c.cc.NewStream(ctx, &MessageFunction_ServiceDesc.Streams[0], MessageFunction_Call_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[Message, Message]{ClientStream: stream}, nil
}

type MessageFunction_CallClient = grpc.BidiStreamingClient[Message, Message]

// MessageFunctionServer is the server API for the MessageFunction service.
type MessageFunctionServer interface {
	Call(MessageFunction_CallServer) error
}

type UnimplementedMessageFunctionServer struct{}

func (UnimplementedMessageFunctionServer) Call(MessageFunction_CallServer) error {
	return status.Errorf(codes.Unimplemented, "method Call not implemented")
}

func RegisterMessageFunctionServer(s grpc.ServiceRegistrar, srv MessageFunctionServer) {
	s.RegisterService(&MessageFunction_ServiceDesc, srv)
}

func _MessageFunction_Call_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(MessageFunctionServer).Call(&grpc.GenericServerStream[Message, Message]{ServerStream: stream})
}

type MessageFunction_CallServer = grpc.BidiStreamingServer[Message, Message]

var MessageFunction_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "function.MessageFunction",
	HandlerType: (*MessageFunctionServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Call",
			Handler:       _MessageFunction_Call_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "function.proto",
}

// LivenessClient is the client API for the Liveness service.
type LivenessClient interface {
	Probe(ctx context.Context, in *ProbeRequest, opts ...grpc.CallOption) (*HealthStatus, error)
}

type livenessClient struct {
	cc grpc.ClientConnInterface
}

func NewLivenessClient(cc grpc.ClientConnInterface) LivenessClient {
	return &livenessClient{cc}
}

func (c *livenessClient) Probe(ctx context.Context, in *ProbeRequest, opts ...grpc.CallOption) (*HealthStatus, error) {
	out := new(HealthStatus)
	if err := c.cc.Invoke(ctx, Liveness_Probe_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// LivenessServer is the server API for the Liveness service.
type LivenessServer interface {
	Probe(context.Context, *ProbeRequest) (*HealthStatus, error)
}

func RegisterLivenessServer(s grpc.ServiceRegistrar, srv LivenessServer) {
	s.RegisterService(&Liveness_ServiceDesc, srv)
}

func _Liveness_Probe_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProbeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LivenessServer).Probe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Liveness_Probe_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LivenessServer).Probe(ctx, req.(*ProbeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var Liveness_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "function.Liveness",
	HandlerType: (*LivenessServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Probe",
			Handler:    _Liveness_Probe_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "function.proto",
}

// ReadinessClient is the client API for the Readiness service.
type ReadinessClient interface {
	Probe(ctx context.Context, in *ProbeRequest, opts ...grpc.CallOption) (*HealthStatus, error)
}

type readinessClient struct {
	cc grpc.ClientConnInterface
}

func NewReadinessClient(cc grpc.ClientConnInterface) ReadinessClient {
	return &readinessClient{cc}
}

func (c *readinessClient) Probe(ctx context.Context, in *ProbeRequest, opts ...grpc.CallOption) (*HealthStatus, error) {
	out := new(HealthStatus)
	if err := c.cc.Invoke(ctx, Readiness_Probe_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadinessServer is the server API for the Readiness service.
type ReadinessServer interface {
	Probe(context.Context, *ProbeRequest) (*HealthStatus, error)
}

func RegisterReadinessServer(s grpc.ServiceRegistrar, srv ReadinessServer) {
	s.RegisterService(&Readiness_ServiceDesc, srv)
}

func _Readiness_Probe_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProbeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReadinessServer).Probe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Readiness_Probe_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReadinessServer).Probe(ctx, req.(*ProbeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var Readiness_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "function.Readiness",
	HandlerType: (*ReadinessServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Probe",
			Handler:    _Readiness_Probe_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "function.proto",
}
