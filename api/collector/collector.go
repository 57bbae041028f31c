// Package collector is the remote ingestion side: hosts submit crash
// envelopes over gRPC and the collector archives them. The wire contract
// is one unary method over protobuf Struct envelopes; the service
// descriptor below is maintained by hand and there is no generated code.
package collector

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName  = "pandump.Collector"
	SubmitMethod = "/pandump.Collector/Submit"
)

// CollectorServer is the service contract.
type CollectorServer interface {
	Submit(ctx context.Context, env *structpb.Struct) (*structpb.Struct, error)
}

func submitHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CollectorServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SubmitMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CollectorServer).Submit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CollectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: submitHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pandump/api/collector",
}

// RegisterCollectorServer registers srv under the collector service name.
func RegisterCollectorServer(s grpc.ServiceRegistrar, srv CollectorServer) {
	s.RegisterService(&serviceDesc, srv)
}
