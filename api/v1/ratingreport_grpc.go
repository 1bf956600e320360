package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "ratingreport.v1.RatingReport"

const (
	RatingReport_RenderReport_FullMethodName = "/ratingreport.v1.RatingReport/RenderReport"
	RatingReport_GetAggregate_FullMethodName = "/ratingreport.v1.RatingReport/GetAggregate"
	RatingReport_MigrateStep_FullMethodName  = "/ratingreport.v1.RatingReport/MigrateStep"
)

// RatingReportClient is the client API for the RatingReport service.
type RatingReportClient interface {
	RenderReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetAggregate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	MigrateStep(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type ratingReportClient struct {
	cc grpc.ClientConnInterface
}

func NewRatingReportClient(cc grpc.ClientConnInterface) RatingReportClient {
	return &ratingReportClient{cc}
}

func (c *ratingReportClient) RenderReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RatingReport_RenderReport_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ratingReportClient) GetAggregate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RatingReport_GetAggregate_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ratingReportClient) MigrateStep(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RatingReport_MigrateStep_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RatingReportServer is the server API for the RatingReport service.
// Implementations must embed UnimplementedRatingReportServer.
type RatingReportServer interface {
	RenderReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAggregate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MigrateStep(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedRatingReportServer()
}

type UnimplementedRatingReportServer struct{}

func (UnimplementedRatingReportServer) RenderReport(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RenderReport not implemented")
}

func (UnimplementedRatingReportServer) GetAggregate(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAggregate not implemented")
}

func (UnimplementedRatingReportServer) MigrateStep(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method MigrateStep not implemented")
}

func (UnimplementedRatingReportServer) mustEmbedUnimplementedRatingReportServer() {}

func RegisterRatingReportServer(s grpc.ServiceRegistrar, srv RatingReportServer) {
	s.RegisterService(&RatingReport_ServiceDesc, srv)
}

func unaryHandler(method string, call func(RatingReportServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RatingReportServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RatingReportServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RatingReport_ServiceDesc is the grpc.ServiceDesc for the RatingReport service.
var RatingReport_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RatingReportServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RenderReport",
			Handler:    unaryHandler(RatingReport_RenderReport_FullMethodName, RatingReportServer.RenderReport),
		},
		{
			MethodName: "GetAggregate",
			Handler:    unaryHandler(RatingReport_GetAggregate_FullMethodName, RatingReportServer.GetAggregate),
		},
		{
			MethodName: "MigrateStep",
			Handler:    unaryHandler(RatingReport_MigrateStep_FullMethodName, RatingReportServer.MigrateStep),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ratingreport/v1/ratingreport.proto",
}
