package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const CampsiteServiceName = "campsite.v1.CampsiteService"

const (
	CampsiteService_GetAvailability_FullMethodName   = "/campsite.v1.CampsiteService/GetAvailability"
	CampsiteService_BookReservation_FullMethodName   = "/campsite.v1.CampsiteService/BookReservation"
	CampsiteService_ModifyReservation_FullMethodName = "/campsite.v1.CampsiteService/ModifyReservation"
	CampsiteService_CancelReservation_FullMethodName = "/campsite.v1.CampsiteService/CancelReservation"
	CampsiteService_GetReservation_FullMethodName    = "/campsite.v1.CampsiteService/GetReservation"
)

type CampsiteServiceServer interface {
	GetAvailability(context.Context, *GetAvailabilityRequest) (*GetAvailabilityResponse, error)
	BookReservation(context.Context, *BookReservationRequest) (*BookReservationResponse, error)
	ModifyReservation(context.Context, *ModifyReservationRequest) (*ModifyReservationResponse, error)
	CancelReservation(context.Context, *CancelReservationRequest) (*CancelReservationResponse, error)
	GetReservation(context.Context, *GetReservationRequest) (*GetReservationResponse, error)
}

// UnimplementedCampsiteServiceServer can be embedded to keep servers
// compiling when methods are added.
type UnimplementedCampsiteServiceServer struct{}

func (UnimplementedCampsiteServiceServer) GetAvailability(context.Context, *GetAvailabilityRequest) (*GetAvailabilityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAvailability not implemented")
}

func (UnimplementedCampsiteServiceServer) BookReservation(context.Context, *BookReservationRequest) (*BookReservationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BookReservation not implemented")
}

func (UnimplementedCampsiteServiceServer) ModifyReservation(context.Context, *ModifyReservationRequest) (*ModifyReservationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ModifyReservation not implemented")
}

func (UnimplementedCampsiteServiceServer) CancelReservation(context.Context, *CancelReservationRequest) (*CancelReservationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelReservation not implemented")
}

func (UnimplementedCampsiteServiceServer) GetReservation(context.Context, *GetReservationRequest) (*GetReservationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetReservation not implemented")
}

// RegisterCampsiteServiceServer registers srv on s. Messages travel through the
// json codec, so clients not built with NewCampsiteServiceClient must call with
// grpc.CallContentSubtype(CodecName).
func RegisterCampsiteServiceServer(s grpc.ServiceRegistrar, srv CampsiteServiceServer) {
	s.RegisterService(&CampsiteService_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](fullMethod string, call func(CampsiteServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CampsiteServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CampsiteServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CampsiteService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: CampsiteServiceName,
	HandlerType: (*CampsiteServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetAvailability",
			Handler:    unaryHandler(CampsiteService_GetAvailability_FullMethodName, CampsiteServiceServer.GetAvailability),
		},
		{
			MethodName: "BookReservation",
			Handler:    unaryHandler(CampsiteService_BookReservation_FullMethodName, CampsiteServiceServer.BookReservation),
		},
		{
			MethodName: "ModifyReservation",
			Handler:    unaryHandler(CampsiteService_ModifyReservation_FullMethodName, CampsiteServiceServer.ModifyReservation),
		},
		{
			MethodName: "CancelReservation",
			Handler:    unaryHandler(CampsiteService_CancelReservation_FullMethodName, CampsiteServiceServer.CancelReservation),
		},
		{
			MethodName: "GetReservation",
			Handler:    unaryHandler(CampsiteService_GetReservation_FullMethodName, CampsiteServiceServer.GetReservation),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "campsite/v1/campsite.proto",
}

type CampsiteServiceClient interface {
	GetAvailability(ctx context.Context, in *GetAvailabilityRequest, opts ...grpc.CallOption) (*GetAvailabilityResponse, error)
	BookReservation(ctx context.Context, in *BookReservationRequest, opts ...grpc.CallOption) (*BookReservationResponse, error)
	ModifyReservation(ctx context.Context, in *ModifyReservationRequest, opts ...grpc.CallOption) (*ModifyReservationResponse, error)
	CancelReservation(ctx context.Context, in *CancelReservationRequest, opts ...grpc.CallOption) (*CancelReservationResponse, error)
	GetReservation(ctx context.Context, in *GetReservationRequest, opts ...grpc.CallOption) (*GetReservationResponse, error)
}

type campsiteServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCampsiteServiceClient returns a client that always selects the JSON codec.
func NewCampsiteServiceClient(cc grpc.ClientConnInterface) CampsiteServiceClient {
	return &campsiteServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *campsiteServiceClient) GetAvailability(ctx context.Context, in *GetAvailabilityRequest, opts ...grpc.CallOption) (*GetAvailabilityResponse, error) {
	return invoke[GetAvailabilityResponse](ctx, c.cc, CampsiteService_GetAvailability_FullMethodName, in, opts)
}

func (c *campsiteServiceClient) BookReservation(ctx context.Context, in *BookReservationRequest, opts ...grpc.CallOption) (*BookReservationResponse, error) {
	return invoke[BookReservationResponse](ctx, c.cc, CampsiteService_BookReservation_FullMethodName, in, opts)
}

func (c *campsiteServiceClient) ModifyReservation(ctx context.Context, in *ModifyReservationRequest, opts ...grpc.CallOption) (*ModifyReservationResponse, error) {
	return invoke[ModifyReservationResponse](ctx, c.cc, CampsiteService_ModifyReservation_FullMethodName, in, opts)
}

func (c *campsiteServiceClient) CancelReservation(ctx context.Context, in *CancelReservationRequest, opts ...grpc.CallOption) (*CancelReservationResponse, error) {
	return invoke[CancelReservationResponse](ctx, c.cc, CampsiteService_CancelReservation_FullMethodName, in, opts)
}

func (c *campsiteServiceClient) GetReservation(ctx context.Context, in *GetReservationRequest, opts ...grpc.CallOption) (*GetReservationResponse, error) {
	return invoke[GetReservationResponse](ctx, c.cc, CampsiteService_GetReservation_FullMethodName, in, opts)
}
