package grpcserver

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "crossbook.v1.Matching"

// MatchingServer is the server API for crossbook.v1.Matching.
type MatchingServer interface {
	Submit(context.Context, *SubmitRequest) (*SubmitResponse, error)
	Match(context.Context, *MatchRequest) (*MatchResponse, error)
	ListSymbols(context.Context, *ListSymbolsRequest) (*ListSymbolsResponse, error)
	GetBook(context.Context, *GetBookRequest) (*GetBookResponse, error)
}

// MatchingServiceDesc describes crossbook.v1.Matching for grpc.Server.RegisterService.
var MatchingServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MatchingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: unary(func(s MatchingServer, ctx context.Context, in *SubmitRequest) (*SubmitResponse, error) {
			return s.Submit(ctx, in)
		}, "Submit")},
		{MethodName: "Match", Handler: unary(func(s MatchingServer, ctx context.Context, in *MatchRequest) (*MatchResponse, error) {
			return s.Match(ctx, in)
		}, "Match")},
		{MethodName: "ListSymbols", Handler: unary(func(s MatchingServer, ctx context.Context, in *ListSymbolsRequest) (*ListSymbolsResponse, error) {
			return s.ListSymbols(ctx, in)
		}, "ListSymbols")},
		{MethodName: "GetBook", Handler: unary(func(s MatchingServer, ctx context.Context, in *GetBookRequest) (*GetBookResponse, error) {
			return s.GetBook(ctx, in)
		}, "GetBook")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crossbook/v1/matching.proto",
}

func fullMethod(name string) string { return "/" + serviceName + "/" + name }

// unary builds a grpc method handler for one request/response pair.
func unary[Req, Resp any](
	call func(MatchingServer, context.Context, *Req) (*Resp, error),
	method string,
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MatchingServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MatchingServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
