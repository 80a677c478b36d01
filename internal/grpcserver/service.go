package grpcserver

import (
	"context"

	"google.golang.org/grpc"
)

const (
	CatalogServiceName  = "coursehub.CatalogService"
	ProgressServiceName = "coursehub.ProgressService"
)

type CatalogServiceServer interface {
	ListCourses(context.Context, *ListCoursesRequest) (*ListCoursesResponse, error)
	GetTopic(context.Context, *GetTopicRequest) (*GetTopicResponse, error)
	GetNavigation(context.Context, *GetNavigationRequest) (*GetNavigationResponse, error)
}

type ProgressServiceServer interface {
	ListProgress(context.Context, *ListProgressRequest) (*ListProgressResponse, error)
	MarkCompleted(context.Context, *MarkCompletedRequest) (*MarkCompletedResponse, error)
}

// unary builds a grpc.MethodHandler for a typed unary method.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + service + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(CatalogServiceName, "ListCourses", CatalogServiceServer.ListCourses),
		unary(CatalogServiceName, "GetTopic", CatalogServiceServer.GetTopic),
		unary(CatalogServiceName, "GetNavigation", CatalogServiceServer.GetNavigation),
	},
	Metadata: "coursehub/catalog",
}

var ProgressServiceDesc = grpc.ServiceDesc{
	ServiceName: ProgressServiceName,
	HandlerType: (*ProgressServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ProgressServiceName, "ListProgress", ProgressServiceServer.ListProgress),
		unary(ProgressServiceName, "MarkCompleted", ProgressServiceServer.MarkCompleted),
	},
	Metadata: "coursehub/progress",
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

func RegisterProgressServiceServer(s grpc.ServiceRegistrar, srv ProgressServiceServer) {
	s.RegisterService(&ProgressServiceDesc, srv)
}
