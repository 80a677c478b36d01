package grpcserver

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"coursehub/internal/catalog"
	"coursehub/internal/progress"
	"coursehub/pkg/models"
)

type Server struct {
	Catalog      *catalog.Store
	ProgressRepo *progress.Repo
}

func NewServer(store *catalog.Store, progressRepo *progress.Repo) *Server {
	return &Server{Catalog: store, ProgressRepo: progressRepo}
}

// NewGRPCServer registers both services and the standard health service.
func NewGRPCServer(svc *Server, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(opts...)
	RegisterCatalogServiceServer(s, svc)
	if svc.ProgressRepo != nil {
		RegisterProgressServiceServer(s, svc)
	}

	hs := health.NewServer()
	hs.SetServingStatus(CatalogServiceName, healthpb.HealthCheckResponse_SERVING)
	if svc.ProgressRepo != nil {
		hs.SetServingStatus(ProgressServiceName, healthpb.HealthCheckResponse_SERVING)
	}
	healthpb.RegisterHealthServer(s, hs)
	return s, hs
}

func (s *Server) ListCourses(ctx context.Context, req *ListCoursesRequest) (*ListCoursesResponse, error) {
	cat := s.Catalog.Load()
	return &ListCoursesResponse{Courses: cat.Courses(), Topics: cat.Len()}, nil
}

func (s *Server) GetTopic(ctx context.Context, req *GetTopicRequest) (*GetTopicResponse, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	entry, ok := s.Catalog.Load().Topic(id)
	if !ok {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return &GetTopicResponse{Topic: entry}, nil
}

func (s *Server) GetNavigation(ctx context.Context, req *GetNavigationRequest) (*GetNavigationResponse, error) {
	refs := s.Catalog.Load().Navigation(strings.TrimSpace(req.ID)).Refs()
	return &GetNavigationResponse{Prev: refs.Prev, Next: refs.Next}, nil
}

func (s *Server) ListProgress(ctx context.Context, req *ListProgressRequest) (*ListProgressResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id required")
	}

	items, total, err := s.ProgressRepo.List(ctx, userID, strings.TrimSpace(req.CourseKey), req.Limit, req.Offset)
	if err != nil {
		return nil, status.Error(codes.Internal, "list failed")
	}
	if items == nil {
		items = []models.ProgressEntry{}
	}
	return &ListProgressResponse{Total: total, Limit: req.Limit, Offset: req.Offset, Items: items}, nil
}

func (s *Server) MarkCompleted(ctx context.Context, req *MarkCompletedRequest) (*MarkCompletedResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	topicID := strings.TrimSpace(req.TopicID)
	if userID == "" || topicID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id and topic_id required")
	}

	cat := s.Catalog.Load()
	entry, ok := cat.Topic(topicID)
	if !ok {
		return nil, status.Error(codes.NotFound, "topic not found")
	}

	rec := models.ProgressEntry{
		UserID:      userID,
		TopicID:     entry.ID,
		CourseKey:   entry.CourseKey,
		CompletedAt: time.Now().UTC(),
	}
	created, err := s.ProgressRepo.MarkCompleted(ctx, rec)
	if err != nil {
		return nil, status.Error(codes.Internal, "save failed")
	}
	return &MarkCompletedResponse{
		Entry:   rec,
		Created: created,
		Next:    cat.Navigation(entry.ID).Refs().Next,
	}, nil
}
