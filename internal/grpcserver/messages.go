package grpcserver

import (
	"coursehub/internal/catalog"
	"coursehub/pkg/models"
)

type ListCoursesRequest struct{}

type ListCoursesResponse struct {
	Courses []catalog.CourseSummary `json:"courses"`
	Topics  int                     `json:"topics"`
}

type GetTopicRequest struct {
	ID string `json:"id"`
}

type GetTopicResponse struct {
	Topic models.FlatEntry `json:"topic"`
}

type GetNavigationRequest struct {
	ID string `json:"id"`
}

// GetNavigationResponse has both sides nil for an unknown id.
type GetNavigationResponse struct {
	Prev *models.TopicRef `json:"prev"`
	Next *models.TopicRef `json:"next"`
}

type ListProgressRequest struct {
	UserID    string `json:"user_id"`
	CourseKey string `json:"course_key,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type ListProgressResponse struct {
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Items  []models.ProgressEntry `json:"items"`
}

type MarkCompletedRequest struct {
	UserID  string `json:"user_id"`
	TopicID string `json:"topic_id"`
}

type MarkCompletedResponse struct {
	Entry   models.ProgressEntry `json:"entry"`
	Created bool                 `json:"created"`
	Next    *models.TopicRef     `json:"next"`
}
