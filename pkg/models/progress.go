package models

import "time"

// ProgressEntry marks a topic as completed by a user.
type ProgressEntry struct {
	UserID      string    `json:"user_id"`
	TopicID     string    `json:"topic_id"`
	CourseKey   string    `json:"course_key"`
	CompletedAt time.Time `json:"completed_at"`
}

type CourseProgress struct {
	CourseKey   string `json:"course_key"`
	CourseTitle string `json:"course_title"`
	Completed   int    `json:"completed"`
	Total       int    `json:"total"`
}
