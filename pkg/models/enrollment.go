package models

import "time"

type Enrollment struct {
	UserID         string    `json:"user_id"`
	CourseKey      string    `json:"course_key"`
	Status         string    `json:"status"` // enrolled, completed, paused
	CurrentTopicID string    `json:"current_topic_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}
