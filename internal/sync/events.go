package sync

import "time"

const (
	EventProgressCompleted = "progress.completed"
	EventEnrollmentUpdate  = "enrollment.update"
	EventEnrollmentDelete  = "enrollment.delete"
	EventCatalogReloaded   = "catalog.reloaded"

	// EventSubscribed is sent to a single client when it connects or
	// changes its filter.
	EventSubscribed = "subscribed"
)

const (
	TransportTCP = "tcp"
	TransportWS  = "websocket"
)

type Event struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	TopicID   string    `json:"topic_id,omitempty"`
	CourseKey string    `json:"course_key,omitempty"`
	Status    string    `json:"status,omitempty"`
	Topics    int       `json:"topics,omitempty"` // catalog size after a reload
	Transport string    `json:"transport,omitempty"`
	Clients   int       `json:"clients,omitempty"`
	At        time.Time `json:"at"`
}

// Filter narrows what a client receives. Empty fields match anything, and
// events that carry no user or course (catalog reloads) pass every filter.
type Filter struct {
	UserID    string `json:"user_id,omitempty"`
	CourseKey string `json:"course_key,omitempty"`
}

func (f Filter) Match(ev Event) bool {
	if f.UserID != "" && ev.UserID != "" && ev.UserID != f.UserID {
		return false
	}
	if f.CourseKey != "" && ev.CourseKey != "" && ev.CourseKey != f.CourseKey {
		return false
	}
	return true
}
