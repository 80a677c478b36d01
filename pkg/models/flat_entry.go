package models

// FlatEntry is a topic annotated with its course and section ancestry.
// Position is the zero-based index in the flattened catalog.
type FlatEntry struct {
	Topic
	CourseKey    string `json:"course_key"`
	SectionKey   string `json:"section_key"`
	CourseTitle  string `json:"course_title"`
	SectionTitle string `json:"section_title"`
	Position     int    `json:"position"`
}

// Ref returns the lightweight header used by list and navigation payloads.
func (e FlatEntry) Ref() TopicRef {
	return TopicRef{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		CourseKey:    e.CourseKey,
		SectionKey:   e.SectionKey,
		CourseTitle:  e.CourseTitle,
		SectionTitle: e.SectionTitle,
		Position:     e.Position,
	}
}

type TopicRef struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	CourseKey    string `json:"course_key"`
	SectionKey   string `json:"section_key"`
	CourseTitle  string `json:"course_title"`
	SectionTitle string `json:"section_title"`
	Position     int    `json:"position"`
}

// Navigation holds the neighbours of a topic in catalog order.
// A nil side means there is no neighbour in that direction.
type Navigation struct {
	Prev *FlatEntry `json:"prev"`
	Next *FlatEntry `json:"next"`
}

// NavigationRefs is the wire form of Navigation.
type NavigationRefs struct {
	Prev *TopicRef `json:"prev"`
	Next *TopicRef `json:"next"`
}

func (n Navigation) Refs() NavigationRefs {
	var out NavigationRefs
	if n.Prev != nil {
		r := n.Prev.Ref()
		out.Prev = &r
	}
	if n.Next != nil {
		r := n.Next.Ref()
		out.Next = &r
	}
	return out
}
