package catalog

import (
	"coursehub/pkg/models"
)

// Flatten walks courses -> sections -> topics in declaration order and
// returns one entry per topic with its ancestry attached.
func Flatten(courses []models.Course) []models.FlatEntry {
	total := 0
	for _, c := range courses {
		total += c.TopicCount()
	}

	out := make([]models.FlatEntry, 0, total)
	for _, c := range courses {
		for _, s := range c.Sections {
			for _, t := range s.Topics {
				out = append(out, models.FlatEntry{
					Topic:        t,
					CourseKey:    c.Key,
					SectionKey:   s.Key,
					CourseTitle:  c.Title,
					SectionTitle: s.Title,
					Position:     len(out),
				})
			}
		}
	}
	return out
}

// FindByID returns the first entry with the given id.
func FindByID(entries []models.FlatEntry, id string) (models.FlatEntry, bool) {
	i := indexOf(entries, id)
	if i < 0 {
		return models.FlatEntry{}, false
	}
	return entries[i], true
}

// GetNavigation returns the entries immediately before and after id.
// An unknown id yields an empty Navigation rather than an error.
func GetNavigation(entries []models.FlatEntry, id string) models.Navigation {
	return navigationAt(entries, indexOf(entries, id))
}

func indexOf(entries []models.FlatEntry, id string) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}

func navigationAt(entries []models.FlatEntry, i int) models.Navigation {
	var nav models.Navigation
	if i < 0 || i >= len(entries) {
		return nav
	}
	if i > 0 {
		prev := entries[i-1]
		nav.Prev = &prev
	}
	if i < len(entries)-1 {
		next := entries[i+1]
		nav.Next = &next
	}
	return nav
}
