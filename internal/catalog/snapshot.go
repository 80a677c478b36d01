package catalog

import (
	"time"

	"coursehub/pkg/models"
)

// Catalog is an immutable snapshot of the course tree and its flattened form.
// It is safe for concurrent use; nothing mutates it after New returns.
type Catalog struct {
	courses []models.Course
	entries []models.FlatEntry
	index   map[string]int // id -> first position
	builtAt time.Time
}

type CourseSummary struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
	Sections int    `json:"sections"`
	Topics   int    `json:"topics"`
}

func New(courses []models.Course) *Catalog {
	entries := Flatten(courses)
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, dup := index[e.ID]; dup {
			continue
		}
		index[e.ID] = i
	}
	return &Catalog{
		courses: courses,
		entries: entries,
		index:   index,
		builtAt: time.Now().UTC(),
	}
}

func (c *Catalog) Len() int { return len(c.entries) }

func (c *Catalog) BuiltAt() time.Time { return c.builtAt }

// Entries returns the flattened catalog. Callers must not modify it.
func (c *Catalog) Entries() []models.FlatEntry { return c.entries }

func (c *Catalog) Topic(id string) (models.FlatEntry, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.FlatEntry{}, false
	}
	return c.entries[i], true
}

func (c *Catalog) Navigation(id string) models.Navigation {
	i, ok := c.index[id]
	if !ok {
		return models.Navigation{}
	}
	return navigationAt(c.entries, i)
}

func (c *Catalog) Course(key string) (models.Course, bool) {
	for _, co := range c.courses {
		if co.Key == key {
			return co, true
		}
	}
	return models.Course{}, false
}

func (c *Catalog) Courses() []CourseSummary {
	out := make([]CourseSummary, 0, len(c.courses))
	for _, co := range c.courses {
		out = append(out, CourseSummary{
			Key:      co.Key,
			Title:    co.Title,
			Icon:     co.Icon,
			Color:    co.Color,
			Sections: len(co.Sections),
			Topics:   co.TopicCount(),
		})
	}
	return out
}

// CourseEntries returns the flattened entries belonging to one course,
// optionally narrowed to a section. Order follows the catalog.
func (c *Catalog) CourseEntries(courseKey, sectionKey string) []models.FlatEntry {
	var out []models.FlatEntry
	for _, e := range c.entries {
		if courseKey != "" && e.CourseKey != courseKey {
			continue
		}
		if sectionKey != "" && e.SectionKey != sectionKey {
			continue
		}
		out = append(out, e)
	}
	return out
}
