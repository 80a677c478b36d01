package models

// Course is the top-level grouping of the catalog. Sections keep the order
// in which they were declared in the content source.
type Course struct {
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	Icon     string    `json:"icon,omitempty"`  // display only
	Color    string    `json:"color,omitempty"` // display only
	Sections []Section `json:"sections"`
}

// Section is an ordered group of topics inside a course.
type Section struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Topics []Topic `json:"topics"`
}

// Topic is a single lesson. Only ID, Title and Description are structural;
// the payload belongs to the content authors and is passed through untouched.
type Topic struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Payload     TopicPayload `json:"payload"`
}

type TopicPayload struct {
	Content  string             `json:"content,omitempty"` // markdown body
	Code     string             `json:"code,omitempty"`
	Language string             `json:"language,omitempty"`
	Practice []PracticeQuestion `json:"practice,omitempty"`
}

type PracticeQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

// TopicCount returns the number of topics across all sections.
func (c Course) TopicCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Topics)
	}
	return n
}
