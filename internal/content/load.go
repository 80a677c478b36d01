package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"coursehub/pkg/models"
)

var ErrDuplicateCourse = errors.New("duplicate course key")

// Document layout, in declaration order:
//
//	html:
//	  title: HTML
//	  sections:
//	    basics:
//	      title: Basics
//	      topics:
//	        - id: html-intro
//	          title: Introduction
type courseDoc struct {
	Title    string    `yaml:"title"`
	Icon     string    `yaml:"icon"`
	Color    string    `yaml:"color"`
	Sections yaml.Node `yaml:"sections"`
}

type sectionDoc struct {
	Title  string     `yaml:"title"`
	Topics []topicDoc `yaml:"topics"`
}

type topicDoc struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Content     string        `yaml:"content"`
	Code        string        `yaml:"code"`
	Language    string        `yaml:"language"`
	Practice    []practiceDoc `yaml:"practice"`
}

type practiceDoc struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Hint     string `yaml:"hint"`
}

// Load reads a single content file or every YAML file in a directory.
func Load(path string) ([]models.Course, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat content: %w", err)
	}
	if fi.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

func LoadFile(path string) ([]models.Course, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	courses, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return courses, nil
}

// LoadDir loads *.yaml and *.yml files in lexical name order, so a
// numeric prefix (01-html.yaml, 02-css.yaml) fixes the course order.
func LoadDir(dir string) ([]models.Course, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var names []string
	for _, de := range des {
		if de.IsDir() || !isContentFile(de.Name()) {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	var out []models.Course
	seen := make(map[string]string)
	for _, name := range names {
		courses, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		for _, c := range courses {
			if prev, ok := seen[c.Key]; ok {
				return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateCourse, c.Key, prev, name)
			}
			seen[c.Key] = name
			out = append(out, c)
		}
	}
	return out, nil
}

func isContentFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Parse decodes one YAML document. Mapping order is kept by walking
// yaml.Node pairs instead of decoding into Go maps.
func Parse(data []byte) ([]models.Course, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping of courses", top.Line)
	}

	var out []models.Course
	seen := make(map[string]bool)
	for i := 0; i+1 < len(top.Content); i += 2 {
		key := top.Content[i].Value
		if seen[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCourse, key)
		}
		seen[key] = true

		c, err := decodeCourse(key, top.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeCourse(key string, n *yaml.Node) (models.Course, error) {
	var doc courseDoc
	if err := n.Decode(&doc); err != nil {
		return models.Course{}, fmt.Errorf("course %q: %w", key, err)
	}

	c := models.Course{Key: key, Title: doc.Title, Icon: doc.Icon, Color: doc.Color}
	if doc.Sections.Kind == 0 || doc.Sections.Tag == "!!null" {
		return c, nil
	}
	if doc.Sections.Kind != yaml.MappingNode {
		return models.Course{}, fmt.Errorf("course %q line %d: sections must be a mapping", key, doc.Sections.Line)
	}

	for i := 0; i+1 < len(doc.Sections.Content); i += 2 {
		skey := doc.Sections.Content[i].Value
		var sd sectionDoc
		if err := doc.Sections.Content[i+1].Decode(&sd); err != nil {
			return models.Course{}, fmt.Errorf("course %q section %q: %w", key, skey, err)
		}
		c.Sections = append(c.Sections, models.Section{
			Key:    skey,
			Title:  sd.Title,
			Topics: toTopics(sd.Topics),
		})
	}
	return c, nil
}

func toTopics(docs []topicDoc) []models.Topic {
	out := make([]models.Topic, 0, len(docs))
	for _, d := range docs {
		t := models.Topic{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Payload: models.TopicPayload{
				Content:  d.Content,
				Code:     d.Code,
				Language: d.Language,
			},
		}
		for _, p := range d.Practice {
			t.Payload.Practice = append(t.Payload.Practice, models.PracticeQuestion{
				Question: p.Question,
				Answer:   p.Answer,
				Hint:     p.Hint,
			})
		}
		out = append(out, t)
	}
	return out
}
