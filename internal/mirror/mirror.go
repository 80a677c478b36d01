// Package mirror publishes and consumes static copies of the course tree.
// A mirror is a single JSON document served at /courses.json; export-mirror
// writes one, mirror-server serves it, and Fetch/Merge let a catalog be
// assembled from local content plus any number of mirrors.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"coursehub/pkg/models"
)

const Path = "/courses.json"

type Snapshot struct {
	BuiltAt time.Time       `json:"built_at"`
	Courses []models.Course `json:"courses"`
}

func Write(w io.Writer, courses []models.Course) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Snapshot{BuiltAt: time.Now().UTC(), Courses: courses})
}

func Read(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode mirror: %w", err)
	}
	return snap, nil
}

// Source is one place courses can come from.
type Source interface {
	Name() string
	Courses(ctx context.Context) ([]models.Course, error)
}

// HTTPSource reads a mirror served by another instance.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSource) Name() string { return s.BaseURL }

func (s *HTTPSource) Courses(ctx context.Context) ([]models.Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+Path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", s.BaseURL, err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request: %w", s.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: status %d: %s", s.BaseURL, resp.StatusCode, body)
	}
	snap, err := Read(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.BaseURL, err)
	}
	return snap.Courses, nil
}

// StaticSource wraps courses already in memory, e.g. loaded from local content.
type StaticSource struct {
	Label string
	List  []models.Course
}

func (s StaticSource) Name() string { return s.Label }

func (s StaticSource) Courses(context.Context) ([]models.Course, error) { return s.List, nil }

// Collect fetches every source in order and merges the results. A failing
// source is logged and skipped.
func Collect(ctx context.Context, sources ...Source) []models.Course {
	var out []models.Course
	for _, src := range sources {
		log.Printf("[mirror] fetching from %s", src.Name())
		courses, err := src.Courses(ctx)
		if err != nil {
			log.Printf("[mirror] source %s error: %v", src.Name(), err)
			continue
		}
		out = Merge(out, courses)
	}
	return out
}

// Merge folds incoming into base. Course and section order follows first
// appearance. For a course key seen before, base keeps its title, icon and
// color unless they are empty, and gains any sections it lacks; sections it
// already has are not touched, so topic order never interleaves.
func Merge(base, incoming []models.Course) []models.Course {
	out := make([]models.Course, len(base), len(base)+len(incoming))
	copy(out, base)

	pos := make(map[string]int, len(out))
	for i, c := range out {
		pos[c.Key] = i
	}

	for _, in := range incoming {
		i, ok := pos[in.Key]
		if !ok {
			pos[in.Key] = len(out)
			out = append(out, in)
			continue
		}
		out[i] = mergeCourse(out[i], in)
	}
	return out
}

func mergeCourse(base, in models.Course) models.Course {
	if base.Title == "" {
		base.Title = in.Title
	}
	if base.Icon == "" {
		base.Icon = in.Icon
	}
	if base.Color == "" {
		base.Color = in.Color
	}

	have := make(map[string]bool, len(base.Sections))
	for _, s := range base.Sections {
		have[s.Key] = true
	}
	sections := append([]models.Section(nil), base.Sections...)
	for _, s := range in.Sections {
		if !have[s.Key] {
			have[s.Key] = true
			sections = append(sections, s)
		}
	}
	base.Sections = sections
	return base
}

// FileHandler serves the mirror file at path, re-reading it per request so
// a fresh export is picked up without a restart.
func FileHandler(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := os.Open(path)
		if err != nil {
			http.Error(w, "cannot read mirror: "+err.Error(), http.StatusInternalServerError)
			return
		}
		defer f.Close()

		// validate so a half-written file doesn't silently break consumers
		snap, err := Read(f)
		if err != nil {
			http.Error(w, "mirror invalid: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Last-Modified", snap.BuiltAt.Format(http.TimeFormat))
		_ = json.NewEncoder(w).Encode(snap)
	})
}
