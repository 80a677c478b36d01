package progress

import (
	"net/http"
	"testing"

	"coursehub/internal/testutil"
	"coursehub/pkg/models"
)

func setup(t *testing.T) (http.Handler, string) {
	t.Helper()
	db := testutil.OpenDB(t)
	_, token := testutil.NewUser(t, db, "ada")
	r, users := testutil.Router(db)
	NewHandler(NewRepo(db), testutil.Store(), nil).RegisterRoutes(users)
	return r, token
}

func TestComplete_UnknownTopic(t *testing.T) {
	r, token := setup(t)
	code := testutil.Do(t, r, http.MethodPost, "/users/progress", token, map[string]string{"topic_id": "ghost"}, nil)
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestComplete_RequiresAuth(t *testing.T) {
	r, _ := setup(t)
	code := testutil.Do(t, r, http.MethodPost, "/users/progress", "", map[string]string{"topic_id": "h1"}, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}

func TestComplete_IdempotentAndReturnsNext(t *testing.T) {
	r, token := setup(t)

	var resp struct {
		Entry   models.ProgressEntry `json:"entry"`
		Created bool                 `json:"created"`
		Next    *models.TopicRef     `json:"next"`
	}
	code := testutil.Do(t, r, http.MethodPost, "/users/progress", token, map[string]string{"topic_id": "h3"}, &resp)
	if code != http.StatusOK || !resp.Created {
		t.Fatalf("first complete = %d %+v", code, resp)
	}
	if resp.Entry.CourseKey != "html" {
		t.Errorf("course key = %q", resp.Entry.CourseKey)
	}
	// last html topic -> first css topic
	if resp.Next == nil || resp.Next.ID != "c1" {
		t.Errorf("next = %+v, want c1", resp.Next)
	}

	resp.Created = true
	testutil.Do(t, r, http.MethodPost, "/users/progress", token, map[string]string{"topic_id": "h3"}, &resp)
	if resp.Created {
		t.Error("second completion reported created")
	}

	var list struct {
		Total int `json:"total"`
	}
	testutil.Do(t, r, http.MethodGet, "/users/progress?course=html", token, nil, &list)
	if list.Total != 1 {
		t.Fatalf("total = %d, want 1", list.Total)
	}
}

func TestSummaryAndNext(t *testing.T) {
	r, token := setup(t)
	for _, id := range []string{"h1", "h2", "c1"} {
		if code := testutil.Do(t, r, http.MethodPost, "/users/progress", token, map[string]string{"topic_id": id}, nil); code != http.StatusOK {
			t.Fatalf("complete %s = %d", id, code)
		}
	}

	var summary struct {
		Items []models.CourseProgress `json:"items"`
	}
	testutil.Do(t, r, http.MethodGet, "/users/progress/summary", token, nil, &summary)
	if len(summary.Items) != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if s := summary.Items[0]; s.CourseKey != "html" || s.Completed != 2 || s.Total != 3 {
		t.Errorf("html summary = %+v", s)
	}
	if s := summary.Items[1]; s.CourseKey != "css" || s.Completed != 1 || s.Total != 2 {
		t.Errorf("css summary = %+v", s)
	}

	var next struct {
		Topic *models.TopicRef `json:"topic"`
	}
	testutil.Do(t, r, http.MethodGet, "/users/progress/next", token, nil, &next)
	if next.Topic == nil || next.Topic.ID != "h3" {
		t.Fatalf("next = %+v, want h3", next.Topic)
	}
	testutil.Do(t, r, http.MethodGet, "/users/progress/next?course=css", token, nil, &next)
	if next.Topic == nil || next.Topic.ID != "c2" {
		t.Fatalf("next(css) = %+v, want c2", next.Topic)
	}

	if code := testutil.Do(t, r, http.MethodDelete, "/users/progress/h1", token, nil, nil); code != http.StatusOK {
		t.Fatalf("uncomplete = %d", code)
	}
	testutil.Do(t, r, http.MethodGet, "/users/progress/next", token, nil, &next)
	if next.Topic == nil || next.Topic.ID != "h1" {
		t.Fatalf("next after uncomplete = %+v, want h1", next.Topic)
	}
}
