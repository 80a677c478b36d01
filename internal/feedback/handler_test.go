package feedback

import (
	"net/http"
	"strconv"
	"testing"

	"coursehub/internal/testutil"
	"coursehub/pkg/models"
)

func TestFeedbackFlow(t *testing.T) {
	db := testutil.OpenDB(t)
	_, alice := testutil.NewUser(t, db, "alice")
	_, bob := testutil.NewUser(t, db, "bob")
	r, users := testutil.Router(db)
	h := NewHandler(NewRepo(db), testutil.Store())
	h.RegisterPublicRoutes(r.Group(""))
	h.RegisterProtectedRoutes(users)

	if code := testutil.Do(t, r, http.MethodPost, "/users/feedback", alice, map[string]any{"topic_id": "ghost", "rating": 4}, nil); code != http.StatusNotFound {
		t.Fatalf("unknown topic = %d", code)
	}
	if code := testutil.Do(t, r, http.MethodPost, "/users/feedback", alice, map[string]any{"topic_id": "h1", "rating": 9}, nil); code != http.StatusBadRequest {
		t.Fatalf("bad rating = %d", code)
	}

	var fb models.Feedback
	if code := testutil.Do(t, r, http.MethodPost, "/users/feedback", alice, map[string]any{"topic_id": "h1", "rating": 5, "text": " great "}, &fb); code != http.StatusCreated {
		t.Fatalf("create = %d", code)
	}
	if fb.ID == 0 || fb.Text != "great" || fb.Timestamp.IsZero() {
		t.Fatalf("feedback = %+v", fb)
	}
	testutil.Do(t, r, http.MethodPost, "/users/feedback", bob, map[string]any{"topic_id": "h1", "rating": 2}, nil)

	var list struct {
		Stats Stats             `json:"stats"`
		Items []models.Feedback `json:"items"`
	}
	if code := testutil.Do(t, r, http.MethodGet, "/topics/h1/feedback", "", nil, &list); code != http.StatusOK {
		t.Fatalf("list = %d", code)
	}
	if list.Stats.Count != 2 || list.Stats.Average != 3.5 || len(list.Items) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if code := testutil.Do(t, r, http.MethodGet, "/topics/ghost/feedback", "", nil, nil); code != http.StatusNotFound {
		t.Fatalf("list unknown topic = %d", code)
	}

	path := "/users/feedback/" + strconv.FormatInt(fb.ID, 10)
	if code := testutil.Do(t, r, http.MethodDelete, path, bob, nil, nil); code != http.StatusNotFound {
		t.Fatalf("delete by non-owner = %d, want 404", code)
	}
	if code := testutil.Do(t, r, http.MethodDelete, path, alice, nil, nil); code != http.StatusOK {
		t.Fatalf("delete by owner = %d", code)
	}
	if code := testutil.Do(t, r, http.MethodDelete, "/users/feedback/abc", alice, nil, nil); code != http.StatusBadRequest {
		t.Fatalf("delete bad id = %d", code)
	}
}
