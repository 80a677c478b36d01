package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"coursehub/pkg/models"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewStore(New(sampleTree()))).RegisterRoutes(r.Group(""))
	return r
}

func doGet(t *testing.T, r http.Handler, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v (%s)", path, err, w.Body.String())
		}
	}
	return w.Code
}

func TestHandler_GetTopic(t *testing.T) {
	r := newTestRouter(t)

	var e models.FlatEntry
	if code := doGet(t, r, "/topics/t2", &e); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if e.ID != "t2" || e.CourseKey != "A" || e.SectionTitle != "Section 1" || e.Position != 1 {
		t.Fatalf("entry = %+v", e)
	}

	if code := doGet(t, r, "/topics/ghost", nil); code != http.StatusNotFound {
		t.Fatalf("unknown topic status = %d, want 404", code)
	}
}

func TestHandler_NavFailSoft(t *testing.T) {
	r := newTestRouter(t)

	var nav models.NavigationRefs
	if code := doGet(t, r, "/topics/t3/nav", &nav); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if nav.Prev == nil || nav.Prev.ID != "t2" || nav.Next != nil {
		t.Fatalf("nav(t3) = %+v", nav)
	}

	nav = models.NavigationRefs{}
	if code := doGet(t, r, "/topics/ghost/nav", &nav); code != http.StatusOK {
		t.Fatalf("unknown id status = %d, want 200", code)
	}
	if nav.Prev != nil || nav.Next != nil {
		t.Fatalf("nav(ghost) = %+v, want empty", nav)
	}
}

func TestHandler_TopicPage(t *testing.T) {
	r := newTestRouter(t)

	var page struct {
		Topic models.FlatEntry `json:"topic"`
		Prev  *models.TopicRef `json:"prev"`
		Next  *models.TopicRef `json:"next"`
	}
	if code := doGet(t, r, "/topics/t1/page", &page); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if page.Topic.ID != "t1" || page.Prev != nil || page.Next == nil || page.Next.ID != "t2" {
		t.Fatalf("page = %+v", page)
	}
	if code := doGet(t, r, "/topics/ghost/page", nil); code != http.StatusNotFound {
		t.Fatalf("unknown page status = %d", code)
	}
}

func TestHandler_ListTopicsPaging(t *testing.T) {
	r := newTestRouter(t)

	var resp struct {
		Total int               `json:"total"`
		Items []models.TopicRef `json:"items"`
	}
	if code := doGet(t, r, "/topics?limit=2&offset=1", &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Total != 3 || len(resp.Items) != 2 || resp.Items[0].ID != "t2" || resp.Items[1].ID != "t3" {
		t.Fatalf("resp = %+v", resp)
	}

	resp.Items = nil
	if code := doGet(t, r, "/topics?course=A", &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Fatalf("course filter = %+v", resp)
	}
}

func TestHandler_Courses(t *testing.T) {
	r := newTestRouter(t)

	var list struct {
		Total int             `json:"total"`
		Items []CourseSummary `json:"items"`
	}
	if code := doGet(t, r, "/courses", &list); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if list.Total != 2 || list.Items[0].Key != "A" {
		t.Fatalf("courses = %+v", list)
	}

	var course struct {
		Key      string        `json:"key"`
		Sections []sectionView `json:"sections"`
	}
	if code := doGet(t, r, "/courses/B", &course); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if course.Key != "B" || len(course.Sections) != 1 || course.Sections[0].Topics[0].Position != 2 {
		t.Fatalf("course = %+v", course)
	}

	if code := doGet(t, r, "/courses/nope", nil); code != http.StatusNotFound {
		t.Fatalf("unknown course status = %d", code)
	}
}
