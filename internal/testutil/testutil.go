// Package testutil holds fixtures shared by handler tests.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coursehub/internal/auth"
	"coursehub/internal/catalog"
	"coursehub/pkg/database"
	"coursehub/pkg/models"
)

var Tokens = auth.TokenService{Secret: []byte("test-secret"), Issuer: "coursehub", Duration: time.Hour}

func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewUser inserts a user and returns a bearer token for it.
func NewUser(t *testing.T, db *sql.DB, username string) (*auth.User, string) {
	t.Helper()
	u := auth.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := auth.NewRepo(db).CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	tok, _, err := Tokens.Sign(&u)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return &u, tok
}

// Courses is html:[structure:[h1,h2], forms:[h3]], css:[selectors:[c1,c2]].
func Courses() []models.Course {
	tp := func(id string) models.Topic {
		return models.Topic{ID: id, Title: "Topic " + id, Description: "about " + id}
	}
	return []models.Course{
		{Key: "html", Title: "HTML", Sections: []models.Section{
			{Key: "structure", Title: "Structure", Topics: []models.Topic{tp("h1"), tp("h2")}},
			{Key: "forms", Title: "Forms", Topics: []models.Topic{tp("h3")}},
		}},
		{Key: "css", Title: "CSS", Sections: []models.Section{
			{Key: "selectors", Title: "Selectors", Topics: []models.Topic{tp("c1"), tp("c2")}},
		}},
	}
}

func Store() *catalog.Store {
	return catalog.NewStore(catalog.New(Courses()))
}

// Router returns a test engine plus the /users group behind AuthMiddleware.
func Router(db *sql.DB) (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/users")
	protected.Use(auth.AuthMiddleware(Tokens, auth.NewRepo(db)))
	return r, protected
}

// Do sends a JSON request and decodes the JSON response into out when non-nil.
func Do(t *testing.T, h http.Handler, method, path, token string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w.Code
}
