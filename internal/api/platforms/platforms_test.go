package platforms

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

var platformCols = []string{"id", "name", "files", "api", "plugin_url", "created_at"}

func newTestRouter(db *sqlx.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandlers(db)
	r.GET("/api/platforms", h.ListPlatformsHandler())
	return r
}

func TestListPlatforms(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	now := time.Now()
	mock.ExpectQuery("SELECT.*FROM platforms ORDER BY name").
		WillReturnRows(sqlmock.NewRows(platformCols).
			AddRow("p1", "BigCommerce", nil, []byte(`{"access_token":{"label":"Access Token","secret":true}}`), nil, now).
			AddRow("p2", "Lightspeed", "{products,customers}", nil, nil, now).
			AddRow("p3", "Other", nil, nil, nil, now))

	w := httptest.NewRecorder()
	newTestRouter(sqlxDB).ServeHTTP(w, httptest.NewRequest("GET", "/api/platforms", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Platforms []struct {
			Name string `json:"name"`
			Mode string `json:"mode"`
		} `json:"platforms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Platforms) != 3 {
		t.Fatalf("got %d platforms, want 3", len(resp.Platforms))
	}

	wantModes := map[string]string{
		"BigCommerce": "api",
		"Lightspeed":  "csv",
		"Other":       "custom",
	}
	for _, p := range resp.Platforms {
		if p.Mode != wantModes[p.Name] {
			t.Errorf("platform %s mode = %q, want %q", p.Name, p.Mode, wantModes[p.Name])
		}
	}
}

func TestListPlatforms_DBError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	mock.ExpectQuery("SELECT.*FROM platforms").WillReturnError(errors.New("db down"))

	w := httptest.NewRecorder()
	newTestRouter(sqlxDB).ServeHTTP(w, httptest.NewRequest("GET", "/api/platforms", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
