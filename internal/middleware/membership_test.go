package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/bytetide-io/bytetide-backend/internal/auth"
	"github.com/bytetide-io/bytetide-backend/internal/db/repositories"
)

var errMemberDB = errors.New("db error")

const (
	memberUserID    = "user-111"
	memberOrgID     = "org-222"
	memberProjectID = "c1a6b9e2-9d27-4e41-b2ff-5f3e8a7d1c90"
)

var membershipCols = []string{"id", "org_id", "user_id", "role", "created_at"}

var projectCols = []string{
	"id", "org_id", "domain", "source_platform", "shopify_url", "access_token",
	"items", "source_api", "special_demands", "status", "created_by", "created_at", "updated_at",
}

func membershipRow() *sqlmock.Rows {
	return sqlmock.NewRows(membershipCols).
		AddRow("mem-1", memberOrgID, memberUserID, "member", time.Now())
}

func projectRow(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(projectCols).AddRow(
		memberProjectID, memberOrgID, "example.com", "plat-1", "test.myshopify.com",
		"encrypted", "{products}", nil, nil, status, memberUserID, now, now,
	)
}

// orgRouter injects a user_id then runs the middleware under test on /:id
func orgRouter(mid gin.HandlerFunc, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/:id", func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
	}, mid, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("role")})
	})
	return r
}

func doMemberGet(r *gin.Engine, id string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/"+id, nil))
	return w
}

func TestRequireOrgMembership_NoUserID(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	mid := RequireOrgMembership(repositories.NewOrganizationRepository(db))
	w := doMemberGet(orgRouter(mid, ""), memberOrgID)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRequireOrgMembership_DBError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("SELECT.*FROM memberships").WillReturnError(errMemberDB)

	mid := RequireOrgMembership(repositories.NewOrganizationRepository(db))
	w := doMemberGet(orgRouter(mid, memberUserID), memberOrgID)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestRequireOrgMembership_NotMember(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("SELECT.*FROM memberships").
		WillReturnRows(sqlmock.NewRows(membershipCols))

	mid := RequireOrgMembership(repositories.NewOrganizationRepository(db))
	w := doMemberGet(orgRouter(mid, memberUserID), memberOrgID)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRequireOrgMembership_Member(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("SELECT.*FROM memberships").WillReturnRows(membershipRow())

	mid := RequireOrgMembership(repositories.NewOrganizationRepository(db))
	w := doMemberGet(orgRouter(mid, memberUserID), memberOrgID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestRequireProjectAccess_ProjectNotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	mock.ExpectQuery("SELECT.*FROM projects").
		WillReturnRows(sqlmock.NewRows(projectCols))

	mid := RequireProjectAccess(
		repositories.NewProjectRepository(sqlxDB),
		repositories.NewOrganizationRepository(db),
	)
	w := doMemberGet(orgRouter(mid, memberUserID), memberProjectID)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRequireProjectAccess_DraftHidden(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	mock.ExpectQuery("SELECT.*FROM projects").WillReturnRows(projectRow("draft"))

	mid := RequireProjectAccess(
		repositories.NewProjectRepository(sqlxDB),
		repositories.NewOrganizationRepository(db),
	)
	w := doMemberGet(orgRouter(mid, memberUserID), memberProjectID)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for draft project", w.Code)
	}
}

func TestRequireProjectAccess_NonMemberGets404(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	mock.ExpectQuery("SELECT.*FROM projects").WillReturnRows(projectRow("submitted"))
	mock.ExpectQuery("SELECT.*FROM memberships").
		WillReturnRows(sqlmock.NewRows(membershipCols))

	mid := RequireProjectAccess(
		repositories.NewProjectRepository(sqlxDB),
		repositories.NewOrganizationRepository(db),
	)
	w := doMemberGet(orgRouter(mid, memberUserID), memberProjectID)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for non-member", w.Code)
	}
}

func TestRequireProjectAccess_Member(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	mock.ExpectQuery("SELECT.*FROM projects").WillReturnRows(projectRow("submitted"))
	mock.ExpectQuery("SELECT.*FROM memberships").WillReturnRows(membershipRow())

	mid := RequireProjectAccess(
		repositories.NewProjectRepository(sqlxDB),
		repositories.NewOrganizationRepository(db),
	)
	w := doMemberGet(orgRouter(mid, memberUserID), memberProjectID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		role   string
		action auth.Action
		want   int
	}{
		{"viewer cannot upload", "viewer", auth.ActionUploadFiles, http.StatusForbidden},
		{"member can upload", "member", auth.ActionUploadFiles, http.StatusOK},
		{"member cannot delete files", "member", auth.ActionDeleteFiles, http.StatusForbidden},
		{"admin can delete files", "admin", auth.ActionDeleteFiles, http.StatusOK},
		{"admin cannot delete org", "admin", auth.ActionDeleteOrg, http.StatusForbidden},
		{"owner can delete org", "owner", auth.ActionDeleteOrg, http.StatusOK},
		{"no role denied", "", auth.ActionViewProjects, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) {
				if tt.role != "" {
					c.Set("role", tt.role)
				}
			}, RequirePermission(tt.action), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
