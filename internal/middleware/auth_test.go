package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/bytetide-io/bytetide-backend/internal/auth"
	"github.com/bytetide-io/bytetide-backend/internal/db/repositories"
)

const authTestUserID = "auth-user-1"
const authTestEmail = "dev@example.com"

var userCols = []string{"id", "email", "name", "created_at", "updated_at"}

func authRouter(userRepo *repositories.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", AuthMiddleware(userRepo), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"email":   c.GetString("email"),
		})
	})
	return r
}

func doAuthGet(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	w := doAuthGet(authRouter(repositories.NewUserRepository(db)), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_NotBearer(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	w := doAuthGet(authRouter(repositories.NewUserRepository(db)), "Basic abc123")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	w := doAuthGet(authRouter(repositories.NewUserRepository(db)), "Bearer not-a-jwt")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_UserNotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	token, err := auth.GenerateJWT(authTestUserID, authTestEmail, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	mock.ExpectQuery("SELECT.*FROM users").
		WillReturnRows(sqlmock.NewRows(userCols))

	w := doAuthGet(authRouter(repositories.NewUserRepository(db)), "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	token, err := auth.GenerateJWT(authTestUserID, authTestEmail, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	now := time.Now()
	mock.ExpectQuery("SELECT.*FROM users").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(authTestUserID, authTestEmail, "Dev User", now, now))

	w := doAuthGet(authRouter(repositories.NewUserRepository(db)), "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}
