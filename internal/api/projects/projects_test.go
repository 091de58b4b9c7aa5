package projects

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/bytetide-io/bytetide-backend/internal/config"
	"github.com/bytetide-io/bytetide-backend/internal/crypto"
	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/bytetide-io/bytetide-backend/internal/storage"
)

var errDB = errors.New("db error")

const (
	testUserID    = "user-aaa"
	testOrgID     = "org-bbb"
	testProjectID = "7f6e5d4c-3b2a-4190-8877-665544332211"
)

// fakeStore is an in-memory Storage for handler tests
type fakeStore struct {
	objects    map[string][]byte
	deleted    []string
	failUpload bool
	failDelete bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Upload(_ context.Context, path string, reader io.Reader, _ int64) (*storage.UploadResult, error) {
	if s.failUpload {
		return nil, errors.New("upload failed")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	s.objects[path] = data
	return &storage.UploadResult{Path: path, Size: int64(len(data)), Checksum: "deadbeef"}, nil
}

func (s *fakeStore) Download(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := s.objects[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Delete(_ context.Context, path string) error {
	if s.failDelete {
		return errors.New("delete failed")
	}
	s.deleted = append(s.deleted, path)
	delete(s.objects, path)
	return nil
}

func (s *fakeStore) DeletePrefix(_ context.Context, prefix string) error {
	if s.failDelete {
		return errors.New("delete failed")
	}
	for path := range s.objects {
		if strings.HasPrefix(path, prefix) {
			s.deleted = append(s.deleted, path)
			delete(s.objects, path)
		}
	}
	return nil
}

func (s *fakeStore) GetURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "fake://" + path, nil
}

func (s *fakeStore) Exists(_ context.Context, path string) (bool, error) {
	_, ok := s.objects[path]
	return ok, nil
}

func (s *fakeStore) GetMetadata(_ context.Context, path string) (*storage.FileMetadata, error) {
	data, ok := s.objects[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return &storage.FileMetadata{Path: path, Size: int64(len(data))}, nil
}

func newTestHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock, *fakeStore, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	cipher, err := crypto.DeriveTokenCipher("test-encryption-passphrase")
	if err != nil {
		t.Fatalf("DeriveTokenCipher: %v", err)
	}

	cfg := &config.Config{}
	cfg.Uploads.MaxFileSizeMB = 50
	cfg.Uploads.MaxFormSizeMB = 200

	store := newFakeStore()
	h := NewHandlers(cfg, sqlx.NewDb(db, "sqlmock"), store, cipher)
	return h, mock, store, func() { db.Close() }
}

func testProject(status string) *models.Project {
	return &models.Project{
		ID:             testProjectID,
		OrganizationID: testOrgID,
		Domain:         "shop.example.com",
		Status:         status,
	}
}

// projectRouter simulates the access middleware by seeding the context
func projectRouter(method, path string, project *models.Project, fn gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, path, func(c *gin.Context) {
		c.Set("user_id", testUserID)
		if project != nil {
			c.Set("project", project)
		}
	}, fn)
	return r
}

var projectFileCols = []string{
	"id", "project_id", "file_name", "file_type", "file_path",
	"file_size", "checksum", "is_initial", "upload_date",
}

func fileRow(id, name, fileType string) *sqlmock.Rows {
	return sqlmock.NewRows(projectFileCols).AddRow(
		id, testProjectID, name, fileType,
		storage.ProjectFilePath(testProjectID, name), 1024, "deadbeef", false, time.Now(),
	)
}

func TestDeleteProject_NotDeletable(t *testing.T) {
	h, _, _, cleanup := newTestHandlers(t)
	defer cleanup()

	r := projectRouter("DELETE", "/projects/:id", testProject(models.ProjectStatusInProgress), h.DeleteProjectHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/projects/"+testProjectID, nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"currentStatus":"in_progress"`) {
		t.Errorf("body missing currentStatus: %s", w.Body.String())
	}
}

// expectCascadeRowDeletes queues the row deletions the delete endpoint runs
// after removing storage objects.
func expectCascadeRowDeletes(mock sqlmock.Sqlmock) {
	mock.ExpectExec("DELETE FROM project_files").
		WithArgs(testProjectID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM previews WHERE").
		WithArgs(testProjectID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM preview_files").
		WithArgs(testProjectID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM projects").
		WithArgs(testProjectID).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestDeleteProject_Success(t *testing.T) {
	h, mock, store, cleanup := newTestHandlers(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, project_id, file_name").
		WithArgs(testProjectID).
		WillReturnRows(fileRow("file-1", "products.csv", "products"))
	mock.ExpectQuery("SELECT id, project_id, kind").
		WithArgs(testProjectID).
		WillReturnRows(sqlmock.NewRows(previewFileCols))
	expectCascadeRowDeletes(mock)

	r := projectRouter("DELETE", "/projects/:id", testProject(models.ProjectStatusSubmitted), h.DeleteProjectHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/projects/"+testProjectID, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	wantPath := storage.ProjectFilePath(testProjectID, "products.csv")
	if len(store.deleted) != 1 || store.deleted[0] != wantPath {
		t.Errorf("deleted objects = %v, want [%s]", store.deleted, wantPath)
	}
	if strings.Contains(w.Body.String(), "warnings") {
		t.Errorf("unexpected warnings in body: %s", w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteProject_CascadesPreviewObjects(t *testing.T) {
	h, mock, store, cleanup := newTestHandlers(t)
	defer cleanup()

	previewPath := "preview-files/" + testProjectID + "/products.json"
	store.objects[previewPath] = []byte(`[{"title":"x"}]`)

	mock.ExpectQuery("SELECT id, project_id, file_name").
		WithArgs(testProjectID).
		WillReturnRows(fileRow("file-1", "products.csv", "products"))
	mock.ExpectQuery("SELECT id, project_id, kind").
		WithArgs(testProjectID).
		WillReturnRows(sqlmock.NewRows(previewFileCols).
			AddRow("pf-1", testProjectID, "products", "products.json", previewPath, 45, time.Now()))
	expectCascadeRowDeletes(mock)

	r := projectRouter("DELETE", "/projects/:id", testProject(models.ProjectStatusSubmitted), h.DeleteProjectHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/projects/"+testProjectID, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if _, ok := store.objects[previewPath]; ok {
		t.Errorf("preview object %s survived the cascade", previewPath)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteProject_StorageFailureWarnsButDeletes(t *testing.T) {
	h, mock, store, cleanup := newTestHandlers(t)
	defer cleanup()
	store.failDelete = true

	mock.ExpectQuery("SELECT id, project_id, file_name").
		WillReturnRows(fileRow("file-1", "products.csv", "products"))
	mock.ExpectQuery("SELECT id, project_id, kind").
		WillReturnRows(sqlmock.NewRows(previewFileCols))
	expectCascadeRowDeletes(mock)

	r := projectRouter("DELETE", "/projects/:id", testProject(models.ProjectStatusSubmitted), h.DeleteProjectHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/projects/"+testProjectID, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "warnings") {
		t.Errorf("expected warnings in body: %s", w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("row deletes should still run: %v", err)
	}
}

func TestDeleteProject_FileRowDeleteFails(t *testing.T) {
	h, mock, _, cleanup := newTestHandlers(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, project_id, file_name").
		WillReturnRows(fileRow("file-1", "products.csv", "products"))
	mock.ExpectQuery("SELECT id, project_id, kind").
		WillReturnRows(sqlmock.NewRows(previewFileCols))
	mock.ExpectExec("DELETE FROM project_files").
		WillReturnError(errDB)

	r := projectRouter("DELETE", "/projects/:id", testProject(models.ProjectStatusSubmitted), h.DeleteProjectHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/projects/"+testProjectID, nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to delete project files") {
		t.Errorf("body = %s, want file-deletion error", w.Body.String())
	}
}

func TestListProjects(t *testing.T) {
	h, mock, _, cleanup := newTestHandlers(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "org_id", "domain", "source_platform", "shopify_url", "access_token",
		"items", "source_api", "special_demands", "status", "created_by", "created_at", "updated_at",
	}).AddRow(
		testProjectID, testOrgID, "shop.example.com", "plat-1", "shop.myshopify.com",
		"sealed", "{products}", nil, nil, "submitted", testUserID, now, now,
	)
	mock.ExpectQuery("SELECT id, org_id, domain").
		WithArgs(testOrgID, models.ProjectStatusDraft).
		WillReturnRows(rows)

	r := projectRouter("GET", "/orgs/:id/projects", nil, h.ListProjectsHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/orgs/"+testOrgID+"/projects", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), `"access_token"`) {
		t.Errorf("access token leaked in listing: %s", w.Body.String())
	}
}

func TestGetProject(t *testing.T) {
	h, mock, _, cleanup := newTestHandlers(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, project_id, file_name").
		WithArgs(testProjectID).
		WillReturnRows(fileRow("file-1", "products.csv", "products"))

	r := projectRouter("GET", "/projects/:id", testProject(models.ProjectStatusSubmitted), h.GetProjectHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/projects/"+testProjectID, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "products.csv") {
		t.Errorf("body missing files: %s", w.Body.String())
	}
}

func TestGetProject_FileListDBError(t *testing.T) {
	h, mock, _, cleanup := newTestHandlers(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, project_id, file_name").
		WillReturnError(sql.ErrConnDone)

	r := projectRouter("GET", "/projects/:id", testProject(models.ProjectStatusSubmitted), h.GetProjectHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/projects/"+testProjectID, nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
