package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lucasbessegato/TrokaiBackend/internal/models"
	"github.com/lucasbessegato/TrokaiBackend/internal/notify"
	"github.com/lucasbessegato/TrokaiBackend/internal/proposal"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
		return nil
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.UserRating{},
		&models.Proposal{},
		&models.Notification{},
		&models.RefreshToken{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newProposalService(db *gorm.DB) *proposal.Service {
	return &proposal.Service{DB: db, Notifier: &notify.Dispatcher{}}
}

// jsonCtx builds an echo context carrying a JSON body and the
// authenticated actor.
func jsonCtx(t *testing.T, e *echo.Echo, method, path string, body interface{}, actorID uint) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actorID != 0 {
		c.Set("userID", actorID)
	}
	return rec, c
}

// multipartCtx builds an echo context carrying a multipart form with
// optional file field.
func multipartCtx(t *testing.T, e *echo.Echo, method, path string, fields map[string]string, fileField, filename string, file []byte, actorID uint) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actorID != 0 {
		c.Set("userID", actorID)
	}
	return rec, c
}

type fakeMediaStore struct {
	uploads []string
	fail    error
}

func (f *fakeMediaStore) Upload(_ context.Context, folder, filename string, file io.Reader) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	_, _ = io.Copy(io.Discard, file)
	url := "https://cdn.test/" + folder + filename
	f.uploads = append(f.uploads, url)
	return url, nil
}

func createUser(t *testing.T, db *gorm.DB, username, phone string) models.User {
	t.Helper()
	u := models.User{
		Username:        username,
		Email:           username + "@example.com",
		PasswordHash:    "x",
		Phone:           phone,
		ReputationLevel: 1,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createProduct(t *testing.T, db *gorm.DB, owner models.User, title string) models.Product {
	t.Helper()
	cat := models.Category{Name: "Eletrônicos"}
	require.NoError(t, db.FirstOrCreate(&cat, models.Category{Name: "Eletrônicos"}).Error)
	p := models.Product{
		Title:       title,
		Description: "descrição de " + title,
		CategoryID:  cat.ID,
		UserID:      owner.ID,
		Status:      models.ProductAvailable,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
