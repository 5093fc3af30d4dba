package handlers_test

import (
	"FormIntake/internal/config"
	"FormIntake/internal/handlers"
	"FormIntake/internal/middleware"
	"FormIntake/internal/model"
	"FormIntake/internal/repo"
	"FormIntake/internal/service"
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	router    http.Handler
	cfg       *config.Config
	records   repo.RecordRepository
	users     repo.UserRepository
	uploadDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:       dir,
		UploadDir:     filepath.Join(dir, "uploads"),
		UploadMaxMB:   1,
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		AdminUsername: "admin",
		AdminPassword: "admin123",
	}
	logger := zap.NewNop().Sugar()

	records := repo.NewJSONRecordRepository(filepath.Join(dir, "data.json"))
	users := repo.NewJSONUserRepository(filepath.Join(dir, "users.json"))
	attachments, err := repo.NewFSAttachmentStore(cfg.UploadDir)
	require.NoError(t, err)

	userSvc := service.NewUserService(users)
	_, err = userSvc.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword)
	require.NoError(t, err)
	recordSvc := service.NewRecordService(records, attachments, logger)

	h, err := handlers.NewHandler(userSvc, recordSvc, attachments,
		middleware.NewSessions(cfg.SessionSecret, cfg.SessionTTL, false), logger, cfg)
	require.NoError(t, err)

	return &testApp{router: h.Router, cfg: cfg, records: records, users: users, uploadDir: cfg.UploadDir}
}

func (a *testApp) do(t *testing.T, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// login выполняет вход и возвращает cookie сессии.
func (a *testApp) login(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()
	rr := a.do(t, postForm("/admin/login", url.Values{"username": {username}, "password": {password}}), nil)
	require.Equal(t, http.StatusFound, rr.Code, rr.Body.String())
	var out []*http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			out = append(out, c)
		}
	}
	require.NotEmpty(t, out)
	return out
}

// addUser добавляет в хранилище пользователя, который не является администратором.
func (a *testApp) addUser(t *testing.T, login, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = a.users.CreateUser(context.Background(), &model.User{Login: login, Password: string(hash)})
	require.NoError(t, err)
}

type filePart struct {
	field, name, content string
}

func multipartSubmit(t *testing.T, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/submit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func sampleFields() map[string]string {
	return map[string]string{
		"name":      "Ali",
		"surname":   "Valiyev",
		"phone":     "+998901234567",
		"residence": "Tashkent",
	}
}
