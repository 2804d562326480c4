package handlers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/pingup/backend/internal/middleware"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories/repotest"
	"github.com/anonto42/pingup/backend/internal/router"
	"github.com/anonto42/pingup/backend/internal/services"
	"github.com/anonto42/pingup/backend/internal/testutil"
	"github.com/anonto42/pingup/backend/pkg/config"
	"github.com/anonto42/pingup/backend/pkg/webhook"
	"github.com/anonto42/pingup/backend/validators"
)

var webhookSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("handler-test-secret"))

type harness struct {
	e             *echo.Echo
	users         *repotest.Users
	posts         *repotest.Posts
	notifications *repotest.Notifications
	media         *testutil.MediaStore
	clock         *testutil.StubClock
	verifier      *webhook.Verifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		users:         repotest.NewUsers(),
		posts:         repotest.NewPosts(),
		notifications: repotest.NewNotifications(),
		media:         &testutil.MediaStore{},
		clock:         testutil.FixedClock(),
	}
	stories := repotest.NewStories()
	messages := repotest.NewMessages()
	notifier := services.NewNotifier(h.notifications)
	svc := router.Services{
		Users:         services.NewUserService(h.users, h.posts, h.media, notifier),
		Graph:         services.NewGraphService(h.users, notifier),
		Posts:         services.NewPostService(h.posts, h.users, h.media, notifier, h.clock),
		Stories:       services.NewStoryService(stories, h.users, h.media, h.clock),
		Messages:      services.NewMessageService(messages, h.users, h.media, notifier, h.clock),
		Notifications: services.NewNotificationService(h.notifications, h.users, h.clock),
	}

	v, err := webhook.NewVerifier(webhookSecret)
	require.NoError(t, err)
	h.verifier = v

	h.e = echo.New()
	h.e.Validator = validators.NewValidator()
	router.SetupMiddleware(h.e, &config.Config{ClientURL: "http://localhost:5173", BodyLimit: "10M"})
	router.SetupRoutes(h.e, svc, middleware.HeaderIdentity(), h.verifier)
	return h
}

func (h *harness) user(name string) primitive.ObjectID {
	return h.users.Add(models.User{ClerkID: "clerk_" + name, Email: name + "@example.com", Username: name, FullName: name})
}

type request struct {
	method      string
	path        string
	as          string
	body        io.Reader
	contentType string
	header      http.Header
}

func (h *harness) do(t *testing.T, r request) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(r.method, r.path, r.body)
	for k, v := range r.header {
		req.Header[k] = v
	}
	if r.contentType != "" {
		req.Header.Set(echo.HeaderContentType, r.contentType)
	}
	if r.as != "" {
		req.Header.Set(middleware.HeaderClerkUserID, "clerk_"+r.as)
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

type part struct {
	field, filename, contentType, content string
}

// multipartBody builds a form with text fields and file parts carrying their own MIME types
func multipartBody(t *testing.T, fields map[string]string, files ...part) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		hdr.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = pw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
