package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if token == "good" {
		return &auth.Token{UID: "uid_1"}, nil
	}
	return nil, errors.New("bad token")
}

type fakeAuthenticator struct{}

func (fakeAuthenticator) Authenticate(_ context.Context, id string) (*models.User, error) {
	if id == "uid_1" {
		return &models.User{ClerkID: id, Username: "alice"}, nil
	}
	return nil, apperr.Unauthorized("Unauthorized - User not found")
}

func newContext(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestFirebaseIdentity(t *testing.T) {
	resolve := FirebaseIdentity(fakeVerifier{})

	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"Bearer good", "uid_1", false},
		{"bearer good", "uid_1", false},
		{"Bearer bad", "", true},
		{"Token good", "", true},
		{"Bearer", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			c, _ := newContext(tt.header)
			got, err := resolve(c)
			if tt.wantErr {
				assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifyAndRequireUser(t *testing.T) {
	handler := Identify(FirebaseIdentity(fakeVerifier{}))(RequireUser(fakeAuthenticator{})(func(c echo.Context) error {
		assert.Equal(t, "uid_1", IdentityID(c))
		return c.String(http.StatusOK, CurrentUser(c).Username)
	}))

	c, rec := newContext("Bearer good")
	require.NoError(t, handler(c))
	assert.Equal(t, "alice", rec.Body.String())

	c, _ = newContext("")
	err := handler(c)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Nil(t, CurrentUser(c))
}

func TestHeaderIdentity(t *testing.T) {
	c, _ := newContext("")
	c.Request().Header.Set(HeaderClerkUserID, "  user_1 ")
	id, err := HeaderIdentity()(c)
	require.NoError(t, err)
	assert.Equal(t, "user_1", id)
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"app error", apperr.ErrPostNotFound, http.StatusNotFound, "Post not found"},
		{"wrapped app error", fmt.Errorf("ctx: %w", apperr.ErrAlreadyFollowing), http.StatusConflict, "Already following this user"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests, "rate limit exceeded"},
		{"store failure", fmt.Errorf("find post: %w", errors.New("connection reset")), http.StatusInternalServerError, "Internal server error"},
		{"upload failure", apperr.External("Failed to upload media", errors.New("s3 down")), http.StatusBadGateway, "Failed to upload media"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext("")
			HTTPErrorHandler(tt.err, c)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"success":false,"message":%q}`, tt.message), rec.Body.String())
		})
	}
}

func TestRequestLogger_PropagatesErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Use(RequestLogger())
	e.GET("/boom", func(c echo.Context) error { return apperr.ErrUserNotFound })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}
