package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/models"
	"shipment-tracking-api-server/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) Parse(token string) (models.Caller, error) {
	args := m.Called(token)
	return args.Get(0).(models.Caller), args.Error(1)
}

type mockGate struct {
	mock.Mock
}

func (m *mockGate) Authorize(ctx context.Context, caller models.Caller, op services.Operation) (models.Role, error) {
	args := m.Called(ctx, caller, op)
	return args.Get(0).(models.Role), args.Error(1)
}

func whoami(c *gin.Context) {
	caller, _ := CallerFrom(c)
	c.JSON(http.StatusOK, gin.H{"id": caller.ID})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticate(t *testing.T) {
	tokens := &mockTokens{}
	tokens.On("Parse", "good").Return(models.Caller{ID: "user-1"}, nil)
	tokens.On("Parse", "bad").Return(models.Caller{}, errors.New("expired"))

	r := gin.New()
	r.GET("/me", Authenticate(tokens), whoami)

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Basic abc", http.StatusUnauthorized},
		{"Bearer ", http.StatusUnauthorized},
		{"Bearer bad", http.StatusUnauthorized},
		{"Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := serve(r, req)
		assert.Equal(t, tc.status, w.Code, tc.header)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	assert.Equal(t, "user-1", decode(t, serve(r, req))["id"])
}

func TestAuthorizeAdminConsole(t *testing.T) {
	gate := &mockGate{}
	gate.On("Authorize", mock.Anything, models.Caller{ID: "admin-1"}, services.OpAdminConsole).Return(models.RoleAdmin, nil)
	gate.On("Authorize", mock.Anything, models.Caller{ID: "user-1"}, services.OpAdminConsole).
		Return(models.RoleUser, fmt.Errorf("%w: admin only", apperrors.ErrPermissionDenied))

	newRouter := func(id string) *gin.Engine {
		r := gin.New()
		r.GET("/admin", func(c *gin.Context) { SetCaller(c, models.Caller{ID: id}) }, Authorize(gate, services.OpAdminConsole), whoami)
		return r
	}

	w := serve(newRouter("admin-1"), httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(newRouter("user-1"), httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, "permission_denied", body["code"])
	assert.Equal(t, DashboardPath, body["redirect"])

	gate.AssertExpectations(t)
}

func TestAuthorizeWithoutCaller(t *testing.T) {
	r := gin.New()
	r.GET("/admin", Authorize(&mockGate{}, services.OpAdminConsole), whoami)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAbortWithError(t *testing.T) {
	cases := []struct {
		err       error
		status    int
		code      string
		retryable bool
	}{
		{fmt.Errorf("shipment: %w", apperrors.ErrNotFound), http.StatusNotFound, "not_found", false},
		{apperrors.ErrConflict, http.StatusConflict, "conflict", true},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error", false},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/", func(c *gin.Context) { AbortWithError(c, tc.err) })

		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tc.status, w.Code)
		body := decode(t, w)
		assert.Equal(t, apperrors.Code(tc.err), body["code"])
		assert.Equal(t, tc.code, body["code"])
		_, hasRetry := body["retryable"]
		assert.Equal(t, tc.retryable, hasRetry)
		assert.NotContains(t, body, "redirect")
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
