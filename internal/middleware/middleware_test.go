package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/services"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type recordingSecurityLogger struct {
	mu     sync.Mutex
	events []services.SecurityEntry
}

func (r *recordingSecurityLogger) LogSecurityEvent(_ context.Context, entry services.SecurityEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, entry)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) {
		actor := utils.GetActorFromContext(c)
		if actor == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, string(actor.Role))
	})
	r.GET("/probe", chain...)
	return r
}

func doGet(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, role models.Role, ttlHours int) string {
	t.Helper()
	tok, err := utils.GenerateJWT(uuid.New(), "tester", string(role), ttlHours)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestAuthRequired(t *testing.T) {
	security := &recordingSecurityLogger{}
	r := newEngine(AuthRequired(security))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", token(t, models.RoleProduction, 1), http.StatusOK, "production"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, ""},
		{"expired token", token(t, models.RoleProduction, -1), http.StatusUnauthorized, ""},
		{"unknown role", token(t, models.Role("owner"), 1), http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}

	// Expired tokens and missing headers are routine; malformed ones are not.
	assert.Len(t, security.events, 3)
	for _, e := range security.events {
		assert.Equal(t, services.SecurityInvalidToken, e.Type)
	}
}

func TestOptionalAuth(t *testing.T) {
	r := newEngine(OptionalAuth())

	assert.Equal(t, "anonymous", doGet(r, "").Body.String())
	assert.Equal(t, "anonymous", doGet(r, "Bearer broken").Body.String())
	assert.Equal(t, "manager", doGet(r, token(t, models.RoleManager, 1)).Body.String())
}

func TestAdminRequired(t *testing.T) {
	security := &recordingSecurityLogger{}
	r := newEngine(AuthRequired(security), AdminRequired(security))

	assert.Equal(t, http.StatusOK, doGet(r, token(t, models.RoleAdmin, 1)).Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, token(t, models.RoleWarehouse, 1)).Code)

	require.Len(t, security.events, 1)
	assert.Equal(t, services.SecurityAccessDenied, security.events[0].Type)
	assert.NotNil(t, security.events[0].UserID)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(0.001), 2)
	defer limiter.Stop()

	security := &recordingSecurityLogger{}
	r := newEngine(limiter.Middleware(security))

	assert.Equal(t, http.StatusOK, doGet(r, "").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "").Code)
	require.Len(t, security.events, 1)
	assert.Equal(t, services.SecurityRateLimited, security.events[0].Type)
}

func TestNegotiateLanguage(t *testing.T) {
	require.NoError(t, i18n.Initialize("../i18n/locales", "ru"))

	tests := map[string]string{
		"":                        "ru",
		"en-US,en;q=0.9":          "en",
		"de-DE,ru;q=0.8,en;q=0.5": "ru",
		"fr":                      "ru",
		"RU":                      "ru",
		"-,en":                    "en",
	}
	for header, want := range tests {
		assert.Equal(t, want, negotiateLanguage(header), "header %q", header)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	logger := quietLogger()
	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/probe", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(requestIDHeader, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(requestIDHeader))
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
