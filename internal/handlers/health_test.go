package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func serveHealth(h *HealthHandler) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		cacheErr   error
		withCache  bool
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "database up, no cache",
			wantStatus: http.StatusOK,
			wantBody:   []string{`"status":"healthy"`, `"database":"ok"`},
		},
		{
			name:       "database down",
			dbErr:      errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   []string{`"status":"unhealthy"`, `"database":"unavailable"`},
		},
		{
			name:       "cache down is not fatal",
			withCache:  true,
			cacheErr:   errors.New("dial tcp: i/o timeout"),
			wantStatus: http.StatusOK,
			wantBody:   []string{`"status":"healthy"`, `"cache":"unavailable"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockPinger)
			db.On("Ping", mock.Anything).Return(tt.dbErr).Once()

			var cache Pinger
			cacheMock := new(MockPinger)
			if tt.withCache {
				cacheMock.On("Ping", mock.Anything).Return(tt.cacheErr).Once()
				cache = cacheMock
			}

			w := serveHealth(NewHealthHandler(db, cache))

			assert.Equal(t, tt.wantStatus, w.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, w.Body.String(), want)
			}
			db.AssertExpectations(t)
			cacheMock.AssertExpectations(t)
		})
	}
}
