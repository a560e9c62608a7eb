package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  PaginationParams
	}{
		{"", PaginationParams{Page: 1, Limit: DefaultPageSize, Sort: "created_at", Order: "desc"}},
		{"?page=2&limit=50&sort=quantity&order=ASC", PaginationParams{Page: 2, Limit: 50, Sort: "quantity", Order: "asc"}},
		{"?page=-1&limit=500&order=sideways", PaginationParams{Page: 1, Limit: DefaultPageSize, Sort: "created_at", Order: "desc"}},
		{"?search=%20mug%20&category=ceramics", PaginationParams{Page: 1, Limit: DefaultPageSize, Sort: "created_at", Order: "desc", Search: "mug", Category: "ceramics"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/v1/inventory"+tt.query, nil)

			assert.Equal(t, tt.want, GetPaginationParams(c))
		})
	}
}
