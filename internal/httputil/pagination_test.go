package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/opspilot/platform/internal/httputil"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		expectedOffset int
		expectedLimit  int
		errorMsg       string
	}{
		{name: "default values", url: "/", expectedOffset: 0, expectedLimit: 50},
		{name: "custom values", url: "/?offset=10&limit=20", expectedOffset: 10, expectedLimit: 20},
		{name: "max limit", url: "/?limit=100", expectedOffset: 0, expectedLimit: 100},
		{name: "negative offset", url: "/?offset=-1", errorMsg: "invalid offset parameter"},
		{name: "non numeric offset", url: "/?offset=abc", errorMsg: "invalid offset parameter"},
		{name: "zero limit", url: "/?limit=0", errorMsg: "invalid limit parameter"},
		{name: "limit above max", url: "/?limit=101", errorMsg: "invalid limit parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)

			offset, limit, err := httputil.ParsePagination(c)

			if tt.errorMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedOffset, offset)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	page := httputil.NewPageResponse[string](nil, 0, 0, 50)
	assert.NotNil(t, page.Items)
	assert.Len(t, page.Items, 0)

	page = httputil.NewPageResponse([]string{"a", "b"}, 12, 10, 2)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 10, page.Offset)
	assert.Equal(t, 2, page.Limit)
}
