package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarium/internal/session"
)

func TestIntQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		def   int
		want  int
	}{
		{"missing parameter uses default", "", 50, 50},
		{"parses the value", "limit=10", 50, 10},
		{"malformed value uses default", "limit=ten", 50, 50},
		{"negative values pass through", "limit=-5", 50, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request, _ = http.NewRequest("GET", "/?"+tt.query, nil)

			assert.Equal(t, tt.want, intQuery(c, "limit", tt.def))
		})
	}
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("parses a valid ID", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: "42"}}

		id, ok := parseIDParam(c, "id")
		assert.True(t, ok)
		assert.Equal(t, uint(42), id)
	})

	t.Run("responds with 400 on junk", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: "forty-two"}}

		_, ok := parseIDParam(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPageFlashes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("empty without any source", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request, _ = http.NewRequest("GET", "/home", nil)

		assert.Empty(t, pageFlashes(c, nil))
	})

	t.Run("picks up the error query parameter", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request, _ = http.NewRequest("GET", "/add_author?error=Session+expired", nil)

		flashes := pageFlashes(c, nil)
		require.Len(t, flashes, 1)
		assert.Equal(t, session.StatusError, flashes[0].Status)
		assert.Equal(t, "Session expired", flashes[0].Message)
	})

	t.Run("appends inline flashes last", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request, _ = http.NewRequest("GET", "/add_author?error=first", nil)

		flashes := pageFlashes(c, nil, errorFlash("second"))
		require.Len(t, flashes, 2)
		assert.Equal(t, "first", flashes[0].Message)
		assert.Equal(t, "second", flashes[1].Message)
	})
}
