package demo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewMiddleware(t *testing.T) {
	m := NewMiddleware(true, nil)
	if !m.IsEnabled() {
		t.Error("Expected middleware to be enabled")
	}

	m = NewMiddleware(false, nil)
	if m.IsEnabled() {
		t.Error("Expected middleware to be disabled")
	}
}

func newTestRouter(m *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(m.InjectContext())
	router.Use(m.Handler())
	router.GET("/home", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.POST("/add_book", func(c *gin.Context) {
		c.String(http.StatusOK, "created")
	})
	router.POST("/api/books/1/enrich", func(c *gin.Context) {
		c.String(http.StatusAccepted, "queued")
	})
	return router
}

func TestMiddleware_AllowsGETRequests(t *testing.T) {
	router := newTestRouter(NewMiddleware(true, nil))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestMiddleware_BlocksFormSubmission(t *testing.T) {
	router := newTestRouter(NewMiddleware(true, nil))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/add_book", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Errorf("Expected status 302, got %d", rr.Code)
	}
	if location := rr.Header().Get("Location"); location != "/home" {
		t.Errorf("Expected redirect to /home, got %q", location)
	}
}

func TestMiddleware_BlocksAPIWrite(t *testing.T) {
	router := newTestRouter(NewMiddleware(true, nil))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/books/1/enrich", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["demo_mode"] != true {
		t.Errorf("Expected demo_mode=true in response, got %v", body)
	}
}

func TestMiddleware_DisabledAllowsWrites(t *testing.T) {
	router := newTestRouter(NewMiddleware(false, nil))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/add_book", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestFromContext(t *testing.T) {
	m := NewMiddleware(true, nil)

	router := gin.New()
	router.Use(m.InjectContext())
	router.GET("/check", func(c *gin.Context) {
		if !FromContext(c) {
			t.Error("Expected demo mode flag in context")
		}
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	router.ServeHTTP(rr, req)

	bare := gin.New()
	bare.GET("/check", func(c *gin.Context) {
		if FromContext(c) {
			t.Error("Expected demo mode flag to default to false")
		}
		c.Status(http.StatusOK)
	})

	rr = httptest.NewRecorder()
	bare.ServeHTTP(rr, req)
}
