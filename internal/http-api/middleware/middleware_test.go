package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/service"
)

type stubValidator map[string]*service.Claims

func (s stubValidator) ValidateToken(token string) (*service.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, service.ErrInvalidToken
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "username": actor.Username, "role": actor.Role})
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := stubValidator{
		"user-token":  {UserID: 7, Username: "alice", Role: models.RoleUser},
		"admin-token": {UserID: 1, Username: "root", Role: models.RoleAdmin},
	}
	r := newRouter(AuthMiddleware(tokens))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"too many parts", "Bearer a b", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer user-token", http.StatusOK},
		{"lowercase scheme", "bearer user-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := do(r, "Bearer user-token")
	assert.JSONEq(t, `{"user_id":7,"username":"alice","role":"USER"}`, w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	tokens := stubValidator{
		"user-token":  {UserID: 7, Username: "alice", Role: models.RoleUser},
		"admin-token": {UserID: 1, Username: "root", Role: models.RoleAdmin},
	}
	r := newRouter(AuthMiddleware(tokens), RequireAdmin())

	assert.Equal(t, http.StatusForbidden, do(r, "Bearer user-token").Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer admin-token").Code)

	// without AuthMiddleware there is no role at all
	bare := newRouter(RequireAdmin())
	assert.Equal(t, http.StatusForbidden, do(bare, "").Code)
}

func TestCurrentActor_Anonymous(t *testing.T) {
	r := newRouter()
	w := do(r, "")
	assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	r := newRouter(NewRateLimiter(2).Middleware())

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "").Code)
}

func TestRateLimiter_PrunesIdleVisitorsPeriodically(t *testing.T) {
	l := NewRateLimiter(5)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := start
	l.now = func() time.Time { return clock }

	assert.True(t, l.allow("10.0.0.1"))
	clock = start.Add(time.Minute)
	assert.True(t, l.allow("10.0.0.2"))

	clock = start.Add(5 * time.Minute)
	assert.True(t, l.allow("10.0.0.3"))
	assert.Len(t, l.limiters, 3, "no sweep before ttl has passed")

	clock = start.Add(12 * time.Minute)
	assert.True(t, l.allow("10.0.0.3"))
	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, "10.0.0.3")
}

func TestRequestIDAndLogger(t *testing.T) {
	r := newRouter(RequestID(), RequestLogger(zap.NewNop()))

	w := do(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
