package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"noteshelf/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) Revoke(_ context.Context, token string, _ time.Time) error {
	f.revoked[token] = true
	return nil
}

func (f *fakeBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[token], nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(tokens *services.TokenService, bl services.TokenBlacklist) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens, bl), func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	return r
}

func doGet(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
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

func TestAuthMiddleware(t *testing.T) {
	tokens := services.NewTokenService("test-secret", time.Hour)
	valid, err := tokens.Generate(42)
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	expired, err := services.NewTokenService("test-secret", time.Hour).
		WithClock(func() time.Time { return past }).
		Generate(42)
	require.NoError(t, err)

	foreign, err := services.NewTokenService("other-secret", time.Hour).Generate(42)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"missing header", "", http.StatusUnauthorized, "No token, authorization denied"},
		{"bearer token", "Bearer " + valid, http.StatusOK, ""},
		{"bare token", valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, "Invalid token"},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized, "Invalid token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Token expired"},
	}

	r := protectedRouter(tokens, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, "/me", tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			if tt.wantStatus == http.StatusOK {
				assert.EqualValues(t, 42, body["id"])
				return
			}
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.Equal(t, "unauthorized", body["error"])
		})
	}
}

func TestAuthMiddlewareMissingSecret(t *testing.T) {
	r := protectedRouter(services.NewTokenService("", time.Hour), nil)
	w := doGet(r, "/me", "Bearer abc.def.ghi")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthMiddlewareBlacklist(t *testing.T) {
	tokens := services.NewTokenService("test-secret", time.Hour)
	token, err := tokens.Generate(7)
	require.NoError(t, err)

	bl := &fakeBlacklist{revoked: map[string]bool{token: true}}
	w := doGet(protectedRouter(tokens, bl), "/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token revoked", decode(t, w)["message"])

	// lookup failure falls back to the signature check
	bl = &fakeBlacklist{revoked: map[string]bool{}, err: errors.New("redis down")}
	w = doGet(protectedRouter(tokens, bl), "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(6, zap.NewNop())
	r := gin.New()
	r.GET("/x", limiter.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := map[int]int{}
	for i := 0; i < 10; i++ {
		codes[doGet(r, "/x", "").Code]++
	}
	assert.Equal(t, 5, codes[http.StatusOK])
	assert.Equal(t, 5, codes[http.StatusTooManyRequests])

	limiter.evictBefore(time.Now().Add(time.Minute))
	assert.Empty(t, limiter.visitors)
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := doGet(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["message"])
}

func TestRequestTracingMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestTracingMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := doGet(r, "/", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "3f1c2b1e-8d7a-4c55-9a57-0c2a4f1f9b10")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "3f1c2b1e-8d7a-4c55-9a57-0c2a4f1f9b10", w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://app.local"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://app.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestSizeLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/", RequestSizeLimiter(4), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	req.ContentLength = 10
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
