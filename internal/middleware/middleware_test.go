package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"siso/internal/auth"
	"siso/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

func TestJWTAuth(t *testing.T) {
	tokens := auth.NewTokens("secret")
	r := gin.New()
	r.GET("/me", JWTAuth(tokens, nil), func(c *gin.Context) {
		caller := GetCaller(c)
		c.JSON(http.StatusOK, gin.H{"id": caller.UserID, "admin": caller.IsAdmin()})
	})

	token, err := tokens.Issue(auth.Caller{UserID: 7, Username: "alice", Perfis: []string{"ADMIN"}}, time.Hour)
	require.NoError(t, err)
	refresh, err := tokens.IssueRefresh(auth.Caller{UserID: 7, Username: "alice", Perfis: []string{"ADMIN"}}, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		setup  func(req *http.Request)
		target string
		status int
	}{
		{"no token", func(*http.Request) {}, "/me", http.StatusUnauthorized},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer xyz") }, "/me", http.StatusUnauthorized},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, "/me", http.StatusOK},
		{"query", func(*http.Request) {}, "/me?access_token=" + token, http.StatusOK},
		{"refresh token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+refresh) }, "/me", http.StatusUnauthorized},
		{"refresh token in query", func(*http.Request) {}, "/me?access_token=" + refresh, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":7,"admin":true}`, w.Body.String())
			}
		})
	}
}

type usuariosStub map[uint]*model.Usuario

func (s usuariosStub) FindByID(_ context.Context, id uint) (*model.Usuario, error) {
	if id == 99 {
		return nil, errors.New("conn reset")
	}
	u, ok := s[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func TestJWTAuth_RejectsInactiveOrMissingUser(t *testing.T) {
	tokens := auth.NewTokens("secret")
	usuarios := usuariosStub{
		1: {ID: 1, Username: "alice", Ativo: true},
		2: {ID: 2, Username: "bob", Ativo: false},
	}
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/me", JWTAuth(tokens, usuarios), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, tc := range []struct {
		id     uint
		status int
	}{
		{1, http.StatusNoContent},
		{2, http.StatusUnauthorized},
		{3, http.StatusUnauthorized},
		{99, http.StatusInternalServerError},
	} {
		token, err := tokens.Issue(auth.Caller{UserID: tc.id}, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, "user %d", tc.id)
	}
}

func TestGetCaller_Public(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetCaller(c))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestErrorHandlerAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	r.GET("/err", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	for _, path := range []string{"/err", "/panic"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.JSONEq(t, `{"detail":"Erro interno do servidor"}`, w.Body.String(), path)
	}
}

func TestRateLimiter(t *testing.T) {
	l := newLimiter(2, time.Minute)
	clock := time.Now()
	l.now = func() time.Time { return clock }

	ok, _ := l.allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1")
	assert.False(t, ok)
	ok, _ = l.allow("2.2.2.2")
	assert.True(t, ok)

	clock = clock.Add(time.Minute + time.Second)
	ok, _ = l.allow("1.1.1.1")
	assert.True(t, ok)

	clock = clock.Add(purgeInterval + 2*time.Minute)
	l.allow("3.3.3.3")
	assert.Len(t, l.entries, 1)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://siso.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://siso.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://siso.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestErrorHandler_LogsRouteAndCaller(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.PUT("/api/caixa/:id", func(c *gin.Context) {
		c.Set(CallerKey, &auth.Caller{UserID: 4})
		_ = c.Error(errors.New("render pdf: font missing"))
	})

	req := httptest.NewRequest(http.MethodPut, "/api/caixa/4", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "font missing")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request failed", entry["message"])
	assert.Equal(t, "/api/caixa/:id", entry["route"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.EqualValues(t, 4, entry["user_id"])
	assert.Equal(t, "render pdf: font missing", entry["error"])
}
