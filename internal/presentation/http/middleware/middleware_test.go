package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memKeys struct {
	mu   sync.Mutex
	keys map[string]entity.IdempotencyKey
}

func (m *memKeys) GetByKey(ctx context.Context, key, owner string) (*entity.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k, ok := m.keys[owner+"|"+key]; ok {
		return &k, nil
	}
	return nil, nil
}

func (m *memKeys) Create(ctx context.Context, k *entity.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[k.Owner+"|"+k.Key] = *k
	return nil
}

func (m *memKeys) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

func do(r http.Handler, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplaysSuccessfulWrites(t *testing.T) {
	repo := &memKeys{keys: map[string]entity.IdempotencyKey{}}
	calls := 0
	r := gin.New()
	r.POST("/billing", NewIdempotency(repo, time.Hour).Middleware(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	first := do(r, http.MethodPost, "/billing", "abc")
	second := do(r, http.MethodPost, "/billing", "abc")

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, `{"call": 1}`, second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 1, calls)

	third := do(r, http.MethodPost, "/billing", "other")
	assert.JSONEq(t, `{"call": 2}`, third.Body.String())
}

func TestIdempotencyPassesThroughWithoutKey(t *testing.T) {
	repo := &memKeys{keys: map[string]entity.IdempotencyKey{}}
	calls := 0
	r := gin.New()
	r.POST("/billing", NewIdempotency(repo, time.Hour).Middleware(), func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/billing", "").Code)
	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/billing", "").Code)
	assert.Equal(t, 2, calls)
	assert.Empty(t, repo.keys)
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	repo := &memKeys{keys: map[string]entity.IdempotencyKey{}}
	calls := 0
	r := gin.New()
	r.PUT("/billing/:id", NewIdempotency(repo, time.Hour).Middleware(), func(c *gin.Context) {
		calls++
		if calls == 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "busy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPut, "/billing/1", "k").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/billing/1", "k").Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyKeyBoundToEndpoint(t *testing.T) {
	repo := &memKeys{keys: map[string]entity.IdempotencyKey{}}
	mw := NewIdempotency(repo, time.Hour).Middleware()
	r := gin.New()
	r.PUT("/billing/:id", mw, func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"id": c.Param("id")}) })

	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/billing/1", "k").Code)
	w := do(r, http.MethodPut, "/billing/2", "k")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStaffAuth(t *testing.T) {
	jwt := utils.NewJWTManager("secret", time.Hour)
	token, err := jwt.GenerateStaffToken("Dr. Reyes", "dentist")
	require.NoError(t, err)

	newRouter := func(required bool) *gin.Engine {
		r := gin.New()
		r.GET("/me", StaffAuth(jwt, required), func(c *gin.Context) {
			c.String(http.StatusOK, GetStaffName(c))
		})
		return r
	}
	get := func(r *gin.Engine, auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get(newRouter(false), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = get(newRouter(false), "Bearer "+token)
	assert.Equal(t, "Dr. Reyes", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(newRouter(true), "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(newRouter(false), "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, get(newRouter(false), token).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewClientRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2, CleanupInterval: time.Minute, EntryTTL: time.Minute})
	defer rl.Close()

	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(r, http.MethodGet, "/", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterConfigFor(t *testing.T) {
	cfg := RateLimiterConfigFor(120, 60)
	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, 120, cfg.BurstSize)

	cfg = RateLimiterConfigFor(0, 0)
	assert.Equal(t, 100, cfg.BurstSize)
}
