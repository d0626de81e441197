package cache

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ursalaan/Change-Impact-Forecaster/internal/monitoring"
)

func TestCacheGetSet(t *testing.T) {
	c := NewCache(time.Minute)

	_, found := c.Get("missing")
	assert.False(t, found)

	c.Set("key", []byte("value"))
	data, found := c.Get("key")
	require.True(t, found)
	assert.Equal(t, []byte("value"), data)

	c.Delete("key")
	_, found = c.Get("key")
	assert.False(t, found)
}

func TestCacheExpiration(t *testing.T) {
	c := NewCache(10 * time.Millisecond)

	c.Set("key", []byte("value"))
	_, found := c.Get("key")
	require.True(t, found)

	time.Sleep(20 * time.Millisecond)

	_, found = c.Get("key")
	assert.False(t, found)
}

func TestCacheClearAndSize(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	assert.Equal(t, 2, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCacheStats(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", []byte("1"))

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_items"])
	assert.Equal(t, 1, stats["active_items"])
	assert.Equal(t, 60.0, stats["ttl_seconds"])
}

func newCachedRouter(c *Cache, metrics *monitoring.Metrics, handlerCalls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(c.Middleware(metrics))
	r.POST("/assess", func(ctx *gin.Context) {
		*handlerCalls++
		ctx.JSON(http.StatusOK, gin.H{"echo": "assessed"})
	})
	r.POST("/other", func(ctx *gin.Context) {
		*handlerCalls++
		ctx.JSON(http.StatusOK, gin.H{"echo": "other"})
	})
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_CachesIdenticalRequests(t *testing.T) {
	c := NewCache(time.Minute)
	metrics := monitoring.NewMetrics()
	handlerCalls := 0
	r := newCachedRouter(c, metrics, &handlerCalls)

	first := postJSON(r, "/assess", `{"change_id":"chg-1"}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, handlerCalls)

	second := postJSON(r, "/assess", `{"change_id":"chg-1"}`)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, handlerCalls, "second identical request must be served from cache")
	assert.Equal(t, first.Body.String(), second.Body.String())

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
}

func TestMiddleware_DistinguishesBodies(t *testing.T) {
	c := NewCache(time.Minute)
	handlerCalls := 0
	r := newCachedRouter(c, monitoring.NewMetrics(), &handlerCalls)

	postJSON(r, "/assess", `{"change_id":"chg-1"}`)
	postJSON(r, "/assess", `{"change_id":"chg-2"}`)

	assert.Equal(t, 2, handlerCalls)
}

func TestMiddleware_OnlyCachesAssessPath(t *testing.T) {
	c := NewCache(time.Minute)
	handlerCalls := 0
	r := newCachedRouter(c, monitoring.NewMetrics(), &handlerCalls)

	postJSON(r, "/other", `{"change_id":"chg-1"}`)
	postJSON(r, "/other", `{"change_id":"chg-1"}`)

	assert.Equal(t, 2, handlerCalls)
	assert.Equal(t, 0, c.Size())
}
