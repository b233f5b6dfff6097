package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter(t *testing.T, level zapcore.Level) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(level)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-42")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	return router, logs
}

func httpEntry(t *testing.T, logs *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	return entries[0]
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"ok", http.StatusOK, zapcore.InfoLevel},
		{"client error", http.StatusConflict, zapcore.WarnLevel},
		{"server error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, logs := newObservedRouter(t, zapcore.DebugLevel)
			router.GET("/sales/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sales/abc?page=2", nil))

			assert.Equal(t, tt.status, w.Code)
			entry := httpEntry(t, logs)
			assert.Equal(t, tt.level, entry.Level)
			fields := entry.ContextMap()
			assert.Equal(t, "req-42", fields["request_id"])
			assert.Equal(t, "/sales/abc", fields["path"])
			assert.Equal(t, "/sales/:id", fields["route"])
			assert.Equal(t, "page=2", fields["query"])
			assert.EqualValues(t, tt.status, fields["status"])
		})
	}
}

func TestGinMiddleware_ActorAndRequestContext(t *testing.T) {
	router, logs := newObservedRouter(t, zapcore.InfoLevel)
	router.POST("/receipts", func(c *gin.Context) {
		c.Set(GinUserIDKey, "u-1")
		c.Set(GinRoleKey, "ACCOUNT_MANAGER")

		assert.Equal(t, "req-42", MetaFrom(c.Request.Context()).RequestID)
		FromContext(c.Request.Context()).Info("from service")
		GetGinLogger(c).Info("from handler")
		_ = c.Error(assert.AnError)
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/receipts", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	for _, msg := range []string{"from service", "from handler"} {
		entries := logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	}

	fields := httpEntry(t, logs).ContextMap()
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, "ACCOUNT_MANAGER", fields["role"])
	assert.NotNil(t, fields["errors"])
}

func TestGinMiddleware_AnonymousRequestHasNoActor(t *testing.T) {
	router, logs := newObservedRouter(t, zapcore.InfoLevel)
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	fields := httpEntry(t, logs).ContextMap()
	assert.NotContains(t, fields, "user_id")
	assert.NotContains(t, fields, "query")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	entries := logs.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestGetGinLogger_DefaultsToNop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))

	c.Set(ginLoggerKey, "not a logger")
	assert.NotNil(t, GetGinLogger(c))
}
