package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/landerp/backend/docs"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/auth"
	"github.com/landerp/backend/internal/infrastructure/config"
	"github.com/landerp/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.version)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.version)
}

func TestRouter_SetupMountsUnderVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"), WithMiddleware(func(c *gin.Context) {
		c.Header("X-Api", "on")
		c.Next()
	}))

	g := NewDomainGroup("/land")
	g.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v2/land/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "on", w.Header().Get("X-Api"))

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/land/ping").Code)
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("/sales").
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) }).
		POST("", func(c *gin.Context) { c.Status(http.StatusCreated) }).
		PUT("/:id", func(c *gin.Context) { c.Status(http.StatusOK) }).
		DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, "/sales", g.Prefix())
	assert.Equal(t, 4, g.RouteCount())

	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/sales", http.StatusOK},
		{http.MethodPost, "/api/v1/sales", http.StatusCreated},
		{http.MethodPut, "/api/v1/sales/42", http.StatusOK},
		{http.MethodDelete, "/api/v1/sales/42", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(engine, tt.method, tt.path).Code)
		})
	}
}

func TestDomainGroup_SubgroupsAndMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("/finance").Use(func(c *gin.Context) {
		c.Header("X-Finance", "yes")
		c.Next()
	})
	g.Group("/receipts").GET("", func(c *gin.Context) { c.String(http.StatusOK, "receipts") })
	g.Group("/expenses", func(c *gin.Context) {
		c.Header("X-Expenses", "yes")
		c.Next()
	}).GET("", func(c *gin.Context) { c.String(http.StatusOK, "expenses") })
	assert.Equal(t, 2, g.RouteCount())

	NewRouter(engine).Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/finance/receipts")
	assert.Equal(t, "receipts", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Finance"))
	assert.Empty(t, w.Header().Get("X-Expenses"))

	w = serve(engine, http.MethodGet, "/api/v1/finance/expenses")
	assert.Equal(t, "expenses", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Finance"))
	assert.Equal(t, "yes", w.Header().Get("X-Expenses"))
}

func TestNewEngine(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "router-test-secret", AccessTokenExpiration: time.Minute})

	t.Run("rejects bad trusted proxies", func(t *testing.T) {
		_, err := NewEngine(Options{
			HTTP: config.HTTPConfig{TrustedProxies: []string{"not-an-ip"}},
			JWT:  middleware.JWTConfig{Service: jwtService},
		}, Handlers{})
		assert.Error(t, err)
	})

	t.Run("api routes require a token", func(t *testing.T) {
		engine, err := NewEngine(Options{JWT: middleware.JWTConfig{Service: jwtService}}, Handlers{})
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/sales").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/health").Code)
	})

	t.Run("role guard runs before the handler", func(t *testing.T) {
		engine, err := NewEngine(Options{JWT: middleware.JWTConfig{Service: jwtService}}, Handlers{})
		require.NoError(t, err)

		hof, err := shared.NewActor(uuid.New(), "Head of Finance", shared.RoleHOF)
		require.NoError(t, err)
		token, _, err := jwtService.IssueAccessToken(hof)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("swagger is hidden when disabled", func(t *testing.T) {
		engine, err := NewEngine(Options{JWT: middleware.JWTConfig{Service: jwtService}}, Handlers{})
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/swagger/doc.json").Code)
	})

	t.Run("swagger serves the generated document", func(t *testing.T) {
		engine, err := NewEngine(Options{
			JWT:     middleware.JWTConfig{Service: jwtService},
			Swagger: middleware.SwaggerConfig{Enabled: true},
		}, Handlers{})
		require.NoError(t, err)

		w := serve(engine, http.MethodGet, "/swagger/doc.json")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"/land/plots/{id}/resize"`)
		assert.Contains(t, w.Body.String(), `"basePath": "/api/v1"`)
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/swagger/index.html").Code)
	})

	t.Run("swagger behind authentication", func(t *testing.T) {
		engine, err := NewEngine(Options{
			JWT:     middleware.JWTConfig{Service: jwtService},
			Swagger: middleware.SwaggerConfig{Enabled: true, RequireAuth: true},
		}, Handlers{})
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/swagger/doc.json").Code)
	})
}
