package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/auth"
	"github.com/landerp/backend/internal/infrastructure/config"
	"github.com/landerp/backend/internal/interfaces/http/dto"
	"github.com/landerp/backend/internal/interfaces/http/handler"
	"github.com/landerp/backend/internal/interfaces/http/middleware"
	"github.com/landerp/backend/internal/interfaces/http/router"
)

// HTTPServer is the full gin engine over an App
type HTTPServer struct {
	App       *App
	Engine    *gin.Engine
	JWT       *auth.JWTService
	Blacklist *auth.InMemoryTokenBlacklist
}

// NewHTTPServer builds the production router on top of app
func NewHTTPServer(t *testing.T, app *App) *HTTPServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-with-at-least-32-chars",
		Issuer:                "landerp-test",
		AccessTokenExpiration: time.Hour,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	engine, err := router.NewEngine(router.Options{
		ServiceName: "landerp-test",
		Logger:      zap.NewNop(),
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20},
		JWT:         middleware.JWTConfig{Service: jwtService, Blacklist: blacklist},
	}, router.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDB, err := app.DB.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		}),
		Auth:         handler.NewAuthHandler(jwtService, blacklist),
		Client:       handler.NewClientHandler(app.Clients),
		Land:         handler.NewLandHandler(app.Allocator),
		Sale:         handler.NewSaleHandler(app.Sales, app.Receipts),
		Cancellation: handler.NewCancellationHandler(app.Cancellations),
		Receipt:      handler.NewReceiptHandler(app.Receipts),
		Expense:      handler.NewExpenseHandler(app.Expenses),
		Account:      handler.NewAccountHandler(app.Accounts),
		Settings:     handler.NewSettingsHandler(app.Settings),
	})
	require.NoError(t, err)

	return &HTTPServer{App: app, Engine: engine, JWT: jwtService, Blacklist: blacklist}
}

// Token issues a bearer token for actor
func (s *HTTPServer) Token(t *testing.T, actor shared.Actor) string {
	t.Helper()
	token, _, err := s.JWT.IssueAccessToken(actor)
	require.NoError(t, err)
	return token
}

// Do sends a request with an optional JSON body and bearer token
func (s *HTTPServer) Do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

// Envelope is the decoded response envelope with raw data
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// DecodeEnvelope parses the response body, and data into out when given
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, out any) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

// RequireHTTPError checks status and error code of a failed response
func RequireHTTPError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := DecodeEnvelope(t, w, nil)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
}

// RequireHTTPStatus checks the status and decodes data into out
func RequireHTTPStatus(t *testing.T, w *httptest.ResponseRecorder, status int, out any) Envelope {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	if status == http.StatusNoContent {
		return Envelope{Success: true}
	}
	env := DecodeEnvelope(t, w, out)
	require.True(t, env.Success)
	return env
}
