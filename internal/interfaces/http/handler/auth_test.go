package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landerp/backend/internal/interfaces/http/dto"
	"github.com/landerp/backend/internal/testutil"
)

func TestAuth_MissingOrInvalidToken(t *testing.T) {
	srv, _, _ := newServer(t)

	w := srv.Do(t, http.MethodGet, "/api/v1/sales", "", nil)
	testutil.RequireHTTPError(t, w, http.StatusUnauthorized, dto.CodeUnauthorized)

	w = srv.Do(t, http.MethodGet, "/api/v1/sales", "garbage.token.value", nil)
	testutil.RequireHTTPError(t, w, http.StatusUnauthorized, dto.CodeUnauthorized)
}

func TestAuth_Me(t *testing.T) {
	srv, actors, tok := newServer(t)

	var me struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	w := srv.Do(t, http.MethodGet, "/api/v1/auth/me", tok.hof, nil)
	testutil.RequireHTTPStatus(t, w, http.StatusOK, &me)
	assert.Equal(t, actors.HOF.UserID.String(), me.UserID)
	assert.Equal(t, "HOF", me.Role)
}

func TestAuth_LogoutRevokesToken(t *testing.T) {
	srv, _, tok := newServer(t)

	w := srv.Do(t, http.MethodPost, "/api/v1/auth/logout", tok.manager, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = srv.Do(t, http.MethodGet, "/api/v1/auth/me", tok.manager, nil)
	testutil.RequireHTTPError(t, w, http.StatusUnauthorized, dto.CodeTokenRevoked)

	// other sessions are unaffected
	w = srv.Do(t, http.MethodGet, "/api/v1/auth/me", tok.hof, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_RevokeUserSessions(t *testing.T) {
	srv, actors, tok := newServer(t)

	path := "/api/v1/auth/users/" + actors.Manager.UserID.String() + "/revoke"
	w := srv.Do(t, http.MethodPost, path, tok.hof, nil)
	testutil.RequireHTTPError(t, w, http.StatusForbidden, dto.CodeForbidden)

	w = srv.Do(t, http.MethodPost, path, tok.admin, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = srv.Do(t, http.MethodGet, "/api/v1/auth/me", tok.manager, nil)
	testutil.RequireHTTPError(t, w, http.StatusUnauthorized, dto.CodeTokenRevoked)
}

func TestHealth(t *testing.T) {
	srv, _, _ := newServer(t)

	w := srv.Do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "ok", body.Components["database"])
}
