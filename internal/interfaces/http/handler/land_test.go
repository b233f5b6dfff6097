package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	landapp "github.com/landerp/backend/internal/application/land"
	"github.com/landerp/backend/internal/interfaces/http/dto"
	"github.com/landerp/backend/internal/testutil"
)

func TestLandHandler_PlotArea(t *testing.T) {
	srv, _, tok := newServer(t)

	var rs landapp.RSNumberResponse
	w := srv.Do(t, http.MethodPost, "/api/v1/land/rs-numbers", tok.admin, map[string]any{
		"number":       "RS-910",
		"project_name": "Hill Top",
		"total_area":   "10",
		"unit_type":    "KATHA",
	})
	testutil.RequireHTTPStatus(t, w, http.StatusCreated, &rs)

	// a zero area plot is kept as a record and consumes nothing
	var record landapp.PlotResponse
	w = srv.Do(t, http.MethodPost, "/api/v1/land/plots", tok.admin, map[string]any{
		"rs_number_id": rs.ID,
		"plot_number":  "R-0",
		"area":         "0",
		"status":       "BLOCKED",
	})
	testutil.RequireHTTPStatus(t, w, http.StatusCreated, &record)
	testutil.AssertDecimal(t, "0", record.Area, "area")

	w = srv.Do(t, http.MethodPost, "/api/v1/land/plots", tok.admin, map[string]any{
		"rs_number_id": rs.ID,
		"plot_number":  "R-1",
	})
	testutil.RequireHTTPError(t, w, http.StatusBadRequest, dto.CodeValidation)

	w = srv.Do(t, http.MethodPost, "/api/v1/land/plots", tok.admin, map[string]any{
		"rs_number_id": rs.ID,
		"plot_number":  "R-1",
		"area":         "-1",
	})
	testutil.RequireHTTPError(t, w, http.StatusBadRequest, dto.CodeValidation)

	var plot landapp.PlotResponse
	w = srv.Do(t, http.MethodPost, "/api/v1/land/plots", tok.admin, map[string]any{
		"rs_number_id": rs.ID,
		"plot_number":  "A-1",
		"area":         "3.33335",
	})
	testutil.RequireHTTPStatus(t, w, http.StatusCreated, &plot)
	testutil.AssertDecimal(t, "3.3334", plot.Area, "area")

	w = srv.Do(t, http.MethodPut, "/api/v1/land/plots/"+plot.ID.String()+"/resize", tok.admin, map[string]any{"area": "0"})
	testutil.RequireHTTPStatus(t, w, http.StatusOK, &plot)
	testutil.AssertDecimal(t, "0", plot.Area, "area")

	w = srv.Do(t, http.MethodGet, "/api/v1/land/rs-numbers/"+rs.ID.String(), tok.manager, nil)
	testutil.RequireHTTPStatus(t, w, http.StatusOK, &rs)
	testutil.AssertDecimal(t, "10", rs.RemainingArea, "remaining_area")
	assert.True(t, rs.AllocatedArea.IsZero())
}
