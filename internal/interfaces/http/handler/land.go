package handler

import (
	"github.com/gin-gonic/gin"
	landapp "github.com/landerp/backend/internal/application/land"
)

// LandHandler serves RS numbers and plots
type LandHandler struct {
	BaseHandler
	allocator *landapp.AllocatorService
}

// NewLandHandler creates a new LandHandler
func NewLandHandler(allocator *landapp.AllocatorService) *LandHandler {
	return &LandHandler{allocator: allocator}
}

// RegisterRSNumber creates a parcel.
// @Summary      Register an RS number
// @Tags         land
// @Accept       json
// @Produce      json
// @Param        request body landapp.CreateRSNumberRequest true "Request body"
// @Success      201 {object} dto.Response{data=landapp.RSNumberResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/rs-numbers [post]
func (h *LandHandler) RegisterRSNumber(c *gin.Context) {
	var req landapp.CreateRSNumberRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rs, err := h.allocator.RegisterRSNumber(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rs)
}

// UpdateRSNumber edits descriptive fields.
// @Summary      Update RS number details
// @Tags         land
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body landapp.UpdateRSNumberRequest true "Request body"
// @Success      200 {object} dto.Response{data=landapp.RSNumberResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/rs-numbers/{id} [put]
func (h *LandHandler) UpdateRSNumber(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req landapp.UpdateRSNumberRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rs, err := h.allocator.UpdateRSNumber(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rs)
}

// CorrectArea changes the registered total area.
// @Summary      Correct the total area of an RS number
// @Description  The new total must cover the sold and allocated area
// @Tags         land
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body landapp.CorrectAreaRequest true "Request body"
// @Success      200 {object} dto.Response{data=landapp.RSNumberResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/rs-numbers/{id}/correct-area [post]
func (h *LandHandler) CorrectArea(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req landapp.CorrectAreaRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rs, err := h.allocator.CorrectTotalArea(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rs)
}

// Reconcile recomputes the counters of an RS number from its plots.
// @Summary      Reconcile RS number counters with its plots
// @Tags         land
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=landapp.RSNumberResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/rs-numbers/{id}/reconcile [post]
func (h *LandHandler) Reconcile(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.allocator.ReconcileRSNumber(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	rs, err := h.allocator.GetRSNumber(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rs)
}

// GetRSNumber returns one RS number.
// @Summary      Get an RS number
// @Tags         land
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=landapp.RSNumberResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/rs-numbers/{id} [get]
func (h *LandHandler) GetRSNumber(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	rs, err := h.allocator.GetRSNumber(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rs)
}

// ListRSNumbers returns a page of RS numbers.
// @Summary      List RS numbers
// @Tags         land
// @Produce      json
// @Param        search query string false "Search RS number or project"
// @Param        project_name query string false "Project name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]landapp.RSNumberResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/rs-numbers [get]
func (h *LandHandler) ListRSNumbers(c *gin.Context) {
	var filter landapp.RSNumberListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	items, total, err := h.allocator.ListRSNumbers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// CreatePlot carves a plot out of an RS number.
// @Summary      Create a plot
// @Description  Carves a plot out of the remaining area of an RS number. Area is rounded to four decimal places and may be zero
// @Tags         land
// @Accept       json
// @Produce      json
// @Param        request body landapp.CreatePlotRequest true "Request body"
// @Success      201 {object} dto.Response{data=landapp.PlotResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/plots [post]
func (h *LandHandler) CreatePlot(c *gin.Context) {
	var req landapp.CreatePlotRequest
	if !h.bindJSON(c, &req) {
		return
	}
	plot, err := h.allocator.CreatePlot(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plot)
}

// ResizePlot changes a plot's area.
// @Summary      Resize a plot
// @Description  Changes the area of an unsold plot. Growing a plot needs enough remaining area on its RS number
// @Tags         land
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body landapp.ResizePlotRequest true "Request body"
// @Success      200 {object} dto.Response{data=landapp.PlotResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/plots/{id}/resize [put]
func (h *LandHandler) ResizePlot(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req landapp.ResizePlotRequest
	if !h.bindJSON(c, &req) {
		return
	}
	plot, err := h.allocator.ResizePlot(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plot)
}

// ReservePlot holds a plot for a client.
// @Summary      Reserve a plot for a client
// @Tags         land
// @Accept       json
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Param        request body landapp.ReservePlotRequest true "Request body"
// @Success      200 {object} dto.Response{data=landapp.PlotResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/plots/{id}/reserve [post]
func (h *LandHandler) ReservePlot(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req landapp.ReservePlotRequest
	if !h.bindJSON(c, &req) {
		return
	}
	plot, err := h.allocator.ReservePlot(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plot)
}

// BlockPlot takes a plot off the market.
// @Summary      Block a plot
// @Tags         land
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=landapp.PlotResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/plots/{id}/block [post]
func (h *LandHandler) BlockPlot(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	plot, err := h.allocator.BlockPlot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plot)
}

// UnblockPlot returns a blocked plot to AVAILABLE.
// @Summary      Unblock a plot
// @Tags         land
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=landapp.PlotResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/plots/{id}/unblock [post]
func (h *LandHandler) UnblockPlot(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	plot, err := h.allocator.UnblockPlot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plot)
}

// DeletePlot removes an unsold plot.
// @Summary      Delete an unsold plot
// @Tags         land
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      204 "No Content"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/plots/{id} [delete]
func (h *LandHandler) DeletePlot(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.allocator.DeletePlot(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetPlot returns one plot.
// @Summary      Get a plot
// @Tags         land
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      200 {object} dto.Response{data=landapp.PlotResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/plots/{id} [get]
func (h *LandHandler) GetPlot(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	plot, err := h.allocator.GetPlot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plot)
}

// ListPlots returns a page of plots.
// @Summary      List plots
// @Tags         land
// @Produce      json
// @Param        search query string false "Search plot number"
// @Param        rs_number_id query string false "RS number ID" format(uuid)
// @Param        status query string false "Plot status" Enums(AVAILABLE, RESERVED, SOLD, BLOCKED)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]landapp.PlotResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /land/plots [get]
func (h *LandHandler) ListPlots(c *gin.Context) {
	var filter landapp.PlotListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	items, total, err := h.allocator.ListPlots(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}
