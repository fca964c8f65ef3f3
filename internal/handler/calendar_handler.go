package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-forge/timetable-api/internal/service"
	appErrors "github.com/campus-forge/timetable-api/pkg/errors"
	"github.com/campus-forge/timetable-api/pkg/response"
)

// CalendarHandler handles the calendar configuration endpoints.
type CalendarHandler struct {
	service *service.CalendarService
}

// NewCalendarHandler constructs a calendar handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// Get godoc
// @Summary Get the effective calendar configuration
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /calendar [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	cfg, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// History godoc
// @Summary List calendar configuration history
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /calendar/history [get]
func (h *CalendarHandler) History(c *gin.Context) {
	configs, err := h.service.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, configs, nil)
}

// Put godoc
// @Summary Replace the calendar configuration
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body service.CalendarRequest true "Calendar payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /calendar [put]
func (h *CalendarHandler) Put(c *gin.Context) {
	var req service.CalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cfg, err := h.service.Put(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}
