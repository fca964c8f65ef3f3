package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-forge/timetable-api/internal/models"
	"github.com/campus-forge/timetable-api/internal/service"
	appErrors "github.com/campus-forge/timetable-api/pkg/errors"
	"github.com/campus-forge/timetable-api/pkg/response"
)

// TimetableHandler handles generation, reset and timetable views.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a fresh timetable for all divisions
// @Description Discards the stored timetable and runs a full generation pass. Units that could not be placed are reported in the result.
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	result, err := h.service.Generate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reset godoc
// @Summary Delete the stored timetable
// @Tags Timetable
// @Produce json
// @Success 204
// @Security BearerAuth
// @Router /timetable [delete]
func (h *TimetableHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List timetable assignments
// @Tags Timetable
// @Produce json
// @Param division_id query string false "Filter by division"
// @Param faculty_id query string false "Filter by faculty member"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	filter := models.TimetableFilter{
		DivisionID: c.Query("division_id"),
		FacultyID:  c.Query("faculty_id"),
	}
	details, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// Grid godoc
// @Summary Get one division's timetable as a day-by-period grid
// @Tags Timetable
// @Produce json
// @Param id path string true "Division ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/divisions/{id}/grid [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	divisionID := c.Param("id")
	if divisionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "division id is required"))
		return
	}
	grid, err := h.service.Grid(c.Request.Context(), divisionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}
