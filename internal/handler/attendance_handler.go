package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/guru-admin-api/internal/models"
	"github.com/noah-isme/guru-admin-api/internal/service"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
	"github.com/noah-isme/guru-admin-api/pkg/response"
)

// AttendanceHandler exposes daily attendance endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Roster godoc
// @Summary Daily attendance roster for a class
// @Tags Absensi
// @Produce json
// @Param classId query string true "Class ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /absensi [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	classID := c.Query("classId")
	date := c.Query("date")
	if classID == "" || date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId and date are required"))
		return
	}
	roster, err := h.service.Roster(c.Request.Context(), classID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Save godoc
// @Summary Save attendance for a class and date
// @Tags Absensi
// @Accept json
// @Produce json
// @Param payload body models.SaveAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /absensi [post]
func (h *AttendanceHandler) Save(c *gin.Context) {
	var req models.SaveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Recap godoc
// @Summary Attendance recap over a date range
// @Tags Absensi
// @Produce json
// @Param classId query string false "Class ID"
// @Param semesterId query string false "Semester ID, defaults to the active semester"
// @Param status query string false "Hadir, Sakit, Izin or Alpa"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /absensi/rekap [get]
func (h *AttendanceHandler) Recap(c *gin.Context) {
	var req service.AttendanceRecapRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	recap, err := h.service.Recap(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, recap, nil)
}
