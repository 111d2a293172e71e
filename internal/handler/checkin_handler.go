package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/response"
	"github.com/stemsi/sei-backend/internal/service"
	"github.com/stemsi/sei-backend/internal/validator"
)

// CheckinHandler serves weekly socioemotional check-ins.
type CheckinHandler struct {
	checkinService *service.CheckinService
}

// NewCheckinHandler creates a new CheckinHandler.
func NewCheckinHandler(checkinService *service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService}
}

// ListCheckins godoc
// GET /api/v1/checkins
func (h *CheckinHandler) ListCheckins(c *gin.Context) {
	checkins, err := h.checkinService.ListAll(c.Request.Context())
	if err != nil {
		failFromService(c, err, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"checkins": checkins})
}

// ListStudentCheckins godoc
// GET /api/v1/checkins/student/:student_id
// Lists one student's check-ins, most recent week first.
func (h *CheckinHandler) ListStudentCheckins(c *gin.Context) {
	checkins, err := h.checkinService.ListByStudent(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		failFromService(c, err, response.ErrStudentNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"checkins": checkins})
}

// SubmitCheckin godoc
// POST /api/v1/checkins
// Stores a check-in and refreshes the owner's risk index.
func (h *CheckinHandler) SubmitCheckin(c *gin.Context) {
	var req model.SubmitCheckinRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	checkin, err := h.checkinService.Submit(c.Request.Context(), req)
	if err != nil {
		// A failed recalculation leaves the check-in stored with a stale index.
		failFromService(c, err, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"checkin": checkin})
}
