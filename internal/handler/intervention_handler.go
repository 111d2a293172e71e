package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/response"
	"github.com/stemsi/sei-backend/internal/service"
	"github.com/stemsi/sei-backend/internal/validator"
)

// InterventionHandler serves interventions and their follow-ups.
type InterventionHandler struct {
	interventionService *service.InterventionService
}

// NewInterventionHandler creates a new InterventionHandler.
func NewInterventionHandler(interventionService *service.InterventionService) *InterventionHandler {
	return &InterventionHandler{interventionService: interventionService}
}

// ListInterventions godoc
// GET /api/v1/interventions?student_id=
// Lists interventions, newest first, optionally for one student.
func (h *InterventionHandler) ListInterventions(c *gin.Context) {
	interventions, err := h.interventionService.List(c.Request.Context(), c.Query("student_id"))
	if err != nil {
		failFromService(c, err, response.ErrInterventionNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"interventions": interventions})
}

// GetIntervention godoc
// GET /api/v1/interventions/:id
func (h *InterventionHandler) GetIntervention(c *gin.Context) {
	intervention, err := h.interventionService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err, response.ErrInterventionNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"intervention": intervention})
}

// CreateIntervention godoc
// POST /api/v1/interventions
// Opens an intervention for an existing student.
func (h *InterventionHandler) CreateIntervention(c *gin.Context) {
	var req model.CreateInterventionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	intervention, err := h.interventionService.Create(c.Request.Context(), req)
	if err != nil {
		failFromService(c, err, response.ErrStudentNotFound)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"intervention": intervention})
}

// UpdateStatus godoc
// PATCH /api/v1/interventions/:id
// Moves the intervention to the requested status. Reopening is rejected.
func (h *InterventionHandler) UpdateStatus(c *gin.Context) {
	var req model.UpdateInterventionStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	intervention, err := h.interventionService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		failFromService(c, err, response.ErrInterventionNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"intervention": intervention})
}

// CompleteIntervention godoc
// POST /api/v1/interventions/:id/complete
// Idempotent: completing a completed intervention returns it unchanged.
func (h *InterventionHandler) CompleteIntervention(c *gin.Context) {
	intervention, err := h.interventionService.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err, response.ErrInterventionNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"intervention": intervention})
}

// ListFollowUps godoc
// GET /api/v1/followups?intervention_id=
func (h *InterventionHandler) ListFollowUps(c *gin.Context) {
	followUps, err := h.interventionService.ListFollowUps(c.Request.Context(), c.Query("intervention_id"))
	if err != nil {
		failFromService(c, err, response.ErrInterventionNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"followups": followUps})
}

// CreateFollowUp godoc
// POST /api/v1/followups
func (h *InterventionHandler) CreateFollowUp(c *gin.Context) {
	var req model.CreateFollowUpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	followUp, err := h.interventionService.AddFollowUp(c.Request.Context(), req)
	if err != nil {
		failFromService(c, err, response.ErrInterventionNotFound)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"followup": followUp})
}
