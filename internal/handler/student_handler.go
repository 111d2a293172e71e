package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/response"
	"github.com/stemsi/sei-backend/internal/risk"
	"github.com/stemsi/sei-backend/internal/service"
	"github.com/stemsi/sei-backend/internal/validator"
)

// listStudentsQuery is the query string accepted by ListStudents.
type listStudentsQuery struct {
	Q         string `form:"q" binding:"omitempty,max=120"`
	RiskLevel string `form:"risk_level" binding:"omitempty,risklevel"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PerPage   int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// StudentHandler serves the student roster and metric endpoints.
type StudentHandler struct {
	studentService *service.StudentService
	importService  *service.ImportService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService, importService *service.ImportService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		importService:  importService,
	}
}

// ListStudents godoc
// GET /api/v1/students?q=&risk_level=&page=&per_page=
// Lists students with their risk level, filtered by search text and level.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var q listStudentsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		if _, bad := fields["risk_level"]; bad {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidRiskLevel, fields)
			return
		}
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	level, _ := risk.ParseLevel(q.RiskLevel)
	students, pagination, err := h.studentService.List(c.Request.Context(), service.StudentFilter{
		Query:   q.Q,
		Level:   level,
		Page:    q.Page,
		PerPage: q.PerPage,
	})
	if err != nil {
		failFromService(c, err, response.ErrStudentNotFound)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": students}, pagination)
}

// GetStudent godoc
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.studentService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err, response.ErrStudentNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// CreateStudent godoc
// POST /api/v1/students
// Registers a student; the risk index is computed before the response is sent.
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), req)
	if err != nil {
		failFromService(c, err, response.ErrStudentNotFound)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// UpdateMetrics godoc
// PATCH /api/v1/students/:id/metrics
// Applies a partial update to a student's indicators and recalculates the risk index.
func (h *StudentHandler) UpdateMetrics(c *gin.Context) {
	var req model.UpdateMetricsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.UpdateMetrics(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		failFromService(c, err, response.ErrStudentNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// ImportStudents godoc
// POST /api/v1/students/import (multipart: file, sheet)
// Creates or updates students from an .xlsx roster.
func (h *StudentHandler) ImportStudents(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
		return
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer f.Close()

	result, err := h.importService.ImportXLSX(c.Request.Context(), f, service.ImportOptions{
		Sheet: c.PostForm("sheet"),
	})
	if err != nil {
		failFromService(c, err, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"import": result})
}
