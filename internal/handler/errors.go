package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/response"
	"github.com/stemsi/sei-backend/internal/service"
)

// failFromService maps a service error onto the response envelope.
// notFound is the code reported when the error wraps service.ErrNotFound.
func failFromService(c *gin.Context, err error, notFound response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, notFound)
	case errors.Is(err, service.ErrDuplicateID):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, model.ErrReopenCompleted):
		response.FailWithDetail(c, http.StatusUnprocessableEntity, response.ErrInvalidTransition, err.Error())
	case errors.Is(err, service.ErrValidation):
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, err.Error())
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
