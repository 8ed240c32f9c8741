// Package handler contains the gin HTTP handlers for the dashboard API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	timelineapp "github.com/deatl/backend/internal/application/timeline"
	"github.com/deatl/backend/internal/domain/card"
	"github.com/deatl/backend/internal/domain/shared"
	"github.com/deatl/backend/internal/domain/timeline"
	"github.com/deatl/backend/internal/interfaces/http/dto"
	"github.com/deatl/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common response helpers for all handlers.
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a base handler.
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// Success sends a 200 response with the standard envelope.
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response carrying list metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total))
}

// Created sends a 201 response.
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response; the HTTP status is derived from the code.
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 response for malformed input.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// HandleDomainError maps domain and application errors onto wire error codes.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	var fetchErr *card.FetchError
	var storeErr *shared.StoreWriteError

	switch {
	case errors.Is(err, timeline.ErrCategoryInUse):
		h.Error(c, dto.ErrCodeCategoryInUse, err.Error())
	case errors.Is(err, timeline.ErrConfirmationRequired):
		h.Error(c, dto.ErrCodeConfirmationRequired, err.Error())
	case errors.Is(err, timeline.ErrFileNotFound):
		h.Error(c, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, card.ErrTrainingCard):
		h.Error(c, dto.ErrCodeTrainingCard, err.Error())
	case errors.Is(err, card.ErrCardNotFound):
		h.Error(c, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, card.ErrAttachmentTooLarge):
		h.Error(c, dto.ErrCodeFileTooLarge, err.Error())
	case errors.Is(err, timelineapp.ErrSyncInFlight):
		h.Error(c, dto.ErrCodeSyncInFlight, err.Error())
	case errors.Is(err, card.ErrSourceUnavailable), errors.As(err, &fetchErr):
		h.Error(c, dto.ErrCodeSourceUnavailable, err.Error())
	case errors.As(err, &storeErr):
		h.logger.Error("Document store write failed",
			zap.String("op", storeErr.Op),
			zap.String("path", storeErr.Path),
			zap.Error(storeErr.Err))
		h.Error(c, dto.ErrCodeStoreWrite, "Document store write failed")
	case errors.As(err, &domainErr):
		h.Error(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
	default:
		h.logger.Error("Unhandled error in request",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		h.Error(c, dto.ErrCodeInternal, "Internal server error")
	}
}
