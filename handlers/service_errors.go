package handlers

import (
	"errors"
	"net/http"

	"github.com/upb/agri-advisory-gateway/services"
	"github.com/upb/agri-advisory-gateway/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)
	if len(details) == 0 {
		details = nil
	}

	var status int
	message := err.Error()
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	switch {
	case services.IsNotFoundError(err):
		status = http.StatusNotFound

	case services.IsValidationError(err):
		status = http.StatusBadRequest

	case services.IsConflictError(err):
		status = http.StatusConflict

	case services.IsUnavailableError(err):
		status = http.StatusServiceUnavailable

	case services.IsExternalError(err):
		// Upstream causes can echo request data, so only the summary is returned
		logger.Warn("inference backend error", zap.Error(err))
		status = http.StatusBadGateway

	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		status = http.StatusInternalServerError
		message = "An internal error occurred"
		details = nil

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		status = http.StatusInternalServerError
		message = "An unexpected error occurred"
		details = nil
	}

	if err := utils.WriteError(w, status, message, details); err != nil {
		logger.Error("failed to write error response", zap.Error(err), zap.Int("status", status))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var bodyErr *utils.BodyError
	if errors.As(err, &bodyErr) {
		if err := utils.WriteError(w, bodyErr.Status, bodyErr.Message, nil); err != nil {
			logger.Error("failed to write body error response", zap.Error(err))
		}
		return
	}

	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		if err := utils.WriteBadRequest(w, "Validation failed", details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteBadRequest(w, err.Error(), nil); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
