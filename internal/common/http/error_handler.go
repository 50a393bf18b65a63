package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	commonerrors "github.com/AlibekovAA/toggle-task/internal/common/errors"
	"github.com/AlibekovAA/toggle-task/internal/common/httpmetrics"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

// Classify logs and counts err and returns the domain error to show the
// user. Anything that is not a domain error becomes an internal error so
// storage details never reach a page.
func (h *ErrorHandler) Classify(r *http.Request, err error) commonerrors.DomainError {
	if err == nil {
		return nil
	}

	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)

	domainErr, ok := commonerrors.AsDomainError(err)
	if !ok {
		h.log.WithFields(ctx, logger.Fields{
			"error":  err.Error(),
			"path":   r.URL.Path,
			"action": "unhandled_error",
		}).Errorf("unhandled error: %v", err)
		domainErr = commonerrors.ErrInternalError.WithCause(err)
	} else if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(ctx, logger.Fields{
			"error_code": domainErr.Code(),
			"category":   string(domainErr.Category()),
			"status":     domainErr.HTTPStatus(),
			"trace_id":   traceID,
			"action":     "domain_error",
		}).Debugf("domain error: %s", domainErr.Error())
	}

	status := domainErr.HTTPStatus()
	metrics.DomainErrorsTotal.WithLabelValues(
		string(domainErr.Category()),
		domainErr.Code(),
		strconv.Itoa(status),
	).Inc()
	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	return domainErr
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(constants.TraceIDKey).(string)
	return traceID
}
