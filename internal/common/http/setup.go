package http

import (
	"net/http"

	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	"github.com/AlibekovAA/toggle-task/internal/common/httpmetrics"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, handler http.Handler, onPanic http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log, onPanic)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware
	csp := ContentSecurityPolicyMiddleware("")

	return securityHeaders(csp(traceID(recovery(maxRequestSize(metrics.Wrap(handler))))))
}
