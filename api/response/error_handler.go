package response

import (
	stdErrors "errors"
	"net/http"

	"fooddelivery/domain/shared"
	"fooddelivery/pkg/errors"
	"fooddelivery/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// frameworkCodes names the statuses HandleError is called with; anything
// else is reported as a bad request.
var frameworkCodes = map[int]errors.ErrorCode{
	http.StatusUnauthorized:    errors.CodeUnauthorized,
	http.StatusForbidden:       errors.CodeForbidden,
	http.StatusTooManyRequests: errors.CodeTooManyRequest,
}

// HandleError renders a failure detected before the application layer runs,
// such as an unparsable body or a bad path parameter.
func HandleError(c *gin.Context, err error, message string, status int) {
	code, ok := frameworkCodes[status]
	if !ok {
		code = errors.CodeBadRequest
	}
	requestLog(c).Warn(message, zap.Int("http_status", status), zap.Error(err))
	abort(c, status, &Response{Error: string(code), Message: message})
}

// HandleAppError classifies err, logs it once and renders the envelope.
// Causes of 500s stay in the log; the caller only sees a generic message.
// Payment gateway failures (502) keep their message so the client can tell
// checkout apart from an outage.
func HandleAppError(c *gin.Context, err error) {
	appErr := errors.FromDomainError(err)
	status := appErr.HTTPStatusCode()

	fields := []zap.Field{
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", status),
		zap.Strings("stack", originStack(err)),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}

	body := &Response{Error: string(appErr.Code), Message: appErr.Message, Details: appErr.Details}
	log := requestLog(c)
	switch {
	case appErr.Code == errors.CodeGateway:
		log.Error(appErr.Message, fields...)
	case status >= http.StatusInternalServerError:
		log.Error(appErr.Message, fields...)
		body.Message, body.Details = "internal server error", nil
	default:
		log.Warn(appErr.Message, fields...)
	}
	abort(c, status, body)
}

func abort(c *gin.Context, status int, body *Response) {
	body.Code = status
	body.RequestID = GetRequestID(c)
	c.AbortWithStatusJSON(status, body)
}

func requestLog(c *gin.Context) *zap.Logger {
	return logger.WithRequestID(GetRequestID(c)).With(
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path))
}

// originStack prefers the frames recorded where the domain error was raised
// and falls back to the handler that reports it.
func originStack(err error) []string {
	var s shared.Stacker
	if stdErrors.As(err, &s) {
		if frames := s.Stack(); len(frames) > 0 {
			return frames
		}
	}
	return shared.FormatStack(shared.CaptureStack(3))
}
