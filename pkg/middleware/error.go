package middleware

import (
	"errors"
	"net/http"

	"MentorDesk/internal/apperror"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as {success:false, message, kind}.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := apperror.StatusOf(err)
		message := apperror.PublicMessage(err)
		kind := apperror.KindOf(err)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			kind = apperror.KindValidation
			if msg, ok := he.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(he.Code)
			}
			if status >= http.StatusInternalServerError {
				kind = apperror.KindInternal
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err),
			)
		}

		body := map[string]any{"success": false, "message": message, "kind": kind}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}
