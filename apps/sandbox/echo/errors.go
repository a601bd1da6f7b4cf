package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/session"
	inmemdb "github.com/trezcool/placement/storage/inmem"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errMissingToken       = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errInvalidToken       = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
	errStudentNotFound    = echo.NewHTTPError(http.StatusNotFound, "student not found")
	errLogbookNotFound    = echo.NewHTTPError(http.StatusNotFound, "logbook not found")
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var res errorResponse

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				res.Message = msg
			} else {
				res.Message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			res.Fields = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				res.Fields[vErr.Field()] = vErr.Error()
			}
			code = http.StatusBadRequest
			res.Message = "invalid input"
		case *core.ValidationError:
			code = http.StatusBadRequest
			res.Message = origErr.Error()
			if len(origErr.Fields) > 0 {
				res.Fields = origErr.FieldMap()
			}
		case *core.APIError:
			code = origErr.Status
			res.Message = origErr.Message
		default:
			switch {
			case errors.Is(err, logbook.ErrInvalidTransition):
				code = http.StatusConflict
				res.Message = err.Error()
			case errors.Is(err, inmemdb.ErrNotFound):
				code = http.StatusNotFound
				res.Message = errHttpNotFound.Message.(string)
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				res.Message = msg

				var usr session.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr = claims.User()
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				if ctx.Echo().Debug {
					res.Message = err.Error()
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, res)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
