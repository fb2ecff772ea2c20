package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// resolveError maps an error to a status code and a JSON payload. Plain
// message strings are wrapped as {"error": msg}; validation failures become
// a field-to-message map.
func resolveError(err error, translator ut.Translator) (int, interface{}) {
	switch cause := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if cause == middleware.ErrJWTMissing {
			// echo's JWT middleware reports 400 for a missing header
			return http.StatusUnauthorized, echo.Map{"error": cause.Message}
		}
		if herr, ok := cause.Internal.(*echo.HTTPError); ok {
			cause = herr
		}
		if msg, ok := cause.Message.(string); ok {
			return cause.Code, echo.Map{"error": msg}
		}
		return cause.Code, cause.Message

	case validator.ValidationErrors:
		fields := make(map[string]string, len(cause))
		for _, vErr := range cause {
			fields[vErr.Field()] = vErr.Translate(translator)
		}
		return http.StatusBadRequest, fields

	case *core.ValidationError:
		if len(cause.Fields) == 0 {
			return http.StatusBadRequest, echo.Map{"error": cause.Error()}
		}
		fields := make(map[string]string, len(cause.Fields))
		for _, fErr := range cause.Fields {
			fields[fErr.Field] = fErr.Error
		}
		return http.StatusBadRequest, fields
	}
	return http.StatusInternalServerError, echo.Map{"error": http.StatusText(http.StatusInternalServerError)}
}

// newAppHTTPErrorHandler returns the app's echo.HTTPErrorHandler.
// signalShutdown is called whenever an integrity error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, message := resolveError(err, translator)

		if code == http.StatusInternalServerError {
			msg := http.StatusText(code)
			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.UserID()
				usr.FirstName = claims.FirstName
				usr.LastName = claims.LastName
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			if core.IsShutdown(err) {
				signalShutdown()
			}
			if ctx.Echo().Debug {
				message = echo.Map{"error": err.Error()}
			}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
