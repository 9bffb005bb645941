package echoapi

import (
	"net/http"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/party"
)

const (
	msgJoinFirst   = "Please join first."
	msgServerError = "Server error"
	msgAIError     = "AI error"
)

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	errInvalidCode  = echo.NewHTTPError(http.StatusUnauthorized, "Invalid code")
	errPartyFull    = echo.NewHTTPError(http.StatusForbidden, "Party is full")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = echo.Map{"error": summarize(fldErrs), "fields": fldErrs}
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = echo.Map{"error": summarize(fldErrs), "fields": fldErrs}
			}
		case *core.QuotaExceededError:
			code = http.StatusTooManyRequests
			message = origErr.Error()
		case *core.UpstreamError:
			code = http.StatusInternalServerError
			message = echo.Map{"error": msgAIError, "details": origErr.Detail}
			logger.Warn(err.Error(), logArgs(ctx)...)
		default:
			switch {
			case origErr == core.ErrAuthenticationRequired, origErr == party.ErrNotFound:
				code = http.StatusUnauthorized
				message = msgJoinFirst
			case origErr == party.ErrInvalidCode:
				code = errInvalidCode.Code
				message = errInvalidCode.Message
			case origErr == party.ErrPartyFull:
				code = errPartyFull.Code
				message = errPartyFull.Message
			default: // any other error is a server error
				code = http.StatusInternalServerError
				message = msgServerError
				if ctx.Echo().Debug {
					message = echo.Map{"error": msgServerError, "details": err.Error()}
				}
				logger.Error(msgServerError, logArgs(ctx, errors.Wrap(err, msgServerError))...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// summarize returns the first field error (by field name) as "field: error".
func summarize(fldErrs map[string]string) string {
	fields := make([]string, 0, len(fldErrs))
	for f := range fldErrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	if len(fields) == 0 {
		return "invalid request"
	}
	return fields[0] + ": " + fldErrs[fields[0]]
}

// logArgs appends the session of the acting member, if any, to the logger args.
func logArgs(ctx echo.Context, args ...interface{}) []interface{} {
	if sess, ok := contextSession(ctx); ok {
		args = append(args, sess)
	}
	return args
}
