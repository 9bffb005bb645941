package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/usage"
)

const maxReportDays = 366

type adminApi struct {
	usageSvc usage.Service
}

func registerAdminAPI(app *echo.Echo, adminKey echo.MiddlewareFunc, usageSvc usage.Service) {
	api := adminApi{usageSvc: usageSvc}

	ag := app.Group("/admin", adminKey)
	ag.GET("/usage", api.usage)
}

// Handlers

// usage reports the party usage over the last `days` days (30 by default).
func (api *adminApi) usage(ctx echo.Context) error {
	var window time.Duration
	if v := ctx.QueryParam("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 1 || days > maxReportDays {
			return core.NewValidationError(nil, core.FieldError{
				Field: "days",
				Error: "must be a number of days between 1 and " + strconv.Itoa(maxReportDays),
			})
		}
		window = time.Duration(days) * 24 * time.Hour
	}

	rep, err := api.usageSvc.Report(ctx.Request().Context(), window)
	if err != nil {
		return errors.Wrap(err, "building usage report")
	}
	return ctx.JSON(http.StatusOK, rep)
}
