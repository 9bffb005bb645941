package echoapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/tutorparty/core"
)

const pingTimeout = 2 * time.Second

type diagApi struct {
	db   Pinger
	conf *core.Config
}

func registerDiagAPI(app *echo.Echo, db Pinger, conf *core.Config) {
	api := diagApi{db: db, conf: conf}
	app.GET("/diag", api.diag)
}

// diag reports which required settings are present and whether the database answers.
// Values are never exposed.
func (api *diagApi) diag(ctx echo.Context) error {
	conf := api.conf
	out := echo.Map{
		"OPENAI_API_KEY":   present(conf.OpenAI.APIKey),
		"PARTY_CODE":       present(conf.Party.Code),
		"PARTY_JWT_SECRET": present(conf.Party.SessionSecret),
		"ADMIN_KEY":        present(conf.Party.AdminKey),
		"DATABASE_URL":     present(conf.Database.URL) || present(conf.Database.User),
		"db_ok":            false,
	}
	if api.db != nil {
		pctx, cancel := context.WithTimeout(ctx.Request().Context(), pingTimeout)
		defer cancel()
		out["db_ok"] = api.db.PingContext(pctx) == nil
	}
	return ctx.JSON(http.StatusOK, out)
}

func present(v string) bool {
	return strings.TrimSpace(v) != ""
}
