package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/party"
	"github.com/trezcool/tutorparty/core/session"
)

type partyApi struct {
	svc      party.Service
	validate *validator.Validate
	conf     *core.Config
}

func registerPartyAPI(app *echo.Echo, auth echo.MiddlewareFunc, svc party.Service, validate *validator.Validate, conf *core.Config) {
	api := partyApi{
		svc:      svc,
		validate: validate,
		conf:     conf,
	}

	app.POST("/join", api.join)
	app.POST("/leave", api.leave)
	app.GET("/me", api.me)
	app.GET("/members", api.members, auth)
}

// Handlers

func (api *partyApi) join(ctx echo.Context) error {
	var data party.JoinRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Join(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "joining party")
	}

	sess := session.Payload{MemberID: m.ID, Name: m.Name, PartyCode: m.PartyCode}
	if err = setSessionCookie(ctx, sess, api.conf); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (api *partyApi) leave(ctx echo.Context) error {
	clearSessionCookie(ctx, api.conf)
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (api *partyApi) me(ctx echo.Context) error {
	sess, ok := readSession(ctx, api.conf)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, echo.Map{})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"name": sess.Name})
}

// members lists the names of the party members.
func (api *partyApi) members(ctx echo.Context) error {
	members, err := api.svc.Members(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"members": names, "seats": api.conf.Party.Seats})
}
