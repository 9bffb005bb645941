package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorparty/core/chat"
)

type (
	chatApi struct {
		svc chat.Service
	}

	chatResponse struct {
		Reply string      `json:"reply"`
		Meta  interface{} `json:"meta"`
		Usage chat.Usage  `json:"usage"`
	}

	translateResponse struct {
		Translation string     `json:"translation"`
		Usage       chat.Usage `json:"usage"`
	}
)

func registerChatAPI(app *echo.Echo, auth echo.MiddlewareFunc, svc chat.Service) {
	api := chatApi{svc: svc}

	g := app.Group("", auth)
	g.POST("/chat", api.chat)
	g.POST("/translate", api.translate)
}

// Handlers

func (api *chatApi) chat(ctx echo.Context) error {
	sess, err := mustContextSession(ctx)
	if err != nil {
		return err
	}
	var data chat.Request
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to chat.Request")
	}

	reply, err := api.svc.Chat(ctx.Request().Context(), sess, data)
	if err != nil {
		return errors.Wrap(err, "chatting")
	}

	resp := chatResponse{Reply: reply.Text, Meta: echo.Map{}, Usage: reply.Usage}
	if reply.Meta != nil {
		resp.Meta = reply.Meta
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *chatApi) translate(ctx echo.Context) error {
	sess, err := mustContextSession(ctx)
	if err != nil {
		return err
	}
	var data chat.TranslateRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to chat.TranslateRequest")
	}

	tr, err := api.svc.Translate(ctx.Request().Context(), sess, data)
	if err != nil {
		return errors.Wrap(err, "translating")
	}
	return ctx.JSON(http.StatusOK, translateResponse{Translation: tr.Text, Usage: tr.Usage})
}
