package echoapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/party"
	"github.com/trezcool/tutorparty/core/session"
)

const (
	contextSessionKey = "session"
	adminKeyHeader    = "X-Admin-Key"
	adminKeyParam     = "key"
)

// readSession returns the verified session carried by the request cookie.
// Sessions of another party (e.g. after the party code changed) are rejected.
func readSession(ctx echo.Context, conf *core.Config) (session.Payload, bool) {
	cookie, err := ctx.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return session.Payload{}, false
	}
	sess, ok := session.Verify(cookie.Value, []byte(conf.Party.SessionSecret))
	if !ok || sess.MemberID == "" || sess.PartyCode != conf.Party.Code {
		return session.Payload{}, false
	}
	return sess, true
}

// sessionMiddleware rejects requests without a valid session cookie,
// or whose member is no longer part of the party.
func sessionMiddleware(conf *core.Config, partySvc party.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, ok := readSession(ctx, conf)
			if !ok {
				return core.ErrAuthenticationRequired
			}
			if _, err := partySvc.GetByID(ctx.Request().Context(), sess.MemberID); err != nil {
				return errors.Wrap(err, "getting session member")
			}
			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

func contextSession(ctx echo.Context) (session.Payload, bool) {
	sess, ok := ctx.Get(contextSessionKey).(session.Payload)
	return sess, ok
}

func mustContextSession(ctx echo.Context) (session.Payload, error) {
	if sess, ok := contextSession(ctx); ok {
		return sess, nil
	}
	return session.Payload{}, errors.Wrap(core.ErrAuthenticationRequired, "getting context session")
}

func setSessionCookie(ctx echo.Context, sess session.Payload, conf *core.Config) error {
	token, err := session.Sign(sess, []byte(conf.Party.SessionSecret))
	if err != nil {
		return errors.Wrap(err, "signing session")
	}
	ctx.SetCookie(newSessionCookie(token, int(conf.Party.SessionMaxAge.Seconds()), conf))
	return nil
}

func clearSessionCookie(ctx echo.Context, conf *core.Config) {
	ctx.SetCookie(newSessionCookie("", -1, conf))
}

func newSessionCookie(value string, maxAge int, conf *core.Config) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// adminKeyMiddleware accepts requests carrying the admin key in the X-Admin-Key
// header or the key query parameter.
func adminKeyMiddleware(adminKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			key := ctx.Request().Header.Get(adminKeyHeader)
			if key == "" {
				key = ctx.QueryParam(adminKeyParam)
			}
			if adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
				return errUnauthorized
			}
			return next(ctx)
		}
	}
}
