package utils

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"cafedir/database"
	"cafedir/logger"
	"cafedir/model"

	"github.com/gin-gonic/gin"
)

const (
	CSRFField  = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// AbortFunc ends the request with status, rendering whatever error page the
// application uses.
type AbortFunc func(c *gin.Context, status int)

// Sessions loads the session cookie and resolves its user for every request.
// A session whose user no longer exists is treated as anonymous. A failed
// lookup ends the request through abort with an anonymous session in place.
func Sessions(m *Manager, users UserFinder, abort AbortFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := m.load(c)
		if s.Authenticated() {
			user, err := users.FindByID(c.Request.Context(), s.UserID())
			switch {
			case err == nil:
				c.Set(userKey, user)
				c.Set(logger.UserIDKey, user.ID)
			case errors.Is(err, database.ErrNotFound):
				s = newSession(0, s.claims.Flashes)
			default:
				_ = c.Error(err)
				c.Set(sessionKey, newSession(0, s.claims.Flashes))
				abort(c, http.StatusInternalServerError)
				return
			}
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

// RequireLogin rejects anonymous requests with 403 Forbidden. It never
// redirects to the login page.
func RequireLogin(abort AbortFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			abort(c, http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// CSRF requires the session's anti-forgery token on every state-changing
// request, either as a form field or a header.
func CSRF(abort AbortFunc) gin.HandlerFunc {
	return csrfCheck(abort, false)
}

// CSRFLink guards GET routes that change state, such as delete links. The
// token travels in the csrf_token query parameter.
func CSRFLink(abort AbortFunc) gin.HandlerFunc {
	return csrfCheck(abort, true)
}

func csrfCheck(abort AbortFunc, links bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if !links {
				c.Next()
				return
			}
			token = c.Query(CSRFField)
		default:
			token = c.PostForm(CSRFField)
			if token == "" {
				token = c.GetHeader(CSRFHeader)
			}
		}

		s := CurrentSession(c)
		if s == nil || token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.CSRFToken())) != 1 {
			abort(c, http.StatusBadRequest)
			return
		}
		c.Next()
	}
}
