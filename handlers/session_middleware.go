package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lablens/session"
)

const (
	SessionCookie = "lablens_session"

	sessionKey = "lablens.session"
)

// SessionMiddleware attaches the caller's session to the request when the
// cookie names a live one. Sessions are only created by a successful login,
// a stale cookie is cleared.
func SessionMiddleware(store *session.Store, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		if sess, ok := store.Get(token); ok {
			attachSession(c, sess, ttl, secure)
		} else {
			clearSessionCookie(c, secure)
		}
		c.Next()
	}
}

// RequireAuth rejects requests of sessions that did not log in.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticated(c) {
			writeError(c, session.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

// currentSession is nil for anonymous requests.
func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	return v.(*session.Session)
}

func authenticated(c *gin.Context) bool {
	sess := currentSession(c)
	return sess != nil && sess.Authenticated()
}

func attachSession(c *gin.Context, sess *session.Session, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sess.Token, int(ttl.Seconds()), "/", "", secure, true)
	c.Set(sessionKey, sess)
}

func clearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
