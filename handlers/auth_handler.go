package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lablens/session"
)

type LoginRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

type AuthHandler struct {
	store        *session.Store
	sessionTTL   time.Duration
	secureCookie bool
	log          logrus.FieldLogger
}

func NewAuthHandler(store *session.Store, sessionTTL time.Duration, secureCookie bool, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{store: store, sessionTTL: sessionTTL, secureCookie: secureCookie, log: log}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := session.ValidateCredential(req.APIKey); err != nil {
		h.log.WithField("client_ip", c.ClientIP()).Info("rejected api key with invalid format")
		writeError(c, err)
		return
	}

	sess := currentSession(c)
	if sess == nil {
		sess = h.store.Create()
		attachSession(c, sess, h.sessionTTL, h.secureCookie)
	}
	if err := sess.Login(req.APIKey); err != nil {
		writeError(c, err)
		return
	}

	h.log.WithField("client_ip", c.ClientIP()).Info("session connected")
	writeJSON(c, http.StatusOK, gin.H{"authenticated": true})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := currentSession(c); sess != nil {
		h.store.Delete(sess.Token)
	}
	clearSessionCookie(c, h.secureCookie)
	writeJSON(c, http.StatusOK, gin.H{"authenticated": false})
}

func (h *AuthHandler) Status(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"authenticated": authenticated(c)})
}
