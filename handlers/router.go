package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lablens/logger"
	"lablens/scan"
	"lablens/session"
	"lablens/web"
)

type RouterOptions struct {
	Store          *session.Store
	Workflow       *scan.Workflow
	History        ScanHistory
	Model          string
	MaxUploadBytes int64
	SessionTTL     time.Duration
	SecureCookie   bool
	Log            logrus.FieldLogger
}

func NewRouter(opts RouterOptions) (*gin.Engine, error) {
	router := gin.New()
	router.Use(logger.GinLogger(logger.Fork(opts.Log, "http")))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		opts.Log.Errorf("recovered from panic: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorPayloadWithCode("", "Internal server error", ""))
	}))
	router.MaxMultipartMemory = opts.MaxUploadBytes + multipartOverhead

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/assets", web.Assets())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	authHandler := NewAuthHandler(opts.Store, opts.SessionTTL, opts.SecureCookie, logger.Fork(opts.Log, "auth"))
	inventoryHandler := NewInventoryHandler(opts.Model)
	scanHandler := NewScanHandler(opts.Workflow, opts.History, opts.MaxUploadBytes, logger.Fork(opts.Log, "scan"))

	withSession := router.Group("/", SessionMiddleware(opts.Store, opts.SessionTTL, opts.SecureCookie))
	withSession.GET("/", scanHandler.ServeHTML)

	api := withSession.Group("/api")
	api.GET("/session", authHandler.Status)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)

	authed := api.Group("", RequireAuth())
	authed.GET("/metrics", inventoryHandler.Metrics)
	authed.GET("/inventory", inventoryHandler.List)
	authed.GET("/inventory.csv", inventoryHandler.ExportCSV)
	authed.POST("/inventory", inventoryHandler.Add)
	authed.PUT("/inventory/:id", inventoryHandler.Update)
	authed.DELETE("/inventory/:id", inventoryHandler.Delete)
	authed.DELETE("/inventory", inventoryHandler.Reset)
	authed.POST("/scan", scanHandler.ScanImage)
	authed.GET("/scans", scanHandler.GetScanResults)
	authed.GET("/scans/:id", scanHandler.GetScanByID)

	return router, nil
}
