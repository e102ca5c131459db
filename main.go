package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"lablens/config"
	"lablens/handlers"
	"lablens/history"
	"lablens/inference"
	"lablens/logger"
	"lablens/scan"
	"lablens/session"
)

const shutdownTimeout = 10 * time.Second

var (
	RootCmd = &cobra.Command{
		Use:           "lablens",
		Short:         "LabLens lab component inventory dashboard",
		RunE:          runMain,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	viperCfg *viper.Viper
)

func init() {
	pFlags := RootCmd.PersistentFlags()
	config.RegisterFlags(pFlags)
	viperCfg = config.New(pFlags)
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(viperCfg, path)
	if err != nil {
		return err
	}

	logOutput := logger.NewLogOutput(cfg.Logging.File)
	if err := logOutput.Start(); err != nil {
		return err
	}
	defer logOutput.Shutdown()

	root := logger.New(cfg.Logging, logOutput.File)
	if root.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, root)
}

func run(ctx context.Context, cfg *config.Config, root *logrus.Logger) error {
	db, err := history.Open(cfg.Database, logger.Fork(root, "history"))
	if err != nil {
		return err
	}
	defer func() {
		if err := history.Close(db); err != nil {
			root.Errorf("closing scan history: %v", err)
		}
	}()
	repo := history.NewRepository(db)

	store := session.NewStore(cfg.Server.SessionTTL, cfg.Server.SessionCleanupInterval, logger.Fork(root, "session"))

	gemini := inference.NewGeminiClient(cfg.Gemini, &http.Client{}, logger.Fork(root, "gemini"))
	workflow := scan.NewWorkflow(
		gemini,
		inference.NewRetrier(cfg.Gemini.MaxAttempts, cfg.Gemini.RetryDelay),
		scan.Options{
			Model:         gemini.Model(),
			MaxImageBytes: cfg.Server.MaxUploadBytes,
			Recorder:      repo,
		},
		logger.Fork(root, "scan"),
	)

	router, err := handlers.NewRouter(handlers.RouterOptions{
		Store:          store,
		Workflow:       workflow,
		History:        repo,
		Model:          gemini.Model(),
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		SessionTTL:     cfg.Server.SessionTTL,
		SecureCookie:   cfg.Server.SecureCookie,
		Log:            root,
	})
	if err != nil {
		return err
	}

	var handler http.Handler = router
	if len(cfg.Server.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   cfg.Server.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler(router)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		root.Infof("listening on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		root.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
