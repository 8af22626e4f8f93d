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
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-board/api/swagger"
	"github.com/noah-isme/sma-timetable-board/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-timetable-board/internal/middleware"
	"github.com/noah-isme/sma-timetable-board/internal/service"
	"github.com/noah-isme/sma-timetable-board/pkg/config"
	"github.com/noah-isme/sma-timetable-board/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-board/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-board/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timetable board HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	seeds, err := rt.seedSource(ctx)
	if err != nil {
		return err
	}
	store, err := rt.boardStore(ctx)
	if err != nil {
		return err
	}

	var metrics *service.MetricsService
	if rt.cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}
	timetableSvc := service.NewTimetableService(
		seeds,
		store,
		rt.placement(),
		service.NewExportService(rt.logger, nil, nil),
		metrics,
		validator.New(),
		rt.logger,
		service.TimetableConfig{SessionTTL: rt.cfg.Sessions.TTL},
	)
	// Fail at startup rather than on the first request when the seed is unusable.
	if _, err := timetableSvc.Layout(ctx); err != nil {
		return fmt.Errorf("load timetable seed: %w", err)
	}

	router := newRouter(rt, timetableSvc, metrics)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", rt.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", rt.cfg.Env),
			zap.String("seed_source", rt.cfg.Timetable.SeedSource),
			zap.String("session_store", rt.cfg.Sessions.Store),
			zap.String("placement", rt.cfg.Timetable.Placement),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(rt *runtime, timetableSvc *service.TimetableService, metrics *service.MetricsService) *gin.Engine {
	if rt.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(rt.logger))
	r.Use(corsmiddleware.New(rt.cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterOpsRoutes(r, handler.NewMetricsHandler(metrics, rt.readinessChecks()), metrics != nil)
	handler.RegisterTimetableRoutes(r.Group(rt.cfg.APIPrefix), handler.NewTimetableHandler(timetableSvc))

	if rt.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}
