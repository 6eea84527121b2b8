package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agencydesk/internal/database"
	"agencydesk/internal/router"
	"agencydesk/internal/services"
	"agencydesk/pkg/jwt"
	"agencydesk/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			skipMigrate, _ := cmd.Flags().GetBool("skip-migrate")
			return serve(skipMigrate)
		},
	}
	cmd.Flags().Bool("skip-migrate", false, "do not run migrations and seed on startup")
	return cmd
}

func serve(skipMigrate bool) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer shutdown()

	appLogger := logger.GetLogger()
	appLogger.Info("Starting agency back office...")

	db := database.GetDB()
	bus := database.GetRedisBus()
	jwtManager := jwt.GetJWTManager()
	container := services.NewContainer(cfg, db, bus, jwtManager)

	if !skipMigrate {
		if err := database.Migrate(); err != nil {
			return err
		}
		if err := seedData(cfg, container); err != nil {
			return err
		}
	}

	gin.SetMode(cfg.Server.Mode)

	if cfg.Scheduler.Enabled {
		scheduler := container.Scheduler()
		if err := scheduler.Start(); err != nil {
			// 不影响主服务启动
			appLogger.Errorf("Failed to start maintenance scheduler: %v", err)
		} else {
			defer scheduler.Stop()
		}
	}

	r := router.SetupRouter(cfg, db, bus, jwtManager, container)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	appLogger.Infof("Server started on port %s", cfg.Server.Port)

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Errorf("Server forced to shutdown: %v", err)
	}
	appLogger.Info("Server exited")
	return nil
}
