package main

import (
	"claudecode-es/backend/app"
	"claudecode-es/backend/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	if err := app.MakeLogger(viper.GetString("app.log_level")); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, closeDeps, err := app.NewDeps(ctx)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer closeDeps()

	if config.ExportOnly() {
		key, n, err := d.Exporter.Export(ctx)
		if err != nil {
			zap.L().Fatal("Email export failed", zap.Error(err))
		}

		zap.L().Info("Email export uploaded", zap.String("key", key), zap.Int("count", n))
		return
	}

	if d.Exporter != nil {
		c, err := d.Exporter.Schedule(viper.GetString("export.schedule"))
		if err != nil {
			zap.L().Fatal("Failed to schedule email export", zap.Error(err))
		}
		defer c.Stop()
	}

	// Old logins are rarely useful, checking once an hour is plenty
	d.LoginHistory.StartCleanup(ctx, time.Hour, viper.GetDuration("history.retention"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler:           app.NewRouter(ctx, d, app.Options()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Graceful shutdown failed", zap.Error(err))
	}
}
