package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flaco/hooked/internal/auth"
	"github.com/flaco/hooked/internal/auth/captcha"
	"github.com/flaco/hooked/internal/auth/jwt"
	"github.com/flaco/hooked/internal/cache/redis"
	"github.com/flaco/hooked/internal/config"
	"github.com/flaco/hooked/internal/ctrl"
	"github.com/flaco/hooked/internal/hdl/http"
	"github.com/flaco/hooked/internal/observability/metrics/prometheus"
	"github.com/flaco/hooked/internal/observability/tracing/jaeger"
	"github.com/flaco/hooked/internal/repo/db"
	"github.com/flaco/hooked/internal/repo/s3"
	"github.com/flaco/hooked/internal/smtp"
	"go.uber.org/zap"
)

const configPath = ".env"

func mustRegisterLogger(mode string) {
	switch mode {
	case "prod":
		zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
	case "dev":
		zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))
	}
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			zap.L().Panic("panic occurred", zap.Any("error", err))
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf := config.MustLoad(configPath)
	mustRegisterLogger(conf.Server.Mode)

	go prometheus.New(conf.Server.Port + 5).Start(ctx)
	go jaeger.Start(ctx, conf.ServiceName, conf.Jaeger)

	cache := redis.New(conf.Redis)
	repo := db.New(conf)
	storage := s3.New(conf)
	email := smtp.New(conf)

	au := jwt.New(conf)
	pw := auth.New()
	cap := captcha.New(conf)

	svc := ctrl.New(au, pw, repo, cache, storage, email, conf)
	go svc.StartTokenSweeper(ctx)

	h := http.New(au, cap, svc)

	zap.L().Info(
		fmt.Sprintf(
			"Starting server on %v://%v:%v",
			conf.Server.Scheme,
			conf.Server.Domain,
			conf.Server.Port,
		),
	)
	go h.Start(conf.Server.Port)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-c
	cancel()

	zap.L().Info("Shutting down gracefully...")

	sCtx, sCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer sCancel()

	if err := h.Close(sCtx); err != nil {
		zap.L().Warn("Error closing handler", zap.Error(err))
	}

	if err := cache.Close(); err != nil {
		zap.L().Warn("Failed to close connection to Redis: ", zap.Error(err))
	}

	if err := repo.Close(sCtx); err != nil {
		zap.L().Warn("Error closing repository", zap.Error(err))
	}

	os.Exit(0)
}
