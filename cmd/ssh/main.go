package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"market-narrator/internal/app"
	"market-narrator/internal/cache"
	"market-narrator/internal/config"
	"market-narrator/internal/tui"
	"market-narrator/pkg/logger"
	"market-narrator/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	connectRedisFunc  = cache.Connect
	initTracerFunc    = tracing.InitTracer
	buildFunc         = app.Build
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	_ = loadEnvFunc()
	logger.Init()
	defer logger.Sync()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, "ssh")
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("error shutting down tracer provider", zap.Error(err))
		}
	}()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = connectRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Sessions only preview analyses, they never publish.
	cfg.PublishSink = config.SinkLog
	components, err := buildFunc(tracer, cfg, redisClient)
	if err != nil {
		logger.Fatal("failed to build components", zap.Error(err))
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)
	srv, err := newWishServerFunc(serverOptions(cfg, addr, components)...)
	if err != nil {
		logger.Fatal("failed to create SSH server", zap.Error(err))
	}

	if srv != nil {
		go func() {
			logger.Info("SSH server listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil {
				logger.Info("SSH server stopped", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down SSH server")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("SSH server shutdown error", zap.Error(err))
		}
	}

	logger.Info("SSH server exited")
}

func serverOptions(cfg *config.Config, addr string, components *app.Components) []ssh.Option {
	opts := []ssh.Option{
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
	}
	if cfg.SSHAuthorizedKeysPath != "" {
		opts = append(opts, wish.WithAuthorizedKeys(cfg.SSHAuthorizedKeysPath))
	} else {
		logger.Warn("SSH_AUTHORIZED_KEYS not set, accepting every client")
	}
	return append(opts, wish.WithMiddleware(
		bubbletea.Middleware(teaHandler(components)),
		logging.Middleware(),
	))
}

func teaHandler(components *app.Components) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		svc := tui.Services{
			Market:   components.Market,
			Request:  components.Defaults,
			Username: s.User(),
		}
		if components.Runner != nil {
			svc.Runner = components.Runner
		}

		model := tui.NewAppModel(svc)
		pty, _, _ := s.Pty()
		model.SetSize(pty.Window.Width, pty.Window.Height)

		return model, []tea.ProgramOption{tea.WithAltScreen()}
	}
}
