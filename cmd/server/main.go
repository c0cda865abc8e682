package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-narrator/internal/app"
	"market-narrator/internal/bot"
	"market-narrator/internal/cache"
	"market-narrator/internal/config"
	"market-narrator/internal/handler"
	"market-narrator/internal/job"
	"market-narrator/pkg/logger"
	"market-narrator/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "market-narrator/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	connectRedisFunc       = cache.Connect
	initTracerFunc         = tracing.InitTracer
	buildFunc              = app.Build
	startJobFunc           = func(j *job.AnalysisJob, ctx context.Context) {
		go func() {
			if err := j.Start(ctx); err != nil {
				logger.Error("analysis job stopped", zap.Error(err))
			}
		}()
	}
	startTelegramBotFunc   = func(token string, cmds *bot.Commands) { go bot.StartTelegramBot(token, cmds) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Market Narrator API
// @version         1.0
// @description     Crypto market data, narrative analysis and extraction.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()
	logger.Init()
	defer logger.Sync()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, "server")
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Redis is optional for the API; without it the ticker cache is off.
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

	components, err := buildFunc(tracer, cfg, redisClient)
	if err != nil {
		logger.Fatal("failed to build components", zap.Error(err))
	}

	if cfg.AnalysisSchedule != "" && components.Runner != nil {
		req := components.Defaults
		req.Publish = true
		startJobFunc(job.NewAnalysisJob(tracer, components.Runner, cfg.AnalysisSchedule, req), ctx)
	}

	if cfg.TelegramBotCommands {
		var runner bot.AnalysisRunner
		if components.Runner != nil {
			runner = components.Runner
		}
		startTelegramBotFunc(cfg.TelegramBotToken, bot.NewCommands(components.Market, runner, components.Defaults))
	}

	h := handler.New(tracer, components.Market, handler.Defaults{
		Pair:        components.Defaults.Pair,
		TargetPrice: components.Defaults.TargetPrice,
		TargetDate:  components.Defaults.TargetDate,
		HistoryDays: cfg.HistoryDays,
	})
	if components.Runner != nil {
		h.SetAnalysisRunner(components.Runner)
	}

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
