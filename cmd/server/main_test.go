package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"market-narrator/internal/app"
	"market-narrator/internal/bot"
	"market-narrator/internal/config"
	"market-narrator/internal/job"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps(&config.Config{HTTPPort: 8080, PublishSink: config.SinkLog})
	defer restore()

	runMain(t)
}

func TestMainStartsJobAndBot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps(&config.Config{
		HTTPPort:            8080,
		PublishSink:         config.SinkLog,
		OpenAIAPIKey:        "sk-test",
		AnalysisSchedule:    "0 0 * * * *",
		TelegramBotCommands: true,
		TelegramBotToken:    "123:abc",
		RedisURL:            "localhost:6379",
	})
	defer restore()

	var jobStarted, botStarted, redisDialed bool
	startJobFunc = func(*job.AnalysisJob, context.Context) { jobStarted = true }
	startTelegramBotFunc = func(token string, cmds *bot.Commands) { botStarted = token == "123:abc" && cmds != nil }
	connectRedisFunc = func(context.Context, string) (*redis.Client, error) {
		redisDialed = true
		return redis.NewClient(&redis.Options{Addr: "localhost:6379"}), nil
	}

	runMain(t)

	if !jobStarted || !botStarted || !redisDialed {
		t.Fatalf("expected job, bot and redis wiring: job=%v bot=%v redis=%v", jobStarted, botStarted, redisDialed)
	}
}

func runMain(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubServerDeps(cfg *config.Config) func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origConnectRedis := connectRedisFunc
	origInitTracer := initTracerFunc
	origBuild := buildFunc
	origStartJob := startJobFunc
	origStartTelegram := startTelegramBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config { return cfg }
	connectRedisFunc = func(context.Context, string) (*redis.Client, error) {
		return nil, context.DeadlineExceeded
	}
	initTracerFunc = func(ctx context.Context, component string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	buildFunc = app.Build
	startJobFunc = func(*job.AnalysisJob, context.Context) {}
	startTelegramBotFunc = func(string, *bot.Commands) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		connectRedisFunc = origConnectRedis
		initTracerFunc = origInitTracer
		buildFunc = origBuild
		startJobFunc = origStartJob
		startTelegramBotFunc = origStartTelegram
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}
