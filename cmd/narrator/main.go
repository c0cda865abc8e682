package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"market-narrator/internal/app"
	"market-narrator/internal/cache"
	"market-narrator/internal/config"
	"market-narrator/internal/domain"
	"market-narrator/internal/pipeline"
	"market-narrator/pkg/logger"
	"market-narrator/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	connectRedisFunc = cache.Connect
	initTracerFunc   = tracing.InitTracer
	buildFunc        = app.Build
	exitFunc         = os.Exit
)

var stdout io.Writer = os.Stdout

// runner is the part of *pipeline.Runner used by a one-shot run.
type runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	CheckExchange(ctx context.Context, pair domain.Pair) (string, error)
}

// newRunnerFunc returns the runner, the configured pair and a cleanup func.
var newRunnerFunc = func(ctx context.Context) (runner, domain.Pair, func(), error) {
	cfg := loadConfigFunc()

	tp, tracer, err := initTracerFunc(ctx, "narrator")
	if err != nil {
		return nil, domain.Pair{}, nil, fmt.Errorf("init tracer: %w", err)
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("error shutting down tracer provider", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.PublishSink == config.SinkRedis {
		redisClient, err = connectRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, domain.Pair{}, nil, err
		}
		shutdownTracer := cleanup
		cleanup = func() {
			_ = redisClient.Close()
			shutdownTracer()
		}
	}

	components, err := buildFunc(tracer, cfg, redisClient)
	if err != nil {
		cleanup()
		return nil, domain.Pair{}, nil, err
	}
	if components.Runner == nil {
		cleanup()
		return nil, domain.Pair{}, nil, errors.New("OPENAI_API_KEY is required")
	}
	return components.Runner, components.Defaults.Pair, cleanup, nil
}

func main() {
	_ = loadEnvFunc()
	logger.Init()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, "$97k-$100k", "31 de dezembro de 2024"); err != nil {
		logger.Error("analysis failed", zap.Error(err))
		exitFunc(1)
	}
}

func run(ctx context.Context, targetPrice, targetDate string) error {
	r, pair, cleanup, err := newRunnerFunc(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	req := pipeline.Request{Pair: pair, TargetPrice: targetPrice, TargetDate: targetDate, Publish: true}

	if _, err := r.CheckExchange(ctx, req.Pair); err != nil {
		logger.Warn("exchange check failed", zap.Error(err))
	}

	res, err := r.Run(ctx, req)
	if res != nil {
		printResult(stdout, res)
	}
	return err
}

func printResult(w io.Writer, res *pipeline.Result) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(w, "%s\n%s %s\n%s\n", rule, res.Pair.Name(), res.Pair.Symbol(), rule)
	fmt.Fprintf(w, "\nREALTIME REPORT\n%s\n", res.Realtime.Text)
	fmt.Fprintf(w, "\nPREDICTION REPORT\n%s\n", res.Prediction.Text)

	a := res.Analysis
	fmt.Fprintf(w, "\nEXTRACTED ANALYSIS\n")
	fmt.Fprintf(w, "Target:        %s by %s\n", a.TargetRange.Value, a.TargetDate.Value)
	fmt.Fprintf(w, "Current price: %s\n", a.CurrentPrice.Or("-"))
	fmt.Fprintf(w, "Confidence:    %s\n", a.Confidence.Or("-"))
	fmt.Fprintf(w, "Fear & Greed:  %s (%s)\n", a.SentimentValue.Or("-"), a.SentimentLabel.Or("-"))
	fmt.Fprintf(w, "Trend:         %s\n", a.Trend.Or("-"))
	if len(a.Missing) > 0 {
		fmt.Fprintf(w, "Missing:       %s\n", strings.Join(a.Missing, ", "))
	}

	fmt.Fprintf(w, "\nTHREAD\n")
	for i, msg := range res.Messages {
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(res.Messages), msg)
		if i < len(res.Published) {
			p := res.Published[i]
			switch {
			case p.OK():
				fmt.Fprintf(w, "  -> posted id=%s reply_to=%s\n", p.ID, p.ReplyTo)
			case p.Skipped():
				fmt.Fprintf(w, "  -> skipped\n")
			default:
				fmt.Fprintf(w, "  -> failed: %s\n", p.Error)
			}
		}
	}
	fmt.Fprintf(w, "\nCompleted in %s\n", res.Duration)
}
