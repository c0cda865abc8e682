package job

import (
	"context"
	"fmt"
	"sync/atomic"

	"market-narrator/internal/domain"
	"market-narrator/internal/pipeline"
	"market-narrator/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	CheckExchange(ctx context.Context, pair domain.Pair) (string, error)
}

// AnalysisJob runs the pipeline on a cron schedule and publishes the
// resulting thread. A run still in progress when the next one is due
// causes that tick to be skipped.
type AnalysisJob struct {
	tracer   trace.Tracer
	runner   Runner
	schedule string
	request  pipeline.Request
	cron     *cron.Cron
	runs     atomic.Int64
}

func NewAnalysisJob(tracer trace.Tracer, runner Runner, schedule string, req pipeline.Request) *AnalysisJob {
	return &AnalysisJob{
		tracer:   tracer,
		runner:   runner,
		schedule: schedule,
		request:  req,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
}

// Start checks the exchange once, registers the schedule and blocks until
// ctx is cancelled. It returns an error only for an invalid schedule.
func (j *AnalysisJob) Start(ctx context.Context) error {
	if _, err := j.runner.CheckExchange(ctx, j.request.Pair); err != nil {
		logger.Warn("exchange check failed, scheduling anyway", zap.Error(err))
	}

	if _, err := j.cron.AddFunc(j.schedule, func() { j.runOnce(ctx) }); err != nil {
		return fmt.Errorf("register analysis schedule %q: %w", j.schedule, err)
	}
	j.cron.Start()
	logger.Info("analysis job started",
		zap.String("schedule", j.schedule),
		zap.String("symbol", j.request.Pair.Symbol()),
	)

	<-ctx.Done()
	<-j.cron.Stop().Done()
	logger.Info("analysis job stopped", zap.Int64("runs", j.runs.Load()))
	return nil
}

func (j *AnalysisJob) Runs() int64 {
	return j.runs.Load()
}

func (j *AnalysisJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "analysis-job.run-once")
	defer span.End()

	j.runs.Add(1)
	res, err := j.runner.Run(ctx, j.request)
	if err != nil {
		logger.Error("scheduled analysis failed", zap.Error(err))
		return
	}
	logger.Info("scheduled analysis complete",
		zap.String("symbol", res.Pair.Symbol()),
		zap.Int("published", len(res.Published)),
		zap.Duration("duration", res.Duration),
	)
}
