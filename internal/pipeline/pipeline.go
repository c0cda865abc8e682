package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"market-narrator/internal/domain"
	"market-narrator/internal/extract"
	"market-narrator/internal/narrator"
	"market-narrator/internal/normalize"
	"market-narrator/internal/publish"
	"market-narrator/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type TickerSource interface {
	FetchTicker(ctx context.Context, pair domain.Pair) (*domain.TickerSnapshot, error)
}

type SentimentSource interface {
	FetchSamples(ctx context.Context, limit int) ([]domain.SentimentSample, error)
}

type HistorySource interface {
	FetchDailyBars(ctx context.Context, pair domain.Pair, days int) ([]domain.HistoricalBar, error)
}

type Narrator interface {
	Realtime(ctx context.Context, session *narrator.Session, pair domain.Pair, ticker domain.TickerSnapshot) (domain.NarrativeReport, error)
	Prediction(ctx context.Context, session *narrator.Session, in narrator.PredictionInput) (domain.NarrativeReport, error)
}

type Publisher interface {
	PublishSequence(ctx context.Context, messages []string) []publish.Result
	MaxLength() int
}

type Options struct {
	SentimentLimit int
	HistoryDays    int
}

type Request struct {
	Pair        domain.Pair `json:"pair"`
	TargetPrice string      `json:"targetPrice"`
	TargetDate  string      `json:"targetDate"`
	Publish     bool        `json:"publish"`
}

// Result carries every intermediate entity of one run.
type Result struct {
	Pair       domain.Pair              `json:"pair"`
	RawTicker  domain.TickerSnapshot    `json:"rawTicker"`
	Ticker     domain.TickerSnapshot    `json:"ticker"`
	Realtime   domain.NarrativeReport   `json:"realtime"`
	Figures    domain.RealtimeFigures   `json:"figures"`
	Sentiment  []domain.SentimentSample `json:"sentiment"`
	History    []domain.HistoricalBar   `json:"history"`
	Prediction domain.NarrativeReport   `json:"prediction"`
	Analysis   domain.ExtractedAnalysis `json:"analysis"`
	Messages   []string                 `json:"messages"`
	Published  []publish.Result         `json:"published,omitempty"`
	Duration   time.Duration            `json:"duration"`
}

// Runner executes the fetch, normalize, narrate, extract and publish steps
// strictly in sequence. The first failing step ends the run.
type Runner struct {
	tracer    trace.Tracer
	ticker    TickerSource
	sentiment SentimentSource
	history   HistorySource
	narrator  Narrator
	publisher Publisher
	opts      Options
}

func NewRunner(
	tracer trace.Tracer,
	ticker TickerSource,
	sentiment SentimentSource,
	history HistorySource,
	narr Narrator,
	publisher Publisher,
	opts Options,
) *Runner {
	if opts.SentimentLimit <= 0 {
		opts.SentimentLimit = 30
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 30
	}
	return &Runner{
		tracer:    tracer,
		ticker:    ticker,
		sentiment: sentiment,
		history:   history,
		narrator:  narr,
		publisher: publisher,
		opts:      opts,
	}
}

func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("symbol", req.Pair.Symbol()),
		attribute.Bool("publish", req.Publish),
	)

	res, err := r.run(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("pipeline run failed", zap.String("symbol", req.Pair.Symbol()), zap.Error(err))
		return res, err
	}
	return res, nil
}

func (r *Runner) run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res := &Result{Pair: req.Pair}
	session := narrator.NewSession()

	raw, err := r.ticker.FetchTicker(ctx, req.Pair)
	if err != nil {
		return nil, err
	}
	res.RawTicker = *raw

	normalized, err := r.normalize(ctx, *raw)
	if err != nil {
		return nil, err
	}
	res.Ticker = normalized

	res.Realtime, err = r.narrator.Realtime(ctx, session, req.Pair, normalized)
	if err != nil {
		return nil, err
	}
	res.Figures = r.extractRealtime(ctx, res.Realtime.Text)

	res.Sentiment, err = r.sentiment.FetchSamples(ctx, r.opts.SentimentLimit)
	if err != nil {
		return nil, err
	}
	res.History, err = r.history.FetchDailyBars(ctx, req.Pair, r.opts.HistoryDays)
	if err != nil {
		return nil, err
	}

	res.Prediction, err = r.narrator.Prediction(ctx, session, narrator.PredictionInput{
		Pair:        req.Pair,
		TargetPrice: req.TargetPrice,
		TargetDate:  req.TargetDate,
		Sentiment:   res.Sentiment,
		History:     res.History,
	})
	if err != nil {
		return nil, err
	}
	res.Analysis = r.extractAnalysis(ctx, req, res.Prediction.Text, res.Figures, normalized)

	res.Messages = publish.Compose(req.Pair, res.Analysis)
	if r.publisher != nil {
		res.Messages = publish.Fit(res.Messages, r.publisher.MaxLength())
	}

	if req.Publish {
		if r.publisher == nil {
			return res, fmt.Errorf("publish requested but no sink is configured")
		}
		res.Published = r.publisher.PublishSequence(ctx, res.Messages)
		for _, p := range res.Published {
			if p.Err != nil {
				res.Duration = time.Since(start)
				return res, fmt.Errorf("publish message %d: %w", p.Index, p.Err)
			}
		}
	}

	res.Duration = time.Since(start)
	logger.Info("pipeline run complete",
		zap.String("symbol", req.Pair.Symbol()),
		zap.Duration("duration", res.Duration),
		zap.Int("messages", len(res.Messages)),
		zap.Int("published", len(res.Published)),
	)
	return res, nil
}

func (r *Runner) normalize(ctx context.Context, raw domain.TickerSnapshot) (domain.TickerSnapshot, error) {
	_, span := r.tracer.Start(ctx, "pipeline.normalize")
	defer span.End()
	return normalize.Ticker(raw)
}

func (r *Runner) extractRealtime(ctx context.Context, text string) domain.RealtimeFigures {
	_, span := r.tracer.Start(ctx, "pipeline.extract-realtime")
	defer span.End()

	figures := extract.Realtime(text)
	span.SetAttributes(attribute.Int("missing", len(figures.Missing)))
	if len(figures.Missing) > 0 {
		logger.Warn("realtime report fields not found", zap.Strings("fields", figures.Missing))
	}
	return figures
}

// extractAnalysis parses the prediction report. Target range and date come
// from the request; the current price from the realtime report, or the
// normalized ticker when the report did not state it.
func (r *Runner) extractAnalysis(
	ctx context.Context,
	req Request,
	text string,
	figures domain.RealtimeFigures,
	ticker domain.TickerSnapshot,
) domain.ExtractedAnalysis {
	_, span := r.tracer.Start(ctx, "pipeline.extract-analysis")
	defer span.End()

	a := extract.Prediction(text)
	a.TargetRange = domain.Found(req.TargetPrice)
	a.TargetDate = domain.Found(req.TargetDate)
	a.CurrentPrice = domain.Found(figures.LastPrice.Or(ticker.LastPrice))

	span.SetAttributes(attribute.Int("missing", len(a.Missing)))
	if len(a.Missing) > 0 {
		logger.Warn("prediction report fields not found", zap.Strings("fields", a.Missing))
	}
	if a.SupportingFactors.Found && len(a.SupportingFactors.Items) == 0 {
		logger.Warn("supporting factors section has no numbered items")
	}
	if a.KeyRisks.Found && len(a.KeyRisks.Items) == 0 {
		logger.Warn("risk section has no numbered items")
	}
	return a
}

// CheckExchange verifies the exchange answers for pair and returns the last
// price formatted as US dollars.
func (r *Runner) CheckExchange(ctx context.Context, pair domain.Pair) (string, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.check-exchange")
	defer span.End()

	snap, err := r.ticker.FetchTicker(ctx, pair)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("exchange check: %w", err)
	}
	price, err := strconv.ParseFloat(snap.LastPrice, 64)
	if err != nil {
		return "", fmt.Errorf("exchange check: %w", &domain.ParseError{Field: "lastPrice", Value: snap.LastPrice, Err: err})
	}
	formatted := FormatUSD(price)
	logger.Info("exchange reachable", zap.String("symbol", pair.Symbol()), zap.String("price", formatted))
	return formatted, nil
}

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders v with thousands separators and two decimals, e.g.
// $97,000.10.
func FormatUSD(v float64) string {
	return usd.Sprintf("$%.2f", v)
}
