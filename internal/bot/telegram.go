package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market-narrator/internal/domain"
	"market-narrator/internal/pipeline"
	"market-narrator/internal/service"
	"market-narrator/pkg/logger"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type MarketReader interface {
	GetTicker(ctx context.Context, symbol string) (*service.TickerView, error)
	GetSentiment(ctx context.Context, limit int) ([]domain.SentimentSample, error)
}

type AnalysisRunner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Commands answers chat commands. The analysis runner is optional.
type Commands struct {
	market   MarketReader
	runner   AnalysisRunner
	defaults pipeline.Request
	timeout  time.Duration
}

func NewCommands(market MarketReader, runner AnalysisRunner, defaults pipeline.Request) *Commands {
	return &Commands{market: market, runner: runner, defaults: defaults, timeout: 2 * time.Minute}
}

func StartTelegramBot(token string, cmds *Commands) {
	if token == "" {
		logger.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		logger.Error("failed to create Telegram bot", zap.Error(err))
		return
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/price", func(c tele.Context) error {
		return c.Send(cmds.Price(context.Background(), c.Args()))
	})
	b.Handle("/fng", func(c tele.Context) error {
		return c.Send(cmds.FearGreed(context.Background()))
	})
	b.Handle("/analyze", func(c tele.Context) error {
		_ = c.Notify(tele.Typing)
		for _, msg := range cmds.Analyze(context.Background(), c.Args()) {
			if err := c.Send(msg); err != nil {
				return err
			}
		}
		return nil
	})

	logger.Info("Telegram bot started")
	go b.Start()
}

// Price renders the normalized ticker for the pair in args, or the default
// pair.
func (c *Commands) Price(ctx context.Context, args []string) string {
	symbol := c.defaults.Pair.Symbol()
	if len(args) > 0 {
		symbol = args[0]
	}
	view, err := c.market.GetTicker(ctx, symbol)
	if err != nil {
		return fmt.Sprintf("Error fetching ticker for %s: %v", strings.ToUpper(symbol), err)
	}
	t := view.Normalized
	return fmt.Sprintf(
		"%s (%s)\nPrice: $%s\n24h Change: %s%%\n24h High: $%s\n24h Low: $%s\nVolume: %s %s",
		view.Pair.Name(), view.Pair.Symbol(), t.LastPrice, t.PriceChangePercent,
		t.HighPrice, t.LowPrice, t.Volume, view.Pair.Base,
	)
}

func (c *Commands) FearGreed(ctx context.Context) string {
	samples, err := c.market.GetSentiment(ctx, 1)
	if err != nil {
		return fmt.Sprintf("Error fetching Fear & Greed index: %v", err)
	}
	if len(samples) == 0 {
		return "Fear & Greed index unavailable"
	}
	s := samples[0]
	return fmt.Sprintf("Fear & Greed: %d (%s)\n%s", s.Value, s.Classification, s.Timestamp.Format("2006-01-02"))
}

// Analyze runs the pipeline without publishing and returns the composed
// thread. Usage: /analyze [PAIR] [TARGET] [DATE...].
func (c *Commands) Analyze(ctx context.Context, args []string) []string {
	if c.runner == nil {
		return []string{"Analysis unavailable: OPENAI_API_KEY not configured"}
	}
	req := c.defaults
	req.Publish = false
	if len(args) > 0 {
		pair, err := service.ParseSymbol(args[0])
		if err != nil {
			return []string{fmt.Sprintf("Unknown pair %s: %v", args[0], err)}
		}
		req.Pair = pair
	}
	if len(args) > 1 {
		req.TargetPrice = args[1]
	}
	if len(args) > 2 {
		req.TargetDate = strings.Join(args[2:], " ")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.runner.Run(ctx, req)
	if err != nil {
		return []string{fmt.Sprintf("Analysis failed: %v", err)}
	}
	return res.Messages
}
