package narrator

import (
	"context"
	"fmt"
	"time"

	"market-narrator/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type Config struct {
	Model                 string
	RealtimeTemperature   float64
	PredictionTemperature float64
	MaxTokens             int
	MaxHistory            int
}

type Narrator struct {
	tracer trace.Tracer
	llm    LLMClient
	cfg    Config
	now    func() time.Time
}

func New(tracer trace.Tracer, llm LLMClient, cfg Config) *Narrator {
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 20
	}
	cfg.RealtimeTemperature = max(cfg.RealtimeTemperature, 0)
	cfg.PredictionTemperature = max(cfg.PredictionTemperature, 0)
	return &Narrator{tracer: tracer, llm: llm, cfg: cfg, now: time.Now}
}

// PredictionInput is everything the prediction report is grounded on.
type PredictionInput struct {
	Pair        domain.Pair
	TargetPrice string
	TargetDate  string
	Sentiment   []domain.SentimentSample
	History     []domain.HistoricalBar
}

// Realtime asks the model to restate a normalized ticker in the realtime
// report template. The exchange is appended to session.
func (n *Narrator) Realtime(ctx context.Context, session *Session, pair domain.Pair, ticker domain.TickerSnapshot) (domain.NarrativeReport, error) {
	ctx, span := n.tracer.Start(ctx, "narrator.realtime")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", pair.Symbol()))

	user, err := RealtimeUserPrompt(pair, ticker)
	if err != nil {
		return domain.NarrativeReport{}, err
	}
	return n.narrate(ctx, domain.ReportRealtime, RealtimeSystemPrompt(pair), session, user, n.cfg.RealtimeTemperature)
}

// Prediction asks for a target-price assessment on top of the session's
// earlier turns.
func (n *Narrator) Prediction(ctx context.Context, session *Session, in PredictionInput) (domain.NarrativeReport, error) {
	ctx, span := n.tracer.Start(ctx, "narrator.prediction")
	defer span.End()
	span.SetAttributes(
		attribute.String("symbol", in.Pair.Symbol()),
		attribute.Int("sentiment_samples", len(in.Sentiment)),
		attribute.Int("history_bars", len(in.History)),
	)

	user, err := PredictionUserPrompt(in)
	if err != nil {
		return domain.NarrativeReport{}, err
	}
	return n.narrate(ctx, domain.ReportPrediction, PredictionSystemPrompt(in.Pair), session, user, n.cfg.PredictionTemperature)
}

func (n *Narrator) narrate(
	ctx context.Context,
	kind string,
	systemPrompt string,
	session *Session,
	userPrompt string,
	temperature float64,
) (domain.NarrativeReport, error) {
	if session == nil {
		session = NewSession()
	}
	messages := n.buildMessages(systemPrompt, session.Recent(n.cfg.MaxHistory), userPrompt)

	reply, err := n.callLLM(ctx, messages, temperature)
	if err != nil {
		return domain.NarrativeReport{}, fmt.Errorf("%s report: %w", kind, err)
	}

	session.Append(RoleUser, userPrompt)
	session.Append(RoleAssistant, reply)

	return domain.NarrativeReport{
		Kind:      kind,
		Text:      reply,
		Model:     n.cfg.Model,
		CreatedAt: n.now().UTC(),
	}, nil
}

func (n *Narrator) buildMessages(
	systemPrompt string,
	history []Turn,
	userPrompt string,
) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)

	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, turn := range history {
		switch turn.Role {
		case RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	return messages
}

func (n *Narrator) callLLM(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
	temperature float64,
) (string, error) {
	ctx, span := n.tracer.Start(ctx, "narrator.llm-call")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", n.cfg.Model),
		attribute.Int("llm.message_count", len(messages)),
		attribute.Float64("llm.temperature", temperature),
	)

	completion, err := n.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model:       n.cfg.Model,
		Messages:    messages,
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(int64(n.cfg.MaxTokens)),
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
