package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-narrator/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Sink delivers one message. replyTo is the id of the parent message, empty
// for the head of a thread. The returned id threads the next message.
type Sink interface {
	Name() string
	Post(ctx context.Context, text, replyTo string) (string, error)
}

var (
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	ErrSkipped        = errors.New("skipped after earlier failure")
)

// Result is the outcome of one message of a sequence.
type Result struct {
	Index    int       `json:"index"`
	Text     string    `json:"text"`
	ID       string    `json:"id,omitempty"`
	ReplyTo  string    `json:"replyTo,omitempty"`
	PostedAt time.Time `json:"postedAt,omitzero"`
	Err      error     `json:"-"`
	Error    string    `json:"error,omitempty"`
}

func (r Result) OK() bool {
	return r.Err == nil
}

func (r Result) Skipped() bool {
	return errors.Is(r.Err, ErrSkipped)
}

type Publisher struct {
	tracer    trace.Tracer
	sink      Sink
	gate      *Gate
	maxLength int
}

func NewPublisher(tracer trace.Tracer, sink Sink, gate *Gate, maxLength int) *Publisher {
	if gate == nil {
		gate = NewGate(0)
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Publisher{tracer: tracer, sink: sink, gate: gate, maxLength: maxLength}
}

func (p *Publisher) MaxLength() int {
	return p.maxLength
}

// PublishSequence posts messages in order as a reply chain. Messages over
// the length cap are rejected before anything is sent, leaving the rest
// skipped. A delivery failure stops the chain and the remaining messages
// are marked skipped.
func (p *Publisher) PublishSequence(ctx context.Context, messages []string) []Result {
	ctx, span := p.tracer.Start(ctx, "publish.sequence")
	defer span.End()
	span.SetAttributes(
		attribute.String("sink", p.sink.Name()),
		attribute.Int("messages", len(messages)),
	)

	results := make([]Result, len(messages))
	for i, text := range messages {
		results[i] = Result{Index: i, Text: text}
	}

	rejected := false
	for i := range results {
		if n := Length(results[i].Text); n > p.maxLength {
			results[i].Err = fmt.Errorf("message %d has %d characters, cap is %d: %w", i, n, p.maxLength, ErrMessageTooLong)
			rejected = true
		}
	}
	if rejected {
		markSkipped(results, 0)
		span.SetAttributes(attribute.Bool("rejected", true))
		logger.Warn("publish sequence rejected", zap.String("sink", p.sink.Name()), zap.Int("max_length", p.maxLength))
		return finish(results)
	}

	parent := ""
	for i := range results {
		if err := p.gate.Wait(ctx); err != nil {
			results[i].Err = fmt.Errorf("pacing wait: %w", err)
			markSkipped(results, i+1)
			break
		}

		id, err := p.post(ctx, results[i].Text, parent)
		results[i].ReplyTo = parent
		if err != nil {
			span.RecordError(err)
			results[i].Err = err
			logger.Error("publish failed",
				zap.String("sink", p.sink.Name()),
				zap.Int("index", i),
				zap.Error(err),
			)
			markSkipped(results, i+1)
			break
		}
		results[i].ID = id
		results[i].PostedAt = time.Now().UTC()
		parent = id
		logger.Debug("message published", zap.String("sink", p.sink.Name()), zap.Int("index", i), zap.String("id", id))
	}
	return finish(results)
}

func (p *Publisher) post(ctx context.Context, text, replyTo string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "publish.post")
	defer span.End()
	span.SetAttributes(attribute.String("reply_to", replyTo), attribute.Int("length", Length(text)))

	id, err := p.sink.Post(ctx, text, replyTo)
	if err != nil {
		return "", fmt.Errorf("post to %s: %w", p.sink.Name(), err)
	}
	return id, nil
}

func markSkipped(results []Result, from int) {
	for i := from; i < len(results); i++ {
		if results[i].Err == nil {
			results[i].Err = ErrSkipped
		}
	}
}

func finish(results []Result) []Result {
	for i := range results {
		if results[i].Err != nil {
			results[i].Error = results[i].Err.Error()
		}
	}
	return results
}
