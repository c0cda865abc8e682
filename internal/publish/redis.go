package publish

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// streamAdder is the part of the redis client the sink needs.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamSink appends each message to a stream. The parent entry id is
// stored alongside the text so consumers can rebuild the thread.
type RedisStreamSink struct {
	tracer trace.Tracer
	client streamAdder
	stream string
	maxLen int64
	now    func() time.Time
}

func NewRedisStreamSink(tracer trace.Tracer, client streamAdder, stream string, maxLen int64) *RedisStreamSink {
	if stream == "" {
		stream = "narrator:messages"
	}
	return &RedisStreamSink{tracer: tracer, client: client, stream: stream, maxLen: maxLen, now: time.Now}
}

func (s *RedisStreamSink) Name() string {
	return "redis"
}

func (s *RedisStreamSink) Post(ctx context.Context, text, replyTo string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "publish.redis")
	defer span.End()
	span.SetAttributes(attribute.String("stream", s.stream))

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"text":      text,
			"reply_to":  replyTo,
			"posted_at": strconv.FormatInt(s.now().UTC().Unix(), 10),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return id, nil
}
