package publish

import (
	"context"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
)

// LogSink writes messages to a logger instead of delivering them. Used for
// dry runs.
type LogSink struct {
	log *zap.Logger
	seq atomic.Int64
}

func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Post(_ context.Context, text, replyTo string) (string, error) {
	id := "log-" + strconv.FormatInt(s.seq.Add(1), 10)
	s.log.Info("message",
		zap.String("id", id),
		zap.String("reply_to", replyTo),
		zap.String("text", text),
	)
	return id, nil
}
