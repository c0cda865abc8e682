package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-narrator/internal/app"
	"market-narrator/internal/config"
	"market-narrator/internal/mcptools"
	"market-narrator/pkg/logger"
	"market-narrator/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initTracerFunc = tracing.InitTracer
	buildFunc      = app.Build
	exitFunc       = os.Exit
	runStdioFunc   = func(ctx context.Context, server *mcp.Server) error {
		return server.Run(ctx, &mcp.StdioTransport{})
	}
	listenAndServeFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	_ = loadEnvFunc()
	logger.Init()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Error("mcp server failed", zap.Error(err))
		exitFunc(1)
	}
}

func run(ctx context.Context) error {
	cfg := loadConfigFunc()

	tp, tracer, err := initTracerFunc(ctx, "mcp")
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Tools only read market data, so publishing always goes to the log sink.
	cfg.PublishSink = config.SinkLog
	components, err := buildFunc(tracer, cfg, nil)
	if err != nil {
		return err
	}
	server := mcptools.NewServer(components.Market, tracing.ServiceVersion)

	switch cfg.MCPTransport {
	case "http":
		return serveHTTP(ctx, server, fmt.Sprintf("%s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort))
	default:
		logger.Info("MCP server running on stdio")
		if err := runStdioFunc(ctx, server); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

func serveHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("MCP server listening", zap.String("addr", addr))
		errCh <- listenAndServeFunc(srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
