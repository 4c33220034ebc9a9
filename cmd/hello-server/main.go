// Command hello-server is a minimal MCP server exposing a single say_hello
// tool over stdio. It doubles as the reference wiring for the library: config
// file, stderr logging, optional metrics listener, graceful shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/toolstream/mcp-core/pkg/config"
	"github.com/toolstream/mcp-core/pkg/logging"
	"github.com/toolstream/mcp-core/pkg/metrics"
	"github.com/toolstream/mcp-core/pkg/models"
	"github.com/toolstream/mcp-core/pkg/schema"
	"github.com/toolstream/mcp-core/pkg/server"
	"github.com/toolstream/mcp-core/pkg/server/core"
	"github.com/toolstream/mcp-core/pkg/transport"
)

func registerTools(mcpServer *core.Server) error {
	tool := models.Tool{
		Name:        "say_hello",
		Description: "Greets the caller by name",
		InputSchema: schema.Object(map[string]*schema.Schema{
			"name": {Type: "string", Description: "Name of the person to greet"},
		}, "name"),
	}

	return mcpServer.RegisterTool(tool, func(ctx context.Context, args map[string]interface{}) (*models.CallToolResult, error) {
		name, _ := args["name"].(string)
		return &models.CallToolResult{
			Content: []models.Content{
				models.NewTextContent(fmt.Sprintf("Hello, %s! This is your MCP server speaking.", name)),
			},
		}, nil
	})
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the server config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := logging.NewStdLogger(logging.ParseLevel(cfg.LogLevel))

	mcpServer := core.NewServer(models.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, logger)

	if err := registerTools(mcpServer); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MetricsAddr != "" {
		metricsServer := metrics.NewServer(cfg.MetricsAddr, logger)
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	// Stdout belongs to the protocol; everything else goes to stderr.
	stdioServer := server.NewServer(mcpServer,
		transport.NewStreamTransport(os.Stdin, os.Stdout),
		&server.ServerConfig{
			DefaultTimeout: cfg.RequestTimeout.Std(),
			MaxConcurrency: cfg.MaxConcurrency,
			Logger:         logger,
		})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("starting server", "name", cfg.Name, "version", cfg.Version)
		serverDone <- stdioServer.Start()
	}()

	select {
	case err := <-serverDone:
		return err
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig)
		return stdioServer.Stop()
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hello-server: %v\n", err)
		os.Exit(1)
	}
}
