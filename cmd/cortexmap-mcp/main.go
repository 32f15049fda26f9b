package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	mcpadapter "cortexmap/internal/adapters/mcp"
	"cortexmap/internal/bootstrap"
	"cortexmap/internal/config"
	"cortexmap/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "path to a YAML config file")
	dbFlag := flag.String("db", "", "path to the database")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("cortexmap-mcp: %v", err)
	}
	cfg = cfg.WithDatabase(*dbFlag)

	// stdout carries the protocol, so the logger writes to stderr
	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("cortexmap-mcp: %v", err)
	}

	rt, err := bootstrap.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer rt.Close()

	mcpServer := server.NewMCPServer(
		"cortexmap-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, rt.Backend.Graph, rt.Versioner)
	mcpadapter.RegisterWriteTools(mcpServer, rt.Backend.Graph, rt.Versioner)

	logger.Info("serving tools on stdio", zap.String("database", cfg.Database))
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("stdio server stopped", zap.Error(err))
	}
}
