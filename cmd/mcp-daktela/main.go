// MCP Daktela Server
// Stdio for local clients, streamable HTTP + SSE for remote connectors.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/auth"
	"github.com/daktela/mcp-daktela/internal/config"
	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/oauth"
	"github.com/daktela/mcp-daktela/internal/tools"
)

// Version is set by -ldflags at build time.
var Version = "dev"

func main() {
	// Handle CLI subcommands before starting the MCP server.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "proxy":
			runProxyCommand(os.Args[2:])
			return
		case "--version", "-v", "version":
			fmt.Println("mcp-daktela " + Version)
			return
		}
	}

	configPath := flag.String("config", os.Getenv("MCP_CONFIG"), "path to YAML config file")
	flag.Parse()

	// Load config
	tmpLogger := log.New(os.Stderr, "[mcp-daktela] ", log.LstdFlags|log.Lshortfile)
	cfg := loadConfig(*configPath, tmpLogger)
	rt := config.NewRuntime(cfg)

	// Set up logging
	logger, logWriter := setupLogger(rt.LogFile())
	logger.Println("Starting MCP Daktela server...")
	logger.Printf("Transport: %s", rt.Transport())
	if d := rt.Daktela(); d.URL != "" {
		logger.Printf("Default Daktela instance: %s", d.URL)
	}

	cache := buildCache(rt, logger)
	svc := daktela.NewService(rt, cache)

	// Tool calls are logged as JSON lines so the log file can be queried
	// with jq when chasing a misbehaving session.
	toolLogger := slog.New(slog.NewJSONHandler(logWriter, nil))

	hooks := &server.Hooks{}
	hooks.AddBeforeInitialize(func(ctx context.Context, id any, message *mcp.InitializeRequest) {
		if message != nil {
			ci := message.Params.ClientInfo
			logger.Printf("Client connecting: %s %s", ci.Name, ci.Version)
		}
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Printf("Client session unregistered: %s", session.SessionID())
	})

	mcpServer := server.NewMCPServer(
		"Daktela",
		Version,
		server.WithInstructions(tools.InstructionsText()),
		// Auth runs outside logging so rejected calls never reach the tool log.
		server.WithToolHandlerMiddleware(func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
			return auth.Middleware(rt)(tools.LoggingMiddleware(toolLogger)(next))
		}),
		server.WithHooks(hooks),
	)
	tools.Register(mcpServer, svc)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ignore SIGHUP so the server keeps running when daemonized (nohup, systemd, etc.)
	signal.Ignore(syscall.SIGHUP)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Pick up edits to the config file without a restart.
	if *configPath != "" {
		go rt.Watch(ctx, *configPath, logger)
	}

	switch rt.Transport() {
	case "http", "streamable-http":
		runHTTP(ctx, mcpServer, rt, logger)
	default:
		logger.Println("Stdio ready")
		stdioSrv := server.NewStdioServer(mcpServer)
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
			logger.Printf("Stdio server stopped: %v", err)
		}
	}

	logger.Println("Server stopped")
}

// runHTTP serves the MCP endpoints over streamable HTTP and SSE, plus the
// OAuth discovery and authorization routes that let a connector mint a bearer
// token. Blocks until ctx is cancelled. Uses net.Listen to support port 0
// (auto-assign) for running multiple instances.
func runHTTP(ctx context.Context, mcpServer *server.MCPServer, rt *config.Runtime, logger *log.Logger) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", rt.HTTPPort()))
	if err != nil {
		logger.Fatalf("HTTP listen: %v", err)
	}
	actualPort := ln.Addr().(*net.TCPAddr).Port
	baseURL := fmt.Sprintf("http://localhost:%d", actualPort)

	sseSrv := server.NewSSEServer(mcpServer, server.WithBaseURL(baseURL))
	streamSrv := server.NewStreamableHTTPServer(mcpServer)

	// Per-request credentials ride in on the MCP endpoints. HeaderCapture
	// copies them into the request context for the tool middleware; Gate
	// answers 401 on the entry endpoints when a request carries nothing,
	// which is what starts a connector's OAuth flow.
	mux := http.NewServeMux()
	mux.Handle("/mcp", oauth.Gate(auth.HeaderCapture(streamSrv)))
	mux.Handle("/sse", oauth.Gate(auth.HeaderCapture(sseSrv)))
	mux.Handle("/sse/", oauth.Gate(auth.HeaderCapture(sseSrv)))
	mux.Handle("/message", auth.HeaderCapture(sseSrv))
	oauth.NewHandlers(rt, logger).RegisterRoutes(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, Version)
	})
	mux.HandleFunc("/logo.png", serveLogo)

	httpServer := &http.Server{Handler: mux}

	logger.Printf("HTTP server on :%d", actualPort)
	logger.Printf("  MCP endpoint:  %s/mcp", baseURL)
	logger.Printf("  SSE endpoint:  %s/sse", baseURL)

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
	}()

	if err := httpServer.Serve(ln); err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}
}

// serveLogo serves the connector icon some clients show next to the server
// name. 404 when no logo file ships with the deployment.
func serveLogo(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join("static", "logo.png"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}

// buildCache wires the reference-data cache, or returns nil when disabled.
// A nil cache is safe: the service treats every lookup as a miss.
func buildCache(rt *config.Runtime, logger *log.Logger) *daktela.Cache {
	if !rt.CacheEnabled() {
		return nil
	}

	var store daktela.Store
	backend := "memory"
	if rt.CacheBackend() == "valkey" && rt.ValkeyURL() != "" {
		s, err := daktela.NewValkeyStore(rt.ValkeyURL())
		if err != nil {
			logger.Printf("Warning: valkey cache unavailable: %v, falling back to memory", err)
		} else {
			store = s
			backend = "valkey"
		}
	}
	if store == nil {
		s, err := daktela.NewMemoryStore()
		if err != nil {
			logger.Printf("Warning: cache init failed: %v (caching disabled)", err)
			return nil
		}
		store = s
	}

	logger.Printf("Cache enabled (backend=%s, ttl=%s)", backend, rt.CacheTTL())
	return daktela.NewCache(store, rt.CacheTTL(), logger)
}

// setupLogger creates a logger that writes to a log file and optionally stderr.
// When stderr is a terminal (interactive use), logs go to both stderr and the file.
// When stderr is redirected (daemon mode via nohup), logs go only to the file
// to avoid duplicate lines since nohup already redirects stderr to the log file.
// The writer is returned as well so the tool-call logger shares the same sink.
func setupLogger(logFilePath string) (*log.Logger, io.Writer) {
	var writers []io.Writer

	// Only include stderr when it's an interactive terminal (not redirected).
	// This prevents duplicate log lines when running as a daemon with nohup >> log 2>&1.
	stderrIsTerminal := false
	if info, err := os.Stderr.Stat(); err == nil {
		stderrIsTerminal = (info.Mode() & os.ModeCharDevice) != 0
	}

	hasLogFile := false
	lower := strings.ToLower(logFilePath)
	if lower != "none" && lower != "off" && logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err == nil {
			f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				writers = append(writers, f)
				hasLogFile = true
			} else {
				fmt.Fprintf(os.Stderr, "[mcp-daktela] Warning: cannot open log file %s: %v\n", logFilePath, err)
			}
		} else {
			fmt.Fprintf(os.Stderr, "[mcp-daktela] Warning: cannot create log dir %s: %v\n", filepath.Dir(logFilePath), err)
		}
	}

	// Add stderr if it's a terminal, or if there's no log file (always need at least one output).
	if stderrIsTerminal || !hasLogFile {
		writers = append(writers, os.Stderr)
	}

	w := io.MultiWriter(writers...)
	return log.New(w, "[mcp-daktela] ", log.LstdFlags|log.Lshortfile), w
}

// loadConfig loads configuration from the given path (or defaults when the
// path is empty or unreadable), then applies environment overrides on top.
func loadConfig(path string, logger *log.Logger) *config.Config {
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			logger.Printf("Warning: failed to load config %s: %v, using defaults", path, err)
		} else {
			cfg = loaded
		}
	}
	cfg.ApplyEnv()
	return cfg
}
