package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

// runProxyCommand implements "mcp-daktela proxy [-url URL]". It bridges a
// stdio-only MCP client to a remote streamable HTTP instance, attaching the
// caller's Daktela credentials to every forwarded request. This is how a
// desktop client with its own login talks to a shared server.
func runProxyCommand(args []string) {
	fs := flag.NewFlagSet("proxy", flag.ExitOnError)
	serverURL := fs.String("url", envOr("MCP_SERVER_URL", "http://localhost:8080/mcp"), "streamable HTTP endpoint of the remote server")
	_ = fs.Parse(args)

	logger := log.New(os.Stderr, "[mcp-daktela] ", log.LstdFlags)
	if err := runProxy(*serverURL, logger); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// credentialHeaders builds the per-request credential headers from the same
// environment variables the server itself reads, plus MCP_BEARER_TOKEN for
// tokens minted by the OAuth flow.
func credentialHeaders() http.Header {
	h := http.Header{}
	if tok := os.Getenv("MCP_BEARER_TOKEN"); tok != "" {
		h.Set("Authorization", "Bearer "+tok)
	}
	for env, header := range map[string]string{
		"DAKTELA_URL":          "X-Daktela-Url",
		"DAKTELA_USERNAME":     "X-Daktela-Username",
		"DAKTELA_PASSWORD":     "X-Daktela-Password",
		"DAKTELA_ACCESS_TOKEN": "X-Daktela-Access-Token",
	} {
		if v := os.Getenv(env); v != "" {
			h.Set(header, v)
		}
	}
	return h
}

// runProxy reads JSON-RPC lines from stdin and forwards them to the remote
// endpoint. Each proxy process gets its own MCP session.
func runProxy(endpoint string, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	p := &proxyBridge{
		client:   &http.Client{},
		endpoint: endpoint,
		creds:    credentialHeaders(),
		logger:   logger,
		stdout:   os.Stdout,
	}

	// The first message should be "initialize" which establishes the session.
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		if err := p.forward(ctx, line); err != nil {
			logger.Printf("Proxy forward error: %v", err)
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Printf("Proxy stdin read error: %v", err)
		return err
	}

	// Send DELETE to clean up the session
	p.closeSession(ctx)

	logger.Printf("Proxy: stdin closed, exiting")
	return nil
}

// proxyBridge handles the stdio-to-HTTP translation for a single MCP session.
type proxyBridge struct {
	client    *http.Client
	endpoint  string
	creds     http.Header
	logger    *log.Logger
	stdout    io.Writer
	writeMu   sync.Mutex
	sessionID string
	sseCancel context.CancelFunc
}

// forward sends a JSON-RPC message to the remote server and relays the
// response to stdout.
func (p *proxyBridge) forward(ctx context.Context, jsonRPC []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonRPC))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	p.applyHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("server request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("server rejected credentials (set DAKTELA_URL and DAKTELA_USERNAME/DAKTELA_PASSWORD or DAKTELA_ACCESS_TOKEN, or MCP_BEARER_TOKEN)")
	}

	// Capture session ID from the initialize response
	if sid := resp.Header.Get("Mcp-Session-Id"); sid != "" && p.sessionID == "" {
		p.sessionID = sid
		p.logger.Printf("Proxy: session established: %s", sid)
		// Start SSE notification listener now that we have a session
		p.startNotificationStream(ctx)
	}

	contentType := resp.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "text/event-stream"):
		return p.relaySSE(resp.Body)
	case strings.HasPrefix(contentType, "application/json"):
		return p.relayJSON(resp.Body)
	default:
		// Accepted response with no body (e.g. 202 for notifications)
		if resp.StatusCode == http.StatusAccepted {
			return nil
		}
		body, _ := io.ReadAll(resp.Body)
		if len(body) > 0 {
			return p.writeStdout(body)
		}
		return nil
	}
}

// applyHeaders attaches the session and credential headers. Credentials go on
// every request because the server resolves identity per tool call.
func (p *proxyBridge) applyHeaders(req *http.Request) {
	if p.sessionID != "" {
		req.Header.Set("Mcp-Session-Id", p.sessionID)
	}
	for k, vs := range p.creds {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
}

// relayJSON reads a single JSON response and writes it to stdout.
func (p *proxyBridge) relayJSON(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read json response: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	return p.writeStdout(data)
}

// relaySSE parses an SSE stream and writes each event's data as a JSON-RPC line to stdout.
func (p *proxyBridge) relaySSE(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			data := strings.TrimPrefix(line, "data: ")
			if len(data) > 0 {
				if err := p.writeStdout([]byte(data)); err != nil {
					return err
				}
			}
		}
	}
	return scanner.Err()
}

// startNotificationStream opens a GET SSE connection to receive server-pushed notifications.
func (p *proxyBridge) startNotificationStream(ctx context.Context) {
	if p.sessionID == "" {
		return
	}

	sseCtx, sseCancel := context.WithCancel(ctx)
	p.sseCancel = sseCancel

	go func() {
		defer sseCancel()

		req, err := http.NewRequestWithContext(sseCtx, http.MethodGet, p.endpoint, nil)
		if err != nil {
			p.logger.Printf("Proxy SSE: create request: %v", err)
			return
		}
		req.Header.Set("Accept", "text/event-stream")
		p.applyHeaders(req)

		resp, err := p.client.Do(req)
		if err != nil {
			if sseCtx.Err() != nil {
				return
			}
			p.logger.Printf("Proxy SSE: connect: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			p.logger.Printf("Proxy SSE: unexpected status %d", resp.StatusCode)
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if sseCtx.Err() != nil {
				return
			}
			line := scanner.Text()
			if strings.HasPrefix(line, "data: ") {
				data := strings.TrimPrefix(line, "data: ")
				if len(data) > 0 {
					if err := p.writeStdout([]byte(data)); err != nil {
						p.logger.Printf("Proxy SSE: write error: %v", err)
						return
					}
				}
			}
		}
	}()
}

// closeSession sends a DELETE request to terminate the MCP session.
func (p *proxyBridge) closeSession(ctx context.Context) {
	if p.sseCancel != nil {
		p.sseCancel()
	}
	if p.sessionID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.endpoint, nil)
	if err != nil {
		return
	}
	p.applyHeaders(req)
	resp, err := p.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// writeStdout writes a JSON-RPC line to stdout (thread-safe, newline-terminated).
func (p *proxyBridge) writeStdout(data []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if _, err := p.stdout.Write(data); err != nil {
		return err
	}
	_, err := p.stdout.Write([]byte("\n"))
	return err
}
