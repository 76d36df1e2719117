package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/config"
	"github.com/daktela/mcp-daktela/internal/daktela"
)

// listFunc produces one page for a list endpoint.
type listFunc func(q url.Values) ([]map[string]any, int)

// fakeDaktela serves a minimal slice of the REST API. Tests register canned
// list pages and records; every request's query is captured for assertions.
type fakeDaktela struct {
	mu      sync.Mutex
	lists   map[string]listFunc
	records map[string]map[string]any
	queries map[string][]url.Values
}

func newFakeDaktela() *fakeDaktela {
	return &fakeDaktela{
		lists:   make(map[string]listFunc),
		records: make(map[string]map[string]any),
		queries: make(map[string][]url.Values),
	}
}

// static registers a fixed page for a list endpoint.
func (f *fakeDaktela) static(endpoint string, data []map[string]any, total int) {
	f.lists[endpoint] = func(url.Values) ([]map[string]any, int) { return data, total }
}

// record registers a single record for get requests.
func (f *fakeDaktela) record(endpoint, name string, rec map[string]any) {
	f.records[endpoint+"/"+name] = rec
}

// listQueries returns the queries a list endpoint has seen.
func (f *fakeDaktela) listQueries(endpoint string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[endpoint]
}

func (f *fakeDaktela) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v6/"), ".json")
		if endpoint, name, ok := strings.Cut(path, "/"); ok {
			f.mu.Lock()
			rec, found := f.records[endpoint+"/"+name]
			f.mu.Unlock()
			if !found {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"result": rec})
			return
		}

		f.mu.Lock()
		fn := f.lists[path]
		f.queries[path] = append(f.queries[path], r.URL.Query())
		f.mu.Unlock()
		if fn == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		data, total := fn(r.URL.Query())
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"data": data, "total": total},
		})
	})
}

// testServer starts the fake API and returns a MCPServer with all tools
// registered against it, using a static token so no login round-trip runs.
func testServer(t *testing.T, fake *fakeDaktela) *server.MCPServer {
	t.Helper()
	backend := httptest.NewServer(fake.handler())
	t.Cleanup(backend.Close)

	cfg := config.DefaultConfig()
	cfg.Daktela.URL = backend.URL
	cfg.Daktela.AccessToken = "test-token"
	svc := daktela.NewService(config.NewRuntime(cfg), nil)

	s := server.NewMCPServer("test", "1.0.0")
	Register(s, svc)
	return s
}

// callTool calls a registered tool via the MCPServer's HandleMessage.
// Returns the parsed CallToolResult or an error.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) (*mcp.CallToolResult, error) {
	t.Helper()

	reqJSON, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	respJSON := s.HandleMessage(context.Background(), reqJSON)

	respBytes, marshalErr := json.Marshal(respJSON)
	if marshalErr != nil {
		t.Fatalf("marshal response: %v", marshalErr)
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	var result mcp.CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}

	return &result, nil
}

// resultText extracts the first text content from a CallToolResult.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("result is nil")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content in result")
	return ""
}

// filterParams decodes the bracket-notation filters of one captured query
// into "field operator value" strings.
func filterParams(q url.Values) []string {
	var out []string
	for i := 0; ; i++ {
		field := q.Get(fmt.Sprintf("filter[%d][field]", i))
		if field == "" {
			break
		}
		op := q.Get(fmt.Sprintf("filter[%d][operator]", i))
		value := q.Get(fmt.Sprintf("filter[%d][value]", i))
		if value == "" {
			value = q.Get(fmt.Sprintf("filter[%d][value][0]", i))
		}
		out = append(out, field+" "+op+" "+value)
	}
	return out
}

func hasFilter(q url.Values, want string) bool {
	for _, f := range filterParams(q) {
		if f == want {
			return true
		}
	}
	return false
}
