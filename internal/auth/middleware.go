package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/config"
	"github.com/daktela/mcp-daktela/internal/token"
)

// HeaderCapture copies the identity-bearing headers of an HTTP request into
// its context so the tool middleware can see them. The MCP transports derive
// each tool call's context from the HTTP request context, which makes the
// request context the per-call carrier. Mount this on the MCP endpoints only.
func HeaderCapture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := identityHeaders{
			authorization: r.Header.Get("Authorization"),
			url:           r.Header.Get("X-Daktela-Url"),
			username:      r.Header.Get("X-Daktela-Username"),
			password:      r.Header.Get("X-Daktela-Password"),
			token:         r.Header.Get("X-Daktela-Access-Token"),
		}
		next.ServeHTTP(w, r.WithContext(withIdentityHeaders(r.Context(), h)))
	})
}

// Middleware resolves the Daktela identity for each tool call and installs it
// into the call context. Resolution order:
//
//  1. Authorization: Bearer <jwt> (the OAuth flow). Decode failures fail the
//     call; they never fall back to another identity.
//  2. X-Daktela-Url plus either X-Daktela-Username/X-Daktela-Password or
//     X-Daktela-Access-Token (direct header auth). The URL is validated
//     before use.
//  3. No identity at all: the call runs on the process-wide static
//     configuration (stdio transport, trusted deployments).
//
// The installed credentials are scoped to the call context, so concurrent
// calls never see each other's identity and nothing survives the call.
func Middleware(rt *config.Runtime) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			h, ok := identityHeadersFromContext(ctx)
			if !ok {
				// stdio transport: no HTTP request behind this call.
				return next(ctx, req)
			}

			if strings.HasPrefix(h.authorization, "Bearer ") {
				creds, err := decodeBearer(rt, h.authorization)
				if err != nil {
					return nil, err
				}
				if creds != nil {
					return next(WithCredentials(ctx, creds), req)
				}
			}

			if h.url == "" && h.username == "" && h.password == "" && h.token == "" {
				return next(ctx, req)
			}

			if h.url == "" {
				return nil, errors.New("X-Daktela-Url header is required")
			}

			url, err := ValidateURL(h.url, rt.AllowedDomains())
			if err != nil {
				return nil, err
			}

			var creds *Credentials
			switch {
			case h.username != "" && h.password != "":
				creds = &Credentials{URL: url, Username: h.username, Password: h.password}
			case h.token != "":
				creds = &Credentials{URL: url, Token: h.token}
			default:
				return nil, errors.New("either X-Daktela-Username + X-Daktela-Password or X-Daktela-Access-Token header is required")
			}

			return next(WithCredentials(ctx, creds), req)
		}
	}
}

// decodeBearer turns a Bearer access token into credentials. A missing
// signing secret skips the bearer path entirely so explicit headers or static
// config can still apply; any decode failure propagates to the caller.
func decodeBearer(rt *config.Runtime, header string) (*Credentials, error) {
	secret, err := rt.JWTSecret()
	if err != nil {
		return nil, nil
	}

	claims, err := token.DecodeAccess(secret, strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, fmt.Errorf("invalid bearer token: %w", err)
	}
	if claims.DaktelaURL == "" || claims.DaktelaAccessToken == "" {
		return nil, errors.New("token missing required claims")
	}
	return &Credentials{URL: claims.DaktelaURL, Token: claims.DaktelaAccessToken}, nil
}
