// Package oauth implements the stateless OAuth 2.0 authorization layer in
// front of the MCP endpoints:
//
//   - RFC 9728 protected resource metadata
//   - RFC 8414 authorization server metadata
//   - RFC 7591 dynamic client registration
//   - authorization endpoint with a credential form and PKCE (S256)
//   - token endpoint for the authorization_code and refresh_token grants
//
// Nothing is stored server side. Authorization codes, access tokens, and
// refresh tokens are signed JWTs carrying all of their own state, so any
// replica can serve any step of the flow.
package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daktela/mcp-daktela/internal/auth"
	"github.com/daktela/mcp-daktela/internal/config"
	"github.com/daktela/mcp-daktela/internal/token"
)

// Handlers serves the OAuth endpoints.
type Handlers struct {
	rt     *config.Runtime
	logger *log.Logger
	client *http.Client
}

// NewHandlers creates the OAuth endpoint handlers.
func NewHandlers(rt *config.Runtime, logger *log.Logger) *Handlers {
	return &Handlers{
		rt:     rt,
		logger: logger,
		client: &http.Client{Timeout: loginTimeout},
	}
}

// RegisterRoutes adds all OAuth routes to the given mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/.well-known/oauth-protected-resource", h.handleProtectedResourceMetadata)
	mux.HandleFunc("/.well-known/oauth-authorization-server", h.handleServerMetadata)
	mux.HandleFunc("/oauth/register", h.handleRegister)
	mux.HandleFunc("/oauth/authorize", h.handleAuthorize)
	mux.HandleFunc("/oauth/token", h.handleToken)
}

// serverURL derives the public server URL from forwarded headers, falling
// back to what the request itself says. Cloud proxies terminate TLS, so the
// forwarded values are the authoritative ones.
func serverURL(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return scheme + "://" + host
}

// handleProtectedResourceMetadata implements RFC 9728.
func (h *Handlers) handleProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	u := serverURL(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"resource":              u + "/",
		"authorization_servers": []string{u},
	})
}

// handleServerMetadata implements RFC 8414.
func (h *Handlers) handleServerMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	u := serverURL(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                u,
		"authorization_endpoint":                u + "/oauth/authorize",
		"token_endpoint":                        u + "/oauth/token",
		"registration_endpoint":                 u + "/oauth/register",
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code", "refresh_token"},
		"token_endpoint_auth_methods_supported": []string{"none"},
		"code_challenge_methods_supported":      []string{"S256"},
	})
}

// handleRegister implements RFC 7591 dynamic client registration. Clients
// register themselves as public clients; nothing is stored, the client simply
// gets an opaque id back along with its own redirect URIs.
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		RedirectURIs []string `json:"redirect_uris"`
		ClientName   string   `json:"client_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if len(req.RedirectURIs) == 0 {
		writeOAuthError(w, http.StatusBadRequest, "invalid_client_metadata", "redirect_uris required")
		return
	}

	clientID := randomToken(32)
	name := req.ClientName
	if name == "" {
		name = "MCP Client"
	}

	h.logger.Printf("OAuth: client registered: %s", name)

	writeJSON(w, http.StatusCreated, map[string]any{
		"client_id":                  clientID,
		"client_name":                name,
		"redirect_uris":              req.RedirectURIs,
		"grant_types":                []string{"authorization_code", "refresh_token"},
		"response_types":             []string{"code"},
		"token_endpoint_auth_method": "none",
	})
}

// handleAuthorize shows the credential form (GET) or processes it (POST).
func (h *Handlers) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.renderLogin(w, r, "", "", "")
	case http.MethodPost:
		h.processAuthorize(w, r)
	default:
		methodNotAllowed(w)
	}
}

// processAuthorize validates the submitted form, logs in to the Daktela
// instance, and on success redirects back to the client with a signed
// authorization code. Every failure lands back on the form with a message;
// the protocol client never sees an error redirect.
func (h *Handlers) processAuthorize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, "Invalid form submission", "", "")
		return
	}

	daktelaURL := strings.TrimSpace(r.PostFormValue("daktela_url"))
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	redirectURI := r.PostFormValue("redirect_uri")
	clientID := r.PostFormValue("client_id")
	codeChallenge := r.PostFormValue("code_challenge")
	codeChallengeMethod := r.PostFormValue("code_challenge_method")
	state := r.PostFormValue("state")
	if codeChallengeMethod == "" {
		codeChallengeMethod = "S256"
	}

	if redirectURI == "" {
		h.renderLogin(w, r, "Missing redirect_uri", daktelaURL, username)
		return
	}
	if codeChallengeMethod != "S256" {
		h.renderLogin(w, r, "Only S256 code challenge method is supported", daktelaURL, username)
		return
	}

	validated, err := auth.ValidateURL(daktelaURL, h.rt.AllowedDomains())
	if err != nil {
		h.renderLogin(w, r, err.Error(), daktelaURL, username)
		return
	}

	sess, err := h.daktelaLogin(r.Context(), validated, username, password)
	if err != nil {
		h.renderLogin(w, r, err.Error(), validated, username)
		return
	}

	secret, err := h.rt.JWTSecret()
	if err != nil {
		h.logger.Printf("authorize: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	code, err := token.SignAuthCode(secret, token.AuthCodeClaims{
		DaktelaURL:         validated,
		DaktelaAccessToken: sess.AccessToken,
		DaktelaAccessExp:   sess.Expiry.Unix(),
		DaktelaUsername:    username,
		DaktelaPassword:    password,
		CodeChallenge:      codeChallenge,
		ClientID:           clientID,
		RedirectURI:        redirectURI,
	})
	if err != nil {
		h.logger.Printf("authorize: sign code: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sep := "?"
	if strings.Contains(redirectURI, "?") {
		sep = "&"
	}
	location := redirectURI + sep + "code=" + url.QueryEscape(code)
	if state != "" {
		location += "&state=" + url.QueryEscape(state)
	}
	http.Redirect(w, r, location, http.StatusFound)
}

// handleToken implements the token endpoint.
func (h *Handlers) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	switch grant := r.PostFormValue("grant_type"); grant {
	case "authorization_code":
		h.exchangeAuthCode(w, r)
	case "refresh_token":
		h.refreshGrant(w, r)
	default:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Unsupported: "+grant)
	}
}

// exchangeAuthCode redeems an authorization code for a token pair after
// checking PKCE and the redirect_uri binding.
func (h *Handlers) exchangeAuthCode(w http.ResponseWriter, r *http.Request) {
	code := r.PostFormValue("code")
	verifier := r.PostFormValue("code_verifier")
	redirectURI := r.PostFormValue("redirect_uri")

	if code == "" || verifier == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "code and code_verifier required")
		return
	}

	secret, err := h.rt.JWTSecret()
	if err != nil {
		h.logger.Printf("token: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	claims, err := token.DecodeAuthCode(secret, code)
	if err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", err.Error())
		return
	}

	if pkceChallenge(verifier) != claims.CodeChallenge {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "PKCE verification failed")
		return
	}
	if redirectURI != "" && redirectURI != claims.RedirectURI {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "redirect_uri mismatch")
		return
	}

	h.writeTokenPair(w, secret, claims.DaktelaURL, claims.DaktelaAccessToken,
		time.Unix(claims.DaktelaAccessExp, 0), claims.DaktelaUsername, claims.DaktelaPassword)
}

// refreshGrant redeems a refresh token. Refreshing is a deliberate re-login
// with the embedded credentials: if the user's access was revoked on the
// instance, this is where it takes effect.
func (h *Handlers) refreshGrant(w http.ResponseWriter, r *http.Request) {
	raw := r.PostFormValue("refresh_token")
	if raw == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "refresh_token required")
		return
	}

	secret, err := h.rt.JWTSecret()
	if err != nil {
		h.logger.Printf("token: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	claims, err := token.DecodeRefresh(secret, raw)
	if err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", err.Error())
		return
	}

	sess, err := h.daktelaLogin(r.Context(), claims.DaktelaURL, claims.DaktelaUsername, claims.DaktelaPassword)
	if err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", err.Error())
		return
	}

	h.writeTokenPair(w, secret, claims.DaktelaURL, sess.AccessToken, sess.Expiry,
		claims.DaktelaUsername, claims.DaktelaPassword)
}

// writeTokenPair issues the access + refresh token response. The access token
// expiry mirrors the backend session; expires_in reports whatever actually
// remains of it, floored at zero. The refresh window restarts on every issue.
func (h *Handlers) writeTokenPair(w http.ResponseWriter, secret, daktelaURL, sessionToken string, expiry time.Time, username, password string) {
	access, err := token.SignAccess(secret, daktelaURL, sessionToken, expiry)
	if err != nil {
		h.logger.Printf("token: sign access: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	refresh, err := token.SignRefresh(secret, daktelaURL, username, password)
	if err != nil {
		h.logger.Printf("token: sign refresh: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	expiresIn := int64(time.Until(expiry).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"token_type":    "Bearer",
		"expires_in":    expiresIn,
		"refresh_token": refresh,
	})
}

// pkceChallenge computes the S256 challenge for a code verifier
// (RFC 7636: base64url of the SHA-256 digest, unpadded).
func pkceChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// randomToken returns n random bytes, base64url encoded without padding.
func randomToken(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" {
		body["error_description"] = description
	}
	writeJSON(w, status, body)
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
}
