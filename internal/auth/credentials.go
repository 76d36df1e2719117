package auth

import "context"

// Credentials identify one Daktela instance plus a way to authenticate
// against it: either a ready access token or a username/password pair that
// the client logs in with on first use.
type Credentials struct {
	URL      string
	Token    string
	Username string
	Password string
}

// HasToken reports whether the credentials carry a ready access token
// (as opposed to a username/password pair).
func (c *Credentials) HasToken() bool {
	return c.Token != ""
}

type ctxKey int

const (
	credentialsKey ctxKey = iota
	headersKey
)

// WithCredentials installs resolved credentials into the context for the
// duration of one tool call. The override dies with the context, so no
// cleanup is needed on any exit path.
func WithCredentials(ctx context.Context, c *Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey, c)
}

// CredentialsFromContext returns the per-call credential override, if any.
func CredentialsFromContext(ctx context.Context) (*Credentials, bool) {
	c, ok := ctx.Value(credentialsKey).(*Credentials)
	return c, ok
}

// identityHeaders carries the raw identity-bearing headers of one HTTP
// request from the transport layer to the tool middleware.
type identityHeaders struct {
	authorization string
	url           string
	username      string
	password      string
	token         string
}

func withIdentityHeaders(ctx context.Context, h identityHeaders) context.Context {
	return context.WithValue(ctx, headersKey, h)
}

func identityHeadersFromContext(ctx context.Context) (identityHeaders, bool) {
	h, ok := ctx.Value(headersKey).(identityHeaders)
	return h, ok
}
