// Package token signs and verifies the signed artifacts of the OAuth flow:
// authorization codes, access tokens, and refresh tokens. All state lives in
// the tokens themselves. Authorization codes carry the backend session and the
// PKCE binding, refresh tokens carry the credentials needed to log in again,
// so the server never stores anything.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type tags. Every token carries one so an authorization code can never
// be replayed as an access token and vice versa.
const (
	TypeAuthCode = "auth_code"
	TypeAccess   = "access_token"
	TypeRefresh  = "refresh_token"
)

const (
	// AuthCodeTTL bounds the window between authorize and token exchange.
	AuthCodeTTL = 5 * time.Minute
	// RefreshTTL is the rotated lifetime of refresh tokens.
	RefreshTTL = 30 * 24 * time.Hour
)

// AuthCodeClaims is the payload of an authorization code: the freshly created
// backend session, the credentials to recreate it later, and the PKCE
// challenge the token exchange must answer.
type AuthCodeClaims struct {
	Type               string `json:"type"`
	DaktelaURL         string `json:"daktela_url"`
	DaktelaAccessToken string `json:"daktela_access_token"`
	DaktelaAccessExp   int64  `json:"daktela_access_exp"`
	DaktelaUsername    string `json:"daktela_username"`
	DaktelaPassword    string `json:"daktela_password"`
	CodeChallenge      string `json:"code_challenge"`
	ClientID           string `json:"client_id"`
	RedirectURI        string `json:"redirect_uri"`
	jwt.RegisteredClaims
}

// AccessClaims is the payload of an access token. Its expiry mirrors the
// backend session expiry; it is never extended on its own.
type AccessClaims struct {
	Type               string `json:"type"`
	DaktelaURL         string `json:"daktela_url"`
	DaktelaAccessToken string `json:"daktela_access_token"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. Redeeming it performs a
// fresh backend login with the embedded credentials.
type RefreshClaims struct {
	Type            string `json:"type"`
	DaktelaURL      string `json:"daktela_url"`
	DaktelaUsername string `json:"daktela_username"`
	DaktelaPassword string `json:"daktela_password"`
	jwt.RegisteredClaims
}

// SignAuthCode stamps the type tag and the five minute exchange window onto
// c and signs it.
func SignAuthCode(secret string, c AuthCodeClaims) (string, error) {
	c.Type = TypeAuthCode
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(AuthCodeTTL))
	return sign(secret, c)
}

// SignAccess issues an access token bound to an existing backend session.
func SignAccess(secret, daktelaURL, daktelaToken string, expiry time.Time) (string, error) {
	c := AccessClaims{
		Type:               TypeAccess,
		DaktelaURL:         daktelaURL,
		DaktelaAccessToken: daktelaToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	return sign(secret, c)
}

// SignRefresh issues a refresh token with a fresh thirty day window.
func SignRefresh(secret, daktelaURL, username, password string) (string, error) {
	c := RefreshClaims{
		Type:            TypeRefresh,
		DaktelaURL:      daktelaURL,
		DaktelaUsername: username,
		DaktelaPassword: password,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(RefreshTTL)),
		},
	}
	return sign(secret, c)
}

// DecodeAuthCode verifies signature, expiry, and the type tag.
// Expired codes are reported via jwt.ErrTokenExpired in the error chain.
func DecodeAuthCode(secret, raw string) (*AuthCodeClaims, error) {
	var c AuthCodeClaims
	if err := decode(secret, raw, &c); err != nil {
		return nil, err
	}
	if c.Type != TypeAuthCode {
		return nil, typeMismatch(TypeAuthCode, c.Type)
	}
	return &c, nil
}

// DecodeAccess verifies signature, expiry, and the type tag.
func DecodeAccess(secret, raw string) (*AccessClaims, error) {
	var c AccessClaims
	if err := decode(secret, raw, &c); err != nil {
		return nil, err
	}
	if c.Type != TypeAccess {
		return nil, typeMismatch(TypeAccess, c.Type)
	}
	return &c, nil
}

// DecodeRefresh verifies signature, expiry, and the type tag.
func DecodeRefresh(secret, raw string) (*RefreshClaims, error) {
	var c RefreshClaims
	if err := decode(secret, raw, &c); err != nil {
		return nil, err
	}
	if c.Type != TypeRefresh {
		return nil, typeMismatch(TypeRefresh, c.Type)
	}
	return &c, nil
}

func typeMismatch(want, got string) error {
	return fmt.Errorf("expected token type %q, got %q", want, got)
}

func sign(secret string, claims jwt.Claims) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET environment variable is not set")
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func decode(secret, raw string, claims jwt.Claims) error {
	if secret == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return err
}
