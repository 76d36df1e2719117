package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const loginTimeout = 15 * time.Second

// LoginReason classifies a failed backend login.
type LoginReason int

const (
	// ReasonConnection means the instance could not be reached at all.
	ReasonConnection LoginReason = iota
	// ReasonCredentials means the instance rejected the username/password.
	ReasonCredentials
	// ReasonResponse means the instance answered with something that is not
	// a login result.
	ReasonResponse
)

// LoginError is a classified login failure. Its message is written for the
// person sitting in front of the login form, so handlers can surface it
// directly.
type LoginError struct {
	Reason  LoginReason
	Message string
}

func (e *LoginError) Error() string { return e.Message }

// session is the backend session created by a successful login.
type session struct {
	AccessToken string
	Expiry      time.Time
}

// daktelaLogin authenticates against a Daktela instance. Every failure comes
// back as a *LoginError; callers decide whether it lands on the login form or
// in an invalid_grant response.
func (h *Handlers) daktelaLogin(ctx context.Context, daktelaURL, username, password string) (*session, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, &LoginError{ReasonConnection, "Could not connect to Daktela instance"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, daktelaURL+"/api/v6/login.json", bytes.NewReader(body))
	if err != nil {
		return nil, &LoginError{ReasonConnection, "Could not connect to Daktela instance"}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &LoginError{ReasonConnection, "Could not connect to Daktela instance"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoginError{ReasonCredentials, "Invalid username or password"}
	}

	var parsed struct {
		Result struct {
			AccessToken               string `json:"accessToken"`
			AccessTokenExpirationDate string `json:"accessTokenExpirationDate"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || parsed.Result.AccessToken == "" {
		return nil, &LoginError{ReasonResponse, "Unexpected response from Daktela API"}
	}

	return &session{
		AccessToken: parsed.Result.AccessToken,
		Expiry:      sessionExpiry(parsed.Result.AccessTokenExpirationDate, h.rt.Location()),
	}, nil
}

// sessionExpiry parses the backend's naive "2006-01-02 15:04:05" expiry
// timestamp in the configured backend timezone. An unparseable value falls
// back to an hour from now; a session that outlives the guess simply gets
// refreshed early.
func sessionExpiry(s string, loc *time.Location) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, loc)
	if err != nil {
		return time.Now().Add(time.Hour)
	}
	return t
}
