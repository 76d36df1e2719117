package oauth

import (
	"html/template"
	"net/http"
)

// The credential form shown by the authorize endpoint. The OAuth round-trip
// parameters ride along as hidden fields; the form posts back to the same URL
// so the query string survives re-renders.
const loginHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Connect Daktela to Claude</title>
<style>
  * { box-sizing: border-box; margin: 0; padding: 0; }
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
         background: #f5f5f5; display: flex; justify-content: center; align-items: center;
         min-height: 100vh; padding: 20px; }
  .card { background: white; border-radius: 12px; box-shadow: 0 2px 12px rgba(0,0,0,0.1);
          padding: 40px; max-width: 420px; width: 100%; }
  h1 { font-size: 1.4em; margin-bottom: 8px; color: #1a1a1a; }
  .subtitle { color: #666; margin-bottom: 24px; font-size: 0.9em; }
  label { display: block; font-weight: 500; margin-bottom: 4px; color: #333; font-size: 0.9em; }
  input { width: 100%; padding: 10px 12px; border: 1px solid #ddd; border-radius: 8px;
          font-size: 1em; margin-bottom: 16px; }
  input:focus { outline: none; border-color: #7c3aed; box-shadow: 0 0 0 3px rgba(124,58,237,0.1); }
  button { width: 100%; padding: 12px; background: #7c3aed; color: white; border: none;
           border-radius: 8px; font-size: 1em; font-weight: 500; cursor: pointer; }
  button:hover { background: #6d28d9; }
  .error { background: #fef2f2; border: 1px solid #fecaca; color: #dc2626; padding: 10px 12px;
           border-radius: 8px; margin-bottom: 16px; font-size: 0.9em; }
  .hint { color: #888; font-size: 0.8em; margin-top: -12px; margin-bottom: 16px; }
</style>
</head>
<body>
<div class="card">
  <h1>Connect Daktela to Claude</h1>
  <p class="subtitle">Enter your Daktela instance credentials</p>
  {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
  <form method="POST">
    <input type="hidden" name="client_id" value="{{.ClientID}}">
    <input type="hidden" name="redirect_uri" value="{{.RedirectURI}}">
    <input type="hidden" name="code_challenge" value="{{.CodeChallenge}}">
    <input type="hidden" name="code_challenge_method" value="{{.CodeChallengeMethod}}">
    <input type="hidden" name="state" value="{{.State}}">
    <label for="daktela_url">Daktela Instance URL</label>
    <input type="url" id="daktela_url" name="daktela_url"
           placeholder="https://yourcompany.daktela.com" required
           value="{{.DaktelaURL}}">
    <p class="hint">e.g. https://yourcompany.daktela.com</p>
    <label for="username">Username</label>
    <input type="text" id="username" name="username" required
           value="{{.Username}}" autocomplete="username">
    <label for="password">Password</label>
    <input type="password" id="password" name="password" required
           autocomplete="current-password">
    <button type="submit">Connect</button>
  </form>
</div>
</body>
</html>
`

var loginTemplate = template.Must(template.New("login").Parse(loginHTML))

type loginForm struct {
	ClientID            string
	RedirectURI         string
	CodeChallenge       string
	CodeChallengeMethod string
	State               string
	DaktelaURL          string
	Username            string
	Error               string
}

// renderLogin writes the credential form. The hidden OAuth fields come from
// the request's query string; the entered URL and username are preserved
// across error re-renders, the password never is.
func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, errMsg, daktelaURL, username string) {
	q := r.URL.Query()
	data := loginForm{
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
		State:               q.Get("state"),
		DaktelaURL:          daktelaURL,
		Username:            username,
		Error:               errMsg,
	}
	if data.CodeChallengeMethod == "" {
		data.CodeChallengeMethod = "S256"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginTemplate.Execute(w, data); err != nil {
		h.logger.Printf("render login form: %v", err)
	}
}
