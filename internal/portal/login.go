package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// loginResponse represents the JSON payload the login endpoint answers with
type loginResponse struct {
	API   loginAPI  `json:"api"`
	Data  loginData `json:"data"`
	Error []string  `json:"error"`
	Time  string    `json:"time"`
}

type loginAPI struct {
	AuthSpa struct {
		Version string `json:"version"`
	} `json:"AuthSpa"`
	Env string `json:"env"`
}

type loginData struct {
	Auth   loginAuth `json:"auth"`
	Pfolio bool      `json:"pfolio"`
}

type loginAuth struct {
	AMode           string      `json:"aMode"`
	AccountInfo     AccountInfo `json:"accountInfo"`
	ActionRequested bool        `json:"actionRequested"`
	ErrCod          []string    `json:"errCod"`
	Errors          []string    `json:"errors"`
	Hints           []string    `json:"hints"`
	LoggedIn        bool        `json:"loggedIn"`
	MMode           string      `json:"mMode"`
	Redirects       []string    `json:"redirects"`
	Verified        bool        `json:"verified"`
}

// AccountInfo represents the account block the portal returns on a successful login
type AccountInfo struct {
	CID     string `json:"cid"`
	Surname string `json:"cognome"`
	ID      int    `json:"id"`
	Name    string `json:"nome"`
	Type    string `json:"type"`
}

// Login submits the given credentials to the portal and returns the session
// token it issues. The token travels as a PHPSESSID cookie on the login
// response; the JSON payload only tells whether the credentials were accepted.
func (client *Client) Login(ctx context.Context, username, password string) (string, *AccountInfo, error) {
	if username == "" || password == "" {
		return "", nil, wrap(KindAuth, "login", errors.New("username and password must not be empty"))
	}

	form := url.Values{}
	form.Set("uid", username)
	form.Set("pwd", password)

	log.Debug().Str("username", username).Msg("submitting credentials to the portal")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.BaseURL+pathLogin+"?a=aLoginPwd", strings.NewReader(form.Encode()))
	if err != nil {
		return "", nil, wrap(KindTransport, "login", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.http.Do(req)
	if err != nil {
		return "", nil, wrap(KindTransport, "login", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, wrap(KindTransport, "login", err)
	}

	token := ""
	for _, cookie := range resp.Cookies() {
		if cookie.Name == cookieSession {
			token = cookie.Value
			break
		}
	}

	payload := &loginResponse{}
	if err := json.Unmarshal(body, payload); err != nil {
		// The portal occasionally serves a non-JSON body next to a perfectly
		// valid session cookie. The cookie decides.
		if token == "" {
			return "", nil, wrap(KindParse, "login", err)
		}
		log.Debug().Err(err).Msg("login payload is not valid JSON, trusting the session cookie")
		return token, nil, nil
	}

	if !payload.Data.Auth.LoggedIn {
		return "", nil, wrap(KindAuth, "login", ErrCredentialsRejected)
	}
	if len(payload.Error) > 0 {
		return "", nil, wrap(KindAuth, "login", fmt.Errorf("portal reported errors: %s", strings.Join(payload.Error, ", ")))
	}
	if token == "" {
		return "", nil, wrap(KindAuth, "login", errors.New("no session cookie in the login response"))
	}

	account := payload.Data.Auth.AccountInfo
	log.Info().
		Str("account", strings.TrimSpace(account.Name+" "+account.Surname)).
		Str("type", account.Type).
		Str("env", payload.API.Env).
		Msg("logged in")
	return token, &account, nil
}
