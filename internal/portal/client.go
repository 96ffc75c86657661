// Package portal implements the HTTP client for the Spaggiari 'Registro
// Elettronico' web portal: login, session token handling, the personal notice
// board (bacheca) and attachment downloads.
package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// DefaultBaseURL is the address of the production portal
const DefaultBaseURL = "https://web.spaggiari.eu"

// userAgent is sent on every request; the portal serves an error page to unknown clients
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// Paths of the fixed portal endpoints.
// The board path also serves attachment downloads via its 'action' parameter.
const (
	pathLogin  = "/auth-p7/app/default/AuthApi4.php"
	pathBoard  = "/sif/app/default/bacheca_personale.php"
	pathNotice = "/sif/app/default/bacheca_comunicazione.php"
)

// Cookie names the portal uses to identify an authenticated session
const (
	cookieSession  = "PHPSESSID"
	cookieIdentity = "webidentity"
)

// Client represents a configured HTTP client for the portal
type Client struct {
	BaseURL string

	http *http.Client
}

// NewClient creates a portal client with a fresh cookie jar and the given
// request timeout. An empty baseURL selects the production portal.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// get issues an authenticated GET request against a portal endpoint
func (client *Client) get(ctx context.Context, path string, query url.Values, cookies []*http.Cookie) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, wrap(KindTransport, "GET "+path, err)
	}
	req.Header.Set("User-Agent", userAgent)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := client.http.Do(req)
	if err != nil {
		return nil, wrap(KindTransport, "GET "+path, err)
	}
	return resp, nil
}

// statusError classifies a non-OK portal response.
// 401/403 mean the session is no longer accepted; everything else is treated
// as a transport-level failure as the portal never answers with other codes
// on well-formed requests.
func statusError(op string, status int) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return wrap(KindAuth, op, fmt.Errorf("portal requires authentication (status %d): %w", status, ErrInvalidToken))
	}
	return wrap(KindTransport, op, fmt.Errorf("portal answered with status %d", status))
}
