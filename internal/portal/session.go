package portal

import (
	"context"
	"net/http"
)

// Session represents a portal session bound to a session token.
// A session is created fresh via NewSession or rebuilt from a persisted token
// via RestoreSession; both variants are ready for board and notice calls.
type Session struct {
	client   *Client
	token    string
	identity string
	account  *AccountInfo
}

// NewSession logs in with the given credentials and returns a fresh session
func NewSession(ctx context.Context, client *Client, username, password string) (*Session, error) {
	token, account, err := client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &Session{
		client:   client,
		token:    token,
		identity: username,
		account:  account,
	}, nil
}

// NewSessionFromToken rebuilds a session from a previously issued token
// without contacting the portal. Use Valid to probe the token before trusting
// the session.
func NewSessionFromToken(client *Client, token, identity string) *Session {
	return &Session{
		client:   client,
		token:    token,
		identity: identity,
	}
}

// RestoreSession rebuilds a session from a previously issued token and probes
// it against the portal. A token the portal no longer accepts yields an auth
// error wrapping ErrInvalidToken.
func RestoreSession(ctx context.Context, client *Client, token, identity string) (*Session, error) {
	session := NewSessionFromToken(client, token, identity)
	valid, err := session.Valid(ctx)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, wrap(KindAuth, "restore session", ErrInvalidToken)
	}
	return session, nil
}

// Token returns the opaque session token issued by the portal
func (session *Session) Token() string {
	return session.token
}

// Account returns the account information the portal sent at login time.
// It is nil for restored sessions.
func (session *Session) Account() *AccountInfo {
	return session.account
}

// Valid reports whether the portal still accepts the session token by probing
// the board endpoint. The portal answers auth-less requests with its login
// page, so an auth- or parse-shaped probe failure means the token expired.
// A transport failure is returned as an error instead of a verdict so that
// callers can tell an expired token from an unreachable portal.
func (session *Session) Valid(ctx context.Context) (bool, error) {
	_, err := session.GetBoard(ctx)
	if err == nil {
		return true, nil
	}
	if kind, ok := KindOf(err); ok && (kind == KindAuth || kind == KindParse) {
		return false, nil
	}
	return false, err
}

// cookies returns the cookies the portal expects on authenticated requests
func (session *Session) cookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: cookieSession, Value: session.token},
		{Name: cookieIdentity, Value: session.identity},
	}
}
