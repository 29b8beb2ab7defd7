package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// OAuthConfig describes the provider endpoints and client registration.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string

	// TokenFile is where finch-login stored the token and where
	// refreshed tokens are written back.
	TokenFile string
}

// OAuthProvider implements Provider on top of a stored OAuth2 token.
// The interactive authorization-code flow lives in cmd/finch-login;
// this adapter only loads, refreshes and discards the stored token.
type OAuthProvider struct {
	cfg       *oauth2.Config
	tokenFile string
	token     *oauth2.Token
}

func NewOAuthProvider(c OAuthConfig) (*OAuthProvider, error) {
	if c.ClientID == "" || c.TokenURL == "" {
		return nil, errors.New("oauth client id and token url are required")
	}
	if c.TokenFile == "" {
		return nil, errors.New("token file path is required")
	}
	return &OAuthProvider{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  c.AuthURL,
				TokenURL: c.TokenURL,
			},
			RedirectURL: c.RedirectURL,
			Scopes:      c.Scopes,
		},
		tokenFile: c.TokenFile,
	}, nil
}

func (p *OAuthProvider) IsAuthenticated(ctx context.Context) (bool, error) {
	if p.token == nil {
		tok, err := loadToken(p.tokenFile)
		if err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("load token: %w", err)
		}
		p.token = tok
	}
	return p.token.Valid() || p.token.RefreshToken != "", nil
}

// Login establishes a usable session from the stored token, refreshing
// it through the provider when expired. A missing token means the user
// has to run the interactive bootstrap first.
func (p *OAuthProvider) Login(ctx context.Context, opts Options) error {
	tok, err := loadToken(p.tokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("no stored credentials; run finch-login first")
		}
		return fmt.Errorf("load token: %w", err)
	}

	if !tok.Valid() {
		fresh, err := p.cfg.TokenSource(ctx, tok).Token()
		if err != nil {
			return fmt.Errorf("refresh session: %w", err)
		}
		tok = fresh
		if err := SaveToken(p.tokenFile, tok); err != nil {
			return fmt.Errorf("persist refreshed token: %w", err)
		}
	}

	ttl := opts.SessionTTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	if !tok.Expiry.IsZero() && time.Until(tok.Expiry) > ttl {
		tok.Expiry = time.Now().Add(ttl)
	}

	p.token = tok
	return nil
}

func (p *OAuthProvider) Logout(context.Context) error {
	p.token = nil
	if err := os.Remove(p.tokenFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("discard token: %w", err)
	}
	return nil
}

// IdentityID reads the subject claim from the provider's id token.
// The claim is display data only; signature verification stays with
// the ledger service, which validates the credential on every call.
func (p *OAuthProvider) IdentityID(ctx context.Context) (string, error) {
	if p.token == nil {
		return "", errors.New("not authenticated")
	}
	raw, _ := p.token.Extra("id_token").(string)
	if raw == "" {
		return "", errors.New("provider returned no id token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", fmt.Errorf("parse id token: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("id token has no subject")
	}
	return sub, nil
}

// HTTPClient returns a client that attaches and auto-refreshes the
// session credential; the remote ledger adapter uses it.
func (p *OAuthProvider) HTTPClient(ctx context.Context) (*http.Client, error) {
	if p.token == nil {
		return nil, errors.New("not authenticated")
	}
	return oauth2.NewClient(ctx, p.cfg.TokenSource(ctx, p.token)), nil
}

// AuthCodeURL exposes the provider's consent URL for the bootstrap cmd.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and persists it.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) error {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	p.token = tok
	return SaveToken(p.tokenFile, tok)
}

func loadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return &tok, nil
}

// SaveToken writes a token to disk with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

var _ Provider = (*OAuthProvider)(nil)
