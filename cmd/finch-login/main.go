// finch-login runs the interactive authorization-code flow once and
// stores the resulting token where the client and worker expect it.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"finch/internal/config"
	"finch/internal/identity"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.OAuthClientID == "" || cfg.OAuthAuthURL == "" || cfg.OAuthTokenURL == "" {
		log.Fatal("set OAUTH_CLIENT_ID, OAUTH_AUTH_URL and OAUTH_TOKEN_URL")
	}

	provider, err := identity.NewOAuthProvider(identity.OAuthConfig{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		AuthURL:      cfg.OAuthAuthURL,
		TokenURL:     cfg.OAuthTokenURL,
		RedirectURL:  cfg.OAuthRedirectURL,
		TokenFile:    cfg.OAuthTokenFile,
	})
	if err != nil {
		log.Fatalf("oauth config: %v", err)
	}

	redirect, err := url.Parse(cfg.OAuthRedirectURL)
	if err != nil {
		log.Fatalf("parse redirect URL: %v", err)
	}

	codeCh := make(chan string, 1)
	srv := &http.Server{Addr: ":" + redirect.Port()}
	http.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		codeCh <- code
		go func() { time.Sleep(500 * time.Millisecond); _ = srv.Close() }()
	})
	go func() { _ = srv.ListenAndServe() }()

	fmt.Printf("Open this URL to authorize:\n%s\n", provider.AuthCodeURL("state-token"))

	select {
	case code := <-codeCh:
		if err := provider.Exchange(context.Background(), code); err != nil {
			log.Fatalf("token exchange: %v", err)
		}
		fmt.Printf("Saved token to %s\n", cfg.OAuthTokenFile)
	case <-time.After(5 * time.Minute):
		log.Fatal("authorization timed out")
	case <-signalChan():
		log.Fatal("interrupted")
	}
}

func signalChan() <-chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	return c
}
