package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"finch/internal/backend"
	"finch/internal/config"
	"finch/internal/core"
	"finch/internal/identity"
	"finch/internal/invite"
	"finch/internal/ledger"
	applog "finch/internal/log"
	"finch/internal/services"
	"finch/internal/session"
	"finch/internal/view"
)

func main() {
	// Load .env for local development; absence is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	provider, httpClient, err := buildProvider(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize identity provider", "error", err)
		os.Exit(1)
	}

	b, err := backend.Build(cfg, httpClient)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}
	if b.Cleanup != nil {
		defer func() {
			if err := b.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	if err := run(ctx, cfg, provider, b, logger); err != nil && ctx.Err() == nil {
		logger.Error("Client failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Stopped")
}

// buildProvider picks the identity provider for the backend: a canned
// one for the dev backend, OAuth for anything talking to the service.
func buildProvider(ctx context.Context, cfg *config.Config) (identity.Provider, *http.Client, error) {
	if cfg.Backend == config.BackendMemory || cfg.OAuthClientID == "" {
		return &identity.Static{ID: backend.DevIdentityID, Authenticated: true}, nil, nil
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
		return nil, nil, err
	}

	// Not logged in yet is fine; the remote adapter degrades to
	// unauthenticated requests until finch-login runs.
	if err := provider.Login(ctx, identity.Options{}); err != nil {
		return provider, nil, nil
	}
	httpClient, err := provider.HTTPClient(ctx)
	if err != nil {
		return provider, nil, nil
	}
	return provider, httpClient, nil
}

func run(ctx context.Context, cfg *config.Config, provider identity.Provider, b *backend.Backend, logger *applog.Logger) error {
	sessions := session.NewManager(provider, b.Directory)
	sessionLog := logger.WithComponent(applog.ComponentSession)

	route, err := sessions.Bootstrap(ctx, cfg.InviteToken)
	if err != nil {
		sessionLog.Warn("Bootstrap finished with degraded session", "error", err)
	}

	switch route {
	case session.RouteInvite:
		if err := redeemInvite(ctx, cfg.InviteToken, b.Invites, sessions, logger); err != nil {
			return err
		}
	case session.RouteLogin:
		sessionLog.Info("No session, logging in")
		if err := sessions.Login(ctx, identity.Options{}); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	if sessions.Unlinked() {
		sessionLog.Warn("Identity is not linked to any account; ask an admin for an invite")
	}

	if args := os.Args[1:]; len(args) > 0 {
		return runCommand(ctx, args, b)
	}
	return showDashboard(ctx, b, sessions, logger)
}

// runCommand dispatches the capture subcommands:
//
//	finch add  <date> <amount> <category> [payment-method] [notes...]
//	finch edit <id> <date> <amount> <category> [payment-method] [notes...]
//
// Without arguments the client shows the dashboard instead.
func runCommand(ctx context.Context, args []string, b *backend.Backend) error {
	switch args[0] {
	case "add":
		tx, err := parseCapture(args[1:])
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		id, err := b.Recorder.Record(ctx, tx)
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		fmt.Printf("Recorded transaction %d\n", id)
		return nil
	case "edit":
		if len(args) < 2 {
			return fmt.Errorf("edit: missing transaction id")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("edit: invalid transaction id %q", args[1])
		}
		tx, err := parseCapture(args[2:])
		if err != nil {
			return fmt.Errorf("edit: %w", err)
		}
		if err := b.Recorder.Amend(ctx, id, tx); err != nil {
			return fmt.Errorf("edit: %w", err)
		}
		fmt.Printf("Updated transaction %d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// parseCapture builds a transaction from positional arguments:
// <date> <amount> <category> [payment-method] [notes...].
func parseCapture(args []string) (core.Transaction, error) {
	if len(args) < 3 {
		return core.Transaction{}, fmt.Errorf("usage: <date> <amount> <category> [payment-method] [notes]")
	}
	date, err := core.ParseDate(args[0])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid date %q: %w", args[0], err)
	}
	amount, err := core.ParseAmount(args[1])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	tx := core.Transaction{
		Date:     core.EncodeDate(date),
		Amount:   amount,
		Category: args[2],
	}
	if len(args) > 3 {
		tx.PaymentMethod = args[3]
	}
	if len(args) > 4 {
		tx.Notes = strings.Join(args[4:], " ")
	}
	return tx, nil
}

// redeemInvite walks the redemption flow on the terminal, re-prompting
// while the failure is attributable to the username.
func redeemInvite(ctx context.Context, token string, invites ledger.InviteService, sessions *session.Manager, logger *applog.Logger) error {
	flow := invite.NewFlow(token, invites, sessions)
	inviteLog := logger.WithComponent(applog.ComponentInvite)
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("Choose a username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username := strings.TrimSpace(line)

		err = flow.Submit(ctx, username)
		if err == nil {
			inviteLog.Info("Invite accepted", "username", username)
			return nil
		}

		reason, ok := flow.LastReason()
		if !ok {
			return fmt.Errorf("redeem invite: %w", err)
		}

		fmt.Println(invite.Message(reason))
		if invite.Terminal(reason) {
			return fmt.Errorf("invite cannot be redeemed: %s", reason)
		}
	}
}

func showDashboard(ctx context.Context, b *backend.Backend, sessions *session.Manager, logger *applog.Logger) error {
	loader := services.NewDashboardLoader(b.Directory, b.Budgets, b.Transactions)
	state := view.NewState(view.NotifierFunc(func(msg string) {
		fmt.Fprintln(os.Stderr, msg)
	}))

	completion := state.Begin()
	dash, err := loader.Load(ctx)
	if err != nil {
		completion.Fail("Could not load the dashboard")
		return fmt.Errorf("load dashboard: %w", err)
	}
	completion.Succeed(dash.Users, dash.Summary, dash.Chart, dash.Transactions)

	snap := state.Snapshot()
	if user, ok := sessions.Current(); ok {
		fmt.Printf("Signed in as %s\n", user.Username)
	}
	printDashboard(snap, sessions.IsAdmin())

	logger.Info("Dashboard loaded",
		"users", len(snap.Users),
		"summary_rows", len(snap.Summary),
		"transactions", len(snap.Transactions))

	return nil
}

func printDashboard(snap view.Snapshot, isAdmin bool) {
	if isAdmin {
		fmt.Println("Admin controls are available.")
	}

	fmt.Printf("\n%-20s %12s %12s %12s\n", "Category", "Budget", "Spent", "Remaining")
	for _, row := range snap.Summary {
		fmt.Printf("%-20s %12.2f %12.2f %12.2f\n",
			row.Category,
			core.ToDisplay(row.Budget),
			core.ToDisplay(row.Spent),
			core.ToDisplay(row.Remaining))
	}
	fmt.Printf("\n%d transactions on record\n", len(snap.Transactions))
}
