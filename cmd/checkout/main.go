// Vakinha Checkout terminal client
//
// The contributor-facing side of the checkout: collects identity and amount,
// submits them to the payment service and presents the PIX payment with its
// countdown. A second command plays the follow-up payment page.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vakinha/checkout/config"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
	"github.com/vakinha/checkout/internal/platform/store"
)

// sessionTTL bounds how long a handoff outlives its session in Redis.
const sessionTTL = 12 * time.Hour

// errReported marks a failure the command already showed to the user.
var errReported = errors.New("reported")

// app holds what every command needs.
type app struct {
	cfg      *config.Config
	msgs     *messages.Catalog
	logger   *slog.Logger
	handoffs domain.HandoffStore
	session  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Erro:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{msgs: messages.Default()}
	var (
		session string
		verbose bool
	)

	root := &cobra.Command{
		Use:           "checkout",
		Short:         "Contribua com a campanha via PIX",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context(), session, verbose)
		},
	}
	root.PersistentFlags().StringVar(&session, "session", os.Getenv("CHECKOUT_SESSION"), "session id shared by contribute and payment")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log diagnostics to stderr")

	root.AddCommand(newContributeCmd(a), newPaymentCmd(a))
	return root
}

func (a *app) init(ctx context.Context, session string, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if cfg.Storage.RedisURL != "" {
		client, err := store.Connect(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return err
		}
		a.handoffs = store.NewRedisHandoffStore(client, sessionTTL)
	} else {
		a.handoffs = store.NewFileHandoffStore(cfg.Storage.HandoffDir)
	}

	if session == "" {
		session, err = terminalSession(cfg.Storage.HandoffDir)
		if err != nil {
			return err
		}
	}
	a.session = session
	return nil
}

// terminalSession returns the session id kept beside the handoff records,
// creating one on first use.
func terminalSession(dir string) (string, error) {
	path := filepath.Join(dir, "session")
	if b, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(b)); id != "" {
			return id, nil
		}
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write session id: %w", err)
	}
	return id, nil
}
