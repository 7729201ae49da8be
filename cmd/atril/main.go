// Command atril is the terminal admin console for the ensemble API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ensemblekit/atril/internal/api"
	"github.com/ensemblekit/atril/internal/config"
	"github.com/ensemblekit/atril/internal/notify"
	"github.com/ensemblekit/atril/internal/session"
	"github.com/ensemblekit/atril/internal/tui/app"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type wiring struct {
	cfg      *config.Config
	manager  *session.Manager
	notifier *notify.Aggregator
	client   *api.Client
}

// wire builds the component graph: the session manager owns the credential
// and the API client reads it back through the TokenSource interface.
func wire() (*wiring, error) {
	_ = godotenv.Load()

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Read(dir)
	if err != nil {
		return nil, err
	}

	client, err := api.New(cfg.ServerURL)
	if err != nil {
		return nil, err
	}
	client.
		WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second}).
		WithDebug(cfg.Debug)

	sink, err := session.NewFileActivitySink(dir)
	if err != nil {
		return nil, err
	}

	store := session.NewFileStore(dir)
	manager := session.NewManager(client, store).
		WithLogoutWait(time.Duration(cfg.LogoutWait) * time.Second).
		WithActivitySink(sink)
	client.WithTokenSource(manager)

	notifier := notify.New(client)
	manager.OnSessionEstablished(func(ctx context.Context, identity session.Identity) {
		notifier.Recompute(ctx, identity)
	})

	return &wiring{
		cfg:      cfg,
		manager:  manager,
		notifier: notifier,
		client:   client,
	}, nil
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "atril",
		Short: "Terminal admin console for the ensemble API",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}
			return app.Run(app.New(w.manager, w.notifier, w.client))
		},
	}

	root.AddCommand(loginCmd(), logoutCmd(), whoamiCmd(), initCmd())
	return root
}

func loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}

			if email == "" {
				fmt.Print("Email: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				email = strings.TrimSpace(line)
			}

			fmt.Print("Password: ")
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return err
			}

			ctx := context.Background()
			w.manager.Initialize(ctx)

			res := w.manager.SignIn(ctx, email, string(raw))
			if !res.OK {
				return fmt.Errorf("%s", res.Message)
			}

			snap := w.manager.Snapshot()
			fmt.Printf("Signed in as %s (%s)\n", snap.Identity.DisplayName, snap.Identity.Role)
			if banner := w.notifier.Banner(); banner.Visible {
				fmt.Println(banner.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}

			ctx := context.Background()
			w.manager.Initialize(ctx)
			w.manager.SignOut(ctx)

			fmt.Println("Signed out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}

			outcome := w.manager.Initialize(context.Background())
			if outcome.Alert != "" {
				fmt.Fprintln(os.Stderr, outcome.Alert)
			}

			snap := w.manager.Snapshot()
			if snap.Identity == nil {
				fmt.Println("Not signed in.")
				return nil
			}

			fmt.Printf("%s <%s> role=%s\n", snap.Identity.DisplayName, snap.Identity.Email, snap.Identity.Role)
			return nil
		},
	}
}

func initCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}

			cfg := config.Default()
			cfg.ServerURL = serverURL
			if err := config.Write(dir, cfg); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server-url", "", "base URL of the ensemble API")
	_ = cmd.MarkFlagRequired("server-url")
	return cmd
}
