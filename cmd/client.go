package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/study-tracker/internal/cli"
	"github.com/spf13/cobra"
)

var (
	apiURL        string
	loginEmail    string
	sessionPath   string
	watchStatus   bool
	watchInterval time.Duration
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cli.OpenStore(sessionPath)
		if err != nil {
			return err
		}
		defer store.Close()

		prompt := cli.NewPrompt()
		email := loginEmail
		if email == "" {
			if email, err = prompt.ReadLine("Email: "); err != nil {
				return fmt.Errorf("failed to read email: %w", err)
			}
		}
		password, err := prompt.ReadPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		resp, err := cli.NewClient(apiURL, 0).Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		err = store.Save(&cli.Session{
			BaseURL:   apiURL,
			Token:     resp.Token,
			ExpiresAt: resp.ExpiresAt,
			Email:     resp.User.Email,
			Name:      resp.User.Name,
			IsAdmin:   resp.User.IsAdmin,
		})
		if err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (session expires %s)\n",
			resp.User.Email, resp.ExpiresAt.Local().Format(time.RFC1123))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the approval status of the current account",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := currentSession()
		if err != nil {
			return err
		}
		client := cli.NewClient(session.BaseURL, 0)
		out := cmd.OutOrStdout()

		if !watchStatus {
			status, err := client.Status(cmd.Context(), session.Token)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, status)
			return nil
		}

		if watchInterval <= 0 {
			return errors.New("--interval must be positive")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		poll := func(ctx context.Context) (string, error) {
			return client.Status(ctx, session.Token)
		}
		onChange := func(status string) {
			fmt.Fprintf(out, "%s  %s\n", time.Now().Format(time.TimeOnly), status)
		}
		onError := func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "poll failed: %v\n", err)
		}

		_, err = cli.Watch(ctx, watchInterval, poll, onChange, onError)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cli.OpenStore(sessionPath)
		if err != nil {
			return err
		}
		defer store.Close()

		session, err := store.Load()
		if errors.Is(err, cli.ErrNoSession) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			return nil
		}
		if err != nil {
			return err
		}

		// an expired or already revoked token still gets cleared locally
		remoteErr := cli.NewClient(session.BaseURL, 0).Logout(cmd.Context(), session.Token)
		var apiErr *cli.APIError
		if remoteErr != nil && !(errors.As(remoteErr, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized) {
			return remoteErr
		}

		if err := store.Delete(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func currentSession() (*cli.Session, error) {
	store, err := cli.OpenStore(sessionPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	session, err := store.Load()
	if err != nil {
		if errors.Is(err, cli.ErrNoSession) {
			return nil, errors.New("not logged in, run `study-tracker login` first")
		}
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, errors.New("session expired, run `study-tracker login` again")
	}
	return session, nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, statusCmd, logoutCmd} {
		c.Flags().StringVar(&sessionPath, "session", cli.DefaultStorePath(), "path of the local session file")
	}
	loginCmd.Flags().StringVar(&apiURL, "url", "http://localhost:8080", "server base URL")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	statusCmd.Flags().BoolVar(&watchStatus, "watch", false, "keep polling until approved or rejected")
	statusCmd.Flags().DurationVar(&watchInterval, "interval", 10*time.Second, "polling interval for --watch")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logoutCmd)
}
