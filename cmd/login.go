package cmd

import (
	"context"
	"fmt"
	"time"

	"weni/internal/auth"
	"weni/internal/config"
	"weni/pkg/logging"

	"github.com/atotto/clipboard"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

// Swapped in tests.
var (
	openBrowser     = open.Run
	copyToClipboard = clipboard.WriteAll
)

func newLoginCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Weni through the browser",
		Long: `Opens the Weni login page in the browser and waits for the login to
complete. The access token is stored in the user configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", auth.DefaultTimeout, "How long to wait for the browser login")
	return cmd
}

func runLogin(cmd *cobra.Command, timeout time.Duration) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	cfg := store.Config()
	out := cmd.OutOrStdout()

	flow := auth.NewFlow(auth.Config{
		KeycloakURL: cfg.KeycloakURL,
		Realm:       cfg.KeycloakRealm,
		ClientID:    cfg.KeycloakClientID,
	})
	server, err := flow.Listen()
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Close(ctx); err != nil {
			logging.Debug("Login", "closing callback server: %v", err)
		}
	}()

	loginURL := flow.LoginURL()
	fmt.Fprintln(out, "Opening browser for login, please wait...")
	fmt.Fprintf(out, "If the browser does not open, please open the following URL manually: %s\n", loginURL)
	if err := copyToClipboard(loginURL); err != nil {
		logging.Debug("Login", "could not copy login URL to clipboard: %v", err)
	} else {
		fmt.Fprintln(out, "The URL was also copied to your clipboard.")
	}
	if err := openBrowser(loginURL); err != nil {
		logging.Warn("Login", "could not open browser: %v", err)
	}

	code, err := server.Wait(cmd.Context(), timeout)
	if err != nil {
		return fmt.Errorf("Failed to receive code: %w", err)
	}

	token, err := flow.Exchange(cmd.Context(), code)
	if err != nil {
		return err
	}
	if err := store.Set(config.KeyToken, token); err != nil {
		return err
	}

	fmt.Fprintln(out, "Login successful")
	return nil
}
