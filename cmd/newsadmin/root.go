package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/and161185/newsadmin/internal/errs"
	"github.com/and161185/newsadmin/internal/guard"
	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/service"
)

// reportedError marks a failure the user already saw as a notice.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// outcome maps a coordinator result to the command result.
func outcome(err error) error {
	var apiErr *errs.APIError
	switch {
	case err == nil, service.IsQuiet(err):
		return nil
	case errors.As(err, &apiErr), errors.Is(err, errs.ErrSessionExpired), errors.Is(err, errs.ErrRateLimited):
		return reportedError{err}
	}
	return err
}

// newRootCmd builds the command tree over a fresh app.
func newRootCmd(in io.Reader, out, errw io.Writer) *cobra.Command {
	a := &app{in: newLineReader(in), out: out, errw: errw}
	return buildRoot(a)
}

// buildRoot creates the commands bound to a. The shell builds a new tree per
// line so flag values never leak between lines.
func buildRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "newsadmin",
		Short: "News CMS admin console",
		Long: `Manage the authors and categories of the news CMS from the terminal.

Configuration is read from config.yaml (., ./config or the user config dir),
NEWSADMIN_* environment variables and a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if !a.interactive {
				a.close()
			}
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errw)

	pf := root.PersistentFlags()
	pf.StringVar(&a.opts.configFile, "config", a.opts.configFile, "config file (default: search config.yaml)")
	pf.StringVar(&a.opts.apiURL, "api-url", a.opts.apiURL, "backend base URL, overrides api.url")
	pf.BoolVarP(&a.opts.yes, "yes", "y", a.opts.yes, "accept every confirmation prompt")

	root.AddCommand(
		versionCmd(a),
		loginCmd(a),
		logoutCmd(a),
		sessionCmd(a),
		dashboardCmd(a),
		sidebarCmd(a),
		authorsCmd(a),
		categoriesCmd(a),
		shellCmd(a),
	)
	return root
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		// No configuration needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.out, "newsadmin %s (%s)\n", version, buildDate)
		},
	}
}

func loginCmd(a *app) *cobra.Command {
	var creds model.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if creds.Password == "" {
				fmt.Fprint(a.errw, "Password: ")
				line, err := a.in.ReadLine()
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				creds.Password = line
			}
			if err := outcome(a.coord.Auth.Login(cmd.Context(), creds)); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "signed in as %s\n", a.store.Snapshot().Auth.Email)
			fmt.Fprintf(a.out, "continue at %s\n", a.guard.ReturnTo())
			return nil
		},
	}
	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove the stored tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return outcome(a.coord.Auth.Logout(cmd.Context()))
		},
	}
}

func sessionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the current session",
		RunE: func(*cobra.Command, []string) error {
			s := a.coord.Auth.Session()
			return printJSON(a.out, map[string]any{
				"authenticated": s.IsAuthenticated,
				"email":         s.CurrentUserEmail,
				"accessToken":   mask(s.AccessToken),
				"refreshToken":  mask(s.RefreshToken),
			})
		},
	}
}

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.enter(guard.HomePath); err != nil {
				return err
			}
			if err := outcome(a.coord.Dashboard.Get(cmd.Context())); err != nil {
				return err
			}
			return printJSON(a.out, a.store.Snapshot().Dashboard.Data)
		},
	}
}

func sidebarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sidebar",
		Short: "Toggle the sidebar",
		Run: func(*cobra.Command, []string) {
			a.coord.Dashboard.ToggleSidebar()
			state := "closed"
			if a.store.Snapshot().Dashboard.SidebarOpen {
				state = "open"
			}
			fmt.Fprintf(a.out, "sidebar %s\n", state)
		},
	}
}

// mask keeps the first characters of a token.
func mask(tok string) string {
	if len(tok) <= 8 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:8] + "..."
}
