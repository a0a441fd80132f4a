package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/journal/internal/auth"
	"github.com/idilsaglam/journal/internal/ui"
)

// NewAuthCommand creates the auth command group.
func NewAuthCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the account token that scopes the shared database",
	}
	cmd.AddCommand(newLoginCommand(rootOpts))
	cmd.AddCommand(newLogoutCommand(rootOpts))
	cmd.AddCommand(newStatusCommand(rootOpts))
	cmd.AddCommand(newWhoamiCommand(rootOpts))
	return cmd
}

func formatter(cmd *cobra.Command, rootOpts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
}

func newLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a token (read from stdin when --token is omitted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return WrapExitError(ExitFailure, "login", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return NewExitError(ExitUsage, "login: empty token")
			}
			if err := auth.SetToken(token, nil); err != nil {
				return WrapExitError(ExitFailure, "login", err)
			}
			owner, err := auth.Owner()
			if err != nil {
				return WrapExitError(ExitFailure, "login", err)
			}
			return formatter(cmd, rootOpts).OK(map[string]string{"owner": owner}, "logged in as "+owner)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token to save")
	return cmd
}

func newLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.DeleteToken(); err != nil {
				return WrapExitError(ExitFailure, "logout", err)
			}
			return formatter(cmd, rootOpts).OK(nil, "logged out")
		},
	}
}

type tokenStatus struct {
	LoggedIn  bool       `json:"loggedIn"`
	Source    string     `json:"source,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
}

func newStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Tell whether a token is saved and when it expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, err := auth.GetToken()
			if err != nil {
				return WrapExitError(ExitFailure, "status", err)
			}
			var st tokenStatus
			if ti != nil && ti.Token != "" {
				st = tokenStatus{LoggedIn: true, Source: ti.Source, ExpiresAt: ti.ExpiresAt}
				st.Expired = ti.ExpiresAt != nil && ti.ExpiresAt.Before(clock())
			}
			return formatter(cmd, rootOpts).Success(st, func(w io.Writer) {
				switch {
				case !st.LoggedIn:
					fmt.Fprintln(w, ui.Current().Muted.Render("not logged in; events belong to "+auth.LocalOwner))
				case st.Expired:
					ui.Warn(w, fmt.Sprintf("token from %s expired at %s", st.Source, st.ExpiresAt.Format(time.RFC3339)))
				case st.ExpiresAt != nil:
					ui.OK(w, fmt.Sprintf("logged in (%s), expires %s", st.Source, st.ExpiresAt.Format(time.RFC3339)))
				default:
					ui.OK(w, fmt.Sprintf("logged in (%s)", st.Source))
				}
			})
		},
	}
}

func newWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the owner the token maps to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := auth.Owner()
			if err != nil {
				return WrapExitError(ExitFailure, "whoami", err)
			}
			data := map[string]string{"owner": owner}
			if ti, _ := auth.GetToken(); ti != nil {
				if id, err := auth.Inspect(ti.Token); err == nil && id.Email != "" {
					data["email"] = id.Email
				}
			}
			return formatter(cmd, rootOpts).Success(data, func(w io.Writer) {
				line := owner
				if data["email"] != "" && data["email"] != owner {
					line += " <" + data["email"] + ">"
				}
				fmt.Fprintln(w, line)
			})
		},
	}
}
