package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and cache the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = promptPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			session, err := api.Auth.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			if err := creds.save(storedSession{
				Server:       api.BaseURL(),
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
			}); err != nil {
				return err
			}

			fmt.Printf("Logged in as %s (%s) at %s\n", session.User.Name, session.User.Role, api.BaseURL())
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := api.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := creds.clear(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := api.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			return emit(user, func(w io.Writer) {
				fmt.Fprintf(w, "ID:\t%s\n", user.ID)
				fmt.Fprintf(w, "Name:\t%s\n", user.Name)
				fmt.Fprintf(w, "Email:\t%s\n", user.Email)
				fmt.Fprintf(w, "Role:\t%s\n", user.Role)
				fmt.Fprintf(w, "Server:\t%s\n", api.BaseURL())
			})
		},
	}
}

// promptPassword reads a password line from in. The prompt goes to stderr so
// piping stdout stays clean.
func promptPassword(in io.Reader) (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}
