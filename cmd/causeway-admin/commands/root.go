// Package commands implements the causeway-admin CLI on top of pkg/client.
// Tokens are cached on disk between invocations and rotated refresh tokens
// are written back after every run.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/causewayhq/causeway/pkg/client"
)

const defaultServer = "http://localhost:8080"

// serverEnv overrides the server URL without a flag, for scripting.
const serverEnv = "CAUSEWAY_SERVER"

var (
	serverFlag string
	configDir  string
	jsonOut    bool

	api   *client.Client
	creds *credentialFile
)

func Execute(version string) error {
	root := newRootCmd(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	persistTokens()
	return err
}

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "causeway-admin",
		Short:         "Administer a causeway server from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(version)
		},
	}

	root.PersistentFlags().StringVar(&serverFlag, "server", "", "server base URL (default "+defaultServer+", env "+serverEnv+")")
	root.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory for cached credentials (default ~/.config/causeway)")
	root.PersistentFlags().BoolVar(&jsonOut, "json", false, "print raw JSON instead of tables")

	root.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		usersCmd(),
		donorsCmd(),
		donationsCmd(),
		campaignsCmd(),
		volunteersCmd(),
		eventsCmd(),
		membershipsCmd(),
		postsCmd(),
		uploadsCmd(),
		reportCmd(),
	)
	return root
}

// setup loads cached credentials and builds the API client. Stored tokens are
// only attached when they belong to the server being addressed.
func setup(version string) error {
	var err error
	creds, err = openCredentialFile(configDir)
	if err != nil {
		return err
	}

	server := resolveServer(serverFlag, os.Getenv(serverEnv), creds.loaded.Server)

	opts := []client.Option{
		client.WithUserAgent("causeway-admin/" + version),
	}
	if creds.loaded.Server == server && creds.loaded.RefreshToken != "" {
		opts = append(opts, client.WithTokens(client.TokenPair{
			AccessToken:  creds.loaded.AccessToken,
			RefreshToken: creds.loaded.RefreshToken,
		}))
	}

	api, err = client.New(server, opts...)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", server, err)
	}
	return nil
}

// resolveServer picks the server URL: flag, then environment, then the one
// stored with the cached credentials, then the default.
func resolveServer(flag, env, stored string) string {
	for _, candidate := range []string{flag, env, stored} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return defaultServer
}

// persistTokens writes the possibly rotated token pair back to disk. Refresh
// tokens are one-time use, so losing a rotation would force a new login.
func persistTokens() {
	if api == nil || creds == nil {
		return
	}
	pair := api.Tokens()
	if pair.RefreshToken == "" && pair.AccessToken == "" {
		return
	}
	if pair.AccessToken == creds.loaded.AccessToken && pair.RefreshToken == creds.loaded.RefreshToken {
		return
	}
	_ = creds.save(storedSession{
		Server:       api.BaseURL(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
