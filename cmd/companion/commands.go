package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/app"
)

type globalFlags struct {
	configPath string
	apiURL     string
}

func (g *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		APIURL:     g.apiURL,
		Version:    currentVersion(),
	}
}

// newRootCmd creates the root command. Without a subcommand it runs the
// dashboard.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "companion",
		Short:         "Manage your video from the terminal",
		Long:          "companion shows the statistics, rating, details, comments and private notes of your video in a terminal dashboard.",
		Version:       currentVersion(),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("the dashboard needs a terminal; see companion --help for scriptable commands")
			}
			return app.Run(cmd.Context(), flags.options())
		},
	}
	rootCmd.SetVersionTemplate("companion version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/companion/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "API base URL, overriding the config file")

	rootCmd.AddCommand(newLoginCmd(flags))
	rootCmd.AddCommand(newLogoutCmd(flags))
	rootCmd.AddCommand(newWhoamiCmd(flags))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var paste bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google",
		Long:  "Open the Google consent page in a browser and wait for the sign-in to complete. With --paste, read a session token from standard input instead.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Open(flags.options())
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			var user *api.User
			if paste {
				token, err := readToken(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				user, err = env.AcceptToken(cmd.Context(), token)
				if err != nil {
					return fmt.Errorf("sign in: %w", err)
				}
			} else {
				user, err = env.Login(cmd.Context(), cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("sign in: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.DisplayName())
			return nil
		},
	}
	cmd.Flags().BoolVar(&paste, "paste", false, "read the session token from standard input")
	return cmd
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Open(flags.options())
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			if err := env.Logout(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Signed out locally; server logout failed: %v\n", err)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Open(flags.options())
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			user, err := env.WhoAmI(cmd.Context())
			if errors.Is(err, app.ErrNotSignedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			if err != nil {
				return err
			}
			line := user.DisplayName()
			if user.Email != "" && user.Email != line {
				line += " <" + user.Email + ">"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "companion version %s\n", currentVersion())
		},
	}
}

// readToken reads one session token. A terminal gets a hidden prompt;
// anything else is read up to the first newline.
func readToken(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Session token: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return requireToken(string(raw))
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read token: %w", err)
	}
	return requireToken(line)
}

func requireToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", errors.New("no session token given")
	}
	return token, nil
}
