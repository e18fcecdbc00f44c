package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unievents/uni/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in (mock)",
	Long: `Sign in with a mock token. No password is checked.

Without flags you are signed in as the default student account.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().String("name", "", "display name")
	loginCmd.Flags().String("email", "", "email address")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}

	var u *session.User
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	if name != "" || email != "" {
		u = &session.User{Name: name, Email: email}
	}
	if err := a.session.Login(cmd.Context(), u); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	user, _ := a.session.User()
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if err := a.session.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	user, ok := a.session.User()
	if !a.session.IsAuthenticated() || !ok {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
	return nil
}
