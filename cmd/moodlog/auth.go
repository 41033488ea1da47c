package main

import (
	"fmt"
	"os"

	"github.com/pbaille/moodlog/internal/auth"
	"github.com/pbaille/moodlog/internal/tui"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.requireIdentityKey(); err != nil {
				return err
			}

			if password == "" {
				password = os.Getenv("MOODLOG_PASSWORD")
			}
			if email == "" || password == "" {
				values, err := tui.Prompt("Sign in", []tui.Field{
					{Label: "Email", Value: email, Required: true},
					{Label: "Password", Value: password, Secret: true, Required: true},
				})
				if err != nil {
					return err
				}
				email, password = values[0], values[1]
			}

			s, err := rt.provider.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return signedIn(rt, s)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or MOODLOG_PASSWORD)")
	return cmd
}

func signupCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.requireIdentityKey(); err != nil {
				return err
			}

			if password == "" {
				password = os.Getenv("MOODLOG_PASSWORD")
			}
			if email == "" || password == "" || name == "" {
				values, err := tui.Prompt("Create account", []tui.Field{
					{Label: "Username", Value: name, Required: true},
					{Label: "Email", Value: email, Required: true},
					{Label: "Password", Value: password, Secret: true, Required: true},
				})
				if err != nil {
					return err
				}
				name, email, password = values[0], values[1], values[2]
			}

			s, err := rt.provider.SignUp(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			return signedIn(rt, s)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or MOODLOG_PASSWORD)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func signedIn(rt *runtime, s *auth.Session) error {
	if err := rt.tokens.Store(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	id, err := rt.tokens.Identity()
	if err != nil {
		return err
	}
	rt.log.Infow("signed in", "user_id", id.UID)
	fmt.Printf("Signed in as %s (%s)\n", id.Name(), id.Email)
	return nil
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.tokens.Clear(); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			id, err := rt.tokens.Identity()
			if err != nil {
				return err
			}
			fmt.Printf("Name:    %s\n", id.Name())
			fmt.Printf("Email:   %s\n", id.Email)
			fmt.Printf("User ID: %s\n", id.UID)
			if !id.ExpiresAt.IsZero() {
				fmt.Printf("Token:   expires %s\n", id.ExpiresAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
