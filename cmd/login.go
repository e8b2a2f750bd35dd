package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/pkg/backend"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and print an access/refresh token pair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return eris.Wrap(err, "read password")
			}
			password = string(raw)
		}

		be := initBackend()
		tokens, err := be.Login(cmd.Context(), args[0], password)
		if err != nil {
			return eris.Wrap(err, "login")
		}

		fmt.Printf("export CLAIMS_API_TOKEN=%s\n", tokens.Access)
		fmt.Printf("export CLAIMS_API_REFRESH_TOKEN=%s\n", tokens.Refresh)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Register a new claimant account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")
		first, _ := cmd.Flags().GetString("first-name")
		last, _ := cmd.Flags().GetString("last-name")

		be := initBackend()
		user, err := be.Register(cmd.Context(), backend.RegisterRequest{
			Username:  args[0],
			Email:     args[1],
			Password:  password,
			FirstName: first,
			LastName:  last,
			Role:      model.Role(role),
		})
		if err != nil {
			return eris.Wrap(err, "register")
		}

		fmt.Printf("Registered %s (%s) as %s\n", user.Username, user.Email, user.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("password", "", "password (prompted when omitted)")
	registerCmd.Flags().String("password", "", "password for the new account")
	registerCmd.Flags().String("role", "claimant", "account role")
	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
}
