package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"grveyardapp/pkg/auth"
	"grveyardapp/pkg/result"
)

var (
	acctName     string
	acctEmail    string
	acctPassword string
	acctRole     string
	acctPicURL   string
)

func init() {
	signupCmd.Flags().StringVar(&acctName, "name", "", "display name")
	signupCmd.Flags().StringVar(&acctEmail, "email", "", "email address")
	signupCmd.Flags().StringVar(&acctPassword, "password", "", "password")
	signupCmd.Flags().StringVar(&acctRole, "role", "buyer", "role (buyer|founder)")
	signupCmd.Flags().StringVar(&acctPicURL, "profile-pic", "", "profile picture URL")
	_ = signupCmd.MarkFlagRequired("name")
	_ = signupCmd.MarkFlagRequired("email")
	_ = signupCmd.MarkFlagRequired("password")

	loginCmd.Flags().StringVar(&acctEmail, "email", "", "email address")
	loginCmd.Flags().StringVar(&acctPassword, "password", "", "password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	for _, sub := range []*cobra.Command{accountShowCmd, accountUpdateCmd, accountDeleteCmd} {
		sub.Flags().StringVar(&acctEmail, "email", "", "account email")
		sub.Flags().StringVar(&acctPassword, "password", "", "account password")
	}
	accountUpdateCmd.Flags().StringVar(&acctName, "name", "", "new display name")
	accountUpdateCmd.Flags().StringVar(&acctRole, "role", "", "new role")
	accountUpdateCmd.Flags().StringVar(&acctPicURL, "profile-pic", "", "new profile picture URL")
	accountCmd.AddCommand(accountShowCmd, accountUpdateCmd, accountDeleteCmd)

	verifySendCmd.Flags().StringVar(&acctEmail, "email", "", "account email")
	verifySendCmd.Flags().StringVar(&acctPassword, "password", "", "account password")
	verifySubmitCmd.Flags().StringVar(&acctEmail, "email", "", "account email")
	verifySubmitCmd.Flags().StringVar(&acctPassword, "password", "", "account password")
	verifyStatusCmd.Flags().StringVar(&acctEmail, "email", "", "email to check")
	_ = verifyStatusCmd.MarkFlagRequired("email")
	verifyCmd.AddCommand(verifySendCmd, verifySubmitCmd, verifyStatusCmd)
}

func printAccount(a auth.Account) {
	fmt.Printf("%s <%s>\nrole: %s\nuuid: %s\njoined: %s\n", a.Name, a.Email, a.Role, a.UUID, a.CreatedAt)
}

func accountTerminal(flow <-chan result.State[auth.Account]) error {
	terminal, ok := result.Collect(flow)
	if !ok {
		return errors.New("flow ended without a result")
	}
	if terminal.Kind == result.KindError {
		return errors.New(terminal.Err)
	}
	printAccount(terminal.Data)
	return nil
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return accountTerminal(authService.CreateAccount(cmd.Context(), auth.CreateAccountRequest{
			Name:          acctName,
			Email:         acctEmail,
			Password:      acctPassword,
			Role:          acctRole,
			ProfilePicURL: acctPicURL,
		}))
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to an existing account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureSession(cmd.Context(), acctEmail, acctPassword); err != nil {
			return err
		}
		return accountTerminal(authService.AccountDetails(cmd.Context()))
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Inspect or change your account",
}

var accountShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show account details",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureSession(cmd.Context(), acctEmail, acctPassword); err != nil {
			return err
		}
		return accountTerminal(authService.AccountDetails(cmd.Context()))
	},
}

var accountUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update account details",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureSession(cmd.Context(), acctEmail, acctPassword); err != nil {
			return err
		}
		return accountTerminal(authService.UpdateAccount(cmd.Context(), auth.UpdateAccountRequest{
			Name:          acctName,
			Role:          acctRole,
			ProfilePicURL: acctPicURL,
		}))
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the account and its identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureSession(cmd.Context(), acctEmail, acctPassword); err != nil {
			return err
		}
		terminal, ok := result.Collect(authService.DeleteAccount(cmd.Context()))
		if !ok {
			return errors.New("flow ended without a result")
		}
		if terminal.Kind == result.KindError {
			return errors.New(terminal.Err)
		}
		fmt.Println(terminal.Data)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Email verification",
}

var verifySendCmd = &cobra.Command{
	Use:   "send",
	Short: "Request a verification code",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureSession(cmd.Context(), acctEmail, acctPassword); err != nil {
			return err
		}
		terminal, ok := result.Collect(authService.RequestOTP(cmd.Context()))
		if !ok {
			return errors.New("flow ended without a result")
		}
		if terminal.Kind == result.KindError {
			return errors.New(terminal.Err)
		}
		fmt.Println(terminal.Data)
		return nil
	},
}

var verifySubmitCmd = &cobra.Command{
	Use:   "submit <code>",
	Short: "Submit a verification code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureSession(cmd.Context(), acctEmail, acctPassword); err != nil {
			return err
		}
		terminal, ok := result.Collect(authService.VerifyOTP(cmd.Context(), args[0]))
		if !ok {
			return errors.New("flow ended without a result")
		}
		if terminal.Kind == result.KindError {
			return errors.New(terminal.Err)
		}
		if terminal.Data {
			fmt.Println("email verified")
		} else {
			fmt.Println("code rejected")
		}
		return nil
	},
}

var verifyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check verification status for an email",
	RunE: func(cmd *cobra.Command, args []string) error {
		terminal, ok := result.Collect(authService.VerificationStatus(cmd.Context(), acctEmail))
		if !ok {
			return errors.New("flow ended without a result")
		}
		if terminal.Kind == result.KindError {
			return errors.New(terminal.Err)
		}
		fmt.Printf("verified: %v\n", terminal.Data)
		return nil
	},
}
