package command

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var adminFlags struct {
	username string
	email    string
	password string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an ADMIN account",
	Long:  `Create an ADMIN account. Nothing changes when the username is already taken.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		user, created, err := lib.Services.Auth.EnsureAdmin(ctx, adminFlags.username, adminFlags.email, adminFlags.password)
		if err != nil {
			return err
		}
		if !created {
			color.Yellow("⚠️  user %q already exists (role %s), nothing changed", user.Username, user.Role)
			return nil
		}
		success("Created admin %s (ID: %d)", user.Username, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVarP(&adminFlags.username, "username", "u", "", "admin username")
	createAdminCmd.Flags().StringVarP(&adminFlags.email, "email", "e", "", "admin email")
	createAdminCmd.Flags().StringVarP(&adminFlags.password, "password", "p", "", "admin password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createAdminCmd)
}
