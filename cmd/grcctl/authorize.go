package main

import (
	"errors"
	"strings"

	"access-governance/internal/models"
	"access-governance/internal/permissions"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var errDenied = errors.New("access denied")

func newAuthorizeCmd() *cobra.Command {
	var (
		role string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "authorize PERMISSION...",
		Short: "Check whether a console role satisfies a permission requirement",
		RunE: func(cmd *cobra.Command, args []string) error {
			held := permissions.ForRole(models.UserRole(role))
			m := permissions.ParseMode(mode)

			pterm.Info.Printf("Role %s holds: %s\n", role, strings.Join(held.List(), ", "))
			if !permissions.Authorize(held, args, m) {
				return errDenied
			}
			pterm.Success.Printf("authorized (%s of %d)\n", m, len(args))
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", string(models.RoleViewer), "console role (admin, auditor, manager, viewer)")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(permissions.ModeAll), "any or all")
	return cmd
}
