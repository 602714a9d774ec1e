package main

import (
	"context"
	"errors"

	"github.com/ogurasousui/hrcore-identity/internal/core/employee"
	"github.com/ogurasousui/hrcore-identity/internal/platform/logging"
	"github.com/spf13/cobra"
)

func newResolveCmd(root *rootOptions) *cobra.Command {
	var (
		firstName string
		lastName  string
		fullName  string
		nickname  string
		email     string
		phone     string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Find the existing employee an incoming record refers to",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := employee.IncomingRecord{
				Source:    employee.SourceTimecard,
				FirstName: employee.StringPtr(firstName),
				LastName:  employee.StringPtr(lastName),
				FullName:  employee.StringPtr(fullName),
				Nickname:  employee.StringPtr(nickname),
				Email:     employee.StringPtr(email),
				Phone:     employee.StringPtr(phone),
			}
			if first, _ := rec.NameParts(); first == "" {
				return errors.New("resolve: --first or --name is required")
			}

			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()
			runCtx := logging.WithLogger(cmd.Context(), a.logger)

			resolver := employee.NewResolver(a.employees, employee.ResolverOptions{
				PlaceholderEmailDomains: a.cfg.Identity.PlaceholderEmailDomains,
			}, a.logger)

			var match *employee.Match
			if err := a.tx.WithinReadOnly(runCtx, func(ctx context.Context) error {
				var err error
				match, err = resolver.Resolve(ctx, rec)
				return err
			}); err != nil {
				return err
			}

			renderMatch(cmd.OutOrStdout(), match)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first", "", "first name")
	cmd.Flags().StringVar(&lastName, "last", "", "last name")
	cmd.Flags().StringVar(&fullName, "name", "", "full name, used when --first is empty")
	cmd.Flags().StringVar(&nickname, "nickname", "", "nickname")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	return cmd
}
