package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPersonCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Add, list and delete people",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME DOB",
			Short: "Add a person (DOB as YYYY/MM/DD)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(ctx context.Context, a *app) error {
					person, err := a.svc.AddPerson(ctx, args[0], args[1])
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), person.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List people by upcoming birthday",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(ctx context.Context, a *app) error {
					people := a.svc.ListPeople(ctx)
					out := cmd.OutOrStdout()
					if len(people) == 0 {
						fmt.Fprintln(out, "No people saved yet")
						return nil
					}

					date := color.New(color.FgCyan)
					name := color.New(color.Bold)
					for _, p := range people {
						fmt.Fprintf(out, "%s  %s  %s  (%d ideas)\n",
							date.Sprint(p.Birthday()), name.Sprint(p.Name), p.ID, len(p.Ideas))
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a person and all of their ideas",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(ctx context.Context, a *app) error {
					return a.svc.DeletePerson(ctx, args[0])
				})
			},
		},
	)
	return cmd
}
