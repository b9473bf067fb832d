package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mmynk/giftwiser/internal/service"
)

func newIdeaCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idea",
		Short: "Add, list and delete gift ideas for a person",
	}

	var width, height float64
	add := &cobra.Command{
		Use:   "add PERSON_ID TEXT IMG",
		Short: "Add a gift idea with a photo reference",
		Long: `Add a gift idea with a photo reference.

When --width and --height are omitted the display size is derived from
ideas.screen_width in the configuration.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				idea, err := a.svc.AddIdea(ctx, service.AddIdeaRequest{
					PersonID: args[0],
					Text:     args[1],
					Img:      args[2],
					Width:    width,
					Height:   height,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), idea.ID)
				return nil
			})
		},
	}
	add.Flags().Float64Var(&width, "width", 0, "display width of the photo")
	add.Flags().Float64Var(&height, "height", 0, "display height of the photo")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "list PERSON_ID",
			Short: "List a person's gift ideas",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(ctx context.Context, a *app) error {
					ideas := a.svc.ListIdeas(ctx, args[0])
					out := cmd.OutOrStdout()
					if len(ideas) == 0 {
						fmt.Fprintln(out, "No ideas saved yet")
						return nil
					}

					text := color.New(color.Bold)
					for _, idea := range ideas {
						fmt.Fprintf(out, "%s  %s  %s  %.0fx%.0f\n",
							text.Sprint(idea.Text), idea.Img, idea.ID, idea.Width, idea.Height)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete PERSON_ID IDEA_ID",
			Short: "Delete one gift idea",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(ctx context.Context, a *app) error {
					return a.svc.DeleteIdea(ctx, args[0], args[1])
				})
			},
		},
	)
	return cmd
}
