package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alang8/Help-Restaurant-Review/internal/app"
	"github.com/alang8/Help-Restaurant-Review/internal/jobs"
	"github.com/spf13/cobra"
)

var errNoStore = errors.New("MONGODB_URI is not set")

// withServices opens the store for the duration of fn.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, s *app.Services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close(context.Background()) }()
	return fn(ctx, s)
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample restaurants and reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *app.Services) error {
				nodes, reviews, err := seed(ctx, s)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d nodes and %d reviews\n", nodes, reviews)
				return nil
			})
		},
	}
}

func reviewsCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "reviews",
		Short: "review commands",
	}
	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every review",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all reviews without --yes")
			}
			return withServices(cmd, func(ctx context.Context, s *app.Services) error {
				n, err := s.Reviews.DeleteAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d reviews\n", n)
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	command.AddCommand(clearCmd)
	return command
}

func ratingsCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "ratings",
		Short: "rating commands",
	}
	command.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Recompute the cached rating of every restaurant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *app.Services) error {
				n, err := syncRatings(ctx, s)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "synced %d restaurants\n", n)
				return nil
			})
		},
	})
	return command
}

func syncRatings(ctx context.Context, s *app.Services) (int, error) {
	return jobs.NewRatingSyncTask("", s.Nodes, s.Reviews).Sync(ctx)
}
