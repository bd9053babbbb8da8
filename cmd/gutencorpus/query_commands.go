package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gutencorpus/internal/api"
	"gutencorpus/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var offset, limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored e-texts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, st *store.Store) error {
				page, err := api.NewCorpusService(st).List(c, offset, limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, page)
				}
				rows := make([][]string, 0, len(page.Items))
				for _, item := range page.Items {
					rows = append(rows, []string{
						strconv.Itoa(item.ID),
						orDash(item.Author),
						orDash(item.Title),
						strconv.Itoa(item.TextSize),
					})
				}
				return writeRows(cmd.OutOrStdout(), []string{"ID", "Author", "Title", "Chars"}, rows, 1, 4)
			})
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Number of records to skip")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of records to print")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var headerOnly bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored e-text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid etext id %q", args[0])
			}
			return ctx.withStore(cmd, func(c context.Context, st *store.Store) error {
				item, err := api.NewCorpusService(st).Describe(c, id)
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("etext %d is not in the corpus", id)
				}
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, item)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:     %d\n", item.ID)
				fmt.Fprintf(out, "Author: %s\n", orDash(item.Author))
				fmt.Fprintf(out, "Title:  %s\n", orDash(item.Title))
				if headerOnly {
					return nil
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, item.FullText)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	cmd.Flags().BoolVar(&headerOnly, "header", false, "Print only identifier, author and title")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the stored corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, st *store.Store) error {
				stats, err := api.NewCorpusService(st).Stats(c)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, stats)
				}
				rows := [][]string{
					{"Total", strconv.Itoa(stats.Total)},
					{"Missing author", strconv.Itoa(stats.MissingAuthor)},
					{"Missing title", strconv.Itoa(stats.MissingTitle)},
				}
				return writeRows(cmd.OutOrStdout(), []string{"Metric", "Count"}, rows, 2)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	return cmd
}
