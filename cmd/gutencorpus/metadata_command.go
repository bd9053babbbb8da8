package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newMetadataCommand(ctx *commandContext) *cobra.Command {
	metadataCmd := &cobra.Command{
		Use:   "metadata",
		Short: "Inspect and build the metadata cache",
	}
	metadataCmd.AddCommand(newMetadataWarmCommand(ctx))
	metadataCmd.AddCommand(newMetadataLookupCommand(ctx))
	return metadataCmd
}

func newMetadataWarmCommand(ctx *commandContext) *cobra.Command {
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Load the metadata cache, building it from the catalog if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cp, err := ctx.corpus(cmd)
			if err != nil {
				return err
			}
			if rebuild {
				if err := cp.Index().Rebuild(cmd.Context()); err != nil {
					return err
				}
			}
			records, err := cp.Metadata(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Metadata cache: %s\n", cp.Index().Path())
			fmt.Fprintf(out, "Entries:        %d\n", len(records))
			return nil
		},
	}
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Rebuild the cache from the catalog even if it exists")
	return cmd
}

func newMetadataLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <id>...",
		Short: "Show cached metadata for e-text identifiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cp, err := ctx.corpus(cmd)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(args))
			for _, arg := range args {
				id, err := strconv.Atoi(strings.TrimSpace(arg))
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid etext id %q", arg)
				}
				rec, ok, err := cp.Index().Lookup(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !ok {
					rows = append(rows, []string{strconv.Itoa(id), "-", "-", "-"})
					continue
				}
				rows = append(rows, []string{strconv.Itoa(id), orDash(rec.Author), orDash(rec.Title), orDash(strings.Join(rec.Language, ","))})
			}
			return writeRows(cmd.OutOrStdout(), []string{"ID", "Author", "Title", "Language"}, rows, 1)
		},
	}
}
