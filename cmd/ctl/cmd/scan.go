package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jpfielding/vicar.go/pkg/catalog"
	"github.com/spf13/cobra"
)

// NewScanCmd catalogues the labels of many files
func NewScanCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <paths or dirs...>",
		Short: "catalogue VICAR labels",
		Long:  "reads the labels of every path in parallel; directories are searched for .vic files and unreadable files are logged and skipped",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := catalog.Options{Source: sourceConfig(cmd)}
			opts.Workers, _ = cmd.Flags().GetInt("workers")
			csvPath, _ := cmd.Flags().GetString("csv")
			byFilter, _ := cmd.Flags().GetBool("by-filter")

			paths, err := catalog.Expand(args)
			if err != nil {
				return err
			}
			entries, err := catalog.Scan(ctx, paths, opts)
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "scanned", "files", len(paths), "read", len(entries))

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := catalog.WriteCSV(f, entries); err != nil {
					return err
				}
				return f.Close()
			}
			printEntries(os.Stdout, entries, byFilter)
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.Int("workers", 4, "concurrent readers")
	pf.String("csv", "", "write the catalogue as CSV to this path")
	pf.Bool("by-filter", false, "group the listing by FILTER_NAME")
	return cmd
}

func printEntries(w io.Writer, entries []catalog.Entry, byFilter bool) {
	line := func(e catalog.Entry) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%dx%d\t%s\t%s\n",
			e.Path, e.Target, e.Instrument, e.Bands, e.Lines, e.Samples, e.Format, e.ImageTime)
	}
	if !byFilter {
		for _, e := range entries {
			line(e)
		}
		return
	}
	groups := catalog.GroupByFilter(entries)
	for _, k := range catalog.Filters(groups) {
		fmt.Fprintf(w, "== %s (%d)\n", k, len(groups[k]))
		for _, e := range groups[k] {
			line(e)
		}
	}
}
