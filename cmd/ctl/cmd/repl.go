package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jpfielding/vicar.go/pkg/source"
	"github.com/jpfielding/vicar.go/pkg/vicar"
	"github.com/spf13/cobra"
)

// NewReplCmd reads paths interactively and summarises each image
func NewReplCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "interactive VICAR reader",
		Long:  "reads one path per line until an empty line, exit or quit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(ctx, os.Stdin, os.Stdout, sourceConfig(cmd))
		},
	}
	return cmd
}

func runRepl(ctx context.Context, in io.Reader, w io.Writer, cfg source.Config) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(w, "vicar> ")
		if !sc.Scan() {
			fmt.Fprintln(w)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "", "exit", "quit":
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := openImage(ctx, line, cfg)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		printSummary(w, img)
	}
}

func printSummary(w io.Writer, img *vicar.Image) {
	bands, lines, samples := img.Dims()
	fmt.Fprintf(w, "%s: %d bands x %d lines x %d samples (%s)\n", img.Name, bands, lines, samples, img.Layout.Format)
	if s := vicar.TargetName(img.Labels); s != "" {
		fmt.Fprintf(w, "  target: %s\n", s)
	}
	if s := vicar.InstrumentID(img.Labels); s != "" {
		fmt.Fprintf(w, "  instrument: %s\n", s)
	}
	for b := 0; b < bands; b++ {
		if st, err := vicar.BandStats(img.Data, b); err == nil {
			fmt.Fprintf(w, "  band %d: min=%g max=%g mean=%g\n", b, st.Min, st.Max, st.Mean)
		}
	}
}
