package cmd

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/jpfielding/vicar.go/pkg/source"
	"github.com/jpfielding/vicar.go/pkg/vicar"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze cobra command
func NewAnalyzeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze VICAR file structure",
		Long:  "Parses and displays detailed information about a VICAR file including metadata, label problems and per-band statistics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := uriArg(cmd, args)
			if err != nil {
				return err
			}
			dumpBand, _ := cmd.Flags().GetInt("dump-band")
			out, _ := cmd.Flags().GetString("out")
			return runAnalyze(ctx, os.Stdout, uri, sourceConfig(cmd), dumpBand, out)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("uri", "u", "", "VICAR file to analyze")
	pf.Int("dump-band", -1, "Index of band to dump to disk as little endian float64")
	pf.String("out", "", "Output path for dumped band")

	return cmd
}

// runAnalyze prints metadata, validation problems and band statistics
func runAnalyze(ctx context.Context, w io.Writer, uri string, cfg source.Config, dumpBand int, outPath string) error {
	src, err := source.Open(ctx, uri, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	labels, err := vicar.ReadLabels(src)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	fmt.Fprintf(w, "File: %s (%d bytes)\n\n", src.Name(), src.Size())
	fmt.Fprintln(w, "=== Key Metadata ===")
	fmt.Fprintf(w, "LBLSIZE: %d\n", vicar.GetLabelSize(labels))
	fmt.Fprintf(w, "Bands: %d\n", vicar.GetBands(labels))
	fmt.Fprintf(w, "Lines: %d\n", vicar.GetLines(labels))
	fmt.Fprintf(w, "Samples: %d\n", vicar.GetSamples(labels))
	if nf, ok := labels.System.Format(); ok {
		fmt.Fprintf(w, "Format: %s\n", nf)
	}
	if org, ok := labels.System.Org(); ok {
		fmt.Fprintf(w, "Org: %s\n", org)
	}
	if host, ok := labels.System.Host(); ok {
		fmt.Fprintf(w, "Host: %s\n", host)
	}
	fmt.Fprintf(w, "Properties: %d\n", len(labels.Properties))
	fmt.Fprintf(w, "Tasks: %d\n", len(labels.Tasks))
	if s := vicar.TargetName(labels); s != "" {
		fmt.Fprintf(w, "Target: %s\n", s)
	}
	if s := vicar.InstrumentID(labels); s != "" {
		fmt.Fprintf(w, "Instrument: %s\n", s)
	}
	if s := vicar.ImageTime(labels); s != "" {
		fmt.Fprintf(w, "ImageTime: %s\n", s)
	}
	if f := vicar.FilterNames(labels); len(f) > 0 {
		fmt.Fprintf(w, "Filters: %v\n", f)
	}
	if e, ok := vicar.ExposureDuration(labels); ok {
		fmt.Fprintf(w, "Exposure: %g\n", e)
	}
	fmt.Fprintln(w)

	if problems := vicar.ValidateLabels(labels); len(problems) > 0 {
		fmt.Fprintln(w, "=== Label Problems ===")
		for _, p := range problems {
			fmt.Fprintf(w, "- %v\n", p)
		}
		fmt.Fprintln(w)
	}

	img, err := vicar.Decode(src, src.Name())
	if err != nil {
		fmt.Fprintf(w, "No pixel data: %v\n", err)
		return nil
	}

	fmt.Fprintln(w, "=== Pixel Data ===")
	fmt.Fprintf(w, "Layout: %s\n", img.Layout)
	fmt.Fprintf(w, "Binary header: %d bytes\n", len(img.BinaryHeader))
	if img.EOLLabels != nil {
		fmt.Fprintf(w, "EOL labels: %d system, %d properties\n", len(img.EOLLabels.System), len(img.EOLLabels.Properties))
	}

	bands, _, _ := img.Dims()
	if dumpBand >= 0 {
		if dumpBand >= bands {
			return fmt.Errorf("band index %d out of bounds (0-%d)", dumpBand, bands-1)
		}
		if outPath == "" {
			outPath = fmt.Sprintf("band_%d.bin", dumpBand)
		}
		return dumpBandFile(w, img, dumpBand, outPath)
	}

	for b := 0; b < bands; b++ {
		st, err := vicar.BandStats(img.Data, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n--- Band %d ---\n", b)
		fmt.Fprintf(w, "Finite samples: %d\n", st.Count)
		fmt.Fprintf(w, "Range: min=%g, max=%g\n", st.Min, st.Max)
		fmt.Fprintf(w, "Mean: %g stddev=%g\n", st.Mean, st.StdDev)
		fmt.Fprintf(w, "Percentiles: p01=%g, p99=%g\n", st.P01, st.P99)
	}
	return nil
}

func dumpBandFile(w io.Writer, img *vicar.Image, band int, outPath string) error {
	samples, err := img.Band(band)
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Fprintf(w, "Dumping band %d (%d bytes) to %s\n", band, len(samples)*8, outPath)
	bw := bufio.NewWriter(f)
	if err := binary.Write(bw, binary.LittleEndian, samples); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}
