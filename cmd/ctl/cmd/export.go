package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jpfielding/vicar.go/pkg/render"
	"github.com/spf13/cobra"
)

// NewExportCmd writes one band as a grayscale PNG or BMP preview
func NewExportCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "export a band as PNG/BMP",
		Long:  "renders one band with a linear min/max (or 1%/99% percentile) stretch",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := uriArg(cmd, args)
			if err != nil {
				return err
			}
			outPath, _ := cmd.Flags().GetString("out")
			if outPath == "" {
				return fmt.Errorf("--out is required")
			}
			opts := render.Options{Format: render.FormatFor(outPath)}
			opts.Band, _ = cmd.Flags().GetInt("band")
			opts.Width, _ = cmd.Flags().GetInt("width")
			opts.Percentile, _ = cmd.Flags().GetBool("percentile")

			img, err := openImage(ctx, uri, sourceConfig(cmd))
			if err != nil {
				return err
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := render.Write(f, img, opts); err != nil {
				return fmt.Errorf("export %s: %w", uri, err)
			}
			slog.InfoContext(ctx, "exported", "uri", uri, "band", opts.Band, "out", outPath)
			return f.Close()
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("uri", "u", "", "VICAR file to export")
	pf.Int("band", 0, "band index")
	pf.StringP("out", "o", "", "output path (.png or .bmp)")
	pf.Int("width", 0, "resize to this width (0 keeps the original)")
	pf.Bool("percentile", false, "stretch between the 1st and 99th percentile")
	return cmd
}
