package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jpfielding/vicar.go/pkg/source"
	"github.com/jpfielding/vicar.go/pkg/vicar"
	"github.com/spf13/cobra"
)

// NewLabelsCmd prints the labels of a VICAR file without decoding pixels
func NewLabelsCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "VICAR labels",
		Long:  "prints the beginning-of-file labels, and the EOL labels when present",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := uriArg(cmd, args)
			if err != nil {
				return err
			}
			outFormat, _ := cmd.Flags().GetString("format")
			return runLabels(ctx, os.Stdout, uri, sourceConfig(cmd), outFormat)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("uri", "u", "", "VICAR URI (path, file://, http(s)://, gs:// or - for stdin)")
	pf.StringP("format", "f", "json", "output format (text|json)")
	return cmd
}

type labelsOutput struct {
	Labels    *vicar.Labels `json:"labels"`
	EOLLabels *vicar.Labels `json:"eol_labels,omitempty"`
}

func runLabels(ctx context.Context, w io.Writer, uri string, cfg source.Config, outFormat string) error {
	src, err := source.Open(ctx, uri, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	out := labelsOutput{}
	if out.Labels, err = vicar.ReadLabels(src); err != nil {
		return fmt.Errorf("labels %s: %w", uri, err)
	}
	if out.Labels.HasEOL() {
		c, err := vicar.Resolve(out.Labels)
		if err != nil {
			return fmt.Errorf("labels %s: %w", uri, err)
		}
		if out.EOLLabels, err = vicar.ReadEOLLabels(src, c); err != nil {
			return fmt.Errorf("labels %s: %w", uri, err)
		}
	}

	switch outFormat {
	case "text":
		fmt.Fprint(w, out.Labels)
		if out.EOLLabels != nil {
			fmt.Fprintln(w, "# EOL")
			fmt.Fprint(w, out.EOLLabels)
		}
		return nil
	default:
		return json.NewEncoder(w).Encode(out)
	}
}

// NewDecodeCmd decodes a full image and prints a JSON summary
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "VICAR decode",
		Long:  "decodes labels, binary header, prefixes and pixels and prints a JSON summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := uriArg(cmd, args)
			if err != nil {
				return err
			}
			img, err := openImage(ctx, uri, sourceConfig(cmd))
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(summarize(img))
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("uri", "u", "", "VICAR URI (path, file://, http(s)://, gs:// or - for stdin)")
	return cmd
}

type decodeSummary struct {
	Name         string          `json:"name"`
	Layout       string          `json:"layout"`
	Element      string          `json:"element"`
	Bands        int             `json:"bands"`
	Lines        int             `json:"lines"`
	Samples      int             `json:"samples"`
	HeaderBytes  int             `json:"binary_header_bytes"`
	PrefixBytes  int             `json:"binary_prefix_bytes"`
	HeaderLabels vicar.ObjectMap `json:"binary_header_labels,omitempty"`
	Labels       *vicar.Labels   `json:"labels"`
	EOLLabels    *vicar.Labels   `json:"eol_labels,omitempty"`
}

func summarize(img *vicar.Image) decodeSummary {
	s := decodeSummary{
		Name:         img.Name,
		Layout:       img.Layout.String(),
		Element:      img.Data.Element().String(),
		HeaderBytes:  len(img.BinaryHeader),
		HeaderLabels: img.BinaryHeaderLabels(),
		Labels:       img.Labels,
		EOLLabels:    img.EOLLabels,
	}
	s.Bands, s.Lines, s.Samples = img.Dims()
	if img.Layout.NBB > 0 {
		s.PrefixBytes = img.Layout.Records() * img.Layout.NBB
	}
	return s
}
