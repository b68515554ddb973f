package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jpfielding/vicar.go/pkg/logging"
	"github.com/jpfielding/vicar.go/pkg/source"
	"github.com/jpfielding/vicar.go/pkg/vicar"
	"github.com/spf13/cobra"
)

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	var logFile io.Closer
	cmd := &cobra.Command{
		Use:   "vicarctl",
		Short: "a CLI to inspect VICAR planetary images",
		Long:  "reads VICAR labels and pixels from files, URLs and gs:// objects",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")

			// Parse log level
			var level slog.Level
			levelErr := level.UnmarshalText([]byte(strings.ToUpper(logLevel)))
			if levelErr != nil {
				level = slog.LevelInfo
			}

			var out io.Writer = os.Stdout
			if path, _ := cmd.Flags().GetString("log-file"); path != "" {
				rf := logging.RollingFile{Path: path}
				rf.MaxSizeMB, _ = cmd.Flags().GetInt("log-max-size")
				rf.MaxBackups, _ = cmd.Flags().GetInt("log-max-backups")
				rf.MaxAgeDays, _ = cmd.Flags().GetInt("log-max-age")
				w := rf.Writer()
				logFile = w
				out = io.MultiWriter(os.Stdout, w)
			}
			slog.SetDefault(logging.Logger(out, false, level))

			if levelErr != nil {
				slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", logLevel, "error", levelErr)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewLabelsCmd(ctx),
		NewDecodeCmd(ctx),
		NewAnalyzeCmd(ctx),
		NewExportCmd(ctx),
		NewScanCmd(ctx),
		NewReplCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-file", "", "also write logs to this rotating file")
	pf.Int("log-max-size", 100, "log file size in MB before rotation")
	pf.Int("log-max-backups", 3, "rotated log files to keep")
	pf.Int("log-max-age", 28, "days to keep rotated log files")
	pf.Bool("insecure", false, "skip TLS verification for https sources")
	pf.Duration("http-timeout", time.Minute, "timeout for http sources")
	pf.BoolP("verbose", "v", false, "dump http requests and responses to stderr")
	return cmd
}

func printCommandTree(cmd *cobra.Command, indent int) {
	fmt.Println(strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(gitsha)
		},
	}
	return cmd
}

// sourceConfig reads the source flags shared by every command
func sourceConfig(cmd *cobra.Command) source.Config {
	cfg := source.Config{}
	cfg.InsecureTLS, _ = cmd.Flags().GetBool("insecure")
	cfg.HTTPTimeout, _ = cmd.Flags().GetDuration("http-timeout")
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Dump = os.Stderr
	}
	return cfg
}

// uriArg takes the uri from --uri or the first argument
func uriArg(cmd *cobra.Command, args []string) (string, error) {
	uri, _ := cmd.Flags().GetString("uri")
	if uri == "" && len(args) > 0 {
		uri = args[0]
	}
	if uri == "" {
		return "", fmt.Errorf("uri is required. Use --uri flag or provide as argument")
	}
	return uri, nil
}

// openImage fetches and fully decodes the VICAR image at uri
func openImage(ctx context.Context, uri string, cfg source.Config) (*vicar.Image, error) {
	src, err := source.Open(ctx, uri, cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	img, err := vicar.Decode(src, src.Name())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", uri, err)
	}
	return img, nil
}
