// Package cli provides the one-shot snapshot command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Bahjat/page-snapshot/internal/analyzer"
	"github.com/Bahjat/page-snapshot/internal/model"
	"github.com/Bahjat/page-snapshot/internal/pageinsight"
	"github.com/Bahjat/page-snapshot/internal/platform/config"
	"github.com/Bahjat/page-snapshot/internal/platform/errs"
	"github.com/Bahjat/page-snapshot/internal/platform/logger"
)

// Exit codes returned by Execute.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitBlocked = 2
)

// ProviderFactory builds the snapshot engine for a resolved configuration.
type ProviderFactory func(cfg config.Config, log *slog.Logger) analyzer.PageInsightProvider

// DefaultProvider wires the real fetch/probe pipeline.
func DefaultProvider(cfg config.Config, log *slog.Logger) analyzer.PageInsightProvider {
	return pageinsight.New(cfg, log)
}

// flagBindings maps CLI flags onto configuration keys so that flag, then
// environment, then default is the resolution order.
var flagBindings = []struct {
	key  string
	flag string
}{
	{config.KeyLinkProbeCap, "probe-cap"},
	{config.KeyFetchTimeout, "fetch-timeout"},
	{config.KeyProbeTimeout, "probe-timeout"},
	{config.KeyRequestTimeout, "timeout"},
	{config.KeyPrerenderEndpoint, "prerender-endpoint"},
	{config.KeyUserAgent, "user-agent"},
	{config.KeyLogLevel, "log-level"},
	{config.KeyLogFormat, "log-format"},
	{config.KeyAllowPrivateNetworks, "allow-private-networks"},
}

// NewRootCommand returns the snapshot command. Output goes to the command's
// stdout; logs go to its stderr.
func NewRootCommand(newProvider ProviderFactory) *cobra.Command {
	v := config.New()
	var (
		prerender bool
		format    string
	)

	cmd := &cobra.Command{
		Use:   "snapshot <url>",
		Short: "Fetch a page and print its SEO/content profile",
		Long: `snapshot fetches a single page with browser-like headers, falls back to a
prerender proxy for JavaScript shells, and prints metadata, headings, links,
structured data and robots directives as JSON or YAML.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, newProvider, model.SnapshotRequest{URL: args[0], Prerender: prerender}, format)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&prerender, "prerender", "p", false, "Always render through the prerender proxy")
	flags.StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	flags.Int("probe-cap", pageinsight.DefaultProbeCap, "Maximum distinct external links to probe")
	flags.Duration("fetch-timeout", 0, "Deadline for each page fetch (default from FETCH_TIMEOUT)")
	flags.Duration("probe-timeout", 0, "Deadline for each link probe (default from PROBE_TIMEOUT)")
	flags.Duration("timeout", 0, "Deadline for the whole snapshot (default from REQUEST_TIMEOUT)")
	flags.String("prerender-endpoint", pageinsight.DefaultPrerenderEndpoint, "Prerender proxy URL prefix")
	flags.String("user-agent", config.DefaultUserAgent, "User-Agent sent on every request")
	flags.String("log-level", "ERROR", "Log level: DEBUG, INFO, WARN, ERROR")
	flags.String("log-format", "json", "Log format: json or text")
	flags.Bool("allow-private-networks", false, "Permit fetching private and loopback addresses")

	for _, b := range flagBindings {
		if err := v.BindPFlag(b.key, flags.Lookup(b.flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", b.flag, err)
		}
	}

	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper, newProvider ProviderFactory, req model.SnapshotRequest, format string) error {
	format = strings.ToLower(format)
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	service := analyzer.NewService(newProvider(cfg, log), log)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	profile, err := service.Analyze(ctx, req)
	if err != nil {
		return err
	}
	return writeProfile(cmd.OutOrStdout(), profile, format)
}

func writeProfile(w io.Writer, profile *model.PageProfile, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(profile); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profile); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errs.KindOf(err) == errs.Blocked:
		return ExitBlocked
	default:
		return ExitFailure
	}
}

// Execute runs the snapshot command with the real pipeline and returns the
// process exit status.
func Execute(ctx context.Context) int {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitFailure
	}

	err := NewRootCommand(DefaultProvider).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return ExitCode(err)
}
