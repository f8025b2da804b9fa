package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"resumeftp/config"
	"resumeftp/internal/ftpclient"
	"resumeftp/internal/metrics"
	"resumeftp/internal/transfer"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "resumeftp",
	Short: "Resumable FTP transfer tool",
	Long: `resumeftp is a command-line FTP client that resumes interrupted transfers.
Downloads continue from the length of an existing local file and uploads continue
from the size the server already holds.
Configuration is loaded from .env file or environment variables`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if isVerbose(cmd) {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	},
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)

	rootCmd.PersistentFlags().String("host", "", "Override FTP host from config")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve transfer metrics on this address while the command runs (e.g. :9100)")
}

func getHost(cmd *cobra.Command) string {
	host, _ := cmd.Flags().GetString("host")
	if host != "" {
		return host
	}
	return cfg.Host
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// connect opens an authenticated session using the loaded config and the
// --host override.
func connect(ctx context.Context, cmd *cobra.Command) (*ftpclient.Session, error) {
	settings := *cfg
	settings.Host = getHost(cmd)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return ftpclient.Connect(ctx, settings.Host, settings.Port, settings.Username, settings.Password, ftpclient.Options{
		Timeout:     settings.Timeout,
		DisableEPSV: settings.DisableEPSV,
		Logger:      slog.Default(),
	})
}

func newEngine(session transfer.Session) *transfer.Engine {
	return transfer.NewEngine(session,
		transfer.WithLogger(slog.Default()),
		transfer.WithChunkSize(cfg.ChunkSize),
		transfer.WithRateLimit(cfg.RateLimit),
	)
}

// serveMetrics exposes the transfer collectors when --metrics-addr is set.
// The returned func stops the server.
func serveMetrics(cmd *cobra.Command) func() {
	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		return func() {}
	}

	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		slog.Warn("Failed to register metrics", "error", err)
		return func() {}
	}

	srv := &http.Server{Addr: addr, Handler: metrics.Handler(reg)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("Metrics server stopped", "addr", addr, "error", err)
		}
	}()
	slog.Debug("Serving metrics", "addr", addr)

	return func() {
		_ = srv.Close()
	}
}

func isConfirmation(response string) bool {
	return slices.Contains([]string{"y", "yes"}, strings.ToLower(strings.TrimSpace(response)))
}
