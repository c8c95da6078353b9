// Command metadata-extractor shows best-effort metadata for a file, writes it
// as a text report, or serves the same over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ankit-chaubey/metadata-extractor/api"
	"github.com/ankit-chaubey/metadata-extractor/core"
	"github.com/ankit-chaubey/metadata-extractor/core/config"
	"github.com/ankit-chaubey/metadata-extractor/core/document"
	"github.com/ankit-chaubey/metadata-extractor/core/image"
	"github.com/ankit-chaubey/metadata-extractor/core/resolve"
	"github.com/ankit-chaubey/metadata-extractor/core/session"
)

var (
	configPath string
	jsonOut    bool
	yamlOut    bool
	outputDir  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "metadata-extractor",
		Short:         "Extract metadata from images, PDFs, Word documents and more",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (yaml, toml or json)")

	viewCmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Print the metadata of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runView,
	}
	viewCmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")
	viewCmd.Flags().BoolVar(&yamlOut, "yaml", false, "Print YAML")
	viewCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	reportCmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Write metadata_<file>.txt with one \"Label: Value\" line per field",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	reportCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory for the report")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	rootCmd.AddCommand(viewCmd, reportCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		core.PrintError(err.Error())
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	resolver *resolve.Resolver
}

func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	opts := resolve.Options{
		Converter:     document.DocxConverter{MaxBodySize: cfg.DocxMaxBody},
		DecodeTimeout: cfg.DecodeTimeout,
		TimeLayout:    cfg.TimeLayout,
		Logger:        logger,
	}
	if cfg.Exif {
		opts.Exif = image.GoexifReader{}
	}
	return &app{cfg: cfg, logger: logger, resolver: resolve.New(opts)}, nil
}

func (a *app) resolveFile(ctx context.Context, path string) (core.SelectedFile, *core.Record, error) {
	f, err := core.OpenFile(path)
	if err != nil {
		return f, nil, err
	}
	rec, err := a.resolver.Resolve(ctx, f)
	return f, rec, err
}

func runView(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	f, rec, err := a.resolveFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	format := core.OutputText
	switch {
	case jsonOut:
		format = core.OutputJSON
	case yamlOut:
		format = core.OutputYAML
	}
	p := core.NewPrinter(format)
	p.Writer = cmd.OutOrStdout()
	return p.PrintRecord(f.Name, rec)
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	f, rec, err := a.resolveFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := filepath.Join(outputDir, core.ReportFileName(f.Name))
	if err := os.WriteFile(out, []byte(core.Report(rec)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Wrote "+out)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewManager(a.resolver, a.logger)
	go func() {
		ticker := time.NewTicker(a.cfg.Session.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessions.CleanupIdle(a.cfg.Session.IdleTimeout)
			case <-ctx.Done():
				return
			}
		}
	}()

	h := api.NewHandler(a.resolver, sessions, a.logger)
	e := api.NewServer(h, a.cfg.Server.BodyLimit, a.logger)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.cfg.Server.Addr)
		errCh <- e.Start(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
