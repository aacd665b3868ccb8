// Package cmd: clip command.
// This is the main command that orchestrates the pipeline:
// fetch → extract (or thread reconstruction) → normalize → template → link or file.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/obsidit/core"
	"github.com/gaurav-prasanna/obsidit/core/clip"
	"github.com/gaurav-prasanna/obsidit/core/extract"
	"github.com/gaurav-prasanna/obsidit/core/fetch"
	"github.com/gaurav-prasanna/obsidit/core/gateway"
	"github.com/gaurav-prasanna/obsidit/core/normalize"
	"github.com/gaurav-prasanna/obsidit/core/output"
	"github.com/gaurav-prasanna/obsidit/core/render"
	"github.com/gaurav-prasanna/obsidit/core/thread"
)

// Flag variables.
var (
	flagSelection string
	flagTitle     string
	flagPDF       bool
	flagMarkdown  bool
	flagJSON      bool
	flagOutputDir string
)

var clipCmd = &cobra.Command{
	Use:   "clip <url>",
	Short: "Clip a page, a selection or a thread into a note",
	Long: `Clip fetches a web page, extracts its main content, converts it to Markdown
and wraps it in the configured template. Thread permalinks are rebuilt from
their mirror rendering.

By default the note-creation link is printed. With a format flag the note is
rendered and written under --output_dir instead.

Examples:
  obsidit clip https://example.com/post
  obsidit clip https://twitter.com/jack/status/20
  pbpaste | obsidit clip https://example.com/post --selection - --title "Quote"
  obsidit clip https://example.com/post --pdf --output_dir ./vault`,
	Args: cobra.ExactArgs(1),
	RunE: runClip,
}

func init() {
	rootCmd.AddCommand(clipCmd)

	clipCmd.Flags().StringVar(&flagSelection, "selection", "", "Clip this HTML fragment instead of the page (file path, or - for stdin)")
	clipCmd.Flags().StringVar(&flagTitle, "title", "", "Document title (default: taken from the page)")

	// Output format flags (mutually exclusive, optional).
	clipCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Write a PDF note")
	clipCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Write a Markdown note")
	clipCmd.Flags().BoolVar(&flagJSON, "json", false, "Write a structured JSON note")

	clipCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory for written notes (default: current directory)")
}

// stderrNotifier prints user-facing notices.
type stderrNotifier struct{ w io.Writer }

func (n stderrNotifier) Notify(msg string) {
	fmt.Fprintln(n.w, "! "+msg)
}

func runClip(cmd *cobra.Command, args []string) error {
	rawURL := args[0]

	if err := validateFlags(); err != nil {
		return err
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", rawURL)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	renderer := selectRenderer()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger := slog.Default()
	fetcher := fetch.New(fetch.Config{
		Timeout:       cfg.Fetch.Timeout,
		UserAgent:     cfg.Fetch.UserAgent,
		MaxPageBytes:  cfg.Fetch.MaxPageBytes,
		MaxImageBytes: cfg.Fetch.MaxImageBytes,
		Logger:        logger,
	})

	// The gateway serves the privileged requests of this clip session. It
	// outlives ctx so the deferred indicator reset is still answered after
	// Ctrl-C; in-flight requests carry ctx themselves.
	gw := gateway.New(fetcher, gateway.NewSessionStore(), logger)
	gwCtx, stopGateway := context.WithCancel(context.WithoutCancel(ctx))
	defer stopGateway()
	go gw.Run(gwCtx)
	client := gw.Client()

	session := gw.Sessions().Open()
	defer gw.Sessions().Close(session)
	if err := client.ReportReady(ctx, session); err != nil {
		return err
	}
	if err := client.SetIndicator(ctx, session, true); err != nil {
		return err
	}
	defer clearIndicator(ctx, client, session, logger)

	normalizer := normalize.New()
	coordinator := thread.NewCoordinator(client, normalizer, stderrNotifier{cmd.ErrOrStderr()}, thread.Config{
		Hosts:    cfg.Thread.Hosts,
		Mirror:   cfg.Thread.Mirror,
		Template: cfg.Template,
		Logger:   logger,
	})
	clipper := clip.New(extract.New(), normalizer, coordinator, clip.Options{
		Template: cfg.Template,
		Logger:   logger,
	})

	src, err := buildSource(ctx, cmd, rawURL, fetcher, coordinator)
	if err != nil {
		return err
	}

	result, err := clipper.Clip(ctx, src)
	if err != nil {
		return err
	}
	if result.Empty() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Nothing to clip.")
		return nil
	}

	if renderer == nil {
		fmt.Fprintln(cmd.OutOrStdout(), output.BuildLink(cfg.Path, result.Title, result.Markdown))
		return nil
	}

	typ := src.Type
	if typ == core.SourcePage && coordinator.Detect(rawURL) {
		typ = core.SourceTweetThread
	}
	meta := core.NoteMetadata{
		URL:       rawURL,
		Domain:    parsed.Host,
		Title:     result.Title,
		Type:      typ,
		ClippedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := renderer.Render(result.Markdown, meta)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.WriteNote(cfg.Path, result.Title, data, renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
	return nil
}

// buildSource assembles what the pipeline clips: the selection when one is
// given, nothing but the URL for a thread, otherwise the fetched page.
func buildSource(ctx context.Context, cmd *cobra.Command, rawURL string, fetcher core.Fetcher, coordinator *thread.Coordinator) (core.Source, error) {
	src := core.Source{URL: rawURL, Title: flagTitle, Type: core.SourcePage}

	if flagSelection != "" {
		html, err := readSelection(cmd.InOrStdin(), flagSelection)
		if err != nil {
			return core.Source{}, err
		}
		src.HTML = html
		src.Type = core.SourceSelection
		if src.Title != "" {
			return src, nil
		}
	} else if coordinator.Detect(rawURL) {
		return src, nil
	}

	// The page is needed for its content, or for the title of a selection.
	result, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return core.Source{}, fmt.Errorf("fetch: %w", err)
	}
	if src.Title == "" {
		src.Title = extract.DocumentTitle(result.HTML)
	}
	if src.Type == core.SourcePage {
		src.HTML = result.HTML
	}
	return src, nil
}

// clearIndicator switches the session indicator off even when ctx was
// cancelled. A stopped gateway answers ErrClosed, which is only logged.
func clearIndicator(ctx context.Context, client *gateway.Client, session string, logger *slog.Logger) {
	if err := client.SetIndicator(context.WithoutCancel(ctx), session, false); err != nil {
		logger.Debug("clip: clearing indicator", "session", session, "error", err)
	}
}

func readSelection(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading selection: %w", err)
	}
	return string(data), nil
}

// validateFlags checks that at most one output format is chosen.
func validateFlags() error {
	formatCount := 0
	for _, f := range []bool{flagPDF, flagMarkdown, flagJSON} {
		if f {
			formatCount++
		}
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	if formatCount == 0 && flagOutputDir != "" {
		return fmt.Errorf("--output_dir needs an output format: --pdf, --markdown or --json")
	}
	return nil
}

// selectRenderer returns the renderer for the chosen format, or nil when the
// link should be printed instead.
func selectRenderer() core.Renderer {
	switch {
	case flagMarkdown:
		return render.NewMarkdownRenderer()
	case flagJSON:
		return render.NewJSONRenderer()
	case flagPDF:
		return render.NewPDFRenderer()
	default:
		return nil
	}
}
