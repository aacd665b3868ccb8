// Package clip runs a clip request end to end.
// Pages go through article extraction, selections are used as they are, and
// thread permalinks are handed to the thread Coordinator. Every path ends in
// the same normalize → template step.
package clip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gaurav-prasanna/obsidit/core"
	"github.com/gaurav-prasanna/obsidit/core/paths"
	"github.com/gaurav-prasanna/obsidit/core/template"
)

// ThreadReconstructor rebuilds a thread from its permalink.
type ThreadReconstructor interface {
	Detect(pageURL string) bool
	Reconstruct(ctx context.Context, pageURL, docTitle string) (core.Clip, error)
}

// Options configures a Clipper.
type Options struct {
	Template string
	Now      func() time.Time
	Logger   *slog.Logger
}

// Clipper turns a Source into a templated note.
type Clipper struct {
	extractor  core.Extractor
	normalizer core.Normalizer
	threads    ThreadReconstructor
	template   string
	now        func() time.Time
	logger     *slog.Logger
}

// New creates a Clipper. threads may be nil to disable thread reconstruction.
func New(extractor core.Extractor, normalizer core.Normalizer, threads ThreadReconstructor, opts Options) *Clipper {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Clipper{
		extractor:  extractor,
		normalizer: normalizer,
		threads:    threads,
		template:   opts.Template,
		now:        opts.Now,
		logger:     opts.Logger,
	}
}

// Clip produces the note for src. A zero Clip with a nil error means there is
// nothing to clip; callers check Clip.Empty rather than the error.
func (c *Clipper) Clip(ctx context.Context, src core.Source) (core.Clip, error) {
	log := c.logger.With("clip_id", uuid.NewString(), "url", src.URL, "type", src.Type)
	start := time.Now()

	var (
		result core.Clip
		err    error
	)
	switch {
	case src.Type == core.SourceSelection:
		result, err = c.clipSelection(src)
	case c.threads != nil && c.threads.Detect(src.URL):
		log.Debug("clip: thread permalink detected")
		result, err = c.threads.Reconstruct(ctx, src.URL, src.Title)
	default:
		result, err = c.clipPage(src)
	}
	if err != nil {
		log.Warn("clip: failed", "error", err)
		return core.Clip{}, err
	}
	if result.Empty() {
		log.Info("clip: nothing to clip")
		return core.Clip{}, nil
	}

	log.Info("clip: done", "title", result.Title, "bytes", len(result.Markdown),
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (c *Clipper) clipPage(src core.Source) (core.Clip, error) {
	article, err := c.extractor.Extract(src.HTML)
	if err != nil {
		return core.Clip{}, fmt.Errorf("extract: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return core.Clip{}, nil
	}

	title := article.Title
	if title == "" {
		title = src.Title
	}
	return c.render(core.Fragment{HTML: article.Content, SourceURL: src.URL, Type: core.SourcePage}, title)
}

func (c *Clipper) clipSelection(src core.Source) (core.Clip, error) {
	if strings.TrimSpace(src.HTML) == "" {
		return core.Clip{}, nil
	}
	return c.render(core.Fragment{HTML: src.HTML, SourceURL: src.URL, Type: core.SourceSelection}, src.Title)
}

func (c *Clipper) render(f core.Fragment, title string) (core.Clip, error) {
	markdown, err := c.normalizer.Normalize(f)
	if err != nil {
		return core.Clip{}, fmt.Errorf("normalize: %w", err)
	}
	note := template.Render(template.NewContext(c.now(), f.SourceURL, f.Type, markdown), c.template)
	return core.Clip{
		Markdown: note,
		Title:    paths.ClampTitle(strings.TrimSpace(title), paths.DefaultTitleMax),
	}, nil
}
