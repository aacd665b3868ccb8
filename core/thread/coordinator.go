package thread

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/obsidit/core"
	"github.com/gaurav-prasanna/obsidit/core/paths"
	"github.com/gaurav-prasanna/obsidit/core/template"
)

// notFoundSentinel marks a mirror page for a thread that cannot be shown.
const notFoundSentinel = "tweet not found"

// UnavailableNotice is shown to the user when the mirror has no thread.
const UnavailableNotice = "Unable to parse tweet thread."

// elementSeparator joins assembled thread elements.
const elementSeparator = "<br/><br/>"

// State is a step of one reconstruction run, used in logs.
type State string

const (
	StateIdle           State = "idle"
	StateDetecting      State = "detecting"
	StateFetching       State = "fetching"
	StateAwaitingProxy  State = "awaiting_proxy" // gateway fetch in flight, 404s retried there
	StateExtracting     State = "extracting"
	StateInliningImages State = "inlining_images"
	StateAssembling     State = "assembling"
	StateDone           State = "done"
	StateAborted        State = "aborted"
	StateFailed         State = "failed"
)

// Config configures a Coordinator.
type Config struct {
	Hosts    []string // thread hosts, default DefaultHost
	Mirror   string   // mirror origin, default DefaultMirror
	Template string   // note template
	Now      func() time.Time
	Logger   *slog.Logger
}

func (c *Config) defaults() {
	if len(c.Hosts) == 0 {
		c.Hosts = []string{DefaultHost}
	}
	if c.Mirror == "" {
		c.Mirror = DefaultMirror
	}
	c.Mirror = strings.TrimSuffix(c.Mirror, "/")
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Coordinator reconstructs a thread from its mirror rendering.
type Coordinator struct {
	detector   *Detector
	gateway    core.Gateway
	normalizer core.Normalizer
	notifier   core.Notifier
	config     Config
	logger     *slog.Logger
}

// NewCoordinator creates a Coordinator. notifier may be nil.
func NewCoordinator(gw core.Gateway, normalizer core.Normalizer, notifier core.Notifier, cfg Config) *Coordinator {
	cfg.defaults()
	return &Coordinator{
		detector:   NewDetector(cfg.Hosts...),
		gateway:    gw,
		normalizer: normalizer,
		notifier:   notifier,
		config:     cfg,
		logger:     cfg.Logger,
	}
}

// Detect reports whether pageURL is a thread this Coordinator handles.
func (c *Coordinator) Detect(pageURL string) bool {
	return c.detector.Match(pageURL)
}

// Reconstruct fetches the mirror rendering of the thread at pageURL, inlines
// its images and renders it as a note. docTitle is the title of the page the
// user is on; the mirror's own title is used when it is empty.
//
// A mirror page saying the thread was not found gives a zero Clip and a nil
// error after notifying the user. Fetch and image failures are returned.
func (c *Coordinator) Reconstruct(ctx context.Context, pageURL, docTitle string) (core.Clip, error) {
	log := c.logger.With("url", pageURL)
	log.Debug("thread: state", "state", StateIdle)
	log.Debug("thread: state", "state", StateDetecting)

	source, err := url.Parse(pageURL)
	if err != nil || !c.detector.Match(pageURL) {
		return core.Clip{}, fmt.Errorf("thread: not a thread permalink: %s", pageURL)
	}

	log.Debug("thread: state", "state", StateFetching)
	mirrorURL := c.config.Mirror + source.EscapedPath()
	log.Debug("thread: state", "state", StateAwaitingProxy, "mirror_url", mirrorURL)
	mirrorHTML, err := c.gateway.FetchWithRetry(ctx, mirrorURL)
	if err != nil {
		log.Debug("thread: state", "state", StateFailed, "error", err)
		return core.Clip{}, fmt.Errorf("fetch thread: %w", err)
	}

	if strings.Contains(strings.ToLower(mirrorHTML), notFoundSentinel) {
		log.Info("thread: mirror has no thread", "state", StateAborted, "mirror_url", mirrorURL)
		if c.notifier != nil {
			c.notifier.Notify(UnavailableNotice)
		}
		return core.Clip{}, nil
	}

	log.Debug("thread: state", "state", StateExtracting)
	tree, err := openSubtree(mirrorHTML)
	if err != nil {
		return core.Clip{}, err
	}
	defer tree.release()

	elements := tree.elements(source)
	if len(elements) == 0 {
		log.Warn("thread: no thread elements in mirror page", "mirror_url", mirrorURL)
	}
	if docTitle == "" {
		docTitle = tree.title
	}
	if docTitle == "" {
		docTitle = strings.ReplaceAll(strings.Trim(source.Path, "/"), "/", " ")
	}

	log.Debug("thread: state", "state", StateInliningImages, "elements", len(elements))
	parts, err := c.inline(ctx, Origin(pageURL), elements)
	if err != nil {
		log.Debug("thread: state", "state", StateFailed, "error", err)
		return core.Clip{}, err
	}

	log.Debug("thread: state", "state", StateAssembling)
	markdown, err := c.normalizer.Normalize(core.Fragment{
		HTML:      strings.Join(parts, elementSeparator),
		SourceURL: pageURL,
		Type:      core.SourceTweetThread,
	})
	if err != nil {
		return core.Clip{}, fmt.Errorf("normalize thread: %w", err)
	}

	note := template.Render(
		template.NewContext(c.config.Now(), pageURL, core.SourceTweetThread, markdown),
		c.config.Template,
	)
	title := paths.ClampTitle(strings.SplitN(docTitle, ":", 2)[0], paths.DefaultTitleMax)

	log.Debug("thread: state", "state", StateDone)
	return core.Clip{Markdown: note, Title: title}, nil
}

// inline turns elements into HTML parts. Images are fetched concurrently and
// each result is stored at its element's index, so the parts keep document
// order whatever order the requests finish in.
func (c *Coordinator) inline(ctx context.Context, sourceOrigin string, elements []core.ThreadElement) ([]string, error) {
	parts := make([]string, len(elements))
	g, gctx := errgroup.WithContext(ctx)

	for i, el := range elements {
		if el.Kind != core.ImageElement {
			parts[i] = html.EscapeString(el.Text)
			continue
		}
		imgURL := c.mirrorURL(sourceOrigin, el.URL)
		g.Go(func() error {
			uri, err := c.gateway.ToDataURI(gctx, imgURL)
			if err != nil {
				return fmt.Errorf("inline image %s: %w", imgURL, err)
			}
			parts[i] = `<img src="` + html.EscapeString(uri) + `" />`
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

// mirrorURL points an image URL that resolved against the source site back
// at the mirror.
func (c *Coordinator) mirrorURL(sourceOrigin, imgURL string) string {
	if sourceOrigin == "" {
		return imgURL
	}
	return strings.Replace(imgURL, sourceOrigin, c.config.Mirror, 1)
}
