package thread

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gaurav-prasanna/obsidit/core"
)

const threadURL = "https://twitter.com/jack/status/20"

type fakeGateway struct {
	mu        sync.Mutex
	pages     map[string]string
	pageErr   error
	fetched   []string
	imageReqs []string
	image     func(ctx context.Context, url string) (string, error)
}

func (g *fakeGateway) FetchWithRetry(_ context.Context, url string) (string, error) {
	g.mu.Lock()
	g.fetched = append(g.fetched, url)
	g.mu.Unlock()
	if g.pageErr != nil {
		return "", g.pageErr
	}
	return g.pages[url], nil
}

func (g *fakeGateway) ToDataURI(ctx context.Context, url string) (string, error) {
	g.mu.Lock()
	g.imageReqs = append(g.imageReqs, url)
	g.mu.Unlock()
	return g.image(ctx, url)
}

// recordingNormalizer returns a fixed string and keeps the fragment it got.
type recordingNormalizer struct {
	got core.Fragment
}

func (n *recordingNormalizer) Normalize(f core.Fragment) (string, error) {
	n.got = f
	return "MD", nil
}

type recordingNotifier struct {
	msgs []string
}

func (n *recordingNotifier) Notify(msg string) {
	n.msgs = append(n.msgs, msg)
}

func mirrorPage(items ...string) string {
	return `<!DOCTYPE html><html><head><title>jack (@jack): "thread"</title></head><body>
<div class="conversation"><div class="main-thread">` + strings.Join(items, "\n") + `</div></div>
<div class="replies"><div class="timeline-item"><div class="tweet-content">a reply</div></div></div>
</body></html>`
}

func textItem(text string) string {
	return `<div class="timeline-item"><div class="tweet-content media-body">` + text + `</div></div>`
}

func imageItem(src string) string {
	return `<div class="timeline-item"><div class="attachments"><div class="attachment image"><a class="still-image" href="` +
		src + `"><img src="` + src + `" alt=""></a></div></div></div>`
}

func newTestCoordinator(gw core.Gateway, n core.Normalizer, notifier core.Notifier) *Coordinator {
	return NewCoordinator(gw, n, notifier, Config{
		Template: "type=${type} url=${url}\n${content}",
		Now:      func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
}

func TestReconstruct_PreservesOrder(t *testing.T) {
	// WHAT: element 0's image resolves last but still comes first.
	// WHY: image requests run concurrently; results are gathered by index.
	lastDone := make(chan struct{})
	gw := &fakeGateway{
		pages: map[string]string{
			"https://nitter.it/jack/status/20": mirrorPage(
				imageItem("/pic/first.jpg"),
				textItem("hello <b>world</b>"),
				imageItem("/pic/last.jpg"),
			),
		},
		image: func(ctx context.Context, url string) (string, error) {
			switch url {
			case "https://nitter.it/pic/first.jpg":
				select {
				case <-lastDone:
				case <-time.After(5 * time.Second):
					return "", errors.New("last image never resolved")
				}
				return "data:image/jpeg;base64,FIRST", nil
			case "https://nitter.it/pic/last.jpg":
				defer close(lastDone)
				return "data:image/jpeg;base64,LAST", nil
			}
			return "", errors.New("unexpected image " + url)
		},
	}
	norm := &recordingNormalizer{}
	c := newTestCoordinator(gw, norm, nil)

	clip, err := c.Reconstruct(context.Background(), threadURL, `Jack on Twitter: "hi"`)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}

	want := `<img src="data:image/jpeg;base64,FIRST" />` +
		"<br/><br/>hello world<br/><br/>" +
		`<img src="data:image/jpeg;base64,LAST" />`
	if norm.got.HTML != want {
		t.Errorf("assembled fragment:\n got %q\nwant %q", norm.got.HTML, want)
	}
	if norm.got.Type != core.SourceTweetThread {
		t.Errorf("fragment type: got %q", norm.got.Type)
	}
	if clip.Markdown != "type=tweet_thread url="+threadURL+"\nMD" {
		t.Errorf("markdown: got %q", clip.Markdown)
	}
	if clip.Title != "Jack on Twitter" {
		t.Errorf("title: got %q", clip.Title)
	}
	if len(gw.fetched) != 1 || gw.fetched[0] != "https://nitter.it/jack/status/20" {
		t.Errorf("fetched: %v", gw.fetched)
	}
}

func TestReconstruct_TweetNotFoundIsSoft(t *testing.T) {
	gw := &fakeGateway{
		pages: map[string]string{"https://nitter.it/jack/status/20": "<div class=\"error-panel\">Tweet Not Found</div>"},
		image: func(context.Context, string) (string, error) { return "", errors.New("must not be called") },
	}
	notifier := &recordingNotifier{}
	c := newTestCoordinator(gw, &recordingNormalizer{}, notifier)

	clip, err := c.Reconstruct(context.Background(), threadURL, "title")
	if err != nil {
		t.Fatalf("soft failure must not return an error: %v", err)
	}
	if !clip.Empty() || clip.Markdown != "" || clip.Title != "" {
		t.Errorf("expected empty clip, got %+v", clip)
	}
	if len(notifier.msgs) != 1 || notifier.msgs[0] != UnavailableNotice {
		t.Errorf("notices: %v", notifier.msgs)
	}
	if len(gw.imageReqs) != 0 {
		t.Errorf("image requests after abort: %v", gw.imageReqs)
	}
}

func TestReconstruct_FetchErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	gw := &fakeGateway{pageErr: boom}
	_, err := newTestCoordinator(gw, &recordingNormalizer{}, nil).Reconstruct(context.Background(), threadURL, "t")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

func TestReconstruct_ImageErrorIsFatal(t *testing.T) {
	boom := errors.New("image 500")
	gw := &fakeGateway{
		pages: map[string]string{"https://nitter.it/jack/status/20": mirrorPage(textItem("a"), imageItem("/pic/x.jpg"))},
		image: func(context.Context, string) (string, error) { return "", boom },
	}
	norm := &recordingNormalizer{}
	_, err := newTestCoordinator(gw, norm, nil).Reconstruct(context.Background(), threadURL, "t")
	if !errors.Is(err, boom) {
		t.Fatalf("expected image error, got %v", err)
	}
	if norm.got.HTML != "" {
		t.Error("normalizer must not run after an image failure")
	}
}

func TestReconstruct_TitleFromMirror(t *testing.T) {
	gw := &fakeGateway{
		pages: map[string]string{"https://nitter.it/jack/status/20": mirrorPage(textItem("only text"))},
	}
	clip, err := newTestCoordinator(gw, &recordingNormalizer{}, nil).Reconstruct(context.Background(), threadURL, "")
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if clip.Title != "jack (@jack)" {
		t.Errorf("title: got %q", clip.Title)
	}
}

func TestReconstruct_RejectsNonThreadURL(t *testing.T) {
	_, err := newTestCoordinator(&fakeGateway{}, &recordingNormalizer{}, nil).
		Reconstruct(context.Background(), "https://example.com/post", "t")
	if err == nil {
		t.Fatal("expected error for non-thread URL")
	}
}

func TestSubtree_Elements(t *testing.T) {
	tree, err := openSubtree(mirrorPage(textItem(" first "), imageItem("https://cdn.example/a.png"), textItem("second")))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer tree.release()

	els := tree.elements(nil)
	if len(els) != 3 {
		t.Fatalf("elements: got %d, want 3 (replies excluded)", len(els))
	}
	if els[0].Kind != core.TextElement || els[0].Text != "first" {
		t.Errorf("element 0: %+v", els[0])
	}
	if els[1].Kind != core.ImageElement || els[1].URL != "https://cdn.example/a.png" {
		t.Errorf("element 1: %+v", els[1])
	}
	if els[2].Text != "second" {
		t.Errorf("element 2: %+v", els[2])
	}
}

func TestReconstruct_LogsStateSequence(t *testing.T) {
	// WHAT: a successful run logs every state from idle to done, in order.
	// WHY: the logged states are the only view into a reconstruction.
	var buf bytes.Buffer
	gw := &fakeGateway{
		pages: map[string]string{"https://nitter.it/jack/status/20": mirrorPage(textItem("a"), imageItem("/pic/x.jpg"))},
		image: func(context.Context, string) (string, error) { return "data:image/png;base64,AA==", nil },
	}
	c := NewCoordinator(gw, &recordingNormalizer{}, nil, Config{
		Template: "${content}",
		Logger:   slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	if _, err := c.Reconstruct(context.Background(), threadURL, "t"); err != nil {
		t.Fatalf("reconstruct: %v", err)
	}

	var got []string
	for _, m := range regexp.MustCompile(`state=(\w+)`).FindAllStringSubmatch(buf.String(), -1) {
		got = append(got, m[1])
	}
	want := []State{StateIdle, StateDetecting, StateFetching, StateAwaitingProxy,
		StateExtracting, StateInliningImages, StateAssembling, StateDone}
	if len(got) != len(want) {
		t.Fatalf("states: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != string(want[i]) {
			t.Errorf("state %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestReconstruct_SkipsImageWithoutSource(t *testing.T) {
	// WHAT: an <img> with no src is dropped instead of being requested.
	// WHY: an empty src resolves to the permalink itself.
	gw := &fakeGateway{
		pages: map[string]string{"https://nitter.it/jack/status/20": mirrorPage(
			textItem("before"),
			`<div class="timeline-item"><div class="attachment image"><img alt="gone"></div></div>`,
			`<div class="timeline-item"><div class="attachment image"><img src="  "></div></div>`,
			textItem("after"),
		)},
		image: func(_ context.Context, url string) (string, error) { return "", errors.New("unexpected image " + url) },
	}
	norm := &recordingNormalizer{}
	if _, err := newTestCoordinator(gw, norm, nil).Reconstruct(context.Background(), threadURL, "t"); err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if len(gw.imageReqs) != 0 {
		t.Errorf("image requests: %v", gw.imageReqs)
	}
	if norm.got.HTML != "before<br/><br/>after" {
		t.Errorf("assembled fragment: %q", norm.got.HTML)
	}
}
