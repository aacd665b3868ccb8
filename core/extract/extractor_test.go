package extract

import (
	"strings"
	"testing"
)

const page = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>Page Title: Site</title>
  <script>var x = 1;</script>
</head>
<body>
  <nav><a href="/">Home</a></nav>
  <article>
    <h1>Heading</h1>
    <p>First paragraph.</p>
    <figure><img src="/a.png" alt="a"><figcaption>Caption</figcaption></figure>
    <form><input name="q"></form>
    <div class="ads">Buy now</div>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

func TestExtract(t *testing.T) {
	art, err := New().Extract(page)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if art.Title != "Page Title: Site" {
		t.Errorf("title: got %q", art.Title)
	}
	for _, want := range []string{"<h1>Heading</h1>", "First paragraph.", `<img src="/a.png"`, "Caption"} {
		if !strings.Contains(art.Content, want) {
			t.Errorf("content missing %q:\n%s", want, art.Content)
		}
	}
	for _, noise := range []string{"Home", "Copyright", "Buy now", "var x", "<input"} {
		if strings.Contains(art.Content, noise) {
			t.Errorf("content kept noise %q", noise)
		}
	}
}

func TestExtract_PrefersOpenGraphTitle(t *testing.T) {
	html := `<html><head><meta property="og:title" content="OG Title"><title>Doc</title></head><body><main><p>x</p></main></body></html>`
	art, err := New().Extract(html)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if art.Title != "OG Title" {
		t.Errorf("title: got %q", art.Title)
	}
	if art.Content != "<p>x</p>" {
		t.Errorf("content: got %q", art.Content)
	}
}

func TestExtract_FallsBackToH1(t *testing.T) {
	art, err := New().Extract(`<body><h1>Only Heading</h1><p>text</p></body>`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if art.Title != "Only Heading" {
		t.Errorf("title: got %q", art.Title)
	}
}

func TestDocumentTitle(t *testing.T) {
	if got := DocumentTitle("<html><head><title> Thread </title></head></html>"); got != "Thread" {
		t.Errorf("got %q", got)
	}
	if got := DocumentTitle("<p>none</p>"); got != "" {
		t.Errorf("got %q", got)
	}
}
