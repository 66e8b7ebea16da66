package crawler

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// parseHTML builds a document from a string for extractor tests.
func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse test html: %v", err)
	}
	return doc
}

func TestExtractLinks(t *testing.T) {
	t.Parallel()

	const base = "http://example.onion/dir/page"

	t.Run("keeps absolute links containing the marker", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body>
			<a href="http://other.onion/a">a</a>
			<a href="https://secure.onion/b">b</a>
			<a href="http://clearnet.example.com/c">c</a>
		</body>`)

		got := ExtractLinks(doc, base, ".onion")
		want := []string{"http://other.onion/a", "https://secure.onion/b"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ExtractLinks() = %v, want %v", got, want)
		}
	})

	t.Run("resolves root-relative links against the base host", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><a href="/sub/page.onion">x</a></body>`)

		got := ExtractLinks(doc, base, ".onion")
		want := []string{"http://example.onion/sub/page.onion"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ExtractLinks() = %v, want %v", got, want)
		}
	})

	t.Run("drops path-relative links", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body>
			<a href="page.onion.html">x</a>
			<a href="./other.onion">y</a>
		</body>`)

		if got := ExtractLinks(doc, base, ".onion"); len(got) != 0 {
			t.Errorf("ExtractLinks() = %v, want empty", got)
		}
	})

	t.Run("drops links without the marker", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body>
			<a href="http://example.com/a">a</a>
			<a href="/relative/path">b</a>
			<a href="mailto:admin@example.com">c</a>
		</body>`)

		if got := ExtractLinks(doc, base, ".onion"); len(got) != 0 {
			t.Errorf("ExtractLinks() = %v, want empty", got)
		}
	})

	t.Run("deduplicates and sorts the result", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body>
			<a href="http://zzz.onion">1</a>
			<a href="http://aaa.onion">2</a>
			<a href="http://zzz.onion">3</a>
		</body>`)

		got := ExtractLinks(doc, base, ".onion")
		want := []string{"http://aaa.onion", "http://zzz.onion"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ExtractLinks() = %v, want %v", got, want)
		}
	})

	t.Run("custom marker admits matching hosts", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body>
			<a href="http://127.0.0.1:8080/next">n</a>
			<a href="http://example.onion/x">o</a>
		</body>`)

		got := ExtractLinks(doc, "http://127.0.0.1:8080/", "127.0.0.1")
		want := []string{"http://127.0.0.1:8080/next"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ExtractLinks() = %v, want %v", got, want)
		}
	})

	t.Run("root-relative link with unparsable base is dropped", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><a href="/page.onion">x</a></body>`)

		if got := ExtractLinks(doc, "not-a-url", ".onion"); len(got) != 0 {
			t.Errorf("ExtractLinks() = %v, want empty", got)
		}
	})
}
