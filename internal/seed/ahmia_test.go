package seed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestDirectorySeederSearch(t *testing.T) {
	t.Parallel()

	t.Run("returns result anchors matching the marker", func(t *testing.T) {
		t.Parallel()

		var gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			w.Write([]byte(`<html><body>
				<div class="result"><div class="title"><a href="http://first.onion/">First</a></div></div>
				<div class="result"><div class="title"><a href="http://second.onion/">Second</a></div></div>
				<div class="result"><div class="title"><a href="https://clearnet.example.com/">Noise</a></div></div>
			</body></html>`))
		}))
		defer server.Close()

		s := NewDirectorySeeder(server.Client(),
			WithEndpoint(server.URL+"/search/"),
			WithSeedDelay(0),
		)

		got := s.Search(context.Background(), "hidden wiki")
		want := []string{"http://first.onion/", "http://second.onion/"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Search() = %v, want %v", got, want)
		}
		if gotQuery != "hidden wiki" {
			t.Errorf("query parameter = %q, want %q", gotQuery, "hidden wiki")
		}
	})

	t.Run("caps and deduplicates the seed list", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html><body>
				<div class="result"><div class="title"><a href="http://a.onion/">a</a></div></div>
				<div class="result"><div class="title"><a href="http://a.onion/">a again</a></div></div>
				<div class="result"><div class="title"><a href="http://b.onion/">b</a></div></div>
				<div class="result"><div class="title"><a href="http://c.onion/">c</a></div></div>
			</body></html>`))
		}))
		defer server.Close()

		s := NewDirectorySeeder(server.Client(),
			WithEndpoint(server.URL+"/search/"),
			WithSeedDelay(0),
			WithSeedLimit(2),
		)

		got := s.Search(context.Background(), "market")
		want := []string{"http://a.onion/", "http://b.onion/"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Search() = %v, want %v", got, want)
		}
	})

	t.Run("blank query skips the network entirely", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("blank query must not reach the directory")
		}))
		defer server.Close()

		s := NewDirectorySeeder(server.Client(),
			WithEndpoint(server.URL+"/search/"),
			WithSeedDelay(0),
		)

		if got := s.Search(context.Background(), "   "); got != nil {
			t.Errorf("Search() = %v, want nil", got)
		}
	})

	t.Run("server error yields an empty list, not a failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		s := NewDirectorySeeder(server.Client(),
			WithEndpoint(server.URL+"/search/"),
			WithSeedDelay(0),
		)

		if got := s.Search(context.Background(), "market"); len(got) != 0 {
			t.Errorf("Search() = %v, want empty", got)
		}
	})

	t.Run("unreachable directory yields an empty list", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		endpoint := server.URL + "/search/"
		server.Close()

		s := NewDirectorySeeder(http.DefaultClient,
			WithEndpoint(endpoint),
			WithSeedDelay(0),
		)

		if got := s.Search(context.Background(), "market"); len(got) != 0 {
			t.Errorf("Search() = %v, want empty", got)
		}
	})

	t.Run("custom result selector is honored", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html><body>
				<li class="entry"><a href="http://custom.onion/">custom</a></li>
				<div class="result"><div class="title"><a href="http://default.onion/">default</a></div></div>
			</body></html>`))
		}))
		defer server.Close()

		s := NewDirectorySeeder(server.Client(),
			WithEndpoint(server.URL+"/search/"),
			WithSeedDelay(0),
			WithResultSelector(".entry a"),
		)

		got := s.Search(context.Background(), "market")
		want := []string{"http://custom.onion/"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Search() = %v, want %v", got, want)
		}
	})

	t.Run("pacing delay is paid after the search", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html><body></body></html>`))
		}))
		defer server.Close()

		s := NewDirectorySeeder(server.Client(),
			WithEndpoint(server.URL+"/search/"),
			WithSeedDelay(100*time.Millisecond),
		)

		start := time.Now()
		s.Search(context.Background(), "market")
		if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
			t.Errorf("search took %v, expected at least the pacing delay", elapsed)
		}
	})
}
