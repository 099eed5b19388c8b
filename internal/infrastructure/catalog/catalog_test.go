package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLatestURLPicksFirstMatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<html><body>
		  <a href="/notes/readme.html">readme</a>
		  <a href="/data/owid-covid-data.csv">covid csv</a>
		  <a href="/data/owid-covid-data-old.csv">old covid csv</a>
		</body></html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/index.html", "covid", server.Client())

	latest, err := client.LatestURL(context.Background())
	if err != nil {
		t.Fatalf("LatestURL error: %v", err)
	}
	if !strings.HasSuffix(latest, "/data/owid-covid-data.csv") {
		t.Fatalf("unexpected link: %s", latest)
	}
	if !strings.HasPrefix(latest, server.URL) {
		t.Fatalf("relative link not resolved: %s", latest)
	}
}

func TestLatestURLNoMatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/a.pdf">doc</a></body></html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "covid", server.Client())

	if _, err := client.LatestURL(context.Background()); err == nil {
		t.Fatalf("expected error when no link matches")
	}
}

func TestFetchDownloadsDataset(t *testing.T) {
	t.Parallel()

	const payload = "location,date,total_cases\nKenya,2021-05-01,7\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".csv") {
			_, _ = w.Write([]byte(payload))
			return
		}
		_, _ = w.Write([]byte(`<a href="/data/covid.csv">data</a>`))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "downloads", "covid.csv")
	client := NewClient(server.URL, "covid", server.Client())

	if err := client.Fetch(context.Background(), dest); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(got) != payload {
		t.Fatalf("unexpected payload: %q", got)
	}
}

func TestFetchPropagatesHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".csv") {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`<a href="/data/covid.csv">data</a>`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "covid", server.Client())

	if err := client.Fetch(context.Background(), filepath.Join(t.TempDir(), "covid.csv")); err == nil {
		t.Fatalf("expected error on 404 download")
	}
}
