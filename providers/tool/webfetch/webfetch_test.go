package webfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch_ConvertsHTMLToMarkdown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Title</h1><p>Some <b>bold</b> text.</p></body></html>"))
	}))
	defer server.Close()

	out, err := Fetch(context.Background(), Input{URL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Markdown, "# Title") {
		t.Errorf("expected heading in markdown, got %q", out.Markdown)
	}
	if !strings.Contains(out.Markdown, "**bold**") {
		t.Errorf("expected bold text in markdown, got %q", out.Markdown)
	}
	if out.HTML != "" {
		t.Error("HTML should be empty unless requested")
	}
}

func TestFetch_IncludeHTML(t *testing.T) {
	const body = "<html><body><p>hi</p></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	out, err := Fetch(context.Background(), Input{URL: server.URL, IncludeHTML: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.HTML != body {
		t.Errorf("expected raw HTML to be included, got %q", out.HTML)
	}
}

func TestFetch_EmptyURL(t *testing.T) {
	if _, err := Fetch(context.Background(), Input{URL: "  "}); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestFetch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if _, err := Fetch(context.Background(), Input{URL: server.URL}); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestFetch_FollowsRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>landed</p>"))
	}))
	defer final.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer redirecting.Close()

	out, err := Fetch(context.Background(), Input{URL: redirecting.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.URL != final.URL {
		t.Errorf("expected final URL %q after redirect, got %q", final.URL, out.URL)
	}
}

func TestFetch_TimeoutWaitingForHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
		_, _ = w.Write([]byte("<p>too late</p>"))
	}))
	defer server.Close()

	start := time.Now()
	_, err := Fetch(context.Background(), Input{URL: server.URL, TimeoutSeconds: 1})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestFetch_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	if _, err := Fetch(ctx, Input{URL: server.URL, TimeoutSeconds: 30}); err == nil {
		t.Fatal("expected cancellation error")
	}
}
