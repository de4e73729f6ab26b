package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetcherSendsHeadersAndReturnsBody(t *testing.T) {
	var gotUserAgent, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = w.Write([]byte("<rss></rss>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "TestAgent/1.0", time.Second)
	data, err := fetcher.Run(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if string(data) != "<rss></rss>" {
		t.Errorf("Expected body '<rss></rss>', got: %s", data)
	}
	if gotUserAgent != "TestAgent/1.0" {
		t.Errorf("Expected User-Agent 'TestAgent/1.0', got: %s", gotUserAgent)
	}
	if !strings.Contains(gotAccept, "application/rss+xml") || !strings.Contains(gotAccept, "application/atom+xml") {
		t.Errorf("Expected feed media types in Accept, got: %s", gotAccept)
	}
}

func TestFetcherNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "TestAgent/1.0", time.Second)
	_, err := fetcher.Run(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *FetchError, got: %T", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got: %d", fetchErr.StatusCode)
	}
	if err.Error() != "HTTP error: 404 Not Found" {
		t.Errorf("Expected 'HTTP error: 404 Not Found', got: %s", err.Error())
	}
}

func TestFetcherSizeLimit(t *testing.T) {
	body := "<rss>" + strings.Repeat("x", 32) + "</rss>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "TestAgent/1.0", time.Second)

	fetcher.maxSize = int64(len(body))
	data, err := fetcher.Run(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected body at the limit to be accepted, got: %v", err)
	}
	if string(data) != body {
		t.Errorf("Expected full body, got: %s", data)
	}

	fetcher.maxSize = int64(len(body)) - 1
	_, err = fetcher.Run(context.Background(), server.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *FetchError, got: %T", err)
	}
	if !errors.Is(err, ErrFeedTooLarge) {
		t.Errorf("Expected ErrFeedTooLarge, got: %v", err)
	}
}

func TestFetcherTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "TestAgent/1.0", 50*time.Millisecond)

	start := time.Now()
	_, err := fetcher.Run(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected fetch to abort near the timeout, took %v", elapsed)
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *FetchError, got: %T", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("Expected no status code on timeout, got: %d", fetchErr.StatusCode)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got: %v", err)
	}
}

func TestFetcherTranscodesCharset(t *testing.T) {
	// "Café" in ISO-8859-1
	latin1 := []byte("<rss><channel><item><title>Caf\xe9</title></item></channel></rss>")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml; charset=ISO-8859-1")
		_, _ = w.Write(latin1)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "TestAgent/1.0", time.Second)
	data, err := fetcher.Run(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(string(data), "Café") {
		t.Errorf("Expected UTF-8 'Café', got: %q", data)
	}
}

func TestToUTF8FromDeclaration(t *testing.T) {
	body := []byte("<?xml version=\"1.0\" encoding=\"windows-1252\"?>\n<rss><title>\x93quoted\x94</title></rss>")

	data, err := toUTF8(body, "application/xml")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	text := string(data)
	if !strings.Contains(text, "“quoted”") {
		t.Errorf("Expected curly quotes, got: %q", text)
	}
	if !strings.Contains(text, `encoding="UTF-8"`) {
		t.Errorf("Expected declaration rewritten to UTF-8, got: %q", text)
	}
}

func TestToUTF8PassThrough(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"no charset", "application/xml"},
		{"utf-8", "text/xml; charset=UTF-8"},
		{"unknown label", "text/xml; charset=x-made-up"},
	}

	body := []byte("<rss><title>Plain</title></rss>")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := toUTF8(body, tt.contentType)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if string(data) != string(body) {
				t.Errorf("Expected body unchanged, got: %q", data)
			}
		})
	}
}
