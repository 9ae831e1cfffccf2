package qdrive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(serverURL string) *Client {
	client := NewClient("test_token")
	client.SetBaseURL(serverURL)
	return client
}

func TestFetchThumbnailPollsUntilReady(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/files/f1/thumbnail" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("min_height") != "64" {
			t.Errorf("Expected min_height=64, got %q", r.URL.Query().Get("min_height"))
		}
		if _, present := r.URL.Query()["max_width"]; present {
			t.Error("Expected unset max_width to be omitted")
		}
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set(RETRY_AFTER_HEADER, "0")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	stream, err := client.FetchThumbnail(context.Background(), "f1", ThumbnailOptions{MinHeight: 64}, true, true)
	if err != nil {
		t.Fatalf("Expected thumbnail, got error: %v", err)
	}
	defer stream.Close()

	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("Expected 2 requests, got %d", hits)
	}

	data, _ := io.ReadAll(stream)
	if string(data) != "png-bytes" {
		t.Errorf("Expected png bytes, got %q", string(data))
	}
}

func TestFetchThumbnailNoRetryReturnsImmediately(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set(RETRY_AFTER_HEADER, "60")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	start := time.Now()
	_, err := client.FetchThumbnail(context.Background(), "f1", ThumbnailOptions{}, true, false)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Expected processing error for pending thumbnail")
	}
	if !IsProcessing(err) {
		t.Errorf("Expected processing error, got: %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("Expected exactly 1 request, got %d", hits)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Expected immediate return, took %v", elapsed)
	}
}

func TestFetchThumbnailBlankFileID(t *testing.T) {
	client := NewClient("test_token")
	defer client.Close()

	_, err := client.FetchThumbnail(context.Background(), "  ", ThumbnailOptions{}, true, true)
	if err == nil {
		t.Fatal("Expected validation error for blank file id")
	}
}

func TestFetchPreviewImmediateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/files/doc1/preview" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "3" {
			t.Errorf("Expected page=3, got %q", r.URL.Query().Get("page"))
		}
		w.Header().Set(TOTAL_PAGES_HEADER, "10")
		w.Write([]byte("page-3-bytes"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	page, err := client.FetchPreview(context.Background(), "doc1", 3, PreviewOptions{}, true)
	if err != nil {
		t.Fatalf("Expected preview page, got error: %v", err)
	}
	defer page.Stream.Close()

	if page.CurrentPage != 3 {
		t.Errorf("Expected current page 3, got %d", page.CurrentPage)
	}
	if page.TotalPages != 10 {
		t.Errorf("Expected 10 total pages, got %d", page.TotalPages)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", page.StatusCode)
	}

	data, _ := io.ReadAll(page.Stream)
	if string(data) != "page-3-bytes" {
		t.Errorf("Expected page bytes, got %q", string(data))
	}
}

func TestFetchPreviewNotFound(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":404,"message":"file not found"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	page, err := client.FetchPreview(context.Background(), "missing", 1, PreviewOptions{}, true)
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("Expected no retry on 404, got %d requests", hits)
	}
	if page == nil {
		t.Fatal("Expected page result even on error")
	}
	if page.CurrentPage != 1 {
		t.Errorf("Expected echoed page 1, got %d", page.CurrentPage)
	}
	if page.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", page.StatusCode)
	}
	if page.Stream != nil {
		t.Error("Expected no stream on error")
	}
}

func TestFetchPreviewInvalidPage(t *testing.T) {
	client := NewClient("test_token")
	defer client.Close()

	_, err := client.FetchPreview(context.Background(), "doc1", 0, PreviewOptions{}, true)
	if err == nil {
		t.Fatal("Expected validation error for page 0")
	}
}

func TestFetchPreviewPollingCarriesRetryHint(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.Header().Set(RETRY_AFTER_HEADER, "0")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.Header().Set(TOTAL_PAGES_HEADER, "2")
		w.Write([]byte("ready"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	page, err := client.FetchPreview(context.Background(), "doc1", 1, PreviewOptions{MaxWidth: 800}, true)
	if err != nil {
		t.Fatalf("Expected preview page, got error: %v", err)
	}
	defer page.Stream.Close()

	if atomic.LoadInt32(&hits) != 3 {
		t.Errorf("Expected 3 requests, got %d", hits)
	}
	if page.TotalPages != 2 {
		t.Errorf("Expected 2 total pages, got %d", page.TotalPages)
	}
}
