package qdrive

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"testing"
	"time"

	"QDrive-SDK/internal/helpers"
)

func TestComputeDelay(t *testing.T) {
	tests := []struct {
		name     string
		header   http.Header
		expected time.Duration
	}{
		{
			name:     "valid hint",
			header:   http.Header{"Retry-After": []string{"2"}},
			expected: 2 * time.Second,
		},
		{
			name:     "zero hint",
			header:   http.Header{"Retry-After": []string{"0"}},
			expected: 0,
		},
		{
			name:     "hint with spaces",
			header:   http.Header{"Retry-After": []string{" 5 "}},
			expected: 5 * time.Second,
		},
		{
			name:     "missing hint",
			header:   http.Header{},
			expected: DEFAULT_RETRY_DELAY * time.Second,
		},
		{
			name:     "non-integer hint",
			header:   http.Header{"Retry-After": []string{"soon"}},
			expected: DEFAULT_RETRY_DELAY * time.Second,
		},
		{
			name:     "negative hint",
			header:   http.Header{"Retry-After": []string{"-3"}},
			expected: DEFAULT_RETRY_DELAY * time.Second,
		},
		{
			name:     "fractional hint",
			header:   http.Header{"Retry-After": []string{"1.5"}},
			expected: DEFAULT_RETRY_DELAY * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeDelay(tt.header)
			if got != tt.expected {
				t.Errorf("Expected delay %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestExtractPageCount(t *testing.T) {
	tests := []struct {
		name     string
		header   http.Header
		expected int
	}{
		{
			name:     "valid count",
			header:   http.Header{"X-Total-Pages": []string{"5"}},
			expected: 5,
		},
		{
			name:     "missing header",
			header:   http.Header{},
			expected: 0,
		},
		{
			name:     "non-integer count",
			header:   http.Header{"X-Total-Pages": []string{"many"}},
			expected: 0,
		},
		{
			name:     "negative count",
			header:   http.Header{"X-Total-Pages": []string{"-1"}},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractPageCount(tt.header)
			if got != tt.expected {
				t.Errorf("Expected page count %d, got %d", tt.expected, got)
			}
		})
	}
}

// fakeExecutor 按脚本逐次返回预置响应，并记录提交的描述符
type fakeExecutor struct {
	responses []*ResponseEnvelope
	errs      []error
	submitted []*RequestDescriptor
}

func (f *fakeExecutor) Submit(ctx context.Context, desc *RequestDescriptor) (*ResponseEnvelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := len(f.submitted)
	f.submitted = append(f.submitted, desc)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func processingEnvelope(retryAfter string) *ResponseEnvelope {
	header := http.Header{}
	if retryAfter != "" {
		header.Set(RETRY_AFTER_HEADER, retryAfter)
	}
	return &ResponseEnvelope{
		StatusCode: http.StatusAccepted,
		Class:      ClassProcessing,
		Header:     header,
	}
}

func successEnvelope(body string, totalPages string) *ResponseEnvelope {
	header := http.Header{}
	if totalPages != "" {
		header.Set(TOTAL_PAGES_HEADER, totalPages)
	}
	return &ResponseEnvelope{
		StatusCode: http.StatusOK,
		Class:      ClassSuccess,
		Header:     header,
		Stream:     io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestFetchWithPollingRetriesUntilSuccess(t *testing.T) {
	exec := &fakeExecutor{
		responses: []*ResponseEnvelope{
			processingEnvelope("0"),
			processingEnvelope("0"),
			successEnvelope("asset-bytes", "5"),
		},
	}
	desc := NewRequest("GET", "http://example/api/v1/files/f1/preview").SetRaw(true)

	outcome, err := fetchWithPolling(context.Background(), exec, desc, true, helpers.ConsoleLogger())
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	if len(exec.submitted) != 3 {
		t.Errorf("Expected 3 submissions, got %d", len(exec.submitted))
	}
	if outcome.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", outcome.StatusCode)
	}
	if outcome.TotalPages != 5 {
		t.Errorf("Expected 5 total pages, got %d", outcome.TotalPages)
	}

	data, _ := io.ReadAll(outcome.Stream)
	outcome.Stream.Close()
	if string(data) != "asset-bytes" {
		t.Errorf("Expected body 'asset-bytes', got %q", string(data))
	}

	// 每次重试提交的必须是同一个描述符
	for i, submitted := range exec.submitted {
		if submitted != desc {
			t.Errorf("Submission %d used a different descriptor", i)
		}
	}
}

func TestFetchWithPollingLogsRetryRounds(t *testing.T) {
	var buf bytes.Buffer
	logger := &helpers.QLogger{Logger: log.New(&buf, "", 0)}

	exec := &fakeExecutor{
		responses: []*ResponseEnvelope{
			processingEnvelope("0"),
			successEnvelope("asset-bytes", ""),
		},
	}
	desc := NewRequest("GET", "http://example/api/v1/files/f1/thumbnail").SetRaw(true)

	outcome, err := fetchWithPolling(context.Background(), exec, desc, true, logger)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	outcome.Stream.Close()

	if !strings.Contains(buf.String(), "not ready") {
		t.Errorf("Expected retry round to be logged, got: %q", buf.String())
	}
}

func TestFetchWithPollingNoRetry(t *testing.T) {
	exec := &fakeExecutor{
		responses: []*ResponseEnvelope{processingEnvelope("2")},
	}
	desc := NewRequest("GET", "http://example/api/v1/files/f1/thumbnail")

	start := time.Now()
	outcome, err := fetchWithPolling(context.Background(), exec, desc, false, helpers.ConsoleLogger())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(exec.submitted) != 1 {
		t.Errorf("Expected exactly 1 submission, got %d", len(exec.submitted))
	}
	if outcome.StatusCode != http.StatusAccepted {
		t.Errorf("Expected status 202, got %d", outcome.StatusCode)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("Expected immediate return, took %v", elapsed)
	}
}

func TestFetchWithPollingTerminalError(t *testing.T) {
	exec := &fakeExecutor{
		responses: []*ResponseEnvelope{
			{
				StatusCode: http.StatusNotFound,
				Class:      ClassError,
				Header:     http.Header{},
				Body:       []byte(`{"code":404,"message":"file not found"}`),
			},
		},
	}
	desc := NewRequest("GET", "http://example/api/v1/files/missing/preview")

	outcome, err := fetchWithPolling(context.Background(), exec, desc, true, helpers.ConsoleLogger())
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if len(exec.submitted) != 1 {
		t.Errorf("Expected no retry on terminal error, got %d submissions", len(exec.submitted))
	}
	if outcome.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", outcome.StatusCode)
	}
	if outcome.Stream != nil {
		t.Error("Expected no stream on terminal error")
	}
	if !IsNotFound(err) {
		t.Errorf("Expected not-found API error, got: %v", err)
	}
}

func TestFetchWithPollingContextCancel(t *testing.T) {
	exec := &fakeExecutor{
		responses: []*ResponseEnvelope{processingEnvelope("1")},
	}
	desc := NewRequest("GET", "http://example/api/v1/files/f1/thumbnail")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fetchWithPolling(ctx, exec, desc, true, helpers.ConsoleLogger())
	if err != context.DeadlineExceeded {
		t.Errorf("Expected context deadline error, got: %v", err)
	}
}
