package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/vidhub/internal/shared"
)

func TestCaptionService(t *testing.T) {
	const videoURL = "https://www.youtube.com/watch?v=abc123"

	newServer := func(t *testing.T, status int, body string) *httptest.Server {
		t.Helper()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/transcripts" || r.Method != http.MethodPost {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req["videoUrl"] != videoURL {
				t.Errorf("expected videoUrl in body, got %v (%v)", req, err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(body))
		}))
		t.Cleanup(server.Close)
		return server
	}

	t.Run("segment list", func(t *testing.T) {
		server := newServer(t, http.StatusOK, `[{"text":"hello","start":0,"duration":1.5},{"text":"world","start":1.5,"duration":1}]`)
		svc := NewCaptionService(NewAPIService(server.URL, nil))

		captions, err := svc.Fetch(context.Background(), videoURL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if captions.VideoID != "abc123" {
			t.Errorf("expected video id abc123, got %s", captions.VideoID)
		}
		if captions.Text() != "hello\nworld" {
			t.Errorf("unexpected text %q", captions.Text())
		}
	})

	t.Run("wrapped transcript", func(t *testing.T) {
		server := newServer(t, http.StatusOK, `{"transcript":[{"text":"only line"}],"language":"ko"}`)
		captions, err := NewCaptionService(NewAPIService(server.URL, nil)).Fetch(context.Background(), videoURL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if captions.Text() != "only line" {
			t.Errorf("unexpected text %q", captions.Text())
		}
		if !strings.Contains(string(captions.Raw), `"language":"ko"`) {
			t.Errorf("raw payload should be preserved, got %s", captions.Raw)
		}
	})

	t.Run("proxy error message", func(t *testing.T) {
		server := newServer(t, http.StatusNotFound, `{"error":"Transcript is disabled"}`)
		_, err := NewCaptionService(NewAPIService(server.URL, nil)).Fetch(context.Background(), videoURL)
		if !errors.Is(err, shared.ErrTransport) {
			t.Fatalf("expected ErrTransport, got %v", err)
		}
		if !strings.Contains(err.Error(), "Transcript is disabled") {
			t.Errorf("expected proxy message in error, got %v", err)
		}
	})

	t.Run("invalid url makes no request", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
		defer server.Close()

		_, err := NewCaptionService(NewAPIService(server.URL, nil)).Fetch(context.Background(), "https://youtu.be/abc")
		if !errors.Is(err, shared.ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
		if calls != 0 {
			t.Errorf("expected no proxy calls, got %d", calls)
		}
	})

	t.Run("proxy down", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		if _, err := NewCaptionService(NewAPIService(url, nil)).Fetch(context.Background(), videoURL); !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})
}
