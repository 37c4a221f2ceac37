package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/desertthunder/vidhub/internal/shared"
)

func TestObjectPath(t *testing.T) {
	p := ObjectPath("user-1", "My Clip.MP4")
	if !strings.HasPrefix(p, "user-1/") || !strings.HasSuffix(p, ".mp4") {
		t.Errorf("unexpected object path %q", p)
	}
	if ObjectPath("user-1", "clip.mp4") == ObjectPath("user-1", "clip.mp4") {
		t.Error("object names should be random")
	}
	if p := ObjectPath("u", "noext"); strings.Contains(p[2:], ".") {
		t.Errorf("expected no extension, got %q", p)
	}
}

func TestLocalBucket(t *testing.T) {
	ctx := context.Background()

	newBucket := func(t *testing.T, baseURL string) *LocalBucket {
		t.Helper()
		b, err := NewLocalBucket(t.TempDir(), baseURL)
		if err != nil {
			t.Fatalf("failed to create bucket: %v", err)
		}
		return b
	}

	t.Run("Upload Open Remove", func(t *testing.T) {
		b := newBucket(t, "")
		n, err := b.Upload(ctx, "user-1/a.mp4", strings.NewReader("video bytes"))
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if n != int64(len("video bytes")) {
			t.Errorf("expected %d bytes, got %d", len("video bytes"), n)
		}

		rc, err := b.Open(ctx, "user-1/a.mp4")
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if string(data) != "video bytes" {
			t.Errorf("unexpected content %q", data)
		}

		if err := b.Remove(ctx, "user-1/a.mp4"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if _, err := b.Open(ctx, "user-1/a.mp4"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound after remove, got %v", err)
		}
		if err := b.Remove(ctx, "user-1/a.mp4"); err != nil {
			t.Errorf("removing a missing object should succeed, got %v", err)
		}
	})

	t.Run("no overwrite", func(t *testing.T) {
		b := newBucket(t, "")
		if _, err := b.Upload(ctx, "u/x.mp4", strings.NewReader("1")); err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if _, err := b.Upload(ctx, "u/x.mp4", strings.NewReader("2")); !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("rejects escapes", func(t *testing.T) {
		b := newBucket(t, "")
		for _, p := range []string{"", "../x.mp4", "u/../../x.mp4", `u\x.mp4`, "/"} {
			if _, err := b.Upload(ctx, p, strings.NewReader("x")); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("Upload(%q): expected ErrInvalidArgument, got %v", p, err)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		b := newBucket(t, "")
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := b.Upload(cctx, "u/y.mp4", strings.NewReader("data")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if _, err := b.Open(ctx, "u/y.mp4"); err == nil {
			t.Error("partial object should be removed")
		}
	})

	t.Run("PublicURL", func(t *testing.T) {
		b := newBucket(t, "https://cdn.example.com/videos/")
		if got := b.PublicURL("u/a.mp4"); got != "https://cdn.example.com/videos/u/a.mp4" {
			t.Errorf("unexpected url %q", got)
		}
		local := newBucket(t, "")
		if got := local.PublicURL("u/a.mp4"); !strings.HasPrefix(got, "file://") {
			t.Errorf("expected file url, got %q", got)
		}
	})

	t.Run("empty root", func(t *testing.T) {
		if _, err := NewLocalBucket("", ""); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
