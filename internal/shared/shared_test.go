package shared

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestExtractPlaylistID(t *testing.T) {
	tc := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "playlist page", url: "https://www.youtube.com/playlist?list=PL123abc", want: "PL123abc"},
		{name: "watch url with list", url: "https://www.youtube.com/watch?v=dQw4&list=PLxyz&index=2", want: "PLxyz"},
		{name: "uppercase parameter", url: "https://youtube.com/playlist?LIST=PLup", want: "PLup"},
		{name: "missing list", url: "https://www.youtube.com/watch?v=dQw4", wantErr: true},
		{name: "empty list", url: "https://www.youtube.com/playlist?list=", wantErr: true},
		{name: "not a url", url: "hello", wantErr: true},
		{name: "list in path only", url: "https://example.com/list=PL", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPlaylistID(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Errorf("expected ErrInvalidURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractPlaylistID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractVideoID(t *testing.T) {
	got, err := ExtractVideoID("https://www.youtube.com/watch?v=abc123&t=10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "abc123" {
		t.Errorf("expected abc123, got %s", got)
	}

	if _, err := ExtractVideoID("https://youtu.be/abc123"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}
}

func TestLinks(t *testing.T) {
	if got := VideoLink("abc"); got != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("VideoLink() = %s", got)
	}
	if got := ChannelURL("UC1"); got != "https://www.youtube.com/channel/UC1" {
		t.Errorf("ChannelURL() = %s", got)
	}
	id, err := ExtractPlaylistID(PlaylistURL("PLround"))
	if err != nil || id != "PLround" {
		t.Errorf("PlaylistURL should round-trip, got %q (%v)", id, err)
	}
}

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to buffer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		out := buf.String()
		if !strings.Contains(out, "hello") || !strings.Contains(out, "key=value") {
			t.Errorf("unexpected log output %q", out)
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		child := WithLogger(NewLogger(&buf), "playlist", "PL1")
		child.Warn("skipped")

		if !strings.Contains(buf.String(), "playlist=PL1") {
			t.Errorf("expected child field in %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("quiet")

		if buf.Len() != 0 {
			t.Errorf("info should be filtered at error level, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "vidhub.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("to file")
	})
}

func TestParseLogLevel(t *testing.T) {
	tc := map[string]log.Level{
		"debug":   log.DebugLevel,
		"WARN":    log.WarnLevel,
		" error ": log.ErrorLevel,
		"":        log.InfoLevel,
		"chatty":  log.InfoLevel,
	}
	for in, want := range tc {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string, got %q", a)
	}
}

func TestMapDBError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if MapDBError(nil) != nil {
			t.Error("expected nil")
		}
	})

	t.Run("sqlite unique", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("CREATE TABLE t (id TEXT PRIMARY KEY, v TEXT UNIQUE)"); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if _, err := db.Exec("INSERT INTO t VALUES ('a', 'x')"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		_, err = db.Exec("INSERT INTO t VALUES ('b', 'x')")
		if mapped := MapDBError(err); !errors.Is(mapped, ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", mapped)
		}
	})

	t.Run("wrapped message", func(t *testing.T) {
		err := fmt.Errorf("insert: %s", "UNIQUE constraint failed: t.v")
		if mapped := MapDBError(err); !errors.Is(mapped, ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", mapped)
		}
	})

	t.Run("unrelated", func(t *testing.T) {
		err := errors.New("disk full")
		if mapped := MapDBError(err); mapped != err {
			t.Errorf("expected unchanged error, got %v", mapped)
		}
	})
}

func TestFormatHelpers(t *testing.T) {
	t.Run("FormatCount", func(t *testing.T) {
		tests := []struct {
			in   int64
			want string
		}{
			{0, "0"},
			{999, "999"},
			{1000, "1,000"},
			{1234567, "1,234,567"},
			{-12345, "-12,345"},
		}
		for _, tt := range tests {
			if got := FormatCount(tt.in); got != tt.want {
				t.Errorf("FormatCount(%d) = %q, want %q", tt.in, got, tt.want)
			}
		}
	})

	t.Run("FormatDate", func(t *testing.T) {
		if got := FormatDate(time.Time{}); got != "-" {
			t.Errorf("expected '-' for zero time, got %q", got)
		}
		if got := FormatDate(time.Date(2024, 2, 3, 23, 0, 0, 0, time.UTC)); got != "2024-02-03" {
			t.Errorf("unexpected date %q", got)
		}
	})

	t.Run("Truncate", func(t *testing.T) {
		if got := Truncate("동영상 정보를 가져오는 중", 5); got != "동영..." {
			t.Errorf("unexpected truncation %q", got)
		}
		if got := Truncate("short", 10); got != "short" {
			t.Errorf("short strings should be unchanged, got %q", got)
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		data, err := MarshalJSON(map[string]int{"a": 1}, true)
		if err != nil || string(data) != "{\n  \"a\": 1\n}" {
			t.Errorf("unexpected pretty JSON %q (%v)", data, err)
		}
	})
}
