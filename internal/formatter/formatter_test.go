package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
	th "github.com/desertthunder/vidhub/internal/testing"
)

func sampleExport() *models.PlaylistExport {
	playlist := models.NewExternalPlaylist("user-1", "https://www.youtube.com/playlist?list=PLtest",
		models.PlaylistInfo{Title: "Test Playlist", ItemCount: 3},
		models.ChannelInfo{URL: "https://www.youtube.com/channel/UC1", SubscriberCount: 1234567},
	)
	playlist.SetID("pl-1")

	first := models.NewExternalVideo("pl-1", "https://www.youtube.com/watch?v=a1", models.VideoInfo{
		Title: "First [part]", Description: "has, a comma", PublishedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	first.SetID("v-1")
	second := models.NewExternalVideo("pl-1", "https://www.youtube.com/watch?v=b2", models.VideoInfo{Title: "Second"})
	second.SetID("v-2")

	return &models.PlaylistExport{Playlist: playlist, Videos: []*models.ExternalVideo{first, second}}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleExport())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var doc PlaylistDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if doc.ID != "pl-1" || doc.ListName != "Test Playlist" || len(doc.Videos) != 2 {
			t.Errorf("unexpected doc %+v", doc)
		}
		if doc.Videos[0].OriginUpdate == nil || doc.Videos[1].OriginUpdate != nil {
			t.Errorf("origin_update should be null only when unknown")
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Link,Title,Description,Published,Ingested\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `"has, a comma"`) {
			t.Errorf("CSV should quote fields with commas")
		}
		if !strings.Contains(output, "2024-01-02T03:04:05Z") {
			t.Errorf("CSV missing publish time")
		}
		if lines := strings.Count(output, "\n"); lines != 3 {
			t.Errorf("expected header plus 2 rows, got %d lines", lines)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleExport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Test Playlist",
			"(1,234,567 subscribers)",
			"**Videos**: 2 stored / 3 reported",
			`1. [First \[part\]](https://www.youtube.com/watch?v=a1) (2024-01-02)`,
			"2. [Second](https://www.youtube.com/watch?v=b2) (-)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Playlist: Test Playlist") || !strings.Contains(output, "2. Second - https://www.youtube.com/watch?v=b2") {
			t.Errorf("unexpected text output:\n%s", output)
		}
	})

	t.Run("ExportToText with empty playlist", func(t *testing.T) {
		export := sampleExport()
		export.Videos = nil
		data, _ := ExportToText(export)
		if !strings.Contains(string(data), "Videos: 0") {
			t.Errorf("expected zero videos, got:\n%s", data)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", FormatJSON},
		{"JSON", FormatJSON},
		{"csv", FormatCSV},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"text", FormatText},
		{"txt", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Export(sampleExport(), "xml"); err == nil {
		t.Error("Export should reject unknown formats")
	}
}

func TestWriteExport(t *testing.T) {
	tests := []struct {
		format string
		files  []string
	}{
		{FormatJSON, []string{"pl-1.json"}},
		{FormatCSV, []string{"pl-1_videos.csv", "pl-1_metadata.json"}},
		{FormatMarkdown, []string{filepath.Join("pl-1", "README.md")}},
		{FormatText, []string{"pl-1_videos.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := t.TempDir()
			files, err := WriteExport(sampleExport(), tt.format, dir)
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if len(files) != len(tt.files) {
				t.Fatalf("expected %d files, got %v", len(tt.files), files)
			}
			for i, name := range tt.files {
				want := filepath.Join(dir, name)
				if files[i] != want {
					t.Errorf("expected %s, got %s", want, files[i])
				}
				th.AssertFileExists(t, want)
			}
		})
	}

	t.Run("metadata excludes videos", func(t *testing.T) {
		dir := t.TempDir()
		res, err := WriteCSVExport(sampleExport(), filepath.Join(dir, "out"))
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}
		if content := th.MustReadFile(t, res.MetadataFile); strings.Contains(content, "videos") {
			t.Errorf("metadata should not include videos: %s", content)
		}
	})

	t.Run("unwritable directory", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing", "dir")
		if _, err := WriteExport(sampleExport(), FormatText, missing); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}
