package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/desertthunder/vidhub/internal/shared"
	tu "github.com/desertthunder/vidhub/internal/testing"
)

func seedPlaylists(t *testing.T, env *testEnv, ids ...string) []string {
	t.Helper()
	var records []string
	for i, id := range ids {
		env.fake.AddPlaylist(tu.FakePlaylist{ID: id, Declared: 3 + i, Items: 3 + i})
		res, err := env.ingestor().Add(context.Background(), env.owner.ID(), playlistURL(id), nil)
		if err != nil {
			t.Fatalf("failed to seed %s: %v", id, err)
		}
		records = append(records, res.RecordID)
	}
	return records
}

func TestExporter_Load(t *testing.T) {
	env := newTestEnv(t)
	records := seedPlaylists(t, env, "PLa")
	exporter := NewExporter(StoreSource{Playlists: env.playlists, Videos: env.videos})

	export, err := exporter.Load(context.Background(), records[0])
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(export.Videos) != 3 {
		t.Fatalf("expected 3 videos, got %d", len(export.Videos))
	}
	if export.Videos[0].Title != "Video 2" {
		t.Errorf("expected newest video first, got %s", export.Videos[0].Title)
	}

	if _, err := exporter.Load(context.Background(), "missing"); !errors.Is(err, shared.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestExporter_BulkExport(t *testing.T) {
	ctx := context.Background()

	t.Run("exports playlists and records failures", func(t *testing.T) {
		env := newTestEnv(t)
		records := seedPlaylists(t, env, "PLa", "PLb")
		exporter := NewExporter(StoreSource{Playlists: env.playlists, Videos: env.videos})
		dir := t.TempDir()

		ids := append(records, "missing")
		var result *BulkExportResult
		var err error
		updates := drain(func(ch chan<- ProgressUpdate) {
			result, err = exporter.BulkExport(ctx, ch, ids, BulkExportOpts{Format: "json", OutputDir: dir, NumWorkers: 2})
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.TotalPlaylists != 3 || result.SuccessfulExports != 2 || result.FailedExports != 1 {
			t.Errorf("unexpected totals %+v", result)
		}
		for _, id := range records {
			tu.AssertFileExists(t, filepath.Join(dir, id+".json"))
		}

		var manifest BulkExportResult
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("manifest is not JSON: %v", err)
		}
		if manifest.Format != "json" || len(manifest.Results) != 3 {
			t.Errorf("unexpected manifest %+v", manifest)
		}
		for _, r := range manifest.Results {
			if r.PlaylistID == "missing" && (r.Success || r.ErrorMessage == "") {
				t.Errorf("expected a recorded failure for the missing playlist, got %+v", r)
			}
		}

		var exporting int
		for _, u := range updates {
			if u.Phase == ExportPlaylist && u.Total == 3 {
				exporting++
			}
		}
		if exporting < 3 {
			t.Errorf("expected progress for every playlist, got %d updates", exporting)
		}
	})

	t.Run("markdown layout", func(t *testing.T) {
		env := newTestEnv(t)
		records := seedPlaylists(t, env, "PLm")
		exporter := NewExporter(StoreSource{Playlists: env.playlists, Videos: env.videos})
		dir := t.TempDir()

		result, err := exporter.BulkExport(ctx, nil, records, BulkExportOpts{Format: "md", OutputDir: dir, RateLimit: 100})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Format != "markdown" || len(result.Results[0].Files) != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		tu.AssertFileExists(t, filepath.Join(dir, records[0], "README.md"))
	})

	t.Run("invalid format", func(t *testing.T) {
		exporter := NewExporter(StoreSource{})
		_, err := exporter.BulkExport(ctx, nil, []string{"x"}, BulkExportOpts{Format: "xml", OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		env := newTestEnv(t)
		records := seedPlaylists(t, env, "PLc")
		exporter := NewExporter(StoreSource{Playlists: env.playlists, Videos: env.videos})
		dir := t.TempDir()

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := exporter.BulkExport(canceled, nil, records, BulkExportOpts{OutputDir: dir})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.SuccessfulExports != 0 {
			t.Fatalf("expected an empty partial result, got %+v", result)
		}
		if result.ManifestPath != "" {
			t.Errorf("no manifest should be written, got %s", result.ManifestPath)
		}
	})
}
