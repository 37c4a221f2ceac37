package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/vidhub/internal/formatter"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
	"golang.org/x/time/rate"
)

// ExportSource reads stored playlists and their items.
type ExportSource interface {
	GetPlaylist(ctx context.Context, id string) (*models.ExternalPlaylist, error)
	ListVideos(ctx context.Context, playlistID string) ([]*models.ExternalVideo, error)
}

// VideoLister lists a playlist's stored items. Implemented by [repositories.ExternalVideoRepository].
type VideoLister interface {
	ListByPlaylist(ctx context.Context, playlistID string) ([]*models.ExternalVideo, error)
}

// StoreSource adapts the playlist and item repositories to [ExportSource].
type StoreSource struct {
	Playlists PlaylistStore
	Videos    VideoLister
}

func (s StoreSource) GetPlaylist(ctx context.Context, id string) (*models.ExternalPlaylist, error) {
	return s.Playlists.Get(ctx, id)
}

func (s StoreSource) ListVideos(ctx context.Context, playlistID string) ([]*models.ExternalVideo, error) {
	return s.Videos.ListByPlaylist(ctx, playlistID)
}

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: vidhub_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5, at most 10)
	RateLimit  float64 // Playlist loads per second; zero is unlimited
}

// PlaylistExportJob is one loaded playlist waiting to be written.
type PlaylistExportJob struct {
	PlaylistID string
	Export     *models.PlaylistExport
}

// PlaylistExportResult is the outcome for one playlist.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a [Exporter.BulkExport] run and is written as the manifest.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Format            string                 `json:"format"`
	CompletedAt       time.Time              `json:"completed_at"`
	Results           []PlaylistExportResult `json:"results"`
}

// Exporter writes stored playlists to disk.
type Exporter struct {
	source ExportSource
}

// NewExporter creates an Exporter reading from source.
func NewExporter(source ExportSource) *Exporter {
	return &Exporter{source: source}
}

// Load reads a playlist with its items, newest first.
func (e *Exporter) Load(ctx context.Context, id string) (*models.PlaylistExport, error) {
	playlist, err := e.source.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	videos, err := e.source.ListVideos(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PlaylistExport{Playlist: playlist, Videos: videos}, nil
}

// BulkExport exports multiple playlists concurrently with rate limiting and progress tracking.
//
// Playlists are loaded one at a time by a producer and written by a pool of workers.
// A failing playlist is recorded in the result and does not stop the others. A manifest
// summarizing the run is written to {OutputDir}/export_manifest.json.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	format, err := formatter.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("vidhub_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Format:          format,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	jobs := make(chan PlaylistExportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, format, opts.OutputDir)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			export, err := e.Load(ctx, id)
			if err != nil {
				results <- PlaylistExportResult{
					PlaylistID:   id,
					PlaylistName: fmt.Sprintf("Unknown (%s)", id),
					Error:        fmt.Errorf("failed to load playlist: %w", err),
				}
				continue
			}

			sendProgress(ctx, prog, exportingPlaylistUpdate(i+1, len(ids), export.Playlist.ListName))
			jobs <- PlaylistExportJob{PlaylistID: id, Export: export}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorMessage = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(ctx, prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(ctx, prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}
	result.CompletedAt = time.Now().UTC()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err == nil {
		err = os.WriteFile(manifestPath, data, 0644)
	}
	if err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	format, dir string,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}

		res := PlaylistExportResult{
			PlaylistID:   job.PlaylistID,
			PlaylistName: job.Export.Playlist.ListName,
		}
		files, err := formatter.WriteExport(job.Export, format, dir)
		if err != nil {
			res.Error = err
		} else {
			res.Files = files
			res.Success = true
		}
		results <- res
	}
}
