package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vidhub/internal/formatter"
	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/desertthunder/vidhub/internal/tasks"
	"github.com/urfave/cli/v3"
)

// VideoList prints a playlist's stored items, newest first.
func (r *Runner) VideoList(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("playlist")
	if id == "" {
		return fmt.Errorf("%w: playlist", shared.ErrMissingArgument)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	playlist, err := r.playlists.Get(ctx, id)
	if err != nil {
		return err
	}
	videos, err := r.videos.ListByPlaylist(ctx, id)
	if err != nil {
		return err
	}
	if limit := int(cmd.Int("limit")); limit > 0 && limit < len(videos) {
		videos = videos[:limit]
	}

	if cmd.Bool("json") {
		docs := make([]formatter.VideoDoc, len(videos))
		for i, v := range videos {
			docs[i] = formatter.NewVideoDoc(v)
		}
		return r.writeJSON(docs, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d)", playlist.ListName, len(videos)))
	for _, v := range videos {
		r.writePlain("%s  %s  %s\n", shared.FormatDate(v.OriginUpdate), shared.Truncate(v.Title, 60), v.VideoLink)
	}
	return nil
}

// VideoDelete removes one stored item from a playlist the user may change.
func (r *Runner) VideoDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	user, err := r.currentUser(ctx, cmd)
	if err != nil {
		return err
	}

	video, err := r.videos.Get(ctx, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if _, err := r.managedPlaylist(ctx, user, video.PlaylistID); err != nil {
		return err
	}
	if err := r.videos.Delete(ctx, video.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", video.Title)
}

// VideoOpen opens a stored item on YouTube.
func (r *Runner) VideoOpen(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	video, err := r.videos.Get(ctx, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	return shared.OpenBrowser(video.VideoLink)
}

// VideoExport writes the given playlists (or all of the user's with --all) to disk.
func (r *Runner) VideoExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if cmd.Bool("all") {
		user, err := r.currentUser(ctx, cmd)
		if err != nil {
			return err
		}
		playlists, err := r.playlists.List(ctx, map[string]any{"user_id": user.ID()})
		if err != nil {
			return err
		}
		for _, p := range playlists {
			ids = append(ids, p.ID())
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: pass playlist ids or --all", shared.ErrMissingArgument)
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	progress, stop := r.progress(false)
	result, err := r.exporter.BulkExport(ctx, progress, ids, opts)
	stop()
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d/%d playlists as %s", result.SuccessfulExports, result.TotalPlaylists, result.Format)
	r.writePlain("Output:   %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %s\n", res.PlaylistID, res.ErrorMessage)
		}
	}
	if result.FailedExports > 0 {
		return fmt.Errorf("%d of %d exports failed", result.FailedExports, result.TotalPlaylists)
	}
	return nil
}
