package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/desertthunder/vidhub/internal/tasks"
	"github.com/urfave/cli/v3"
)

// libraryView is the JSON shape of a [models.LibraryVideo].
type libraryView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	URL          string    `json:"url"`
	HasSubtitles bool      `json:"has_subtitles"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *Runner) newLibraryView(v *models.LibraryVideo) libraryView {
	return libraryView{
		ID:           v.ID(),
		Title:        v.Title,
		Description:  v.Description,
		URL:          r.lib.URL(v),
		HasSubtitles: v.SubtitleText != "",
		UpdatedAt:    v.UpdatedAt(),
	}
}

// LibraryAdd adds a YouTube video to the acting user's library.
func (r *Runner) LibraryAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	user, err := r.currentUser(ctx, cmd)
	if err != nil {
		return err
	}

	progress, stop := r.progress(false)
	video, err := r.lib.AddFromYouTube(ctx, user, cmd.StringArg("url"), cmd.Bool("captions"), progress)
	stop()
	if err != nil {
		return err
	}

	r.writePlain("✓ %s (%s)\n", video.Title, video.ID())
	if cmd.Bool("captions") && video.SubtitleText == "" {
		r.writePlain("⚠ No captions were stored\n")
	}
	return nil
}

// LibraryUpload stores a local file in the bucket and records it.
func (r *Runner) LibraryUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}
	user, err := r.currentUser(ctx, cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	title := cmd.String("title")
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	progress, stop := r.progress(false)
	video, err := r.lib.Upload(ctx, user, tasks.UploadRequest{
		Title:       title,
		Description: cmd.String("description"),
		Filename:    filepath.Base(path),
		Body:        f,
	}, progress)
	stop()
	if err != nil {
		return err
	}

	return r.writePlain("✓ Uploaded %s\n%s\n", video.Title, r.lib.URL(video))
}

// LibraryList prints the acting user's library.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	user, err := r.currentUser(ctx, cmd)
	if err != nil {
		return err
	}

	videos, err := r.library.List(ctx, map[string]any{"user_id": user.ID()})
	if err != nil {
		return err
	}

	views := make([]libraryView, len(videos))
	for i, v := range videos {
		views[i] = r.newLibraryView(v)
	}
	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Library (%d)", len(views)))
	for _, v := range views {
		cc := "  "
		if v.HasSubtitles {
			cc = "CC"
		}
		r.writePlain("%s %s  %-40s %s\n", cc, v.ID, shared.Truncate(v.Title, 40), v.URL)
	}
	return nil
}

// LibraryRemove deletes a library video and its stored file.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	user, err := r.currentUser(ctx, cmd)
	if err != nil {
		return err
	}

	if err := r.lib.Remove(ctx, user, cmd.StringArg("id")); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s\n", cmd.StringArg("id"))
}
