package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vidhub/internal/formatter"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/desertthunder/vidhub/internal/tasks"
	"github.com/urfave/cli/v3"
)

// saveView is the JSON shape of a finished save.
type saveView struct {
	RecordID string `json:"record_id"`
	State    string `json:"state"`
	Fetched  int    `json:"fetched"`
	Written  int    `json:"written"`
	Failed   int    `json:"failed"`
	Error    string `json:"error,omitempty"`
}

// PlaylistCheck resolves a playlist URL and prints what would be saved.
func (r *Runner) PlaylistCheck(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	progress, stop := r.progress(cmd.Bool("json"))
	info, err := r.ingestor.NewSession(progress).Check(ctx, url)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(info, cmd.Bool("pretty"))
	}
	r.printInfo(info)
	return nil
}

func (r *Runner) printInfo(info *tasks.SessionInfo) {
	r.writePlainHeader(info.Playlist.Title)
	r.writePlain("Playlist:    %s\n", info.PlaylistID)
	r.writePlain("Channel:     %s (%s subscribers)\n", info.Channel.URL, shared.FormatCount(info.Channel.SubscriberCount))
	r.writePlain("Published:   %s\n", shared.FormatDate(info.Playlist.PublishedAt))
	r.writePlain("Items:       %d\n", info.Playlist.ItemCount)
	if info.Prefetched >= 0 {
		r.writePlain("Reachable:   %d\n", info.Prefetched)
		if info.Prefetched < info.Playlist.ItemCount {
			r.writePlain("⚠ %d items are private, deleted or unavailable\n", info.Playlist.ItemCount-info.Prefetched)
		}
	}
}

// PlaylistAdd checks and saves a playlist for the acting user.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}
	user, err := r.currentUser(ctx, cmd)
	if err != nil {
		return err
	}
	if err := tasks.RequireLevel(user, models.LevelUploader); err != nil {
		return err
	}

	progress, stop := r.progress(cmd.Bool("json"))
	session := r.ingestor.NewSession(progress)
	info, err := session.Check(ctx, url)
	if err != nil {
		stop()
		return err
	}
	result, err := session.Save(ctx, user.ID())
	stop()

	r.logger.Info("playlist added", "title", info.Playlist.Title, "state", session.State())
	return r.reportSave(cmd, session.State(), result, err)
}

// PlaylistRefresh re-checks a saved playlist and appends its current items.
func (r *Runner) PlaylistRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	user, err := r.currentUser(ctx, cmd)
	if err != nil {
		return err
	}
	playlist, err := r.managedPlaylist(ctx, user, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := tasks.RequireLevel(user, models.LevelUploader); err != nil {
		return err
	}

	progress, stop := r.progress(cmd.Bool("json"))
	result, err := r.ingestor.Refresh(ctx, playlist.ID(), progress)
	stop()

	state := tasks.Done
	switch {
	case err != nil && result != nil:
		state = tasks.PartiallyFailed
	case err != nil:
		state = tasks.Failed
	}
	return r.reportSave(cmd, state, result, err)
}

// reportSave prints a save outcome. A partial save is reported and still returns its error.
func (r *Runner) reportSave(cmd *cli.Command, state tasks.State, result *tasks.SaveResult, err error) error {
	if result == nil {
		return err
	}

	view := saveView{
		RecordID: result.RecordID,
		State:    state.String(),
		Fetched:  result.Fetched,
		Written:  result.Items.Written,
		Failed:   result.Items.Failed,
	}
	if err != nil {
		view.Error = err.Error()
	}

	if cmd.Bool("json") {
		if werr := r.writeJSON(view, cmd.Bool("pretty")); werr != nil {
			return werr
		}
		return err
	}

	r.writePlainln("Saved playlist %s (%s)", view.RecordID, view.State)
	r.writePlain("Fetched: %d  Written: %d  Failed: %d\n", view.Fetched, view.Written, view.Failed)
	return err
}

// managedPlaylist loads a playlist the user may change.
func (r *Runner) managedPlaylist(ctx context.Context, user *models.Profile, id string) (*models.ExternalPlaylist, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	playlist, err := r.playlists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tasks.CanManage(user, playlist.UserID) {
		return nil, fmt.Errorf("%w: playlist %s belongs to another user", shared.ErrForbidden, id)
	}
	return playlist, nil
}

// PlaylistList prints the acting user's playlists, or everyone's with --all.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	user, err := r.currentUser(ctx, cmd)
	if err != nil {
		return err
	}

	criteria := map[string]any{"user_id": user.ID()}
	if cmd.Bool("all") {
		if err := tasks.RequireLevel(user, models.LevelAdmin); err != nil {
			return err
		}
		criteria = nil
	}

	playlists, err := r.playlists.List(ctx, criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		docs := make([]formatter.PlaylistDoc, len(playlists))
		for i, p := range playlists {
			docs[i] = formatter.NewPlaylistDoc(p)
		}
		return r.writeJSON(docs, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, p := range playlists {
		r.writePlain("%s  %-40s %5d videos  %s\n", p.ID(), shared.Truncate(p.ListName, 40), p.VideoQty, shared.FormatDate(p.UpdatedAt()))
	}
	return nil
}

// PlaylistDelete removes a saved playlist with its items.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	user, err := r.currentUser(ctx, cmd)
	if err != nil {
		return err
	}
	playlist, err := r.managedPlaylist(ctx, user, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if err := r.playlists.Delete(ctx, playlist.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", playlist.ListName)
}

// PlaylistOpen opens a saved playlist's YouTube page.
func (r *Runner) PlaylistOpen(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	playlist, err := r.playlists.Get(ctx, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	return shared.OpenBrowser(playlist.ListURL)
}
