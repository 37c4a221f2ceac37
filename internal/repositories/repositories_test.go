package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/realtime"
	"github.com/desertthunder/vidhub/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *shared.Database {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *recorder) Publish(e realtime.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types(table string) []realtime.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []realtime.EventType
	for _, e := range r.events {
		if e.Table == table {
			out = append(out, e.Type)
		}
	}
	return out
}

func createProfile(t *testing.T, db *shared.Database, email string) *models.Profile {
	t.Helper()
	p := models.NewProfile(email, "Test User")
	p.SetLevel(models.LevelUploader)
	if err := NewProfileRepository(db, nil).Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return p
}

func createPlaylist(t *testing.T, db *shared.Database, userID, listURL string) *models.ExternalPlaylist {
	t.Helper()
	p := models.NewExternalPlaylist(userID, listURL,
		models.PlaylistInfo{Title: "Lectures", ItemCount: 3},
		models.ChannelInfo{URL: "https://www.youtube.com/channel/UC1", SubscriberCount: 1234567890123},
	)
	if err := NewPlaylistRepository(db, nil).Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}
	return p
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create and Get", func(t *testing.T) {
		db := setupTestDB(t)
		rec := &recorder{}
		repo := NewProfileRepository(db, rec)

		p := models.NewProfile("test@example.com", "Test User")
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("failed to create profile: %v", err)
		}
		if p.ID() == "" {
			t.Error("profile ID should be set after creation")
		}

		got, err := repo.Get(ctx, p.ID())
		if err != nil {
			t.Fatalf("failed to get profile: %v", err)
		}
		if got.Email() != "test@example.com" || got.Level() != models.LevelViewer {
			t.Errorf("unexpected profile %s %s", got.Email(), got.Level())
		}

		byEmail, err := repo.GetByEmail(ctx, "TEST@example.com")
		if err != nil || byEmail.ID() != p.ID() {
			t.Errorf("expected lookup by email to ignore case, got %v", err)
		}

		if types := rec.types(realtime.TableProfiles); len(types) != 1 || types[0] != realtime.Insert {
			t.Errorf("expected one insert event, got %v", types)
		}
	})

	t.Run("Update and SetLevel", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProfileRepository(db, nil)
		p := createProfile(t, db, "u@example.com")

		p.SetDisplayName("Renamed")
		if err := repo.Update(ctx, p); err != nil {
			t.Fatalf("failed to update profile: %v", err)
		}
		if err := repo.SetLevel(ctx, p.ID(), models.LevelAdmin); err != nil {
			t.Fatalf("failed to set level: %v", err)
		}

		got, _ := repo.Get(ctx, p.ID())
		if got.DisplayName() != "Renamed" || !got.IsAdmin() {
			t.Errorf("unexpected profile after update: %s %s", got.DisplayName(), got.Level())
		}

		if err := repo.SetLevel(ctx, p.ID(), models.UserLevel("root")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProfileRepository(db, nil)
		for _, email := range []string{"c@example.com", "a@example.com", "b@example.com"} {
			createProfile(t, db, email)
		}

		all, err := repo.List(ctx, map[string]any{})
		if err != nil {
			t.Fatalf("failed to list profiles: %v", err)
		}
		if len(all) != 3 || all[0].Email() != "a@example.com" {
			t.Errorf("expected 3 profiles ordered by email, got %d", len(all))
		}

		filtered, err := repo.List(ctx, map[string]any{"email": "b@example.com"})
		if err != nil || len(filtered) != 1 {
			t.Errorf("expected 1 filtered profile, got %d (%v)", len(filtered), err)
		}

		uploaders, _ := repo.List(ctx, map[string]any{"user_level": "uploader"})
		if len(uploaders) != 3 {
			t.Errorf("expected 3 uploaders, got %d", len(uploaders))
		}
	})

	t.Run("Delete cascades", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProfileRepository(db, nil)
		p := createProfile(t, db, "gone@example.com")
		pl := createPlaylist(t, db, p.ID(), "https://www.youtube.com/playlist?list=PL1")

		if err := repo.Delete(ctx, p.ID()); err != nil {
			t.Fatalf("failed to delete profile: %v", err)
		}
		if _, err := repo.Get(ctx, p.ID()); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
		if _, err := NewPlaylistRepository(db, nil).Get(ctx, pl.ID()); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected playlist to be removed with its owner, got %v", err)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create and Get", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createProfile(t, db, "owner@example.com")
		p := createPlaylist(t, db, owner.ID(), "https://www.youtube.com/playlist?list=PL1")

		repo := NewPlaylistRepository(db, nil)
		got, err := repo.Get(ctx, p.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if got.ListName != "Lectures" || got.VideoQty != 3 || got.ChannelSubscriber != 1234567890123 {
			t.Errorf("unexpected playlist %+v", got)
		}

		byURL, err := repo.GetByURL(ctx, owner.ID(), p.ListURL)
		if err != nil || byURL.ID() != p.ID() {
			t.Errorf("expected lookup by url to find playlist, got %v", err)
		}

		other := createProfile(t, db, "other@example.com")
		if _, err := repo.GetByURL(ctx, other.ID(), p.ListURL); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("lookup by url should be scoped to the owner, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		rec := &recorder{}
		owner := createProfile(t, db, "owner@example.com")
		p := createPlaylist(t, db, owner.ID(), "https://www.youtube.com/playlist?list=PL1")
		repo := NewPlaylistRepository(db, rec)

		p.Apply(p.ListURL, models.PlaylistInfo{Title: "Renamed", ItemCount: 10}, models.ChannelInfo{URL: "c", SubscriberCount: 5})
		if err := repo.Update(ctx, p); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		got, _ := repo.Get(ctx, p.ID())
		if got.ListName != "Renamed" || got.VideoQty != 10 || got.ChannelSubscriber != 5 {
			t.Errorf("unexpected playlist after update %+v", got)
		}
		if types := rec.types(realtime.TableExternalPlaylists); len(types) != 1 || types[0] != realtime.Update {
			t.Errorf("expected one update event, got %v", types)
		}
	})

	t.Run("List newest first", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createProfile(t, db, "owner@example.com")
		other := createProfile(t, db, "other@example.com")
		repo := NewPlaylistRepository(db, nil)

		base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		for i, id := range []string{"PL1", "PL2", "PL3"} {
			p := models.NewExternalPlaylist(owner.ID(), "https://www.youtube.com/playlist?list="+id, models.PlaylistInfo{Title: id}, models.ChannelInfo{})
			p.SetCreatedAt(base.Add(time.Duration(i) * time.Hour))
			if err := repo.Create(ctx, p); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}
		createPlaylist(t, db, other.ID(), "https://www.youtube.com/playlist?list=PL1")

		mine, err := repo.List(ctx, map[string]any{"user_id": owner.ID()})
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(mine) != 3 || mine[0].ListName != "PL3" || mine[2].ListName != "PL1" {
			t.Errorf("expected 3 playlists newest first, got %d", len(mine))
		}

		all, _ := repo.List(ctx, nil)
		if len(all) != 4 {
			t.Errorf("expected 4 playlists, got %d", len(all))
		}
	})

	t.Run("Delete cascades to items", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createProfile(t, db, "owner@example.com")
		p := createPlaylist(t, db, owner.ID(), "https://www.youtube.com/playlist?list=PL1")
		videos := NewExternalVideoRepository(db, nil)

		v := models.NewExternalVideo(p.ID(), "https://www.youtube.com/watch?v=a", models.VideoInfo{Title: "a"})
		if err := videos.Create(ctx, v); err != nil {
			t.Fatalf("failed to create video: %v", err)
		}

		if err := NewPlaylistRepository(db, nil).Delete(ctx, p.ID()); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}
		if n, _ := videos.CountByPlaylist(ctx, p.ID()); n != 0 {
			t.Errorf("expected items to be removed, %d remain", n)
		}
	})
}

func TestExternalVideoRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createProfile(t, db, "owner@example.com")
		p := createPlaylist(t, db, owner.ID(), "https://www.youtube.com/playlist?list=PL1")
		repo := NewExternalVideoRepository(db, nil)

		published := time.Date(2023, 3, 4, 5, 6, 7, 0, time.UTC)
		v := models.NewExternalVideo(p.ID(), "https://www.youtube.com/watch?v=abc", models.VideoInfo{
			VideoID: "abc", Title: "제목", Description: "line one\nline two", PublishedAt: published,
		})
		if err := repo.Create(ctx, v); err != nil {
			t.Fatalf("failed to create video: %v", err)
		}

		got, err := repo.Get(ctx, v.ID())
		if err != nil {
			t.Fatalf("failed to get video: %v", err)
		}
		if got.Title != "제목" || got.Description != "line one\nline two" || got.VideoLink != v.VideoLink {
			t.Errorf("unexpected video %+v", got)
		}
		if !got.OriginUpdate.Equal(published) {
			t.Errorf("expected origin %v, got %v", published, got.OriginUpdate)
		}
	})

	t.Run("missing publish time is stored as NULL", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createProfile(t, db, "owner@example.com")
		p := createPlaylist(t, db, owner.ID(), "https://www.youtube.com/playlist?list=PL1")
		repo := NewExternalVideoRepository(db, nil)

		v := models.NewExternalVideo(p.ID(), "https://www.youtube.com/watch?v=x", models.VideoInfo{Title: "x"})
		if err := repo.Create(ctx, v); err != nil {
			t.Fatalf("failed to create video: %v", err)
		}
		got, _ := repo.Get(ctx, v.ID())
		if !got.OriginUpdate.IsZero() {
			t.Errorf("expected zero origin, got %v", got.OriginUpdate)
		}
	})

	t.Run("ListByPlaylist orders by publish time and keeps duplicates", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createProfile(t, db, "owner@example.com")
		p := createPlaylist(t, db, owner.ID(), "https://www.youtube.com/playlist?list=PL1")
		repo := NewExternalVideoRepository(db, nil)

		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := range 3 {
			v := models.NewExternalVideo(p.ID(), "https://www.youtube.com/watch?v=dup", models.VideoInfo{
				Title: "v", PublishedAt: base.Add(time.Duration(i) * time.Hour),
			})
			if err := repo.Create(ctx, v); err != nil {
				t.Fatalf("failed to create video %d: %v", i, err)
			}
		}

		videos, err := repo.ListByPlaylist(ctx, p.ID())
		if err != nil {
			t.Fatalf("failed to list videos: %v", err)
		}
		if len(videos) != 3 {
			t.Fatalf("expected 3 rows for the same link, got %d", len(videos))
		}
		if !videos[0].OriginUpdate.Equal(base.Add(2 * time.Hour)) {
			t.Errorf("expected newest first, got %v", videos[0].OriginUpdate)
		}
	})

	t.Run("unknown playlist is a foreign key error", func(t *testing.T) {
		db := setupTestDB(t)
		v := models.NewExternalVideo("missing", "https://www.youtube.com/watch?v=a", models.VideoInfo{})
		if err := NewExternalVideoRepository(db, nil).Create(ctx, v); !errors.Is(err, shared.ErrForeignKey) {
			t.Errorf("expected ErrForeignKey, got %v", err)
		}
	})
}

func TestLibraryVideoRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	owner := createProfile(t, db, "owner@example.com")
	rec := &recorder{}
	repo := NewLibraryVideoRepository(db, rec)

	v := models.NewLibraryVideo(owner.ID(), "Intro", "desc", "https://www.youtube.com/watch?v=abc")
	if err := repo.Create(ctx, v); err != nil {
		t.Fatalf("failed to create library video: %v", err)
	}

	t.Run("Get without subtitles", func(t *testing.T) {
		got, err := repo.Get(ctx, v.ID())
		if err != nil {
			t.Fatalf("failed to get library video: %v", err)
		}
		if got.Title != "Intro" || got.SubtitleText != "" {
			t.Errorf("unexpected library video %+v", got)
		}
	})

	t.Run("Update subtitles", func(t *testing.T) {
		v.SubtitleText = "hello\nworld"
		if err := repo.Update(ctx, v); err != nil {
			t.Fatalf("failed to update library video: %v", err)
		}
		got, err := repo.GetByOwnerURL(ctx, owner.ID(), v.VideoURL)
		if err != nil || got.SubtitleText != "hello\nworld" {
			t.Errorf("expected subtitles to be stored, got %v (%v)", got, err)
		}
		if _, err := repo.GetByOwnerURL(ctx, "someone-else", v.VideoURL); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("lookup should be scoped to the owner, got %v", err)
		}
	})

	t.Run("List and Delete", func(t *testing.T) {
		list, err := repo.List(ctx, map[string]any{"user_id": owner.ID()})
		if err != nil || len(list) != 1 {
			t.Fatalf("expected 1 library video, got %d (%v)", len(list), err)
		}
		if err := repo.Delete(ctx, v.ID()); err != nil {
			t.Fatalf("failed to delete library video: %v", err)
		}
		want := []realtime.EventType{realtime.Insert, realtime.Update, realtime.Delete}
		got := rec.types(realtime.TableVideos)
		if len(got) != len(want) {
			t.Fatalf("expected events %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})
}
