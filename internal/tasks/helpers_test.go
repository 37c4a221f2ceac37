package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/repositories"
	"github.com/desertthunder/vidhub/internal/services"
	"github.com/desertthunder/vidhub/internal/shared"
	tu "github.com/desertthunder/vidhub/internal/testing"
)

// testEnv is an in-memory database plus a fake YouTube API.
type testEnv struct {
	db        *shared.Database
	fake      *tu.FakeYouTube
	yt        *services.YouTubeService
	profiles  *repositories.ProfileRepository
	playlists *repositories.PlaylistRepository
	videos    *repositories.ExternalVideoRepository
	library   *repositories.LibraryVideoRepository
	owner     *models.Profile
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	fake := tu.NewFakeYouTube("test-key")
	env := &testEnv{
		db:        db,
		fake:      fake,
		yt:        services.NewYouTubeService(fake.Server(t).URL, "test-key"),
		profiles:  repositories.NewProfileRepository(db, nil),
		playlists: repositories.NewPlaylistRepository(db, nil),
		videos:    repositories.NewExternalVideoRepository(db, nil),
		library:   repositories.NewLibraryVideoRepository(db, nil),
	}
	env.owner = env.profile(t, "uploader@example.com", models.LevelUploader)
	return env
}

func (e *testEnv) profile(t *testing.T, email string, level models.UserLevel) *models.Profile {
	t.Helper()
	p := models.NewProfile(email, email)
	p.SetLevel(level)
	if err := e.profiles.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return p
}

func (e *testEnv) ingestor() *Ingestor {
	return NewIngestor(e.yt, e.playlists, e.videos, 0, nil)
}

// drain runs fn with a progress channel and returns every event it sent.
func drain(fn func(chan<- ProgressUpdate)) []ProgressUpdate {
	ch := make(chan ProgressUpdate)
	done := make(chan []ProgressUpdate)
	go func() {
		var got []ProgressUpdate
		for u := range ch {
			got = append(got, u)
		}
		done <- got
	}()
	fn(ch)
	close(ch)
	return <-done
}

func playlistURL(id string) string {
	return "https://www.youtube.com/playlist?list=" + id
}

// flakyVideoStore fails the inserts whose 1-based position is in failAt and calls
// cancel after insert number cancelAt.
type flakyVideoStore struct {
	failAt   map[int]bool
	cancelAt int
	cancel   context.CancelFunc
	calls    int
	saved    []*models.ExternalVideo
}

func (f *flakyVideoStore) Create(_ context.Context, v *models.ExternalVideo) error {
	f.calls++
	if f.cancel != nil && f.calls == f.cancelAt {
		defer f.cancel()
	}
	if f.failAt[f.calls] {
		return errors.New("insert failed")
	}
	f.saved = append(f.saved, v)
	return nil
}
