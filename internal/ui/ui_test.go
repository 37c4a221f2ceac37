package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/realtime"
	"github.com/desertthunder/vidhub/internal/repositories"
	"github.com/desertthunder/vidhub/internal/services"
	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/desertthunder/vidhub/internal/tasks"
	tu "github.com/desertthunder/vidhub/internal/testing"
)

type fixture struct {
	model     *Model
	fake      *tu.FakeYouTube
	hub       *realtime.Hub
	playlists *repositories.PlaylistRepository
	videos    *repositories.ExternalVideoRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	hub := realtime.NewHub(nil)
	owner := models.NewProfile("owner@example.com", "Owner")
	if err := repositories.NewProfileRepository(db, nil).Create(context.Background(), owner); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	fake := tu.NewFakeYouTube("")
	yt := services.NewYouTubeService(fake.Server(t).URL, "")
	playlists := repositories.NewPlaylistRepository(db, hub)
	videos := repositories.NewExternalVideoRepository(db, hub)
	ingestor := tasks.NewIngestor(yt, playlists, videos, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := NewModel(ctx, owner, ingestor, playlists, videos, hub)
	t.Cleanup(m.Close)
	return &fixture{model: m, fake: fake, hub: hub, playlists: playlists, videos: videos}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// run feeds cmd's messages back into the model until no command is left.
func run(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func TestModel(t *testing.T) {
	t.Run("add playlist flow", func(t *testing.T) {
		f := newFixture(t)
		f.fake.AddPlaylist(tu.FakePlaylist{ID: "PL", Title: "Lectures", Declared: 60, Items: 60})
		m := f.model

		m.Update(keyPress("a"))
		if m.view != InputView {
			t.Fatalf("expected InputView, got %d", m.view)
		}
		m.input.SetValue("https://www.youtube.com/playlist?list=PL")

		_, cmd := m.Update(keyPress("enter"))
		run(m, cmd)
		if m.view != ConfirmView {
			t.Fatalf("expected ConfirmView, got %d (err %v)", m.view, m.err)
		}
		if m.info.Prefetched != 60 || !strings.Contains(m.View(), "Lectures") {
			t.Errorf("unexpected confirm view for %+v", m.info)
		}

		_, cmd = m.Update(keyPress("y"))
		run(m, cmd)
		if m.view != ResultView || m.err != nil {
			t.Fatalf("expected a successful result, got view %d err %v", m.view, m.err)
		}
		if m.state != tasks.Done || m.result.Items.Written != 60 {
			t.Errorf("unexpected result %+v in state %s", m.result, m.state)
		}
		if !strings.Contains(m.View(), "Playlist saved") {
			t.Errorf("unexpected result view %q", m.View())
		}

		_, cmd = m.Update(keyPress("enter"))
		run(m, cmd)
		if m.view != PlaylistListView || len(m.playlistList.Items()) != 1 {
			t.Errorf("expected the saved playlist in the list, got %d items", len(m.playlistList.Items()))
		}
	})

	t.Run("failed check shows the error", func(t *testing.T) {
		f := newFixture(t)
		m := f.model

		m.Update(keyPress("a"))
		m.input.SetValue("https://www.youtube.com/watch?v=abc")
		_, cmd := m.Update(keyPress("enter"))
		run(m, cmd)

		if m.view != ResultView || !errors.Is(m.err, shared.ErrInvalidURL) {
			t.Fatalf("expected an invalid URL result, got view %d err %v", m.view, m.err)
		}
		if m.state != tasks.Failed {
			t.Errorf("expected Failed, got %s", m.state)
		}
	})

	t.Run("cancel on confirm returns to the list", func(t *testing.T) {
		f := newFixture(t)
		f.fake.AddPlaylist(tu.FakePlaylist{ID: "PL", Declared: 2, Items: 2})
		m := f.model

		m.Update(keyPress("a"))
		m.input.SetValue("https://www.youtube.com/playlist?list=PL")
		_, cmd := m.Update(keyPress("enter"))
		run(m, cmd)

		m.Update(keyPress("n"))
		if m.view != PlaylistListView || m.session != nil {
			t.Errorf("expected to return to the list, got view %d", m.view)
		}
	})

	t.Run("browses videos and reloads on changes", func(t *testing.T) {
		f := newFixture(t)
		f.fake.AddPlaylist(tu.FakePlaylist{ID: "PL", Title: "Stored", Declared: 3, Items: 3})
		m := f.model

		changes := 0
		unsubscribe := f.hub.Subscribe(realtime.TableExternalPlaylists, realtime.Insert, func(realtime.Event) { changes++ })
		defer unsubscribe()

		m.Init()
		if _, err := m.ingestor.Add(context.Background(), m.owner.ID(), "https://www.youtube.com/playlist?list=PL", nil); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if changes != 1 {
			t.Errorf("expected one insert event, got %d", changes)
		}

		msg := m.waitForChange()()
		if changed, ok := msg.(Msg); !ok || changed.kind != MsgChanged {
			t.Fatalf("expected a change message, got %#v", msg)
		}
		m.Update(msg)
		run(m, m.fetchPlaylists())
		if len(m.playlistList.Items()) != 1 {
			t.Fatalf("expected the list to reload, got %d items", len(m.playlistList.Items()))
		}

		_, cmd := m.Update(keyPress("enter"))
		run(m, cmd)
		if m.view != VideoListView || len(m.videoList.Items()) != 3 {
			t.Fatalf("expected 3 videos, got view %d with %d items", m.view, len(m.videoList.Items()))
		}
		if first := m.videoList.Items()[0].(videoItem); first.Title() != "Video 2" {
			t.Errorf("expected newest first, got %s", first.Title())
		}

		m.Update(keyPress("esc"))
		if m.view != PlaylistListView {
			t.Errorf("expected PlaylistListView, got %d", m.view)
		}
	})
}

func TestPalette_State(t *testing.T) {
	for _, st := range []tasks.State{tasks.Idle, tasks.InfoReady, tasks.Failed, tasks.PartiallyFailed, tasks.Done} {
		if got := styles.State(st); !strings.Contains(got, st.String()) {
			t.Errorf("State(%s) = %q", st, got)
		}
	}
}
