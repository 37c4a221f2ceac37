package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/realtime"
	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/desertthunder/vidhub/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	VideoListView
	InputView
	ConfirmView
	ProgressView
	ResultView
)

// PlaylistSource lists stored playlists. Implemented by [repositories.PlaylistRepository].
type PlaylistSource interface {
	List(ctx context.Context, criteria map[string]any) ([]*models.ExternalPlaylist, error)
}

// Subscriber is the read side of the change feed. Implemented by [realtime.Hub].
type Subscriber interface {
	Subscribe(table string, event realtime.EventType, handler realtime.Handler) func()
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	owner     *models.Profile
	ingestor  *tasks.Ingestor
	playlists PlaylistSource
	videos    tasks.VideoLister

	hub         Subscriber
	changes     chan realtime.Event
	unsubscribe func()

	width        int
	height       int
	playlistList list.Model
	videoList    list.Model
	input        textinput.Model
	bar          progress.Model

	session      *tasks.Session
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	info         *tasks.SessionInfo
	result       *tasks.SaveResult
	state        tasks.State
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a TUI for owner. hub may be nil, in which case the playlist list
// only reloads after the TUI's own saves.
func NewModel(ctx context.Context, owner *models.Profile, ingestor *tasks.Ingestor, playlists PlaylistSource, videos tasks.VideoLister, hub Subscriber) *Model {
	input := textinput.New()
	input.Placeholder = "https://www.youtube.com/playlist?list=..."
	input.CharLimit = 512
	input.Width = 60

	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		owner:        owner,
		ingestor:     ingestor,
		playlists:    playlists,
		videos:       videos,
		hub:          hub,
		playlistList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		videoList:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		input:        input,
		bar:          progress.New(progress.WithDefaultGradient()),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init subscribes to playlist changes and loads the owner's playlists.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchPlaylists()}
	if m.hub != nil && m.unsubscribe == nil {
		m.changes = make(chan realtime.Event, 1)
		m.unsubscribe = m.hub.Subscribe(realtime.TableExternalPlaylists, realtime.Any, func(e realtime.Event) {
			select {
			case m.changes <- e:
			default:
			}
		})
		cmds = append(cmds, m.waitForChange())
	}
	return tea.Batch(cmds...)
}

// Close drops the change feed subscription.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Err returns the last error shown by the TUI.
func (m *Model) Err() error { return m.err }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.videoList.SetSize(msg.Width-4, msg.Height-8)
		m.bar.Width = min(msg.Width-8, 80)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case VideoListView:
			return m.handleVideoListKeys(msg)
		case InputView:
			return m.handleInputKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ProgressView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsLoaded:
		data := msg.data.(playlistsLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.playlists))
		for i, pl := range data.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList.Title = fmt.Sprintf("Playlists of %s", m.owner.Email())
		return m, m.playlistList.SetItems(items)

	case MsgVideosLoaded:
		data := msg.data.(videosLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.videos))
		for i, v := range data.videos {
			items[i] = videoItem{video: v}
		}
		m.videoList.Title = fmt.Sprintf("Videos in '%s'", data.playlist.ListName)
		m.view = VideoListView
		return m, m.videoList.SetItems(items)

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForRun()

	case MsgChecked:
		data := msg.data.(checked)
		m.state = m.session.State()
		if data.err != nil {
			m.err = data.err
			m.view = ResultView
			return m, nil
		}
		m.info = data.info
		m.view = ConfirmView
		return m, nil

	case MsgSaved:
		data := msg.data.(saved)
		if m.session != nil {
			m.state = m.session.State()
		} else if data.err != nil {
			m.state = tasks.Failed
		} else {
			m.state = tasks.Done
		}
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		return m, nil

	case MsgChanged:
		cmds := []tea.Cmd{m.waitForChange()}
		if m.view == PlaylistListView {
			cmds = append(cmds, m.fetchPlaylists())
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case VideoListView:
		return m.renderVideoList()
	case InputView:
		return m.renderInput()
	case ConfirmView:
		return m.renderConfirm()
	case ProgressView:
		return m.renderProgress()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.err = nil
			return m, m.fetchVideos(pl.playlist)
		}
	case key.Matches(msg, m.keys.add):
		m.err = nil
		m.view = InputView
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.refresh):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.err = nil
			return m, m.startRefresh(pl.playlist.ID())
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleVideoListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back) && m.videoList.FilterState() != list.Filtering:
		m.view = PlaylistListView
		return m, nil
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		m.view = PlaylistListView
		return m, nil
	case "enter":
		url := strings.TrimSpace(m.input.Value())
		if url == "" {
			return m, nil
		}
		m.input.Blur()
		return m, m.startCheck(url)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.session = nil
		m.info = nil
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		return m, m.startSave()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		m.session = nil
		m.info = nil
		m.result = nil
		m.err = nil
		return m, m.fetchPlaylists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case VideoListView:
		m.videoList, cmd = m.videoList.Update(msg)
	case InputView:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.playlists.List(m.ctx, map[string]any{"user_id": m.owner.ID()})
		return playlistsLoadedMsg(playlists, err)
	}
}

func (m *Model) fetchVideos(playlist *models.ExternalPlaylist) tea.Cmd {
	return func() tea.Msg {
		videos, err := m.videos.ListByPlaylist(m.ctx, playlist.ID())
		return videosLoadedMsg(playlist, videos, err)
	}
}

func (m *Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		select {
		case e := <-changes:
			return changedMsg(e)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// beginRun resets progress state and opens the channels a background run reports on.
func (m *Model) beginRun() {
	m.progressChan = make(chan tasks.ProgressUpdate)
	m.done = make(chan Msg, 1)
	m.progress = tasks.ProgressUpdate{}
	m.result = nil
	m.err = nil
	m.view = ProgressView
}

func (m *Model) startCheck(url string) tea.Cmd {
	m.beginRun()
	m.session = m.ingestor.NewSession(m.progressChan)
	session, done := m.session, m.done

	go func() {
		info, err := session.Check(m.ctx, url)
		done <- checkedMsg(info, err)
	}()
	return m.waitForRun()
}

func (m *Model) startSave() tea.Cmd {
	m.done = make(chan Msg, 1)
	m.progress = tasks.ProgressUpdate{}
	m.view = ProgressView
	session, done := m.session, m.done

	go func() {
		result, err := session.Save(m.ctx, m.owner.ID())
		done <- savedMsg(result, err)
	}()
	return m.waitForRun()
}

func (m *Model) startRefresh(recordID string) tea.Cmd {
	m.beginRun()
	m.session = nil
	progressChan, done := m.progressChan, m.done

	go func() {
		result, err := m.ingestor.Refresh(m.ctx, recordID, progressChan)
		done <- savedMsg(result, err)
	}()
	return m.waitForRun()
}

// waitForRun delivers the next progress update, or the run's final message once every update
// has been received. Updates are sent unbuffered, so none can arrive after the final message.
func (m *Model) waitForRun() tea.Cmd {
	progressChan, done := m.progressChan, m.done
	return func() tea.Msg {
		select {
		case update := <-progressChan:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) renderPlaylistList() string {
	var b strings.Builder
	b.WriteString(m.playlistList.View())
	if m.err != nil {
		b.WriteString("\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.add, m.keys.refresh, m.keys.quit}
	b.WriteString("\n\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderVideoList() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.back}
	return fmt.Sprintf("%s\n\n%s", m.videoList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderInput() string {
	title := styles.title.Render("Add a YouTube playlist")
	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "check"))
	helpView := m.help.ShortHelpView([]key.Binding{submit, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
}

func (m *Model) renderConfirm() string {
	info := m.info
	title := styles.title.Render(fmt.Sprintf("Save '%s'?", info.Playlist.Title))

	var b strings.Builder
	fmt.Fprintf(&b, "\nPlaylist: %s\n", info.ListURL)
	fmt.Fprintf(&b, "Videos: %d\n", info.Playlist.ItemCount)
	fmt.Fprintf(&b, "Channel: %s (%s subscribers)\n", info.Channel.URL, shared.FormatCount(info.Channel.SubscriberCount))
	fmt.Fprintf(&b, "Published: %s\n", shared.FormatDate(info.Playlist.PublishedAt))
	if info.Prefetched >= 0 && info.Prefetched != info.Playlist.ItemCount {
		b.WriteString(styles.warn.Render(fmt.Sprintf("YouTube returned %d of %d videos\n", info.Prefetched, info.Playlist.ItemCount)))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}

func (m *Model) renderProgress() string {
	title := styles.title.Render("Starting...")
	if m.progress.Message != "" {
		title = styles.title.Render(phaseTitle(m.progress.Phase))
	}

	percent := 0.0
	if m.progress.Total > 0 {
		percent = float64(m.progress.Step) / float64(m.progress.Total)
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.bar.ViewAs(percent), m.progress.Message)
}

func phaseTitle(p tasks.Phase) string {
	switch p {
	case tasks.CheckPlaylist:
		return "Checking playlist"
	case tasks.FetchItems:
		return "Fetching videos"
	case tasks.SavePlaylist:
		return "Saving playlist"
	case tasks.SaveItems:
		return "Saving videos"
	default:
		return "Working"
	}
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	state := styles.State(m.state)

	if m.err != nil {
		msg := fmt.Sprintf("Ingestion %s: %v", state, m.err)
		if m.result != nil && m.result.RecordID != "" {
			msg += fmt.Sprintf("\nThe playlist row %s was kept and can be refreshed.", m.result.RecordID)
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Playlist saved")
	info := fmt.Sprintf(
		"\nState: %s\nRecord: %s\nFetched: %d\nStored: %d/%d",
		state,
		m.result.RecordID,
		m.result.Fetched,
		m.result.Items.Written,
		m.result.Items.Attempted,
	)
	if m.result.Items.Failed > 0 {
		info += "\n" + styles.warn.Render(fmt.Sprintf("%d videos could not be stored; see the log", m.result.Items.Failed))
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
