package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
)

// prefetchThreshold is the declared item count above which a check also pages through the items.
const prefetchThreshold = 50

// State is the position of a [Session] in its lifecycle.
type State int

const (
	Idle State = iota
	Checking
	InfoReady
	Failed
	Saving
	Done
	PartiallyFailed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Checking:
		return "checking"
	case InfoReady:
		return "info_ready"
	case Failed:
		return "failed"
	case Saving:
		return "saving"
	case Done:
		return "done"
	case PartiallyFailed:
		return "partially_failed"
	default:
		return ""
	}
}

// SessionInfo is what a successful check learned about a playlist.
type SessionInfo struct {
	PlaylistID string
	ListURL    string
	Playlist   models.PlaylistInfo
	Channel    models.ChannelInfo
	Prefetched int // items returned by the validation pre-fetch; -1 when it did not run
}

// SaveResult describes a completed save.
type SaveResult struct {
	RecordID string
	Fetched  int
	Items    WriteResult
}

// Ingestor checks and stores YouTube playlists. It holds no per-playlist state and may
// be shared; each ingestion runs in its own [Session].
type Ingestor struct {
	client    MetadataClient
	fetcher   *Fetcher
	writer    *Writer
	playlists PlaylistStore
	logger    *log.Logger
}

// NewIngestor wires the metadata client and stores. interval is the pause between item pages.
func NewIngestor(client MetadataClient, playlists PlaylistStore, videos VideoStore, interval time.Duration, logger *log.Logger) *Ingestor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Ingestor{
		client:    client,
		fetcher:   NewFetcher(client, interval, logger),
		writer:    NewWriter(playlists, videos, logger),
		playlists: playlists,
		logger:    logger,
	}
}

// Fetcher exposes the paginated item fetcher.
func (i *Ingestor) Fetcher() *Fetcher { return i.fetcher }

// NewSession starts a session that will insert a new playlist row.
func (i *Ingestor) NewSession(progress chan<- ProgressUpdate) *Session {
	return &Session{ing: i, progress: progress}
}

// EditSession starts a session that will update the stored playlist recordID.
func (i *Ingestor) EditSession(recordID string, progress chan<- ProgressUpdate) *Session {
	return &Session{ing: i, recordID: recordID, progress: progress}
}

// Add checks playlistURL and saves it for ownerID in a fresh session.
func (i *Ingestor) Add(ctx context.Context, ownerID, playlistURL string, progress chan<- ProgressUpdate) (*SaveResult, error) {
	s := i.NewSession(progress)
	if _, err := s.Check(ctx, playlistURL); err != nil {
		return nil, err
	}
	return s.Save(ctx, ownerID)
}

// Refresh re-checks the stored playlist recordID against YouTube and updates it in place.
// New items are appended; existing item rows are left as they are.
func (i *Ingestor) Refresh(ctx context.Context, recordID string, progress chan<- ProgressUpdate) (*SaveResult, error) {
	stored, err := i.playlists.Get(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist: %w", err)
	}

	s := i.EditSession(recordID, progress)
	if _, err := s.Check(ctx, stored.ListURL); err != nil {
		return nil, err
	}
	return s.Save(ctx, stored.UserID)
}

// Session walks one playlist through Idle → Checking → InfoReady|Failed → Saving → Done|PartiallyFailed.
//
// Its methods are meant to be called from one goroutine; State, Info and Err may be read from any.
type Session struct {
	ing      *Ingestor
	progress chan<- ProgressUpdate

	mu       sync.Mutex
	state    State
	recordID string
	info     *SessionInfo
	err      error
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Info returns the result of the last successful check, or nil.
func (s *Session) Info() *SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Err returns the error that moved the session to Failed or PartiallyFailed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// RecordID returns the playlist row the session writes to; empty until the first save of a new playlist.
func (s *Session) RecordID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordID
}

func (s *Session) begin(next State, allowed ...State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Checking || s.state == Saving {
		return fmt.Errorf("%w: session is %s", shared.ErrSessionBusy, s.state)
	}
	if len(allowed) > 0 {
		ok := false
		for _, st := range allowed {
			ok = ok || s.state == st
		}
		if !ok {
			return fmt.Errorf("%w: session is %s", shared.ErrNotReady, s.state)
		}
	}
	s.state = next
	s.err = nil
	return nil
}

func (s *Session) finish(state State, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.err = err
	return err
}

// Check validates playlistURL and resolves the playlist and its channel. A playlist
// declaring more than 50 items is also paged through once as validation.
//
// A URL without a "list" parameter fails with [shared.ErrInvalidURL] before any request.
func (s *Session) Check(ctx context.Context, playlistURL string) (*SessionInfo, error) {
	if err := s.begin(Checking); err != nil {
		return nil, err
	}

	listURL := strings.TrimSpace(playlistURL)
	playlistID, err := shared.ExtractPlaylistID(listURL)
	if err != nil {
		return nil, s.finish(Failed, err)
	}
	sendProgress(ctx, s.progress, checkStartUpdate(playlistID))

	playlist, err := s.ing.client.GetPlaylistInfo(ctx, playlistID)
	if err != nil {
		return nil, s.finish(Failed, err)
	}

	channel, err := s.ing.client.GetChannelInfo(ctx, playlist.ChannelID)
	if err != nil {
		return nil, s.finish(Failed, err)
	}

	info := &SessionInfo{
		PlaylistID: playlistID,
		ListURL:    listURL,
		Playlist:   *playlist,
		Channel:    *channel,
		Prefetched: -1,
	}

	if playlist.ItemCount > prefetchThreshold {
		items, err := s.ing.fetcher.Fetch(ctx, playlistID, s.progress)
		if err != nil {
			return nil, s.finish(Failed, err)
		}
		info.Prefetched = len(items)
	}

	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
	s.finish(InfoReady, nil)

	s.ing.logger.Info("playlist checked", "playlist", playlistID, "title", playlist.Title, "declared", playlist.ItemCount)
	sendProgress(ctx, s.progress, checkDoneUpdate(info))
	return info, nil
}

// Save stores the checked playlist for ownerID, then fetches every item again and writes
// them one by one. Item write failures are logged and do not fail the save.
//
// Failures before the playlist row is written leave the session Failed; later
// failures leave it PartiallyFailed with the row in place.
func (s *Session) Save(ctx context.Context, ownerID string) (*SaveResult, error) {
	if ownerID == "" {
		return nil, shared.ErrNotAuthenticated
	}
	if err := s.begin(Saving, InfoReady); err != nil {
		return nil, err
	}

	s.mu.Lock()
	info, recordID := s.info, s.recordID
	s.mu.Unlock()

	data := PlaylistData{ListURL: info.ListURL, Info: info.Playlist, Channel: info.Channel}
	id, err := s.ing.writer.UpsertPlaylist(ctx, recordID, ownerID, data)
	if err != nil {
		return nil, s.finish(Failed, err)
	}

	s.mu.Lock()
	s.recordID = id
	s.mu.Unlock()
	sendProgress(ctx, s.progress, savePlaylistUpdate(id, info.Playlist.Title))

	result := &SaveResult{RecordID: id}

	playlistID, err := shared.ExtractPlaylistID(info.ListURL)
	if err != nil {
		return result, s.finish(PartiallyFailed, err)
	}

	items, err := s.ing.fetcher.Fetch(ctx, playlistID, s.progress)
	if err != nil {
		return result, s.finish(PartiallyFailed, err)
	}
	result.Fetched = len(items)

	result.Items = s.ing.writer.WriteItems(ctx, id, items, s.progress)
	if err := ctx.Err(); err != nil {
		return result, s.finish(PartiallyFailed, err)
	}
	s.finish(Done, nil)

	s.ing.logger.Info("playlist saved", "record", id, "fetched", result.Fetched, "written", result.Items.Written, "failed", result.Items.Failed)
	return result, nil
}
