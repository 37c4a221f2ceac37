package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/realtime"
	"github.com/desertthunder/vidhub/internal/repositories"
	"github.com/desertthunder/vidhub/internal/services"
	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/desertthunder/vidhub/internal/storage"
	"github.com/desertthunder/vidhub/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and everything built on it are opened lazily by [Runner.connect].
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db     *shared.Database
	ownsDB bool
	hub    *realtime.Hub

	profiles  *repositories.ProfileRepository
	playlists *repositories.PlaylistRepository
	videos    *repositories.ExternalVideoRepository
	library   *repositories.LibraryVideoRepository

	youtube  *services.YouTubeService
	proxy    *services.APIService
	captions *services.CaptionService

	ingestor *tasks.Ingestor
	lib      *tasks.Library
	exporter *tasks.Exporter
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *shared.Database // used instead of opening config.Database; the caller closes it
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

// SetLogger replaces the logger used by the runner and anything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// loadConfig reads path when it exists, then applies .env and environment overrides.
func (r *Runner) loadConfig(path string) error {
	r.configPath = path
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if err := r.config.LoadEnv(".env"); err != nil {
		return err
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	return nil
}

// openDB opens the configured database unless one was injected.
func (r *Runner) openDB(ctx context.Context) (*shared.Database, error) {
	if r.db != nil {
		return r.db, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db, r.ownsDB = db, true
	r.logger.Debug("database opened", "driver", db.Driver)
	return db, nil
}

// connect opens the database, applies pending migrations and wires repositories,
// API clients and tasks. Calling it again is a no-op.
func (r *Runner) connect(ctx context.Context) error {
	if r.ingestor != nil {
		return nil
	}

	db, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.hub = realtime.NewHub(r.logger)
	r.profiles = repositories.NewProfileRepository(db, r.hub)
	r.playlists = repositories.NewPlaylistRepository(db, r.hub)
	r.videos = repositories.NewExternalVideoRepository(db, r.hub)
	r.library = repositories.NewLibraryVideoRepository(db, r.hub)

	yt := r.config.YouTube
	opts := []services.YouTubeOption{services.WithHTTPClient(r.httpClient)}
	if token := yt.Token(); token != nil {
		opts = append(opts, services.WithTokenSource(ctx, yt.OAuthConfig().TokenSource(ctx, token)))
	}
	r.youtube = services.NewYouTubeService(yt.BaseURL, yt.APIKey, opts...)
	r.proxyService()

	var bucket storage.Bucket
	if b, err := storage.NewLocalBucket(r.config.Storage.Root, r.config.Storage.PublicBaseURL); err != nil {
		r.logger.Warn("uploads disabled", "error", err)
	} else {
		bucket = b
	}

	ingestLogger := shared.WithLogger(r.logger, "component", "ingest")
	r.ingestor = tasks.NewIngestor(r.youtube, r.playlists, r.videos, yt.PageInterval(), ingestLogger)
	r.lib = tasks.NewLibrary(r.library, bucket, r.youtube, r.captions, shared.WithLogger(r.logger, "component", "library"))
	r.exporter = tasks.NewExporter(tasks.StoreSource{Playlists: r.playlists, Videos: r.videos})
	return nil
}

// proxyService builds the caption proxy clients; they need no database.
func (r *Runner) proxyService() *services.APIService {
	if r.proxy == nil {
		r.proxy = services.NewAPIService(r.config.Captions.ProxyURL, r.httpClient)
		r.captions = services.NewCaptionService(r.proxy)
	}
	return r.proxy
}

// close releases the database when the runner opened it.
func (r *Runner) close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db, r.ownsDB = nil, false
	return err
}

// currentUser resolves the --user flag (or VIDHUB_USER) to a stored profile.
func (r *Runner) currentUser(ctx context.Context, cmd *cli.Command) (*models.Profile, error) {
	email := cmd.String("user")
	if email == "" {
		return nil, fmt.Errorf("%w: pass --user or set %s", shared.ErrNotAuthenticated, envUser)
	}

	profile, err := r.profiles.GetByEmail(ctx, email)
	if errors.Is(err, shared.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no user %s", shared.ErrNotAuthenticated, email)
	}
	return profile, err
}

// progress returns a channel whose updates are printed until the returned stop function is called.
// Quiet progress is drained and logged at debug level instead, keeping JSON output clean.
func (r *Runner) progress(quiet bool) (chan<- tasks.ProgressUpdate, func()) {
	ch := make(chan tasks.ProgressUpdate)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			if quiet {
				r.logger.Debug("progress", "phase", update.Phase, "step", update.Step, "total", update.Total)
				continue
			}
			r.printProgress(update)
		}
	}()
	return ch, func() {
		close(ch)
		<-done
	}
}

func (r *Runner) printProgress(u tasks.ProgressUpdate) {
	switch {
	case u.Phase == tasks.SaveItems && u.Step > 0 && u.Step < u.Total:
		// one line per item is too noisy
		if u.Step%25 != 0 {
			return
		}
		r.writePlain("   %d/%d items written\n", u.Step, u.Total)
	case u.Total > 0:
		r.writePlain("[%s] %d/%d %s\n", u.Phase, u.Step, u.Total, u.Message)
	default:
		r.writePlain("[%s] %s\n", u.Phase, u.Message)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
