package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/services"
	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/desertthunder/vidhub/internal/storage"
)

// VideoInfoClient resolves a single YouTube video. Implemented by [services.YouTubeService].
type VideoInfoClient interface {
	GetVideoInfo(ctx context.Context, videoID string) (*models.VideoInfo, error)
}

// CaptionFetcher fetches a transcript through the caption proxy. Implemented by [services.CaptionService].
type CaptionFetcher interface {
	Fetch(ctx context.Context, videoURL string) (*services.Captions, error)
}

// LibraryStore persists library videos. Implemented by [repositories.LibraryVideoRepository].
type LibraryStore interface {
	Create(ctx context.Context, video *models.LibraryVideo) error
	Get(ctx context.Context, id string) (*models.LibraryVideo, error)
	GetByOwnerURL(ctx context.Context, userID, videoURL string) (*models.LibraryVideo, error)
	Update(ctx context.Context, video *models.LibraryVideo) error
	Delete(ctx context.Context, id string) error
}

// UploadRequest is a local file headed for the library.
type UploadRequest struct {
	Title       string
	Description string
	Filename    string
	Body        io.Reader
}

// Library manages the video library: files uploaded into a [storage.Bucket] and
// YouTube videos added by link.
type Library struct {
	videos   LibraryStore
	bucket   storage.Bucket
	youtube  VideoInfoClient
	captions CaptionFetcher
	logger   *log.Logger
}

// NewLibrary wires the library. bucket, youtube and captions may be nil when the
// corresponding operations are not used.
func NewLibrary(videos LibraryStore, bucket storage.Bucket, youtube VideoInfoClient, captions CaptionFetcher, logger *log.Logger) *Library {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Library{videos: videos, bucket: bucket, youtube: youtube, captions: captions, logger: logger}
}

// Upload stores req.Body under the owner's prefix and records it. The object is
// removed again when the row cannot be written.
func (l *Library) Upload(ctx context.Context, owner *models.Profile, req UploadRequest, progress chan<- ProgressUpdate) (*models.LibraryVideo, error) {
	if err := RequireLevel(owner, models.LevelUploader); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}
	if l.bucket == nil {
		return nil, fmt.Errorf("%w: storage is not configured", shared.ErrMissingConfig)
	}

	objectPath := storage.ObjectPath(owner.ID(), req.Filename)
	sendProgress(ctx, progress, uploadUpdate(0, 2, fmt.Sprintf("업로드 중... (%s)", req.Filename)))

	size, err := l.bucket.Upload(ctx, objectPath, req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", req.Filename, err)
	}
	sendProgress(ctx, progress, uploadUpdate(1, 2, fmt.Sprintf("%d bytes 업로드 완료", size)))

	video := models.NewLibraryVideo(owner.ID(), strings.TrimSpace(req.Title), req.Description, objectPath)
	if err := l.videos.Create(ctx, video); err != nil {
		if rmErr := l.bucket.Remove(ctx, objectPath); rmErr != nil {
			l.logger.Error("failed to remove orphaned object", "path", objectPath, "error", rmErr)
		}
		return nil, err
	}

	sendProgress(ctx, progress, uploadUpdate(2, 2, "동영상이 등록되었습니다"))
	l.logger.Info("video uploaded", "id", video.ID(), "path", objectPath, "bytes", size)
	return video, nil
}

// AddFromYouTube records a YouTube video in the owner's library, refreshing the title
// and description when the owner already has it. With withCaptions set, the transcript
// is stored as subtitle text; a caption failure is logged and the video is kept without it.
func (l *Library) AddFromYouTube(ctx context.Context, owner *models.Profile, videoURL string, withCaptions bool, progress chan<- ProgressUpdate) (*models.LibraryVideo, error) {
	if err := RequireLevel(owner, models.LevelUploader); err != nil {
		return nil, err
	}
	videoID, err := shared.ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}
	if l.youtube == nil {
		return nil, fmt.Errorf("%w: youtube client is not configured", shared.ErrMissingConfig)
	}

	total := 2
	if withCaptions {
		total = 3
	}
	sendProgress(ctx, progress, libraryUpdate(0, total, "동영상 정보를 가져오는 중..."))

	info, err := l.youtube.GetVideoInfo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	link := shared.VideoLink(videoID)
	sendProgress(ctx, progress, libraryUpdate(1, total, info.Title))

	video, err := l.videos.GetByOwnerURL(ctx, owner.ID(), link)
	existing := err == nil
	switch {
	case existing:
		video.Title, video.Description = info.Title, info.Description
	case errors.Is(err, shared.ErrRecordNotFound):
		video = models.NewLibraryVideo(owner.ID(), info.Title, info.Description, link)
	default:
		return nil, err
	}

	if withCaptions && l.captions != nil {
		captions, err := l.captions.Fetch(ctx, link)
		if err != nil {
			l.logger.Warn("captions unavailable", "video", videoID, "error", err)
		} else {
			video.SubtitleText = captions.Text()
		}
		sendProgress(ctx, progress, libraryUpdate(2, total, "자막 정보를 가져왔습니다"))
	}

	if existing {
		err = l.videos.Update(ctx, video)
	} else {
		err = l.videos.Create(ctx, video)
	}
	if err != nil {
		return nil, err
	}

	sendProgress(ctx, progress, libraryUpdate(total, total, "동영상이 라이브러리에 추가되었습니다"))
	return video, nil
}

// Remove deletes a library video the requester owns (or any video, for admins) and
// its stored object when it was an upload.
func (l *Library) Remove(ctx context.Context, requester *models.Profile, id string) error {
	if requester == nil {
		return shared.ErrNotAuthenticated
	}

	video, err := l.videos.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanManage(requester, video.UserID) {
		return fmt.Errorf("%w: video %s belongs to another user", shared.ErrForbidden, id)
	}

	if err := l.videos.Delete(ctx, id); err != nil {
		return err
	}

	if l.bucket != nil && !isRemoteURL(video.VideoURL) {
		if err := l.bucket.Remove(ctx, video.VideoURL); err != nil && !errors.Is(err, shared.ErrRecordNotFound) {
			l.logger.Error("failed to remove stored object", "path", video.VideoURL, "error", err)
		}
	}
	return nil
}

// URL returns a playable address for a library video.
func (l *Library) URL(video *models.LibraryVideo) string {
	if isRemoteURL(video.VideoURL) || l.bucket == nil {
		return video.VideoURL
	}
	return l.bucket.PublicURL(video.VideoURL)
}

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
