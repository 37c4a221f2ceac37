package tasks

import (
	"context"
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CheckPlaylist Phase = iota
	FetchItems
	SavePlaylist
	SaveItems
	ExportPlaylist
	UploadVideo
	AddLibraryVideo
)

func (p Phase) String() string {
	switch p {
	case CheckPlaylist:
		return "check_playlist"
	case FetchItems:
		return "fetch_items"
	case SavePlaylist:
		return "save_playlist"
	case SaveItems:
		return "save_items"
	case ExportPlaylist:
		return "export_playlist"
	case UploadVideo:
		return "upload_video"
	case AddLibraryVideo:
		return "add_library_video"
	default:
		return ""
	}
}

// sendProgress delivers update unless progress is nil. The send blocks until the
// receiver takes it or ctx is done, so events arrive in order and none are dropped.
func sendProgress(ctx context.Context, progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	case <-ctx.Done():
	}
}

func fetchStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchItems,
		Step:    0,
		Total:   total,
		Message: "동영상 정보를 가져오는 중...",
	}
}

func fetchPageUpdate(fetched, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchItems,
		Step:    fetched,
		Total:   total,
		Message: fmt.Sprintf("%d/%d 동영상 정보 로딩 중...", fetched, total),
	}
}

func fetchDoneUpdate(fetched, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchItems,
		Step:    fetched,
		Total:   total,
		Message: fmt.Sprintf("%d개의 동영상 정보를 가져왔습니다", fetched),
	}
}

func writeStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveItems,
		Step:    0,
		Total:   total,
		Message: "동영상 정보를 DB에 저장하는 중...",
	}
}

func writeItemUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%d/%d 동영상 정보 저장 중...", step, total),
	}
}

func writeDoneUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveItems,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("%d개의 동영상 정보가 저장되었습니다", total),
	}
}

func checkStartUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckPlaylist,
		Step:    0,
		Total:   2,
		Message: fmt.Sprintf("재생목록 정보를 확인하는 중... (%s)", playlistID),
	}
}

func checkDoneUpdate(info *SessionInfo) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckPlaylist,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("재생목록 확인 완료: %s (%d개)", info.Playlist.Title, info.Playlist.ItemCount),
		Data:    info,
	}
}

func savePlaylistUpdate(id, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SavePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("재생목록이 저장되었습니다: %s", name),
		Data:    id,
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func uploadUpdate(step, total int, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadVideo,
		Step:    step,
		Total:   total,
		Message: message,
	}
}

func libraryUpdate(step, total int, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddLibraryVideo,
		Step:    step,
		Total:   total,
		Message: message,
	}
}
