// package formatter renders stored playlists and their videos as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// ParseFormat normalizes a format name; "md" and "text" are accepted aliases.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatText, "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// PlaylistDoc is the JSON shape of a stored playlist.
type PlaylistDoc struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	ListURL           string     `json:"list_url"`
	ListName          string     `json:"list_name"`
	VideoQty          int        `json:"video_qty"`
	ChannelURL        string     `json:"channel_url"`
	ChannelSubscriber int64      `json:"channel_subscriber"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Videos            []VideoDoc `json:"videos,omitempty"`
}

// VideoDoc is the JSON shape of a stored playlist item.
type VideoDoc struct {
	ID           string     `json:"id"`
	VideoLink    string     `json:"video_link"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	OriginUpdate *time.Time `json:"origin_update"`
	TargetUpdate time.Time  `json:"target_update"`
}

// NewPlaylistDoc converts a playlist row.
func NewPlaylistDoc(p *models.ExternalPlaylist) PlaylistDoc {
	return PlaylistDoc{
		ID:                p.ID(),
		UserID:            p.UserID,
		ListURL:           p.ListURL,
		ListName:          p.ListName,
		VideoQty:          p.VideoQty,
		ChannelURL:        p.ChannelURL,
		ChannelSubscriber: p.ChannelSubscriber,
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
	}
}

// NewVideoDoc converts a playlist item row.
func NewVideoDoc(v *models.ExternalVideo) VideoDoc {
	doc := VideoDoc{
		ID:           v.ID(),
		VideoLink:    v.VideoLink,
		Title:        v.Title,
		Description:  v.Description,
		TargetUpdate: v.TargetUpdate,
	}
	if !v.OriginUpdate.IsZero() {
		origin := v.OriginUpdate
		doc.OriginUpdate = &origin
	}
	return doc
}

// ExportToJSON renders the playlist with its videos nested.
func ExportToJSON(export *models.PlaylistExport) ([]byte, error) {
	doc := NewPlaylistDoc(export.Playlist)
	doc.Videos = make([]VideoDoc, 0, len(export.Videos))
	for _, v := range export.Videos {
		doc.Videos = append(doc.Videos, NewVideoDoc(v))
	}
	return shared.MarshalJSON(doc, true)
}

// ToMetadataJSON renders the playlist without its videos.
func ToMetadataJSON(playlist *models.ExternalPlaylist) ([]byte, error) {
	return shared.MarshalJSON(NewPlaylistDoc(playlist), true)
}

// ExportToCSV writes one row per video with columns: ID, Link, Title, Description, Published, Ingested
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Link", "Title", "Description", "Published", "Ingested"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range export.Videos {
		published := ""
		if !v.OriginUpdate.IsZero() {
			published = v.OriginUpdate.UTC().Format(time.RFC3339)
		}
		record := []string{
			v.ID(),
			v.VideoLink,
			v.Title,
			v.Description,
			published,
			v.TargetUpdate.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a heading, the channel summary and a numbered list of linked videos
func ExportToMarkdown(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Playlist

	fmt.Fprintf(&buf, "# %s\n\n", p.ListName)
	fmt.Fprintf(&buf, "**Playlist**: <%s>\n\n", p.ListURL)
	if p.ChannelURL != "" {
		fmt.Fprintf(&buf, "**Channel**: <%s> (%s subscribers)\n\n", p.ChannelURL, shared.FormatCount(p.ChannelSubscriber))
	}
	fmt.Fprintf(&buf, "**Videos**: %d stored / %d reported\n\n", len(export.Videos), p.VideoQty)

	buf.WriteString("## Videos\n\n")
	for i, v := range export.Videos {
		fmt.Fprintf(&buf, "%d. [%s](%s) (%s)\n", i+1, markdownEscape(v.Title), v.VideoLink, shared.FormatDate(v.OriginUpdate))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Playlist

	fmt.Fprintf(&buf, "Playlist: %s\n", p.ListName)
	fmt.Fprintf(&buf, "URL: %s\n", p.ListURL)
	if p.ChannelURL != "" {
		fmt.Fprintf(&buf, "Channel: %s (%s subscribers)\n", p.ChannelURL, shared.FormatCount(p.ChannelSubscriber))
	}
	fmt.Fprintf(&buf, "Videos: %d\n\n", len(export.Videos))

	for i, v := range export.Videos {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, v.Title, v.VideoLink)
	}

	return buf.Bytes(), nil
}

// Export renders export in the named format.
func Export(export *models.PlaylistExport, format string) ([]byte, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	default:
		return ExportToJSON(export)
	}
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	VideosFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_videos.csv and {base}_metadata.json
func WriteCSVExport(export *models.PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Playlist.ID()
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	videosFile := baseFilepath + "_videos.csv"
	if err := os.WriteFile(videosFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		VideosFile:   videosFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport writes {outputDir}/README.md; the directory defaults to the playlist ID.
func WriteMarkdownExport(export *models.PlaylistExport, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = export.Playlist.ID()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return mdFile, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_videos.txt as the filename.
func WriteTextExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_videos.txt", export.Playlist.ID())
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSONExport writes {dir}/{playlist.ID}.json.
func WriteJSONExport(export *models.PlaylistExport, dir string) (string, error) {
	data, err := ExportToJSON(export)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}

	path := filepath.Join(dir, export.Playlist.ID()+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// WriteExport writes export into dir in the named format and returns the created files.
func WriteExport(export *models.PlaylistExport, format, dir string) ([]string, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	base := filepath.Join(dir, export.Playlist.ID())

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(export, base)
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.VideosFile, res.MetadataFile}, nil
	case FormatMarkdown:
		file, err := WriteMarkdownExport(export, base)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return []string{file}, nil
	case FormatText:
		file, err := WriteTextExport(export, base+"_videos.txt")
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{file}, nil
	default:
		file, err := WriteJSONExport(export, dir)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	}
}

var markdownReplacer = strings.NewReplacer("[", `\[`, "]", `\]`)

func markdownEscape(s string) string {
	return markdownReplacer.Replace(s)
}
