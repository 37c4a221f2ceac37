package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/vidhub/internal/shared"
)

// CaptionSegment is one timed line of a transcript.
type CaptionSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Captions is the caption proxy's answer for one video.
//
// Raw always holds the proxy's JSON; Segments is filled when the payload is a list of
// segments or an object with a "transcript" list.
type Captions struct {
	VideoID  string
	Raw      json.RawMessage
	Segments []CaptionSegment
}

// Text joins segment texts with newlines.
func (c *Captions) Text() string {
	var out []byte
	for i, s := range c.Segments {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, s.Text...)
	}
	return string(out)
}

// CaptionService fetches transcripts through the local caption proxy.
type CaptionService struct {
	api *APIService
}

// NewCaptionService wraps an [APIService] pointed at the proxy.
func NewCaptionService(api *APIService) *CaptionService {
	return &CaptionService{api: api}
}

// Fetch validates videoURL and POSTs {"videoUrl": videoURL} to /transcripts.
//
// A non-2xx answer becomes [shared.ErrTransport] carrying the proxy's {"error"} message.
func (c *CaptionService) Fetch(ctx context.Context, videoURL string) (*Captions, error) {
	videoID, err := shared.ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.PostJSON(ctx, "/transcripts", map[string]string{"videoUrl": videoURL})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrTransport, err)
	}

	if !resp.OK() {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(resp.Body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%w: caption proxy error (status %d): %s", shared.ErrTransport, resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("%w: caption proxy error: status %d", shared.ErrTransport, resp.StatusCode)
	}

	if !resp.IsJSON {
		return nil, fmt.Errorf("%w: caption proxy returned non-JSON body", shared.ErrTransport)
	}

	captions := &Captions{VideoID: videoID, Raw: json.RawMessage(resp.Body)}

	var list []CaptionSegment
	if err := json.Unmarshal(resp.Body, &list); err == nil {
		captions.Segments = list
		return captions, nil
	}

	var wrapped struct {
		Transcript []CaptionSegment `json:"transcript"`
	}
	if err := json.Unmarshal(resp.Body, &wrapped); err == nil {
		captions.Segments = wrapped.Transcript
	}
	return captions, nil
}
