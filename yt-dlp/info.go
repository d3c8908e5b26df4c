package ytdlp

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"webdl/models"
)

type rawFormat struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	Resolution     string   `json:"resolution"`
	Height         *int     `json:"height"`
	Vcodec         string   `json:"vcodec"`
	Acodec         string   `json:"acodec"`
	FormatNote     string   `json:"format_note"`
}

type rawInfo struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Uploader    string   `json:"uploader"`
	Duration    *float64 `json:"duration"`
	Thumbnails  []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"thumbnails"`
	Formats []rawFormat `json:"formats"`
}

func parseInfo(output []byte) (*models.MediaInfo, error) {
	var raw rawInfo
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("yt-dlp parse error: %w", err)
	}

	info := &models.MediaInfo{
		Title:       raw.Title,
		Description: raw.Description,
		Uploader:    raw.Uploader,
		Thumbnails:  make([]models.Thumbnail, 0, len(raw.Thumbnails)),
		Formats:     make([]models.Format, 0, len(raw.Formats)),
	}
	if raw.Duration != nil {
		info.Duration = *raw.Duration
	}
	for _, t := range raw.Thumbnails {
		info.Thumbnails = append(info.Thumbnails, models.Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height})
	}
	for _, f := range raw.Formats {
		info.Formats = append(info.Formats, simplifyFormat(f))
	}
	return info, nil
}

func simplifyFormat(f rawFormat) models.Format {
	out := models.Format{
		FormatID:   f.FormatID,
		Extension:  f.Ext,
		Resolution: f.Resolution,
		Vcodec:     f.Vcodec,
		Acodec:     f.Acodec,
		FormatNote: f.FormatNote,
	}

	switch {
	case f.Filesize != nil && *f.Filesize > 0:
		out.FileSize = int64(*f.Filesize)
	case f.FilesizeApprox != nil:
		out.FileSize = int64(*f.FilesizeApprox)
	}

	if out.Resolution == "" && f.Height != nil {
		out.Resolution = strconv.Itoa(*f.Height)
	}
	return out
}

// Dependencies reports whether yt-dlp and ffmpeg can be found on PATH.
// ffmpeg is only needed for merging and audio extraction.
func (c *Client) Dependencies() models.DependencyReport {
	report := models.DependencyReport{}
	if path, err := exec.LookPath(c.Binary); err == nil {
		report.YTDLPFound = true
		report.YTDLPPath = path
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		report.FFmpegFound = true
		report.FFmpegPath = path
	}
	return report
}
