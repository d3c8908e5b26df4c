package models

// incomming single download request from the client
type DownloadRequest struct {
	URL            string `json:"url"`
	TargetDir      string `json:"target_dir"`
	FormatID       string `json:"format_id"`
	AudioOnly      bool   `json:"audio_only"`
	OutputTemplate string `json:"output_template"`
}

// Options forwards this request's shared download options.
func (r DownloadRequest) Options() DownloadOptions {
	return DownloadOptions{
		FormatID:       r.FormatID,
		AudioOnly:      r.AudioOnly,
		OutputTemplate: r.OutputTemplate,
	}
}

type InfoRequest struct {
	URL string `json:"url"`
}

// DownloadOptions are shared by every URL of a bulk batch.
type DownloadOptions struct {
	FormatID       string
	AudioOnly      bool
	OutputTemplate string
}

// DownloadResult is the outcome of a single URL. Success implies Files is non-empty.
type DownloadResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Files   []string `json:"files"`
	Err     error    `json:"-"`
}

type BulkRequest struct {
	URLs             []string
	TargetDir        string
	Options          DownloadOptions
	ArchiveRequested bool
	RequestID        string
}

// BulkResult aggregates a whole batch, in input order.
type BulkResult struct {
	Files       []string `json:"files"`
	Errors      []string `json:"errors"`
	ArchivePath string   `json:"archive,omitempty"`
}

// OK is false only when nothing was downloaded and something failed.
func (r BulkResult) OK() bool {
	return !(len(r.Errors) > 0 && len(r.Files) == 0)
}

type Format struct {
	FormatID   string `json:"format_id"`
	Extension  string `json:"ext"`
	FileSize   int64  `json:"filesize,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Vcodec     string `json:"vcodec,omitempty"`
	Acodec     string `json:"acodec,omitempty"`
	FormatNote string `json:"format_note,omitempty"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type MediaInfo struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Uploader    string       `json:"uploader"`
	Duration    float64      `json:"duration"`
	Thumbnails  []Thumbnail  `json:"thumbnails"`
	Formats     []Format     `json:"formats"`
	Platform    PlatformInfo `json:"platform"`
}

type VideoType string

const (
	VideoTypeVideo VideoType = "video"
	VideoTypeReel  VideoType = "reel"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// PlatformInfo describes the platform characteristics.
type PlatformInfo struct {
	Platform   string     `json:"name"` // e.g. "YouTube"
	VideoType  VideoType  `json:"video_type"`
	Confidence Confidence `json:"confidence"`
}

// Bulk progress statuses, sent in order per URL.
const (
	ProgressDownloading = "downloading"
	ProgressDone        = "done"
	ProgressFailed      = "failed"
	ProgressArchiving   = "archiving"
	ProgressCompleted   = "completed"
)

// BulkProgress is sent via WebSocket / SSE while a bulk batch runs.
type BulkProgress struct {
	RequestID string   `json:"request_id"`
	Index     int      `json:"index"` // 1-based, 0 for batch level events
	Total     int      `json:"total"`
	URL       string   `json:"url,omitempty"`
	Status    string   `json:"status"`
	Message   string   `json:"message,omitempty"`
	Files     []string `json:"files,omitempty"`
}

// DependencyReport tells whether the external tools are reachable.
type DependencyReport struct {
	YTDLPFound  bool   `json:"yt_dlp_found"`
	YTDLPPath   string `json:"yt_dlp_path,omitempty"`
	FFmpegFound bool   `json:"ffmpeg_found"`
	FFmpegPath  string `json:"ffmpeg_path,omitempty"`
}

type DiskReport struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

type HealthReport struct {
	Dependencies DependencyReport `json:"dependencies"`
	Disk         *DiskReport      `json:"disk,omitempty"`
	DiskError    string           `json:"disk_error,omitempty"`
}
