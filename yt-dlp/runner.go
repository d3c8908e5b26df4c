package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strings"

	"webdl/models"
	util "webdl/utils"
)

const (
	DefaultBinary         = "yt-dlp"
	DefaultOutputTemplate = "%(title)s [%(id)s].%(ext)s"

	// audio-only extraction policy
	AudioFormat   = "bestaudio/best"
	AudioCodec    = "mp3"
	AudioQuality  = "192K"
	MsgDownloaded = "Download complete."
	MsgNothing    = "Nothing was downloaded."
)

// ErrNothingDownloaded is reported when yt-dlp exits cleanly without producing a file.
var ErrNothingDownloaded = errors.New("nothing was downloaded")

// Client runs the yt-dlp executable. It is safe for concurrent use.
type Client struct {
	Binary string
	slots  *util.Slots
}

func NewClient(binary string, slots *util.Slots) *Client {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	if slots == nil {
		slots = util.NewSlots(1)
	}
	return &Client{Binary: binary, slots: slots}
}

// Info resolves metadata and available formats without downloading.
func (c *Client) Info(ctx context.Context, videoURL string) (*models.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, c.Binary,
		"-J",
		"--skip-download",
		"--flat-playlist",
		"--no-warnings",
		videoURL,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.New(errorMessage(stderr.String(), err))
	}

	info, err := parseInfo(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	info.Platform = util.DetectPlatform(videoURL)
	return info, nil
}

// Download fetches one URL into targetDir. Every failure is folded into the
// returned result; it never returns an error of its own.
func (c *Client) Download(ctx context.Context, videoURL, targetDir string, opts models.DownloadOptions) models.DownloadResult {
	dir, err := util.EnsureDirectory(targetDir)
	if err != nil {
		return failed(err)
	}

	if c.slots.Full() {
		log.Printf("[YTDLP] all download slots busy, waiting | url=%s", videoURL)
	}
	if err := c.slots.Acquire(ctx); err != nil {
		return failed(fmt.Errorf("waiting for a download slot: %w", err))
	}
	defer c.slots.Release()

	args := BuildDownloadArgs(dir, opts, c.slots.Active())
	args = append(args, videoURL)

	log.Printf("[YTDLP] starting download url=%s dir=%s format=%q audio=%v", videoURL, dir, opts.FormatID, opts.AudioOnly)

	cmd := exec.CommandContext(ctx, c.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := errorMessage(stderr.String(), err)
		log.Printf("[YTDLP] download failed url=%s: %s", videoURL, msg)
		return failed(errors.New(msg))
	}

	files := parseFilePaths(stdout.String(), dir)
	if len(files) == 0 {
		return models.DownloadResult{Success: false, Message: MsgNothing, Files: []string{}, Err: ErrNothingDownloaded}
	}

	log.Printf("[YTDLP] download finished url=%s files=%d", videoURL, len(files))
	return models.DownloadResult{Success: true, Message: MsgDownloaded, Files: files}
}

// BuildDownloadArgs returns every argument except the URL itself. Produced
// files are reported through --print after_move:filepath, so the final name
// is observed rather than guessed from the template.
func BuildDownloadArgs(dir string, opts models.DownloadOptions, activeDownloads int) []string {
	template := strings.TrimSpace(opts.OutputTemplate)
	if template == "" {
		template = DefaultOutputTemplate
	}
	if !filepath.IsAbs(template) {
		template = filepath.Join(dir, template)
	}

	args := []string{
		"-o", template,
		"--no-simulate",
		"--print", "after_move:filepath",
		"--no-warnings",
		"--no-progress",
		util.GetFragmentsWithConnection(activeDownloads, opts.FormatID),
	}

	format := util.ResolveFormat(opts.FormatID)
	if opts.AudioOnly && format == "" {
		format = AudioFormat
	}
	if format != "" {
		args = append(args, "-f", format)
	}
	if opts.AudioOnly {
		args = append(args, "-x", "--audio-format", AudioCodec, "--audio-quality", AudioQuality)
	}
	return args
}

func failed(err error) models.DownloadResult {
	return models.DownloadResult{Success: false, Message: err.Error(), Files: []string{}, Err: err}
}

// parseFilePaths reads one path per line; relative paths are anchored at dir.
func parseFilePaths(out, dir string) []string {
	files := make([]string, 0)
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "NA" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		line = filepath.Clean(line)
		if seen[line] {
			continue
		}
		seen[line] = true
		files = append(files, line)
	}
	return files
}

// errorMessage prefers yt-dlp's own "ERROR:" lines over the exit status.
func errorMessage(stderr string, err error) string {
	var errLines []string
	var last string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		last = line
		if strings.HasPrefix(line, "ERROR:") {
			errLines = append(errLines, line)
		}
	}

	switch {
	case len(errLines) > 0:
		return strings.Join(errLines, "\n")
	case last != "":
		return last
	default:
		return fmt.Sprintf("yt-dlp failed: %v", err)
	}
}
