package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"webdl/models"
)

// Fetcher downloads a single URL. Failures are reported in the result.
type Fetcher interface {
	Download(ctx context.Context, url, targetDir string, opts models.DownloadOptions) models.DownloadResult
}

// ArchivePolicy supplies the persisted auto-archive switch.
type ArchivePolicy interface {
	AutoArchiveBulk() bool
}

// Notifier receives progress events keyed by request ID.
type Notifier interface {
	Send(id string, data interface{})
}

const archiveTimeLayout = "20060102-150405"

// Bulk drives a batch of URLs through a Fetcher one at a time and
// optionally zips everything that was downloaded.
type Bulk struct {
	fetcher  Fetcher
	policy   ArchivePolicy
	notifier Notifier

	// overridable in tests
	now     func() time.Time
	archive func(files []string, dest string) (string, error)
}

func NewBulk(fetcher Fetcher, policy ArchivePolicy, notifier Notifier) *Bulk {
	return &Bulk{
		fetcher:  fetcher,
		policy:   policy,
		notifier: notifier,
		now:      time.Now,
		archive:  CreateArchive,
	}
}

// ArchiveName is the file name used for a batch archived at t.
func ArchiveName(t time.Time) string {
	return fmt.Sprintf("bulk-download-%s.zip", t.Format(archiveTimeLayout))
}

// Run processes req.URLs strictly in order. It never fails as a whole:
// per URL and archive failures end up in BulkResult.Errors.
func (b *Bulk) Run(ctx context.Context, req models.BulkRequest) models.BulkResult {
	total := len(req.URLs)
	log.Printf("[BulkService] starting batch request=%s urls=%d dir=%s", req.RequestID, total, req.TargetDir)

	results := make([]models.DownloadResult, 0, total)
	for i, url := range req.URLs {
		b.notify(req, models.BulkProgress{Index: i + 1, Total: total, URL: url, Status: models.ProgressDownloading})

		res := b.fetcher.Download(ctx, url, req.TargetDir, req.Options)
		results = append(results, res)

		if res.Success {
			b.notify(req, models.BulkProgress{Index: i + 1, Total: total, URL: url, Status: models.ProgressDone, Message: res.Message, Files: res.Files})
		} else {
			log.Printf("[BulkService] url %d/%d failed: %s", i+1, total, res.Message)
			b.notify(req, models.BulkProgress{Index: i + 1, Total: total, URL: url, Status: models.ProgressFailed, Message: res.Message})
		}
	}

	result := Aggregate(results)

	if b.shouldArchive(req, result) {
		dest := filepath.Join(req.TargetDir, ArchiveName(b.now()))
		b.notify(req, models.BulkProgress{Total: total, Status: models.ProgressArchiving, Message: dest})

		path, err := b.archive(result.Files, dest)
		if err != nil {
			log.Printf("[BulkService] archive failed: %v", err)
			result.Errors = append(result.Errors, fmt.Sprintf("Archive creation failed: %v", err))
		} else if _, statErr := os.Stat(path); statErr == nil {
			result.ArchivePath = path
		}
	}

	b.notify(req, models.BulkProgress{Total: total, Status: models.ProgressCompleted, Files: result.Files, Message: fmt.Sprintf("%d files, %d errors", len(result.Files), len(result.Errors))})
	log.Printf("[BulkService] batch done request=%s files=%d errors=%d archive=%q", req.RequestID, len(result.Files), len(result.Errors), result.ArchivePath)
	return result
}

// Aggregate flattens per URL results, keeping URL order then file order.
func Aggregate(results []models.DownloadResult) models.BulkResult {
	out := models.BulkResult{Files: []string{}, Errors: []string{}}
	for _, res := range results {
		if res.Success {
			out.Files = append(out.Files, res.Files...)
		} else {
			out.Errors = append(out.Errors, res.Message)
		}
	}
	return out
}

func (b *Bulk) shouldArchive(req models.BulkRequest, result models.BulkResult) bool {
	if len(result.Files) == 0 {
		return false
	}
	if req.ArchiveRequested {
		return true
	}
	return b.policy != nil && b.policy.AutoArchiveBulk()
}

func (b *Bulk) notify(req models.BulkRequest, event models.BulkProgress) {
	if b.notifier == nil || req.RequestID == "" {
		return
	}
	event.RequestID = req.RequestID
	b.notifier.Send(req.RequestID, event)
}
