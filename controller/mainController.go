package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"webdl/models"
	"webdl/progress"
	"webdl/settings"
	util "webdl/utils"
)

// MediaClient is the yt-dlp facing collaborator.
type MediaClient interface {
	Info(ctx context.Context, url string) (*models.MediaInfo, error)
	Download(ctx context.Context, url, targetDir string, opts models.DownloadOptions) models.DownloadResult
	Dependencies() models.DependencyReport
}

type BulkRunner interface {
	Run(ctx context.Context, req models.BulkRequest) models.BulkResult
}

// Handler wires the HTTP routes to their collaborators.
type Handler struct {
	Settings *settings.Store
	Media    MediaClient
	Bulk     BulkRunner
	Hub      *progress.Hub
}

func NewHandler(store *settings.Store, media MediaClient, bulk BulkRunner, hub *progress.Hub) *Handler {
	return &Handler{Settings: store, Media: media, Bulk: bulk, Hub: hub}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"ok": false, "error": msg})
}

// targetDir falls back to the configured download directory and makes sure
// the result exists as a directory.
func (h *Handler) targetDir(requested string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		return h.Settings.EnsureDownloadDir()
	}
	return util.EnsureDirectory(requested)
}

func (h *Handler) IndexHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.Settings.Get())
}

// Handles format / metadata lookups
func (h *Handler) InfoHandler(c *gin.Context) {
	var req models.InfoRequest
	// a malformed body is treated like an empty one
	_ = c.ShouldBindJSON(&req)

	url := strings.TrimSpace(req.URL)
	if url == "" {
		fail(c, http.StatusBadRequest, "Please provide a URL.")
		return
	}

	info, err := h.Media.Info(c.Request.Context(), url)
	if err != nil {
		log.Printf("[InfoController] info failed | url=%s | %v", url, err)
		fail(c, http.StatusBadRequest, "Failed to fetch info: "+err.Error())
		return
	}

	log.Printf("[InfoController] Platform: %s | Formats: %d | URL: %s", info.Platform.Platform, len(info.Formats), url)
	c.JSON(http.StatusOK, gin.H{"ok": true, "info": info})
}

// Handles a single blocking download
func (h *Handler) DownloadHandler(c *gin.Context) {
	var req models.DownloadRequest
	_ = c.ShouldBindJSON(&req)

	url := strings.TrimSpace(req.URL)
	if url == "" {
		fail(c, http.StatusBadRequest, "Please provide a URL.")
		return
	}

	dir, err := h.targetDir(req.TargetDir)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	// downloads run to completion even if the browser goes away
	ctx := context.WithoutCancel(c.Request.Context())
	result := h.Media.Download(ctx, url, dir, req.Options())
	if !result.Success {
		fail(c, http.StatusBadRequest, result.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": result.Message, "files": result.Files})
}

func (h *Handler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "health": healthReport(h)})
}
