package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"webdl/models"
	"webdl/services"
	util "webdl/utils"
)

func (h *Handler) GetSettingsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": h.Settings.Get()})
}

// UpdateSettingsHandler applies only the fields present in the body. A body
// that is not a JSON object counts as an empty update, and
// auto_archive_bulk takes any JSON value by truthiness.
func (h *Handler) UpdateSettingsHandler(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		payload = nil
	}

	if dir, ok := payload["download_dir"].(string); ok && strings.TrimSpace(dir) != "" {
		if _, err := h.Settings.SetDownloadDir(dir); err != nil {
			fail(c, http.StatusBadRequest, "Could not use download directory: "+err.Error())
			return
		}
	}
	if v, ok := payload["auto_archive_bulk"]; ok && v != nil {
		h.Settings.SetAutoArchiveBulk(truthy(v))
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": h.Settings.Get()})
}

// truthy treats zero numbers, empty strings, empty collections and false as false.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	case nil:
		return false
	}
	return true
}

// FileHandler serves a finished download, confined to the download directory.
func (h *Handler) FileHandler(c *gin.Context) {
	raw := c.Query("path")
	if strings.TrimSpace(raw) == "" {
		fail(c, http.StatusBadRequest, "Missing file path.")
		return
	}

	target, err := canonical(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	base, err := canonical(h.Settings.DownloadDir())
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !util.IsWithinDir(base, target) {
		fail(c, http.StatusForbidden, "File outside of download directory.")
		return
	}

	st, err := os.Stat(target)
	if err != nil || !st.Mode().IsRegular() {
		fail(c, http.StatusNotFound, "File not found.")
		return
	}

	c.FileAttachment(target, filepath.Base(target))
}

// canonical resolves ~, makes the path absolute and follows symlinks when
// the path exists.
func canonical(p string) (string, error) {
	abs, err := util.ResolvePath(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

func healthReport(h *Handler) models.HealthReport {
	return services.Health(h.Media, h.Settings.DownloadDir())
}
